package repository

import (
	"context"
	"database/sql"
)

// Summary aggregates the counts shown on the dashboard.
type Summary struct {
	Products       int            `json:"products"`
	TablesByStatus map[string]int `json:"tablesByStatus"`
	UsersByRole    map[string]int `json:"usersByRole"`
}

// ReportRepo runs the dashboard aggregation queries.
type ReportRepo struct{ DB *sql.DB }

func NewReportRepo(db *sql.DB) *ReportRepo { return &ReportRepo{DB: db} }

func (r *ReportRepo) Summary(ctx context.Context) (Summary, error) {
	s := Summary{
		TablesByStatus: map[string]int{},
		UsersByRole:    map[string]int{},
	}
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&s.Products); err != nil {
		return Summary{}, err
	}
	if err := r.countInto(ctx, "SELECT status, COUNT(*) FROM restaurant_tables GROUP BY status", s.TablesByStatus); err != nil {
		return Summary{}, err
	}
	if err := r.countInto(ctx, "SELECT role, COUNT(*) FROM users GROUP BY role", s.UsersByRole); err != nil {
		return Summary{}, err
	}
	return s, nil
}

func (r *ReportRepo) countInto(ctx context.Context, query string, dst map[string]int) error {
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return err
		}
		dst[key] = n
	}
	return rows.Err()
}
