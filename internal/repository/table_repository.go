package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/dareyes/restaurant-management/internal/model"
)

// TableRepo persists dining tables.
type TableRepo struct{ DB *sql.DB }

func NewTableRepo(db *sql.DB) *TableRepo { return &TableRepo{DB: db} }

func (r *TableRepo) Create(ctx context.Context, t *model.Table) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO restaurant_tables (number, capacity, status) VALUES (?,?,?)",
		t.Number, t.Capacity, t.Status)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrDuplicate
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

func (r *TableRepo) GetByID(ctx context.Context, id uint64) (model.Table, error) {
	var t model.Table
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,number,capacity,status,updated_at FROM restaurant_tables WHERE id=? LIMIT 1",
		id).Scan(&t.ID, &t.Number, &t.Capacity, &t.Status, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Table{}, ErrNotFound
	}
	return t, err
}

func (r *TableRepo) List(ctx context.Context) ([]model.Table, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,number,capacity,status,updated_at FROM restaurant_tables ORDER BY number")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Table
	for rows.Next() {
		var t model.Table
		if err := rows.Scan(&t.ID, &t.Number, &t.Capacity, &t.Status, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// UpdateStatus moves a table between available/occupied/reserved.
func (r *TableRepo) UpdateStatus(ctx context.Context, id uint64, status string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE restaurant_tables SET status=? WHERE id=?", status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
