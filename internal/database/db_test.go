package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dareyes/restaurant-management/internal/config"
)

func TestDSN(t *testing.T) {
	cfg := config.Config{
		DBUser: "resto",
		DBPass: "s3cret",
		DBHost: "db.internal",
		DBPort: "3306",
		DBName: "restaurant",
	}
	got := dsn(cfg)
	assert.Equal(t, "resto:s3cret@tcp(db.internal:3306)/restaurant?parseTime=true&loc=UTC&charset=utf8mb4", got)
}

func TestDSNWithoutPassword(t *testing.T) {
	cfg := config.Config{
		DBUser: "resto",
		DBHost: "localhost",
		DBPort: "3306",
		DBName: "restaurant",
	}
	got := dsn(cfg)
	assert.Equal(t, "resto@tcp(localhost:3306)/restaurant?parseTime=true&loc=UTC&charset=utf8mb4", got)
}
