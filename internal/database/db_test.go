package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hkhang692004/cinema-ops-console/internal/config"
)

func TestDSN(t *testing.T) {
	cfg := config.Config{
		DBUser: "ops",
		DBPass: "s3cret",
		DBHost: "db.internal",
		DBPort: "3306",
		DBName: "cinema_ops",
	}
	assert.Equal(t,
		"ops:s3cret@tcp(db.internal:3306)/cinema_ops?charset=utf8mb4&parseTime=true&loc=UTC",
		dsn(cfg))

	// Passwordless local setups omit the colon entirely.
	cfg.DBPass = ""
	assert.Equal(t,
		"ops@tcp(db.internal:3306)/cinema_ops?charset=utf8mb4&parseTime=true&loc=UTC",
		dsn(cfg))
}
