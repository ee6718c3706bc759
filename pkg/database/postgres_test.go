package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/sma-attendance-scoring/pkg/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5433, User: "scorer", Password: "pw", Name: "attendance", SSLMode: "require"})
	assert.Equal(t, "host=db port=5433 user=scorer password=pw dbname=attendance sslmode=require", dsn)
}
