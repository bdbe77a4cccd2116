package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/tempo-schedule-api/pkg/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5433, User: "tempo", Password: "pw", Name: "tempo_schedule", SSLMode: "disable"})

	assert.Equal(t, "host=db port=5433 user=tempo password=pw dbname=tempo_schedule sslmode=disable application_name=tempo-schedule-api connect_timeout=5", dsn)
}
