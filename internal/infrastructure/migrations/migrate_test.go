package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPgx5URL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@db:5432/traslados?sslmode=disable", pgx5URL("postgres://u:p@db:5432/traslados?sslmode=disable"))
	assert.Equal(t, "pgx5://u@db/traslados", pgx5URL("postgresql://u@db/traslados"))
	assert.Equal(t, "pgx5://ya/convertida", pgx5URL("pgx5://ya/convertida"))
}

func TestEmbeddedMigrations_ParesUpDown(t *testing.T) {
	entries, err := files.ReadDir("sql")
	assert.NoError(t, err)
	names := map[string]bool{}
	for _, e := range entries {
		names[e.Name()] = true
	}
	assert.True(t, names["000001_init.up.sql"])
	assert.True(t, names["000001_init.down.sql"])
}
