package migrations

import (
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	migrations, err := List(Files())
	require.NoError(t, err)
	require.NotEmpty(t, migrations)
	assert.Equal(t, Migration{Version: "001", Name: "001_init.sql"}, migrations[0])

	content, err := fs.ReadFile(Files(), migrations[0].Name)
	require.NoError(t, err)
	for _, table := range []string{"users", "study_groups", "notices", "community_posts", "comments"} {
		assert.Contains(t, string(content), "CREATE TABLE IF NOT EXISTS "+table+" (")
	}
	assert.Contains(t, string(content), "CONSTRAINT users_username_key UNIQUE (username)")
	assert.Contains(t, string(content), "CONSTRAINT users_name_key UNIQUE (name)")
}

func TestListOrdersAndFilters(t *testing.T) {
	fsys := fstest.MapFS{
		"002_posts.sql": {Data: []byte("SELECT 2;")},
		"001_init.sql":  {Data: []byte("SELECT 1;")},
		"README.md":     {Data: []byte("notes")},
		"010_more.sql":  {Data: []byte("SELECT 10;")},
	}

	migrations, err := List(fsys)

	require.NoError(t, err)
	assert.Equal(t, []Migration{
		{Version: "001", Name: "001_init.sql"},
		{Version: "002", Name: "002_posts.sql"},
		{Version: "010", Name: "010_more.sql"},
	}, migrations)
}

func TestListRejectsBadNames(t *testing.T) {
	_, err := List(fstest.MapFS{"init.sql": {Data: []byte("")}})
	assert.ErrorContains(t, err, "no version prefix")

	_, err = List(fstest.MapFS{
		"001_a.sql": {Data: []byte("")},
		"001_b.sql": {Data: []byte("")},
	})
	assert.ErrorContains(t, err, "share version 001")
}
