package sqlfilter

import (
	"testing"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/studyhub/internal/recordstore"
)

type status string

var studies = Table{
	"title":      {Name: "title", Kind: Text},
	"status":     {Name: "status", Kind: Text},
	"leader":     {Name: "leader_id", Kind: ID},
	"maxMembers": {Name: "max_members", Kind: Int},
	"isOpen":     {Name: "is_open", Kind: Bool},
	"deadline":   {Name: "deadline", Kind: Time},
	"createdAt":  {Name: "created_at", Kind: Time},
	"tags":       {Name: "tags", Kind: TextArray},
	"members":    {Name: "current_members", Kind: IDArray},
}

func toSQL(t *testing.T, expr recordstore.Expr) (string, []interface{}) {
	t.Helper()
	pred, err := Compile(studies, expr)
	require.NoError(t, err)
	sql, args, err := pred.ToSql()
	require.NoError(t, err)
	return sql, args
}

func TestCompileEq(t *testing.T) {
	deadline := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name     string
		expr     recordstore.Expr
		wantSQL  string
		wantArgs []interface{}
	}{
		{"text", recordstore.Eq("title", "Go"), "title = ?", []interface{}{"Go"}},
		{"named string type", recordstore.Eq("status", status("recruiting")), "status = ?", []interface{}{"recruiting"}},
		{"id from string", recordstore.Eq("leader", "12"), "leader_id = ?", []interface{}{int64(12)}},
		{"int", recordstore.Eq("maxMembers", 4), "max_members = ?", []interface{}{int64(4)}},
		{"bool", recordstore.Eq("isOpen", true), "is_open = ?", []interface{}{true}},
		{"time", recordstore.Eq("deadline", deadline), "deadline = ?", []interface{}{deadline}},
		{"null", recordstore.Eq("deadline", nil), "deadline IS NULL", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args := toSQL(t, tt.expr)
			assert.Equal(t, tt.wantSQL, sql)
			if tt.wantArgs == nil {
				assert.Empty(t, args)
			} else {
				assert.Equal(t, tt.wantArgs, args)
			}
		})
	}
}

func TestCompileEqTypeMismatchMatchesNothing(t *testing.T) {
	for _, expr := range []recordstore.Expr{
		recordstore.Eq("title", 3),
		recordstore.Eq("leader", "abc"),
		recordstore.Eq("leader", 12),
		recordstore.Eq("maxMembers", "4"),
		recordstore.Eq("isOpen", "true"),
		recordstore.Eq("tags", []string{"go"}),
		recordstore.Eq("members", "1"),
	} {
		sql, args := toSQL(t, expr)
		assert.Equal(t, "FALSE", sql, "%+v", expr)
		assert.Empty(t, args)
	}
}

func TestCompileRegexEscapesLikeWildcards(t *testing.T) {
	sql, args := toSQL(t, recordstore.Regex("title", `50%_off\`))

	assert.Equal(t, "title ILIKE ?", sql)
	assert.Equal(t, []interface{}{`%50\%\_off\\%`}, args)
}

func TestCompileAnyIn(t *testing.T) {
	sql, args := toSQL(t, recordstore.AnyIn("tags", "go", "rust"))

	assert.Equal(t, "EXISTS (SELECT 1 FROM unnest(tags) AS elem WHERE elem ILIKE ANY (?))", sql)
	assert.Equal(t, []interface{}{[]string{"%go%", "%rust%"}}, args)

	sql, _ = toSQL(t, recordstore.AnyIn("tags"))
	assert.Equal(t, "FALSE", sql)
}

func TestCompileCombinators(t *testing.T) {
	sql, args := toSQL(t, recordstore.And(
		recordstore.Eq("status", "recruiting"),
		recordstore.Or(
			recordstore.Regex("title", "go"),
			recordstore.AnyIn("tags", "go"),
		),
	))

	assert.Equal(t, "(status = ? AND (title ILIKE ? OR EXISTS (SELECT 1 FROM unnest(tags) AS elem WHERE elem ILIKE ANY (?))))", sql)
	assert.Equal(t, []interface{}{"recruiting", "%go%", []string{"%go%"}}, args)

	sql, _ = toSQL(t, recordstore.And())
	assert.Equal(t, "TRUE", sql)
	sql, _ = toSQL(t, recordstore.Or())
	assert.Equal(t, "FALSE", sql)
	sql, _ = toSQL(t, nil)
	assert.Equal(t, "TRUE", sql)
}

func TestCompileErrors(t *testing.T) {
	_, err := Compile(studies, recordstore.Eq("nope", 1))
	assert.ErrorIs(t, err, ErrUnknownField)

	_, err = Compile(studies, recordstore.Or(recordstore.Regex("maxMembers", "1")))
	assert.ErrorIs(t, err, recordstore.ErrFieldType)

	_, err = Compile(studies, recordstore.AnyIn("title", "go"))
	assert.ErrorIs(t, err, recordstore.ErrFieldType)
}

func TestCompiledPredicateInSelect(t *testing.T) {
	pred, err := Compile(studies, recordstore.Eq("status", "recruiting"))
	require.NoError(t, err)
	order, err := OrderBy(studies, recordstore.Desc("createdAt"))
	require.NoError(t, err)

	sql, args, err := squirrel.Select("id").From("study_groups").
		Where(pred).OrderBy(order...).Limit(5).Offset(10).
		PlaceholderFormat(squirrel.Dollar).ToSql()

	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM study_groups WHERE status = $1 ORDER BY created_at DESC NULLS LAST, id ASC LIMIT 5 OFFSET 10", sql)
	assert.Equal(t, []interface{}{"recruiting"}, args)
}

func TestOrderBy(t *testing.T) {
	tests := []struct {
		name string
		key  *recordstore.SortKey
		want []string
	}{
		{"none", nil, []string{"id ASC"}},
		{"time asc", recordstore.Asc("deadline"), []string{"deadline ASC NULLS FIRST", "id ASC"}},
		{"number desc", recordstore.Desc("maxMembers"), []string{"max_members DESC NULLS LAST", "id ASC"}},
		{"text keeps id order", recordstore.Desc("title"), []string{"id ASC"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := OrderBy(studies, tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := OrderBy(studies, recordstore.Asc("missing"))
	assert.ErrorIs(t, err, ErrUnknownField)
}
