// Package sqlfilter compiles record store filter expressions into squirrel
// predicates, so the PostgreSQL repositories answer the same queries the
// local record store does.
package sqlfilter

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/studyhub/internal/recordstore"
)

// ErrUnknownField is returned for a filter or sort on a field the table does not map.
var ErrUnknownField = errors.New("sqlfilter: unknown field")

// Kind is the storage type of a mapped column.
type Kind int

const (
	Text Kind = iota
	ID
	Int
	Bool
	Time
	TextArray
	IDArray
)

// Column maps one JSON field to a SQL column.
type Column struct {
	Name string
	Kind Kind
}

// Table maps JSON field names to columns.
type Table map[string]Column

var (
	sqlTrue  = squirrel.Expr("TRUE")
	sqlFalse = squirrel.Expr("FALSE")
)

func (t Table) column(field string) (Column, error) {
	col, ok := t[field]
	if !ok {
		return Column{}, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return col, nil
}

// Compile translates expr into a WHERE predicate. A nil expr matches everything.
func Compile(t Table, expr recordstore.Expr) (squirrel.Sqlizer, error) {
	switch e := expr.(type) {
	case nil:
		return sqlTrue, nil
	case recordstore.EqExpr:
		return compileEq(t, e)
	case recordstore.RegexExpr:
		return compileRegex(t, e)
	case recordstore.AnyInExpr:
		return compileAnyIn(t, e)
	case recordstore.AndExpr:
		if len(e.Exprs) == 0 {
			return sqlTrue, nil
		}
		parts, err := compileAll(t, e.Exprs)
		if err != nil {
			return nil, err
		}
		return squirrel.And(parts), nil
	case recordstore.OrExpr:
		if len(e.Exprs) == 0 {
			return sqlFalse, nil
		}
		parts, err := compileAll(t, e.Exprs)
		if err != nil {
			return nil, err
		}
		return squirrel.Or(parts), nil
	default:
		return nil, fmt.Errorf("sqlfilter: unsupported expression %T", expr)
	}
}

func compileAll(t Table, exprs []recordstore.Expr) ([]squirrel.Sqlizer, error) {
	parts := make([]squirrel.Sqlizer, 0, len(exprs))
	for _, sub := range exprs {
		part, err := Compile(t, sub)
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}
	return parts, nil
}

// compileEq keeps the strict scalar semantics of the record store: a value
// of the wrong type for the column matches nothing rather than erroring.
func compileEq(t Table, e recordstore.EqExpr) (squirrel.Sqlizer, error) {
	col, err := t.column(e.Field)
	if err != nil {
		return nil, err
	}
	if e.Value == nil {
		return squirrel.Eq{col.Name: nil}, nil
	}

	value, ok := columnValue(col.Kind, e.Value)
	if !ok {
		return sqlFalse, nil
	}
	return squirrel.Eq{col.Name: value}, nil
}

func columnValue(kind Kind, v any) (any, bool) {
	if tm, ok := v.(time.Time); ok {
		return tm, kind == Time
	}

	rv := reflect.ValueOf(v)
	switch kind {
	case Text:
		if rv.Kind() == reflect.String {
			return rv.String(), true
		}
	case ID:
		if rv.Kind() == reflect.String {
			id, err := strconv.ParseInt(rv.String(), 10, 64)
			return id, err == nil
		}
	case Int:
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return rv.Int(), true
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return int64(rv.Uint()), true
		case reflect.Float32, reflect.Float64:
			return rv.Float(), true
		}
	case Bool:
		if rv.Kind() == reflect.Bool {
			return rv.Bool(), true
		}
	case Time:
		if rv.Kind() == reflect.String {
			tm, err := time.Parse(time.RFC3339, rv.String())
			return tm, err == nil
		}
	}
	return nil, false
}

func compileRegex(t Table, e recordstore.RegexExpr) (squirrel.Sqlizer, error) {
	col, err := t.column(e.Field)
	if err != nil {
		return nil, err
	}
	if col.Kind != Text {
		return nil, fmt.Errorf("%w: %s is not a text column", recordstore.ErrFieldType, e.Field)
	}
	return squirrel.ILike{col.Name: containsPattern(e.Pattern)}, nil
}

func compileAnyIn(t Table, e recordstore.AnyInExpr) (squirrel.Sqlizer, error) {
	col, err := t.column(e.Field)
	if err != nil {
		return nil, err
	}
	if col.Kind != TextArray {
		return nil, fmt.Errorf("%w: %s is not a text list column", recordstore.ErrFieldType, e.Field)
	}
	if len(e.Candidates) == 0 {
		return sqlFalse, nil
	}

	patterns := make([]string, len(e.Candidates))
	for i, c := range e.Candidates {
		patterns[i] = containsPattern(c)
	}
	return squirrel.Expr(
		fmt.Sprintf("EXISTS (SELECT 1 FROM unnest(%s) AS elem WHERE elem ILIKE ANY (?))", col.Name),
		patterns,
	), nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern turns a literal substring into an ILIKE pattern.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// OrderBy returns ORDER BY terms mirroring the record store sort: only time
// and numeric columns reorder rows, nulls sort as the earliest value, and
// ties keep id order.
func OrderBy(t Table, key *recordstore.SortKey) ([]string, error) {
	if key == nil {
		return []string{"id ASC"}, nil
	}
	col, err := t.column(key.Field)
	if err != nil {
		return nil, err
	}
	if col.Kind != Time && col.Kind != Int {
		return []string{"id ASC"}, nil
	}

	direction := "ASC NULLS FIRST"
	if key.Direction < 0 {
		direction = "DESC NULLS LAST"
	}
	return []string{col.Name + " " + direction, "id ASC"}, nil
}
