package recordstore

import (
	"math"
	"reflect"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// Expr is a filter expression. The concrete variants are EqExpr, RegexExpr,
// AnyInExpr, AndExpr and OrExpr; other packages may inspect them (the SQL
// backend compiles them) but cannot add new ones.
type Expr interface {
	match(rec Record) (bool, error)
	isExpr()
}

// EqExpr matches records whose Field strictly equals Value. Only JSON
// scalars (string, number, bool, null) can be equal; an absent field never is.
type EqExpr struct {
	Field string
	Value any
}

// RegexExpr matches records whose string Field contains Pattern, ignoring case.
type RegexExpr struct {
	Field   string
	Pattern string
}

// AnyInExpr matches records whose list Field has an element containing any
// of Candidates, ignoring case.
type AnyInExpr struct {
	Field      string
	Candidates []string
}

// AndExpr matches when every sub-expression does. An empty AndExpr matches everything.
type AndExpr struct {
	Exprs []Expr
}

// OrExpr matches when any sub-expression does. An empty OrExpr matches nothing.
type OrExpr struct {
	Exprs []Expr
}

// Eq matches records whose field equals value.
func Eq(field string, value any) Expr { return EqExpr{Field: field, Value: value} }

// Regex matches records whose field contains pattern, ignoring case.
func Regex(field, pattern string) Expr { return RegexExpr{Field: field, Pattern: pattern} }

// AnyIn matches records whose list field has an element containing any candidate.
func AnyIn(field string, candidates ...string) Expr {
	return AnyInExpr{Field: field, Candidates: candidates}
}

// And combines exprs, dropping nil entries.
func And(exprs ...Expr) Expr { return AndExpr{Exprs: compact(exprs)} }

// Or combines exprs, dropping nil entries.
func Or(exprs ...Expr) Expr { return OrExpr{Exprs: compact(exprs)} }

func (EqExpr) isExpr()    {}
func (RegexExpr) isExpr() {}
func (AnyInExpr) isExpr() {}
func (AndExpr) isExpr()   {}
func (OrExpr) isExpr()    {}

func (e EqExpr) match(rec Record) (bool, error) {
	got, ok := rec[e.Field]
	if !ok {
		return false, nil
	}
	a, ok := jsonScalar(got)
	if !ok {
		return false, nil
	}
	b, ok := jsonScalar(e.Value)
	if !ok {
		return false, nil
	}
	return a == b, nil
}

func (e RegexExpr) match(rec Record) (bool, error) {
	v := rec[e.Field]
	if v == nil {
		return false, nil
	}
	s, ok := v.(string)
	if !ok {
		return false, fieldTypeError(e.Field, v, "string")
	}
	return containsFold(s, e.Pattern), nil
}

func (e AnyInExpr) match(rec Record) (bool, error) {
	v := rec[e.Field]
	if v == nil {
		return false, nil
	}
	list, ok := v.([]any)
	if !ok {
		return false, fieldTypeError(e.Field, v, "list")
	}
	for _, elem := range list {
		s, ok := elem.(string)
		if !ok {
			return false, fieldTypeError(e.Field, elem, "list of strings")
		}
		for _, c := range e.Candidates {
			if containsFold(s, c) {
				return true, nil
			}
		}
	}
	return false, nil
}

func (e AndExpr) match(rec Record) (bool, error) {
	for _, sub := range e.Exprs {
		ok, err := sub.match(rec)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func (e OrExpr) match(rec Record) (bool, error) {
	for _, sub := range e.Exprs {
		ok, err := sub.match(rec)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// Match reports whether rec satisfies expr. A nil expr matches every record.
func Match(expr Expr, rec Record) (bool, error) {
	if expr == nil {
		return true, nil
	}
	return expr.match(rec)
}

func compact(exprs []Expr) []Expr {
	out := make([]Expr, 0, len(exprs))
	for _, e := range exprs {
		if e != nil {
			out = append(out, e)
		}
	}
	return out
}

// jsonScalar maps v onto the JSON scalar it would decode to. Named string,
// bool and numeric types are accepted so typed enums compare with stored values.
func jsonScalar(v any) (any, bool) {
	if v == nil {
		return nil, true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), true
	case reflect.Bool:
		return rv.Bool(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return nil, false
	}
}

// containsFold reports whether needle occurs in haystack under Unicode case folding.
// Casers keep state, so a fresh one is built per call.
func containsFold(haystack, needle string) bool {
	fold := cases.Fold()
	return strings.Contains(fold.String(haystack), fold.String(needle))
}

// SortKey orders results by one field. Direction is 1 for ascending and -1
// for descending.
type SortKey struct {
	Field     string
	Direction int
}

// Asc sorts by field, smallest first.
func Asc(field string) *SortKey { return &SortKey{Field: field, Direction: 1} }

// Desc sorts by field, largest first.
func Desc(field string) *SortKey { return &SortKey{Field: field, Direction: -1} }

// FindOptions controls ordering and paging. Skip and Limit apply after
// filtering and sorting; a Limit of zero means no limit.
type FindOptions struct {
	Sort  *SortKey
	Skip  int
	Limit int
}

// run filters, sorts and pages records, returning deep copies.
func run(records []Record, filter Expr, opts FindOptions) ([]Record, error) {
	matched := make([]Record, 0, len(records))
	for _, rec := range records {
		ok, err := Match(filter, rec)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, rec)
		}
	}

	sortRecords(matched, opts.Sort)
	matched = paginate(matched, opts.Skip, opts.Limit)

	out := make([]Record, len(matched))
	for i, rec := range matched {
		out[i] = rec.Clone()
	}
	return out, nil
}

// sortRecords compares the sort field of both records as timestamps. Values
// that do not parse compare equal, so sorting on a non-date field leaves the
// stored order untouched.
func sortRecords(records []Record, key *SortKey) {
	if key == nil || key.Field == "" {
		return
	}
	dir := 1.0
	if key.Direction < 0 {
		dir = -1.0
	}
	sort.SliceStable(records, func(i, j int) bool {
		a := timeValue(records[i], key.Field)
		b := timeValue(records[j], key.Field)
		d := (a - b) * dir
		return !math.IsNaN(d) && d < 0
	})
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// timeValue returns the field as milliseconds since the epoch, or NaN.
// Numbers are taken as epoch milliseconds and null as the epoch itself.
func timeValue(rec Record, field string) float64 {
	v, ok := rec[field]
	if !ok {
		return math.NaN()
	}
	switch t := v.(type) {
	case nil:
		return 0
	case float64:
		return t
	case bool:
		if t {
			return 1
		}
		return 0
	case string:
		for _, layout := range timeLayouts {
			if ts, err := time.Parse(layout, t); err == nil {
				return float64(ts.UnixMilli())
			}
		}
	}
	return math.NaN()
}

func paginate(records []Record, skip, limit int) []Record {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(records) {
		return records[:0]
	}
	records = records[skip:]
	if limit > 0 && limit < len(records) {
		records = records[:limit]
	}
	return records
}
