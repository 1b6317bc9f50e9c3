package service

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gobwas/glob"

	"github.com/stacklok/entries-server/internal/dates"
)

// Operator compares an entry field with a condition value.
type Operator string

// Supported condition operators
const (
	OpEquals    Operator = "="
	OpNotEquals Operator = "!="
	OpLike      Operator = "like"
	OpGreater   Operator = ">"
	OpLess      Operator = "<"
	OpGlob      Operator = "glob"
	OpNotGlob   Operator = "not glob"
	OpIn        Operator = "in"
	OpContains  Operator = "contains"
)

// ParseOperator validates an operator name.
func ParseOperator(op string) (Operator, error) {
	switch o := Operator(strings.ToLower(strings.TrimSpace(op))); o {
	case OpEquals, OpNotEquals, OpLike, OpGreater, OpLess, OpGlob, OpNotGlob, OpIn, OpContains:
		return o, nil
	case "":
		return OpEquals, nil
	case "==":
		return OpEquals, nil
	case "<>":
		return OpNotEquals, nil
	}
	return "", fmt.Errorf("unsupported operator: %s", op)
}

// Condition restricts a query on one field.
type Condition struct {
	Field    string
	Operator Operator
	Value    any
}

// EntryQuery describes a filtered, sorted and paginated entry lookup.
// Conditions are conjunctive and kept in the order they were added.
type EntryQuery struct {
	Collection    string
	Site          string
	IDs           []string
	Conditions    []Condition
	SortField     string
	SortDirection string
	Page          int
	PerPage       int
}

// NewEntryQuery starts a query over one collection.
func NewEntryQuery(collection string) *EntryQuery {
	return &EntryQuery{Collection: collection, Page: 1, PerPage: DefaultPerPage}
}

// Where adds a condition.
func (q *EntryQuery) Where(field string, op Operator, value any) *EntryQuery {
	q.Conditions = append(q.Conditions, Condition{Field: field, Operator: op, Value: value})
	return q
}

// OrderBy sets the sort.
func (q *EntryQuery) OrderBy(field, direction string) *EntryQuery {
	q.SortField = field
	q.SortDirection = direction
	return q
}

// Offset returns the number of entries skipped before the current page.
func (q *EntryQuery) Offset() int {
	if q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.PerPage
}

// EntryPage is one page of query results.
type EntryPage struct {
	Entries []*Entry
	Total   int
	Page    int
	PerPage int
}

// LastPage returns the number of the last page, at least 1.
func (p *EntryPage) LastPage() int {
	if p.PerPage <= 0 || p.Total == 0 {
		return 1
	}
	return (p.Total + p.PerPage - 1) / p.PerPage
}

// Matches evaluates the query's scope and conditions against an entry.
func (q *EntryQuery) Matches(e *Entry) (bool, error) {
	if q.Collection != "" && e.Collection != q.Collection {
		return false, nil
	}
	if q.Site != "" && e.Locale != q.Site {
		return false, nil
	}
	if q.IDs != nil && !slices.Contains(q.IDs, e.ID) {
		return false, nil
	}
	for _, c := range q.Conditions {
		ok, err := c.Matches(e)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// Matches evaluates the condition against an entry.
func (c Condition) Matches(e *Entry) (bool, error) {
	actual := e.Value(c.Field)
	switch c.Operator {
	case OpEquals:
		return compareValues(actual, c.Value) == 0, nil
	case OpNotEquals:
		return compareValues(actual, c.Value) != 0, nil
	case OpGreater:
		return actual != nil && compareValues(actual, c.Value) > 0, nil
	case OpLess:
		return actual != nil && compareValues(actual, c.Value) < 0, nil
	case OpLike:
		g, err := glob.Compile(LikeToGlob(strings.ToLower(stringValue(c.Value))))
		if err != nil {
			return false, fmt.Errorf("invalid like pattern %q: %w", c.Value, err)
		}
		return g.Match(strings.ToLower(stringValue(actual))), nil
	case OpGlob:
		g, err := glob.Compile(stringValue(c.Value))
		if err != nil {
			return false, fmt.Errorf("invalid glob pattern %q: %w", c.Value, err)
		}
		return g.Match(stringValue(actual)), nil
	case OpNotGlob:
		g, err := glob.Compile(stringValue(c.Value))
		if err != nil {
			return false, fmt.Errorf("invalid glob pattern %q: %w", c.Value, err)
		}
		return !g.Match(stringValue(actual)), nil
	case OpIn:
		for _, v := range toSlice(c.Value) {
			if compareValues(actual, v) == 0 {
				return true, nil
			}
		}
		return false, nil
	case OpContains:
		for _, v := range toSlice(actual) {
			if compareValues(v, c.Value) == 0 {
				return true, nil
			}
		}
		return false, nil
	}
	return false, fmt.Errorf("unsupported operator: %s", c.Operator)
}

// LikeToGlob converts a SQL LIKE pattern into a glob pattern. Glob meta
// characters in the pattern are matched literally.
func LikeToGlob(pattern string) string {
	var b strings.Builder
	var literal strings.Builder
	flush := func() {
		b.WriteString(glob.QuoteMeta(literal.String()))
		literal.Reset()
	}
	for _, r := range pattern {
		switch r {
		case '%':
			flush()
			b.WriteString("*")
		case '_':
			flush()
			b.WriteString("?")
		default:
			literal.WriteRune(r)
		}
	}
	flush()
	return b.String()
}

// SortEntries sorts entries in place by a field. Ties break on id so the
// order is stable across calls.
func SortEntries(entries []*Entry, field, direction string) {
	slices.SortStableFunc(entries, func(a, b *Entry) int {
		c := compareValues(sortValue(a, field), sortValue(b, field))
		if direction == SortDesc {
			c = -c
		}
		if c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// Paginate slices an ordered result set according to the query.
func Paginate(entries []*Entry, q *EntryQuery) *EntryPage {
	page := &EntryPage{Total: len(entries), Page: max(q.Page, 1), PerPage: q.PerPage}
	if q.PerPage <= 0 {
		page.PerPage = DefaultPerPage
	}
	start := min((page.Page-1)*page.PerPage, len(entries))
	end := min(start+page.PerPage, len(entries))
	page.Entries = entries[start:end]
	return page
}

// NormalizeDate turns a submitted date into its sortable stored form.
func NormalizeDate(date string) string {
	return dates.Normalize(date)
}

func sortValue(e *Entry, field string) any {
	v := e.Value(field)
	if s, ok := v.(string); ok {
		return strings.ToLower(s)
	}
	return v
}

// compareValues orders nil first, then numbers, booleans, times and strings
// of the same kind. Mixed kinds compare by their string form.
func compareValues(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return cmp.Compare(fa, fb)
		}
	}
	if ba, ok := a.(bool); ok {
		bb, ok := toBool(b)
		if ok {
			switch {
			case ba == bb:
				return 0
			case !ba:
				return -1
			default:
				return 1
			}
		}
	}
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb)
		}
	}
	return strings.Compare(stringValue(a), stringValue(b))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func toBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		parsed, err := strconv.ParseBool(b)
		return parsed, err == nil
	}
	return false, false
}

func stringValue(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case time.Time:
		return s.Format(time.RFC3339)
	}
	return fmt.Sprint(v)
}

func toSlice(v any) []any {
	switch l := v.(type) {
	case []any:
		return l
	case []string:
		out := make([]any, len(l))
		for i, s := range l {
			out[i] = s
		}
		return out
	}
	return []any{v}
}
