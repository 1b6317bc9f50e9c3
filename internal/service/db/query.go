package database

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/stacklok/entries-server/internal/service"
)

// entryColumns maps queryable entry attributes to their columns. Any other
// field is read from the data document.
var entryColumns = map[string]string{
	"id":         "id",
	"collection": "collection",
	"locale":     "locale",
	"site":       "locale",
	"slug":       "slug",
	"published":  "published",
	"blueprint":  "blueprint",
	"date":       "date",
	"origin":     "origin_id",
	"author":     "author",
	"updated_at": "updated_at",
	"created_at": "created_at",
}

// nonTextColumns hold booleans or timestamps and are never lowercased.
var nonTextColumns = map[string]bool{
	"published":  true,
	"updated_at": true,
	"created_at": true,
}

const entrySelectColumns = `id, collection, locale, slug, published, blueprint, data, date,
	origin_id, author, updated_by, created_at, updated_at`

// queryBuilder accumulates positional arguments while an entry query is
// translated to SQL.
type queryBuilder struct {
	args []any
}

func (b *queryBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

// where translates the scope and conditions of the query into a WHERE clause
// body. Conditions are conjunctive.
func (b *queryBuilder) where(q *service.EntryQuery) (string, error) {
	clauses := []string{"TRUE"}
	if q.Collection != "" {
		clauses = append(clauses, "collection = "+b.arg(q.Collection))
	}
	if q.Site != "" {
		clauses = append(clauses, "locale = "+b.arg(q.Site))
	}
	if q.IDs != nil {
		clauses = append(clauses, "id = ANY("+b.arg(q.IDs)+"::text[])")
	}
	for _, c := range q.Conditions {
		clause, err := b.condition(c)
		if err != nil {
			return "", err
		}
		clauses = append(clauses, clause)
	}
	return strings.Join(clauses, " AND "), nil
}

func (b *queryBuilder) condition(c service.Condition) (string, error) {
	if col, ok := entryColumns[c.Field]; ok {
		return b.columnCondition(c, col)
	}
	return b.dataCondition(c)
}

func (b *queryBuilder) columnCondition(c service.Condition, col string) (string, error) {
	text := "COALESCE(" + col + "::text, '')"
	switch c.Operator {
	case service.OpEquals, service.OpNotEquals, service.OpContains:
		expr := col + " = " + b.columnValue(c.Field, c.Value)
		if c.Value == nil {
			expr = col + " IS NULL"
		}
		if c.Operator == service.OpNotEquals {
			return "NOT (" + expr + ")", nil
		}
		return expr, nil
	case service.OpGreater:
		return col + " > " + b.columnValue(c.Field, c.Value) + collate(c.Field), nil
	case service.OpLess:
		return col + " < " + b.columnValue(c.Field, c.Value) + collate(c.Field), nil
	case service.OpLike:
		return text + " ILIKE " + b.arg(stringValue(c.Value)), nil
	case service.OpGlob:
		return text + " SIMILAR TO " + b.arg(GlobToSimilar(stringValue(c.Value))), nil
	case service.OpNotGlob:
		return text + " NOT SIMILAR TO " + b.arg(GlobToSimilar(stringValue(c.Value))), nil
	case service.OpIn:
		return text + " = ANY(" + b.arg(stringValues(c.Value)) + "::text[])", nil
	}
	return "", fmt.Errorf("unsupported operator: %s", c.Operator)
}

func (b *queryBuilder) columnValue(field string, value any) string {
	switch field {
	case "published":
		v, _ := toBool(value)
		return b.arg(v)
	case "updated_at", "created_at":
		if t, ok := value.(time.Time); ok {
			return b.arg(t)
		}
		return b.arg(stringValue(value)) + "::timestamptz"
	}
	return b.arg(stringValue(value))
}

func collate(field string) string {
	if nonTextColumns[field] {
		return ""
	}
	return ` COLLATE "C"`
}

func (b *queryBuilder) dataCondition(c service.Condition) (string, error) {
	key := b.arg(c.Field)
	raw := "(data -> " + key + ")"
	text := "(data ->> " + key + ")"
	switch c.Operator {
	case service.OpEquals, service.OpNotEquals:
		var expr string
		switch v := c.Value.(type) {
		case nil:
			expr = "(" + raw + " IS NULL OR jsonb_typeof(" + raw + ") = 'null')"
		case string:
			expr = "COALESCE(" + text + " = " + b.arg(v) + ", FALSE)"
		default:
			doc, err := json.Marshal(v)
			if err != nil {
				return "", fmt.Errorf("invalid value for %s: %w", c.Field, err)
			}
			expr = "COALESCE(" + raw + " = " + b.arg(string(doc)) + "::jsonb, FALSE)"
		}
		if c.Operator == service.OpNotEquals {
			return "NOT " + expr, nil
		}
		return expr, nil
	case service.OpGreater, service.OpLess:
		op := ">"
		if c.Operator == service.OpLess {
			op = "<"
		}
		if n, ok := toFloat(c.Value); ok {
			return "CASE WHEN jsonb_typeof(" + raw + ") = 'number' THEN (" + text + ")::numeric " + op + " " +
				b.arg(n) + " ELSE FALSE END", nil
		}
		return "COALESCE(" + text + " " + op + " " + b.arg(stringValue(c.Value)) + ` COLLATE "C", FALSE)`, nil
	case service.OpLike:
		return "COALESCE(" + text + ", '') ILIKE " + b.arg(stringValue(c.Value)), nil
	case service.OpGlob:
		return "COALESCE(" + text + ", '') SIMILAR TO " + b.arg(GlobToSimilar(stringValue(c.Value))), nil
	case service.OpNotGlob:
		return "COALESCE(" + text + ", '') NOT SIMILAR TO " + b.arg(GlobToSimilar(stringValue(c.Value))), nil
	case service.OpIn:
		return "COALESCE(" + text + ", '') = ANY(" + b.arg(stringValues(c.Value)) + "::text[])", nil
	case service.OpContains:
		doc, err := json.Marshal([]any{c.Value})
		if err != nil {
			return "", fmt.Errorf("invalid value for %s: %w", c.Field, err)
		}
		return "(CASE WHEN jsonb_typeof(" + raw + ") = 'array' THEN " + raw + " ELSE jsonb_build_array(" + raw +
			") END) @> " + b.arg(string(doc)) + "::jsonb", nil
	}
	return "", fmt.Errorf("unsupported operator: %s", c.Operator)
}

// orderBy returns the ORDER BY clause body. Strings sort case-insensitively,
// missing values first, and ties break on id.
func (b *queryBuilder) orderBy(q *service.EntryQuery) string {
	switch {
	case q.SortField != "":
	case q.IDs != nil:
		return "array_position(" + b.arg(q.IDs) + "::text[], id), id"
	default:
		return "id"
	}

	dir := "ASC"
	missing := "DESC"
	if q.SortDirection == service.SortDesc {
		dir, missing = "DESC", "ASC"
	}

	if col, ok := entryColumns[q.SortField]; ok {
		if nonTextColumns[q.SortField] {
			return col + " " + dir + ", id"
		}
		return "lower(" + col + `) COLLATE "C" ` + dir + ", id"
	}

	key := b.arg(q.SortField)
	raw := "(data -> " + key + ")"
	text := "(data ->> " + key + ")"
	return strings.Join([]string{
		"(" + raw + " IS NULL) " + missing,
		"CASE WHEN jsonb_typeof(" + raw + ") = 'number' THEN (" + text + ")::numeric END " + dir + " NULLS LAST",
		"lower(" + text + `) COLLATE "C" ` + dir,
		"id",
	}, ", ")
}

// GlobToSimilar converts a glob pattern into a SQL SIMILAR TO pattern.
// Wildcards, alternations and character classes are translated; SQL
// pattern characters are escaped.
func GlobToSimilar(pattern string) string {
	var b strings.Builder
	inClass := false
	escaped := false
	braces := 0
	for _, r := range pattern {
		switch {
		case escaped:
			b.WriteString(escapeSimilar(r))
			escaped = false
		case r == '\\':
			escaped = true
		case inClass:
			if r == ']' {
				inClass = false
			}
			if r == '!' && strings.HasSuffix(b.String(), "[") {
				r = '^'
			}
			b.WriteRune(r)
		case r == '[':
			inClass = true
			b.WriteRune(r)
		case r == '*':
			b.WriteString("%")
		case r == '?':
			b.WriteString("_")
		case r == '{':
			braces++
			b.WriteString("(")
		case r == '}' && braces > 0:
			braces--
			b.WriteString(")")
		case r == ',' && braces > 0:
			b.WriteString("|")
		default:
			b.WriteString(escapeSimilar(r))
		}
	}
	return b.String()
}

func escapeSimilar(r rune) string {
	switch r {
	case '%', '_', '|', '(', ')', '+', '[', ']', '{', '}', '\\', '*', '?':
		return `\` + string(r)
	}
	return string(r)
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

func stringValues(v any) []string {
	switch l := v.(type) {
	case []string:
		return l
	case []any:
		out := make([]string, len(l))
		for i, item := range l {
			out[i] = stringValue(item)
		}
		return out
	}
	return []string{stringValue(v)}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
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
