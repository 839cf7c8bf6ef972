// Package query assembles parameterized SQL predicates from optional filter slots.
//
// Arguments are recorded in call order. With the Question dialect the
// placeholders are positional, so callers must emit SQL fragments in the same
// order they call the builder: select-list arguments first, then filters, then
// ordering arguments.
package query

import (
	"strconv"
	"strings"

	"github.com/linkmarket/link-server/internal/normalize"
)

// SimilarityThreshold is the minimum word similarity for a fuzzy keyword match.
const SimilarityThreshold = 0.2

// Dialect selects the placeholder syntax.
type Dialect int

const (
	// Question renders positional "?" placeholders (SQLite).
	Question Dialect = iota
	// Dollar renders numbered "$n" placeholders (PostgreSQL).
	Dollar
)

// Builder accumulates WHERE conditions and their arguments.
type Builder struct {
	dialect Dialect
	conds   []string
	args    []any
}

// New returns an empty builder for d.
func New(d Dialect) *Builder {
	return &Builder{dialect: d}
}

// Arg records v and returns its placeholder.
func (b *Builder) Arg(v any) string {
	b.args = append(b.args, v)
	if b.dialect == Dollar {
		return "$" + strconv.Itoa(len(b.args))
	}
	return "?"
}

// Bind rewrites each "?" in fragment to a placeholder for the matching arg.
func (b *Builder) Bind(fragment string, args ...any) string {
	if len(args) == 0 {
		return fragment
	}
	var sb strings.Builder
	next := 0
	for _, r := range fragment {
		if r == '?' && next < len(args) {
			sb.WriteString(b.Arg(args[next]))
			next++
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// Where adds a raw condition. "?" markers in cond are bound to args in order.
func (b *Builder) Where(cond string, args ...any) *Builder {
	b.conds = append(b.conds, b.Bind(cond, args...))
	return b
}

// Eq adds "col = value" unless value is blank.
func (b *Builder) Eq(col, value string) *Builder {
	if strings.TrimSpace(value) == "" {
		return b
	}
	return b.Where(col+" = ?", value)
}

// Contains adds a normalized, accent-insensitive substring match unless value is blank.
func (b *Builder) Contains(col, value string) *Builder {
	pattern := ContainsPattern(value)
	if pattern == "" {
		return b
	}
	return b.Where(Normalized(col)+` LIKE ? ESCAPE '\'`, pattern)
}

// Fuzzy adds a keyword predicate over cols: normalized substring containment or
// word similarity above SimilarityThreshold on any column. It does nothing when
// keyword is blank.
func (b *Builder) Fuzzy(cols []string, keyword string) *Builder {
	key := normalize.Text(keyword)
	if key == "" || len(cols) == 0 {
		return b
	}
	pattern := "%" + normalize.EscapeLike(key) + "%"

	var parts []string
	for _, col := range cols {
		parts = append(parts, b.Bind(Normalized(col)+` LIKE ? ESCAPE '\'`, pattern))
	}
	for _, col := range cols {
		parts = append(parts, b.Bind("word_similarity(?, "+Normalized(col)+") > "+threshold, key))
	}
	b.conds = append(b.conds, "("+strings.Join(parts, " OR ")+")")
	return b
}

// Score returns an expression for the best word similarity of keyword over cols.
// The keyword is normalized before binding. It returns "0" when keyword is blank.
func (b *Builder) Score(cols []string, keyword string) string {
	key := normalize.Text(keyword)
	if key == "" || len(cols) == 0 {
		return "0"
	}
	exprs := make([]string, len(cols))
	for i, col := range cols {
		exprs[i] = b.Bind("word_similarity(?, "+Normalized(col)+")", key)
	}
	if len(exprs) == 1 {
		return exprs[0]
	}
	return b.greatest() + "(" + strings.Join(exprs, ", ") + ")"
}

// Tier returns a CASE expression bucketing rows of table alias by proximity to
// the viewer: 1 same neighborhood, 2 same city, 3 same country, 4 elsewhere.
// Buckets that would compare an empty viewer component are left out. It returns
// "" when the viewer has no country.
func (b *Builder) Tier(alias, country, city, neighborhood string) string {
	if strings.TrimSpace(country) == "" {
		return ""
	}
	col := func(name string) string { return alias + "." + name }

	var sb strings.Builder
	sb.WriteString("CASE")
	if city != "" && neighborhood != "" {
		sb.WriteString(b.Bind(" WHEN "+col("country")+" = ? AND "+col("city")+" = ? AND "+col("neighborhood")+" = ? THEN 1",
			country, city, neighborhood))
	}
	if city != "" {
		sb.WriteString(b.Bind(" WHEN "+col("country")+" = ? AND "+col("city")+" = ? THEN 2", country, city))
	}
	sb.WriteString(b.Bind(" WHEN "+col("country")+" = ? THEN 3", country))
	sb.WriteString(" ELSE 4 END")
	return sb.String()
}

// Conditions returns the accumulated conditions joined by AND, or "1 = 1" when empty.
func (b *Builder) Conditions() string {
	if len(b.conds) == 0 {
		return "1 = 1"
	}
	return strings.Join(b.conds, " AND ")
}

// Clause returns " WHERE <conditions>", or "" when there are none.
func (b *Builder) Clause() string {
	if len(b.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.conds, " AND ")
}

// Args returns the recorded arguments in placeholder order.
func (b *Builder) Args() []any {
	return b.args
}

// Len returns the number of recorded arguments.
func (b *Builder) Len() int {
	return len(b.args)
}

func (b *Builder) greatest() string {
	if b.dialect == Dollar {
		return "GREATEST"
	}
	return "max"
}

// Normalized wraps col in the normalize_text SQL function.
func Normalized(col string) string {
	return "normalize_text(" + col + ")"
}

// ContainsPattern returns the LIKE pattern matching value anywhere, or "" when blank.
func ContainsPattern(value string) string {
	v := normalize.Text(value)
	if v == "" {
		return ""
	}
	return "%" + normalize.EscapeLike(v) + "%"
}

// PrefixPattern returns the LIKE pattern matching values that start with prefix.
// A blank prefix matches everything.
func PrefixPattern(prefix string) string {
	return normalize.EscapeLike(normalize.Text(prefix)) + "%"
}

var threshold = strconv.FormatFloat(SimilarityThreshold, 'f', -1, 64)
