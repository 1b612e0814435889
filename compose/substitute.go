package compose

import (
	"regexp"
	"strings"
)

// Row is one recipient record as seen by the substitution engine.
// Columns must be returned in header declaration order.
type Row interface {
	Columns() []string
	Lookup(column string) (string, bool)
}

// Fields is an ordered Row literal, handy for tests and single sends.
type Fields []Field

// Field is a single column/value pair.
type Field struct {
	Name  string
	Value string
}

func (f Fields) Columns() []string {
	cols := make([]string, len(f))
	for i, field := range f {
		cols[i] = field.Name
	}
	return cols
}

func (f Fields) Lookup(column string) (string, bool) {
	for _, field := range f {
		if field.Name == column {
			return field.Value, true
		}
	}
	return "", false
}

// Token returns the placeholder token for a column name.
func Token(column string) string {
	return "{" + column + "}"
}

// Substitute replaces every {Column} token with the row's value for Column.
// Missing or empty values become the empty string. Tokens naming no column of
// the row are left in place. Columns are processed in declaration order and
// the replacement is literal, so column names and values may contain any
// characters.
func Substitute(template string, row Row) string {
	return substitute(template, row, func(string) string { return "" })
}

// SubstituteWithFallback is Substitute with a custom replacement for missing
// or empty values.
func SubstituteWithFallback(template string, row Row, fallback func(column string) string) string {
	return substitute(template, row, fallback)
}

func substitute(template string, row Row, fallback func(string) string) string {
	if row == nil {
		return template
	}

	out := template
	for _, col := range row.Columns() {
		token := Token(col)
		if !strings.Contains(out, token) {
			continue
		}
		val, ok := row.Lookup(col)
		if !ok || val == "" {
			val = fallback(col)
		}
		out = strings.ReplaceAll(out, token, val)
	}
	return out
}

// Sample values used by Preview when no recipients are loaded.
const (
	SampleName  = "John Doe"
	SampleEmail = "john@example.com"
)

// Preview renders a template for on-screen inspection. With a row it behaves
// like Substitute but shows [Column] for missing values; without a row it
// fills the {Name} and {Email} sample tokens. Never use it for sending.
func Preview(template string, row Row) string {
	if row == nil {
		out := strings.ReplaceAll(template, Token("Name"), SampleName)
		return strings.ReplaceAll(out, Token("Email"), SampleEmail)
	}
	return substitute(template, row, func(col string) string { return "[" + col + "]" })
}

var placeholderRe = regexp.MustCompile(`\{([^{}\s:;]+)\}`)

// Placeholders lists the distinct token names found in template, in order of
// first appearance.
func Placeholders(template string) []string {
	matches := placeholderRe.FindAllStringSubmatch(template, -1)
	seen := make(map[string]struct{}, len(matches))
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		names = append(names, m[1])
	}
	return names
}

// Unmatched returns the placeholders in template that have no column in columns.
func Unmatched(template string, columns []string) []string {
	known := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		known[c] = struct{}{}
	}
	var missing []string
	for _, name := range Placeholders(template) {
		if _, ok := known[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}
