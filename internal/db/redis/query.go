package redis

import (
	"fmt"
	"strings"

	"github.com/citygrid/placedex/internal/domain/query"
)

// buildQueryString translates a structured query into FT.SEARCH syntax
// (DIALECT 2). Tag filters are AND-ed; the text clause OR-s the weighted
// field sub-clauses so that the best-scoring field match wins per document.
func buildQueryString(q query.Query) string {
	var parts []string

	for _, t := range q.Tags() {
		parts = append(parts, buildTagFilter(t))
	}

	if q.Text() != "" {
		parts = append(parts, buildTextClause(q.Text(), q.TextFields()))
	}

	if len(parts) == 0 {
		return "*"
	}
	return strings.Join(parts, " ")
}

// buildTagFilter renders @field:{v1|v2}, OR within the value set.
func buildTagFilter(t query.TagFilter) string {
	escaped := make([]string, len(t.Values))
	for i, v := range t.Values {
		escaped[i] = tagEscaper.Replace(v)
	}
	return fmt.Sprintf("@%s:{%s}", t.Field, strings.Join(escaped, "|"))
}

// buildTextClause renders the fuzzy multi-field text clause with per-field
// weight attributes.
func buildTextClause(text string, fields []query.WeightedField) string {
	terms := fuzzyTerms(text)
	clauses := make([]string, len(fields))
	for i, f := range fields {
		clauses[i] = fmt.Sprintf("@%s:(%s) => { $weight: %g }", f.Field, terms, f.Weight)
	}
	return "(" + strings.Join(clauses, " | ") + ")"
}

// fuzzyTerms wraps each whitespace-separated term in %...% for typo-tolerant
// (Levenshtein distance 1) matching.
func fuzzyTerms(text string) string {
	words := strings.Fields(text)
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = "%" + escapeQuery(w) + "%"
	}
	return strings.Join(out, " ")
}

var tagEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	" ", "\\ ",
)

func escapeQuery(s string) string {
	return queryEscaper.Replace(s)
}

var queryEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`%`, `\%`,
	`^`, `\^`,
	`$`, `\$`,
	`<`, `\<`,
	`>`, `\>`,
	`=`, `\=`,
	`;`, `\;`,
	`+`, `\+`,
)
