package graphs

import (
	"regexp"
	"strings"
)

var (
	writeClause = regexp.MustCompile(`(?i)\b(CREATE|MERGE|DELETE|DETACH|SET|REMOVE|DROP|ALTER|LOAD\s+CSV|COPY|INSTALL|ATTACH)\b`)
	stringLit   = regexp.MustCompile(`'(?:[^'\\]|\\.)*'|"(?:[^"\\]|\\.)*"|` + "`[^`]*`")
	lineComment = regexp.MustCompile(`//[^\n]*`)
)

// IsWriteQuery reports whether a Cypher statement contains a clause that
// modifies data or schema. String literals, quoted identifiers and line
// comments are ignored.
func IsWriteQuery(query string) bool {
	stripped := stringLit.ReplaceAllString(query, "''")
	stripped = lineComment.ReplaceAllString(stripped, "")
	return writeClause.MatchString(strings.TrimSpace(stripped))
}
