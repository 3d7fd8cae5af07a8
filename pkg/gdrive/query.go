package gdrive

import (
	"fmt"
	"strings"

	"github.com/drivesync/drivesync/pkg/remote"
)

// buildQuery compiles a structured predicate into the Drive query
// mini-language. All string values pass through escapeValue, so callers
// never interpolate raw strings into a query.
func buildQuery(q remote.Query) string {
	var parts []string
	if q.Name != "" {
		parts = append(parts, fmt.Sprintf("name = '%s'", escapeValue(q.Name)))
	}
	if q.ParentID != "" {
		parts = append(parts, fmt.Sprintf("'%s' in parents", escapeValue(q.ParentID)))
	}
	if q.OnlyFolders {
		parts = append(parts, fmt.Sprintf("mimeType = '%s'", remote.MimeTypeFolder))
	}
	return strings.Join(parts, " and ")
}

// escapeValue escapes the quote and escape characters of the Drive query
// language. Backslashes must be doubled before quotes are escaped.
func escapeValue(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return s
}
