package importer

import "strings"

// FileStem converts an asset name into a safe file name stem.
//
// Postcondition: result contains only [A-Za-z0-9_-], is never empty, and is
// idempotent (FileStem(FileStem(s)) == FileStem(s)).
func FileStem(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r == '_' || r == '-',
			r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "room"
	}
	return b.String()
}
