// internal/app/system/normalize/normalize.go
package normalize

import (
	"strings"

	"github.com/dalemusser/waffle/pantry/text"
)

// Email lower-cases and trims an address for storage and lookup.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims and collapses internal whitespace, preserving case.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Folded is the *_ci search key for a display name.
func Folded(s string) string {
	return text.Fold(Name(s))
}
