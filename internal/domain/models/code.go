package models

import (
	"fmt"
	"strings"
)

// CodeFormat holds the separator literals used when assembling batch codes.
// The fragments themselves are fixed; only the separators vary by lab.
type CodeFormat struct {
	Sep1 string
	Sep2 string
}

// DefaultCodeFormat returns the separators used on current label stock.
func DefaultCodeFormat() CodeFormat {
	return CodeFormat{Sep1: "-", Sep2: "-"}
}

// BatchCode derives the printable batch identifier: last two digits of the
// year, the first two characters of the recipe name (fewer when the name is
// shorter), the zero-padded week, the day digit, and the unpadded preparation
// number. The function is pure: identical inputs always yield the same code.
// Uniqueness across the table is not guaranteed here; insertion enforces it.
func (f CodeFormat) BatchCode(year int, recipeName string, week, day, preparation int) string {
	prefix := recipeName
	if runes := []rune(recipeName); len(runes) > 2 {
		prefix = string(runes[:2])
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%02d%s", year%100, prefix)
	sb.WriteString(f.Sep1)
	fmt.Fprintf(&sb, "%02d%d", week, day)
	sb.WriteString(f.Sep2)
	fmt.Fprintf(&sb, "%d", preparation)
	return sb.String()
}
