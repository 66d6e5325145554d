package scryfall

import (
	"fmt"
	"strings"
)

// Color codes as they appear in a card's color_identity. Colorless is the
// achromatic sentinel: it never appears in color_identity, it stands for an
// empty identity.
const (
	Colorless = ""
	White     = "W"
	Blue      = "U"
	Black     = "B"
	Red       = "R"
	Green     = "G"
)

// AllColors lists every recognized code in canonical order (colorless, then WUBRG).
var AllColors = []string{Colorless, White, Blue, Black, Red, Green}

// IsColor reports whether code is a recognized color code.
func IsColor(code string) bool {
	for _, c := range AllColors {
		if c == code {
			return true
		}
	}
	return false
}

// CanonicalColors upper-cases, de-duplicates and orders codes canonically.
// Unrecognized codes are dropped. "C" is accepted as an alias of Colorless.
func CanonicalColors(codes []string) []string {
	seen := make(map[string]bool, len(codes))
	for _, code := range codes {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code == "C" {
			code = Colorless
		}
		if IsColor(code) {
			seen[code] = true
		}
	}

	out := make([]string, 0, len(seen))
	for _, c := range AllColors {
		if seen[c] {
			out = append(out, c)
		}
	}
	return out
}

// SplitColors splits a compact ("WU") or separated ("W,U", "c,r") color list
// into its raw codes without checking them. A single "C" means colorless.
func SplitColors(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	if strings.ContainsAny(s, ", ") {
		return strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	}
	codes := make([]string, 0, len(s))
	for _, r := range s {
		codes = append(codes, string(r))
	}
	return codes
}

// CheckColors returns an error naming the first code that is neither a color
// nor "C".
func CheckColors(codes []string) error {
	for _, code := range codes {
		c := strings.ToUpper(strings.TrimSpace(code))
		if c != "C" && !IsColor(c) {
			return fmt.Errorf("unknown color %q: use W, U, B, R, G or C", code)
		}
	}
	return nil
}
