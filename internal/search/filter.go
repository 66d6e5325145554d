package search

import "github.com/ramonehamilton/cardsearch/internal/scryfall"

// ColorSet is a set of color codes; scryfall.Colorless ("") is a valid member.
type ColorSet map[string]struct{}

// NewColorSet builds a set from codes, canonicalizing them first.
func NewColorSet(codes ...string) ColorSet {
	set := make(ColorSet, len(codes))
	for _, code := range scryfall.CanonicalColors(codes) {
		set[code] = struct{}{}
	}
	return set
}

// Has reports membership.
func (s ColorSet) Has(code string) bool {
	_, ok := s[code]
	return ok
}

// Codes returns the members in canonical order.
func (s ColorSet) Codes() []string {
	out := make([]string, 0, len(s))
	for _, code := range scryfall.AllColors {
		if s.Has(code) {
			out = append(out, code)
		}
	}
	return out
}

// ValidateExclusion rejects a selection that would exclude every color.
func ValidateExclusion(excluded ColorSet) error {
	for _, code := range scryfall.AllColors {
		if !excluded.Has(code) {
			return nil
		}
	}
	return NewValidationError(ErrAllColorsExcluded)
}

// Excluded reports whether card is removed by the exclusion set: colorless
// cards when the colorless sentinel is excluded, colored cards when any one of
// their identity colors is excluded.
func Excluded(card scryfall.Card, excluded ColorSet) bool {
	if len(card.ColorIdentity) == 0 {
		return excluded.Has(scryfall.Colorless)
	}
	for _, color := range card.ColorIdentity {
		if excluded.Has(color) {
			return true
		}
	}
	return false
}

// Filter returns the cards not removed by the exclusion set, in input order.
// The input slice is not modified.
func Filter(cards []scryfall.Card, excluded ColorSet) []scryfall.Card {
	out := make([]scryfall.Card, 0, len(cards))
	for _, card := range cards {
		if !Excluded(card, excluded) {
			out = append(out, card)
		}
	}
	return out
}
