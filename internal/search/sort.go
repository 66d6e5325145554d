package search

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/ramonehamilton/cardsearch/internal/scryfall"
)

// Criterion selects the comparator used to order results.
type Criterion string

const (
	ByNone          Criterion = ""
	ByName          Criterion = "name"
	ByCMC           Criterion = "cmc"
	ByColorIdentity Criterion = "color_identity"
	ByRarity        Criterion = "rarity"
	ByLayout        Criterion = "layout"
	ByTypeLine      Criterion = "type_line"
	BySet           Criterion = "set"
	ByReleased      Criterion = "released_at"
)

// Criteria lists every selectable criterion.
var Criteria = []Criterion{ByName, ByCMC, ByColorIdentity, ByRarity, ByLayout, ByTypeLine, BySet, ByReleased}

// ParseCriterion validates a criterion name. The empty string keeps API order.
func ParseCriterion(s string) (Criterion, error) {
	c := Criterion(strings.ToLower(strings.TrimSpace(s)))
	if c == ByNone || c == "none" {
		return ByNone, nil
	}
	for _, known := range Criteria {
		if c == known {
			return c, nil
		}
	}
	return ByNone, NewValidationError(fmt.Errorf("unknown sort criterion %q", s))
}

// Direction is the sort order.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// ParseDirection validates a direction name; empty means ascending.
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case "", Ascending:
		return Ascending, nil
	case Descending:
		return Descending, nil
	default:
		return Ascending, NewValidationError(fmt.Errorf("unknown sort direction %q", s))
	}
}

// Comparator orders two cards: negative if a sorts first, positive if b does.
type Comparator func(a, b *scryfall.Card) int

// colorWeights scores identity symbols; a card's score is the sum.
var colorWeights = map[string]int{
	"C": 0,
	"W": 1,
	"U": 2,
	"B": 3,
	"R": 4,
	"G": 5,
}

// rarityRank orders the known rarities; anything else falls back to collation.
var rarityRank = map[string]int{
	"common":   0,
	"uncommon": 1,
	"rare":     2,
	"mythic":   3,
}

// comparators is the per-criterion registry. Criteria without an entry use
// fieldComparator.
var comparators = map[Criterion]func(*collate.Collator) Comparator{
	ByName:          nameComparator,
	ByCMC:           func(*collate.Collator) Comparator { return compareCMC },
	ByColorIdentity: func(*collate.Collator) Comparator { return compareColorIdentity },
	ByRarity:        rarityComparator,
}

// Sort returns a new slice ordered by criterion and direction. The sort is
// stable, and ByNone returns a copy in input order.
func Sort(cards []scryfall.Card, criterion Criterion, direction Direction) []scryfall.Card {
	out := make([]scryfall.Card, len(cards))
	copy(out, cards)
	if criterion == ByNone {
		return out
	}

	cmp := ComparatorFor(criterion, direction)
	sort.SliceStable(out, func(i, j int) bool {
		return cmp(&out[i], &out[j]) < 0
	})
	return out
}

// ComparatorFor builds the comparator for criterion. Descending negates the
// result; operands are never swapped.
func ComparatorFor(criterion Criterion, direction Direction) Comparator {
	// Collators keep internal buffers and are not safe for concurrent use.
	col := collate.New(language.English)

	var cmp Comparator
	if build, ok := comparators[criterion]; ok {
		cmp = build(col)
	} else {
		cmp = fieldComparator(col, criterion)
	}

	if direction == Descending {
		asc := cmp
		cmp = func(a, b *scryfall.Card) int { return -asc(a, b) }
	}
	return cmp
}

func nameComparator(col *collate.Collator) Comparator {
	return func(a, b *scryfall.Card) int {
		if a.Name == "" || b.Name == "" {
			return 0
		}
		return col.CompareString(stripArenaPrefix(a.Name), stripArenaPrefix(b.Name))
	}
}

// stripArenaPrefix removes the "A-" marker of rebalanced Arena reprints.
func stripArenaPrefix(name string) string {
	return strings.TrimPrefix(name, "A-")
}

func compareCMC(a, b *scryfall.Card) int {
	switch {
	case a.CMC < b.CMC:
		return -1
	case a.CMC > b.CMC:
		return 1
	default:
		return 0
	}
}

func colorScore(identity []string) int {
	score := 0
	for _, symbol := range identity {
		score += colorWeights[symbol]
	}
	return score
}

func compareColorIdentity(a, b *scryfall.Card) int {
	return colorScore(a.ColorIdentity) - colorScore(b.ColorIdentity)
}

func rarityComparator(col *collate.Collator) Comparator {
	return func(a, b *scryfall.Card) int {
		if a.Rarity == "" || b.Rarity == "" {
			return 0
		}
		rankA, okA := rarityRank[a.Rarity]
		rankB, okB := rarityRank[b.Rarity]
		if !okA || !okB {
			return col.CompareString(a.Rarity, b.Rarity)
		}
		return rankA - rankB
	}
}

// fieldComparator collates the raw string values of a field. A missing value
// on either side compares equal so the pair keeps its order.
func fieldComparator(col *collate.Collator, criterion Criterion) Comparator {
	return func(a, b *scryfall.Card) int {
		va, vb := fieldValue(a, criterion), fieldValue(b, criterion)
		if va == "" || vb == "" {
			return 0
		}
		return col.CompareString(va, vb)
	}
}

func fieldValue(card *scryfall.Card, criterion Criterion) string {
	switch criterion {
	case ByName:
		return card.Name
	case ByRarity:
		return card.Rarity
	case ByLayout:
		return card.Layout
	case ByTypeLine:
		return card.TypeLine
	case BySet:
		return card.SetCode
	case ByReleased:
		return card.ReleasedAt
	default:
		return ""
	}
}
