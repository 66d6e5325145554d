package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/ramonehamilton/cardsearch/internal/scryfall"
	"github.com/ramonehamilton/cardsearch/internal/session"
)

// displayResults prints the displayed page of a search.
func displayResults(w io.Writer, st session.State) {
	if st.Query != nil {
		fmt.Fprintf(w, "Search: %s\n", describeQuery(*st.Query))
	}
	if len(st.Excluded) > 0 {
		fmt.Fprintf(w, "Excluding: %s\n", colorList(st.Excluded))
	}
	if st.Sort != "" {
		fmt.Fprintf(w, "Sorted by %s (%s)\n", st.Sort, st.Direction)
	}
	fmt.Fprintln(w)

	if st.Total == 0 {
		fmt.Fprintln(w, "No cards to show.")
		return
	}

	for i, card := range st.Displayed {
		n := (st.Page-1)*st.PageSize + i + 1
		fmt.Fprintf(w, "%4d. %-40s %-12s %-10s %s\n",
			n, card.Name, identity(card), card.Rarity, strings.ToUpper(card.SetCode))
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Page %d of %d (%d cards shown of %d fetched)\n",
		st.Page, st.TotalPages, st.Total, st.Fetched)
}

// displayPrints prints the printings of one card, oldest first.
func displayPrints(w io.Writer, st session.PrintsState) {
	fmt.Fprintf(w, "Prints of %s\n", st.Name)
	fmt.Fprintln(w)

	for _, card := range st.Prints {
		fmt.Fprintf(w, "  %-10s %-6s #%-6s %s\n",
			card.ReleasedAt, strings.ToUpper(card.SetCode), card.CollectorNumber, card.SetName)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%d of %d prints\n", len(st.Prints), st.TotalPrints)
}

func describeQuery(req scryfall.Request) string {
	var parts []string
	if req.Query != "" {
		q := req.Query
		if req.Exact {
			q = fmt.Sprintf("%q (exact)", q)
		}
		parts = append(parts, q)
	}
	if len(req.Colors) > 0 {
		parts = append(parts, "colors "+colorList(req.Colors))
	}
	return strings.Join(parts, ", ")
}

func colorList(codes []string) string {
	out := make([]string, len(codes))
	for i, c := range codes {
		if c == scryfall.Colorless {
			c = "C"
		}
		out[i] = c
	}
	return strings.Join(out, ",")
}

func identity(card scryfall.Card) string {
	if len(card.ColorIdentity) == 0 {
		return "C"
	}
	return strings.Join(card.ColorIdentity, "")
}
