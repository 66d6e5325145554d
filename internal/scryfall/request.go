package scryfall

import (
	"net/url"
	"strings"
)

const searchPath = "/cards/search"

// Request is an immutable snapshot of one search submission: the text the user
// typed and the options that shape the remote query. Every URL and cache key
// for an aggregation run is derived from it.
type Request struct {
	Query          string   `json:"query"`
	Exact          bool     `json:"exact,omitempty"`
	Colors         []string `json:"colors,omitempty"`
	IncludeDigital bool     `json:"include_digital,omitempty"`
}

// Normalize collapses whitespace in the query and puts colors in canonical order.
func (r Request) Normalize() Request {
	r.Query = strings.Join(strings.Fields(r.Query), " ")
	r.Colors = CanonicalColors(r.Colors)
	return r
}

// IsEmpty reports whether the request has neither query text nor colors.
func (r Request) IsEmpty() bool {
	n := r.Normalize()
	return n.Query == "" && len(n.Colors) == 0
}

// Terms returns the query terms without the color clause.
func (r Request) Terms() string {
	n := r.Normalize()

	var parts []string
	if !n.IncludeDigital {
		parts = append(parts, "not:digital")
	}
	if n.Query != "" {
		if n.Exact {
			parts = append(parts, exactName(n.Query))
		} else {
			parts = append(parts, n.Query)
		}
	}
	return strings.Join(parts, " ")
}

// SearchTerms returns the full value of the q parameter.
func (r Request) SearchTerms() string {
	terms := r.Terms()
	if codes := colorClause(r.Normalize().Colors); codes != "" {
		clause := `c="` + codes + `"`
		if terms == "" {
			return clause
		}
		return terms + " " + clause
	}
	return terms
}

// URL builds the first-page search URL against base.
func (r Request) URL(base string) string {
	v := url.Values{}
	v.Set("q", r.SearchTerms())
	return strings.TrimRight(base, "/") + searchPath + "?" + v.Encode()
}

// KeyQuery is the query component of a cache key: the lower-cased terms
// without the color clause.
func (r Request) KeyQuery() string {
	return strings.ToLower(r.Terms())
}

// KeyColors is the color component of a cache key. Colorless is written as "C"
// so it does not vanish in the concatenation.
func (r Request) KeyColors() string {
	var b strings.Builder
	for _, c := range r.Normalize().Colors {
		if c == Colorless {
			b.WriteString("C")
			continue
		}
		b.WriteString(c)
	}
	return b.String()
}

// PrintsURL builds the single-page URL listing every printing of an exact card
// name, oldest release first.
func PrintsURL(base, name string, includeDigital bool) string {
	q := exactName(strings.Join(strings.Fields(name), " ")) + " include:extras"
	if !includeDigital {
		q = "not:digital " + q
	}

	v := url.Values{}
	v.Set("dir", "asc")
	v.Set("order", "released")
	v.Set("q", q)
	v.Set("unique", "prints")
	return strings.TrimRight(base, "/") + searchPath + "?" + v.Encode()
}

// PageParam extracts the page query parameter of a search URL, "1" when absent.
func PageParam(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "1"
	}
	if page := u.Query().Get("page"); page != "" {
		return page
	}
	return "1"
}

func exactName(name string) string {
	return `!"` + strings.ReplaceAll(name, `"`, ``) + `"`
}

// colorClause concatenates the colored codes. Colorless only contributes "C"
// when it is the whole selection; mixed with colors it would contradict them.
func colorClause(colors []string) string {
	var b strings.Builder
	colorless := false
	for _, c := range colors {
		if c == Colorless {
			colorless = true
			continue
		}
		b.WriteString(c)
	}
	if b.Len() == 0 && colorless {
		return "C"
	}
	return b.String()
}
