package scryfall

import (
	"errors"
	"fmt"
)

// Card represents one search result from Scryfall.
//
// Only ID, Name, ColorIdentity, CMC, Rarity and Layout are used by the result
// pipeline. The remaining fields are carried through untouched for whatever
// renders the displayed slice.
type Card struct {
	// Core fields
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	ColorIdentity []string `json:"color_identity"`
	CMC           float64  `json:"cmc"`
	Rarity        string   `json:"rarity"`
	Layout        string   `json:"layout"`

	// Display details
	ManaCost        string     `json:"mana_cost,omitempty"`
	TypeLine        string     `json:"type_line,omitempty"`
	Keywords        []string   `json:"keywords,omitempty"`
	SetCode         string     `json:"set,omitempty"`
	SetName         string     `json:"set_name,omitempty"`
	CollectorNumber string     `json:"collector_number,omitempty"`
	ReleasedAt      string     `json:"released_at,omitempty"`
	Digital         bool       `json:"digital,omitempty"`
	ImageURIs       *ImageURIs `json:"image_uris,omitempty"`
	CardFaces       []CardFace `json:"card_faces,omitempty"`
	AllParts        []CardPart `json:"all_parts,omitempty"`
}

// CardFace represents one face of a multi-faced card.
type CardFace struct {
	Name      string     `json:"name"`
	ManaCost  string     `json:"mana_cost,omitempty"`
	TypeLine  string     `json:"type_line,omitempty"`
	ImageURIs *ImageURIs `json:"image_uris,omitempty"`
}

// CardPart is a related card object (meld parts, tokens).
type CardPart struct {
	ID        string `json:"id"`
	Component string `json:"component"`
	Name      string `json:"name"`
}

// ImageURIs contains URLs for card images in various sizes.
type ImageURIs struct {
	Small   string `json:"small,omitempty"`
	Normal  string `json:"normal,omitempty"`
	Large   string `json:"large,omitempty"`
	PNG     string `json:"png,omitempty"`
	ArtCrop string `json:"art_crop,omitempty"`
}

// Page is one decoded page of a card search.
type Page struct {
	Data       []Card `json:"data"`
	TotalCards int    `json:"total_cards"`
	HasMore    bool   `json:"has_more"`
	NextPage   string `json:"next_page,omitempty"`
}

// apiError is the error body Scryfall returns for non-2xx responses.
type apiError struct {
	Object  string `json:"object"`
	Code    string `json:"code"`
	Status  int    `json:"status"`
	Details string `json:"details"`
}

// NetworkError is returned for any failed round trip. Status is the HTTP status
// code, or 0 when the request never produced a usable response (transport
// failure, unreadable or undecodable body).
type NetworkError struct {
	Status  int
	Message string
	URL     string
	Err     error
}

// Error implements the error interface for NetworkError.
func (e *NetworkError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("request to %s failed: %s", e.URL, e.Message)
	}
	return fmt.Sprintf("Scryfall API error (HTTP %d): %s", e.Status, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsNotFound returns true if err is a NetworkError carrying HTTP 404.
func IsNotFound(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr) && netErr.Status == 404
}
