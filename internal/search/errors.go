package search

import (
	"errors"
	"fmt"

	"github.com/ramonehamilton/cardsearch/internal/scryfall"
)

// ErrorKind classifies pipeline failures for display.
type ErrorKind int

const (
	// KindValidation means the request was rejected before any network call.
	KindValidation ErrorKind = iota + 1
	// KindNotFound means the remote answered 404 (no matches).
	KindNotFound
	// KindTransport covers every other failure: network, non-404 status, decode.
	KindTransport
)

// String returns the wire name of the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// User-facing messages.
const (
	MsgNoCards  = "No cards found. Your search didn't match any cards, please try again."
	MsgNoPrints = "No prints found for this card."
)

var (
	// ErrEmptySearch rejects an empty query combined with no color selection.
	ErrEmptySearch = errors.New("enter a card name or select at least one color")

	// ErrEmptyName rejects a prints lookup without a card name.
	ErrEmptyName = errors.New("card name is required")

	// ErrAllColorsExcluded rejects excluding every color at once.
	ErrAllColorsExcluded = errors.New("cannot exclude every color at once")
)

// Error is a classified pipeline error carrying a user-facing message.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewValidationError wraps err as a validation failure.
func NewValidationError(err error) *Error {
	return &Error{Kind: KindValidation, Message: err.Error(), Err: err}
}

// Classify maps a raw failure into the error taxonomy. notFoundMsg is the
// friendly message used for a remote 404; it differs per channel.
func Classify(err error, notFoundMsg string) *Error {
	if err == nil {
		return nil
	}

	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}

	if scryfall.IsNotFound(err) {
		return &Error{Kind: KindNotFound, Message: notFoundMsg, Err: err}
	}

	return &Error{Kind: KindTransport, Message: fmt.Sprintf("An error occurred: %v", err), Err: err}
}

// KindOf returns the kind of a classified error, or 0 for anything else.
func KindOf(err error) ErrorKind {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Kind
	}
	return 0
}
