package streamflux

import (
	"errors"
	"fmt"

	"github.com/hupe1980/streamflux/catalog"
	"github.com/hupe1980/streamflux/snapshot"
)

var (
	// ErrLoadFailed is returned when catalog construction fails. A failed
	// load never yields a partially usable engine.
	ErrLoadFailed = errors.New("load failed")

	// ErrEmptyCatalog is returned when an engine is created without a
	// catalog.
	ErrEmptyCatalog = errors.New("catalog is nil")
)

// ErrMalformedInput reports an unparseable stream definition.
//
// The underlying record error can be accessed via errors.Unwrap.
type ErrMalformedInput struct {
	Line  int
	cause error
}

func (e *ErrMalformedInput) Error() string {
	return fmt.Sprintf("malformed stream input on line %d", e.Line)
}

func (e *ErrMalformedInput) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var mr *catalog.ErrMalformedRecord
	if errors.As(err, &mr) {
		return fmt.Errorf("%w: %w", ErrLoadFailed, &ErrMalformedInput{Line: mr.Line, cause: err})
	}
	if errors.Is(err, catalog.ErrLoad) || errors.Is(err, snapshot.ErrInvalidSnapshot) {
		return fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	return err
}
