package provider

import (
	"errors"
	"fmt"

	hwerrors "github.com/rileyhilliard/hwdash/internal/errors"
)

// ErrUnavailable marks a metric the bound device does not expose. Samplers
// treat it like any other transient failure.
var ErrUnavailable = errors.New("not available")

func wrapQuery(what string, err error) error {
	return fmt.Errorf("%s: %w", what, err)
}

func bindError(backend string, err error, suggestion string) error {
	return hwerrors.WrapWithCode(err, hwerrors.ErrProvider,
		fmt.Sprintf("Couldn't open GPU backend %q", backend),
		suggestion)
}
