package sdf

import "github.com/pkg/errors"

// ErrNoModelInformation is returned when a document contains no usable model.
var ErrNoModelInformation = errors.New("no model information found in document")

// NewShapeError returns an error indicating that a space-delimited vector did
// not contain the expected number of components.
func NewShapeError(what string, want, got int) error {
	return errors.Errorf("%s: expected %d components, got %d", what, want, got)
}

// NewCanonicalLinkNotFoundError returns an error indicating that a model
// declares a canonical link that is not among its links.
func NewCanonicalLinkNotFoundError(model, link string) error {
	return errors.Errorf("canonical link %q of model %q not found among its links", link, model)
}

// NewNoLinksError returns an error indicating that a model declares no links
// at all, so no canonical link can be selected.
func NewNoLinksError(model string) error {
	return errors.Errorf("model %q has no links", model)
}
