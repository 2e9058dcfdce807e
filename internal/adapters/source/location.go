package source

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// WellPlaceholder is replaced by the well ID in a location template.
const WellPlaceholder = "%s"

// DefaultTemplate matches the layout written by the plate reader.
const DefaultTemplate = "data/Individual_wells_data/well_%s_absorbance.csv"

// Location resolves well IDs against a path template.
type Location struct {
	template string
	opener   *Opener
}

// NewLocation creates a Location. The template must contain WellPlaceholder.
func NewLocation(template string, opener *Opener) (*Location, error) {
	if !strings.Contains(template, WellPlaceholder) {
		return nil, fmt.Errorf("location template %q has no %s placeholder", template, WellPlaceholder)
	}
	if opener == nil {
		opener = NewOpener()
	}
	return &Location{template: template, opener: opener}, nil
}

// Path returns the resolved path of a well document.
func (l *Location) Path(wellID string) string {
	return strings.ReplaceAll(l.template, WellPlaceholder, wellID)
}

// Open opens the well's document.
func (l *Location) Open(ctx context.Context, wellID string) (io.ReadCloser, error) {
	return l.opener.Open(ctx, l.Path(wellID))
}

// String returns the template.
func (l *Location) String() string {
	return l.template
}
