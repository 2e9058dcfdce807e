package ports

import (
	"context"
	"io"
)

// WellSource opens the raw CSV document of a single well.
type WellSource interface {
	Open(ctx context.Context, wellID string) (io.ReadCloser, error)
}
