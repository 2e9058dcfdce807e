// Package source opens well documents and other inputs from local disk,
// HTTP(S) URLs or Google Cloud Storage.
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"

	"cloud.google.com/go/storage"
)

const gsPrefix = "gs://"

// Opener dispatches on the path's scheme.
type Opener struct {
	http *http.Client

	mu  sync.Mutex
	gcs *storage.Client
	own bool
}

// Option configures an Opener.
type Option func(*Opener)

// WithHTTPClient overrides the client used for http(s) paths.
func WithHTTPClient(c *http.Client) Option {
	return func(o *Opener) { o.http = c }
}

// WithStorageClient sets the client used for gs:// paths. Without it a client
// with default credentials is created on first use.
func WithStorageClient(c *storage.Client) Option {
	return func(o *Opener) { o.gcs = c }
}

// NewOpener creates an Opener.
func NewOpener(opts ...Option) *Opener {
	o := &Opener{http: http.DefaultClient}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Open returns a reader for path. The caller must close it.
func (o *Opener) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	switch {
	case strings.HasPrefix(path, gsPrefix):
		return o.openGCS(ctx, path)
	case strings.HasPrefix(path, "http://"), strings.HasPrefix(path, "https://"):
		return o.openHTTP(ctx, path)
	default:
		return os.Open(path)
	}
}

func (o *Opener) openHTTP(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := o.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("failed to fetch %s: status %d", url, resp.StatusCode)
	}
	return resp.Body, nil
}

func (o *Opener) openGCS(ctx context.Context, path string) (io.ReadCloser, error) {
	bucket, object, err := ParseGSPath(path)
	if err != nil {
		return nil, err
	}

	client, err := o.storageClient(ctx)
	if err != nil {
		return nil, err
	}

	r, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return r, nil
}

func (o *Opener) storageClient(ctx context.Context) (*storage.Client, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.gcs == nil {
		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		o.gcs, o.own = client, true
	}
	return o.gcs, nil
}

// Close releases a storage client the Opener created itself.
func (o *Opener) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.gcs != nil && o.own {
		err := o.gcs.Close()
		o.gcs, o.own = nil, false
		return err
	}
	return nil
}

// ParseGSPath splits gs://bucket/object into its parts.
func ParseGSPath(path string) (bucket, object string, err error) {
	parts := strings.SplitN(strings.TrimPrefix(path, gsPrefix), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid google storage path %q: want gs://bucket/object", path)
	}
	return parts[0], parts[1], nil
}
