package openapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tkestack/paramcheck/pkg/schema"
)

// SourceKind enumerates where a plan schema document can be read from.
type SourceKind string

const (
	SourceKindFile SourceKind = "file"
	SourceKindFS   SourceKind = "fs"
	SourceKindURL  SourceKind = "url"
)

// Source identifies a plan schema document.
type Source struct {
	Kind     SourceKind
	Location string
}

// SourceFromFile returns a Source pointing to a file path.
func SourceFromFile(path string) Source {
	return Source{Kind: SourceKindFile, Location: filepath.Clean(path)}
}

// SourceFromFS returns a Source identifying a document inside an fs.FS.
func SourceFromFS(name string) Source {
	return Source{Kind: SourceKindFS, Location: name}
}

// SourceFromURL validates raw and returns an HTTP(S) Source.
func SourceFromURL(raw string) (Source, error) {
	if raw == "" {
		return Source{}, errors.New("openapi: empty URL source")
	}
	if _, err := url.ParseRequestURI(raw); err != nil {
		return Source{}, fmt.Errorf("openapi: invalid URL %q: %w", raw, err)
	}
	return Source{Kind: SourceKindURL, Location: raw}, nil
}

// ParseSource treats http:// and https:// locations as URLs and anything else
// as a file path.
func ParseSource(location string) (Source, error) {
	lower := strings.ToLower(location)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return SourceFromURL(location)
	}
	if strings.TrimSpace(location) == "" {
		return Source{}, errors.New("openapi: source location is required")
	}
	return SourceFromFile(location), nil
}

// Reader fetches schema documents. HTTP sources are disabled unless a client
// is configured.
type Reader struct {
	fs      fs.FS
	http    *http.Client
	timeout time.Duration
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithFileSystem resolves SourceKindFS locations against files.
func WithFileSystem(files fs.FS) ReaderOption {
	return func(r *Reader) {
		r.fs = files
	}
}

// WithHTTPClient enables URL sources using client.
func WithHTTPClient(client *http.Client) ReaderOption {
	return func(r *Reader) {
		r.http = client
	}
}

// WithRequestTimeout caps remote fetch durations.
func WithRequestTimeout(timeout time.Duration) ReaderOption {
	return func(r *Reader) {
		r.timeout = timeout
	}
}

// NewReader constructs a Reader.
func NewReader(options ...ReaderOption) *Reader {
	r := &Reader{}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Read returns the raw bytes behind src.
func (r *Reader) Read(ctx context.Context, src Source) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch src.Kind {
	case SourceKindFile:
		if src.Location == "" {
			return nil, errors.New("openapi: file path is required")
		}
		data, err := os.ReadFile(src.Location)
		if err != nil {
			return nil, fmt.Errorf("openapi: read %s: %w", src.Location, err)
		}
		return data, nil
	case SourceKindFS:
		if r.fs == nil {
			return nil, errors.New("openapi: filesystem is not configured")
		}
		data, err := fs.ReadFile(r.fs, src.Location)
		if err != nil {
			return nil, fmt.Errorf("openapi: read %s: %w", src.Location, err)
		}
		return data, nil
	case SourceKindURL:
		if r.http == nil {
			return nil, errors.New("openapi: http support disabled")
		}
		return r.fetch(ctx, src.Location)
	default:
		return nil, fmt.Errorf("openapi: unsupported source kind %q", src.Kind)
	}
}

func (r *Reader) fetch(ctx context.Context, location string) ([]byte, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("openapi: build request: %w", err)
	}
	resp, err := r.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openapi: fetch %s: %w", location, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("openapi: fetch %s: unexpected status %s", location, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("openapi: fetch %s: %w", location, err)
	}
	return data, nil
}

// Import reads src and converts its parameter schema into field schemas.
func (r *Reader) Import(ctx context.Context, src Source, options ...Option) ([]schema.FieldSchema, error) {
	data, err := r.Read(ctx, src)
	if err != nil {
		return nil, err
	}
	return FieldsFromSchema(ctx, data, options...)
}
