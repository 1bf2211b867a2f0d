package parquet

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/pkg/errors"
)

// ByteSource abstracts a file or HTTP range-addressable blob, per
// spec.md §4.1. Slicing may be asynchronous; the core never reads
// outside a range it requested.
type ByteSource interface {
	// Size returns the total byte length of the underlying blob.
	Size() int64
	// ReadRange returns bytes [start, end). 0 <= start <= end <= Size().
	ReadRange(ctx context.Context, start, end int64) ([]byte, error)
}

// FileByteSource adapts an io.ReaderAt (typically *os.File) to ByteSource.
type FileByteSource struct {
	r    io.ReaderAt
	size int64
}

// NewFileByteSource wraps r, whose total length must be size.
func NewFileByteSource(r io.ReaderAt, size int64) *FileByteSource {
	return &FileByteSource{r: r, size: size}
}

func (f *FileByteSource) Size() int64 { return f.size }

func (f *FileByteSource) ReadRange(ctx context.Context, start, end int64) ([]byte, error) {
	if start < 0 || end < start || end > f.size {
		return nil, newErrf(ErrTruncatedInput, "invalid range [%d, %d) for size %d", start, end, f.size)
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	buf := make([]byte, end-start)
	if _, err := f.r.ReadAt(buf, start); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "reading file range")
	}
	return buf, nil
}

// HTTPByteSource issues Range: GET requests against a URL, per spec.md
// §4.1's "file/HTTP range-addressable blob".
type HTTPByteSource struct {
	client *http.Client
	url    string
	size   int64
}

// NewHTTPByteSource probes url with a HEAD request to learn its size.
func NewHTTPByteSource(ctx context.Context, client *http.Client, url string) (*HTTPByteSource, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "building HEAD request")
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "probing remote file size")
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("HEAD %s: unexpected status %d", url, resp.StatusCode)
	}
	return &HTTPByteSource{client: client, url: url, size: resp.ContentLength}, nil
}

func (h *HTTPByteSource) Size() int64 { return h.size }

func (h *HTTPByteSource) ReadRange(ctx context.Context, start, end int64) ([]byte, error) {
	if start < 0 || end < start || end > h.size {
		return nil, newErrf(ErrTruncatedInput, "invalid range [%d, %d) for size %d", start, end, h.size)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "building range request")
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", start, end-1))

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "issuing range request")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusPartialContent && resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: unexpected status %d", h.url, resp.StatusCode)
	}

	buf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "reading range response body")
	}
	if int64(len(buf)) != end-start {
		return nil, newErrf(ErrTruncatedInput, "range response returned %d bytes, wanted %d", len(buf), end-start)
	}
	return buf, nil
}
