package payload

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	"github.com/jwaldner/mtts/internal/models"
)

var (
	// ErrInvalidPayload is returned when the document is not a results payload
	ErrInvalidPayload = errors.New("invalid results payload")
	// ErrFetchFailed is returned when the payload cannot be read or downloaded
	ErrFetchFailed = errors.New("fetch results payload")
)

// DefaultTimeout bounds a single HTTP fetch
const DefaultTimeout = 15 * time.Second

// Parse validates the shape of raw and decodes it.
func Parse(raw []byte) (*models.Results, error) {
	if !gjson.ValidBytes(raw) {
		return nil, errors.Wrap(ErrInvalidPayload, "not valid JSON")
	}
	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() {
		return nil, errors.Wrap(ErrInvalidPayload, "top level is not an object")
	}
	if !doc.Get("metadata").IsObject() {
		return nil, errors.Wrap(ErrInvalidPayload, "metadata object missing")
	}
	if !doc.Get("data").IsArray() {
		return nil, errors.Wrap(ErrInvalidPayload, "data array missing")
	}

	var res models.Results
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, errors.Wrapf(ErrInvalidPayload, "decode: %v", err)
	}
	if res.Data == nil {
		res.Data = []models.StockData{}
	}
	return &res, nil
}

// LoadFile reads and parses the payload at path.
func LoadFile(path string) (*models.Results, []byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errors.Wrapf(ErrFetchFailed, "read %s: %v", path, err)
	}
	res, err := Parse(raw)
	if err != nil {
		return nil, nil, errors.WithMessage(err, path)
	}
	return res, raw, nil
}

// Fetcher downloads payloads over HTTP. It never retries; a failed fetch
// leaves the caller's current payload in place.
type Fetcher struct {
	client *resty.Client
}

// NewFetcher returns a fetcher with the given per-request timeout
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "mtts")
	return &Fetcher{client: client}
}

// Fetch downloads and parses the payload at url.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*models.Results, []byte, error) {
	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, nil, errors.Wrapf(ErrFetchFailed, "GET %s: %v", url, err)
	}
	if !resp.IsSuccess() {
		return nil, nil, errors.Wrapf(ErrFetchFailed, "GET %s: %s", url, resp.Status())
	}
	raw := resp.Body()
	res, err := Parse(raw)
	if err != nil {
		return nil, nil, errors.WithMessage(err, url)
	}
	return res, raw, nil
}

// IsURL reports whether source names an http(s) location
func IsURL(source string) bool {
	s := strings.ToLower(source)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Loader reads payloads from a file path or URL
type Loader struct {
	fetcher *Fetcher
}

// NewLoader returns a loader whose HTTP fetches use timeout
func NewLoader(timeout time.Duration) *Loader {
	return &Loader{fetcher: NewFetcher(timeout)}
}

// Load picks the file or HTTP path based on source.
func (l *Loader) Load(ctx context.Context, source string) (*models.Results, []byte, error) {
	if source == "" {
		return nil, nil, errors.Wrap(ErrFetchFailed, "no source configured")
	}
	if IsURL(source) {
		return l.fetcher.Fetch(ctx, source)
	}
	return LoadFile(source)
}
