package assets

import (
	"context"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

var (
	// ErrNotAudio is returned when an asset is served with a non-audio content type.
	ErrNotAudio = errors.New("asset is not audio")
	// ErrEmptyAsset is returned when an asset has no content.
	ErrEmptyAsset = errors.New("asset is empty")
	// ErrAssetTooLarge is returned when an asset exceeds the size limit.
	ErrAssetTooLarge = errors.New("asset exceeds size limit")
)

// Response is a fetched asset.
type Response struct {
	URL           string
	StatusCode    int
	ContentType   string // Media type without parameters
	ContentLength int64  // -1 when unknown
	Body          []byte
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.http = hc
	}
}

// WithMaxBytes limits how much of a body is read.
func WithMaxBytes(n int64) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.maxBytes = n
		}
	}
}

// Client fetches assets over HTTP, resolving relative paths against a base URL.
type Client struct {
	http     *http.Client
	base     *url.URL
	maxBytes int64
}

// NewClient creates a client for baseURL.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid asset base url %q", baseURL)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, errors.Newf("asset base url %q must be http or https", baseURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	c := &Client{
		http:     &http.Client{Timeout: 30 * time.Second},
		base:     base,
		maxBytes: 64 << 20,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Resolve turns an asset path into an absolute URL.
func (c *Client) Resolve(assetPath string) (string, error) {
	ref, err := url.Parse(assetPath)
	if err != nil {
		return "", errors.Wrapf(err, "invalid asset path %q", assetPath)
	}
	return c.base.ResolveReference(ref).String(), nil
}

// Get requests an asset. Non-2xx responses are returned without error and without body.
func (c *Client) Get(ctx context.Context, assetPath string) (*Response, error) {
	u, err := c.Resolve(assetPath)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build asset request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch %s", u)
	}
	defer resp.Body.Close()

	out := &Response{
		URL:           u,
		StatusCode:    resp.StatusCode,
		ContentType:   mediaType(resp.Header.Get("Content-Type")),
		ContentLength: resp.ContentLength,
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return out, nil
	}

	if resp.ContentLength > c.maxBytes {
		return out, errors.Wrapf(ErrAssetTooLarge, "%s: %d bytes", u, resp.ContentLength)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return out, errors.Wrapf(err, "failed to read %s", u)
	}
	if int64(len(body)) > c.maxBytes {
		return out, errors.Wrapf(ErrAssetTooLarge, "%s", u)
	}
	out.Body = body
	return out, nil
}

// Fetch returns the body and content type of a playable asset.
func (c *Client) Fetch(ctx context.Context, assetPath string) ([]byte, string, error) {
	resp, err := c.Get(ctx, assetPath)
	if err != nil {
		return nil, "", err
	}
	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return nil, "", errors.Wrapf(ErrAssetNotFound, "%s", resp.URL)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, "", errors.Wrapf(ErrAssetNotFound, "%s: status %d", resp.URL, resp.StatusCode)
	case !IsAudioContentType(resp.ContentType):
		return nil, "", errors.Wrapf(ErrNotAudio, "%s: %s", resp.URL, resp.ContentType)
	case len(resp.Body) == 0:
		return nil, "", errors.Wrapf(ErrEmptyAsset, "%s", resp.URL)
	}
	return resp.Body, resp.ContentType, nil
}

// IsAudioContentType reports whether a media type denotes audio.
func IsAudioContentType(ct string) bool {
	ct = mediaType(ct)
	return strings.HasPrefix(ct, "audio/") || ct == "application/ogg"
}

func mediaType(header string) string {
	if header == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(header)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(header))
	}
	return mt
}
