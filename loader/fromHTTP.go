package loader

import (
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/robbyt/go-coffeescript/internal/helpers"
)

const userAgent = "go-coffeescript/http-loader"

// HTTPAuthType selects how FromHTTP authenticates.
type HTTPAuthType string

const (
	// NoAuth sends no credentials.
	NoAuth HTTPAuthType = "none"
	// BasicAuth uses Username and Password from HTTPOptions.
	BasicAuth HTTPAuthType = "basic"
	// HeaderAuth relies on Headers, e.g. Headers["Authorization"] = "Bearer ...".
	HeaderAuth HTTPAuthType = "header"
)

// HTTPOptions configures FromHTTP. Start from DefaultHTTPOptions.
type HTTPOptions struct {
	// Timeout bounds each request. Default 30 seconds.
	Timeout time.Duration

	// TLSConfig overrides the transport's TLS configuration.
	TLSConfig *tls.Config

	// InsecureSkipVerify disables certificate verification. Test environments only.
	InsecureSkipVerify bool

	AuthType HTTPAuthType
	Username string
	Password string

	// Headers are sent with every request.
	Headers map[string]string
}

// DefaultHTTPOptions returns a 30 second timeout, verified TLS and no authentication.
func DefaultHTTPOptions() *HTTPOptions {
	return &HTTPOptions{
		Timeout:  30 * time.Second,
		AuthType: NoAuth,
		Headers:  make(map[string]string),
	}
}

// FromHTTP fetches a script from an http:// or https:// URL, for example a compiler
// script published on a CDN.
type FromHTTP struct {
	url       string
	sourceURL *url.URL
	options   *HTTPOptions
	client    *http.Client
}

// NewFromHTTP creates an HTTP loader with DefaultHTTPOptions.
func NewFromHTTP(rawURL string) (*FromHTTP, error) {
	return NewFromHTTPWithOptions(rawURL, DefaultHTTPOptions())
}

// NewFromHTTPWithOptions creates an HTTP loader with custom options.
func NewFromHTTPWithOptions(rawURL string, options *HTTPOptions) (*FromHTTP, error) {
	sourceURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse URL: %w", err)
	}

	if sourceURL.Scheme != "http" && sourceURL.Scheme != "https" {
		return nil, fmt.Errorf("%w: %s", ErrSchemeUnsupported, rawURL)
	}

	if options == nil {
		options = DefaultHTTPOptions()
	}

	client := &http.Client{
		Timeout: options.Timeout,
	}

	if options.InsecureSkipVerify || options.TLSConfig != nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		if options.TLSConfig != nil {
			transport.TLSClientConfig = options.TLSConfig
		} else {
			transport.TLSClientConfig = &tls.Config{
				InsecureSkipVerify: true,
			}
		}
		client.Transport = transport
	}

	return &FromHTTP{
		url:       rawURL,
		sourceURL: sourceURL,
		options:   options,
		client:    client,
	}, nil
}

// GetReader performs the GET request and returns the response body.
// Non-2xx responses are reported as ErrScriptNotAvailable.
func (l *FromHTTP) GetReader() (io.ReadCloser, error) {
	req, err := http.NewRequest(http.MethodGet, l.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range l.options.Headers {
		req.Header.Set(key, value)
	}
	if l.options.AuthType == BasicAuth && l.options.Username != "" {
		req.SetBasicAuth(l.options.Username, l.options.Password)
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute HTTP request: %w", ErrScriptNotAvailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: HTTP %d - %s", ErrScriptNotAvailable, resp.StatusCode, resp.Status)
	}

	return resp.Body, nil
}

// GetSourceURL returns the source URL.
func (l *FromHTTP) GetSourceURL() *url.URL {
	return l.sourceURL
}

func (l *FromHTTP) String() string {
	noChkSum := fmt.Sprintf("loader.FromHTTP{URL: %s}", l.url)

	reader, err := l.GetReader()
	if err != nil {
		return noChkSum
	}
	defer reader.Close()

	chksum, err := helpers.SHA256Reader(reader)
	if err != nil {
		return noChkSum
	}

	return fmt.Sprintf("loader.FromHTTP{URL: %s, SHA256: %s}", l.url, chksum[:8])
}
