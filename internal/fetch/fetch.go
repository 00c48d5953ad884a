package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gocolly/colly/v2"
)

const (
	// DefaultUserAgent identifies the tool to the sites it visits
	DefaultUserAgent = "Mozilla/5.0 (compatible; grantflow/1.0; +https://grantflow.vercel.app)"

	// DefaultTimeout is used when Options.Timeout is not set
	DefaultTimeout = 15 * time.Second
)

// ErrInvalidURL is returned for URLs that are not absolute http(s) URLs
var ErrInvalidURL = errors.New("invalid url")

// Error describes a failed fetch
type Error struct {
	URL    string
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
	}
	if e.Err == nil {
		return fmt.Sprintf("fetching %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetching %s: status %d: %v", e.URL, e.Status, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Result is the outcome of a single GET. Exactly one of Body (on success)
// or Err (on failure) is meaningful.
type Result struct {
	URL    string
	Status int
	Body   []byte
	Err    *Error
}

// OK reports whether the page was fetched with status 200
func (r Result) OK() bool {
	return r.Err == nil
}

// Options configures a Fetcher
type Options struct {
	UserAgent     string
	Timeout       time.Duration
	RespectRobots bool
}

// Fetcher performs single, unretried GET requests
type Fetcher struct {
	userAgent     string
	timeout       time.Duration
	respectRobots bool
}

// New creates a Fetcher, filling unset options with defaults
func New(opts Options) *Fetcher {
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Fetcher{
		userAgent:     opts.UserAgent,
		timeout:       opts.Timeout,
		respectRobots: opts.RespectRobots,
	}
}

// Timeout returns the per-request timeout
func (f *Fetcher) Timeout() time.Duration {
	return f.timeout
}

// Get fetches rawURL. It never returns a Go error; failures are reported in
// Result.Err so callers can log them and move on.
func (f *Fetcher) Get(ctx context.Context, rawURL string) Result {
	res := Result{URL: rawURL}

	if err := validateURL(rawURL); err != nil {
		res.Err = &Error{URL: rawURL, Err: err}
		return res
	}
	if err := ctx.Err(); err != nil {
		res.Err = &Error{URL: rawURL, Err: err}
		return res
	}

	c := f.newCollector(ctx)

	var reqErr error
	c.OnResponse(func(r *colly.Response) {
		res.Status = r.StatusCode
		res.Body = append([]byte(nil), r.Body...)
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			res.Status = r.StatusCode
		}
		reqErr = err
	})

	err := c.Request(http.MethodGet, rawURL, nil, colly.NewContext(), nil)
	if err == nil {
		err = reqErr
	}
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	if err == nil && res.Status != http.StatusOK {
		err = fmt.Errorf("unexpected status %d", res.Status)
	}
	if err != nil {
		res.Body = nil
		res.Err = &Error{URL: rawURL, Status: res.Status, Err: err}
	}

	return res
}

func (f *Fetcher) newCollector(ctx context.Context) *colly.Collector {
	c := colly.NewCollector(
		colly.UserAgent(f.userAgent),
		colly.AllowURLRevisit(),
	)
	c.IgnoreRobotsTxt = !f.respectRobots
	c.SetRequestTimeout(f.timeout)

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
		}
	})

	return c
}

func validateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}
	return nil
}
