// Package transport is the http client a virtual user browses the site with.
package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"
	"umami-loadtest/internal/components/assert"
	"umami-loadtest/internal/components/telemetry"
	"umami-loadtest/internal/visit"

	"github.com/go-resty/resty/v2"
	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"
)

const (
	DefaultUserAgent = "umami-loadtest/1.0"
	DefaultTimeout   = 30 * time.Second
)

type Options struct {
	Host      string
	UserAgent string
	Timeout   time.Duration
	// RequestsPerSecond limits how fast this client sends requests, 0 means unlimited.
	RequestsPerSecond float64
	// Dump receives every request and response as text when it is not nil.
	Dump Output
}

// Client implements visit.Fetcher. It keeps its own cookie jar, so it should be used by a
// single virtual user.
type Client struct {
	http *resty.Client
	tel  telemetry.API
	dump *dumper
}

func New(opts Options, tel telemetry.API) (*Client, error) {
	assert.NotEmptyStr(opts.Host)
	assert.NotNil(tel)

	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(opts.Host)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	httpClient.SetCookieJar(jar)
	httpClient.SetHeader("user-agent", opts.UserAgent)
	httpClient.SetTimeout(opts.Timeout)

	if opts.RequestsPerSecond > 0 {
		// burst of at least 1 so no request is ever rejected, only delayed
		burst := max(1, int(opts.RequestsPerSecond))
		rateLimiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
		httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return rateLimiter.Wait(req.Context())
		})
	}

	telemetry.InstrumentResty(httpClient, tel)

	client := &Client{
		http: httpClient,
		tel:  tel,
	}
	if opts.Dump != nil {
		client.dump = &dumper{output: opts.Dump}
	}
	return client, nil
}

func (c *Client) Get(ctx context.Context, path, name string) (visit.Page, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(path)
	return c.page(res, path, name, "", err)
}

func (c *Client) Post(ctx context.Context, form visit.Form, name string) (visit.Page, error) {
	body := form.Encode()
	res, err := c.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		SetHeader("content-type", "application/x-www-form-urlencoded").
		SetBody(body).
		Post(form.Path)
	return c.page(res, form.Path, name, body, err)
}

func (c *Client) page(res *resty.Response, path, name, requestBody string, err error) (visit.Page, error) {
	if err != nil {
		if res != nil && res.RawResponse != nil {
			res.RawResponse.Body.Close()
		}
		return visit.Page{URL: path}, fmt.Errorf("%w: %w", visit.ErrNoResponse, err)
	}

	body := res.RawBody()
	defer body.Close()

	out := visit.Page{
		URL:        res.Request.URL,
		StatusCode: res.StatusCode(),
		Header:     res.Header(),
	}
	if res.RawResponse.Request != nil {
		// the url after redirects
		out.URL = res.RawResponse.Request.URL.String()
	}

	utf8Reader, err := charset.NewReader(body, res.Header().Get("Content-Type"))
	if err != nil {
		return out, fmt.Errorf("%w: %w", visit.ErrDecode, err)
	}
	text, err := io.ReadAll(utf8Reader)
	if err != nil {
		return out, fmt.Errorf("%w: %w", visit.ErrDecode, err)
	}
	out.Body = string(text)
	if c.dump != nil {
		c.dump.write(name, res, requestBody, out)
	}

	if out.StatusCode >= http.StatusBadRequest {
		c.tel.ReportDebug("error status", "name", name, "url", out.URL, "status", out.StatusCode)
	}
	return out, nil
}
