package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/net/proxy"
	"golang.org/x/time/rate"

	"github.com/nao1215/gravestash/internal/config"
)

// maxRedirects bounds redirect chains.
const maxRedirects = 10

// Options configures a Fetcher.
type Options struct {
	// UserAgent is sent with every request.
	UserAgent string

	// Cookie is added to the Cookie header of every request.
	Cookie string

	// ProxyAddress routes requests through a SOCKS5 proxy when non-empty.
	ProxyAddress string

	// Timeout bounds a single attempt.
	Timeout time.Duration

	// Attempts is the total number of requests made for one page.
	Attempts int

	// RetryPauseMin and RetryPauseMax bound the random wait between attempts.
	RetryPauseMin time.Duration
	RetryPauseMax time.Duration

	// RequestsPerSecond caps the request rate. Zero or less means no cap.
	RequestsPerSecond float64

	// MaxBodySize caps the bytes read from a response body.
	MaxBodySize int64
}

// OptionsFromConfig copies the request settings out of cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		UserAgent:         cfg.UserAgent,
		Cookie:            cfg.ConsentCookie,
		ProxyAddress:      cfg.ProxyAddress,
		Timeout:           cfg.Timeout,
		Attempts:          cfg.FetchAttempts,
		RetryPauseMin:     cfg.RetryPauseMin,
		RetryPauseMax:     cfg.RetryPauseMax,
		RequestsPerSecond: cfg.RequestsPerSecond,
		MaxBodySize:       cfg.MaxBodySize,
	}
}

// Option configures optional Fetcher behaviour.
type Option func(*Fetcher)

// WithLogger sets the logger for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// WithTransport replaces the base round tripper. The cookie injecting
// wrapper is still applied on top of it.
func WithTransport(rt http.RoundTripper) Option {
	return func(f *Fetcher) {
		f.base = rt
	}
}

// Fetcher retrieves pages one at a time.
// It is safe for concurrent use, but the crawler never calls it concurrently.
type Fetcher struct {
	client  *resty.Client
	limiter *rate.Limiter
	opts    Options
	base    http.RoundTripper
	logger  *slog.Logger
}

// New creates a Fetcher from opts.
func New(opts Options, options ...Option) (*Fetcher, error) {
	if opts.Attempts < 1 {
		opts.Attempts = 1
	}
	if opts.MaxBodySize <= 0 {
		opts.MaxBodySize = config.DefaultMaxBodySize
	}

	f := &Fetcher{
		opts:   opts,
		logger: slog.Default(),
	}
	for _, o := range options {
		o(f)
	}

	if f.base == nil {
		transport, err := newTransport(opts.ProxyAddress)
		if err != nil {
			return nil, err
		}
		f.base = transport
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	f.limiter = rate.NewLimiter(limit, 1)

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	client := resty.New()
	client.SetTransport(&headerInjectingTransport{
		base:    f.base,
		cookie:  opts.Cookie,
		maxBody: opts.MaxBodySize,
	})
	client.SetCookieJar(jar)
	client.SetLogger(&restyLogger{logger: f.logger})
	client.SetTimeout(opts.Timeout)
	client.SetRedirectPolicy(resty.FlexibleRedirectPolicy(maxRedirects))
	if opts.UserAgent != "" {
		client.SetHeader("User-Agent", opts.UserAgent)
	}

	client.SetRetryCount(opts.Attempts - 1)
	client.SetRetryWaitTime(opts.RetryPauseMin)
	client.SetRetryMaxWaitTime(opts.RetryPauseMax)
	client.SetRetryAfter(func(_ *resty.Client, _ *resty.Response) (time.Duration, error) {
		// resty falls back to its own backoff on a zero wait.
		return max(RandomDuration(opts.RetryPauseMin, opts.RetryPauseMax), time.Nanosecond), nil
	})
	client.AddRetryCondition(func(res *resty.Response, err error) bool {
		return err != nil || res.StatusCode() != http.StatusOK
	})

	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		if err := f.limiter.Wait(req.Context()); err != nil {
			return err
		}
		f.logger.Debug("requesting page",
			"url", req.URL,
			"attempt", req.Attempt,
			"cookie", opts.Cookie,
		)
		return nil
	})
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		f.logger.Debug("response received",
			"url", res.Request.URL,
			"status", res.StatusCode(),
			"bytes", len(res.Body()),
			"elapsed", res.Time(),
		)
		return nil
	})

	f.client = client
	return f, nil
}

// Fetch returns the body of rawURL. Transport failures and non-200 answers
// are retried; when the budget is spent a *FetchError is returned. A
// cancelled context is returned as is.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	res, err := f.client.R().SetContext(ctx).Get(rawURL)

	attempts := f.opts.Attempts
	if res != nil && res.Request != nil && res.Request.Attempt > 0 {
		attempts = res.Request.Attempt
	}

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		fe := &FetchError{URL: rawURL, Attempts: attempts, Err: err}
		if res != nil && res.RawResponse != nil {
			fe.StatusCode = res.StatusCode()
		}
		return nil, fe
	}

	if res.StatusCode() != http.StatusOK {
		return nil, &FetchError{
			URL:        rawURL,
			StatusCode: res.StatusCode(),
			Attempts:   attempts,
			Err:        ErrUnexpectedStatus,
		}
	}

	body := res.Body()
	if int64(len(body)) > f.opts.MaxBodySize {
		return nil, &FetchError{
			URL:        rawURL,
			StatusCode: res.StatusCode(),
			Attempts:   attempts,
			Err:        ErrBodyTooLarge,
		}
	}
	return body, nil
}

// newTransport builds the base transport, dialing through a SOCKS5 proxy
// when proxyAddress is set.
func newTransport(proxyAddress string) (http.RoundTripper, error) {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     90 * time.Second,
	}
	if proxyAddress == "" {
		return transport, nil
	}

	if !isValidProxyAddress(proxyAddress) {
		return nil, ErrInvalidProxyAddress
	}
	dialer, err := proxy.SOCKS5("tcp", proxyAddress, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}

	transport.Proxy = nil
	transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
		if cd, ok := dialer.(proxy.ContextDialer); ok {
			return cd.DialContext(ctx, network, addr)
		}
		return dialer.Dial(network, addr)
	}
	return transport, nil
}

// isValidProxyAddress checks the "host:port" form with a port in 1..65535.
func isValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	return err == nil && n >= 1 && n <= 65535
}

// headerInjectingTransport adds the consent cookie to every request,
// including redirects, and caps the response body.
type headerInjectingTransport struct {
	base    http.RoundTripper
	cookie  string
	maxBody int64
}

// RoundTrip implements http.RoundTripper.
func (t *headerInjectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())

	if t.cookie != "" {
		if existing := clone.Header.Get("Cookie"); existing != "" {
			clone.Header.Set("Cookie", existing+"; "+t.cookie)
		} else {
			clone.Header.Set("Cookie", t.cookie)
		}
	}

	res, err := t.base.RoundTrip(clone)
	if err != nil {
		return nil, err
	}
	if t.maxBody > 0 && res.Body != nil {
		// One byte past the cap lets Fetch tell a full body from a cut one.
		res.Body = limitedBody{Reader: io.LimitReader(res.Body, t.maxBody+1), Closer: res.Body}
	}
	return res, nil
}

type limitedBody struct {
	io.Reader
	io.Closer
}

// restyLogger routes resty's own warnings (retry notices, mostly) into slog.
type restyLogger struct {
	logger *slog.Logger
}

func (l *restyLogger) Errorf(format string, v ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, v...))
}

func (l *restyLogger) Warnf(format string, v ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, v...))
}

func (l *restyLogger) Debugf(format string, v ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, v...))
}
