package soap

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/JCrossman/dats-booking-sub000/models"
)

// Well-known paths on the remote service.
const (
	LoginPath   = "/pass/login"
	HomePath    = "/pass/home"
	LogoutPath  = "/pass/logout"
	ServicePath = "/pass/ws"
)

const (
	soapActionNS   = "http://trapezegroup.com/pass/"
	envelopeFormat = `<?xml version="1.0" encoding="utf-8"?>` +
		`<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">` +
		`<soap:Body>%s</soap:Body></soap:Envelope>`

	maxRedirects = 5
)

// sessionExpiredMarkers are substrings the service embeds in response bodies
// when the cookie session is no longer valid. There is no structured code for
// this; substring scanning is the only detection the service supports.
var sessionExpiredMarkers = []string{
	"session has expired",
	"session expired",
	"please log in again",
	"you are not logged in",
}

// Config carries the transport settings for remote conversations.
type Config struct {
	BaseURL     string
	Timeout     time.Duration
	MaxAttempts uint
	// MinDelay is the minimum spacing between any two outgoing requests,
	// shared by every conversation in the process.
	MinDelay time.Duration
}

// Factory builds per-conversation clients sharing one outbound request gate,
// so the global inter-request delay holds across independent callers.
type Factory struct {
	cfg    Config
	gate   *rate.Limiter
	logger *zap.Logger
}

// NewFactory validates cfg and prepares the shared gate.
func NewFactory(cfg Config, logger *zap.Logger) *Factory {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 3
	}
	limit := rate.Inf
	if cfg.MinDelay > 0 {
		limit = rate.Every(cfg.MinDelay)
	}
	return &Factory{
		cfg:    cfg,
		gate:   rate.NewLimiter(limit, 1),
		logger: logger,
	}
}

// New returns a client with an empty cookie jar for a fresh conversation.
func (f *Factory) New() *Client {
	return &Client{
		cfg:  f.cfg,
		gate: f.gate,
		httpc: &http.Client{
			Timeout: f.cfg.Timeout,
			// Redirects are followed manually so Set-Cookie headers on
			// intermediate responses are not lost.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		jar:    newCookieJar(),
		logger: f.logger,
	}
}

// Client performs authenticated calls against the remote service for a single
// conversation. It is not safe for concurrent use; each caller gets its own.
type Client struct {
	cfg    Config
	gate   *rate.Limiter
	httpc  *http.Client
	jar    *cookieJar
	logger *zap.Logger
}

// SessionToken serializes the accumulated cookie set.
func (c *Client) SessionToken() string { return c.jar.Header() }

// RestoreSessionToken seeds the jar from a stored session token.
func (c *Client) RestoreSessionToken(token string) { c.jar.Restore(token) }

// CookieCount reports how many distinct cookies the conversation holds.
func (c *Client) CookieCount() int { return c.jar.Size() }

// Call sends one XML envelope for the named action and returns the response
// element inside the body. Transient transport failures are retried with
// exponential backoff; authentication, session-expiry, and rate-limit
// outcomes are never retried.
func (c *Client) Call(ctx context.Context, action string, payload any) (*Node, error) {
	body, err := xml.Marshal(payload)
	if err != nil {
		return nil, models.NewServiceError(models.CodeSystemError, "could not encode request").WithDetail(err.Error())
	}
	envelope := fmt.Sprintf(envelopeFormat, body)

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond

	node, err := backoff.Retry(ctx, func() (*Node, error) {
		return c.roundTrip(ctx, action, envelope)
	}, backoff.WithBackOff(bo), backoff.WithMaxTries(c.cfg.MaxAttempts))
	if err != nil {
		var se *models.ServiceError
		if errors.As(err, &se) {
			return nil, se
		}
		c.logger.Warn("remote call failed after retries",
			zap.String("action", action), zap.Error(err))
		return nil, models.NewServiceError(models.CodeNetworkError,
			"the booking service could not be reached").WithDetail(err.Error())
	}
	return node, nil
}

func (c *Client) roundTrip(ctx context.Context, action, envelope string) (*Node, error) {
	if err := c.gate.Wait(ctx); err != nil {
		return nil, backoff.Permanent(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+ServicePath, strings.NewReader(envelope))
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", `"`+soapActionNS+action+`"`)
	if h := c.jar.Header(); h != "" {
		req.Header.Set("Cookie", h)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	c.jar.Absorb(resp)

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, backoff.Permanent(models.NewServiceError(models.CodeRateLimited,
			"the booking service is throttling requests, try again shortly"))
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("remote returned status %d", resp.StatusCode)
	}

	if marker, found := matchMarker(string(data), sessionExpiredMarkers); found {
		return nil, backoff.Permanent(models.NewServiceError(models.CodeSessionExpired,
			"your session has expired, please connect again").WithDetail(marker))
	}

	node, err := parseResponseEnvelope(data)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	return node, nil
}

// Get fetches an HTML page path, following redirects manually and absorbing
// cookies at every hop. Used by the login navigation; never retried.
func (c *Client) Get(ctx context.Context, path string) (string, error) {
	return c.navigate(ctx, http.MethodGet, path, "", nil)
}

// PostForm submits a URL-encoded form to path, also absorbing cookies at
// every hop.
func (c *Client) PostForm(ctx context.Context, path string, form url.Values) (string, error) {
	return c.navigate(ctx, http.MethodPost, path,
		"application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
}

func (c *Client) navigate(ctx context.Context, method, path, contentType string, body io.Reader) (string, error) {
	target := c.cfg.BaseURL + path
	for hop := 0; ; hop++ {
		if err := c.gate.Wait(ctx); err != nil {
			return "", models.NewServiceError(models.CodeNetworkError, "request cancelled").WithDetail(err.Error())
		}

		req, err := http.NewRequestWithContext(ctx, method, target, body)
		if err != nil {
			return "", models.NewServiceError(models.CodeSystemError, "could not build request").WithDetail(err.Error())
		}
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		if h := c.jar.Header(); h != "" {
			req.Header.Set("Cookie", h)
		}

		resp, err := c.httpc.Do(req)
		if err != nil {
			return "", models.NewServiceError(models.CodeNetworkError,
				"the booking service could not be reached").WithDetail(err.Error())
		}
		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return "", models.NewServiceError(models.CodeNetworkError,
				"the booking service response could not be read").WithDetail(err.Error())
		}
		c.jar.Absorb(resp)

		if resp.StatusCode >= 300 && resp.StatusCode < 400 {
			loc := resp.Header.Get("Location")
			if loc == "" || hop >= maxRedirects {
				return "", models.NewServiceError(models.CodeNetworkError,
					"the booking service redirected unexpectedly")
			}
			ref, err := url.Parse(loc)
			if err != nil {
				return "", models.NewServiceError(models.CodeNetworkError,
					"the booking service returned a bad redirect").WithDetail(err.Error())
			}
			target = req.URL.ResolveReference(ref).String()
			// Redirect hops are plain GETs regardless of the original method.
			method = http.MethodGet
			contentType = ""
			body = nil
			continue
		}
		if resp.StatusCode >= 400 {
			return "", models.NewServiceError(models.CodeNetworkError,
				fmt.Sprintf("the booking service returned status %d", resp.StatusCode))
		}
		return string(data), nil
	}
}

// parseResponseEnvelope strips the SOAP wrapper and returns the response
// element, surfacing faults as categorized errors.
func parseResponseEnvelope(data []byte) (*Node, error) {
	root, err := parseDocument(data)
	if err != nil {
		return nil, models.NewServiceError(models.CodeSystemError,
			"the booking service returned an unreadable response").WithDetail(err.Error())
	}
	soapBody := root.First("Body")
	if soapBody == nil {
		return nil, models.NewServiceError(models.CodeSystemError,
			"the booking service returned an unexpected response shape")
	}
	if fault := soapBody.First("Fault"); fault != nil {
		reason := fault.Lookup("faultstring", "Reason/Text")
		return nil, models.NewServiceError(models.CodeSystemError,
			"the booking service rejected the request").WithDetail(reason)
	}
	if len(soapBody.Children) == 0 {
		return nil, models.NewServiceError(models.CodeSystemError,
			"the booking service returned an empty response")
	}
	return &soapBody.Children[0], nil
}

func matchMarker(body string, markers []string) (string, bool) {
	lower := strings.ToLower(body)
	for _, m := range markers {
		if strings.Contains(lower, m) {
			return m, true
		}
	}
	return "", false
}
