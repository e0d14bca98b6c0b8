package openreview

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"

	"github.com/kirillkom/papercheck/internal/core/domain"
	"github.com/kirillkom/papercheck/internal/infrastructure/resilience"
)

const (
	DefaultBaseURL = "https://api2.openreview.net"
	pageSize       = 1000
)

type Options struct {
	BaseURL            string
	Username           string
	Password           string
	Timeout            time.Duration
	RequestsPerSecond  float64
	Burst              int
	ResilienceExecutor *resilience.Executor
	HTTPClient         *http.Client
}

// Client talks to the OpenReview v2 REST API. It logs in lazily on the first
// call and reuses the session token afterwards.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	limiter    *rate.Limiter
	executor   *resilience.Executor

	mu    sync.Mutex
	token string
}

func New(opts Options) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if opts.Username == "" || opts.Password == "" {
		return nil, domain.WrapError(domain.ErrUnauthorized, "openreview client",
			fmt.Errorf("OPENREVIEW_USERNAME and OPENREVIEW_PASSWORD must be set"))
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("create cookie jar: %w", err)
		}
		httpClient = &http.Client{Timeout: timeout, Jar: jar}
	}

	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		baseURL:    baseURL,
		username:   opts.Username,
		password:   opts.Password,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
		executor:   opts.ResilienceExecutor,
	}, nil
}

func (c *Client) session(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" {
		return c.token, nil
	}

	var resp struct {
		Token string `json:"token"`
	}
	payload := map[string]string{"id": c.username, "password": c.password}
	if err := c.do(ctx, http.MethodPost, "/login", nil, payload, &resp, "login", ""); err != nil {
		return "", domain.WrapError(domain.ErrUnauthorized, "openreview login", err)
	}
	if resp.Token == "" {
		return "", domain.WrapError(domain.ErrUnauthorized, "openreview login", fmt.Errorf("empty token"))
	}
	c.token = resp.Token
	return c.token, nil
}

func (c *Client) dropSession() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}
