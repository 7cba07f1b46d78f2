package checker

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"aimawatch/internal/config"
	"aimawatch/pkg/domain"
	"aimawatch/pkg/logger"
	"aimawatch/pkg/serrors"
)

const (
	// tokenField is the name of the hidden input carrying the CSRF token
	// in the portal's login form.
	tokenField = "tok"

	// maxBodyBytes caps how much of any upstream response is read.
	maxBodyBytes = 2 << 20
)

// Options configure the checker's view of the upstream portal.
type Options struct {
	// LoginURL is the page carrying the login form and CSRF token.
	LoginURL string
	// CheckURL is the endpoint credentials and token are posted to.
	CheckURL string
	// ProxyURL optionally routes all portal traffic through an HTTP proxy.
	ProxyURL string
	// InsecureSkipTLSVerify disables TLS certificate validation. Explicit and
	// logged at construction; the portal is known to serve a broken chain.
	InsecureSkipTLSVerify bool
	// Timeout bounds every single upstream request.
	Timeout time.Duration
	// ArtifactPath is the single-slot scratch file for unparsable bodies.
	ArtifactPath string
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		LoginURL:              cfg.Upstream.LoginURL,
		CheckURL:              cfg.Upstream.CheckURL,
		ProxyURL:              cfg.Upstream.ProxyURL,
		InsecureSkipTLSVerify: cfg.Upstream.InsecureSkipTLSVerify,
		Timeout:               cfg.Upstream.Timeout,
		ArtifactPath:          cfg.Upstream.ArtifactPath,
	}
}

// checker is the concrete Checker implementation talking to the real portal.
type checker struct {
	options   Options
	transport http.RoundTripper
}

// New creates a Checker for the portal described by options. The TLS and
// proxy choices are logged once here so deployments can audit them.
func New(ctx context.Context, options Options) (Checker, error) {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: options.InsecureSkipTLSVerify, //nolint: gosec
		},
	}

	if options.ProxyURL != "" {
		proxyURL, err := url.Parse(options.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("could not parse proxy URL: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
		logger.Info(ctx, "portal traffic routed through proxy",
			zap.String("proxy", MaskProxyURL(options.ProxyURL)))
	}

	if options.InsecureSkipTLSVerify {
		logger.Warn(ctx, "TLS certificate validation for the portal is DISABLED")
	}

	return &checker{
		options:   options,
		transport: transport,
	}, nil
}

// Check runs the full fetch state machine for one set of credentials.
func (c *checker) Check(ctx context.Context, email, password string) domain.StatusResult {
	fetchedAt := time.Now().UTC()

	fail := func(kind serrors.Kind, outcome domain.Outcome, err error) domain.StatusResult {
		return domain.StatusResult{
			Outcome:   outcome,
			Err:       serrors.Wrap(kind, err, "status check failed"),
			FetchedAt: fetchedAt,
		}
	}

	// fresh cookie jar per attempt: the portal session must not leak
	// between users
	jar, err := cookiejar.New(nil)
	if err != nil {
		return fail(serrors.ErrNetwork, domain.OutcomeNetworkError, err)
	}
	client := &http.Client{
		Transport: c.transport,
		Jar:       jar,
		Timeout:   c.options.Timeout,
	}

	// stage 1: fetch the login page
	loginBody, _, err := c.get(ctx, client, c.options.LoginURL)
	if err != nil {
		return fail(serrors.ErrNetwork, domain.OutcomeNetworkError, err)
	}

	// stage 2: extract the CSRF token from the hidden form field
	token, ok := extractHiddenInput(loginBody, tokenField)
	if !ok {
		c.keepArtifact(ctx, loginBody)

		return fail(serrors.ErrParse, domain.OutcomeParseFailed,
			fmt.Errorf("CSRF token %q not found in login page", tokenField))
	}

	// stage 3: submit credentials
	form := url.Values{
		"email":    {email},
		"password": {password},
		tokenField: {token},
	}
	checkBody, finalURL, err := c.postForm(ctx, client, c.options.CheckURL, form)
	if err != nil {
		return fail(serrors.ErrNetwork, domain.OutcomeNetworkError, err)
	}

	// stage 4: classify the response
	if strings.Contains(finalURL, "login.php") {
		// the portal bounces rejected credentials back to the login form
		return fail(serrors.ErrLoginFailed, domain.OutcomeLoginFailed,
			fmt.Errorf("portal redirected back to login page"))
	}

	statusBody := checkBody
	if target, ok := clientRedirectTarget(checkBody); ok {
		if strings.Contains(target, "login.php") {
			return fail(serrors.ErrLoginFailed, domain.OutcomeLoginFailed,
				fmt.Errorf("portal redirect directive points back to login page"))
		}

		// stage 5: follow the client-side redirect to the status page
		resolved, err := resolveRedirect(c.options.CheckURL, target)
		if err != nil {
			return fail(serrors.ErrParse, domain.OutcomeParseFailed, err)
		}
		statusBody, _, err = c.get(ctx, client, resolved)
		if err != nil {
			return fail(serrors.ErrNetwork, domain.OutcomeNetworkError, err)
		}
	}

	// stage 6: extract and sanitize the status marker cell
	statusText, ok := extractStatusText(statusBody)
	if !ok {
		c.keepArtifact(ctx, statusBody)

		return fail(serrors.ErrParse, domain.OutcomeParseFailed,
			fmt.Errorf("status marker cell not found in response"))
	}

	return domain.StatusResult{
		Outcome:    domain.OutcomeSuccess,
		StatusText: statusText,
		FetchedAt:  fetchedAt,
	}
}

// get performs a GET and returns the body along with the final URL after any
// server-side redirects.
func (c *checker) get(ctx context.Context, client *http.Client, rawURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("could not create request: %w", err)
	}

	return doRead(client, req)
}

// postForm submits a form-encoded POST and returns the body along with the
// final URL after any server-side redirects.
func (c *checker) postForm(ctx context.Context,
	client *http.Client,
	rawURL string,
	form url.Values) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx,
		http.MethodPost,
		rawURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, "", fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return doRead(client, req)
}

func doRead(client *http.Client, req *http.Request) ([]byte, string, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("could not send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, "", fmt.Errorf("could not read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return nil, "", fmt.Errorf("unexpected upstream status %d", resp.StatusCode)
	}

	return body, resp.Request.URL.String(), nil
}

// resolveRedirect resolves a possibly-relative client redirect target against
// the URL the directive was served from.
func resolveRedirect(base, target string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("could not parse base URL: %w", err)
	}
	targetURL, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("could not parse redirect target %q: %w", target, err)
	}

	return baseURL.ResolveReference(targetURL).String(), nil
}

// MaskProxyURL hides credentials embedded in a proxy URL so it can be logged.
func MaskProxyURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid proxy URL>"
	}
	if u.User != nil {
		u.User = url.UserPassword("xxx", "xxx")
	}

	return u.String()
}
