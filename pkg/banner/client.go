// Package banner looks up the status of a student's justification requests in UDLA Banner.
package banner

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"udla-mentor-be/internal/pkg/logger"

	"golang.org/x/oauth2"
)

const module = "Banner"

var (
	ErrUnauthorized       = errors.New("banner: unauthorized")
	ErrMissingCredentials = errors.New("banner: missing username or password")
)

const (
	askEmail    = "<p>Necesito tu correo institucional para consultar el estado de tu justificación.</p>"
	unavailable = "<p>No pude consultar tu caso en este momento.</p>"

	defaultTokenLifetime = 120 * time.Second
	tokenLeeway          = 15 * time.Second
	minTokenLifetime     = 60 * time.Second
)

type Config struct {
	TokenURL string
	APIBase  string
	Username string
	Password string
	EmailKey string // body key carrying the institutional email
	JustPath string
	Timeout  time.Duration
	Insecure bool // skip TLS verification, test environments only
}

type Client struct {
	cfg  Config
	http *http.Client
	log  logger.ILogger
	now  func() time.Time

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

func NewClient(cfg Config, log logger.ILogger) *Client {
	if cfg.EmailKey == "" {
		cfg.EmailKey = "institutionalEmail"
	}
	if cfg.JustPath == "" {
		cfg.JustPath = "/api/GetStudentJustification"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.Insecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in for test environments
		log.Warn(module, "BANNER_INSECURE=1, TLS verification disabled (test environments only)", nil)
	}

	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout, Transport: transport},
		log:  log,
		now:  time.Now,
	}
}

// tokenURLs also tries the capitalised "/Token" route some Banner deployments expose.
func (c *Client) tokenURLs() []string {
	urls := []string{c.cfg.TokenURL}
	if strings.Contains(c.cfg.TokenURL, "/token") && !strings.Contains(c.cfg.TokenURL, "/Token") {
		urls = append(urls, strings.Replace(c.cfg.TokenURL, "/token", "/Token", 1))
	}
	return urls
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if c.token != "" && now.Before(c.expiresAt) {
		return c.token, nil
	}
	if c.cfg.Username == "" || c.cfg.Password == "" {
		return "", ErrMissingCredentials
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.http)

	var lastErr error
	for _, url := range c.tokenURLs() {
		conf := &oauth2.Config{
			Endpoint: oauth2.Endpoint{TokenURL: url, AuthStyle: oauth2.AuthStyleInParams},
		}
		tok, err := conf.PasswordCredentialsToken(ctx, c.cfg.Username, c.cfg.Password)
		if err != nil {
			lastErr = err
			c.log.Warn(module, "Token request failed", map[string]interface{}{
				"url":   url,
				"error": err.Error(),
			})
			continue
		}

		lifetime := defaultTokenLifetime
		if !tok.Expiry.IsZero() {
			lifetime = tok.Expiry.Sub(now)
		}
		lifetime -= tokenLeeway
		if lifetime < minTokenLifetime {
			lifetime = minTokenLifetime
		}
		c.token = tok.AccessToken
		c.expiresAt = now.Add(lifetime)
		c.log.Info(module, "Token acquired", map[string]interface{}{"expires_in_s": int(lifetime.Seconds())})
		return c.token, nil
	}
	return "", fmt.Errorf("banner: token: %w", lastErr)
}

func (c *Client) invalidate() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

func (c *Client) postJSON(ctx context.Context, token, url string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "MentoresAI/1.0")
	return c.http.Do(req)
}

// Justifications returns the raw records Banner holds for email.
// A 401 invalidates the cached token and retries exactly once.
func (c *Client) Justifications(ctx context.Context, email string) ([]Record, error) {
	body, err := json.Marshal(map[string]string{c.cfg.EmailKey: email})
	if err != nil {
		return nil, err
	}
	url := strings.TrimRight(c.cfg.APIBase, "/") + "/" + strings.TrimLeft(c.cfg.JustPath, "/")

	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := c.postJSON(ctx, token, url, body)
	if err != nil {
		return nil, fmt.Errorf("banner: request: %w", err)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		c.invalidate()
		if token, err = c.accessToken(ctx); err != nil {
			return nil, err
		}
		if resp, err = c.postJSON(ctx, token, url, body); err != nil {
			return nil, fmt.Errorf("banner: request: %w", err)
		}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("banner: read response: %w", err)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("banner: status %d", resp.StatusCode)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}

	var payload struct {
		Content []Record `json:"content"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("banner: decode response: %w", err)
	}
	return payload.Content, nil
}

// Status renders the latest justification of email as a single paragraph.
// It never fails: upstream errors become a neutral message.
func (c *Client) Status(ctx context.Context, email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return askEmail
	}
	records, err := c.Justifications(ctx, email)
	if err != nil {
		c.log.Error(module, "Status lookup failed", map[string]interface{}{"error": err})
		return unavailable
	}
	return Render(records, email)
}
