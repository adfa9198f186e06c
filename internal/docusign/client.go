// Package docusign implements the polling client for the DocuSign
// eSignature REST API. Authentication uses the JWT grant: the client
// signs a token request with the integration's RSA key, then discovers
// the default account and API base URI from the user info endpoint.
package docusign

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/jwt"

	"docusign-envelope-sync/internal/apperr"
	"docusign-envelope-sync/internal/config"
	"docusign-envelope-sync/internal/mapper"
)

const (
	demoAuthServer = "account-d.docusign.com"
	prodAuthServer = "account.docusign.com"
)

// Client talks to the DocuSign REST API for one integration account.
// Account discovery happens lazily on the first fetch so construction
// never performs network I/O.
type Client struct {
	cfg        *config.DocuSignConfig
	httpClient *http.Client
	tokenSrc   oauth2.TokenSource

	mu        sync.Mutex
	accountID string
	baseURI   string
}

// NewClient creates a DocuSign client from configuration. The RSA key
// may be raw PEM content or a path to a PEM file.
func NewClient(cfg *config.DocuSignConfig) (*Client, error) {
	key, err := loadPrivateKey(cfg.RSAKey)
	if err != nil {
		return nil, err
	}

	authServer := authServerFor(cfg.Demo)
	jwtCfg := &jwt.Config{
		Email:      cfg.IntegrationKey,
		Subject:    cfg.UserID,
		PrivateKey: key,
		Scopes:     []string{"signature", "impersonation"},
		TokenURL:   "https://" + authServer + "/oauth/token",
		Audience:   authServer,
	}

	timeout := cfg.APITimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		tokenSrc:   jwtCfg.TokenSource(context.Background()),
	}, nil
}

// loadPrivateKey accepts either raw PEM content or a filesystem path
func loadPrivateKey(value string) ([]byte, error) {
	if value == "" {
		return nil, fmt.Errorf("RSA key not provided")
	}
	if strings.Contains(value, "BEGIN") && strings.Contains(value, "PRIVATE KEY") {
		return []byte(value), nil
	}
	data, err := os.ReadFile(value)
	if err != nil {
		return nil, fmt.Errorf("RSA key path not readable: %w", err)
	}
	return data, nil
}

func authServerFor(demo bool) string {
	if demo {
		return demoAuthServer
	}
	return prodAuthServer
}

// userInfo mirrors the /oauth/userinfo response
type userInfo struct {
	Accounts []struct {
		AccountID string `json:"account_id"`
		IsDefault string `json:"is_default"`
		BaseURI   string `json:"base_uri"`
	} `json:"accounts"`
}

// ensureAccount discovers the default account id and base URI once
func (c *Client) ensureAccount(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accountID != "" {
		return nil
	}

	var info userInfo
	uri := "https://" + authServerFor(c.cfg.Demo) + "/oauth/userinfo"
	if err := c.getJSON(ctx, uri, &info); err != nil {
		return &apperr.ProviderError{Op: "user info", Err: err}
	}

	for _, acct := range info.Accounts {
		if acct.IsDefault == "true" {
			c.accountID = acct.AccountID
			c.baseURI = acct.BaseURI
			break
		}
	}
	if c.accountID == "" {
		return &apperr.ProviderError{Op: "user info", Err: fmt.Errorf("no default account in user info")}
	}

	logrus.Infof("DocuSign account discovered: %s", c.accountID)
	return nil
}

// statusChanges mirrors the listStatusChanges response; only the
// envelope ids matter, details come from a follow-up call per envelope.
type statusChanges struct {
	Envelopes []struct {
		EnvelopeID string `json:"envelopeId"`
	} `json:"envelopes"`
}

// FetchChangedSince returns the full payload of every envelope whose
// status changed on or after the given date, including recipients and
// custom fields.
func (c *Client) FetchChangedSince(ctx context.Context, since time.Time) ([]mapper.RawEnvelope, error) {
	if err := c.ensureAccount(ctx); err != nil {
		return nil, err
	}

	base := fmt.Sprintf("%s/restapi/v2.1/accounts/%s/envelopes", c.baseURI, c.accountID)

	listURL := base + "?" + url.Values{
		"from_date": {since.UTC().Format("2006-01-02")},
		"include":   {"recipients,custom_fields"},
	}.Encode()

	var changes statusChanges
	if err := c.getJSON(ctx, listURL, &changes); err != nil {
		return nil, &apperr.ProviderError{Op: "list status changes", Err: err}
	}

	envelopes := make([]mapper.RawEnvelope, 0, len(changes.Envelopes))
	for _, ref := range changes.Envelopes {
		detailURL := fmt.Sprintf("%s/%s?include=recipients,custom_fields", base, url.PathEscape(ref.EnvelopeID))

		var raw mapper.RawEnvelope
		if err := c.getJSON(ctx, detailURL, &raw); err != nil {
			return nil, &apperr.ProviderError{Op: "get envelope " + ref.EnvelopeID, Err: err}
		}
		envelopes = append(envelopes, raw)
	}

	return envelopes, nil
}

// getJSON performs an authenticated GET and decodes the JSON response
func (c *Client) getJSON(ctx context.Context, uri string, out interface{}) error {
	token, err := c.tokenSrc.Token()
	if err != nil {
		return fmt.Errorf("JWT token request failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return err
	}
	token.SetAuthHeader(req)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
