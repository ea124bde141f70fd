// Package powerbi acquires report embed tokens: an Azure AD client-credentials
// token is exchanged for a view-only Power BI embed token.
package powerbi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"enterprise-portal/internal/models"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const (
	DefaultAuthorityURL = "https://login.microsoftonline.com"
	DefaultAPIURL       = "https://api.powerbi.com"
	DefaultTimeout      = 15 * time.Second
	Scope               = "https://analysis.windows.net/powerbi/api/.default"

	reportEmbedURL  = "https://app.powerbi.com/reportEmbed"
	maxErrorBodyLen = 4 << 10
)

// Placeholder values shipped with the seed catalogue; they never reach the
// identity provider.
var placeholders = map[string]bool{
	"your-client-id":     true,
	"your-client-secret": true,
	"your-tenant-id":     true,
	"your-workspace-id":  true,
	"your-report-id":     true,
}

type Config struct {
	AuthorityURL string
	APIURL       string
	Timeout      time.Duration
	HTTPClient   *http.Client
	Logger       *zap.Logger
}

type Exchanger struct {
	authorityURL string
	apiURL       string
	client       *http.Client
	logger       *zap.Logger
}

func NewExchanger(cfg Config) *Exchanger {
	if cfg.AuthorityURL == "" {
		cfg.AuthorityURL = DefaultAuthorityURL
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exchanger{
		authorityURL: strings.TrimRight(cfg.AuthorityURL, "/"),
		apiURL:       strings.TrimRight(cfg.APIURL, "/"),
		client:       client,
		logger:       logger,
	}
}

// Validate reports ErrConfigInvalid when a required field is empty or still
// holds a seed placeholder.
func Validate(cfg models.PowerBIConfig) error {
	fields := []struct {
		name  string
		value string
	}{
		{"clientId", cfg.ClientID},
		{"clientSecret", cfg.ClientSecret},
		{"tenantId", cfg.TenantID},
		{"workspaceId", cfg.WorkspaceID},
		{"reportId", cfg.ReportID},
	}
	var missing []string
	for _, field := range fields {
		value := strings.TrimSpace(field.value)
		if value == "" || placeholders[value] {
			missing = append(missing, field.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrConfigInvalid, strings.Join(missing, ", "))
	}
	return nil
}

// EmbedURL is the report viewer URL for a report in a workspace.
func EmbedURL(reportID, workspaceID string) string {
	return reportEmbedURL + "?reportId=" + url.QueryEscape(reportID) + "&groupId=" + url.QueryEscape(workspaceID)
}

// AcquireEmbed runs both steps once. Nothing is cached, so callers refresh
// an expired token by calling again.
func (e *Exchanger) AcquireEmbed(ctx context.Context, cfg models.PowerBIConfig) (models.EmbedDescriptor, error) {
	if err := Validate(cfg); err != nil {
		return models.EmbedDescriptor{}, err
	}

	accessToken, err := e.accessToken(ctx, cfg)
	if err != nil {
		return models.EmbedDescriptor{}, err
	}

	embed, err := e.generateToken(ctx, cfg, accessToken)
	if err != nil {
		return models.EmbedDescriptor{}, err
	}

	descriptor := models.EmbedDescriptor{
		EmbedToken: embed.Token,
		EmbedURL:   EmbedURL(cfg.ReportID, cfg.WorkspaceID),
		ReportID:   cfg.ReportID,
	}
	if embed.Expiration != "" {
		expiresAt, err := time.Parse(time.RFC3339, embed.Expiration)
		if err != nil {
			e.logger.Warn("unparseable embed token expiration", zap.String("expiration", embed.Expiration), zap.Error(err))
		} else {
			descriptor.ExpiresAt = &expiresAt
		}
	}
	return descriptor, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

func (e *Exchanger) accessToken(ctx context.Context, cfg models.PowerBIConfig) (string, error) {
	form := url.Values{}
	form.Set("client_id", cfg.ClientID)
	form.Set("client_secret", cfg.ClientSecret)
	form.Set("scope", Scope)
	form.Set("grant_type", "client_credentials")

	endpoint := e.authorityURL + "/" + url.PathEscape(cfg.TenantID) + "/oauth2/v2.0/token"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", &ExchangeError{Kind: TokenAcquisitionFailed, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", &ExchangeError{Kind: TokenAcquisitionFailed, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		e.logger.Error("access token request rejected",
			zap.String("tenant_id", cfg.TenantID),
			zap.Int("status", resp.StatusCode),
			zap.String("body", readErrorBody(resp.Body)),
		)
		return "", &ExchangeError{Kind: TokenAcquisitionFailed, Status: resp.StatusCode, Err: errors.New("identity provider rejected request")}
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", &ExchangeError{Kind: TokenAcquisitionFailed, Err: fmt.Errorf("decode token response: %w", err)}
	}
	if token.AccessToken == "" {
		return "", &ExchangeError{Kind: TokenAcquisitionFailed, Err: errors.New("token response has no access_token")}
	}
	return token.AccessToken, nil
}

type generateTokenRequest struct {
	AccessLevel string `json:"accessLevel"`
	AllowSaveAs bool   `json:"allowSaveAs"`
}

type generateTokenResponse struct {
	Token      string `json:"token"`
	TokenID    string `json:"tokenId"`
	Expiration string `json:"expiration"`
}

func (e *Exchanger) generateToken(ctx context.Context, cfg models.PowerBIConfig, accessToken string) (generateTokenResponse, error) {
	body, err := json.Marshal(generateTokenRequest{AccessLevel: "View", AllowSaveAs: false})
	if err != nil {
		return generateTokenResponse{}, err
	}
	endpoint := fmt.Sprintf("%s/v1.0/myorg/groups/%s/reports/%s/GenerateToken",
		e.apiURL, url.PathEscape(cfg.WorkspaceID), url.PathEscape(cfg.ReportID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return generateTokenResponse{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := e.client.Do(req)
	if err != nil {
		return generateTokenResponse{}, fmt.Errorf("generate token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		e.logger.Error("embed token request rejected",
			zap.String("workspace_id", cfg.WorkspaceID),
			zap.String("report_id", cfg.ReportID),
			zap.Int("status", resp.StatusCode),
			zap.String("body", readErrorBody(resp.Body)),
		)
		return generateTokenResponse{}, &ExchangeError{Kind: EmbedTokenFailed, Status: resp.StatusCode, Err: errors.New("reporting api rejected request")}
	}

	var out generateTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return generateTokenResponse{}, fmt.Errorf("decode generate token response: %w", err)
	}
	return out, nil
}

func readErrorBody(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBodyLen))
	if err != nil {
		return ""
	}
	return string(data)
}
