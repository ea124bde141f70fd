package powerbi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"enterprise-portal/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var validConfig = models.PowerBIConfig{
	ClientID:     "client-1",
	ClientSecret: "secret-1",
	TenantID:     "tenant-1",
	WorkspaceID:  "workspace-1",
	ReportID:     "report-1",
}

type upstream struct {
	server         *httptest.Server
	tokenCalls     atomic.Int32
	reportingCalls atomic.Int32
}

func newUpstream(t *testing.T, tokenStatus, reportStatus int) *upstream {
	t.Helper()
	u := &upstream{}
	mux := http.NewServeMux()
	mux.HandleFunc("/login/tenant-1/oauth2/v2.0/token", func(w http.ResponseWriter, r *http.Request) {
		u.tokenCalls.Add(1)
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client-1", r.PostForm.Get("client_id"))
		assert.Equal(t, "secret-1", r.PostForm.Get("client_secret"))
		assert.Equal(t, Scope, r.PostForm.Get("scope"))
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		if tokenStatus != http.StatusOK {
			http.Error(w, `{"error":"invalid_client"}`, tokenStatus)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "aad-token", "token_type": "Bearer", "expires_in": 3599})
	})
	mux.HandleFunc("/api/v1.0/myorg/groups/workspace-1/reports/report-1/GenerateToken", func(w http.ResponseWriter, r *http.Request) {
		u.reportingCalls.Add(1)
		assert.Equal(t, "Bearer aad-token", r.Header.Get("Authorization"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "View", body["accessLevel"])
		assert.Equal(t, false, body["allowSaveAs"])
		if reportStatus != http.StatusOK {
			http.Error(w, `{"error":{"code":"PowerBINotAuthorizedException"}}`, reportStatus)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"token":      "embed-token",
			"tokenId":    "token-id",
			"expiration": "2030-01-01T10:00:00Z",
		})
	})
	u.server = httptest.NewServer(mux)
	t.Cleanup(u.server.Close)
	return u
}

func (u *upstream) exchanger() *Exchanger {
	return NewExchanger(Config{
		AuthorityURL: u.server.URL + "/login",
		APIURL:       u.server.URL + "/api/",
		HTTPClient:   u.server.Client(),
	})
}

func TestAcquireEmbedSuccess(t *testing.T) {
	up := newUpstream(t, http.StatusOK, http.StatusOK)

	got, err := up.exchanger().AcquireEmbed(context.Background(), validConfig)
	require.NoError(t, err)
	assert.Equal(t, "embed-token", got.EmbedToken)
	assert.Equal(t, "report-1", got.ReportID)
	assert.Equal(t, "https://app.powerbi.com/reportEmbed?reportId=report-1&groupId=workspace-1", got.EmbedURL)
	require.NotNil(t, got.ExpiresAt)
	assert.True(t, got.ExpiresAt.Equal(time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)))
	assert.EqualValues(t, 1, up.tokenCalls.Load())
	assert.EqualValues(t, 1, up.reportingCalls.Load())
}

func TestAcquireEmbedRejectsIncompleteConfigBeforeNetwork(t *testing.T) {
	up := newUpstream(t, http.StatusOK, http.StatusOK)
	ex := up.exchanger()

	blank := func(mutate func(*models.PowerBIConfig)) models.PowerBIConfig {
		cfg := validConfig
		mutate(&cfg)
		return cfg
	}
	cases := map[string]models.PowerBIConfig{
		"client id":     blank(func(c *models.PowerBIConfig) { c.ClientID = "" }),
		"client secret": blank(func(c *models.PowerBIConfig) { c.ClientSecret = " " }),
		"tenant":        blank(func(c *models.PowerBIConfig) { c.TenantID = "" }),
		"workspace":     blank(func(c *models.PowerBIConfig) { c.WorkspaceID = "" }),
		"report":        blank(func(c *models.PowerBIConfig) { c.ReportID = "" }),
		"placeholder":   blank(func(c *models.PowerBIConfig) { c.ClientID = "your-client-id" }),
	}
	for name, cfg := range cases {
		_, err := ex.AcquireEmbed(context.Background(), cfg)
		assert.ErrorIs(t, err, ErrConfigInvalid, name)
	}
	assert.EqualValues(t, 0, up.tokenCalls.Load())
	assert.EqualValues(t, 0, up.reportingCalls.Load())
}

func TestAcquireEmbedTokenFailureSkipsReportingAPI(t *testing.T) {
	up := newUpstream(t, http.StatusUnauthorized, http.StatusOK)

	_, err := up.exchanger().AcquireEmbed(context.Background(), validConfig)
	var exErr *ExchangeError
	require.True(t, errors.As(err, &exErr), "expected ExchangeError, got %v", err)
	assert.Equal(t, TokenAcquisitionFailed, exErr.Kind)
	assert.Equal(t, http.StatusUnauthorized, exErr.HTTPStatus())
	assert.EqualValues(t, 1, up.tokenCalls.Load())
	assert.EqualValues(t, 0, up.reportingCalls.Load())
}

func TestAcquireEmbedForwardsReportingStatus(t *testing.T) {
	up := newUpstream(t, http.StatusOK, http.StatusForbidden)

	_, err := up.exchanger().AcquireEmbed(context.Background(), validConfig)
	var exErr *ExchangeError
	require.True(t, errors.As(err, &exErr), "expected ExchangeError, got %v", err)
	assert.Equal(t, EmbedTokenFailed, exErr.Kind)
	assert.Equal(t, http.StatusForbidden, exErr.HTTPStatus())
}

func TestAcquireEmbedMissingAccessToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"token_type":"Bearer"}`))
	}))
	t.Cleanup(server.Close)

	ex := NewExchanger(Config{AuthorityURL: server.URL, APIURL: server.URL, HTTPClient: server.Client()})
	_, err := ex.AcquireEmbed(context.Background(), validConfig)
	var exErr *ExchangeError
	require.True(t, errors.As(err, &exErr))
	assert.Equal(t, TokenAcquisitionFailed, exErr.Kind)
	assert.Equal(t, http.StatusInternalServerError, exErr.HTTPStatus())
}

func TestAcquireEmbedHonoursTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		server.Close()
	})

	ex := NewExchanger(Config{AuthorityURL: server.URL, APIURL: server.URL, Timeout: 50 * time.Millisecond})
	start := time.Now()
	_, err := ex.AcquireEmbed(context.Background(), validConfig)
	var exErr *ExchangeError
	require.True(t, errors.As(err, &exErr), "expected ExchangeError, got %v", err)
	assert.Equal(t, TokenAcquisitionFailed, exErr.Kind)
	assert.Less(t, time.Since(start), 5*time.Second)
}
