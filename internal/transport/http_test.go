package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-kit/log"
	"github.com/gorilla/mux"
	"github.com/prajwalbharadwajbm/fundledger/internal/assets"
	"github.com/prajwalbharadwajbm/fundledger/internal/auth"
	"github.com/prajwalbharadwajbm/fundledger/internal/endpoint"
	"github.com/prajwalbharadwajbm/fundledger/internal/metrics"
	"github.com/prajwalbharadwajbm/fundledger/internal/models"
	"github.com/prajwalbharadwajbm/fundledger/internal/repository"
	"github.com/prajwalbharadwajbm/fundledger/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	owner   = models.MustParseAddress("0x00000000000000000000000000000000000000f0")
	creator = models.MustParseAddress("0x00000000000000000000000000000000000000b0")
	alice   = models.MustParseAddress("0x00000000000000000000000000000000000000a1")
	tokenA  = models.MustParseAddress("0x00000000000000000000000000000000000000c1")
)

type harness struct {
	handler http.Handler
	tokens  *auth.TokenManager
	vault   *assets.Vault
}

func newHarness(t *testing.T, opts ...HandlerOption) *harness {
	t.Helper()
	h := &harness{
		tokens: auth.NewTokenManager("test-secret", "fundledger", time.Hour),
		vault:  assets.NewVault(),
	}
	svc := service.NewLedgerService(repository.NewMemoryRepository(owner), h.vault)
	opts = append([]HandlerOption{
		WithAuth(h.tokens),
		WithVaultEndpoints(h.vault),
		WithMetrics(metrics.NewPrometheusMetrics(prometheus.NewRegistry())),
	}, opts...)
	h.handler = NewHTTPHandler(endpoint.MakeLedgerEndpoints(svc), log.NewNopLogger(), opts...)
	return h
}

// do sends a request as principal; an empty principal sends no token
func (h *harness) do(t *testing.T, method, path string, principal models.Address, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if principal != "" {
		token, err := h.tokens.Issue(principal)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

var campaignBody = map[string]any{
	"goal":        "100",
	"name":        "Clean Water",
	"description": "Wells for the valley",
	"imageUrl":    "https://example.com/water.png",
}

func TestNewHTTPHandler(t *testing.T) {
	handler := NewHTTPHandler(endpoint.LedgerEndpoints{}, log.NewNopLogger())

	assert.NotNil(t, handler)
	assert.IsType(t, &mux.Router{}, handler)
}

func TestHealthEndpoint(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		h := newHarness(t,
			WithServiceInfo("fundledger", "1.2.3"),
			WithHealthCheck("database", func(context.Context) error { return nil }),
		)

		rec := h.do(t, http.MethodGet, "/health", "", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
		body := decode[map[string]any](t, rec)
		assert.Equal(t, "healthy", body["status"])
		assert.Equal(t, "fundledger", body["service"])
		assert.Equal(t, "1.2.3", body["version"])
		assert.Equal(t, map[string]any{"database": "ok"}, body["checks"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		h := newHarness(t, WithHealthCheck("redis", func(context.Context) error { return errors.New("connection refused") }))

		rec := h.do(t, http.MethodGet, "/health", "", nil)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		body := decode[map[string]any](t, rec)
		assert.Equal(t, "unhealthy", body["status"])
		assert.Equal(t, map[string]any{"redis": "connection refused"}, body["checks"])
	})
}

func TestCampaignLifecycle_NativeRefund(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/v1/campaigns", creator, campaignBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, uint64(0), decode[models.CampaignCreatedResponse](t, rec).ID)

	rec = h.do(t, http.MethodGet, "/v1/campaigns/0", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	campaign := decode[models.Campaign](t, rec)
	assert.Equal(t, creator, campaign.Creator)
	assert.Equal(t, "100", campaign.Goal.String())
	assert.False(t, campaign.IsSuccessful)

	rec = h.do(t, http.MethodPost, "/v1/vault/mint", "", map[string]any{"to": alice, "amount": "5"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = h.do(t, http.MethodPost, "/v1/campaigns/0/contributions", alice, map[string]any{"amount": "5"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	entry := decode[models.Contribution](t, rec)
	assert.Equal(t, "5", entry.Amount.String())
	assert.Equal(t, models.NativeAsset, entry.Asset)

	rec = h.do(t, http.MethodGet, "/v1/campaigns/0/contributions/"+alice.String(), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "5", decode[models.Contribution](t, rec).Amount.String())

	rec = h.do(t, http.MethodPost, "/v1/campaigns/0/refund", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "5", decode[models.Contribution](t, rec).Amount.String())

	rec = h.do(t, http.MethodGet, "/v1/vault/balances/"+models.NativeAsset.String()+"/"+alice.String(), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "5", decode[holdingResponse](t, rec).Balance.String())

	rec = h.do(t, http.MethodGet, "/v1/events?campaignId=0", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	events := decode[endpoint.ListEventsResponse](t, rec).Events
	require.Len(t, events, 3)
	assert.Equal(t, models.EventCampaignAdded, events[0].Type)
	assert.Equal(t, models.EventContributionMade, events[1].Type)
	assert.Equal(t, models.EventRefunded, events[2].Type)
}

func TestCampaignLifecycle_TokenSuccessLocksFunds(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, http.StatusCreated, h.do(t, http.MethodPost, "/v1/campaigns", creator, campaignBody).Code)

	// Unlisted token is refused
	h.do(t, http.MethodPost, "/v1/vault/mint", "", map[string]any{"asset": tokenA, "to": alice, "amount": "40"})
	require.Equal(t, http.StatusOK, h.do(t, http.MethodPost, "/v1/vault/approve", alice, map[string]any{"asset": tokenA, "amount": "40"}).Code)
	rec := h.do(t, http.MethodPost, "/v1/campaigns/0/contributions", alice, map[string]any{"amount": "40", "asset": tokenA})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "token_not_accepted", decode[models.ErrorResponse](t, rec).Code)

	rec = h.do(t, http.MethodPut, "/v1/tokens/"+tokenA.String(), owner, map[string]any{"authorised": true})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = h.do(t, http.MethodGet, "/v1/tokens/"+tokenA.String(), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[models.TokenAuthorisationResponse](t, rec).Authorised)

	rec = h.do(t, http.MethodPost, "/v1/campaigns/0/contributions", alice, map[string]any{"amount": "40", "asset": tokenA})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, tokenA, decode[models.Contribution](t, rec).Asset)

	rec = h.do(t, http.MethodPut, "/v1/campaigns/0/success", creator, map[string]any{"isSuccessful": true})
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = h.do(t, http.MethodPost, "/v1/campaigns/0/refund", alice, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "campaign_successful", decode[models.ErrorResponse](t, rec).Code)

	rec = h.do(t, http.MethodPost, "/v1/campaigns/0/contributions", alice, map[string]any{"amount": "1"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestOwnershipTransfer(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPut, "/v1/owner", alice, map[string]any{"newOwner": alice})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do(t, http.MethodPut, "/v1/owner", owner, map[string]any{"newOwner": alice})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = h.do(t, http.MethodGet, "/v1/owner", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, alice, decode[models.OwnerResponse](t, rec).Owner)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		principal  models.Address
		body       any
		rawAuth    string
		wantStatus int
		wantCode   string
	}{
		{name: "anonymous create", method: http.MethodPost, path: "/v1/campaigns", body: campaignBody, wantStatus: http.StatusUnauthorized, wantCode: "missing_caller"},
		{name: "invalid token", method: http.MethodPost, path: "/v1/campaigns", body: campaignBody, rawAuth: "Bearer forged", wantStatus: http.StatusUnauthorized, wantCode: "invalid_token"},
		{name: "zero goal", method: http.MethodPost, path: "/v1/campaigns", principal: creator, body: map[string]any{"goal": "0", "name": "n", "description": "d", "imageUrl": "i"}, wantStatus: http.StatusBadRequest, wantCode: "goal_not_positive"},
		{name: "negative goal", method: http.MethodPost, path: "/v1/campaigns", principal: creator, body: map[string]any{"goal": "-1", "name": "n", "description": "d", "imageUrl": "i"}, wantStatus: http.StatusBadRequest, wantCode: "invalid_amount"},
		{name: "unknown field", method: http.MethodPost, path: "/v1/campaigns", principal: creator, body: map[string]any{"title": "x"}, wantStatus: http.StatusBadRequest, wantCode: "malformed_body"},
		{name: "empty body", method: http.MethodPost, path: "/v1/campaigns", principal: creator, wantStatus: http.StatusBadRequest, wantCode: "malformed_body"},
		{name: "unknown campaign", method: http.MethodGet, path: "/v1/campaigns/9", wantStatus: http.StatusNotFound, wantCode: "campaign_not_found"},
		{name: "bad campaign id", method: http.MethodGet, path: "/v1/campaigns/abc", wantStatus: http.StatusBadRequest, wantCode: "invalid_campaign_id"},
		{name: "negative campaign id", method: http.MethodGet, path: "/v1/campaigns/-1", wantStatus: http.StatusBadRequest, wantCode: "invalid_campaign_id"},
		{name: "bad token address", method: http.MethodGet, path: "/v1/tokens/0x12", wantStatus: http.StatusBadRequest, wantCode: "invalid_address"},
		{name: "list native asset", method: http.MethodPut, path: "/v1/tokens/" + models.NativeAsset.String(), principal: owner, body: map[string]any{"authorised": true}, wantStatus: http.StatusBadRequest, wantCode: "native_asset_listed"},
		{name: "missing authorised flag", method: http.MethodPut, path: "/v1/tokens/" + tokenA.String(), principal: owner, body: map[string]any{}, wantStatus: http.StatusBadRequest, wantCode: "malformed_body"},
		{name: "non owner lists token", method: http.MethodPut, path: "/v1/tokens/" + tokenA.String(), principal: alice, body: map[string]any{"authorised": true}, wantStatus: http.StatusForbidden, wantCode: "not_owner"},
		{name: "bad events limit", method: http.MethodGet, path: "/v1/events?limit=abc", wantStatus: http.StatusBadRequest, wantCode: "invalid_query"},
		{name: "anonymous approve", method: http.MethodPost, path: "/v1/vault/approve", body: map[string]any{"asset": tokenA, "amount": "1"}, wantStatus: http.StatusUnauthorized, wantCode: "missing_caller"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)

			var rec *httptest.ResponseRecorder
			if tt.rawAuth != "" {
				var buf bytes.Buffer
				require.NoError(t, json.NewEncoder(&buf).Encode(tt.body))
				req := httptest.NewRequest(tt.method, tt.path, &buf)
				req.Header.Set("Authorization", tt.rawAuth)
				rec = httptest.NewRecorder()
				h.handler.ServeHTTP(rec, req)
			} else {
				rec = h.do(t, tt.method, tt.path, tt.principal, tt.body)
			}

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantCode, decode[models.ErrorResponse](t, rec).Code)
		})
	}
}

func TestEncodeError_HidesInfrastructureErrors(t *testing.T) {
	rec := httptest.NewRecorder()

	encodeError(context.Background(), errors.New("pq: password authentication failed"), rec)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode[models.ErrorResponse](t, rec)
	assert.Equal(t, "Internal Server Error", body.Error)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestDecodeListEventsRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/events?type=Refunded&campaignId=4&after=10&limit=25", nil)

	result, err := decodeListEventsRequest(context.Background(), req)

	require.NoError(t, err)
	filter := result.(endpoint.ListEventsRequest).Filter
	assert.Equal(t, models.EventRefunded, filter.Type)
	require.NotNil(t, filter.CampaignID)
	assert.Equal(t, uint64(4), *filter.CampaignID)
	assert.Equal(t, uint64(10), filter.AfterSeq)
	assert.Equal(t, 25, filter.Limit)
}

func TestVaultRoutesDisabledByDefault(t *testing.T) {
	svc := service.NewLedgerService(repository.NewMemoryRepository(owner), assets.NewVault())
	handler := NewHTTPHandler(endpoint.MakeLedgerEndpoints(svc), log.NewNopLogger())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/vault/mint", bytes.NewBufferString(`{}`)))

	assert.NotEqual(t, http.StatusOK, rec.Code)
}
