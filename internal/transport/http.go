package transport

import (
	"context"
	"net/http"
	"time"

	kitendpoint "github.com/go-kit/kit/endpoint"
	kittransport "github.com/go-kit/kit/transport"
	httptransport "github.com/go-kit/kit/transport/http"
	"github.com/go-kit/log"
	"github.com/gorilla/mux"
	"github.com/prajwalbharadwajbm/fundledger/internal/assets"
	"github.com/prajwalbharadwajbm/fundledger/internal/auth"
	"github.com/prajwalbharadwajbm/fundledger/internal/endpoint"
	"github.com/prajwalbharadwajbm/fundledger/internal/metrics"
	"github.com/prajwalbharadwajbm/fundledger/internal/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthCheck reports whether a dependency is usable
type HealthCheck func(ctx context.Context) error

type handlerConfig struct {
	metrics *metrics.Metrics
	tokens  *auth.TokenManager
	vault   *assets.Vault
	checks  map[string]HealthCheck
	service string
	version string
}

// HandlerOption configures NewHTTPHandler
type HandlerOption func(*handlerConfig)

// WithMetrics records HTTP metrics and serves /metrics
func WithMetrics(m *metrics.Metrics) HandlerOption {
	return func(c *handlerConfig) { c.metrics = m }
}

// WithAuth resolves the caller from bearer tokens
func WithAuth(tokens *auth.TokenManager) HandlerOption {
	return func(c *handlerConfig) { c.tokens = tokens }
}

// WithVaultEndpoints exposes the development mint, approve and balance routes
func WithVaultEndpoints(v *assets.Vault) HandlerOption {
	return func(c *handlerConfig) { c.vault = v }
}

// WithHealthCheck adds a named dependency check to /health
func WithHealthCheck(name string, check HealthCheck) HandlerOption {
	return func(c *handlerConfig) { c.checks[name] = check }
}

// WithServiceInfo sets the name and version reported by /health
func WithServiceInfo(service, version string) HandlerOption {
	return func(c *handlerConfig) {
		c.service = service
		c.version = version
	}
}

// NewHTTPHandler creates HTTP handlers for the ledger service
func NewHTTPHandler(endpoints endpoint.LedgerEndpoints, logger log.Logger, opts ...HandlerOption) http.Handler {
	cfg := &handlerConfig{
		checks:  make(map[string]HealthCheck),
		service: "fundledger",
		version: "dev",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	options := []httptransport.ServerOption{
		httptransport.ServerErrorEncoder(encodeError),
		httptransport.ServerErrorHandler(kittransport.NewLogErrorHandler(logger)),
	}
	server := func(e kitendpoint.Endpoint, dec httptransport.DecodeRequestFunc, enc httptransport.EncodeResponseFunc) http.Handler {
		return httptransport.NewServer(e, dec, enc, options...)
	}

	r := mux.NewRouter()
	r.Use(middleware.NewRequestIDMiddleware().Middleware)
	if cfg.metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(cfg.metrics).Middleware)
	}
	if cfg.tokens != nil {
		r.Use(cfg.tokens.Middleware)
	}

	v1 := r.PathPrefix("/v1").Subrouter()

	// Campaigns
	v1.Handle("/campaigns", server(endpoints.AddCampaignEndpoint, decodeAddCampaignRequest, encodeCreated)).Methods(http.MethodPost)
	v1.Handle("/campaigns", server(endpoints.ListCampaignsEndpoint, decodeListCampaignsRequest, encodeOK)).Methods(http.MethodGet)
	v1.Handle("/campaigns/{id}", server(endpoints.GetCampaignEndpoint, decodeCampaignRequest, encodeOK)).Methods(http.MethodGet)
	v1.Handle("/campaigns/{id}", server(endpoints.UpdateCampaignEndpoint, decodeUpdateCampaignRequest, encodeNoContent)).Methods(http.MethodPut)
	v1.Handle("/campaigns/{id}/success", server(endpoints.ModifySuccessStatusEndpoint, decodeModifySuccessStatusRequest, encodeNoContent)).Methods(http.MethodPut)

	// Funding
	v1.Handle("/campaigns/{id}/contributions", server(endpoints.ContributeEndpoint, decodeContributeRequest, encodeOK)).Methods(http.MethodPost)
	v1.Handle("/campaigns/{id}/contributions/{contributor}", server(endpoints.GetContributionEndpoint, decodeGetContributionRequest, encodeOK)).Methods(http.MethodGet)
	v1.Handle("/campaigns/{id}/refund", server(endpoints.RefundEndpoint, decodeRefundRequest, encodeOK)).Methods(http.MethodPost)

	// Registry
	v1.Handle("/tokens/{asset}", server(endpoints.IsAuthorisedTokenEndpoint, decodeTokenRequest, encodeOK)).Methods(http.MethodGet)
	v1.Handle("/tokens/{asset}", server(endpoints.SetAuthorisedTokenEndpoint, decodeSetTokenRequest, encodeOK)).Methods(http.MethodPut)
	v1.Handle("/tokens/{asset}", server(endpoints.UnsetAuthorisedTokenEndpoint, decodeTokenRequest, encodeOK)).Methods(http.MethodDelete)
	v1.Handle("/owner", server(endpoints.OwnerEndpoint, decodeOwnerRequest, encodeOK)).Methods(http.MethodGet)
	v1.Handle("/owner", server(endpoints.TransferOwnershipEndpoint, decodeTransferOwnershipRequest, encodeOK)).Methods(http.MethodPut)

	v1.Handle("/events", server(endpoints.ListEventsEndpoint, decodeListEventsRequest, encodeOK)).Methods(http.MethodGet)

	if cfg.vault != nil {
		registerVaultRoutes(v1, cfg.vault)
	}

	r.Handle("/health", healthHandler(cfg)).Methods(http.MethodGet)
	if cfg.metrics != nil {
		r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	}

	return r
}

const healthCheckTimeout = 2 * time.Second

// healthHandler runs every registered check and reports 503 if any fails
func healthHandler(cfg *handlerConfig) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		status := "healthy"
		code := http.StatusOK
		checks := make(map[string]string, len(cfg.checks))
		for name, check := range cfg.checks {
			err := check(ctx)
			if cfg.metrics != nil {
				cfg.metrics.SetHealthCheckStatus(name, err == nil)
			}
			if err != nil {
				checks[name] = err.Error()
				status = "unhealthy"
				code = http.StatusServiceUnavailable
				continue
			}
			checks[name] = "ok"
		}

		writeJSON(w, code, map[string]any{
			"status":  status,
			"service": cfg.service,
			"version": cfg.version,
			"checks":  checks,
		})
	})
}
