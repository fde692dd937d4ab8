package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-kit/log"
	"github.com/gorilla/mux"
	reqcontext "github.com/prajwalbharadwajbm/fundledger/internal/context"
	"github.com/prajwalbharadwajbm/fundledger/internal/metrics"
	"github.com/prajwalbharadwajbm/fundledger/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCrowdfundingService is a mock implementation of service.CrowdfundingService
type MockCrowdfundingService struct {
	mock.Mock
}

func (m *MockCrowdfundingService) AddCampaign(ctx context.Context, caller models.Address, in models.CampaignInput) (uint64, error) {
	args := m.Called(ctx, caller, in)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockCrowdfundingService) GetCampaign(ctx context.Context, id uint64) (models.Campaign, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Campaign), args.Error(1)
}

func (m *MockCrowdfundingService) ListCampaigns(ctx context.Context) ([]models.Campaign, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Campaign), args.Error(1)
}

func (m *MockCrowdfundingService) UpdateCampaign(ctx context.Context, caller models.Address, id uint64, in models.CampaignInput) error {
	return m.Called(ctx, caller, id, in).Error(0)
}

func (m *MockCrowdfundingService) ModifyCampaignSuccessStatus(ctx context.Context, caller models.Address, id uint64, isSuccessful bool) error {
	return m.Called(ctx, caller, id, isSuccessful).Error(0)
}

func (m *MockCrowdfundingService) SetAuthorisedToken(ctx context.Context, caller, asset models.Address, authorised bool) error {
	return m.Called(ctx, caller, asset, authorised).Error(0)
}

func (m *MockCrowdfundingService) UnsetAuthorisedToken(ctx context.Context, caller, asset models.Address) error {
	return m.Called(ctx, caller, asset).Error(0)
}

func (m *MockCrowdfundingService) IsAuthorisedToken(ctx context.Context, asset models.Address) (bool, error) {
	args := m.Called(ctx, asset)
	return args.Bool(0), args.Error(1)
}

func (m *MockCrowdfundingService) Owner(ctx context.Context) (models.Address, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.Address), args.Error(1)
}

func (m *MockCrowdfundingService) TransferOwnership(ctx context.Context, caller, newOwner models.Address) error {
	return m.Called(ctx, caller, newOwner).Error(0)
}

func (m *MockCrowdfundingService) ContributeWithEther(ctx context.Context, caller models.Address, id uint64, amount models.Amount) error {
	return m.Called(ctx, caller, id, amount).Error(0)
}

func (m *MockCrowdfundingService) ContributeWithToken(ctx context.Context, caller models.Address, id uint64, amount models.Amount, asset models.Address) error {
	return m.Called(ctx, caller, id, amount, asset).Error(0)
}

func (m *MockCrowdfundingService) Refund(ctx context.Context, caller models.Address, id uint64) (models.Contribution, error) {
	args := m.Called(ctx, caller, id)
	return args.Get(0).(models.Contribution), args.Error(1)
}

func (m *MockCrowdfundingService) GetContribution(ctx context.Context, id uint64, contributor models.Address) (models.Contribution, error) {
	args := m.Called(ctx, id, contributor)
	return args.Get(0).(models.Contribution), args.Error(1)
}

func (m *MockCrowdfundingService) ListEvents(ctx context.Context, filter models.EventFilter) ([]models.Event, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.Event), args.Error(1)
}

var (
	alice = models.MustParseAddress("0x00000000000000000000000000000000000000a1")
	token = models.MustParseAddress("0x00000000000000000000000000000000000000c1")
)

func TestLoggingMiddleware(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantParts []string
	}{
		{
			name:      "success",
			wantParts: []string{"method=ContributeWithEther", "campaign_id=3", "amount=5", "success=true", "request_id=req-1", "level=info"},
		},
		{
			name:      "domain failure",
			err:       models.ErrCampaignNotActive,
			wantParts: []string{"success=false", "error_kind=INVALID_STATE", "level=info"},
		},
		{
			name:      "infrastructure failure",
			err:       errors.New("connection reset"),
			wantParts: []string{"success=false", "level=error", `error="connection reset"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			next := new(MockCrowdfundingService)
			svc := NewLoggingMiddleware(log.NewLogfmtLogger(&buf))(next)
			ctx := reqcontext.WithRequestID(context.Background(), "req-1")

			next.On("ContributeWithEther", ctx, alice, uint64(3), models.NewAmount(5)).Return(tt.err)

			err := svc.ContributeWithEther(ctx, alice, 3, models.NewAmount(5))
			assert.Equal(t, tt.err, err)
			for _, part := range tt.wantParts {
				assert.Contains(t, buf.String(), part)
			}
			next.AssertExpectations(t)
		})
	}
}

func TestServiceMetricsMiddleware(t *testing.T) {
	m := metrics.NewPrometheusMetrics(prometheus.NewRegistry())
	next := new(MockCrowdfundingService)
	svc := NewServiceMetricsMiddleware(m)(next)
	ctx := context.Background()

	next.On("ContributeWithToken", ctx, alice, uint64(1), models.NewAmount(40), token).Return(nil)
	next.On("ContributeWithEther", ctx, alice, uint64(1), models.NewAmount(2)).Return(models.ErrCampaignNotActive)
	next.On("Refund", ctx, alice, uint64(1)).Return(models.Contribution{Amount: models.NewAmount(40), Asset: token}, nil)

	require.NoError(t, svc.ContributeWithToken(ctx, alice, 1, models.NewAmount(40), token))
	require.Error(t, svc.ContributeWithEther(ctx, alice, 1, models.NewAmount(2)))
	_, err := svc.Refund(ctx, alice, 1)
	require.NoError(t, err)

	assert.Equal(t, 40.0, testutil.ToFloat64(m.AmountContributed.WithLabelValues(token.String())))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.AmountContributed.WithLabelValues("native")))
	assert.Equal(t, 40.0, testutil.ToFloat64(m.AmountRefunded.WithLabelValues(token.String())))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LedgerOperations.WithLabelValues("ContributeWithEther", "INVALID_STATE")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LedgerOperations.WithLabelValues("Refund", "success")))
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	handler := NewRequestIDMiddleware().Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = reqcontext.GetRequestID(r.Context())
	}))

	t.Run("generated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))
	})

	t.Run("propagated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("X-Request-ID", "upstream-42")
		handler.ServeHTTP(rec, req)

		assert.Equal(t, "upstream-42", seen)
		assert.Equal(t, "upstream-42", rec.Header().Get("X-Request-ID"))
	})
}

func TestMetricsMiddleware_UsesRouteTemplate(t *testing.T) {
	m := metrics.NewPrometheusMetrics(prometheus.NewRegistry())
	r := mux.NewRouter()
	r.Use(NewMetricsMiddleware(m).Middleware)
	r.HandleFunc("/v1/campaigns/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}).Methods(http.MethodGet)

	for _, path := range []string{"/v1/campaigns/1", "/v1/campaigns/2"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/v1/campaigns/{id}", "404")))
}
