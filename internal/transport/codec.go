package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	kitendpoint "github.com/go-kit/kit/endpoint"
	httptransport "github.com/go-kit/kit/transport/http"
	"github.com/gorilla/mux"
	"github.com/prajwalbharadwajbm/fundledger/internal/endpoint"
	"github.com/prajwalbharadwajbm/fundledger/internal/models"
)

func campaignID(r *http.Request) (uint64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, models.ErrInvalidCampaignID.With("id", raw)
	}
	return id, nil
}

func pathAddress(r *http.Request, name string) (models.Address, error) {
	return models.ParseAddress(mux.Vars(r)[name])
}

// decodeBody reads a JSON body into v. Address and amount failures keep their own condition.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	err := dec.Decode(v)
	if err == nil {
		return nil
	}
	var le *models.Error
	if errors.As(err, &le) {
		return le
	}
	if errors.Is(err, io.EOF) {
		return models.ErrMalformedBody.With("reason", "empty body")
	}
	return models.ErrMalformedBody.With("reason", err.Error())
}

func decodeAddCampaignRequest(_ context.Context, r *http.Request) (any, error) {
	var in models.CampaignInput
	if err := decodeBody(r, &in); err != nil {
		return nil, err
	}
	return endpoint.AddCampaignRequest{Input: in}, nil
}

func decodeListCampaignsRequest(_ context.Context, _ *http.Request) (any, error) {
	return endpoint.ListCampaignsRequest{}, nil
}

func decodeCampaignRequest(_ context.Context, r *http.Request) (any, error) {
	id, err := campaignID(r)
	if err != nil {
		return nil, err
	}
	return endpoint.CampaignRequest{ID: id}, nil
}

func decodeUpdateCampaignRequest(_ context.Context, r *http.Request) (any, error) {
	id, err := campaignID(r)
	if err != nil {
		return nil, err
	}
	var in models.CampaignInput
	if err := decodeBody(r, &in); err != nil {
		return nil, err
	}
	return endpoint.UpdateCampaignRequest{ID: id, Input: in}, nil
}

func decodeModifySuccessStatusRequest(_ context.Context, r *http.Request) (any, error) {
	id, err := campaignID(r)
	if err != nil {
		return nil, err
	}
	var body struct {
		IsSuccessful *bool `json:"isSuccessful"`
	}
	if err := decodeBody(r, &body); err != nil {
		return nil, err
	}
	if body.IsSuccessful == nil {
		return nil, models.ErrMalformedBody.With("missing", "isSuccessful")
	}
	return endpoint.ModifySuccessStatusRequest{ID: id, IsSuccessful: *body.IsSuccessful}, nil
}

func decodeContributeRequest(_ context.Context, r *http.Request) (any, error) {
	id, err := campaignID(r)
	if err != nil {
		return nil, err
	}
	var body struct {
		Amount models.Amount  `json:"amount"`
		Asset  models.Address `json:"asset"`
	}
	if err := decodeBody(r, &body); err != nil {
		return nil, err
	}
	return endpoint.ContributeRequest{Contribution: models.ContributionRequest{
		CampaignID: id,
		Amount:     body.Amount,
		Asset:      body.Asset,
	}}, nil
}

func decodeGetContributionRequest(_ context.Context, r *http.Request) (any, error) {
	id, err := campaignID(r)
	if err != nil {
		return nil, err
	}
	contributor, err := pathAddress(r, "contributor")
	if err != nil {
		return nil, err
	}
	return endpoint.GetContributionRequest{ID: id, Contributor: contributor}, nil
}

func decodeRefundRequest(_ context.Context, r *http.Request) (any, error) {
	id, err := campaignID(r)
	if err != nil {
		return nil, err
	}
	return endpoint.RefundRequest{ID: id}, nil
}

func decodeTokenRequest(_ context.Context, r *http.Request) (any, error) {
	asset, err := pathAddress(r, "asset")
	if err != nil {
		return nil, err
	}
	return endpoint.TokenRequest{Asset: asset}, nil
}

func decodeSetTokenRequest(_ context.Context, r *http.Request) (any, error) {
	asset, err := pathAddress(r, "asset")
	if err != nil {
		return nil, err
	}
	var body struct {
		Authorised *bool `json:"authorised"`
	}
	if err := decodeBody(r, &body); err != nil {
		return nil, err
	}
	if body.Authorised == nil {
		return nil, models.ErrMalformedBody.With("missing", "authorised")
	}
	return endpoint.TokenRequest{Asset: asset, Authorised: *body.Authorised}, nil
}

func decodeOwnerRequest(_ context.Context, _ *http.Request) (any, error) {
	return endpoint.OwnerRequest{}, nil
}

func decodeTransferOwnershipRequest(_ context.Context, r *http.Request) (any, error) {
	var req endpoint.TransferOwnershipRequest
	if err := decodeBody(r, &req); err != nil {
		return nil, err
	}
	return req, nil
}

// decodeListEventsRequest reads the type, campaignId, after and limit query parameters
func decodeListEventsRequest(_ context.Context, r *http.Request) (any, error) {
	query := r.URL.Query()
	filter := models.EventFilter{Type: models.EventType(query.Get("type"))}

	if raw := query.Get("campaignId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, models.ErrInvalidQuery.With("campaignId", raw)
		}
		filter.CampaignID = &id
	}
	if raw := query.Get("after"); raw != "" {
		after, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, models.ErrInvalidQuery.With("after", raw)
		}
		filter.AfterSeq = after
	}
	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return nil, models.ErrInvalidQuery.With("limit", raw)
		}
		filter.Limit = limit
	}

	return endpoint.ListEventsRequest{Filter: filter}, nil
}

// payload selects what a successful response writes to the body
func payload(response any) any {
	switch resp := response.(type) {
	case endpoint.AddCampaignResponse:
		return models.CampaignCreatedResponse{ID: resp.ID}
	case endpoint.CampaignResponse:
		return resp.Campaign
	case endpoint.ContributionResponse:
		return resp.Contribution
	case endpoint.TokenResponse:
		return resp.Status
	case endpoint.OwnerResponse:
		return resp.Owner
	default:
		return response
	}
}

// encodeWith writes successful responses with status and routes business failures to encodeError
func encodeWith(status int) httptransport.EncodeResponseFunc {
	return func(ctx context.Context, w http.ResponseWriter, response any) error {
		if f, ok := response.(kitendpoint.Failer); ok && f.Failed() != nil {
			encodeError(ctx, f.Failed(), w)
			return nil
		}
		if status == http.StatusNoContent {
			w.WriteHeader(status)
			return nil
		}
		return writeJSON(w, status, payload(response))
	}
}

var (
	encodeOK        = encodeWith(http.StatusOK)
	encodeCreated   = encodeWith(http.StatusCreated)
	encodeNoContent = encodeWith(http.StatusNoContent)
)

func writeJSON(w http.ResponseWriter, status int, body any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(body)
}

// statusFor maps ledger error kinds to HTTP status codes
func statusFor(err error) int {
	if errors.Is(err, models.ErrMissingCaller) || errors.Is(err, models.ErrInvalidToken) {
		return http.StatusUnauthorized
	}
	switch models.ErrorKindOf(err) {
	case models.KindInvalidArgument:
		return http.StatusBadRequest
	case models.KindNotFound:
		return http.StatusNotFound
	case models.KindUnauthorized, models.KindForbidden:
		return http.StatusForbidden
	case models.KindInvalidState:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// encodeError encodes error to HTTP response. Errors outside the ledger's
// vocabulary are reported without their message.
func encodeError(_ context.Context, err error, w http.ResponseWriter) {
	status := statusFor(err)
	body := models.NewErrorResponse(err)
	if status == http.StatusInternalServerError {
		body = models.ErrorResponse{Error: http.StatusText(status)}
	}
	writeJSON(w, status, body)
}
