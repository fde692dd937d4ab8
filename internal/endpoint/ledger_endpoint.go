package endpoint

import (
	"context"

	"github.com/go-kit/kit/endpoint"
	reqcontext "github.com/prajwalbharadwajbm/fundledger/internal/context"
	"github.com/prajwalbharadwajbm/fundledger/internal/models"
	"github.com/prajwalbharadwajbm/fundledger/internal/service"
)

// LedgerEndpoints holds all endpoints for the crowdfunding ledger.
// Mutating endpoints act on behalf of the caller found in the request context.
type LedgerEndpoints struct {
	AddCampaignEndpoint          endpoint.Endpoint
	ListCampaignsEndpoint        endpoint.Endpoint
	GetCampaignEndpoint          endpoint.Endpoint
	UpdateCampaignEndpoint       endpoint.Endpoint
	ModifySuccessStatusEndpoint  endpoint.Endpoint
	ContributeEndpoint           endpoint.Endpoint
	GetContributionEndpoint      endpoint.Endpoint
	RefundEndpoint               endpoint.Endpoint
	IsAuthorisedTokenEndpoint    endpoint.Endpoint
	SetAuthorisedTokenEndpoint   endpoint.Endpoint
	UnsetAuthorisedTokenEndpoint endpoint.Endpoint
	OwnerEndpoint                endpoint.Endpoint
	TransferOwnershipEndpoint    endpoint.Endpoint
	ListEventsEndpoint           endpoint.Endpoint
}

// MakeLedgerEndpoints creates endpoints for the ledger service
func MakeLedgerEndpoints(s service.CrowdfundingService) LedgerEndpoints {
	return LedgerEndpoints{
		AddCampaignEndpoint:          makeAddCampaignEndpoint(s),
		ListCampaignsEndpoint:        makeListCampaignsEndpoint(s),
		GetCampaignEndpoint:          makeGetCampaignEndpoint(s),
		UpdateCampaignEndpoint:       makeUpdateCampaignEndpoint(s),
		ModifySuccessStatusEndpoint:  makeModifySuccessStatusEndpoint(s),
		ContributeEndpoint:           makeContributeEndpoint(s),
		GetContributionEndpoint:      makeGetContributionEndpoint(s),
		RefundEndpoint:               makeRefundEndpoint(s),
		IsAuthorisedTokenEndpoint:    makeIsAuthorisedTokenEndpoint(s),
		SetAuthorisedTokenEndpoint:   makeSetAuthorisedTokenEndpoint(s),
		UnsetAuthorisedTokenEndpoint: makeUnsetAuthorisedTokenEndpoint(s),
		OwnerEndpoint:                makeOwnerEndpoint(s),
		TransferOwnershipEndpoint:    makeTransferOwnershipEndpoint(s),
		ListEventsEndpoint:           makeListEventsEndpoint(s),
	}
}

// AddCampaignRequest creates a campaign owned by the caller
type AddCampaignRequest struct {
	Input models.CampaignInput
}

// AddCampaignResponse carries the id of the new campaign
type AddCampaignResponse struct {
	ID  uint64 `json:"id"`
	Err error  `json:"-"`
}

// Failed implements the endpoint.Failer interface
func (r AddCampaignResponse) Failed() error { return r.Err }

func makeAddCampaignEndpoint(s service.CrowdfundingService) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(AddCampaignRequest)
		id, err := s.AddCampaign(ctx, reqcontext.GetCaller(ctx), req.Input)
		return AddCampaignResponse{ID: id, Err: err}, nil
	}
}

// ListCampaignsRequest lists every campaign
type ListCampaignsRequest struct{}

// ListCampaignsResponse carries campaigns in id order
type ListCampaignsResponse struct {
	Campaigns []models.Campaign `json:"campaigns"`
	Err       error             `json:"-"`
}

// Failed implements the endpoint.Failer interface
func (r ListCampaignsResponse) Failed() error { return r.Err }

func makeListCampaignsEndpoint(s service.CrowdfundingService) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		campaigns, err := s.ListCampaigns(ctx)
		if campaigns == nil {
			campaigns = []models.Campaign{}
		}
		return ListCampaignsResponse{Campaigns: campaigns, Err: err}, nil
	}
}

// CampaignRequest addresses a single campaign
type CampaignRequest struct {
	ID uint64
}

// CampaignResponse carries a single campaign
type CampaignResponse struct {
	Campaign models.Campaign
	Err      error
}

// Failed implements the endpoint.Failer interface
func (r CampaignResponse) Failed() error { return r.Err }

func makeGetCampaignEndpoint(s service.CrowdfundingService) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(CampaignRequest)
		c, err := s.GetCampaign(ctx, req.ID)
		return CampaignResponse{Campaign: c, Err: err}, nil
	}
}

// UpdateCampaignRequest replaces the editable fields of a campaign
type UpdateCampaignRequest struct {
	ID    uint64
	Input models.CampaignInput
}

// EmptyResponse is returned by operations that only report success
type EmptyResponse struct {
	Err error `json:"-"`
}

// Failed implements the endpoint.Failer interface
func (r EmptyResponse) Failed() error { return r.Err }

func makeUpdateCampaignEndpoint(s service.CrowdfundingService) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(UpdateCampaignRequest)
		err := s.UpdateCampaign(ctx, reqcontext.GetCaller(ctx), req.ID, req.Input)
		return EmptyResponse{Err: err}, nil
	}
}

// ModifySuccessStatusRequest sets the success flag of a campaign
type ModifySuccessStatusRequest struct {
	ID           uint64
	IsSuccessful bool `json:"isSuccessful"`
}

func makeModifySuccessStatusEndpoint(s service.CrowdfundingService) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(ModifySuccessStatusRequest)
		err := s.ModifyCampaignSuccessStatus(ctx, reqcontext.GetCaller(ctx), req.ID, req.IsSuccessful)
		return EmptyResponse{Err: err}, nil
	}
}

// ContributeRequest wraps a contribution; no asset means native value
type ContributeRequest struct {
	Contribution models.ContributionRequest
}

// ContributionResponse carries a contributor's entry in a campaign
type ContributionResponse struct {
	Contribution models.Contribution
	Err          error
}

// Failed implements the endpoint.Failer interface
func (r ContributionResponse) Failed() error { return r.Err }

func makeContributeEndpoint(s service.CrowdfundingService) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(ContributeRequest).Contribution
		caller := reqcontext.GetCaller(ctx)

		var err error
		if req.IsNative() {
			err = s.ContributeWithEther(ctx, caller, req.CampaignID, req.Amount)
		} else {
			err = s.ContributeWithToken(ctx, caller, req.CampaignID, req.Amount, req.Asset)
		}
		if err != nil {
			return ContributionResponse{Err: err}, nil
		}

		entry, err := s.GetContribution(ctx, req.CampaignID, caller)
		return ContributionResponse{Contribution: entry, Err: err}, nil
	}
}

// GetContributionRequest addresses one contributor's entry in a campaign
type GetContributionRequest struct {
	ID          uint64
	Contributor models.Address
}

func makeGetContributionEndpoint(s service.CrowdfundingService) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(GetContributionRequest)
		entry, err := s.GetContribution(ctx, req.ID, req.Contributor)
		return ContributionResponse{Contribution: entry, Err: err}, nil
	}
}

// RefundRequest returns the caller's contribution to a campaign
type RefundRequest struct {
	ID uint64
}

func makeRefundEndpoint(s service.CrowdfundingService) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(RefundRequest)
		refunded, err := s.Refund(ctx, reqcontext.GetCaller(ctx), req.ID)
		return ContributionResponse{Contribution: refunded, Err: err}, nil
	}
}

// TokenRequest addresses an asset in the allow-list
type TokenRequest struct {
	Asset      models.Address
	Authorised bool `json:"authorised"`
}

// TokenResponse carries the allow-list status of an asset
type TokenResponse struct {
	Status models.TokenAuthorisationResponse
	Err    error
}

// Failed implements the endpoint.Failer interface
func (r TokenResponse) Failed() error { return r.Err }

func makeIsAuthorisedTokenEndpoint(s service.CrowdfundingService) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(TokenRequest)
		ok, err := s.IsAuthorisedToken(ctx, req.Asset)
		return TokenResponse{
			Status: models.TokenAuthorisationResponse{Asset: req.Asset, Authorised: ok},
			Err:    err,
		}, nil
	}
}

func makeSetAuthorisedTokenEndpoint(s service.CrowdfundingService) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(TokenRequest)
		err := s.SetAuthorisedToken(ctx, reqcontext.GetCaller(ctx), req.Asset, req.Authorised)
		return TokenResponse{
			Status: models.TokenAuthorisationResponse{Asset: req.Asset, Authorised: req.Authorised},
			Err:    err,
		}, nil
	}
}

func makeUnsetAuthorisedTokenEndpoint(s service.CrowdfundingService) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(TokenRequest)
		err := s.UnsetAuthorisedToken(ctx, reqcontext.GetCaller(ctx), req.Asset)
		return TokenResponse{
			Status: models.TokenAuthorisationResponse{Asset: req.Asset, Authorised: false},
			Err:    err,
		}, nil
	}
}

// OwnerRequest reads the current owner
type OwnerRequest struct{}

// TransferOwnershipRequest hands the owner role to another principal
type TransferOwnershipRequest struct {
	NewOwner models.Address `json:"newOwner"`
}

// OwnerResponse carries the owner principal
type OwnerResponse struct {
	Owner models.OwnerResponse
	Err   error
}

// Failed implements the endpoint.Failer interface
func (r OwnerResponse) Failed() error { return r.Err }

func makeOwnerEndpoint(s service.CrowdfundingService) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		owner, err := s.Owner(ctx)
		return OwnerResponse{Owner: models.OwnerResponse{Owner: owner}, Err: err}, nil
	}
}

func makeTransferOwnershipEndpoint(s service.CrowdfundingService) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(TransferOwnershipRequest)
		err := s.TransferOwnership(ctx, reqcontext.GetCaller(ctx), req.NewOwner)
		return OwnerResponse{Owner: models.OwnerResponse{Owner: req.NewOwner}, Err: err}, nil
	}
}

// ListEventsRequest queries the event log
type ListEventsRequest struct {
	Filter models.EventFilter
}

// ListEventsResponse carries events in sequence order
type ListEventsResponse struct {
	Events []models.Event `json:"events"`
	Err    error          `json:"-"`
}

// Failed implements the endpoint.Failer interface
func (r ListEventsResponse) Failed() error { return r.Err }

func makeListEventsEndpoint(s service.CrowdfundingService) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(ListEventsRequest)
		events, err := s.ListEvents(ctx, req.Filter)
		if events == nil {
			events = []models.Event{}
		}
		return ListEventsResponse{Events: events, Err: err}, nil
	}
}

// Contribute is a helper method to call the contribute endpoint
func (e LedgerEndpoints) Contribute(ctx context.Context, req models.ContributionRequest) (models.Contribution, error) {
	response, err := e.ContributeEndpoint(ctx, ContributeRequest{Contribution: req})
	if err != nil {
		return models.Contribution{}, err
	}
	resp := response.(ContributionResponse)
	return resp.Contribution, resp.Err
}
