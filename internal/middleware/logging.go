package middleware

import (
	"context"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	reqcontext "github.com/prajwalbharadwajbm/fundledger/internal/context"
	"github.com/prajwalbharadwajbm/fundledger/internal/models"
	"github.com/prajwalbharadwajbm/fundledger/internal/service"
)

// loggingMiddleware implements logging middleware for CrowdfundingService
type loggingMiddleware struct {
	logger log.Logger
	next   service.CrowdfundingService
}

// NewLoggingMiddleware creates a new logging middleware
func NewLoggingMiddleware(logger log.Logger) func(service.CrowdfundingService) service.CrowdfundingService {
	return func(next service.CrowdfundingService) service.CrowdfundingService {
		return &loggingMiddleware{
			logger: logger,
			next:   next,
		}
	}
}

// log writes one line per call. Domain failures are logged at info, anything else at error.
func (mw *loggingMiddleware) log(ctx context.Context, method string, begin time.Time, err error, fields ...interface{}) {
	// Get request context information
	requestID := reqcontext.GetRequestID(ctx)
	remoteAddr := reqcontext.GetRemoteAddr(ctx)

	logFields := []interface{}{
		"method", method,
		"request_id", requestID,
	}
	logFields = append(logFields, fields...)
	logFields = append(logFields, "took", time.Since(begin))

	if remoteAddr != "" {
		logFields = append(logFields, "remote_addr", remoteAddr)
	}

	logger := level.Info(mw.logger)
	if err != nil {
		logFields = append(logFields, "error", err.Error(), "success", false)
		if kind := models.ErrorKindOf(err); kind != "" {
			logFields = append(logFields, "error_kind", kind)
		} else {
			logger = level.Error(mw.logger)
		}
	} else {
		logFields = append(logFields, "error", nil, "success", true)
	}

	logger.Log(logFields...)
}

func (mw *loggingMiddleware) AddCampaign(ctx context.Context, caller models.Address, in models.CampaignInput) (id uint64, err error) {
	defer func(begin time.Time) {
		mw.log(ctx, "AddCampaign", begin, err, "caller", caller, "campaign_id", id, "goal", in.Goal)
	}(time.Now())
	return mw.next.AddCampaign(ctx, caller, in)
}

func (mw *loggingMiddleware) GetCampaign(ctx context.Context, id uint64) (c models.Campaign, err error) {
	defer func(begin time.Time) {
		mw.log(ctx, "GetCampaign", begin, err, "campaign_id", id)
	}(time.Now())
	return mw.next.GetCampaign(ctx, id)
}

func (mw *loggingMiddleware) ListCampaigns(ctx context.Context) (campaigns []models.Campaign, err error) {
	defer func(begin time.Time) {
		mw.log(ctx, "ListCampaigns", begin, err, "campaigns_count", len(campaigns))
	}(time.Now())
	return mw.next.ListCampaigns(ctx)
}

func (mw *loggingMiddleware) UpdateCampaign(ctx context.Context, caller models.Address, id uint64, in models.CampaignInput) (err error) {
	defer func(begin time.Time) {
		mw.log(ctx, "UpdateCampaign", begin, err, "caller", caller, "campaign_id", id)
	}(time.Now())
	return mw.next.UpdateCampaign(ctx, caller, id, in)
}

func (mw *loggingMiddleware) ModifyCampaignSuccessStatus(ctx context.Context, caller models.Address, id uint64, isSuccessful bool) (err error) {
	defer func(begin time.Time) {
		mw.log(ctx, "ModifyCampaignSuccessStatus", begin, err, "caller", caller, "campaign_id", id, "is_successful", isSuccessful)
	}(time.Now())
	return mw.next.ModifyCampaignSuccessStatus(ctx, caller, id, isSuccessful)
}

func (mw *loggingMiddleware) SetAuthorisedToken(ctx context.Context, caller, asset models.Address, authorised bool) (err error) {
	defer func(begin time.Time) {
		mw.log(ctx, "SetAuthorisedToken", begin, err, "caller", caller, "asset", asset, "authorised", authorised)
	}(time.Now())
	return mw.next.SetAuthorisedToken(ctx, caller, asset, authorised)
}

func (mw *loggingMiddleware) UnsetAuthorisedToken(ctx context.Context, caller, asset models.Address) (err error) {
	defer func(begin time.Time) {
		mw.log(ctx, "UnsetAuthorisedToken", begin, err, "caller", caller, "asset", asset)
	}(time.Now())
	return mw.next.UnsetAuthorisedToken(ctx, caller, asset)
}

func (mw *loggingMiddleware) IsAuthorisedToken(ctx context.Context, asset models.Address) (ok bool, err error) {
	defer func(begin time.Time) {
		mw.log(ctx, "IsAuthorisedToken", begin, err, "asset", asset, "authorised", ok)
	}(time.Now())
	return mw.next.IsAuthorisedToken(ctx, asset)
}

func (mw *loggingMiddleware) Owner(ctx context.Context) (owner models.Address, err error) {
	defer func(begin time.Time) {
		mw.log(ctx, "Owner", begin, err)
	}(time.Now())
	return mw.next.Owner(ctx)
}

func (mw *loggingMiddleware) TransferOwnership(ctx context.Context, caller, newOwner models.Address) (err error) {
	defer func(begin time.Time) {
		mw.log(ctx, "TransferOwnership", begin, err, "caller", caller, "new_owner", newOwner)
	}(time.Now())
	return mw.next.TransferOwnership(ctx, caller, newOwner)
}

func (mw *loggingMiddleware) ContributeWithEther(ctx context.Context, caller models.Address, id uint64, amount models.Amount) (err error) {
	defer func(begin time.Time) {
		mw.log(ctx, "ContributeWithEther", begin, err, "caller", caller, "campaign_id", id, "amount", amount)
	}(time.Now())
	return mw.next.ContributeWithEther(ctx, caller, id, amount)
}

func (mw *loggingMiddleware) ContributeWithToken(ctx context.Context, caller models.Address, id uint64, amount models.Amount, asset models.Address) (err error) {
	defer func(begin time.Time) {
		mw.log(ctx, "ContributeWithToken", begin, err, "caller", caller, "campaign_id", id, "amount", amount, "asset", asset)
	}(time.Now())
	return mw.next.ContributeWithToken(ctx, caller, id, amount, asset)
}

func (mw *loggingMiddleware) Refund(ctx context.Context, caller models.Address, id uint64) (refunded models.Contribution, err error) {
	defer func(begin time.Time) {
		mw.log(ctx, "Refund", begin, err, "caller", caller, "campaign_id", id, "amount", refunded.Amount, "asset", refunded.Asset)
	}(time.Now())
	return mw.next.Refund(ctx, caller, id)
}

func (mw *loggingMiddleware) GetContribution(ctx context.Context, id uint64, contributor models.Address) (c models.Contribution, err error) {
	defer func(begin time.Time) {
		mw.log(ctx, "GetContribution", begin, err, "campaign_id", id, "contributor", contributor)
	}(time.Now())
	return mw.next.GetContribution(ctx, id, contributor)
}

func (mw *loggingMiddleware) ListEvents(ctx context.Context, filter models.EventFilter) (events []models.Event, err error) {
	defer func(begin time.Time) {
		mw.log(ctx, "ListEvents", begin, err, "type", filter.Type, "after", filter.AfterSeq, "events_count", len(events))
	}(time.Now())
	return mw.next.ListEvents(ctx, filter)
}
