package middleware

import (
	"context"
	"time"

	"github.com/prajwalbharadwajbm/fundledger/internal/metrics"
	"github.com/prajwalbharadwajbm/fundledger/internal/models"
	"github.com/prajwalbharadwajbm/fundledger/internal/service"
)

// serviceMetricsMiddleware implements metrics collection for CrowdfundingService
type serviceMetricsMiddleware struct {
	metrics *metrics.Metrics
	next    service.CrowdfundingService
}

// NewServiceMetricsMiddleware creates a new service metrics middleware
func NewServiceMetricsMiddleware(metrics *metrics.Metrics) func(service.CrowdfundingService) service.CrowdfundingService {
	return func(next service.CrowdfundingService) service.CrowdfundingService {
		return &serviceMetricsMiddleware{
			metrics: metrics,
			next:    next,
		}
	}
}

// observe records the call under the outcome "success" or the error kind
func (mw *serviceMetricsMiddleware) observe(method string, begin time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
		if kind := models.ErrorKindOf(err); kind != "" {
			outcome = string(kind)
		}
	}
	mw.metrics.RecordOperation(method, outcome, time.Since(begin).Seconds())
}

func assetLabel(asset models.Address) string {
	if asset.IsNative() {
		return "native"
	}
	return asset.String()
}

func (mw *serviceMetricsMiddleware) AddCampaign(ctx context.Context, caller models.Address, in models.CampaignInput) (id uint64, err error) {
	defer func(begin time.Time) { mw.observe("AddCampaign", begin, err) }(time.Now())
	return mw.next.AddCampaign(ctx, caller, in)
}

func (mw *serviceMetricsMiddleware) GetCampaign(ctx context.Context, id uint64) (c models.Campaign, err error) {
	defer func(begin time.Time) { mw.observe("GetCampaign", begin, err) }(time.Now())
	return mw.next.GetCampaign(ctx, id)
}

func (mw *serviceMetricsMiddleware) ListCampaigns(ctx context.Context) (cs []models.Campaign, err error) {
	defer func(begin time.Time) { mw.observe("ListCampaigns", begin, err) }(time.Now())
	return mw.next.ListCampaigns(ctx)
}

func (mw *serviceMetricsMiddleware) UpdateCampaign(ctx context.Context, caller models.Address, id uint64, in models.CampaignInput) (err error) {
	defer func(begin time.Time) { mw.observe("UpdateCampaign", begin, err) }(time.Now())
	return mw.next.UpdateCampaign(ctx, caller, id, in)
}

func (mw *serviceMetricsMiddleware) ModifyCampaignSuccessStatus(ctx context.Context, caller models.Address, id uint64, isSuccessful bool) (err error) {
	defer func(begin time.Time) { mw.observe("ModifyCampaignSuccessStatus", begin, err) }(time.Now())
	return mw.next.ModifyCampaignSuccessStatus(ctx, caller, id, isSuccessful)
}

func (mw *serviceMetricsMiddleware) SetAuthorisedToken(ctx context.Context, caller, asset models.Address, authorised bool) (err error) {
	defer func(begin time.Time) { mw.observe("SetAuthorisedToken", begin, err) }(time.Now())
	return mw.next.SetAuthorisedToken(ctx, caller, asset, authorised)
}

func (mw *serviceMetricsMiddleware) UnsetAuthorisedToken(ctx context.Context, caller, asset models.Address) (err error) {
	defer func(begin time.Time) { mw.observe("UnsetAuthorisedToken", begin, err) }(time.Now())
	return mw.next.UnsetAuthorisedToken(ctx, caller, asset)
}

func (mw *serviceMetricsMiddleware) IsAuthorisedToken(ctx context.Context, asset models.Address) (ok bool, err error) {
	defer func(begin time.Time) { mw.observe("IsAuthorisedToken", begin, err) }(time.Now())
	return mw.next.IsAuthorisedToken(ctx, asset)
}

func (mw *serviceMetricsMiddleware) Owner(ctx context.Context) (owner models.Address, err error) {
	defer func(begin time.Time) { mw.observe("Owner", begin, err) }(time.Now())
	return mw.next.Owner(ctx)
}

func (mw *serviceMetricsMiddleware) TransferOwnership(ctx context.Context, caller, newOwner models.Address) (err error) {
	defer func(begin time.Time) { mw.observe("TransferOwnership", begin, err) }(time.Now())
	return mw.next.TransferOwnership(ctx, caller, newOwner)
}

func (mw *serviceMetricsMiddleware) ContributeWithEther(ctx context.Context, caller models.Address, id uint64, amount models.Amount) (err error) {
	defer func(begin time.Time) { mw.observe("ContributeWithEther", begin, err) }(time.Now())
	if err = mw.next.ContributeWithEther(ctx, caller, id, amount); err == nil {
		mw.metrics.RecordContribution(assetLabel(models.NativeAsset), amount.Float64())
	}
	return err
}

func (mw *serviceMetricsMiddleware) ContributeWithToken(ctx context.Context, caller models.Address, id uint64, amount models.Amount, asset models.Address) (err error) {
	defer func(begin time.Time) { mw.observe("ContributeWithToken", begin, err) }(time.Now())
	if err = mw.next.ContributeWithToken(ctx, caller, id, amount, asset); err == nil {
		mw.metrics.RecordContribution(assetLabel(asset), amount.Float64())
	}
	return err
}

func (mw *serviceMetricsMiddleware) Refund(ctx context.Context, caller models.Address, id uint64) (refunded models.Contribution, err error) {
	defer func(begin time.Time) { mw.observe("Refund", begin, err) }(time.Now())
	refunded, err = mw.next.Refund(ctx, caller, id)
	if err == nil {
		mw.metrics.RecordRefund(assetLabel(refunded.Asset), refunded.Amount.Float64())
	}
	return refunded, err
}

func (mw *serviceMetricsMiddleware) GetContribution(ctx context.Context, id uint64, contributor models.Address) (c models.Contribution, err error) {
	defer func(begin time.Time) { mw.observe("GetContribution", begin, err) }(time.Now())
	return mw.next.GetContribution(ctx, id, contributor)
}

func (mw *serviceMetricsMiddleware) ListEvents(ctx context.Context, filter models.EventFilter) (events []models.Event, err error) {
	defer func(begin time.Time) { mw.observe("ListEvents", begin, err) }(time.Now())
	return mw.next.ListEvents(ctx, filter)
}
