package service_test

import (
	"context"
	"testing"

	"github.com/prajwalbharadwajbm/fundledger/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddCampaign_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(in *models.CampaignInput)
		wantErr error
	}{
		{name: "zero goal", mutate: func(in *models.CampaignInput) { in.Goal = models.NewAmount(0) }, wantErr: models.ErrGoalNotPositive},
		{name: "empty name", mutate: func(in *models.CampaignInput) { in.Name = "" }, wantErr: models.ErrNameEmpty},
		{name: "blank name", mutate: func(in *models.CampaignInput) { in.Name = "   " }, wantErr: models.ErrNameEmpty},
		{name: "empty description", mutate: func(in *models.CampaignInput) { in.Description = "" }, wantErr: models.ErrDescriptionEmpty},
		{name: "empty image url", mutate: func(in *models.CampaignInput) { in.ImageURL = "" }, wantErr: models.ErrImageURLEmpty},
		{
			name: "goal reported before text fields",
			mutate: func(in *models.CampaignInput) {
				in.Goal = models.NewAmount(0)
				in.Name = ""
			},
			wantErr: models.ErrGoalNotPositive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			in := validInput(10)
			tt.mutate(&in)

			_, err := f.svc.AddCampaign(context.Background(), creator, in)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, models.ErrInvalidArgument)

			campaigns, err := f.svc.ListCampaigns(context.Background())
			require.NoError(t, err)
			assert.Empty(t, campaigns)
		})
	}
}

func TestAddCampaign_DenseIDs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for want := uint64(0); want < 3; want++ {
		id, err := f.svc.AddCampaign(ctx, creator, validInput(10))
		require.NoError(t, err)
		assert.Equal(t, want, id)
	}

	// A rejected create does not consume an id
	_, err := f.svc.AddCampaign(ctx, creator, validInput(0))
	require.Error(t, err)
	id, err := f.svc.AddCampaign(ctx, creator, validInput(10))
	require.NoError(t, err)
	assert.Equal(t, uint64(3), id)

	campaigns, err := f.svc.ListCampaigns(ctx)
	require.NoError(t, err)
	assert.Len(t, campaigns, 4)
}

func TestGetCampaign_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.GetCampaign(context.Background(), 0)
	assert.ErrorIs(t, err, models.ErrCampaignNotFound)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Contains(t, err.Error(), "campaign_id=0")
}

func TestUpdateCampaign(t *testing.T) {
	updated := models.CampaignInput{
		Goal:        models.NewAmount(500),
		Name:        "Bigger Wells",
		Description: "Now with pumps",
		ImageURL:    "https://example.com/pump.png",
	}

	tests := []struct {
		name    string
		caller  models.Address
		id      uint64
		in      models.CampaignInput
		wantErr error
	}{
		{name: "creator", caller: creator, id: 0, in: updated},
		{name: "owner", caller: owner, id: 0, in: updated},
		{name: "stranger", caller: alice, id: 0, in: updated, wantErr: models.ErrNotCreatorOrOwner},
		{name: "unknown campaign", caller: creator, id: 9, in: updated, wantErr: models.ErrCampaignNotFound},
		{name: "invalid input", caller: creator, id: 0, in: models.CampaignInput{Goal: models.NewAmount(1)}, wantErr: models.ErrNameEmpty},
		{name: "missing caller", caller: "", id: 0, in: updated, wantErr: models.ErrMissingCaller},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			f.addCampaign(t, 100)

			err := f.svc.UpdateCampaign(ctx, tt.caller, tt.id, tt.in)

			c, getErr := f.svc.GetCampaign(ctx, 0)
			require.NoError(t, getErr)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, "Clean Water", c.Name)
				assert.Empty(t, f.events(t, models.EventCampaignUpdated))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Bigger Wells", c.Name)
			assert.Equal(t, "500", c.Goal.String())
			assert.Equal(t, creator, c.Creator)

			events := f.events(t, models.EventCampaignUpdated)
			require.Len(t, events, 1)
			assert.Equal(t, "Bigger Wells", events[0].Name)
		})
	}
}

func TestModifyCampaignSuccessStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.addCampaign(t, 100)

	err := f.svc.ModifyCampaignSuccessStatus(ctx, alice, id, true)
	assert.ErrorIs(t, err, models.ErrNotCreatorOrOwner)

	err = f.svc.ModifyCampaignSuccessStatus(ctx, creator, 42, true)
	assert.ErrorIs(t, err, models.ErrCampaignNotFound)

	require.NoError(t, f.svc.ModifyCampaignSuccessStatus(ctx, creator, id, true))
	c, err := f.svc.GetCampaign(ctx, id)
	require.NoError(t, err)
	assert.True(t, c.IsSuccessful)

	// The flag is reversible and each change is logged
	require.NoError(t, f.svc.ModifyCampaignSuccessStatus(ctx, owner, id, false))
	c, err = f.svc.GetCampaign(ctx, id)
	require.NoError(t, err)
	assert.False(t, c.IsSuccessful)

	changes := f.events(t, models.EventCampaignSuccessChanged)
	require.Len(t, changes, 2)
	assert.True(t, *changes[0].IsSuccessful)
	assert.False(t, *changes[1].IsSuccessful)
}

func TestGetContribution_UnknownCampaign(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.GetContribution(context.Background(), 1, alice)
	assert.ErrorIs(t, err, models.ErrCampaignNotFound)
}
