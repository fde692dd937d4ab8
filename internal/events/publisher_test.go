package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/go-redis/redis/v8"
	"github.com/prajwalbharadwajbm/fundledger/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPublishClient struct {
	mock.Mock
}

func (m *mockPublishClient) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	args := m.Called(ctx, channel, message)
	return redis.NewIntResult(int64(args.Int(0)), args.Error(1))
}

func TestRedisPublisher_PublishesEachEvent(t *testing.T) {
	client := new(mockPublishClient)
	p := &RedisPublisher{client: client, channel: "fundledger:events"}

	asset := models.MustParseAddress("0x00000000000000000000000000000000000000c1")
	evts := []models.Event{
		{Seq: 1, Type: models.EventTokenAuthorisationChanged, Asset: asset},
		{Seq: 2, Type: models.EventOwnershipTransferred},
	}

	var published [][]byte
	client.On("Publish", mock.Anything, "fundledger:events", mock.Anything).
		Run(func(args mock.Arguments) {
			published = append(published, args.Get(2).([]byte))
		}).
		Return(1, nil)

	require.NoError(t, p.Publish(context.Background(), evts))
	client.AssertNumberOfCalls(t, "Publish", 2)

	var first models.Event
	require.NoError(t, json.Unmarshal(published[0], &first))
	assert.Equal(t, uint64(1), first.Seq)
	assert.Equal(t, asset, first.Asset)
}

func TestRedisPublisher_CollectsFailures(t *testing.T) {
	client := new(mockPublishClient)
	p := &RedisPublisher{client: client, channel: "events"}

	client.On("Publish", mock.Anything, "events", mock.Anything).Return(0, errors.New("connection refused"))

	err := p.Publish(context.Background(), []models.Event{{Seq: 1}, {Seq: 2}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "event 1")
	assert.Contains(t, err.Error(), "event 2")
	client.AssertNumberOfCalls(t, "Publish", 2)
}

func TestNopPublisher(t *testing.T) {
	assert.NoError(t, NopPublisher{}.Publish(context.Background(), []models.Event{{Seq: 1}}))
}
