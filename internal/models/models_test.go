package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Address
		wantErr bool
	}{
		{name: "lowercase", input: "0x00000000000000000000000000000000000000a1", want: "0x00000000000000000000000000000000000000a1"},
		{name: "mixed case is normalized", input: "0xAbCdEf0000000000000000000000000000000001", want: "0xabcdef0000000000000000000000000000000001"},
		{name: "upper prefix", input: "0X00000000000000000000000000000000000000A1", want: "0x00000000000000000000000000000000000000a1"},
		{name: "surrounding space", input: " 0x00000000000000000000000000000000000000a1 ", want: "0x00000000000000000000000000000000000000a1"},
		{name: "too short", input: "0x1234", wantErr: true},
		{name: "missing prefix", input: "00000000000000000000000000000000000000000a", wantErr: true},
		{name: "not hex", input: "0x00000000000000000000000000000000000000zz", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAddress(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAddress)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAddress_ZeroAndNative(t *testing.T) {
	assert.True(t, NativeAsset.IsNative())
	assert.True(t, NativeAsset.IsZero())
	assert.True(t, Address("").IsZero())
	assert.False(t, Address("").IsNative())
	assert.False(t, MustParseAddress("0x00000000000000000000000000000000000000a1").IsZero())
}

func TestAmount_Arithmetic(t *testing.T) {
	huge := MustParseAmount("115792089237316195423570985008687907853269984665640564039457584007913129639935")

	sum := huge.Add(NewAmount(1))
	assert.Equal(t, "115792089237316195423570985008687907853269984665640564039457584007913129639936", sum.String())

	diff, ok := sum.Sub(huge)
	require.True(t, ok)
	assert.Equal(t, "1", diff.String())

	_, ok = NewAmount(1).Sub(NewAmount(2))
	assert.False(t, ok)

	var zero Amount
	assert.True(t, zero.IsZero())
	assert.Equal(t, "0", zero.String())
	assert.True(t, zero.Equal(NewAmount(0)))
	assert.Equal(t, -1, zero.Cmp(NewAmount(1)))
}

func TestAmount_JSON(t *testing.T) {
	var v struct {
		A Amount `json:"a"`
		B Amount `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"12345678901234567890123","b":7}`), &v))
	assert.Equal(t, "12345678901234567890123", v.A.String())
	assert.Equal(t, "7", v.B.String())

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"12345678901234567890123","b":"7"}`, string(out))

	for _, bad := range []string{`{"a":"-1"}`, `{"a":"1.5"}`, `{"a":"abc"}`} {
		err := json.Unmarshal([]byte(bad), &v)
		assert.ErrorIs(t, err, ErrInvalidAmount, bad)
	}
}

func TestAmount_Scan(t *testing.T) {
	var a Amount
	require.NoError(t, a.Scan([]byte("42")))
	assert.Equal(t, "42", a.String())
	require.NoError(t, a.Scan(int64(9)))
	assert.Equal(t, "9", a.String())
	require.NoError(t, a.Scan(nil))
	assert.True(t, a.IsZero())

	v, err := NewAmount(3).Value()
	require.NoError(t, err)
	assert.Equal(t, "3", v)
}

func TestError_Is(t *testing.T) {
	err := CampaignNotFound(4)

	assert.ErrorIs(t, err, ErrCampaignNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrInvalidArgument)
	assert.NotErrorIs(t, ErrNotOwner, ErrNotCreatorOrOwner)
	assert.Equal(t, "campaign does not exist (campaign_id=4)", err.Error())

	wrapped := fmt.Errorf("refund: %w", err)
	assert.ErrorIs(t, wrapped, ErrCampaignNotFound)
	assert.Equal(t, KindNotFound, ErrorKindOf(wrapped))
	assert.Equal(t, ErrorKind(""), ErrorKindOf(errors.New("boom")))
}

func TestError_WithDoesNotMutateSentinel(t *testing.T) {
	_ = ErrInvalidAddress.With("address", "0x1")

	assert.Empty(t, ErrInvalidAddress.Details)
}

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse(ErrTokenNotAccepted.With("asset", "0xc1"))
	assert.Equal(t, KindForbidden, resp.Kind)
	assert.Equal(t, "token_not_accepted", resp.Code)
	assert.Equal(t, map[string]string{"asset": "0xc1"}, resp.Details)

	plain := NewErrorResponse(errors.New("boom"))
	assert.Equal(t, "boom", plain.Error)
	assert.Empty(t, plain.Code)
}

func TestCampaignInput_Validate(t *testing.T) {
	valid := CampaignInput{Goal: NewAmount(1), Name: "n", Description: "d", ImageURL: "i"}
	assert.NoError(t, valid.Validate())

	in := valid
	in.ImageURL = "\t"
	assert.ErrorIs(t, in.Validate(), ErrImageURLEmpty)
}

func TestContribution_CreditAndClear(t *testing.T) {
	token := MustParseAddress("0x00000000000000000000000000000000000000c1")
	entry := EmptyContribution(1, MustParseAddress("0x00000000000000000000000000000000000000a1"))

	entry = entry.Credit(NewAmount(5), NativeAsset).Credit(NewAmount(7), token)
	assert.Equal(t, "12", entry.Amount.String())
	assert.Equal(t, token, entry.Asset)

	cleared := entry.Cleared()
	assert.True(t, cleared.Amount.IsZero())
	assert.Equal(t, token, cleared.Asset)
	assert.Equal(t, "12", entry.Amount.String())
}

func TestEventFilter(t *testing.T) {
	one, two := uint64(1), uint64(2)
	added := Event{Seq: 5, Type: EventCampaignAdded, CampaignID: &one}
	ownership := Event{Seq: 6, Type: EventOwnershipTransferred}

	assert.True(t, EventFilter{}.Matches(added))
	assert.True(t, EventFilter{Type: EventCampaignAdded}.Matches(added))
	assert.False(t, EventFilter{Type: EventRefunded}.Matches(added))
	assert.True(t, EventFilter{CampaignID: &one}.Matches(added))
	assert.False(t, EventFilter{CampaignID: &two}.Matches(added))
	assert.False(t, EventFilter{CampaignID: &one}.Matches(ownership))
	assert.False(t, EventFilter{AfterSeq: 5}.Matches(added))

	assert.Equal(t, DefaultEventLimit, EventFilter{}.EffectiveLimit())
	assert.Equal(t, DefaultEventLimit, EventFilter{Limit: 5000}.EffectiveLimit())
	assert.Equal(t, 10, EventFilter{Limit: 10}.EffectiveLimit())
}
