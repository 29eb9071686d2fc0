package orderbook

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func up(t *testing.T, side, price, size string) Update {
	t.Helper()
	u, err := ParseUpdate(side, price, size)
	require.NoError(t, err)
	return u
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestApplySnapshot_SortsAndAccumulates(t *testing.T) {
	b := New("BTC-USD")
	b.ApplySnapshot([]Update{
		up(t, "bid", "99", "1"),
		up(t, "bid", "100", "2"),
		up(t, "offer", "102", "3"),
		up(t, "offer", "101", "0.5"),
	})

	bids, asks := b.Levels(0)
	require.Len(t, bids, 2)
	require.Len(t, asks, 2)

	assert.True(t, bids[0].Price.Equal(d("100")))
	assert.True(t, bids[1].Total.Equal(d("3")))
	assert.True(t, asks[0].Price.Equal(d("101")))
	assert.True(t, asks[1].Total.Equal(d("3.5")))
	assert.True(t, b.Spread().Equal(d("1")))
	assert.True(t, b.Seeded())
}

func TestApplyUpdates_ZeroSizeRemovesLevel(t *testing.T) {
	b := New("BTC-USD")
	b.ApplySnapshot([]Update{up(t, "bid", "100.00", "2"), up(t, "bid", "99", "1")})

	// misma cantidad con otra escala textual
	b.ApplyUpdates([]Update{up(t, "bid", "100", "0")})

	bids, _ := b.Levels(0)
	require.Len(t, bids, 1)
	assert.True(t, bids[0].Price.Equal(d("99")))
}

func TestApplyUpdates_Upserts(t *testing.T) {
	b := New("ETH-USD")
	b.ApplySnapshot([]Update{up(t, "offer", "10", "1")})
	b.ApplyUpdates([]Update{up(t, "offer", "10", "4"), up(t, "offer", "9", "1")})

	_, asks := b.Levels(0)
	require.Len(t, asks, 2)
	assert.True(t, asks[0].Price.Equal(d("9")))
	assert.True(t, asks[1].Size.Equal(d("4")))
}

func TestLevels_DepthCap(t *testing.T) {
	b := New("X")
	var ups []Update
	for i := 1; i <= 30; i++ {
		ups = append(ups, Update{Side: SideBid, Price: decimal.NewFromInt(int64(i)), Size: decimal.NewFromInt(1)})
	}
	b.ApplySnapshot(ups)

	bids, _ := b.Levels(DefaultDepth)
	require.Len(t, bids, DefaultDepth)
	assert.True(t, bids[0].Price.Equal(d("30")))
	assert.True(t, bids[19].Total.Equal(d("20")))
}

func TestSnapshotReplacesPreviousLevels(t *testing.T) {
	b := New("X")
	b.ApplySnapshot([]Update{up(t, "bid", "1", "1")})
	b.ApplySnapshot([]Update{up(t, "bid", "2", "1")})
	bids, _ := b.Levels(0)
	require.Len(t, bids, 1)
	assert.True(t, bids[0].Price.Equal(d("2")))
}

func TestInvalidate_ClearsUntilSnapshot(t *testing.T) {
	b := New("X")
	b.ApplySnapshot([]Update{up(t, "bid", "1", "1"), up(t, "offer", "2", "1")})
	b.Invalidate()

	assert.False(t, b.Seeded())
	bids, asks := b.Levels(0)
	assert.Empty(t, bids)
	assert.Empty(t, asks)

	b.ApplySnapshot([]Update{up(t, "bid", "3", "1")})
	assert.True(t, b.Seeded())
	bids, _ = b.Levels(0)
	require.Len(t, bids, 1)
	assert.True(t, bids[0].Price.Equal(d("3")))
}

func TestCheckSequence_DetectsGap(t *testing.T) {
	b := New("X")
	assert.True(t, b.CheckSequence(10))
	assert.True(t, b.CheckSequence(11))
	assert.False(t, b.CheckSequence(13))
	b.ResetSequence()
	assert.True(t, b.CheckSequence(40))
}

func TestParseUpdate_Invalid(t *testing.T) {
	_, err := ParseUpdate("bid", "abc", "1")
	assert.ErrorIs(t, err, ErrInvalidLevel)
	_, err = ParseUpdate("middle", "1", "1")
	assert.ErrorIs(t, err, ErrInvalidLevel)
	_, err = ParseUpdate("bid", "1", "-1")
	assert.ErrorIs(t, err, ErrInvalidLevel)
}

func TestSpread_EmptySide(t *testing.T) {
	b := New("X")
	b.ApplySnapshot([]Update{up(t, "bid", "1", "1")})
	assert.True(t, b.Spread().IsZero())
}
