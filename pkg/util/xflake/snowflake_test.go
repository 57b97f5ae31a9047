package xflake

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	vectorID    int64 = 856165981072306191
	vectorEpoch int64 = 1288834974657
)

// =============================================================================
// 解码
// =============================================================================

func TestParse_KnownVector(t *testing.T) {
	sf := Parse(vectorID, vectorEpoch)

	assert.Equal(t, int64(204125876682), sf.Timestamp())
	assert.Equal(t, int64(363), sf.Instance())
	assert.Equal(t, int64(15), sf.Seq())
	assert.Equal(t, vectorEpoch, sf.Epoch())
	assert.Equal(t, vectorID, sf.Value())
	assert.Equal(t, vectorID, sf.Int64())
	assert.Equal(t, "856165981072306191", sf.String())
	assert.True(t, sf.IsValid())

	assert.Equal(t, int64(1492960851339), sf.Milliseconds())
	assert.InDelta(t, 1492960851.339, sf.Seconds(), 1e-6)

	wantUTC := time.Date(2017, 4, 23, 15, 20, 51, 339_000_000, time.UTC)
	assert.True(t, wantUTC.Equal(sf.Time()))
	assert.Equal(t, time.UTC, sf.Time().Location())

	zone := time.FixedZone("+05:31", 5*3600+31*60)
	local := sf.In(zone)
	assert.Equal(t, 20, local.Hour())
	assert.Equal(t, 51, local.Minute())
	assert.Equal(t, 51, local.Second())
	assert.Equal(t, 339_000_000, local.Nanosecond())

	assert.True(t, sf.Time().Equal(sf.In(nil)))
	assert.Equal(t, time.Local, sf.In(nil).Location())

	const day = 24 * time.Hour
	d := sf.EpochDuration()
	assert.Equal(t, time.Duration(14917), d/day)
	assert.Equal(t, time.Hour+42*time.Minute+54*time.Second+657*time.Millisecond, d%day)
}

func TestParse_Lenient(t *testing.T) {
	// 最高位被置位：逻辑右移得到超出范围的时间戳而不是负数
	sf := Parse(-1, 0)
	assert.Equal(t, int64(1<<42-1), sf.Timestamp())
	assert.Equal(t, MaxInstance, sf.Instance())
	assert.Equal(t, MaxSequence, sf.Seq())
	assert.False(t, sf.IsValid())

	neg := Parse(vectorID, -5)
	assert.Equal(t, int64(-5), neg.Epoch())
	assert.False(t, neg.IsValid())
}

func TestParseStrict(t *testing.T) {
	sf, err := ParseStrict(vectorID, vectorEpoch)
	require.NoError(t, err)
	assert.Equal(t, Parse(vectorID, vectorEpoch), sf)

	tests := []struct {
		name  string
		raw   int64
		epoch int64
		field string
	}{
		{"negative raw", -1, 0, FieldRaw},
		{"min int64", math.MinInt64, 0, FieldRaw},
		{"negative epoch", vectorID, -1, FieldEpoch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseStrict(tt.raw, tt.epoch)
			require.ErrorIs(t, err, ErrRange)
			var re *RangeError
			require.ErrorAs(t, err, &re)
			assert.Equal(t, tt.field, re.Field)
		})
	}
}

// =============================================================================
// 构造与打包
// =============================================================================

func TestPack_Extremes(t *testing.T) {
	assert.Equal(t, int64(0), Pack(0, 0, 0))
	assert.Equal(t, int64(math.MaxInt64), Pack(MaxTimestamp, MaxInstance, MaxSequence))
	assert.Equal(t, int64(math.MaxInt64), MustNew(MaxTimestamp, MaxInstance, 0, MaxSequence).Value())
	assert.Equal(t, vectorID, Pack(204125876682, 363, 15))
}

func TestNew_RangeErrors(t *testing.T) {
	tests := []struct {
		name                       string
		timestamp, instance, epoch int64
		seq                        int64
		field                      string
		min, max                   int64
	}{
		{"instance too large", 0, 1024, 0, 0, FieldInstance, 0, MaxInstance},
		{"negative instance", 0, -1, 0, 0, FieldInstance, 0, MaxInstance},
		{"seq too large", 0, 0, 0, 4096, FieldSequence, 0, MaxSequence},
		{"negative seq", 0, 0, 0, -1, FieldSequence, 0, MaxSequence},
		{"timestamp 2^43", 1 << 43, 0, 0, 0, FieldTimestamp, 0, MaxTimestamp},
		{"timestamp 2^41", 1 << 41, 0, 0, 0, FieldTimestamp, 0, MaxTimestamp},
		{"negative timestamp", -1, 0, 0, 0, FieldTimestamp, 0, MaxTimestamp},
		{"negative epoch", 0, 0, -1, 0, FieldEpoch, 0, math.MaxInt64},
		// epoch 最先校验
		{"epoch checked first", -1, 2000, -1, 9000, FieldEpoch, 0, math.MaxInt64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.timestamp, tt.instance, tt.epoch, tt.seq)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrRange))

			var re *RangeError
			require.ErrorAs(t, err, &re)
			assert.Equal(t, tt.field, re.Field)
			assert.Equal(t, tt.min, re.Min)
			assert.Equal(t, tt.max, re.Max)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestNew_RoundTrip(t *testing.T) {
	tests := []struct {
		name                       string
		timestamp, instance, epoch int64
		seq                        int64
	}{
		{"zero", 0, 0, 0, 0},
		{"max", MaxTimestamp, MaxInstance, 0, MaxSequence},
		{"vector", 204125876682, 363, vectorEpoch, 15},
		{"mixed", 1, MaxInstance, 42, 0},
		{"large epoch", 7, 1, math.MaxInt64 - MaxTimestamp, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sf, err := New(tt.timestamp, tt.instance, tt.epoch, tt.seq)
			require.NoError(t, err)
			assert.True(t, sf.IsValid())

			back := Parse(sf.Value(), tt.epoch)
			assert.Equal(t, sf, back)
			assert.Equal(t, Pack(tt.timestamp, tt.instance, tt.seq), back.Value())
			assert.GreaterOrEqual(t, back.Value(), int64(0))
		})
	}
}

func TestMustNew_Panics(t *testing.T) {
	assert.PanicsWithError(t, "xflake: instance must be in [0, 1023], got 1024", func() {
		MustNew(0, 1024, 0, 0)
	})
}

// =============================================================================
// 文本序列化
// =============================================================================

func TestSnowflake_Marshal(t *testing.T) {
	sf := Parse(vectorID, vectorEpoch)

	text, err := sf.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "856165981072306191", string(text))

	b, err := json.Marshal(struct {
		ID Snowflake `json:"id"`
	}{sf})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"856165981072306191"}`, string(b))
}
