package color

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegrationTime_Table(t *testing.T) {
	tests := []struct {
		it       IntegrationTime
		code     byte
		wait     time.Duration
		maxCount uint16
	}{
		{IntegrationTime2_4ms, 0xFF, 3 * time.Millisecond, 1024},
		{IntegrationTime24ms, 0xF6, 24 * time.Millisecond, 10240},
		{IntegrationTime50ms, 0xEB, 50 * time.Millisecond, 20480},
		{IntegrationTime101ms, 0xD5, 101 * time.Millisecond, 43008},
		{IntegrationTime154ms, 0xC0, 154 * time.Millisecond, 65535},
		{IntegrationTime700ms, 0x00, 700 * time.Millisecond, 65535},
	}
	require.Len(t, IntegrationTimes, len(tests))
	for i, tt := range tests {
		t.Run(tt.it.String(), func(t *testing.T) {
			assert.Equal(t, tt.it, IntegrationTimes[i])
			assert.True(t, tt.it.Valid())
			assert.Equal(t, tt.code, byte(tt.it))
			assert.Equal(t, tt.wait, tt.it.Wait())
			assert.Equal(t, tt.maxCount, tt.it.MaxCount())

			parsed, err := ParseIntegrationTime(tt.it.String())
			require.NoError(t, err)
			assert.Equal(t, tt.it, parsed)
		})
	}
	assert.False(t, IntegrationTime(0x42).Valid())
	assert.Equal(t, "IntegrationTime(0x42)", IntegrationTime(0x42).String())
}

func TestParseIntegrationTime(t *testing.T) {
	it, err := ParseIntegrationTime(" 101 ")
	require.NoError(t, err)
	assert.Equal(t, IntegrationTime101ms, it)

	it, err = ParseIntegrationTime("2.4MS")
	require.NoError(t, err)
	assert.Equal(t, IntegrationTime2_4ms, it)

	_, err = ParseIntegrationTime("100ms")
	assert.ErrorIs(t, err, ErrInvalidSetting)
}

func TestGain(t *testing.T) {
	tests := []struct {
		given      string
		expected   Gain
		multiplier int
	}{
		{"1x", Gain1x, 1},
		{"4", Gain4x, 4},
		{"16X", Gain16x, 16},
		{"60x", Gain60x, 60},
	}
	for _, tt := range tests {
		t.Run(tt.given, func(t *testing.T) {
			g, err := ParseGain(tt.given)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, g)
			assert.Equal(t, tt.multiplier, g.Multiplier())
		})
	}
	_, err := ParseGain("64x")
	assert.ErrorIs(t, err, ErrInvalidSetting)
	assert.False(t, Gain(0x04).Valid())
}

func TestPersistenceCycles(t *testing.T) {
	expected := []int{0, 1, 2, 3, 5, 10, 15, 20, 25, 30, 35, 40, 45, 50, 55, 60}
	for p := PersistenceEveryCycle; p <= Persistence60Cycles; p++ {
		assert.Equal(t, expected[p], p.Cycles(), "persistence %#x", byte(p))
	}
	assert.Equal(t, -1, Persistence(0x10).Cycles())
}

func TestPersistenceFor(t *testing.T) {
	p, err := PersistenceFor(0)
	require.NoError(t, err)
	assert.Equal(t, PersistenceEveryCycle, p)
	p, err = PersistenceFor(3)
	require.NoError(t, err)
	assert.Equal(t, Persistence3Cycles, p)
	p, err = PersistenceFor(60)
	require.NoError(t, err)
	assert.Equal(t, Persistence60Cycles, p)
	_, err = PersistenceFor(4)
	assert.ErrorIs(t, err, ErrInvalidSetting)
}

func TestParseChannel(t *testing.T) {
	for given, expected := range map[string]Channel{
		"r": ChannelRed, "Green": ChannelGreen, "blue": ChannelBlue, "c": ChannelClear, "": ChannelClear,
	} {
		ch, err := ParseChannel(given)
		require.NoError(t, err)
		assert.Equal(t, expected, ch)
	}
	_, err := ParseChannel("ir")
	assert.ErrorIs(t, err, ErrInvalidSetting)
}

func TestStatusBits(t *testing.T) {
	assert.True(t, Status(0x01).Valid())
	assert.False(t, Status(0x01).Interrupt())
	assert.True(t, Status(0x11).Interrupt())
	assert.False(t, Status(0x10).Valid())
}
