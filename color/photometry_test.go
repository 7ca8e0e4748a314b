package color

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColorTemperature_ReferenceSample(t *testing.T) {
	s := Sample{Red: 200, Green: 300, Blue: 150}

	x, y, z := XYZ(s)
	assert.InDelta(t, 292.7465, x, 1e-9)
	assert.InDelta(t, 298.7925, y, 1e-9)
	assert.InDelta(t, 179.313, z, 1e-9)

	xc, yc := Chromaticity(s)
	assert.InDelta(t, 0.37977004665, xc, 1e-9)
	assert.InDelta(t, 0.38761331617, yc, 1e-9)

	assert.InDelta(t, 4096.7736029731, McCamy(xc, yc), 1e-6)
	assert.Equal(t, uint16(4097), ColorTemperature(s))
}

func TestColorTemperature_DegenerateInput(t *testing.T) {
	t.Run("no light", func(t *testing.T) {
		xc, yc := Chromaticity(Sample{})
		assert.True(t, math.IsNaN(xc))
		assert.True(t, math.IsNaN(yc))
		assert.Equal(t, uint16(0), ColorTemperature(Sample{}))
	})
	t.Run("epicentre", func(t *testing.T) {
		assert.True(t, math.IsInf(McCamy(0.3320+0.01, 0.1858), 1))
		// the cubic and square terms cancel out as -Inf + Inf
		assert.True(t, math.IsNaN(McCamy(0.3320-0.01, 0.1858)))
		assert.Equal(t, uint16(0), saturate(McCamy(0.3320-0.01, 0.1858)))
	})
	t.Run("clear channel ignored", func(t *testing.T) {
		assert.Equal(t, ColorTemperature(Sample{Red: 200, Green: 300, Blue: 150}),
			ColorTemperature(Sample{Clear: 65535, Red: 200, Green: 300, Blue: 150}))
	})
}

func TestColorTemperature_Table(t *testing.T) {
	tests := []struct {
		given    Sample
		expected uint16
	}{
		{Sample{Red: 1000, Green: 1000, Blue: 1000}, 8890},
		{Sample{Red: 65535, Green: 65535, Blue: 65535}, 8890},
		{Sample{Red: 100, Green: 50, Blue: 20}, 1639},
		{Sample{Red: 5000, Green: 3000, Blue: 1000}, 1866},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d/%d/%d", tt.given.Red, tt.given.Green, tt.given.Blue), func(t *testing.T) {
			assert.Equal(t, tt.expected, ColorTemperature(tt.given))
		})
	}
}

func TestLux(t *testing.T) {
	tests := []struct {
		name     string
		given    Sample
		expected uint16
	}{
		{"reference", Sample{Red: 200, Green: 300, Blue: 150}, uint16(math.Round(-0.32466*200 + 1.57837*300 - 0.73191*150))},
		{"dark", Sample{}, 0},
		{"blue heavy goes negative", Sample{Red: 10, Green: 20, Blue: 300}, 0},
		{"grey", Sample{Red: 1000, Green: 1000, Blue: 1000}, 522},
		{"saturated green", Sample{Green: 65535}, 65535},
		{"clear ignored", Sample{Clear: 40000, Red: 200, Green: 300, Blue: 150}, 299},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Lux(tt.given))
		})
	}
}

func TestSaturate(t *testing.T) {
	tests := []struct {
		given    float64
		expected uint16
	}{
		{math.NaN(), 0},
		{math.Inf(-1), 0},
		{math.Inf(1), 65535},
		{-12.7, 0},
		{0.49, 0},
		{0.5, 1},
		{298.7925, 299},
		{65534.4, 65534},
		{65535, 65535},
		{1e9, 65535},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.given), func(t *testing.T) {
			assert.Equal(t, tt.expected, saturate(tt.given))
		})
	}
}
