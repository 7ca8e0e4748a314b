package color

import (
	"fmt"
	"strings"
	"time"
)

// IntegrationTime is the RGBC exposure window. The value is the ATIME register code.
type IntegrationTime byte

const (
	IntegrationTime2_4ms IntegrationTime = 0xFF // 1 cycle, max count 1024
	IntegrationTime24ms  IntegrationTime = 0xF6 // 10 cycles, max count 10240
	IntegrationTime50ms  IntegrationTime = 0xEB // 20 cycles, max count 20480
	IntegrationTime101ms IntegrationTime = 0xD5 // 42 cycles, max count 43008
	IntegrationTime154ms IntegrationTime = 0xC0 // 64 cycles, max count 65535
	IntegrationTime700ms IntegrationTime = 0x00 // 256 cycles, max count 65535
)

type integrationTiming struct {
	name     string
	wait     time.Duration
	maxCount uint16
}

// host delay is millisecond granular so 2.4ms waits 3ms
var integrationTimings = map[IntegrationTime]integrationTiming{
	IntegrationTime2_4ms: {"2.4ms", 3 * time.Millisecond, 1024},
	IntegrationTime24ms:  {"24ms", 24 * time.Millisecond, 10240},
	IntegrationTime50ms:  {"50ms", 50 * time.Millisecond, 20480},
	IntegrationTime101ms: {"101ms", 101 * time.Millisecond, 43008},
	IntegrationTime154ms: {"154ms", 154 * time.Millisecond, 65535},
	IntegrationTime700ms: {"700ms", 700 * time.Millisecond, 65535},
}

// IntegrationTimes lists every supported setting from the shortest to the longest.
var IntegrationTimes = []IntegrationTime{
	IntegrationTime2_4ms,
	IntegrationTime24ms,
	IntegrationTime50ms,
	IntegrationTime101ms,
	IntegrationTime154ms,
	IntegrationTime700ms,
}

func (it IntegrationTime) Valid() bool {
	_, ok := integrationTimings[it]
	return ok
}

// Wait is how long a sample taken with this setting needs before it can be trusted.
func (it IntegrationTime) Wait() time.Duration {
	return integrationTimings[it].wait
}

// MaxCount is the saturation value of a channel. Informational only.
func (it IntegrationTime) MaxCount() uint16 {
	return integrationTimings[it].maxCount
}

func (it IntegrationTime) String() string {
	if t, ok := integrationTimings[it]; ok {
		return t.name
	}
	return fmt.Sprintf("IntegrationTime(%#x)", byte(it))
}

func ParseIntegrationTime(s string) (IntegrationTime, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	if !strings.HasSuffix(norm, "ms") {
		norm += "ms"
	}
	for _, it := range IntegrationTimes {
		if it.String() == norm {
			return it, nil
		}
	}
	return 0, fmt.Errorf("%w: integration time %q", ErrInvalidSetting, s)
}

// Gain is the analog amplification. The value is the CONTROL register code.
type Gain byte

const (
	Gain1x  Gain = 0x00
	Gain4x  Gain = 0x01
	Gain16x Gain = 0x02
	Gain60x Gain = 0x03
)

var Gains = []Gain{Gain1x, Gain4x, Gain16x, Gain60x}

var gainMultipliers = map[Gain]int{
	Gain1x:  1,
	Gain4x:  4,
	Gain16x: 16,
	Gain60x: 60,
}

func (g Gain) Valid() bool {
	_, ok := gainMultipliers[g]
	return ok
}

func (g Gain) Multiplier() int {
	return gainMultipliers[g]
}

func (g Gain) String() string {
	if m, ok := gainMultipliers[g]; ok {
		return fmt.Sprintf("%dx", m)
	}
	return fmt.Sprintf("Gain(%#x)", byte(g))
}

func ParseGain(s string) (Gain, error) {
	norm := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "x")
	for _, g := range Gains {
		if fmt.Sprint(g.Multiplier()) == norm {
			return g, nil
		}
	}
	return 0, fmt.Errorf("%w: gain %q", ErrInvalidSetting, s)
}

// Persistence filters interrupts: the clear channel has to stay outside the
// threshold window for this many consecutive cycles before AINT is raised.
type Persistence byte

const (
	PersistenceEveryCycle Persistence = iota
	Persistence1Cycle
	Persistence2Cycles
	Persistence3Cycles
	Persistence5Cycles
	Persistence10Cycles
	Persistence15Cycles
	Persistence20Cycles
	Persistence25Cycles
	Persistence30Cycles
	Persistence35Cycles
	Persistence40Cycles
	Persistence45Cycles
	Persistence50Cycles
	Persistence55Cycles
	Persistence60Cycles
)

func (p Persistence) Valid() bool {
	return p <= Persistence60Cycles
}

// Cycles returns the number of out-of-range cycles the setting requires.
func (p Persistence) Cycles() int {
	switch {
	case p <= Persistence3Cycles:
		return int(p)
	case p.Valid():
		return 5 * (int(p) - 3)
	default:
		return -1
	}
}

// PersistenceFor returns the setting requiring exactly cycles out-of-range cycles.
func PersistenceFor(cycles int) (Persistence, error) {
	for p := PersistenceEveryCycle; p <= Persistence60Cycles; p++ {
		if p.Cycles() == cycles {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: persistence of %d cycles", ErrInvalidSetting, cycles)
}

// Channel selects one of the four photodiode groups.
type Channel int

const (
	ChannelRed Channel = iota
	ChannelGreen
	ChannelBlue
	ChannelClear
)

func (ch Channel) String() string {
	switch ch {
	case ChannelRed:
		return "red"
	case ChannelGreen:
		return "green"
	case ChannelBlue:
		return "blue"
	default:
		return "clear"
	}
}

func ParseChannel(s string) (Channel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "r", "red":
		return ChannelRed, nil
	case "g", "green":
		return ChannelGreen, nil
	case "b", "blue":
		return ChannelBlue, nil
	case "c", "clear", "":
		return ChannelClear, nil
	}
	return 0, fmt.Errorf("%w: channel %q", ErrInvalidSetting, s)
}

// Sample holds the four channels captured in one read sequence.
type Sample struct {
	Clear uint16 `yaml:"clear" json:"clear"`
	Red   uint16 `yaml:"red" json:"red"`
	Green uint16 `yaml:"green" json:"green"`
	Blue  uint16 `yaml:"blue" json:"blue"`
}

// Channel returns a single channel; unknown selectors fall back to clear.
func (s Sample) Channel(ch Channel) uint16 {
	switch ch {
	case ChannelRed:
		return s.Red
	case ChannelGreen:
		return s.Green
	case ChannelBlue:
		return s.Blue
	default:
		return s.Clear
	}
}

// Status is the content of the STATUS register.
type Status byte

// Valid reports a completed integration cycle.
func (s Status) Valid() bool {
	return s&statusAVALID != 0
}

// Interrupt reports a pending clear channel interrupt.
func (s Status) Interrupt() bool {
	return s&statusAINT != 0
}
