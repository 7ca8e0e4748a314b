// Package color drives the TCS3472x family of RGBC light-to-digital converters.
//
// Typical usage:
//
//	s := color.NewTCS34725(bus)
//	sample, err := s.Sample(ctx)
//	kelvin := color.ColorTemperature(sample)
//
// The controller initializes the chip lazily: the first public call verifies the chip
// identity, applies the cached gain and integration time and powers the ADC on. When
// the identity check fails the call returns ErrNotPresent and the next call retries.
package color

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mklimuk/colorsensor"
)

var ErrNotPresent = errors.New("tcs34725: sensor not present")
var ErrInvalidSetting = errors.New("tcs34725: invalid setting")

// oscillator settle time between PON and AEN
const powerOnDelay = 3 * time.Millisecond

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the default Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type TCS34725Opts struct {
	Address         byte
	IntegrationTime IntegrationTime
	Gain            Gain
	Sleeper         Sleeper
}

type TCS34725Opt func(*TCS34725Opts)

func WithAddress(address byte) TCS34725Opt {
	return func(o *TCS34725Opts) {
		o.Address = address
	}
}

// WithIntegrationTime sets the integration time applied at initialization.
func WithIntegrationTime(it IntegrationTime) TCS34725Opt {
	return func(o *TCS34725Opts) {
		o.IntegrationTime = it
	}
}

// WithGain sets the gain applied at initialization.
func WithGain(g Gain) TCS34725Opt {
	return func(o *TCS34725Opts) {
		o.Gain = g
	}
}

func WithSleeper(s Sleeper) TCS34725Opt {
	return func(o *TCS34725Opts) {
		o.Sleeper = s
	}
}

// TCS34725 is a controller for a single chip. All methods are safe for concurrent use;
// each one holds the controller lock for its whole bus sequence, waits included.
type TCS34725 struct {
	mx    sync.Mutex
	regs  registers
	sleep Sleeper

	initialized     bool
	integrationTime IntegrationTime
	gain            Gain
}

func NewTCS34725(bus colorsensor.I2CBus, opts ...TCS34725Opt) *TCS34725 {
	config := TCS34725Opts{
		Address:         DefaultAddress,
		IntegrationTime: IntegrationTime2_4ms,
		Gain:            Gain1x,
		Sleeper:         Sleep,
	}
	for _, opt := range opts {
		opt(&config)
	}
	if !config.IntegrationTime.Valid() {
		config.IntegrationTime = IntegrationTime2_4ms
	}
	if !config.Gain.Valid() {
		config.Gain = Gain1x
	}
	return &TCS34725{
		regs:            newRegisters(bus, config.Address),
		sleep:           config.Sleeper,
		integrationTime: config.IntegrationTime,
		gain:            config.Gain,
	}
}

// Begin verifies the chip identity, applies the cached configuration and powers the
// chip on. It returns false without error when no supported chip answers.
func (s *TCS34725) Begin(ctx context.Context) (bool, error) {
	s.mx.Lock()
	defer s.mx.Unlock()
	return s.begin(ctx)
}

// Initialized reports whether the chip has been found and powered on.
func (s *TCS34725) Initialized() bool {
	s.mx.Lock()
	defer s.mx.Unlock()
	return s.initialized
}

// IntegrationTime returns the cached setting; it does not query the chip.
func (s *TCS34725) IntegrationTime() IntegrationTime {
	s.mx.Lock()
	defer s.mx.Unlock()
	return s.integrationTime
}

// Gain returns the cached setting; it does not query the chip.
func (s *TCS34725) Gain() Gain {
	s.mx.Lock()
	defer s.mx.Unlock()
	return s.gain
}

func (s *TCS34725) SetIntegrationTime(ctx context.Context, it IntegrationTime) error {
	if !it.Valid() {
		return fmt.Errorf("%w: integration time %#x", ErrInvalidSetting, byte(it))
	}
	s.mx.Lock()
	defer s.mx.Unlock()
	if err := s.ensureReady(ctx); err != nil {
		return err
	}
	if err := s.regs.writeByte(ctx, regATime, byte(it)); err != nil {
		return err
	}
	s.integrationTime = it
	return nil
}

func (s *TCS34725) SetGain(ctx context.Context, g Gain) error {
	if !g.Valid() {
		return fmt.Errorf("%w: gain %#x", ErrInvalidSetting, byte(g))
	}
	s.mx.Lock()
	defer s.mx.Unlock()
	if err := s.ensureReady(ctx); err != nil {
		return err
	}
	if err := s.regs.writeByte(ctx, regControl, byte(g)); err != nil {
		return err
	}
	s.gain = g
	return nil
}

// Sample reads clear, red, green and blue and then blocks for the configured
// integration time before returning.
//
// The wait follows the read rather than preceding it. A caller polling in a loop thus
// never issues two reads closer than one integration window apart, but the first
// sample after a configuration change may still come from the previous window.
func (s *TCS34725) Sample(ctx context.Context) (Sample, error) {
	s.mx.Lock()
	defer s.mx.Unlock()
	if err := s.ensureReady(ctx); err != nil {
		return Sample{}, err
	}
	sample, err := s.readChannels(ctx)
	if err != nil {
		return Sample{}, err
	}
	if err := s.sleep(ctx, s.integrationTime.Wait()); err != nil {
		return Sample{}, err
	}
	return sample, nil
}

// ReadChannel takes a full sample and returns the selected channel.
func (s *TCS34725) ReadChannel(ctx context.Context, ch Channel) (uint16, error) {
	sample, err := s.Sample(ctx)
	if err != nil {
		return 0, err
	}
	return sample.Channel(ch), nil
}

// ReadColorTemperature reads the channels without waiting for an integration window
// and converts them to Kelvin.
func (s *TCS34725) ReadColorTemperature(ctx context.Context) (uint16, error) {
	sample, err := s.readNow(ctx)
	if err != nil {
		return 0, err
	}
	return ColorTemperature(sample), nil
}

// ReadLux reads the channels without waiting for an integration window and converts
// them to lux.
func (s *TCS34725) ReadLux(ctx context.Context) (uint16, error) {
	sample, err := s.readNow(ctx)
	if err != nil {
		return 0, err
	}
	return Lux(sample), nil
}

// Status reads the STATUS register.
func (s *TCS34725) Status(ctx context.Context) (Status, error) {
	s.mx.Lock()
	defer s.mx.Unlock()
	if err := s.ensureReady(ctx); err != nil {
		return 0, err
	}
	st, err := s.regs.readByte(ctx, regStatus)
	return Status(st), err
}

// EnableInterruptLatch sets AIEN leaving the other ENABLE bits untouched.
func (s *TCS34725) EnableInterruptLatch(ctx context.Context) error {
	return s.updateEnable(ctx, func(reg byte) byte { return reg | enableAIEN })
}

// DisableInterruptLatch clears AIEN leaving the other ENABLE bits untouched.
func (s *TCS34725) DisableInterruptLatch(ctx context.Context) error {
	return s.updateEnable(ctx, func(reg byte) byte { return reg &^ enableAIEN })
}

// ClearInterrupt sends the RGBC interrupt clear special function.
func (s *TCS34725) ClearInterrupt(ctx context.Context) error {
	s.mx.Lock()
	defer s.mx.Unlock()
	if err := s.ensureReady(ctx); err != nil {
		return err
	}
	return s.regs.command(ctx, cmdClearInterrupt)
}

// SetInterruptThresholds programs the clear channel window outside of which an
// interrupt is generated.
func (s *TCS34725) SetInterruptThresholds(ctx context.Context, low, high uint16) error {
	s.mx.Lock()
	defer s.mx.Unlock()
	if err := s.ensureReady(ctx); err != nil {
		return err
	}
	writes := []struct {
		reg byte
		val byte
	}{
		{regAILTL, byte(low & 0xFF)},
		{regAILTH, byte(low >> 8)},
		{regAIHTL, byte(high & 0xFF)},
		{regAIHTH, byte(high >> 8)},
	}
	for _, w := range writes {
		if err := s.regs.writeByte(ctx, w.reg, w.val); err != nil {
			return fmt.Errorf("could not set interrupt thresholds: %w", err)
		}
	}
	return nil
}

func (s *TCS34725) SetPersistence(ctx context.Context, p Persistence) error {
	if !p.Valid() {
		return fmt.Errorf("%w: persistence %#x", ErrInvalidSetting, byte(p))
	}
	s.mx.Lock()
	defer s.mx.Unlock()
	if err := s.ensureReady(ctx); err != nil {
		return err
	}
	return s.regs.writeByte(ctx, regPers, byte(p))
}

// Disable turns the oscillator and the ADC off. The next public call powers the chip
// back on.
func (s *TCS34725) Disable(ctx context.Context) error {
	s.mx.Lock()
	defer s.mx.Unlock()
	if !s.initialized {
		return nil
	}
	reg, err := s.regs.readByte(ctx, regEnable)
	if err != nil {
		return err
	}
	err = s.regs.writeByte(ctx, regEnable, reg&^(enablePON|enableAEN))
	if err != nil {
		return err
	}
	s.initialized = false
	slog.DebugContext(ctx, "tcs34725 powered down")
	return nil
}

func (s *TCS34725) begin(ctx context.Context) (bool, error) {
	if s.initialized {
		return true, nil
	}
	id, err := s.regs.readByte(ctx, regID)
	if err != nil {
		return false, err
	}
	if id != idTCS34725 && id != idTCS34725Alt {
		slog.DebugContext(ctx, "tcs34725 identity mismatch", "id", fmt.Sprintf("%#02x", id))
		return false, nil
	}
	if err := s.regs.writeByte(ctx, regATime, byte(s.integrationTime)); err != nil {
		return false, err
	}
	if err := s.regs.writeByte(ctx, regControl, byte(s.gain)); err != nil {
		return false, err
	}
	if err := s.enable(ctx); err != nil {
		return false, err
	}
	s.initialized = true
	slog.DebugContext(ctx, "tcs34725 ready",
		"id", fmt.Sprintf("%#02x", id),
		"integration", s.integrationTime.String(),
		"gain", s.gain.String())
	return true, nil
}

// enable powers the oscillator first; the ADC may only be enabled once it is stable.
func (s *TCS34725) enable(ctx context.Context) error {
	if err := s.regs.writeByte(ctx, regEnable, enablePON); err != nil {
		return fmt.Errorf("could not power on: %w", err)
	}
	if err := s.sleep(ctx, powerOnDelay); err != nil {
		return err
	}
	if err := s.regs.writeByte(ctx, regEnable, enablePON|enableAEN); err != nil {
		return fmt.Errorf("could not enable ADC: %w", err)
	}
	return nil
}

func (s *TCS34725) ensureReady(ctx context.Context) error {
	ok, err := s.begin(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotPresent
	}
	return nil
}

func (s *TCS34725) readNow(ctx context.Context) (Sample, error) {
	s.mx.Lock()
	defer s.mx.Unlock()
	if err := s.ensureReady(ctx); err != nil {
		return Sample{}, err
	}
	return s.readChannels(ctx)
}

func (s *TCS34725) readChannels(ctx context.Context) (Sample, error) {
	var sample Sample
	channels := []struct {
		reg byte
		dst *uint16
	}{
		{regCDataL, &sample.Clear},
		{regRDataL, &sample.Red},
		{regGDataL, &sample.Green},
		{regBDataL, &sample.Blue},
	}
	for _, ch := range channels {
		val, err := s.regs.readWord(ctx, ch.reg)
		if err != nil {
			return Sample{}, err
		}
		*ch.dst = val
	}
	return sample, nil
}

func (s *TCS34725) updateEnable(ctx context.Context, update func(byte) byte) error {
	s.mx.Lock()
	defer s.mx.Unlock()
	if err := s.ensureReady(ctx); err != nil {
		return err
	}
	reg, err := s.regs.readByte(ctx, regEnable)
	if err != nil {
		return err
	}
	return s.regs.writeByte(ctx, regEnable, update(reg))
}
