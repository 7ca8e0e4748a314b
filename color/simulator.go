package color

import (
	"context"
	"fmt"
	"sync"

	"github.com/mklimuk/colorsensor"
)

// LightBehaviorFunc produces the channel values the simulated chip converts next.
type LightBehaviorFunc func(ctx context.Context) (Sample, error)

var _ colorsensor.I2CBus = &Simulator{}

var ErrNoAck = fmt.Errorf("simulator: no device acknowledged the address")

// Simulator emulates a TCS34725 register file behind an I2CBus so that the
// controller can run without hardware.
//
// Example usage:
//
//	sim := NewSimulator(func(ctx context.Context) (Sample, error) {
//		return Sample{Clear: 900, Red: 200, Green: 300, Blue: 150}, nil
//	})
//	s := NewTCS34725(sim)
type Simulator struct {
	mx       sync.Mutex
	addr     byte
	regs     [0x20]byte
	pointer  byte
	behavior LightBehaviorFunc
}

// NewSimulator returns a powered-down chip answering with the TCS34725 identity.
func NewSimulator(behavior LightBehaviorFunc) *Simulator {
	sim := &Simulator{addr: DefaultAddress, behavior: behavior}
	sim.regs[regATime] = byte(IntegrationTime2_4ms)
	sim.regs[regWTime] = 0xFF
	sim.regs[regID] = idTCS34725
	return sim
}

// SetID overrides the identification register, e.g. to simulate a foreign chip.
func (sim *Simulator) SetID(id byte) {
	sim.mx.Lock()
	defer sim.mx.Unlock()
	sim.regs[regID] = id
}

// Register returns the current content of a register.
func (sim *Simulator) Register(reg byte) byte {
	sim.mx.Lock()
	defer sim.mx.Unlock()
	return sim.regs[reg&0x1F]
}

func (sim *Simulator) SetRegister(reg, value byte) {
	sim.mx.Lock()
	defer sim.mx.Unlock()
	sim.regs[reg&0x1F] = value
}

func (sim *Simulator) WriteToAddr(ctx context.Context, address byte, buffer []byte) error {
	if address != sim.addr {
		return ErrNoAck
	}
	if len(buffer) == 0 {
		return nil
	}
	sim.mx.Lock()
	defer sim.mx.Unlock()
	head := buffer[0]
	// command byte with type 11: special function
	if head&0xE0 == 0xE0 {
		if head&0x1F == cmdClearInterrupt&0x1F {
			sim.regs[regStatus] &^= statusAINT
		}
		return nil
	}
	sim.pointer = head & 0x1F
	for _, b := range buffer[1:] {
		if sim.pointer != regID && sim.pointer != regStatus && sim.pointer < regCDataL {
			sim.regs[sim.pointer] = b
		}
		sim.pointer = (sim.pointer + 1) & 0x1F
	}
	return nil
}

func (sim *Simulator) ReadFromAddr(ctx context.Context, address byte, buffer []byte) error {
	if address != sim.addr {
		return ErrNoAck
	}
	sim.mx.Lock()
	defer sim.mx.Unlock()
	if sim.pointer == regCDataL || sim.pointer == regStatus {
		if err := sim.convert(ctx); err != nil {
			return err
		}
	}
	for i := range buffer {
		buffer[i] = sim.regs[sim.pointer]
		sim.pointer = (sim.pointer + 1) & 0x1F
	}
	return nil
}

func (sim *Simulator) Release(ctx context.Context) error {
	return nil
}

// convert latches a new sample into the data registers when the ADC is running.
func (sim *Simulator) convert(ctx context.Context) error {
	enable := sim.regs[regEnable]
	if enable&(enablePON|enableAEN) != enablePON|enableAEN || sim.behavior == nil {
		return nil
	}
	sample, err := sim.behavior(ctx)
	if err != nil {
		return err
	}
	for _, w := range []struct {
		reg byte
		val uint16
	}{
		{regCDataL, sample.Clear},
		{regRDataL, sample.Red},
		{regGDataL, sample.Green},
		{regBDataL, sample.Blue},
	} {
		sim.regs[w.reg] = byte(w.val)
		sim.regs[w.reg+1] = byte(w.val >> 8)
	}
	sim.regs[regStatus] |= statusAVALID
	if enable&enableAIEN != 0 {
		low := uint16(sim.regs[regAILTH])<<8 | uint16(sim.regs[regAILTL])
		high := uint16(sim.regs[regAIHTH])<<8 | uint16(sim.regs[regAIHTL])
		if sample.Clear < low || sample.Clear > high {
			sim.regs[regStatus] |= statusAINT
		}
	}
	return nil
}
