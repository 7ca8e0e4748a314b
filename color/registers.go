package color

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/mklimuk/colorsensor"
	"github.com/mklimuk/colorsensor/snsctx"
)

// DefaultAddress is the fixed 7-bit bus address of the TCS3472x family.
const DefaultAddress = 0x29

// Identification codes accepted in the ID register (TCS34721/TCS34725 and a known clone).
const (
	idTCS34725    byte = 0x44
	idTCS34725Alt byte = 0x10
)

// Register map. Channel data is stored as low/high byte pairs.
const (
	regEnable  byte = 0x00
	regATime   byte = 0x01
	regWTime   byte = 0x03
	regAILTL   byte = 0x04
	regAILTH   byte = 0x05
	regAIHTL   byte = 0x06
	regAIHTH   byte = 0x07
	regPers    byte = 0x0C
	regConfig  byte = 0x0D
	regControl byte = 0x0F
	regID      byte = 0x12
	regStatus  byte = 0x13
	regCDataL  byte = 0x14
	regCDataH  byte = 0x15
	regRDataL  byte = 0x16
	regRDataH  byte = 0x17
	regGDataL  byte = 0x18
	regGDataH  byte = 0x19
	regBDataL  byte = 0x1A
	regBDataH  byte = 0x1B
)

// ENABLE register bits
const (
	enablePON  byte = 0x01 // oscillator
	enableAEN  byte = 0x02 // RGBC ADC
	enableWEN  byte = 0x08 // wait timer
	enableAIEN byte = 0x10 // RGBC interrupt
)

// STATUS register bits
const (
	statusAVALID = 0x01
	statusAINT   = 0x10
)

const (
	commandBit byte = 0x80
	// special function: RGBC interrupt clear
	cmdClearInterrupt byte = 0x66
)

// registers performs raw transactions against the chip. Register offsets are sent as
// they are given; only special-function commands carry the command bit.
type registers struct {
	bus  colorsensor.I2CBus
	addr byte
	buf  []byte
}

func newRegisters(bus colorsensor.I2CBus, addr byte) registers {
	return registers{bus: bus, addr: addr, buf: make([]byte, 2)}
}

func (r *registers) writeByte(ctx context.Context, reg, value byte) error {
	out := []byte{reg, value}
	snsctx.Trace(ctx, "tcs34725 write", out)
	err := r.bus.WriteToAddr(ctx, r.addr, out)
	if err != nil {
		return fmt.Errorf("tcs34725: could not write register %#02x: %w", reg, err)
	}
	return nil
}

func (r *registers) readByte(ctx context.Context, reg byte) (byte, error) {
	if err := r.selectRegister(ctx, reg); err != nil {
		return 0, err
	}
	err := r.bus.ReadFromAddr(ctx, r.addr, r.buf[:1])
	if err != nil {
		return 0, fmt.Errorf("tcs34725: could not read register %#02x: %w", reg, err)
	}
	snsctx.Trace(ctx, "tcs34725 read", r.buf[:1])
	return r.buf[0], nil
}

// readWord reads the low/high pair starting at reg.
func (r *registers) readWord(ctx context.Context, reg byte) (uint16, error) {
	if err := r.selectRegister(ctx, reg); err != nil {
		return 0, err
	}
	err := r.bus.ReadFromAddr(ctx, r.addr, r.buf[:2])
	if err != nil {
		return 0, fmt.Errorf("tcs34725: could not read word at %#02x: %w", reg, err)
	}
	snsctx.Trace(ctx, "tcs34725 read", r.buf[:2])
	return binary.LittleEndian.Uint16(r.buf[:2]), nil
}

func (r *registers) command(ctx context.Context, cmd byte) error {
	out := []byte{commandBit | cmd}
	snsctx.Trace(ctx, "tcs34725 command", out)
	err := r.bus.WriteToAddr(ctx, r.addr, out)
	if err != nil {
		return fmt.Errorf("tcs34725: could not send command %#02x: %w", cmd, err)
	}
	return nil
}

func (r *registers) selectRegister(ctx context.Context, reg byte) error {
	err := r.bus.WriteToAddr(ctx, r.addr, []byte{reg})
	if err != nil {
		return fmt.Errorf("tcs34725: could not set register pointer to %#02x: %w", reg, err)
	}
	return nil
}
