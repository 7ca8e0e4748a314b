package i2c

import (
	"context"
	"fmt"
	"sync"

	gobotio "gobot.io/x/gobot/v2/drivers/i2c"

	"github.com/mklimuk/colorsensor"
	"github.com/mklimuk/colorsensor/snsctx"
)

var _ colorsensor.I2CBus = &GobotBus{}

// GobotBus adapts a gobot I2C connector (board adaptor) to colorsensor.I2CBus.
// Connections are opened lazily, one per device address.
type GobotBus struct {
	mx        sync.Mutex
	connector gobotio.Connector
	busNr     int
	conns     map[byte]gobotio.Connection
}

// NewGobotBus binds to bus number busNr of the connector; a negative busNr selects the
// adaptor default.
func NewGobotBus(connector gobotio.Connector, busNr int) *GobotBus {
	if busNr < 0 {
		busNr = connector.DefaultI2cBus()
	}
	return &GobotBus{
		connector: connector,
		busNr:     busNr,
		conns:     make(map[byte]gobotio.Connection),
	}
}

func (b *GobotBus) WriteToAddr(ctx context.Context, address byte, buffer []byte) error {
	b.mx.Lock()
	defer b.mx.Unlock()
	conn, err := b.connection(address)
	if err != nil {
		return err
	}
	snsctx.Trace(ctx, "gobot write", buffer)
	n, err := conn.Write(buffer)
	if err != nil {
		return fmt.Errorf("could not write to i2c bus %x: %w", address, err)
	}
	if n != len(buffer) {
		return fmt.Errorf("short write to i2c bus %x: %d of %d bytes", address, n, len(buffer))
	}
	return nil
}

func (b *GobotBus) ReadFromAddr(ctx context.Context, address byte, buffer []byte) error {
	b.mx.Lock()
	defer b.mx.Unlock()
	conn, err := b.connection(address)
	if err != nil {
		return err
	}
	n, err := conn.Read(buffer)
	if err != nil {
		return fmt.Errorf("could not read from i2c bus %x: %w", address, err)
	}
	if n != len(buffer) {
		return fmt.Errorf("short read from i2c bus %x: %d of %d bytes", address, n, len(buffer))
	}
	snsctx.Trace(ctx, "gobot read", buffer)
	return nil
}

func (b *GobotBus) Release(ctx context.Context) error {
	return nil
}

// Close closes every connection opened so far.
func (b *GobotBus) Close() error {
	b.mx.Lock()
	defer b.mx.Unlock()
	var firstErr error
	for addr, conn := range b.conns {
		if err := conn.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("could not close connection %x: %w", addr, err)
		}
		delete(b.conns, addr)
	}
	return firstErr
}

func (b *GobotBus) connection(address byte) (gobotio.Connection, error) {
	if conn, ok := b.conns[address]; ok {
		return conn, nil
	}
	conn, err := b.connector.GetI2cConnection(int(address), b.busNr)
	if err != nil {
		return nil, fmt.Errorf("could not open connection to %x on bus %d: %w", address, b.busNr, err)
	}
	b.conns[address] = conn
	return conn, nil
}
