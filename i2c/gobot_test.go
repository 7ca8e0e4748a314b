package i2c

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gobotio "gobot.io/x/gobot/v2/drivers/i2c"
)

type fakeConnection struct {
	gobotio.Connection
	written  [][]byte
	readData []byte
	short    bool
	err      error
	closed   bool
}

func (c *fakeConnection) Write(b []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	c.written = append(c.written, append([]byte(nil), b...))
	if c.short {
		return len(b) - 1, nil
	}
	return len(b), nil
}

func (c *fakeConnection) Read(b []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	n := copy(b, c.readData)
	if c.short {
		n--
	}
	return n, nil
}

func (c *fakeConnection) Close() error {
	c.closed = true
	return nil
}

type fakeConnector struct {
	defaultBus int
	opened     map[int]int
	conns      map[int]*fakeConnection
	err        error
}

func newFakeConnector() *fakeConnector {
	return &fakeConnector{
		defaultBus: 1,
		opened:     make(map[int]int),
		conns:      make(map[int]*fakeConnection),
	}
}

func (f *fakeConnector) GetI2cConnection(address int, busNr int) (gobotio.Connection, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.opened[address] = busNr
	conn, ok := f.conns[address]
	if !ok {
		conn = &fakeConnection{}
		f.conns[address] = conn
	}
	return conn, nil
}

func (f *fakeConnector) DefaultI2cBus() int {
	return f.defaultBus
}

func TestGobotBus_UsesDefaultBus(t *testing.T) {
	connector := newFakeConnector()
	bus := NewGobotBus(connector, -1)

	require.NoError(t, bus.WriteToAddr(context.Background(), 0x29, []byte{0x12}))
	assert.Equal(t, 1, connector.opened[0x29])

	explicit := NewGobotBus(newFakeConnector(), 3)
	assert.Equal(t, 3, explicit.busNr)
}

func TestGobotBus_WriteThenRead(t *testing.T) {
	connector := newFakeConnector()
	connector.conns[0x29] = &fakeConnection{readData: []byte{0xE8, 0x03}}
	bus := NewGobotBus(connector, 0)
	ctx := context.Background()

	require.NoError(t, bus.WriteToAddr(ctx, 0x29, []byte{0x14}))
	buf := make([]byte, 2)
	require.NoError(t, bus.ReadFromAddr(ctx, 0x29, buf))

	assert.Equal(t, []byte{0xE8, 0x03}, buf)
	assert.Equal(t, [][]byte{{0x14}}, connector.conns[0x29].written)
	assert.Len(t, connector.opened, 1)
}

func TestGobotBus_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("open failure", func(t *testing.T) {
		connector := newFakeConnector()
		connector.err = errors.New("no such bus")
		bus := NewGobotBus(connector, 0)
		err := bus.WriteToAddr(ctx, 0x29, []byte{0x00})
		assert.ErrorIs(t, err, connector.err)
	})
	t.Run("transfer failure", func(t *testing.T) {
		connector := newFakeConnector()
		connErr := errors.New("remote i/o error")
		connector.conns[0x29] = &fakeConnection{err: connErr}
		bus := NewGobotBus(connector, 0)
		assert.ErrorIs(t, bus.WriteToAddr(ctx, 0x29, []byte{0x00}), connErr)
		assert.ErrorIs(t, bus.ReadFromAddr(ctx, 0x29, make([]byte, 1)), connErr)
	})
	t.Run("short transfer", func(t *testing.T) {
		connector := newFakeConnector()
		connector.conns[0x29] = &fakeConnection{short: true, readData: []byte{1, 2}}
		bus := NewGobotBus(connector, 0)
		assert.ErrorContains(t, bus.WriteToAddr(ctx, 0x29, []byte{0x00, 0x01}), "short write")
		assert.ErrorContains(t, bus.ReadFromAddr(ctx, 0x29, make([]byte, 2)), "short read")
	})
}

func TestGobotBus_Close(t *testing.T) {
	connector := newFakeConnector()
	bus := NewGobotBus(connector, 0)
	ctx := context.Background()
	require.NoError(t, bus.WriteToAddr(ctx, 0x29, []byte{0x00}))
	require.NoError(t, bus.WriteToAddr(ctx, 0x39, []byte{0x00}))

	require.NoError(t, bus.Close())
	assert.True(t, connector.conns[0x29].closed)
	assert.True(t, connector.conns[0x39].closed)
	assert.Empty(t, bus.conns)
}
