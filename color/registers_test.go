package color

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockI2CBus is a mock implementation of colorsensor.I2CBus using testify/mock
type MockI2CBus struct {
	mock.Mock
}

func (m *MockI2CBus) WriteToAddr(ctx context.Context, address byte, buffer []byte) error {
	args := m.Called(ctx, address, buffer)
	return args.Error(0)
}

func (m *MockI2CBus) ReadFromAddr(ctx context.Context, address byte, buffer []byte) error {
	args := m.Called(ctx, address, buffer)
	if data, ok := args.Get(0).([]byte); ok && len(data) <= len(buffer) {
		copy(buffer, data)
	}
	return args.Error(1)
}

func (m *MockI2CBus) Release(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func TestRegisters_WriteByte(t *testing.T) {
	bus := new(MockI2CBus)
	regs := newRegisters(bus, DefaultAddress)
	bus.On("WriteToAddr", mock.Anything, byte(DefaultAddress), []byte{regControl, byte(Gain16x)}).
		Return(nil).Once()

	err := regs.writeByte(context.Background(), regControl, byte(Gain16x))
	require.NoError(t, err)
	bus.AssertExpectations(t)
}

func TestRegisters_ReadByte(t *testing.T) {
	bus := new(MockI2CBus)
	regs := newRegisters(bus, DefaultAddress)
	bus.On("WriteToAddr", mock.Anything, byte(DefaultAddress), []byte{regID}).Return(nil).Once()
	bus.On("ReadFromAddr", mock.Anything, byte(DefaultAddress), mock.MatchedBy(func(b []byte) bool {
		return len(b) == 1
	})).Return([]byte{0x44}, nil).Once()

	id, err := regs.readByte(context.Background(), regID)
	require.NoError(t, err)
	assert.Equal(t, byte(0x44), id)
	bus.AssertExpectations(t)
}

func TestRegisters_ReadWordLittleEndian(t *testing.T) {
	tests := []struct {
		name     string
		given    []byte
		expected uint16
	}{
		{"zero", []byte{0x00, 0x00}, 0},
		{"low only", []byte{0xE8, 0x00}, 232},
		{"low and high", []byte{0xE8, 0x03}, 1000},
		{"full scale", []byte{0xFF, 0xFF}, 65535},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := new(MockI2CBus)
			regs := newRegisters(bus, DefaultAddress)
			bus.On("WriteToAddr", mock.Anything, byte(DefaultAddress), []byte{regRDataL}).Return(nil).Once()
			bus.On("ReadFromAddr", mock.Anything, byte(DefaultAddress), mock.MatchedBy(func(b []byte) bool {
				return len(b) == 2
			})).Return(tt.given, nil).Once()

			val, err := regs.readWord(context.Background(), regRDataL)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, val)
			bus.AssertExpectations(t)
		})
	}
}

func TestRegisters_CommandSetsCommandBit(t *testing.T) {
	bus := new(MockI2CBus)
	regs := newRegisters(bus, DefaultAddress)
	bus.On("WriteToAddr", mock.Anything, byte(DefaultAddress), []byte{0xE6}).Return(nil).Once()

	err := regs.command(context.Background(), cmdClearInterrupt)
	require.NoError(t, err)
	bus.AssertExpectations(t)
}

func TestRegisters_TransportErrorsAreWrapped(t *testing.T) {
	busErr := errors.New("nack")

	t.Run("pointer write", func(t *testing.T) {
		bus := new(MockI2CBus)
		regs := newRegisters(bus, DefaultAddress)
		bus.On("WriteToAddr", mock.Anything, byte(DefaultAddress), []byte{regStatus}).Return(busErr).Once()

		_, err := regs.readByte(context.Background(), regStatus)
		assert.ErrorIs(t, err, busErr)
		bus.AssertNotCalled(t, "ReadFromAddr", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("data read", func(t *testing.T) {
		bus := new(MockI2CBus)
		regs := newRegisters(bus, DefaultAddress)
		bus.On("WriteToAddr", mock.Anything, byte(DefaultAddress), []byte{regBDataL}).Return(nil).Once()
		bus.On("ReadFromAddr", mock.Anything, byte(DefaultAddress), mock.Anything).Return(nil, busErr).Once()

		_, err := regs.readWord(context.Background(), regBDataL)
		assert.ErrorIs(t, err, busErr)
		assert.Contains(t, err.Error(), "0x1a")
	})

	t.Run("register write", func(t *testing.T) {
		bus := new(MockI2CBus)
		regs := newRegisters(bus, DefaultAddress)
		bus.On("WriteToAddr", mock.Anything, byte(DefaultAddress), mock.Anything).Return(busErr).Once()

		err := regs.writeByte(context.Background(), regEnable, enablePON)
		assert.ErrorIs(t, err, busErr)
	})
}
