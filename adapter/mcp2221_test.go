package adapter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBufferToStatus(t *testing.T) {
	buf := make([]byte, reportSize)
	buf[0] = cmdStatusSetParams
	buf[9], buf[10] = 0x02, 0x01
	buf[11], buf[12] = 0x01, 0x00
	buf[13] = 3
	buf[14] = 0x76
	buf[15] = 9
	buf[16], buf[17] = 0x52, 0x00
	buf[25] = 1

	status := bufferToStatus(buf)
	assert.Equal(t, &MCP2221Status{
		I2CDataBufferCounter:   3,
		I2CSpeedDivider:        0x76,
		I2CTimeout:             9,
		CurrentAddress:         "5200",
		LastWriteRequestedSize: 0x0102,
		LastWriteSentSize:      1,
		ReadPending:            1,
	}, status)
}

func TestNewMCP2221_Options(t *testing.T) {
	d := NewMCP2221()
	assert.Equal(t, -1, d.index)
	assert.Equal(t, 50*time.Millisecond, d.responseWait)
	assert.Len(t, d.request, reportSize)

	d = NewMCP2221(WithDeviceIndex(2), WithResponseWait(5*time.Millisecond))
	assert.Equal(t, 2, d.index)
	assert.Equal(t, 5*time.Millisecond, d.responseWait)
}

func TestMCP2221_PayloadLimit(t *testing.T) {
	d := NewMCP2221()
	ctx := context.Background()
	err := d.WriteToAddr(ctx, 0x29, make([]byte, maxI2CPayload+1))
	assert.ErrorContains(t, err, "exceeds")
	err = d.ReadFromAddr(ctx, 0x29, make([]byte, maxI2CPayload+1))
	assert.ErrorContains(t, err, "at most")
}
