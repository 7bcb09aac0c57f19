package adapter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStatus(t *testing.T) {
	buffer := make([]byte, reportSize)
	buffer[9] = 0x04 // requested 4 bytes
	buffer[11] = 0x02
	buffer[13] = 7
	buffer[14] = 26
	buffer[15] = 75
	buffer[16] = 0x82
	buffer[17] = 0x00
	buffer[25] = 1

	status := parseStatus(buffer)
	assert.Equal(t, uint16(4), status.LastWriteRequestedSize)
	assert.Equal(t, uint16(2), status.LastWriteSentSize)
	assert.Equal(t, 7, status.I2CDataBufferCounter)
	assert.Equal(t, 26, status.I2CSpeedDivider)
	assert.Equal(t, 75, status.I2CTimeout)
	assert.Equal(t, "8200", status.CurrentAddress)
	assert.Equal(t, 1, status.ReadPending)
}

func TestSend_NotInitialized(t *testing.T) {
	d := NewMCP2221()
	err := d.send(context.Background())
	assert.ErrorIs(t, err, ErrNotInitialized)
}
