package i2c

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

func TestGenericBus_Playback(t *testing.T) {
	pb := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: 0x41, W: []byte{0x03, 0x02}},
			{Addr: 0x41, W: []byte{0x40}},
			{Addr: 0x41, R: []byte{0x81}},
		},
		DontPanic: true,
	}
	bus := &GenericBus{bus: pb}
	ctx := context.Background()

	require.NoError(t, bus.WriteToAddr(ctx, 0x41, []byte{0x03, 0x02}))

	dev := NewDevice(bus, 0x41)
	buffer := make([]byte, 1)
	require.NoError(t, dev.ReadRegister(ctx, 0x40, buffer))
	assert.Equal(t, byte(0x81), buffer[0])

	assert.NoError(t, bus.Release(ctx))
	assert.NoError(t, bus.Close())
}

func TestGenericBus_TxError(t *testing.T) {
	pb := &i2ctest.Playback{DontPanic: true}
	bus := &GenericBus{bus: pb}

	err := bus.WriteToAddr(context.Background(), 0x41, []byte{0x03, 0x02})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not write to i2c bus 41")
}
