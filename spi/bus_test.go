package spi

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/conntest"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spitest"
)

func playbackBus(t *testing.T, ops []conntest.IO) (*Bus, *spitest.Playback) {
	t.Helper()
	pb := &spitest.Playback{
		Playback: conntest.Playback{
			Ops:       ops,
			DontPanic: true,
		},
	}
	conn, err := pb.Connect(100*physic.KiloHertz, spi.Mode0, 8)
	require.NoError(t, err)
	return &Bus{port: pb, conn: conn}, pb
}

func TestBus_WriteRegister(t *testing.T) {
	// write framing clears bit 7 of the register byte
	b, pb := playbackBus(t, []conntest.IO{
		{W: []byte{0x0B, 0xFF}},
		{W: []byte{0x57, 0x01}}, // 0xD7 masked to 0x57
	})
	ctx := context.Background()

	require.NoError(t, b.WriteRegister(ctx, 0x0B, 0xFF))
	require.NoError(t, b.WriteRegister(ctx, 0xD7, 0x01))
	assert.NoError(t, pb.Close())
}

func TestBus_ReadRegister(t *testing.T) {
	// read framing sets bit 7 and clocks a dummy byte per response byte
	b, pb := playbackBus(t, []conntest.IO{
		{W: []byte{0xC0, 0x00}, R: []byte{0x00, 0x81}},
		{W: []byte{0x80, 0x00, 0x00}, R: []byte{0x00, 0x08, 0x11}},
	})
	ctx := context.Background()

	buf := make([]byte, 1)
	require.NoError(t, b.ReadRegister(ctx, 0x40, buf))
	assert.Equal(t, byte(0x81), buf[0])

	id := make([]byte, 2)
	require.NoError(t, b.ReadRegister(ctx, 0x00, id))
	assert.Equal(t, []byte{0x08, 0x11}, id)
	assert.NoError(t, pb.Close())
}

func TestBus_ReadRegister_Error(t *testing.T) {
	b, _ := playbackBus(t, nil)
	err := b.ReadRegister(context.Background(), 0x40, make([]byte, 1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not read register 0x40")
}
