package touchscreen

import (
	"context"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type regWrite struct {
	register byte
	value    byte
}

// fakeBus is a register-level test double: register values are served from a
// map, reads of the FIFO data register pop from a byte queue, and every
// transaction is recorded in order.
type fakeBus struct {
	regs     map[byte]byte
	fifo     []byte
	reads    []byte
	writes   []regWrite
	readErr  error
	writeErr error
}

func newFakeBus() *fakeBus {
	return &fakeBus{
		regs: map[byte]byte{
			regChipID:     0x08,
			regChipID + 1: 0x11,
		},
	}
}

func (b *fakeBus) ReadRegister(ctx context.Context, register byte, buffer []byte) error {
	if b.readErr != nil {
		return b.readErr
	}
	b.reads = append(b.reads, register)
	if register == regFIFOData && len(b.fifo) > 0 {
		buffer[0] = b.fifo[0]
		b.fifo = b.fifo[1:]
		return nil
	}
	buffer[0] = b.regs[register]
	return nil
}

func (b *fakeBus) WriteRegister(ctx context.Context, register byte, value byte) error {
	if b.writeErr != nil {
		return b.writeErr
	}
	b.writes = append(b.writes, regWrite{register, value})
	b.regs[register] = value
	return nil
}

func (b *fakeBus) reset() {
	b.reads = nil
	b.writes = nil
}

func newTestScreen(t *testing.T) (*STMPE610, *fakeBus) {
	t.Helper()
	bus := newFakeBus()
	d, err := NewSTMPE610(context.Background(), bus)
	require.NoError(t, err)
	bus.reset()
	return d, bus
}

func TestSTMPE610_DecodePoint(t *testing.T) {
	tests := []struct {
		raw      [4]byte
		expected TouchPoint
	}{
		{[4]byte{0x00, 0x00, 0x00, 0x00}, TouchPoint{X: 0, Y: 0, Pressure: 0}},
		{[4]byte{0xAB, 0xCD, 0xEF, 0x42}, TouchPoint{X: 2748, Y: 3567, Pressure: 66}},
		{[4]byte{0xFF, 0xFF, 0xFF, 0xFF}, TouchPoint{X: 4095, Y: 4095, Pressure: 255}},
		{[4]byte{0x01, 0x10, 0x01, 0x80}, TouchPoint{X: 0x011, Y: 0x001, Pressure: 0x80}},
		{[4]byte{0x80, 0x00, 0x00, 0x01}, TouchPoint{X: 0x800, Y: 0, Pressure: 1}},
	}
	for _, test := range tests {
		t.Run(hex.EncodeToString(test.raw[:]), func(t *testing.T) {
			assert.Equal(t, test.expected, decodePoint(test.raw))
		})
	}
}

func TestNewSTMPE610_InitSequence(t *testing.T) {
	bus := newFakeBus()
	_, err := NewSTMPE610(context.Background(), bus)
	require.NoError(t, err)

	expected := []regWrite{{regSysCtrl1, sysCtrl1SoftReset}}
	for _, w := range initSequence {
		expected = append(expected, regWrite{w.register, w.value})
	}
	assert.Equal(t, expected, bus.writes)

	// reset-then-unreset pair flushes the FIFO, interrupt enable comes last
	assert.Contains(t, bus.writes, regWrite{regFIFOSta, fifoStaReset})
	assert.Contains(t, bus.writes, regWrite{regFIFOSta, 0x00})
	assert.Equal(t, regWrite{regIntCtrl, intCtrlPolarityHigh | intCtrlEnable}, bus.writes[len(bus.writes)-1])
}

func TestNewSTMPE610_WrongDevice(t *testing.T) {
	tests := []struct {
		name    string
		v1, v2  byte
		version uint16
	}{
		{"zero id", 0x00, 0x00, 0x0000},
		{"swapped bytes", 0x11, 0x08, 0x1108},
		{"other chip", 0x08, 0x10, 0x0810},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			bus := newFakeBus()
			bus.regs[regChipID] = test.v1
			bus.regs[regChipID+1] = test.v2
			_, err := NewSTMPE610(context.Background(), bus)
			var wrong *WrongDeviceError
			require.ErrorAs(t, err, &wrong)
			assert.Equal(t, test.version, wrong.Version)
			assert.Empty(t, bus.writes, "no configuration write may happen after a failed identity check")
		})
	}
}

func TestNewSTMPE610_VersionReadError(t *testing.T) {
	bus := newFakeBus()
	bus.readErr = errors.New("bus nack")
	_, err := NewSTMPE610(context.Background(), bus)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bus nack")
}

func TestSTMPE610_GetVersion_NotCached(t *testing.T) {
	d, bus := newTestScreen(t)
	ctx := context.Background()

	version, err := d.GetVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint16(ChipVersion), version)

	bus.regs[regChipID] = 0xBE
	bus.regs[regChipID+1] = 0xEF
	version, err = d.GetVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint16(0xBEEF), version, "version must be re-read from the chip on every call")
}

func TestSTMPE610_Touched(t *testing.T) {
	tests := []struct {
		ctrl     byte
		expected bool
	}{
		{0x00, false},
		{0x01, false},
		{0x80, true},
		{0x81, true},
		{0x7F, false},
	}
	for _, test := range tests {
		t.Run(hex.EncodeToString([]byte{test.ctrl}), func(t *testing.T) {
			d, bus := newTestScreen(t)
			bus.regs[regTSCCtrl] = test.ctrl
			for range 2 {
				touched, err := d.Touched(context.Background())
				require.NoError(t, err)
				assert.Equal(t, test.expected, touched)
			}
			assert.Empty(t, bus.writes, "queries are pure reads")
		})
	}
}

func TestSTMPE610_BufferEmpty(t *testing.T) {
	tests := []struct {
		status   byte
		expected bool
	}{
		{0x00, false},
		{0x20, true},
		{0xA0, true},
		{0xDF, false},
	}
	for _, test := range tests {
		t.Run(hex.EncodeToString([]byte{test.status}), func(t *testing.T) {
			d, bus := newTestScreen(t)
			bus.regs[regFIFOSta] = test.status
			for range 2 {
				empty, err := d.BufferEmpty(context.Background())
				require.NoError(t, err)
				assert.Equal(t, test.expected, empty)
			}
			assert.Empty(t, bus.writes, "queries are pure reads")
		})
	}
}

func TestSTMPE610_BufferSize(t *testing.T) {
	d, bus := newTestScreen(t)
	bus.regs[regFIFOSize] = 3
	size, err := d.BufferSize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint8(3), size)
	assert.Equal(t, []byte{regFIFOSize}, bus.reads)
}

func TestSTMPE610_ReadPoint(t *testing.T) {
	d, bus := newTestScreen(t)
	bus.fifo = []byte{0xAB, 0xCD, 0xEF, 0x42}
	bus.regs[regFIFOSta] = fifoStaEmpty

	point, err := d.ReadPoint(context.Background())
	require.NoError(t, err)
	assert.Equal(t, TouchPoint{X: 2748, Y: 3567, Pressure: 66}, point)

	// the sample must be drained as four single-byte reads, never one burst
	assert.Equal(t, []byte{regFIFOData, regFIFOData, regFIFOData, regFIFOData, regFIFOSta}, bus.reads)
	// buffer ran empty, so the touch interrupt gets re-armed
	assert.Equal(t, []regWrite{{regIntSta, 0xFF}}, bus.writes)
}

func TestSTMPE610_ReadPoint_BufferNotEmpty(t *testing.T) {
	d, bus := newTestScreen(t)
	bus.fifo = []byte{0x10, 0x20, 0x30, 0x40, 0x50, 0x60, 0x70, 0x80}
	bus.regs[regFIFOSta] = 0x00

	_, err := d.ReadPoint(context.Background())
	require.NoError(t, err)
	assert.Empty(t, bus.writes, "interrupt flags must not be cleared while samples remain buffered")

	// the next read continues with the following 4-byte entry
	point, err := d.ReadPoint(context.Background())
	require.NoError(t, err)
	assert.Equal(t, decodePoint([4]byte{0x50, 0x60, 0x70, 0x80}), point)
}

func TestSTMPE610_ReadPoint_ReadError(t *testing.T) {
	d, bus := newTestScreen(t)
	bus.readErr = errors.New("bus timeout")
	_, err := d.ReadPoint(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bus timeout")
	assert.Empty(t, bus.writes)
}
