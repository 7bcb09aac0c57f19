package touchscreen

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mklimuk/touch"
)

// Address is the default 7-bit I2C address of the STMPE610.
const Address = 0x41

// ChipVersion is the identification value reported by a genuine STMPE610.
const ChipVersion = 0x0811

// Register map (per datasheet)
const (
	regChipID       byte = 0x00 // 16-bit version id, big-endian over registers 0x00/0x01
	regSysCtrl1     byte = 0x03
	regSysCtrl2     byte = 0x04
	regIntCtrl      byte = 0x09
	regIntEn        byte = 0x0A
	regIntSta       byte = 0x0B
	regADCCtrl1     byte = 0x20
	regADCCtrl2     byte = 0x21
	regTSCCtrl      byte = 0x40
	regTSCCfg       byte = 0x41
	regFIFOTh       byte = 0x4A
	regFIFOSta      byte = 0x4B
	regFIFOSize     byte = 0x4C
	regTSCFractionZ byte = 0x56
	regTSCIDrive    byte = 0x58
	regFIFOData     byte = 0xD7 // reading pops one byte of the 4-byte sample
)

// Control bit values written during init or checked by the queries. Only the
// combinations baked into the init sequence are ever written.
const (
	sysCtrl1SoftReset byte = 0x02

	tscCtrlEnable  byte = 0x01
	tscCtrlModeXYZ byte = 0x00
	tscCtrlTouched byte = 0x80

	intCtrlPolarityHigh byte = 0x04
	intCtrlEnable       byte = 0x01

	intEnTouchDetect byte = 0x01

	adcCtrl1Mode10Bit byte = 0x00
	adcCtrl2Clock65   byte = 0x02 // 6.5 MHz conversion clock

	tscCfg4Samples byte = 0x80
	tscCfgDelay1ms byte = 0x20
	tscCfgSettle5  byte = 0x04 // 5 ms settling

	fifoStaReset byte = 0x01
	fifoStaEmpty byte = 0x20

	tscIDrive50mA byte = 0x01
)

// The chip needs a short real-time pause after a soft reset before it
// accepts further commands.
const resetSettle = time.Millisecond

// initSequence is issued in order after the soft reset. Order matters: the
// FIFO reset bit is toggled on then off to flush stale samples, and the
// interrupt line is enabled last, after pending flags are cleared.
var initSequence = []struct {
	register byte
	value    byte
}{
	{regSysCtrl2, 0x00}, // clocks on
	{regTSCCtrl, tscCtrlModeXYZ | tscCtrlEnable},
	{regIntEn, intEnTouchDetect},
	{regADCCtrl1, adcCtrl1Mode10Bit | 0x6<<4}, // 96 clocks per conversion
	{regADCCtrl2, adcCtrl2Clock65},
	{regTSCCfg, tscCfg4Samples | tscCfgDelay1ms | tscCfgSettle5},
	{regTSCFractionZ, 0x06},
	{regFIFOTh, 0x01},
	{regFIFOSta, fifoStaReset},
	{regFIFOSta, 0x00},
	{regTSCIDrive, tscIDrive50mA},
	{regIntSta, 0xFF}, // clear all pending interrupt flags
	{regIntCtrl, intCtrlPolarityHigh | intCtrlEnable},
}

// WrongDeviceError is returned by NewSTMPE610 when the chip identification
// registers do not report an STMPE610.
type WrongDeviceError struct {
	Version uint16
}

func (e *WrongDeviceError) Error() string {
	return fmt.Sprintf("stmpe610: unexpected chip version %#06x (want %#06x)", e.Version, ChipVersion)
}

// TouchPoint is one decoded FIFO sample. X and Y are raw 12-bit panel
// coordinates, not scaled to any screen geometry.
type TouchPoint struct {
	X        uint16
	Y        uint16
	Pressure uint8
}

// STMPE610 represents the ST STMPE610 resistive touch-screen controller.
// See: https://www.st.com/resource/en/datasheet/stmpe610.pdf
//
// The driver owns its transport exclusively; the mutex serializes operations
// because a sample is drained as four separate reads of the same register.
// Transaction framing (start/stop bracket or chip select) is the transport's
// responsibility.
type STMPE610 struct {
	mx        sync.Mutex
	transport touch.RegisterBus
	buf       [1]byte
}

// NewSTMPE610 verifies the chip identity and runs the fixed configuration
// sequence: soft reset, settling pause, clocks, X/Y/Z touch sensing with the
// touch-detect interrupt source, 10-bit ADC at 6.5 MHz, 4-sample averaging
// with 1 ms delay and 5 ms settling, FIFO threshold 1, 50 mA drive current
// and a high-polarity interrupt line. Writes are not read back for
// verification. A chip reporting a different version yields *WrongDeviceError.
func NewSTMPE610(ctx context.Context, transport touch.RegisterBus) (*STMPE610, error) {
	d := &STMPE610{transport: transport}
	version, err := d.readVersion(ctx)
	if err != nil {
		return nil, err
	}
	if version != ChipVersion {
		return nil, &WrongDeviceError{Version: version}
	}
	err = d.transport.WriteRegister(ctx, regSysCtrl1, sysCtrl1SoftReset)
	if err != nil {
		return nil, fmt.Errorf("stmpe610: soft reset failed: %w", err)
	}
	time.Sleep(resetSettle)
	for _, w := range initSequence {
		err = d.transport.WriteRegister(ctx, w.register, w.value)
		if err != nil {
			return nil, fmt.Errorf("stmpe610: init write %#02x=%#02x failed: %w", w.register, w.value, err)
		}
	}
	return d, nil
}

// GetVersion reads the 16-bit chip identification value. It is read from the
// chip on every call, never cached.
func (d *STMPE610) GetVersion(ctx context.Context) (uint16, error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	return d.readVersion(ctx)
}

// Touched reports whether at least one touch is currently active.
func (d *STMPE610) Touched(ctx context.Context) (bool, error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	ctrl, err := d.readByte(ctx, regTSCCtrl)
	if err != nil {
		return false, fmt.Errorf("stmpe610: could not read touch control register: %w", err)
	}
	return ctrl&tscCtrlTouched == tscCtrlTouched, nil
}

// BufferEmpty reports whether the sample FIFO holds no readings.
func (d *STMPE610) BufferEmpty(ctx context.Context) (bool, error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	return d.bufferEmpty(ctx)
}

// BufferSize returns the number of samples currently buffered in the FIFO.
func (d *STMPE610) BufferSize(ctx context.Context) (uint8, error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	size, err := d.readByte(ctx, regFIFOSize)
	if err != nil {
		return 0, fmt.Errorf("stmpe610: could not read buffer size: %w", err)
	}
	return size, nil
}

// ReadPoint drains one 4-byte sample from the FIFO and decodes it. The chip
// pops one byte of the sample per read of the data register, so the driver
// issues four single-byte reads rather than one burst. When the FIFO is empty
// afterwards all interrupt flags are cleared, re-arming the touch-detect
// interrupt for the next event.
//
// The driver performs no availability check: calling ReadPoint with an empty
// buffer returns whatever stale bytes the chip produces. Callers are expected
// to consult BufferEmpty or BufferSize first.
func (d *STMPE610) ReadPoint(ctx context.Context) (TouchPoint, error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	var raw [4]byte
	for i := range raw {
		b, err := d.readByte(ctx, regFIFOData)
		if err != nil {
			return TouchPoint{}, fmt.Errorf("stmpe610: could not read sample byte %d: %w", i, err)
		}
		raw[i] = b
	}
	point := decodePoint(raw)
	empty, err := d.bufferEmpty(ctx)
	if err != nil {
		return TouchPoint{}, err
	}
	if empty {
		err = d.transport.WriteRegister(ctx, regIntSta, 0xFF)
		if err != nil {
			return TouchPoint{}, fmt.Errorf("stmpe610: could not re-arm touch interrupt: %w", err)
		}
	}
	return point, nil
}

func (d *STMPE610) readVersion(ctx context.Context) (uint16, error) {
	v1, err := d.readByte(ctx, regChipID)
	if err != nil {
		return 0, fmt.Errorf("stmpe610: could not read chip version: %w", err)
	}
	v2, err := d.readByte(ctx, regChipID+1)
	if err != nil {
		return 0, fmt.Errorf("stmpe610: could not read chip version: %w", err)
	}
	return uint16(v1)<<8 | uint16(v2), nil
}

func (d *STMPE610) bufferEmpty(ctx context.Context) (bool, error) {
	status, err := d.readByte(ctx, regFIFOSta)
	if err != nil {
		return false, fmt.Errorf("stmpe610: could not read buffer status: %w", err)
	}
	return status&fifoStaEmpty != 0, nil
}

func (d *STMPE610) readByte(ctx context.Context, register byte) (byte, error) {
	err := d.transport.ReadRegister(ctx, register, d.buf[:])
	return d.buf[0], err
}

// decodePoint unpacks a raw 4-byte FIFO entry: the x coordinate is the first
// byte and the high nibble of the second, y is the low nibble of the second
// byte and the third, pressure is the fourth.
func decodePoint(raw [4]byte) TouchPoint {
	return TouchPoint{
		X:        uint16(raw[0])<<4 | uint16(raw[1])>>4,
		Y:        uint16(raw[1]&0x0F)<<8 | uint16(raw[2]),
		Pressure: raw[3],
	}
}
