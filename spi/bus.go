package spi

import (
	"context"
	"fmt"

	"github.com/mklimuk/touch"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// Register framing bits: the chip reads when bit 7 of the register byte is
// set and writes when it is clear.
const (
	readFlag  byte = 0x80
	writeMask byte = 0x7F
)

var _ touch.RegisterBus = &Bus{}

// Bus is a touch.RegisterBus over a dedicated SPI slave. Every operation is
// a single chip-select-bracketed transaction; chip-select handling itself
// belongs to the underlying port.
type Bus struct {
	port spi.PortCloser
	conn spi.Conn
}

type Opts struct {
	Frequency physic.Frequency
	Mode      spi.Mode
}

type Opt func(*Opts)

func WithFrequency(f physic.Frequency) Opt {
	return func(o *Opts) {
		o.Frequency = f
	}
}

func WithMode(m spi.Mode) Opt {
	return func(o *Opts) {
		o.Mode = m
	}
}

// Open initializes the periph host drivers and connects to the SPI port
// named by dev (e.g. "/dev/spidev0.0"). An empty name selects the first
// available port. The default 100 kHz clock matches the chip's conservative
// maximum; it can be raised with WithFrequency.
func Open(dev string, opts ...Opt) (*Bus, error) {
	config := Opts{
		Frequency: 100 * physic.KiloHertz,
		Mode:      spi.Mode0,
	}
	for _, opt := range opts {
		opt(&config)
	}
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("could not init host: %w", err)
	}
	port, err := spireg.Open(dev)
	if err != nil {
		return nil, fmt.Errorf("could not open spi port: %w", err)
	}
	conn, err := port.Connect(config.Frequency, config.Mode, 8)
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("could not connect to spi device: %w", err)
	}
	return &Bus{port: port, conn: conn}, nil
}

// ReadRegister clocks out the register address with the read bit set, then
// clocks in len(buffer) bytes within the same chip-select bracket.
func (b *Bus) ReadRegister(ctx context.Context, register byte, buffer []byte) error {
	w := make([]byte, len(buffer)+1)
	r := make([]byte, len(buffer)+1)
	w[0] = register | readFlag
	if err := b.conn.Tx(w, r); err != nil {
		return fmt.Errorf("could not read register %#02x: %w", register, err)
	}
	copy(buffer, r[1:])
	return nil
}

// WriteRegister sends the register address with the read bit cleared,
// followed by the value, as one transaction.
func (b *Bus) WriteRegister(ctx context.Context, register byte, value byte) error {
	if err := b.conn.Tx([]byte{register & writeMask, value}, nil); err != nil {
		return fmt.Errorf("could not write register %#02x: %w", register, err)
	}
	return nil
}

func (b *Bus) Close() error {
	return b.port.Close()
}
