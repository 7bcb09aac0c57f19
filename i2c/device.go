package i2c

import (
	"context"
	"fmt"

	"github.com/mklimuk/touch"
)

var _ touch.RegisterBus = &Device{}

// Device frames register transactions for a single chip address on top of
// any touch.I2CBus. A register write is one [register, value] transfer; a
// register read writes the register address and then reads the requested
// number of bytes. Start/stop bracketing per transfer is the bus's
// responsibility.
type Device struct {
	bus     touch.I2CBus
	address byte
}

// NewDevice binds a chip at the given 7-bit address to the bus.
func NewDevice(bus touch.I2CBus, address byte) *Device {
	return &Device{bus: bus, address: address}
}

func (d *Device) ReadRegister(ctx context.Context, register byte, buffer []byte) error {
	err := d.bus.WriteToAddr(ctx, d.address, []byte{register})
	if err != nil {
		return fmt.Errorf("could not select register %#02x: %w", register, err)
	}
	err = d.bus.ReadFromAddr(ctx, d.address, buffer)
	if err != nil {
		return fmt.Errorf("could not read register %#02x: %w", register, err)
	}
	return nil
}

func (d *Device) WriteRegister(ctx context.Context, register byte, value byte) error {
	err := d.bus.WriteToAddr(ctx, d.address, []byte{register, value})
	if err != nil {
		return fmt.Errorf("could not write register %#02x: %w", register, err)
	}
	return nil
}

// Release releases the underlying bus claim, where the transport has one.
func (d *Device) Release(ctx context.Context) error {
	return d.bus.Release(ctx)
}
