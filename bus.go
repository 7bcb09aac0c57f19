package touch

import (
	"context"
	"fmt"
)

var ErrBusBusy = fmt.Errorf("bus engine is busy (command not completed)")

// RegisterReader reads len(buffer) bytes starting at an 8-bit register address.
type RegisterReader interface {
	ReadRegister(ctx context.Context, register byte, buffer []byte) error
}

// RegisterWriter writes a single byte to an 8-bit register address.
type RegisterWriter interface {
	WriteRegister(ctx context.Context, register byte, value byte) error
}

// RegisterBus is the capability a register-mapped chip driver needs from its
// transport. Implementations must frame each call as one bus transaction
// (start/stop bracket on I2C, chip-select bracket on SPI).
type RegisterBus interface {
	RegisterReader
	RegisterWriter
}

type AddressableReader interface {
	ReadFromAddr(ctx context.Context, address byte, buffer []byte) error
}

type AddressableWriter interface {
	WriteToAddr(ctx context.Context, address byte, buffer []byte) error
	Release(ctx context.Context) error
}

// I2CBus is a raw addressable bus as exposed by adapters. Register framing
// on top of it is the i2c.Device wrapper's job.
type I2CBus interface {
	AddressableReader
	AddressableWriter
}
