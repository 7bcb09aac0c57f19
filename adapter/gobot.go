package adapter

import (
	"context"
	"fmt"
	"sync"

	"gobot.io/x/gobot/v2/drivers/i2c"

	"github.com/mklimuk/touch"
)

var _ touch.I2CBus = &Gobot{}

// Gobot exposes a gobot platform adaptor as a touch.I2CBus so the driver can
// run on any board gobot supports (nanopi, raspi, beaglebone, ...).
// Connections are opened lazily per slave address and cached until Release.
type Gobot struct {
	mx        sync.Mutex
	connector i2c.Connector
	bus       int
	conns     map[byte]i2c.Connection
}

func NewGobot(connector i2c.Connector, bus int) *Gobot {
	return &Gobot{
		connector: connector,
		bus:       bus,
		conns:     make(map[byte]i2c.Connection),
	}
}

func (g *Gobot) WriteToAddr(ctx context.Context, address byte, buffer []byte) error {
	g.mx.Lock()
	defer g.mx.Unlock()
	conn, err := g.connection(address)
	if err != nil {
		return err
	}
	n, err := conn.Write(buffer)
	if err != nil {
		return fmt.Errorf("could not write to i2c device %x: %w", address, err)
	}
	if n != len(buffer) {
		return fmt.Errorf("short write to i2c device %x: %d of %d", address, n, len(buffer))
	}
	return nil
}

func (g *Gobot) ReadFromAddr(ctx context.Context, address byte, buffer []byte) error {
	g.mx.Lock()
	defer g.mx.Unlock()
	conn, err := g.connection(address)
	if err != nil {
		return err
	}
	n, err := conn.Read(buffer)
	if err != nil {
		return fmt.Errorf("could not read from i2c device %x: %w", address, err)
	}
	if n != len(buffer) {
		return fmt.Errorf("short read from i2c device %x: %d of %d", address, n, len(buffer))
	}
	return nil
}

// Release closes all cached connections. The adaptor itself stays usable;
// the next transfer reconnects.
func (g *Gobot) Release(ctx context.Context) error {
	g.mx.Lock()
	defer g.mx.Unlock()
	var firstErr error
	for address, conn := range g.conns {
		if err := conn.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("could not close connection to %x: %w", address, err)
		}
		delete(g.conns, address)
	}
	return firstErr
}

func (g *Gobot) connection(address byte) (i2c.Connection, error) {
	if conn, ok := g.conns[address]; ok {
		return conn, nil
	}
	conn, err := g.connector.GetI2cConnection(int(address), g.bus)
	if err != nil {
		return nil, fmt.Errorf("could not connect to i2c device %x: %w", address, err)
	}
	g.conns[address] = conn
	return conn, nil
}
