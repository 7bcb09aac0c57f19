package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"gobot.io/x/gobot/v2/platforms/friendlyelec/nanopi"

	"github.com/mklimuk/touch"
	"github.com/mklimuk/touch/adapter"
	"github.com/mklimuk/touch/cmd/touch/console"
	"github.com/mklimuk/touch/i2c"
	"github.com/mklimuk/touch/spi"
	"github.com/mklimuk/touch/touchscreen"
)

var adapterFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "adapter",
		Aliases: []string{"a"},
		Usage:   "bus transport (mcp2221, i2c, spi, gobot)",
		Value:   "mcp2221",
	},
	&cli.StringFlag{
		Name:  "dev",
		Usage: "bus device name (i2c/spi adapters)",
	},
	&cli.IntFlag{
		Name:  "addr",
		Usage: "chip i2c address",
		Value: touchscreen.Address,
	},
	&cli.IntFlag{
		Name:  "bus",
		Usage: "i2c bus number (gobot adapter)",
		Value: 0,
	},
	&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}},
}

var screenCmd = cli.Command{
	Name:    "screen",
	Aliases: []string{"ts"},
	Subcommands: []*cli.Command{
		&screenStatusCmd,
		&screenReadCmd,
		&screenWatchCmd,
	},
}

// openTransport resolves the adapter flag into a register bus for the chip.
// The returned cleanup releases whatever the transport holds open.
func openTransport(c *cli.Context) (touch.RegisterBus, func(), error) {
	addr := byte(c.Int("addr"))
	switch c.String("adapter") {
	case "i2c":
		bus, err := i2c.NewGenericBus(c.String("dev"))
		if err != nil {
			return nil, nil, err
		}
		return i2c.NewDevice(bus, addr), func() { _ = bus.Close() }, nil
	case "spi":
		bus, err := spi.Open(c.String("dev"))
		if err != nil {
			return nil, nil, err
		}
		return bus, func() { _ = bus.Close() }, nil
	case "gobot":
		npi := nanopi.NewNeoAdaptor()
		err := npi.I2cBusAdaptor.Connect()
		if err != nil {
			return nil, nil, err
		}
		bus := adapter.NewGobot(npi, c.Int("bus"))
		return i2c.NewDevice(bus, addr), func() {
			_ = bus.Release(context.Background())
			_ = npi.I2cBusAdaptor.Finalize()
		}, nil
	default:
		a := adapter.NewMCP2221()
		err := a.Init()
		if err != nil {
			return nil, nil, err
		}
		return i2c.NewDevice(a, addr), func() { _ = a.Close() }, nil
	}
}

var screenStatusCmd = cli.Command{
	Name:  "status",
	Flags: adapterFlags,
	Action: func(c *cli.Context) error {
		ctx := console.SetVerbose(context.Background(), c.Bool("verbose"))
		transport, cleanup, err := openTransport(c)
		if err != nil {
			return console.Exit(1, "adapter initialization error: %s", console.Red(err))
		}
		defer cleanup()

		screen, err := touchscreen.NewSTMPE610(ctx, transport)
		if err != nil {
			return console.Exit(1, "controller initialization error: %s", console.Red(err))
		}
		version, err := screen.GetVersion(ctx)
		if err != nil {
			return console.Exit(1, "error reading chip version: %s", console.Red(err))
		}
		touched, err := screen.Touched(ctx)
		if err != nil {
			return console.Exit(1, "error reading touch state: %s", console.Red(err))
		}
		size, err := screen.BufferSize(ctx)
		if err != nil {
			return console.Exit(1, "error reading buffer size: %s", console.Red(err))
		}
		console.Printf("%s chip version: %s\n", console.PictoScreen, console.White(version))
		if touched {
			console.Printf("%s touched, %s buffered samples\n", console.PictoTouch, console.White(size))
		} else {
			console.Printf("%s not touched, %s buffered samples\n", console.PictoGhost, console.White(size))
		}
		return nil
	},
}

var screenReadCmd = cli.Command{
	Name:    "read",
	Aliases: []string{"rd"},
	Flags:   adapterFlags,
	Action: func(c *cli.Context) error {
		ctx := console.SetVerbose(context.Background(), c.Bool("verbose"))
		transport, cleanup, err := openTransport(c)
		if err != nil {
			return console.Exit(1, "adapter initialization error: %s", console.Red(err))
		}
		defer cleanup()

		screen, err := touchscreen.NewSTMPE610(ctx, transport)
		if err != nil {
			return console.Exit(1, "controller initialization error: %s", console.Red(err))
		}
		empty, err := screen.BufferEmpty(ctx)
		if err != nil {
			return console.Exit(1, "error reading buffer state: %s", console.Red(err))
		}
		if empty {
			console.Printf("%s no touch data buffered\n", console.PictoGhost)
			return nil
		}
		for !empty {
			point, err := screen.ReadPoint(ctx)
			if err != nil {
				return console.Exit(1, "error reading touch point: %s", console.Red(err))
			}
			printPoint(point)
			empty, err = screen.BufferEmpty(ctx)
			if err != nil {
				return console.Exit(1, "error reading buffer state: %s", console.Red(err))
			}
		}
		return nil
	},
}

var screenWatchCmd = cli.Command{
	Name: "watch",
	Flags: append([]cli.Flag{
		&cli.DurationFlag{
			Name:  "interval",
			Usage: "poll interval",
			Value: 50 * time.Millisecond,
		},
	}, adapterFlags...),
	Action: func(c *cli.Context) error {
		ctx := console.SetVerbose(context.Background(), c.Bool("verbose"))
		ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		transport, cleanup, err := openTransport(c)
		if err != nil {
			return console.Exit(1, "adapter initialization error: %s", console.Red(err))
		}
		defer cleanup()

		screen, err := touchscreen.NewSTMPE610(ctx, transport)
		if err != nil {
			return console.Exit(1, "controller initialization error: %s", console.Red(err))
		}
		console.Infof("watching for touches, interrupt to stop")
		ticker := time.NewTicker(c.Duration("interval"))
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				console.Printf("%s done\n", console.PictoStop)
				return nil
			case <-ticker.C:
			}
			empty, err := screen.BufferEmpty(ctx)
			if err != nil {
				return console.Exit(1, "error reading buffer state: %s", console.Red(err))
			}
			for !empty {
				point, err := screen.ReadPoint(ctx)
				if err != nil {
					return console.Exit(1, "error reading touch point: %s", console.Red(err))
				}
				printPoint(point)
				empty, err = screen.BufferEmpty(ctx)
				if err != nil {
					return console.Exit(1, "error reading buffer state: %s", console.Red(err))
				}
			}
		}
	},
}

func printPoint(point touchscreen.TouchPoint) {
	console.Printf("%s x=%s y=%s pressure=%s\n", console.PictoPoint,
		console.White(point.X), console.White(point.Y), console.White(point.Pressure))
}
