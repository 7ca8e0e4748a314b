package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v2"
	"gobot.io/x/gobot/v2/platforms/friendlyelec/nanopi"
	"periph.io/x/conn/v3/physic"

	"github.com/mklimuk/colorsensor"
	"github.com/mklimuk/colorsensor/adapter"
	"github.com/mklimuk/colorsensor/cmd/colorsensor/console"
	"github.com/mklimuk/colorsensor/color"
	"github.com/mklimuk/colorsensor/i2c"
	"github.com/mklimuk/colorsensor/snsctx"
)

type closeFunc func()

func noClose() {}

// openBus returns the transport selected by the profile and a function releasing it.
func openBus(p Profile) (colorsensor.I2CBus, closeFunc, error) {
	switch p.Adapter {
	case adapterMCP2221:
		a := adapter.NewMCP2221(adapter.WithDeviceIndex(p.DeviceIndex))
		if err := a.Init(); err != nil {
			return nil, nil, fmt.Errorf("adapter initialization error: %w", err)
		}
		return a, noClose, nil
	case adapterGeneric:
		bus, err := i2c.NewGenericBus(p.Bus)
		if err != nil {
			return nil, nil, err
		}
		if p.BusSpeedKHz > 0 {
			if err := bus.SetSpeed(physic.Frequency(p.BusSpeedKHz) * physic.KiloHertz); err != nil {
				_ = bus.Close()
				return nil, nil, err
			}
		}
		return bus, func() {
			if err := bus.Close(); err != nil {
				slog.Warn("could not close bus", "error", err)
			}
		}, nil
	case adapterNanoPi:
		npi := nanopi.NewNeoAdaptor()
		if err := npi.I2cBusAdaptor.Connect(); err != nil {
			return nil, nil, fmt.Errorf("could not connect i2c adaptor: %w", err)
		}
		bus := i2c.NewGobotBus(npi, p.BusNumber)
		return bus, func() {
			if err := bus.Close(); err != nil {
				slog.Warn("could not close bus", "error", err)
			}
			if err := npi.I2cBusAdaptor.Finalize(); err != nil {
				slog.Warn("could not finalize i2c adaptor", "error", err)
			}
		}, nil
	case adapterSim:
		sample := p.Simulated
		return color.NewSimulator(func(ctx context.Context) (color.Sample, error) {
			return sample, nil
		}), noClose, nil
	}
	return nil, nil, fmt.Errorf("unknown adapter %q", p.Adapter)
}

// sensorSession is an opened controller together with the context its calls run in.
type sensorSession struct {
	ctx     context.Context
	sensor  *color.TCS34725
	profile Profile
	close   closeFunc
}

func (s *sensorSession) device() string {
	return fmt.Sprintf("tcs34725@%s/%#02x", s.profile.Adapter, s.profile.Address)
}

func openSensor(c *cli.Context) (*sensorSession, error) {
	p, err := profileFromContext(c)
	if err != nil {
		return nil, console.Exit(1, "configuration error: %s", console.Red(err))
	}
	opts, err := p.sensorOptions()
	if err != nil {
		return nil, console.Exit(1, "configuration error: %s", console.Red(err))
	}
	bus, closer, err := openBus(p)
	if err != nil {
		return nil, console.Exit(1, "%s", console.Red(err))
	}
	s := &sensorSession{
		sensor:  color.NewTCS34725(bus, opts...),
		profile: p,
		close:   closer,
	}
	ctx := snsctx.SetVerbose(c.Context, c.Bool("verbose"))
	s.ctx = snsctx.WithDevice(ctx, s.device())
	return s, nil
}

// sensorError turns a controller error into the command exit status.
func sensorError(s *sensorSession, err error) error {
	switch {
	case errors.Is(err, color.ErrNotPresent):
		return console.Exit(2, "%s no TCS34725 answering at %#02x", console.PictoStop, s.profile.Address)
	case errors.Is(err, color.ErrInvalidSetting):
		return console.Exit(1, "%s", console.Red(err))
	}
	return console.Exit(1, "sensor communication error: %s", console.Red(err))
}
