package main

import (
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/mklimuk/colorsensor/cmd/colorsensor/console"
	"github.com/mklimuk/colorsensor/color"
	"github.com/mklimuk/colorsensor/telemetry"
)

var colorCmd = cli.Command{
	Name:  "color",
	Usage: "TCS34725 colour sensor",
	Subcommands: cli.Commands{
		&colorReadCmd,
		&colorTempCmd,
		&colorLuxCmd,
		&colorWatchCmd,
		&colorStatusCmd,
		&colorInterruptCmd,
		&colorOffCmd,
	},
}

// withSensor opens the sensor for the duration of action.
func withSensor(action func(c *cli.Context, s *sensorSession) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		s, err := openSensor(c)
		if err != nil {
			return err
		}
		defer s.close()
		return action(c, s)
	}
}

func flags(extra ...cli.Flag) []cli.Flag {
	return append(append([]cli.Flag{}, sensorFlags...), extra...)
}

var colorReadCmd = cli.Command{
	Name:    "read",
	Aliases: []string{"rd"},
	Usage:   "take one sample of all channels",
	Flags: flags(
		&cli.StringFlag{Name: "channel", Aliases: []string{"c"}, Usage: "read a single channel: clear, red, green or blue"},
		&cli.BoolFlag{Name: "yaml", Usage: "print the sample as YAML"},
	),
	Action: withSensor(func(c *cli.Context, s *sensorSession) error {
		if c.IsSet("channel") {
			ch, err := color.ParseChannel(c.String("channel"))
			if err != nil {
				return console.Exit(1, "%s", console.Red(err))
			}
			val, err := s.sensor.ReadChannel(s.ctx, ch)
			if err != nil {
				return sensorError(s, err)
			}
			console.Printf("%s %s\n", console.Channel(ch.String()), console.White(val))
			return nil
		}
		sample, err := s.sensor.Sample(s.ctx)
		if err != nil {
			return sensorError(s, err)
		}
		if c.Bool("yaml") {
			return encodeYAML(sample)
		}
		printSample(sample)
		return nil
	}),
}

var colorTempCmd = cli.Command{
	Name:    "temperature",
	Aliases: []string{"temp", "cct"},
	Usage:   "read the correlated colour temperature",
	Flags:   flags(),
	Action: withSensor(func(c *cli.Context, s *sensorSession) error {
		cct, err := s.sensor.ReadColorTemperature(s.ctx)
		if err != nil {
			return sensorError(s, err)
		}
		console.PInfof(console.PictoThermometer, "%s K", console.White(cct))
		return nil
	}),
}

var colorLuxCmd = cli.Command{
	Name:  "lux",
	Usage: "read the illuminance",
	Flags: flags(),
	Action: withSensor(func(c *cli.Context, s *sensorSession) error {
		lux, err := s.sensor.ReadLux(s.ctx)
		if err != nil {
			return sensorError(s, err)
		}
		console.PInfof(console.PictoSun, "%s lux", console.White(lux))
		return nil
	}),
}

var colorWatchCmd = cli.Command{
	Name:  "watch",
	Usage: "sample periodically, optionally publishing readings over MQTT",
	Flags: flags(
		&cli.DurationFlag{Name: "interval", Value: time.Second, Usage: "pause between samples"},
		&cli.IntFlag{Name: "count", Aliases: []string{"n"}, Usage: "stop after this many samples; 0 runs until interrupted"},
		&cli.StringFlag{Name: "broker", Usage: "MQTT broker url, e.g. tcp://localhost:1883"},
		&cli.StringFlag{Name: "topic", Usage: "MQTT topic"},
	),
	Action: withSensor(func(c *cli.Context, s *sensorSession) error {
		ctx, stop := signal.NotifyContext(s.ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		mqttCfg := s.profile.MQTT
		if c.IsSet("broker") {
			mqttCfg.Broker = c.String("broker")
		}
		if c.IsSet("topic") {
			mqttCfg.Topic = c.String("topic")
		}
		var pub *telemetry.Publisher
		if mqttCfg.Broker != "" {
			var err error
			pub, err = telemetry.Connect(mqttCfg)
			if err != nil {
				return console.Exit(1, "%s", console.Red(err))
			}
			defer pub.Close()
		}

		ticker := time.NewTicker(c.Duration("interval"))
		defer ticker.Stop()
		for n := 0; c.Int("count") == 0 || n < c.Int("count"); n++ {
			if n > 0 {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
				}
			}
			sample, err := s.sensor.Sample(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return sensorError(s, err)
			}
			reading := telemetry.NewReading(s.device(), sample, s.sensor.Gain(), s.sensor.IntegrationTime())
			console.Printf("%s  %s  %s K  %s lux\n", reading.Time.Local().Format(time.TimeOnly),
				formatSample(sample), console.White(reading.ColorTemperature), console.White(reading.Lux))
			if pub != nil {
				if err := pub.Publish(ctx, reading); err != nil {
					slog.WarnContext(ctx, "could not publish reading", "error", err)
				}
			}
		}
		return nil
	}),
}

type statusReport struct {
	Device          string `yaml:"device"`
	Present         bool   `yaml:"present"`
	Valid           bool   `yaml:"valid"`
	Interrupt       bool   `yaml:"interrupt"`
	Gain            string `yaml:"gain"`
	IntegrationTime string `yaml:"integration_time"`
}

var colorStatusCmd = cli.Command{
	Name:  "status",
	Usage: "print the sensor status register and settings",
	Flags: flags(),
	Action: withSensor(func(c *cli.Context, s *sensorSession) error {
		report := statusReport{
			Device:          s.device(),
			Gain:            s.sensor.Gain().String(),
			IntegrationTime: s.sensor.IntegrationTime().String(),
		}
		present, err := s.sensor.Begin(s.ctx)
		if err != nil {
			return sensorError(s, err)
		}
		report.Present = present
		if present {
			status, err := s.sensor.Status(s.ctx)
			if err != nil {
				return sensorError(s, err)
			}
			report.Valid = status.Valid()
			report.Interrupt = status.Interrupt()
		}
		return encodeYAML(report)
	}),
}

var colorInterruptCmd = cli.Command{
	Name:    "interrupt",
	Aliases: []string{"int"},
	Usage:   "configure the clear channel interrupt",
	Subcommands: cli.Commands{
		{
			Name:  "enable",
			Usage: "latch interrupts on the INT pin",
			Flags: flags(),
			Action: withSensor(func(c *cli.Context, s *sensorSession) error {
				if err := s.sensor.EnableInterruptLatch(s.ctx); err != nil {
					return sensorError(s, err)
				}
				console.PInfof(console.PictoBell, "interrupt %s", console.Green("enabled"))
				return nil
			}),
		},
		{
			Name:  "disable",
			Flags: flags(),
			Action: withSensor(func(c *cli.Context, s *sensorSession) error {
				if err := s.sensor.DisableInterruptLatch(s.ctx); err != nil {
					return sensorError(s, err)
				}
				console.PInfof(console.PictoBell, "interrupt %s", console.Yellow("disabled"))
				return nil
			}),
		},
		{
			Name:  "clear",
			Usage: "clear a latched interrupt",
			Flags: flags(),
			Action: withSensor(func(c *cli.Context, s *sensorSession) error {
				if err := s.sensor.ClearInterrupt(s.ctx); err != nil {
					return sensorError(s, err)
				}
				console.PInfof(console.PictoBell, "interrupt cleared")
				return nil
			}),
		},
		{
			Name:  "limits",
			Usage: "set the clear channel window outside which the interrupt fires",
			Flags: flags(
				&cli.UintFlag{Name: "low", Required: true},
				&cli.UintFlag{Name: "high", Required: true},
				&cli.IntFlag{Name: "persistence", Aliases: []string{"p"}, Value: -1, Usage: "consecutive out-of-range cycles"},
			),
			Action: withSensor(func(c *cli.Context, s *sensorSession) error {
				low, high := c.Uint("low"), c.Uint("high")
				if low > 0xFFFF || high > 0xFFFF {
					return console.Exit(1, "%s", console.Red("thresholds must fit in 16 bits"))
				}
				if err := s.sensor.SetInterruptThresholds(s.ctx, uint16(low), uint16(high)); err != nil {
					return sensorError(s, err)
				}
				if c.Int("persistence") >= 0 {
					p, err := color.PersistenceFor(c.Int("persistence"))
					if err != nil {
						return console.Exit(1, "%s", console.Red(err))
					}
					if err := s.sensor.SetPersistence(s.ctx, p); err != nil {
						return sensorError(s, err)
					}
				}
				console.PInfof(console.PictoBell, "interrupt window %s..%s", console.White(low), console.White(high))
				return nil
			}),
		},
	},
}

var colorOffCmd = cli.Command{
	Name:  "off",
	Usage: "power the sensor down",
	Flags: flags(&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "do not ask for confirmation"}),
	Action: withSensor(func(c *cli.Context, s *sensorSession) error {
		if !c.Bool("yes") {
			ok, err := console.Confirm(fmt.Sprintf("power off %s?", s.device()))
			if err != nil {
				return console.Exit(1, "prompt error: %s", console.Red(err))
			}
			if !ok {
				return nil
			}
		}
		// Disable is a no-op until the controller has initialized the chip
		present, err := s.sensor.Begin(s.ctx)
		if err != nil {
			return sensorError(s, err)
		}
		if !present {
			return sensorError(s, color.ErrNotPresent)
		}
		if err := s.sensor.Disable(s.ctx); err != nil {
			return sensorError(s, err)
		}
		console.PInfof(console.PictoBulb, "sensor %s", console.Yellow("off"))
		return nil
	}),
}

func formatSample(s color.Sample) string {
	return fmt.Sprintf("%s %s  %s %s  %s %s  %s %s",
		console.Channel("clear"), console.White(s.Clear),
		console.Channel("red"), console.White(s.Red),
		console.Channel("green"), console.White(s.Green),
		console.Channel("blue"), console.White(s.Blue))
}

func printSample(s color.Sample) {
	console.Printf("%s\n", formatSample(s))
}

func encodeYAML(v any) error {
	enc := yaml.NewEncoder(console.Writer())
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return console.Exit(1, "encoding error: %s", console.Red(err))
	}
	return enc.Close()
}
