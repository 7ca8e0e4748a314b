package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/mklimuk/colorsensor/color"
	"github.com/mklimuk/colorsensor/telemetry"
)

const (
	adapterMCP2221 = "mcp2221"
	adapterGeneric = "generic"
	adapterNanoPi  = "nanopi"
	adapterSim     = "sim"
)

// Profile holds the defaults a command starts from. Flags given on the command line
// take precedence over the profile file.
type Profile struct {
	Adapter         string               `yaml:"adapter"`
	Bus             string               `yaml:"bus"`
	BusNumber       int                  `yaml:"bus_number"`
	BusSpeedKHz     int                  `yaml:"bus_speed_khz"`
	DeviceIndex     int                  `yaml:"device_index"`
	Address         uint8                `yaml:"address"`
	Gain            string               `yaml:"gain"`
	IntegrationTime string               `yaml:"integration_time"`
	Simulated       color.Sample         `yaml:"simulated"`
	MQTT            telemetry.MQTTConfig `yaml:"mqtt"`
}

func defaultProfile() Profile {
	return Profile{
		Adapter:         adapterMCP2221,
		BusNumber:       -1,
		DeviceIndex:     -1,
		Address:         color.DefaultAddress,
		Gain:            color.Gain1x.String(),
		IntegrationTime: color.IntegrationTime2_4ms.String(),
		Simulated:       color.Sample{Clear: 900, Red: 200, Green: 300, Blue: 150},
		MQTT:            telemetry.MQTTConfig{ClientID: "colorsensor"},
	}
}

// loadProfile overlays the YAML file at path on the defaults. A missing file is only an
// error when the path was given explicitly.
func loadProfile(path string, explicit bool) (Profile, error) {
	p := defaultProfile()
	if path == "" {
		return p, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) && !explicit {
		return p, nil
	}
	if err != nil {
		return p, fmt.Errorf("could not read profile: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("could not parse profile %s: %w", path, err)
	}
	return p, nil
}

var sensorFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "adapter",
		Aliases: []string{"a"},
		Usage:   "bus adapter: mcp2221, generic, nanopi or sim",
	},
	&cli.StringFlag{
		Name:  "bus",
		Usage: "host bus name for the generic adapter, e.g. /dev/i2c-1",
	},
	&cli.IntFlag{
		Name:  "bus-number",
		Usage: "bus number for the nanopi adapter",
	},
	&cli.IntFlag{
		Name:  "bus-speed",
		Usage: "bus clock in kHz for the generic adapter",
	},
	&cli.IntFlag{
		Name:  "index",
		Usage: "MCP2221 device index when several bridges are attached",
	},
	&cli.UintFlag{
		Name:  "addr",
		Usage: "sensor address",
	},
	&cli.StringFlag{
		Name:    "gain",
		Aliases: []string{"g"},
		Usage:   "analog gain: 1x, 4x, 16x or 60x",
	},
	&cli.StringFlag{
		Name:    "integration",
		Aliases: []string{"i"},
		Usage:   "integration time: 2.4ms, 24ms, 50ms, 101ms, 154ms or 700ms",
	},
}

// profileFromContext loads the profile named by the global --config flag and applies
// the sensor flags set on the command.
func profileFromContext(c *cli.Context) (Profile, error) {
	p, err := loadProfile(c.String("config"), c.IsSet("config"))
	if err != nil {
		return p, err
	}
	if c.IsSet("adapter") {
		p.Adapter = c.String("adapter")
	}
	if c.IsSet("bus") {
		p.Bus = c.String("bus")
	}
	if c.IsSet("bus-number") {
		p.BusNumber = c.Int("bus-number")
	}
	if c.IsSet("bus-speed") {
		p.BusSpeedKHz = c.Int("bus-speed")
	}
	if c.IsSet("index") {
		p.DeviceIndex = c.Int("index")
	}
	if c.IsSet("addr") {
		if c.Uint("addr") > 0x7F {
			return p, fmt.Errorf("address %#x out of the 7-bit range", c.Uint("addr"))
		}
		p.Address = uint8(c.Uint("addr"))
	}
	if c.IsSet("gain") {
		p.Gain = c.String("gain")
	}
	if c.IsSet("integration") {
		p.IntegrationTime = c.String("integration")
	}
	return p, nil
}

// sensorOptions converts the profile into controller options.
func (p Profile) sensorOptions() ([]color.TCS34725Opt, error) {
	gain, err := color.ParseGain(p.Gain)
	if err != nil {
		return nil, err
	}
	it, err := color.ParseIntegrationTime(p.IntegrationTime)
	if err != nil {
		return nil, err
	}
	return []color.TCS34725Opt{
		color.WithAddress(p.Address),
		color.WithGain(gain),
		color.WithIntegrationTime(it),
	}, nil
}
