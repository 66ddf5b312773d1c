// Package panel opens a physical display through the periph.io registries.
package panel

import (
	"errors"
	"fmt"
	"io"

	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/host/v3"
)

// Drivers
const (
	DriverSSD1306 = "ssd1306"
)

// Buses
const (
	BusI2C = "i2c"
	BusSPI = "spi"
)

// Config selects the panel driver and how it is wired.
type Config struct {
	Driver  string `mapstructure:"driver"`
	Bus     string `mapstructure:"bus"`    // i2c or spi
	Port    string `mapstructure:"port"`   // registry name, empty picks the first
	DCPin   string `mapstructure:"dc_pin"` // spi data/command pin, empty for 3-wire
	Width   int    `mapstructure:"width"`
	Height  int    `mapstructure:"height"`
	Rotated bool   `mapstructure:"rotated"`
}

// DefaultConfig is a 128x64 ssd1306 on the first I2C bus.
func DefaultConfig() Config {
	return Config{
		Driver: DriverSSD1306,
		Bus:    BusI2C,
		Width:  128,
		Height: 64,
	}
}

// Validate checks the settings without touching hardware.
func (c Config) Validate() error {
	var errs []error
	if c.Driver != DriverSSD1306 {
		errs = append(errs, fmt.Errorf("unknown display.panel.driver %q", c.Driver))
	}
	switch c.Bus {
	case BusI2C:
		if c.DCPin != "" {
			errs = append(errs, fmt.Errorf("display.panel.dc_pin is only used on spi"))
		}
	case BusSPI:
	default:
		errs = append(errs, fmt.Errorf("unknown display.panel.bus %q", c.Bus))
	}
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("display.panel size must be positive"))
	}
	return errors.Join(errs...)
}

// Device is an open panel. Close halts the controller and releases the bus.
type Device struct {
	display.Drawer
	bus io.Closer
}

// Close blanks the panel and closes its bus.
func (d *Device) Close() error {
	return errors.Join(d.Halt(), d.bus.Close())
}

// Open initialises the host drivers and connects to the panel described by cfg.
func Open(cfg Config) (*Device, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init host: %w", err)
	}
	opts := ssd1306.Opts{W: cfg.Width, H: cfg.Height, Rotated: cfg.Rotated}

	switch cfg.Bus {
	case BusSPI:
		port, err := spireg.Open(cfg.Port)
		if err != nil {
			return nil, fmt.Errorf("open spi port %q: %w", cfg.Port, err)
		}
		var dev *ssd1306.Dev
		if cfg.DCPin == "" {
			dev, err = ssd1306.NewSPI(port, nil, &opts)
		} else {
			dc := gpioreg.ByName(cfg.DCPin)
			if dc == nil {
				port.Close()
				return nil, fmt.Errorf("unknown gpio pin %q", cfg.DCPin)
			}
			dev, err = ssd1306.NewSPI(port, dc, &opts)
		}
		if err != nil {
			port.Close()
			return nil, fmt.Errorf("connect %s over spi: %w", cfg.Driver, err)
		}
		return &Device{Drawer: dev, bus: port}, nil

	default:
		bus, err := i2creg.Open(cfg.Port)
		if err != nil {
			return nil, fmt.Errorf("open i2c bus %q: %w", cfg.Port, err)
		}
		dev, err := ssd1306.NewI2C(bus, &opts)
		if err != nil {
			bus.Close()
			return nil, fmt.Errorf("connect %s over i2c: %w", cfg.Driver, err)
		}
		return &Device{Drawer: dev, bus: bus}, nil
	}
}
