// Package memlcd drives Sharp memory LCD panels over SPI.
//
// A Dev owns a 1 bit per pixel frame buffer (see package pixel) and sends it
// to the panel with Refresh. The panel needs its VCOM polarity inverted about
// once per second for as long as it is powered, run Maintain or call the hook
// returned by VCOMHook from a scheduler.
package memlcd

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"

	"github.com/BeatGlow/memlcd/pixel"
)

var debug = os.Getenv("MEMLCD_DEBUG") != ""

// Errors
var (
	ErrTimeout  = errors.New("memlcd: bus transfer timed out")
	ErrBusy     = errors.New("memlcd: a timed out transfer is still in progress")
	ErrHalted   = errors.New("memlcd: display is closed")
	ErrRotation = errors.New("memlcd: unsupported rotation")
	ErrSize     = errors.New("memlcd: width must be a positive multiple of 8 and height between 1 and 255")
	ErrCSPin    = errors.New("memlcd: chip select (SCS) GPIO pin is invalid")
)

// Rotation defines pixel rotation.
type Rotation uint8

// Supported rotations.
const (
	NoRotation Rotation = iota
	Rotate90            // Rotate 90° clock wise
	Rotate180           // Rotate 180°
	Rotate270           // Rotate 270° clock wise
)

func (r Rotation) String() string {
	switch r % 4 {
	case Rotate90:
		return "90°"
	case Rotate180:
		return "180°"
	case Rotate270:
		return "270°"
	default:
		return "0°"
	}
}

// Config is the display configuration.
type Config struct {
	// Width of the display in pixels, must be a multiple of 8.
	Width int

	// Height of the display in pixels.
	Height int

	// Rotation of the display. Only NoRotation and Rotate180 are supported.
	Rotation Rotation

	// Disp is the optional DISP (display on) pin.
	Disp gpio.PinOut

	// Power is the optional panel supply pin.
	Power gpio.PinOut

	// ExtComIn is the optional EXTCOMIN pin. If set, VCOM is inverted by
	// driving this pin instead of sending a serial command.
	ExtComIn gpio.PinOut

	// DeselectDelay is the minimum chip select hold time after a transfer.
	DeselectDelay time.Duration

	// Timeout bounds every bus transfer.
	Timeout time.Duration

	// VCOMInterval is the period used by Maintain.
	VCOMInterval time.Duration
}

// DefaultConfig is the configuration for a 96x96 panel.
var DefaultConfig = Config{
	Width:         96,
	Height:        96,
	DeselectDelay: 2 * time.Microsecond,
	Timeout:       100 * time.Millisecond,
	VCOMInterval:  time.Second,
}

// State is the VCOM state of a Dev.
type State struct {
	// VCOM is the current polarity, true sends the VCOM bit.
	VCOM bool

	// SkipNextToggle is set after a transfer that already carried the current
	// polarity, so the next ToggleVCOM only flips the bit.
	SkipNextToggle bool
}

// Dev is a memory LCD.
type Dev struct {
	*pixel.MonoImage

	mu     sync.Mutex
	c      Conn
	config Config
	state  State
	halted bool
	queued int
}

// New returns a display using c. A nil config uses DefaultConfig; zero
// fields fall back to their defaults. The panel is powered and switched on
// if the respective pins are configured.
func New(c Conn, config *Config) (*Dev, error) {
	if config == nil {
		config = new(Config)
		*config = DefaultConfig
	}

	d := &Dev{
		c:      c,
		config: *config,
		state:  State{VCOM: true},
	}
	if d.config.Width == 0 {
		d.config.Width = DefaultConfig.Width
	}
	if d.config.Height == 0 {
		d.config.Height = DefaultConfig.Height
	}
	if d.config.DeselectDelay == 0 {
		d.config.DeselectDelay = DefaultConfig.DeselectDelay
	}
	if d.config.Timeout == 0 {
		d.config.Timeout = DefaultConfig.Timeout
	}
	if d.config.VCOMInterval == 0 {
		d.config.VCOMInterval = DefaultConfig.VCOMInterval
	}

	// Line addresses are a single byte, 1-based.
	if d.config.Width < 0 || d.config.Width&7 != 0 || d.config.Height < 0 || d.config.Height > 255 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrSize, d.config.Width, d.config.Height)
	}
	switch d.config.Rotation {
	case NoRotation, Rotate180:
	default:
		return nil, fmt.Errorf("%w: %s", ErrRotation, d.config.Rotation)
	}

	if err := d.out(d.config.ExtComIn, gpio.Level(d.state.VCOM)); err != nil {
		return nil, err
	}
	if err := d.out(d.config.Power, gpio.High); err != nil {
		return nil, err
	}
	if err := d.out(d.config.Disp, gpio.High); err != nil {
		return nil, err
	}

	d.MonoImage = pixel.NewMonoImage(d.config.Width, d.config.Height)
	return d, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("Sharp memory LCD %dx%d (%s) on %s", d.config.Width, d.config.Height, d.config.Rotation, d.c)
}

// State returns the current VCOM state.
func (d *Dev) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Show toggles the display on or off using the DISP pin. Panel memory is
// retained while the display is off.
func (d *Dev) Show(show bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return ErrHalted
	}
	return d.out(d.config.Disp, gpio.Level(show))
}

// SetPower switches the panel supply and the display together.
func (d *Dev) SetPower(on bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return ErrHalted
	}
	if on {
		if err := d.out(d.config.Power, gpio.High); err != nil {
			return err
		}
		return d.out(d.config.Disp, gpio.High)
	}
	if err := d.out(d.config.Disp, gpio.Low); err != nil {
		return err
	}
	return d.out(d.config.Power, gpio.Low)
}

// Close switches the display off and closes the connection. All further
// operations return ErrHalted.
func (d *Dev) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return ErrHalted
	}
	d.halted = true
	return errors.Join(
		d.out(d.config.Disp, gpio.Low),
		d.out(d.config.Power, gpio.Low),
		d.out(d.config.ExtComIn, gpio.Low),
		d.c.Close(),
	)
}

func (d *Dev) out(p gpio.PinOut, l gpio.Level) error {
	if !validPin(p) {
		return nil
	}
	if err := p.Out(l); err != nil {
		return fmt.Errorf("memlcd: %s: %w", p, err)
	}
	return nil
}
