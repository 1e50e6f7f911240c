package memlcd

import (
	"context"
	"fmt"
	"time"

	periph "periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"

	"github.com/BeatGlow/memlcd/conn"
)

// Conn is the byte transport between a Dev and the panel.
type Conn interface {
	String() string

	// Close the connection.
	Close() error

	// Select drives the chip select line, true selects the panel (active high).
	Select(bool) error

	// WriteByte queues one byte for transmission.
	WriteByte(byte) error

	// Flush transmits the queued bytes and blocks until the bus is idle. It
	// returns ErrTimeout if ctx is done first.
	Flush(ctx context.Context) error
}

// SPIConfig describes the SPI bus configuration.
type SPIConfig struct {
	// Port is the periph.io SPI port name, leave empty to use the first
	// available port. Used by OpenSPI.
	Port string

	// Bus and Device select /dev/spidev<Bus>.<Device>. Used by OpenSPIDev.
	Bus    int
	Device int

	// Speed is the SPI clock.
	Speed physic.Frequency

	// CS is the GPIO name of the chip select pin. Sharp panels use an active
	// high chip select, so it can't be driven by the SPI controller.
	CS string

	// BatchSize is the maximum number of bytes per bus transfer.
	BatchSize uint
}

// DefaultSPIConfig are the default configuration values.
var DefaultSPIConfig = SPIConfig{
	Speed:     1 * physic.MegaHertz,
	CS:        "GPIO6",
	BatchSize: 4096,
}

// ValidSPISpeeds are the SPI clocks supported by memory LCD panels.
var ValidSPISpeeds = []physic.Frequency{
	250 * physic.KiloHertz,
	500 * physic.KiloHertz,
	1 * physic.MegaHertz,
	2 * physic.MegaHertz,
}

func (config *SPIConfig) withDefaults() *SPIConfig {
	c := DefaultSPIConfig
	if config != nil {
		c = *config
	}
	if c.Speed == 0 {
		c.Speed = DefaultSPIConfig.Speed
	}
	if c.CS == "" {
		c.CS = DefaultSPIConfig.CS
	}
	if c.BatchSize == 0 {
		c.BatchSize = DefaultSPIConfig.BatchSize
	}
	return &c
}

func checkSpeed(f physic.Frequency) error {
	for _, speed := range ValidSPISpeeds {
		if speed == f {
			return nil
		}
	}
	return fmt.Errorf("memlcd: invalid SPI speed %s", f)
}

func validPin(p gpio.PinOut) bool {
	return p != nil && p != gpio.INVALID
}

type spiConn struct {
	name      string
	write     func([]byte) error
	close     func() error
	cs        gpio.PinOut
	batchSize int
	buf       []byte

	// abandoned is closed once a transfer that outlived its Flush has
	// returned and chip select was released.
	abandoned chan struct{}
}

// NewSPI connects to the panel on an already opened SPI port, using cs as the
// chip select pin. The caller keeps ownership of port.
func NewSPI(port spi.Port, cs gpio.PinOut, config *SPIConfig) (Conn, error) {
	c, err := newSPI(port, cs, config.withDefaults())
	if err != nil {
		return nil, err
	}
	return c, nil
}

func newSPI(port spi.Port, cs gpio.PinOut, config *SPIConfig) (*spiConn, error) {
	if !validPin(cs) {
		return nil, ErrCSPin
	}
	if err := checkSpeed(config.Speed); err != nil {
		return nil, err
	}

	c, err := port.Connect(config.Speed, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("memlcd: connect %s: %w", port, err)
	}

	batchSize := int(config.BatchSize)
	if limits, ok := c.(periph.Limits); ok {
		if n := limits.MaxTxSize(); n > 0 && n < batchSize {
			batchSize = n
		}
	}

	if err = cs.Out(gpio.Low); err != nil {
		return nil, err
	}

	return &spiConn{
		name: c.String(),
		write: func(b []byte) error {
			return c.Tx(b, nil)
		},
		close:     func() error { return nil },
		cs:        cs,
		batchSize: batchSize,
	}, nil
}

// OpenSPI opens the SPI port and chip select pin named in config through the
// periph.io registries. host.Init must have been called.
func OpenSPI(config *SPIConfig) (Conn, error) {
	config = config.withDefaults()

	cs := gpioreg.ByName(config.CS)
	if cs == nil {
		return nil, fmt.Errorf("%w: %q not found", ErrCSPin, config.CS)
	}

	port, err := spireg.Open(config.Port)
	if err != nil {
		return nil, err
	}

	c, err := newSPI(port, cs, config)
	if err != nil {
		_ = port.Close()
		return nil, err
	}
	c.close = port.Close
	return c, nil
}

// OpenSPIDev opens /dev/spidev<Bus>.<Device> directly, bypassing periph.io
// for the bus. The chip select pin is still looked up by name. Each batch is
// sent as one spidev message, so BatchSize must not exceed the spidev bufsiz.
func OpenSPIDev(config *SPIConfig) (Conn, error) {
	config = config.withDefaults()

	cs := gpioreg.ByName(config.CS)
	if !validPin(cs) {
		return nil, fmt.Errorf("%w: %q not found", ErrCSPin, config.CS)
	}
	if err := checkSpeed(config.Speed); err != nil {
		return nil, err
	}

	dev, err := conn.OpenSPI(config.Bus, config.Device)
	if err != nil {
		return nil, err
	}
	if err = dev.Configure(conn.SPIMode0, 8, uint32(config.Speed/physic.Hertz)); err != nil {
		_ = dev.Close()
		return nil, err
	}
	if err = cs.Out(gpio.Low); err != nil {
		_ = dev.Close()
		return nil, err
	}

	return &spiConn{
		name:      dev.String(),
		write:     dev.Tx,
		close:     dev.Close,
		cs:        cs,
		batchSize: int(config.BatchSize),
	}, nil
}

func (c *spiConn) String() string {
	return fmt.Sprintf("%s cs=%s", c.name, c.cs)
}

// Close waits for an abandoned transfer before closing the bus.
func (c *spiConn) Close() error {
	if c.abandoned != nil {
		<-c.abandoned
		c.abandoned = nil
	}
	c.buf = nil
	if err := c.cs.Out(gpio.Low); err != nil {
		_ = c.close()
		return err
	}
	return c.close()
}

// busy reports whether a timed out transfer is still on the bus.
func (c *spiConn) busy() bool {
	if c.abandoned == nil {
		return false
	}
	select {
	case <-c.abandoned:
		c.abandoned = nil
		return false
	default:
		return true
	}
}

// Select drives chip select and drops any bytes queued since the last
// Flush. While a timed out transfer is still running, selecting fails with
// ErrBusy and deselecting is deferred until the transfer returns.
func (c *spiConn) Select(on bool) error {
	c.buf = c.buf[:0]
	if c.busy() {
		if on {
			return ErrBusy
		}
		return nil
	}
	return c.cs.Out(gpio.Level(on))
}

func (c *spiConn) WriteByte(b byte) error {
	c.buf = append(c.buf, b)
	return nil
}

func (c *spiConn) Flush(ctx context.Context) error {
	if c.busy() {
		return ErrBusy
	}
	if len(c.buf) == 0 {
		return nil
	}

	// The transfer goroutine owns data until it reports back.
	data := c.buf
	c.buf = nil

	done := make(chan error, 1)
	go func() {
		done <- c.writeChunked(data)
	}()

	select {
	case err := <-done:
		c.buf = data[:0]
		return err
	case <-ctx.Done():
		abandoned := make(chan struct{})
		c.abandoned = abandoned
		go func() {
			if err := <-done; err != nil {
				Logger().Warn("memlcd: abandoned transfer failed", "err", err)
			}
			if err := c.cs.Out(gpio.Low); err != nil {
				Logger().Warn("memlcd: release chip select", "err", err)
			}
			close(abandoned)
		}()
		return fmt.Errorf("%w: %w", ErrTimeout, ctx.Err())
	}
}

func (c *spiConn) writeChunked(data []byte) error {
	if len(data) <= c.batchSize {
		return c.write(data)
	}

	Logger().Debug("memlcd: chunked write",
		"bytes", len(data),
		"chunks", (len(data)+c.batchSize-1)/c.batchSize)
	for len(data) > 0 {
		n := min(len(data), c.batchSize)
		if err := c.write(data[:n]); err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}

// sleep waits at least d. Sub-millisecond waits spin since timers are too
// coarse for the chip select hold time.
func sleep(d time.Duration) {
	if d >= time.Millisecond {
		time.Sleep(d)
		return
	}
	for start := time.Now(); time.Since(start) < d; {
	}
}
