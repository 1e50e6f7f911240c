// Package conn provides a raw Linux spidev connection.
package conn

import (
	"fmt"
	"os"
	"runtime"
	"unsafe"

	"github.com/BeatGlow/memlcd/internal/ioctl"
)

const spiDevPath = "/dev/spidev"

// Definitions from <linux/spi/spidev.h>
const (
	spiCPHA = 0x01
	spiCPOL = 0x02

	spiMagic          = 'k'
	spiIOCMessage     = 0
	spiIOCMode        = 1
	spiIOCBitsPerWord = 3
	spiIOCMaxSpeedHz  = 4
)

// SPIMode is the clock polarity and phase.
type SPIMode uint8

// Modes
const (
	SPIMode0 SPIMode = 0
	SPIMode1 SPIMode = spiCPHA
	SPIMode2 SPIMode = spiCPOL
	SPIMode3 SPIMode = spiCPOL | spiCPHA
)

// transfer is struct spi_ioc_transfer.
type transfer struct {
	txBuf          uint64
	rxBuf          uint64
	length         uint32
	speedHz        uint32
	delayUsecs     uint16
	bitsPerWord    uint8
	csChange       uint8
	txNbits        uint8
	rxNbits        uint8
	wordDelayUsecs uint8
	_              uint8
}

// message is the SPI_IOC_MESSAGE(1) request.
var message = ioctl.IOW(spiMagic, spiIOCMessage, unsafe.Sizeof(transfer{}))

// SPI is an open spidev device.
type SPI struct {
	f           *os.File
	path        string
	mode        SPIMode
	bitsPerWord uint8
	speedHz     uint32
}

// OpenSPI opens /dev/spidev<bus>.<device>.
func OpenSPI(bus, device int) (*SPI, error) {
	path := fmt.Sprintf("%s%d.%d", spiDevPath, bus, device)
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	return &SPI{f: f, path: path}, nil
}

func (c *SPI) Close() error {
	return c.f.Close()
}

func (c *SPI) String() string {
	return fmt.Sprintf("%s mode=%d bits=%d speed=%dHz", c.path, c.mode, c.bitsPerWord, c.speedHz)
}

func (c *SPI) get(nr byte, v unsafe.Pointer, size uintptr) error {
	return ioctl.Do(c.f.Fd(), ioctl.IOR(spiMagic, nr, size), v)
}

func (c *SPI) set(nr byte, v unsafe.Pointer, size uintptr) error {
	return ioctl.Do(c.f.Fd(), ioctl.IOW(spiMagic, nr, size), v)
}

// Configure sets the clock mode, word size and clock speed of the device and
// reads them back. The driver may round the speed down.
func (c *SPI) Configure(mode SPIMode, bitsPerWord uint8, speedHz uint32) error {
	if mode > SPIMode3 {
		return fmt.Errorf("conn: invalid SPI mode %d", mode)
	}
	if bitsPerWord < 8 || bitsPerWord > 32 {
		return fmt.Errorf("conn: SPI bits per word need to be 8 or more and 32 or less, got %d", bitsPerWord)
	}
	if speedHz == 0 {
		return fmt.Errorf("conn: SPI speed must be positive")
	}

	if err := c.set(spiIOCMode, unsafe.Pointer(&mode), 1); err != nil {
		return err
	}
	if err := c.set(spiIOCBitsPerWord, unsafe.Pointer(&bitsPerWord), 1); err != nil {
		return err
	}
	if err := c.set(spiIOCMaxSpeedHz, unsafe.Pointer(&speedHz), 4); err != nil {
		return err
	}

	if err := c.get(spiIOCMode, unsafe.Pointer(&c.mode), 1); err != nil {
		return err
	}
	if c.mode&(spiCPOL|spiCPHA) != mode {
		return fmt.Errorf("conn: SPI attempted to set mode %d, but mode %d is in use", mode, c.mode&(spiCPOL|spiCPHA))
	}
	if err := c.get(spiIOCBitsPerWord, unsafe.Pointer(&c.bitsPerWord), 1); err != nil {
		return err
	}
	return c.get(spiIOCMaxSpeedHz, unsafe.Pointer(&c.speedHz), 4)
}

// Tx sends b as one SPI message. The kernel rejects messages larger than the
// spidev bufsiz module parameter (4096 bytes by default).
func (c *SPI) Tx(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	t := transfer{
		txBuf:       uint64(uintptr(unsafe.Pointer(&b[0]))),
		length:      uint32(len(b)),
		speedHz:     c.speedHz,
		bitsPerWord: c.bitsPerWord,
	}
	err := ioctl.Do(c.f.Fd(), message, unsafe.Pointer(&t))
	runtime.KeepAlive(b)
	if err != nil {
		return fmt.Errorf("conn: %s: %w", c.path, err)
	}
	return nil
}
