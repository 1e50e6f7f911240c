package memlcd

import (
	"context"
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// Serial protocol.
const (
	cmdWriteLine   = 0x80
	cmdClearScreen = 0x20
	cmdChangeVCOM  = 0x00
	vcomBit        = 0x40
	trailer        = 0x00
)

var nibbleReverse = [16]byte{
	0x0, 0x8, 0x4, 0xc, 0x2, 0xa, 0x6, 0xe,
	0x1, 0x9, 0x5, 0xd, 0x3, 0xb, 0x7, 0xf,
}

// reverse the bit order of b.
func reverse(b byte) byte {
	return nibbleReverse[b&0x0f]<<4 | nibbleReverse[b>>4]
}

func (d *Dev) command(opcode byte) byte {
	if d.state.VCOM {
		return opcode ^ vcomBit
	}
	return opcode
}

func opName(opcode byte) string {
	switch opcode {
	case cmdWriteLine:
		return "write"
	case cmdClearScreen:
		return "clear"
	default:
		return "vcom"
	}
}

// transfer runs one chip select framed bus transaction. The caller holds mu.
func (d *Dev) transfer(ctx context.Context, opcode byte, body func() error) (err error) {
	if d.halted {
		return ErrHalted
	}

	ctx, cancel := context.WithTimeout(ctx, d.config.Timeout)
	defer cancel()

	start := time.Now()
	d.queued = 0
	if err = d.c.Select(true); err != nil {
		return
	}
	defer func() {
		if cerr := d.c.Select(false); err == nil {
			err = cerr
		}
	}()

	if err = d.writeByte(d.command(opcode)); err != nil {
		return
	}
	if body != nil {
		if err = body(); err != nil {
			return
		}
	}
	if err = d.writeByte(trailer); err != nil {
		return
	}
	if err = d.c.Flush(ctx); err != nil {
		return fmt.Errorf("memlcd: %s: %w", opName(opcode), err)
	}
	sleep(d.config.DeselectDelay)

	Logger().Debug("memlcd: transfer",
		"op", opName(opcode),
		"vcom", d.state.VCOM,
		"bytes", d.queued,
		"took", time.Since(start))
	return
}

func (d *Dev) writeByte(b byte) error {
	d.queued++
	return d.c.WriteByte(b)
}

// Refresh sends the frame buffer to the panel.
func (d *Dev) Refresh(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.transfer(ctx, cmdWriteLine, d.writeLines); err != nil {
		return err
	}
	d.state.SkipNextToggle = true
	return nil
}

func (d *Dev) writeLines() error {
	var (
		height = d.config.Height
		stride = d.Stride
	)
	for line := 1; line <= height; line++ {
		if err := d.writeByte(reverse(byte(line))); err != nil {
			return err
		}

		switch d.config.Rotation {
		case Rotate180:
			row := d.Row(height - line)
			for i := stride - 1; i >= 0; i-- {
				if err := d.writeByte(reverse(row[i])); err != nil {
					return err
				}
			}
		default:
			for _, b := range d.Row(line - 1) {
				if err := d.writeByte(b); err != nil {
					return err
				}
			}
		}

		if err := d.writeByte(trailer); err != nil {
			return err
		}
	}
	return nil
}

// ClearScreen sets every pixel of the panel to white. The frame buffer is not
// modified.
func (d *Dev) ClearScreen(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.transfer(ctx, cmdClearScreen, nil); err != nil {
		return err
	}
	d.state.SkipNextToggle = true
	return nil
}

// ToggleVCOM inverts the VCOM polarity. The change is sent to the panel
// unless the last Refresh or ClearScreen already carried the polarity.
func (d *Dev) ToggleVCOM(ctx context.Context) (err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.halted {
		return ErrHalted
	}

	d.state.VCOM = !d.state.VCOM
	skip := d.state.SkipNextToggle
	d.state.SkipNextToggle = false

	if validPin(d.config.ExtComIn) {
		return d.out(d.config.ExtComIn, gpio.Level(d.state.VCOM))
	}
	if skip {
		return nil
	}
	return d.transfer(ctx, cmdChangeVCOM, nil)
}
