package memlcd

import (
	"context"
	"errors"
	"time"
)

// VCOMHook returns a function for an external scheduler that calls
// ToggleVCOM. Errors are logged, the hook must be called about once per
// second while the panel is powered.
func (d *Dev) VCOMHook() func() {
	return func() {
		if err := d.ToggleVCOM(context.Background()); err != nil {
			Logger().Warn("memlcd: VCOM toggle failed", "err", err)
		}
	}
}

// Maintain toggles VCOM every Config.VCOMInterval until ctx is done or the
// display is closed. Failed toggles are logged.
func (d *Dev) Maintain(ctx context.Context) error {
	d.mu.Lock()
	halted := d.halted
	d.mu.Unlock()
	if halted {
		return ErrHalted
	}

	t := time.NewTicker(d.config.VCOMInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			err := d.ToggleVCOM(ctx)
			if errors.Is(err, ErrHalted) {
				return err
			}
			if err != nil {
				Logger().Warn("memlcd: VCOM toggle failed", "err", err)
			}
		}
	}
}
