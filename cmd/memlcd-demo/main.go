package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"github.com/BeatGlow/memlcd"
	"github.com/BeatGlow/memlcd/draw"
	"github.com/BeatGlow/memlcd/font"
	"github.com/BeatGlow/memlcd/pixel"
	"github.com/BeatGlow/memlcd/text"
)

func main() {
	widthFlag := flag.Int("width", memlcd.DefaultConfig.Width, "Display width")
	heightFlag := flag.Int("height", memlcd.DefaultConfig.Height, "Display height")
	portFlag := flag.String("port", "", "periph.io SPI port name (default: first available)")
	spidevFlag := flag.Bool("spidev", false, "Use /dev/spidev directly instead of periph.io")
	spiBusFlag := flag.Int("spi-bus", 0, "SPI bus (with -spidev)")
	spiDeviceFlag := flag.Int("spi-dev", 0, "SPI device (with -spidev)")
	speedFlag := flag.Int64("speed", int64(memlcd.DefaultSPIConfig.Speed/physic.KiloHertz), "SPI speed in kHz")
	csPinFlag := flag.String("cs", memlcd.DefaultSPIConfig.CS, "Chip select GPIO pin (SCS)")
	dispPinFlag := flag.String("disp", "GPIO13", "Display on GPIO pin (DISP), empty to disable")
	extComInPinFlag := flag.String("extcomin", "", "EXTCOMIN GPIO pin, empty to toggle VCOM over SPI")
	rotateFlag := flag.String("rotate", "", "Display rotation")
	fontFlag := flag.String("font", "", "TrueType font file (default: Go Mono)")
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debugFlag {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	memlcd.SetLogger(logger)

	var rotation memlcd.Rotation
	switch *rotateFlag {
	case "", "no", "0":
		rotation = memlcd.NoRotation
	case "180", "flip":
		rotation = memlcd.Rotate180
	default:
		fatal(fmt.Errorf("invalid rotation %q specified", *rotateFlag))
	}

	if _, err := host.Init(); err != nil {
		fatal(err)
	}

	var (
		spiConfig = &memlcd.SPIConfig{
			Port:   *portFlag,
			Bus:    *spiBusFlag,
			Device: *spiDeviceFlag,
			Speed:  physic.Frequency(*speedFlag) * physic.KiloHertz,
			CS:     *csPinFlag,
		}
		conn memlcd.Conn
		err  error
	)
	if *spidevFlag {
		conn, err = memlcd.OpenSPIDev(spiConfig)
	} else {
		conn, err = memlcd.OpenSPI(spiConfig)
	}
	if err != nil {
		fatal(err)
	}
	logger.Info("using connection", "conn", conn)

	config := memlcd.DefaultConfig
	config.Width = *widthFlag
	config.Height = *heightFlag
	config.Rotation = rotation
	if *dispPinFlag != "" {
		config.Disp = gpioreg.ByName(*dispPinFlag)
	}
	if *extComInPinFlag != "" {
		config.ExtComIn = gpioreg.ByName(*extComInPinFlag)
	}

	output, err := memlcd.New(conn, &config)
	if err != nil {
		_ = conn.Close()
		fatal(err)
	}
	defer output.Close()
	logger.Info("using driver", "display", output)

	fonts, err := loadFont(*fontFlag)
	if err != nil {
		fatal(err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err = output.ClearScreen(ctx); err != nil {
		fatal(err)
	}

	maintained := make(chan error, 1)
	go func() {
		maintained <- output.Maintain(ctx)
	}()

	var (
		r      = output.Bounds()
		bell   = iconImage(bellIcon)
		w      = text.NewRenderer(output.MonoImage, fonts)
		ticker = time.NewTicker(time.Second)
		frame  int
	)
	defer ticker.Stop()

	fmt.Println("hit control-c to stop...")
	for {
		output.Clear()
		draw.RoundedRect(output.MonoImage, draw.Rect{XMin: 0, YMin: 0, XMax: r.Dx() - 1, YMax: r.Dy() - 1}, 6, pixel.Black)
		draw.Circle(output.MonoImage, r.Dx()/2, r.Dy()*2/3, r.Dy()/6)
		draw.Line(output.MonoImage, r.Dx()/2, r.Dy()*2/3, r.Dx()/2+(r.Dy()/6-2)*(frame%3-1), r.Dy()*2/3-r.Dy()/6+2)
		draw.FillRect(output.MonoImage, draw.Rect{XMin: 4, YMin: r.Dy() - 8, XMax: 4 + frame%(r.Dx()-8), YMax: r.Dy() - 5}, pixel.Black)

		draw.Overlay(output.MonoImage, image.Pt(r.Dx()-len(bellIcon[0])-4, r.Dy()/2-len(bellIcon)), bell)

		w.Home()
		if err = w.DrawString(time.Now().Format("15:04:05"), font.Medium); err != nil {
			logger.Warn("draw text", "err", err)
		}

		if err = output.Refresh(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("refresh", "err", err)
		}

		select {
		case <-ctx.Done():
			if err = <-maintained; err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("VCOM maintenance", "err", err)
			}
			return
		case <-ticker.C:
			frame++
		}
	}
}

var bellIcon = []string{
	"....##....",
	"...####...",
	"..######..",
	"..######..",
	"..######..",
	".########.",
	"##########",
	"....##....",
}

// iconImage turns rows of '#' (ink) and '.' (transparent) into an image.
func iconImage(rows []string) image.Image {
	i := image.NewNRGBA(image.Rect(0, 0, len(rows[0]), len(rows)))
	for y, row := range rows {
		for x, c := range row {
			if c == '#' {
				i.Set(x, y, color.Black)
			}
		}
	}
	return i
}

func loadFont(name string) (font.Source, error) {
	if name == "" {
		return font.GoMono(font.DefaultSizes)
	}
	b, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	return font.ParseTrueType(b, font.DefaultSizes)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "fatal: "+err.Error())
	os.Exit(1)
}
