// Command gbcore is the CLI host: it loads a ROM, wires a core to either a
// terminal front end with an SDL2 audio sink or a headless frame-count
// loop, and exits.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli"

	"github.com/corvee-dev/gbcore/cmd/gbcore/internal/sdl2audio"
	"github.com/corvee-dev/gbcore/cmd/gbcore/internal/terminalfront"
	"github.com/corvee-dev/gbcore/gb"
	"github.com/corvee-dev/gbcore/gb/cartridge"
)

func main() {
	app := cli.NewApp()
	app.Name = "gbcore"
	app.Usage = "gbcore <command> [options] <ROM file>"
	app.Description = "A Game Boy core with a terminal front end and a headless runner"
	app.Version = "0.1.0"
	app.Commands = []cli.Command{runCommand, infoCommand}

	if err := app.Run(os.Args); err != nil {
		slog.Error("gbcore exited with an error", "error", err)
		os.Exit(1)
	}
}

var runCommand = cli.Command{
	Name:      "run",
	Usage:     "run a ROM interactively, or headlessly for a fixed frame count",
	ArgsUsage: "<ROM file>",
	Flags: []cli.Flag{
		cli.BoolFlag{Name: "headless", Usage: "run without a terminal display"},
		cli.IntFlag{Name: "frames", Usage: "frames to run in headless mode (required there)", Value: 0},
		cli.BoolFlag{Name: "mute", Usage: "disable the SDL2 audio sink in interactive mode"},
	},
	Action: runROM,
}

var infoCommand = cli.Command{
	Name:      "info",
	Usage:     "print a ROM's cartridge header and exit",
	ArgsUsage: "<ROM file>",
	Action:    showInfo,
}

func loadROM(c *cli.Context) (*cartridge.Cartridge, error) {
	path := c.Args().Get(0)
	if path == "" {
		return nil, errors.New("gbcore: no ROM path given")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("gbcore: read ROM: %w", err)
	}

	return cartridge.Load(data)
}

func showInfo(c *cli.Context) error {
	cart, err := loadROM(c)
	if err != nil {
		return err
	}

	h := cart.Header
	fmt.Printf("title:      %s\n", h.Title)
	fmt.Printf("mbc:        %v\n", h.Variant)
	fmt.Printf("rom banks:  %d\n", h.ROMBankCount)
	fmt.Printf("ram banks:  %d\n", h.RAMBankCount)
	fmt.Printf("battery:    %v\n", h.HasBattery)
	fmt.Printf("rtc:        %v\n", h.HasTimer)
	fmt.Printf("rumble:     %v\n", h.HasRumble)
	return nil
}

func runROM(c *cli.Context) error {
	romPath := c.Args().Get(0)
	cart, err := loadROM(c)
	if err != nil {
		return err
	}

	savePath := savePathFor(romPath)
	loadSave(cart, savePath)

	core := gb.New(cart)

	if c.Bool("headless") {
		err = runHeadless(core, c.Int("frames"))
	} else {
		err = runInteractive(core, c.Bool("mute"))
	}

	saveErr := saveSave(cart, savePath)
	if err != nil {
		return err
	}
	return saveErr
}

// savePathFor returns the battery-RAM save file a ROM uses, alongside it
// with a .sav extension (the de facto convention every GB/GBC emulator
// shares).
func savePathFor(romPath string) string {
	ext := filepath.Ext(romPath)
	return strings.TrimSuffix(romPath, ext) + ".sav"
}

// loadSave restores a cartridge's battery-backed RAM (and MBC3 RTC state)
// from disk if the cartridge has a battery and a save file exists.
func loadSave(cart *cartridge.Cartridge, path string) {
	if !cart.HasBattery() {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("failed to read save file", "path", path, "error", err)
		}
		return
	}

	if err := cart.LoadRAM(data, time.Now().Unix()); err != nil {
		slog.Warn("failed to restore save file", "path", path, "error", err)
	}
}

// saveSave persists a cartridge's battery-backed RAM to disk, if it has a
// battery at all.
func saveSave(cart *cartridge.Cartridge, path string) error {
	if !cart.HasBattery() {
		return nil
	}

	data := cart.SaveRAM(time.Now().Unix())
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("gbcore: write save file: %w", err)
	}
	return nil
}

func runHeadless(core *gb.GameBoy, frames int) error {
	if frames <= 0 {
		return errors.New("gbcore: --headless requires --frames with a positive value")
	}

	for i := 0; i < frames; i++ {
		core.Tick(1.0 / 60.0)
		if (i+1)%60 == 0 {
			slog.Info("frame progress", "completed", i+1, "total", frames)
		}
	}

	slog.Info("headless run complete", "frames", frames)
	return nil
}

func runInteractive(core *gb.GameBoy, mute bool) error {
	var sink *sdl2audio.Sink
	if !mute {
		s, err := sdl2audio.Open()
		if err != nil {
			slog.Warn("audio disabled", "error", err)
		} else {
			sink = s
			core.SetAudioSampleRate(sink.SampleRate())
			defer sink.Close()
		}
	}

	renderer, err := terminalfront.New(core)
	if err != nil {
		return err
	}

	if sink != nil {
		stop := make(chan struct{})
		defer close(stop)
		go drainAudio(core, sink, stop)
	}

	return renderer.Run()
}

func drainAudio(core *gb.GameBoy, sink *sdl2audio.Sink, stop <-chan struct{}) {
	ticker := time.NewTicker(time.Second / 60)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			sink.Drain(core.Audio())
		}
	}
}
