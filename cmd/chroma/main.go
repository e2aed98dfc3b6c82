package main

import (
	"log/slog"
	"os"

	"github.com/urfave/cli"
)

func main() {
	err := newApp().Run(os.Args)
	if err != nil {
		slog.Error("Error running emulator", "error", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "Chroma"
	app.Description = "A Game Boy and Game Boy Color emulator"
	app.Usage = "chroma [options] <ROM file>"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rom",
			Usage: "Path to the ROM file",
		},
		cli.StringFlag{
			Name:  "boot",
			Usage: "Path to a DMG or CGB boot ROM image",
		},
		cli.StringFlag{
			Name:  "model",
			Usage: "Hardware model: auto, dmg or cgb",
			Value: "auto",
		},
		cli.StringFlag{
			Name:  "save",
			Usage: "Path of the battery save file (default: ROM path with .sav)",
		},
		cli.StringFlag{
			Name:  "config",
			Usage: "YAML configuration file, flags override its values",
		},
		cli.StringFlag{
			Name:  "backend",
			Usage: "Display backend: terminal, sdl2, ebiten or headless",
			Value: "terminal",
		},
		cli.IntFlag{
			Name:  "scale",
			Usage: "Window scale for graphical backends",
			Value: 4,
		},
		cli.BoolFlag{
			Name:  "headless",
			Usage: "Run the emulator without a graphical interface",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to run in headless mode (required for headless)",
		},
		cli.IntFlag{
			Name:  "snapshot-interval",
			Usage: "Save frame snapshots every N frames in headless mode (0 = disabled)",
		},
		cli.StringFlag{
			Name:  "snapshot-dir",
			Usage: "Directory to save frame snapshots (default: temp directory in headless mode)",
		},
		cli.IntFlag{
			Name:  "snapshot-scale",
			Usage: "Scale of saved PNG snapshots",
			Value: 1,
		},
		cli.StringFlag{
			Name:  "serial",
			Usage: "Link port device: none, log, host or join",
			Value: "none",
		},
		cli.StringFlag{
			Name:  "link-addr",
			Usage: "Address to listen on (host) or dial (join) for the link cable",
		},
		cli.BoolFlag{
			Name:  "no-audio",
			Usage: "Disable sound output",
		},
		cli.StringFlag{
			Name:  "limiter",
			Usage: "Frame pacing: none, ticker or adaptive",
			Value: "adaptive",
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn or error",
			Value: "info",
		},
	}
	app.Action = runEmulator
	return app
}
