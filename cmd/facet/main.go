// facet - software rasterizer for glTF models.
// Renders glTF/GLB files on the CPU with a Cook-Torrance PBR shader, either
// live in the terminal or as a turntable of PNG frames.
//
// Controls (view):
//
//	W/S         - Move forward/back
//	A/D         - Strafe left/right
//	Q/E         - Move down/up
//	Arrows      - Look around
//	Space       - Spin impulse
//	B           - Toggle bilinear filtering
//	P           - Toggle PBR / pass-through shader
//	O           - Toggle bounds overlay
//	?           - Toggle status line
//	R           - Reset camera
//	Esc         - Quit
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/taigrr/facet/pkg/config"
	"github.com/taigrr/facet/pkg/logging"
)

var (
	configPath = flag.String("config", "", "Path to YAML scene configuration")
	width      = flag.Int("width", 0, "Render width in pixels (render only)")
	height     = flag.Int("height", 0, "Render height in pixels (render only)")
	shaderName = flag.String("shader", "", "Shader: pbr or passthrough")
	bilinear   = flag.Bool("bilinear", true, "Bilinear texture filtering")
	checker    = flag.Bool("checker", false, "Checker base color for untextured materials")
	logLevel   = flag.String("log", "", "Log level: debug, info, warn, error")
	targetFPS  = flag.Int("fps", 30, "Target FPS (view only)")
	frames     = flag.Int("frames", 36, "Turntable frame count (render only)")
	outDir     = flag.String("out", "frames", "Output directory (render only)")
	workers    = flag.Int("workers", 4, "Concurrent PNG encoders (render only)")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "facet - software rasterizer for glTF models\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  facet [options] view <model.gltf|model.glb>\n")
		fmt.Fprintf(os.Stderr, "  facet [options] render <model.gltf|model.glb>\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nControls (view):\n")
		fmt.Fprintf(os.Stderr, "  W/S/A/D     - Move\n")
		fmt.Fprintf(os.Stderr, "  Q/E         - Down/up\n")
		fmt.Fprintf(os.Stderr, "  Arrows      - Look\n")
		fmt.Fprintf(os.Stderr, "  Space       - Spin impulse\n")
		fmt.Fprintf(os.Stderr, "  B           - Toggle bilinear\n")
		fmt.Fprintf(os.Stderr, "  P           - Toggle PBR shader\n")
		fmt.Fprintf(os.Stderr, "  O           - Toggle bounds overlay\n")
		fmt.Fprintf(os.Stderr, "  ?           - Toggle status line\n")
		fmt.Fprintf(os.Stderr, "  R           - Reset camera\n")
		fmt.Fprintf(os.Stderr, "  Esc         - Quit\n")
	}
	flag.Parse()

	if flag.NArg() < 2 {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	level, _ := cfg.Level()
	logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cmd, modelPath := flag.Arg(0), flag.Arg(1)
	switch cmd {
	case "view":
		err = runView(cfg, modelPath)
	case "render":
		err = runTurntable(cfg, modelPath, *frames, *outDir, *workers)
	default:
		flag.Usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file, if any, then applies the flags the user
// set explicitly.
func loadConfig() (config.Config, error) {
	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return cfg, err
		}
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "width":
			cfg.Width = *width
		case "height":
			cfg.Height = *height
		case "shader":
			cfg.Shader = *shaderName
		case "bilinear":
			cfg.Bilinear = *bilinear
		case "checker":
			cfg.Checker = *checker
		case "log":
			cfg.LogLevel = *logLevel
		}
	})

	return cfg, cfg.Validate()
}
