package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"github.com/taigrr/facet/pkg/assets"
	"github.com/taigrr/facet/pkg/config"
	"github.com/taigrr/facet/pkg/logging"
	"github.com/taigrr/facet/pkg/render"
)

// runTurntable renders frames evenly spaced views of one full revolution
// and writes them as PNGs into dir. Frames are rasterized in order on one
// pipeline; encoding runs on up to workers goroutines.
func runTurntable(cfg config.Config, modelPath string, frames int, dir string, workers int) error {
	if frames < 1 {
		return fmt.Errorf("frame count must be positive, got %d", frames)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	res := assets.NewResources(cfg.KillTime.Duration(), nil)
	sc, err := newScene(cfg, res, modelPath)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}
	defer sc.close()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(sigCtx)
	g.SetLimit(max(workers, 1))

	bar := progressbar.Default(int64(frames), "rendering")
	defer bar.Close()

	log := logging.Logger()
	for i := range frames {
		if ctx.Err() != nil {
			break
		}

		fb := render.NewColorBuffer(cfg.Width, cfg.Height)
		angle := 2 * math.Pi * float64(i) / float64(frames)
		st, err := sc.draw(fb, angle)
		if err != nil {
			_ = g.Wait()
			return fmt.Errorf("frame %d: %w", i, err)
		}
		log.Debug("frame rendered",
			"frame", i,
			"triangles", st.triangles,
			"shaded", st.shaded,
			"culled", st.culled)

		path := filepath.Join(dir, fmt.Sprintf("frame_%04d.png", i))
		g.Go(func() error {
			if err := fb.SavePNG(path); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			return bar.Add(1)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	if err := sigCtx.Err(); err != nil {
		return fmt.Errorf("interrupted: %w", err)
	}

	log.Info("turntable written", "frames", frames, "dir", dir)
	return nil
}
