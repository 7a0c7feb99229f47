package main

import (
	"context"
	"fmt"
	"image/color"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/harmonica"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/facet/pkg/assets"
	"github.com/taigrr/facet/pkg/config"
	"github.com/taigrr/facet/pkg/render"
)

const (
	moveStep = 0.15
	lookStep = 0.05
	impulse  = 3.0
)

// spin is the turntable angle. Impulses add to the velocity, and a spring
// eases it back to the configured base speed.
type spin struct {
	angle    float64
	velocity float64
	base     float64
	accel    float64
	spring   harmonica.Spring
}

func newSpin(fps int, base float64) *spin {
	return &spin{
		velocity: base,
		base:     base,
		// Frequency 4.0 = moderate speed, damping 1.0 = critically damped
		spring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
	}
}

func (s *spin) update(dt float64) {
	s.angle += s.velocity * dt
	s.velocity, s.accel = s.spring.Update(s.velocity, s.accel, s.base)
}

func (s *spin) kick(v float64) {
	s.velocity += v
}

// viewer is the interactive terminal front end.
type viewer struct {
	term   *uv.Terminal
	scene  *scene
	spin   *spin
	fb     *render.ColorBuffer
	name   string
	status bool

	cols, rows int
	fps        float64
	fpsFrames  int
	fpsTime    time.Time
	last       frameStats
}

func runView(cfg config.Config, modelPath string) error {
	fps := max(*targetFPS, 1)

	res := assets.NewResources(cfg.KillTime.Duration(), nil)
	sc, err := newScene(cfg, res, modelPath)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}
	defer sc.close()

	term := uv.DefaultTerminal()
	cols, rows, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	term.EnterAltScreen()
	term.HideCursor()

	v := &viewer{
		term:    term,
		scene:   sc,
		spin:    newSpin(fps, cfg.SpinSpeed),
		name:    filepath.Base(modelPath),
		status:  true,
		fpsTime: time.Now(),
	}
	v.resize(cols, rows)

	defer func() {
		term.ExitAltScreen()
		term.ShowCursor()
		_ = term.Shutdown(context.Background())
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-term.Events():
			if quit := v.handle(ev); quit {
				return nil
			}
		case now := <-ticker.C:
			dt := min(now.Sub(last).Seconds(), 0.1)
			last = now
			v.spin.update(dt)
			if err := v.frame(); err != nil {
				return err
			}
			res.Update()
		}
	}
}

// resize matches the framebuffer to the terminal, leaving the bottom row
// for the status line.
func (v *viewer) resize(cols, rows int) {
	v.cols, v.rows = cols, rows
	_ = v.term.Resize(cols, rows)
	v.term.Erase()
	w, h := render.CellSize(cols, max(rows-1, 1))
	v.fb = render.NewColorBuffer(w, h)
}

// handle applies one terminal event and reports whether to quit.
func (v *viewer) handle(ev uv.Event) bool {
	cam := v.scene.camera
	switch ev := ev.(type) {
	case uv.WindowSizeEvent:
		v.resize(ev.Width, ev.Height)

	case uv.KeyPressEvent:
		switch {
		case ev.MatchString("escape", "ctrl+c"):
			return true
		case ev.MatchString("w"):
			cam.MoveForward(moveStep)
		case ev.MatchString("s"):
			cam.MoveForward(-moveStep)
		case ev.MatchString("a"):
			cam.MoveRight(-moveStep)
		case ev.MatchString("d"):
			cam.MoveRight(moveStep)
		case ev.MatchString("q"):
			cam.MoveUp(-moveStep)
		case ev.MatchString("e"):
			cam.MoveUp(moveStep)
		case ev.MatchString("up"):
			cam.Rotate(lookStep, 0)
		case ev.MatchString("down"):
			cam.Rotate(-lookStep, 0)
		case ev.MatchString("left"):
			cam.Rotate(0, lookStep)
		case ev.MatchString("right"):
			cam.Rotate(0, -lookStep)
		case ev.MatchString("space"):
			v.spin.kick(impulse)
		case ev.MatchString("b"):
			v.scene.bilinear = !v.scene.bilinear
		case ev.MatchString("p"):
			v.scene.usePBR = !v.scene.usePBR
		case ev.MatchString("o"):
			v.scene.overlay = !v.scene.overlay
		case ev.MatchString("r"):
			v.scene.resetCamera()
		case ev.MatchString("?", "shift+/"):
			v.status = !v.status
		}
	}
	return false
}

func (v *viewer) frame() error {
	st, err := v.scene.draw(v.fb, v.spin.angle)
	if err != nil {
		return err
	}
	v.last = st

	v.fpsFrames++
	if elapsed := time.Since(v.fpsTime); elapsed >= time.Second {
		v.fps = float64(v.fpsFrames) / elapsed.Seconds()
		v.fpsFrames = 0
		v.fpsTime = time.Now()
	}

	v.term.Clear()
	v.fb.Draw(v.term, uv.Rect(0, 0, v.cols, max(v.rows-1, 1)))
	if v.status {
		v.drawStatus()
	}
	return v.term.Display()
}

var (
	statusFg = color.RGBA{230, 230, 230, 255}
	statusBg = color.RGBA{20, 20, 20, 255}
)

func (v *viewer) drawStatus() {
	shader := "passthrough"
	if v.scene.usePBR {
		shader = "pbr"
	}
	filter := "nearest"
	if v.scene.bilinear {
		filter = "bilinear"
	}
	models, images := v.scene.res.Stats()
	line := fmt.Sprintf(" %s | %.0f fps | %d tris | %d px | %d/%d meshes | %s %s | cache %dm %di",
		v.name, v.fps, v.last.triangles, v.last.shaded,
		v.last.meshes-v.last.culled, v.last.meshes, shader, filter, models, images)

	row := v.rows - 1
	col := 0
	for _, r := range line {
		if col >= v.cols {
			break
		}
		v.term.SetCell(col, row, &uv.Cell{
			Content: string(r),
			Width:   1,
			Style:   uv.Style{Fg: statusFg, Bg: statusBg},
		})
		col++
	}
	for ; col < v.cols; col++ {
		v.term.SetCell(col, row, &uv.Cell{Content: " ", Width: 1, Style: uv.Style{Bg: statusBg}})
	}
}
