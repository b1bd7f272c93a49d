package main

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/harmonica"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/spf13/cobra"

	"github.com/taigrr/softrender/pkg/config"
	"github.com/taigrr/softrender/pkg/geom"
	"github.com/taigrr/softrender/pkg/math3d"
	"github.com/taigrr/softrender/pkg/models"
	"github.com/taigrr/softrender/pkg/render"
	"github.com/taigrr/softrender/pkg/scene"
)

const (
	minDistance     = 1.5
	maxDistance     = 20.0
	defaultDistance = 4.0
)

type viewOptions struct {
	fps     int
	bg      string
	workers int
	color   string
}

func newViewCmd() *cobra.Command {
	opts := viewOptions{}

	cmd := &cobra.Command{
		Use:   "view <model.obj|model.glb|cube|quad>",
		Short: "View a model in the terminal",
		Long: `View a model in the terminal with interactive rotation.

Controls:
  Mouse drag  - Rotate model
  Scroll      - Zoom in/out
  W/S/A/D     - Pitch and yaw
  Q/E         - Roll left/right
  Space       - Random spin
  R           - Reset view
  X           - Toggle wireframe
  G           - Toggle grid
  B           - Toggle bounding box
  L           - Position light (mouse to aim, click to set)
  ?           - Toggle HUD overlay
  Esc         - Quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(cmd.Context(), args[0], opts)
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.fps, "fps", 60, "Target FPS")
	f.StringVar(&opts.bg, "bg", "#1e1e28", "Background color")
	f.StringVar(&opts.color, "color", "#c8c8c8", "Model color for faces without a material")
	f.IntVarP(&opts.workers, "workers", "j", 1, "Raster bands rendered in parallel")
	return cmd
}

// RotationAxis tracks position and velocity for one rotation axis with spring decay
type RotationAxis struct {
	Position  float64
	Velocity  float64
	velSpring harmonica.Spring
	velAccel  float64 // spring velocity used to animate Velocity toward 0
}

// NewRotationAxis creates an axis whose velocity decays with a critically
// damped spring.
func NewRotationAxis(fps int) RotationAxis {
	return RotationAxis{
		velSpring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
	}
}

// Update applies velocity to position and decays velocity toward 0.
func (a *RotationAxis) Update() {
	a.Position += a.Velocity
	a.Velocity, a.velAccel = a.velSpring.Update(a.Velocity, a.velAccel, 0)
}

// RotationState holds the model rotation.
type RotationState struct {
	Pitch, Yaw, Roll RotationAxis
	fps              int
}

func NewRotationState(fps int) *RotationState {
	r := &RotationState{fps: fps}
	r.Reset()
	return r
}

func (r *RotationState) Update() {
	r.Pitch.Update()
	r.Yaw.Update()
	r.Roll.Update()
}

func (r *RotationState) ApplyImpulse(pitch, yaw, roll float64) {
	r.Pitch.Velocity += pitch
	r.Yaw.Velocity += yaw
	r.Roll.Velocity += roll
}

func (r *RotationState) Reset() {
	r.Pitch = NewRotationAxis(r.fps)
	r.Yaw = NewRotationAxis(r.fps)
	r.Roll = NewRotationAxis(r.fps)
}

// Euler returns the rotation as (pitch, yaw, roll).
func (r *RotationState) Euler() math3d.Vec3 {
	return math3d.V3(r.Pitch.Position, r.Yaw.Position, r.Roll.Position)
}

// ViewState holds UI toggles.
type ViewState struct {
	Wireframe    bool
	Grid         bool
	Bounds       bool
	LightMode    bool
	LightDir     math3d.Vec3 // unit direction from the model toward the light
	PendingLight math3d.Vec3 // light direction while positioning
	ShowHUD      bool
}

// NewViewState creates the default view state with the light above and in
// front of the model.
func NewViewState() *ViewState {
	return &ViewState{
		LightDir: math3d.V3(0.4, 1, -0.2).Normalize(),
	}
}

// Light returns the point light for the current (or pending) direction.
func (v *ViewState) Light() render.PointLight {
	dir := v.LightDir
	if v.LightMode {
		dir = v.PendingLight
	}
	return render.PointLight{Position: dir.Scale(10), Ambient: 0.2}
}

// ScreenToLightDir maps a terminal position to a direction on the
// hemisphere facing the camera.
func ScreenToLightDir(screenX, screenY, width, height int) math3d.Vec3 {
	nx := (float64(screenX)/float64(width))*2 - 1
	ny := (float64(screenY)/float64(height))*2 - 1

	lenSq := nx*nx + ny*ny
	if lenSq > 1 {
		l := math.Sqrt(lenSq)
		nx /= l
		ny /= l
		lenSq = 1
	}

	// The camera sits on -Z, so the hemisphere toward the viewer is -Z.
	nz := math.Sqrt(1 - lenSq)
	return math3d.V3(nx, -ny, -nz).Normalize()
}

// HUD renders an overlay with model info and frame stats.
type HUD struct {
	filename  string
	polyCount int
	fps       float64
	fpsFrames int
	fpsTime   time.Time
}

func NewHUD(filename string, polyCount int) *HUD {
	return &HUD{
		filename:  filename,
		polyCount: polyCount,
		fpsTime:   time.Now(),
	}
}

// UpdateFPS updates the FPS counter (call once per frame)
func (h *HUD) UpdateFPS() {
	h.fpsFrames++
	elapsed := time.Since(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

// Render draws the HUD rows directly to the terminal.
func (h *HUD) Render(width, height int, view *ViewState, stats render.Stats) {
	const (
		reset     = "\x1b[0m"
		bold      = "\x1b[1m"
		dim       = "\x1b[2m"
		bgBlack   = "\x1b[40m"
		fgWhite   = "\x1b[97m"
		fgGreen   = "\x1b[92m"
		fgYellow  = "\x1b[93m"
		fgCyan    = "\x1b[96m"
		clearLine = "\x1b[2K"
	)
	moveTo := func(row, col int) string {
		return fmt.Sprintf("\x1b[%d;%dH", row, col)
	}

	// Always clear the HUD rows so toggling off works
	fmt.Print(moveTo(1, 1) + clearLine)
	fmt.Print(moveTo(height, 1) + clearLine)

	if view.LightMode {
		msg := fmt.Sprintf("%s%s%s ◉ LIGHT MODE - Move mouse to position, click to set, Esc to cancel %s",
			bgBlack, bold, fgYellow, reset)
		fmt.Print(moveTo(height, max((width-60)/2, 1)) + msg)
		return
	}
	if !view.ShowHUD {
		return
	}

	fmt.Printf("%s%s%s %.0f FPS %s", moveTo(1, 1), bgBlack, fgGreen, h.fps, reset)

	title := fmt.Sprintf("%s%s%s %s %s", bold, bgBlack, fgWhite, h.filename, reset)
	fmt.Print(moveTo(1, max((width-len(h.filename)-2)/2, 1)) + title)

	polys := fmt.Sprintf("%s%s%s %d polys %s", bgBlack, fgCyan, bold, h.polyCount, reset)
	fmt.Print(moveTo(1, max(width-14, 1)) + polys)

	check := func(on bool) string {
		if on {
			return "[✓]"
		}
		return "[ ]"
	}
	modes := fmt.Sprintf("%s%s %s Wireframe %s Grid %s Bounds  drawn %d culled %d px %d %s",
		bgBlack, fgWhite, check(view.Wireframe), check(view.Grid), check(view.Bounds),
		stats.Drawn, stats.Backfaces, stats.Pixels, reset)
	fmt.Print(moveTo(height, 1) + modes)

	hint := fmt.Sprintf("%s%s%s L: position light %s", bgBlack, dim, fgYellow, reset)
	fmt.Print(moveTo(height, max(width-18, 1)) + hint)
}

// loadViewMesh loads a model file or names a built-in primitive, centered
// and scaled to fit a 2-unit cube.
func loadViewMesh(arg string) (*models.Mesh, error) {
	if mesh, err := models.Primitive(arg, 2); err == nil {
		return mesh, nil
	}
	mesh, err := models.Load(arg)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	mesh.Normalize(2)
	return mesh, nil
}

// viewport is the resolution-dependent part of the viewer, rebuilt on
// resize.
type viewport struct {
	width, height int
	fb            *render.Framebuffer
	dev           *render.Device
}

func newViewport(width, height, workers int, shader render.Shader) viewport {
	res := render.TerminalResolution(width, height)
	fb := render.NewFramebuffer(res)
	return viewport{
		width:  width,
		height: height,
		fb:     fb,
		dev:    render.NewDevice(res, fb, render.WithShader(shader), render.WithWorkers(workers)),
	}
}

func runView(ctx context.Context, modelArg string, opts viewOptions) error {
	bg, err := config.ParseColor(opts.bg)
	if err != nil {
		return fmt.Errorf("bg: %w", err)
	}
	base, err := config.ParseColor(opts.color)
	if err != nil {
		return fmt.Errorf("color: %w", err)
	}
	fps := max(opts.fps, 1)

	mesh, err := loadViewMesh(modelArg)
	if err != nil {
		return err
	}
	slog.Debug("model loaded", "path", modelArg, "vertices", mesh.VertexCount(), "triangles", mesh.TriangleCount())

	obj := scene.NewObject(filepath.Base(modelArg), mesh)
	obj.Color = base

	rotation := NewRotationState(fps)
	viewState := NewViewState()
	hud := NewHUD(filepath.Base(modelArg), mesh.TriangleCount())

	// The light can move every frame, so the device reads it through a
	// shader closure instead of a fixed PointLight.
	shader := render.ShaderFunc(func(tri geom.Triangle[geom.World], normal math3d.Vec3, c color.RGBA) color.RGBA {
		return viewState.Light().Shade(tri, normal, c)
	})

	term := uv.DefaultTerminal()
	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	fmt.Fprint(os.Stdout, "\x1b[?1003h") // any-event mouse tracking
	fmt.Fprint(os.Stdout, "\x1b[?1006h") // SGR extended mouse mode

	cleanup := func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l")
		fmt.Fprint(os.Stdout, "\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}
	defer cleanup()

	vp := newViewport(width, height, opts.workers, shader)

	distance := defaultDistance
	cam := scene.NewCamera(scene.DefaultProfile())
	cam.SetAspectRatio(vp.fb.Resolution().AspectRatio())
	cam.SetPosition(math3d.V3(0, 0, -distance))
	zoom := func(delta float64) {
		distance = math3d.Clamp(distance+delta, minDistance, maxDistance)
		cam.SetPosition(math3d.V3(0, 0, -distance))
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Events are forwarded to the render loop so all state stays on one
	// goroutine.
	events := make(chan uv.Event, 64)
	go func() {
		for ev := range term.Events() {
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	inputTorque := struct{ pitch, yaw, roll float64 }{}
	const torqueStrength = 3.0
	var mouseDown bool
	var lastMouseX, lastMouseY int

	handle := func(ev uv.Event) (quit bool) {
		switch ev := ev.(type) {
		case uv.WindowSizeEvent:
			width, height = ev.Width, ev.Height
			term.Erase()
			term.Resize(width, height)
			vp = newViewport(width, height, opts.workers, shader)
			cam.SetAspectRatio(vp.fb.Resolution().AspectRatio())

		case uv.KeyPressEvent:
			switch {
			case ev.MatchString("escape"):
				if !viewState.LightMode {
					return true
				}
				viewState.LightMode = false
			case ev.MatchString("ctrl+c"):
				return true
			case ev.MatchString("q"):
				inputTorque.roll = -torqueStrength
			case ev.MatchString("e"):
				inputTorque.roll = torqueStrength
			case ev.MatchString("r"):
				rotation.Reset()
				distance = defaultDistance
				zoom(0)
			case ev.MatchString("w", "up"):
				inputTorque.pitch = -torqueStrength
			case ev.MatchString("s", "down"):
				inputTorque.pitch = torqueStrength
			case ev.MatchString("a", "left"):
				inputTorque.yaw = torqueStrength
			case ev.MatchString("d", "right"):
				inputTorque.yaw = -torqueStrength
			case ev.MatchString("space"):
				rotation.ApplyImpulse(
					(rand.Float64()-0.5)*1.5,
					(rand.Float64()-0.5)*1.5,
					(rand.Float64()-0.5)*1.5,
				)
			case ev.MatchString("+", "="):
				zoom(-0.5)
			case ev.MatchString("-", "_"):
				zoom(0.5)
			case ev.MatchString("x"):
				viewState.Wireframe = !viewState.Wireframe
			case ev.MatchString("g"):
				viewState.Grid = !viewState.Grid
			case ev.MatchString("b"):
				viewState.Bounds = !viewState.Bounds
			case ev.MatchString("l"):
				viewState.LightMode = true
				viewState.PendingLight = viewState.LightDir
			case ev.MatchString("?"), ev.MatchString("shift+/"):
				viewState.ShowHUD = !viewState.ShowHUD
			}

		case uv.KeyReleaseEvent:
			switch {
			case ev.MatchString("w", "up", "s", "down"):
				inputTorque.pitch = 0
			case ev.MatchString("a", "left", "d", "right"):
				inputTorque.yaw = 0
			case ev.MatchString("q", "e"):
				inputTorque.roll = 0
			}

		case uv.MouseClickEvent:
			if viewState.LightMode {
				viewState.LightDir = viewState.PendingLight
				viewState.LightMode = false
			} else {
				mouseDown = true
				lastMouseX, lastMouseY = ev.X, ev.Y
			}

		case uv.MouseReleaseEvent:
			if !viewState.LightMode {
				mouseDown = false
			}

		case uv.MouseMotionEvent:
			if viewState.LightMode {
				viewState.PendingLight = ScreenToLightDir(ev.X, ev.Y, width, height)
			} else if mouseDown {
				dx := ev.X - lastMouseX
				dy := ev.Y - lastMouseY
				rotation.ApplyImpulse(float64(dy)*0.03, -float64(dx)*0.03, 0)
				lastMouseX, lastMouseY = ev.X, ev.Y
			}

		case uv.MouseWheelEvent:
			switch ev.Button {
			case uv.MouseWheelUp:
				zoom(-0.5)
			case uv.MouseWheelDown:
				zoom(0.5)
			}
		}
		return false
	}

	targetDuration := time.Second / time.Duration(fps)
	lastFrame := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

	drain:
		for {
			select {
			case ev := <-events:
				if handle(ev) {
					return nil
				}
			default:
				break drain
			}
		}

		now := time.Now()
		dt := min(now.Sub(lastFrame).Seconds(), 0.1)
		lastFrame = now

		// Key release events are unreliable, so held torque decays too.
		rotation.ApplyImpulse(inputTorque.pitch*dt, inputTorque.yaw*dt, inputTorque.roll*dt)
		inputTorque.pitch *= 0.9
		inputTorque.yaw *= 0.9
		inputTorque.roll *= 0.9
		rotation.Update()

		obj.Transform.Rotation = rotation.Euler()
		obj.Wireframe = viewState.Wireframe

		vp.fb.Clear(bg)
		vp.dev.Clear()
		if viewState.Grid {
			vp.dev.RenderGrid(-1.2, 6, 0.5, render.ColorGray, cam)
		}
		vp.dev.RenderObject(obj, cam)
		if viewState.Bounds {
			vp.dev.RenderBounds(obj, render.ColorGreen, cam)
		}
		if err := vp.dev.Flush(ctx); err != nil {
			return nil
		}

		vp.fb.Draw(term, term.Bounds())
		if err := term.Display(); err != nil {
			return fmt.Errorf("display: %w", err)
		}

		hud.UpdateFPS()
		hud.Render(width, height, viewState, vp.dev.Stats())

		if elapsed := time.Since(now); elapsed < targetDuration {
			time.Sleep(targetDuration - elapsed)
		}
	}
}
