package doomsie3d

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// playerEyeHeight is Doom's view height above the floor, in map units.
const playerEyeHeight = 41

// Game is the windowing/input collaborator around the rendering core:
// it samples keys into an Intent, applies it to the camera, and presents
// the framebuffer. All geometry and textures are loaded before the loop
// starts and never reloaded.
type Game struct {
	cfg     Config
	level   *Level
	catalog *Catalog
	quads   []WallQuad
	cam     *Camera

	fb       *Framebuffer
	renderer *Renderer
	frame    *ebiten.Image

	showOverlay bool
}

// NewGame runs the whole load phase: decode the map, build the texture
// catalog, lift geometry, seed the camera from the player start.
func NewGame(cfg Config, archive *Archive) (*Game, error) {
	level, err := DecodeMap(archive, cfg.Map)
	if err != nil {
		return nil, err
	}
	catalog, err := NewCatalog(archive)
	if err != nil {
		return nil, err
	}
	quads := Lift(level, catalog)

	cam := NewCamera(mgl64.Vec3{}, 0)
	cam.FOV = degreesToRadians(cfg.FOVDegrees)
	cam.Near = cfg.Near
	if start, ok := level.PlayerStart(); ok {
		cam.SetFromThing(start, level.FloorHeightAt(start.X, start.Y), playerEyeHeight)
	} else {
		logger.Printf("%s has no player start, camera at origin", cfg.Map)
	}

	fb := NewFramebuffer(cfg.Width, cfg.Height)
	return &Game{
		cfg:         cfg,
		level:       level,
		catalog:     catalog,
		quads:       quads,
		cam:         cam,
		fb:          fb,
		renderer:    NewRenderer(fb),
		frame:       ebiten.NewImage(cfg.Width, cfg.Height),
		showOverlay: cfg.Overlay,
	}, nil
}

// Update samples the keyboard into this frame's intent set and applies
// it to the camera. The rendering core never sees a key code.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		g.showOverlay = !g.showOverlay
	}

	dt := 1.0 / float64(ebiten.TPS())
	move := g.cfg.MoveSpeed * dt
	turn := degreesToRadians(g.cfg.TurnSpeed) * dt

	var in Intent
	if ebiten.IsKeyPressed(ebiten.KeyW) {
		in.Forward += move
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) {
		in.Forward -= move
	}
	if ebiten.IsKeyPressed(ebiten.KeyA) {
		in.Strafe -= move
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) {
		in.Strafe += move
	}
	if ebiten.IsKeyPressed(ebiten.KeyRight) {
		in.Yaw += turn
	}
	if ebiten.IsKeyPressed(ebiten.KeyLeft) {
		in.Yaw -= turn
	}
	if ebiten.IsKeyPressed(ebiten.KeyUp) {
		in.Pitch += turn
	}
	if ebiten.IsKeyPressed(ebiten.KeyDown) {
		in.Pitch -= turn
	}
	g.cam.Apply(in)
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.renderer.RenderFrame(g.cam, g.quads, g.catalog)
	g.frame.WritePixels(g.fb.Pix)
	screen.DrawImage(g.frame, nil)

	if g.showOverlay {
		DrawOverlay(screen, g.level, g.cam)
	}
	ebitenutil.DebugPrint(screen, fmt.Sprintf("%s  %0.f fps  tab=map esc=quit",
		g.level.Name, ebiten.ActualFPS()))
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.cfg.Width, g.cfg.Height
}
