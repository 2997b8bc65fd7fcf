package doomsie3d

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const overlayMargin = 12

var (
	overlaySolid  = color.RGBA{R: 0xE8, G: 0xE8, B: 0xE8, A: 0xFF}
	overlayPortal = color.RGBA{R: 0x70, G: 0x70, B: 0x70, A: 0xFF}
	overlayPlayer = color.RGBA{R: 0xFF, G: 0x40, B: 0x40, A: 0xFF}
)

// DrawOverlay strokes a top-down projection of the map over the screen:
// solid walls bright, portal lines dim, the player as a circle with a
// heading tick. Diagnostic only; none of this touches the framebuffer.
func DrawOverlay(screen *ebiten.Image, level *Level, cam *Camera) {
	minX, minY, maxX, maxY := level.Bounds()
	mapW, mapH := maxX-minX, maxY-minY
	if mapW == 0 || mapH == 0 {
		return
	}
	w := float64(screen.Bounds().Dx()) - 2*overlayMargin
	h := float64(screen.Bounds().Dy()) - 2*overlayMargin
	scale := math.Min(w/mapW, h/mapH)

	// Map +y is north; screen y grows downward.
	toScreen := func(x, y float64) (float32, float32) {
		return float32(overlayMargin + (x-minX)*scale),
			float32(overlayMargin + (maxY-y)*scale)
	}

	for i := range level.Lines {
		line := &level.Lines[i]
		if line.V1 >= len(level.Vertexes) || line.V2 >= len(level.Vertexes) {
			continue
		}
		v1, v2 := level.Vertexes[line.V1], level.Vertexes[line.V2]
		col := overlaySolid
		if line.BackSide != NoSide {
			col = overlayPortal
		}
		x1, y1 := toScreen(v1.X, v1.Y)
		x2, y2 := toScreen(v2.X, v2.Y)
		vector.StrokeLine(screen, x1, y1, x2, y2, 1, col, false)
	}

	px, py := toScreen(cam.Pos.X(), cam.Pos.Z())
	vector.StrokeCircle(screen, px, py, 3, 1.5, overlayPlayer, true)
	// Heading: world forward (sin yaw, cos yaw) in the map plane.
	hx, hy := toScreen(cam.Pos.X()+math.Sin(cam.Yaw)*24, cam.Pos.Z()+math.Cos(cam.Yaw)*24)
	vector.StrokeLine(screen, px, py, hx, hy, 1.5, overlayPlayer, true)
}
