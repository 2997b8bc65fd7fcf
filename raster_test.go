package doomsie3d

import (
	"bytes"
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countWallPixels(r *Renderer, fb *Framebuffer) int {
	n := 0
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			if c := fb.At(x, y); c != r.Sky && c != r.Ground {
				n++
			}
		}
	}
	return n
}

func TestRenderFrameEmptyScene(t *testing.T) {
	t.Parallel()

	fb := NewFramebuffer(100, 80)
	r := NewRenderer(fb)
	cam := NewCamera(mgl64.Vec3{0, 32, 0}, 0)

	r.RenderFrame(cam, nil, emptyCatalog(t))

	assert.Equal(t, r.Sky, fb.At(50, 0))
	assert.Equal(t, r.Ground, fb.At(50, 79))
	assert.Equal(t, 0, countWallPixels(r, fb))
}

func TestRenderFrameHorizonFollowsPitch(t *testing.T) {
	t.Parallel()

	fb := NewFramebuffer(100, 80)
	r := NewRenderer(fb)
	cam := NewCamera(mgl64.Vec3{0, 32, 0}, 0)

	r.RenderFrame(cam, nil, emptyCatalog(t))
	assert.Equal(t, r.Ground, fb.At(50, 41), "level view: ground just below center")

	cam.Pitch = 0.3 // looking up pushes the horizon down
	r.RenderFrame(cam, nil, emptyCatalog(t))
	assert.Equal(t, r.Sky, fb.At(50, 41))
}

func TestRenderFrameWallVisible(t *testing.T) {
	t.Parallel()

	cat := emptyCatalog(t)
	quads := Lift(oneSidedLevel(), cat)
	fb := NewFramebuffer(200, 150)
	r := NewRenderer(fb)

	// The wall runs (0,0)-(64,0) facing map south; the camera stands
	// south of it looking north.
	cam := NewCamera(mgl64.Vec3{32, 32, -10}, 0)
	r.RenderFrame(cam, quads, cat)
	assert.Greater(t, countWallPixels(r, fb), 0)
	assert.NotEqual(t, r.Sky, fb.At(100, 75), "wall covers the view center")
	assert.NotEqual(t, r.Ground, fb.At(100, 75))
}

func TestRenderFrameWallVisibleWhilePitching(t *testing.T) {
	t.Parallel()

	cat := emptyCatalog(t)
	quads := Lift(oneSidedLevel(), cat)
	fb := NewFramebuffer(200, 150)
	r := NewRenderer(fb)

	// Tilting the view must slide the wall down the screen, not shear
	// or clip it away.
	cam := NewCamera(mgl64.Vec3{32, 32, -10}, 0)
	cam.Pitch = 0.5
	r.RenderFrame(cam, quads, cat)
	assert.Greater(t, countWallPixels(r, fb), 0)

	cam.Pitch = -0.5
	r.RenderFrame(cam, quads, cat)
	assert.Greater(t, countWallPixels(r, fb), 0)
}

func TestRenderFrameBackfaceCulled(t *testing.T) {
	t.Parallel()

	cat := emptyCatalog(t)
	quads := Lift(oneSidedLevel(), cat)
	fb := NewFramebuffer(200, 150)
	r := NewRenderer(fb)

	// Same wall seen from the north: the camera faces its back, so
	// nothing may draw even though the quad is in front of the eye.
	cam := NewCamera(mgl64.Vec3{32, 32, 10}, mgl64.DegToRad(180))
	r.RenderFrame(cam, quads, cat)
	assert.Equal(t, 0, countWallPixels(r, fb))
}

func TestRenderFrameWallBehindCamera(t *testing.T) {
	t.Parallel()

	cat := emptyCatalog(t)
	quads := Lift(oneSidedLevel(), cat)
	fb := NewFramebuffer(200, 150)
	r := NewRenderer(fb)

	// Front side of the wall, but looking away from it: the near clip
	// drops the whole span.
	cam := NewCamera(mgl64.Vec3{32, 32, -10}, mgl64.DegToRad(180))
	r.RenderFrame(cam, quads, cat)
	assert.Equal(t, 0, countWallPixels(r, fb))
}

func TestRenderFrameOffscreenWallPaintsNothing(t *testing.T) {
	t.Parallel()

	// A wall ahead of the camera but entirely left of the frustum: both
	// endpoints project at negative screen x, so no column may be
	// touched, least of all an edge column.
	level := &Level{
		Name:     "TEST",
		Vertexes: []Vertex{{X: -100, Y: 10}, {X: -50, Y: 10}},
		Lines:    []LineDef{{V1: 0, V2: 1, FrontSide: 0, BackSide: NoSide}},
		Sides:    []SideDef{{MiddleName: "STARTAN3"}},
		Sectors:  []Sector{{FloorHeight: 0, CeilingHeight: 64}},
	}
	cat := emptyCatalog(t)
	quads := Lift(level, cat)
	require.Len(t, quads, 1)

	fb := NewFramebuffer(200, 150)
	r := NewRenderer(fb)
	cam := NewCamera(mgl64.Vec3{0, 32, 0}, 0)
	r.RenderFrame(cam, quads, cat)
	assert.Equal(t, 0, countWallPixels(r, fb))
}

func TestRenderFramePainterOrder(t *testing.T) {
	t.Parallel()

	c, err := NewCatalog(testArchive(t, []lumpSpec{
		{name: "PLAYPAL", data: testPaletteLump()},
		{name: "F_START"},
		{name: "REDFLAT", data: bytes.Repeat([]byte{1}, flatBytes)},
		{name: "BLUFLAT", data: bytes.Repeat([]byte{2}, flatBytes)},
		{name: "F_END"},
	}))
	require.NoError(t, err)

	// Two parallel south-facing walls; the near one is red, the far one
	// blue. The view center must keep the near wall's color.
	level := &Level{
		Name:     "TEST",
		Vertexes: []Vertex{{X: 0, Y: 64}, {X: 64, Y: 64}, {X: 0, Y: 128}, {X: 64, Y: 128}},
		Lines: []LineDef{
			{V1: 2, V2: 3, FrontSide: 1, BackSide: NoSide},
			{V1: 0, V2: 1, FrontSide: 0, BackSide: NoSide},
		},
		Sides: []SideDef{
			{MiddleName: "REDFLAT", Sector: 0},
			{MiddleName: "BLUFLAT", Sector: 0},
		},
		Sectors: []Sector{{FloorHeight: 0, CeilingHeight: 64}},
	}
	quads := Lift(level, c)
	require.Len(t, quads, 2)

	fb := NewFramebuffer(200, 150)
	r := NewRenderer(fb)
	cam := NewCamera(mgl64.Vec3{32, 32, 0}, 0)
	r.RenderFrame(cam, quads, c)

	assert.Equal(t, paletteColor(1), fb.At(100, 75))
}

func TestClipSpanNear(t *testing.T) {
	t.Parallel()

	base := span{
		x1: 0, z1: 0, yb1: 0, yt1: 0, u1: 0,
		x2: 8, z2: 8, yb2: 8, yt2: 8, u2: 8,
	}
	cases := []struct {
		name     string
		z1, z2   float64
		keep     bool
		wantEnd1 float64 // interpolated attribute value at end 1, if clipped
	}{
		{"fully in front", 10, 12, true, 0},
		{"fully behind", 1, 2, false, 0},
		{"on the plane", 4, 4, false, 0},
		{"end one behind", 0, 8, true, 4},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s := base
			s.z1, s.z2 = tc.z1, tc.z2
			got := clipSpanNear(&s, 4)
			require.Equal(t, tc.keep, got)
			if !tc.keep {
				return
			}
			if tc.z1 < 4 {
				assert.Equal(t, 4.0, s.z1)
				assert.Equal(t, tc.wantEnd1, s.x1)
				assert.Equal(t, tc.wantEnd1, s.u1)
				assert.Equal(t, tc.wantEnd1, s.yb1)
				assert.Equal(t, tc.wantEnd1, s.yt1)
			} else {
				assert.Equal(t, tc.z1, s.z1, "unclipped span untouched")
				assert.Equal(t, tc.z2, s.z2)
			}
		})
	}
}

func TestClipSpanNearEndTwo(t *testing.T) {
	t.Parallel()

	s := span{x1: 8, z1: 8, u1: 8, yb1: 8, yt1: 8}
	require.True(t, clipSpanNear(&s, 4))
	assert.Equal(t, 4.0, s.z2)
	assert.Equal(t, 4.0, s.x2)
	assert.Equal(t, 4.0, s.u2)
}

func TestDrawSpanDegenerateProjection(t *testing.T) {
	t.Parallel()

	fb := NewFramebuffer(40, 30)
	r := NewRenderer(fb)
	fb.Fill(color.RGBA{A: 0xFF})

	// Both ends project to the same column.
	s := span{x1: 0, z1: 10, x2: 0, z2: 10, yb1: -8, yt1: 8, yb2: -8, yt2: 8}
	r.drawSpan(&s, emptyCatalog(t), 20, 20, 15)

	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			assert.Equal(t, color.RGBA{A: 0xFF}, fb.At(x, y))
		}
	}
}
