package doomsie3d

import (
	"image/color"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// Framebuffer is a row-major RGBA pixel buffer, the renderer's only
// output surface.
type Framebuffer struct {
	Width, Height int
	Pix           []byte
}

func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{Width: width, Height: height, Pix: make([]byte, width*height*4)}
}

func (f *Framebuffer) Fill(c color.RGBA) {
	for i := 0; i < len(f.Pix); i += 4 {
		f.Pix[i], f.Pix[i+1], f.Pix[i+2], f.Pix[i+3] = c.R, c.G, c.B, c.A
	}
}

func (f *Framebuffer) Set(x, y int, c color.RGBA) {
	i := (y*f.Width + x) * 4
	f.Pix[i], f.Pix[i+1], f.Pix[i+2], f.Pix[i+3] = c.R, c.G, c.B, c.A
}

func (f *Framebuffer) At(x, y int) color.RGBA {
	i := (y*f.Width + x) * 4
	return color.RGBA{R: f.Pix[i], G: f.Pix[i+1], B: f.Pix[i+2], A: f.Pix[i+3]}
}

// span is a wall quad collapsed into camera space: two vertical edges
// with interpolable attributes. Wall quads are vertical rectangles, so
// the top and bottom edges share each end's x and z.
type span struct {
	x1, z1, x2, z2     float64
	yb1, yt1, yb2, yt2 float64 // bottom/top camera-space heights per end
	u1, u2             float64 // texel u per end
	v0, v1             float64 // texel v at top/bottom
	slot               int
	dist               float64 // nearest-vertex distance, for ordering
}

// Renderer rasterizes lifted wall geometry into a framebuffer. One
// renderer serves one framebuffer; per-frame state lives on the stack.
type Renderer struct {
	fb     *Framebuffer
	Sky    color.RGBA
	Ground color.RGBA

	spans []span // reused between frames
}

func NewRenderer(fb *Framebuffer) *Renderer {
	return &Renderer{
		fb:     fb,
		Sky:    color.RGBA{R: 0x38, G: 0x4c, B: 0x70, A: 0xFF},
		Ground: color.RGBA{R: 0x30, G: 0x28, B: 0x20, A: 0xFF},
	}
}

// RenderFrame draws one frame: view transform, near clip, backface
// cull, perspective projection, painter-ordered column rasterization.
// Geometry and textures are read-only here; only the framebuffer is
// written.
func (r *Renderer) RenderFrame(cam *Camera, quads []WallQuad, cat *Catalog) *Framebuffer {
	w, h := r.fb.Width, r.fb.Height
	focal := float64(w) / 2 / math.Tan(cam.FOV/2)
	r.clearBackground(focal, cam.Pitch)

	view := cam.ViewMatrix()
	r.spans = r.spans[:0]
	for i := range quads {
		q := &quads[i]
		// Backface: the quad is invisible when its outward normal does
		// not oppose the camera-to-quad direction.
		if q.Normal().Dot(q.V[0].Sub(cam.Pos)) >= 0 {
			continue
		}
		bl := mgl64.TransformCoordinate(q.V[0], view)
		br := mgl64.TransformCoordinate(q.V[1], view)
		tl := mgl64.TransformCoordinate(q.V[3], view)
		tr := mgl64.TransformCoordinate(q.V[2], view)
		s := span{
			x1: bl.X(), z1: bl.Z(), yb1: bl.Y(), yt1: tl.Y(),
			x2: br.X(), z2: br.Z(), yb2: br.Y(), yt2: tr.Y(),
			u1: q.U0, u2: q.U1,
			v0: q.V0, v1: q.V1,
			slot: q.Slot,
		}
		if !clipSpanNear(&s, cam.Near) {
			continue
		}
		s.dist = nearestDistance(s)
		r.spans = append(r.spans, s)
	}

	// Painter's ordering: far spans first so near ones overwrite them.
	sort.Slice(r.spans, func(i, j int) bool {
		return r.spans[i].dist > r.spans[j].dist
	})

	// Pitch is a vertical shear: the projection center drops down the
	// screen as the view tilts up, the same offset the horizon uses.
	cx := float64(w) / 2
	cy := float64(h)/2 + focal*math.Tan(cam.Pitch)
	for i := range r.spans {
		r.drawSpan(&r.spans[i], cat, focal, cx, cy)
	}
	return r.fb
}

// clearBackground splits the frame at the horizon: sky above, ground
// below. The horizon shifts with pitch.
func (r *Renderer) clearBackground(focal, pitch float64) {
	horizon := float64(r.fb.Height)/2 + focal*math.Tan(pitch)
	hy := int(clampFloat(horizon, 0, float64(r.fb.Height)))
	row := r.fb.Width * 4
	for y := 0; y < hy; y++ {
		for x := 0; x < r.fb.Width; x++ {
			i := y*row + x*4
			r.fb.Pix[i], r.fb.Pix[i+1], r.fb.Pix[i+2], r.fb.Pix[i+3] = r.Sky.R, r.Sky.G, r.Sky.B, r.Sky.A
		}
	}
	for y := hy; y < r.fb.Height; y++ {
		for x := 0; x < r.fb.Width; x++ {
			i := y*row + x*4
			r.fb.Pix[i], r.fb.Pix[i+1], r.fb.Pix[i+2], r.fb.Pix[i+3] = r.Ground.R, r.Ground.G, r.Ground.B, r.Ground.A
		}
	}
}

// clipSpanNear culls spans fully behind the near plane and clips
// straddlers at z = near, interpolating every edge attribute, so the
// later perspective divide never sees z near zero. Reports whether the
// span survived.
func clipSpanNear(s *span, near float64) bool {
	if s.z1 <= near && s.z2 <= near {
		return false
	}
	if s.z1 < near {
		t := (near - s.z1) / (s.z2 - s.z1)
		s.x1 = lerp(s.x1, s.x2, t)
		s.yb1 = lerp(s.yb1, s.yb2, t)
		s.yt1 = lerp(s.yt1, s.yt2, t)
		s.u1 = lerp(s.u1, s.u2, t)
		s.z1 = near
	} else if s.z2 < near {
		t := (near - s.z2) / (s.z1 - s.z2)
		s.x2 = lerp(s.x2, s.x1, t)
		s.yb2 = lerp(s.yb2, s.yb1, t)
		s.yt2 = lerp(s.yt2, s.yt1, t)
		s.u2 = lerp(s.u2, s.u1, t)
		s.z2 = near
	}
	return true
}

func nearestDistance(s span) float64 {
	d := math.Hypot(s.x1, s.z1)
	if d2 := math.Hypot(s.x2, s.z2); d2 < d {
		d = d2
	}
	return d
}

// drawSpan projects one clipped span and fills its screen trapezoid
// column by column. 1/z and u/z interpolate linearly in screen space,
// giving perspective-correct u; within a column z is constant, so v is
// exactly linear in screen y.
func (r *Renderer) drawSpan(s *span, cat *Catalog, focal, cx, cy float64) {
	sx1 := cx + focal*s.x1/s.z1
	sx2 := cx + focal*s.x2/s.z2
	if sx1 > sx2 {
		s.x1, s.x2 = s.x2, s.x1
		s.z1, s.z2 = s.z2, s.z1
		s.yb1, s.yb2 = s.yb2, s.yb1
		s.yt1, s.yt2 = s.yt2, s.yt1
		s.u1, s.u2 = s.u2, s.u1
		sx1, sx2 = sx2, sx1
	}
	width := sx2 - sx1
	if width < 0.5 {
		// Degenerate screen projection: skipped, never an error.
		return
	}

	tex := cat.BySlot(s.slot)

	ytop1 := cy - focal*s.yt1/s.z1
	ybot1 := cy - focal*s.yb1/s.z1
	ytop2 := cy - focal*s.yt2/s.z2
	ybot2 := cy - focal*s.yb2/s.z2
	invZ1, invZ2 := 1/s.z1, 1/s.z2
	uoz1, uoz2 := s.u1/s.z1, s.u2/s.z2

	x0 := int(math.Ceil(sx1))
	x1 := int(math.Floor(sx2))
	if x0 < 0 {
		x0 = 0
	}
	if x1 > r.fb.Width-1 {
		x1 = r.fb.Width - 1
	}
	if x0 > x1 {
		// Entirely off-screen.
		return
	}

	for x := x0; x <= x1; x++ {
		t := (float64(x) - sx1) / width
		invZ := lerp(invZ1, invZ2, t)
		u := lerp(uoz1, uoz2, t) / invZ
		ytop := lerp(ytop1, ytop2, t)
		ybot := lerp(ybot1, ybot2, t)
		if ybot <= ytop {
			continue
		}

		y0 := int(clampFloat(math.Ceil(ytop), 0, float64(r.fb.Height-1)))
		y1 := int(clampFloat(math.Floor(ybot), 0, float64(r.fb.Height-1)))
		vScale := (s.v1 - s.v0) / (ybot - ytop)
		for y := y0; y <= y1; y++ {
			v := s.v0 + (float64(y)-ytop)*vScale
			r.fb.Set(x, y, tex.SampleTexel(u, v))
		}
	}
}
