package doomsie3d

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// QuadKind says which wall section a quad came from.
type QuadKind int

const (
	QuadMiddle QuadKind = iota
	QuadLower
	QuadUpper
)

// WallQuad is one vertical wall rectangle in world space. World basis:
// X = map x, Y = height, Z = map y. Vertices run BL, BR, TR, TL; the
// visible face is the right side of V1->V2, outward normal (dz, 0, -dx).
//
// Quads are produced once at load and shared read-only by every frame.
type WallQuad struct {
	V    [4]mgl64.Vec3
	Slot int // catalog slot handle, resolved at lift time

	// Texel-space texture anchoring: U along the wall, V down it.
	U0, U1 float64
	V0, V1 float64

	Kind QuadKind
	Line int // source linedef index
}

// Normal returns the quad's outward-facing unit normal.
func (q *WallQuad) Normal() mgl64.Vec3 {
	d := q.V[1].Sub(q.V[0])
	n := mgl64.Vec3{d.Z(), 0, -d.X()}
	if n.Len() == 0 {
		return n
	}
	return n.Normalize()
}

// Lift converts a decoded map into wall quads. It is pure over its
// inputs: lifting the same level twice yields identical output. Dangling
// indices are substituted with nothing (the bad linedef emits no
// geometry) and logged; they never abort the map.
func Lift(level *Level, cat *Catalog) []WallQuad {
	quads := make([]WallQuad, 0, len(level.Lines))
	for i := range level.Lines {
		line := &level.Lines[i]

		v1, ok := vertexRef(level, line.V1)
		if !ok {
			continue
		}
		v2, ok := vertexRef(level, line.V2)
		if !ok {
			continue
		}

		front, frontSector, ok := sideRef(level, line.FrontSide)
		if !ok {
			continue
		}

		if line.BackSide == NoSide {
			// One-sided: a single full-height quad with the middle
			// texture.
			quads = appendQuad(quads, cat, i, v1, v2, front,
				frontSector.FloorHeight, frontSector.CeilingHeight,
				front.MiddleName, QuadMiddle)
			continue
		}

		back, backSector, ok := sideRef(level, line.BackSide)
		if !ok {
			continue
		}

		quads = liftTwoSided(quads, cat, i, v1, v2, front, frontSector, backSector)
		// The back side sees the same height deltas mirrored, with its
		// own textures. Swapping the endpoints flips the outward normal.
		quads = liftTwoSided(quads, cat, i, v2, v1, back, backSector, frontSector)
	}
	logger.Printf("lifted %s: %d wall quads from %d lines", level.Name, len(quads), len(level.Lines))
	return quads
}

// liftTwoSided emits this side's view of a portal line: a lower step, an
// upper step, and an optional decorative middle.
func liftTwoSided(quads []WallQuad, cat *Catalog, line int, v1, v2 Vertex, side *SideDef, near, far *Sector) []WallQuad {
	if near.FloorHeight < far.FloorHeight {
		quads = appendQuad(quads, cat, line, v1, v2, side,
			near.FloorHeight, far.FloorHeight, side.LowerName, QuadLower)
	}
	if far.CeilingHeight < near.CeilingHeight {
		quads = appendQuad(quads, cat, line, v1, v2, side,
			far.CeilingHeight, near.CeilingHeight, side.UpperName, QuadUpper)
	}
	// Decorative middle quads (grates, bars) render opaque when a
	// texture is named; there is no color-key transparency pass.
	if side.MiddleName != "" {
		bottom := max(near.FloorHeight, far.FloorHeight)
		top := min(near.CeilingHeight, far.CeilingHeight)
		quads = appendQuad(quads, cat, line, v1, v2, side, bottom, top, side.MiddleName, QuadMiddle)
	}
	return quads
}

func appendQuad(quads []WallQuad, cat *Catalog, line int, v1, v2 Vertex, side *SideDef, bottom, top float64, texName string, kind QuadKind) []WallQuad {
	if top <= bottom {
		return quads
	}
	length := math.Hypot(v2.X-v1.X, v2.Y-v1.Y)
	if length == 0 {
		return quads
	}
	// U runs the wall's length starting at the sidedef's x offset, so
	// adjacent segments of the same texture tile continuously; V starts
	// at the y offset with the texture's top row at the quad's top.
	return append(quads, WallQuad{
		V: [4]mgl64.Vec3{
			{v1.X, bottom, v1.Y},
			{v2.X, bottom, v2.Y},
			{v2.X, top, v2.Y},
			{v1.X, top, v1.Y},
		},
		Slot: cat.SlotOf(texName),
		U0:   side.XOffset,
		U1:   side.XOffset + length,
		V0:   side.YOffset,
		V1:   side.YOffset + (top - bottom),
		Kind: kind,
		Line: line,
	})
}

// TODO: honor the lower-unpegged flag when anchoring lower quads; id's
// renderer pegs those to the ceiling instead of the top of the quad.

func vertexRef(level *Level, i int) (Vertex, bool) {
	if i < 0 || i >= len(level.Vertexes) {
		logger.Printf("lift: %v", &DanglingReferenceError{Kind: "vertex", Index: i, Count: len(level.Vertexes)})
		return Vertex{}, false
	}
	return level.Vertexes[i], true
}

// sideRef dereferences a sidedef and its owning sector, logging and
// refusing the pair when either index dangles.
func sideRef(level *Level, i int) (*SideDef, *Sector, bool) {
	if i < 0 || i >= len(level.Sides) {
		logger.Printf("lift: %v", &DanglingReferenceError{Kind: "sidedef", Index: i, Count: len(level.Sides)})
		return nil, nil, false
	}
	side := &level.Sides[i]
	if side.Sector < 0 || side.Sector >= len(level.Sectors) {
		logger.Printf("lift: %v", &DanglingReferenceError{Kind: "sector", Index: side.Sector, Count: len(level.Sectors)})
		return nil, nil, false
	}
	return side, &level.Sectors[side.Sector], true
}
