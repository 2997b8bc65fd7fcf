package doomsie3d

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func oneSidedLevel() *Level {
	return &Level{
		Name:     "TEST",
		Vertexes: []Vertex{{X: 0, Y: 0}, {X: 64, Y: 0}},
		Lines:    []LineDef{{V1: 0, V2: 1, Impassable: true, FrontSide: 0, BackSide: NoSide}},
		Sides:    []SideDef{{MiddleName: "STARTAN3"}},
		Sectors:  []Sector{{FloorHeight: 0, CeilingHeight: 64}},
	}
}

// portalLevel is two sectors joined by one two-sided line. The back
// sector's floor is raised and its ceiling lowered relative to the
// front.
func portalLevel(backFloor, backCeil float64) *Level {
	return &Level{
		Name:     "TEST",
		Vertexes: []Vertex{{X: 0, Y: 0}, {X: 64, Y: 0}},
		Lines:    []LineDef{{V1: 0, V2: 1, TwoSided: true, FrontSide: 0, BackSide: 1}},
		Sides:    []SideDef{{Sector: 0, LowerName: "STEP6", UpperName: "STEP6"}, {Sector: 1}},
		Sectors: []Sector{
			{FloorHeight: 0, CeilingHeight: 128},
			{FloorHeight: backFloor, CeilingHeight: backCeil},
		},
	}
}

func TestLiftOneSided(t *testing.T) {
	t.Parallel()

	quads := Lift(oneSidedLevel(), emptyCatalog(t))
	require.Len(t, quads, 1)

	q := quads[0]
	assert.Equal(t, QuadMiddle, q.Kind)
	assert.Equal(t, 0, q.Line)
	assert.Equal(t, mgl64.Vec3{0, 0, 0}, q.V[0])
	assert.Equal(t, mgl64.Vec3{64, 0, 0}, q.V[1])
	assert.Equal(t, mgl64.Vec3{64, 64, 0}, q.V[2])
	assert.Equal(t, mgl64.Vec3{0, 64, 0}, q.V[3])
	assert.Equal(t, 0.0, q.U0)
	assert.Equal(t, 64.0, q.U1)
	assert.Equal(t, 0.0, q.V0)
	assert.Equal(t, 64.0, q.V1)
	assert.Equal(t, mgl64.Vec3{0, 0, -1}, q.Normal())
}

func TestLiftSideOffsetsAnchorTexture(t *testing.T) {
	t.Parallel()

	level := oneSidedLevel()
	level.Sides[0].XOffset = 24
	level.Sides[0].YOffset = 8

	quads := Lift(level, emptyCatalog(t))
	require.Len(t, quads, 1)
	assert.Equal(t, 24.0, quads[0].U0)
	assert.Equal(t, 88.0, quads[0].U1)
	assert.Equal(t, 8.0, quads[0].V0)
	assert.Equal(t, 72.0, quads[0].V1)
}

func TestLiftTwoSidedFlush(t *testing.T) {
	t.Parallel()

	// Matching heights and no middle texture on either side: the portal
	// is pure opening.
	level := portalLevel(0, 128)
	level.Sides[0].LowerName = ""
	level.Sides[0].UpperName = ""

	quads := Lift(level, emptyCatalog(t))
	assert.Empty(t, quads)
}

func TestLiftTwoSidedStep(t *testing.T) {
	t.Parallel()

	quads := Lift(portalLevel(32, 96), emptyCatalog(t))
	require.Len(t, quads, 2, "only the front side faces the steps")

	var lower, upper *WallQuad
	for i := range quads {
		switch quads[i].Kind {
		case QuadLower:
			lower = &quads[i]
		case QuadUpper:
			upper = &quads[i]
		}
	}
	require.NotNil(t, lower)
	require.NotNil(t, upper)

	assert.Equal(t, 0.0, lower.V[0].Y())
	assert.Equal(t, 32.0, lower.V[2].Y())
	assert.Equal(t, 96.0, upper.V[0].Y())
	assert.Equal(t, 128.0, upper.V[2].Y())
}

func TestLiftTwoSidedMiddle(t *testing.T) {
	t.Parallel()

	level := portalLevel(32, 96)
	level.Sides[0].MiddleName = "MIDGRATE"

	quads := Lift(level, emptyCatalog(t))
	require.Len(t, quads, 3)

	var middle *WallQuad
	for i := range quads {
		if quads[i].Kind == QuadMiddle {
			middle = &quads[i]
		}
	}
	require.NotNil(t, middle)
	// Clamped to the open span between the sectors.
	assert.Equal(t, 32.0, middle.V[0].Y())
	assert.Equal(t, 96.0, middle.V[2].Y())
}

func TestLiftBackSideNormalFlipped(t *testing.T) {
	t.Parallel()

	// Raise the front floor above the back floor so the back side owns
	// the lower step.
	level := portalLevel(-32, 128)
	level.Sides[0].LowerName = ""
	level.Sides[0].UpperName = ""
	level.Sides[1].LowerName = "STEP6"

	quads := Lift(level, emptyCatalog(t))
	require.Len(t, quads, 1)
	assert.Equal(t, QuadLower, quads[0].Kind)
	assert.Equal(t, -32.0, quads[0].V[0].Y())
	assert.Equal(t, 0.0, quads[0].V[2].Y())
	assert.Equal(t, mgl64.Vec3{0, 0, 1}, quads[0].Normal())
}

func TestLiftDeterministic(t *testing.T) {
	t.Parallel()

	cat := emptyCatalog(t)
	level := portalLevel(32, 96)
	assert.Equal(t, Lift(level, cat), Lift(level, cat))
}

func TestLiftDanglingReferences(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*Level)
	}{
		{"vertex", func(l *Level) { l.Lines[0].V2 = 99 }},
		{"sidedef", func(l *Level) { l.Lines[0].FrontSide = 7 }},
		{"sector", func(l *Level) { l.Sides[0].Sector = 5 }},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			level := oneSidedLevel()
			tc.mutate(level)
			assert.Empty(t, Lift(level, emptyCatalog(t)))
		})
	}
}

func TestLiftZeroLengthLine(t *testing.T) {
	t.Parallel()

	level := oneSidedLevel()
	level.Vertexes[1] = level.Vertexes[0]
	assert.Empty(t, Lift(level, emptyCatalog(t)))
}
