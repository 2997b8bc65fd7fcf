package doomsie3d

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// NoSide marks a LineDef without a back (or front) sidedef; 0xFFFF on
// disk.
const NoSide = -1

// ThingPlayer1Start is the THINGS type code for the player 1 spawn.
const ThingPlayer1Start = 1

type binVertex struct {
	X, Y int16
}

type binLine struct {
	V1      uint16
	V2      uint16
	Flags   uint16
	Special uint16
	Tag     uint16
	SideR   uint16
	SideL   uint16
}

type binSide struct {
	XOffset       int16
	YOffset       int16
	UpperTexture  String8
	LowerTexture  String8
	MiddleTexture String8
	SectorNum     uint16
}

type binSector struct {
	FloorHeight    int16
	CeilingHeight  int16
	FloorTexture   String8
	CeilingTexture String8
	LightLevel     int16
	Special        int16
	Tag            int16
}

type binThing struct {
	X       int16
	Y       int16
	Angle   int16
	Type    int16
	Options int16
}

// Vertex is a 2D map coordinate in map units.
type Vertex struct {
	X, Y float64
}

// LineDef is a wall segment between two vertices, referencing vertices,
// sidedefs and (through them) sectors strictly by index.
type LineDef struct {
	V1, V2 int

	Impassable    bool
	BlockMonsters bool
	TwoSided      bool
	UpperUnpegged bool
	LowerUnpegged bool
	Secret        bool
	BlocksSound   bool
	NeverMap      bool
	AlwaysMap     bool

	Special int
	Tag     int

	FrontSide int // NoSide when absent
	BackSide  int // NoSide when absent
}

// SideDef holds a line side's texturing data and its owning sector.
type SideDef struct {
	XOffset, YOffset float64
	UpperName        string
	LowerName        string
	MiddleName       string
	Sector           int
}

// Sector is a floor/ceiling-bounded room region. Its polygon outline is
// implied by the LineDefs that reference it, never stored.
type Sector struct {
	FloorHeight   float64
	CeilingHeight float64
	FloorName     string
	CeilName      string
	LightLevel    int
	Special       int
	Tag           int
}

// Thing is a map spawn record. Only the player start matters to this
// core; other types are decoded but unused.
type Thing struct {
	X, Y  float64
	Angle float64 // radians, 0 = east
	Type  int

	Skill12         bool
	Skill3          bool
	Skill45         bool
	Ambush          bool
	MultiplayerOnly bool
}

// Level is one decoded map: flat arrays cross-referenced by index.
// Immutable after DecodeMap.
type Level struct {
	Name     string
	Vertexes []Vertex
	Lines    []LineDef
	Sides    []SideDef
	Sectors  []Sector
	Things   []Thing
}

// decodeLump reads a whole lump as consecutive little-endian records,
// failing when the lump length is not an exact multiple of the stride.
func decodeLump[T any](data []byte, lumpName string) ([]T, error) {
	var zero T
	stride := binary.Size(zero)
	if len(data)%stride != 0 {
		return nil, &CorruptLumpError{Lump: lumpName, Length: len(data), Stride: stride}
	}
	out := make([]T, len(data)/stride)
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, out); err != nil {
		return nil, errors.Wrapf(err, "decode %s", lumpName)
	}
	return out, nil
}

func mapLump(a *Archive, mapName, lumpName string) ([]byte, error) {
	data, ok, err := a.lumpInRun(mapName, lumpName)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Errorf("map %q has no %s lump", mapName, lumpName)
	}
	return data, nil
}

// DecodeMap interprets the named map's lump run into typed arrays.
// Cross-reference indices are stored as-is; they are validated when the
// lifter dereferences them, so lumps may be decoded in any order.
func DecodeMap(a *Archive, mapName string) (*Level, error) {
	level := &Level{Name: mapName}

	data, err := mapLump(a, mapName, "VERTEXES")
	if err != nil {
		return nil, err
	}
	binVerts, err := decodeLump[binVertex](data, "VERTEXES")
	if err != nil {
		return nil, err
	}
	level.Vertexes = make([]Vertex, len(binVerts))
	for i, v := range binVerts {
		level.Vertexes[i] = Vertex{X: float64(v.X), Y: float64(v.Y)}
	}

	data, err = mapLump(a, mapName, "LINEDEFS")
	if err != nil {
		return nil, err
	}
	binLines, err := decodeLump[binLine](data, "LINEDEFS")
	if err != nil {
		return nil, err
	}
	level.Lines = make([]LineDef, len(binLines))
	for i, l := range binLines {
		level.Lines[i] = LineDef{
			V1:            int(l.V1),
			V2:            int(l.V2),
			Impassable:    l.Flags&0x01 != 0,
			BlockMonsters: l.Flags&0x02 != 0,
			TwoSided:      l.Flags&0x04 != 0,
			UpperUnpegged: l.Flags&0x08 != 0,
			LowerUnpegged: l.Flags&0x10 != 0,
			Secret:        l.Flags&0x20 != 0,
			BlocksSound:   l.Flags&0x40 != 0,
			NeverMap:      l.Flags&0x80 != 0,
			AlwaysMap:     l.Flags&0x100 != 0,
			Special:       int(l.Special),
			Tag:           int(l.Tag),
			FrontSide:     sideIndex(l.SideR),
			BackSide:      sideIndex(l.SideL),
		}
	}

	data, err = mapLump(a, mapName, "SIDEDEFS")
	if err != nil {
		return nil, err
	}
	binSides, err := decodeLump[binSide](data, "SIDEDEFS")
	if err != nil {
		return nil, err
	}
	level.Sides = make([]SideDef, len(binSides))
	for i, s := range binSides {
		level.Sides[i] = SideDef{
			XOffset:    float64(s.XOffset),
			YOffset:    float64(s.YOffset),
			UpperName:  textureName(s.UpperTexture),
			LowerName:  textureName(s.LowerTexture),
			MiddleName: textureName(s.MiddleTexture),
			Sector:     int(s.SectorNum),
		}
	}

	data, err = mapLump(a, mapName, "SECTORS")
	if err != nil {
		return nil, err
	}
	binSectors, err := decodeLump[binSector](data, "SECTORS")
	if err != nil {
		return nil, err
	}
	level.Sectors = make([]Sector, len(binSectors))
	for i, s := range binSectors {
		level.Sectors[i] = Sector{
			FloorHeight:   float64(s.FloorHeight),
			CeilingHeight: float64(s.CeilingHeight),
			FloorName:     s.FloorTexture.String(),
			CeilName:      s.CeilingTexture.String(),
			LightLevel:    int(s.LightLevel),
			Special:       int(s.Special),
			Tag:           int(s.Tag),
		}
	}

	data, err = mapLump(a, mapName, "THINGS")
	if err != nil {
		return nil, err
	}
	binThings, err := decodeLump[binThing](data, "THINGS")
	if err != nil {
		return nil, err
	}
	level.Things = make([]Thing, len(binThings))
	for i, t := range binThings {
		level.Things[i] = Thing{
			X:               float64(t.X),
			Y:               float64(t.Y),
			Angle:           degreesToRadians(t.Angle),
			Type:            int(t.Type),
			Skill12:         t.Options&0x01 != 0,
			Skill3:          t.Options&0x02 != 0,
			Skill45:         t.Options&0x04 != 0,
			Ambush:          t.Options&0x08 != 0,
			MultiplayerOnly: t.Options&0x10 != 0,
		}
	}

	logger.Printf("decoded %s: %d vertexes, %d lines, %d sides, %d sectors, %d things",
		mapName, len(level.Vertexes), len(level.Lines), len(level.Sides),
		len(level.Sectors), len(level.Things))
	return level, nil
}

func sideIndex(raw uint16) int {
	if raw == 0xFFFF {
		return NoSide
	}
	return int(raw)
}

// textureName maps the on-disk "no texture" marker "-" to the empty
// string.
func textureName(s String8) string {
	name := s.String()
	if name == "-" {
		return ""
	}
	return name
}

// PlayerStart returns the player 1 spawn thing, if the map has one.
func (l *Level) PlayerStart() (Thing, bool) {
	for _, t := range l.Things {
		if t.Type == ThingPlayer1Start {
			return t, true
		}
	}
	return Thing{}, false
}

// FloorHeightAt estimates the floor height under a map point by finding
// the nearest linedef and taking the sector on the point's side of it.
// Good enough to seed the camera's eye height without a BSP walk.
func (l *Level) FloorHeightAt(x, y float64) float64 {
	bestDist := math.Inf(1)
	height := 0.0
	for i := range l.Lines {
		line := &l.Lines[i]
		if line.V1 < 0 || line.V1 >= len(l.Vertexes) || line.V2 < 0 || line.V2 >= len(l.Vertexes) {
			continue
		}
		v1, v2 := l.Vertexes[line.V1], l.Vertexes[line.V2]
		dx, dy := v2.X-v1.X, v2.Y-v1.Y
		lenSq := dx*dx + dy*dy
		if lenSq == 0 {
			continue
		}
		t := clampFloat(((x-v1.X)*dx+(y-v1.Y)*dy)/lenSq, 0, 1)
		px, py := v1.X+t*dx, v1.Y+t*dy
		dist := math.Hypot(x-px, y-py)
		if dist >= bestDist {
			continue
		}
		// Right of V1->V2 is the front side.
		sideIdx := line.FrontSide
		if dx*(y-v1.Y)-dy*(x-v1.X) > 0 && line.BackSide != NoSide {
			sideIdx = line.BackSide
		}
		if sideIdx == NoSide || sideIdx >= len(l.Sides) {
			continue
		}
		sector := l.Sides[sideIdx].Sector
		if sector < 0 || sector >= len(l.Sectors) {
			continue
		}
		bestDist = dist
		height = l.Sectors[sector].FloorHeight
	}
	return height
}

// Bounds returns the axis-aligned extent of the map's vertices.
func (l *Level) Bounds() (minX, minY, maxX, maxY float64) {
	if len(l.Vertexes) == 0 {
		return 0, 0, 0, 0
	}
	minX, minY = l.Vertexes[0].X, l.Vertexes[0].Y
	maxX, maxY = minX, minY
	for _, v := range l.Vertexes[1:] {
		minX = min(minX, v.X)
		maxX = max(maxX, v.X)
		minY = min(minY, v.Y)
		maxY = max(maxY, v.Y)
	}
	return minX, minY, maxX, maxY
}
