package doomsie3d

import (
	"bytes"
	"encoding/binary"
	"image/color"
	"math"

	"github.com/aquilax/go-perlin"
	"github.com/pkg/errors"
)

const (
	flatWidth, flatHeight = 64, 64
	flatBytes             = flatWidth * flatHeight
)

// RGB is one PLAYPAL palette entry.
type RGB struct {
	R, G, B uint8
}

// Palette maps 8-bit pixel values to colors. Only the first of
// PLAYPAL's fourteen palettes is used; the others are damage/item
// flashes.
type Palette [256]RGB

// TextureImage is a fully decoded, sampleable image. The catalog owns
// the canonical instance; wall quads reference it by slot and never
// mutate it.
type TextureImage struct {
	Name          string
	Width, Height int
	Pix           []byte // RGBA, row-major
}

func (t *TextureImage) At(x, y int) color.RGBA {
	i := (wrapIndex(y, t.Height)*t.Width + wrapIndex(x, t.Width)) * 4
	return color.RGBA{R: t.Pix[i], G: t.Pix[i+1], B: t.Pix[i+2], A: t.Pix[i+3]}
}

// Sample wraps normalized coordinates in both axes; u=1.5 samples the
// same texel as u=0.5.
func (t *TextureImage) Sample(u, v float64) color.RGBA {
	return t.At(int(math.Floor(u*float64(t.Width))), int(math.Floor(v*float64(t.Height))))
}

// SampleTexel wraps texel-space coordinates, e.g. u=96 on a 64-wide
// texture samples column 32.
func (t *TextureImage) SampleTexel(u, v float64) color.RGBA {
	return t.At(int(math.Floor(u)), int(math.Floor(v)))
}

func (t *TextureImage) setIndexed(x, y int, idx byte, pal *Palette) {
	c := pal[idx]
	i := (y*t.Width + x) * 4
	t.Pix[i], t.Pix[i+1], t.Pix[i+2], t.Pix[i+3] = c.R, c.G, c.B, 0xFF
}

type binTextureHeader struct {
	Name       String8
	Masked     int32
	Width      int16
	Height     int16
	ColumnDir  int32 // unused on disk
	NumPatches int16
}

type binTexturePatch struct {
	XOffset  int16
	YOffset  int16
	PatchIdx int16
	StepDir  int16 // unused
	ColorMap int16 // unused
}

type patchPlacement struct {
	x, y     int
	patchIdx int
}

type textureDef struct {
	masked        bool
	width, height int
	patches       []patchPlacement
}

// Catalog resolves texture and flat names into shared, immutable
// TextureImages. Resolution is memoized; unknown names substitute a
// placeholder instead of failing the load.
type Catalog struct {
	archive    *Archive
	palette    Palette
	patchNames []string
	texDefs    map[string]textureDef
	flatIndex  map[string]int // flat name -> directory index

	cache       map[string]*TextureImage
	pics        map[string]*picture
	slots       []*TextureImage
	slotIndex   map[string]int
	placeholder *TextureImage
	missing     []string
}

// NewCatalog decodes the archive's palette, patch table, texture
// definitions and flat directory. Individual images decode lazily on
// first Resolve.
func NewCatalog(a *Archive) (*Catalog, error) {
	c := &Catalog{
		archive:   a,
		texDefs:   make(map[string]textureDef),
		flatIndex: make(map[string]int),
		cache:     make(map[string]*TextureImage),
		pics:      make(map[string]*picture),
		slotIndex: make(map[string]int),
	}

	if data, ok := a.Lump("PLAYPAL"); ok && len(data) >= 256*3 {
		for i := range c.palette {
			c.palette[i] = RGB{R: data[i*3], G: data[i*3+1], B: data[i*3+2]}
		}
	} else {
		// A PWAD without PLAYPAL still renders; a gray ramp keeps
		// indexed pixels distinguishable.
		logger.Printf("no PLAYPAL lump, using grayscale palette")
		for i := range c.palette {
			c.palette[i] = RGB{R: uint8(i), G: uint8(i), B: uint8(i)}
		}
	}

	if err := c.readPatchNames(); err != nil {
		return nil, err
	}
	if err := c.readTextureDefs(); err != nil {
		return nil, err
	}
	if start, ok := a.last["F_START"]; ok {
		for i, e := range a.LumpsBetween("F_START", "F_END") {
			if e.Length == 0 {
				continue // nested marker
			}
			c.flatIndex[e.Name] = start + 1 + i
		}
	}

	c.placeholder = makePlaceholder()
	c.slots = append(c.slots, c.placeholder) // slot 0, the empty name
	logger.Printf("catalog: %d textures, %d flats, %d patch names",
		len(c.texDefs), len(c.flatIndex), len(c.patchNames))
	return c, nil
}

func (c *Catalog) readPatchNames() error {
	data, ok := c.archive.Lump("PNAMES")
	if !ok {
		return nil
	}
	rd := bytes.NewReader(data)
	var count uint32
	if err := binary.Read(rd, binary.LittleEndian, &count); err != nil {
		return errors.Wrap(err, "PNAMES header")
	}
	names := make([]String8, count)
	if err := binary.Read(rd, binary.LittleEndian, names); err != nil {
		return errors.Wrap(err, "PNAMES body")
	}
	c.patchNames = make([]string, count)
	for i, n := range names {
		c.patchNames[i] = n.String()
	}
	return nil
}

// readTextureDefs indexes TEXTURE1..TEXTURE9 composition tables without
// decoding any pixels.
func (c *Catalog) readTextureDefs() error {
	for n := 1; n <= 9; n++ {
		name := "TEXTURE" + string(rune('0'+n))
		lump, ok := c.archive.Lump(name)
		if !ok {
			continue
		}
		rd := bytes.NewReader(lump)
		var count int32
		if err := binary.Read(rd, binary.LittleEndian, &count); err != nil {
			return errors.Wrapf(err, "%s header", name)
		}
		if count < 0 {
			return errors.Errorf("%s: negative definition count %d", name, count)
		}
		offsets := make([]int32, count)
		if err := binary.Read(rd, binary.LittleEndian, offsets); err != nil {
			return errors.Wrapf(err, "%s offsets", name)
		}
		for _, offset := range offsets {
			if offset < 0 || int(offset) >= len(lump) {
				return errors.Errorf("%s: definition offset %d out of range", name, offset)
			}
			hd := bytes.NewReader(lump[offset:])
			var header binTextureHeader
			if err := binary.Read(hd, binary.LittleEndian, &header); err != nil {
				return errors.Wrapf(err, "%s definition at %d", name, offset)
			}
			if header.Width <= 0 || header.Height <= 0 {
				return errors.Errorf("%s: texture %q has size %dx%d", name, header.Name, header.Width, header.Height)
			}
			if header.NumPatches < 0 {
				return errors.Errorf("%s: texture %q has %d patches", name, header.Name, header.NumPatches)
			}
			binPatches := make([]binTexturePatch, header.NumPatches)
			if err := binary.Read(hd, binary.LittleEndian, binPatches); err != nil {
				return errors.Wrapf(err, "%s patches for %q", name, header.Name)
			}
			def := textureDef{
				masked: header.Masked != 0,
				width:  int(header.Width),
				height: int(header.Height),
			}
			for _, p := range binPatches {
				def.patches = append(def.patches, patchPlacement{
					x: int(p.XOffset), y: int(p.YOffset), patchIdx: int(p.PatchIdx),
				})
			}
			// Last definition wins across TEXTURE lumps, matching the
			// directory's own override rule.
			c.texDefs[header.Name.String()] = def
		}
	}
	return nil
}

// Resolve returns the canonical image for a name, decoding it on first
// use. Unknown names return the shared placeholder; the miss is logged
// and recorded, never surfaced to the frame path.
func (c *Catalog) Resolve(name string) *TextureImage {
	if name == "" {
		return c.placeholder
	}
	if img, ok := c.cache[name]; ok {
		return img
	}
	img, err := c.decode(name)
	if err != nil {
		logger.Printf("texture: %v, substituting placeholder", err)
		c.missing = append(c.missing, name)
		img = c.placeholder
	}
	c.cache[name] = img
	return img
}

func (c *Catalog) decode(name string) (*TextureImage, error) {
	if def, ok := c.texDefs[name]; ok {
		return c.composeTexture(name, def)
	}
	if i, ok := c.flatIndex[name]; ok {
		return c.decodeFlat(c.archive.dir[i])
	}
	return nil, &MissingTextureError{Name: name}
}

// composeTexture blits each referenced patch picture onto the texture
// canvas at its stored offset, then expands palette indices to RGBA.
func (c *Catalog) composeTexture(name string, def textureDef) (*TextureImage, error) {
	canvas := make([]byte, def.width*def.height)
	for _, p := range def.patches {
		if p.patchIdx < 0 || p.patchIdx >= len(c.patchNames) {
			return nil, errors.Errorf("texture %q references patch %d of %d", name, p.patchIdx, len(c.patchNames))
		}
		pic, err := c.patchPicture(c.patchNames[p.patchIdx])
		if err != nil {
			return nil, errors.Wrapf(err, "texture %q", name)
		}
		for px := 0; px < pic.width; px++ {
			x := p.x + px
			if x < 0 || x >= def.width {
				continue
			}
			for py := 0; py < pic.height; py++ {
				y := p.y + py
				if y < 0 || y >= def.height {
					continue
				}
				if idx := pic.columns[px][py]; idx != transparentIndex {
					canvas[y*def.width+x] = idx
				}
			}
		}
	}

	img := &TextureImage{Name: name, Width: def.width, Height: def.height,
		Pix: make([]byte, def.width*def.height*4)}
	for y := 0; y < def.height; y++ {
		for x := 0; x < def.width; x++ {
			img.setIndexed(x, y, canvas[y*def.width+x], &c.palette)
		}
	}
	return img, nil
}

func (c *Catalog) patchPicture(name string) (*picture, error) {
	if pic, ok := c.pics[name]; ok {
		return pic, nil
	}
	lump, ok := c.archive.Lump(name)
	if !ok {
		return nil, &MissingTextureError{Name: name}
	}
	pic, err := decodePicture(name, lump)
	if err != nil {
		return nil, err
	}
	c.pics[name] = pic
	return pic, nil
}

// decodeFlat expands a 64x64 floor/ceiling grid. Flats have no header;
// a wrong-size lump is corrupt.
func (c *Catalog) decodeFlat(e DirEntry) (*TextureImage, error) {
	data := c.archive.data[e.Offset : e.Offset+e.Length]
	if len(data) != flatBytes {
		return nil, &CorruptLumpError{Lump: e.Name, Length: len(data), Stride: flatBytes}
	}
	img := &TextureImage{Name: e.Name, Width: flatWidth, Height: flatHeight,
		Pix: make([]byte, flatBytes*4)}
	for y := 0; y < flatHeight; y++ {
		for x := 0; x < flatWidth; x++ {
			img.setIndexed(x, y, data[y*flatWidth+x], &c.palette)
		}
	}
	return img, nil
}

// SlotOf assigns a stable integer handle for a texture name, resolving
// it once. The frame path then looks textures up by slot, never by
// string. The empty name maps to the reserved placeholder slot, so a
// texture that happens to share the placeholder's name keeps its own
// slot.
func (c *Catalog) SlotOf(name string) int {
	if name == "" {
		return 0
	}
	if slot, ok := c.slotIndex[name]; ok {
		return slot
	}
	img := c.Resolve(name)
	c.slots = append(c.slots, img)
	slot := len(c.slots) - 1
	c.slotIndex[name] = slot
	return slot
}

// BySlot returns the image for a handle issued by SlotOf. Slots from
// some other catalog fall back to the placeholder rather than crash the
// frame.
func (c *Catalog) BySlot(slot int) *TextureImage {
	if slot < 0 || slot >= len(c.slots) {
		return c.placeholder
	}
	return c.slots[slot]
}

// Missing lists names that resolved to the placeholder, for diagnostics.
func (c *Catalog) Missing() []string {
	return c.missing
}

// Placeholder returns the image substituted for unresolvable names.
func (c *Catalog) Placeholder() *TextureImage {
	return c.placeholder
}

// makePlaceholder builds the stand-in for missing textures: a gray
// checker with perlin marbling, loud enough to spot in-game without
// being an eyesore.
func makePlaceholder() *TextureImage {
	const size = 64
	img := &TextureImage{Name: "MISSING", Width: size, Height: size,
		Pix: make([]byte, size*size*4)}
	noise := perlin.NewPerlin(2, 2, 3, 1989)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			base := uint8(96)
			if (x/8+y/8)%2 == 0 {
				base = 160
			}
			n := noise.Noise2D(float64(x)/size*4, float64(y)/size*4) // [-1,1]
			v := uint8(clampFloat(float64(base)+n*48, 0, 255))
			i := (y*size + x) * 4
			img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = v, v/2, v, 0xFF
		}
	}
	return img
}
