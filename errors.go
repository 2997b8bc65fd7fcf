package doomsie3d

import "fmt"

// FormatError reports an archive whose header magic is neither IWAD nor
// PWAD. Nothing is decoded past the header.
type FormatError struct {
	Magic [4]byte
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("wad: bad magic %q", e.Magic[:])
}

// TruncatedArchiveError reports a directory entry whose byte range falls
// outside the archive.
type TruncatedArchiveError struct {
	Lump        string
	Offset      int
	Length      int
	ArchiveSize int
}

func (e *TruncatedArchiveError) Error() string {
	return fmt.Sprintf("wad: lump %q [%d:+%d] exceeds archive size %d",
		e.Lump, e.Offset, e.Length, e.ArchiveSize)
}

// CorruptLumpError reports a lump whose length is not a multiple of its
// record stride.
type CorruptLumpError struct {
	Lump   string
	Length int
	Stride int
}

func (e *CorruptLumpError) Error() string {
	return fmt.Sprintf("wad: lump %q length %d is not a multiple of record size %d",
		e.Lump, e.Length, e.Stride)
}

// DanglingReferenceError reports a cross-reference index that points past
// the end of its target array. It is recoverable: the lifter drops the
// offending line and keeps going.
type DanglingReferenceError struct {
	Kind  string
	Index int
	Count int
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("map: %s index %d out of range (have %d)", e.Kind, e.Index, e.Count)
}

// MissingTextureError reports a texture name that resolves to nothing in
// the archive. It is recoverable: the catalog substitutes a placeholder.
type MissingTextureError struct {
	Name string
}

func (e *MissingTextureError) Error() string {
	return fmt.Sprintf("texture: %q not found", e.Name)
}
