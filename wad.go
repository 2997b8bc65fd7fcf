// Package doomsie3d reads classic Doom WAD map archives and renders the
// described level as a textured first-person view in a software
// framebuffer. The WAD file format is documented in The Unofficial DOOM
// Specs: http://www.gamers.org/dhs/helpdocs/dmsp1666.html
package doomsie3d

import (
	"bytes"
	"encoding/binary"
	"os"

	"github.com/pkg/errors"
)

const (
	headerSize   = 12
	dirEntrySize = 16
)

// String8 is the WAD eight-character name type, null-padded for short
// names.
type String8 [8]byte

func (s String8) String() string {
	i := bytes.IndexByte(s[:], 0)
	if i == -1 {
		i = len(s)
	}
	return string(s[:i])
}

func makeString8(s string) String8 {
	var out String8
	copy(out[:], s)
	return out
}

type binArchiveHeader struct {
	Magic        [4]byte
	NumLumps     int32
	InfoTableOfs int32
}

type binDirEntry struct {
	Filepos int32
	Size    int32
	Name    String8
}

// DirEntry is one lump directory entry, in original directory order.
type DirEntry struct {
	Name   string
	Offset int
	Length int
}

// Archive is an opened WAD held fully in memory. It is immutable after
// OpenArchive returns.
type Archive struct {
	Kind string // "IWAD" or "PWAD"
	data []byte
	dir  []DirEntry
	last map[string]int // name -> highest directory index
}

// Names of the lumps that make up one map's contiguous directory run,
// in the order the id tools wrote them.
var mapLumpNames = map[string]bool{
	"THINGS": true, "LINEDEFS": true, "SIDEDEFS": true, "VERTEXES": true,
	"SEGS": true, "SSECTORS": true, "NODES": true, "SECTORS": true,
	"REJECT": true, "BLOCKMAP": true,
}

// OpenArchive decodes the WAD container: header, lump directory, bounds
// checks. Lump payloads are not interpreted here.
func OpenArchive(data []byte) (*Archive, error) {
	var hdr binArchiveHeader
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &hdr); err != nil {
		return nil, errors.Wrap(err, "read wad header")
	}
	magic := string(hdr.Magic[:])
	if magic != "IWAD" && magic != "PWAD" {
		return nil, &FormatError{Magic: hdr.Magic}
	}

	numLumps := int(hdr.NumLumps)
	dirOfs := int(hdr.InfoTableOfs)
	if numLumps < 0 || dirOfs < 0 || dirOfs+numLumps*dirEntrySize > len(data) {
		return nil, &TruncatedArchiveError{
			Lump:        "(directory)",
			Offset:      dirOfs,
			Length:      numLumps * dirEntrySize,
			ArchiveSize: len(data),
		}
	}

	a := &Archive{
		Kind: magic,
		data: data,
		dir:  make([]DirEntry, numLumps),
		last: make(map[string]int, numLumps),
	}
	rd := bytes.NewReader(data[dirOfs:])
	for i := 0; i < numLumps; i++ {
		var bin binDirEntry
		if err := binary.Read(rd, binary.LittleEndian, &bin); err != nil {
			return nil, errors.Wrapf(err, "read directory entry %d", i)
		}
		e := DirEntry{Name: bin.Name.String(), Offset: int(bin.Filepos), Length: int(bin.Size)}
		if e.Offset < 0 || e.Length < 0 || e.Offset+e.Length > len(data) {
			return nil, &TruncatedArchiveError{
				Lump:        e.Name,
				Offset:      e.Offset,
				Length:      e.Length,
				ArchiveSize: len(data),
			}
		}
		a.dir[i] = e
		a.last[e.Name] = i
	}
	logger.Printf("opened %s: %d lumps", magic, numLumps)
	return a, nil
}

// OpenArchiveFile reads the whole file into memory and opens it.
func OpenArchiveFile(path string) (*Archive, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open wad %q", path)
	}
	return OpenArchive(data)
}

// NumLumps returns the directory entry count.
func (a *Archive) NumLumps() int {
	return len(a.dir)
}

// Dir returns the lump directory in original order. Callers must not
// modify it.
func (a *Archive) Dir() []DirEntry {
	return a.dir
}

// Lump returns the byte range of the last directory entry with the given
// name, per Doom's later-entries-override convention.
func (a *Archive) Lump(name string) ([]byte, bool) {
	i, ok := a.last[name]
	if !ok {
		return nil, false
	}
	return a.lumpAt(i), true
}

func (a *Archive) lumpAt(i int) []byte {
	e := a.dir[i]
	return a.data[e.Offset : e.Offset+e.Length]
}

// LumpsBetween returns the directory entries strictly between the two
// marker lumps, e.g. F_START/F_END for flats. Markers resolve with the
// same last-match rule as Lump.
func (a *Archive) LumpsBetween(startMarker, endMarker string) []DirEntry {
	start, ok := a.last[startMarker]
	if !ok {
		return nil
	}
	var out []DirEntry
	for i := start + 1; i < len(a.dir); i++ {
		if a.dir[i].Name == endMarker {
			break
		}
		out = append(out, a.dir[i])
	}
	return out
}

// Maps lists the map marker lumps in directory order. A marker is any
// entry directly followed by a THINGS lump.
func (a *Archive) Maps() []string {
	var out []string
	for i := 0; i+1 < len(a.dir); i++ {
		if a.dir[i+1].Name == "THINGS" {
			out = append(out, a.dir[i].Name)
		}
	}
	return out
}

// mapRun returns the directory index range (start exclusive, end
// exclusive) of the lump run belonging to the named map: the entries
// after the marker up to the first name that is not a map lump.
func (a *Archive) mapRun(mapName string) (int, int, error) {
	marker, ok := a.last[mapName]
	if !ok {
		return 0, 0, errors.Errorf("map %q not found", mapName)
	}
	end := marker + 1
	for end < len(a.dir) && mapLumpNames[a.dir[end].Name] {
		end++
	}
	if end == marker+1 {
		return 0, 0, errors.Errorf("lump %q is not a map marker", mapName)
	}
	return marker + 1, end, nil
}

// lumpInRun resolves a lump name within a map's run, last match winning.
func (a *Archive) lumpInRun(mapName, name string) ([]byte, bool, error) {
	start, end, err := a.mapRun(mapName)
	if err != nil {
		return nil, false, err
	}
	found := -1
	for i := start; i < end; i++ {
		if a.dir[i].Name == name {
			found = i
		}
	}
	if found == -1 {
		return nil, false, nil
	}
	return a.lumpAt(found), true, nil
}
