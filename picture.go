package doomsie3d

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"
)

type binPictureHeader struct {
	Width, Height, LeftOffset, TopOffset int16
}

// transparentIndex fills picture cells no post covers; composition skips
// it so underlying patches show through.
const transparentIndex = 0xFF

// picture is the Doom patch image format: per-column runs ("posts") of
// palette-indexed pixels with gaps.
type picture struct {
	name          string
	width, height int
	columns       [][]byte // column-major, transparentIndex where uncovered
}

// decodePicture expands a picture lump's posts into rectangular columns.
func decodePicture(name string, lump []byte) (*picture, error) {
	rd := bytes.NewReader(lump)
	var header binPictureHeader
	if err := binary.Read(rd, binary.LittleEndian, &header); err != nil {
		return nil, errors.Wrapf(err, "picture %q header", name)
	}
	if header.Width <= 0 || header.Height <= 0 {
		return nil, errors.Errorf("picture %q has size %dx%d", name, header.Width, header.Height)
	}

	columns := make([][]byte, header.Width)
	for i := range columns {
		columns[i] = make([]byte, header.Height)
		for j := range columns[i] {
			columns[i][j] = transparentIndex
		}
	}

	offsets := make([]int32, header.Width)
	if err := binary.Read(rd, binary.LittleEndian, offsets); err != nil {
		return nil, errors.Wrapf(err, "picture %q column offsets", name)
	}

	for columnIndex, start := range offsets {
		offset := int(start)
		if offset < 0 {
			return nil, errors.Errorf("picture %q column %d has negative offset %d", name, columnIndex, offset)
		}
		for {
			if offset >= len(lump) {
				return nil, errors.Errorf("picture %q column %d runs past lump end", name, columnIndex)
			}
			topDelta := int(lump[offset])
			offset++
			if topDelta == 255 {
				break
			}
			if offset+1 >= len(lump) {
				return nil, errors.Errorf("picture %q column %d truncated post", name, columnIndex)
			}
			numPixels := int(lump[offset])
			offset += 2 // length byte plus padding
			if offset+numPixels+1 > len(lump) {
				return nil, errors.Errorf("picture %q column %d truncated post", name, columnIndex)
			}
			for i := 0; i < numPixels; i++ {
				if y := topDelta + i; y < int(header.Height) {
					columns[columnIndex][y] = lump[offset]
				}
				offset++
			}
			offset++ // trailing padding
		}
	}

	return &picture{
		name:    name,
		width:   int(header.Width),
		height:  int(header.Height),
		columns: columns,
	}, nil
}
