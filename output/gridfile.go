package output

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"io"
	"math"

	"github.com/klauspost/compress/zstd"

	mandel "github.com/J-Feltens/Mandelbrot"
)

// gridMagic starts every raw grid file (inside the zstd stream).
var gridMagic = []byte("MBGRID1\n")

// ErrBadGrid is returned when a grid file is malformed.
var ErrBadGrid = errors.New("output: malformed grid file")

type gridHeader struct {
	Width, Height, Iterations uint32
}

// EncodeGrid writes grid and its iteration budget n as a zstd compressed
// stream: magic, little-endian uint32 width, height and n, then one uint32
// count per cell in row-major order.
func EncodeGrid(w io.Writer, grid *mandel.ResultGrid, n int) error {
	b := grid.Rect
	if n < 0 || uint64(n) > math.MaxUint32 {
		return fmt.Errorf("output: iteration budget %d does not fit the grid format", n)
	}

	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return fmt.Errorf("zstd encode: %w", err)
	}
	bw := bufio.NewWriter(enc)

	hdr := gridHeader{Width: uint32(b.Dx()), Height: uint32(b.Dy()), Iterations: uint32(n)}
	if _, err := bw.Write(gridMagic); err != nil {
		enc.Close()
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, hdr); err != nil {
		enc.Close()
		return err
	}

	row := make([]uint32, b.Dx())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			row[x-b.Min.X] = uint32(grid.At(y, x))
		}
		if err := binary.Write(bw, binary.LittleEndian, row); err != nil {
			enc.Close()
			return err
		}
	}

	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("zstd encode: %w", err)
	}
	return nil
}

// DecodeGrid reads a grid written by EncodeGrid. The grid's Rect starts at
// the origin.
func DecodeGrid(r io.Reader) (*mandel.ResultGrid, int, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, 0, fmt.Errorf("zstd decode: %w", err)
	}
	defer dec.Close()
	br := bufio.NewReader(dec)

	magic := make([]byte, len(gridMagic))
	if _, err := io.ReadFull(br, magic); err != nil {
		return nil, 0, fmt.Errorf("%w: read magic: %v", ErrBadGrid, err)
	}
	if !bytes.Equal(magic, gridMagic) {
		return nil, 0, fmt.Errorf("%w: bad magic %q", ErrBadGrid, magic)
	}

	var hdr gridHeader
	if err := binary.Read(br, binary.LittleEndian, &hdr); err != nil {
		return nil, 0, fmt.Errorf("%w: read header: %v", ErrBadGrid, err)
	}
	const maxCells = 1 << 26
	if uint64(hdr.Width)*uint64(hdr.Height) > maxCells {
		return nil, 0, fmt.Errorf("%w: %dx%d grid too large", ErrBadGrid, hdr.Width, hdr.Height)
	}

	grid := mandel.NewResultGrid(image.Rect(0, 0, int(hdr.Width), int(hdr.Height)))
	row := make([]uint32, hdr.Width)
	for y := range int(hdr.Height) {
		if err := binary.Read(br, binary.LittleEndian, row); err != nil {
			return nil, 0, fmt.Errorf("%w: read row %d: %v", ErrBadGrid, y, err)
		}
		for x, c := range row {
			if c > hdr.Iterations {
				return nil, 0, fmt.Errorf("%w: count %d at (%d,%d) exceeds budget %d", ErrBadGrid, c, y, x, hdr.Iterations)
			}
			grid.Set(y, x, int(c))
		}
	}
	return grid, int(hdr.Iterations), nil
}
