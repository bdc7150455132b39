package gv

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"

	"github.com/woozymasta/bcn"
)

// ReadOptions configures GV reading (e.g. BCn decode workers).
type ReadOptions struct {
	// DecodeOptions are passed to the BCn decoder (e.g. Workers).
	DecodeOptions *bcn.DecodeOptions
}

// File is an open GV container. It keeps the file handle and the address
// table so any frame can be read with one seek.
type File struct {
	f       *os.File
	header  Header
	entries []AddressEntry
	opts    *ReadOptions
}

// Open opens a GV file and validates its header and address table.
func Open(path string) (*File, error) {
	return OpenWithOptions(path, nil)
}

// OpenWithOptions opens a GV file with the given options. Nil opts uses
// default decoding.
func OpenWithOptions(path string, opts *ReadOptions) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrOpenFile, path, err)
	}

	gv, err := openFile(f, opts)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	return gv, nil
}

func openFile(f *os.File, opts *ReadOptions) (*File, error) {
	header, err := readHeader(f)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadTable, err)
	}

	tableSize := int64(header.FrameCount) * AddressEntrySize
	tableAt := info.Size() - tableSize
	if tableAt < RawPayloadAt {
		return nil, fmt.Errorf("%w: %d bytes for %d frames", ErrTruncatedFile, info.Size(), header.FrameCount)
	}

	if _, err := f.Seek(tableAt, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadTable, err)
	}

	entries := make([]AddressEntry, header.FrameCount)
	if err := binary.Read(f, binary.LittleEndian, entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadTable, err)
	}

	next := uint64(RawPayloadAt)
	for i, entry := range entries {
		if entry.Offset != next {
			return nil, fmt.Errorf("%w: frame %d at %d, expected %d", ErrTableMismatch, i, entry.Offset, next)
		}
		next += entry.Size
	}
	if next != uint64(tableAt) {
		return nil, fmt.Errorf("%w: payload ends at %d, table at %d", ErrTableMismatch, next, tableAt)
	}

	return &File{f: f, header: *header, entries: entries, opts: opts}, nil
}

// Header returns a copy of the file header.
func (g *File) Header() Header {
	return g.header
}

// Config returns the frame dimensions and color model.
func (g *File) Config() image.Config {
	return image.Config{
		Width:      int(g.header.Width),
		Height:     int(g.header.Height),
		ColorModel: color.RGBAModel,
	}
}

// FrameCount returns the number of frames in the file.
func (g *File) FrameCount() int {
	return len(g.entries)
}

// ReadFrame reads and LZ4-decompresses frame i, returning BlockSize bytes of
// block-compressed texture data ready for GPU upload.
func (g *File) ReadFrame(i int) ([]byte, error) {
	if i < 0 || i >= len(g.entries) {
		return nil, fmt.Errorf("%w: %d of %d", ErrFrameIndex, i, len(g.entries))
	}

	entry := g.entries[i]
	payload := make([]byte, entry.Size)
	// #nosec G115 -- offsets validated against file size on open.
	if _, err := g.f.ReadAt(payload, int64(entry.Offset)); err != nil {
		return nil, fmt.Errorf("%w: frame %d: %v", ErrReadFrame, i, err)
	}

	return decompressFrame(payload, int(g.header.BlockSize))
}

// DecodeFrame reads frame i and decompresses the texture blocks back into an
// RGBA image.
func (g *File) DecodeFrame(i int) (image.Image, error) {
	blocks, err := g.ReadFrame(i)
	if err != nil {
		return nil, err
	}

	bcnFmt, err := g.header.Format.bcnFormat()
	if err != nil {
		return nil, err
	}

	decOpts := (*bcn.DecodeOptions)(nil)
	if g.opts != nil {
		decOpts = g.opts.DecodeOptions
	}

	img, err := bcn.DecodeImageWithOptions(blocks, int(g.header.Width), int(g.header.Height), bcnFmt, decOpts)
	if err != nil {
		return nil, fmt.Errorf("%w: frame %d: %v", ErrBlockDecode, i, err)
	}

	return img, nil
}

// Close closes the underlying file.
func (g *File) Close() error {
	return g.f.Close()
}
