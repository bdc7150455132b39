package gv

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/woozymasta/bcn"
)

// Format identifies the GPU texture format of the payload frames. The values
// are the on-disk magics existing players recognize and must not change.
type Format uint32

const (
	// FormatDXT1 is BC1: 8 bytes per 4x4 block, no alpha.
	FormatDXT1 Format = 1
	// FormatDXT3 is BC2: 16 bytes per 4x4 block, explicit alpha. Recognized
	// for compatibility with existing files; the encoder never emits it.
	FormatDXT3 Format = 3
	// FormatDXT5 is BC3: 16 bytes per 4x4 block, interpolated alpha.
	FormatDXT5 Format = 5
)

const (
	// HeaderSize is the fixed header length in bytes.
	HeaderSize = 0x18
	// RawPayloadAt is the file offset of the first frame payload.
	RawPayloadAt = HeaderSize
	// AddressEntrySize is the on-disk size of one address table entry.
	AddressEntrySize = 16
)

func (f Format) String() string {
	switch f {
	case FormatDXT1:
		return "DXT1"
	case FormatDXT3:
		return "DXT3"
	case FormatDXT5:
		return "DXT5"
	default:
		return fmt.Sprintf("Format(%d)", uint32(f))
	}
}

// bcnFormat maps a GV format to its BCn codec format.
func (f Format) bcnFormat() (bcn.Format, error) {
	switch f {
	case FormatDXT1:
		return bcn.FormatDXT1, nil
	case FormatDXT3:
		return bcn.FormatDXT3, nil
	case FormatDXT5:
		return bcn.FormatDXT5, nil
	default:
		return bcn.FormatUnknown, fmt.Errorf("%w: %d", ErrInvalidFormat, uint32(f))
	}
}

// BlockSize returns the byte length of one frame after block compression.
// Dimensions that are not multiples of 4 round up to whole blocks.
func BlockSize(width, height int, format Format) (int, error) {
	if width <= 0 || height <= 0 {
		return 0, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}

	blocksW := (width + 3) / 4
	blocksH := (height + 3) / 4

	switch format {
	case FormatDXT1:
		return blocksW * blocksH * 8, nil
	case FormatDXT3, FormatDXT5:
		return blocksW * blocksH * 16, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrInvalidFormat, uint32(format))
	}
}

// Header is the fixed GV file header. All fields are little-endian on disk;
// FPS is an IEEE-754 binary32. BlockSize is derivable from the other fields
// but written out so decoders can size buffers without recomputing it.
type Header struct {
	Width      uint32
	Height     uint32
	FrameCount uint32
	FPS        float32
	Format     Format
	BlockSize  uint32
}

// AddressEntry locates one frame payload inside the file. Offset is absolute
// and Size is the LZ4 payload length.
type AddressEntry struct {
	Offset uint64
	Size   uint64
}

func writeHeader(w io.Writer, h *Header) error {
	if err := binary.Write(w, binary.LittleEndian, h); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteHeader, err)
	}
	return nil
}

func readHeader(r io.Reader) (*Header, error) {
	h := &Header{}
	if err := binary.Read(r, binary.LittleEndian, h); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadHeader, err)
	}

	if _, err := h.Format.bcnFormat(); err != nil {
		return nil, err
	}

	expected, err := BlockSize(int(h.Width), int(h.Height), h.Format)
	if err != nil {
		return nil, err
	}
	expected32, err := u32FromInt(expected)
	if err != nil {
		return nil, err
	}
	if expected32 != h.BlockSize {
		return nil, fmt.Errorf("%w: header %d, computed %d", ErrFrameSizeMismatch, h.BlockSize, expected)
	}

	return h, nil
}
