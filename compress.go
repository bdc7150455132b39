package gv

import (
	"fmt"
	"image"

	"github.com/pierrec/lz4/v4"
	"github.com/woozymasta/bcn"
)

// clusterFitQuality is the BCn refinement level used outside lite mode. The
// iterative cluster fit is slower but noticeably better on gradients.
const clusterFitQuality = 8

// encodeOptions maps the job quality toggle to BCn encoder options. Workers
// stays at 1: frames already run in parallel, one per pipeline slot.
func encodeOptions(lite bool) *bcn.EncodeOptions {
	opts := &bcn.EncodeOptions{
		QualityLevel: clusterFitQuality,
		Workers:      1,
	}
	if lite {
		opts.QualityLevel = bcn.QualityLevelFast
	}

	return opts
}

// compressBlocks DXT-compresses one RGBA frame into dst. dst must be exactly
// BlockSize(width, height, format) bytes; the codec pads partial 4x4 blocks
// internally.
func compressBlocks(img *image.NRGBA, format Format, opts *bcn.EncodeOptions, dst []byte) error {
	bcnFmt, err := format.bcnFormat()
	if err != nil {
		return err
	}

	data, _, _, err := bcn.EncodeImageWithOptions(img, bcnFmt, opts)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBlockCompress, err)
	}
	if len(data) != len(dst) {
		return fmt.Errorf("%w: expected %d, got %d", ErrFrameSizeMismatch, len(dst), len(data))
	}

	copy(dst, data)

	return nil
}

// compressFrame LZ4-HC compresses one block-compressed frame into dst and
// returns the payload length. dst must be at least
// lz4.CompressBlockBound(len(src)) bytes. Frames compress independently: no
// dictionary, no streaming state, default HC level.
func compressFrame(src, dst []byte) (int, error) {
	n, err := lz4.CompressBlockHC(src, dst, 0, nil, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrLZ4Compress, err)
	}
	if n == 0 {
		// Incompressible input. Store a literal-only LZ4 block so the
		// payload stays decodable by any LZ4 reader.
		return literalBlock(src, dst)
	}

	return n, nil
}

// literalBlock encodes src as a single LZ4 literal run with no matches.
func literalBlock(src, dst []byte) (int, error) {
	if len(src) == 0 {
		return 0, fmt.Errorf("%w: empty input", ErrLZ4Compress)
	}

	di := 0
	if len(src) < 15 {
		dst[di] = byte(len(src)) << 4
		di++
	} else {
		dst[di] = 0xF0
		di++
		for rest := len(src) - 15; ; rest -= 255 {
			if rest < 255 {
				dst[di] = byte(rest)
				di++
				break
			}
			dst[di] = 255
			di++
		}
	}

	if di+len(src) > len(dst) {
		return 0, fmt.Errorf("%w: literal block exceeds bound", ErrLZ4Compress)
	}
	copy(dst[di:], src)

	return di + len(src), nil
}

// decompressFrame inflates one LZ4 frame payload into exactly blockSize
// bytes of block-compressed texture data.
func decompressFrame(src []byte, blockSize int) ([]byte, error) {
	dst := make([]byte, blockSize)
	n, err := lz4.UncompressBlock(src, dst)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLZ4Decode, err)
	}
	if n != blockSize {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrFrameSizeMismatch, blockSize, n)
	}

	return dst, nil
}
