package gv

import (
	"bytes"
	"testing"

	"github.com/pierrec/lz4/v4"
)

func TestCompressFrameRoundTrip(t *testing.T) {
	t.Parallel()

	// Repetitive data, the common case for block-compressed frames.
	src := make([]byte, 64*1024)
	for i := range src {
		src[i] = byte((i / 64) & 0xff)
	}

	dst := make([]byte, lz4.CompressBlockBound(len(src)))
	n, err := compressFrame(src, dst)
	if err != nil {
		t.Fatalf("compressFrame: %v", err)
	}
	if n <= 0 || n >= len(src) {
		t.Fatalf("expected compression, payload %d of %d", n, len(src))
	}

	out, err := decompressFrame(dst[:n], len(src))
	if err != nil {
		t.Fatalf("decompressFrame: %v", err)
	}
	if !bytes.Equal(out, src) {
		t.Fatalf("round-trip mismatch")
	}
}

func TestCompressFrameDeterministic(t *testing.T) {
	t.Parallel()

	src := make([]byte, 8*1024)
	for i := range src {
		src[i] = byte((i*31 + 7) & 0xff)
	}

	a := make([]byte, lz4.CompressBlockBound(len(src)))
	b := make([]byte, lz4.CompressBlockBound(len(src)))

	na, err := compressFrame(src, a)
	if err != nil {
		t.Fatalf("compressFrame: %v", err)
	}
	nb, err := compressFrame(src, b)
	if err != nil {
		t.Fatalf("compressFrame: %v", err)
	}

	if !bytes.Equal(a[:na], b[:nb]) {
		t.Fatalf("identical input produced different payloads")
	}
}

func TestLiteralBlockRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		size int
	}{
		{name: "short", size: 8},
		{name: "boundary-14", size: 14},
		{name: "boundary-15", size: 15},
		{name: "extended", size: 15 + 255 + 17},
		{name: "frame-sized", size: 64 * 1024},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			src := make([]byte, tc.size)
			seed := uint32(0x9E3779B9)
			for i := range src {
				seed = seed*1664525 + 1013904223
				src[i] = byte(seed >> 24)
			}

			dst := make([]byte, lz4.CompressBlockBound(len(src)))
			n, err := literalBlock(src, dst)
			if err != nil {
				t.Fatalf("literalBlock: %v", err)
			}

			out, err := decompressFrame(dst[:n], len(src))
			if err != nil {
				t.Fatalf("decompressFrame: %v", err)
			}
			if !bytes.Equal(out, src) {
				t.Fatalf("literal block round-trip mismatch")
			}
		})
	}
}

func TestDecompressFrameSizeMismatch(t *testing.T) {
	t.Parallel()

	src := make([]byte, 256)
	dst := make([]byte, lz4.CompressBlockBound(len(src)))
	n, err := compressFrame(src, dst)
	if err != nil {
		t.Fatalf("compressFrame: %v", err)
	}

	if _, err := decompressFrame(dst[:n], len(src)+64); err == nil {
		t.Fatalf("expected size mismatch error")
	}
}
