package gv

import (
	"encoding/binary"
	"fmt"
	"os"
)

// Writer emits a GV file: header first, then frame payloads in append order,
// then the address table trailer on Finalize. Abort closes and unlinks the
// partial file instead, so interrupted encodes never leave a truncated file
// behind.
type Writer struct {
	f       *os.File
	path    string
	entries []AddressEntry
	next    uint64
	began   bool
	closed  bool
}

// NewWriter creates the output file.
func NewWriter(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrCreateFile, path, err)
	}

	return &Writer{f: f, path: path, next: RawPayloadAt}, nil
}

// Path returns the output file path.
func (w *Writer) Path() string {
	return w.path
}

// WriteHeader writes the fixed header. Must be called exactly once before
// any AppendFrame.
func (w *Writer) WriteHeader(h *Header) error {
	if w.closed {
		return ErrWriterClosed
	}
	if w.began {
		return ErrHeaderWritten
	}

	if err := writeHeader(w.f, h); err != nil {
		return err
	}
	w.began = true

	return nil
}

// AppendFrame appends one LZ4 frame payload and records its address entry.
func (w *Writer) AppendFrame(payload []byte) error {
	if w.closed {
		return ErrWriterClosed
	}
	if !w.began {
		return ErrHeaderNotWritten
	}

	if _, err := w.f.Write(payload); err != nil {
		return fmt.Errorf("%w: frame %d: %v", ErrWriteFrame, len(w.entries), err)
	}

	w.entries = append(w.entries, AddressEntry{Offset: w.next, Size: uint64(len(payload))})
	w.next += uint64(len(payload))

	return nil
}

// FrameCount returns the number of frames appended so far.
func (w *Writer) FrameCount() int {
	return len(w.entries)
}

// Finalize writes the address table after the last payload and closes the
// file. On write failure the partial file is removed.
func (w *Writer) Finalize() error {
	if w.closed {
		return ErrWriterClosed
	}
	if !w.began {
		return ErrHeaderNotWritten
	}

	if err := binary.Write(w.f, binary.LittleEndian, w.entries); err != nil {
		abortErr := w.Abort()
		if abortErr != nil {
			return fmt.Errorf("%w: %v (abort: %v)", ErrWriteTable, err, abortErr)
		}
		return fmt.Errorf("%w: %v", ErrWriteTable, err)
	}

	w.closed = true
	if err := w.f.Close(); err != nil {
		if rmErr := os.Remove(w.path); rmErr != nil {
			return fmt.Errorf("%w: %v (remove: %v)", ErrWriteTable, err, rmErr)
		}
		return fmt.Errorf("%w: %v", ErrWriteTable, err)
	}

	return nil
}

// Abort closes the output and unlinks it. No address table is written.
func (w *Writer) Abort() error {
	if w.closed {
		return nil
	}
	w.closed = true

	_ = w.f.Close()
	if err := os.Remove(w.path); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrRemoveFile, w.path, err)
	}

	return nil
}
