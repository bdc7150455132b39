package gv

import "errors"

var (
	// ErrSizeOverflow indicates a size or dimension exceeds supported limits.
	ErrSizeOverflow = errors.New("size overflow")
	// ErrInvalidFormat indicates an unsupported texture format.
	ErrInvalidFormat = errors.New("invalid format")
	// ErrInvalidDimensions indicates zero or negative frame dimensions.
	ErrInvalidDimensions = errors.New("invalid dimensions")
	// ErrOpenFile indicates a GV file open failed.
	ErrOpenFile = errors.New("open file failed")
	// ErrCreateFile indicates output file creation failed.
	ErrCreateFile = errors.New("create file failed")
	// ErrRemoveFile indicates removing a partial output failed.
	ErrRemoveFile = errors.New("remove file failed")
	// ErrHeaderNotWritten indicates a frame was appended before the header.
	ErrHeaderNotWritten = errors.New("header not written")
	// ErrHeaderWritten indicates the header was written twice.
	ErrHeaderWritten = errors.New("header already written")
	// ErrWriteHeader indicates the header write failed.
	ErrWriteHeader = errors.New("writing header failed")
	// ErrWriteFrame indicates a frame payload write failed.
	ErrWriteFrame = errors.New("writing frame payload failed")
	// ErrWriteTable indicates the address table write failed.
	ErrWriteTable = errors.New("writing address table failed")
	// ErrWriterClosed indicates an operation on a finalized or aborted writer.
	ErrWriterClosed = errors.New("writer closed")
	// ErrReadHeader indicates the header read failed.
	ErrReadHeader = errors.New("reading header failed")
	// ErrReadTable indicates the address table read failed.
	ErrReadTable = errors.New("reading address table failed")
	// ErrTableMismatch indicates address entries that are not contiguous.
	ErrTableMismatch = errors.New("address table mismatch")
	// ErrTruncatedFile indicates a GV file shorter than its own bookkeeping.
	ErrTruncatedFile = errors.New("truncated file")
	// ErrFrameIndex indicates a frame index out of range.
	ErrFrameIndex = errors.New("frame index out of range")
	// ErrReadFrame indicates a frame payload read failed.
	ErrReadFrame = errors.New("reading frame payload failed")
	// ErrLZ4Compress indicates LZ4 compression failed.
	ErrLZ4Compress = errors.New("LZ4 compression failed")
	// ErrLZ4Decode indicates LZ4 decompression failed.
	ErrLZ4Decode = errors.New("LZ4 decompression failed")
	// ErrFrameSizeMismatch indicates a decompressed frame of unexpected size.
	ErrFrameSizeMismatch = errors.New("frame size mismatch")
	// ErrBlockCompress indicates DXT block compression failed.
	ErrBlockCompress = errors.New("block compression failed")
	// ErrBlockDecode indicates DXT block decompression failed.
	ErrBlockDecode = errors.New("block decompression failed")
	// ErrDecodeImage indicates a source image cannot be read or decoded.
	ErrDecodeImage = errors.New("decode image failed")
	// ErrDimensionMismatch indicates a frame sized differently than the first.
	ErrDimensionMismatch = errors.New("frame dimension mismatch")
	// ErrCancelled indicates the encode stopped at a batch boundary.
	ErrCancelled = errors.New("encode cancelled")
	// ErrListImages indicates the input directory scan failed.
	ErrListImages = errors.New("list images failed")
)
