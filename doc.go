/*
Package gv implements the GV container: a seekable, frame-indexed video file
whose frames are DXT1/DXT5 block-compressed textures, each independently
LZ4-HC compressed. The layout is a fixed 0x18-byte header, concatenated LZ4
payloads in frame order, and a trailing address table of (offset, size)
pairs, so players can memory-map the file and seek any frame in O(1).

The package covers the encoder pipeline (directory of stills, batched
parallel compression, strictly ordered writes, live progress, cooperative
cancellation), the container writer, a reader for the same format, and a
sequential job queue that drives encodes one at a time for a polling host.
*/
package gv
