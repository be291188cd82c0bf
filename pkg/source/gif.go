package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

// gifChunkSize is the read size used while sniffing GIF files.
const gifChunkSize = 100 * 1024

// frameHeaderPrefix starts a graphic control extension block. A full
// header is the prefix, four payload bytes, a zero terminator and either
// an image descriptor (0x2C) or another extension (0x21).
var frameHeaderPrefix = []byte{0x00, 0x21, 0xF9, 0x04}

const frameHeaderLen = 10

// IsAnimatedGIF opens the file at path and reports whether it carries at
// least two frame headers. This is a heuristic, not a GIF parser.
func IsAnimatedGIF(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("open gif: %w", err)
	}
	defer f.Close()
	return ScanAnimatedGIF(f)
}

// ScanAnimatedGIF reads r in 100 KiB chunks and stops once two frame
// headers were seen or the stream ends.
func ScanAnimatedGIF(r io.Reader) (bool, error) {
	buf := make([]byte, frameHeaderLen-1+gifChunkSize)
	carry := 0
	count := 0
	for count < 2 {
		n, err := io.ReadFull(r, buf[carry:carry+gifChunkSize])
		if n > 0 {
			window := buf[:carry+n]
			// The carried tail is shorter than a header, so every match
			// found here is new.
			count += countFrameHeaders(window, 2-count)
			carry = min(frameHeaderLen-1, len(window))
			copy(buf, window[len(window)-carry:])
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return false, fmt.Errorf("read gif: %w", err)
		}
	}
	return count >= 2, nil
}

// countFrameHeaders counts non-overlapping headers in data, up to limit.
func countFrameHeaders(data []byte, limit int) int {
	count := 0
	for i := 0; count < limit; {
		idx := bytes.Index(data[i:], frameHeaderPrefix)
		if idx < 0 {
			break
		}
		start := i + idx
		if start+frameHeaderLen > len(data) {
			break
		}
		if data[start+8] == 0x00 && (data[start+9] == 0x2C || data[start+9] == 0x21) {
			count++
			i = start + frameHeaderLen
			continue
		}
		i = start + 1
	}
	return count
}
