// Package textutil provides byte-level text utilities: binary detection and
// line counting over buffers and streams.
package textutil

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

// BinarySniffLength is the maximum number of bytes scanned for null-byte
// detection. Matches the heuristic used by Git and most editors.
const BinarySniffLength = 8000

// readChunkSize is the buffer size used when streaming a file.
const readChunkSize = 32 * 1024

// IsBinary returns true if data contains a null byte within the first
// BinarySniffLength bytes. Empty data is not binary.
func IsBinary(data []byte) bool {
	if len(data) == 0 {
		return false
	}

	sniff := data
	if len(sniff) > BinarySniffLength {
		sniff = sniff[:BinarySniffLength]
	}

	return bytes.IndexByte(sniff, 0) >= 0
}

// CountLines returns the number of newline-delimited lines in data.
// A non-empty buffer without a trailing newline counts the last partial line.
// Returns 0 for empty data.
func CountLines(data []byte) int {
	if len(data) == 0 {
		return 0
	}

	lines := bytes.Count(data, []byte{'\n'})

	if data[len(data)-1] != '\n' {
		lines++
	}

	return lines
}

// Profile summarizes a text stream.
type Profile struct {
	Binary bool
	Lines  int
	Bytes  int64
}

// ProfileReader streams r once, applying IsBinary to its head and
// CountLines semantics to the whole.
func ProfileReader(r io.Reader) (Profile, error) {
	var (
		profile Profile
		head    []byte
		last    byte
	)

	buf := make([]byte, readChunkSize)

	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := buf[:n]

			if len(head) < BinarySniffLength {
				head = append(head, chunk[:min(n, BinarySniffLength-len(head))]...)
			}

			profile.Lines += bytes.Count(chunk, []byte{'\n'})
			profile.Bytes += int64(n)
			last = chunk[n-1]
		}

		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return Profile{}, fmt.Errorf("read: %w", err)
		}
	}

	if profile.Bytes > 0 && last != '\n' {
		profile.Lines++
	}

	profile.Binary = IsBinary(head)

	return profile, nil
}

// ProfileFile opens path and profiles its content.
func ProfileFile(path string) (Profile, error) {
	file, err := os.Open(path)
	if err != nil {
		return Profile{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	return ProfileReader(file)
}
