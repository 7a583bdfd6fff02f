package source

import (
	"fmt"
	"os"
)

// OpenFile returns a Source over a debug.log on disk. Unlike a tailing
// reader it consumes the file as-is, start to finish, and stops at EOF.
func OpenFile(path string) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return newReaderSource(f, f), nil
}
