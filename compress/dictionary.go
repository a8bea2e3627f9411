package compress

import (
	"fmt"
	"io"
	"os"
)

// LoadDictionary reads the last historySize bytes of path (the whole file
// if shorter) to seed the first block's history. A nil/empty path is not an
// error; it simply means no dictionary.
func LoadDictionary(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDictionary, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDictionary, err)
	}

	size := info.Size()
	if size > historySize {
		if _, err := f.Seek(size-historySize, io.SeekStart); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDictionary, err)
		}
		size = historySize
	}

	buf := make([]byte, size)
	if _, err := io.ReadFull(f, buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDictionary, err)
	}
	return buf, nil
}
