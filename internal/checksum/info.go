package checksum

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Info describes a cache file on disk.
type Info struct {
	Path        string
	SizeBytes   int64
	Version     string
	RunID       string
	GeneratedAt time.Time
	Algorithm   Algorithm
	Entries     int
	Summaries   int // Entries carrying a stored summary
}

// Stat reads the cache file at path without loading it into a Cache.
// A missing file returns an error satisfying os.IsNotExist.
func Stat(path string) (*Info, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read checksum cache: %w", err)
	}

	var f cacheFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", ErrUnusable, path, err)
	}

	info := &Info{
		Path:        path,
		SizeBytes:   fi.Size(),
		Version:     f.Version,
		RunID:       f.RunID,
		GeneratedAt: f.GeneratedAt,
		Algorithm:   f.Algorithm,
		Entries:     len(f.Files),
	}
	for _, e := range f.Files {
		if e != nil && e.Summary != nil {
			info.Summaries++
		}
	}
	return info, nil
}
