package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/backmassage/lensbatch/internal/media"
)

// Item identifies one image to process. Immutable once discovered.
type Item struct {
	Path string // Full path for reading.
	Name string // Basename for display and the artifact's image field.
}

// Discover lists dir (one level, subdirectories ignored) and returns the
// entries with accepted image extensions in directory-listing order. Zero
// matches is not an error; the caller treats it as nothing to do.
func Discover(dir string) ([]Item, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list images directory: %w", err)
	}

	var items []Item
	for _, e := range entries {
		if e.IsDir() || !media.IsImage(e.Name()) {
			continue
		}
		items = append(items, Item{
			Path: filepath.Join(dir, e.Name()),
			Name: e.Name(),
		})
	}
	return items, nil
}
