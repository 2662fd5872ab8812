package texture

import (
	"os"
	"path/filepath"
	"strings"
)

// extPriority ranks formats when several files share a stem; formats
// that usually carry alpha win.
var extPriority = map[string]int{
	".tga":  4,
	".png":  3,
	".bmp":  2,
	".jpg":  1,
	".jpeg": 1,
}

// Index maps lowercase file stems to texture paths.
type Index struct {
	entries map[string]string
}

// BuildIndex scans dir recursively for texture files. A missing or
// empty dir gives an empty index.
func BuildIndex(dir string) *Index {
	idx := &Index{entries: make(map[string]string)}
	if dir == "" {
		return idx
	}
	filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		rank, ok := extPriority[ext]
		if !ok {
			return nil
		}
		stem := strings.ToLower(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
		if existing, found := idx.entries[stem]; found {
			if extPriority[strings.ToLower(filepath.Ext(existing))] >= rank {
				return nil
			}
		}
		idx.entries[stem] = path
		return nil
	})
	return idx
}

// ResolvePath returns the texture path for an entry name, or ("", false).
func (idx *Index) ResolvePath(name string) (string, bool) {
	name = strings.ReplaceAll(name, "\\", "/")
	base := filepath.Base(name)
	stem := strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
	path, ok := idx.entries[stem]
	return path, ok
}

// Len returns the number of indexed textures.
func (idx *Index) Len() int {
	return len(idx.entries)
}
