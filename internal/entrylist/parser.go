package entrylist

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"npk-mesh/internal/payload"
)

// jsonEntry matches one element of an entry list file:
//
//	[{"path": "a.mesh", "size": 1024, "zflag": 2, "tag": "nxs3"}]
type jsonEntry struct {
	Name  string      `json:"name"`
	Path  string      `json:"path"`
	Size  uint32      `json:"size"`
	ZFlag uint8       `json:"zflag"`
	Tag   payload.Tag `json:"tag"`
}

// Parse reads an entry list. Relative paths resolve against the list's
// directory and names default to the file name without extension.
func Parse(listPath string) ([]Entry, error) {
	raw, err := os.ReadFile(listPath)
	if err != nil {
		return nil, fmt.Errorf("entrylist: read %s: %w", listPath, err)
	}

	var list []jsonEntry
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("entrylist: parse %s: %w", listPath, err)
	}

	base := filepath.Dir(listPath)
	entries := make([]Entry, 0, len(list))
	for i, je := range list {
		if je.Path == "" {
			return nil, fmt.Errorf("entrylist: %s: entry %d has no path", listPath, i)
		}
		path := je.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(base, path)
		}
		name := je.Name
		if name == "" {
			name = stem(path)
		}
		entries = append(entries, Entry{
			Name:      name,
			Path:      path,
			Size:      je.Size,
			Algorithm: payload.Algorithm(je.ZFlag),
			Tag:       je.Tag,
		})
	}
	return entries, nil
}

// Scan lists every .mesh file under dir as an uncompressed, unencrypted
// entry, sorted by path. Names are the slash-separated path relative to
// dir without the extension, so files in different subdirectories stay
// distinct.
func Scan(dir string) ([]Entry, error) {
	var entries []Entry
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".mesh") {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(strings.TrimSuffix(rel, filepath.Ext(rel)))
		entries = append(entries, Entry{Name: name, Path: path})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("entrylist: scan %s: %w", dir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

// Load reads the entry's bytes from disk.
func Load(e Entry) (payload.RawEntry, error) {
	data, err := os.ReadFile(e.Path)
	if err != nil {
		return payload.RawEntry{}, fmt.Errorf("entrylist: read %s: %w", e.Path, err)
	}
	return payload.RawEntry{
		Data:      data,
		Size:      e.Size,
		Algorithm: e.Algorithm,
		Tag:       e.Tag,
	}, nil
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
