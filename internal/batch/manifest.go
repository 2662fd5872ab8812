package batch

import (
	"encoding/json"
	"os"
)

// ManifestEntry represents one entry in the output manifest.
type ManifestEntry struct {
	Name      string   `json:"name"`
	Source    string   `json:"source"`
	Algorithm string   `json:"algorithm"`
	Tag       string   `json:"tag"`
	Image     string   `json:"image,omitempty"`
	Submeshes int      `json:"submeshes"`
	Vertices  int      `json:"vertices"`
	Faces     int      `json:"faces"`
	Bones     int      `json:"bones"`
	Warnings  []string `json:"warnings,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// WriteManifest writes the results of a run as indented JSON to path.
func WriteManifest(path string, results []Result) error {
	entries := make([]ManifestEntry, len(results))
	for i, r := range results {
		entries[i] = ManifestEntry{
			Name:      r.Entry.Name,
			Source:    r.Entry.Path,
			Algorithm: r.Entry.Algorithm.String(),
			Tag:       r.Entry.Tag.String(),
			Image:     r.Image,
			Submeshes: r.Submeshes,
			Vertices:  r.Vertices,
			Faces:     r.Faces,
			Bones:     r.Bones,
			Warnings:  r.Warnings,
			Error:     r.Error,
		}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Failed counts the results that did not succeed.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if !r.Success {
			n++
		}
	}
	return n
}
