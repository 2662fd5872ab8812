package entrylist

import "npk-mesh/internal/payload"

// Entry is one archive entry as listed by the archive layer.
type Entry struct {
	Name      string
	Path      string // absolute, or relative to the working directory
	Size      uint32
	Algorithm payload.Algorithm
	Tag       payload.Tag
}
