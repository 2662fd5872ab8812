package mesh

import (
	"errors"
	"fmt"
)

var (
	ErrTruncatedStream       = errors.New("mesh: truncated stream")
	ErrTruncatedSubmeshTable = errors.New("mesh: submesh table not terminated")
	ErrMalformedSkeleton     = errors.New("mesh: malformed skeleton")
	ErrCountMismatch         = errors.New("mesh: submesh counts disagree with totals")
	ErrFaceIndex             = errors.New("mesh: face index out of range")
)

// Step names a stage of the decode pass.
type Step string

const (
	StepHeader       Step = "header"
	StepSkeleton     Step = "skeleton"
	StepSubmeshTable Step = "submesh table"
	StepCounts       Step = "counts"
	StepPositions    Step = "positions"
	StepNormals      Step = "normals"
	StepExtra        Step = "extra stream"
	StepFaces        Step = "faces"
	StepUVs          Step = "uvs"
	StepColors       Step = "vertex colors"
	StepSkin         Step = "skinning"
)

// TruncatedError reports a short read. It matches ErrTruncatedStream, and
// also ErrTruncatedSubmeshTable when the read happened inside the table.
type TruncatedError struct {
	Step   Step
	Offset int // cursor position when the read was attempted
	Need   int // bytes requested
	Have   int // bytes remaining
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("mesh: truncated stream in %s: need %d bytes at offset %d, have %d",
		e.Step, e.Need, e.Offset, e.Have)
}

func (e *TruncatedError) Is(target error) bool {
	switch target {
	case ErrTruncatedStream:
		return true
	case ErrTruncatedSubmeshTable:
		return e.Step == StepSubmeshTable
	}
	return false
}
