package match

import "fmt"

// Mode is the execution strategy of a matching run. It is one of
// SingleMode, MultiMode or FastMode.
type Mode interface {
	fmt.Stringer
	mode()
}

// SingleMode streams one target file, keeping only scorefile positions.
type SingleMode struct {
	Path string
}

// MultiMode streams target files one at a time. Each file must hold
// exactly one chromosome, which bounds peak memory to one chromosome.
type MultiMode struct {
	Paths []string
}

// FastMode reads every target file fully into memory and matches once.
type FastMode struct {
	Paths []string
}

func (SingleMode) mode() {}
func (MultiMode) mode()  {}
func (FastMode) mode()   {}

func (SingleMode) String() string { return "single" }
func (MultiMode) String() string  { return "multi" }
func (FastMode) String() string   { return "fast" }

// SelectMode chooses the execution strategy from the target paths and the
// fast flag.
func SelectMode(paths []string, fast bool) (Mode, error) {
	switch {
	case len(paths) == 0:
		return nil, ErrNoTargets
	case fast:
		return FastMode{Paths: paths}, nil
	case len(paths) == 1:
		return SingleMode{Path: paths[0]}, nil
	default:
		return MultiMode{Paths: paths}, nil
	}
}
