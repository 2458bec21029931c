package pipeline

import (
	"errors"
	"fmt"
)

// Stage kinds. Every error returned by a conversion is a *StageError whose
// kind matches one of these with errors.Is.
var (
	ErrLoad       = errors.New("load")
	ErrConvert    = errors.New("convert")
	ErrMipmap     = errors.New("mipmap")
	ErrAllocation = errors.New("allocation")
	ErrCompress   = errors.New("compress")
	ErrSave       = errors.New("save")
)

// StageError reports which stage of a conversion failed.
type StageError struct {
	Kind error
	Path string
	Err  error
}

func (e *StageError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s failed: %s: %v", e.Kind, e.Path, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Kind, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Is matches the stage kind as well as the wrapped cause.
func (e *StageError) Is(target error) bool { return target == e.Kind }

func stageError(kind error, path string, err error) error {
	var se *StageError
	if errors.As(err, &se) {
		if se.Path == "" {
			se.Path = path
		}
		return err
	}
	return &StageError{Kind: kind, Path: path, Err: err}
}
