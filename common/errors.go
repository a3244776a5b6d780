package common

import (
	"errors"
	"fmt"
)

// Kind classifies pipeline failures
type Kind int

const (
	KindUnknown Kind = iota
	KindFilesystem
	KindNetwork
	KindRender
)

func (k Kind) String() string {
	switch k {
	case KindFilesystem:
		return "filesystem"
	case KindNetwork:
		return "network"
	case KindRender:
		return "render"
	default:
		return "unknown"
	}
}

// Error is a classified failure with the operation and path it happened on
type Error struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s error: failed to %s %s: %v", e.Kind, e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s error: failed to %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// FilesystemError wraps err as a filesystem failure
func FilesystemError(op, path string, err error) error {
	return &Error{Kind: KindFilesystem, Op: op, Path: path, Err: err}
}

// NetworkError wraps err as a network failure
func NetworkError(op, url string, err error) error {
	return &Error{Kind: KindNetwork, Op: op, Path: url, Err: err}
}

// RenderError wraps err as a layout, vector or raster failure
func RenderError(op string, err error) error {
	return &Error{Kind: KindRender, Op: op, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
