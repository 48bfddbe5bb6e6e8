package data

import (
	"errors"
	"fmt"
	"sync"
)

// Standard errors that backend implementations should use.
var (
	// Mount table errors
	ErrInvalidPath    = errors.New("vfs: invalid path detected")
	ErrNotMounted     = errors.New("vfs: path not mounted")
	ErrAlreadyMounted = errors.New("vfs: path already mounted")
	ErrNestingDenied  = errors.New("vfs: nesting denied by parent mount")
	ErrMountFailed    = errors.New("vfs: mount initialization failed")

	// File operation errors
	ErrNotExist         = errors.New("vfs: file does not exist")
	ErrExist            = errors.New("vfs: file already exists")
	ErrStringNotFound   = errors.New("vfs: string not found in file")
	ErrAmbiguousEdit    = errors.New("vfs: string appears more than once")
	ErrInvalidPattern   = errors.New("vfs: invalid regex pattern")
	ErrPathTraversal    = errors.New("vfs: path traversal not allowed")
	ErrOutsideRoot      = errors.New("vfs: path outside root directory")
	ErrOffsetOutOfRange = errors.New("vfs: line offset out of range")
	ErrReadOnly         = errors.New("vfs: read-only filesystem")
	ErrInvalid          = errors.New("vfs: invalid argument")
)

// Error describes a failed operation on a single path. Kind is one of the
// sentinel errors above and can be tested with errors.Is.
type Error struct {
	Kind error
	Path string

	// Detail carries the kind specific payload: the searched string for
	// edit failures, the compiler message for patterns or the resolved root.
	Detail      string
	Offset      int
	Lines       int
	Occurrences int
}

func (e *Error) Error() string {
	switch e.Kind {
	case ErrNotExist:
		return fmt.Sprintf("Error: File '%s' not found", e.Path)
	case ErrExist:
		return fmt.Sprintf("Cannot write to %s because it already exists. Read and then make an edit, or write to a new path.", e.Path)
	case ErrStringNotFound:
		return fmt.Sprintf("Error: String not found in file: '%s'", e.Detail)
	case ErrAmbiguousEdit:
		return fmt.Sprintf("Error: String '%s' appears %d times in file. Use replace_all=True to replace all instances, or provide a more specific string with surrounding context.", e.Detail, e.Occurrences)
	case ErrInvalidPattern:
		return fmt.Sprintf("Invalid regex pattern: %s", e.Detail)
	case ErrPathTraversal:
		return fmt.Sprintf("Path traversal not allowed: %s", e.Path)
	case ErrOutsideRoot:
		return fmt.Sprintf("Path:%s outside root directory: %s", e.Path, e.Detail)
	case ErrOffsetOutOfRange:
		return fmt.Sprintf("Error: Line offset %d exceeds file length (%d lines)", e.Offset, e.Lines)
	case ErrReadOnly:
		return fmt.Sprintf("Error: Cannot modify '%s' on a read-only mount", e.Path)
	}

	if e.Detail != "" {
		return fmt.Sprintf("%v: %s: %s", e.Kind, e.Path, e.Detail)
	}
	return fmt.Sprintf("%v: %s", e.Kind, e.Path)
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func NotFound(path string) error {
	return &Error{Kind: ErrNotExist, Path: path}
}

func AlreadyExists(path string) error {
	return &Error{Kind: ErrExist, Path: path}
}

func StringNotFound(path, old string) error {
	return &Error{Kind: ErrStringNotFound, Path: path, Detail: old}
}

func AmbiguousEdit(path, old string, occurrences int) error {
	return &Error{Kind: ErrAmbiguousEdit, Path: path, Detail: old, Occurrences: occurrences}
}

func InvalidPattern(pattern string, err error) error {
	return &Error{Kind: ErrInvalidPattern, Path: pattern, Detail: err.Error()}
}

func PathTraversal(path string) error {
	return &Error{Kind: ErrPathTraversal, Path: path}
}

func OutsideRoot(path, root string) error {
	return &Error{Kind: ErrOutsideRoot, Path: path, Detail: root}
}

func OffsetOutOfRange(path string, offset, lines int) error {
	return &Error{Kind: ErrOffsetOutOfRange, Path: path, Offset: offset, Lines: lines}
}

func ReadOnly(path string) error {
	return &Error{Kind: ErrReadOnly, Path: path}
}

func ParentNotDir(path string) error {
	return &Error{Kind: ErrInvalid, Path: path, Detail: "parent directory is a file"}
}

func Invalid(path, detail string) error {
	return &Error{Kind: ErrInvalid, Path: path, Detail: detail}
}

// RebaseError prepends prefix to the path carried by err, so that errors
// raised by a mounted backend name the caller's path. Errors without a path
// and errors that do not name a file are returned unchanged.
func RebaseError(err error, prefix string) error {
	var e *Error
	if prefix == "" || !errors.As(err, &e) {
		return err
	}

	switch e.Kind {
	case ErrInvalidPattern, ErrOutsideRoot, ErrPathTraversal:
		return err
	}

	if e.Path == "" {
		return err
	}

	rebased := *e
	rebased.Path = JoinPrefix(prefix, e.Path)
	return &rebased
}

// Errors collects errors from fan-out operations like closing every mount.
type Errors struct {
	mu     sync.RWMutex
	errors []error
}

func (e *Errors) Add(err error) {
	if err == nil {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.errors = append(e.errors, err)
}

func (e *Errors) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.errors = make([]error, 0)
}

func (e *Errors) Errors() error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if len(e.errors) == 0 {
		return nil
	}

	return errors.Join(e.errors...)
}
