// Package task decides where the task text of a run comes from and reads it.
package task

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/afero"
)

// ErrNoTaskProvided is returned when no file, no text and no piped input is available
var ErrNoTaskProvided = errors.New("no task provided: use -t, -f, or pipe the task on stdin")

// Kind identifies a task source
type Kind int

const (
	KindFile Kind = iota + 1
	KindInline
	KindStdin
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindInline:
		return "inline"
	case KindStdin:
		return "stdin"
	default:
		return "unknown"
	}
}

// Source is the selected origin of the task. Path is set for KindFile and
// Text for KindInline.
type Source struct {
	Kind Kind
	Path string
	Text string
}

// FileUnreadableError reports a task file that could not be read
type FileUnreadableError struct {
	Path string
	Err  error
}

func (e *FileUnreadableError) Error() string {
	return fmt.Sprintf("failed to read task file %s: %v", e.Path, e.Err)
}

func (e *FileUnreadableError) Unwrap() error {
	return e.Err
}

// Select applies the source precedence: file, then non-empty text, then
// non-interactive stdin.
func Select(taskFile, taskText string, interactive bool) (Source, error) {
	switch {
	case taskFile != "":
		return Source{Kind: KindFile, Path: taskFile}, nil
	case taskText != "":
		return Source{Kind: KindInline, Text: taskText}, nil
	case !interactive:
		return Source{Kind: KindStdin}, nil
	default:
		return Source{}, ErrNoTaskProvided
	}
}

// Resolver reads the selected source
type Resolver struct {
	Fs          afero.Fs
	Stdin       io.Reader
	Interactive bool
}

// NewResolver returns a resolver over the OS filesystem and the process stdin
func NewResolver() *Resolver {
	return &Resolver{
		Fs:          afero.NewOsFs(),
		Stdin:       os.Stdin,
		Interactive: IsTerminal(os.Stdin),
	}
}

// Resolve selects the source and returns its full contents. An empty file
// or empty piped input resolves to the empty task.
func (r *Resolver) Resolve(taskFile, taskText string) (string, Source, error) {
	src, err := Select(taskFile, taskText, r.Interactive)
	if err != nil {
		return "", src, err
	}

	switch src.Kind {
	case KindFile:
		data, err := afero.ReadFile(r.fs(), src.Path)
		if err != nil {
			return "", src, &FileUnreadableError{Path: src.Path, Err: err}
		}
		return string(data), src, nil
	case KindInline:
		return src.Text, src, nil
	default:
		if r.Stdin == nil {
			return "", src, nil
		}
		data, err := io.ReadAll(r.Stdin)
		if err != nil {
			return "", src, fmt.Errorf("failed to read task from stdin: %w", err)
		}
		return string(data), src, nil
	}
}

func (r *Resolver) fs() afero.Fs {
	if r.Fs == nil {
		return afero.NewOsFs()
	}
	return r.Fs
}

// IsTerminal reports whether f is attached to an interactive terminal
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
