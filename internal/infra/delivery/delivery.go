package delivery

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/atotto/clipboard"
	"github.com/sirupsen/logrus"

	"github.com/sleroq/notion2md/internal/app/effects"
)

// FileError reports a failed filesystem operation.
type FileError struct {
	Path     string
	Reason   string
	NotFound bool
	Err      error
}

func (e *FileError) Error() string {
	if e.NotFound {
		return "File not found: " + e.Path
	}
	cause := e.Err
	var pathErr *fs.PathError
	if errors.As(cause, &pathErr) {
		cause = pathErr.Err
	}
	return fmt.Sprintf("Failed to %s %s: %v", e.Reason, e.Path, cause)
}

func (e *FileError) Unwrap() error { return e.Err }

type Option func(*Executor)

func WithStdout(w io.Writer) Option {
	return func(e *Executor) { e.stdout = w }
}

// WithClipboard replaces the system clipboard writer.
func WithClipboard(write func(string) error) Option {
	return func(e *Executor) { e.clipboard = write }
}

// WithObserver registers a callback invoked after each operation. err is nil
// for completed operations.
func WithObserver(observe func(op effects.Effect, err error)) Option {
	return func(e *Executor) { e.observe = observe }
}

// Executor runs effect plans against the filesystem, the clipboard and stdout.
type Executor struct {
	stdout    io.Writer
	clipboard func(string) error
	observe   func(effects.Effect, error)
}

func New(opts ...Option) *Executor {
	e := &Executor{
		stdout:    os.Stdout,
		clipboard: systemClipboard,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Deliver executes every operation in order. A failed operation is recorded in
// the report and does not stop the ones after it.
func (e *Executor) Deliver(plan effects.Plan) effects.Report {
	report := effects.Report{}
	start := time.Now()

	logrus.WithField("operations", plan.Len()).Info("executing output plan")
	for _, op := range plan.Operations {
		opStart := time.Now()
		n, data, err := e.execute(op)
		if e.observe != nil {
			e.observe(op, err)
		}
		if err != nil {
			logrus.WithError(err).WithField("operation", op.String()).Error("operation failed")
			report = report.WithFailed(effects.Failed{Operation: op, Err: err})
			continue
		}
		report = report.WithCompleted(effects.Completed{
			Operation: op,
			Bytes:     n,
			Duration:  time.Since(opStart),
			Data:      data,
		})
	}
	report.Stats.Duration = time.Since(start)

	logrus.WithFields(logrus.Fields{
		"completed": report.Stats.OperationsCompleted,
		"failed":    report.Stats.OperationsFailed,
		"bytes":     report.Stats.BytesWritten,
		"duration":  report.Stats.Duration.String(),
	}).Info("output plan complete")
	return report
}

func (e *Executor) execute(op effects.Effect) (int, string, error) {
	switch op := op.(type) {
	case effects.WriteFile:
		n, err := writeFile(op)
		return n, "", err
	case effects.ReadFile:
		data, err := readFile(op.Path)
		return len(data), data, err
	case effects.CreateDirectory:
		return 0, "", createDirectory(op.Path)
	case effects.CopyToClipboard:
		if err := e.clipboard(op.Content); err != nil {
			return 0, "", fmt.Errorf("copy to clipboard: %w", err)
		}
		return len(op.Content), "", nil
	case effects.PrintToStdout:
		n, err := io.WriteString(e.stdout, op.Content)
		if err != nil {
			return n, "", fmt.Errorf("print to stdout: %w", err)
		}
		return n, "", nil
	default:
		return 0, "", fmt.Errorf("unsupported operation %T", op)
	}
}

func systemClipboard(text string) error {
	if clipboard.Unsupported {
		return errors.New("clipboard is not supported on this system")
	}
	return clipboard.WriteAll(text)
}

func writeFile(op effects.WriteFile) (int, error) {
	logrus.WithFields(logrus.Fields{"path": op.Path, "bytes": len(op.Content)}).Debug("writing file")
	if dir := filepath.Dir(op.Path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, &FileError{Path: dir, Reason: "create directory", Err: err}
		}
	}
	if err := os.WriteFile(op.Path, []byte(op.Content), 0o644); err != nil {
		return 0, &FileError{Path: op.Path, Reason: "write file", Err: err}
	}
	if err := applyFileTimes(op.Path, op.Modified, op.Created); err != nil {
		return 0, &FileError{Path: op.Path, Reason: "set times on", Err: err}
	}
	return len(op.Content), nil
}

func readFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", &FileError{Path: path, NotFound: true, Err: err}
		}
		return "", &FileError{Path: path, Reason: "read file", Err: err}
	}
	return string(b), nil
}

func createDirectory(path string) error {
	info, err := os.Stat(path)
	switch {
	case err == nil && info.IsDir():
		return nil
	case err == nil:
		return &FileError{Path: path, Reason: "create directory", Err: errors.New("path exists but is not a directory")}
	case !os.IsNotExist(err):
		return &FileError{Path: path, Reason: "create directory", Err: err}
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return &FileError{Path: path, Reason: "create directory", Err: err}
	}
	return nil
}

// applyFileTimes sets access and modification time to modified, and the
// creation time where the platform supports it.
func applyFileTimes(path string, modified, created time.Time) error {
	if modified.IsZero() {
		modified = created
	}
	if modified.IsZero() {
		return nil
	}
	if err := os.Chtimes(path, modified, modified); err != nil {
		return err
	}
	return setFileCreationTime(path, created)
}
