package effects

import (
	"fmt"
	"time"
)

type Kind string

const (
	KindWriteFile       Kind = "write_file"
	KindReadFile        Kind = "read_file"
	KindCreateDirectory Kind = "create_directory"
	KindCopyToClipboard Kind = "copy_to_clipboard"
	KindPrintToStdout   Kind = "print_to_stdout"
)

// Effect describes a side effect without performing it. Only the delivery
// layer executes effects.
type Effect interface {
	Kind() Kind
	String() string
}

// WriteFile creates parent directories as needed. Non-zero times are applied
// to the written file.
type WriteFile struct {
	Path     string
	Content  string
	Modified time.Time
	Created  time.Time
}

type ReadFile struct {
	Path string
}

type CreateDirectory struct {
	Path string
}

type CopyToClipboard struct {
	Content string
}

type PrintToStdout struct {
	Content string
}

func (WriteFile) Kind() Kind       { return KindWriteFile }
func (ReadFile) Kind() Kind        { return KindReadFile }
func (CreateDirectory) Kind() Kind { return KindCreateDirectory }
func (CopyToClipboard) Kind() Kind { return KindCopyToClipboard }
func (PrintToStdout) Kind() Kind   { return KindPrintToStdout }

func (e WriteFile) String() string {
	return fmt.Sprintf("write %d bytes to %s", len(e.Content), e.Path)
}

func (e ReadFile) String() string { return "read " + e.Path }

func (e CreateDirectory) String() string { return "create directory " + e.Path }

func (e CopyToClipboard) String() string {
	return fmt.Sprintf("copy %d bytes to clipboard", len(e.Content))
}

func (e PrintToStdout) String() string {
	return fmt.Sprintf("print %d bytes to stdout", len(e.Content))
}

// Plan is an ordered list of effects. With returns a new plan and leaves the
// receiver untouched.
type Plan struct {
	Operations []Effect
}

func NewPlan(ops ...Effect) Plan {
	return Plan{}.With(ops...)
}

func (p Plan) With(ops ...Effect) Plan {
	out := make([]Effect, 0, len(p.Operations)+len(ops))
	out = append(out, p.Operations...)
	out = append(out, ops...)
	return Plan{Operations: out}
}

func (p Plan) Len() int { return len(p.Operations) }

func (p Plan) Empty() bool { return len(p.Operations) == 0 }

type Completed struct {
	Operation Effect
	Bytes     int
	Duration  time.Duration
	// Data holds the file content for ReadFile operations.
	Data string
}

type Failed struct {
	Operation Effect
	Err       error
}

type Stats struct {
	OperationsCompleted int
	OperationsFailed    int
	BytesWritten        int
	Duration            time.Duration
}

type Report struct {
	Completed []Completed
	Failed    []Failed
	Stats     Stats
}

func (r Report) WithCompleted(c Completed) Report {
	r.Completed = append(r.Completed[:len(r.Completed):len(r.Completed)], c)
	r.Stats.OperationsCompleted++
	if c.Operation != nil && c.Operation.Kind() == KindWriteFile {
		r.Stats.BytesWritten += c.Bytes
	}
	return r
}

func (r Report) WithFailed(f Failed) Report {
	r.Failed = append(r.Failed[:len(r.Failed):len(r.Failed)], f)
	r.Stats.OperationsFailed++
	return r
}

func (r Report) Success() bool { return len(r.Failed) == 0 }

// Err joins the failures into one error, nil when every operation succeeded.
func (r Report) Err() error {
	switch len(r.Failed) {
	case 0:
		return nil
	case 1:
		return r.Failed[0].Err
	default:
		return fmt.Errorf("%d operations failed, first: %w", len(r.Failed), r.Failed[0].Err)
	}
}

// Read returns the content loaded by a completed ReadFile for path.
func (r Report) Read(path string) (string, bool) {
	for _, c := range r.Completed {
		if rf, ok := c.Operation.(ReadFile); ok && rf.Path == path {
			return c.Data, true
		}
	}
	return "", false
}
