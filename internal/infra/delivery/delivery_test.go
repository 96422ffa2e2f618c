package delivery

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sleroq/notion2md/internal/app/effects"
)

func TestDeliverWritesFilesAndReportsStats(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "nested", "deeper", "doc.md")
	var stdout bytes.Buffer
	var copied string

	exec := New(WithStdout(&stdout), WithClipboard(func(s string) error {
		copied = s
		return nil
	}))
	report := exec.Deliver(effects.NewPlan(
		effects.CreateDirectory{Path: filepath.Join(root, "assets")},
		effects.WriteFile{Path: out, Content: "# Doc\n"},
		effects.CopyToClipboard{Content: "clip"},
		effects.PrintToStdout{Content: "hello"},
	))

	require.True(t, report.Success())
	assert.Equal(t, 4, report.Stats.OperationsCompleted)
	assert.Equal(t, 0, report.Stats.OperationsFailed)
	assert.Equal(t, len("# Doc\n"), report.Stats.BytesWritten)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "# Doc\n", string(got))
	assert.DirExists(t, filepath.Join(root, "assets"))
	assert.Equal(t, "clip", copied)
	assert.Equal(t, "hello", stdout.String())
}

func TestDeliverContinuesAfterFailure(t *testing.T) {
	root := t.TempDir()
	blocker := filepath.Join(root, "file.txt")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	exec := New(WithClipboard(func(string) error { return errors.New("no display") }))
	report := exec.Deliver(effects.NewPlan(
		effects.CreateDirectory{Path: blocker},
		effects.CopyToClipboard{Content: "clip"},
		effects.WriteFile{Path: filepath.Join(root, "ok.md"), Content: "ok"},
	))

	require.Len(t, report.Failed, 2)
	require.Len(t, report.Completed, 1)
	assert.EqualError(t, report.Failed[0].Err, "Failed to create directory "+blocker+": path exists but is not a directory")
	assert.Contains(t, report.Failed[1].Err.Error(), "no display")
	assert.FileExists(t, filepath.Join(root, "ok.md"))
	assert.Error(t, report.Err())
}

func TestDeliverReadFile(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "template.md")
	require.NoError(t, os.WriteFile(path, []byte("{{ .MainContent }}"), 0o644))
	missing := filepath.Join(root, "missing.md")

	report := New().Deliver(effects.NewPlan(
		effects.ReadFile{Path: path},
		effects.ReadFile{Path: missing},
	))

	data, ok := report.Read(path)
	require.True(t, ok)
	assert.Equal(t, "{{ .MainContent }}", data)
	assert.Equal(t, 0, report.Stats.BytesWritten)

	require.Len(t, report.Failed, 1)
	var fileErr *FileError
	require.True(t, errors.As(report.Failed[0].Err, &fileErr))
	assert.True(t, fileErr.NotFound)
	assert.Equal(t, "File not found: "+missing, fileErr.Error())
	assert.True(t, errors.Is(report.Failed[0].Err, os.ErrNotExist))
}

func TestDeliverAppliesModifiedTime(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dated.md")
	modified := time.Date(2023, 4, 5, 6, 7, 8, 0, time.UTC)

	report := New().Deliver(effects.NewPlan(effects.WriteFile{Path: path, Content: "x", Modified: modified}))
	require.True(t, report.Success())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(modified))
}

func TestFileErrorMessages(t *testing.T) {
	err := &FileError{Path: "a.md", Reason: "read file", Err: &os.PathError{Op: "open", Path: "a.md", Err: os.ErrPermission}}
	assert.Equal(t, "Failed to read file a.md: permission denied", err.Error())
	assert.True(t, errors.Is(err, os.ErrPermission))
}

func TestDeliverNotifiesObserver(t *testing.T) {
	var seen []string
	var failures int
	exec := New(
		WithStdout(&bytes.Buffer{}),
		WithClipboard(func(string) error { return errors.New("no display") }),
		WithObserver(func(op effects.Effect, err error) {
			seen = append(seen, string(op.Kind()))
			if err != nil {
				failures++
			}
		}),
	)
	exec.Deliver(effects.NewPlan(
		effects.PrintToStdout{Content: "a"},
		effects.CopyToClipboard{Content: "b"},
	))

	assert.Equal(t, []string{string(effects.KindPrintToStdout), string(effects.KindCopyToClipboard)}, seen)
	assert.Equal(t, 1, failures)
}
