package exporter

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sleroq/notion2md/internal/app/effects"
	"github.com/sleroq/notion2md/internal/config"
	"github.com/sleroq/notion2md/internal/domain/notion"
	"github.com/sleroq/notion2md/internal/infra/delivery"
)

const (
	pageUUID   = "11111111-2222-3333-4444-555555555555"
	pageID     = "11111111222233334444555555555555"
	dbUUID     = "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"
	dbID       = "aaaaaaaabbbbccccddddeeeeeeeeeeee"
	rowUUID    = "12121212-3434-5656-7878-909090909090"
	rowID      = "12121212343456567878909090909090"
	notesUUID  = "cccccccc-0000-0000-0000-000000000001"
	notesID    = "cccccccc000000000000000000000001"
	toggleUUID = "dddddddd-0000-0000-0000-000000000001"
)

const planMarkdown = "# Plan\n\n" +
	"# Goals\n" +
	"Ship it\n\n" +
	"🗄️ **Tasks**\n\n" +
	"| Name | Score |\n" +
	"| --- | ---: |\n" +
	"| Row one | 3 |\n\n" +
	"📄 [[Notes]]\n"

func mustMkdirAll(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(path, 0o755))
}

func mustWriteJSON(t *testing.T, path string, v any) {
	t.Helper()
	mustMkdirAll(t, filepath.Dir(path))
	b, err := json.MarshalIndent(v, "", "  ")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o644))
}

func richText(s string) []map[string]any {
	return []map[string]any{{
		"type":       "text",
		"plain_text": s,
		"text":       map[string]any{"content": s},
	}}
}

func block(id, parent, typ string, payload map[string]any, hasChildren bool) map[string]any {
	return map[string]any{
		"object":       "block",
		"id":           id,
		"type":         typ,
		"has_children": hasChildren,
		"parent":       map[string]any{"type": "page_id", "page_id": parent},
		typ:            payload,
	}
}

func writePlanPage(t *testing.T, input, title string) {
	t.Helper()
	mustWriteJSON(t, filepath.Join(input, "pages", pageID+".json"), map[string]any{
		"object":           "page",
		"id":               pageUUID,
		"url":              "https://www.notion.so/Plan-" + pageID,
		"created_time":     "2024-02-01T09:00:00.000Z",
		"last_edited_time": "2024-03-01T10:00:00.000Z",
		"parent":           map[string]any{"type": "workspace", "workspace": true},
		"properties": map[string]any{
			"Name": map[string]any{"type": "title", "title": richText(title)},
		},
	})
}

// writeSnapshot lays out a page with a heading, a paragraph, an embedded
// database with one row and a child page.
func writeSnapshot(t *testing.T, input string) {
	t.Helper()
	mustWriteJSON(t, filepath.Join(input, "snapshot.json"), map[string]any{"root": pageUUID})
	writePlanPage(t, input, "Plan")
	mustWriteJSON(t, filepath.Join(input, "blocks", pageID+".json"), map[string]any{
		"results": []map[string]any{
			block("bbbbbbbb-0000-0000-0000-000000000001", pageUUID, "heading_1", map[string]any{"rich_text": richText("Goals")}, false),
			block("bbbbbbbb-0000-0000-0000-000000000002", pageUUID, "paragraph", map[string]any{"rich_text": richText("Ship it")}, false),
			block(dbUUID, pageUUID, "child_database", map[string]any{"title": "Tasks"}, false),
			block(notesUUID, pageUUID, "child_page", map[string]any{"title": "Notes"}, true),
		},
	})
	mustWriteJSON(t, filepath.Join(input, "blocks", notesID+".json"), map[string]any{
		"results": []map[string]any{
			block("bbbbbbbb-0000-0000-0000-000000000003", notesUUID, "paragraph", map[string]any{"rich_text": richText("Inside")}, false),
		},
	})
	mustWriteJSON(t, filepath.Join(input, "databases", dbID+".json"), map[string]any{
		"object": "database",
		"id":     dbUUID,
		"title":  richText("Tasks"),
		"properties": map[string]any{
			"Name":  map[string]any{"id": "title", "name": "Name", "type": "title", "title": map[string]any{}},
			"Score": map[string]any{"id": "abc", "name": "Score", "type": "number"},
		},
	})
	mustWriteJSON(t, filepath.Join(input, "databases", dbID+".rows.json"), map[string]any{
		"results": []map[string]any{{
			"object": "page",
			"id":     rowUUID,
			"parent": map[string]any{"type": "database_id", "database_id": dbUUID},
			"properties": map[string]any{
				"Name":  map[string]any{"type": "title", "title": richText("Row one")},
				"Score": map[string]any{"type": "number", "number": 3},
			},
		}},
	})
}

func testConfig(input string) config.Config {
	cfg := config.Defaults()
	cfg.Input = input
	return cfg
}

func TestExporterWritesMarkdownFile(t *testing.T) {
	root := t.TempDir()
	input := filepath.Join(root, "snapshot")
	output := filepath.Join(root, "out", "plan.md")
	writeSnapshot(t, input)

	cfg := testConfig(input)
	cfg.Output = output

	res, err := Exporter{Config: cfg}.Run(context.Background())
	require.NoError(t, err)

	got, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, planMarkdown, string(got))
	assert.Equal(t, planMarkdown, res.Markdown)
	assert.Equal(t, notion.ID(pageID), res.Root.ID())
	require.Equal(t, 2, res.Plan.Len())
	assert.Equal(t, effects.CreateDirectory{Path: filepath.Join(root, "out")}, res.Plan.Operations[0])
	write, ok := res.Plan.Operations[1].(effects.WriteFile)
	require.True(t, ok)
	assert.Equal(t, output, write.Path)
	assert.Equal(t, planMarkdown, write.Content)
	assert.Equal(t, 2, res.Report.Stats.OperationsCompleted)
	assert.Equal(t, len(planMarkdown), res.Report.Stats.BytesWritten)

	info, err := os.Stat(output)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)))
}

func TestExporterPrintsToStdoutWithoutDestination(t *testing.T) {
	input := t.TempDir()
	writeSnapshot(t, input)

	var stdout bytes.Buffer
	res, err := Exporter{
		Config:   testConfig(input),
		Delivery: []delivery.Option{delivery.WithStdout(&stdout)},
	}.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, planMarkdown, stdout.String())
	assert.Equal(t, 1, res.Plan.Len())
}

func TestExporterCopiesToClipboardAndStdout(t *testing.T) {
	input := t.TempDir()
	writeSnapshot(t, input)

	cfg := testConfig(input)
	cfg.Clipboard = true
	cfg.Stdout = true
	cfg.IncludeMetadata = true

	var stdout bytes.Buffer
	var copied string
	_, err := Exporter{
		Config: cfg,
		Delivery: []delivery.Option{
			delivery.WithStdout(&stdout),
			delivery.WithClipboard(func(s string) error {
				copied = s
				return nil
			}),
		},
	}.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, stdout.String(), copied)
	assert.Contains(t, copied, "## Metadata\n\n- **Page ID**: "+pageID+"\n")
}

func TestExporterUsesExplicitRoot(t *testing.T) {
	input := t.TempDir()
	writeSnapshot(t, input)

	cfg := testConfig(input)
	cfg.Root = "https://www.notion.so/Tasks-" + dbID
	var stdout bytes.Buffer
	res, err := Exporter{Config: cfg, Delivery: []delivery.Option{delivery.WithStdout(&stdout)}}.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, res.Root.Database)
	assert.True(t, strings.HasPrefix(stdout.String(), "# Tasks\n\n## Schema\n\n"))
	assert.Contains(t, stdout.String(), "| Row one | 3 |")
}

func TestExporterAppliesPromptTemplate(t *testing.T) {
	root := t.TempDir()
	input := filepath.Join(root, "snapshot")
	writeSnapshot(t, input)
	tmplPath := filepath.Join(root, "review.md")
	require.NoError(t, os.WriteFile(tmplPath, []byte(
		"---\nname: review\ndescription: Review a page\n---\n"+
			"{{ .Instructions }}\n{{ .SourceTree }}{{ range .Files }}== {{ .Path }}\n{{ end }}--\n{{ .MainContent }}"), 0o644))

	cfg := testConfig(input)
	cfg.Template = tmplPath
	cfg.Instruction = "Summarise."
	var stdout bytes.Buffer
	res, err := Exporter{Config: cfg, Delivery: []delivery.Option{delivery.WithStdout(&stdout)}}.Run(context.Background())
	require.NoError(t, err)

	paths := make([]string, 0, len(res.Documents))
	for _, doc := range res.Documents {
		paths = append(paths, doc.Path)
	}
	assert.Equal(t, []string{
		"Plan_" + pageID + ".md",
		"Tasks_" + dbID + ".md",
		"Row one_" + rowID + ".md",
		"Notes_" + notesID + ".md",
	}, paths)
	assert.Equal(t, "# Notes\n\nInside\n\n", res.Documents[3].Code)

	want := "Summarise.\n" +
		"notion2md/\n" +
		"└── Plan_" + pageID + ".md\n" +
		"└── Tasks_" + dbID + ".md\n" +
		"└── Row one_" + rowID + ".md\n" +
		"└── Notes_" + notesID + ".md\n" +
		"== Plan_" + pageID + ".md\n" +
		"== Tasks_" + dbID + ".md\n" +
		"== Row one_" + rowID + ".md\n" +
		"== Notes_" + notesID + ".md\n" +
		"--\n" + planMarkdown
	assert.Equal(t, want, stdout.String())
}

func TestExporterMissingTemplate(t *testing.T) {
	input := t.TempDir()
	writeSnapshot(t, input)

	cfg := testConfig(input)
	cfg.Template = filepath.Join(input, "missing.md")
	_, err := Exporter{Config: cfg, Delivery: []delivery.Option{delivery.WithStdout(&bytes.Buffer{})}}.Run(context.Background())
	require.Error(t, err)
	assert.True(t, goerrors.IsCategory(err, goerrors.CategoryValidation))
}

func TestExporterRendersHTML(t *testing.T) {
	input := t.TempDir()
	writeSnapshot(t, input)

	cfg := testConfig(input)
	cfg.Format = config.FormatHTML
	var stdout bytes.Buffer
	res, err := Exporter{Config: cfg, Delivery: []delivery.Option{delivery.WithStdout(&stdout)}}.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, planMarkdown, res.Markdown)
	assert.Contains(t, stdout.String(), `<h1 id="plan">Plan</h1>`)
	assert.Contains(t, stdout.String(), "<table>")
	assert.Contains(t, stdout.String(), "<td>Row one</td>")
}

func TestExporterCategorisesErrors(t *testing.T) {
	t.Run("invalid config", func(t *testing.T) {
		_, err := Exporter{Config: testConfig("")}.Run(context.Background())
		require.Error(t, err)
		assert.True(t, goerrors.IsCategory(err, goerrors.CategoryValidation))
	})

	t.Run("unknown root", func(t *testing.T) {
		input := t.TempDir()
		writeSnapshot(t, input)
		cfg := testConfig(input)
		cfg.Root = "ffffffffffffffffffffffffffffffff"
		_, err := Exporter{Config: cfg}.Run(context.Background())
		require.Error(t, err)
		assert.True(t, goerrors.IsCategory(err, goerrors.CategoryValidation))
	})

	t.Run("invalid snapshot document", func(t *testing.T) {
		input := t.TempDir()
		writeSnapshot(t, input)
		mustWriteJSON(t, filepath.Join(input, "pages", pageID+".json"), map[string]any{"object": "page"})
		_, err := Exporter{Config: testConfig(input)}.Run(context.Background())
		require.Error(t, err)
		assert.True(t, goerrors.IsCategory(err, goerrors.CategoryValidation))
	})

	t.Run("circular reference", func(t *testing.T) {
		input := t.TempDir()
		writeSnapshot(t, input)
		mustWriteJSON(t, filepath.Join(input, "blocks", pageID+".json"), map[string]any{
			"results": []map[string]any{
				block(toggleUUID, pageUUID, "toggle", map[string]any{"rich_text": richText("Loop")}, true),
			},
		})
		mustWriteJSON(t, filepath.Join(input, "blocks", strings.ReplaceAll(toggleUUID, "-", "")+".json"), map[string]any{
			"results": []map[string]any{
				block(pageUUID, toggleUUID, "paragraph", map[string]any{"rich_text": richText("Back")}, false),
			},
		})
		_, err := Exporter{Config: testConfig(input)}.Run(context.Background())
		require.Error(t, err)
		assert.True(t, goerrors.IsCategory(err, goerrors.CategoryCommand))
	})

	t.Run("delivery failure", func(t *testing.T) {
		root := t.TempDir()
		input := filepath.Join(root, "snapshot")
		writeSnapshot(t, input)
		blocker := filepath.Join(root, "blocker")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

		cfg := testConfig(input)
		cfg.Output = filepath.Join(blocker, "plan.md")
		res, err := Exporter{Config: cfg}.Run(context.Background())
		require.Error(t, err)
		assert.True(t, goerrors.IsCategory(err, goerrors.CategoryCommand))
		require.Len(t, res.Report.Failed, 1)
	})
}

func TestValidateSummarisesSnapshot(t *testing.T) {
	input := t.TempDir()
	writeSnapshot(t, input)

	cfg := config.Config{Input: input}
	summary, err := Validate(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, notion.ID(pageID), summary.Root)
	assert.Equal(t, "Plan", summary.Title)
	assert.Equal(t, 1, summary.Pages)
	assert.Equal(t, 1, summary.Databases)
	assert.Equal(t, 5, summary.Blocks)
	assert.Equal(t, 7, summary.Nodes)
	assert.Equal(t, 1, summary.Embedded)
}

func TestWatchReRunsOnSnapshotChange(t *testing.T) {
	input := t.TempDir()
	writeSnapshot(t, input)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runs := make(chan string, 8)
	done := make(chan error, 1)
	exp := Exporter{Config: testConfig(input), Delivery: []delivery.Option{delivery.WithStdout(&bytes.Buffer{})}}
	go func() {
		done <- exp.Watch(ctx, 20*time.Millisecond, func(res Result, err error) {
			if err != nil {
				runs <- "error: " + err.Error()
				return
			}
			runs <- res.Root.Title()
		})
	}()

	select {
	case got := <-runs:
		require.Equal(t, "Plan", got)
	case <-time.After(5 * time.Second):
		t.Fatal("initial export did not run")
	}

	writePlanPage(t, input, "Plan v2")

	deadline := time.After(5 * time.Second)
	for rerun := false; !rerun; {
		select {
		case got := <-runs:
			rerun = got == "Plan v2"
		case <-deadline:
			t.Fatal("export did not rerun after change")
		}
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestBuildPlanOrdersDestinations(t *testing.T) {
	page := notion.Page{ID: notion.PageID(pageID), Title: "Plan"}
	root := notion.Object{Page: &page}

	kinds := func(p effects.Plan) []effects.Kind {
		out := make([]effects.Kind, 0, p.Len())
		for _, op := range p.Operations {
			out = append(out, op.Kind())
		}
		return out
	}

	tests := []struct {
		name string
		cfg  config.Config
		want []effects.Kind
	}{
		{name: "no destination", cfg: config.Config{}, want: []effects.Kind{effects.KindPrintToStdout}},
		{name: "file in working dir", cfg: config.Config{Output: "plan.md"}, want: []effects.Kind{effects.KindWriteFile}},
		{
			name: "nested file with clipboard and stdout",
			cfg:  config.Config{Output: filepath.Join("out", "plan.md"), Clipboard: true, Stdout: true},
			want: []effects.Kind{effects.KindCreateDirectory, effects.KindWriteFile, effects.KindCopyToClipboard, effects.KindPrintToStdout},
		},
		{name: "clipboard only", cfg: config.Config{Clipboard: true}, want: []effects.Kind{effects.KindCopyToClipboard}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, kinds(buildPlan(tt.cfg, root, "x")))
		})
	}
}
