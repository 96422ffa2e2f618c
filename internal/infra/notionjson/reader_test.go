package notionjson

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sleroq/notion2md/internal/domain/notion"
)

const (
	pageUUID   = "11111111-2222-3333-4444-555555555555"
	pageID     = "11111111222233334444555555555555"
	dbUUID     = "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"
	dbID       = "aaaaaaaabbbbccccddddeeeeeeeeeeee"
	linkedUUID = "99999999-8888-7777-6666-555555555555"
	rowUUID    = "12121212-3434-5656-7878-909090909090"
	bulletUUID = "bbbbbbbb-0000-0000-0000-000000000001"
)

func writeJSON(t *testing.T, path string, v any) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	b, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o644))
}

func richText(s string) []map[string]any {
	return []map[string]any{{
		"type":        "text",
		"plain_text":  s,
		"text":        map[string]any{"content": s},
		"annotations": map[string]any{"bold": false, "color": "default"},
	}}
}

func writeFixture(t *testing.T, dir string) {
	t.Helper()
	writeJSON(t, filepath.Join(dir, "snapshot.json"), map[string]any{
		"root":         pageUUID,
		"linked":       []string{linkedUUID},
		"inaccessible": map[string]string{},
	})
	writeJSON(t, filepath.Join(dir, "pages", pageID+".json"), map[string]any{
		"object": "page",
		"id":     pageUUID,
		"url":    "https://www.notion.so/Plan-" + pageID,
		"parent": map[string]any{"type": "workspace", "workspace": true},
		"properties": map[string]any{
			"Name":   map[string]any{"type": "title", "title": richText("Plan")},
			"Broken": map[string]any{"type": "number", "number": "not a number"},
		},
	})
	writeJSON(t, filepath.Join(dir, "blocks", pageID+".json"), map[string]any{
		"results": []map[string]any{
			{
				"object": "block", "id": bulletUUID, "type": "bulleted_list_item", "has_children": true,
				"parent":             map[string]any{"type": "page_id", "page_id": pageUUID},
				"bulleted_list_item": map[string]any{"rich_text": richText("Parent bullet")},
			},
			{
				"object": "block", "id": dbUUID, "type": "child_database",
				"parent":         map[string]any{"type": "page_id", "page_id": pageUUID},
				"child_database": map[string]any{"title": "Tasks"},
			},
			{
				"object": "block", "id": linkedUUID, "type": "child_database",
				"parent":         map[string]any{"type": "page_id", "page_id": pageUUID},
				"child_database": map[string]any{"title": "Shared"},
			},
		},
	})
	writeJSON(t, filepath.Join(dir, "blocks", bulletUUID+".json"), map[string]any{
		"results": []map[string]any{{
			"object": "block", "id": "bbbbbbbb-0000-0000-0000-000000000002", "type": "paragraph",
			"parent":    map[string]any{"type": "block_id", "block_id": bulletUUID},
			"paragraph": map[string]any{"rich_text": richText("Nested")},
		}},
	})
	writeJSON(t, filepath.Join(dir, "databases", dbID+".json"), map[string]any{
		"object": "database",
		"id":     dbUUID,
		"title":  richText("Tasks"),
		"properties": map[string]any{
			"Name":  map[string]any{"id": "title", "name": "Name", "type": "title", "title": map[string]any{}},
			"Score": map[string]any{"id": "abc", "name": "Score", "type": "number"},
		},
	})
	writeJSON(t, filepath.Join(dir, "databases", dbID+".rows.json"), map[string]any{
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

func TestReadSnapshot(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir)

	s, err := ReadSnapshot(dir)
	require.NoError(t, err)

	assert.Equal(t, notion.ID(pageID), s.Root)
	require.Contains(t, s.Pages, notion.PageID(pageID))
	page := s.Pages[notion.PageID(pageID)]
	assert.Equal(t, "Plan", page.DisplayTitle())
	assert.Equal(t, notion.PropertyUnsupported, page.Properties["Broken"].Type)
	assert.Equal(t, notion.ParentWorkspace, page.Parent.Type)

	require.Contains(t, s.Databases, notion.DatabaseID(dbID))
	db := s.Databases[notion.DatabaseID(dbID)]
	assert.Equal(t, "Tasks", db.PlainTitle())
	require.Len(t, db.Pages, 1)
	assert.Equal(t, "Row one", db.Pages[0].DisplayTitle())

	top := s.Children[notion.ID(pageID)]
	require.Len(t, top, 3)
	assert.Equal(t, notion.BlockBulletedListItem, top[0].Type)
	assert.Equal(t, notion.ID(pageID), top[0].Parent.ID())
	assert.Equal(t, notion.DatabaseNotFetched, top[1].ChildDatabase.State)
	assert.Equal(t, notion.DatabaseLinked, top[2].ChildDatabase.State)
	assert.Len(t, s.Children[notion.ID("bbbbbbbb000000000000000000000001")], 1)
	assert.Equal(t, 4, s.BlockCount())

	obj, err := s.Object(s.Root)
	require.NoError(t, err)
	require.NotNil(t, obj.Page)
	assert.Equal(t, "Plan", obj.Title())

	obj, err = s.Object(notion.ID(dbID))
	require.NoError(t, err)
	assert.NotNil(t, obj.Database)

	_, err = s.Object(notion.ID("00000000000000000000000000000000"))
	assert.Error(t, err)
}

func TestReadSnapshotMarksInaccessibleDatabases(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir)
	writeJSON(t, filepath.Join(dir, "snapshot.json"), map[string]any{
		"inaccessible": map[string]string{dbUUID: "integration lacks access"},
	})

	s, err := ReadSnapshot(dir)
	require.NoError(t, err)
	assert.True(t, s.Root == "")

	blk := s.Children[notion.ID(pageID)][1]
	assert.Equal(t, notion.DatabaseInaccessible, blk.ChildDatabase.State)
	assert.Equal(t, "integration lacks access", blk.ChildDatabase.Reason)
}

func TestReadSnapshotRejectsInvalidEnvelopes(t *testing.T) {
	tests := []struct {
		name string
		path string
		doc  map[string]any
	}{
		{
			name: "page with wrong object kind",
			path: filepath.Join("pages", pageID+".json"),
			doc:  map[string]any{"object": "block", "id": pageUUID, "properties": map[string]any{}},
		},
		{
			name: "database without title",
			path: filepath.Join("databases", dbID+".json"),
			doc:  map[string]any{"object": "database", "id": dbUUID, "properties": map[string]any{}},
		},
		{
			name: "block without type",
			path: filepath.Join("blocks", pageID+".json"),
			doc:  map[string]any{"results": []map[string]any{{"id": bulletUUID}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeJSON(t, filepath.Join(dir, tt.path), tt.doc)

			_, err := ReadSnapshot(dir)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrEnvelopeInvalid))
		})
	}
}

func TestReadSnapshotRejectsMalformedIDs(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, filepath.Join(dir, "blocks", "not-an-id.json"), map[string]any{"results": []any{}})

	_, err := ReadSnapshot(dir)
	require.Error(t, err)
	var invalid *notion.InvalidIDError
	assert.True(t, errors.As(err, &invalid))
}

func TestReadSnapshotMissingDir(t *testing.T) {
	_, err := ReadSnapshot(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestEmptySnapshotDirIsValid(t *testing.T) {
	s, err := ReadSnapshot(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, s.Pages)
	assert.Zero(t, s.BlockCount())
	assert.Empty(t, s.PageIDs())
}
