package notion

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIDNormalizesAllAcceptedForms(t *testing.T) {
	const want = "12345678123412341234123456789abc"
	forms := []string{
		"12345678-1234-1234-1234-123456789abc",
		"12345678123412341234123456789abc",
		"https://www.notion.so/12345678123412341234123456789abc",
		"https://www.notion.so/myworkspace/12345678123412341234123456789abc",
		"https://www.notion.so/myworkspace/Project-Plan-12345678123412341234123456789abc",
		"https://www.notion.so/12345678-1234-1234-1234-123456789abc",
		"  12345678123412341234123456789ABC  ",
	}

	for _, form := range forms {
		t.Run(form, func(t *testing.T) {
			id, err := ParseID(form)
			require.NoError(t, err)
			assert.Equal(t, want, id.String())
			assert.Len(t, id.String(), 32)
			assert.Equal(t, strings.ToLower(id.String()), id.String())
		})
	}
}

func TestParseIDRejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "blank", input: "   "},
		{name: "too short", input: "1234"},
		{name: "too long", input: "12345678123412341234123456789abcde"},
		{name: "non hex", input: "1234567812341234123412345678zzzz"},
		{name: "url without id", input: "https://www.notion.so/workspace/page"},
		{name: "bad dashed", input: "12345678-1234-1234-1234-12345678zzzz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseID(tt.input)
			require.Error(t, err)
			var invalid *InvalidIDError
			assert.True(t, errors.As(err, &invalid))
		})
	}
}

func TestIDDashedRoundTripsThroughUUID(t *testing.T) {
	u := uuid.New()
	id, err := ParseID(u.String())
	require.NoError(t, err)
	assert.Equal(t, u.String(), id.Dashed())

	again, err := ParseID(id.Dashed())
	require.NoError(t, err)
	assert.Equal(t, id, again)
}

func TestTypedIDsDecodeFromJSON(t *testing.T) {
	var payload struct {
		Block BlockID    `json:"block"`
		Page  PageID     `json:"page"`
		DB    DatabaseID `json:"db"`
	}
	raw := `{"block":"aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee","page":"AAAAAAAABBBBCCCCDDDDEEEEEEEEEEEE","db":"https://www.notion.so/ws/Tasks-aaaaaaaabbbbccccddddeeeeeeeeeeee"}`
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))

	assert.Equal(t, BlockID("aaaaaaaabbbbccccddddeeeeeeeeeeee"), payload.Block)
	assert.Equal(t, PageID("aaaaaaaabbbbccccddddeeeeeeeeeeee"), payload.Page)
	assert.Equal(t, DatabaseID("aaaaaaaabbbbccccddddeeeeeeeeeeee"), payload.DB)

	err := json.Unmarshal([]byte(`{"block":"nope"}`), &payload)
	require.Error(t, err)
}

func TestPropertiesDegradeMalformedValues(t *testing.T) {
	raw := `{
		"Name": {"id":"title","type":"title","title":[{"type":"text","plain_text":"Roadmap"}]},
		"Broken": {"id":"x","type":"number","number":"not a number"},
		"Done": {"id":"c","type":"checkbox","checkbox":true}
	}`
	var props Properties
	require.NoError(t, json.Unmarshal([]byte(raw), &props))

	assert.Equal(t, "Roadmap", props.Title())
	assert.Equal(t, "Name", props.TitleKey())
	assert.Equal(t, PropertyUnsupported, props["Broken"].Type)
	assert.True(t, props["Done"].Checkbox)
}

func TestBlockDecodesNotionPayload(t *testing.T) {
	raw := `{
		"object":"block",
		"id":"c02fc1d3-db8b-45c5-a222-27595b15aea7",
		"type":"bookmark",
		"has_children":false,
		"archived":false,
		"created_time":"2024-03-01T10:00:00.000Z",
		"last_edited_time":"2024-03-02T10:00:00.000Z",
		"bookmark":{"url":"https://example.com","caption":[{"type":"text","plain_text":"Example website"}]}
	}`
	var b Block
	require.NoError(t, json.Unmarshal([]byte(raw), &b))

	assert.Equal(t, BlockBookmark, b.Type)
	assert.Equal(t, BlockID("c02fc1d3db8b45c5a22227595b15aea7"), b.ID)
	require.NotNil(t, b.Bookmark)
	assert.Equal(t, "https://example.com", b.Bookmark.URL)
	assert.Equal(t, "Example website", PlainText(b.Bookmark.Caption))
	assert.Equal(t, 2024, b.CreatedTime.Year())
}
