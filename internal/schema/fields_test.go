package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func articleBlueprint() *Blueprint {
	return &Blueprint{
		Handle: "article",
		Title:  "Article",
		Sections: []Section{
			{
				Handle: "main",
				Fields: []FieldDef{
					{Handle: "title", Type: "text", Validate: []string{"required|min:3"}, Listable: ListableTrue},
					{Handle: "body", Type: "markdown"},
					{Handle: "tags", Type: "tags"},
					{Handle: "featured", Type: "toggle", Default: true},
					{Handle: "views", Type: "integer"},
					{Handle: "hero", Type: "assets", Config: map[string]any{"max_files": 1}},
				},
			},
		},
	}
}

func TestFieldsPreProcessAndProcess(t *testing.T) {
	t.Parallel()

	fields := NewFields(articleBlueprint(), nil).AddValues(map[string]any{
		"title":    "Hello",
		"body":     "line one\r\nline two",
		"tags":     "go, cms ,",
		"views":    "42",
		"hero":     []any{"main::hero.jpg"},
		"unknown":  "dropped",
		"featured": "on",
	})

	processed := fields.Process().Values()
	assert.Equal(t, "Hello", processed["title"])
	assert.Equal(t, "line one\nline two", processed["body"])
	assert.Equal(t, []string{"go", "cms"}, processed["tags"])
	assert.Equal(t, 42, processed["views"])
	assert.Equal(t, "main::hero.jpg", processed["hero"])
	assert.Equal(t, true, processed["featured"])
	assert.NotContains(t, processed, "unknown")

	preprocessed := NewFields(articleBlueprint(), nil).AddValues(map[string]any{
		"hero": "main::hero.jpg",
	}).PreProcess().Values()
	assert.Equal(t, []string{"main::hero.jpg"}, preprocessed["hero"])
	assert.Equal(t, true, preprocessed["featured"], "default applies when unset")
	assert.Equal(t, []string{}, preprocessed["tags"])
}

func TestFieldsSubmittedTracksAddedKeys(t *testing.T) {
	t.Parallel()

	fields := NewFields(articleBlueprint(), nil).AddValues(map[string]any{"title": "x", "body": nil})
	assert.True(t, fields.Submitted("title"))
	assert.True(t, fields.Submitted("body"))
	assert.False(t, fields.Submitted("tags"))
}

func TestFieldsMeta(t *testing.T) {
	t.Parallel()

	meta := NewFields(articleBlueprint(), nil).AddValues(map[string]any{
		"hero": []string{"main::a.jpg"},
	}).Meta()
	assert.Equal(t, map[string]any{"ids": []string{"main::a.jpg"}}, meta["hero"])
	assert.Contains(t, meta, "title")
	assert.Nil(t, meta["title"])
}

func TestEnsureEntryFields(t *testing.T) {
	t.Parallel()

	bp := &Blueprint{
		Handle:   "page",
		Sections: []Section{{Handle: "main", Fields: []FieldDef{{Handle: "content", Type: "markdown"}}}},
	}

	ensured := bp.EnsureEntryFields(true, true)

	require.True(t, ensured.HasField("title"))
	require.True(t, ensured.HasField("slug"))
	require.True(t, ensured.HasField("date"))
	require.True(t, ensured.HasField("parent"))
	assert.Equal(t, "title", ensured.Sections[0].Fields[0].Handle, "title goes first")
	assert.False(t, bp.HasField("title"), "original blueprint untouched")

	parent, _ := ensured.Field("parent")
	assert.Equal(t, 1, parent.ConfigInt("max_items"))

	plain := bp.EnsureEntryFields(false, false)
	assert.False(t, plain.HasField("date"))
	assert.False(t, plain.HasField("parent"))
}

func TestRelationshipSingleValueWithMaxOne(t *testing.T) {
	t.Parallel()

	bp := (&Blueprint{Handle: "page", Sections: []Section{{Handle: "main"}}}).EnsureEntryFields(false, true)
	values := NewFields(bp, nil).AddValues(map[string]any{"parent": []any{"abc"}}).Process().Values()
	assert.Equal(t, "abc", values["parent"])

	values = NewFields(bp, nil).AddValues(map[string]any{"parent": []any{}}).Process().Values()
	assert.Nil(t, values["parent"])
}

func TestFieldDefHelpers(t *testing.T) {
	t.Parallel()

	f := FieldDef{Handle: "meta_description"}
	assert.Equal(t, "Meta Description", f.DisplayName())
	assert.Equal(t, ListableHidden, f.ListableState())
	assert.True(t, f.IsSortable())

	no := false
	f = FieldDef{Handle: "x", Display: "Custom", Listable: "FALSE", Sortable: &no}
	assert.Equal(t, "Custom", f.DisplayName())
	assert.Equal(t, ListableFalse, f.ListableState())
	assert.False(t, f.IsSortable())
}

func TestToPublishArray(t *testing.T) {
	t.Parallel()

	out := articleBlueprint().ToPublishArray()
	assert.Equal(t, "article", out["handle"])
	sections := out["sections"].([]map[string]any)
	require.Len(t, sections, 1)
	fields := sections[0]["fields"].([]map[string]any)
	assert.Equal(t, "title", fields[0]["handle"])
	assert.Equal(t, true, fields[0]["required"])
	assert.Equal(t, 1, fields[5]["max_files"])
}
