package patchspec

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/drip/driperrors"
)

const sampleSpec = `{
    // RaceMenu slider restyle
    "racesex_menu.swf": {
        "header": {"displayRect": {"Xmax": 25600, "Ymax": "14400"}},
        "shapes": [
            {"filePath": "shapes/a.svg", "index": [1, 2]},
            {"filePath": "shapes/b.svg", "index": [3], "shapeBounds": {"Xmin": "-20", "Xmax": 2.0}},
        ],
        "sprites": [
            {
                "SpriteID": "5",
                "CharacterID": ["2"],
                "Depth": ["0"],
                "MATRIX": {"scaleX": "2.0", "hasScale": true},
            },
            {"spriteId": "*", "characterId": ["*"], "depth": ["1", 2], "colorTransform": {"redMultTerm": 128}},
        ],
        "text": [
            {"index": ["*"], "font": 3, "useOutlines": false, "color": "#1A2B3C"},
        ],
    },
    /* second asset */
    "hudmenu.swf": {"text": [{"index": ["10"], "color": "1a2b3cff"}]},
}
`

func TestParse(t *testing.T) {
	spec, err := Parse([]byte(sampleSpec))
	require.NoError(t, err)

	assert.Equal(t, []string{"racesex_menu.swf", "hudmenu.swf"}, spec.Names())
	assert.Equal(t, 2, spec.Len())

	edit, ok := spec.Get("racesex_menu.swf")
	require.True(t, ok)
	assert.Empty(t, edit.Problems)

	require.NotNil(t, edit.Header)
	assert.Equal(t, AttrMap{{"Xmax", "25600"}, {"Ymax", "14400"}}, edit.Header.DisplayRect)

	require.Len(t, edit.Shapes, 2)
	assert.Equal(t, "shapes/a.svg", edit.Shapes[0].FilePath)
	assert.Equal(t, []int{1, 2}, edit.Shapes[0].Index)
	assert.False(t, edit.Shapes[0].HasBounds())
	assert.True(t, edit.Shapes[1].HasBounds())
	assert.Equal(t, []string{"Xmin", "Xmax"}, edit.Shapes[1].ShapeBounds.Keys())
	v, _ := edit.Shapes[1].ShapeBounds.Get("Xmax")
	assert.Equal(t, "2.0", v, "numeric literal text is kept as written")

	require.Len(t, edit.Sprites, 2)
	first := edit.Sprites[0]
	assert.Equal(t, "5", first.SpriteID)
	assert.Equal(t, []string{"2"}, first.CharacterID)
	assert.Equal(t, []string{"0"}, first.Depth)
	assert.Equal(t, AttrMap{{"scaleX", "2.0"}, {"hasScale", "true"}}, first.Matrix)
	assert.Nil(t, first.ColorTransform)
	assert.Equal(t, 10, first.Pos.Line)

	second := edit.Sprites[1]
	assert.Equal(t, Wildcard, second.SpriteID)
	assert.Equal(t, []string{"1", "2"}, second.Depth)
	assert.Equal(t, AttrMap{{"redMultTerm", "128"}}, second.ColorTransform)

	require.Len(t, edit.Text, 1)
	txt := edit.Text[0]
	require.NotNil(t, txt.Font)
	assert.Equal(t, 3, *txt.Font)
	require.NotNil(t, txt.UseOutlines)
	assert.False(t, *txt.UseOutlines)
	require.NotNil(t, txt.Color)
	assert.Equal(t, "#1A2B3C", *txt.Color)

	hud, ok := spec.Get("hudmenu.swf")
	require.True(t, ok)
	assert.Nil(t, hud.Text[0].Font)
	assert.Nil(t, hud.Text[0].UseOutlines)

	_, ok = spec.Get("missing.swf")
	assert.False(t, ok)
}

func TestParseYAML(t *testing.T) {
	doc := `
racesex_menu.swf:
  sprites:
    - SpriteID: "5"
      CharacterID: ["*"]
      Depth: ["*"]
      MATRIX:
        translateX: 40
`
	spec, err := Parse([]byte(doc))
	require.NoError(t, err)
	edit, _ := spec.Get("racesex_menu.swf")
	require.Len(t, edit.Sprites, 1)
	assert.Equal(t, AttrMap{{"translateX", "40"}}, edit.Sprites[0].Matrix)
}

func TestParseBOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte(`{"a.swf": {"text": [{"index": ["1"], "font": 2}]}}`)...)
	spec, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.swf"}, spec.Names())
}

func TestParseJSONEscapes(t *testing.T) {
	doc := `{
    "interface\/hud.swf": {
        "shapes": [{"filePath": "shapes\/slider.svg", "index": [3]}],
        "text": [{"index": ["1"], "color": "caf\u00e9 \ud83d\ude00"}],
        "header": {"displayRect": {"Xmax": 1.50e3}}
    }
}`
	spec, err := Parse([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, []string{"interface/hud.swf"}, spec.Names())

	edit, ok := spec.Get("interface/hud.swf")
	require.True(t, ok)
	assert.Empty(t, edit.Problems)
	require.Len(t, edit.Shapes, 1)
	assert.Equal(t, "shapes/slider.svg", edit.Shapes[0].FilePath)
	assert.Equal(t, Pos{Line: 3, Column: 20}, edit.Shapes[0].Pos)
	require.Len(t, edit.Text, 1)
	require.NotNil(t, edit.Text[0].Color)
	assert.Equal(t, "café \U0001F600", *edit.Text[0].Color)
	assert.Equal(t, AttrMap{{"Xmax", "1.50e3"}}, edit.Header.DisplayRect)
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty", ""},
		{"whitespace", "  \n"},
		{"malformed json", `{"a.swf": {"shapes": [}`},
		{"commented malformed json", "// header\n{\"a.swf\": "},
		{"top level list", `[{"a.swf": {}}]`},
		{"top level scalar", `"a.swf"`},
		{"duplicate entry", `{"a.swf": {}, "a.swf": {}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, driperrors.ErrInvalidPatch)
		})
	}
}

func TestParseProblemsAreNonFatal(t *testing.T) {
	doc := `{
  "a.swf": {
    "shapes": [{"filePath": "x.svg", "index": [1, "two"]}],
    "sprites": [{"SpriteID": "5", "CharacterID": "2", "Depth": ["0"], "MATRIX": {"scaleX": {"nested": 1}}}],
    "text": [{"index": ["1"], "font": "big", "useOutlines": "maybe"}],
    "bogus": true,
  },
}`
	spec, err := Parse([]byte(doc))
	require.NoError(t, err)
	edit, _ := spec.Get("a.swf")

	assert.Equal(t, []int{1}, edit.Shapes[0].Index)
	assert.Equal(t, []string{"2"}, edit.Sprites[0].CharacterID)
	assert.Empty(t, edit.Sprites[0].Matrix)
	assert.Nil(t, edit.Text[0].Font)
	assert.Nil(t, edit.Text[0].UseOutlines)

	fields := make([]string, 0, len(edit.Problems))
	for _, p := range edit.Problems {
		assert.Equal(t, "a.swf", p.Entry)
		assert.True(t, p.Pos.IsValid(), "problem %q has no position", p.Field)
		fields = append(fields, p.Field)
	}
	assert.ElementsMatch(t, []string{
		"shapes[0].index[1]",
		"sprites[0].CharacterID",
		"sprites[0].MATRIX.scaleX",
		"text[0].font",
		"text[0].useOutlines",
		"bogus",
	}, fields)
	assert.Len(t, spec.Problems(), len(edit.Problems))
}

func TestParseNullEntry(t *testing.T) {
	spec, err := Parse([]byte(`{"a.swf": null}`))
	require.NoError(t, err)
	edit, _ := spec.Get("a.swf")
	assert.True(t, edit.IsEmpty())
	assert.Empty(t, edit.Problems)
}

func TestHeaderHasEdits(t *testing.T) {
	spec, err := Parse([]byte(`{"a.swf": {"header": {}}, "b.swf": {"header": null}, "c.swf": {"header": {"displayRect": {"Xmax": 1}}}}`))
	require.NoError(t, err)
	for name, want := range map[string]bool{"a.swf": false, "b.swf": false, "c.swf": true} {
		edit, _ := spec.Get(name)
		assert.Equal(t, want, edit.Header.HasEdits(), name)
	}
	var h *Header
	assert.False(t, h.HasEdits())
}

func TestLoad(t *testing.T) {
	t.Run("directory with patch.json", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(sampleSpec), 0o600))

		spec, err := Load(dir)
		require.NoError(t, err)
		abs, _ := filepath.Abs(dir)
		assert.Equal(t, abs, spec.Root)
		assert.Equal(t, filepath.Join(dir, FileName), spec.Path)
	})

	t.Run("yaml fallback", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "patch.yaml"), []byte("a.swf:\n  header:\n    displayRect: {Xmax: 1}\n"), 0o600))

		spec, err := Load(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{"a.swf"}, spec.Names())
	})

	t.Run("missing patch.json", func(t *testing.T) {
		_, err := Load(t.TempDir())
		require.Error(t, err)
		assert.ErrorIs(t, err, driperrors.ErrInvalidPatch)
		assert.Contains(t, err.Error(), "found no patch.json")
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope"))
		assert.ErrorIs(t, err, driperrors.ErrInvalidPatch)
	})

	t.Run("file path given", func(t *testing.T) {
		dir := t.TempDir()
		p := filepath.Join(dir, "custom.json")
		require.NoError(t, os.WriteFile(p, []byte(`{"a.swf": {}}`), 0o600))
		spec, err := Load(p)
		require.NoError(t, err)
		assert.Equal(t, p, spec.Path)
	})

	t.Run("find file prefers patch.json", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "patch.yml"), []byte("a.swf: {}\n"), 0o600))
		p, err := FindFile(dir)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "patch.yml"), p)

		require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(`{}`), 0o600))
		p, err = FindFile(dir)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, FileName), p)

		p, err = FindFile(filepath.Join(dir, "patch.yml"))
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "patch.yml"), p)
	})

	t.Run("error carries path", func(t *testing.T) {
		dir := t.TempDir()
		p := filepath.Join(dir, FileName)
		require.NoError(t, os.WriteFile(p, []byte(`{"a.swf": `), 0o600))
		_, err := LoadFile(p)
		var ipe *driperrors.InvalidPatchError
		require.True(t, errors.As(err, &ipe))
		assert.Equal(t, p, ipe.Path)
	})
}

func TestLooksLikeJSON(t *testing.T) {
	assert.True(t, looksLikeJSON([]byte("  {")))
	assert.True(t, looksLikeJSON([]byte("// c\n/* d */ [")))
	assert.False(t, looksLikeJSON([]byte("a.swf:\n  x: 1")))
	assert.False(t, looksLikeJSON([]byte("// only a comment")))
	assert.False(t, looksLikeJSON(nil))
}
