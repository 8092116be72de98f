// Package testutil provides test utilities and fixtures for unit tests.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// SampleXML is a trimmed FFDec -swf2xml export with one of each node shape
// drip edits:
//   - shape 3 with shapeBounds, shape 4 without
//   - sprite 5: placements (2,0) with a matrix only and (3,1) with matrix and colorTransform
//   - sprite 6: placements (2,1) and (4,2), matrices only
//   - edit texts 9 and 10 with RGBA textColor, text 11 without textColor
const SampleXML = `<?xml version="1.0" encoding="UTF-8"?>
<swf type="SWF" charset="WINDOWS-1250" compression="NONE" frameCount="1" frameRate="30.0" gfx="false" hasEndTag="true" version="8">
  <displayRect type="RECT" Xmax="25600" Xmin="0" Ymax="14400" Ymin="0" nbits="16"/>
  <tags>
    <item type="FileAttributesTag" actionScript3="false" hasMetadata="false" useNetwork="false"/>
    <item type="DefineShapeTag" shapeId="3">
      <shapeBounds type="RECT" Xmax="200" Xmin="-200" Ymax="40" Ymin="-40" nbits="10"/>
      <shapes type="SHAPEWITHSTYLE"/>
    </item>
    <item type="DefineShapeTag" shapeId="4">
      <shapes type="SHAPEWITHSTYLE"/>
    </item>
    <item type="DefineEditTextTag" characterID="9" fontId="1" hasTextColor="true" html="true" initialText="&lt;p align=&quot;left&quot;&gt;&lt;font face=&quot;$EverywhereFont&quot; size=&quot;20&quot; color=&quot;#FFFFFF&quot;&gt;Name&lt;/font&gt;&lt;/p&gt;" useOutlines="true" variableName="">
      <bounds type="RECT" Xmax="2000" Xmin="0" Ymax="400" Ymin="0" nbits="13"/>
      <textColor type="RGBA" alpha="255" blue="255" green="255" red="255"/>
    </item>
    <item type="DefineEditTextTag" characterID="10" fontId="1" hasTextColor="true" initialText="Sliders" useOutlines="true">
      <textColor type="RGBA" alpha="255" blue="0" green="0" red="0"/>
    </item>
    <item type="DefineEditTextTag" characterID="11" fontId="2" initialText="Plain" useOutlines="false"/>
    <item type="DefineSpriteTag" frameCount="1" spriteId="5">
      <subTags>
        <item type="PlaceObject2Tag" characterId="2" depth="0" placeFlagHasCharacter="true" placeFlagHasColorTransform="false" placeFlagHasMatrix="true">
          <matrix type="MATRIX" hasRotate="false" hasScale="false" rotateSkew0="0" rotateSkew1="0" scaleX="0" scaleY="0" translateX="0" translateY="0"/>
        </item>
        <item type="PlaceObject2Tag" characterId="3" depth="1" placeFlagHasCharacter="true" placeFlagHasColorTransform="true" placeFlagHasMatrix="true">
          <matrix type="MATRIX" hasRotate="false" hasScale="false" rotateSkew0="0" rotateSkew1="0" scaleX="0" scaleY="0" translateX="100" translateY="0"/>
          <colorTransform type="CXFORMWITHALPHA" alphaAddTerm="0" alphaMultTerm="256" blueAddTerm="0" blueMultTerm="256" greenAddTerm="0" greenMultTerm="256" hasAddTerms="false" hasMultTerms="true" nbits="10" redAddTerm="0" redMultTerm="256"/>
        </item>
        <item type="ShowFrameTag"/>
      </subTags>
    </item>
    <item type="DefineSpriteTag" frameCount="1" spriteId="6">
      <subTags>
        <item type="PlaceObject2Tag" characterId="2" depth="1" placeFlagHasColorTransform="false" placeFlagHasMatrix="true">
          <matrix type="MATRIX" hasRotate="false" hasScale="false" scaleX="0" scaleY="0" translateX="0" translateY="0"/>
        </item>
        <item type="PlaceObject2Tag" characterId="4" depth="2" placeFlagHasColorTransform="false" placeFlagHasMatrix="true">
          <matrix type="MATRIX" hasRotate="false" hasScale="false" scaleX="0" scaleY="0" translateX="0" translateY="20"/>
        </item>
        <item type="ShowFrameTag"/>
      </subTags>
    </item>
    <item type="ShowFrameTag"/>
    <item type="EndTag"/>
  </tags>
</swf>
`

// SampleSpec is a patch.json exercising every edit family against SampleXML.
const SampleSpec = `{
    // stretch the stage and restyle the sliders
    "interface_test.swf": {
        "header": {"displayRect": {"Xmax": "30720"}},
        "shapes": [
            {"filePath": "shapes/slider.svg", "index": [3], "shapeBounds": {"Xmin": "-240", "Xmax": "240"}},
        ],
        "sprites": [
            {"SpriteID": "5", "CharacterID": ["2"], "Depth": ["0"], "MATRIX": {"scaleX": "2.0"}},
            {"SpriteID": "6", "CharacterID": ["*"], "Depth": ["*"], "colorTransform": {"hasMultTerms": true, "redMultTerm": 128}},
        ],
        "text": [
            {"index": ["9"], "font": 3, "useOutlines": false, "color": "#1A2B3C"},
        ],
    },
}
`

// WriteFile writes content to dir/name, creating parent directories.
// Returns the full path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	p := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", name, err)
	}
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return p
}

// WriteTempJSON marshals a value to JSON and writes it to a temporary file.
// Returns the path to the temporary file.
// The file is automatically cleaned up when the test completes (via t.TempDir).
func WriteTempJSON(t *testing.T, doc any) string {
	t.Helper()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal document to JSON: %v", err)
	}

	tmpFile := filepath.Join(t.TempDir(), "patch.json")
	if err := os.WriteFile(tmpFile, data, 0o600); err != nil {
		t.Fatalf("Failed to write temporary JSON file: %v", err)
	}

	return tmpFile
}

// NewPatchDir creates a patch directory holding SampleSpec and an empty
// shapes/slider.svg. Returns the directory.
func NewPatchDir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	WriteFile(t, dir, "patch.json", SampleSpec)
	WriteFile(t, dir, "shapes/slider.svg", `<svg xmlns="http://www.w3.org/2000/svg"/>`)
	return dir
}
