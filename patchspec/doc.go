// Package patchspec loads drip patch specifications.
//
// A patch specification (patch.json) maps target asset names to the edits
// drip applies to them:
//
//	{
//	    // comments and trailing commas are allowed
//	    "racesex_menu.swf": {
//	        "header": {"displayRect": {"Xmax": "25600"}},
//	        "shapes": [
//	            {"filePath": "shapes/slider.svg", "index": [12, 14]},
//	        ],
//	        "sprites": [
//	            {
//	                "SpriteID": "5",
//	                "CharacterID": ["2"],
//	                "Depth": ["*"],
//	                "MATRIX": {"scaleX": "2.0"},
//	                "colorTransform": {"hasMultTerms": true, "redMultTerm": 256},
//	            },
//	        ],
//	        "text": [
//	            {"index": ["*"], "font": 3, "useOutlines": false, "color": "#1a2b3c"},
//	        ],
//	    },
//	}
//
// The document is standardized from JWCC to JSON and decoded through a YAML
// node tree, so entries keep their document order and every edit records
// its source line. Plain YAML documents are accepted as well.
//
// Loading only rejects documents that are missing or not well formed.
// Fields that cannot be decoded are kept as [Problem] values on the edit and
// surface as warnings during a run. [Validate] applies the stricter checks
// used by "drip validate" and "drip patch --strict".
package patchspec
