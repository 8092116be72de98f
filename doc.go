// Package drip patches compiled SWF interface files of a game mod by applying
// a declarative patch specification.
//
// A patch is a directory holding a patch.json file (JSON with comments and
// trailing commas allowed) plus any SVG shapes it references. The top level of
// patch.json maps each target SWF, relative to the archive's interface folder,
// to the edits for that file:
//
//	{
//	    // swap the logo and recolor every label
//	    "racesex_menu.swf": {
//	        "shapes": [{"filePath": "shapes/logo.svg", "index": [12, 14]}],
//	        "sprites": [{
//	            "SpriteID": "*",
//	            "CharacterID": ["40"],
//	            "Depth": ["*"],
//	            "MATRIX": {"scaleX": "1.25"},
//	        }],
//	        "text": [{"index": ["*"], "color": "#e0c080"}],
//	    },
//	}
//
// # Packages
//
//   - patchspec: load and validate patch specifications
//   - shapejob: build the shape replacement queue for one SWF
//   - swfxml: the FFDec XML intermediate tree
//   - transform: apply header, shape bound, sprite and text edits to a tree
//   - placer: copy finished files into the output tree
//   - ffdec, extract: external collaborators (JPEXS FFDec, archive unpacking)
//   - patcher: the orchestrator tying everything together
//   - driperrors: error taxonomy for errors.Is / errors.As
//   - eventlog: structured logging sink used by every component
//
// # Quick Start
//
//	tool, err := ffdec.NewCLI("java -jar ffdec.jar")
//	if err != nil {
//	    return err
//	}
//	p := patcher.New(patcher.Options{
//	    PatchPath:   "path/to/patch",
//	    ArchivePath: "path/to/RaceMenu.bsa",
//	    OutputRoot:  "path/to/mod",
//	    Tool:        tool,
//	})
//	report, err := p.Run(ctx)
//
// The drip command wraps the same pipeline; run "drip help" for details.
package drip
