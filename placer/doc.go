// Package placer writes recompiled assets into the output tree.
//
// The output tree mirrors the extracted archive: an asset found at
// interface/menus/foo.swf inside the extraction root lands at
// <outputRoot>/interface/menus/foo.swf. Existing files are replaced
// (last patch wins) with a warning. Paths that leave the root and symlink
// targets are rejected.
package placer
