// Package ffdec wraps the JPEXS Free Flash Decompiler command line.
//
// Three operations are used:
//
//	ffdec -swf2xml <in.swf> <out.xml>
//	ffdec -xml2swf <in.xml> <out.swf>
//	ffdec -replace <in.swf> <out.swf> <characterId> <shape.svg> nofill
//
// The tree for foo.swf is written to foo.xml next to it, and recompiling
// foo.xml produces foo.patched.swf, so the extracted original is never
// overwritten by a conversion. Shape replacement rewrites the asset in place.
//
// Failures (non-zero exit, missing input, or no output file) are reported as
// *driperrors.ExternalToolError. Cancelling the context kills FFDec and its
// JVM.
package ffdec
