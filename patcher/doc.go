// Package patcher orchestrates a full patch run.
//
// For every entry of the patch spec, in order:
//
//  1. locate <extracted archive>/<AssetDir>/<entry>
//  2. build the shape job queue and run the replacements in place
//  3. when the edit touches the header, sprites, text or shape bounds,
//     export the XML tree, transform it and recompile it
//  4. place the result under OutputRoot at the asset's archive-relative path
//
// Assets are processed strictly one after another. The archive is extracted
// into a DRIP_* scratch directory that is removed when the run ends.
//
// A run can be executed synchronously with Run or in the background with
// Start:
//
//	job := patcher.New(opts).Start(ctx)
//	// ...
//	job.Cancel()
//	report, err := job.Wait()
//
// DryRun reports the shape jobs and tree decisions of every asset without
// extracting anything or running a tool.
package patcher
