// Package driperrors provides structured error types for drip.
//
// Import path: github.com/erraggy/drip/driperrors
//
// The types let callers tell fatal run failures apart with [errors.Is] and
// [errors.As]. Non-fatal conditions (a selector that matched nothing, a shape
// file that does not exist) never abort a run; they are reported as warnings
// whose cause matches one of the non-fatal sentinels below.
//
// # Fatal Error Types
//
//   - [InvalidPatchError]: patch.json missing, unreadable or malformed
//   - [SourceAssetMissingError]: the source archive or a target SWF is absent
//   - [ExternalToolError]: FFDec or the extraction command failed
//   - [ConfigError]: invalid configuration or options
//
// # Sentinel Errors
//
//   - [ErrInvalidPatch], [ErrSourceAssetMissing], [ErrExternalTool], [ErrConfig]
//     match the types above
//   - [ErrUnresolvedSelector]: a shape, sprite or text selector matched no nodes
//   - [ErrMissingReplacementAsset]: a shape replacement file does not exist
//
// # Usage Examples
//
//	report, err := p.Run(ctx)
//	if errors.Is(err, driperrors.ErrInvalidPatch) {
//	    // nothing was extracted yet; fix patch.json and retry
//	}
//
//	var toolErr *driperrors.ExternalToolError
//	if errors.As(err, &toolErr) {
//	    fmt.Printf("%s failed on %s (exit %d)\n", toolErr.Operation, toolErr.Asset, toolErr.ExitCode)
//	}
//
//	for _, w := range report.Warnings {
//	    if errors.Is(w, driperrors.ErrUnresolvedSelector) {
//	        // the patch targets a node this SWF version does not have
//	    }
//	}
package driperrors
