package patcher

import (
	"errors"
	"fmt"
	"time"

	"github.com/erraggy/drip/shapejob"
	"github.com/erraggy/drip/transform"
)

// Stage names the step that produced a warning.
type Stage string

const (
	StageSpec      Stage = "spec"
	StageShapes    Stage = "shapes"
	StageTransform Stage = "transform"
	StagePlace     Stage = "place"
)

// Warning is a non-fatal issue recorded during a run.
type Warning struct {
	Asset   string `json:"asset" yaml:"asset"`
	Stage   Stage  `json:"stage" yaml:"stage"`
	Message string `json:"message" yaml:"message"`
	Line    int    `json:"line,omitempty" yaml:"line,omitempty"`
	// Err is the underlying warning, for errors.Is.
	Err error `json:"-" yaml:"-"`
}

func (w Warning) String() string {
	if w.Line > 0 {
		return fmt.Sprintf("%s [%s] line %d: %s", w.Asset, w.Stage, w.Line, w.Message)
	}
	return fmt.Sprintf("%s [%s]: %s", w.Asset, w.Stage, w.Message)
}

// AssetResult is the outcome for one spec entry.
type AssetResult struct {
	Name   string `json:"name" yaml:"name"`
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
	// Jobs is the shape replacement queue that was (or would be) run.
	Jobs []shapejob.Job `json:"jobs,omitempty" yaml:"jobs,omitempty"`
	// TreeEdit reports whether the asset needs (or got) the XML round trip.
	TreeEdit    bool                     `json:"treeEdit" yaml:"treeEdit"`
	OutputPath  string                   `json:"outputPath,omitempty" yaml:"outputPath,omitempty"`
	TreePath    string                   `json:"treePath,omitempty" yaml:"treePath,omitempty"`
	Overwritten bool                     `json:"overwritten,omitempty" yaml:"overwritten,omitempty"`
	Changes     []transform.ChangeRecord `json:"changes,omitempty" yaml:"changes,omitempty"`
	Warnings    []Warning                `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	// Error is set when KeepGoing skipped the asset after a failure.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
	err   error
}

// Err returns the failure that skipped the asset, if any.
func (a *AssetResult) Err() error { return a.err }

// Report summarizes a run.
type Report struct {
	DryRun   bool           `json:"dryRun" yaml:"dryRun"`
	Spec     string         `json:"spec" yaml:"spec"`
	Archive  string         `json:"archive" yaml:"archive"`
	Output   string         `json:"output,omitempty" yaml:"output,omitempty"`
	Assets   []*AssetResult `json:"assets" yaml:"assets"`
	Duration time.Duration  `json:"duration" yaml:"duration"`
}

// Warnings returns every warning of every asset, in order.
func (r *Report) Warnings() []Warning {
	var out []Warning
	for _, a := range r.Assets {
		out = append(out, a.Warnings...)
	}
	return out
}

// WarningCount returns the total number of warnings.
func (r *Report) WarningCount() int {
	n := 0
	for _, a := range r.Assets {
		n += len(a.Warnings)
	}
	return n
}

// Failed returns the assets skipped after a failure.
func (r *Report) Failed() []*AssetResult {
	var out []*AssetResult
	for _, a := range r.Assets {
		if a.err != nil {
			out = append(out, a)
		}
	}
	return out
}

// Err joins the failures of skipped assets; nil when every asset succeeded.
func (r *Report) Err() error {
	var errs []error
	for _, a := range r.Failed() {
		errs = append(errs, a.err)
	}
	return errors.Join(errs...)
}

// Asset returns the result for a spec key.
func (r *Report) Asset(name string) *AssetResult {
	for _, a := range r.Assets {
		if a.Name == name {
			return a
		}
	}
	return nil
}

func (a *AssetResult) addShapeWarnings(ws shapejob.Warnings) {
	for _, w := range ws {
		a.Warnings = append(a.Warnings, Warning{
			Asset: a.Name, Stage: StageShapes, Message: w.String(), Line: w.Pos.Line, Err: w,
		})
	}
}

func (a *AssetResult) addTransformWarnings(ws transform.Warnings) {
	for _, w := range ws {
		a.Warnings = append(a.Warnings, Warning{
			Asset: a.Name, Stage: StageTransform, Message: w.String(), Line: w.Pos.Line, Err: w,
		})
	}
}
