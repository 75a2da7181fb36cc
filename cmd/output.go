package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/relaybuild/relay/pkg/project"
)

func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

// syncReport is the JSON form of a project.SyncResult.
type syncReport struct {
	Dependencies   []string `json:"dependencies"`
	Mapped         []string `json:"mapped"`
	Unmapped       []string `json:"unmapped"`
	MissingMarkers []string `json:"missing_markers"`
	ScriptChanged  bool     `json:"build_script_changed"`
	Stale          []string `json:"stale"`
}

func newSyncReport(r *project.SyncResult) *syncReport {
	if r == nil {
		return nil
	}
	report := &syncReport{
		Dependencies:   []string{},
		Mapped:         []string{},
		Unmapped:       []string{},
		MissingMarkers: []string{},
		Stale:          []string{},
	}
	if r.Mirror != nil {
		report.Dependencies = append(report.Dependencies, r.Mirror.Names()...)
	}
	if r.Patch != nil {
		report.Mapped = append(report.Mapped, r.Patch.Mapped...)
		report.Unmapped = append(report.Unmapped, r.Patch.Unmapped...)
		for _, region := range r.Patch.MissingRegions {
			report.MissingMarkers = append(report.MissingMarkers, region.Name)
		}
		report.ScriptChanged = r.Patch.Changed
	}
	for _, s := range r.Stale {
		report.Stale = append(report.Stale, s.Path)
	}
	return report
}

// printSync summarises derived artifact updates for humans.
func (s *session) printSync(r *project.SyncResult) {
	if r == nil {
		return
	}
	if r.Mirror != nil {
		s.out.Success("Updated vcpkg.json (%d dependencies)", len(r.Mirror.Dependencies))
	}
	if r.Patch != nil {
		if r.Patch.Changed {
			s.out.Success("Updated CMakeLists.txt")
		} else {
			s.out.Info("CMakeLists.txt already up to date")
		}
	}
	for _, stale := range r.Stale {
		s.out.Warn("%s is out of date: %v", stale.Path, stale.Err)
	}
	if !r.OK() {
		s.out.Warn("Fix the problem above and run 'relay sync'")
	}
}
