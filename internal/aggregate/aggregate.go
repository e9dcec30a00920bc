// Package aggregate correlates raw timing results with the execution plan
// and projects them into per-revision and per-group views.
package aggregate

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spachava753/revbench/internal/config"
	"github.com/spachava753/revbench/internal/models"
)

// Files reads result files by path. fstest.MapFS satisfies it.
type Files interface {
	ReadFile(name string) ([]byte, error)
}

// OSFiles reads from the host filesystem.
type OSFiles struct{}

func (OSFiles) ReadFile(name string) ([]byte, error) { return os.ReadFile(name) }

// Aggregator builds AggregatedResults from execution outcomes.
type Aggregator struct {
	files Files
}

// New creates an Aggregator reading result files from files.
func New(files Files) *Aggregator {
	return &Aggregator{files: files}
}

// Aggregate combines the outcomes of every executed revision. Revisions
// appear in plan order; revisions without an outcome are left out. A
// revision whose results cannot be read or matched is recorded as a failure.
func (a *Aggregator) Aggregate(cfg *config.Configuration, plan *models.ExecutionPlan, outcomes map[string]models.ExecutionOutcome) *models.AggregatedResults {
	res := &models.AggregatedResults{
		Revisions: make(map[string]*models.RevisionResult),
		Groups:    make(map[string]*models.GroupResult),
		Failures:  []models.FailureInfo{},
	}

	for _, rp := range plan.Revisions {
		outcome, ok := outcomes[rp.RevisionKey]
		if !ok {
			continue
		}
		res.RevisionOrder = append(res.RevisionOrder, rp.RevisionKey)

		rr := &models.RevisionResult{
			RevisionKey: rp.RevisionKey,
			Name:        rp.Name,
			CommitHash:  rp.CommitHash,
			Benchmarks:  []models.BenchmarkResult{},
		}
		res.Revisions[rp.RevisionKey] = rr

		revErr := outcome.Err
		if revErr == nil && !outcome.Success {
			revErr = &models.RevisionError{Type: models.ErrInternalError, Message: "revision failed without an error"}
		}
		if revErr == nil && outcome.ResultFilePath != "" {
			rr.Benchmarks, revErr = a.collect(rp, outcome.ResultFilePath)
		}
		if revErr != nil {
			rr.Error = revErr
			rr.Benchmarks = []models.BenchmarkResult{}
			res.Failures = append(res.Failures, models.FailureInfo{
				RevisionKey:  rp.RevisionKey,
				RevisionName: rp.Name,
				CommitHash:   rp.CommitHash,
				Error:        revErr,
			})
			continue
		}
		rr.Success = true
	}

	a.projectGroups(cfg, res)
	return res
}

// collect reads a result file and fans each matched entry out to every
// group membership of its benchmark.
func (a *Aggregator) collect(rp models.RevisionPlan, path string) ([]models.BenchmarkResult, *models.RevisionError) {
	data, err := a.files.ReadFile(path)
	if err != nil {
		return nil, &models.RevisionError{
			Type:    models.ErrResultFileMissing,
			Message: fmt.Sprintf("Failed to read result file: %s", err),
		}
	}
	var export models.TimingExport
	if err := json.Unmarshal(data, &export); err != nil {
		return nil, &models.RevisionError{
			Type:    models.ErrResultFileInvalid,
			Message: fmt.Sprintf("Failed to read result file: %s", err),
		}
	}

	matched, err := Correlate(rp, export.Results)
	if err != nil {
		return nil, &models.RevisionError{Type: models.ErrResultCountMismatch, Message: err.Error()}
	}

	var out []models.BenchmarkResult
	for i, b := range rp.Benchmarks {
		for _, gm := range b.GroupMemberships {
			out = append(out, models.BenchmarkResult{
				Index:       b.Index,
				Command:     b.Command,
				DisplayName: gm.DisplayName,
				GroupKey:    gm.GroupKey,
				Result:      matched[i],
			})
		}
	}
	return out, nil
}

// Correlate pairs each planned benchmark with its raw result. The counts
// must agree. Entries are matched by command label when every label is
// present in the results, and by position otherwise.
func Correlate(rp models.RevisionPlan, results []models.TimingResult) ([]*models.TimingResult, error) {
	if len(results) != len(rp.Benchmarks) {
		return nil, fmt.Errorf("expected %d result(s) for revision '%s' but the result file contains %d",
			len(rp.Benchmarks), rp.RevisionKey, len(results))
	}

	byLabel := make(map[string]int, len(results))
	for i, r := range results {
		if _, dup := byLabel[r.Command]; !dup {
			byLabel[r.Command] = i
		}
	}

	matched := make([]*models.TimingResult, len(rp.Benchmarks))
	for i, b := range rp.Benchmarks {
		j, ok := byLabel[rp.CommandLabel(b)]
		if !ok {
			return positional(results), nil
		}
		matched[i] = &results[j]
	}
	return matched, nil
}

func positional(results []models.TimingResult) []*models.TimingResult {
	out := make([]*models.TimingResult, len(results))
	for i := range results {
		out[i] = &results[i]
	}
	return out
}

func (a *Aggregator) projectGroups(cfg *config.Configuration, res *models.AggregatedResults) {
	rows := make(map[string]map[string]int) // group key -> display name -> row
	for _, key := range cfg.GroupKeys() {
		g, _ := cfg.Group(key)
		res.GroupOrder = append(res.GroupOrder, key)
		res.Groups[key] = &models.GroupResult{
			GroupKey:   key,
			GroupName:  g.Name(),
			Benchmarks: []models.GroupBenchmarkResult{},
		}
		rows[key] = make(map[string]int)
	}

	for _, revKey := range res.RevisionOrder {
		rr := res.Revisions[revKey]
		for _, br := range rr.Benchmarks {
			gr, ok := res.Groups[br.GroupKey]
			if !ok {
				continue
			}
			row, ok := rows[br.GroupKey][br.DisplayName]
			if !ok {
				row = len(gr.Benchmarks)
				rows[br.GroupKey][br.DisplayName] = row
				gr.Benchmarks = append(gr.Benchmarks, models.GroupBenchmarkResult{
					DisplayName: br.DisplayName,
					Revisions:   make(map[string]models.GroupRevisionEntry),
				})
			}
			if _, taken := gr.Benchmarks[row].Revisions[revKey]; taken {
				slog.Warn("benchmarks share a display name within a group; keeping the last one",
					"group", br.GroupKey, "display_name", br.DisplayName, "revision", revKey, "index", br.Index)
			}
			gr.Benchmarks[row].Revisions[revKey] = models.GroupRevisionEntry{
				RevisionName: rr.Name,
				CommitHash:   rr.CommitHash,
				Success:      rr.Success,
				Result:       br.Result,
			}
		}
	}
}

// SucceededEmpty reports whether a revision succeeded without measuring
// anything.
func SucceededEmpty(rr *models.RevisionResult) bool {
	return rr.Success && len(rr.Benchmarks) == 0
}
