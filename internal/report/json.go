package report

import (
	"encoding/json"

	"github.com/spachava753/revbench/internal/models"
	"github.com/spachava753/revbench/internal/util"
)

type jsonReport struct {
	RunID           string                  `json:"runId"`
	Timestamp       string                  `json:"timestamp"`
	ProjectDir      string                  `json:"projectDirectory"`
	ProjectRevision *string                 `json:"projectRevision"`
	RevisionOrder   []string                `json:"revisionOrder"`
	Revisions       map[string]jsonRevision `json:"revisions"`
	GroupOrder      []string                `json:"groupOrder"`
	Groups          map[string]jsonGroup    `json:"groups"`
	Failures        []jsonFailure           `json:"failures"`
}

type jsonRevision struct {
	Name       string          `json:"name"`
	CommitHash string          `json:"commitHash"`
	Success    bool            `json:"success"`
	Error      *string         `json:"error"`
	ErrorType  string          `json:"errorType,omitempty"`
	Benchmarks []jsonBenchmark `json:"benchmarks"`
}

type jsonBenchmark struct {
	Index       int                  `json:"index"`
	Command     string               `json:"command"`
	DisplayName string               `json:"displayName"`
	GroupKey    string               `json:"groupKey"`
	Result      *models.TimingResult `json:"result"`
}

type jsonGroup struct {
	Name       string         `json:"name"`
	Benchmarks []jsonGroupRow `json:"benchmarks"`
}

type jsonGroupRow struct {
	DisplayName string                   `json:"displayName"`
	Revisions   map[string]jsonGroupCell `json:"revisions"`
}

type jsonGroupCell struct {
	Name       string               `json:"name"`
	CommitHash string               `json:"commitHash"`
	Success    bool                 `json:"success"`
	Result     *models.TimingResult `json:"result"`
}

type jsonFailure struct {
	RevisionKey  string  `json:"revisionKey"`
	RevisionName string  `json:"revisionName"`
	CommitHash   string  `json:"commitHash"`
	Error        *string `json:"error"`
	ErrorType    string  `json:"errorType,omitempty"`
}

// JSON renders doc as an indented machine-readable report.
func JSON(doc Document) ([]byte, error) {
	res := doc.Results
	out := jsonReport{
		RunID:         doc.RunID,
		Timestamp:     util.ISOTimestamp(doc.Timestamp),
		ProjectDir:    doc.ProjectDir,
		RevisionOrder: nonNil(res.RevisionOrder),
		Revisions:     make(map[string]jsonRevision, len(res.Revisions)),
		GroupOrder:    nonNil(res.GroupOrder),
		Groups:        make(map[string]jsonGroup, len(res.Groups)),
		Failures:      make([]jsonFailure, 0, len(res.Failures)),
	}
	if doc.ProjectRevision != "" {
		rev := doc.ProjectRevision
		out.ProjectRevision = &rev
	}

	for key, rr := range res.Revisions {
		jr := jsonRevision{
			Name:       rr.Name,
			CommitHash: rr.CommitHash,
			Success:    rr.Success,
			Benchmarks: make([]jsonBenchmark, 0, len(rr.Benchmarks)),
		}
		jr.Error, jr.ErrorType = errorFields(rr.Error)
		for _, br := range rr.Benchmarks {
			jr.Benchmarks = append(jr.Benchmarks, jsonBenchmark{
				Index:       br.Index,
				Command:     br.Command,
				DisplayName: br.DisplayName,
				GroupKey:    br.GroupKey,
				Result:      br.Result,
			})
		}
		out.Revisions[key] = jr
	}

	for key, gr := range res.Groups {
		jg := jsonGroup{Name: gr.GroupName, Benchmarks: make([]jsonGroupRow, 0, len(gr.Benchmarks))}
		for _, row := range gr.Benchmarks {
			cells := make(map[string]jsonGroupCell, len(row.Revisions))
			for revKey, entry := range row.Revisions {
				cells[revKey] = jsonGroupCell{
					Name:       entry.RevisionName,
					CommitHash: entry.CommitHash,
					Success:    entry.Success,
					Result:     entry.Result,
				}
			}
			jg.Benchmarks = append(jg.Benchmarks, jsonGroupRow{DisplayName: row.DisplayName, Revisions: cells})
		}
		out.Groups[key] = jg
	}

	for _, f := range res.Failures {
		jf := jsonFailure{RevisionKey: f.RevisionKey, RevisionName: f.RevisionName, CommitHash: f.CommitHash}
		jf.Error, jf.ErrorType = errorFields(f.Error)
		out.Failures = append(out.Failures, jf)
	}

	return json.MarshalIndent(out, "", "  ")
}

func errorFields(err *models.RevisionError) (*string, string) {
	if err == nil {
		return nil, ""
	}
	msg := err.Message
	return &msg, string(err.Type)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
