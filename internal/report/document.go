// Package report renders aggregated benchmark results.
package report

import (
	"time"

	"github.com/spachava753/revbench/internal/models"
)

// Document is everything a reporter needs about one project's run.
type Document struct {
	RunID           string
	Timestamp       time.Time
	ProjectDir      string
	ProjectRevision string // empty when the project is not a git repository
	Results         *models.AggregatedResults
}

// revisions returns the revision results in run order.
func (d Document) revisions() []*models.RevisionResult {
	out := make([]*models.RevisionResult, 0, len(d.Results.RevisionOrder))
	for _, key := range d.Results.RevisionOrder {
		if rr, ok := d.Results.Revisions[key]; ok {
			out = append(out, rr)
		}
	}
	return out
}

// groups returns the group results in declaration order.
func (d Document) groups() []*models.GroupResult {
	out := make([]*models.GroupResult, 0, len(d.Results.GroupOrder))
	for _, key := range d.Results.GroupOrder {
		if gr, ok := d.Results.Groups[key]; ok {
			out = append(out, gr)
		}
	}
	return out
}
