package report

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spachava753/revbench/internal/models"
	"github.com/spachava753/revbench/internal/util"
)

// Markdown renders doc as a human-readable comparison report.
func Markdown(doc Document) string {
	var b strings.Builder
	revisions := doc.revisions()

	b.WriteString("# Benchmark Results\n\n")

	fmt.Fprintf(&b, "**Generated:** %s\n\n", util.ISOTimestamp(doc.Timestamp))
	fmt.Fprintf(&b, "**Benchmark Directory:** `%s`\n\n", doc.ProjectDir)
	if doc.ProjectRevision != "" {
		fmt.Fprintf(&b, "**Project Git Revision:** `%s`\n\n", doc.ProjectRevision)
	}
	b.WriteString("**Revisions Benchmarked:**\n")
	for _, rr := range revisions {
		fmt.Fprintf(&b, "- %s (`%s`): `%s`\n", rr.Name, rr.RevisionKey, rr.CommitHash)
	}
	b.WriteString("\n")

	if len(doc.Results.Failures) > 0 {
		b.WriteString("## ⚠️ Failures\n\n")
		b.WriteString("The following revisions encountered errors during benchmarking:\n\n")
		for _, f := range doc.Results.Failures {
			fmt.Fprintf(&b, "### %s (`%s`)\n\n", f.RevisionName, f.RevisionKey)
			fmt.Fprintf(&b, "**Commit:** `%s`\n\n", f.CommitHash)
			fmt.Fprintf(&b, "**Error:**\n```\n%s\n```\n\n", errorMessage(f.Error))
		}
	}

	for _, gr := range doc.groups() {
		writeGroup(&b, gr, revisions)
	}

	b.WriteString("## Revisions\n\n")
	for _, rr := range revisions {
		fmt.Fprintf(&b, "- **%s** (`%s`): `%s`", rr.Name, rr.RevisionKey, rr.CommitHash)
		if !rr.Success {
			b.WriteString(" ❌ Failed")
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	return b.String()
}

func writeGroup(b *strings.Builder, gr *models.GroupResult, revisions []*models.RevisionResult) {
	fmt.Fprintf(b, "## %s\n\n", gr.GroupName)
	if len(gr.Benchmarks) == 0 {
		b.WriteString("*No benchmarks in this group.*\n\n")
		return
	}
	writeTable(b, gr, revisions)
	writeChart(b, gr, revisions)
	writeDetails(b, gr, revisions)
}

func writeTable(b *strings.Builder, gr *models.GroupResult, revisions []*models.RevisionResult) {
	b.WriteString("| Benchmark |")
	for _, rr := range revisions {
		fmt.Fprintf(b, " %s (s) |", rr.Name)
	}
	b.WriteString("\n|-----------|")
	for range revisions {
		b.WriteString("--------------|")
	}
	b.WriteString("\n")

	for _, row := range gr.Benchmarks {
		fmt.Fprintf(b, "| %s |", row.DisplayName)
		for _, rr := range revisions {
			entry, ok := row.Revisions[rr.RevisionKey]
			switch {
			case !ok:
				b.WriteString(" - |")
			case !entry.Success || entry.Result == nil:
				b.WriteString(" ❌ Failed |")
			default:
				fmt.Fprintf(b, " %.3f ± %s |", entry.Result.Mean, stddev(entry.Result, ""))
			}
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func writeChart(b *strings.Builder, gr *models.GroupResult, revisions []*models.RevisionResult) {
	var (
		labels []string
		values []string
		maxVal float64
	)
	for _, row := range gr.Benchmarks {
		for _, rr := range revisions {
			entry, ok := row.Revisions[rr.RevisionKey]
			if !ok || !entry.Success || entry.Result == nil {
				continue
			}
			labels = append(labels, fmt.Sprintf("%q", row.DisplayName+" ("+entry.RevisionName+")"))
			values = append(values, fmt.Sprintf("%.3f", entry.Result.Mean))
			maxVal = max(maxVal, entry.Result.Mean)
		}
	}
	if len(labels) == 0 {
		return
	}

	b.WriteString("\n### Performance Comparison Chart\n\n")
	b.WriteString("```mermaid\n")
	b.WriteString("---\n")
	b.WriteString("config:\n")
	b.WriteString("  xyChart:\n")
	b.WriteString("    chartOrientation: \"horizontal\"\n")
	b.WriteString("---\n")
	b.WriteString("xychart-beta\n")
	b.WriteString("  title \"Benchmark Execution Time (seconds)\"\n")
	fmt.Fprintf(b, "  x-axis [%s]\n", strings.Join(labels, ", "))
	fmt.Fprintf(b, "  y-axis \"Time (seconds)\" 0 --> %.1f\n", maxVal*1.1)
	fmt.Fprintf(b, "  bar [%s]\n", strings.Join(values, ", "))
	b.WriteString("```\n\n")
}

func writeDetails(b *strings.Builder, gr *models.GroupResult, revisions []*models.RevisionResult) {
	b.WriteString("### Detailed Results\n\n")
	for _, row := range gr.Benchmarks {
		fmt.Fprintf(b, "#### %s\n\n", row.DisplayName)
		for _, key := range entryOrder(row, revisions) {
			entry := row.Revisions[key]
			fmt.Fprintf(b, "**%s** (`%s` - `%s`):\n", entry.RevisionName, key, util.ShortHash(entry.CommitHash))
			if !entry.Success || entry.Result == nil {
				b.WriteString("- ❌ Failed\n\n")
				continue
			}
			r := entry.Result
			fmt.Fprintf(b, "- Mean: %.3fs ± %s\n", r.Mean, stddev(r, "s"))
			fmt.Fprintf(b, "- Min: %.3fs\n", r.Min)
			fmt.Fprintf(b, "- Max: %.3fs\n", r.Max)
			fmt.Fprintf(b, "- Median: %.3fs\n\n", r.Median)
		}
	}
}

// entryOrder lists the revisions present in row, in run order.
func entryOrder(row models.GroupBenchmarkResult, revisions []*models.RevisionResult) []string {
	var keys []string
	for _, rr := range revisions {
		if _, ok := row.Revisions[rr.RevisionKey]; ok {
			keys = append(keys, rr.RevisionKey)
		}
	}
	// entries for revisions outside the run order, e.g. hand-built results
	var extra []string
	for key := range row.Revisions {
		if !slices.Contains(keys, key) {
			extra = append(extra, key)
		}
	}
	slices.Sort(extra)
	return append(keys, extra...)
}

func stddev(r *models.TimingResult, unit string) string {
	if r.Stddev == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.3f%s", *r.Stddev, unit)
}

func errorMessage(err *models.RevisionError) string {
	if err == nil {
		return "unknown error"
	}
	return err.Message
}
