package report

import (
	"io"
	"strings"

	"golang.org/x/perf/benchfmt"

	"github.com/spachava753/revbench/internal/models"
)

// Benchfmt writes every timing sample of doc in the Go benchmark format so
// that revisions can be compared with benchstat, e.g.
//
//	benchstat -col revision results.txt
//
// Each benchmark name is the group key followed by the display name.
func Benchfmt(w io.Writer, doc Document) error {
	bw := benchfmt.NewWriter(w)
	res := &benchfmt.Result{}
	res.Config = append(res.Config, fileConfig("project", doc.ProjectDir))
	if doc.ProjectRevision != "" {
		res.Config = append(res.Config, fileConfig("project-commit", doc.ProjectRevision))
	}
	revIdx := len(res.Config)
	res.Config = append(res.Config, fileConfig("revision", ""), fileConfig("commit", ""))

	for _, rr := range doc.revisions() {
		if !rr.Success {
			continue
		}
		res.Config[revIdx].Value = []byte(rr.RevisionKey)
		res.Config[revIdx+1].Value = []byte(rr.CommitHash)
		for _, br := range rr.Benchmarks {
			if br.Result == nil {
				continue
			}
			res.Name = benchfmt.Name(benchName(br))
			for _, sample := range samples(br.Result) {
				res.Iters = 1
				res.Values = append(res.Values[:0], benchfmt.Value{Value: sample, Unit: "sec/op"})
				if err := bw.Write(res); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func fileConfig(key, value string) benchfmt.Config {
	return benchfmt.Config{Key: key, Value: []byte(value), File: true}
}

func benchName(br models.BenchmarkResult) string {
	return sanitizeName(br.GroupKey) + "/" + sanitizeName(br.DisplayName)
}

// samples prefers the individual run times and falls back to the mean.
func samples(r *models.TimingResult) []float64 {
	if len(r.Times) > 0 {
		return r.Times
	}
	return []float64{r.Mean}
}

// sanitizeName makes s a single benchmark name token.
func sanitizeName(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '/':
			return '_'
		}
		return r
	}, s)
}
