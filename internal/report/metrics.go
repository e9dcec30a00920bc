package report

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

var metricLabels = []string{"project", "revision", "commit", "group", "benchmark"}

// Metrics collects doc into a fresh registry suitable for the node
// exporter textfile collector.
func Metrics(doc Document) (*prometheus.Registry, error) {
	reg := prometheus.NewRegistry()

	mean := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "revbench",
		Name:      "benchmark_mean_seconds",
		Help:      "Mean wall clock time of a benchmark on a revision.",
	}, metricLabels)
	stddev := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "revbench",
		Name:      "benchmark_stddev_seconds",
		Help:      "Standard deviation of the wall clock time of a benchmark on a revision.",
	}, metricLabels)
	success := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "revbench",
		Name:      "revision_success",
		Help:      "1 if every benchmark of the revision produced results, 0 otherwise.",
	}, []string{"project", "revision", "commit"})

	for _, c := range []prometheus.Collector{mean, stddev, success} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("registering metric: %w", err)
		}
	}

	for _, rr := range doc.revisions() {
		ok := 0.0
		if rr.Success {
			ok = 1
		}
		success.WithLabelValues(doc.ProjectDir, rr.RevisionKey, rr.CommitHash).Set(ok)

		for _, br := range rr.Benchmarks {
			if br.Result == nil {
				continue
			}
			labels := []string{doc.ProjectDir, rr.RevisionKey, rr.CommitHash, br.GroupKey, br.DisplayName}
			mean.WithLabelValues(labels...).Set(br.Result.Mean)
			if br.Result.Stddev != nil {
				stddev.WithLabelValues(labels...).Set(*br.Result.Stddev)
			}
		}
	}
	return reg, nil
}

// WriteMetrics writes doc as a Prometheus textfile at path.
func WriteMetrics(path string, doc Document) error {
	reg, err := Metrics(doc)
	if err != nil {
		return err
	}
	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
