package report

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/spachava753/revbench/internal/config"
	"github.com/spachava753/revbench/internal/util"
)

// FileName returns the report file name for format at ts.
func FileName(format string, ts time.Time) (string, error) {
	stamp := util.FileTimestamp(ts)
	switch format {
	case config.ReportMarkdown:
		return "benchmark-summary-" + stamp + ".md", nil
	case config.ReportJSON:
		return "benchmark-results-" + stamp + ".json", nil
	case config.ReportBenchfmt:
		return "benchmark-results-" + stamp + ".txt", nil
	case config.ReportMetrics:
		return "benchmark-metrics-" + stamp + ".prom", nil
	default:
		return "", fmt.Errorf("unknown report format %q", format)
	}
}

// Writer writes the selected report formats next to each other.
type Writer struct {
	formats []string
}

// NewWriter creates a Writer for formats.
func NewWriter(formats []string) *Writer {
	return &Writer{formats: formats}
}

// Write renders doc in every format into dir and returns the written
// paths in format order. Formats are written concurrently.
func (w *Writer) Write(ctx context.Context, dir string, doc Document) ([]string, error) {
	paths := make([]string, len(w.formats))
	for i, format := range w.formats {
		name, err := FileName(format, doc.Timestamp)
		if err != nil {
			return nil, err
		}
		paths[i] = filepath.Join(dir, name)
	}

	g, ctx := errgroup.WithContext(ctx)
	for i, format := range w.formats {
		i, format := i, format
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := writeFormat(format, paths[i], doc); err != nil {
				return fmt.Errorf("writing %s report: %w", format, err)
			}
			slog.Info("report written", "format", format, "path", paths[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

func writeFormat(format, path string, doc Document) error {
	switch format {
	case config.ReportMarkdown:
		return os.WriteFile(path, []byte(Markdown(doc)), 0o644)
	case config.ReportJSON:
		data, err := JSON(doc)
		if err != nil {
			return err
		}
		return os.WriteFile(path, append(data, '\n'), 0o644)
	case config.ReportBenchfmt:
		var buf bytes.Buffer
		if err := Benchfmt(&buf, doc); err != nil {
			return err
		}
		return os.WriteFile(path, buf.Bytes(), 0o644)
	case config.ReportMetrics:
		return WriteMetrics(path, doc)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}
