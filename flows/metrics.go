package flows

import (
	"context"
	"fmt"
	"strings"

	"github.com/poiesic/lorecraft/core"
	"github.com/poiesic/lorecraft/storage"
)

// MetricsReport is a snapshot of what users have been asking about.
type MetricsReport struct {
	Concepts []*core.ConceptMetric
	Queries  []*core.QueryRecord
}

// ReadMetricsReport reads the concept counters and the most recent
// questions from the metrics repository.
func ReadMetricsReport(ctx context.Context, repo storage.MetricsRepository, recentQueries int) (*MetricsReport, error) {
	concepts, err := repo.ReadMetrics(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read concept metrics: %w", err)
	}

	report := &MetricsReport{Concepts: concepts}
	if recentQueries > 0 {
		queries, err := repo.RecentQueries(ctx, recentQueries)
		if err != nil {
			return nil, fmt.Errorf("failed to read recent queries: %w", err)
		}
		report.Queries = queries
	}
	return report, nil
}

// Render formats the report as plain text, one line per entry.
func (r *MetricsReport) Render() string {
	var sb strings.Builder

	sb.WriteString("Concepts:\n")
	if len(r.Concepts) == 0 {
		sb.WriteString("  (none)\n")
	}
	for _, metric := range r.Concepts {
		fmt.Fprintf(&sb, "  %6d  %s\n", metric.Count, metric.Concept)
	}

	if len(r.Queries) > 0 {
		sb.WriteString("\nRecent questions:\n")
		for _, query := range r.Queries {
			fmt.Fprintf(&sb, "  %s  %s\n", query.AskedAt.Format("2006-01-02 15:04"), query.Text)
		}
	}
	return sb.String()
}
