package attendance

import (
	"context"
	"fmt"
	"math"

	"github.com/mohammadsarfarazafzal/face-recognition-attendance-manager/internal/database"
)

// SubjectPercentage is the attendance share for one (identity, subject)
// pair. Total counts distinct session dates for the subject; Present
// counts distinct dates with a present record.
type SubjectPercentage struct {
	Subject    string  `json:"subject"`
	Present    int     `json:"present"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// Report is the full per-subject breakdown plus the overall aggregate for
// one identity. Overall is the arithmetic mean of per-subject percentages.
type Report struct {
	Identity string              `json:"identity"`
	Subjects []SubjectPercentage `json:"subjects"`
	Overall  float64             `json:"overall"`
}

// Aggregator computes attendance percentages from recorded sessions and
// rows using unique-session-date semantics.
type Aggregator struct {
	store database.AttendanceStore
}

// NewAggregator creates an aggregator on top of an attendance store.
func NewAggregator(store database.AttendanceStore) *Aggregator {
	return &Aggregator{store: store}
}

// SubjectPercentage computes the percentage for one (identity, subject)
// pair. A subject with zero session dates yields 0, never a division error.
func (a *Aggregator) SubjectPercentage(ctx context.Context, identity, subject string) (SubjectPercentage, error) {
	total, err := a.store.CountSessionDates(ctx, subject)
	if err != nil {
		return SubjectPercentage{}, fmt.Errorf("count session dates: %w", err)
	}
	present, err := a.store.CountPresentDates(ctx, identity, subject)
	if err != nil {
		return SubjectPercentage{}, fmt.Errorf("count present dates: %w", err)
	}

	p := SubjectPercentage{Subject: subject, Present: present, Total: total}
	if total > 0 {
		p.Percentage = round2(float64(present) / float64(total) * 100)
	}
	return p, nil
}

// Report computes the per-subject breakdown and the overall aggregate in
// one call, covering every subject with at least one session.
func (a *Aggregator) Report(ctx context.Context, identity string) (*Report, error) {
	subjects, err := a.store.SessionSubjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}

	report := &Report{Identity: identity}
	var sum float64
	for _, subject := range subjects {
		p, err := a.SubjectPercentage(ctx, identity, subject)
		if err != nil {
			return nil, err
		}
		report.Subjects = append(report.Subjects, p)
		sum += p.Percentage
	}
	if len(report.Subjects) > 0 {
		report.Overall = round2(sum / float64(len(report.Subjects)))
	}
	return report, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
