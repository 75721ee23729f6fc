// Package dashboard builds the client and freelancer dashboard summaries.
// Summaries are materialized in a cache by the read path; lifecycle writes
// invalidate them.
package dashboard

import (
	"context"
	"time"

	"github.com/lllypuk/gigwork/internal/domain/uuid"
)

// HistogramMonths is how many calendar months the spending and earnings
// histograms cover, the current month included.
const HistogramMonths = 6

// MonthBucket is one histogram bar, keyed by calendar month. Keying by
// year+month keeps two Januaries from collapsing into one bar.
type MonthBucket struct {
	Year   int        `json:"year"`
	Month  time.Month `json:"month"`
	Amount float64    `json:"amount"`
}

// ClientSummary is the poster-side dashboard payload.
type ClientSummary struct {
	OpenCount       int           `json:"open_count"`
	AssignedCount   int           `json:"assigned_count"`
	InProgressCount int           `json:"in_progress_count"`
	InReviewCount   int           `json:"in_review_count"`
	CompletedCount  int           `json:"completed_count"`
	TotalSpent      float64       `json:"total_spent"`
	MonthlySpending []MonthBucket `json:"monthly_spending"`
}

// FreelancerSummary is the freelancer-side dashboard payload.
type FreelancerSummary struct {
	AssignedCount   int           `json:"assigned_count"`
	ActiveCount     int           `json:"active_count"`
	CompletedCount  int           `json:"completed_count"`
	TotalEarnings   float64       `json:"total_earnings"`
	MonthlyEarnings []MonthBucket `json:"monthly_earnings"`
}

// SummaryCache stores materialized summaries. Declared on the consumer side;
// the Redis implementation lives in infrastructure.
type SummaryCache interface {
	GetClient(ctx context.Context, userID uuid.UUID) ([]byte, error)
	SetClient(ctx context.Context, userID uuid.UUID, payload []byte) error
	GetFreelancer(ctx context.Context, userID uuid.UUID) ([]byte, error)
	SetFreelancer(ctx context.Context, userID uuid.UUID, payload []byte) error
}

// emptyBuckets returns the last HistogramMonths calendar months ending at
// now, oldest first, all zero. Months are UTC calendar months so that the
// window and the bucketing of individual amounts agree.
func emptyBuckets(now time.Time) []MonthBucket {
	buckets := make([]MonthBucket, 0, HistogramMonths)
	year, month, _ := now.UTC().Date()
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(HistogramMonths - 1), 0)
	for i := range HistogramMonths {
		m := first.AddDate(0, i, 0)
		buckets = append(buckets, MonthBucket{Year: m.Year(), Month: m.Month()})
	}
	return buckets
}

// addToBucket adds amount to the bucket matching t, if t falls in the window.
// t is normalized to UTC first: stored timestamps may carry any location, and
// near a month boundary the local month differs from the UTC one.
func addToBucket(buckets []MonthBucket, t time.Time, amount float64) {
	year, month, _ := t.UTC().Date()
	for i := range buckets {
		if buckets[i].Year == year && buckets[i].Month == month {
			buckets[i].Amount += amount
			return
		}
	}
}
