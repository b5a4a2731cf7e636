package finance

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

const (
	TxnTypeSubscription = "subscription"
	TxnTypeOneTime      = "one_time"

	TxnStatusPaid    = "paid"
	TxnStatusPending = "pending"

	IntervalMonth = "month"
	IntervalYear  = "year"

	providerPageSize = 25
)

// Transaction is a payment-provider transaction as returned by the sync
// provider, before persistence.
type Transaction struct {
	ExternalID string
	Type       string
	Status     string
	Amount     float64
	Currency   string
	Interval   string
	Customer   string
	OccurredAt time.Time
}

// Provider fetches transactions from the payment provider, one page at a
// time. An empty page marks the end of the window.
type Provider interface {
	FetchPage(ctx context.Context, projectID uuid.UUID, since time.Time, page int) ([]Transaction, error)
	PageCount(ctx context.Context, projectID uuid.UUID, since time.Time) (int, error)
}

// MockProvider generates a deterministic transaction stream per project.
// The same project and window always produce the same transactions, which
// keeps repeated syncs idempotent upserts.
type MockProvider struct {
	now func() time.Time
}

func NewMockProvider() *MockProvider {
	return &MockProvider{now: time.Now}
}

func (p *MockProvider) PageCount(_ context.Context, projectID uuid.UUID, since time.Time) (int, error) {
	total := p.transactionCount(projectID, since)
	return (total + providerPageSize - 1) / providerPageSize, nil
}

func (p *MockProvider) FetchPage(ctx context.Context, projectID uuid.UUID, since time.Time, page int) ([]Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	total := p.transactionCount(projectID, since)
	start := page * providerPageSize
	if start >= total {
		return nil, nil
	}
	end := min(start+providerPageSize, total)

	out := make([]Transaction, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, p.transaction(projectID, since, i))
	}
	return out, nil
}

// transactionCount derives a stable volume from the project id and the
// number of days in the window.
func (p *MockProvider) transactionCount(projectID uuid.UUID, since time.Time) int {
	days := int(math.Ceil(p.now().Sub(since).Hours() / 24))
	if days < 1 {
		days = 1
	}
	seed := seedFor(projectID)
	perDay := 1 + int(seed%3)
	return days * perDay
}

func (p *MockProvider) transaction(projectID uuid.UUID, since time.Time, index int) Transaction {
	seed := seedFor(projectID) + uint64(index)*2654435761

	txn := Transaction{
		ExternalID: fmt.Sprintf("txn_%s_%06d", projectID.String()[:8], index),
		Currency:   "eur",
		Customer:   fmt.Sprintf("cus_%04d", seed%500),
		OccurredAt: since.Add(time.Duration(index) * 6 * time.Hour).Truncate(time.Second),
	}

	switch seed % 10 {
	case 0, 1, 2, 3, 4, 5: // monthly subscriptions dominate
		txn.Type = TxnTypeSubscription
		txn.Interval = IntervalMonth
		txn.Amount = float64(19 + seed%5*10)
	case 6, 7:
		txn.Type = TxnTypeSubscription
		txn.Interval = IntervalYear
		txn.Amount = float64(199 + seed%3*100)
	default:
		txn.Type = TxnTypeOneTime
		txn.Amount = float64(50 + seed%20*25)
	}

	if seed%7 == 0 {
		txn.Status = TxnStatusPending
	} else {
		txn.Status = TxnStatusPaid
	}

	return txn
}

func seedFor(projectID uuid.UUID) uint64 {
	var seed uint64
	for _, b := range projectID {
		seed = seed*31 + uint64(b)
	}
	return seed
}
