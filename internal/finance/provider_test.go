package finance

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestMockProvider_Deterministic(t *testing.T) {
	provider := NewMockProvider()
	fixed := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	provider.now = func() time.Time { return fixed }

	projectID := uuid.New()
	since := fixed.Add(-30 * 24 * time.Hour)
	ctx := context.Background()

	first, err := provider.FetchPage(ctx, projectID, since, 0)
	if err != nil {
		t.Fatalf("FetchPage() error = %v", err)
	}
	second, err := provider.FetchPage(ctx, projectID, since, 0)
	if err != nil {
		t.Fatalf("FetchPage() error = %v", err)
	}

	if len(first) == 0 {
		t.Fatal("FetchPage() returned no transactions")
	}
	if len(first) != len(second) {
		t.Fatalf("page sizes differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("transaction %d differs between identical fetches", i)
		}
	}
}

func TestMockProvider_PagesCoverAllTransactions(t *testing.T) {
	provider := NewMockProvider()
	fixed := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	provider.now = func() time.Time { return fixed }

	projectID := uuid.New()
	since := fixed.Add(-30 * 24 * time.Hour)
	ctx := context.Background()

	pages, err := provider.PageCount(ctx, projectID, since)
	if err != nil {
		t.Fatalf("PageCount() error = %v", err)
	}
	if pages == 0 {
		t.Fatal("PageCount() = 0, want at least one page")
	}

	seen := make(map[string]bool)
	for page := 0; page < pages; page++ {
		txns, err := provider.FetchPage(ctx, projectID, since, page)
		if err != nil {
			t.Fatalf("FetchPage(%d) error = %v", page, err)
		}
		if page < pages-1 && len(txns) != providerPageSize {
			t.Errorf("page %d has %d transactions, want full page of %d", page, len(txns), providerPageSize)
		}
		for _, txn := range txns {
			if seen[txn.ExternalID] {
				t.Errorf("duplicate external id %s across pages", txn.ExternalID)
			}
			seen[txn.ExternalID] = true
		}
	}

	// One past the final page is empty.
	extra, err := provider.FetchPage(ctx, projectID, since, pages)
	if err != nil {
		t.Fatalf("FetchPage() past end error = %v", err)
	}
	if len(extra) != 0 {
		t.Errorf("page past end has %d transactions, want 0", len(extra))
	}
}
