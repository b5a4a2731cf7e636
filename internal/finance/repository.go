package finance

import (
	"context"
	"fmt"

	"novahub_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	opUpsert      = "finance.repository.upsert"
	opListTxns    = "finance.repository.list_transactions"
	opSaveMetrics = "finance.repository.save_metrics"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// UpsertTransactions writes a provider batch, keyed on external id.
// Re-syncing the same window is a no-op apart from status updates.
func (r *Repository) UpsertTransactions(ctx context.Context, projectID uuid.UUID, txns []Transaction) (int, error) {
	if len(txns) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, t := range txns {
		var interval *string
		if t.Interval != "" {
			iv := t.Interval
			interval = &iv
		}
		batch.Queue(`
			INSERT INTO synced_transactions
				(project_id, external_id, type, status, amount, currency, interval, customer, occurred_at, synced_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
			ON CONFLICT (project_id, external_id)
			DO UPDATE SET status = EXCLUDED.status, amount = EXCLUDED.amount, synced_at = now()
		`, projectID, t.ExternalID, t.Type, t.Status, t.Amount, t.Currency, interval, t.Customer, t.OccurredAt)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range txns {
		if _, err := results.Exec(); err != nil {
			return 0, apperr.Internal(fmt.Sprintf("upsert transaction failed: %v", err)).WithOp(opUpsert)
		}
	}
	return len(txns), nil
}

// ListTransactions returns every synced transaction for the project.
func (r *Repository) ListTransactions(ctx context.Context, projectID uuid.UUID) ([]Transaction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT external_id, type, status, amount, currency, COALESCE(interval, ''), customer, occurred_at
		FROM synced_transactions
		WHERE project_id = $1
		ORDER BY occurred_at DESC`, projectID)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list transactions failed: %v", err)).WithOp(opListTxns)
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ExternalID, &t.Type, &t.Status, &t.Amount, &t.Currency, &t.Interval, &t.Customer, &t.OccurredAt); err != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan transaction failed: %v", err)).WithOp(opListTxns)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(fmt.Sprintf("iterate transactions failed: %v", err)).WithOp(opListTxns)
	}
	return out, nil
}

// SaveMetrics stores the latest computed summary for the project.
func (r *Repository) SaveMetrics(ctx context.Context, projectID uuid.UUID, s Summary) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO financial_metrics
			(project_id, total_revenue, mrr, arr, pending_collections, transaction_count, computed_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (project_id)
		DO UPDATE SET
			total_revenue = EXCLUDED.total_revenue,
			mrr = EXCLUDED.mrr,
			arr = EXCLUDED.arr,
			pending_collections = EXCLUDED.pending_collections,
			transaction_count = EXCLUDED.transaction_count,
			computed_at = now()
	`, projectID, s.TotalRevenue, s.MRR, s.ARR, s.PendingCollections, s.TransactionCount)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("save metrics failed: %v", err)).WithOp(opSaveMetrics)
	}
	return nil
}
