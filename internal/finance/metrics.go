package finance

import "math"

// Summary aggregates the synced transactions of a project.
type Summary struct {
	TotalRevenue       float64 `json:"totalRevenue"`
	MRR                float64 `json:"mrr"`
	ARR                float64 `json:"arr"`
	PendingCollections float64 `json:"pendingCollections"`
	TransactionCount   int     `json:"transactionCount"`
}

// ComputeSummary derives revenue metrics from a transaction set. MRR sums
// paid subscriptions normalized to a monthly amount; yearly plans count
// for a twelfth of their price. ARR is twelve times MRR.
func ComputeSummary(txns []Transaction) Summary {
	var s Summary
	s.TransactionCount = len(txns)

	for _, t := range txns {
		switch t.Status {
		case TxnStatusPaid:
			s.TotalRevenue += t.Amount
		case TxnStatusPending:
			s.PendingCollections += t.Amount
			continue
		default:
			continue
		}

		if t.Type != TxnTypeSubscription {
			continue
		}
		switch t.Interval {
		case IntervalMonth:
			s.MRR += t.Amount
		case IntervalYear:
			s.MRR += t.Amount / 12
		}
	}

	s.TotalRevenue = round2(s.TotalRevenue)
	s.MRR = round2(s.MRR)
	s.ARR = round2(s.MRR * 12)
	s.PendingCollections = round2(s.PendingCollections)
	return s
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
