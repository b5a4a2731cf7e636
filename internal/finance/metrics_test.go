package finance

import (
	"math"
	"testing"
	"time"
)

func txn(typ, status, interval string, amount float64) Transaction {
	return Transaction{
		Type:       typ,
		Status:     status,
		Interval:   interval,
		Amount:     amount,
		Currency:   "eur",
		OccurredAt: time.Now(),
	}
}

func TestComputeSummary_MRR(t *testing.T) {
	tests := []struct {
		name    string
		txns    []Transaction
		wantMRR float64
		wantARR float64
	}{
		{
			"monthly subscriptions sum directly",
			[]Transaction{
				txn(TxnTypeSubscription, TxnStatusPaid, IntervalMonth, 29),
				txn(TxnTypeSubscription, TxnStatusPaid, IntervalMonth, 49),
			},
			78, 936,
		},
		{
			"yearly plans normalized to a twelfth",
			[]Transaction{
				txn(TxnTypeSubscription, TxnStatusPaid, IntervalYear, 1200),
			},
			100, 1200,
		},
		{
			"mixed intervals",
			[]Transaction{
				txn(TxnTypeSubscription, TxnStatusPaid, IntervalMonth, 50),
				txn(TxnTypeSubscription, TxnStatusPaid, IntervalYear, 600),
			},
			100, 1200,
		},
		{
			"one-time payments never count toward mrr",
			[]Transaction{
				txn(TxnTypeOneTime, TxnStatusPaid, "", 5000),
				txn(TxnTypeSubscription, TxnStatusPaid, IntervalMonth, 30),
			},
			30, 360,
		},
		{
			"pending subscriptions excluded",
			[]Transaction{
				txn(TxnTypeSubscription, TxnStatusPending, IntervalMonth, 99),
			},
			0, 0,
		},
		{"empty", nil, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ComputeSummary(tt.txns)
			if math.Abs(s.MRR-tt.wantMRR) > 0.001 {
				t.Errorf("MRR = %v, want %v", s.MRR, tt.wantMRR)
			}
			if math.Abs(s.ARR-tt.wantARR) > 0.001 {
				t.Errorf("ARR = %v, want %v", s.ARR, tt.wantARR)
			}
		})
	}
}

func TestComputeSummary_RevenueAndPending(t *testing.T) {
	txns := []Transaction{
		txn(TxnTypeSubscription, TxnStatusPaid, IntervalMonth, 29),
		txn(TxnTypeOneTime, TxnStatusPaid, "", 250),
		txn(TxnTypeOneTime, TxnStatusPending, "", 75),
		txn(TxnTypeSubscription, TxnStatusPending, IntervalMonth, 49),
	}

	s := ComputeSummary(txns)
	if s.TotalRevenue != 279 {
		t.Errorf("TotalRevenue = %v, want 279", s.TotalRevenue)
	}
	if s.PendingCollections != 124 {
		t.Errorf("PendingCollections = %v, want 124", s.PendingCollections)
	}
	if s.TransactionCount != 4 {
		t.Errorf("TransactionCount = %v, want 4", s.TransactionCount)
	}
}

func TestComputeSummary_RoundsToTwoDecimals(t *testing.T) {
	s := ComputeSummary([]Transaction{
		txn(TxnTypeSubscription, TxnStatusPaid, IntervalYear, 100),
	})
	if s.MRR != 8.33 {
		t.Errorf("MRR = %v, want 8.33", s.MRR)
	}
	if s.ARR != 99.96 {
		t.Errorf("ARR = %v, want 99.96", s.ARR)
	}
}
