package obvs

import (
	"math"
	"testing"

	"novahub_backend/platform/apperr"

	"github.com/google/uuid"
)

func TestComputeMetrics(t *testing.T) {
	tests := []struct {
		name           string
		cantidad       float64
		precioUnitario float64
		costes         float64
		wantFact       float64
		wantMargen     float64
		wantPct        float64
	}{
		{"simple sale", 10, 100, 400, 1000, 600, 60},
		{"no costs", 5, 20, 0, 100, 100, 100},
		{"break even", 2, 50, 100, 100, 0, 0},
		{"fractional units", 1.5, 10, 5, 15, 10, 66.67},
		{"rounding to two decimals", 3, 33.33, 50, 99.99, 49.99, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ComputeMetrics(tt.cantidad, tt.precioUnitario, tt.costes)
			if err != nil {
				t.Fatalf("ComputeMetrics() error = %v", err)
			}
			if math.Abs(m.Facturacion-tt.wantFact) > 0.001 {
				t.Errorf("Facturacion = %v, want %v", m.Facturacion, tt.wantFact)
			}
			if math.Abs(m.Margen-tt.wantMargen) > 0.001 {
				t.Errorf("Margen = %v, want %v", m.Margen, tt.wantMargen)
			}
			if math.Abs(m.MargenPorcentual-tt.wantPct) > 0.001 {
				t.Errorf("MargenPorcentual = %v, want %v", m.MargenPorcentual, tt.wantPct)
			}
		})
	}
}

func TestComputeMetrics_Rejections(t *testing.T) {
	tests := []struct {
		name           string
		cantidad       float64
		precioUnitario float64
		costes         float64
	}{
		{"zero cantidad", 0, 100, 0},
		{"negative cantidad", -1, 100, 0},
		{"zero price", 10, 0, 0},
		{"negative costes", 10, 100, -1},
		{"costes above revenue", 10, 100, 1001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeMetrics(tt.cantidad, tt.precioUnitario, tt.costes)
			if err == nil {
				t.Fatal("ComputeMetrics() expected error, got nil")
			}
			if !apperr.Is(err, apperr.KindValidation) {
				t.Errorf("error kind = %v, want validation", err)
			}
		})
	}
}

func TestValidateParticipants(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	c := uuid.New()

	tests := []struct {
		name         string
		participants []Participant
		wantErr      bool
	}{
		{"single full share", []Participant{{UserID: a, Porcentaje: 100}}, false},
		{"even split", []Participant{{UserID: a, Porcentaje: 50}, {UserID: b, Porcentaje: 50}}, false},
		{"three way split within tolerance", []Participant{
			{UserID: a, Porcentaje: 33.33},
			{UserID: b, Porcentaje: 33.33},
			{UserID: c, Porcentaje: 33.34},
		}, false},
		{"empty", nil, true},
		{"sum below 100", []Participant{{UserID: a, Porcentaje: 60}, {UserID: b, Porcentaje: 30}}, true},
		{"sum above 100", []Participant{{UserID: a, Porcentaje: 60}, {UserID: b, Porcentaje: 50}}, true},
		{"zero share", []Participant{{UserID: a, Porcentaje: 0}, {UserID: b, Porcentaje: 100}}, true},
		{"negative share", []Participant{{UserID: a, Porcentaje: -10}, {UserID: b, Porcentaje: 110}}, true},
		{"duplicate participant", []Participant{{UserID: a, Porcentaje: 50}, {UserID: a, Porcentaje: 50}}, true},
		{"nil user id", []Participant{{UserID: uuid.Nil, Porcentaje: 100}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateParticipants(tt.participants)
			if tt.wantErr && err == nil {
				t.Fatal("ValidateParticipants() expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("ValidateParticipants() error = %v", err)
			}
			if tt.wantErr && !apperr.Is(err, apperr.KindValidation) {
				t.Errorf("error kind = %v, want validation", err)
			}
		})
	}
}
