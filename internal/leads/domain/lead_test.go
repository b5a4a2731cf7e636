package domain

import "testing"

func TestEtapaValid(t *testing.T) {
	for _, e := range Etapas {
		if !e.Valid() {
			t.Errorf("Etapa(%q).Valid() = false, want true", e)
		}
	}

	// The repository default and every stage switch must agree on the
	// pipeline vocabulary; values outside it are rejected.
	for _, e := range []Etapa{"", "nuevo", "won", "Prospecto"} {
		if e.Valid() {
			t.Errorf("Etapa(%q).Valid() = true, want false", e)
		}
	}
}

func TestEtapaClosed(t *testing.T) {
	tests := []struct {
		etapa Etapa
		want  bool
	}{
		{EtapaProspecto, false},
		{EtapaEnNegociacion, false},
		{EtapaGanado, true},
		{EtapaPerdido, true},
	}

	for _, tt := range tests {
		if got := tt.etapa.Closed(); got != tt.want {
			t.Errorf("Etapa(%q).Closed() = %v, want %v", tt.etapa, got, tt.want)
		}
	}
}
