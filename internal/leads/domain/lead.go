// Package domain holds the pipeline vocabulary shared by the leads packages.
package domain

// Etapa is a lead's position in the sales pipeline.
type Etapa string

const (
	EtapaProspecto     Etapa = "prospecto"
	EtapaContactado    Etapa = "contactado"
	EtapaCualificado   Etapa = "cualificado"
	EtapaPropuesta     Etapa = "propuesta"
	EtapaEnNegociacion Etapa = "en_negociacion"
	EtapaGanado        Etapa = "ganado"
	EtapaPerdido       Etapa = "perdido"
)

// Etapas lists every valid pipeline stage in funnel order.
var Etapas = []Etapa{
	EtapaProspecto,
	EtapaContactado,
	EtapaCualificado,
	EtapaPropuesta,
	EtapaEnNegociacion,
	EtapaGanado,
	EtapaPerdido,
}

func (e Etapa) Valid() bool {
	for _, v := range Etapas {
		if e == v {
			return true
		}
	}
	return false
}

// Closed reports whether the stage is terminal. Closed leads score zero
// stage points because there is no deal left to prioritize.
func (e Etapa) Closed() bool {
	return e == EtapaGanado || e == EtapaPerdido
}

// Classification is the temperature bucket derived from the total score.
type Classification string

const (
	ClassificationHot  Classification = "hot"
	ClassificationSQL  Classification = "sql"
	ClassificationMQL  Classification = "mql"
	ClassificationWarm Classification = "warm"
	ClassificationCold Classification = "cold"
)
