package domain

// PartitionType describe qué parámetro separa los mercados de un grupo.
type PartitionType string

const (
	PartitionTimeframe PartitionType = "timeframe" // misma pregunta, distinta fecha
	PartitionThreshold PartitionType = "threshold" // misma pregunta, distinto umbral
	PartitionCandidate PartitionType = "candidate" // enfrentamientos "X vs Y"
	PartitionUnknown   PartitionType = "unknown"
)

// MarketGroup es un cluster de mercados que comparten la misma pregunta base
// y difieren solo en un parámetro (umbral, fecha, candidato).
// Solo se materializan grupos con >= 2 miembros; los singletons se descartan.
type MarketGroup struct {
	ID            string // hash estable de la pregunta base
	Name          string // pregunta base truncada
	PartitionType PartitionType
	Markets       []Market
}

// Size devuelve el número de mercados del grupo.
func (g MarketGroup) Size() int {
	return len(g.Markets)
}
