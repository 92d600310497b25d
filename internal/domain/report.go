package domain

import "time"

// ScanSummary es el contrato de salida de un ciclo de scan: solo contadores.
// Se persiste como fila de historial.
type ScanSummary struct {
	ScannedAt      time.Time
	TotalMarkets   int
	ValidMarkets   int
	DroppedRecords int // registros raw descartados por DataShapeError
	Groups         int
	ArbitrageCount int
	HedgeCount     int
}

// ScanReport es el payload que reciben los notifiers al final de un ciclo.
type ScanReport struct {
	Summary       ScanSummary
	ExpiryBuckets map[string]int
	TopHedges     []HedgeOpportunity
	TopArbitrage  []ArbitrageOpportunity
}
