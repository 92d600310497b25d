package domain

import "fmt"

// DataShapeError indica que un registro raw de la API tiene un campo
// malformado y no puede normalizarse a Market. El registro se descarta y
// se cuenta; el scan continúa con el resto.
type DataShapeError struct {
	MarketID string
	Field    string
	Reason   string
}

func (e *DataShapeError) Error() string {
	return fmt.Sprintf("data shape: market %q field %q: %s", e.MarketID, e.Field, e.Reason)
}
