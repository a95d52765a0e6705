package entity

import "github.com/shopspring/decimal"

// DocumentDetail línea inmutable de un documento.
type DocumentDetail struct {
	ID          string
	DocumentID  string
	LineNo      int
	ProductID   *string
	Description string
	Quantity    decimal.Decimal
	Unit        string
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
}
