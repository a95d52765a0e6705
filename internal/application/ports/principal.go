package ports

// Principal usuario autenticado que ejecuta la operación.
// WarehouseID es la bodega por defecto para descargos de stock; puede venir vacío.
type Principal struct {
	UserID      string
	WarehouseID string
	Role        string
}
