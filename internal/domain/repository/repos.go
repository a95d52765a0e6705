package repository

// Repos conjunto de repositorios atados a una misma conexión o transacción.
type Repos struct {
	Tables        TableRepository
	Rentals       RentalRepository
	RentalItems   RentalItemRepository
	Products      ProductRepository
	Warehouses    WarehouseRepository
	Stocks        StockRepository
	Kardex        KardexRepository
	CashSessions  CashSessionRepository
	CashMovements CashMovementRepository
	Documents     DocumentRepository
	Users         UserRepository
	Analytics     AnalyticsRepository
}
