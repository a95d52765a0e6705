// Package memory implementa los repositorios y el TxRunner en memoria.
//
// Cada transacción trabaja sobre una copia del estado y la publica solo si fn
// termina sin error; las transacciones se serializan con un mutex, lo que
// equivale a bloquear todas las filas que tocan. Se usa en pruebas.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jhoicas/billar-api/internal/application/ports"
	"github.com/jhoicas/billar-api/internal/domain/entity"
	"github.com/jhoicas/billar-api/internal/domain/repository"
)

var _ ports.TxRunner = (*Store)(nil)

type stockKey struct{ product, warehouse string }

type state struct {
	tables     map[string]entity.Table
	rentals    map[string]entity.Rental
	items      map[string]entity.RentalItem
	itemOrder  []string
	products   map[string]entity.Product
	warehouses map[string]entity.Warehouse
	stocks     map[stockKey]entity.Stock
	kardex     []entity.KardexEntry
	sessions   map[string]entity.CashSession
	movements  []entity.CashMovement
	documents  map[string]entity.Document
	docOrder   []string
	sequences  map[string]int64
	users      map[string]entity.User
}

func newState() *state {
	return &state{
		tables:     map[string]entity.Table{},
		rentals:    map[string]entity.Rental{},
		items:      map[string]entity.RentalItem{},
		products:   map[string]entity.Product{},
		warehouses: map[string]entity.Warehouse{},
		stocks:     map[stockKey]entity.Stock{},
		sessions:   map[string]entity.CashSession{},
		documents:  map[string]entity.Document{},
		sequences:  map[string]int64{},
		users:      map[string]entity.User{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.tables {
		c.tables[k] = v
	}
	for k, v := range s.rentals {
		c.rentals[k] = v
	}
	for k, v := range s.items {
		c.items[k] = v
	}
	c.itemOrder = append([]string(nil), s.itemOrder...)
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.warehouses {
		c.warehouses[k] = v
	}
	for k, v := range s.stocks {
		c.stocks[k] = v
	}
	c.kardex = append([]entity.KardexEntry(nil), s.kardex...)
	for k, v := range s.sessions {
		c.sessions[k] = v
	}
	c.movements = append([]entity.CashMovement(nil), s.movements...)
	for k, v := range s.documents {
		c.documents[k] = v
	}
	c.docOrder = append([]string(nil), s.docOrder...)
	for k, v := range s.sequences {
		c.sequences[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	return c
}

func (s *state) repos() repository.Repos {
	return repository.Repos{
		Tables:        &tableRepo{s},
		Rentals:       &rentalRepo{s},
		RentalItems:   &rentalItemRepo{s},
		Products:      &productRepo{s},
		Warehouses:    &warehouseRepo{s},
		Stocks:        &stockRepo{s},
		Kardex:        &kardexRepo{s},
		CashSessions:  &cashSessionRepo{s},
		CashMovements: &cashMovementRepo{s},
		Documents:     &documentRepo{s},
		Users:         &userRepo{s},
		Analytics:     &analyticsRepo{s},
	}
}

// Store base de datos en memoria con semántica transaccional.
type Store struct {
	mu sync.Mutex
	st *state
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

// Run ejecuta fn sobre una copia del estado y la confirma si no hay error.
func (s *Store) Run(ctx context.Context, fn func(r repository.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	work := s.st.clone()
	if err := fn(work.repos()); err != nil {
		return err
	}
	s.st = work
	return nil
}

// Read ejecuta fn sobre una copia descartable del estado.
func (s *Store) Read(ctx context.Context, fn func(r repository.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.st.clone().repos())
}

// ── Helpers de siembra y aserción ────────────────────────────────────────────

// PutTable inserta o reemplaza una mesa.
func (s *Store) PutTable(t entity.Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.tables[t.ID] = t
}

// PutProduct inserta o reemplaza un producto.
func (s *Store) PutProduct(p entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.products[p.ID] = p
}

// PutWarehouse inserta o reemplaza una bodega.
func (s *Store) PutWarehouse(w entity.Warehouse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.warehouses[w.ID] = w
}

// PutStock inserta o reemplaza una fila de stock.
func (s *Store) PutStock(st entity.Stock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.stocks[stockKey{st.ProductID, st.WarehouseID}] = st
}

// PutUser inserta o reemplaza un usuario.
func (s *Store) PutUser(u entity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.users[u.ID] = u
}

// PutDocument inserta un documento ya numerado.
func (s *Store) PutDocument(d entity.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.st.documents[d.ID]; !ok {
		s.st.docOrder = append(s.st.docOrder, d.ID)
	}
	s.st.documents[d.ID] = d
}

// Table copia de la mesa confirmada; nil si no existe.
func (s *Store) Table(id string) *entity.Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.st.tables[id]
	if !ok {
		return nil
	}
	return &t
}

// Stock copia de la fila de stock confirmada; nil si no existe.
func (s *Store) Stock(productID, warehouseID string) *entity.Stock {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.st.stocks[stockKey{productID, warehouseID}]
	if !ok {
		return nil
	}
	return &st
}

// Rentals alquileres confirmados de una mesa, por inicio ascendente.
func (s *Store) Rentals(tableID string) []entity.Rental {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.Rental
	for _, r := range s.st.rentals {
		if r.TableID == tableID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.Before(out[j].StartedAt) })
	return out
}

// KardexEntries entradas confirmadas en orden de inserción.
func (s *Store) KardexEntries() []entity.KardexEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.KardexEntry(nil), s.st.kardex...)
}

// CashMovements movimientos confirmados de todas las sesiones.
func (s *Store) CashMovements() []entity.CashMovement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.CashMovement(nil), s.st.movements...)
}

// Documents documentos confirmados en orden de emisión.
func (s *Store) Documents() []entity.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Document, 0, len(s.st.docOrder))
	for _, id := range s.st.docOrder {
		out = append(out, s.st.documents[id])
	}
	return out
}
