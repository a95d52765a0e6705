package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/billar-api/internal/application/analytics"
	"github.com/jhoicas/billar-api/internal/application/billing"
	"github.com/jhoicas/billar-api/internal/application/cash"
	"github.com/jhoicas/billar-api/internal/application/document"
	"github.com/jhoicas/billar-api/internal/application/dto"
	"github.com/jhoicas/billar-api/internal/application/inventory"
	"github.com/jhoicas/billar-api/internal/application/rental"
	"github.com/jhoicas/billar-api/internal/application/usecase"
	"github.com/jhoicas/billar-api/internal/domain/entity"
	"github.com/jhoicas/billar-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/billar-api/internal/interfaces/http"
	"github.com/jhoicas/billar-api/pkg/logger"
)

const (
	tableID   = "6b0f6c36-2d1c-4a55-9c1e-0d7f1d6f0a01"
	missingID = "6b0f6c36-2d1c-4a55-9c1e-0d7f1d6f0aff"
)

type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stepClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testAPI struct {
	app   *fiber.App
	store *memory.Store
	clock *stepClock
}

// newTestAPI arma el router completo sobre el store en memoria y el club club-sol.
func newTestAPI(t *testing.T, limiter *apphttp.TenantRateLimiter) *testAPI {
	t.Helper()
	store := memory.NewStore()
	clock := &stepClock{now: time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC)}
	store.PutTable(entity.Table{ID: tableID, Number: 1, Name: "Mesa 1", Status: entity.TableAvailable, RatePerHour: decimal.NewFromInt(20)})

	cashUC := cash.NewUseCase(store, clock)
	kardex := inventory.NewKardexUseCase(store, clock)
	emitter := document.NewEmitter(store, nil, "Billar")
	occ := rental.NewOccupancyUseCase(store, clock)

	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(logger.Nop())})
	apphttp.Router(app, apphttp.RouterDeps{
		Tenants:      &fakeBinder{status: map[string]error{testTenant: nil}},
		TenantHeader: "X-Tenant",
		RateLimiter:  limiter,
		JWTSecret:    testJWTSecret,
		Location:     time.UTC,
		TableUC:      usecase.NewTableUseCase(store, nil, clock),
		ProductUC:    usecase.NewProductUseCase(store, clock),
		WarehouseUC:  usecase.NewWarehouseUseCase(store, clock),
		Occupancy:    occ,
		Items:        rental.NewItemsUseCase(store, clock),
		Settle:       billing.NewSettleTableUseCase(store, clock, kardex, cashUC, emitter, billing.Config{Series: "NV01", Currency: "PEN"}, nil),
		Cash:         cashUC,
		Kardex:       kardex,
		Emitter:      emitter,
		Sales:        analytics.NewSalesSummaryUseCase(store, clock, time.UTC, "PEN"),
	})
	return &testAPI{app: app, store: store, clock: clock}
}

func (a *testAPI) call(t *testing.T, method, path, role string, body interface{}) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("X-Tenant", testTenant)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp, out
}

func decodeError(t *testing.T, body []byte) dto.ErrorResponse {
	t.Helper()
	var e dto.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &e), string(body))
	return e
}

// ─── Mesas ───────────────────────────────────────────────────────────────────

func TestStartTable_201LuegoIdempotente200(t *testing.T) {
	api := newTestAPI(t, nil)

	resp, body := api.call(t, http.MethodPost, "/api/tables/"+tableID+"/start", "cajero", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var first dto.StartTableResponse
	require.NoError(t, json.Unmarshal(body, &first))
	assert.True(t, first.Created)
	assert.Equal(t, string(entity.TableInProgress), first.Table.Status)

	resp, body = api.call(t, http.MethodPost, "/api/tables/"+tableID+"/start", "cajero", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var again dto.StartTableResponse
	require.NoError(t, json.Unmarshal(body, &again))
	assert.False(t, again.Created)
	assert.Equal(t, first.Rental.ID, again.Rental.ID)
}

func TestPauseResume_FeatureDisabled409(t *testing.T) {
	api := newTestAPI(t, nil)
	for _, action := range []string{"pause", "resume"} {
		resp, body := api.call(t, http.MethodPost, "/api/tables/"+tableID+"/"+action, "cajero", nil)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "FEATURE_DISABLED", decodeError(t, body).Code)
	}
}

func TestFinishTable_EmiteNotaYLiberaMesa(t *testing.T) {
	api := newTestAPI(t, nil)
	_, body := api.call(t, http.MethodPost, "/api/tables/"+tableID+"/start", "cajero", nil)
	var started dto.StartTableResponse
	require.NoError(t, json.Unmarshal(body, &started))

	api.clock.Advance(50 * time.Minute)
	resp, body := api.call(t, http.MethodPost, "/api/tables/"+tableID+"/finish", "cajero", dto.FinishTableRequest{
		RentalID:      started.Rental.ID,
		PaymentMethod: "card",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var out dto.FinishTableResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, string(entity.TableAvailable), out.Table.Status)
	assert.Equal(t, "NV01-00000001", out.Document.FullNumber)
	assert.True(t, out.Document.Total.Equal(decimal.NewFromInt(20)), out.Document.Total.String())

	// segundo finish sobre el alquiler ya cerrado
	resp, body = api.call(t, http.MethodPost, "/api/tables/"+tableID+"/finish", "cajero", dto.FinishTableRequest{
		RentalID:      started.Rental.ID,
		PaymentMethod: "card",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "CONFLICT", decodeError(t, body).Code)
	assert.Len(t, api.store.Documents(), 1)

	resp, body = api.call(t, http.MethodGet, "/api/documents/"+out.Document.ID, "cajero", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
}

func TestFinishTable_ValidacionConDetalle422(t *testing.T) {
	api := newTestAPI(t, nil)
	resp, body := api.call(t, http.MethodPost, "/api/tables/"+tableID+"/finish", "cajero", map[string]string{
		"payment_method": "cheque",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	e := decodeError(t, body)
	assert.Equal(t, "VALIDATION", e.Code)
	assert.Equal(t, "required", e.Details["rental_id"])
	assert.Equal(t, "oneof=cash card transfer other", e.Details["payment_method"])
}

func TestTableRoutes_IDsYExistencia(t *testing.T) {
	api := newTestAPI(t, nil)

	resp, body := api.call(t, http.MethodGet, "/api/tables/no-es-uuid", "cajero", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_ID", decodeError(t, body).Code)

	resp, body = api.call(t, http.MethodGet, "/api/tables/"+missingID, "cajero", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decodeError(t, body).Code)
}

func TestCatalogWrites_SoloAdmin(t *testing.T) {
	api := newTestAPI(t, nil)
	product := dto.CreateProductRequest{SKU: "COLA", Name: "Gaseosa", SalePrice: decimal.NewFromInt(5)}

	resp, _ := api.call(t, http.MethodPost, "/api/products", "cajero", product)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := api.call(t, http.MethodPost, "/api/products", "admin", product)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	resp, body = api.call(t, http.MethodPost, "/api/products", "admin", product)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "DUPLICATE", decodeError(t, body).Code)
}

func TestProtectedRoutes_SinToken401(t *testing.T) {
	api := newTestAPI(t, nil)
	resp, _ := api.call(t, http.MethodGet, "/api/tables", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// ─── Caja ────────────────────────────────────────────────────────────────────

func TestCashOpen_SegundaAperturaRechazada(t *testing.T) {
	api := newTestAPI(t, nil)
	open := dto.OpenCashRequest{OpeningCash: decimal.NewFromInt(100)}

	resp, body := api.call(t, http.MethodPost, "/api/cash-sessions/open", "cajero", open)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	resp, body = api.call(t, http.MethodGet, "/api/cash-sessions/current", "cajero", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	resp, body = api.call(t, http.MethodPost, "/api/cash-sessions/open", "cajero", open)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decodeError(t, body).Code)
}

// ─── Límite por club ─────────────────────────────────────────────────────────

func TestRateLimiter_429PorClub(t *testing.T) {
	limiter := apphttp.NewTenantRateLimiter(apphttp.RateLimiterConfig{RequestsPerSecond: 0.001, Burst: 2})
	api := newTestAPI(t, limiter)

	for i := 0; i < 2; i++ {
		resp, _ := api.call(t, http.MethodGet, "/api/tables", "cajero", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	resp, body := api.call(t, http.MethodGet, "/api/tables", "cajero", nil)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "RATE_LIMITED", decodeError(t, body).Code)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
}
