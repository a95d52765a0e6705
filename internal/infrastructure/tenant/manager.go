package tenant

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/billar-api/pkg/logger"
)

// ManagerConfig límites del conjunto de pools.
type ManagerConfig struct {
	MaxPools          int           // 0 = sin límite
	IdleTimeout       time.Duration // 0 = nunca se desalojan
	HealthCheckPeriod time.Duration
	ConnectTimeout    time.Duration
}

// PoolFactory abre el pool de la base de un tenant.
type PoolFactory func(ctx context.Context, t *Tenant) (*pgxpool.Pool, error)

// ManagedPool pool con marca de último uso y peticiones en curso.
type ManagedPool struct {
	pool           *pgxpool.Pool
	tenant         *Tenant
	lastUsed       atomic.Int64
	refCount       atomic.Int32
	unhealthySince atomic.Int64
}

func (mp *ManagedPool) touch() { mp.lastUsed.Store(time.Now().UnixNano()) }

func (mp *ManagedPool) Pool() *pgxpool.Pool { return mp.pool }

func (mp *ManagedPool) Tenant() *Tenant { return mp.tenant }

// poolClosing valor de refCount de un pool que el desalojo ya reservó para cerrar.
const poolClosing = math.MinInt32 / 2

// Acquire marca una petición en curso; false si el pool se está cerrando.
func (mp *ManagedPool) Acquire() bool {
	for {
		n := mp.refCount.Load()
		if n < 0 {
			return false
		}
		if mp.refCount.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

func (mp *ManagedPool) Release() { mp.refCount.Add(-1) }

// markClosing reserva el pool para cerrarlo solo si no hay peticiones en curso.
func (mp *ManagedPool) markClosing() bool { return mp.refCount.CompareAndSwap(0, poolClosing) }

// Manager pools por slug, creados bajo demanda. Seguro para uso concurrente.
type Manager struct {
	cfg      ManagerConfig
	registry Registry
	factory  PoolFactory

	pools     sync.Map // slug -> *ManagedPool
	poolCount atomic.Int32
	createMu  sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	log    *logger.Logger
}

// NewManager arranca los bucles de desalojo y salud según cfg.
func NewManager(cfg ManagerConfig, registry Registry, factory PoolFactory, log *logger.Logger) *Manager {
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		cfg:      cfg,
		registry: registry,
		factory:  factory,
		ctx:      ctx,
		cancel:   cancel,
		log:      log.Component("tenant-manager"),
	}
	if cfg.IdleTimeout > 0 {
		m.wg.Add(1)
		go m.evictionLoop()
	}
	if cfg.HealthCheckPeriod > 0 {
		m.wg.Add(1)
		go m.healthCheckLoop()
	}
	m.log.Info().
		Int("max_pools", cfg.MaxPools).
		Dur("idle_timeout", cfg.IdleTimeout).
		Dur("health_check_period", cfg.HealthCheckPeriod).
		Msg("gestor de tenants iniciado")
	return m
}

// Get pool del tenant slug, creándolo si no existe. No lo reserva; para peticiones usar Bind.
func (m *Manager) Get(ctx context.Context, slug string) (*ManagedPool, error) {
	if val, ok := m.pools.Load(slug); ok {
		mp := val.(*ManagedPool)
		mp.touch()
		return mp, nil
	}
	return m.create(ctx, slug)
}

func (m *Manager) create(ctx context.Context, slug string) (*ManagedPool, error) {
	t, err := m.registry.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, ErrTenantNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("consulta de tenant: %w", err)
	}
	if !t.IsActive() {
		return nil, fmt.Errorf("%w: status=%s", ErrTenantNotActive, t.Status)
	}

	m.createMu.Lock()
	defer m.createMu.Unlock()
	if val, ok := m.pools.Load(slug); ok {
		mp := val.(*ManagedPool)
		mp.touch()
		return mp, nil
	}
	if m.cfg.MaxPools > 0 && int(m.poolCount.Load()) >= m.cfg.MaxPools {
		return nil, fmt.Errorf("%w (%d)", ErrMaxPoolLimit, m.cfg.MaxPools)
	}

	createCtx, cancel := context.WithTimeout(ctx, m.cfg.ConnectTimeout)
	defer cancel()
	pool, err := m.factory(createCtx, t)
	if err != nil {
		return nil, fmt.Errorf("pool del tenant %s: %w", slug, err)
	}

	mp := &ManagedPool{pool: pool, tenant: t}
	mp.touch()
	m.pools.Store(slug, mp)
	m.poolCount.Add(1)
	m.log.Info().Str("tenant", slug).Str("db_name", t.DBName).Int32("total_pools", m.poolCount.Load()).Msg("pool creado")
	return mp, nil
}

// Bind resuelve el pool de slug y lo deja en el contexto junto al tenant.
// release debe llamarse al terminar la petición.
func (m *Manager) Bind(ctx context.Context, slug string) (context.Context, func(), error) {
	mp, err := m.acquire(ctx, slug)
	if err != nil {
		return ctx, func() {}, err
	}
	ctx = WithPool(WithTenant(ctx, mp.tenant), mp.pool)
	return ctx, mp.Release, nil
}

// acquire devuelve el pool ya reservado. Si el encontrado se está cerrando lo saca del mapa y abre otro.
func (m *Manager) acquire(ctx context.Context, slug string) (*ManagedPool, error) {
	for {
		mp, err := m.Get(ctx, slug)
		if err != nil {
			return nil, err
		}
		if mp.Acquire() {
			mp.touch()
			return mp, nil
		}
		m.forget(slug, mp)
	}
}

// forget quita mp del mapa si sigue registrado bajo slug.
func (m *Manager) forget(slug string, mp *ManagedPool) bool {
	if m.pools.CompareAndDelete(slug, mp) {
		m.poolCount.Add(-1)
		return true
	}
	return false
}

// Count pools abiertos.
func (m *Manager) Count() int { return int(m.poolCount.Load()) }

func (m *Manager) evictionLoop() {
	defer m.wg.Done()
	ticker := time.NewTicker(m.cfg.IdleTimeout / 2)
	defer ticker.Stop()
	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.evictIdle(time.Now())
		}
	}
}

// evictIdle cierra pools sin peticiones en curso que no se usan desde IdleTimeout o quedaron no sanos.
func (m *Manager) evictIdle(now time.Time) {
	threshold := now.Add(-m.cfg.IdleTimeout).UnixNano()
	m.pools.Range(func(key, value any) bool {
		slug := key.(string)
		mp := value.(*ManagedPool)
		if mp.refCount.Load() > 0 {
			return true
		}
		reason := ""
		switch {
		case mp.unhealthySince.Load() > 0:
			reason = "pool no sano"
		case mp.lastUsed.Load() < threshold:
			reason = "inactividad"
		}
		if reason != "" && mp.markClosing() {
			m.closePool(slug, mp, reason)
		}
		return true
	})
}

func (m *Manager) healthCheckLoop() {
	defer m.wg.Done()
	ticker := time.NewTicker(m.cfg.HealthCheckPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.checkHealth()
		}
	}
}

func (m *Manager) checkHealth() {
	ctx, cancel := context.WithTimeout(m.ctx, 5*time.Second)
	defer cancel()
	m.pools.Range(func(key, value any) bool {
		slug := key.(string)
		mp := value.(*ManagedPool)
		if err := mp.pool.Ping(ctx); err != nil {
			mp.unhealthySince.CompareAndSwap(0, time.Now().Unix())
			m.log.Warn().Err(err).Str("tenant", slug).Msg("health check del pool falló")
			if mp.markClosing() {
				m.closePool(slug, mp, "health check")
			}
			return true
		}
		mp.unhealthySince.Store(0)
		return true
	})
}

// closePool cierra mp aunque acquire ya lo haya sacado del mapa.
func (m *Manager) closePool(slug string, mp *ManagedPool, reason string) {
	m.forget(slug, mp)
	mp.pool.Close()
	m.log.Info().Str("tenant", slug).Str("reason", reason).Int32("total_pools", m.poolCount.Load()).Msg("pool cerrado")
}

// Close detiene los bucles y cierra todos los pools.
func (m *Manager) Close() {
	m.cancel()
	m.wg.Wait()
	m.pools.Range(func(key, value any) bool {
		m.closePool(key.(string), value.(*ManagedPool), "apagado")
		return true
	})
	m.log.Info().Msg("gestor de tenants detenido")
}
