package inventory

import (
	"context"
	"sync"

	"github.com/jhoicas/warehouse-orders/internal/domain/entity"
	"github.com/jhoicas/warehouse-orders/internal/domain/repository"
	"github.com/jhoicas/warehouse-orders/pkg/logger"
)

// AsyncAuditSink escribe los registros del ledger en segundo plano.
// Si el buffer está lleno el registro se descarta con un warning; el ledger nunca espera.
type AsyncAuditSink struct {
	repo    repository.InventoryTransactionRepository
	log     *logger.Logger
	queue   chan *entity.InventoryTransaction
	wg      sync.WaitGroup
	closeMu sync.RWMutex
	closed  bool
}

// NewAsyncAuditSink arranca el worker de escritura. buffer <= 0 usa 256.
func NewAsyncAuditSink(repo repository.InventoryTransactionRepository, buffer int, log *logger.Logger) *AsyncAuditSink {
	if buffer <= 0 {
		buffer = 256
	}
	s := &AsyncAuditSink{
		repo:  repo,
		log:   log,
		queue: make(chan *entity.InventoryTransaction, buffer),
	}
	s.wg.Add(1)
	go s.run()
	return s
}

// Record encola el registro. El context del llamador no se propaga al worker.
func (s *AsyncAuditSink) Record(_ context.Context, tx *entity.InventoryTransaction) {
	s.closeMu.RLock()
	defer s.closeMu.RUnlock()
	if s.closed {
		return
	}
	select {
	case s.queue <- tx:
	default:
		s.log.Warn().
			Str("product_id", tx.ProductID).
			Str("order_id", tx.OrderID).
			Str("type", tx.Type).
			Msg("auditoría de inventario descartada: buffer lleno")
	}
}

// Close deja de aceptar registros y espera a que se escriban los pendientes.
func (s *AsyncAuditSink) Close() {
	s.closeMu.Lock()
	if s.closed {
		s.closeMu.Unlock()
		return
	}
	s.closed = true
	close(s.queue)
	s.closeMu.Unlock()
	s.wg.Wait()
}

func (s *AsyncAuditSink) run() {
	defer s.wg.Done()
	for tx := range s.queue {
		if err := s.repo.Create(context.Background(), tx); err != nil {
			s.log.Error().Err(err).
				Str("product_id", tx.ProductID).
				Str("order_id", tx.OrderID).
				Msg("no se pudo registrar la transacción de inventario")
		}
	}
}
