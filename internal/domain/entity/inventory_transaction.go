package entity

import "time"

// Tipos de transacción de inventario registrados por el ledger.
const (
	TransactionTypeReserved   = "RESERVED"   // salida reservada para un pedido
	TransactionTypeReleased   = "RELEASED"   // devolución por cancelación o rollback
	TransactionTypePurchase   = "PURCHASE"   // ingreso de proveedor
	TransactionTypeAdjustment = "ADJUSTMENT" // ajuste manual al alza
	TransactionTypeDamaged    = "DAMAGED"    // baja por daño o pérdida
)

// IsOutbound indica si el tipo descuenta del disponible.
func IsOutbound(txType string) bool {
	return txType == TransactionTypeReserved || txType == TransactionTypeDamaged
}

// IsManualTransactionType tipos que un operador puede registrar sin pedido.
func IsManualTransactionType(txType string) bool {
	switch txType {
	case TransactionTypePurchase, TransactionTypeAdjustment, TransactionTypeDamaged:
		return true
	}
	return false
}

// InventoryTransaction registro de auditoría (solo inserción) de un movimiento del ledger.
type InventoryTransaction struct {
	ID          string
	Type        string
	ProductID   string
	Quantity    int // siempre positivo; el signo lo da Type
	OrderID     string
	PerformedBy string
	Notes       string
	CreatedAt   time.Time
}
