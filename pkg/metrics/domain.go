package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// DomainMetrics counts the club's core state transitions.
type DomainMetrics struct {
	settlements    *prometheus.CounterVec
	stockMovements *prometheus.CounterVec
	ledgerAppends  *prometheus.CounterVec
	loginAttempts  *prometheus.CounterVec
}

// NewDomainMetrics registers the domain counters on the provided registerer.
func NewDomainMetrics(reg prometheus.Registerer) *DomainMetrics {
	if reg == nil {
		return &DomainMetrics{}
	}
	settlements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "event_settlements_total",
		Help: "Event settlements by payment method.",
	}, []string{"payment_method"})
	stockMovements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_movements_total",
		Help: "Inventory stock movements by operation.",
	}, []string{"operation"})
	ledgerAppends := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "treasury_appends_total",
		Help: "Treasury ledger appends by category.",
	}, []string{"category"})
	loginAttempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "login_attempts_total",
		Help: "PIN login attempts by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(settlements, stockMovements, ledgerAppends, loginAttempts)
	return &DomainMetrics{
		settlements:    settlements,
		stockMovements: stockMovements,
		ledgerAppends:  ledgerAppends,
		loginAttempts:  loginAttempts,
	}
}

// IncSettlement increments the settlement counter for the payment method.
func (d *DomainMetrics) IncSettlement(method string) {
	if d == nil || d.settlements == nil {
		return
	}
	d.settlements.WithLabelValues(normalizeLabel(method)).Inc()
}

// IncStockMovement increments the stock movement counter for the operation.
func (d *DomainMetrics) IncStockMovement(operation string) {
	if d == nil || d.stockMovements == nil {
		return
	}
	d.stockMovements.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncLedgerAppend increments the ledger append counter for the category.
func (d *DomainMetrics) IncLedgerAppend(category string) {
	if d == nil || d.ledgerAppends == nil {
		return
	}
	d.ledgerAppends.WithLabelValues(normalizeLabel(category)).Inc()
}

// IncLoginAttempt increments the login counter for the outcome.
func (d *DomainMetrics) IncLoginAttempt(outcome string) {
	if d == nil || d.loginAttempts == nil {
		return
	}
	d.loginAttempts.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
