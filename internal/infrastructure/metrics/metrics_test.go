package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/satelink/econledger/internal/domain"
	"github.com/satelink/econledger/internal/usecase"
)

var (
	_ usecase.LedgerMetrics = (*Metrics)(nil)
	_ usecase.AlertMetrics  = (*Metrics)(nil)
)

func TestNewRegistersMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()

	m := New(registry)
	m.TxnCommitted(2, 10*time.Millisecond)

	if m.TxnsCommitted == nil || m.HTTPRequests == nil || m.AlertsEmitted == nil {
		t.Fatalf("expected key metrics to be initialized: %+v", m)
	}

	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	if len(metricFamilies) == 0 {
		t.Fatalf("expected registered metrics, got none")
	}
}

func TestLedgerMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.TxnCommitted(2, 5*time.Millisecond)
	m.TxnCommitted(4, 7*time.Millisecond)
	m.TxnRejected("unbalanced")
	m.TxnFailed()

	if got := testutil.ToFloat64(m.TxnsCommitted); got != 2 {
		t.Fatalf("expected 2 committed, got %v", got)
	}

	if got := testutil.ToFloat64(m.TxnsRejected.WithLabelValues("unbalanced")); got != 1 {
		t.Fatalf("expected 1 rejection, got %v", got)
	}

	if got := testutil.ToFloat64(m.TxnsFailed); got != 1 {
		t.Fatalf("expected 1 failure, got %v", got)
	}

	if got := testutil.CollectAndCount(m.TxnLines); got != 1 {
		t.Fatalf("expected one line histogram, got %d", got)
	}
}

func TestAlertMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.AlertEmitted(domain.AlertCategoryAuth)
	m.AlertEmitted(domain.AlertCategoryAuth)
	m.AlertPersistFailed(domain.AlertCategoryInfra)

	if got := testutil.ToFloat64(m.AlertsEmitted.WithLabelValues("auth")); got != 2 {
		t.Fatalf("expected 2 auth alerts, got %v", got)
	}

	if got := testutil.ToFloat64(m.AlertPersistFailures.WithLabelValues("infra")); got != 1 {
		t.Fatalf("expected 1 persist failure, got %v", got)
	}
}

func TestObserveHTTP(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveHTTP("GET", "/api/v1/accounts/{key}", 200, time.Millisecond)

	if got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/api/v1/accounts/{key}", "200")); got != 1 {
		t.Fatalf("expected request counter to be 1, got %v", got)
	}
}

func TestEdgeRejections(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.AuthFailed("invalid_token")
	m.AuthFailed("invalid_token")
	m.RateLimited()

	if got := testutil.ToFloat64(m.AuthFailures.WithLabelValues("invalid_token")); got != 2 {
		t.Fatalf("expected 2 auth failures, got %v", got)
	}
	if got := testutil.ToFloat64(m.RateLimitHits); got != 1 {
		t.Fatalf("expected 1 rate limit hit, got %v", got)
	}
}

func TestRegisterPoolStats(t *testing.T) {
	registry := prometheus.NewRegistry()

	RegisterPoolStats(registry, func() (int32, int32, int32) { return 10, 7, 3 })

	expected := `
# HELP econledger_db_connections_acquired Connections in use
# TYPE econledger_db_connections_acquired gauge
econledger_db_connections_acquired 3
# HELP econledger_db_connections_idle Idle connections
# TYPE econledger_db_connections_idle gauge
econledger_db_connections_idle 7
`

	err := testutil.GatherAndCompare(registry, strings.NewReader(expected),
		"econledger_db_connections_acquired", "econledger_db_connections_idle")
	if err != nil {
		t.Fatalf("unexpected pool gauges: %v", err)
	}
}
