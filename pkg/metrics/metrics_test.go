package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNew_RegistersOnCustomRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.QueriesTotal.WithLabelValues("boolean", "hit").Inc()
	m.QueriesTotal.WithLabelValues("boolean", "hit").Inc()
	if got := testutil.ToFloat64(m.QueriesTotal.WithLabelValues("boolean", "hit")); got != 2 {
		t.Errorf("QueriesTotal = %v, want 2", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	if len(families) == 0 {
		t.Error("Gather() returned no metric families")
	}
}

func TestSetDictionaryMode(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.SetDictionaryMode("front")

	want := map[string]float64{"raw": 0, "block": 0, "front": 1}
	for mode, v := range want {
		if got := testutil.ToFloat64(m.DictionaryMode.WithLabelValues(mode)); got != v {
			t.Errorf("DictionaryMode[%s] = %v, want %v", mode, got, v)
		}
	}

	m.SetDictionaryMode("raw")
	if got := testutil.ToFloat64(m.DictionaryMode.WithLabelValues("front")); got != 0 {
		t.Errorf("DictionaryMode[front] after switch = %v, want 0", got)
	}
}
