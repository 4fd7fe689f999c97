package db

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func TestCheckHealth_Healthy(t *testing.T) {
	code, st := checkHealth(context.Background(), fakePinger{}, "rhc", func() *PoolStats {
		return &PoolStats{TotalConns: 2, MaxConns: 10, Healthy: true}
	})
	if code != http.StatusOK {
		t.Errorf("expected 200, got %d", code)
	}
	if st.Status != "healthy" || st.Schema != "rhc" {
		t.Errorf("unexpected status %+v", st)
	}
	if st.Pool == nil || !st.Pool.Healthy {
		t.Error("expected healthy pool stats")
	}
}

func TestCheckHealth_Unhealthy(t *testing.T) {
	code, st := checkHealth(context.Background(), fakePinger{err: errors.New("connection refused")}, "rhc", func() *PoolStats {
		return &PoolStats{TotalConns: 1, Healthy: true}
	})
	if code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", code)
	}
	if st.Status != "unhealthy" || st.Error != "connection refused" {
		t.Errorf("unexpected status %+v", st)
	}
	if st.Pool.Healthy {
		t.Error("a failed ping must mark the pool unhealthy")
	}
}

func TestHealthStatus_JSON(t *testing.T) {
	_, st := checkHealth(context.Background(), fakePinger{}, "rhc", nil)
	data, err := json.Marshal(st)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]interface{}
	json.Unmarshal(data, &m)
	if _, ok := m["error"]; ok {
		t.Error("error should be omitted when healthy")
	}
	if _, ok := m["pool"]; ok {
		t.Error("pool should be omitted without stats")
	}
	if m["schema"] != "rhc" {
		t.Errorf("unexpected schema %v", m["schema"])
	}
}

func TestPoolStats_JSONTags(t *testing.T) {
	data, _ := json.Marshal(&PoolStats{TotalConns: 3, AcquireDuration: "1s"})
	var m map[string]interface{}
	json.Unmarshal(data, &m)
	for _, k := range []string{"total_conns", "idle_conns", "acquired_conns", "max_conns", "acquire_count", "acquire_duration", "healthy"} {
		if _, ok := m[k]; !ok {
			t.Errorf("missing JSON key %q", k)
		}
	}
}
