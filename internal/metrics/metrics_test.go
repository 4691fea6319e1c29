package metrics

import (
	"sync"
	"testing"
)

func TestCountersAndSnapshot(t *testing.T) {
	m := New()

	m.IncrementRequests(true, 10)
	m.IncrementRequests(false, 30)
	m.IncrementRateLimited()
	m.IncrementSessionCreated()
	m.IncrementSessionExpired()
	m.IncrementRecompute(true)
	m.IncrementRecompute(false)
	m.IncrementExport(true, 2048)
	m.IncrementExport(false, 0)
	m.TrackEndpoint("/api/v1/calculate", "POST", 200, 10)
	m.TrackEndpoint("/api/v1/calculate", "POST", 400, 30)

	s := m.Snapshot(3)

	if s.Requests.Total != 2 || s.Requests.Failed != 1 || s.Requests.RateLimited != 1 {
		t.Errorf("requests = %+v", s.Requests)
	}
	if s.Requests.AvgLatencyMs != 20 {
		t.Errorf("AvgLatencyMs = %v, want 20", s.Requests.AvgLatencyMs)
	}
	if s.Sessions.Created != 1 || s.Sessions.Expired != 1 || s.Sessions.Active != 3 {
		t.Errorf("sessions = %+v", s.Sessions)
	}
	if s.Engine.Recomputes != 1 || s.Engine.MutationFailures != 1 {
		t.Errorf("engine = %+v", s.Engine)
	}
	if s.Exports.Generated != 1 || s.Exports.Errors != 1 || s.Exports.TotalBytes != 2048 {
		t.Errorf("exports = %+v", s.Exports)
	}

	ep := s.Endpoints["POST /api/v1/calculate"]
	if ep.Requests != 2 || ep.Errors != 1 || ep.ErrorRate != 50 || ep.AvgLatencyMs != 20 {
		t.Errorf("endpoint = %+v", ep)
	}
}

func TestConcurrentIncrements(t *testing.T) {
	m := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.IncrementRecompute(true)
			m.TrackEndpoint("/x", "GET", 200, 1)
		}()
	}
	wg.Wait()

	if m.Recomputes != 50 {
		t.Errorf("Recomputes = %d, want 50", m.Recomputes)
	}
	if m.GetEndpointMetrics()["GET /x"].Requests != 50 {
		t.Errorf("endpoint requests = %d", m.GetEndpointMetrics()["GET /x"].Requests)
	}
}

func TestDetermineOverallStatus(t *testing.T) {
	tests := []struct {
		components map[string]HealthStatus
		want       string
	}{
		{map[string]HealthStatus{"a": {Status: "healthy"}}, "healthy"},
		{map[string]HealthStatus{"a": {Status: "healthy"}, "b": {Status: "degraded"}}, "degraded"},
		{map[string]HealthStatus{"a": {Status: "degraded"}, "b": {Status: "unhealthy"}}, "unhealthy"},
	}
	for _, tt := range tests {
		if got := DetermineOverallStatus(tt.components); got != tt.want {
			t.Errorf("DetermineOverallStatus(%v) = %s, want %s", tt.components, got, tt.want)
		}
	}
}

func TestCheckSessionHealth(t *testing.T) {
	if CheckSessionHealth(10, 0).Status != "healthy" {
		t.Error("no limit should be healthy")
	}
	if CheckSessionHealth(10, 10).Status != "degraded" {
		t.Error("limit reached should be degraded")
	}
}
