package healthprobe

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	p := New()

	if p == nil {
		t.Fatal("New() returned nil")
	}

	if time.Since(p.startTime) > 1*time.Second {
		t.Errorf("start time is too old: %v", p.startTime)
	}

	if p.IsReady() {
		t.Error("probe should not be ready by default")
	}
}

func TestSetReady_Toggle(t *testing.T) {
	p := New()

	p.SetReady(true)
	if !p.IsReady() {
		t.Error("should be ready after SetReady(true)")
	}

	p.SetReady(false)
	if p.IsReady() {
		t.Error("should not be ready after SetReady(false)")
	}
}

func TestHealth_AlwaysReturnsOK(t *testing.T) {
	p := New()

	for _, ready := range []bool{false, true} {
		p.SetReady(ready)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		w := httptest.NewRecorder()
		p.Health()(w, req)

		resp := w.Result()
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Errorf("health status = %d, want %d (ready=%v)", resp.StatusCode, http.StatusOK, ready)
		}

		var body ProbeResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode health response: %v", err)
		}
		if body.Status != "healthy" {
			t.Errorf("status = %s, want healthy", body.Status)
		}
		if body.Uptime == "" {
			t.Error("uptime is empty")
		}
	}
}

func TestReady_StateChanges(t *testing.T) {
	p := New()
	handler := p.Ready()

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	w := httptest.NewRecorder()
	handler(w, req)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("initial ready status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}

	var notReady ProbeResponse
	if err := json.NewDecoder(w.Body).Decode(&notReady); err != nil {
		t.Fatalf("failed to decode not-ready response: %v", err)
	}
	if notReady.Status != "not_ready" || notReady.Message == "" {
		t.Errorf("unexpected not-ready body %+v", notReady)
	}

	p.SetReady(true)
	req = httptest.NewRequest(http.MethodGet, "/ready", nil)
	w = httptest.NewRecorder()
	handler(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("ready status after SetReady(true) = %d, want %d", w.Code, http.StatusOK)
	}

	p.SetReady(false)
	req = httptest.NewRequest(http.MethodGet, "/ready", nil)
	w = httptest.NewRecorder()
	handler(w, req)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("ready status after SetReady(false) = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}
}

func TestProbe_ConcurrentAccess(t *testing.T) {
	p := New()
	handler := p.Ready()

	done := make(chan bool)

	go func() {
		for i := 0; i < 100; i++ {
			p.SetReady(i%2 == 0)
		}
		done <- true
	}()

	go func() {
		for i := 0; i < 100; i++ {
			req := httptest.NewRequest(http.MethodGet, "/ready", nil)
			w := httptest.NewRecorder()
			handler(w, req)
		}
		done <- true
	}()

	<-done
	<-done
}
