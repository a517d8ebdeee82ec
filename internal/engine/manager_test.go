package engine

import (
	"testing"
	"time"
)

func TestManagerLifecycle(t *testing.T) {
	m := NewManager(Options{Open: openWith(map[string]*fakeSource{"r1": {cpu: []float64{1}}})})

	dash := testDashboard("lifecycle", "r1")
	dash.Interval = time.Hour
	if err := m.Start(dash); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if err := m.Start(dash); err == nil {
		t.Error("expected error starting the same dashboard twice")
	}

	snap, err := m.GetSnapshot("lifecycle")
	if err != nil {
		t.Fatalf("GetSnapshot() error: %v", err)
	}
	if _, ok := snap.Device("r1"); !ok {
		t.Error("expected r1 in snapshot")
	}
	if _, err := m.Subscribe("lifecycle"); err != nil {
		t.Errorf("Subscribe() error: %v", err)
	}

	infos := m.ListEngines()
	if len(infos) != 1 || infos[0].Name != "lifecycle" {
		t.Errorf("expected one engine named lifecycle, got %+v", infos)
	}

	if err := m.Stop("lifecycle"); err != nil {
		t.Errorf("Stop() error: %v", err)
	}
	if err := m.Stop("lifecycle"); err == nil {
		t.Error("expected error stopping an unknown engine")
	}
	if _, err := m.GetSnapshot("lifecycle"); err == nil {
		t.Error("expected error for a stopped engine snapshot")
	}
}

func TestManagerStopAll(t *testing.T) {
	m := NewManager(Options{Open: openWith(nil)})
	for _, name := range []string{"b", "a"} {
		d := testDashboard(name)
		d.Interval = time.Hour
		if err := m.Start(d); err != nil {
			t.Fatalf("Start(%s) error: %v", name, err)
		}
	}
	infos := m.ListEngines()
	if len(infos) != 2 || infos[0].Name != "a" {
		t.Errorf("expected engines sorted by name, got %+v", infos)
	}
	m.StopAll()
	if len(m.ListEngines()) != 0 {
		t.Error("expected no engines after StopAll")
	}
}
