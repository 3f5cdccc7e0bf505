package cache

import (
	"encoding/json"
	"os"
	"testing"

	"studiodesk/internal/models"
)

func TestLoadMissingFileReturnsEmpty(t *testing.T) {
	c, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}

	if clients := c.Load(); len(clients) != 0 {
		t.Errorf("expected empty load, got %d clients", len(clients))
	}
}

func TestPersistLoadRoundTrip(t *testing.T) {
	c, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}

	want := []models.Client{
		{ID: 101, CompanyName: "Acme", Owner: "Jo", Phone: "555", Category: "web", Package: "gold", Deadline: "2026-09-01", Deposit: "500", Paid: "250"},
		{ID: 102, CompanyName: "Globex"},
	}
	if err := c.Persist(want); err != nil {
		t.Fatalf("persist failed: %v", err)
	}

	got := c.Load()
	if len(got) != len(want) {
		t.Fatalf("expected %d clients, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("client %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestMalformedSnapshotLoadsEmptyAndSelfHeals(t *testing.T) {
	c, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}

	// Truncated JSON.
	if err := os.WriteFile(c.Path(), []byte(`[{"id":1,"company_na`), 0o644); err != nil {
		t.Fatalf("failed to write corrupt snapshot: %v", err)
	}

	if clients := c.Load(); clients != nil {
		t.Errorf("expected nil for corrupt snapshot, got %v", clients)
	}

	// The next mutation overwrites the stored value with valid JSON.
	if err := c.Persist([]models.Client{{ID: 7, CompanyName: "Initech"}}); err != nil {
		t.Fatalf("persist failed: %v", err)
	}

	data, err := os.ReadFile(c.Path())
	if err != nil {
		t.Fatalf("failed to read snapshot: %v", err)
	}
	var check []models.Client
	if err := json.Unmarshal(data, &check); err != nil {
		t.Fatalf("snapshot is not valid JSON after persist: %v", err)
	}
	if len(check) != 1 || check[0].CompanyName != "Initech" {
		t.Errorf("unexpected snapshot content: %+v", check)
	}
}

func TestPersistNilWritesEmptyArray(t *testing.T) {
	c, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}

	if err := c.Persist(nil); err != nil {
		t.Fatalf("persist failed: %v", err)
	}

	data, err := os.ReadFile(c.Path())
	if err != nil {
		t.Fatalf("failed to read snapshot: %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("expected empty JSON array, got %s", data)
	}
}
