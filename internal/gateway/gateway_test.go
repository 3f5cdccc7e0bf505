package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"studiodesk/internal/models"
)

func TestFetchClientsBareArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/clients" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sekrit" {
			t.Errorf("missing bearer token, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":1,"company_name":"Acme"},{"id":2,"company_name":"Globex"}]`))
	}))
	defer srv.Close()

	g := New(srv.URL, "sekrit", 100)
	clients, err := g.FetchClients(context.Background())
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(clients) != 2 || clients[0].CompanyName != "Acme" {
		t.Errorf("unexpected clients: %+v", clients)
	}
}

func TestFetchProjectsWrappedInData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"id":7,"name":"Site relaunch","client_id":1}]}`))
	}))
	defer srv.Close()

	g := New(srv.URL, "", 100)
	projects, err := g.FetchProjects(context.Background())
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(projects) != 1 || projects[0].Name != "Site relaunch" {
		t.Errorf("unexpected projects: %+v", projects)
	}
}

func TestFetchErrorOnUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := New(srv.URL, "", 100)
	if _, err := g.FetchTasks(context.Background()); err == nil {
		t.Fatal("expected error on 500 response")
	}
}

func waitForState(t *testing.T, g *Gateway, id int64, want models.SyncState) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if g.SyncState(id) == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("sync state for %d never reached %q (got %q)", id, want, g.SyncState(id))
}

func TestPushCreateRecordsSynced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/clients" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	g := New(srv.URL, "", 100)
	g.PushClientCreate(models.Client{ID: 42, CompanyName: "Acme"})
	waitForState(t, g, 42, models.SyncSynced)
}

func TestPushFailureRecordsFailedWithoutRollback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	g := New(srv.URL, "", 100)
	g.PushClientDelete(99)
	waitForState(t, g, 99, models.SyncFailed)
}

func TestPushDisabledWithoutBaseURL(t *testing.T) {
	g := New("", "", 100)
	g.PushClientCreate(models.Client{ID: 1})

	if st := g.SyncState(1); st != "" {
		t.Errorf("disabled gateway recorded state %q", st)
	}
}
