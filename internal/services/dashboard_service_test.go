package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"studiodesk/internal/gateway"
	"studiodesk/internal/models"
	"studiodesk/internal/store"
)

func TestStatsCountsFromStoreWhenRemoteDisabled(t *testing.T) {
	st := store.New()
	st.ReplaceClients([]models.Client{{ID: 1}, {ID: 2}})
	st.ReplaceProjects([]models.Project{{ID: 3}})
	st.ReplaceTasks([]models.Task{
		{ID: 4, Status: models.TaskStatusTodo},
		{ID: 5, Status: models.TaskStatusDone},
		{ID: 6, Status: models.TaskStatusDone},
	})

	svc := NewDashboardService(gateway.New("", "", 0))
	stats := svc.Stats(context.Background(), st)

	if stats.Clients != 2 || stats.Projects != 1 || stats.Tasks != 3 {
		t.Errorf("unexpected counts: %+v", stats)
	}
	if stats.TaskStatus["done"] != 2 || stats.TaskStatus["todo"] != 1 {
		t.Errorf("unexpected status breakdown: %+v", stats.TaskStatus)
	}
	if _, ok := stats.TaskStatus["inprogress"]; !ok {
		t.Error("all known statuses should appear in the breakdown, even at zero")
	}
}

func TestStatsRefreshesCollectionsFromUpstream(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/clients":
			json.NewEncoder(w).Encode([]models.Client{{ID: 1, CompanyName: "Remote"}})
		case "/projects":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"data": []models.Project{{ID: 2, Name: "Wrapped"}},
			})
		case "/tasks":
			json.NewEncoder(w).Encode([]models.Task{{ID: 3, Status: models.TaskStatusTodo}})
		default:
			http.NotFound(w, r)
		}
	}))
	defer upstream.Close()

	st := store.New()
	svc := NewDashboardService(gateway.New(upstream.URL, "", 100))
	stats := svc.Stats(context.Background(), st)

	if stats.Clients != 1 || stats.Projects != 1 || stats.Tasks != 1 {
		t.Errorf("expected refreshed counts 1/1/1, got %+v", stats)
	}
	if got := st.Clients(); len(got) != 1 || got[0].CompanyName != "Remote" {
		t.Errorf("store not refreshed from upstream: %+v", got)
	}
}

func TestStatsFailedFetchLeavesCollectionUntouched(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/clients" {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("[]"))
	}))
	defer upstream.Close()

	st := store.New()
	st.ReplaceClients([]models.Client{{ID: 1, CompanyName: "Local"}})

	svc := NewDashboardService(gateway.New(upstream.URL, "", 100))
	stats := svc.Stats(context.Background(), st)

	if stats.Clients != 1 {
		t.Errorf("failed fetch should leave local clients in place, got %d", stats.Clients)
	}
	if got := st.Clients(); len(got) != 1 || got[0].CompanyName != "Local" {
		t.Errorf("local collection was disturbed: %+v", got)
	}
}

func TestStatsCanceledContextDoesNotApplyResponses(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id": 99}]`))
	}))
	defer upstream.Close()

	st := store.New()
	svc := NewDashboardService(gateway.New(upstream.URL, "", 100))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc.Stats(ctx, st)

	if got := st.Clients(); len(got) != 0 {
		t.Errorf("responses after cancellation must be discarded, got %+v", got)
	}
}
