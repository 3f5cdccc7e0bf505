package services

import (
	"context"
	"log"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"studiodesk/internal/gateway"
	"studiodesk/internal/models"
	"studiodesk/internal/store"
)

const statsCacheKey = "dashboard_stats"

// DashboardService aggregates the counts and status breakdown shown on the
// dashboard. Collections are refreshed from the upstream API with three
// parallel reads; each read writes only the collection it is responsible
// for, and no ordering is assumed between completions.
type DashboardService struct {
	gw    *gateway.Gateway
	stats *gocache.Cache
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(gw *gateway.Gateway) *DashboardService {
	return &DashboardService{
		gw:    gw,
		stats: gocache.New(30*time.Second, time.Minute),
	}
}

// Stats computes the dashboard aggregate, refreshing the store from the
// upstream API first when one is configured. Results are memoized briefly
// so a dashboard poll doesn't hammer the upstream.
func (s *DashboardService) Stats(ctx context.Context, st *store.Store) models.DashboardStats {
	if cached, found := s.stats.Get(statsCacheKey); found {
		return cached.(models.DashboardStats)
	}

	s.refresh(ctx, st)

	tasks := st.Tasks()
	byStatus := map[string]int{
		string(models.TaskStatusTodo):       0,
		string(models.TaskStatusInProgress): 0,
		string(models.TaskStatusDone):       0,
	}
	for _, t := range tasks {
		byStatus[string(t.Status)]++
	}

	result := models.DashboardStats{
		Clients:    len(st.Clients()),
		Projects:   len(st.Projects()),
		Tasks:      len(tasks),
		TaskStatus: byStatus,
	}

	// A canceled refresh must not poison the memo for the next caller.
	if ctx.Err() == nil {
		s.stats.Set(statsCacheKey, result, gocache.DefaultExpiration)
	}
	return result
}

// refresh runs the three reads in parallel. A response that lands after the
// request context is gone is discarded rather than applied to a stale view;
// a failed read is logged and leaves the existing collection untouched.
func (s *DashboardService) refresh(ctx context.Context, st *store.Store) {
	if !s.gw.Enabled() {
		return
	}

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		clients, err := s.gw.FetchClients(ctx)
		if err != nil {
			log.Printf("⚠️  [DASHBOARD] Failed to fetch clients: %v", err)
			return
		}
		if ctx.Err() != nil {
			return
		}
		st.ReplaceClients(clients)
	}()

	go func() {
		defer wg.Done()
		projects, err := s.gw.FetchProjects(ctx)
		if err != nil {
			log.Printf("⚠️  [DASHBOARD] Failed to fetch projects: %v", err)
			return
		}
		if ctx.Err() != nil {
			return
		}
		st.ReplaceProjects(projects)
	}()

	go func() {
		defer wg.Done()
		tasks, err := s.gw.FetchTasks(ctx)
		if err != nil {
			log.Printf("⚠️  [DASHBOARD] Failed to fetch tasks: %v", err)
			return
		}
		if ctx.Err() != nil {
			return
		}
		st.ReplaceTasks(tasks)
	}()

	wg.Wait()
}
