package store

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"studiodesk/internal/models"
)

func TestNextIDUnique(t *testing.T) {
	s := New()

	seen := make(map[int64]bool)
	for i := 0; i < 1000; i++ {
		id := s.NextID()
		if seen[id] {
			t.Fatalf("duplicate id %d at iteration %d", id, i)
		}
		seen[id] = true
	}
}

func TestNextIDUniqueUnderConcurrency(t *testing.T) {
	s := New()

	const workers = 8
	const perWorker = 500

	var wg sync.WaitGroup
	results := make([][]int64, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			ids := make([]int64, 0, perWorker)
			for i := 0; i < perWorker; i++ {
				ids = append(ids, s.NextID())
			}
			results[w] = ids
		}(w)
	}
	wg.Wait()

	seen := make(map[int64]bool)
	for _, ids := range results {
		for _, id := range ids {
			if seen[id] {
				t.Fatalf("duplicate id %d", id)
			}
			seen[id] = true
		}
	}
}

func TestReplaceClientsIsSnapshotIsolated(t *testing.T) {
	s := New()

	original := []models.Client{{ID: 1, CompanyName: "Acme"}}
	s.ReplaceClients(original)

	// Mutating the caller's slice must not leak into the store.
	original[0].CompanyName = "mutated"
	if got := s.Clients()[0].CompanyName; got != "Acme" {
		t.Errorf("store leaked caller mutation: got %q", got)
	}

	// Mutating a read snapshot must not leak either.
	snap := s.Clients()
	snap[0].CompanyName = "mutated again"
	if got := s.Clients()[0].CompanyName; got != "Acme" {
		t.Errorf("store leaked snapshot mutation: got %q", got)
	}
}

func TestCollectionsStartEmpty(t *testing.T) {
	s := New()

	if n := len(s.Clients()); n != 0 {
		t.Errorf("clients: expected empty, got %d", n)
	}
	if n := len(s.Users()); n != 0 {
		t.Errorf("users: expected empty, got %d", n)
	}
	if n := len(s.Projects()); n != 0 {
		t.Errorf("projects: expected empty, got %d", n)
	}
	if n := len(s.Tasks()); n != 0 {
		t.Errorf("tasks: expected empty, got %d", n)
	}
	if n := len(s.Assignments()); n != 0 {
		t.Errorf("assignments: expected empty, got %d", n)
	}
	if n := len(s.TimeLogs()); n != 0 {
		t.Errorf("timelogs: expected empty, got %d", n)
	}
}

func TestOnChangeHookFires(t *testing.T) {
	s := New()

	fired := 0
	s.OnChange(Clients, func() { fired++ })

	s.ReplaceClients([]models.Client{{ID: 1}})
	s.ReplaceClients(nil)

	if fired != 2 {
		t.Errorf("expected hook to fire 2 times, fired %d", fired)
	}

	// Replacing an unrelated collection must not fire the clients hook.
	s.ReplaceTasks([]models.Task{{ID: 2, Title: "t"}})
	if fired != 2 {
		t.Errorf("tasks replace fired clients hook (count %d)", fired)
	}
}

func TestHookSeesNewState(t *testing.T) {
	s := New()

	var observed int
	s.OnChange(Clients, func() { observed = len(s.Clients()) })

	s.ReplaceClients([]models.Client{{ID: 1}, {ID: 2}})
	if observed != 2 {
		t.Errorf("hook observed %d clients, want 2", observed)
	}
}

// CRUD expressed as replace-whole-collection: after every operation the
// collection holds exactly one entry per live id and none for deleted ids.
func TestCRUDSequenceKeepsCollectionConsistent(t *testing.T) {
	s := New()

	ids := make([]int64, 0, 10)
	for i := 0; i < 10; i++ {
		id := s.NextID()
		ids = append(ids, id)
		next := append([]models.Client{{ID: id, CompanyName: fmt.Sprintf("c%d", i)}}, s.Clients()...)
		s.ReplaceClients(next)
	}

	// Edit one in place.
	edited := s.Clients()
	for i := range edited {
		if edited[i].ID == ids[3] {
			edited[i].Owner = "edited"
		}
	}
	s.ReplaceClients(edited)

	// Delete another.
	var afterDelete []models.Client
	for _, c := range s.Clients() {
		if c.ID != ids[5] {
			afterDelete = append(afterDelete, c)
		}
	}
	s.ReplaceClients(afterDelete)

	got := s.Clients()
	if len(got) != 9 {
		t.Fatalf("expected 9 clients after delete, got %d", len(got))
	}
	counts := make(map[int64]int)
	for _, c := range got {
		counts[c.ID]++
	}
	for id, n := range counts {
		if n != 1 {
			t.Errorf("id %d appears %d times", id, n)
		}
	}
	if counts[ids[5]] != 0 {
		t.Errorf("deleted id %d still present", ids[5])
	}
}

func TestPaginate(t *testing.T) {
	items := make([]int, 25)
	for i := range items {
		items[i] = i + 1
	}

	pageItems, page := Paginate(items, 1, 10)
	if len(pageItems) != 10 || pageItems[0] != 1 || pageItems[9] != 10 {
		t.Errorf("page 1: got %v", pageItems)
	}
	if page.HasPrev {
		t.Error("page 1 should have Prev disabled")
	}
	if !page.HasNext {
		t.Error("page 1 should have Next enabled")
	}

	pageItems, page = Paginate(items, 3, 10)
	if len(pageItems) != 5 || pageItems[0] != 21 || pageItems[4] != 25 {
		t.Errorf("page 3: got %v", pageItems)
	}
	if page.HasNext {
		t.Error("page 3 should have Next disabled")
	}
	if page.TotalPages != 3 {
		t.Errorf("total pages: got %d, want 3", page.TotalPages)
	}
}

func TestPaginateClampsOutOfRange(t *testing.T) {
	items := []int{1, 2, 3}

	// Past the last page is a no-op, not an error.
	pageItems, page := Paginate(items, 99, 10)
	if page.Number != 1 || len(pageItems) != 3 {
		t.Errorf("expected clamp to page 1, got page %d with %d items", page.Number, len(pageItems))
	}

	// Before the first page likewise.
	_, page = Paginate(items, -4, 10)
	if page.Number != 1 {
		t.Errorf("expected clamp to page 1, got %d", page.Number)
	}
}

func TestPaginateEmptyCollection(t *testing.T) {
	pageItems, page := Paginate([]int{}, 1, 10)
	if len(pageItems) != 0 {
		t.Errorf("expected no items, got %d", len(pageItems))
	}
	if page.TotalPages != 1 || page.HasNext || page.HasPrev {
		t.Errorf("empty collection page state: %+v", page)
	}
}

// Two mutations that each prepend one entry must both survive, no matter
// how the scheduler interleaves them. With snapshot-then-replace one of
// the two would base itself on the stale snapshot and overwrite the other.
func TestUpdateClientsSerializesConcurrentCreates(t *testing.T) {
	s := New()

	const creates = 64
	var wg sync.WaitGroup
	for i := 0; i < creates; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			client := models.Client{ID: s.NextID()}
			s.UpdateClients(func(clients []models.Client) []models.Client {
				return append([]models.Client{client}, clients...)
			})
		}()
	}
	wg.Wait()

	if got := len(s.Clients()); got != creates {
		t.Fatalf("%d creates succeeded but %d clients remain", creates, got)
	}
}

// The callback runs under the store lock, so a second update must not
// observe the collection until the first has committed.
func TestUpdateClientsHoldsLockAcrossCallback(t *testing.T) {
	s := New()

	inFirst := make(chan struct{})
	release := make(chan struct{})
	firstDone := make(chan struct{})
	secondDone := make(chan struct{})

	go func() {
		s.UpdateClients(func(clients []models.Client) []models.Client {
			close(inFirst)
			<-release
			return append([]models.Client{{ID: 1}}, clients...)
		})
		close(firstDone)
	}()

	<-inFirst
	go func() {
		s.UpdateClients(func(clients []models.Client) []models.Client {
			return append([]models.Client{{ID: 2}}, clients...)
		})
		close(secondDone)
	}()

	select {
	case <-secondDone:
		t.Fatal("second update committed while the first callback was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	<-firstDone
	<-secondDone

	if got := len(s.Clients()); got != 2 {
		t.Fatalf("expected both updates applied, got %d clients", got)
	}
}

// A callback that returns nil declines the mutation: the collection keeps
// its previous contents and no change hook fires.
func TestUpdateClientsNilResultIsNoOp(t *testing.T) {
	s := New()
	s.ReplaceClients([]models.Client{{ID: 1, CompanyName: "Acme"}})

	fired := 0
	s.OnChange(Clients, func() { fired++ })

	s.UpdateClients(func(clients []models.Client) []models.Client { return nil })

	clients := s.Clients()
	if len(clients) != 1 || clients[0].CompanyName != "Acme" {
		t.Fatalf("declined update changed the collection: %+v", clients)
	}
	if fired != 0 {
		t.Errorf("declined update fired %d hooks, want 0", fired)
	}
}

// Mutating the snapshot passed to the callback and then declining must not
// leak into the stored collection.
func TestUpdateClientsSnapshotIsIsolated(t *testing.T) {
	s := New()
	s.ReplaceClients([]models.Client{{ID: 1, CompanyName: "Acme"}})

	s.UpdateClients(func(clients []models.Client) []models.Client {
		clients[0].CompanyName = "scribbled"
		return nil
	})

	if got := s.Clients()[0].CompanyName; got != "Acme" {
		t.Errorf("callback snapshot leaked into the store: %q", got)
	}
}
