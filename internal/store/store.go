package store

import (
	"sync"
	"sync/atomic"
	"time"

	"studiodesk/internal/models"
)

// Collection names the six entity collections owned by the store
type Collection string

const (
	Clients     Collection = "clients"
	Users       Collection = "users"
	Projects    Collection = "projects"
	Tasks       Collection = "tasks"
	Assignments Collection = "assignments"
	TimeLogs    Collection = "timelogs"
)

// Store is the single in-memory owner of all entity collections for a
// session. The only mutation primitive is replace-whole-collection: every
// add/edit/delete computes the new full collection from the old one and
// swaps it in atomically, so concurrent readers never observe a torn
// update. Reads hand out snapshot copies. Request handlers mutate through
// the UpdateX methods, which compute the replacement under the lock so two
// concurrent mutations can never base themselves on the same snapshot and
// silently drop one another.
type Store struct {
	mu sync.RWMutex

	clients     []models.Client
	users       []models.User
	projects    []models.Project
	tasks       []models.Task
	assignments []models.Assignment
	timeLogs    []models.TimeLog

	hookMu sync.RWMutex
	hooks  map[Collection][]func()

	lastID atomic.Int64
}

// New creates a store with all six collections empty. The identifier
// counter is seeded from the wall clock once so ids minted after a restart
// never collide with ids already sitting in a cached snapshot; after that
// it is purely monotonic, which makes rapid batch imports collision-free.
func New() *Store {
	s := &Store{
		hooks: make(map[Collection][]func()),
	}
	s.lastID.Store(time.Now().UnixMilli())
	return s
}

// NextID mints an identifier guaranteed distinct from every id this store
// has handed out, including others minted in the same import batch.
func (s *Store) NextID() int64 {
	return s.lastID.Add(1)
}

// OnChange registers a hook that fires after the named collection is
// replaced. Hooks run synchronously on the mutating goroutine, outside the
// store lock, so they may read the store freely.
func (s *Store) OnChange(col Collection, fn func()) {
	s.hookMu.Lock()
	defer s.hookMu.Unlock()
	s.hooks[col] = append(s.hooks[col], fn)
}

func (s *Store) fireHooks(col Collection) {
	s.hookMu.RLock()
	hooks := s.hooks[col]
	s.hookMu.RUnlock()
	for _, fn := range hooks {
		fn()
	}
}

// Clients returns a snapshot of the client collection
func (s *Store) Clients() []models.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Client, len(s.clients))
	copy(out, s.clients)
	return out
}

// ReplaceClients swaps in a new client collection
func (s *Store) ReplaceClients(clients []models.Client) {
	next := make([]models.Client, len(clients))
	copy(next, clients)
	s.mu.Lock()
	s.clients = next
	s.mu.Unlock()
	s.fireHooks(Clients)
}

// UpdateClients computes a replacement collection under the store lock, so
// concurrent mutations serialize instead of racing snapshot-then-replace.
// fn receives a snapshot and returns the replacement; returning nil leaves
// the collection untouched and fires no hooks.
func (s *Store) UpdateClients(fn func([]models.Client) []models.Client) {
	s.mu.Lock()
	cur := make([]models.Client, len(s.clients))
	copy(cur, s.clients)
	next := fn(cur)
	if next == nil {
		s.mu.Unlock()
		return
	}
	out := make([]models.Client, len(next))
	copy(out, next)
	s.clients = out
	s.mu.Unlock()
	s.fireHooks(Clients)
}

// Users returns a snapshot of the user collection
func (s *Store) Users() []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.User, len(s.users))
	copy(out, s.users)
	return out
}

// ReplaceUsers swaps in a new user collection
func (s *Store) ReplaceUsers(users []models.User) {
	next := make([]models.User, len(users))
	copy(next, users)
	s.mu.Lock()
	s.users = next
	s.mu.Unlock()
	s.fireHooks(Users)
}

// Projects returns a snapshot of the project collection
func (s *Store) Projects() []models.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Project, len(s.projects))
	copy(out, s.projects)
	return out
}

// ReplaceProjects swaps in a new project collection
func (s *Store) ReplaceProjects(projects []models.Project) {
	next := make([]models.Project, len(projects))
	copy(next, projects)
	s.mu.Lock()
	s.projects = next
	s.mu.Unlock()
	s.fireHooks(Projects)
}

// UpdateProjects computes a replacement collection under the store lock.
// Returning nil from fn leaves the collection untouched.
func (s *Store) UpdateProjects(fn func([]models.Project) []models.Project) {
	s.mu.Lock()
	cur := make([]models.Project, len(s.projects))
	copy(cur, s.projects)
	next := fn(cur)
	if next == nil {
		s.mu.Unlock()
		return
	}
	out := make([]models.Project, len(next))
	copy(out, next)
	s.projects = out
	s.mu.Unlock()
	s.fireHooks(Projects)
}

// Tasks returns a snapshot of the task collection
func (s *Store) Tasks() []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// ReplaceTasks swaps in a new task collection
func (s *Store) ReplaceTasks(tasks []models.Task) {
	next := make([]models.Task, len(tasks))
	copy(next, tasks)
	s.mu.Lock()
	s.tasks = next
	s.mu.Unlock()
	s.fireHooks(Tasks)
}

// UpdateTasks computes a replacement collection under the store lock.
// Returning nil from fn leaves the collection untouched.
func (s *Store) UpdateTasks(fn func([]models.Task) []models.Task) {
	s.mu.Lock()
	cur := make([]models.Task, len(s.tasks))
	copy(cur, s.tasks)
	next := fn(cur)
	if next == nil {
		s.mu.Unlock()
		return
	}
	out := make([]models.Task, len(next))
	copy(out, next)
	s.tasks = out
	s.mu.Unlock()
	s.fireHooks(Tasks)
}

// Assignments returns a snapshot of the assignment collection
func (s *Store) Assignments() []models.Assignment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Assignment, len(s.assignments))
	copy(out, s.assignments)
	return out
}

// ReplaceAssignments swaps in a new assignment collection
func (s *Store) ReplaceAssignments(assignments []models.Assignment) {
	next := make([]models.Assignment, len(assignments))
	copy(next, assignments)
	s.mu.Lock()
	s.assignments = next
	s.mu.Unlock()
	s.fireHooks(Assignments)
}

// UpdateAssignments computes a replacement collection under the store lock.
// Uniqueness checks belong inside fn, where no concurrent create can slip
// between the check and the write. Returning nil from fn leaves the
// collection untouched.
func (s *Store) UpdateAssignments(fn func([]models.Assignment) []models.Assignment) {
	s.mu.Lock()
	cur := make([]models.Assignment, len(s.assignments))
	copy(cur, s.assignments)
	next := fn(cur)
	if next == nil {
		s.mu.Unlock()
		return
	}
	out := make([]models.Assignment, len(next))
	copy(out, next)
	s.assignments = out
	s.mu.Unlock()
	s.fireHooks(Assignments)
}

// TimeLogs returns a snapshot of the time-log collection
func (s *Store) TimeLogs() []models.TimeLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.TimeLog, len(s.timeLogs))
	copy(out, s.timeLogs)
	return out
}

// ReplaceTimeLogs swaps in a new time-log collection
func (s *Store) ReplaceTimeLogs(timeLogs []models.TimeLog) {
	next := make([]models.TimeLog, len(timeLogs))
	copy(next, timeLogs)
	s.mu.Lock()
	s.timeLogs = next
	s.mu.Unlock()
	s.fireHooks(TimeLogs)
}
