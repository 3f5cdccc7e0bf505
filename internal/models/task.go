package models

import "studiodesk/internal/richtext"

// TaskStatus is a flat enumeration: any status may be set directly, there
// is no enforced transition order.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "inprogress"
	TaskStatusDone       TaskStatus = "done"
)

// Valid reports whether the status is one of the known values
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

// Task represents a unit of work on a project
type Task struct {
	ID             int64         `json:"id"`
	Title          string        `json:"title"`
	Description    richtext.Text `json:"description"`
	DueDate        string        `json:"due_date"`
	Status         TaskStatus    `json:"status"`
	ProjectID      int64         `json:"project_id"`
	AssignedUserID int64         `json:"assigned_user_id"`
	Package        string        `json:"package"`
}

// TaskInput is the form payload for creating or updating a task
type TaskInput struct {
	Title          string        `json:"title"`
	Description    richtext.Text `json:"description"`
	DueDate        string        `json:"due_date"`
	Status         TaskStatus    `json:"status"`
	ProjectID      int64         `json:"project_id"`
	AssignedUserID int64         `json:"assigned_user_id"`
	Package        string        `json:"package"`
}

// Apply copies the form payload onto a task record. The description is
// sanitized here so nothing unsafe ever reaches the store.
func (in TaskInput) Apply(t *Task) {
	t.Title = in.Title
	t.Description = richtext.Sanitize(in.Description)
	t.DueDate = in.DueDate
	t.Status = in.Status
	t.ProjectID = in.ProjectID
	t.AssignedUserID = in.AssignedUserID
	t.Package = in.Package
}
