package models

// Project represents a project owned by a client. The client reference is
// soft: the client may have been deleted independently, in which case
// display falls back to a placeholder.
type Project struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ClientID int64  `json:"client_id"`
}

// ProjectInput is the form payload for creating or updating a project
type ProjectInput struct {
	Name     string `json:"name"`
	ClientID int64  `json:"client_id"`
}

// ProjectPatch is the partial form payload for PATCH: nil fields are left
// unchanged on the record.
type ProjectPatch struct {
	Name     *string `json:"name"`
	ClientID *int64  `json:"client_id"`
}

// Apply copies only the provided fields onto a project record
func (p ProjectPatch) Apply(pr *Project) {
	if p.Name != nil {
		pr.Name = *p.Name
	}
	if p.ClientID != nil {
		pr.ClientID = *p.ClientID
	}
}

// Assignment is a user's membership on a project. The (UserID, ProjectID)
// pair is unique within the collection.
type Assignment struct {
	UserID    int64 `json:"user_id"`
	ProjectID int64 `json:"project_id"`
}

// TimeLog records minutes spent on a task. Declared in the store but not
// yet populated by any page; reserved extension point.
type TimeLog struct {
	ID      int64  `json:"id"`
	TaskID  int64  `json:"task_id"`
	UserID  int64  `json:"user_id"`
	Minutes int    `json:"minutes"`
	Date    string `json:"date"`
}

// DashboardStats is the aggregate view rendered by the dashboard
type DashboardStats struct {
	Clients    int            `json:"clients"`
	Projects   int            `json:"projects"`
	Tasks      int            `json:"tasks"`
	TaskStatus map[string]int `json:"task_status"`
}
