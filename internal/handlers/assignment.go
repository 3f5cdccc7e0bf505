package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"studiodesk/internal/metrics"
	"studiodesk/internal/middleware"
	"studiodesk/internal/models"
	"studiodesk/internal/notify"
)

// AssignmentHandler owns project memberships. The (user, project) pair is
// unique within the collection; duplicates are rejected without touching it.
type AssignmentHandler struct {
	feed *notify.Feed
}

// NewAssignmentHandler creates a new assignment handler
func NewAssignmentHandler(feed *notify.Feed) *AssignmentHandler {
	return &AssignmentHandler{feed: feed}
}

// List returns all assignments with user and project names resolved.
// Dangling references render placeholders.
// GET /api/assignments
func (h *AssignmentHandler) List(c *fiber.Ctx) error {
	st := middleware.AppData(c)

	userNames := make(map[int64]string)
	for _, u := range st.Users() {
		userNames[u.ID] = u.Name
	}
	projectNames := make(map[int64]string)
	for _, p := range st.Projects() {
		projectNames[p.ID] = p.Name
	}

	assignments := st.Assignments()
	type assignmentView struct {
		models.Assignment
		UserName    string `json:"user_name"`
		ProjectName string `json:"project_name"`
	}
	out := make([]assignmentView, 0, len(assignments))
	for _, a := range assignments {
		view := assignmentView{Assignment: a, UserName: "Unknown user", ProjectName: "Unknown project"}
		if name, ok := userNames[a.UserID]; ok {
			view.UserName = name
		}
		if name, ok := projectNames[a.ProjectID]; ok {
			view.ProjectName = name
		}
		out = append(out, view)
	}

	return c.JSON(fiber.Map{"data": out})
}

// Create adds a membership. A pair that already exists is rejected with a
// conflict and the collection is left untouched.
// POST /api/assignments
func (h *AssignmentHandler) Create(c *fiber.Ctx) error {
	st := middleware.AppData(c)

	var input models.Assignment
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	// The duplicate check runs inside the locked update so a concurrent
	// create of the same pair cannot slip between check and write.
	duplicate := false
	st.UpdateAssignments(func(assignments []models.Assignment) []models.Assignment {
		for _, a := range assignments {
			if a.UserID == input.UserID && a.ProjectID == input.ProjectID {
				duplicate = true
				return nil
			}
		}
		return append(assignments, input)
	})
	if duplicate {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Assignment already exists",
		})
	}

	userName := "Unknown user"
	for _, u := range st.Users() {
		if u.ID == input.UserID {
			userName = u.Name
			break
		}
	}
	projectName := "Unknown project"
	for _, p := range st.Projects() {
		if p.ID == input.ProjectID {
			projectName = p.Name
			break
		}
	}
	h.feed.Add(fmt.Sprintf("%s assigned to %s", userName, projectName))
	metrics.Notifications.Inc()

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": input})
}

// Delete removes a membership identified by its pair
// DELETE /api/assignments?user_id=N&project_id=M
func (h *AssignmentHandler) Delete(c *fiber.Ctx) error {
	st := middleware.AppData(c)

	userID := int64(c.QueryInt("user_id"))
	projectID := int64(c.QueryInt("project_id"))

	found := false
	st.UpdateAssignments(func(assignments []models.Assignment) []models.Assignment {
		next := make([]models.Assignment, 0, len(assignments))
		for _, a := range assignments {
			if a.UserID == userID && a.ProjectID == projectID {
				found = true
				continue
			}
			next = append(next, a)
		}
		if !found {
			return nil
		}
		return next
	})
	if !found {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Assignment not found",
		})
	}

	return c.JSON(fiber.Map{
		"deleted": fiber.Map{"user_id": userID, "project_id": projectID},
	})
}
