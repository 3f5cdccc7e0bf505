package handlers

import (
	"github.com/gofiber/fiber/v2"

	"studiodesk/internal/middleware"
	"studiodesk/internal/models"
)

// ProjectHandler owns the project collection
type ProjectHandler struct{}

// NewProjectHandler creates a new project handler
func NewProjectHandler() *ProjectHandler {
	return &ProjectHandler{}
}

// List returns all projects with their client name resolved. A project
// whose client no longer exists renders a placeholder instead of failing.
// GET /api/projects
func (h *ProjectHandler) List(c *fiber.Ctx) error {
	st := middleware.AppData(c)

	clients := st.Clients()
	names := make(map[int64]string, len(clients))
	for _, client := range clients {
		names[client.ID] = client.CompanyName
	}

	projects := st.Projects()
	type projectView struct {
		models.Project
		ClientName string `json:"client_name"`
	}
	out := make([]projectView, 0, len(projects))
	for _, p := range projects {
		name, ok := names[p.ClientID]
		if !ok {
			name = "Unknown client"
		}
		out = append(out, projectView{Project: p, ClientName: name})
	}

	return c.JSON(fiber.Map{"data": out})
}

// Create adds a new project
// POST /api/projects
func (h *ProjectHandler) Create(c *fiber.Ctx) error {
	st := middleware.AppData(c)

	var input models.ProjectInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if input.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Project name is required",
		})
	}

	project := models.Project{
		ID:       st.NextID(),
		Name:     input.Name,
		ClientID: input.ClientID,
	}

	st.UpdateProjects(func(projects []models.Project) []models.Project {
		return append([]models.Project{project}, projects...)
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": project})
}

// Get returns a single project with its client name resolved
// GET /api/projects/:id
func (h *ProjectHandler) Get(c *fiber.Ctx) error {
	st := middleware.AppData(c)

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid project id",
		})
	}

	for _, p := range st.Projects() {
		if p.ID == int64(id) {
			clientName := "Unknown client"
			for _, client := range st.Clients() {
				if client.ID == p.ClientID {
					clientName = client.CompanyName
					break
				}
			}
			return c.JSON(fiber.Map{
				"data":        p,
				"client_name": clientName,
			})
		}
	}

	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error": "Project not found",
	})
}

// Update replaces the matching project in place
// PUT /api/projects/:id
func (h *ProjectHandler) Update(c *fiber.Ctx) error {
	st := middleware.AppData(c)

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid project id",
		})
	}

	var input models.ProjectInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	var updated *models.Project
	st.UpdateProjects(func(projects []models.Project) []models.Project {
		for i := range projects {
			if projects[i].ID == int64(id) {
				projects[i].Name = input.Name
				projects[i].ClientID = input.ClientID
				changed := projects[i]
				updated = &changed
				return projects
			}
		}
		return nil
	})
	if updated == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Project not found",
		})
	}

	return c.JSON(fiber.Map{"data": *updated})
}

// Patch applies only the fields present in the payload
// PATCH /api/projects/:id
func (h *ProjectHandler) Patch(c *fiber.Ctx) error {
	st := middleware.AppData(c)

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid project id",
		})
	}

	var patch models.ProjectPatch
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	var updated *models.Project
	st.UpdateProjects(func(projects []models.Project) []models.Project {
		for i := range projects {
			if projects[i].ID == int64(id) {
				patch.Apply(&projects[i])
				changed := projects[i]
				updated = &changed
				return projects
			}
		}
		return nil
	})
	if updated == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Project not found",
		})
	}

	return c.JSON(fiber.Map{"data": *updated})
}

// Delete removes the matching project. Tasks and assignments that pointed
// at it keep their references; display falls back to placeholders.
// DELETE /api/projects/:id
func (h *ProjectHandler) Delete(c *fiber.Ctx) error {
	st := middleware.AppData(c)

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid project id",
		})
	}

	found := false
	st.UpdateProjects(func(projects []models.Project) []models.Project {
		next := make([]models.Project, 0, len(projects))
		for _, p := range projects {
			if p.ID == int64(id) {
				found = true
				continue
			}
			next = append(next, p)
		}
		if !found {
			return nil
		}
		return next
	})
	if !found {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Project not found",
		})
	}

	return c.JSON(fiber.Map{"deleted": id})
}
