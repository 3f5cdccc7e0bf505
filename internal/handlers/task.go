package handlers

import (
	"bytes"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"

	"studiodesk/internal/metrics"
	"studiodesk/internal/middleware"
	"studiodesk/internal/models"
	"studiodesk/internal/notify"
	"studiodesk/internal/spreadsheet"
	"studiodesk/internal/store"
)

// TaskHandler owns the task collection. Every successful mutation emits
// exactly one notification carrying the task title; reads emit none.
type TaskHandler struct {
	feed     *notify.Feed
	pageSize int
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(feed *notify.Feed, pageSize int) *TaskHandler {
	if pageSize < 1 {
		pageSize = 10
	}
	return &TaskHandler{feed: feed, pageSize: pageSize}
}

// List returns one page of tasks
// GET /api/tasks?page=N
func (h *TaskHandler) List(c *fiber.Ctx) error {
	st := middleware.AppData(c)

	items, page := store.Paginate(st.Tasks(), c.QueryInt("page", 1), h.pageSize)

	return c.JSON(fiber.Map{
		"data":        items,
		"page":        page.Number,
		"page_size":   page.Size,
		"total":       page.TotalItems,
		"total_pages": page.TotalPages,
		"has_prev":    page.HasPrev,
		"has_next":    page.HasNext,
	})
}

// Get returns a single task with its description rendered to safe HTML.
// Viewing a task is a pure read: no notification is emitted.
// GET /api/tasks/:id
func (h *TaskHandler) Get(c *fiber.Ctx) error {
	st := middleware.AppData(c)

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid task id",
		})
	}

	for _, task := range st.Tasks() {
		if task.ID == int64(id) {
			rendered, err := task.Description.Render()
			if err != nil {
				log.Printf("⚠️  Failed to render description for task %d: %v", task.ID, err)
				rendered = ""
			}
			return c.JSON(fiber.Map{
				"data":             task,
				"description_html": rendered,
			})
		}
	}

	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error": "Task not found",
	})
}

// Create adds a new task at the top of the collection
// POST /api/tasks
func (h *TaskHandler) Create(c *fiber.Ctx) error {
	st := middleware.AppData(c)

	var input models.TaskInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	task := models.Task{ID: st.NextID()}
	input.Apply(&task)
	if !task.Status.Valid() {
		task.Status = models.TaskStatusTodo
	}

	st.UpdateTasks(func(tasks []models.Task) []models.Task {
		return append([]models.Task{task}, tasks...)
	})
	h.notify(fmt.Sprintf("Task created: %s", task.Title))

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": task})
}

// Update replaces the matching task in place
// PUT /api/tasks/:id
func (h *TaskHandler) Update(c *fiber.Ctx) error {
	st := middleware.AppData(c)

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid task id",
		})
	}

	var input models.TaskInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	var updated *models.Task
	st.UpdateTasks(func(tasks []models.Task) []models.Task {
		for i := range tasks {
			if tasks[i].ID == int64(id) {
				input.Apply(&tasks[i])
				if !tasks[i].Status.Valid() {
					tasks[i].Status = models.TaskStatusTodo
				}
				changed := tasks[i]
				updated = &changed
				return tasks
			}
		}
		return nil
	})
	if updated == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Task not found",
		})
	}

	h.notify(fmt.Sprintf("Task updated: %s", updated.Title))

	return c.JSON(fiber.Map{"data": *updated})
}

// Delete removes the matching task. The notification carries the title the
// task had at the moment of deletion.
// DELETE /api/tasks/:id
func (h *TaskHandler) Delete(c *fiber.Ctx) error {
	st := middleware.AppData(c)

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid task id",
		})
	}

	var deleted *models.Task
	st.UpdateTasks(func(tasks []models.Task) []models.Task {
		next := make([]models.Task, 0, len(tasks))
		for _, task := range tasks {
			if task.ID == int64(id) {
				removed := task
				deleted = &removed
				continue
			}
			next = append(next, task)
		}
		if deleted == nil {
			return nil
		}
		return next
	})
	if deleted == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Task not found",
		})
	}

	h.notify(fmt.Sprintf("Task deleted: %s", deleted.Title))

	return c.JSON(fiber.Map{"deleted": id})
}

// Export serializes all tasks to a workbook
// GET /api/tasks/export
func (h *TaskHandler) Export(c *fiber.Ctx) error {
	st := middleware.AppData(c)

	f, err := spreadsheet.ExportTasks(st.Tasks())
	if err != nil {
		log.Printf("❌ Task export failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate spreadsheet",
		})
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		log.Printf("❌ Task export failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate spreadsheet",
		})
	}

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="tasks.xlsx"`)
	return c.Send(buf.Bytes())
}

// Import prepends all workbook rows as one batch in file order. Like the
// client import it is append-only and never deduplicates. The whole batch
// yields a single notification, not one per row.
// POST /api/tasks/import (multipart field "file")
func (h *TaskHandler) Import(c *fiber.Ctx) error {
	st := middleware.AppData(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing file upload",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to open uploaded file",
		})
	}
	defer file.Close()

	imported, err := spreadsheet.ImportTasks(file, st.NextID)
	if err != nil {
		log.Printf("❌ Task import failed: %v", err)
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": "Failed to parse spreadsheet",
		})
	}

	st.UpdateTasks(func(tasks []models.Task) []models.Task {
		return append(imported, tasks...)
	})
	metrics.ImportedRows.WithLabelValues("tasks").Add(float64(len(imported)))
	h.notify(fmt.Sprintf("Imported %d tasks", len(imported)))

	log.Printf("📥 Imported %d tasks from %s", len(imported), fileHeader.Filename)
	return c.JSON(fiber.Map{
		"message":  fmt.Sprintf("Imported %d tasks", len(imported)),
		"imported": len(imported),
	})
}

func (h *TaskHandler) notify(message string) {
	h.feed.Add(message)
	metrics.Notifications.Inc()
}
