package handlers

import (
	"bytes"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"

	"studiodesk/internal/config"
	"studiodesk/internal/gateway"
	"studiodesk/internal/metrics"
	"studiodesk/internal/middleware"
	"studiodesk/internal/models"
	"studiodesk/internal/spreadsheet"
	"studiodesk/internal/store"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ClientHandler owns the client table: CRUD, pagination and spreadsheet
// import/export. Mutations are optimistic: the store is updated first and
// the push to the upstream API happens in the background.
type ClientHandler struct {
	gw       *gateway.Gateway
	policy   *config.PolicyHolder
	pageSize int
}

// NewClientHandler creates a new client handler
func NewClientHandler(gw *gateway.Gateway, policy *config.PolicyHolder, pageSize int) *ClientHandler {
	if pageSize < 1 {
		pageSize = 10
	}
	return &ClientHandler{gw: gw, policy: policy, pageSize: pageSize}
}

func (h *ClientHandler) remoteBacked() bool {
	return h.policy.Get().For("clients").RemoteBacked && h.gw.Enabled()
}

// List returns one page of the client table
// GET /api/clients?page=N
func (h *ClientHandler) List(c *fiber.Ctx) error {
	st := middleware.AppData(c)

	clients := st.Clients()
	items, page := store.Paginate(clients, c.QueryInt("page", 1), h.pageSize)

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

// Get returns a single client
// GET /api/clients/:id
func (h *ClientHandler) Get(c *fiber.Ctx) error {
	st := middleware.AppData(c)

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid client id",
		})
	}

	for _, client := range st.Clients() {
		if client.ID == int64(id) {
			return c.JSON(fiber.Map{
				"data":       client,
				"sync_state": h.gw.SyncState(client.ID),
			})
		}
	}

	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error": "Client not found",
	})
}

// Create adds a new client at the top of the table and resets the visible
// page to 1. The remote push is fire-and-forget: its failure never rolls
// back the local record.
// POST /api/clients
func (h *ClientHandler) Create(c *fiber.Ctx) error {
	st := middleware.AppData(c)

	var input models.ClientInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	client := models.Client{ID: st.NextID()}
	input.Apply(&client)

	st.UpdateClients(func(clients []models.Client) []models.Client {
		return append([]models.Client{client}, clients...)
	})

	if h.remoteBacked() {
		h.gw.PushClientCreate(client)
	}

	log.Printf("✅ Client %d (%s) created", client.ID, client.CompanyName)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"data": client,
		"page": 1,
	})
}

// Update replaces the matching entry in place; its position is unchanged.
// PUT /api/clients/:id
func (h *ClientHandler) Update(c *fiber.Ctx) error {
	st := middleware.AppData(c)

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid client id",
		})
	}

	var input models.ClientInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	var updated *models.Client
	st.UpdateClients(func(clients []models.Client) []models.Client {
		for i := range clients {
			if clients[i].ID == int64(id) {
				input.Apply(&clients[i])
				changed := clients[i]
				updated = &changed
				return clients
			}
		}
		return nil
	})
	if updated == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Client not found",
		})
	}

	if h.remoteBacked() {
		h.gw.PushClientUpdate(*updated)
	}

	return c.JSON(fiber.Map{"data": *updated})
}

// Patch applies only the fields present in the payload; absent fields keep
// their stored values.
// PATCH /api/clients/:id
func (h *ClientHandler) Patch(c *fiber.Ctx) error {
	st := middleware.AppData(c)

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid client id",
		})
	}

	var patch models.ClientPatch
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	var updated *models.Client
	st.UpdateClients(func(clients []models.Client) []models.Client {
		for i := range clients {
			if clients[i].ID == int64(id) {
				patch.Apply(&clients[i])
				changed := clients[i]
				updated = &changed
				return clients
			}
		}
		return nil
	})
	if updated == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Client not found",
		})
	}

	if h.remoteBacked() {
		h.gw.PushClientUpdate(*updated)
	}

	return c.JSON(fiber.Map{"data": *updated})
}

// Delete removes the matching entry
// DELETE /api/clients/:id
func (h *ClientHandler) Delete(c *fiber.Ctx) error {
	st := middleware.AppData(c)

	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid client id",
		})
	}

	found := false
	st.UpdateClients(func(clients []models.Client) []models.Client {
		next := make([]models.Client, 0, len(clients))
		for _, client := range clients {
			if client.ID == int64(id) {
				found = true
				continue
			}
			next = append(next, client)
		}
		if !found {
			return nil
		}
		return next
	})
	if !found {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Client not found",
		})
	}

	if h.remoteBacked() {
		h.gw.PushClientDelete(int64(id))
	}

	log.Printf("🗑️  Client %d deleted", id)
	return c.JSON(fiber.Map{"deleted": id})
}

// Export serializes the entire collection (not just the visible page) to
// a workbook and offers it for download.
// GET /api/clients/export
func (h *ClientHandler) Export(c *fiber.Ctx) error {
	st := middleware.AppData(c)

	f, err := spreadsheet.ExportClients(st.Clients())
	if err != nil {
		log.Printf("❌ Client export failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate spreadsheet",
		})
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		log.Printf("❌ Client export failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate spreadsheet",
		})
	}

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="clients.xlsx"`)
	return c.Send(buf.Bytes())
}

// Import parses the first sheet of the uploaded workbook and prepends all
// rows as a single batch, preserving file order, then resets the visible
// page to 1. Import is append-only: it never deduplicates against existing
// entries, so importing the same file twice produces two sets of rows.
// POST /api/clients/import (multipart field "file")
func (h *ClientHandler) Import(c *fiber.Ctx) error {
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

	imported, err := spreadsheet.ImportClients(file, st.NextID)
	if err != nil {
		log.Printf("❌ Client import failed: %v", err)
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": "Failed to parse spreadsheet",
		})
	}

	st.UpdateClients(func(clients []models.Client) []models.Client {
		return append(imported, clients...)
	})
	metrics.ImportedRows.WithLabelValues("clients").Add(float64(len(imported)))

	log.Printf("📥 Imported %d clients from %s", len(imported), fileHeader.Filename)
	return c.JSON(fiber.Map{
		"message":  fmt.Sprintf("Imported %d clients", len(imported)),
		"imported": len(imported),
		"page":     1,
	})
}

// SyncStatus exposes how far local client mutations have propagated to the
// upstream API.
// GET /api/clients/sync-status
func (h *ClientHandler) SyncStatus(c *fiber.Ctx) error {
	states := h.gw.SyncStates()
	out := make(map[string]models.SyncState, len(states))
	for id, state := range states {
		out[fmt.Sprintf("%d", id)] = state
	}
	return c.JSON(fiber.Map{"data": out})
}
