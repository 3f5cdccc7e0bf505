package spreadsheet

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"studiodesk/internal/models"
	"studiodesk/internal/richtext"
)

// Column order matches the entity field order, id first. On import the id
// column is ignored: every row gets a freshly minted identifier.
var clientColumns = []string{"id", "company_name", "owner", "phone", "category", "package", "deadline", "dp", "paid"}

var taskColumns = []string{"id", "title", "description", "due_date", "status", "project_id", "assigned_user_id", "package"}

// ExportClients serializes the entire client collection to a workbook. The
// whole collection is exported, not just the visible page, with no
// filtering.
func ExportClients(clients []models.Client) (*excelize.File, error) {
	f := excelize.NewFile()
	const sheet = "Clients"
	f.SetSheetName(f.GetSheetName(0), sheet)

	if err := f.SetSheetRow(sheet, "A1", &clientColumns); err != nil {
		return nil, fmt.Errorf("failed to write header row: %w", err)
	}

	for i, c := range clients {
		row := []interface{}{c.ID, c.CompanyName, c.Owner, c.Phone, c.Category, c.Package, c.Deadline, c.Deposit, c.Paid}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	return f, nil
}

// ImportClients parses the first sheet of an uploaded workbook into client
// records. Missing columns default to the empty string. Each row receives an
// identifier from nextID, so ids are distinct from all existing records and
// from other rows in the same batch. Import never deduplicates; rows are
// returned in file order for the caller to prepend as one batch.
func ImportClients(r io.Reader, nextID func() int64) ([]models.Client, error) {
	rows, header, err := readFirstSheet(r)
	if err != nil {
		return nil, err
	}

	clients := make([]models.Client, 0, len(rows))
	for _, row := range rows {
		get := cellGetter(header, row)
		clients = append(clients, models.Client{
			ID:          nextID(),
			CompanyName: get("company_name"),
			Owner:       get("owner"),
			Phone:       get("phone"),
			Category:    get("category"),
			Package:     get("package"),
			Deadline:    get("deadline"),
			Deposit:     get("dp"),
			Paid:        get("paid"),
		})
	}

	return clients, nil
}

// ExportTasks serializes the entire task collection to a workbook
func ExportTasks(tasks []models.Task) (*excelize.File, error) {
	f := excelize.NewFile()
	const sheet = "Tasks"
	f.SetSheetName(f.GetSheetName(0), sheet)

	if err := f.SetSheetRow(sheet, "A1", &taskColumns); err != nil {
		return nil, fmt.Errorf("failed to write header row: %w", err)
	}

	for i, t := range tasks {
		row := []interface{}{t.ID, t.Title, t.Description.Content, t.DueDate, string(t.Status), t.ProjectID, t.AssignedUserID, t.Package}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	return f, nil
}

// ImportTasks parses the first sheet of an uploaded workbook into task
// records. Descriptions come in as plain text; markup in a spreadsheet
// cell is never trusted as HTML.
func ImportTasks(r io.Reader, nextID func() int64) ([]models.Task, error) {
	rows, header, err := readFirstSheet(r)
	if err != nil {
		return nil, err
	}

	tasks := make([]models.Task, 0, len(rows))
	for _, row := range rows {
		get := cellGetter(header, row)

		status := models.TaskStatus(get("status"))
		if !status.Valid() {
			status = models.TaskStatusTodo
		}

		tasks = append(tasks, models.Task{
			ID:             nextID(),
			Title:          get("title"),
			Description:    richtext.Text{Kind: richtext.KindPlain, Content: get("description")},
			DueDate:        get("due_date"),
			Status:         status,
			ProjectID:      parseID(get("project_id")),
			AssignedUserID: parseID(get("assigned_user_id")),
			Package:        get("package"),
		})
	}

	return tasks, nil
}

// readFirstSheet opens a workbook and returns the data rows of its first
// sheet along with a normalized header index.
func readFirstSheet(r io.Reader) ([][]string, map[string]int, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("no sheets found in workbook")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, nil, nil
	}

	header := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			header[h] = i
		}
	}

	data := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isEmptyRow(row) {
			continue
		}
		data = append(data, row)
	}

	return data, header, nil
}

// cellGetter returns a lookup over one row: missing columns and short rows
// both default to "".
func cellGetter(header map[string]int, row []string) func(string) string {
	return func(col string) string {
		idx, ok := header[col]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}
}

func parseID(s string) int64 {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
