package spreadsheet

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"studiodesk/internal/models"
)

func counter(start int64) func() int64 {
	n := start
	return func() int64 {
		n++
		return n
	}
}

func TestExportImportRoundTripsBusinessFields(t *testing.T) {
	original := []models.Client{
		{ID: 1, CompanyName: "Acme", Owner: "Jo", Phone: "555-1", Category: "web", Package: "gold", Deadline: "2026-09-01", Deposit: "500", Paid: "250"},
		{ID: 2, CompanyName: "Globex", Owner: "Max", Phone: "555-2", Category: "logo", Package: "basic", Deadline: "2026-10-15", Deposit: "100", Paid: "100"},
	}

	f, err := ExportClients(original)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("failed to serialize workbook: %v", err)
	}

	imported, err := ImportClients(&buf, counter(1000))
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}

	if len(imported) != len(original) {
		t.Fatalf("expected %d rows, got %d", len(original), len(imported))
	}
	for i, got := range imported {
		want := original[i]
		// Identifiers are regenerated; every business field round-trips verbatim.
		if got.ID == want.ID {
			t.Errorf("row %d: id was not regenerated", i)
		}
		want.ID = got.ID
		if got != want {
			t.Errorf("row %d: got %+v, want %+v", i, got, want)
		}
	}
	if imported[0].ID == imported[1].ID {
		t.Error("ids within one import batch must be distinct")
	}
}

func TestImportDefaultsMissingColumnsToEmpty(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	// Only two of the nine columns present.
	f.SetSheetRow(sheet, "A1", &[]interface{}{"company_name", "phone"})
	f.SetSheetRow(sheet, "A2", &[]interface{}{"Acme", "555"})
	f.SetSheetRow(sheet, "A3", &[]interface{}{"Globex"})

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("failed to serialize workbook: %v", err)
	}

	clients, err := ImportClients(&buf, counter(0))
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}

	if len(clients) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(clients))
	}
	if clients[0].CompanyName != "Acme" || clients[0].Phone != "555" {
		t.Errorf("row 0 mapped wrong: %+v", clients[0])
	}
	if clients[0].Owner != "" || clients[0].Category != "" || clients[0].Deadline != "" {
		t.Errorf("missing columns should be empty: %+v", clients[0])
	}
	if clients[1].CompanyName != "Globex" || clients[1].Phone != "" {
		t.Errorf("short row should pad with empty: %+v", clients[1])
	}
}

func TestImportSkipsEmptyRowsAndPreservesOrder(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	f.SetSheetRow(sheet, "A1", &[]interface{}{"company_name"})
	f.SetSheetRow(sheet, "A2", &[]interface{}{"First"})
	f.SetSheetRow(sheet, "A3", &[]interface{}{""})
	f.SetSheetRow(sheet, "A4", &[]interface{}{"Second"})

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("failed to serialize workbook: %v", err)
	}

	clients, err := ImportClients(&buf, counter(0))
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}

	if len(clients) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(clients))
	}
	if clients[0].CompanyName != "First" || clients[1].CompanyName != "Second" {
		t.Errorf("file row order not preserved: %+v", clients)
	}
}

func TestImportTasksNeverTrustsCellMarkup(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	f.SetSheetRow(sheet, "A1", &[]interface{}{"title", "description", "status"})
	f.SetSheetRow(sheet, "A2", &[]interface{}{"Design review", "<script>alert(1)</script>", "bogus"})

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("failed to serialize workbook: %v", err)
	}

	tasks, err := ImportTasks(&buf, counter(0))
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}

	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	if tasks[0].Description.Kind != "plain" {
		t.Errorf("imported description must be plain text, got kind %q", tasks[0].Description.Kind)
	}
	if tasks[0].Status != models.TaskStatusTodo {
		t.Errorf("unknown status should fall back to todo, got %q", tasks[0].Status)
	}

	html, err := tasks[0].Description.Render()
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if bytes.Contains([]byte(html), []byte("<script>")) {
		t.Errorf("rendered description contains raw script tag: %s", html)
	}
}
