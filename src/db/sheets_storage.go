package db

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"eventreg/src/models"
	"eventreg/src/types"

	"google.golang.org/api/sheets/v4"
)

// Column layout of the registrations sheet. Row 1 holds headers.
const (
	colID = iota
	colName
	colEmail
	colPhone
	colQty
	colDietary
	colNotes
	colStatus
	colCheckedIn
	colCreatedAt
)

var SheetHeader = []any{"id", "name", "email", "phone", "qty", "dietary", "notes", "status", "checkedIn", "createdAt"}

// SheetsStorage stores one registration per spreadsheet row. Ids are assigned
// as max(id)+1 under a process-local lock.
type SheetsStorage struct {
	svc           *sheets.Service
	spreadsheetID string
	sheet         string
	mu            sync.Mutex
	now           func() time.Time
}

func NewSheetsStorage(svc *sheets.Service, spreadsheetID, sheet string) *SheetsStorage {
	return &SheetsStorage{svc: svc, spreadsheetID: spreadsheetID, sheet: sheet, now: time.Now}
}

// Migrate writes the header row when the sheet is empty.
func (s *SheetsStorage) Migrate(ctx context.Context) error {
	resp, err := s.svc.Spreadsheets.Values.
		Get(s.spreadsheetID, s.a1("A1:J1")).
		Context(ctx).
		Do()
	if err != nil {
		return err
	}
	if len(resp.Values) > 0 {
		return nil
	}
	_, err = s.svc.Spreadsheets.Values.
		Update(s.spreadsheetID, s.a1("A1:J1"), &sheets.ValueRange{Values: [][]any{SheetHeader}}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}

func (s *SheetsStorage) a1(r string) string {
	return quoteSheetName(s.sheet) + "!" + r
}

// quoteSheetName makes any tab title safe inside an A1 range.
func quoteSheetName(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

func (s *SheetsStorage) readRows(ctx context.Context) ([][]any, error) {
	resp, err := s.svc.Spreadsheets.Values.
		Get(s.spreadsheetID, s.a1("A2:J")).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

// findRow returns the 1-based sheet row number holding id, or 0.
func findRow(rows [][]any, id uint) int {
	for i, row := range rows {
		if rowID, ok := parseRowID(row); ok && rowID == id {
			return i + 2
		}
	}
	return 0
}

func (s *SheetsStorage) CreateRegistration(ctx context.Context, in types.RegistrationInput) (*models.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.readRows(ctx)
	if err != nil {
		return nil, err
	}
	var maxID uint
	for _, row := range rows {
		if id, ok := parseRowID(row); ok && id > maxID {
			maxID = id
		}
	}

	r := newPendingRegistration(in, s.now())
	r.ID = maxID + 1
	_, err = s.svc.Spreadsheets.Values.
		Append(s.spreadsheetID, s.a1("A:J"), &sheets.ValueRange{Values: [][]any{toRow(r)}}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *SheetsStorage) GetRegistration(ctx context.Context, id uint) (*models.Registration, error) {
	rows, err := s.readRows(ctx)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if rowID, ok := parseRowID(row); ok && rowID == id {
			r := fromRow(row)
			return &r, nil
		}
	}
	return nil, nil
}

func (s *SheetsStorage) GetAllRegistrations(ctx context.Context) ([]models.Registration, error) {
	rows, err := s.readRows(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Registration, 0, len(rows))
	for _, row := range rows {
		if _, ok := parseRowID(row); ok {
			out = append(out, fromRow(row))
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *SheetsStorage) UpdateRegistrationStatus(ctx context.Context, id uint, status types.RegistrationStatus) error {
	return s.updateCell(ctx, id, "H", string(status))
}

func (s *SheetsStorage) UpdateCheckedInStatus(ctx context.Context, id uint, checkedIn bool) error {
	return s.updateCell(ctx, id, "I", strings.ToUpper(strconv.FormatBool(checkedIn)))
}

func (s *SheetsStorage) updateCell(ctx context.Context, id uint, column string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.readRows(ctx)
	if err != nil {
		return err
	}
	rowNum := findRow(rows, id)
	if rowNum == 0 {
		return nil
	}
	_, err = s.svc.Spreadsheets.Values.
		Update(s.spreadsheetID, s.a1(fmt.Sprintf("%s%d", column, rowNum)), &sheets.ValueRange{Values: [][]any{{value}}}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}

func toRow(r models.Registration) []any {
	return []any{
		strconv.FormatUint(uint64(r.ID), 10),
		r.Name,
		r.Email,
		derefString(r.Phone),
		strconv.Itoa(r.Qty),
		derefString(r.Dietary),
		derefString(r.Notes),
		string(r.Status),
		strings.ToUpper(strconv.FormatBool(r.CheckedIn)),
		r.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func fromRow(row []any) models.Registration {
	id, _ := parseRowID(row)
	qty, _ := strconv.Atoi(cell(row, colQty))
	createdAt, _ := time.Parse(time.RFC3339, cell(row, colCreatedAt))
	status := types.RegistrationStatus(cell(row, colStatus))
	if status == "" {
		status = types.REGISTRATION_PENDING
	}
	return models.Registration{
		ID:        id,
		Name:      cell(row, colName),
		Email:     cell(row, colEmail),
		Phone:     optional(cell(row, colPhone)),
		Qty:       qty,
		Dietary:   optional(cell(row, colDietary)),
		Notes:     optional(cell(row, colNotes)),
		Status:    status,
		CheckedIn: strings.EqualFold(cell(row, colCheckedIn), "true"),
		CreatedAt: createdAt,
	}
}

func parseRowID(row []any) (uint, bool) {
	id, err := strconv.ParseUint(cell(row, colID), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func cell(row []any, col int) string {
	if col >= len(row) || row[col] == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(row[col]))
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
