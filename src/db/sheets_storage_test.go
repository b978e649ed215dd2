package db

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"

	"eventreg/src/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// fakeSheet is a minimal stand-in for the Sheets values API over a single sheet.
type fakeSheet struct {
	mu     sync.Mutex
	name   string
	header []any
	rows   [][]any
	fail   bool
}

var cellRef = regexp.MustCompile(`^([A-J])(\d+)$`)

func (f *fakeSheet) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		http.Error(w, `{"error":{"code":500,"message":"backend error"}}`, http.StatusInternalServerError)
		return
	}
	idx := strings.Index(r.URL.Path, "/values/")
	if idx < 0 {
		http.NotFound(w, r)
		return
	}
	prefix := "'" + strings.ReplaceAll(f.sheetName(), "'", "''") + "'!"
	rng, ok := strings.CutPrefix(r.URL.Path[idx+len("/values/"):], prefix)
	if !ok {
		http.Error(w, `{"error":{"code":400,"message":"Unable to parse range"}}`, http.StatusBadRequest)
		return
	}

	switch {
	case r.Method == http.MethodGet && rng == "A1:J1":
		values := [][]any{}
		if f.header != nil {
			values = append(values, f.header)
		}
		writeJSON(w, map[string]any{"values": values})
	case r.Method == http.MethodGet:
		writeJSON(w, map[string]any{"values": f.rows})
	case r.Method == http.MethodPost && strings.HasSuffix(rng, ":append"):
		var vr sheets.ValueRange
		_ = json.NewDecoder(r.Body).Decode(&vr)
		f.rows = append(f.rows, vr.Values...)
		writeJSON(w, map[string]any{})
	case r.Method == http.MethodPut && rng == "A1:J1":
		var vr sheets.ValueRange
		_ = json.NewDecoder(r.Body).Decode(&vr)
		f.header = vr.Values[0]
		writeJSON(w, map[string]any{})
	case r.Method == http.MethodPut:
		m := cellRef.FindStringSubmatch(rng)
		if m == nil {
			http.Error(w, "bad range", http.StatusBadRequest)
			return
		}
		var vr sheets.ValueRange
		_ = json.NewDecoder(r.Body).Decode(&vr)
		col := int(m[1][0] - 'A')
		row, _ := strconv.Atoi(m[2])
		f.rows[row-2][col] = vr.Values[0][0]
		writeJSON(w, map[string]any{})
	default:
		http.Error(w, "unexpected call", http.StatusBadRequest)
	}
}

func (f *fakeSheet) sheetName() string {
	if f.name == "" {
		return "Registrations"
	}
	return f.name
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newSheetsStorage(t *testing.T, f *fakeSheet) *SheetsStorage {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	svc, err := sheets.NewService(context.Background(),
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"),
	)
	require.NoError(t, err)
	store := NewSheetsStorage(svc, "sheet-id", f.sheetName())
	store.now = fixedClock
	return store
}

func TestSheetsMigrateWritesHeaderOnce(t *testing.T) {
	f := &fakeSheet{}
	store := newSheetsStorage(t, f)

	require.NoError(t, store.Migrate(context.Background()))
	assert.Equal(t, SheetHeader, f.header)

	f.header = []any{"custom"}
	require.NoError(t, store.Migrate(context.Background()))
	assert.Equal(t, []any{"custom"}, f.header)
}

func TestSheetsQuotesSheetName(t *testing.T) {
	f := &fakeSheet{name: "Spring Gala's Guests"}
	store := newSheetsStorage(t, f)
	ctx := context.Background()

	require.NoError(t, store.Migrate(ctx))
	r, err := store.CreateRegistration(ctx, types.RegistrationInput{Name: "Ada", Email: "ada@example.com", Qty: 1})
	require.NoError(t, err)

	got, err := store.GetRegistration(ctx, r.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "ada@example.com", got.Email)
	assert.Equal(t, "'Spring Gala''s Guests'", quoteSheetName("Spring Gala's Guests"))
}

func TestSheetsCreateAssignsNextID(t *testing.T) {
	f := &fakeSheet{rows: [][]any{
		{"3", "Old", "old@example.com", "", "1", "", "", "paid", "FALSE", "2025-01-01T00:00:00Z"},
		{"not-an-id"},
	}}
	store := newSheetsStorage(t, f)

	notes := "aisle seat"
	r, err := store.CreateRegistration(context.Background(), types.RegistrationInput{
		Name: "Ada", Email: "ada@example.com", Qty: 2, Notes: &notes,
	})
	require.NoError(t, err)

	assert.Equal(t, uint(4), r.ID)
	require.Len(t, f.rows, 3)
	assert.Equal(t, []any{"4", "Ada", "ada@example.com", "", "2", "", "aisle seat", "pending", "FALSE", "2025-03-01T09:30:00Z"}, f.rows[2])
}

func TestSheetsGetAndUpdate(t *testing.T) {
	f := &fakeSheet{rows: [][]any{
		{"1", "A", "a@example.com", "", "1", "", "", "pending", "FALSE", "2025-01-01T00:00:00Z"},
		{"2", "B", "b@example.com", "555", "3", "vegan", "", "pending", "FALSE", "2025-01-02T00:00:00Z"},
	}}
	store := newSheetsStorage(t, f)
	ctx := context.Background()

	require.NoError(t, store.UpdateRegistrationStatus(ctx, 2, types.REGISTRATION_PAID))
	require.NoError(t, store.UpdateCheckedInStatus(ctx, 2, true))

	r, err := store.GetRegistration(ctx, 2)
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, types.REGISTRATION_PAID, r.Status)
	assert.True(t, r.CheckedIn)
	assert.Equal(t, 3, r.Qty)
	require.NotNil(t, r.Phone)
	assert.Equal(t, "555", *r.Phone)
	assert.Nil(t, r.Notes)

	all, err := store.GetAllRegistrations(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, uint(2), all[0].ID)
}

func TestSheetsUnknownIDs(t *testing.T) {
	store := newSheetsStorage(t, &fakeSheet{})
	ctx := context.Background()

	r, err := store.GetRegistration(ctx, 9)
	assert.NoError(t, err)
	assert.Nil(t, r)
	assert.NoError(t, store.UpdateRegistrationStatus(ctx, 9, types.REGISTRATION_PAID))
}

func TestSheetsBackendFailure(t *testing.T) {
	store := newSheetsStorage(t, &fakeSheet{fail: true})

	_, err := store.GetAllRegistrations(context.Background())
	assert.Error(t, err)
}
