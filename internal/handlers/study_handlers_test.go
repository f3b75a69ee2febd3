package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"exposure-platform/internal/editors"
	"exposure-platform/internal/repository"
	"exposure-platform/internal/services"
	"exposure-platform/pkg/database"
	"exposure-platform/pkg/logging"
)

type testAPI struct {
	server *httptest.Server
	hub    *EventHub
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	ctx := context.Background()
	logger := logging.NewDiscardLogger()

	db, err := database.Open(ctx, &database.Config{
		Driver: database.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "api.db"),
	}, logger, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, err := db.Migrate(ctx, database.Up); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	repo := repository.NewRecordRepository(db, logger, nil)
	study := services.NewStudyService(repo, nil, nil, logger, nil)
	handler := NewStudyHandler(study, services.NewConvertService(nil), logger, nil)
	hub := NewEventHub(8, time.Minute, logger, nil)
	hub.Attach(study)

	router := mux.NewRouter()
	handler.RegisterRoutes(router)
	hub.RegisterRoutes(router)

	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
		db.Close()
	})
	return &testAPI{server: srv, hub: hub}
}

func (a *testAPI) do(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, a.server.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s error = %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func (a *testAPI) create(t *testing.T, kind string) editors.View {
	t.Helper()
	resp := a.do(t, "POST", "/api/"+kind+"/entries", "")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST entries status = %d, want 201", resp.StatusCode)
	}
	return decodeBody[editors.View](t, resp)
}

func TestStudyHandler_EditAndSave(t *testing.T) {
	api := newTestAPI(t)
	v := api.create(t, "worker")
	base := "/api/worker/entries/" + v.ID

	// untouched required field blocks the save
	resp := api.do(t, "POST", base+"/save", "")
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("save of a new worker status = %d, want 422", resp.StatusCode)
	}
	er := decodeBody[ErrorResponse](t, resp)
	if !strings.Contains(er.Message, "Worker ID is required") {
		t.Errorf("save error message = %q", er.Message)
	}
	if er.Entry == nil || er.Entry.Valid {
		t.Errorf("save error entry = %+v, want the invalid entry", er.Entry)
	}

	resp = api.do(t, "PUT", base+"/fields/age", `{"text":"200"}`)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("PUT age=200 status = %d, want 422", resp.StatusCode)
	}
	er = decodeBody[ErrorResponse](t, resp)
	if er.Message != "Age must be between 10 and 127" {
		t.Errorf("age error message = %q", er.Message)
	}

	for _, f := range []struct{ field, body string }{
		{"worker_id", `{"text":"W1"}`},
		{"age", `{"text":"34"}`},
		{"height", `{"text":"180","unit":"cm"}`},
	} {
		resp := api.do(t, "PUT", base+"/fields/"+f.field, f.body)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("PUT %s status = %d, want 200", f.field, resp.StatusCode)
		}
	}

	resp = api.do(t, "GET", base+"/changes", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET changes status = %d", resp.StatusCode)
	}
	cs := decodeBody[services.ChangeSet](t, resp)
	if !cs.Dirty || cs.Patch == "" {
		t.Errorf("change set = %+v, want dirty with a patch", cs)
	}

	resp = api.do(t, "POST", base+"/save", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("save status = %d, want 200", resp.StatusCode)
	}
	saved := decodeBody[editors.View](t, resp)
	if saved.State != "clean" || saved.Name != "Worker W1" {
		t.Errorf("saved entry = %s %q", saved.State, saved.Name)
	}

	resp = api.do(t, "GET", "/api/worker/entries", "")
	list := decodeBody[ListResponse](t, resp)
	if list.Total != 1 || list.Entries[0].ID != v.ID {
		t.Errorf("list = %+v", list)
	}
}

func TestStudyHandler_Errors(t *testing.T) {
	api := newTestAPI(t)
	v := api.create(t, "product")

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{"unknown kind", "GET", "/api/tractor/entries", "", http.StatusBadRequest},
		{"unknown entry", "GET", "/api/product/entries/nope", "", http.StatusNotFound},
		{"unknown field", "PUT", "/api/product/entries/" + v.ID + "/fields/colour", `{"text":"red"}`, http.StatusBadRequest},
		{"bad body", "PUT", "/api/product/entries/" + v.ID + "/fields/product_name", `{`, http.StatusBadRequest},
		{"bad convert value", "GET", "/api/convert?family=mass&value=x&from=kg&to=lb", "", http.StatusBadRequest},
		{"unknown family", "GET", "/api/convert?family=time&value=1&from=s&to=h", "", http.StatusBadRequest},
		{"delete unknown", "DELETE", "/api/product/entries/nope", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := api.do(t, tt.method, tt.path, tt.body)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("%s %s status = %d, want %d", tt.method, tt.path, resp.StatusCode, tt.wantStatus)
			}
			if resp.Header.Get(RequestIDHeader) == "" {
				t.Error("response has no request id")
			}
		})
	}
}

func TestStudyHandler_CancelAndDelete(t *testing.T) {
	api := newTestAPI(t)
	v := api.create(t, "mixing")
	base := "/api/mixing/entries/" + v.ID

	api.do(t, "PUT", base+"/fields/duration_minutes", `{"text":"45"}`)

	resp := api.do(t, "POST", base+"/cancel", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("cancel status = %d", resp.StatusCode)
	}
	got := decodeBody[editors.View](t, resp)
	if got.Dirty {
		t.Error("entry should be clean after cancel")
	}

	resp = api.do(t, "DELETE", base, "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", resp.StatusCode)
	}
	resp = api.do(t, "GET", base, "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", resp.StatusCode)
	}
}

func TestStudyHandler_Convert(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		query       string
		checkValues func(t *testing.T, c services.Conversion)
	}{
		{
			query: "family=temperature&value=100&from=C&to=F",
			checkValues: func(t *testing.T, c services.Conversion) {
				if c.Result < 211.999 || c.Result > 212.001 {
					t.Errorf("100 C = %v F, want 212", c.Result)
				}
			},
		},
		{
			query: "family=length&value=1&from=km&to=m",
			checkValues: func(t *testing.T, c services.Conversion) {
				if c.Result < 999.999 || c.Result > 1000.001 {
					t.Errorf("1 km = %v m, want 1000", c.Result)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp := api.do(t, "GET", "/api/convert?"+tt.query, "")
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d", resp.StatusCode)
			}
			tt.checkValues(t, decodeBody[services.Conversion](t, resp))
		})
	}
}

func TestStudyHandler_HealthAndDocs(t *testing.T) {
	api := newTestAPI(t)

	resp := api.do(t, "GET", "/health", "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d", resp.StatusCode)
	}

	resp = api.do(t, "GET", "/api/openapi.json", "")
	doc := decodeBody[map[string]interface{}](t, resp)
	paths, _ := doc["paths"].(map[string]interface{})
	for _, p := range []string{entriesPath, savePath, eventsPath} {
		if _, ok := paths[p]; !ok {
			t.Errorf("openapi document has no path %s", p)
		}
	}

	resp = api.do(t, "GET", "/api/summary", "")
	summary := decodeBody[[]services.KindSummary](t, resp)
	if len(summary) != 4 {
		t.Errorf("summary = %+v, want four kinds", summary)
	}
}

func TestEventHub_StreamsSaves(t *testing.T) {
	api := newTestAPI(t)

	url := "ws" + strings.TrimPrefix(api.server.URL, "http") + eventsPath + "?kind=worker"
	wc, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer wc.Close()

	next := func() services.Event {
		t.Helper()
		wc.SetReadDeadline(time.Now().Add(5 * time.Second))
		var ev services.Event
		if err := wc.ReadJSON(&ev); err != nil {
			t.Fatalf("ReadJSON() error = %v", err)
		}
		return ev
	}

	if ev := next(); ev.Type != ReadyEvent {
		t.Fatalf("first event = %+v, want ready", ev)
	}

	// filtered out by kind
	api.create(t, "product")

	v := api.create(t, "worker")
	base := "/api/worker/entries/" + v.ID
	api.do(t, "PUT", base+"/fields/worker_id", `{"text":"W7"}`)
	if resp := api.do(t, "POST", base+"/save", ""); resp.StatusCode != http.StatusOK {
		t.Fatalf("save status = %d", resp.StatusCode)
	}

	tests := []struct {
		wantType string
		wantName string
	}{
		{"added", "Worker (new)"},
		{"updated", "Worker W7"},
	}
	for _, tt := range tests {
		ev := next()
		if ev.Type != tt.wantType || ev.ID != v.ID {
			t.Errorf("event = %s %s, want %s %s", ev.Type, ev.ID, tt.wantType, v.ID)
		}
		if tt.wantName != "" && ev.Entry.Name != tt.wantName {
			t.Errorf("%s event name = %q, want %q", ev.Type, ev.Entry.Name, tt.wantName)
		}
	}

	if n := api.hub.Clients(); n != 1 {
		t.Errorf("Clients() = %d, want 1", n)
	}
}

func TestEventHub_RejectsUnknownKind(t *testing.T) {
	api := newTestAPI(t)
	url := "ws" + strings.TrimPrefix(api.server.URL, "http") + eventsPath + "?kind=tractor"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("Dial() should fail for an unknown kind")
	}
	if resp == nil || resp.StatusCode != http.StatusBadRequest {
		t.Errorf("handshake response = %v, want 400", resp)
	}
}
