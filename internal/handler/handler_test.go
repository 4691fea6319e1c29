package handler

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cleberrangel/dimensionamento-api/internal/preset"
	"github.com/cleberrangel/dimensionamento-api/internal/service"
	"github.com/cleberrangel/dimensionamento-api/internal/websocket"
	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"
)

const testToken = "segredo"

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Meta    struct {
		SessionID string `json:"session_id"`
		Revision  int    `json:"revision"`
	} `json:"meta"`
}

type sessionData struct {
	ID     string `json:"id"`
	Inputs struct {
		TotalPoints int `json:"total_points"`
		WorkFronts  []struct {
			ID             string `json:"id"`
			Name           string `json:"name"`
			AllocatedCells int    `json:"allocated_cells"`
		} `json:"work_fronts"`
	} `json:"inputs"`
	TeamRoles []struct {
		ID      string `json:"id"`
		TotalHH string `json:"total_hh"`
	} `json:"team_roles"`
	Cards struct {
		TotalManHours         string `json:"total_man_hours"`
		TotalManHoursPerPoint string `json:"total_man_hours_per_point"`
	} `json:"cards"`
	Ledger struct {
		TotalPeople  int    `json:"total_people"`
		TotalPercent string `json:"total_percent"`
	} `json:"ledger"`
}

func newTestRouter(t *testing.T, hub *websocket.Hub) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	p, err := preset.Default()
	if err != nil {
		t.Fatalf("preset.Default() error = %v", err)
	}
	var broadcaster service.Broadcaster
	if hub != nil {
		broadcaster = hub
	}
	svc := service.NewSizingService(p, time.Hour, broadcaster)
	t.Cleanup(svc.Close)

	return NewRouter(RouterConfig{
		Service:  svc,
		Hub:      hub,
		TokenAPI: testToken,
		Version:  "test",
	})
}

func call(t *testing.T, r http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer "+testToken)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode %s %s: %v (%s)", method, path, err, w.Body.String())
		}
	}
	return w, env
}

func decodeSession(t *testing.T, env envelope) sessionData {
	t.Helper()
	var s sessionData
	if err := json.Unmarshal(env.Data, &s); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	return s
}

func createSession(t *testing.T, r http.Handler) sessionData {
	t.Helper()
	w, env := call(t, r, http.MethodPost, "/api/v1/sessions", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("create session status = %d: %s", w.Code, w.Body.String())
	}
	return decodeSession(t, env)
}

func TestRequiresToken(t *testing.T) {
	r := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestHealthIsPublic(t *testing.T) {
	r := newTestRouter(t, nil)

	for _, path := range []string{"/health", "/health/live", "/health/ready", "/metrics"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, w.Code)
		}
	}
}

func TestCalculateEndpoint(t *testing.T) {
	r := newTestRouter(t, nil)

	body := `{
		"inputs": {"total_points": "0", "work_hours_per_day": 8, "people_per_cell": 3,
			"work_fronts": [{"id": "a", "allocated_cells": 1}]},
		"tasks": [
			{"id": "t1", "man_hours_per_point": 17, "category": "technical"},
			{"id": "t2", "man_hours_per_point": 5, "category": "civil"},
			{"id": "t3", "man_hours_per_point": 5, "category": "overhead"}
		]
	}`
	w, env := call(t, r, http.MethodPost, "/api/v1/calculate", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var data struct {
		Results struct {
			TotalManHours       float64 `json:"total_man_hours"`
			ProjectDurationDays float64 `json:"project_duration_days"`
		} `json:"results"`
		Cards struct {
			TotalManHoursPerPoint string `json:"total_man_hours_per_point"`
		} `json:"cards"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if data.Results.TotalManHours != 0 || data.Results.ProjectDurationDays != 0 {
		t.Errorf("zero points should give zero totals: %+v", data.Results)
	}
	if data.Cards.TotalManHoursPerPoint != "27.00" {
		t.Errorf("HH/ponto = %q, want 27.00", data.Cards.TotalManHoursPerPoint)
	}
}

func TestCalculateValidation(t *testing.T) {
	r := newTestRouter(t, nil)

	tests := []struct {
		name string
		body string
	}{
		{"json inválido", `{`},
		{"categoria desconhecida", `{"tasks": [{"id": "x", "category": "eletrica"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := call(t, r, http.MethodPost, "/api/v1/calculate", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
			if env.Success {
				t.Error("success should be false")
			}
		})
	}
}

func TestCalculateWithoutTasks(t *testing.T) {
	r := newTestRouter(t, nil)

	bodies := map[string]string{
		"lista vazia": `{"inputs": {"total_points": 100, "work_hours_per_day": 8, "people_per_cell": 3,
			"work_fronts": [{"id": "a", "allocated_cells": 2}]}, "tasks": []}`,
		"sem o campo": `{"inputs": {"total_points": 100}}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			w, env := call(t, r, http.MethodPost, "/api/v1/calculate", body)
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
			}

			var data struct {
				Results struct {
					TotalManHours       float64 `json:"total_man_hours"`
					ProjectDurationDays float64 `json:"project_duration_days"`
				} `json:"results"`
				Cards struct {
					TotalManHours       string `json:"total_man_hours"`
					ProjectDurationDays string `json:"project_duration_days"`
				} `json:"cards"`
			}
			if err := json.Unmarshal(env.Data, &data); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if data.Results.TotalManHours != 0 || data.Results.ProjectDurationDays != 0 {
				t.Errorf("results = %+v, want zeros", data.Results)
			}
			if data.Cards.TotalManHours != "0" || data.Cards.ProjectDurationDays != "0.0" {
				t.Errorf("cards = %+v", data.Cards)
			}
		})
	}
}

func TestSessionFlow(t *testing.T) {
	r := newTestRouter(t, nil)
	s := createSession(t, r)

	if s.Cards.TotalManHours != "9800" {
		t.Errorf("initial total HH = %q, want 9800", s.Cards.TotalManHours)
	}
	base := "/api/v1/sessions/" + s.ID

	w, env := call(t, r, http.MethodPatch, base+"/inputs", `{"total_points": -10}`)
	if w.Code != http.StatusOK {
		t.Fatalf("patch inputs status = %d: %s", w.Code, w.Body.String())
	}
	got := decodeSession(t, env)
	if got.Inputs.TotalPoints != 0 || got.Cards.TotalManHours != "0" {
		t.Errorf("negative points should clamp to 0: %+v", got.Inputs)
	}
	if got.Ledger.TotalPercent != "100%" {
		t.Errorf("TotalPercent = %q, want 100%% (support roles keep their HH)", got.Ledger.TotalPercent)
	}

	w, env = call(t, r, http.MethodPost, base+"/tasks/rescale", `{"total_man_hours_per_point": 56}`)
	if w.Code != http.StatusOK {
		t.Fatalf("rescale status = %d", w.Code)
	}
	if got := decodeSession(t, env); got.Cards.TotalManHoursPerPoint != "56.00" {
		t.Errorf("HH/ponto = %q, want 56.00", got.Cards.TotalManHoursPerPoint)
	}

	front := got.Inputs.WorkFronts[0]
	w, env = call(t, r, http.MethodPost, base+"/work-fronts/"+front.ID+"/cells", `{"delta": -1}`)
	if w.Code != http.StatusOK {
		t.Fatalf("cells status = %d", w.Code)
	}
	if got := decodeSession(t, env); got.Inputs.WorkFronts[0].AllocatedCells != front.AllocatedCells-1 {
		t.Errorf("cells = %d, want %d", got.Inputs.WorkFronts[0].AllocatedCells, front.AllocatedCells-1)
	}

	w, env = call(t, r, http.MethodPost, base+"/team-roles", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("add role status = %d", w.Code)
	}
	roleID := w.Header().Get("X-Team-Role-ID")
	if roleID == "" {
		t.Fatal("X-Team-Role-ID header missing")
	}

	w, _ = call(t, r, http.MethodPatch, base+"/team-roles/"+roleID, `{"total_hh": "120", "quantity": "3"}`)
	if w.Code != http.StatusOK {
		t.Errorf("update role status = %d", w.Code)
	}

	w, _ = call(t, r, http.MethodDelete, base+"/team-roles/"+roleID, "")
	if w.Code != http.StatusOK {
		t.Errorf("delete role status = %d", w.Code)
	}

	w, _ = call(t, r, http.MethodDelete, base, "")
	if w.Code != http.StatusNoContent {
		t.Errorf("delete session status = %d", w.Code)
	}

	w, _ = call(t, r, http.MethodGet, base, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("get deleted session status = %d, want 404", w.Code)
	}
}

func TestAdjustCellsHugeDelta(t *testing.T) {
	r := newTestRouter(t, nil)
	s := createSession(t, r)

	w, env := call(t, r, http.MethodPost, "/api/v1/sessions/"+s.ID+"/work-fronts/wf1/cells", `{"delta": 9223372036854775800}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var data struct {
		Inputs struct {
			WorkFronts []struct {
				AllocatedCells int `json:"allocated_cells"`
			} `json:"work_fronts"`
		} `json:"inputs"`
		Results struct {
			TotalDailyProductivity float64 `json:"total_daily_productivity"`
		} `json:"results"`
		Cards struct {
			TotalCells string `json:"total_cells"`
		} `json:"cards"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if data.Inputs.WorkFronts[0].AllocatedCells != math.MaxInt32 {
		t.Errorf("cells = %d, want %d", data.Inputs.WorkFronts[0].AllocatedCells, math.MaxInt32)
	}
	if data.Results.TotalDailyProductivity < 0 {
		t.Errorf("total_daily_productivity = %v, want >= 0", data.Results.TotalDailyProductivity)
	}
	if strings.HasPrefix(data.Cards.TotalCells, "-") {
		t.Errorf("total_cells = %q, want non-negative", data.Cards.TotalCells)
	}
}

func TestNotFoundAndInvalidIDs(t *testing.T) {
	r := newTestRouter(t, nil)
	s := createSession(t, r)
	base := "/api/v1/sessions/" + s.ID

	tests := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodGet, "/api/v1/sessions/nao-existe", "", http.StatusNotFound},
		{http.MethodPatch, base + "/tasks/t99", `{"name": "x"}`, http.StatusNotFound},
		{http.MethodDelete, base + "/work-fronts/wf99", "", http.StatusNotFound},
		{http.MethodPatch, base + "/team-roles/tr99", `{}`, http.StatusNotFound},
		{http.MethodGet, "/api/v1/sessions/a.b", "", http.StatusBadRequest},
		{http.MethodPost, base + "/tasks/rescale", `{}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w, _ := call(t, r, tt.method, tt.path, tt.body)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestExportEndpoint(t *testing.T) {
	r := newTestRouter(t, nil)
	s := createSession(t, r)

	w, _ := call(t, r, http.MethodGet, "/api/v1/sessions/"+s.ID+"/export", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "equipe_consolidada.xlsx") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	// xlsx é um zip
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("PK")) {
		t.Error("body is not an xlsx archive")
	}
}

func TestWebSocketReceivesResults(t *testing.T) {
	hub := websocket.NewHub()
	go hub.Run()
	defer hub.Stop()

	r := newTestRouter(t, hub)
	srv := httptest.NewServer(r)
	defer srv.Close()

	s := createSession(t, r)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/sessions/" + s.ID + "/ws?token=" + testToken
	conn, _, err := gorilla.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	readType := func() (string, sessionData) {
		t.Helper()
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var msg struct {
			Type string      `json:"type"`
			Data sessionData `json:"data"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("ReadJSON() error = %v", err)
		}
		return msg.Type, msg.Data
	}

	if typ, _ := readType(); typ != websocket.MessageConnection {
		t.Fatalf("first message = %s, want %s", typ, websocket.MessageConnection)
	}
	if typ, data := readType(); typ != websocket.MessageResults || data.Cards.TotalManHours != "9800" {
		t.Fatalf("initial results = %s %+v", typ, data.Cards)
	}

	w, _ := call(t, r, http.MethodPatch, "/api/v1/sessions/"+s.ID+"/inputs", `{"total_points": 700}`)
	if w.Code != http.StatusOK {
		t.Fatalf("patch status = %d", w.Code)
	}

	typ, data := readType()
	if typ != websocket.MessageResults || data.Cards.TotalManHours != "19600" {
		t.Errorf("pushed results = %s %+v", typ, data.Cards)
	}
}
