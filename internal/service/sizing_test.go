package service

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/cleberrangel/dimensionamento-api/internal/model"
	"github.com/cleberrangel/dimensionamento-api/internal/numeric"
	"github.com/cleberrangel/dimensionamento-api/internal/preset"
)

type recordingHub struct {
	mu        sync.Mutex
	broadcast map[string]int
	closed    map[string]string
}

func newRecordingHub() *recordingHub {
	return &recordingHub{broadcast: map[string]int{}, closed: map[string]string{}}
}

func (h *recordingHub) BroadcastResults(sessionID string, revision int, snapshot interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.broadcast[sessionID]++
}

func (h *recordingHub) CloseSession(sessionID, reason string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed[sessionID] = reason
}

func newTestService(t *testing.T, hub Broadcaster) *SizingService {
	t.Helper()
	p, err := preset.Default()
	if err != nil {
		t.Fatalf("preset.Default() error = %v", err)
	}
	svc := NewSizingService(p, time.Hour, hub)
	t.Cleanup(svc.Close)
	return svc
}

func value(v float64) *numeric.Value {
	n := numeric.Value(v)
	return &n
}

func TestCalculateClampsRoleQuantities(t *testing.T) {
	svc := newTestService(t, nil)

	view, err := svc.Calculate(context.Background(), model.CalculateRequest{
		TeamRoles: []model.TeamRole{
			{ID: "a", Quantity: -4, TotalHH: "10"},
			{ID: "b", Quantity: math.MaxInt64, TotalHH: "10"},
			{ID: "c", Quantity: math.MaxInt64, TotalHH: "10"},
		},
	})
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}

	if view.TeamRoles[0].Quantity != 0 {
		t.Errorf("negative quantity = %d, want 0", view.TeamRoles[0].Quantity)
	}
	if want := 2 * math.MaxInt32; view.Ledger.TotalPeople != want {
		t.Errorf("TotalPeople = %d, want %d", view.Ledger.TotalPeople, want)
	}
	if view.Results.TotalManHours != 0 {
		t.Errorf("TotalManHours = %v, want 0 without tasks", view.Results.TotalManHours)
	}
}

func TestCalculateStateless(t *testing.T) {
	svc := newTestService(t, nil)

	req := model.CalculateRequest{
		Inputs: model.InputsRequest{
			TotalPoints:     value(100),
			WorkHoursPerDay: value(8),
			PeoplePerCell:   value(3),
			WorkFronts: []model.WorkFrontRequest{
				{ID: "a", Name: "A", AllocatedCells: value(1)},
			},
		},
		Tasks: []model.TaskRequest{
			{ID: "t1", ManHoursPerPoint: 17, Category: model.CategoryTechnical},
			{ID: "t2", ManHoursPerPoint: 5, Category: model.CategoryCivil},
			{ID: "t3", ManHoursPerPoint: 5, Category: model.CategoryOverhead},
		},
		TeamRoles: []model.TeamRole{
			{ID: "tr1", Function: "Técnico", Quantity: 2, TotalHH: "0"},
			{ID: "tr2", Function: "Civil", Quantity: 1, TotalHH: "0"},
			{ID: "tr3", Function: "Gestão", Quantity: 1, TotalHH: "100"},
		},
	}

	view, err := svc.Calculate(context.Background(), req)
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}

	if view.Results.TotalManHours < 2699.999 || view.Results.TotalManHours > 2700.001 {
		t.Errorf("TotalManHours = %v, want 2700", view.Results.TotalManHours)
	}
	if view.Cards.TotalManHoursPerPoint != "27.00" {
		t.Errorf("card HH/ponto = %q, want 27.00", view.Cards.TotalManHoursPerPoint)
	}
	// alvos padrão do preset: tr1/tr2
	if view.TeamRoles[0].TotalHH == "0" || view.TeamRoles[1].TotalHH == "0" {
		t.Errorf("sync targets not updated: %+v", view.TeamRoles)
	}
	if view.TeamRoles[2].TotalHH != "100" {
		t.Errorf("non-target role changed: %q", view.TeamRoles[2].TotalHH)
	}
	if view.Ledger.TotalPeople != 4 {
		t.Errorf("TotalPeople = %d, want 4", view.Ledger.TotalPeople)
	}
}

func TestCalculateInvalidCategory(t *testing.T) {
	svc := newTestService(t, nil)

	_, err := svc.Calculate(context.Background(), model.CalculateRequest{
		Tasks: []model.TaskRequest{{ID: "x", Category: "eletrica"}},
	})
	if !errors.Is(err, model.ErrInvalidCategory) {
		t.Errorf("Calculate() error = %v, want ErrInvalidCategory", err)
	}
}

func TestCalculateCustomSyncTargets(t *testing.T) {
	svc := newTestService(t, nil)

	view, err := svc.Calculate(context.Background(), model.CalculateRequest{
		Inputs: model.InputsRequest{TotalPoints: value(10), WorkFronts: []model.WorkFrontRequest{{ID: "a", AllocatedCells: value(1)}}},
		Tasks:  []model.TaskRequest{{ID: "t1", ManHoursPerPoint: 2, Category: model.CategoryTechnical}},
		TeamRoles: []model.TeamRole{
			{ID: "tr1", TotalHH: "5"},
			{ID: "x", TotalHH: "5"},
		},
		Sync: &model.SyncRequest{TechnicalRoleID: "x"},
	})
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	if view.TeamRoles[0].TotalHH != "5" || view.TeamRoles[1].TotalHH != "20" {
		t.Errorf("roles = %+v", view.TeamRoles)
	}
}

func TestSessionLifecycle(t *testing.T) {
	hub := newRecordingHub()
	svc := newTestService(t, hub)
	ctx := context.Background()

	created := svc.CreateSession(ctx)
	if created.ID == "" {
		t.Fatal("session id should not be empty")
	}
	if created.Cards.TotalManHours != "9800" {
		t.Errorf("initial total HH = %q, want 9800", created.Cards.TotalManHours)
	}
	if svc.ActiveSessions() != 1 {
		t.Errorf("ActiveSessions() = %d, want 1", svc.ActiveSessions())
	}

	view, err := svc.UpdateInputs(ctx, created.ID, model.InputsRequest{TotalPoints: value(700)})
	if err != nil {
		t.Fatalf("UpdateInputs() error = %v", err)
	}
	if view.Inputs.TotalPoints != 700 || view.Cards.TotalManHours != "19600" {
		t.Errorf("after update: points=%d total=%s", view.Inputs.TotalPoints, view.Cards.TotalManHours)
	}
	if view.Revision <= created.Revision {
		t.Errorf("revision did not advance: %d -> %d", created.Revision, view.Revision)
	}

	view, err = svc.RescaleTasks(ctx, created.ID, 56)
	if err != nil {
		t.Fatalf("RescaleTasks() error = %v", err)
	}
	if view.Cards.TotalManHoursPerPoint != "56.00" {
		t.Errorf("HH/ponto = %q, want 56.00", view.Cards.TotalManHoursPerPoint)
	}

	if got := hub.broadcast[created.ID]; got != 2 {
		t.Errorf("broadcasts = %d, want 2", got)
	}

	if err := svc.DeleteSession(ctx, created.ID); err != nil {
		t.Fatalf("DeleteSession() error = %v", err)
	}
	if hub.closed[created.ID] != "deleted" {
		t.Errorf("hub close reason = %q, want deleted", hub.closed[created.ID])
	}
	if _, err := svc.GetSession(ctx, created.ID); !errors.Is(err, model.ErrSessionNotFound) {
		t.Errorf("GetSession() after delete error = %v", err)
	}
}

func TestMutationErrors(t *testing.T) {
	hub := newRecordingHub()
	svc := newTestService(t, hub)
	ctx := context.Background()
	id := svc.CreateSession(ctx).ID

	tests := []struct {
		name string
		call func() error
		want error
	}{
		{"sessão inexistente", func() error {
			_, err := svc.UpdateInputs(ctx, "nao-existe", model.InputsRequest{})
			return err
		}, model.ErrSessionNotFound},
		{"atividade inexistente", func() error {
			_, err := svc.UpdateTask(ctx, id, "t99", model.TaskPatchRequest{})
			return err
		}, model.ErrTaskNotFound},
		{"frente inexistente", func() error {
			_, err := svc.AdjustCells(ctx, id, "wf99", 1)
			return err
		}, model.ErrWorkFrontNotFound},
		{"função inexistente", func() error {
			_, err := svc.RemoveRole(ctx, id, "tr99")
			return err
		}, model.ErrTeamRoleNotFound},
		{"excluir sessão inexistente", func() error {
			return svc.DeleteSession(ctx, "nao-existe")
		}, model.ErrSessionNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}

	if hub.broadcast[id] != 0 {
		t.Errorf("failed mutations should not broadcast, got %d", hub.broadcast[id])
	}
}

func TestWorkFrontAndRoleEditing(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()
	id := svc.CreateSession(ctx).ID

	view, err := svc.AddWorkFront(ctx, id, model.WorkFrontRequest{AllocatedCells: value(2)})
	if err != nil {
		t.Fatalf("AddWorkFront() error = %v", err)
	}
	added := view.Inputs.WorkFronts[len(view.Inputs.WorkFronts)-1]
	if added.Name != "Nova Frente" || added.AllocatedCells != 2 {
		t.Errorf("added front = %+v", added)
	}

	view, err = svc.AdjustCells(ctx, id, added.ID, -5)
	if err != nil {
		t.Fatalf("AdjustCells() error = %v", err)
	}
	if got := view.Inputs.WorkFronts[len(view.Inputs.WorkFronts)-1].AllocatedCells; got != 0 {
		t.Errorf("cells after -5 = %d, want 0", got)
	}

	view, err = svc.UpdateWorkFront(ctx, id, added.ID, model.WorkFrontRequest{Name: "Norte"})
	if err != nil {
		t.Fatalf("UpdateWorkFront() error = %v", err)
	}
	if got := view.Inputs.WorkFronts[len(view.Inputs.WorkFronts)-1].Name; got != "Norte" {
		t.Errorf("name = %q, want Norte", got)
	}

	if _, err := svc.RemoveWorkFront(ctx, id, added.ID); err != nil {
		t.Fatalf("RemoveWorkFront() error = %v", err)
	}

	_, role, err := svc.AddRole(ctx, id)
	if err != nil {
		t.Fatalf("AddRole() error = %v", err)
	}
	hh := "400"
	view, err = svc.UpdateRole(ctx, id, role.ID, model.RolePatchRequest{TotalHH: &hh, Quantity: value(2)})
	if err != nil {
		t.Fatalf("UpdateRole() error = %v", err)
	}
	last := view.TeamRoles[len(view.TeamRoles)-1]
	if last.ID != role.ID || last.TotalHH != "400" || last.Quantity != 2 {
		t.Errorf("updated role = %+v", last)
	}
	if view.Ledger.TotalPeople != 40 {
		t.Errorf("TotalPeople = %d, want 40", view.Ledger.TotalPeople)
	}
}

func TestExportSession(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()
	id := svc.CreateSession(ctx).ID

	buf, err := svc.Export(ctx, id)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if buf.Len() == 0 {
		t.Error("export should not be empty")
	}

	if _, err := svc.Export(ctx, "nao-existe"); !errors.Is(err, model.ErrSessionNotFound) {
		t.Errorf("Export() error = %v, want ErrSessionNotFound", err)
	}
}

func TestFormatCardsNonFinite(t *testing.T) {
	cards := FormatCards(model.CalculationResults{ProjectDurationDays: math.NaN()})
	if cards.ProjectDurationDays != "0" {
		t.Errorf("duration = %q, want 0", cards.ProjectDurationDays)
	}
}
