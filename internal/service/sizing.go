package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/cleberrangel/dimensionamento-api/internal/ledger"
	"github.com/cleberrangel/dimensionamento-api/internal/logger"
	"github.com/cleberrangel/dimensionamento-api/internal/metrics"
	"github.com/cleberrangel/dimensionamento-api/internal/model"
	"github.com/cleberrangel/dimensionamento-api/internal/numeric"
	"github.com/cleberrangel/dimensionamento-api/internal/preset"
	"github.com/cleberrangel/dimensionamento-api/internal/session"
	"github.com/cleberrangel/dimensionamento-api/internal/sizing"
)

// Broadcaster recebe os estados consolidados para enviar aos clientes conectados
type Broadcaster interface {
	BroadcastResults(sessionID string, revision int, snapshot interface{})
	CloseSession(sessionID, reason string)
}

// SizingService orquestra o cálculo e as sessões de edição
type SizingService struct {
	preset *preset.Preset
	store  *session.Store
	hub    Broadcaster
	excel  *ExcelGenerator
}

// NewSizingService cria o serviço. hub pode ser nil (sem WebSocket).
func NewSizingService(p *preset.Preset, ttl time.Duration, hub Broadcaster) *SizingService {
	s := &SizingService{
		preset: p,
		hub:    hub,
		excel:  NewExcelGenerator(),
	}
	s.store = session.NewStore(p, ttl, s.handleExpired)
	return s
}

// handleExpired é chamado pelo store quando uma sessão expira por inatividade
func (s *SizingService) handleExpired(sessionID string) {
	metrics.Get().IncrementSessionExpired()

	ctx := logger.WithSessionID(context.Background(), sessionID)
	logger.Get(ctx).Info().Msg("Sessão expirada por inatividade")
	logger.AuditChange(ctx, logger.AuditActionSessionExpire, "session", sessionID, nil, nil)

	if s.hub != nil {
		s.hub.CloseSession(sessionID, "expired")
	}
}

// ActiveSessions retorna o número de sessões em memória
func (s *SizingService) ActiveSessions() int {
	return s.store.Count()
}

// Preset retorna o preset usado para novas sessões
func (s *SizingService) Preset() *preset.Preset {
	return s.preset
}

// Close encerra a limpeza periódica das sessões
func (s *SizingService) Close() {
	s.store.Close()
}

// Calculate roda o motor sem sessão: parâmetros e atividades vêm no payload
func (s *SizingService) Calculate(ctx context.Context, req model.CalculateRequest) (*CalculationView, error) {
	tasks := make([]model.Task, len(req.Tasks))
	for i, t := range req.Tasks {
		task, err := t.ToTask()
		if err != nil {
			return nil, err
		}
		tasks[i] = task
	}

	inputs := req.Inputs.ToProjectInputs()
	results := sizing.Compute(inputs, tasks)

	targets := s.preset.Sync
	if req.Sync != nil {
		targets = ledger.SyncTargets{
			TechnicalRoleID: req.Sync.TechnicalRoleID,
			CivilRoleID:     req.Sync.CivilRoleID,
		}
	}
	roles := ledger.Sync(req.TeamRoles, results, targets)
	for i := range roles {
		roles[i].Quantity = numeric.ClampInt(float64(roles[i].Quantity))
	}

	metrics.Get().IncrementStatelessCalc()
	logger.Get(ctx).Debug().
		Int("tasks", len(tasks)).
		Int("work_fronts", len(inputs.WorkFronts)).
		Float64("total_man_hours", results.TotalManHours).
		Msg("Cálculo sem sessão concluído")

	return &CalculationView{
		Results:   results,
		Cards:     FormatCards(results),
		TeamRoles: roles,
		Ledger:    NewLedgerView(roles),
	}, nil
}

// CreateSession abre uma sessão nova a partir do preset
func (s *SizingService) CreateSession(ctx context.Context) SessionView {
	sess := s.store.Create()
	snap := sess.Snapshot()

	metrics.Get().IncrementSessionCreated()
	ctx = logger.WithSessionID(ctx, snap.ID)
	logger.Get(ctx).Info().Msg("Sessão criada")
	logger.AuditChange(ctx, logger.AuditActionSessionCreate, "session", snap.ID, nil, nil)

	return NewSessionView(snap)
}

// GetSession retorna o estado atual da sessão
func (s *SizingService) GetSession(ctx context.Context, sessionID string) (SessionView, error) {
	sess, err := s.store.Get(sessionID)
	if err != nil {
		return SessionView{}, err
	}
	return NewSessionView(sess.Snapshot()), nil
}

// DeleteSession encerra a sessão e desconecta seus clientes
func (s *SizingService) DeleteSession(ctx context.Context, sessionID string) error {
	err := s.store.Delete(sessionID)
	ctx = logger.WithSessionID(ctx, sessionID)
	logger.AuditChange(ctx, logger.AuditActionSessionDelete, "session", sessionID, err, nil)
	if err != nil {
		return err
	}

	metrics.Get().IncrementSessionDeleted()
	if s.hub != nil {
		s.hub.CloseSession(sessionID, "deleted")
	}
	return nil
}

// mutation descreve uma alteração auditada sobre a sessão
type mutation struct {
	action     logger.AuditAction
	resource   string
	resourceID string
	details    map[string]interface{}
	apply      func(*session.Session) (session.Snapshot, error)

	// ledgerOnly marca edições da tabela de equipe, que não rodam o motor
	ledgerOnly bool
}

// mutate aplica a alteração, registra auditoria e métricas e publica o novo estado
func (s *SizingService) mutate(ctx context.Context, sessionID string, m mutation) (SessionView, error) {
	ctx = logger.WithSessionID(ctx, sessionID)
	log := logger.Get(ctx)

	sess, err := s.store.Get(sessionID)
	if err != nil {
		logger.AuditChange(ctx, m.action, m.resource, m.resourceID, err, m.details)
		return SessionView{}, err
	}

	snap, err := m.apply(sess)
	if err != nil || !m.ledgerOnly {
		metrics.Get().IncrementRecompute(err == nil)
	}
	logger.AuditChange(ctx, m.action, m.resource, m.resourceID, err, m.details)
	if err != nil {
		log.Warn().Err(err).
			Str("resource", m.resource).
			Str("resource_id", m.resourceID).
			Msg("Alteração rejeitada")
		return SessionView{}, err
	}

	log.Debug().
		Str("action", string(m.action)).
		Int("revision", snap.Revision).
		Float64("total_man_hours", snap.Results.TotalManHours).
		Float64("duration_days", snap.Results.ProjectDurationDays).
		Msg("Sessão recalculada")

	view := NewSessionView(snap)
	if s.hub != nil {
		s.hub.BroadcastResults(sessionID, view.Revision, view)
	}
	return view, nil
}

// UpdateInputs altera os parâmetros do projeto. As frentes têm rotas próprias.
func (s *SizingService) UpdateInputs(ctx context.Context, sessionID string, req model.InputsRequest) (SessionView, error) {
	patch := session.InputsPatch{
		TotalPoints:     model.FloatPtr(req.TotalPoints),
		WorkHoursPerDay: model.FloatPtr(req.WorkHoursPerDay),
		PeoplePerCell:   model.FloatPtr(req.PeoplePerCell),
	}
	return s.mutate(ctx, sessionID, mutation{
		action:   logger.AuditActionInputsUpdate,
		resource: "inputs",
		apply: func(sess *session.Session) (session.Snapshot, error) {
			return sess.SetInputs(patch), nil
		},
	})
}

// UpdateTask altera nome, fase ou HH/ponto de uma atividade
func (s *SizingService) UpdateTask(ctx context.Context, sessionID, taskID string, req model.TaskPatchRequest) (SessionView, error) {
	patch := session.TaskPatch{
		Name:             req.Name,
		Phase:            req.Phase,
		ManHoursPerPoint: model.FloatPtr(req.ManHoursPerPoint),
	}
	return s.mutate(ctx, sessionID, mutation{
		action:     logger.AuditActionTaskUpdate,
		resource:   "task",
		resourceID: taskID,
		apply: func(sess *session.Session) (session.Snapshot, error) {
			return sess.UpdateTask(taskID, patch)
		},
	})
}

// RescaleTasks reescala as atividades para um novo HH/ponto total
func (s *SizingService) RescaleTasks(ctx context.Context, sessionID string, newTotal float64) (SessionView, error) {
	return s.mutate(ctx, sessionID, mutation{
		action:   logger.AuditActionTaskRescale,
		resource: "task",
		details:  map[string]interface{}{"total_man_hours_per_point": newTotal},
		apply: func(sess *session.Session) (session.Snapshot, error) {
			return sess.RescaleManHours(newTotal), nil
		},
	})
}

// AddWorkFront inclui uma frente ao final da lista
func (s *SizingService) AddWorkFront(ctx context.Context, sessionID string, req model.WorkFrontRequest) (SessionView, error) {
	cells := 0.0
	if req.AllocatedCells != nil {
		cells = req.AllocatedCells.Float64()
	}
	return s.mutate(ctx, sessionID, mutation{
		action:   logger.AuditActionWorkFrontCreate,
		resource: "work_front",
		details:  map[string]interface{}{"name": req.Name},
		apply: func(sess *session.Session) (session.Snapshot, error) {
			return sess.AddWorkFront(req.Name, cells), nil
		},
	})
}

// UpdateWorkFront renomeia a frente e/ou define suas células. Nome vazio fica como está.
func (s *SizingService) UpdateWorkFront(ctx context.Context, sessionID, frontID string, req model.WorkFrontRequest) (SessionView, error) {
	patch := session.WorkFrontPatch{AllocatedCells: model.FloatPtr(req.AllocatedCells)}
	if req.Name != "" {
		name := req.Name
		patch.Name = &name
	}
	return s.mutate(ctx, sessionID, mutation{
		action:     logger.AuditActionWorkFrontUpdate,
		resource:   "work_front",
		resourceID: frontID,
		apply: func(sess *session.Session) (session.Snapshot, error) {
			return sess.UpdateWorkFront(frontID, patch)
		},
	})
}

// AdjustCells soma delta às células da frente, sem passar de zero
func (s *SizingService) AdjustCells(ctx context.Context, sessionID, frontID string, delta int) (SessionView, error) {
	return s.mutate(ctx, sessionID, mutation{
		action:     logger.AuditActionWorkFrontUpdate,
		resource:   "work_front",
		resourceID: frontID,
		details:    map[string]interface{}{"delta": delta},
		apply: func(sess *session.Session) (session.Snapshot, error) {
			return sess.AdjustCells(frontID, delta)
		},
	})
}

// RemoveWorkFront remove uma frente
func (s *SizingService) RemoveWorkFront(ctx context.Context, sessionID, frontID string) (SessionView, error) {
	return s.mutate(ctx, sessionID, mutation{
		action:     logger.AuditActionWorkFrontDelete,
		resource:   "work_front",
		resourceID: frontID,
		apply: func(sess *session.Session) (session.Snapshot, error) {
			return sess.RemoveWorkFront(frontID)
		},
	})
}

// AddRole inclui uma função com valores padrão e retorna a função criada
func (s *SizingService) AddRole(ctx context.Context, sessionID string) (SessionView, model.TeamRole, error) {
	var role model.TeamRole
	view, err := s.mutate(ctx, sessionID, mutation{
		action:     logger.AuditActionRoleCreate,
		resource:   "team_role",
		ledgerOnly: true,
		apply: func(sess *session.Session) (session.Snapshot, error) {
			snap, created := sess.AddRole()
			role = created
			return snap, nil
		},
	})
	return view, role, err
}

// UpdateRole altera uma linha da tabela consolidada
func (s *SizingService) UpdateRole(ctx context.Context, sessionID, roleID string, req model.RolePatchRequest) (SessionView, error) {
	patch := session.RolePatch{
		Category:         req.Category,
		Function:         req.Function,
		Quantity:         model.FloatPtr(req.Quantity),
		TotalHH:          req.TotalHH,
		Responsibilities: req.Responsibilities,
	}
	return s.mutate(ctx, sessionID, mutation{
		action:     logger.AuditActionRoleUpdate,
		resource:   "team_role",
		resourceID: roleID,
		ledgerOnly: true,
		apply: func(sess *session.Session) (session.Snapshot, error) {
			return sess.UpdateRole(roleID, patch)
		},
	})
}

// RemoveRole remove uma linha da tabela consolidada
func (s *SizingService) RemoveRole(ctx context.Context, sessionID, roleID string) (SessionView, error) {
	return s.mutate(ctx, sessionID, mutation{
		action:     logger.AuditActionRoleDelete,
		resource:   "team_role",
		resourceID: roleID,
		ledgerOnly: true,
		apply: func(sess *session.Session) (session.Snapshot, error) {
			return sess.RemoveRole(roleID)
		},
	})
}

// Export gera a planilha da sessão
func (s *SizingService) Export(ctx context.Context, sessionID string) (*bytes.Buffer, error) {
	ctx = logger.WithSessionID(ctx, sessionID)

	sess, err := s.store.Get(sessionID)
	if err != nil {
		return nil, err
	}
	snap := sess.Snapshot()

	buf, err := s.excel.Generate(ExportData{
		Inputs:    snap.Inputs,
		Results:   snap.Results,
		TeamRoles: snap.TeamRoles,
	})
	if err != nil {
		metrics.Get().IncrementExport(false, 0)
		logger.AuditChange(ctx, logger.AuditActionLedgerExport, "export", sessionID, err, nil)
		return nil, fmt.Errorf("gerar planilha: %w", err)
	}

	metrics.Get().IncrementExport(true, int64(buf.Len()))
	logger.AuditChange(ctx, logger.AuditActionLedgerExport, "export", sessionID, nil, map[string]interface{}{
		"revision": snap.Revision,
		"bytes":    buf.Len(),
	})
	logger.Get(ctx).Info().
		Int("roles", len(snap.TeamRoles)).
		Int("bytes", buf.Len()).
		Msg("Planilha exportada")

	return buf, nil
}
