package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/cleberrangel/dimensionamento-api/internal/logger"
	"github.com/cleberrangel/dimensionamento-api/internal/middleware"
	"github.com/cleberrangel/dimensionamento-api/internal/model"
	"github.com/cleberrangel/dimensionamento-api/internal/service"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// SizingHandler manipula o cálculo e as sessões de edição
type SizingHandler struct {
	service *service.SizingService
}

// NewSizingHandler cria um novo handler de dimensionamento
func NewSizingHandler(svc *service.SizingService) *SizingHandler {
	return &SizingHandler{service: svc}
}

// Calculate roda o cálculo sem sessão
// @Summary      Calcula o dimensionamento
// @Description  Recebe parâmetros, atividades e equipe e devolve o resultado sem guardar estado
// @Tags         sizing
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body model.CalculateRequest true "Parâmetros do projeto"
// @Success      200 {object} model.Response
// @Failure      400 {object} model.ErrorResponse
// @Router       /api/v1/calculate [post]
func (h *SizingHandler) Calculate(c *gin.Context) {
	var req model.CalculateRequest
	if !bindJSON(c, &req) {
		return
	}

	for i := range req.Tasks {
		req.Tasks[i].Name = middleware.SanitizeTitle(req.Tasks[i].Name)
		req.Tasks[i].Phase = middleware.SanitizeTitle(req.Tasks[i].Phase)
	}

	view, err := h.service.Calculate(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Response{Success: true, Data: view})
}

// CreateSession abre uma sessão a partir do preset
// @Summary      Cria sessão de edição
// @Tags         sessions
// @Produce      json
// @Security     BearerAuth
// @Success      201 {object} model.Response
// @Router       /api/v1/sessions [post]
func (h *SizingHandler) CreateSession(c *gin.Context) {
	view := h.service.CreateSession(c.Request.Context())
	c.Header("Location", "/api/v1/sessions/"+view.ID)
	respondView(c, http.StatusCreated, view)
}

// GetSession retorna o estado atual da sessão
// @Summary      Estado da sessão
// @Tags         sessions
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "ID da sessão"
// @Success      200 {object} model.Response
// @Failure      404 {object} model.ErrorResponse
// @Router       /api/v1/sessions/{id} [get]
func (h *SizingHandler) GetSession(c *gin.Context) {
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}
	view, err := h.service.GetSession(c.Request.Context(), sessionID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondView(c, http.StatusOK, view)
}

// DeleteSession encerra a sessão
// @Summary      Encerra sessão
// @Tags         sessions
// @Security     BearerAuth
// @Param        id path string true "ID da sessão"
// @Success      204
// @Failure      404 {object} model.ErrorResponse
// @Router       /api/v1/sessions/{id} [delete]
func (h *SizingHandler) DeleteSession(c *gin.Context) {
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}
	if err := h.service.DeleteSession(c.Request.Context(), sessionID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateInputs altera os parâmetros do projeto
// @Summary      Altera parâmetros
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "ID da sessão"
// @Param        request body model.InputsRequest true "Campos a alterar"
// @Success      200 {object} model.Response
// @Router       /api/v1/sessions/{id}/inputs [patch]
func (h *SizingHandler) UpdateInputs(c *gin.Context) {
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}
	var req model.InputsRequest
	if !bindJSON(c, &req) {
		return
	}
	h.respondMutation(c)(h.service.UpdateInputs(c.Request.Context(), sessionID, req))
}

// UpdateTask altera uma atividade
// @Summary      Altera atividade
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "ID da sessão"
// @Param        taskId path string true "ID da atividade"
// @Param        request body model.TaskPatchRequest true "Campos a alterar"
// @Success      200 {object} model.Response
// @Router       /api/v1/sessions/{id}/tasks/{taskId} [patch]
func (h *SizingHandler) UpdateTask(c *gin.Context) {
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}
	taskID, ok := idParam(c, "taskId")
	if !ok {
		return
	}
	var req model.TaskPatchRequest
	if !bindJSON(c, &req) {
		return
	}
	req.Name = sanitizeTitlePtr(req.Name)
	req.Phase = sanitizeTitlePtr(req.Phase)
	h.respondMutation(c)(h.service.UpdateTask(c.Request.Context(), sessionID, taskID, req))
}

// RescaleTasks reescala o HH/ponto de todas as atividades
// @Summary      Reescala HH por ponto
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "ID da sessão"
// @Param        request body model.RescaleRequest true "Novo total de HH por ponto"
// @Success      200 {object} model.Response
// @Router       /api/v1/sessions/{id}/tasks/rescale [post]
func (h *SizingHandler) RescaleTasks(c *gin.Context) {
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}
	var req model.RescaleRequest
	if !bindJSON(c, &req) {
		return
	}
	h.respondMutation(c)(h.service.RescaleTasks(c.Request.Context(), sessionID, *req.TotalManHoursPerPoint))
}

// AddWorkFront inclui uma frente
// @Summary      Inclui frente de trabalho
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "ID da sessão"
// @Param        request body model.WorkFrontRequest false "Nome e células"
// @Success      201 {object} model.Response
// @Router       /api/v1/sessions/{id}/work-fronts [post]
func (h *SizingHandler) AddWorkFront(c *gin.Context) {
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}
	var req model.WorkFrontRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	req.Name = middleware.SanitizeTitle(req.Name)

	view, err := h.service.AddWorkFront(c.Request.Context(), sessionID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondView(c, http.StatusCreated, view)
}

// UpdateWorkFront renomeia a frente e/ou define suas células
// @Summary      Altera frente de trabalho
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "ID da sessão"
// @Param        frontId path string true "ID da frente"
// @Param        request body model.WorkFrontRequest true "Campos a alterar"
// @Success      200 {object} model.Response
// @Router       /api/v1/sessions/{id}/work-fronts/{frontId} [patch]
func (h *SizingHandler) UpdateWorkFront(c *gin.Context) {
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}
	frontID, ok := idParam(c, "frontId")
	if !ok {
		return
	}
	var req model.WorkFrontRequest
	if !bindJSON(c, &req) {
		return
	}
	req.Name = middleware.SanitizeTitle(req.Name)
	h.respondMutation(c)(h.service.UpdateWorkFront(c.Request.Context(), sessionID, frontID, req))
}

// AdjustCells soma ou subtrai células de uma frente
// @Summary      Ajusta células da frente
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "ID da sessão"
// @Param        frontId path string true "ID da frente"
// @Param        request body model.CellsRequest true "Variação de células"
// @Success      200 {object} model.Response
// @Router       /api/v1/sessions/{id}/work-fronts/{frontId}/cells [post]
func (h *SizingHandler) AdjustCells(c *gin.Context) {
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}
	frontID, ok := idParam(c, "frontId")
	if !ok {
		return
	}
	var req model.CellsRequest
	if !bindJSON(c, &req) {
		return
	}
	h.respondMutation(c)(h.service.AdjustCells(c.Request.Context(), sessionID, frontID, req.Delta))
}

// RemoveWorkFront remove uma frente
// @Summary      Remove frente de trabalho
// @Tags         sessions
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "ID da sessão"
// @Param        frontId path string true "ID da frente"
// @Success      200 {object} model.Response
// @Router       /api/v1/sessions/{id}/work-fronts/{frontId} [delete]
func (h *SizingHandler) RemoveWorkFront(c *gin.Context) {
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}
	frontID, ok := idParam(c, "frontId")
	if !ok {
		return
	}
	h.respondMutation(c)(h.service.RemoveWorkFront(c.Request.Context(), sessionID, frontID))
}

// AddRole inclui uma linha na tabela de equipe
// @Summary      Inclui função na equipe
// @Tags         sessions
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "ID da sessão"
// @Success      201 {object} model.Response
// @Router       /api/v1/sessions/{id}/team-roles [post]
func (h *SizingHandler) AddRole(c *gin.Context) {
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}
	view, role, err := h.service.AddRole(c.Request.Context(), sessionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("X-Team-Role-ID", role.ID)
	respondView(c, http.StatusCreated, view)
}

// UpdateRole altera uma linha da tabela de equipe
// @Summary      Altera função da equipe
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "ID da sessão"
// @Param        roleId path string true "ID da função"
// @Param        request body model.RolePatchRequest true "Campos a alterar"
// @Success      200 {object} model.Response
// @Router       /api/v1/sessions/{id}/team-roles/{roleId} [patch]
func (h *SizingHandler) UpdateRole(c *gin.Context) {
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}
	roleID, ok := idParam(c, "roleId")
	if !ok {
		return
	}
	var req model.RolePatchRequest
	if !bindJSON(c, &req) {
		return
	}
	req.Category = sanitizeTitlePtr(req.Category)
	req.Function = sanitizeTitlePtr(req.Function)
	req.TotalHH = sanitizeTitlePtr(req.TotalHH)
	if req.Responsibilities != nil {
		s := middleware.SanitizeDescription(*req.Responsibilities)
		req.Responsibilities = &s
	}
	h.respondMutation(c)(h.service.UpdateRole(c.Request.Context(), sessionID, roleID, req))
}

// RemoveRole remove uma linha da tabela de equipe
// @Summary      Remove função da equipe
// @Tags         sessions
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "ID da sessão"
// @Param        roleId path string true "ID da função"
// @Success      200 {object} model.Response
// @Router       /api/v1/sessions/{id}/team-roles/{roleId} [delete]
func (h *SizingHandler) RemoveRole(c *gin.Context) {
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}
	roleID, ok := idParam(c, "roleId")
	if !ok {
		return
	}
	h.respondMutation(c)(h.service.RemoveRole(c.Request.Context(), sessionID, roleID))
}

// Export baixa a planilha da sessão
// @Summary      Exporta a tabela consolidada
// @Tags         sessions
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Param        id path string true "ID da sessão"
// @Success      200 {file} binary "Arquivo Excel"
// @Failure      404 {object} model.ErrorResponse
// @Router       /api/v1/sessions/{id}/export [get]
func (h *SizingHandler) Export(c *gin.Context) {
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}

	buf, err := h.service.Export(c.Request.Context(), sessionID)
	if err != nil {
		respondError(c, err)
		return
	}

	filename := middleware.SanitizeFilename(service.ExportFileName)

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Length", fmt.Sprintf("%d", buf.Len()))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// respondMutation devolve o resultado de uma alteração de sessão
func (h *SizingHandler) respondMutation(c *gin.Context) func(service.SessionView, error) {
	return func(view service.SessionView, err error) {
		if err != nil {
			respondError(c, err)
			return
		}
		respondView(c, http.StatusOK, view)
	}
}

func respondView(c *gin.Context, status int, view service.SessionView) {
	c.JSON(status, model.Response{
		Success: true,
		Data:    view,
		Meta:    &model.Meta{SessionID: view.ID, Revision: view.Revision},
	})
}

// respondError mapeia erros de domínio para status HTTP
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrSessionNotFound),
		errors.Is(err, model.ErrTaskNotFound),
		errors.Is(err, model.ErrWorkFrontNotFound),
		errors.Is(err, model.ErrTeamRoleNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrInvalidCategory):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		logger.FromGin(c).Error().Err(err).Msg("Erro interno")
		c.JSON(status, model.ErrorResponse{
			Success: false,
			Error:   "erro interno",
			Details: err.Error(),
		})
		return
	}

	c.JSON(status, model.ErrorResponse{
		Success: false,
		Error:   err.Error(),
	})
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Error:   "payload inválido",
			Details: err.Error(),
		})
		return false
	}
	return true
}

func sessionParam(c *gin.Context) (string, bool) {
	return idParam(c, "id")
}

func idParam(c *gin.Context, name string) (string, bool) {
	id := c.Param(name)
	if !middleware.ValidateID(id) {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Error:   "identificador inválido",
			Details: name,
		})
		return "", false
	}
	return id, true
}

func sanitizeTitlePtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := middleware.SanitizeTitle(*s)
	return &v
}
