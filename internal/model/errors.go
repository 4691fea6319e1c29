package model

import "errors"

var (
	// ErrSessionNotFound indica sessão inexistente ou expirada
	ErrSessionNotFound = errors.New("sessão não encontrada ou expirada")

	// ErrTaskNotFound indica atividade inexistente na sessão
	ErrTaskNotFound = errors.New("atividade não encontrada")

	// ErrWorkFrontNotFound indica frente de trabalho inexistente na sessão
	ErrWorkFrontNotFound = errors.New("frente de trabalho não encontrada")

	// ErrTeamRoleNotFound indica função inexistente na tabela consolidada
	ErrTeamRoleNotFound = errors.New("função não encontrada na equipe")

	// ErrInvalidCategory indica categoria de atividade desconhecida
	ErrInvalidCategory = errors.New("categoria de atividade inválida")
)
