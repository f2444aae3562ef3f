package orchestrating

import "errors"

// Erros específicos do contexto de orquestração de campanhas
var (
	// Erros de validação no lançamento
	ErrNameRequired     = errors.New("nome da campanha é obrigatório")
	ErrChannelsRequired = errors.New("a campanha exige pelo menos um canal")
	ErrInvalidBudget    = errors.New("orçamento da campanha deve ser positivo")
	ErrInvalidDuration  = errors.New("duração da campanha deve ser de pelo menos 1 dia")

	// Erros de leitura
	ErrCampaignNotFound = errors.New("campanha não encontrada")
)
