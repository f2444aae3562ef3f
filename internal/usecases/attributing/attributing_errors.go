package attributing

import "errors"

// Erros específicos do contexto de atribuição
var (
	// Erros de validação
	ErrUserIDRequired = errors.New("user_id é obrigatório")
	ErrSourceRequired = errors.New("source é obrigatório")
	ErrInvalidModel   = errors.New("modelo de atribuição desconhecido")

	// Erros de leitura
	ErrJourneyNotFound = errors.New("jornada não encontrada para o usuário")
)
