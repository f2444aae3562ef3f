package experimenting

import "errors"

// Erros específicos do contexto de experimentos
var (
	// Erros de validação na criação
	ErrNameRequired       = errors.New("nome do teste é obrigatório")
	ErrNotEnoughVariants  = errors.New("um teste A/B exige pelo menos 2 variantes")
	ErrInvalidDuration    = errors.New("duração do teste deve ser de pelo menos 1 dia")
	ErrDuplicateVariantID = errors.New("identificadores de variante duplicados")

	// Erros de leitura/gravação
	ErrTestNotFound    = errors.New("teste não encontrado")
	ErrVariantNotFound = errors.New("variante não pertence ao teste")
)
