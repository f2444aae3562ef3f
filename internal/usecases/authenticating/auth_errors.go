package authenticating

import "errors"

// Erros de autenticação do operador da API
var (
	ErrInvalidCredentials = errors.New("credenciais inválidas")
	ErrInvalidToken       = errors.New("token inválido")
	ErrExpiredToken       = errors.New("token expirado")
	ErrOperatorNotSet     = errors.New("operador não configurado")
)
