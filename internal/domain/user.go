package domain

import "github.com/golang-jwt/jwt/v5"

// Roles de operador da API
const (
	RoleAdmin    = 1
	RoleReadonly = 2
)

// Claims são as claims JWT emitidas no login do operador
type Claims struct {
	Username   string `json:"username"`
	UserRoleID int    `json:"user_role_id"`
	jwt.RegisteredClaims
}

// Dashboard agrega contadores ao vivo calculados sob demanda sobre o Event
// Store; nada aqui é um artefato cacheado
type Dashboard struct {
	Touchpoints  int64 `json:"touchpoints"`
	Conversions  int64 `json:"conversions"`
	Experiments  int64 `json:"experiments"`
	Campaigns    int64 `json:"campaigns"`
	TrackedUsers int64 `json:"tracked_users"`
	EmailsSent   int64 `json:"emails_sent"`
}
