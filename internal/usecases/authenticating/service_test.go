package authenticating

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/marketing-attribution-api/internal/config"
	"github.com/vfg2006/marketing-attribution-api/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()

	operatorHash, err := bcrypt.GenerateFromPassword([]byte("senha-admin"), bcrypt.MinCost)
	require.NoError(t, err)
	readonlyHash, err := bcrypt.GenerateFromPassword([]byte("senha-leitura"), bcrypt.MinCost)
	require.NoError(t, err)

	return &config.Config{
		Auth: config.Auth{
			Secret:               "segredo-de-teste",
			OperatorUser:         "admin",
			OperatorPasswordHash: string(operatorHash),
			ReadonlyUser:         "leitor",
			ReadonlyPasswordHash: string(readonlyHash),
		},
	}
}

func TestService_Login(t *testing.T) {
	tests := []struct {
		name         string
		username     string
		password     string
		expectedErr  error
		expectedRole int
	}{
		{
			name:         "Operador deve autenticar com role admin",
			username:     "admin",
			password:     "senha-admin",
			expectedRole: domain.RoleAdmin,
		},
		{
			name:         "Usuário de leitura deve autenticar com role readonly",
			username:     "leitor",
			password:     "senha-leitura",
			expectedRole: domain.RoleReadonly,
		},
		{
			name:        "Senha errada deve ser rejeitada",
			username:    "admin",
			password:    "senha-errada",
			expectedErr: ErrInvalidCredentials,
		},
		{
			name:        "Usuário desconhecido deve ser rejeitado",
			username:    "intruso",
			password:    "qualquer",
			expectedErr: ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewService(newTestConfig(t))

			token, err := service.Login(tt.username, tt.password)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				return
			}

			require.NoError(t, err)
			require.NotEmpty(t, token)

			claims, err := service.ValidateToken(token)
			require.NoError(t, err)
			assert.Equal(t, tt.username, claims.Username)
			assert.Equal(t, tt.expectedRole, claims.UserRoleID)
		})
	}
}

func TestService_Login_OperadorSemHashConfigurado(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Auth.OperatorPasswordHash = ""

	service := NewService(cfg)

	_, err := service.Login("admin", "senha-admin")

	assert.ErrorIs(t, err, ErrOperatorNotSet)
}

func TestService_ValidateToken_TokenInvalido(t *testing.T) {
	service := NewService(newTestConfig(t))

	_, err := service.ValidateToken("nem-de-longe-um-jwt")

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestService_ValidateToken_AssinaturaDeOutroSegredo(t *testing.T) {
	serviceA := NewService(newTestConfig(t))

	cfgB := newTestConfig(t)
	cfgB.Auth.Secret = "outro-segredo"
	serviceB := NewService(cfgB)

	token, err := serviceA.Login("admin", "senha-admin")
	require.NoError(t, err)

	_, err = serviceB.ValidateToken(token)

	assert.ErrorIs(t, err, ErrInvalidToken)
}
