// Package authenticating autentica os operadores da API de atribuição. A
// instalação tem no máximo duas identidades vindas da configuração: um
// operador admin e um usuário somente leitura opcional, ambos com senha
// armazenada como hash bcrypt
package authenticating

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/marketing-attribution-api/internal/config"
	"github.com/vfg2006/marketing-attribution-api/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 24 * time.Hour

type Authenticator interface {
	Login(username, password string) (string, error)
	ValidateToken(tokenString string) (*domain.Claims, error)
}

type Service struct {
	cfg *config.Config
}

func NewService(cfg *config.Config) Authenticator {
	return &Service{cfg: cfg}
}

func (s *Service) Login(username, password string) (string, error) {
	roleID, hash, err := s.lookup(username)
	if err != nil {
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		logrus.WithField("username", username).Warn("Tentativa de login com senha inválida")
		return "", ErrInvalidCredentials
	}

	now := time.Now()
	claims := &domain.Claims{
		Username:   username,
		UserRoleID: roleID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Auth.Secret))
	if err != nil {
		return "", err
	}

	logrus.WithFields(logrus.Fields{
		"username": username,
		"role_id":  roleID,
	}).Info("Operador autenticado com sucesso")

	return signed, nil
}

func (s *Service) ValidateToken(tokenString string) (*domain.Claims, error) {
	claims := &domain.Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(s.cfg.Auth.Secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (s *Service) lookup(username string) (int, string, error) {
	auth := s.cfg.Auth

	switch {
	case auth.OperatorUser != "" && username == auth.OperatorUser:
		if auth.OperatorPasswordHash == "" {
			return 0, "", ErrOperatorNotSet
		}
		return domain.RoleAdmin, auth.OperatorPasswordHash, nil

	case auth.ReadonlyUser != "" && username == auth.ReadonlyUser:
		if auth.ReadonlyPasswordHash == "" {
			return 0, "", ErrOperatorNotSet
		}
		return domain.RoleReadonly, auth.ReadonlyPasswordHash, nil
	}

	return 0, "", ErrInvalidCredentials
}
