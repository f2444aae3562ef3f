// Package attributing registra touchpoints por usuário e calcula a divisão
// de crédito de conversão sob os cinco modelos de atribuição
package attributing

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/marketing-attribution-api/infrastructure/eventstore"
	"github.com/vfg2006/marketing-attribution-api/internal/config"
	"github.com/vfg2006/marketing-attribution-api/internal/domain"
	"github.com/vfg2006/marketing-attribution-api/internal/eventbus"
)

// Chaves do Event Store usadas pela atribuição
const (
	journeyKeyPrefix    = "journey:"
	lastActivitySuffix  = ":last_activity"
	touchpointsStatKey  = "stats:touchpoints"
	trackedUsersStatKey = "stats:tracked_users"
	defaultHalfLifeDays = 7.0
)

type AttributionService interface {
	// RecordTouchpoint grava o touchpoint na jornada do usuário e devolve o
	// identificador opaco do registro
	RecordTouchpoint(ctx context.Context, tp *domain.Touchpoint) (string, error)

	// ComputeAttribution calcula a divisão de crédito por origem sob o modelo
	// indicado. Leitura pura: nenhum estado é alterado
	ComputeAttribution(ctx context.Context, userID string, model domain.AttributionModel) (map[string]float64, error)

	// BuildReport monta o resumo multi-modelo da jornada do usuário
	BuildReport(ctx context.Context, userID string) (*domain.AttributionReport, error)
}

type Service struct {
	store        eventstore.Store
	bus          *eventbus.Bus
	halfLifeDays float64
	now          func() time.Time
}

func NewService(store eventstore.Store, bus *eventbus.Bus, cfg *config.Config) AttributionService {
	halfLife := cfg.Attribution.HalfLifeDays
	if halfLife <= 0 {
		halfLife = defaultHalfLifeDays
	}

	return &Service{
		store:        store,
		bus:          bus,
		halfLifeDays: halfLife,
		now:          time.Now,
	}
}

func (s *Service) RecordTouchpoint(ctx context.Context, tp *domain.Touchpoint) (string, error) {
	if tp == nil || tp.UserID == "" {
		return "", ErrUserIDRequired
	}
	if tp.Source == "" {
		return "", ErrSourceRequired
	}

	// Tráfego sem tag cai nos sentinelas, espelhando acessos diretos reais
	if tp.Medium == "" {
		tp.Medium = domain.DefaultMedium
	}
	if tp.Campaign == "" {
		tp.Campaign = domain.DefaultCampaign
	}
	if tp.Timestamp == 0 {
		tp.Timestamp = s.now().UnixMilli()
	}

	payload, err := json.Marshal(tp)
	if err != nil {
		return "", fmt.Errorf("erro ao serializar touchpoint: %w", err)
	}

	journeyKey := journeyKeyPrefix + tp.UserID
	if err := s.store.AppendOrdered(ctx, journeyKey, float64(tp.Timestamp), string(payload)); err != nil {
		return "", err
	}

	// Bookkeeping derivado; falha aqui não invalida o registro da jornada
	if err := s.store.Put(ctx, journeyKey+lastActivitySuffix, strconv.FormatInt(tp.Timestamp, 10)); err != nil {
		logrus.WithFields(logrus.Fields{
			"user_id": tp.UserID,
			"error":   err.Error(),
		}).Warn("Erro ao atualizar last_activity da jornada")
	}
	if _, err := s.store.Increment(ctx, touchpointsStatKey, 1); err != nil {
		logrus.WithError(err).Warn("Erro ao incrementar contador global de touchpoints")
	}
	if err := s.store.SetAdd(ctx, trackedUsersStatKey, tp.UserID); err != nil {
		logrus.WithError(err).Warn("Erro ao registrar usuário rastreado")
	}

	s.bus.Publish(eventbus.EventTouchpointRecorded, map[string]any{
		"user_id":  tp.UserID,
		"source":   tp.Source,
		"medium":   tp.Medium,
		"campaign": tp.Campaign,
	})

	return tp.ID(), nil
}

func (s *Service) ComputeAttribution(ctx context.Context, userID string, model domain.AttributionModel) (map[string]float64, error) {
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	if !model.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidModel, model)
	}

	journey, err := s.loadJourney(ctx, userID)
	if err != nil {
		return nil, err
	}

	switch model {
	case domain.ModelFirstTouch:
		return firstTouch(journey), nil
	case domain.ModelLastTouch:
		return lastTouch(journey), nil
	case domain.ModelLinear:
		return linear(journey), nil
	case domain.ModelTimeDecay:
		return timeDecay(journey, s.now(), s.halfLifeDays), nil
	case domain.ModelUShaped:
		return uShaped(journey), nil
	}

	return nil, fmt.Errorf("%w: %s", ErrInvalidModel, model)
}

func (s *Service) BuildReport(ctx context.Context, userID string) (*domain.AttributionReport, error) {
	journey, err := s.loadJourney(ctx, userID)
	if err != nil {
		return nil, err
	}

	report := &domain.AttributionReport{
		UserID:      userID,
		Touchpoints: len(journey),
		Models:      make(map[domain.AttributionModel]map[string]float64, len(domain.AllAttributionModels)),
	}

	now := s.now()
	report.Models[domain.ModelFirstTouch] = firstTouch(journey)
	report.Models[domain.ModelLastTouch] = lastTouch(journey)
	report.Models[domain.ModelLinear] = linear(journey)
	report.Models[domain.ModelTimeDecay] = timeDecay(journey, now, s.halfLifeDays)
	report.Models[domain.ModelUShaped] = uShaped(journey)

	return report, nil
}

// loadJourney reconstrói a jornada completa do usuário a partir da sequência
// ordenada por timestamp
func (s *Service) loadJourney(ctx context.Context, userID string) ([]domain.Touchpoint, error) {
	raw, err := s.store.RangeOrdered(ctx, journeyKeyPrefix+userID, math.Inf(-1), math.Inf(1))
	if err != nil {
		return nil, err
	}

	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrJourneyNotFound, userID)
	}

	journey := make([]domain.Touchpoint, 0, len(raw))
	for _, value := range raw {
		var tp domain.Touchpoint
		if err := json.Unmarshal([]byte(value), &tp); err != nil {
			return nil, fmt.Errorf("erro ao decodificar touchpoint da jornada %s: %w", userID, err)
		}
		journey = append(journey, tp)
	}

	return journey, nil
}
