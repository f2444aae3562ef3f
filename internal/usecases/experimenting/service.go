// Package experimenting gerencia testes A/B: criação, contadores de
// impressão/conversão por variante e leitura de resultados com o cálculo de
// significância estatística
package experimenting

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/marketing-attribution-api/infrastructure/eventstore"
	"github.com/vfg2006/marketing-attribution-api/internal/domain"
	"github.com/vfg2006/marketing-attribution-api/internal/eventbus"
	"github.com/vfg2006/marketing-attribution-api/pkg/utils"
)

const (
	experimentKeyPrefix = "experiment:"
	experimentsIndexKey = "experiments"
	conversionsStatKey  = "stats:conversions"
)

// CreateTestRequest é o pedido de criação de um teste A/B
type CreateTestRequest struct {
	Name         string           `json:"name" mapstructure:"name"`
	Variants     []domain.Variant `json:"variants" mapstructure:"variants"`
	Metric       string           `json:"metric" mapstructure:"metric"`
	DurationDays int              `json:"duration_days" mapstructure:"duration_days"`
}

type ExperimentService interface {
	// CreateTest persiste o experimento com contadores zerados e devolve o
	// testId gerado. Nenhum registro parcial é gravado em caso de validação
	// inválida
	CreateTest(ctx context.Context, req *CreateTestRequest) (string, error)

	// RecordImpression incrementa atomicamente as impressões da variante e
	// adiciona o usuário ao conjunto de alcance único. O contador de
	// impressões cresce a cada chamada; o conjunto é idempotente por usuário
	RecordImpression(ctx context.Context, testID, variantID, userID string) error

	// RecordConversion incrementa atomicamente as conversões da variante e,
	// quando informado, acumula o valor monetário
	RecordConversion(ctx context.Context, testID, variantID, userID string, value float64) error

	// GetResults calcula os resultados ao vivo a partir dos contadores; nada
	// é cacheado como veredito final, mesmo após o fim nominal do teste
	GetResults(ctx context.Context, testID string) (*domain.ExperimentResults, error)
}

type Service struct {
	store eventstore.Store
	bus   *eventbus.Bus
	now   func() time.Time
}

func NewService(store eventstore.Store, bus *eventbus.Bus) ExperimentService {
	return &Service{
		store: store,
		bus:   bus,
		now:   time.Now,
	}
}

func (s *Service) CreateTest(ctx context.Context, req *CreateTestRequest) (string, error) {
	if req == nil || req.Name == "" {
		return "", ErrNameRequired
	}
	if len(req.Variants) < 2 {
		return "", ErrNotEnoughVariants
	}
	if req.DurationDays < 1 {
		return "", ErrInvalidDuration
	}

	seen := make(map[string]struct{}, len(req.Variants))
	variants := make([]domain.Variant, 0, len(req.Variants))
	for _, v := range req.Variants {
		if v.ID == "" {
			id, err := utils.GenerateID()
			if err != nil {
				return "", fmt.Errorf("erro ao gerar ID de variante: %w", err)
			}
			v.ID = id
		}
		if _, dup := seen[v.ID]; dup {
			return "", fmt.Errorf("%w: %s", ErrDuplicateVariantID, v.ID)
		}
		seen[v.ID] = struct{}{}
		variants = append(variants, v)
	}

	testID, err := utils.GenerateID()
	if err != nil {
		return "", fmt.Errorf("erro ao gerar ID do teste: %w", err)
	}

	start := s.now()
	experiment := &domain.Experiment{
		TestID:       testID,
		Name:         req.Name,
		Variants:     variants,
		Metric:       req.Metric,
		DurationDays: req.DurationDays,
		StartTime:    start,
		EndTime:      start.AddDate(0, 0, req.DurationDays),
	}

	payload, err := json.Marshal(experiment)
	if err != nil {
		return "", fmt.Errorf("erro ao serializar experimento: %w", err)
	}

	if err := s.store.Put(ctx, experimentKeyPrefix+testID, string(payload)); err != nil {
		return "", err
	}
	if err := s.store.SetAdd(ctx, experimentsIndexKey, testID); err != nil {
		return "", err
	}

	// Zera os contadores de cada variante para que a primeira leitura já
	// encontre as chaves
	for _, v := range variants {
		for _, counter := range []string{"impressions", "conversions", "value"} {
			if _, err := s.store.Increment(ctx, s.counterKey(testID, v.ID, counter), 0); err != nil {
				logrus.WithFields(logrus.Fields{
					"test_id":    testID,
					"variant_id": v.ID,
					"counter":    counter,
					"error":      err.Error(),
				}).Warn("Erro ao inicializar contador da variante")
			}
		}
	}

	logrus.WithFields(logrus.Fields{
		"test_id":  testID,
		"variants": len(variants),
		"metric":   experiment.Metric,
	}).Info("Teste A/B criado")

	return testID, nil
}

func (s *Service) RecordImpression(ctx context.Context, testID, variantID, userID string) error {
	experiment, err := s.loadExperiment(ctx, testID)
	if err != nil {
		return err
	}
	if !experiment.HasVariant(variantID) {
		return fmt.Errorf("%w: %s", ErrVariantNotFound, variantID)
	}

	if _, err := s.store.Increment(ctx, s.counterKey(testID, variantID, "impressions"), 1); err != nil {
		return err
	}

	// Impressões contam por chamada; alcance conta usuários únicos
	if userID != "" {
		if err := s.store.SetAdd(ctx, s.usersKey(testID, variantID), userID); err != nil {
			return err
		}
	}

	return nil
}

func (s *Service) RecordConversion(ctx context.Context, testID, variantID, userID string, value float64) error {
	experiment, err := s.loadExperiment(ctx, testID)
	if err != nil {
		return err
	}
	if !experiment.HasVariant(variantID) {
		return fmt.Errorf("%w: %s", ErrVariantNotFound, variantID)
	}

	if _, err := s.store.Increment(ctx, s.counterKey(testID, variantID, "conversions"), 1); err != nil {
		return err
	}
	if value > 0 {
		if _, err := s.store.Increment(ctx, s.counterKey(testID, variantID, "value"), value); err != nil {
			return err
		}
	}
	if _, err := s.store.Increment(ctx, conversionsStatKey, 1); err != nil {
		logrus.WithError(err).Warn("Erro ao incrementar contador global de conversões")
	}

	s.bus.Publish(eventbus.EventConversionRecorded, map[string]any{
		"test_id":    testID,
		"variant_id": variantID,
		"user_id":    userID,
		"value":      value,
	})

	return nil
}

func (s *Service) GetResults(ctx context.Context, testID string) (*domain.ExperimentResults, error) {
	experiment, err := s.loadExperiment(ctx, testID)
	if err != nil {
		return nil, err
	}

	results := &domain.ExperimentResults{
		TestID:   experiment.TestID,
		Name:     experiment.Name,
		Metric:   experiment.Metric,
		Phase:    experiment.Phase(s.now()),
		Variants: make([]domain.VariantResult, 0, len(experiment.Variants)),
	}

	for _, v := range experiment.Variants {
		impressions, err := s.store.Increment(ctx, s.counterKey(testID, v.ID, "impressions"), 0)
		if err != nil {
			return nil, err
		}
		conversions, err := s.store.Increment(ctx, s.counterKey(testID, v.ID, "conversions"), 0)
		if err != nil {
			return nil, err
		}
		totalValue, err := s.store.Increment(ctx, s.counterKey(testID, v.ID, "value"), 0)
		if err != nil {
			return nil, err
		}
		exposedUsers, err := s.store.SetMembers(ctx, s.usersKey(testID, v.ID))
		if err != nil {
			return nil, err
		}

		// Divisor mínimo 1 evita NaN para variantes sem impressão
		rate := conversions / max(impressions, 1)

		results.Variants = append(results.Variants, domain.VariantResult{
			VariantID:      v.ID,
			VariantName:    v.Name,
			Impressions:    int64(impressions),
			UniqueReach:    int64(len(exposedUsers)),
			Conversions:    int64(conversions),
			ConversionRate: utils.RoundWithTwoDecimalPlace(rate * 100),
			TotalValue:     utils.RoundWithTwoDecimalPlace(totalValue),
		})
	}

	// Significância só é definida para o caso clássico de duas variantes;
	// correção multi-braço está explicitamente fora de escopo
	if len(results.Variants) == 2 {
		a, b := results.Variants[0], results.Variants[1]
		results.Significance = twoProportionZTest(
			float64(a.Conversions), float64(a.Impressions),
			float64(b.Conversions), float64(b.Impressions),
		)

		if results.Significance.IsSignificant {
			winner := a.VariantID
			if b.ConversionRate > a.ConversionRate {
				winner = b.VariantID
			}
			results.Winner = &winner
		}
	}

	return results, nil
}

func (s *Service) loadExperiment(ctx context.Context, testID string) (*domain.Experiment, error) {
	value, found, err := s.store.Get(ctx, experimentKeyPrefix+testID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrTestNotFound, testID)
	}

	var experiment domain.Experiment
	if err := json.Unmarshal([]byte(value), &experiment); err != nil {
		return nil, fmt.Errorf("erro ao decodificar experimento %s: %w", testID, err)
	}

	return &experiment, nil
}

func (s *Service) counterKey(testID, variantID, counter string) string {
	return fmt.Sprintf("%s%s:variant:%s:%s", experimentKeyPrefix, testID, variantID, counter)
}

func (s *Service) usersKey(testID, variantID string) string {
	return fmt.Sprintf("%s%s:variant:%s:users", experimentKeyPrefix, testID, variantID)
}
