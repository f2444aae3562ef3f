package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/marketing-attribution-api/infrastructure/channels"
	"github.com/vfg2006/marketing-attribution-api/internal/config"
	"github.com/vfg2006/marketing-attribution-api/internal/domain"
	"github.com/vfg2006/marketing-attribution-api/internal/eventbus"
)

const stepTimeout = 60 * time.Second

// DefaultLaunchSteps é o plano padrão de um dia de lançamento de produto.
// Cada passo é agendado de forma independente: a falha do passo das 06:00
// não impede o das 12:00 de disparar ao meio-dia
var DefaultLaunchSteps = []domain.LaunchStep{
	{TimeOfDay: "06:00", Channel: channels.ChannelEmail, Action: "launch.announcement"},
	{TimeOfDay: "09:00", Channel: channels.ChannelAds, Action: "launch.ads.activate"},
	{TimeOfDay: "12:00", Channel: channels.ChannelNotification, Action: "launch.midday.checkpoint"},
	{TimeOfDay: "18:00", Channel: channels.ChannelEmail, Action: "launch.last_call"},
}

// LaunchSequenceService executa a sequência fixa de lançamento: uma lista de
// pares (horário do dia, ação) em que cada entrada vira um gatilho próprio no
// agendador. Os gatilhos não são transacionais entre si
type LaunchSequenceService struct {
	scheduler *gocron.Scheduler
	adapters  map[string]channels.Adapter
	bus       *eventbus.Bus
	enabled   bool

	mu        sync.Mutex
	scheduled []domain.LaunchStep
}

// NewLaunchSequenceService cria uma nova instância do executor da sequência
// de lançamento
func NewLaunchSequenceService(
	appConfig *config.Config,
	bus *eventbus.Bus,
	adapters ...channels.Adapter,
) *LaunchSequenceService {
	byName := make(map[string]channels.Adapter, len(adapters))
	for _, adapter := range adapters {
		byName[adapter.Name()] = adapter
	}

	return &LaunchSequenceService{
		scheduler: gocron.NewScheduler(time.Local),
		adapters:  byName,
		bus:       bus,
		enabled:   appConfig.LaunchSequence.Enabled,
	}
}

// Start agenda os passos padrão e inicia o agendador
func (s *LaunchSequenceService) Start(ctx context.Context) error {
	if !s.enabled {
		logrus.Info("Sequência de lançamento desabilitada por configuração")
		return nil
	}

	if err := s.Schedule(DefaultLaunchSteps); err != nil {
		return err
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Parando agendador da sequência de lançamento")
		s.scheduler.Stop()
	}()

	return nil
}

// Schedule registra cada passo como um gatilho diário independente. Um
// horário malformado invalida apenas o próprio passo
func (s *LaunchSequenceService) Schedule(steps []domain.LaunchStep) error {
	var firstErr error

	for _, step := range steps {
		step := step

		_, err := s.scheduler.Every(1).Day().At(step.TimeOfDay).Do(func() {
			s.runStep(step)
		})
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"time_of_day": step.TimeOfDay,
				"channel":     step.Channel,
				"action":      step.Action,
				"error":       err.Error(),
			}).Error("Erro ao agendar passo da sequência de lançamento")

			if firstErr == nil {
				firstErr = fmt.Errorf("erro ao agendar passo %s: %w", step.TimeOfDay, err)
			}
			continue
		}

		s.mu.Lock()
		s.scheduled = append(s.scheduled, step)
		s.mu.Unlock()

		logrus.WithFields(logrus.Fields{
			"time_of_day": step.TimeOfDay,
			"channel":     step.Channel,
			"action":      step.Action,
		}).Info("Passo da sequência de lançamento agendado")
	}

	return firstErr
}

// runStep despacha um único passo. Falhas ficam no log e no barramento; o
// agendador segue vivo para os próximos gatilhos
func (s *LaunchSequenceService) runStep(step domain.LaunchStep) {
	ctx, cancel := context.WithTimeout(context.Background(), stepTimeout)
	defer cancel()

	adapter, ok := s.adapters[step.Channel]
	if !ok {
		logrus.WithFields(logrus.Fields{
			"channel": step.Channel,
			"action":  step.Action,
		}).Error("Passo da sequência sem adaptador configurado")
		return
	}

	cfg := step.Config
	if cfg == nil {
		cfg = map[string]any{}
	}

	result, err := adapter.Send(ctx, step.Action, cfg)
	status := domain.DispatchFulfilled
	if err != nil {
		status = domain.DispatchRejected
		logrus.WithFields(logrus.Fields{
			"channel": step.Channel,
			"action":  step.Action,
			"error":   err.Error(),
		}).Error("Erro ao executar passo da sequência de lançamento")
	}

	payload := map[string]any{
		"time_of_day": step.TimeOfDay,
		"channel":     step.Channel,
		"action":      step.Action,
		"status":      status,
	}
	if result != nil {
		payload["result"] = result
	}

	s.bus.Publish(eventbus.EventLaunchStepCompleted, payload)
}

// TriggerManualSync executa imediatamente todos os passos agendados, fora do
// horário nominal
func (s *LaunchSequenceService) TriggerManualSync() {
	s.mu.Lock()
	steps := make([]domain.LaunchStep, len(s.scheduled))
	copy(steps, s.scheduled)
	s.mu.Unlock()

	logrus.WithField("steps", len(steps)).Info("Execução manual da sequência de lançamento")

	go func() {
		for _, step := range steps {
			s.runStep(step)
		}
	}()
}

// GetStatus retorna o status atual do agendador
func (s *LaunchSequenceService) GetStatus() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	steps := make([]map[string]string, 0, len(s.scheduled))
	for _, step := range s.scheduled {
		steps = append(steps, map[string]string{
			"time_of_day": step.TimeOfDay,
			"channel":     step.Channel,
			"action":      step.Action,
		})
	}

	return map[string]any{
		"enabled": s.enabled,
		"steps":   steps,
	}
}
