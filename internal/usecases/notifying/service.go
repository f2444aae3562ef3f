// Package notifying assina os eventos de negócio do barramento e dispara os
// efeitos colaterais externos (alerta no chat, atualização de CRM). A entrega
// é de melhor esforço, no máximo uma vez: o envio roda em goroutine própria e
// o publicador nunca espera
package notifying

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/marketing-attribution-api/infrastructure/channels"
	"github.com/vfg2006/marketing-attribution-api/internal/eventbus"
)

const sendTimeout = 30 * time.Second

type Service struct {
	notifier channels.Adapter
}

// NewService registra os assinantes no barramento e devolve o serviço. O
// registro acontece na construção; a ordem de construção no main define a
// ordem de invocação dos listeners
func NewService(bus *eventbus.Bus, notifier channels.Adapter) *Service {
	s := &Service{notifier: notifier}

	bus.Subscribe(eventbus.EventConversionRecorded, s.onConversionRecorded)
	bus.Subscribe(eventbus.EventCampaignLaunched, s.onCampaignLaunched)
	bus.Subscribe(eventbus.EventLaunchStepCompleted, s.onLaunchStepCompleted)

	return s
}

func (s *Service) onConversionRecorded(event eventbus.Event) {
	message := fmt.Sprintf(
		"Conversão registrada no teste %v (variante %v)",
		event.Payload["test_id"], event.Payload["variant_id"],
	)
	s.sendAsync("conversion.alert", message, event.Payload)
}

func (s *Service) onCampaignLaunched(event eventbus.Event) {
	message := fmt.Sprintf("Campanha %v lançada", event.Payload["name"])
	s.sendAsync("campaign.alert", message, event.Payload)
}

func (s *Service) onLaunchStepCompleted(event eventbus.Event) {
	logrus.WithFields(logrus.Fields{
		"channel": event.Payload["channel"],
		"action":  event.Payload["action"],
	}).Info("Passo da sequência de lançamento concluído")
}

// sendAsync dispara a notificação sem bloquear o caminho quente de quem
// publicou o evento
func (s *Service) sendAsync(action, message string, payload map[string]any) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()

		cfg := map[string]any{"message": message}
		for k, v := range payload {
			cfg[k] = v
		}

		if _, err := s.notifier.Send(ctx, action, cfg); err != nil {
			logrus.WithFields(logrus.Fields{
				"action": action,
				"error":  err.Error(),
			}).Warn("Erro ao enviar notificação de evento de negócio")
		}
	}()
}
