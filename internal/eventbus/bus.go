// Package eventbus é o mecanismo de publish/subscribe em processo que
// desacopla "uma conversão aconteceu" de "portanto notifique o chat e
// atualize o CRM". O barramento é construído explicitamente e passado por
// referência; não existe singleton de processo
package eventbus

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Nomes dos eventos de negócio publicados pelo núcleo
const (
	EventTouchpointRecorded  = "touchpoint.recorded"
	EventConversionRecorded  = "conversion.recorded"
	EventCampaignLaunched    = "campaign.launched"
	EventLaunchStepCompleted = "launch.step.completed"
)

// Event é um evento de negócio publicado no barramento
type Event struct {
	Name       string
	Payload    map[string]any
	OccurredAt time.Time
}

// Listener recebe eventos de forma síncrona. Trabalho assíncrono do próprio
// listener (enviar uma notificação, por exemplo) deve ser disparado em
// goroutine própria: o publicador não espera
type Listener func(event Event)

// Bus implementa publish/subscribe em processo. Listeners são invocados na
// ordem de registro, no mesmo passo lógico do Publish
type Bus struct {
	mu        sync.RWMutex
	listeners map[string][]Listener
}

func New() *Bus {
	return &Bus{
		listeners: make(map[string][]Listener),
	}
}

// Subscribe registra um listener para o evento nomeado
func (b *Bus) Subscribe(eventName string, listener Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners[eventName] = append(b.listeners[eventName], listener)
}

// Publish entrega o evento a todos os listeners registrados, em ordem de
// registro. Entrega é de melhor esforço, no máximo uma vez: um panic em um
// listener é logado e não interrompe os demais
func (b *Bus) Publish(eventName string, payload map[string]any) {
	b.mu.RLock()
	listeners := make([]Listener, len(b.listeners[eventName]))
	copy(listeners, b.listeners[eventName])
	b.mu.RUnlock()

	event := Event{
		Name:       eventName,
		Payload:    payload,
		OccurredAt: time.Now(),
	}

	for _, listener := range listeners {
		b.dispatch(listener, event)
	}
}

func (b *Bus) dispatch(listener Listener, event Event) {
	defer func() {
		if r := recover(); r != nil {
			logrus.WithFields(logrus.Fields{
				"event": event.Name,
				"panic": r,
			}).Error("Panic em listener do event bus")
		}
	}()

	listener(event)
}
