package scheduler

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/marketing-attribution-api/infrastructure/channels"
	"github.com/vfg2006/marketing-attribution-api/infrastructure/channels/mocks"
	"github.com/vfg2006/marketing-attribution-api/internal/domain"
	"github.com/vfg2006/marketing-attribution-api/internal/eventbus"
	"go.uber.org/mock/gomock"
)

func newLaunchSequenceForTest(bus *eventbus.Bus, adapters map[string]channels.Adapter) *LaunchSequenceService {
	return &LaunchSequenceService{
		scheduler: gocron.NewScheduler(time.Local),
		adapters:  adapters,
		bus:       bus,
		enabled:   true,
	}
}

func TestLaunchSequenceService_Schedule(t *testing.T) {
	t.Run("Deve agendar todos os passos do plano padrão", func(t *testing.T) {
		service := newLaunchSequenceForTest(eventbus.New(), map[string]channels.Adapter{})

		err := service.Schedule(DefaultLaunchSteps)

		require.NoError(t, err)
		status := service.GetStatus()
		assert.Len(t, status["steps"], len(DefaultLaunchSteps))
	})

	t.Run("Horário malformado invalida apenas o próprio passo", func(t *testing.T) {
		service := newLaunchSequenceForTest(eventbus.New(), map[string]channels.Adapter{})

		steps := []domain.LaunchStep{
			{TimeOfDay: "06:00", Channel: channels.ChannelEmail, Action: "launch.announcement"},
			{TimeOfDay: "meio-dia", Channel: channels.ChannelAds, Action: "launch.ads.activate"},
			{TimeOfDay: "18:00", Channel: channels.ChannelEmail, Action: "launch.last_call"},
		}

		err := service.Schedule(steps)

		assert.Error(t, err)
		status := service.GetStatus()
		assert.Len(t, status["steps"], 2)
	})
}

func TestLaunchSequenceService_RunStep(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	t.Run("Passo bem-sucedido publica evento fulfilled", func(t *testing.T) {
		bus := eventbus.New()
		var mu sync.Mutex
		var events []eventbus.Event
		bus.Subscribe(eventbus.EventLaunchStepCompleted, func(event eventbus.Event) {
			mu.Lock()
			defer mu.Unlock()
			events = append(events, event)
		})

		emailAdapter := mocks.NewMockAdapter(ctrl)
		emailAdapter.EXPECT().
			Send(gomock.Any(), "launch.announcement", gomock.Any()).
			Return(map[string]any{"sent": true}, nil)

		service := newLaunchSequenceForTest(bus, map[string]channels.Adapter{
			channels.ChannelEmail: emailAdapter,
		})

		service.runStep(domain.LaunchStep{
			TimeOfDay: "06:00",
			Channel:   channels.ChannelEmail,
			Action:    "launch.announcement",
		})

		mu.Lock()
		defer mu.Unlock()
		require.Len(t, events, 1)
		assert.Equal(t, domain.DispatchFulfilled, events[0].Payload["status"])
		assert.Equal(t, "launch.announcement", events[0].Payload["action"])
	})

	t.Run("Falha do adaptador publica evento rejected", func(t *testing.T) {
		bus := eventbus.New()
		var events []eventbus.Event
		bus.Subscribe(eventbus.EventLaunchStepCompleted, func(event eventbus.Event) {
			events = append(events, event)
		})

		adsAdapter := mocks.NewMockAdapter(ctrl)
		adsAdapter.EXPECT().
			Send(gomock.Any(), "launch.ads.activate", gomock.Any()).
			Return(nil, errors.New("plataforma indisponível"))

		service := newLaunchSequenceForTest(bus, map[string]channels.Adapter{
			channels.ChannelAds: adsAdapter,
		})

		service.runStep(domain.LaunchStep{
			TimeOfDay: "09:00",
			Channel:   channels.ChannelAds,
			Action:    "launch.ads.activate",
		})

		require.Len(t, events, 1)
		assert.Equal(t, domain.DispatchRejected, events[0].Payload["status"])
	})

	t.Run("Passo sem adaptador não publica evento nem quebra", func(t *testing.T) {
		bus := eventbus.New()
		var events []eventbus.Event
		bus.Subscribe(eventbus.EventLaunchStepCompleted, func(event eventbus.Event) {
			events = append(events, event)
		})

		service := newLaunchSequenceForTest(bus, map[string]channels.Adapter{})

		require.NotPanics(t, func() {
			service.runStep(domain.LaunchStep{
				TimeOfDay: "12:00",
				Channel:   "fax",
				Action:    "launch.fax",
			})
		})
		assert.Empty(t, events)
	})
}
