package eventbus

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_Publish_OrdemDeRegistro(t *testing.T) {
	bus := New()

	var order []string
	bus.Subscribe("pedido.criado", func(Event) { order = append(order, "primeiro") })
	bus.Subscribe("pedido.criado", func(Event) { order = append(order, "segundo") })
	bus.Subscribe("pedido.criado", func(Event) { order = append(order, "terceiro") })

	bus.Publish("pedido.criado", nil)

	assert.Equal(t, []string{"primeiro", "segundo", "terceiro"}, order)
}

func TestBus_Publish_EntregaPayloadENome(t *testing.T) {
	bus := New()

	var received Event
	bus.Subscribe(EventConversionRecorded, func(event Event) { received = event })

	bus.Publish(EventConversionRecorded, map[string]any{"user_id": "u1"})

	assert.Equal(t, EventConversionRecorded, received.Name)
	assert.Equal(t, "u1", received.Payload["user_id"])
	assert.False(t, received.OccurredAt.IsZero())
}

func TestBus_Publish_SemListenersNaoQuebra(t *testing.T) {
	bus := New()

	require.NotPanics(t, func() {
		bus.Publish("evento.sem.ninguem", map[string]any{"x": 1})
	})
}

func TestBus_Publish_PanicEmListenerNaoInterrompeOsDemais(t *testing.T) {
	bus := New()

	var survived bool
	bus.Subscribe("fragil", func(Event) { panic("listener quebrado") })
	bus.Subscribe("fragil", func(Event) { survived = true })

	require.NotPanics(t, func() {
		bus.Publish("fragil", nil)
	})
	assert.True(t, survived)
}

func TestBus_SubscribeConcorrente(t *testing.T) {
	bus := New()

	const subscribers = 100

	var wg sync.WaitGroup
	wg.Add(subscribers)
	for i := 0; i < subscribers; i++ {
		go func() {
			defer wg.Done()
			bus.Subscribe("concorrente", func(Event) {})
		}()
	}
	wg.Wait()

	var delivered int
	bus.Subscribe("concorrente", func(Event) { delivered++ })
	bus.Publish("concorrente", nil)

	assert.Equal(t, 1, delivered)
}
