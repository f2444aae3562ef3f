package experimenting

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/marketing-attribution-api/infrastructure/eventstore"
	"github.com/vfg2006/marketing-attribution-api/internal/domain"
	"github.com/vfg2006/marketing-attribution-api/internal/eventbus"
)

func newTestService() *Service {
	return &Service{
		store: eventstore.NewMemoryStore(),
		bus:   eventbus.New(),
		now:   func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) },
	}
}

func newTestRequest() *CreateTestRequest {
	return &CreateTestRequest{
		Name: "CTA do botão de compra",
		Variants: []domain.Variant{
			{ID: "control", Name: "Comprar agora"},
			{ID: "treatment", Name: "Garanta o seu"},
		},
		Metric:       "purchase",
		DurationDays: 14,
	}
}

func TestService_CreateTest_Validacao(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(req *CreateTestRequest)
		expectedErr error
	}{
		{
			name:        "Deve rejeitar teste sem nome",
			mutate:      func(req *CreateTestRequest) { req.Name = "" },
			expectedErr: ErrNameRequired,
		},
		{
			name:        "Deve rejeitar teste com menos de duas variantes",
			mutate:      func(req *CreateTestRequest) { req.Variants = req.Variants[:1] },
			expectedErr: ErrNotEnoughVariants,
		},
		{
			name:        "Deve rejeitar duração menor que um dia",
			mutate:      func(req *CreateTestRequest) { req.DurationDays = 0 },
			expectedErr: ErrInvalidDuration,
		},
		{
			name: "Deve rejeitar variantes com identificadores duplicados",
			mutate: func(req *CreateTestRequest) {
				req.Variants = []domain.Variant{{ID: "a"}, {ID: "a"}}
			},
			expectedErr: ErrDuplicateVariantID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := newTestService()
			req := newTestRequest()
			tt.mutate(req)

			_, err := service.CreateTest(context.Background(), req)

			assert.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

func TestService_CreateTest_PersisteComContadoresZerados(t *testing.T) {
	service := newTestService()

	testID, err := service.CreateTest(context.Background(), newTestRequest())
	require.NoError(t, err)
	require.NotEmpty(t, testID)

	results, err := service.GetResults(context.Background(), testID)
	require.NoError(t, err)

	assert.Equal(t, testID, results.TestID)
	assert.Equal(t, "CTA do botão de compra", results.Name)
	require.Len(t, results.Variants, 2)
	for _, v := range results.Variants {
		assert.Zero(t, v.Impressions)
		assert.Zero(t, v.Conversions)
		assert.Zero(t, v.ConversionRate)
		assert.Zero(t, v.TotalValue)
	}
}

func TestService_CreateTest_GeraIDsParaVariantesSemID(t *testing.T) {
	service := newTestService()
	req := newTestRequest()
	req.Variants = []domain.Variant{{Name: "A"}, {Name: "B"}}

	testID, err := service.CreateTest(context.Background(), req)
	require.NoError(t, err)

	experiment, err := service.loadExperiment(context.Background(), testID)
	require.NoError(t, err)
	assert.NotEmpty(t, experiment.Variants[0].ID)
	assert.NotEmpty(t, experiment.Variants[1].ID)
	assert.NotEqual(t, experiment.Variants[0].ID, experiment.Variants[1].ID)
}

func TestService_RecordImpression(t *testing.T) {
	service := newTestService()
	testID, err := service.CreateTest(context.Background(), newTestRequest())
	require.NoError(t, err)

	t.Run("Deve rejeitar teste inexistente", func(t *testing.T) {
		err := service.RecordImpression(context.Background(), "nao-existe", "control", "u1")
		assert.ErrorIs(t, err, ErrTestNotFound)
	})

	t.Run("Deve rejeitar variante que não pertence ao teste", func(t *testing.T) {
		err := service.RecordImpression(context.Background(), testID, "intrusa", "u1")
		assert.ErrorIs(t, err, ErrVariantNotFound)
	})

	t.Run("Impressões contam por chamada e alcance por usuário único", func(t *testing.T) {
		require.NoError(t, service.RecordImpression(context.Background(), testID, "control", "u1"))
		require.NoError(t, service.RecordImpression(context.Background(), testID, "control", "u1"))
		require.NoError(t, service.RecordImpression(context.Background(), testID, "control", "u2"))

		results, err := service.GetResults(context.Background(), testID)
		require.NoError(t, err)

		control := results.Variants[0]
		assert.Equal(t, int64(3), control.Impressions)
		assert.Equal(t, int64(2), control.UniqueReach)
	})
}

func TestService_RecordConversion_AcumulaValorMonetario(t *testing.T) {
	service := newTestService()
	testID, err := service.CreateTest(context.Background(), newTestRequest())
	require.NoError(t, err)

	require.NoError(t, service.RecordImpression(context.Background(), testID, "control", "u1"))
	require.NoError(t, service.RecordConversion(context.Background(), testID, "control", "u1", 49.90))
	require.NoError(t, service.RecordConversion(context.Background(), testID, "control", "u2", 19.90))

	results, err := service.GetResults(context.Background(), testID)
	require.NoError(t, err)

	control := results.Variants[0]
	assert.Equal(t, int64(2), control.Conversions)
	assert.InDelta(t, 69.80, control.TotalValue, 0.001)
}

func TestService_RecordConversion_PublicaEventoDeNegocio(t *testing.T) {
	service := newTestService()
	testID, err := service.CreateTest(context.Background(), newTestRequest())
	require.NoError(t, err)

	var received []eventbus.Event
	service.bus.Subscribe(eventbus.EventConversionRecorded, func(event eventbus.Event) {
		received = append(received, event)
	})

	require.NoError(t, service.RecordConversion(context.Background(), testID, "control", "u1", 10))

	require.Len(t, received, 1)
	assert.Equal(t, testID, received[0].Payload["test_id"])
	assert.Equal(t, "control", received[0].Payload["variant_id"])
}

func TestService_RecordImpression_Concorrente(t *testing.T) {
	service := newTestService()
	testID, err := service.CreateTest(context.Background(), newTestRequest())
	require.NoError(t, err)

	const workers = 1000

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_ = service.RecordImpression(context.Background(), testID, "control", "u1")
		}()
	}
	wg.Wait()

	results, err := service.GetResults(context.Background(), testID)
	require.NoError(t, err)

	// Nenhum incremento pode se perder por corrida
	assert.Equal(t, int64(workers), results.Variants[0].Impressions)
}

func TestService_GetResults_Significancia(t *testing.T) {
	tests := []struct {
		name            string
		impressions     [2]int
		conversions     [2]int
		wantSignificant bool
		wantWinner      *string
	}{
		{
			name:            "Diferença pequena não deve declarar vencedor",
			impressions:     [2]int{100, 100},
			conversions:     [2]int{10, 11},
			wantSignificant: false,
			wantWinner:      nil,
		},
		{
			name:            "Diferença grande deve declarar o braço de maior taxa",
			impressions:     [2]int{1000, 1000},
			conversions:     [2]int{50, 250},
			wantSignificant: true,
			wantWinner:      stringPtr("treatment"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := newTestService()
			testID, err := service.CreateTest(context.Background(), newTestRequest())
			require.NoError(t, err)

			ctx := context.Background()
			variantIDs := []string{"control", "treatment"}
			for i, variantID := range variantIDs {
				for n := 0; n < tt.impressions[i]; n++ {
					require.NoError(t, service.RecordImpression(ctx, testID, variantID, ""))
				}
				for n := 0; n < tt.conversions[i]; n++ {
					require.NoError(t, service.RecordConversion(ctx, testID, variantID, "", 0))
				}
			}

			results, err := service.GetResults(ctx, testID)
			require.NoError(t, err)

			require.NotNil(t, results.Significance)
			assert.Equal(t, tt.wantSignificant, results.Significance.IsSignificant)

			if tt.wantWinner == nil {
				assert.Nil(t, results.Winner)
			} else {
				require.NotNil(t, results.Winner)
				assert.Equal(t, *tt.wantWinner, *results.Winner)
			}
		})
	}
}

func TestService_GetResults_TresVariantesSemSignificancia(t *testing.T) {
	service := newTestService()
	req := newTestRequest()
	req.Variants = append(req.Variants, domain.Variant{ID: "challenger", Name: "Leve já"})

	testID, err := service.CreateTest(context.Background(), req)
	require.NoError(t, err)

	results, err := service.GetResults(context.Background(), testID)
	require.NoError(t, err)

	// Correção multi-braço fica fora de escopo: sem veredito estatístico
	assert.Nil(t, results.Significance)
	assert.Nil(t, results.Winner)
}

func TestService_GetResults_TesteInexistente(t *testing.T) {
	service := newTestService()

	_, err := service.GetResults(context.Background(), "nao-existe")

	assert.ErrorIs(t, err, ErrTestNotFound)
}

func stringPtr(s string) *string {
	return &s
}
