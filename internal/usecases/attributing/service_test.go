package attributing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/marketing-attribution-api/infrastructure/eventstore"
	"github.com/vfg2006/marketing-attribution-api/internal/domain"
	"github.com/vfg2006/marketing-attribution-api/internal/eventbus"
)

// Data de referência fixa para os testes de atribuição
var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestService() *Service {
	return &Service{
		store:        eventstore.NewMemoryStore(),
		bus:          eventbus.New(),
		halfLifeDays: 7,
		now:          func() time.Time { return testNow },
	}
}

// daysAgo devolve o timestamp em milissegundos de N dias antes da data de referência
func daysAgo(days float64) int64 {
	return testNow.Add(-time.Duration(days * 24 * float64(time.Hour))).UnixMilli()
}

func recordJourney(t *testing.T, service *Service, userID string, sources []string) {
	t.Helper()

	for i, source := range sources {
		_, err := service.RecordTouchpoint(context.Background(), &domain.Touchpoint{
			UserID:    userID,
			Source:    source,
			Timestamp: daysAgo(float64(len(sources) - i)),
		})
		require.NoError(t, err)
	}
}

func TestService_RecordTouchpoint(t *testing.T) {
	tests := []struct {
		name        string
		touchpoint  *domain.Touchpoint
		expectedErr error
		validate    func(t *testing.T, service *Service, id string)
	}{
		{
			name:        "Deve rejeitar touchpoint sem user_id",
			touchpoint:  &domain.Touchpoint{Source: "google"},
			expectedErr: ErrUserIDRequired,
		},
		{
			name:        "Deve rejeitar touchpoint sem source",
			touchpoint:  &domain.Touchpoint{UserID: "u1"},
			expectedErr: ErrSourceRequired,
		},
		{
			name: "Deve aplicar sentinelas para tráfego sem tag",
			touchpoint: &domain.Touchpoint{
				UserID:    "u1",
				Source:    "direct",
				Timestamp: daysAgo(1),
			},
			validate: func(t *testing.T, service *Service, id string) {
				journey, err := service.loadJourney(context.Background(), "u1")
				require.NoError(t, err)
				require.Len(t, journey, 1)
				assert.Equal(t, domain.DefaultMedium, journey[0].Medium)
				assert.Equal(t, domain.DefaultCampaign, journey[0].Campaign)
			},
		},
		{
			name: "Deve devolver o identificador opaco user:timestamp",
			touchpoint: &domain.Touchpoint{
				UserID:    "u2",
				Source:    "google",
				Timestamp: 1700000000000,
			},
			validate: func(t *testing.T, service *Service, id string) {
				assert.Equal(t, "u2:1700000000000", id)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := newTestService()

			id, err := service.RecordTouchpoint(context.Background(), tt.touchpoint)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				return
			}

			require.NoError(t, err)
			if tt.validate != nil {
				tt.validate(t, service, id)
			}
		})
	}
}

func TestService_RecordTouchpoint_AtualizaContadoresGlobais(t *testing.T) {
	service := newTestService()
	recordJourney(t, service, "u1", []string{"google", "facebook"})
	recordJourney(t, service, "u2", []string{"email"})

	total, err := service.store.Increment(context.Background(), touchpointsStatKey, 0)
	require.NoError(t, err)
	assert.Equal(t, 3.0, total)

	users, err := service.store.SetMembers(context.Background(), trackedUsersStatKey)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestService_ComputeAttribution(t *testing.T) {
	tests := []struct {
		name     string
		sources  []string
		model    domain.AttributionModel
		expected map[string]float64
	}{
		{
			name:     "first_touch deve dar todo o crédito à primeira origem",
			sources:  []string{"google", "facebook", "email"},
			model:    domain.ModelFirstTouch,
			expected: map[string]float64{"google": 100},
		},
		{
			name:     "last_touch deve dar todo o crédito à última origem",
			sources:  []string{"google", "facebook", "email"},
			model:    domain.ModelLastTouch,
			expected: map[string]float64{"email": 100},
		},
		{
			name:     "linear deve somar crédito de origens repetidas",
			sources:  []string{"google", "google", "facebook"},
			model:    domain.ModelLinear,
			expected: map[string]float64{"google": 66.67, "facebook": 33.33},
		},
		{
			name:     "u_shaped com dois touchpoints soma 80 sem renormalizar",
			sources:  []string{"google", "facebook"},
			model:    domain.ModelUShaped,
			expected: map[string]float64{"google": 40, "facebook": 40},
		},
		{
			name:     "u_shaped com um touchpoint deve dar 100",
			sources:  []string{"google"},
			model:    domain.ModelUShaped,
			expected: map[string]float64{"google": 100},
		},
		{
			name:     "u_shaped com quatro touchpoints divide 20 entre os interiores",
			sources:  []string{"google", "facebook", "email", "referral"},
			model:    domain.ModelUShaped,
			expected: map[string]float64{"google": 40, "facebook": 10, "email": 10, "referral": 40},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := newTestService()
			recordJourney(t, service, "u1", tt.sources)

			credits, err := service.ComputeAttribution(context.Background(), "u1", tt.model)

			require.NoError(t, err)
			assert.Equal(t, tt.expected, credits)
		})
	}
}

func TestService_ComputeAttribution_ModeloDesconhecido(t *testing.T) {
	service := newTestService()
	recordJourney(t, service, "u1", []string{"google"})

	_, err := service.ComputeAttribution(context.Background(), "u1", "position_based")

	assert.ErrorIs(t, err, ErrInvalidModel)
}

func TestService_ComputeAttribution_JornadaInexistente(t *testing.T) {
	service := newTestService()

	_, err := service.ComputeAttribution(context.Background(), "desconhecido", domain.ModelLinear)

	assert.ErrorIs(t, err, ErrJourneyNotFound)
}

func TestTimeDecay_TouchpointsRecentesPesamMais(t *testing.T) {
	service := newTestService()

	// Jornada com o mesmo par de origens em idades diferentes: a mais
	// recente deve receber mais crédito
	_, err := service.RecordTouchpoint(context.Background(), &domain.Touchpoint{
		UserID: "u1", Source: "antiga", Timestamp: daysAgo(14),
	})
	require.NoError(t, err)
	_, err = service.RecordTouchpoint(context.Background(), &domain.Touchpoint{
		UserID: "u1", Source: "recente", Timestamp: daysAgo(1),
	})
	require.NoError(t, err)

	credits, err := service.ComputeAttribution(context.Background(), "u1", domain.ModelTimeDecay)
	require.NoError(t, err)

	assert.Greater(t, credits["recente"], credits["antiga"])
	assert.InDelta(t, 100, credits["recente"]+credits["antiga"], 0.02)
}

func TestTimeDecay_MeiaVidaDeSeteDias(t *testing.T) {
	// Dois touchpoints separados por exatamente uma meia-vida: o mais
	// antigo deve pesar metade do mais recente (1/3 vs 2/3 do total)
	journey := []domain.Touchpoint{
		{Source: "antiga", Timestamp: daysAgo(7)},
		{Source: "recente", Timestamp: daysAgo(0)},
	}

	credits := timeDecay(journey, testNow, 7)

	assert.InDelta(t, 33.33, credits["antiga"], 0.01)
	assert.InDelta(t, 66.67, credits["recente"], 0.01)
}

func TestService_BuildReport(t *testing.T) {
	service := newTestService()
	recordJourney(t, service, "u1", []string{"google", "facebook", "email"})

	report, err := service.BuildReport(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, "u1", report.UserID)
	assert.Equal(t, 3, report.Touchpoints)
	assert.Len(t, report.Models, len(domain.AllAttributionModels))
	assert.Equal(t, map[string]float64{"google": 100}, report.Models[domain.ModelFirstTouch])
	assert.Equal(t, map[string]float64{"email": 100}, report.Models[domain.ModelLastTouch])
}

func TestService_BuildReport_JornadaInexistente(t *testing.T) {
	service := newTestService()

	_, err := service.BuildReport(context.Background(), "desconhecido")

	assert.ErrorIs(t, err, ErrJourneyNotFound)
}
