package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"
	"github.com/vfg2006/marketing-attribution-api/internal/usecases/experimenting"
	"github.com/vfg2006/marketing-attribution-api/pkg/apiErrors"
	"github.com/vfg2006/marketing-attribution-api/pkg/log"
)

type CreateExperimentResponse struct {
	TestID string `json:"test_id"`
}

// ExperimentEventRequest é o corpo dos endpoints de impressão e conversão.
// Value só é lido pelo endpoint de conversão
type ExperimentEventRequest struct {
	VariantID string  `json:"variant_id"`
	UserID    string  `json:"user_id"`
	Value     float64 `json:"value"`
}

func CreateExperiment(service experimenting.ExperimentService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		var req experimenting.CreateTestRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.WithError(err).Warn("experiments: invalid request body")
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Formato de requisição inválido", nil)
			return
		}

		testID, err := service.CreateTest(r.Context(), &req)
		if err != nil {
			switch {
			case errors.Is(err, experimenting.ErrNameRequired),
				errors.Is(err, experimenting.ErrNotEnoughVariants),
				errors.Is(err, experimenting.ErrInvalidDuration),
				errors.Is(err, experimenting.ErrDuplicateVariantID):
				logger.WithError(err).Warn("experiments: invalid test definition")
				apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, err.Error(), nil)

			default:
				logger.WithError(err).Error("experiments: failed to create test")
				apiErrors.WriteError(w, apiErrors.ErrStoreOperation, "Erro ao criar teste A/B", nil)
			}
			return
		}

		logger.WithFields(log.Fields{
			"test_id": testID,
			"name":    req.Name,
		}).Info("experiments: test created")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(CreateExperimentResponse{TestID: testID})
	})
}

func RecordImpression(service experimenting.ExperimentService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		testID := httprouter.ParamsFromContext(r.Context()).ByName("id")

		var req ExperimentEventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Formato de requisição inválido", nil)
			return
		}

		err := service.RecordImpression(r.Context(), testID, req.VariantID, req.UserID)
		if err != nil {
			writeExperimentEventError(w, logger, testID, req.VariantID, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	})
}

func RecordConversion(service experimenting.ExperimentService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		testID := httprouter.ParamsFromContext(r.Context()).ByName("id")

		var req ExperimentEventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Formato de requisição inválido", nil)
			return
		}

		err := service.RecordConversion(r.Context(), testID, req.VariantID, req.UserID, req.Value)
		if err != nil {
			writeExperimentEventError(w, logger, testID, req.VariantID, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	})
}

func GetExperimentResults(service experimenting.ExperimentService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		testID := httprouter.ParamsFromContext(r.Context()).ByName("id")
		logger.WithField("test_id", testID).Info("experiments: computing live results")

		results, err := service.GetResults(r.Context(), testID)
		if err != nil {
			switch {
			case errors.Is(err, experimenting.ErrTestNotFound):
				apiErrors.WriteError(w, apiErrors.ErrResourceNotFound, "Teste não encontrado", nil)

			default:
				logger.WithFields(log.Fields{
					"test_id": testID,
					"error":   err.Error(),
				}).Error("experiments: failed to compute results")
				apiErrors.WriteError(w, apiErrors.ErrStoreOperation, "Erro ao calcular resultados do teste", nil)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(results)
	})
}

// writeExperimentEventError mapeia os erros dos endpoints de impressão e
// conversão para a resposta padronizada
func writeExperimentEventError(w http.ResponseWriter, logger log.Logger, testID, variantID string, err error) {
	switch {
	case errors.Is(err, experimenting.ErrTestNotFound):
		apiErrors.WriteError(w, apiErrors.ErrResourceNotFound, "Teste não encontrado", nil)

	case errors.Is(err, experimenting.ErrVariantNotFound):
		apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Variante não pertence ao teste", map[string]any{
			"variant_id": variantID,
		})

	default:
		logger.WithFields(log.Fields{
			"test_id":    testID,
			"variant_id": variantID,
			"error":      err.Error(),
		}).Error("experiments: failed to record event")
		apiErrors.WriteError(w, apiErrors.ErrStoreOperation, "Erro ao registrar evento do teste", nil)
	}
}
