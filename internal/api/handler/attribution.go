package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"
	"github.com/vfg2006/marketing-attribution-api/internal/domain"
	"github.com/vfg2006/marketing-attribution-api/internal/usecases/attributing"
	"github.com/vfg2006/marketing-attribution-api/internal/usecases/reporting"
	"github.com/vfg2006/marketing-attribution-api/pkg/apiErrors"
	"github.com/vfg2006/marketing-attribution-api/pkg/log"
)

type AttributionResponse struct {
	UserID      string             `json:"user_id"`
	Model       string             `json:"model"`
	Attribution map[string]float64 `json:"attribution"`
}

func GetUserAttribution(service attributing.AttributionService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		userID := httprouter.ParamsFromContext(r.Context()).ByName("id")
		if userID == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "ID do usuário não fornecido", nil)
			return
		}

		model := domain.AttributionModel(r.URL.Query().Get("model"))
		if model == "" {
			model = domain.ModelLastTouch
		}

		logger.WithFields(log.Fields{
			"user_id": userID,
			"model":   string(model),
		}).Info("attribution: computing attribution")

		attribution, err := service.ComputeAttribution(r.Context(), userID, model)
		if err != nil {
			switch {
			case errors.Is(err, attributing.ErrInvalidModel):
				logger.WithField("model", string(model)).Warn("attribution: unknown attribution model")
				apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, err.Error(), map[string]any{
					"model": string(model),
				})

			case errors.Is(err, attributing.ErrJourneyNotFound):
				apiErrors.WriteError(w, apiErrors.ErrResourceNotFound, "Jornada não encontrada para o usuário", nil)

			default:
				logger.WithFields(log.Fields{
					"user_id": userID,
					"error":   err.Error(),
				}).Error("attribution: failed to compute attribution")
				apiErrors.WriteError(w, apiErrors.ErrStoreOperation, "Erro ao calcular atribuição", nil)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(AttributionResponse{
			UserID:      userID,
			Model:       string(model),
			Attribution: attribution,
		})
	})
}

func GetAttributionReport(service reporting.ReportingService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		userID := httprouter.ParamsFromContext(r.Context()).ByName("id")
		if userID == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "ID do usuário não fornecido", nil)
			return
		}

		logger.WithField("user_id", userID).Info("attribution: building multi-model report")

		report, err := service.GetAttributionReport(r.Context(), userID)
		if err != nil {
			switch {
			case errors.Is(err, attributing.ErrJourneyNotFound):
				apiErrors.WriteError(w, apiErrors.ErrResourceNotFound, "Jornada não encontrada para o usuário", nil)

			default:
				logger.WithFields(log.Fields{
					"user_id": userID,
					"error":   err.Error(),
				}).Error("attribution: failed to build report")
				apiErrors.WriteError(w, apiErrors.ErrStoreOperation, "Erro ao montar relatório de atribuição", nil)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(report)
	})
}
