package handler

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/vfg2006/marketing-attribution-api/internal/usecases/orchestrating"
	"github.com/vfg2006/marketing-attribution-api/pkg/apiErrors"
	"github.com/vfg2006/marketing-attribution-api/pkg/log"
)

func LaunchCampaign(service orchestrating.OrchestratorService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		var req orchestrating.CampaignRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.WithError(err).Warn("campaigns: invalid request body")
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Formato de requisição inválido", nil)
			return
		}

		result, err := service.LaunchMultiChannelCampaign(r.Context(), &req)
		if err != nil {
			switch {
			case errors.Is(err, orchestrating.ErrNameRequired),
				errors.Is(err, orchestrating.ErrChannelsRequired),
				errors.Is(err, orchestrating.ErrInvalidBudget),
				errors.Is(err, orchestrating.ErrInvalidDuration):
				logger.WithError(err).Warn("campaigns: invalid campaign definition")
				apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, err.Error(), nil)

			default:
				logger.WithError(err).Error("campaigns: failed to launch campaign")
				apiErrors.WriteError(w, apiErrors.ErrStoreOperation, "Erro ao lançar campanha", nil)
			}
			return
		}

		logger.WithFields(log.Fields{
			"campaign_id": result.CampaignID,
			"channels":    len(result.Channels),
		}).Info("campaigns: campaign launched")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(result)
	})
}

func ListCampaigns(service orchestrating.OrchestratorService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		campaigns, err := service.ListCampaigns(r.Context())
		if err != nil {
			logger.WithError(err).Error("campaigns: failed to list campaigns")
			apiErrors.WriteError(w, apiErrors.ErrStoreOperation, "Erro ao listar campanhas", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(campaigns)
	})
}

func SendEmailCampaign(service orchestrating.OrchestratorService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		var req orchestrating.EmailCampaignRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.WithError(err).Warn("campaigns: invalid email request body")
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Formato de requisição inválido", nil)
			return
		}

		outcome, err := service.SendEmailCampaign(r.Context(), &req)
		if err != nil {
			logger.WithFields(log.Fields{
				"subject": req.Subject,
				"error":   err.Error(),
			}).Error("campaigns: failed to send email campaign")
			apiErrors.WriteError(w, apiErrors.ErrExternalService, "Erro ao enviar campanha de e-mail", nil)
			return
		}

		logger.WithFields(log.Fields{
			"subject": req.Subject,
			"status":  outcome.Status,
		}).Info("campaigns: email campaign dispatched")

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(outcome)
	})
}
