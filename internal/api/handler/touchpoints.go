package handler

import (
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/vfg2006/marketing-attribution-api/internal/domain"
	"github.com/vfg2006/marketing-attribution-api/internal/usecases/attributing"
	"github.com/vfg2006/marketing-attribution-api/pkg/apiErrors"
	"github.com/vfg2006/marketing-attribution-api/pkg/log"
)

// TrackTouchpointRequest é o corpo aceito pelo endpoint de ingestão. Timestamp
// em milissegundos desde epoch; quando ausente, o servidor usa o relógio local
type TrackTouchpointRequest struct {
	UserID    string `json:"user_id"`
	Source    string `json:"source"`
	Medium    string `json:"medium"`
	Campaign  string `json:"campaign"`
	Timestamp int64  `json:"timestamp"`
}

type TrackTouchpointResponse struct {
	TouchpointID string `json:"touchpoint_id"`
}

func TrackTouchpoint(service attributing.AttributionService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		var req TrackTouchpointRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.WithError(err).Warn("touchpoints: invalid request body")
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Formato de requisição inválido", nil)
			return
		}

		if req.Timestamp == 0 {
			req.Timestamp = time.Now().UnixMilli()
		}

		tp := &domain.Touchpoint{
			UserID:    req.UserID,
			Source:    req.Source,
			Medium:    req.Medium,
			Campaign:  req.Campaign,
			Timestamp: req.Timestamp,
		}

		touchpointID, err := service.RecordTouchpoint(r.Context(), tp)
		if err != nil {
			switch {
			case errors.Is(err, attributing.ErrUserIDRequired), errors.Is(err, attributing.ErrSourceRequired):
				logger.WithError(err).Warn("touchpoints: missing required field")
				apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, err.Error(), nil)

			default:
				logger.WithFields(log.Fields{
					"user_id": req.UserID,
					"source":  req.Source,
					"error":   err.Error(),
				}).Error("touchpoints: failed to record touchpoint")
				apiErrors.WriteError(w, apiErrors.ErrStoreOperation, "Erro ao registrar touchpoint", nil)
			}
			return
		}

		logger.WithFields(log.Fields{
			"user_id":       req.UserID,
			"source":        req.Source,
			"touchpoint_id": touchpointID,
		}).Info("touchpoints: touchpoint recorded")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(TrackTouchpointResponse{TouchpointID: touchpointID})
	})
}
