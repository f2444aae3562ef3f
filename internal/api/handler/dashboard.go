package handler

import (
	"net/http"

	"github.com/vfg2006/marketing-attribution-api/internal/usecases/reporting"
	"github.com/vfg2006/marketing-attribution-api/pkg/apiErrors"
	"github.com/vfg2006/marketing-attribution-api/pkg/log"
)

func GetDashboard(service reporting.ReportingService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		dashboard, err := service.GetDashboard(r.Context())
		if err != nil {
			logger.WithError(err).Error("dashboard: failed to aggregate counters")
			apiErrors.WriteError(w, apiErrors.ErrStoreOperation, "Erro ao montar dashboard", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(dashboard)
	})
}
