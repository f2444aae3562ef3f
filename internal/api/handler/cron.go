package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/marketing-attribution-api/internal/domain"
	"github.com/vfg2006/marketing-attribution-api/internal/scheduler"
	"github.com/vfg2006/marketing-attribution-api/pkg/apiErrors"
	"github.com/vfg2006/marketing-attribution-api/pkg/middleware"
)

// CronJobType define o tipo de cron job que será executada
const (
	CronJobTypeCampaignDispatch = "campaign-dispatch"
	CronJobTypeLaunchSequence   = "launch-sequence"
	CronJobTypeAll              = "all"
)

// CronJobServices contém os serviços de cron necessários para executar manualmente
type CronJobServices struct {
	CampaignDispatchService *scheduler.CampaignDispatchService
	LaunchSequenceService   *scheduler.LaunchSequenceService
}

// RunCronJob executa manualmente uma cron job específica
func RunCronJob(services CronJobServices) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - RunCronJob")

		// Apenas administradores podem executar cron jobs
		userClaims, ok := r.Context().Value(middleware.ContextKeyUser).(*domain.Claims)
		if !ok || userClaims.UserRoleID != domain.RoleAdmin {
			apiErrors.WriteError(w, apiErrors.ErrInsufficientPrivilege, "Apenas administradores podem executar cron jobs", nil)
			return
		}

		cronType := httprouter.ParamsFromContext(r.Context()).ByName("type")
		if cronType == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Tipo de cron job não especificado", nil)
			return
		}

		switch cronType {
		case CronJobTypeCampaignDispatch:
			if services.CampaignDispatchService == nil {
				apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Serviço de redespacho de campanhas não disponível", nil)
				return
			}
			services.CampaignDispatchService.TriggerManualSync()

		case CronJobTypeLaunchSequence:
			if services.LaunchSequenceService == nil {
				apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Serviço de sequência de lançamento não disponível", nil)
				return
			}
			services.LaunchSequenceService.TriggerManualSync()

		case CronJobTypeAll:
			if services.CampaignDispatchService != nil {
				services.CampaignDispatchService.TriggerManualSync()
			}
			if services.LaunchSequenceService != nil {
				services.LaunchSequenceService.TriggerManualSync()
			}

		default:
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Tipo de cron job inválido. Valores aceitos: campaign-dispatch, launch-sequence, all", nil)
			return
		}

		response := map[string]any{
			"message": "Cron job iniciada com sucesso",
			"type":    cronType,
		}
		json.NewEncoder(w).Encode(response)
	}
}

// GetCronStatus retorna o status das cron jobs
func GetCronStatus(services CronJobServices) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - GetCronStatus")

		userClaims, ok := r.Context().Value(middleware.ContextKeyUser).(*domain.Claims)
		if !ok || userClaims.UserRoleID != domain.RoleAdmin {
			apiErrors.WriteError(w, apiErrors.ErrInsufficientPrivilege, "Apenas administradores podem verificar status de cron jobs", nil)
			return
		}

		status := map[string]any{
			"campaign-dispatch": services.CampaignDispatchService.GetStatus(),
			"launch-sequence":   services.LaunchSequenceService.GetStatus(),
		}

		json.NewEncoder(w).Encode(status)
	}
}
