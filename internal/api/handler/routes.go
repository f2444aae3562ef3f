package handler

import (
	"net/http"

	"github.com/vfg2006/marketing-attribution-api/internal/api/handler/router"
	"github.com/vfg2006/marketing-attribution-api/internal/usecases/attributing"
	"github.com/vfg2006/marketing-attribution-api/internal/usecases/authenticating"
	"github.com/vfg2006/marketing-attribution-api/internal/usecases/experimenting"
	"github.com/vfg2006/marketing-attribution-api/internal/usecases/orchestrating"
	"github.com/vfg2006/marketing-attribution-api/internal/usecases/reporting"
	"github.com/vfg2006/marketing-attribution-api/pkg/middleware"
)

func Healthcheck() []router.Route {
	return []router.Route{
		{
			Path:    "/healthcheck",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(),
		},
	}
}

func Authentication(service authenticating.Authenticator) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/login",
			Method:  http.MethodPost,
			Handler: Login(service),
		},
	}
}

// Attribution retorna as rotas de ingestão de touchpoints e de consulta de
// atribuição. A ingestão é pública; pixels e SDKs não carregam credencial
func Attribution(attribution attributing.AttributionService, reports reporting.ReportingService) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/touchpoints",
			Method:  http.MethodPost,
			Handler: TrackTouchpoint(attribution),
		},
		{
			Path:        "/v1/users/:id/attribution",
			Method:      http.MethodGet,
			Handler:     GetUserAttribution(attribution),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
		{
			Path:        "/v1/users/:id/attribution/report",
			Method:      http.MethodGet,
			Handler:     GetAttributionReport(reports),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
	}
}

func Experiments(service experimenting.ExperimentService) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/experiments",
			Method:      http.MethodPost,
			Handler:     CreateExperiment(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOnly()},
		},
		{
			Path:        "/v1/experiments/:id/impressions",
			Method:      http.MethodPost,
			Handler:     RecordImpression(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
		{
			Path:        "/v1/experiments/:id/conversions",
			Method:      http.MethodPost,
			Handler:     RecordConversion(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
		{
			Path:        "/v1/experiments/:id/results",
			Method:      http.MethodGet,
			Handler:     GetExperimentResults(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
	}
}

func Campaigns(service orchestrating.OrchestratorService) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/campaigns",
			Method:      http.MethodPost,
			Handler:     LaunchCampaign(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOnly()},
		},
		{
			Path:        "/v1/campaigns",
			Method:      http.MethodGet,
			Handler:     ListCampaigns(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
		{
			Path:        "/v1/campaigns/email",
			Method:      http.MethodPost,
			Handler:     SendEmailCampaign(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOnly()},
		},
	}
}

func Dashboard(service reporting.ReportingService) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/dashboard",
			Method:      http.MethodGet,
			Handler:     GetDashboard(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
	}
}

func CronJobs(services CronJobServices) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/cron/:type/run",
			Method:      http.MethodPost,
			Handler:     RunCronJob(services),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOnly()},
		},
		{
			Path:        "/v1/cron/status",
			Method:      http.MethodGet,
			Handler:     GetCronStatus(services),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOnly()},
		},
	}
}
