// Package reporting expõe as leituras derivadas da API: o dashboard de
// contadores ao vivo e o relatório multi-modelo de atribuição. Tudo é
// calculado sob demanda sobre o Event Store; nada aqui pode ficar obsoleto
package reporting

import (
	"context"

	"github.com/vfg2006/marketing-attribution-api/infrastructure/eventstore"
	"github.com/vfg2006/marketing-attribution-api/internal/domain"
	"github.com/vfg2006/marketing-attribution-api/internal/usecases/attributing"
)

const (
	touchpointsStatKey  = "stats:touchpoints"
	conversionsStatKey  = "stats:conversions"
	emailsSentStatKey   = "stats:emails_sent"
	trackedUsersStatKey = "stats:tracked_users"
	experimentsIndexKey = "experiments"
	campaignsIndexKey   = "campaigns"
)

type ReportingService interface {
	GetDashboard(ctx context.Context) (*domain.Dashboard, error)
	GetAttributionReport(ctx context.Context, userID string) (*domain.AttributionReport, error)
}

type Service struct {
	store       eventstore.Store
	attribution attributing.AttributionService
}

func NewService(store eventstore.Store, attribution attributing.AttributionService) ReportingService {
	return &Service{
		store:       store,
		attribution: attribution,
	}
}

func (s *Service) GetDashboard(ctx context.Context) (*domain.Dashboard, error) {
	touchpoints, err := s.store.Increment(ctx, touchpointsStatKey, 0)
	if err != nil {
		return nil, err
	}
	conversions, err := s.store.Increment(ctx, conversionsStatKey, 0)
	if err != nil {
		return nil, err
	}
	emailsSent, err := s.store.Increment(ctx, emailsSentStatKey, 0)
	if err != nil {
		return nil, err
	}
	trackedUsers, err := s.store.SetMembers(ctx, trackedUsersStatKey)
	if err != nil {
		return nil, err
	}
	experiments, err := s.store.SetMembers(ctx, experimentsIndexKey)
	if err != nil {
		return nil, err
	}
	campaigns, err := s.store.SetMembers(ctx, campaignsIndexKey)
	if err != nil {
		return nil, err
	}

	return &domain.Dashboard{
		Touchpoints:  int64(touchpoints),
		Conversions:  int64(conversions),
		Experiments:  int64(len(experiments)),
		Campaigns:    int64(len(campaigns)),
		TrackedUsers: int64(len(trackedUsers)),
		EmailsSent:   int64(emailsSent),
	}, nil
}

func (s *Service) GetAttributionReport(ctx context.Context, userID string) (*domain.AttributionReport, error) {
	return s.attribution.BuildReport(ctx, userID)
}
