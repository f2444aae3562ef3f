// Package orchestrating lança campanhas multi-canal: persiste o registro da
// campanha antes de qualquer despacho, dispara os adaptadores de canal em
// paralelo e devolve um resultado por canal no estilo settle
package orchestrating

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/marketing-attribution-api/infrastructure/channels"
	"github.com/vfg2006/marketing-attribution-api/infrastructure/eventstore"
	"github.com/vfg2006/marketing-attribution-api/internal/domain"
	"github.com/vfg2006/marketing-attribution-api/internal/eventbus"
	"github.com/vfg2006/marketing-attribution-api/pkg/utils"
)

const (
	campaignKeyPrefix = "campaign:"
	campaignsIndexKey = "campaigns"
	emailsSentStatKey = "stats:emails_sent"
)

// CampaignRequest é o pedido de lançamento de uma campanha multi-canal. O
// núcleo valida apenas os campos que ele próprio lê; Targeting é repassado
// opacamente aos adaptadores
type CampaignRequest struct {
	Name         string         `json:"name" mapstructure:"name"`
	Channels     []string       `json:"channels" mapstructure:"channels"`
	Budget       float64        `json:"budget" mapstructure:"budget"`
	DurationDays int            `json:"duration_days" mapstructure:"duration_days"`
	Targeting    map[string]any `json:"targeting" mapstructure:"targeting"`
}

// EmailCampaignRequest é o pedido do atalho de campanha de e-mail
type EmailCampaignRequest struct {
	Subject  string         `json:"subject" mapstructure:"subject"`
	Audience string         `json:"audience" mapstructure:"audience"`
	Content  map[string]any `json:"content" mapstructure:"content"`
}

type OrchestratorService interface {
	// LaunchMultiChannelCampaign persiste a campanha e despacha todos os
	// canais concorrentemente. Falha de um canal vira status "rejected"
	// naquele canal; a chamada nunca falha por falha parcial
	LaunchMultiChannelCampaign(ctx context.Context, req *CampaignRequest) (*domain.CampaignLaunchResult, error)

	// ListCampaigns devolve os registros persistidos, mais recentes primeiro
	ListCampaigns(ctx context.Context) ([]*domain.Campaign, error)

	// SendEmailCampaign delega diretamente ao adaptador de e-mail
	SendEmailCampaign(ctx context.Context, req *EmailCampaignRequest) (*domain.ChannelOutcome, error)

	// RedispatchPending redespacha campanhas que ficaram para trás (queda do
	// processo entre a persistência e o despacho). Retorna quantas campanhas
	// foram redespachadas
	RedispatchPending(ctx context.Context, pendingAfter time.Duration) (int, error)
}

type Service struct {
	store    eventstore.Store
	adapters map[string]channels.Adapter
	bus      *eventbus.Bus
	now      func() time.Time
}

func NewService(store eventstore.Store, bus *eventbus.Bus, adapters ...channels.Adapter) OrchestratorService {
	byName := make(map[string]channels.Adapter, len(adapters))
	for _, adapter := range adapters {
		byName[adapter.Name()] = adapter
	}

	return &Service{
		store:    store,
		adapters: byName,
		bus:      bus,
		now:      time.Now,
	}
}

func (s *Service) LaunchMultiChannelCampaign(ctx context.Context, req *CampaignRequest) (*domain.CampaignLaunchResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	campaignID, err := utils.GenerateID()
	if err != nil {
		return nil, fmt.Errorf("erro ao gerar ID da campanha: %w", err)
	}

	campaign := &domain.Campaign{
		CampaignID:   campaignID,
		Name:         req.Name,
		Channels:     req.Channels,
		Budget:       req.Budget,
		DurationDays: req.DurationDays,
		Targeting:    req.Targeting,
		Status:       domain.CampaignStatusCreated,
		CreatedAt:    s.now(),
	}

	// A campanha é persistida antes de qualquer despacho: uma queda a partir
	// daqui deixa um registro inspecionável que o agendador reconcilia
	if err := s.saveCampaign(ctx, campaign); err != nil {
		return nil, err
	}
	if err := s.store.SetAdd(ctx, campaignsIndexKey, campaignID); err != nil {
		return nil, err
	}

	outcomes := s.dispatch(ctx, campaign)

	s.bus.Publish(eventbus.EventCampaignLaunched, map[string]any{
		"campaign_id": campaignID,
		"name":        campaign.Name,
		"channels":    campaign.Channels,
		"budget":      campaign.Budget,
	})

	return &domain.CampaignLaunchResult{
		CampaignID: campaignID,
		Channels:   outcomes,
	}, nil
}

// dispatch executa o fan-out/fan-in dos canais da campanha e atualiza o
// estado persistido: created -> dispatching -> completed. Não há cancelamento
// no meio do voo; cada chamada de canal corre até terminar ou falhar
func (s *Service) dispatch(ctx context.Context, campaign *domain.Campaign) []domain.ChannelOutcome {
	campaign.Status = domain.CampaignStatusDispatching
	if err := s.saveCampaign(ctx, campaign); err != nil {
		logrus.WithFields(logrus.Fields{
			"campaign_id": campaign.CampaignID,
			"error":       err.Error(),
		}).Warn("Erro ao persistir transição para dispatching")
	}

	outcomes := make([]domain.ChannelOutcome, len(campaign.Channels))
	var wg sync.WaitGroup

	for i, channel := range campaign.Channels {
		wg.Add(1)

		go func(idx int, channelName string) {
			defer wg.Done()
			outcomes[idx] = s.dispatchChannel(ctx, campaign, channelName)
		}(i, channel)
	}

	wg.Wait()

	campaign.Status = domain.CampaignStatusCompleted
	dispatchedAt := s.now()
	campaign.DispatchedAt = &dispatchedAt
	if err := s.saveCampaign(ctx, campaign); err != nil {
		logrus.WithFields(logrus.Fields{
			"campaign_id": campaign.CampaignID,
			"error":       err.Error(),
		}).Warn("Erro ao persistir conclusão da campanha")
	}

	return outcomes
}

// dispatchChannel chama um único adaptador e converte qualquer erro em um
// resultado "rejected", sem propagar para os canais irmãos
func (s *Service) dispatchChannel(ctx context.Context, campaign *domain.Campaign, channelName string) domain.ChannelOutcome {
	adapter, ok := s.adapters[channelName]
	if !ok {
		logrus.WithFields(logrus.Fields{
			"campaign_id": campaign.CampaignID,
			"channel":     channelName,
		}).Warn("Canal solicitado sem adaptador configurado")

		return domain.ChannelOutcome{
			Channel: channelName,
			Status:  domain.DispatchRejected,
			Error:   fmt.Sprintf("canal sem adaptador configurado: %s", channelName),
		}
	}

	cfg := map[string]any{
		"campaign_id":   campaign.CampaignID,
		"name":          campaign.Name,
		"budget":        campaign.Budget,
		"duration_days": campaign.DurationDays,
		"targeting":     campaign.Targeting,
	}

	result, err := adapter.Send(ctx, "campaign.launch", cfg)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"campaign_id": campaign.CampaignID,
			"channel":     channelName,
			"error":       err.Error(),
		}).Error("Despacho de canal rejeitado")

		return domain.ChannelOutcome{
			Channel: channelName,
			Status:  domain.DispatchRejected,
			Error:   err.Error(),
		}
	}

	logrus.WithFields(logrus.Fields{
		"campaign_id": campaign.CampaignID,
		"channel":     channelName,
	}).Info("Canal despachado com sucesso")

	return domain.ChannelOutcome{
		Channel: channelName,
		Status:  domain.DispatchFulfilled,
		Result:  result,
	}
}

func (s *Service) ListCampaigns(ctx context.Context) ([]*domain.Campaign, error) {
	ids, err := s.store.SetMembers(ctx, campaignsIndexKey)
	if err != nil {
		return nil, err
	}

	campaigns := make([]*domain.Campaign, 0, len(ids))
	for _, id := range ids {
		campaign, err := s.loadCampaign(ctx, id)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"campaign_id": id,
				"error":       err.Error(),
			}).Warn("Campanha indexada sem registro legível")
			continue
		}
		campaigns = append(campaigns, campaign)
	}

	sort.Slice(campaigns, func(i, j int) bool {
		return campaigns[i].CreatedAt.After(campaigns[j].CreatedAt)
	})

	return campaigns, nil
}

func (s *Service) SendEmailCampaign(ctx context.Context, req *EmailCampaignRequest) (*domain.ChannelOutcome, error) {
	if req == nil || req.Subject == "" {
		return nil, ErrNameRequired
	}

	adapter, ok := s.adapters[channels.ChannelEmail]
	if !ok {
		return &domain.ChannelOutcome{
			Channel: channels.ChannelEmail,
			Status:  domain.DispatchRejected,
			Error:   "canal de e-mail sem adaptador configurado",
		}, nil
	}

	cfg := map[string]any{
		"subject":  req.Subject,
		"audience": req.Audience,
		"content":  req.Content,
	}

	result, err := adapter.Send(ctx, "email.campaign", cfg)
	if err != nil {
		return &domain.ChannelOutcome{
			Channel: channels.ChannelEmail,
			Status:  domain.DispatchRejected,
			Error:   err.Error(),
		}, nil
	}

	if _, err := s.store.Increment(ctx, emailsSentStatKey, 1); err != nil {
		logrus.WithError(err).Warn("Erro ao incrementar contador de e-mails enviados")
	}

	return &domain.ChannelOutcome{
		Channel: channels.ChannelEmail,
		Status:  domain.DispatchFulfilled,
		Result:  result,
	}, nil
}

func (s *Service) RedispatchPending(ctx context.Context, pendingAfter time.Duration) (int, error) {
	campaigns, err := s.ListCampaigns(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := s.now().Add(-pendingAfter)
	redispatched := 0

	for _, campaign := range campaigns {
		if campaign.Status == domain.CampaignStatusCompleted {
			continue
		}
		if campaign.CreatedAt.After(cutoff) {
			// Lançamento recente; provavelmente ainda em voo
			continue
		}

		logrus.WithFields(logrus.Fields{
			"campaign_id": campaign.CampaignID,
			"status":      campaign.Status,
			"created_at":  campaign.CreatedAt,
		}).Info("Redespachando campanha pendente")

		s.dispatch(ctx, campaign)
		redispatched++
	}

	return redispatched, nil
}

func validateRequest(req *CampaignRequest) error {
	if req == nil || req.Name == "" {
		return ErrNameRequired
	}
	if len(req.Channels) == 0 {
		return ErrChannelsRequired
	}
	if req.Budget <= 0 {
		return ErrInvalidBudget
	}
	if req.DurationDays < 1 {
		return ErrInvalidDuration
	}
	return nil
}

func (s *Service) saveCampaign(ctx context.Context, campaign *domain.Campaign) error {
	payload, err := json.Marshal(campaign)
	if err != nil {
		return fmt.Errorf("erro ao serializar campanha: %w", err)
	}
	return s.store.Put(ctx, campaignKeyPrefix+campaign.CampaignID, string(payload))
}

func (s *Service) loadCampaign(ctx context.Context, campaignID string) (*domain.Campaign, error) {
	value, found, err := s.store.Get(ctx, campaignKeyPrefix+campaignID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrCampaignNotFound, campaignID)
	}

	var campaign domain.Campaign
	if err := json.Unmarshal([]byte(value), &campaign); err != nil {
		return nil, fmt.Errorf("erro ao decodificar campanha %s: %w", campaignID, err)
	}

	return &campaign, nil
}
