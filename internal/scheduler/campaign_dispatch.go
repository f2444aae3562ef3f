package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/marketing-attribution-api/internal/config"
	"github.com/vfg2006/marketing-attribution-api/internal/usecases/orchestrating"
)

// CampaignDispatchConfig representa a configuração do agendador de
// reconciliação de campanhas
type CampaignDispatchConfig struct {
	CronSchedule     string
	PendingAfterMins int
	Enabled          bool
}

// CampaignDispatchService reconcilia campanhas que ficaram pendentes: um
// registro persistido antes de uma queda do processo é redespachado no
// próximo ciclo do cron
type CampaignDispatchService struct {
	scheduler         *gocron.Scheduler
	config            CampaignDispatchConfig
	orchestrator      orchestrating.OrchestratorService
	syncRunning       bool
	syncMutex         sync.Mutex
	lastRunStartedAt  time.Time
	lastRunFinishedAt time.Time
}

// NewCampaignDispatchService cria uma nova instância do agendador de
// reconciliação de campanhas
func NewCampaignDispatchService(
	orchestrator orchestrating.OrchestratorService,
	appConfig *config.Config,
) *CampaignDispatchService {
	dispatchConfig := CampaignDispatchConfig{
		CronSchedule:     appConfig.CampaignDispatch.CronSchedule,
		PendingAfterMins: appConfig.CampaignDispatch.PendingAfterMins,
		Enabled:          appConfig.CampaignDispatch.Enabled,
	}

	scheduler := gocron.NewScheduler(time.Local)

	logrus.WithFields(logrus.Fields{
		"cron_schedule":      dispatchConfig.CronSchedule,
		"pending_after_mins": dispatchConfig.PendingAfterMins,
		"enabled":            dispatchConfig.Enabled,
	}).Info("Configuração do agendador de reconciliação de campanhas carregada")

	return &CampaignDispatchService{
		scheduler:    scheduler,
		config:       dispatchConfig,
		orchestrator: orchestrator,
		syncRunning:  false,
	}
}

// Start inicia o agendador
func (s *CampaignDispatchService) Start(ctx context.Context) error {
	if !s.config.Enabled {
		logrus.Info("Reconciliação de campanhas desabilitada por configuração")
		return nil
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("Iniciando agendador de reconciliação de campanhas")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		s.runDispatch(ctx)
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar reconciliação de campanhas: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Parando agendador de reconciliação de campanhas")
		s.scheduler.Stop()
	}()

	return nil
}

// runDispatch redespacha as campanhas pendentes. Execuções sobrepostas são
// ignoradas
func (s *CampaignDispatchService) runDispatch(ctx context.Context) {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Reconciliação de campanhas já em andamento, ignorando")
		return
	}
	s.syncRunning = true
	s.syncMutex.Unlock()

	s.lastRunStartedAt = time.Now()

	defer func() {
		s.syncMutex.Lock()
		s.syncRunning = false
		s.syncMutex.Unlock()
		s.lastRunFinishedAt = time.Now()
	}()

	pendingAfter := time.Duration(s.config.PendingAfterMins) * time.Minute

	redispatched, err := s.orchestrator.RedispatchPending(ctx, pendingAfter)
	if err != nil {
		logrus.WithError(err).Error("Erro ao redespachar campanhas pendentes")
		return
	}

	if redispatched > 0 {
		logrus.WithField("campaigns", redispatched).Info("Campanhas pendentes redespachadas")
	}
}

// TriggerManualSync inicia manualmente uma reconciliação de campanhas
func (s *CampaignDispatchService) TriggerManualSync() {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Reconciliação de campanhas já em andamento, ignorando solicitação manual")
		return
	}
	s.syncMutex.Unlock()

	logrus.Info("Iniciando reconciliação manual de campanhas")
	go s.runDispatch(context.Background())
}

// GetStatus retorna o status atual do agendador
func (s *CampaignDispatchService) GetStatus() map[string]any {
	return map[string]any{
		"enabled":              s.config.Enabled,
		"cron":                 s.config.CronSchedule,
		"pending_after_mins":   s.config.PendingAfterMins,
		"last_run_started_at":  s.lastRunStartedAt,
		"last_run_finished_at": s.lastRunFinishedAt,
	}
}
