package main

import (
	"context"
	"os"
	"path"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/marketing-attribution-api/infrastructure/channels"
	"github.com/vfg2006/marketing-attribution-api/infrastructure/database/postgres"
	"github.com/vfg2006/marketing-attribution-api/infrastructure/eventstore"
	"github.com/vfg2006/marketing-attribution-api/internal/api"
	"github.com/vfg2006/marketing-attribution-api/internal/config"
	"github.com/vfg2006/marketing-attribution-api/internal/eventbus"
	"github.com/vfg2006/marketing-attribution-api/internal/scheduler"
	"github.com/vfg2006/marketing-attribution-api/internal/usecases/attributing"
	"github.com/vfg2006/marketing-attribution-api/internal/usecases/authenticating"
	"github.com/vfg2006/marketing-attribution-api/internal/usecases/experimenting"
	"github.com/vfg2006/marketing-attribution-api/internal/usecases/notifying"
	"github.com/vfg2006/marketing-attribution-api/internal/usecases/orchestrating"
	"github.com/vfg2006/marketing-attribution-api/internal/usecases/reporting"
)

func main() {
	// Inicializa configuração de logs
	configureLogger()

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	// Define o nível de log com base na configuração
	logLevel, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		logrus.Warnf("Nível de log inválido: %s, usando 'info'", cfg.App.LogLevel)
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)
	logrus.Infof("Nível de log configurado para: %s", logLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := newEventStore(ctx, cfg)

	bus := eventbus.New()

	authenticator := authenticating.NewService(cfg)

	emailAdapter := channels.NewEmailAdapter(cfg)
	adsAdapter := channels.NewAdsAdapter(cfg)
	notificationAdapter := channels.NewNotificationAdapter(cfg)

	attributionService := attributing.NewService(store, bus, cfg)
	experimentService := experimenting.NewService(store, bus)
	orchestratorService := orchestrating.NewService(store, bus, emailAdapter, adsAdapter, notificationAdapter)
	reportingService := reporting.NewService(store, attributionService)

	// Assinante de notificações: efeitos colaterais best-effort disparados
	// pelos eventos de negócio do barramento
	notifying.NewService(bus, notificationAdapter)

	// Inicializa os agendadores
	campaignDispatchService := scheduler.NewCampaignDispatchService(orchestratorService, cfg)
	launchSequenceService := scheduler.NewLaunchSequenceService(cfg, bus, emailAdapter, adsAdapter, notificationAdapter)

	// Inicia os agendadores em background
	if err := campaignDispatchService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador de reconciliação de campanhas")
	} else {
		logrus.Info("Agendador de reconciliação de campanhas iniciado com sucesso")
	}

	if err := launchSequenceService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o executor da sequência de lançamento")
	} else {
		logrus.Info("Executor da sequência de lançamento iniciado com sucesso")
	}

	server, err := api.New(
		cfg,
		attributionService,
		experimentService,
		orchestratorService,
		reportingService,
		authenticator,
		campaignDispatchService,
		launchSequenceService,
	)
	if err != nil {
		logrus.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}

// configureLogger configura o formato e comportamento dos logs
func configureLogger() {
	_, file, _, _ := runtime.Caller(0)
	dir := path.Dir(file)
	os.Chdir(dir)

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
}

// newEventStore seleciona o backend do Event Store conforme a configuração
func newEventStore(ctx context.Context, cfg *config.Config) eventstore.Store {
	switch cfg.Store.Driver {
	case config.StoreDriverRedis:
		store, err := eventstore.NewRedisStore(ctx, cfg.Redis)
		if err != nil {
			logrus.WithError(err).Fatal("Erro ao conectar ao Redis")
		}
		logrus.Info("Event Store Redis inicializado com sucesso")
		return store

	case config.StoreDriverPostgres:
		conn := pgconn(ctx, cfg.Database)
		logrus.Info("Event Store PostgreSQL inicializado com sucesso")
		return eventstore.NewPostgresStore(conn)

	default:
		logrus.Info("Event Store em memória inicializado")
		return eventstore.NewMemoryStore()
	}
}

// pgconn cria uma conexão com o banco de dados
func pgconn(ctx context.Context, dbConfig config.Database) *postgres.Connection {
	conn, err := postgres.NewConnection(ctx, dbConfig)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao PostgreSQL")
	}

	err = conn.Ping(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao testar conexão com PostgreSQL")
	}

	logrus.Info("Conexão com PostgreSQL estabelecida com sucesso")
	return conn
}
