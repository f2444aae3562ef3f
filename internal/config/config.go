package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Drivers suportados para o Event Store
const (
	StoreDriverMemory   = "memory"
	StoreDriverRedis    = "redis"
	StoreDriverPostgres = "postgres"
)

type Config struct {
	App              App              `mapstructure:",squash"`
	Server           Server           `mapstructure:",squash"`
	Store            Store            `mapstructure:",squash"`
	Database         Database         `mapstructure:",squash"`
	Redis            Redis            `mapstructure:",squash"`
	Auth             Auth             `mapstructure:",squash"`
	Attribution      Attribution      `mapstructure:",squash"`
	CampaignDispatch CampaignDispatch `mapstructure:",squash"`
	LaunchSequence   LaunchSequence   `mapstructure:",squash"`
	Channels         Channels         `mapstructure:",squash"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
}

type Server struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type Store struct {
	Driver string `mapstructure:"store_driver"`
}

type Database struct {
	DSN      string `mapstructure:"-"`
	Driver   string `mapstructure:"database_driver"`
	Password string `mapstructure:"database_password"`
	URL      string `mapstructure:"database_url"`
	User     string `mapstructure:"database_user"`
}

type Redis struct {
	Addr     string `mapstructure:"redis_addr"`
	Password string `mapstructure:"redis_password"`
	DB       int    `mapstructure:"redis_db"`
}

type Auth struct {
	Secret               string `mapstructure:"auth_secret"`
	OperatorUser         string `mapstructure:"auth_operator_user"`
	OperatorPasswordHash string `mapstructure:"auth_operator_password_hash"`
	ReadonlyUser         string `mapstructure:"auth_readonly_user"`
	ReadonlyPasswordHash string `mapstructure:"auth_readonly_password_hash"`
}

type Attribution struct {
	HalfLifeDays float64 `mapstructure:"attribution_half_life_days"`
}

type CampaignDispatch struct {
	CronSchedule     string `mapstructure:"campaign_dispatch_cron"`
	Enabled          bool   `mapstructure:"campaign_dispatch_enabled"`
	PendingAfterMins int    `mapstructure:"campaign_dispatch_pending_after_mins"`
}

type LaunchSequence struct {
	Enabled bool `mapstructure:"launch_sequence_enabled"`
}

type Channels struct {
	Email        EmailChannel        `mapstructure:",squash"`
	Ads          AdsChannel          `mapstructure:",squash"`
	Notification NotificationChannel `mapstructure:",squash"`
}

type EmailChannel struct {
	URL    string `mapstructure:"email_channel_url"`
	APIKey string `mapstructure:"email_channel_api_key"`
}

type AdsChannel struct {
	URL         string `mapstructure:"ads_channel_url"`
	AccessToken string `mapstructure:"ads_channel_access_token"`
}

type NotificationChannel struct {
	WebhookURL string `mapstructure:"notification_webhook_url"`
}

func SetDefaults() {
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)

	viper.SetDefault("STORE_DRIVER", StoreDriverMemory)

	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_URL", "localhost:5432/attribution")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_PASSWORD", "root")

	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)

	viper.SetDefault("AUTH_SECRET", "your_auth_secret")
	viper.SetDefault("AUTH_OPERATOR_USER", "operator")
	viper.SetDefault("AUTH_OPERATOR_PASSWORD_HASH", "")
	viper.SetDefault("AUTH_READONLY_USER", "")
	viper.SetDefault("AUTH_READONLY_PASSWORD_HASH", "")

	// Meia-vida padrão de 7 dias para o modelo time_decay
	viper.SetDefault("ATTRIBUTION_HALF_LIFE_DAYS", 7.0)

	// Reconciliação de campanhas pendentes a cada 15 minutos
	viper.SetDefault("CAMPAIGN_DISPATCH_CRON", "*/15 * * * *")
	viper.SetDefault("CAMPAIGN_DISPATCH_ENABLED", false)
	viper.SetDefault("CAMPAIGN_DISPATCH_PENDING_AFTER_MINS", 10)

	viper.SetDefault("LAUNCH_SEQUENCE_ENABLED", false)

	viper.SetDefault("EMAIL_CHANNEL_URL", "")
	viper.SetDefault("EMAIL_CHANNEL_API_KEY", "")
	viper.SetDefault("ADS_CHANNEL_URL", "")
	viper.SetDefault("ADS_CHANNEL_ACCESS_TOKEN", "")
	viper.SetDefault("NOTIFICATION_WEBHOOK_URL", "")

	viper.SetDefault("LOG_LEVEL", "debug")
}

func NewConfig() (*Config, error) {
	// Primeiro carregar o arquivo .env usando godotenv
	loadEnvFile() // ONLY LOCAL

	config := &Config{}

	SetDefaults()

	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logrus.Info("Usando variáveis carregadas pelo godotenv (viper não conseguiu ler .env):", err)
	} else {
		logrus.Info("Arquivo .env lido pelo Viper com sucesso")
	}

	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	config.Database.DSN = fmt.Sprintf(
		"%s://%s:%s@%s",
		config.Database.Driver,
		config.Database.User,
		config.Database.Password,
		config.Database.URL,
	)

	return config, nil
}

// Função auxiliar para carregar o arquivo .env usando godotenv
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	locations := []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(filepath.Dir(cwd), ".env"),
		filepath.Join(cwd, "../.env"),
		filepath.Join(cwd, "../../.env"),
	}

	for _, location := range locations {
		err := godotenv.Load(location)
		if err == nil {
			logrus.Info("Arquivo .env carregado com sucesso de:", location)
			return
		}
	}

	logrus.Info("Nenhum arquivo .env encontrado, usando variáveis de ambiente")
}
