package channels

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/marketing-attribution-api/internal/config"
)

// NotificationAdapter publica alertas operacionais em um webhook de chat
// (Slack ou similar). Usado pelos assinantes do event bus para efeitos
// colaterais de melhor esforço
type NotificationAdapter struct {
	httpClient *http.Client
	cfg        config.NotificationChannel
}

func NewNotificationAdapter(cfg *config.Config) *NotificationAdapter {
	return &NotificationAdapter{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		cfg: cfg.Channels.Notification,
	}
}

func (a *NotificationAdapter) Name() string {
	return ChannelNotification
}

func (a *NotificationAdapter) Send(ctx context.Context, action string, cfg map[string]any) (map[string]any, error) {
	if a.cfg.WebhookURL == "" {
		logrus.WithFields(logrus.Fields{
			"channel": ChannelNotification,
			"action":  action,
		}).Debug("Adaptador de notificação sem webhook configurado, executando em modo dry-run")

		return map[string]any{"dry_run": true, "action": action}, nil
	}

	payload := map[string]any{
		"text":   fmt.Sprintf("[%s]", action),
		"action": action,
		"config": cfg,
	}
	if message, ok := cfg["message"].(string); ok && message != "" {
		payload["text"] = message
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao serializar payload de notificação")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "erro ao criar requisição para o webhook")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao chamar o webhook de notificação")
	}
	defer resp.Body.Close()

	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		return nil, errors.Wrap(err, "erro ao ler resposta do webhook")
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("webhook de notificação retornou status %d", resp.StatusCode)
	}

	return map[string]any{"status_code": resp.StatusCode}, nil
}
