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

// EmailAdapter envia campanhas de e-mail através do provedor configurado.
// Sem URL configurada o adaptador opera em modo dry-run: loga e reporta
// sucesso sem chamar ninguém, útil em desenvolvimento
type EmailAdapter struct {
	httpClient *http.Client
	cfg        config.EmailChannel
}

func NewEmailAdapter(cfg *config.Config) *EmailAdapter {
	return &EmailAdapter{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		cfg: cfg.Channels.Email,
	}
}

func (a *EmailAdapter) Name() string {
	return ChannelEmail
}

func (a *EmailAdapter) Send(ctx context.Context, action string, cfg map[string]any) (map[string]any, error) {
	if a.cfg.URL == "" {
		logrus.WithFields(logrus.Fields{
			"channel": ChannelEmail,
			"action":  action,
		}).Info("Adaptador de e-mail sem URL configurada, executando em modo dry-run")

		return map[string]any{"dry_run": true, "action": action}, nil
	}

	payload := map[string]any{
		"action": action,
		"config": cfg,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao serializar payload de e-mail")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "erro ao criar requisição para o provedor de e-mail")
	}
	req.Header.Set("Content-Type", "application/json")
	if a.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.cfg.APIKey)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao chamar o provedor de e-mail")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao ler resposta do provedor de e-mail")
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("provedor de e-mail retornou status %d: %s", resp.StatusCode, string(data))
	}

	result := map[string]any{"status_code": resp.StatusCode}
	if len(data) > 0 {
		var decoded map[string]any
		if err := json.Unmarshal(data, &decoded); err == nil {
			result["response"] = decoded
		}
	}

	return result, nil
}
