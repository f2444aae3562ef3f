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

// AdsAdapter fala com a plataforma de anúncios configurada. O núcleo não
// prescreve o formato que a plataforma espera; o config da campanha é
// repassado como veio
type AdsAdapter struct {
	httpClient *http.Client
	cfg        config.AdsChannel
}

func NewAdsAdapter(cfg *config.Config) *AdsAdapter {
	return &AdsAdapter{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		cfg: cfg.Channels.Ads,
	}
}

func (a *AdsAdapter) Name() string {
	return ChannelAds
}

func (a *AdsAdapter) Send(ctx context.Context, action string, cfg map[string]any) (map[string]any, error) {
	if a.cfg.URL == "" {
		logrus.WithFields(logrus.Fields{
			"channel": ChannelAds,
			"action":  action,
		}).Info("Adaptador de anúncios sem URL configurada, executando em modo dry-run")

		return map[string]any{"dry_run": true, "action": action}, nil
	}

	payload := map[string]any{
		"action": action,
		"config": cfg,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao serializar payload de anúncios")
	}

	url := fmt.Sprintf("%s?access_token=%s", a.cfg.URL, a.cfg.AccessToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "erro ao criar requisição para a plataforma de anúncios")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao chamar a plataforma de anúncios")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao ler resposta da plataforma de anúncios")
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("plataforma de anúncios retornou status %d: %s", resp.StatusCode, string(data))
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
