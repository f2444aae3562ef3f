package domain

import "time"

// CampaignStatus é o estado de uma campanha: created -> dispatching -> completed.
// Não existe estado terminal de falha; falhas de canal ficam isoladas no
// histórico de despacho
type CampaignStatus string

const (
	CampaignStatusCreated     CampaignStatus = "created"
	CampaignStatusDispatching CampaignStatus = "dispatching"
	CampaignStatusCompleted   CampaignStatus = "completed"
)

// Campaign representa uma campanha multi-canal persistida. O registro é
// gravado antes de qualquer despacho, para que uma queda entre a criação e o
// despacho seja recuperável pelo agendador
type Campaign struct {
	CampaignID   string         `json:"campaign_id"`
	Name         string         `json:"name"`
	Channels     []string       `json:"channels"`
	Budget       float64        `json:"budget"`
	DurationDays int            `json:"duration_days"`
	Targeting    map[string]any `json:"targeting,omitempty"` // opaco, repassado aos adaptadores
	Status       CampaignStatus `json:"status"`
	CreatedAt    time.Time      `json:"created_at"`
	DispatchedAt *time.Time     `json:"dispatched_at,omitempty"`
}

// Status de um despacho individual de canal, no estilo settle
const (
	DispatchFulfilled = "fulfilled"
	DispatchRejected  = "rejected"
)

// ChannelOutcome é o resultado estruturado do despacho de um canal
type ChannelOutcome struct {
	Channel string         `json:"channel"`
	Status  string         `json:"status"`
	Result  map[string]any `json:"result,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// CampaignLaunchResult é a resposta de um lançamento multi-canal: sempre um
// resultado por canal solicitado, mesmo quando todos falham
type CampaignLaunchResult struct {
	CampaignID string           `json:"campaign_id"`
	Channels   []ChannelOutcome `json:"channels"`
}

// LaunchStep é uma entrada da sequência fixa de lançamento: um horário do dia
// (formato 15:04) e a ação a disparar naquele momento
type LaunchStep struct {
	TimeOfDay string         `json:"time_of_day"`
	Channel   string         `json:"channel"`
	Action    string         `json:"action"`
	Config    map[string]any `json:"config,omitempty"`
}
