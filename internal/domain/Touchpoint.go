package domain

import "fmt"

// Valores sentinela para tráfego sem tag (UTM ausente)
const (
	DefaultMedium   = "none"
	DefaultCampaign = "direct"
)

// Touchpoint representa uma exposição de marketing registrada para um usuário
type Touchpoint struct {
	UserID    string `json:"user_id"`
	Source    string `json:"source"`
	Medium    string `json:"medium"`
	Campaign  string `json:"campaign"`
	Timestamp int64  `json:"timestamp"` // milissegundos desde epoch
}

// ID retorna o identificador opaco do touchpoint, usado pelos chamadores
// para checagens de idempotência
func (t *Touchpoint) ID() string {
	return fmt.Sprintf("%s:%d", t.UserID, t.Timestamp)
}

// AttributionModel identifica um dos algoritmos de atribuição suportados
type AttributionModel string

const (
	ModelFirstTouch AttributionModel = "first_touch"
	ModelLastTouch  AttributionModel = "last_touch"
	ModelLinear     AttributionModel = "linear"
	ModelTimeDecay  AttributionModel = "time_decay"
	ModelUShaped    AttributionModel = "u_shaped"
)

// AllAttributionModels lista os modelos na ordem usada pelo relatório multi-modelo
var AllAttributionModels = []AttributionModel{
	ModelFirstTouch,
	ModelLastTouch,
	ModelLinear,
	ModelTimeDecay,
	ModelUShaped,
}

// Valid informa se o nome do modelo é reconhecido
func (m AttributionModel) Valid() bool {
	switch m {
	case ModelFirstTouch, ModelLastTouch, ModelLinear, ModelTimeDecay, ModelUShaped:
		return true
	}
	return false
}

// AttributionReport é o resumo multi-modelo de uma jornada
type AttributionReport struct {
	UserID      string                                  `json:"user_id"`
	Touchpoints int                                     `json:"touchpoints"`
	Models      map[AttributionModel]map[string]float64 `json:"models"`
}
