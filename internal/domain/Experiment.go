package domain

import "time"

// Fases informativas de um experimento. A fase não bloqueia novas chamadas:
// impressões e conversões continuam sendo aceitas após o EndTime
const (
	ExperimentPhaseCreated = "created"
	ExperimentPhaseRunning = "running"
	ExperimentPhaseEnded   = "ended"
)

// Variant é um braço de um teste A/B
type Variant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Experiment representa um teste A/B nomeado. A lista de variantes é fixa
// após a criação
type Experiment struct {
	TestID       string    `json:"test_id"`
	Name         string    `json:"name"`
	Variants     []Variant `json:"variants"`
	Metric       string    `json:"metric"`
	DurationDays int       `json:"duration_days"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
}

// Phase calcula a fase informativa do experimento em relação a um instante
func (e *Experiment) Phase(now time.Time) string {
	switch {
	case now.Before(e.StartTime):
		return ExperimentPhaseCreated
	case now.After(e.EndTime):
		return ExperimentPhaseEnded
	default:
		return ExperimentPhaseRunning
	}
}

// HasVariant informa se o experimento contém a variante indicada
func (e *Experiment) HasVariant(variantID string) bool {
	for _, v := range e.Variants {
		if v.ID == variantID {
			return true
		}
	}
	return false
}

// VariantResult agrega os contadores de uma variante no momento da leitura
type VariantResult struct {
	VariantID      string  `json:"variant_id"`
	VariantName    string  `json:"variant_name"`
	Impressions    int64   `json:"impressions"`
	UniqueReach    int64   `json:"unique_reach"`
	Conversions    int64   `json:"conversions"`
	ConversionRate float64 `json:"conversion_rate"`
	TotalValue     float64 `json:"total_value"`
}

// Significance é o resultado do teste z de duas proporções (95%, bicaudal)
type Significance struct {
	ZScore          float64 `json:"z_score"`
	PValue          float64 `json:"p_value"`
	IsSignificant   bool    `json:"is_significant"`
	ConfidenceLevel float64 `json:"confidence_level"`
}

// ExperimentResults é a leitura ao vivo dos contadores de um experimento.
// Significance é nil para testes com mais de duas variantes; Winner é nil
// enquanto a diferença não for estatisticamente significativa
type ExperimentResults struct {
	TestID       string          `json:"test_id"`
	Name         string          `json:"name"`
	Metric       string          `json:"metric"`
	Phase        string          `json:"phase"`
	Variants     []VariantResult `json:"variants"`
	Significance *Significance   `json:"significance,omitempty"`
	Winner       *string         `json:"winner,omitempty"`
}
