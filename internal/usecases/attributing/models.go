package attributing

import (
	"math"
	"time"

	"github.com/vfg2006/marketing-attribution-api/internal/domain"
	"github.com/vfg2006/marketing-attribution-api/pkg/utils"
)

const hoursPerDay = 24

// firstTouch dá 100% do crédito à origem do primeiro touchpoint
func firstTouch(journey []domain.Touchpoint) map[string]float64 {
	return map[string]float64{journey[0].Source: 100}
}

// lastTouch dá 100% do crédito à origem do último touchpoint
func lastTouch(journey []domain.Touchpoint) map[string]float64 {
	return map[string]float64{journey[len(journey)-1].Source: 100}
}

// linear divide o crédito igualmente entre todos os touchpoints, somando por
// origem quando uma origem se repete
func linear(journey []domain.Touchpoint) map[string]float64 {
	credit := 100 / float64(len(journey))

	credits := make(map[string]float64, len(journey))
	for _, tp := range journey {
		credits[tp.Source] += credit
	}

	return roundCredits(credits)
}

// timeDecay pondera cada touchpoint por meia-vida exponencial:
// peso = 0.5^(idadeEmDias/meiaVida). Os pesos são normalizados para somar
// 100 e agregados por origem
func timeDecay(journey []domain.Touchpoint, now time.Time, halfLifeDays float64) map[string]float64 {
	weights := make([]float64, len(journey))
	totalWeight := 0.0

	for i, tp := range journey {
		ageDays := now.Sub(time.UnixMilli(tp.Timestamp)).Hours() / hoursPerDay
		if ageDays < 0 {
			ageDays = 0
		}
		weights[i] = math.Pow(0.5, ageDays/halfLifeDays)
		totalWeight += weights[i]
	}

	credits := make(map[string]float64, len(journey))
	for i, tp := range journey {
		credits[tp.Source] += weights[i] / totalWeight * 100
	}

	return roundCredits(credits)
}

// uShaped dá 40% ao primeiro e 40% ao último touchpoint e divide os 20%
// restantes entre os interiores. Com dois touchpoints o resultado soma 80 e
// não é renormalizado; consumidores já dependem desses números, então mudar
// isso precisa passar por decisão de produto
func uShaped(journey []domain.Touchpoint) map[string]float64 {
	n := len(journey)
	if n == 1 {
		return map[string]float64{journey[0].Source: 100}
	}

	credits := make(map[string]float64, n)
	credits[journey[0].Source] += 40
	credits[journey[n-1].Source] += 40

	if n > 2 {
		interior := 20 / float64(n-2)
		for _, tp := range journey[1 : n-1] {
			credits[tp.Source] += interior
		}
	}

	return roundCredits(credits)
}

func roundCredits(credits map[string]float64) map[string]float64 {
	for source, credit := range credits {
		credits[source] = utils.RoundWithTwoDecimalPlace(credit)
	}
	return credits
}
