package experimenting

import (
	"math"

	"github.com/vfg2006/marketing-attribution-api/internal/domain"
	"github.com/vfg2006/marketing-attribution-api/pkg/utils"
)

// Limiar z para 95% de confiança bicaudal
const zThreshold95 = 1.96

// twoProportionZTest aplica o teste z de duas proporções sobre os contadores
// de duas variantes: proporção combinada p = (c1+c2)/(n1+n2), erro padrão
// se = sqrt(p(1-p)(1/n1+1/n2)), z = |r1-r2|/se. O p-valor vem da CDF normal
// em forma fechada; é um sinal direcional de negócio, não uma estatística
// publicável
func twoProportionZTest(conversions1, impressions1, conversions2, impressions2 float64) *domain.Significance {
	result := &domain.Significance{
		ZScore:          0,
		PValue:          1,
		IsSignificant:   false,
		ConfidenceLevel: 0.95,
	}

	if impressions1 <= 0 || impressions2 <= 0 {
		return result
	}

	rate1 := conversions1 / impressions1
	rate2 := conversions2 / impressions2

	pooled := (conversions1 + conversions2) / (impressions1 + impressions2)
	se := math.Sqrt(pooled * (1 - pooled) * (1/impressions1 + 1/impressions2))
	if se == 0 {
		return result
	}

	z := math.Abs(rate1-rate2) / se

	result.ZScore = utils.RoundWithTwoDecimalPlace(z)
	result.PValue = twoTailedPValue(z)
	result.IsSignificant = z > zThreshold95

	return result
}

// twoTailedPValue aproxima P(|Z| > z) pela CDF normal padrão
func twoTailedPValue(z float64) float64 {
	cdf := 0.5 * (1 + math.Erf(z/math.Sqrt2))
	p := 2 * (1 - cdf)
	if p < 0 {
		p = 0
	}
	return p
}
