package scanner

import (
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/alejandrodnm/polyhedge/internal/domain"
)

// hedge.go — búsqueda de pares target/cover con cobertura alta.
//
// Dos estrategias de pairing, ambas aplicadas:
//   (a) cross-group: cada mercado de G1 contra cada mercado de G2, para todo
//       par de grupos i<j.
//   (b) same-group cross-label: dentro de un grupo, mercados con etiquetas
//       distintas ("above $1B" vs "above $2B").
//
// El coste es cuadrático en los mercados que tocan algún grupo (×4 por los
// escenarios direccionales); MaxGroupSize acota cada grupo a sus miembros
// más líquidos antes del pairing.

// HedgeConfig contiene los parámetros del detector de hedges.
type HedgeConfig struct {
	// MinCoverage es la cobertura mínima para retener un escenario.
	MinCoverage float64
	// CoverProbability es la tasa condicional asumida de la pata cover.
	// Supuesto del modelo, no una medida; ver domain.CalculateCoverage.
	CoverProbability float64
	// ArbBand excluye pares cuyo coste total queda a menos de esta distancia
	// de 1.0: eso es arbitraje determinista, no un hedge probabilístico.
	ArbBand float64
	// MaxGroupSize acota los miembros de un grupo considerados en el pairing.
	MaxGroupSize int
}

// DefaultHedgeConfig devuelve la configuración estándar del detector.
func DefaultHedgeConfig() HedgeConfig {
	return HedgeConfig{
		MinCoverage:      0.85,
		CoverProbability: domain.DefaultCoverProbability,
		ArbBand:          0.02,
		MaxGroupSize:     25,
	}
}

// HedgeDetector busca oportunidades de hedge entre grupos de mercados.
type HedgeDetector struct {
	cfg HedgeConfig
}

// NewHedgeDetector crea un detector con la configuración dada, aplicando
// defaults a los campos sin valor.
func NewHedgeDetector(cfg HedgeConfig) *HedgeDetector {
	def := DefaultHedgeConfig()
	if cfg.MinCoverage <= 0 {
		cfg.MinCoverage = def.MinCoverage
	}
	if cfg.CoverProbability <= 0 {
		cfg.CoverProbability = def.CoverProbability
	}
	if cfg.ArbBand <= 0 {
		cfg.ArbBand = def.ArbBand
	}
	if cfg.MaxGroupSize <= 0 {
		cfg.MaxGroupSize = def.MaxGroupSize
	}
	return &HedgeDetector{cfg: cfg}
}

// Detect evalúa todos los pares candidatos y devuelve las oportunidades
// ordenadas por cobertura descendente (orden estable: empates conservan el
// orden de entrada).
func (d *HedgeDetector) Detect(groups []domain.MarketGroup) []domain.HedgeOpportunity {
	bounded := make([]domain.MarketGroup, len(groups))
	for i, g := range groups {
		bounded[i] = d.boundGroup(g)
	}

	var hedges []domain.HedgeOpportunity

	// (a) cross-group
	for i := 0; i < len(bounded); i++ {
		for j := i + 1; j < len(bounded); j++ {
			for _, m1 := range bounded[i].Markets {
				for _, m2 := range bounded[j].Markets {
					if h, ok := d.bestScenario(m1, m2); ok {
						hedges = append(hedges, h)
					}
				}
			}
		}
	}

	// (b) same-group, cross-label
	for _, g := range bounded {
		hedges = append(hedges, d.crossLabelPairs(g)...)
	}

	sort.SliceStable(hedges, func(i, j int) bool {
		return hedges[i].Coverage > hedges[j].Coverage
	})
	return hedges
}

// boundGroup limita el grupo a sus MaxGroupSize mercados más líquidos.
func (d *HedgeDetector) boundGroup(g domain.MarketGroup) domain.MarketGroup {
	if len(g.Markets) <= d.cfg.MaxGroupSize {
		return g
	}
	markets := make([]domain.Market, len(g.Markets))
	copy(markets, g.Markets)
	sort.SliceStable(markets, func(i, j int) bool {
		return markets[i].Liquidity > markets[j].Liquidity
	})
	g.Markets = markets[:d.cfg.MaxGroupSize]
	return g
}

// crossLabelPairs empareja mercados del mismo grupo con etiquetas distintas.
func (d *HedgeDetector) crossLabelPairs(g domain.MarketGroup) []domain.HedgeOpportunity {
	byLabel := make(map[string][]domain.Market)
	var labels []string
	for _, m := range g.Markets {
		if _, ok := byLabel[m.GroupLabel]; !ok {
			labels = append(labels, m.GroupLabel)
		}
		byLabel[m.GroupLabel] = append(byLabel[m.GroupLabel], m)
	}

	var hedges []domain.HedgeOpportunity
	for i := 0; i < len(labels); i++ {
		for j := i + 1; j < len(labels); j++ {
			for _, m1 := range byLabel[labels[i]] {
				for _, m2 := range byLabel[labels[j]] {
					if h, ok := d.bestScenario(m1, m2); ok {
						hedges = append(hedges, h)
					}
				}
			}
		}
	}
	return hedges
}

// hedgeScenario es una de las cuatro combinaciones direccionales de un par.
type hedgeScenario struct {
	target domain.Market
	tPos   domain.Side
	cover  domain.Market
	cPos   domain.Side
}

// bestScenario evalúa los cuatro escenarios direccionales del par (m1, m2)
// y devuelve el de mayor score (coverage × max(expected_profit, 0)) que
// alcance MinCoverage. ok=false si ningún escenario califica.
func (d *HedgeDetector) bestScenario(m1, m2 domain.Market) (domain.HedgeOpportunity, bool) {
	scenarios := []hedgeScenario{
		{m1, domain.SideYes, m2, domain.SideNo},
		{m1, domain.SideNo, m2, domain.SideYes},
		{m2, domain.SideYes, m1, domain.SideNo},
		{m2, domain.SideNo, m1, domain.SideYes},
	}

	var best domain.HedgeOpportunity
	bestScore := 0.0
	found := false

	for _, s := range scenarios {
		tPrice := s.target.PriceFor(s.tPos)
		cPrice := s.cover.PriceFor(s.cPos)

		if tPrice <= 0 || cPrice <= 0 {
			continue
		}

		totalCost := tPrice + cPrice
		if totalCost > 2.0 {
			continue
		}
		// Coste ~$1 por par: eso es arbitraje puro, no entra en esta categoría.
		if math.Abs(totalCost-1.0) < d.cfg.ArbBand {
			continue
		}

		result := domain.CalculateCoverage(tPrice, cPrice, d.cfg.CoverProbability)
		score := result.Coverage * math.Max(result.ExpectedProfit, 0)

		if score > bestScore && result.Coverage >= d.cfg.MinCoverage {
			bestScore = score
			tier, label := domain.ClassifyTier(result.Coverage)
			best = domain.HedgeOpportunity{
				ID:             uuid.New().String(),
				Target:         s.target,
				TargetPosition: s.tPos,
				Cover:          s.cover,
				CoverPosition:  s.cPos,
				Coverage:       result.Coverage,
				Tier:           tier,
				TierLabel:      label,
				TotalCost:      totalCost,
				ExpectedProfit: result.ExpectedProfit,
				Relationship:   describeHedge(s),
			}
			found = true
		}
	}

	return best, found
}

// describeHedge genera la descripción legible del vínculo entre las patas.
func describeHedge(s hedgeScenario) string {
	return string(s.tPos) + " on '" + truncate(s.target.Question, 30) +
		"' hedges against " + string(s.cPos) + " on '" + truncate(s.cover.Question, 30) + "'"
}
