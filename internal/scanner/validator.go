package scanner

import (
	"fmt"
	"time"

	"github.com/alejandrodnm/polyhedge/internal/domain"
)

const (
	// Fuera de [0.001, 0.999] el precio no es una probabilidad operable:
	// o el mercado está resuelto de facto o el dato es ruido.
	minValidPrice = 0.001
	maxValidPrice = 0.999
)

// ValidatorConfig contiene los umbrales de validación de mercados.
type ValidatorConfig struct {
	MinLiquidity float64
	MinVolume    float64
}

// DefaultValidatorConfig devuelve umbrales conservadores.
func DefaultValidatorConfig() ValidatorConfig {
	return ValidatorConfig{
		MinLiquidity: 10_000,
		MinVolume:    5_000,
	}
}

// Validator comprueba liquidez, volumen, sanidad de precios y expiración.
// Acumula todas las razones de rechazo, nunca corta en la primera.
type Validator struct {
	cfg ValidatorConfig
	now func() time.Time
}

// NewValidator crea un Validator con la configuración dada.
func NewValidator(cfg ValidatorConfig) *Validator {
	return &Validator{cfg: cfg, now: time.Now}
}

// ValidateMarket comprueba un mercado individual.
func (v *Validator) ValidateMarket(m domain.Market) domain.Validation {
	var reasons []string

	if m.Liquidity < v.cfg.MinLiquidity {
		reasons = append(reasons, fmt.Sprintf("liquidity too low: $%.0f < $%.0f", m.Liquidity, v.cfg.MinLiquidity))
	}
	if m.Volume < v.cfg.MinVolume {
		reasons = append(reasons, fmt.Sprintf("volume too low: $%.0f < $%.0f", m.Volume, v.cfg.MinVolume))
	}
	if m.YesPrice < minValidPrice || m.YesPrice > maxValidPrice {
		reasons = append(reasons, fmt.Sprintf("invalid YES price: %v", m.YesPrice))
	}
	if m.NoPrice < minValidPrice || m.NoPrice > maxValidPrice {
		reasons = append(reasons, fmt.Sprintf("invalid NO price: %v", m.NoPrice))
	}
	if m.HasEndDate() {
		if overdue := v.now().Sub(m.EndDate); overdue > 0 {
			days := int(overdue.Hours() / 24)
			if days > 0 {
				reasons = append(reasons, fmt.Sprintf("market expired %d days ago", days))
			}
		}
	}

	return domain.Validation{Valid: len(reasons) == 0, Reasons: reasons}
}

// ValidatePair comprueba que dos mercados puedan formar un par de hedge:
// ambos válidos individualmente y de grupos distintos (hacer hedge dentro
// del mismo grupo no tiene sentido).
func (v *Validator) ValidatePair(m1, m2 domain.Market) domain.Validation {
	var reasons []string

	if m1.GroupID != "" && m1.GroupID == m2.GroupID {
		reasons = append(reasons, "markets share the same group")
	}

	r1 := v.ValidateMarket(m1)
	r2 := v.ValidateMarket(m2)
	reasons = append(reasons, r1.Reasons...)
	reasons = append(reasons, r2.Reasons...)

	return domain.Validation{
		Valid:   r1.Valid && r2.Valid && len(reasons) == 0,
		Reasons: reasons,
	}
}
