package ledger

import (
	"strings"

	"github.com/thecyberginehost/streamsuite-sub000/pkg/models"
)

// Pricing turns prompt characteristics into an estimated credit cost and the
// generator's reported usage into an actual one. The estimate only gates
// eligibility; the actual cost is what gets settled.
type Pricing struct {
	SingleBaseCost      int      `yaml:"single_base_cost"`
	EnterpriseBaseCost  int      `yaml:"enterprise_base_cost"`
	MaxEstimate         int      `yaml:"max_estimate"`
	ComplexityMarkers   []string `yaml:"complexity_markers"`
	LowBalanceThreshold int      `yaml:"low_balance_threshold"`
	TokensPerCredit     int      `yaml:"tokens_per_credit"`
}

func DefaultPricing() *Pricing {
	return &Pricing{
		SingleBaseCost:     1,
		EnterpriseBaseCost: 3,
		MaxEstimate:        10,
		ComplexityMarkers: []string{
			"integration", "database", "api", "branch", "schedule", "transform", "approval",
		},
		LowBalanceThreshold: 10,
		TokensPerCredit:     1000,
	}
}

// EstimateCost computes the gate cost from prompt characteristics: a per-mode
// base plus one credit per complexity marker present, clamped to MaxEstimate.
func (p *Pricing) EstimateCost(prompt string, mode models.GenerationMode) int {
	cost := p.SingleBaseCost
	if mode == models.ModeEnterprise {
		cost = p.EnterpriseBaseCost
	}

	lowered := strings.ToLower(prompt)
	for _, marker := range p.ComplexityMarkers {
		if strings.Contains(lowered, marker) {
			cost++
		}
	}

	if cost > p.MaxEstimate {
		cost = p.MaxEstimate
	}

	return cost
}

// ActualCost derives the settled cost from the generator's reported usage.
// Reported credits win; otherwise tokens convert at TokensPerCredit, with a
// one-credit floor for any completed generation.
func (p *Pricing) ActualCost(creditsUsed, tokensUsed int) int {
	if creditsUsed > 0 {
		return creditsUsed
	}

	cost := tokensUsed / p.TokensPerCredit
	if cost < 1 {
		cost = 1
	}

	return cost
}
