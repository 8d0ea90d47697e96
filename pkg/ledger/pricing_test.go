package ledger

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/thecyberginehost/streamsuite-sub000/pkg/models"
)

func TestPricing_EstimateBase(t *testing.T) {
	pricing := DefaultPricing()

	assert.Equal(t, 1, pricing.EstimateCost("send me a slack message", models.ModeSingle))
	assert.Equal(t, 3, pricing.EstimateCost("send me a slack message", models.ModeEnterprise))
}

func TestPricing_EstimateComplexityMarkers(t *testing.T) {
	pricing := DefaultPricing()

	cost := pricing.EstimateCost("sync my database with the CRM API on a schedule", models.ModeSingle)

	// base 1 + database + api + schedule
	assert.Equal(t, 4, cost)
}

func TestPricing_EstimateClamped(t *testing.T) {
	pricing := DefaultPricing()
	prompt := strings.Join(pricing.ComplexityMarkers, " ") + " " + strings.Join(pricing.ComplexityMarkers, " ")

	assert.Equal(t, pricing.MaxEstimate, pricing.EstimateCost(prompt, models.ModeEnterprise))
}

func TestPricing_ActualCostPrefersReportedCredits(t *testing.T) {
	pricing := DefaultPricing()

	assert.Equal(t, 7, pricing.ActualCost(7, 50000))
}

func TestPricing_ActualCostFromTokens(t *testing.T) {
	pricing := DefaultPricing()

	assert.Equal(t, 3, pricing.ActualCost(0, 3500))
	assert.Equal(t, 1, pricing.ActualCost(0, 10))
}
