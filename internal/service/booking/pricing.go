package booking

import (
	"math"

	"github.com/opdbook/booking-api/internal/config"
	"github.com/opdbook/booking-api/internal/model"
	"github.com/opdbook/booking-api/pkg/errors"
)

// quoteFee prices a consultation off the configured fee schedule. Tax is
// added on the domestic branch only, rounded to the nearest whole unit.
func quoteFee(pricing config.PricingConfig, region model.PatientRegion, visit model.VisitType) (*model.Quote, error) {
	fee, ok := pricing.Fee(region, visit)
	if !ok {
		return nil, errors.NewBadRequest("no fee configured for this consultation type", nil)
	}

	q := &model.Quote{
		Base:     fee.Amount,
		Currency: fee.Currency,
	}
	if region == model.RegionDomestic {
		q.Tax = int64(math.Round(float64(fee.Amount) * pricing.GSTRate))
	}
	q.Total = q.Base + q.Tax
	return q, nil
}
