package loan

import "math"

// EMI computes the equated monthly instalment for a principal at an annual
// percentage rate over a tenure in months, using the standard reducing
// balance formula.
func EMI(principal, annualRate float64, tenureMonths int) float64 {
	if principal <= 0 || tenureMonths <= 0 {
		return 0
	}
	if annualRate == 0 {
		return round2(principal / float64(tenureMonths))
	}

	r := annualRate / (12 * 100)
	pow := math.Pow(1+r, float64(tenureMonths))
	emi := principal * r * pow / (pow - 1)
	return round2(emi)
}

// Breakdown is the full repayment math for an offer.
type Breakdown struct {
	Principal     float64 `json:"principal"`
	AnnualRate    float64 `json:"annual_rate"`
	TenureMonths  int     `json:"tenure_months"`
	EMI           float64 `json:"emi"`
	TotalAmount   float64 `json:"total_amount"`
	TotalInterest float64 `json:"total_interest"`
}

// Compute returns the EMI together with total repayment and interest.
func Compute(principal, annualRate float64, tenureMonths int) Breakdown {
	emi := EMI(principal, annualRate, tenureMonths)
	total := round2(emi * float64(tenureMonths))
	return Breakdown{
		Principal:     principal,
		AnnualRate:    annualRate,
		TenureMonths:  tenureMonths,
		EMI:           emi,
		TotalAmount:   total,
		TotalInterest: round2(total - principal),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
