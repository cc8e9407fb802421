package loan

// rateBand is one row of the internal rate card, selected by credit score.
// Within a band the quoted rate improves with ticket size.
type rateBand struct {
	minScore int
	minRate  float64
	midRate  float64
	maxRate  float64
}

var rateCard = []rateBand{
	{minScore: 750, minRate: 10.5, midRate: 11.25, maxRate: 12.0},
	{minScore: 700, minRate: 12.5, midRate: 13.5, maxRate: 14.5},
	{minScore: 650, minRate: 15.0, midRate: 16.5, maxRate: 18.0},
	{minScore: 0, minRate: 18.5, midRate: 21.0, maxRate: 24.0},
}

// Ticket-size thresholds for rate selection within a band.
const (
	largeTicket = 1000000
	midTicket   = 500000
)

// RateFor quotes an annual interest rate for a credit score and loan amount.
func RateFor(creditScore int, amount float64) float64 {
	for _, band := range rateCard {
		if creditScore >= band.minScore {
			switch {
			case amount >= largeTicket:
				return band.minRate
			case amount >= midTicket:
				return band.midRate
			default:
				return band.maxRate
			}
		}
	}
	return rateCard[len(rateCard)-1].maxRate
}
