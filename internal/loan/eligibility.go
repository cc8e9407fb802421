package loan

// EligibilityStatus is the outcome of an eligibility check.
type EligibilityStatus string

const (
	EligibilityInstant     EligibilityStatus = "instant_approval"
	EligibilityConditional EligibilityStatus = "conditional_approval"
	EligibilityRejected    EligibilityStatus = "rejected"
)

// Minimum credit score for any unsecured personal loan.
const minCreditScore = 700

// Decision is the result of evaluating a loan request against the
// customer's profile.
type Decision struct {
	Status             EligibilityStatus `json:"status"`
	Reason             string            `json:"reason"`
	RequiresSalarySlip bool              `json:"requires_salary_slip"`
	MaxInstantAmount   float64           `json:"max_instant_amount,omitempty"`
	EstimatedEMI       float64           `json:"estimated_emi,omitempty"`
}

// Profile is the subset of customer data the eligibility rules consume.
// Salary is a pointer because it is unknown until a salary slip is verified.
type Profile struct {
	CreditScore      int
	PreApprovedLimit float64
	Salary           *float64
}

// Evaluate applies the underwriting rules to a loan request.
//
// Requests within the pre-approved limit clear instantly. Requests above the
// limit but within twice the limit are approved conditionally, subject to an
// EMI affordability check when salary is known and to salary verification
// when it is not. Anything above twice the limit, or below the score floor,
// is rejected.
func Evaluate(p Profile, amount float64, tenureMonths int, annualRate float64) Decision {
	if p.CreditScore < minCreditScore {
		return Decision{
			Status: EligibilityRejected,
			Reason: "credit score below the minimum required for a personal loan",
		}
	}

	if amount > 2*p.PreApprovedLimit {
		return Decision{
			Status:           EligibilityRejected,
			Reason:           "requested amount exceeds twice the pre-approved limit",
			MaxInstantAmount: p.PreApprovedLimit,
		}
	}

	if amount <= p.PreApprovedLimit {
		return Decision{
			Status:           EligibilityInstant,
			Reason:           "within pre-approved limit",
			MaxInstantAmount: p.PreApprovedLimit,
		}
	}

	emi := EMI(amount, annualRate, tenureMonths)

	if p.Salary == nil {
		return Decision{
			Status:             EligibilityConditional,
			Reason:             "above pre-approved limit, income verification needed",
			RequiresSalarySlip: true,
			MaxInstantAmount:   p.PreApprovedLimit,
			EstimatedEMI:       emi,
		}
	}

	if emi > 0.5*(*p.Salary) {
		return Decision{
			Status:           EligibilityRejected,
			Reason:           "monthly instalment would exceed half of monthly income",
			MaxInstantAmount: p.PreApprovedLimit,
			EstimatedEMI:     emi,
		}
	}

	return Decision{
		Status:           EligibilityConditional,
		Reason:           "above pre-approved limit, instalment within affordability",
		MaxInstantAmount: p.PreApprovedLimit,
		EstimatedEMI:     emi,
	}
}
