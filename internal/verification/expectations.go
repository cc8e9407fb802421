package verification

import "github.com/vittamhq/loan-widget/internal/doctype"

// expectation describes what the vision model should find in an uploaded
// document of a given canonical type.
type expectation struct {
	ExpectedContent string
	KeyFields       []string
}

var expectations = map[string]expectation{
	doctype.IdentityProof: {
		ExpectedContent: "a government issued photo identity document such as an Aadhaar card, PAN card, passport, voter ID, or driving licence",
		KeyFields:       []string{"full name", "document number", "photograph"},
	},
	doctype.AddressProof: {
		ExpectedContent: "a document showing a residential address such as an Aadhaar card, utility bill, rent agreement, or passport",
		KeyFields:       []string{"full name", "residential address"},
	},
	doctype.BankStatement: {
		ExpectedContent: "a bank account statement with transactions",
		KeyFields:       []string{"account holder name", "account number", "transaction entries"},
	},
	doctype.SalarySlip: {
		ExpectedContent: "a salary slip or pay slip issued by an employer",
		KeyFields:       []string{"employee name", "employer name", "net pay or gross pay"},
	},
	doctype.EmploymentCertificate: {
		ExpectedContent: "an employment certificate or offer letter on company letterhead",
		KeyFields:       []string{"employee name", "employer name", "designation or joining date"},
	},
}
