// Package doctype is the single source of truth for the five canonical
// loan-document types. Both the widget runtime and the API use it; neither
// side may invent document categories outside this set.
package doctype

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
)

// Canonical document keys. These are the ONLY doc ids the backend accepts.
const (
	IdentityProof         = "identity_proof"
	AddressProof          = "address_proof"
	BankStatement         = "bank_statement"
	SalarySlip            = "salary_slip"
	EmploymentCertificate = "employment_certificate"
)

// Info describes one canonical document type.
type Info struct {
	DocID       string
	Name        string
	Description string
	Mandatory   bool
}

// Types lists the canonical document types in fixed declaration order.
// Order matters: it is the tie-break for substring resolution.
var Types = []Info{
	{
		DocID:       IdentityProof,
		Name:        "Identity Proof",
		Description: "Aadhaar Card / Voter ID / Passport / Driving License",
		Mandatory:   true,
	},
	{
		DocID:       AddressProof,
		Name:        "Address Proof",
		Description: "Aadhaar Card / Voter ID / Passport / Driving License",
		Mandatory:   true,
	},
	{
		DocID:       BankStatement,
		Name:        "Bank Statement",
		Description: "Primary bank statement (salary account) for last 3 months",
		Mandatory:   true,
	},
	{
		DocID:       SalarySlip,
		Name:        "Salary Slips",
		Description: "Salary slips for last 2 months",
	},
	{
		DocID:       EmploymentCertificate,
		Name:        "Employment Certificate",
		Description: "Certificate confirming at least 1 year of continuous employment",
	},
}

// resolution table: canonical key, display-name variants, and known synonyms,
// in declaration order. The first matching entry wins.
var resolveTable = []struct {
	term  string
	docID string
}{
	{"identity_proof", IdentityProof},
	{"identity proof", IdentityProof},
	{"id proof", IdentityProof},
	{"photo id", IdentityProof},
	{"address_proof", AddressProof},
	{"address proof", AddressProof},
	{"bank_statement", BankStatement},
	{"bank statement", BankStatement},
	{"salary account statement", BankStatement},
	{"salary_slip", SalarySlip},
	{"salary slip", SalarySlip},
	{"salary slips", SalarySlip},
	{"payslip", SalarySlip},
	{"pay slip", SalarySlip},
	{"salary certificate", SalarySlip},
	{"employment_certificate", EmploymentCertificate},
	{"employment certificate", EmploymentCertificate},
	{"employment proof", EmploymentCertificate},
	{"job certificate", EmploymentCertificate},
}

// IsCanonical reports whether docID is one of the five allowed keys.
func IsCanonical(docID string) bool {
	for _, t := range Types {
		if t.DocID == docID {
			return true
		}
	}
	return false
}

// Lookup returns the Info for a canonical key.
func Lookup(docID string) (Info, bool) {
	for _, t := range Types {
		if t.DocID == docID {
			return t, true
		}
	}
	return Info{}, false
}

// CanonicalKeys returns the allowed keys in declaration order.
func CanonicalKeys() []string {
	keys := make([]string, len(Types))
	for i, t := range Types {
		keys[i] = t.DocID
	}
	return keys
}

// Resolve maps a display name to its canonical key. The input is lowercased
// and trimmed, checked against the exact-match table, and only then matched
// by substring across the same table. Returns "" when nothing matches; it
// never guesses a new category.
func Resolve(displayName string) string {
	name := strings.ToLower(strings.TrimSpace(displayName))
	if name == "" {
		return ""
	}

	for _, entry := range resolveTable {
		if name == entry.term {
			return entry.docID
		}
	}

	for _, entry := range resolveTable {
		if strings.Contains(name, entry.term) {
			return entry.docID
		}
	}

	log.Warn().
		Str("name", displayName).
		Strs("allowed", CanonicalKeys()).
		Msg("document name did not resolve to a canonical doc id")
	return ""
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// FallbackID synthesizes a degraded key from a display name: lowercase with
// non-alphanumeric runs collapsed to underscores. Used only when Resolve
// fails; the result is not guaranteed to be accepted by the backend.
func FallbackID(displayName string) string {
	id := strings.ToLower(strings.TrimSpace(displayName))
	id = nonAlnum.ReplaceAllString(id, "_")
	return strings.Trim(id, "_")
}
