package doctype

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"display name", "Salary Slip", SalarySlip},
		{"canonical key", "salary_slip", SalarySlip},
		{"synonym", "payslip", SalarySlip},
		{"plural display name", "Salary Slips", SalarySlip},
		{"identity display", "Identity Proof", IdentityProof},
		{"bank display", "Bank Statement", BankStatement},
		{"employment synonym", "employment proof", EmploymentCertificate},
		{"case and whitespace", "  SALARY SLIP  ", SalarySlip},
		{"substring match", "your latest salary slip please", SalarySlip},
		{"no match", "passport photo", ""},
		{"empty", "", ""},
		{"unrelated", "electricity bill", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.in))
		})
	}
}

func TestResolve_ExactBeforeSubstring(t *testing.T) {
	// "salary account statement" contains "salary" terms but is an exact
	// bank statement synonym; the exact pass must win.
	assert.Equal(t, BankStatement, Resolve("salary account statement"))
}

func TestIsCanonical(t *testing.T) {
	for _, key := range CanonicalKeys() {
		assert.True(t, IsCanonical(key), key)
	}
	assert.False(t, IsCanonical("pan_card"))
	assert.False(t, IsCanonical(""))
	assert.False(t, IsCanonical("Salary Slip"))
}

func TestLookup(t *testing.T) {
	info, ok := Lookup(SalarySlip)
	assert.True(t, ok)
	assert.Equal(t, "Salary Slips", info.Name)

	_, ok = Lookup("unknown")
	assert.False(t, ok)
}

func TestCanonicalKeys_Order(t *testing.T) {
	assert.Equal(t, []string{
		IdentityProof, AddressProof, BankStatement, SalarySlip, EmploymentCertificate,
	}, CanonicalKeys())
}

func TestFallbackID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Property Papers", "property_papers"},
		{"  Form 16 (latest)  ", "form_16_latest"},
		{"already_snake", "already_snake"},
		{"---", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FallbackID(tt.in), tt.in)
	}
}
