package doctype

import (
	"regexp"
	"strings"
)

// Requirement is a document the assistant is asking the user to upload.
type Requirement struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	DocID       string `json:"doc_id,omitempty"`
}

// uploadContext gates detection: a reply only counts as a document request
// when it talks about uploading/sharing/submitting something.
var uploadContext = []*regexp.Regexp{
	regexp.MustCompile(`upload`),
	regexp.MustCompile(`share`),
	regexp.MustCompile(`provide`),
	regexp.MustCompile(`submit`),
	regexp.MustCompile(`attach`),
	regexp.MustCompile(`send\s*(me|us)?`),
	regexp.MustCompile(`need.*document`),
	regexp.MustCompile(`require.*document`),
	regexp.MustCompile(`please.*document`),
}

// natural-language patterns per canonical type, used after exact key
// matching. PAN is deliberately absent: the assistant asks for the PAN
// number in chat, it is never an upload.
var detectPatterns = map[string][]*regexp.Regexp{
	IdentityProof: {
		regexp.MustCompile(`identity\s*proof`),
		regexp.MustCompile(`id\s*proof`),
		regexp.MustCompile(`photo\s*id`),
		regexp.MustCompile(`aadhaa?r`),
		regexp.MustCompile(`voter\s*id`),
		regexp.MustCompile(`passport`),
		regexp.MustCompile(`driving\s*licen[sc]e`),
	},
	AddressProof: {
		regexp.MustCompile(`address\s*proof`),
	},
	BankStatement: {
		regexp.MustCompile(`bank\s*statement`),
		regexp.MustCompile(`salary\s*account\s*statement`),
	},
	SalarySlip: {
		regexp.MustCompile(`salary\s*slip`),
		regexp.MustCompile(`pay\s*slip`),
		regexp.MustCompile(`salary\s*certificate`),
	},
	EmploymentCertificate: {
		regexp.MustCompile(`employment\s*certificate`),
		regexp.MustCompile(`employment\s*proof`),
		regexp.MustCompile(`job\s*certificate`),
	},
}

var keyPatterns = buildKeyPatterns()

func buildKeyPatterns() map[string]*regexp.Regexp {
	m := make(map[string]*regexp.Regexp, len(Types))
	for _, t := range Types {
		m[t.DocID] = regexp.MustCompile(`\b` + regexp.QuoteMeta(t.DocID) + `\b`)
	}
	return m
}

// DetectRequests scans an assistant reply for document upload requests and
// returns the matching requirements in canonical order. Exact standardized
// keys ("identity_proof") are checked first, then the natural-language
// patterns. Only the five canonical types can ever be returned.
func DetectRequests(reply string) []Requirement {
	lower := strings.ToLower(reply)

	inContext := false
	for _, p := range uploadContext {
		if p.MatchString(lower) {
			inContext = true
			break
		}
	}
	if !inContext {
		return nil
	}

	var reqs []Requirement
	seen := make(map[string]bool)

	for _, t := range Types {
		if keyPatterns[t.DocID].MatchString(lower) {
			seen[t.DocID] = true
			reqs = append(reqs, Requirement{Name: t.Name, Description: t.Description, DocID: t.DocID})
		}
	}

	for _, t := range Types {
		if seen[t.DocID] {
			continue
		}
		for _, p := range detectPatterns[t.DocID] {
			if p.MatchString(lower) {
				seen[t.DocID] = true
				reqs = append(reqs, Requirement{Name: t.Name, Description: t.Description, DocID: t.DocID})
				break
			}
		}
	}

	return reqs
}
