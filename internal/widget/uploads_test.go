package widget_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vittamhq/loan-widget/internal/widget"
)

// requestDocuments drives one chat turn whose reply asks for the given
// documents, leaving the instance with a pending requirement set.
func requestDocuments(t *testing.T, f *fakeBackend, inst *widget.Instance, docs ...map[string]any) {
	f.mu.Lock()
	f.chatReply = func(string) map[string]any {
		return map[string]any{
			"response":  "Please upload the documents.",
			"documents": docs,
			"stage":     "verification",
		}
	}
	f.mu.Unlock()

	inst.SendMessage("I want a loan")
	require.Len(t, inst.Requirements(), len(docs))

	// Later turns go back to plain replies.
	f.mu.Lock()
	f.chatReply = nil
	f.mu.Unlock()
}

func identityAndBank() []map[string]any {
	return []map[string]any{
		{"name": "Identity Proof", "doc_id": "identity_proof"},
		{"name": "Bank Statement", "doc_id": "bank_statement"},
	}
}

func TestUploads_PartialSetNeverTriggers(t *testing.T) {
	f := newFakeBackend(t)
	_, inst := mountOn(t, f)
	requestDocuments(t, f, inst, identityAndBank()...)

	inst.AttachFile("Identity Proof", "id.jpg", []byte("jpeg"))

	assert.Equal(t, 0, f.uploadCount("identity_proof"))
	_, _, verifies := f.counts()
	assert.Equal(t, 0, verifies)
}

func TestUploads_AllVerifiedClearsEverything(t *testing.T) {
	f := newFakeBackend(t)
	f.verifyReply = func() map[string]any {
		return map[string]any{
			"all_verified":    true,
			"total_documents": 2,
			"verified_count":  2,
			"rejected_count":  0,
			"results": []map[string]any{
				{"document_id": "doc-identity_proof", "doc_id": "identity_proof", "verified": true, "status": "verified"},
				{"document_id": "doc-bank_statement", "doc_id": "bank_statement", "verified": true, "status": "verified"},
			},
		}
	}
	_, inst := mountOn(t, f)
	requestDocuments(t, f, inst, identityAndBank()...)

	inst.AttachFile("Identity Proof", "id.jpg", []byte("jpeg"))
	inst.AttachFile("Bank Statement", "stmt.png", []byte("png"))

	assert.Equal(t, 1, f.uploadCount("identity_proof"))
	assert.Equal(t, 1, f.uploadCount("bank_statement"))
	_, _, verifies := f.counts()
	assert.Equal(t, 1, verifies)

	// Requirements cleared; a synthesized continuation went to chat with
	// the server-side document references.
	assert.Empty(t, inst.Requirements())
	assert.Contains(t, f.lastChatBody(), "doc-identity_proof")
	assert.Contains(t, f.lastChatBody(), "doc-bank_statement")

	// Success summary landed in the transcript before the continuation.
	var sawSummary bool
	for _, m := range inst.Transcript() {
		if m.Role == widget.RoleBot && strings.Contains(m.Text, "2 documents verified") {
			sawSummary = true
		}
	}
	assert.True(t, sawSummary)
}

func TestUploads_PartialRejectionRetry(t *testing.T) {
	f := newFakeBackend(t)
	f.verifyReply = func() map[string]any {
		return map[string]any{
			"all_verified":    false,
			"total_documents": 2,
			"verified_count":  1,
			"rejected_count":  1,
			"results": []map[string]any{
				{"document_id": "doc-identity_proof", "doc_id": "identity_proof", "doc_name": "Identity Proof", "verified": false, "status": "rejected", "feedback": "The image is unreadable."},
				{"document_id": "doc-bank_statement", "doc_id": "bank_statement", "doc_name": "Bank Statement", "verified": true, "status": "verified"},
			},
		}
	}
	_, inst := mountOn(t, f)
	requestDocuments(t, f, inst, identityAndBank()...)

	inst.AttachFile("Bank Statement", "stmt.png", []byte("png"))
	inst.AttachFile("Identity Proof", "id.jpg", []byte("jpeg"))

	_, _, verifies := f.counts()
	require.Equal(t, 1, verifies)

	// Requirements survive rejection, and the rejection feedback reaches
	// the transcript.
	assert.Len(t, inst.Requirements(), 2)
	var sawFeedback bool
	for _, m := range inst.Transcript() {
		if strings.Contains(m.Text, "The image is unreadable.") {
			sawFeedback = true
		}
	}
	assert.True(t, sawFeedback)

	// The verified document's file was kept: re-attaching only the
	// rejected one re-triggers exactly one more cycle.
	f.mu.Lock()
	f.verifyReply = func() map[string]any {
		return map[string]any{
			"all_verified":    true,
			"total_documents": 2,
			"verified_count":  2,
			"rejected_count":  0,
			"results": []map[string]any{
				{"document_id": "doc-identity_proof", "doc_id": "identity_proof", "verified": true, "status": "verified"},
				{"document_id": "doc-bank_statement", "doc_id": "bank_statement", "verified": true, "status": "already_verified"},
			},
		}
	}
	f.mu.Unlock()

	inst.AttachFile("Identity Proof", "id2.jpg", []byte("jpeg2"))

	_, _, verifies = f.counts()
	assert.Equal(t, 2, verifies)
	assert.Empty(t, inst.Requirements())
}

func TestUploads_RejectedStateDoesNotRefire(t *testing.T) {
	f := newFakeBackend(t)
	f.verifyReply = func() map[string]any {
		return map[string]any{
			"all_verified":    false,
			"total_documents": 2,
			"verified_count":  1,
			"rejected_count":  1,
			"results": []map[string]any{
				{"document_id": "doc-identity_proof", "doc_id": "identity_proof", "verified": false, "status": "rejected"},
				{"document_id": "doc-bank_statement", "doc_id": "bank_statement", "verified": true, "status": "verified"},
			},
		}
	}
	_, inst := mountOn(t, f)
	requestDocuments(t, f, inst, identityAndBank()...)

	inst.AttachFile("Bank Statement", "stmt.png", []byte("png"))
	inst.AttachFile("Identity Proof", "id.jpg", []byte("jpeg"))

	// Re-attaching the already-verified document while the rejected one is
	// still missing must not start another cycle.
	inst.AttachFile("Bank Statement", "stmt2.png", []byte("png2"))

	_, _, verifies := f.counts()
	assert.Equal(t, 1, verifies)
}

func TestUploads_UploadFailureKeepsFiles(t *testing.T) {
	f := newFakeBackend(t)
	f.failUpload = true
	_, inst := mountOn(t, f)
	requestDocuments(t, f, inst, map[string]any{"name": "Identity Proof", "doc_id": "identity_proof"})

	inst.AttachFile("Identity Proof", "id.jpg", []byte("jpeg"))

	_, _, verifies := f.counts()
	assert.Equal(t, 0, verifies)
	assert.Len(t, inst.Requirements(), 1)

	// Files survived the failure: once the backend recovers, re-attaching
	// the same requirement runs a full cycle again.
	f.mu.Lock()
	f.failUpload = false
	f.verifyReply = func() map[string]any {
		return map[string]any{
			"all_verified":    true,
			"total_documents": 1,
			"verified_count":  1,
			"results": []map[string]any{
				{"document_id": "doc-identity_proof", "doc_id": "identity_proof", "verified": true, "status": "verified"},
			},
		}
	}
	f.mu.Unlock()

	inst.AttachFile("Identity Proof", "id.jpg", []byte("jpeg"))

	_, _, verifies = f.counts()
	assert.Equal(t, 1, verifies)
	assert.Empty(t, inst.Requirements())
}

func TestUploads_NameResolutionFallback(t *testing.T) {
	f := newFakeBackend(t)
	f.verifyReply = func() map[string]any {
		return map[string]any{
			"all_verified":    true,
			"total_documents": 1,
			"verified_count":  1,
			"results": []map[string]any{
				{"document_id": "doc-salary_slip", "doc_id": "salary_slip", "verified": true, "status": "verified"},
			},
		}
	}
	_, inst := mountOn(t, f)

	// No server-side doc_id: the client must resolve "Salary Slip" itself.
	requestDocuments(t, f, inst, map[string]any{"name": "Salary Slip"})

	inst.AttachFile("Salary Slip", "slip.pdf", []byte("pdf"))

	assert.Equal(t, 1, f.uploadCount("salary_slip"))
}
