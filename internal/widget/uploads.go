package widget

import (
	"fmt"
	"strings"
	"sync"

	"github.com/vittamhq/loan-widget/internal/doctype"
)

// uploadJob is one resolved requirement ready to submit.
type uploadJob struct {
	req   Requirement
	docID string
	att   Attachment
}

// resolveDocID derives the canonical key for a requirement: the server's
// doc_id wins, then name resolution, then a synthesized fallback. An empty
// result means the requirement cannot be uploaded at all.
func (i *Instance) resolveDocID(req Requirement) string {
	if req.DocID != "" {
		return req.DocID
	}
	if id := doctype.Resolve(req.Name); id != "" {
		return id
	}
	if id := doctype.FallbackID(req.Name); id != "" {
		i.logger.Warn().Str("name", req.Name).Str("fallback", id).Msg("using synthesized doc id, backend may reject it")
		return id
	}
	return ""
}

// runSubmission is the upload-then-verify cycle. It runs with the submission
// guard held; every exit path decides whether the guard is released and which
// of the requirement list and file map survive.
func (i *Instance) runSubmission(sessionID string, reqs []Requirement, files map[string]Attachment) {
	var jobs []uploadJob
	for _, r := range reqs {
		docID := i.resolveDocID(r)
		if docID == "" {
			i.logger.Warn().Str("name", r.Name).Msg("no doc id derivable, skipping document")
			continue
		}
		jobs = append(jobs, uploadJob{req: r, docID: docID, att: files[r.Name]})
	}
	if len(jobs) == 0 {
		i.releaseGuard()
		return
	}

	// All uploads go out concurrently; the verify step waits for every one.
	errs := make([]error, len(jobs))
	ids := make([]string, len(jobs))
	var wg sync.WaitGroup
	for idx := range jobs {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			res, err := i.client.UploadDocument(i.ctx, sessionID, jobs[idx].docID, jobs[idx].att.FileName, jobs[idx].att.Contents)
			if err != nil {
				errs[idx] = err
				return
			}
			ids[idx] = res.DocumentID
		}(idx)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			// Abort the whole cycle but keep the user's selections so the
			// set can be retried as-is.
			i.logger.Error().Err(err).Msg("document upload failed")
			i.failSubmission(err)
			return
		}
	}

	outcome, err := i.client.VerifySessionDocuments(i.ctx, sessionID)
	if err != nil {
		i.logger.Error().Err(err).Msg("verification call failed")
		i.failSubmission(err)
		return
	}

	if outcome.AllVerified {
		i.completeSubmission(outcome, ids)
		return
	}
	i.partialSubmission(outcome, jobs)
}

// failSubmission converts any upload or verify failure into a generic
// apology. Files stay attached; the guard is released for a retry.
func (i *Instance) failSubmission(err error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.state == StateClosed {
		return
	}
	i.appendLocked(Message{Role: RoleBot, Text: "I couldn't process your documents just now. Your files are still attached, please try again in a moment."})
	i.emit(Event{Type: EventError, Err: err})
	i.submitting = false
}

// completeSubmission handles the all-verified branch: summary, synthesized
// continuation carrying the server-side document ids, and a full reset of
// requirements and files.
func (i *Instance) completeSubmission(outcome *VerifyOutcome, documentIDs []string) {
	i.mu.Lock()
	if i.state == StateClosed {
		i.mu.Unlock()
		return
	}
	i.appendLocked(Message{Role: RoleBot, Text: fmt.Sprintf("All %d documents verified successfully.", outcome.VerifiedCount)})
	i.files = make(map[string]Attachment)
	i.setRequirementsLocked(nil)
	i.submitting = false
	i.mu.Unlock()

	continuation := "I have uploaded the requested documents and they are verified. Document references: " + strings.Join(documentIDs, ", ")
	i.SendMessage(continuation)
}

// partialSubmission handles rejection: rejected files are dropped (matched by
// canonical id) so the user can re-attach them, verified ones stay, and the
// requirement list survives untouched until everything passes.
func (i *Instance) partialSubmission(outcome *VerifyOutcome, jobs []uploadJob) {
	rejected := make(map[string]DocumentResult)
	for _, res := range outcome.Results {
		if !res.Verified {
			rejected[res.DocID] = res
		}
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("%d of %d documents verified.", outcome.VerifiedCount, outcome.Total))
	for _, j := range jobs {
		res, ok := rejected[j.docID]
		if !ok {
			continue
		}
		feedback := res.Feedback
		if feedback == "" {
			feedback = "The document could not be verified."
		}
		lines = append(lines, fmt.Sprintf("%s: %s Please upload it again.", j.req.Name, feedback))
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	if i.state == StateClosed {
		return
	}
	for _, j := range jobs {
		if _, ok := rejected[j.docID]; ok {
			delete(i.files, j.req.Name)
		}
	}
	i.appendLocked(Message{Role: RoleBot, Text: strings.Join(lines, "\n")})
	i.submitting = false
}

func (i *Instance) releaseGuard() {
	i.mu.Lock()
	i.submitting = false
	i.mu.Unlock()
}
