// Package matcher talks to the biometric matcher service. The matcher scores
// a fingerprint image or template against a set of candidate identities and
// answers with a match status. Template verification and bulk enrollment only
// exist on the internally hosted matcher; posture checks live in the
// verification flows, not here.
package matcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"custodia/internal/platform/httpclient"
	dErrors "custodia/pkg/domain-errors"
)

// Match failure codes returned by the matcher. The missing-finger variants
// get the same quality-check treatment as a plain no-match.
const (
	CodeNoMatch              = "NO_MATCH"
	CodeMissingNotCaptured   = "MISSING_NOT_CAPTURED"
	CodeMissingAmputation    = "MISSING_AMPUTATION"
	CodeMissingUnableToPrint = "MISSING_UNABLE_TO_PRINT"
)

// MatchError is a semantic failure from the matcher, carrying its error code.
type MatchError struct {
	Code    string
	Message string
}

func (e *MatchError) Error() string {
	return fmt.Sprintf("matcher: %s: %s", e.Code, e.Message)
}

// AsMatchError unwraps err to a MatchError if one is present.
func AsMatchError(err error) (*MatchError, bool) {
	var me *MatchError
	if errors.As(err, &me) {
		return me, true
	}
	return nil, false
}

// Result is the matcher's answer for a verification call. Exactly one of ID
// and ExternalID is set on a match; which one depends on how the matcher was
// enrolled.
type Result struct {
	Status     string `json:"status"`
	ID         string `json:"id"`
	ExternalID string `json:"externalId"`
}

// Entry is one enrollment payload for bulk save.
type Entry struct {
	Identity string `json:"identity"`
	Position string `json:"position"`
	Image    string `json:"image"`
}

// Client is the HTTP client for the matcher service.
type Client struct {
	http    *httpclient.Client
	baseURL string
}

func New(http *httpclient.Client, baseURL string) *Client {
	return &Client{http: http, baseURL: baseURL}
}

type verifyRequest struct {
	Position     string   `json:"position"`
	Image        string   `json:"image,omitempty"`
	Template     string   `json:"template,omitempty"`
	CandidateIDs []string `json:"candidateIds"`
}

// VerifyImage scores an image against the candidate identities.
func (c *Client) VerifyImage(ctx context.Context, position, image string, candidateIDs []string) (Result, error) {
	return c.verify(ctx, verifyRequest{Position: position, Image: image, CandidateIDs: candidateIDs})
}

// VerifyTemplate scores a pre-extracted template against the candidates.
func (c *Client) VerifyTemplate(ctx context.Context, position, template string, candidateIDs []string) (Result, error) {
	return c.verify(ctx, verifyRequest{Position: position, Template: template, CandidateIDs: candidateIDs})
}

func (c *Client) verify(ctx context.Context, req verifyRequest) (Result, error) {
	var res Result
	err := c.http.PostJSON(ctx, c.baseURL+"/v1/verify", req, &res)
	if err != nil {
		return Result{}, translate(err)
	}
	return res, nil
}

// BulkSave enrolls one or more biometric payloads.
func (c *Client) BulkSave(ctx context.Context, entries []Entry) error {
	err := c.http.PostJSON(ctx, c.baseURL+"/v1/enrollments/bulk",
		map[string][]Entry{"entries": entries}, nil)
	if err != nil {
		return translate(err)
	}
	return nil
}

// QualityCheck returns the finger positions most likely to match for the
// candidates, used to enrich a no-match error with actionable detail.
func (c *Client) QualityCheck(ctx context.Context, candidateIDs []string) ([]string, error) {
	var res struct {
		Positions []string `json:"positions"`
	}
	err := c.http.PostJSON(ctx, c.baseURL+"/v1/quality-check",
		map[string][]string{"candidateIds": candidateIDs}, &res)
	if err != nil {
		return nil, translate(err)
	}
	return res.Positions, nil
}

// translate turns a 4xx matcher response carrying {code, message} into a
// MatchError. Anything else passes through unchanged.
func translate(err error) error {
	var se *httpclient.StatusError
	if !errors.As(err, &se) {
		return err
	}

	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if jsonErr := json.Unmarshal(se.Body, &body); jsonErr != nil || body.Code == "" {
		return dErrors.Wrap(err, dErrors.CodeInternal, "matcher returned an unreadable error")
	}
	return &MatchError{Code: body.Code, Message: body.Message}
}
