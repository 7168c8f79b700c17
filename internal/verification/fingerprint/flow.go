// Package fingerprint implements the biometric verification flow. The heavy
// matching runs in an external matcher service; this flow resolves candidate
// identities, normalizes the matcher's answer, and on specific match failures
// enriches the error with a best-effort quality check.
package fingerprint

import (
	"context"
	"errors"
	"log/slog"

	"custodia/internal/clients/matcher"
	"custodia/internal/verification"
	dErrors "custodia/pkg/domain-errors"
)

// Match failure codes that trigger the quality-check enrichment. Anything
// else from the matcher is surfaced without a secondary call.
var qualityCheckCodes = map[string]struct{}{
	matcher.CodeNoMatch:              {},
	matcher.CodeMissingNotCaptured:   {},
	matcher.CodeMissingAmputation:    {},
	matcher.CodeMissingUnableToPrint: {},
}

//go:generate mockgen -source=flow.go -destination=mock_flow_test.go -package=fingerprint

// Matcher is the slice of the matcher client the flow needs.
type Matcher interface {
	VerifyImage(ctx context.Context, position, image string, candidateIDs []string) (matcher.Result, error)
	VerifyTemplate(ctx context.Context, position, template string, candidateIDs []string) (matcher.Result, error)
	BulkSave(ctx context.Context, entries []matcher.Entry) error
	QualityCheck(ctx context.Context, candidateIDs []string) ([]string, error)
}

// CandidateResolver resolves external identifier pairs to identities.
type CandidateResolver interface {
	Resolve(ctx context.Context, externalIDs map[string]string, throwIfEmpty bool) ([]string, error)
}

// Onboarder mints an identity for unknown external identifiers.
type Onboarder interface {
	CreateIdentity(ctx context.Context, externalIDs map[string]string) (string, error)
}

// Config carries the posture flags altering what the flow permits.
type Config struct {
	// ExternalMatcher means the matcher is hosted by a third party. Template
	// verification and enrollment are only allowed against an internal one.
	ExternalMatcher bool
	// QualityCheckEnabled turns on the enrichment call after a match failure.
	QualityCheckEnabled bool
	// JITEnabled lets the flow provision an identity for unknown identifiers
	// through the onboarding collaborator.
	JITEnabled bool
}

// Flow is the FINGERPRINT verification plugin.
type Flow struct {
	matcher   Matcher
	resolver  CandidateResolver
	onboarder Onboarder
	cfg       Config
	logger    *slog.Logger
}

type Option func(*Flow)

func WithLogger(logger *slog.Logger) Option {
	return func(f *Flow) {
		f.logger = logger
	}
}

// WithOnboarder wires the JIT provisioning collaborator. Optional; without it
// JIT posture falls through to no-match.
func WithOnboarder(o Onboarder) Option {
	return func(f *Flow) {
		f.onboarder = o
	}
}

func New(m Matcher, resolver CandidateResolver, cfg Config, opts ...Option) (*Flow, error) {
	if m == nil || resolver == nil {
		return nil, errors.New("fingerprint flow: matcher and resolver are required")
	}
	f := &Flow{
		matcher:  m,
		resolver: resolver,
		cfg:      cfg,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Verify scores the probe against every candidate identity consistent with
// the filters.
func (f *Flow) Verify(ctx context.Context, candidates []string, params verification.Params, filters verification.Filters) (verification.Result, error) {
	candidates, extToIdentity, err := f.resolveCandidates(ctx, candidates, filters)
	if err != nil {
		return verification.Result{}, err
	}
	if len(candidates) == 0 {
		return verification.Result{}, dErrors.New(dErrors.CodeFingerprintNoMatch, "no identity to match against")
	}

	res, err := f.callMatcher(ctx, params, candidates)
	if err != nil {
		return verification.Result{}, f.translateMatchFailure(ctx, err, candidates)
	}

	// The matcher enforces this already; re-validate rather than trust the
	// transport blindly.
	if res.Status != verification.StatusMatched {
		return verification.Result{}, dErrors.New(dErrors.CodeFingerprintNoMatch, "matcher did not report a match")
	}

	agentID := res.ID
	if agentID == "" {
		agentID = extToIdentity[res.ExternalID]
	}
	if agentID == "" {
		return verification.Result{}, dErrors.New(dErrors.CodeFingerprintNoMatch, "matcher answered with an unknown identity")
	}
	return verification.Result{Status: verification.StatusMatched, ID: agentID}, nil
}

// Save forwards enrollment payloads to the matcher's bulk endpoint.
func (f *Flow) Save(ctx context.Context, agentID string, params verification.Params) error {
	if f.cfg.ExternalMatcher {
		return dErrors.New(dErrors.CodeNotImplemented, "enrollment is not supported against an external matcher")
	}
	if len(params.Biometrics) == 0 {
		return dErrors.New(dErrors.CodeValidation, "at least one biometric payload is required")
	}

	entries := make([]matcher.Entry, 0, len(params.Biometrics))
	for _, b := range params.Biometrics {
		entries = append(entries, matcher.Entry{
			Identity: agentID,
			Position: b.Position,
			Image:    b.Image,
		})
	}
	return f.matcher.BulkSave(ctx, entries)
}

// resolveCandidates unions the passed-in candidates with everything the
// filters resolve to, keeping the external-id to identity mapping so a
// matcher answer phrased as an external id can be translated back. When
// nothing resolves and JIT posture allows it, the onboarding collaborator
// mints an identity.
func (f *Flow) resolveCandidates(ctx context.Context, candidates []string, filters verification.Filters) ([]string, map[string]string, error) {
	seen := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		seen[c] = struct{}{}
	}
	extToIdentity := make(map[string]string, len(filters.ExternalIDs))

	for idType, idValue := range filters.ExternalIDs {
		ids, err := f.resolver.Resolve(ctx, map[string]string{idType: idValue}, false)
		if err != nil {
			return nil, nil, err
		}
		for _, id := range ids {
			extToIdentity[idValue] = id
			if _, dup := seen[id]; !dup {
				seen[id] = struct{}{}
				candidates = append(candidates, id)
			}
		}
	}

	if len(candidates) == 0 && f.cfg.JITEnabled && f.onboarder != nil && len(filters.ExternalIDs) > 0 {
		agentID, err := f.onboarder.CreateIdentity(ctx, filters.ExternalIDs)
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, nil, nil
		}
		if err != nil {
			return nil, nil, err
		}
		candidates = append(candidates, agentID)
		for _, idValue := range filters.ExternalIDs {
			extToIdentity[idValue] = agentID
		}
	}
	return candidates, extToIdentity, nil
}

func (f *Flow) callMatcher(ctx context.Context, params verification.Params, candidates []string) (matcher.Result, error) {
	switch {
	case params.Template != "":
		if f.cfg.ExternalMatcher {
			return matcher.Result{}, dErrors.New(dErrors.CodeNotImplemented,
				"template verification is not supported against an external matcher")
		}
		return f.matcher.VerifyTemplate(ctx, params.Position, params.Template, candidates)
	case params.Image != "":
		return f.matcher.VerifyImage(ctx, params.Position, params.Image, candidates)
	default:
		return matcher.Result{}, dErrors.New(dErrors.CodeValidation, "an image or template is required")
	}
}

// translateMatchFailure maps a matcher error to the domain taxonomy. On the
// codes that warrant it, a best-effort quality check attaches the finger
// positions most likely to succeed; its own failure is logged and swallowed,
// and the original error is always the one raised.
func (f *Flow) translateMatchFailure(ctx context.Context, err error, candidates []string) error {
	me, ok := matcher.AsMatchError(err)
	if !ok {
		return err
	}

	matchErr := dErrors.New(dErrors.CodeFingerprintNoMatch, me.Message).
		WithDetail("matcherCode", me.Code)

	if _, enrich := qualityCheckCodes[me.Code]; !enrich {
		return matchErr
	}
	if !f.cfg.QualityCheckEnabled || f.cfg.ExternalMatcher {
		return matchErr
	}

	positions, qcErr := f.matcher.QualityCheck(ctx, candidates)
	if qcErr != nil {
		f.logger.WarnContext(ctx, "quality check failed, surfacing original match error",
			"error", qcErr)
		return matchErr
	}
	return matchErr.WithDetail("bestPositions", positions)
}
