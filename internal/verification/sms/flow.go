// Package sms implements the SMS one-time passcode verification flow. Per
// identity the flow is a small state machine: no pending OTP, OTP sent, then
// matched or expired. A request with a phone number is the send phase; a
// request with an OTP is the verify phase.
package sms

import (
	"context"
	"crypto/rand"
	"errors"
	"io"
	"log/slog"
	"time"

	"custodia/internal/clients/sms"
	"custodia/internal/identity"
	"custodia/internal/otp"
	"custodia/internal/platform/hashing"
	"custodia/internal/platform/metrics"
	"custodia/internal/ratelimit"
	"custodia/internal/verification"
	dErrors "custodia/pkg/domain-errors"
	"custodia/pkg/platform/sentinel"
)

// RateLimiter is the slice of the limiter the flow needs.
type RateLimiter interface {
	RecordAttempt(ctx context.Context, bucket ratelimit.Bucket, key string) error
	IsLimited(ctx context.Context, bucket ratelimit.Bucket, key string) (bool, error)
}

// Flow is the SMS_OTP verification plugin.
type Flow struct {
	store   otp.Store
	limiter RateLimiter
	sender  sms.Sender
	hasher  *hashing.Hasher
	logger  *slog.Logger
	metrics *metrics.Metrics
	random  io.Reader
	now     func() time.Time
}

type Option func(*Flow)

func WithLogger(logger *slog.Logger) Option {
	return func(f *Flow) {
		f.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(f *Flow) {
		f.metrics = m
	}
}

// WithRandom overrides the OTP random source; tests inject a seeded reader.
func WithRandom(r io.Reader) Option {
	return func(f *Flow) {
		f.random = r
	}
}

// WithClock overrides the flow's clock.
func WithClock(now func() time.Time) Option {
	return func(f *Flow) {
		f.now = now
	}
}

func New(store otp.Store, limiter RateLimiter, sender sms.Sender, hasher *hashing.Hasher, opts ...Option) (*Flow, error) {
	if store == nil || limiter == nil || sender == nil || hasher == nil {
		return nil, errors.New("sms flow: store, limiter, sender and hasher are required")
	}
	f := &Flow{
		store:   store,
		limiter: limiter,
		sender:  sender,
		hasher:  hasher,
		logger:  slog.Default(),
		random:  rand.Reader,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Verify runs one phase of the OTP protocol. Rate limits are checked and
// recorded before any OTP access, under the authorization key first when one
// is present, then always under the resolved identity. A blocked caller never
// reaches send or verify.
func (f *Flow) Verify(ctx context.Context, candidates []string, params verification.Params, _ verification.Filters) (verification.Result, error) {
	agentID, err := identity.RequireSingle(candidates)
	if err != nil {
		return verification.Result{}, err
	}

	bucket := ratelimit.BucketVerifyOTP
	if params.PhoneNumber != "" {
		bucket = ratelimit.BucketSendOTP
	}

	if params.AuthKey != "" {
		if err := f.checkAndRecord(ctx, bucket, params.AuthKey); err != nil {
			return verification.Result{}, err
		}
	}
	if err := f.checkAndRecord(ctx, bucket, agentID); err != nil {
		return verification.Result{}, err
	}

	if params.PhoneNumber != "" {
		return f.send(ctx, agentID, params.PhoneNumber)
	}
	return f.verifyOtp(ctx, agentID, params.Otp)
}

// Save registers or overwrites the phone number association for an identity.
// Independent of send/verify.
func (f *Flow) Save(ctx context.Context, agentID string, params verification.Params) error {
	if params.PhoneNumber == "" {
		return dErrors.New(dErrors.CodeValidation, "phone number is required")
	}
	if err := f.store.SavePhoneNumber(ctx, agentID, f.hasher.Hash(params.PhoneNumber)); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "save phone number")
	}
	return nil
}

func (f *Flow) checkAndRecord(ctx context.Context, bucket ratelimit.Bucket, key string) error {
	blocked, err := f.limiter.IsLimited(ctx, bucket, key)
	if err != nil {
		return err
	}
	if blocked {
		return dErrors.New(dErrors.CodeTooManyAttempts, "too many attempts, try again later")
	}
	return f.limiter.RecordAttempt(ctx, bucket, key)
}

func (f *Flow) send(ctx context.Context, agentID, phoneNumber string) (verification.Result, error) {
	code, err := otp.Generate(f.random)
	if err != nil {
		return verification.Result{}, dErrors.Wrap(err, dErrors.CodeInternal, "generate otp")
	}

	expiresAt := f.now().Add(otp.Window)
	err = f.store.SaveOtp(ctx, agentID, f.hasher.Hash(phoneNumber), code, expiresAt)
	if errors.Is(err, sentinel.ErrNotFound) {
		return verification.Result{}, dErrors.New(dErrors.CodeNotFound, "no phone registration for this identity")
	}
	if err != nil {
		return verification.Result{}, dErrors.Wrap(err, dErrors.CodeInternal, "persist otp")
	}

	if err := f.sender.Send(ctx, phoneNumber, code); err != nil {
		return verification.Result{}, err
	}
	f.metrics.ObserveOtpSent()
	f.logger.InfoContext(ctx, "otp sent", "expires_at", expiresAt)

	return verification.Result{Status: verification.StatusSent}, nil
}

// verifyOtp compares the supplied OTP against the pending record. Wrong and
// expired codes raise the same error, so a caller cannot probe whether a code
// was ever right. A verify racing a fresh send may consume the new OTP; the
// window is narrow and accepted.
func (f *Flow) verifyOtp(ctx context.Context, agentID, supplied string) (verification.Result, error) {
	if supplied == "" {
		return verification.Result{}, dErrors.New(dErrors.CodeValidation, "otp is required")
	}

	rec, err := f.store.Fetch(ctx, agentID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return verification.Result{}, dErrors.New(dErrors.CodeNotFound, "no otp record for this identity")
	}
	if err != nil {
		return verification.Result{}, dErrors.Wrap(err, dErrors.CodeInternal, "fetch otp record")
	}

	if !rec.Pending(f.now()) || *rec.Otp != supplied {
		return verification.Result{}, dErrors.New(dErrors.CodeOtpNoMatch, "otp does not match")
	}

	if err := f.store.Expire(ctx, agentID); err != nil {
		return verification.Result{}, dErrors.Wrap(err, dErrors.CodeInternal, "expire otp record")
	}
	return verification.Result{Status: verification.StatusMatched, ID: agentID}, nil
}
