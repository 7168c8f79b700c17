package sms

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"custodia/internal/otp"
	"custodia/internal/platform/hashing"
	"custodia/internal/ratelimit"
	"custodia/internal/ratelimit/store/attempt"
	"custodia/internal/verification"
	dErrors "custodia/pkg/domain-errors"
)

const (
	testAgent = "c7f6a1de-9f2b-4a38-8a14-2f9f2f1d0a11"
	testPhone = "+12025550114"
)

type capturingSender struct {
	mu    sync.Mutex
	sent  []string
	phone string
	fail  error
}

func (s *capturingSender) Send(_ context.Context, phoneNumber, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	s.phone = phoneNumber
	s.sent = append(s.sent, code)
	return nil
}

func (s *capturingSender) lastOtp() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sent) == 0 {
		return ""
	}
	return s.sent[len(s.sent)-1]
}

type FlowSuite struct {
	suite.Suite

	now    time.Time
	store  *otp.InMemoryStore
	sender *capturingSender
	flow   *Flow
}

func (s *FlowSuite) SetupTest() {
	s.now = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	s.store = otp.NewInMemoryStore()
	s.sender = &capturingSender{}

	hasher := hashing.New("test-pepper")
	attempts := attempt.NewInMemoryStore(attempt.WithClock(func() time.Time { return s.now }))
	limiter, err := ratelimit.New(attempts, ratelimit.Config{
		ratelimit.BucketSendOTP:   {Window: time.Minute, MaxAttempts: 3, BlockFor: 5 * time.Minute},
		ratelimit.BucketVerifyOTP: {Window: time.Minute, MaxAttempts: 5, BlockFor: 5 * time.Minute},
	}, hasher)
	s.Require().NoError(err)

	s.flow, err = New(s.store, limiter, s.sender, hasher,
		WithClock(func() time.Time { return s.now }))
	s.Require().NoError(err)

	s.Require().NoError(s.flow.Save(context.Background(), testAgent,
		verification.Params{PhoneNumber: testPhone}))
}

func (s *FlowSuite) advance(d time.Duration) {
	s.now = s.now.Add(d)
}

func (s *FlowSuite) verify(params verification.Params) (verification.Result, error) {
	return s.flow.Verify(context.Background(), []string{testAgent}, params, verification.Filters{})
}

func (s *FlowSuite) TestSendThenVerifyRoundTrip() {
	res, err := s.verify(verification.Params{PhoneNumber: testPhone})
	s.Require().NoError(err)
	s.Equal(verification.StatusSent, res.Status)
	s.Empty(res.ID)
	s.Equal(testPhone, s.sender.phone)

	code := s.sender.lastOtp()
	s.Require().Len(code, 6)

	res, err = s.verify(verification.Params{Otp: code})
	s.Require().NoError(err)
	s.Equal(verification.StatusMatched, res.Status)
	s.Equal(testAgent, res.ID)

	s.Run("replaying the consumed otp is rejected", func() {
		_, err := s.verify(verification.Params{Otp: code})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeOtpNoMatch))
	})
}

func (s *FlowSuite) TestWrongOtp() {
	_, err := s.verify(verification.Params{PhoneNumber: testPhone})
	s.Require().NoError(err)

	_, err = s.verify(verification.Params{Otp: "000000"})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeOtpNoMatch))
}

func (s *FlowSuite) TestExpiredOtpSameError() {
	_, err := s.verify(verification.Params{PhoneNumber: testPhone})
	s.Require().NoError(err)
	code := s.sender.lastOtp()

	s.advance(otp.Window + time.Second)

	_, err = s.verify(verification.Params{Otp: code})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeOtpNoMatch),
		"expired otp must raise the same code as a wrong one")
}

func (s *FlowSuite) TestResendOverwrites() {
	_, err := s.verify(verification.Params{PhoneNumber: testPhone})
	s.Require().NoError(err)
	first := s.sender.lastOtp()

	s.advance(2 * time.Minute)

	_, err = s.verify(verification.Params{PhoneNumber: testPhone})
	s.Require().NoError(err)
	second := s.sender.lastOtp()

	if first != second {
		_, err = s.verify(verification.Params{Otp: first})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeOtpNoMatch))
	}

	res, err := s.verify(verification.Params{Otp: second})
	s.Require().NoError(err)
	s.Equal(verification.StatusMatched, res.Status)
}

func (s *FlowSuite) TestSendRateLimit() {
	for i := 0; i < 3; i++ {
		_, err := s.verify(verification.Params{PhoneNumber: testPhone})
		s.Require().NoError(err)
	}

	_, err := s.verify(verification.Params{PhoneNumber: testPhone})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeTooManyAttempts))
	s.Len(s.sender.sent, 3, "blocked send must not reach the sender")

	s.Run("block clears after its ttl", func() {
		s.advance(5*time.Minute + time.Second)
		_, err := s.verify(verification.Params{PhoneNumber: testPhone})
		s.Require().NoError(err)
	})
}

func (s *FlowSuite) TestAuthKeyLimitedBeforeIdentity() {
	// Trip the auth key bucket through a different identity so the identity
	// bucket for testAgent is untouched.
	other := "5b7a2c90-1111-4222-8333-444455556666"
	s.Require().NoError(s.flow.Save(context.Background(), other,
		verification.Params{PhoneNumber: "+12025550199"}))
	for i := 0; i < 3; i++ {
		_, err := s.flow.Verify(context.Background(), []string{other},
			verification.Params{PhoneNumber: "+12025550199", AuthKey: "shared-token"},
			verification.Filters{})
		s.Require().NoError(err)
	}

	_, err := s.verify(verification.Params{PhoneNumber: testPhone, AuthKey: "shared-token"})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeTooManyAttempts))
	s.Len(s.sender.sent, 3)
}

func (s *FlowSuite) TestAmbiguousCandidates() {
	_, err := s.flow.Verify(context.Background(),
		[]string{testAgent, "a-different-agent"},
		verification.Params{PhoneNumber: testPhone}, verification.Filters{})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeDuplicateEntry))
}

func (s *FlowSuite) TestNoCandidates() {
	_, err := s.flow.Verify(context.Background(), nil,
		verification.Params{PhoneNumber: testPhone}, verification.Filters{})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *FlowSuite) TestSendWithoutRegistration() {
	_, err := s.flow.Verify(context.Background(),
		[]string{"never-registered"},
		verification.Params{PhoneNumber: testPhone}, verification.Filters{})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestFlowSuite(t *testing.T) {
	suite.Run(t, new(FlowSuite))
}

func TestSaveRequiresPhone(t *testing.T) {
	hasher := hashing.New("test-pepper")
	attempts := attempt.NewInMemoryStore()
	limiter, err := ratelimit.New(attempts, ratelimit.Config{
		ratelimit.BucketSendOTP:   {Window: time.Minute, MaxAttempts: 3, BlockFor: time.Minute},
		ratelimit.BucketVerifyOTP: {Window: time.Minute, MaxAttempts: 3, BlockFor: time.Minute},
	}, hasher)
	require.NoError(t, err)

	flow, err := New(otp.NewInMemoryStore(), limiter, &capturingSender{}, hasher)
	require.NoError(t, err)

	err = flow.Save(context.Background(), testAgent, verification.Params{})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}
