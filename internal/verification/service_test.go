package verification

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"custodia/internal/audit"
	"custodia/internal/credential"
	"custodia/internal/platform/hashing"
	dErrors "custodia/pkg/domain-errors"
)

type stubFlow struct {
	verify func(ctx context.Context, candidates []string, params Params, filters Filters) (Result, error)
	save   func(ctx context.Context, agentID string, params Params) error
}

func (f *stubFlow) Verify(ctx context.Context, candidates []string, params Params, filters Filters) (Result, error) {
	return f.verify(ctx, candidates, params, filters)
}

func (f *stubFlow) Save(ctx context.Context, agentID string, params Params) error {
	if f.save == nil {
		return nil
	}
	return f.save(ctx, agentID, params)
}

type stubRegistry struct {
	identities map[string]string // idValue -> identity
	registered map[string]string
}

func (r *stubRegistry) Resolve(_ context.Context, externalIDs map[string]string, _ bool) ([]string, error) {
	var out []string
	for _, v := range externalIDs {
		if id, ok := r.identities[v]; ok {
			out = append(out, id)
		}
	}
	return out, nil
}

func (r *stubRegistry) Register(_ context.Context, idType, idValue, agentID string) error {
	if r.registered == nil {
		r.registered = make(map[string]string)
	}
	r.registered[idType+":"+idValue] = agentID
	return nil
}

type recordingAuditor struct {
	mu     sync.Mutex
	events []audit.Event
}

func (a *recordingAuditor) Emit(event audit.Event) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, event)
}

func TestFactoryCreate(t *testing.T) {
	fp := &stubFlow{}
	sms := &stubFlow{}
	token := &stubFlow{}
	factory := NewFactory(fp, sms, token)

	for pluginType, want := range map[PluginType]Flow{
		PluginFingerprint: fp,
		PluginSMSOTP:      sms,
		PluginToken:       token,
	} {
		flow, err := factory.Create(pluginType)
		require.NoError(t, err)
		assert.Same(t, want, flow)
	}

	_, err := factory.Create("RETINA_SCAN")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func newTestService(t *testing.T, flow Flow, registry *stubRegistry, auditor *recordingAuditor) *Service {
	t.Helper()
	factory := NewFactory(flow, flow, flow)
	creds := credential.NewService(credential.NewInMemoryStore())
	svc, err := NewService(factory, registry, creds, hashing.New("test-pepper"),
		WithAuditor(auditor))
	require.NoError(t, err)
	return svc
}

func TestServiceVerifyResolvesAndAudits(t *testing.T) {
	agentID := uuid.NewString()
	registry := &stubRegistry{identities: map[string]string{"N1000042": agentID}}
	auditor := &recordingAuditor{}

	var gotCandidates []string
	flow := &stubFlow{
		verify: func(_ context.Context, candidates []string, _ Params, _ Filters) (Result, error) {
			gotCandidates = candidates
			return Result{Status: StatusMatched, ID: agentID}, nil
		},
	}
	svc := newTestService(t, flow, registry, auditor)

	res, err := svc.Verify(context.Background(), PluginSMSOTP,
		Filters{ExternalIDs: map[string]string{"NATIONAL_ID": "N1000042"}}, Params{})
	require.NoError(t, err)
	assert.Equal(t, agentID, res.ID)
	assert.Equal(t, []string{agentID}, gotCandidates)

	require.Len(t, auditor.events, 1)
	event := auditor.events[0]
	assert.Equal(t, "SMS_OTP", event.Plugin)
	assert.Equal(t, "matched", event.Outcome)
	assert.NotEmpty(t, event.SubjectHash)
	assert.NotEqual(t, agentID, event.SubjectHash, "raw identity never enters the trail")
}

func TestServiceVerifyAuditsFailureCode(t *testing.T) {
	auditor := &recordingAuditor{}
	flow := &stubFlow{
		verify: func(context.Context, []string, Params, Filters) (Result, error) {
			return Result{}, dErrors.New(dErrors.CodeOtpNoMatch, "otp does not match")
		},
	}
	svc := newTestService(t, flow, &stubRegistry{}, auditor)

	_, err := svc.Verify(context.Background(), PluginSMSOTP, Filters{}, Params{})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeOtpNoMatch))

	require.Len(t, auditor.events, 1)
	assert.Equal(t, "OTP_NO_MATCH", auditor.events[0].Outcome)
	assert.Empty(t, auditor.events[0].SubjectHash)
}

func TestServiceVerifyUnknownPlugin(t *testing.T) {
	svc := newTestService(t, &stubFlow{}, &stubRegistry{}, &recordingAuditor{})

	_, err := svc.Verify(context.Background(), "RETINA_SCAN", Filters{}, Params{})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestServiceCreate(t *testing.T) {
	registry := &stubRegistry{}
	var savedAgent string
	flow := &stubFlow{
		verify: func(context.Context, []string, Params, Filters) (Result, error) {
			return Result{}, nil
		},
		save: func(_ context.Context, agentID string, _ Params) error {
			savedAgent = agentID
			return nil
		},
	}
	svc := newTestService(t, flow, registry, &recordingAuditor{})

	res, err := svc.Create(context.Background(), PluginSMSOTP,
		Filters{ExternalIDs: map[string]string{"NATIONAL_ID": "N1000042"}},
		Params{PhoneNumber: "+12025550114"})
	require.NoError(t, err)

	_, err = uuid.Parse(res.ID)
	assert.NoError(t, err, "minted identity should be a UUID")
	assert.NotEmpty(t, res.ConnectionData.WalletID)
	assert.NotEmpty(t, res.ConnectionData.WalletKey)
	assert.Equal(t, res.ID, savedAgent, "plugin material saved under the minted identity")
	assert.Equal(t, res.ID, registry.registered["NATIONAL_ID:N1000042"])
}

func TestServiceAddRequiresWallet(t *testing.T) {
	svc := newTestService(t, &stubFlow{}, &stubRegistry{}, &recordingAuditor{})

	err := svc.Add(context.Background(), PluginSMSOTP, "no-such-agent", Filters{}, Params{})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestServiceAdd(t *testing.T) {
	registry := &stubRegistry{}
	var savedAgent string
	flow := &stubFlow{
		save: func(_ context.Context, agentID string, _ Params) error {
			savedAgent = agentID
			return nil
		},
	}
	svc := newTestService(t, flow, registry, &recordingAuditor{})

	created, err := svc.Create(context.Background(), PluginSMSOTP, Filters{}, Params{})
	require.NoError(t, err)

	err = svc.Add(context.Background(), PluginSMSOTP, created.ID,
		Filters{ExternalIDs: map[string]string{"VOTER_ID": "V555"}}, Params{})
	require.NoError(t, err)
	assert.Equal(t, created.ID, savedAgent)
	assert.Equal(t, created.ID, registry.registered["VOTER_ID:V555"])
}
