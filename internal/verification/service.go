package verification

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"custodia/internal/audit"
	"custodia/internal/credential"
	"custodia/internal/platform/hashing"
	"custodia/internal/platform/metrics"
	dErrors "custodia/pkg/domain-errors"
)

// IdentityRegistry resolves external identifiers to candidates and registers
// new ones.
type IdentityRegistry interface {
	Resolve(ctx context.Context, externalIDs map[string]string, throwIfEmpty bool) ([]string, error)
	Register(ctx context.Context, idType, idValue, agentID string) error
}

// Credentials is the slice of the credential service the orchestrator needs.
type Credentials interface {
	Create(ctx context.Context, agentID string) (credential.Credential, error)
	Exists(ctx context.Context, agentID string) (bool, error)
}

// Auditor records verification outcomes.
type Auditor interface {
	Emit(event audit.Event)
}

// CreateResult is the outcome of provisioning a wallet.
type CreateResult struct {
	ID             string                    `json:"id"`
	ConnectionData credential.ConnectionData `json:"connectionData"`
}

// Service orchestrates a verification request: resolve candidates, dispatch
// to the declared plugin, normalize the outcome, audit it.
type Service struct {
	factory     *Factory
	registry    IdentityRegistry
	credentials Credentials
	hasher      *hashing.Hasher
	auditor     Auditor
	tracer      trace.Tracer
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

type ServiceOption func(*Service)

func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) ServiceOption {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditor(a Auditor) ServiceOption {
	return func(s *Service) {
		s.auditor = a
	}
}

func NewService(factory *Factory, registry IdentityRegistry, credentials Credentials, hasher *hashing.Hasher, opts ...ServiceOption) (*Service, error) {
	if factory == nil || registry == nil || credentials == nil || hasher == nil {
		return nil, errors.New("verification service: factory, registry, credentials and hasher are required")
	}
	s := &Service{
		factory:     factory,
		registry:    registry,
		credentials: credentials,
		hasher:      hasher,
		tracer:      otel.Tracer("custodia/verification"),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Verify routes the request to the declared plugin and returns its normalized
// result. Every outcome, success or failure, is counted and audited.
func (s *Service) Verify(ctx context.Context, pluginType PluginType, filters Filters, params Params) (Result, error) {
	ctx, span := s.tracer.Start(ctx, "verification.verify",
		trace.WithAttributes(attribute.String("plugin", string(pluginType))))
	defer span.End()

	flow, err := s.factory.Create(pluginType)
	if err != nil {
		return Result{}, s.finish(ctx, span, pluginType, Result{}, err)
	}

	var candidates []string
	if len(filters.ExternalIDs) > 0 {
		candidates, err = s.registry.Resolve(ctx, filters.ExternalIDs, false)
		if err != nil {
			return Result{}, s.finish(ctx, span, pluginType, Result{}, err)
		}
	}

	result, err := flow.Verify(ctx, candidates, params, filters)
	return result, s.finish(ctx, span, pluginType, result, err)
}

// Create provisions a wallet: mint an identity and credential, register the
// supplied external identifiers, then let the plugin store its material.
func (s *Service) Create(ctx context.Context, pluginType PluginType, filters Filters, params Params) (CreateResult, error) {
	ctx, span := s.tracer.Start(ctx, "verification.create",
		trace.WithAttributes(attribute.String("plugin", string(pluginType))))
	defer span.End()

	flow, err := s.factory.Create(pluginType)
	if err != nil {
		return CreateResult{}, err
	}

	agentID := uuid.NewString()
	cred, err := s.credentials.Create(ctx, agentID)
	if err != nil {
		return CreateResult{}, err
	}

	for idType, idValue := range filters.ExternalIDs {
		if err := s.registry.Register(ctx, idType, idValue, agentID); err != nil {
			return CreateResult{}, err
		}
	}

	if err := flow.Save(ctx, agentID, params); err != nil {
		return CreateResult{}, err
	}

	s.logger.InfoContext(ctx, "wallet created",
		"plugin", pluginType, "subject_hash", s.hasher.Hash(agentID))
	return CreateResult{
		ID: agentID,
		ConnectionData: credential.ConnectionData{
			WalletID:  cred.WalletID,
			WalletKey: cred.WalletKey,
		},
	}, nil
}

// Add registers extra plugin material and identifiers for an existing wallet.
func (s *Service) Add(ctx context.Context, pluginType PluginType, agentID string, filters Filters, params Params) error {
	ctx, span := s.tracer.Start(ctx, "verification.add",
		trace.WithAttributes(attribute.String("plugin", string(pluginType))))
	defer span.End()

	flow, err := s.factory.Create(pluginType)
	if err != nil {
		return err
	}

	exists, err := s.credentials.Exists(ctx, agentID)
	if err != nil {
		return err
	}
	if !exists {
		return dErrors.New(dErrors.CodeNotFound, "no wallet for identity")
	}

	for idType, idValue := range filters.ExternalIDs {
		if err := s.registry.Register(ctx, idType, idValue, agentID); err != nil {
			return err
		}
	}
	return flow.Save(ctx, agentID, params)
}

// finish records the outcome on the span, the metrics and the audit trail,
// and hands the error back unchanged.
func (s *Service) finish(ctx context.Context, span trace.Span, pluginType PluginType, result Result, err error) error {
	outcome := result.Status
	if err != nil {
		outcome = string(dErrors.CodeOf(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	}
	span.SetAttributes(attribute.String("outcome", outcome))

	s.metrics.ObserveVerification(string(pluginType), outcome)

	if s.auditor != nil {
		var subjectHash string
		if result.ID != "" {
			subjectHash = s.hasher.Hash(result.ID)
		}
		s.auditor.Emit(audit.Event{
			Plugin:      string(pluginType),
			Outcome:     outcome,
			SubjectHash: subjectHash,
			Client:      audit.ClientInfoFromContext(ctx),
		})
	}
	return err
}
