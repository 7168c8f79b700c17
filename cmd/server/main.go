package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"custodia/internal/audit"
	"custodia/internal/clients/keyprovider"
	"custodia/internal/clients/matcher"
	"custodia/internal/clients/onboarding"
	smsclient "custodia/internal/clients/sms"
	"custodia/internal/credential"
	"custodia/internal/identity"
	"custodia/internal/otp"
	"custodia/internal/platform/config"
	"custodia/internal/platform/hashing"
	"custodia/internal/platform/httpclient"
	"custodia/internal/platform/httpserver"
	"custodia/internal/platform/logger"
	"custodia/internal/platform/metrics"
	"custodia/internal/platform/postgres"
	"custodia/internal/platform/redis"
	"custodia/internal/ratelimit"
	"custodia/internal/ratelimit/store/attempt"
	httptransport "custodia/internal/transport/http"
	"custodia/internal/verification"
	"custodia/internal/verification/fingerprint"
	smsflow "custodia/internal/verification/sms"
	"custodia/internal/verification/token"
)

// main wires the dependency graph and owns the process lifecycle. Business
// logic lives in the internal packages.
func main() {
	log := logger.New()
	if err := run(log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	m := metrics.New()
	hasher := hashing.New(cfg.Pepper)

	// Stores fall back to in-memory implementations when their backing
	// service is not configured, so a dev instance runs with no dependencies.
	var attempts ratelimit.AttemptStore = attempt.NewInMemoryStore()
	if redisClient, err := redis.New(cfg.RedisURL); err != nil {
		return err
	} else if redisClient != nil {
		defer redisClient.Close()
		attempts = attempt.NewRedisStore(redisClient.Client)
	}

	var identifiers identity.Store = identity.NewInMemoryStore()
	var credentials credential.Store = credential.NewInMemoryStore()
	var otpRecords otp.Store = otp.NewInMemoryStore()
	if cfg.PostgresDSN != "" {
		db, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		pool, err := postgres.OpenPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return err
		}
		defer pool.Close()

		identifiers = identity.NewPostgresStore(db)
		credentials = credential.NewPostgresStore(db)
		otpRecords = otp.NewPgxStore(pool)
	}

	limiter, err := ratelimit.New(attempts, ratelimit.Config{
		ratelimit.BucketSendOTP: {
			Window:      cfg.SendOTPLimit.TTL,
			MaxAttempts: cfg.SendOTPLimit.Limit,
			BlockFor:    cfg.SendOTPLimit.BlockTTL,
		},
		ratelimit.BucketVerifyOTP: {
			Window:      cfg.VerifyOTPLimit.TTL,
			MaxAttempts: cfg.VerifyOTPLimit.Limit,
			BlockFor:    cfg.VerifyOTPLimit.BlockTTL,
		},
	}, hasher, ratelimit.WithLogger(log), ratelimit.WithMetrics(m))
	if err != nil {
		return err
	}

	outbound := httpclient.New(cfg.UpstreamTimeout, cfg.UpstreamRetries,
		httpclient.WithLogger(log), httpclient.WithMetrics(m))

	resolver := identity.NewResolver(identifiers, hasher)
	credentialSvc := credential.NewService(credentials)

	var sender smsclient.Sender = smsclient.NewLogSender(log)
	if cfg.SMSEnabled && cfg.SMSGatewayURL != "" {
		sender = smsclient.NewHTTPSender(outbound, cfg.SMSGatewayURL)
	}

	smsFlow, err := smsflow.New(otpRecords, limiter, sender, hasher,
		smsflow.WithLogger(log), smsflow.WithMetrics(m))
	if err != nil {
		return err
	}

	fpOpts := []fingerprint.Option{fingerprint.WithLogger(log)}
	if cfg.OnboardingURL != "" {
		fpOpts = append(fpOpts,
			fingerprint.WithOnboarder(onboarding.New(outbound, cfg.OnboardingURL)))
	}
	fpFlow, err := fingerprint.New(
		matcher.New(outbound, cfg.MatcherURL),
		resolver,
		fingerprint.Config{
			ExternalMatcher:     cfg.ExternalMatcher,
			QualityCheckEnabled: cfg.QualityCheckEnabled,
			JITEnabled:          cfg.JITWalletEnabled,
		},
		fpOpts...)
	if err != nil {
		return err
	}

	tokenFlow, err := token.New(
		keyprovider.New(outbound, cfg.KeyProviderURL), cfg.TokenAlgorithm)
	if err != nil {
		return err
	}

	var trail audit.Publisher = audit.NewLogPublisher(log)
	if len(cfg.KafkaBrokers) > 0 {
		trail, err = audit.NewKafkaPublisher(ctx, cfg.KafkaBrokers, cfg.AuditTopic, log)
		if err != nil {
			return err
		}
	}
	auditor := audit.NewWorker(trail, log)

	svc, err := verification.NewService(
		verification.NewFactory(fpFlow, smsFlow, tokenFlow),
		resolver, credentialSvc, hasher,
		verification.WithLogger(log),
		verification.WithMetrics(m),
		verification.WithAuditor(auditor))
	if err != nil {
		return err
	}

	router := httptransport.NewRouter(httptransport.NewHandler(svc, log))
	srv := httpserver.New(cfg.Addr, router)

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("starting custodia", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		if err := auditor.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return group.Wait()
}
