package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/internal/config"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/adapters/file"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/adapters/firebase"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/adapters/mail"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/adapters/memory"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/adapters/redis"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/adapters/sqlite"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/adapters/telegram"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/observability"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/persistence/middleware"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/ports"
	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/recommend"
)

// Resources is an engine plus the backends opened for it.
type Resources struct {
	Engine  *intake.Engine
	closers []func() error
}

// Close flushes the engine, then releases the backends.
func (r *Resources) Close() error {
	errs := []error{r.Engine.Close()}
	for i := len(r.closers) - 1; i >= 0; i-- {
		errs = append(errs, r.closers[i]())
	}
	return errors.Join(errs...)
}

// NewEngine builds an engine from cfg. extra options are applied last.
func NewEngine(ctx context.Context, cfg *config.Config, logger *slog.Logger, extra ...intake.Option) (*Resources, error) {
	res := &Resources{}
	fail := func(err error) (*Resources, error) {
		for i := len(res.closers) - 1; i >= 0; i-- {
			_ = res.closers[i]()
		}
		return nil, err
	}

	opts := []intake.Option{
		intake.WithLogger(logger),
		intake.WithLifecycleHooks(observability.LogHooks(logger)),
		intake.WithSubmitTimeout(cfg.GetSubmitTimeout()),
	}

	if cfg.FlowsDir != "" {
		opts = append(opts, intake.WithFlowsDir(cfg.FlowsDir))
	}
	if cfg.ScoringPath != "" {
		scoring, err := recommend.LoadConfig(cfg.ScoringPath)
		if err != nil {
			return fail(fmt.Errorf("failed to load scoring config: %w", err))
		}
		opts = append(opts, intake.WithScoringConfig(scoring))
	}

	sessionOpts, err := res.sessionStore(cfg)
	if err != nil {
		return fail(err)
	}
	opts = append(opts, sessionOpts...)

	subs, err := res.submissionStore(ctx, cfg)
	if err != nil {
		return fail(err)
	}
	if len(cfg.Submissions.RedactKeys) > 0 {
		subs = middleware.NewPIIMiddleware(cfg.Submissions.RedactKeys)(subs)
	}
	opts = append(opts, intake.WithSubmissionStore(subs))

	notifyOpts, err := notifiers(cfg, logger)
	if err != nil {
		return fail(err)
	}
	opts = append(opts, notifyOpts...)

	eng, err := intake.New(append(opts, extra...)...)
	if err != nil {
		return fail(fmt.Errorf("error initializing engine: %w", err))
	}
	res.Engine = eng
	return res, nil
}

func (r *Resources) sessionStore(cfg *config.Config) ([]intake.Option, error) {
	var (
		store ports.StateStore
		opts  []intake.Option
	)

	switch cfg.Sessions.Driver {
	case config.DriverFile:
		store = file.New(cfg.Sessions.Dir)
	case config.DriverRedis:
		rc := cfg.Sessions.Redis
		rs := redis.New(rc.Addr, rc.Password, rc.DB,
			redis.WithPrefix(rc.Prefix),
			redis.WithTTL(cfg.GetRedisTTL()),
		)
		r.closers = append(r.closers, rs.Close)
		store = rs
		if rc.Lock {
			opts = append(opts, intake.WithLocker(redis.NewLocker(rs.Client(), rs.Prefix())))
		}
	default:
		store = memory.NewStore()
	}

	active, fallback, err := cfg.Keys()
	if err != nil {
		return nil, err
	}
	if active != nil {
		store = middleware.Chain(store, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    active,
			FallbackKeys: fallback,
		}))
	}

	return append(opts, intake.WithStore(store)), nil
}

func (r *Resources) submissionStore(ctx context.Context, cfg *config.Config) (ports.SubmissionStore, error) {
	switch cfg.Submissions.Driver {
	case config.DriverSQLite:
		s, err := sqlite.Open(cfg.Submissions.SQLitePath)
		if err != nil {
			return nil, err
		}
		r.closers = append(r.closers, s.Close)
		return s, nil
	case config.DriverFirebase:
		fc := cfg.Submissions.Firebase
		return firebase.New(ctx, fc.CredentialsFile, fc.DatabaseURL, firebase.WithPath(fc.Path))
	}
	return memory.NewSubmissionStore(), nil
}

func notifiers(cfg *config.Config, logger *slog.Logger) ([]intake.Option, error) {
	nc := cfg.Notifier
	logged := memory.NewNotifier(nc.Operator, logger)

	var smtp *mail.Notifier
	if nc.SMTP.Host != "" {
		mc := nc.SMTP
		if mc.Operator == "" {
			mc.Operator = nc.Operator
		}
		n, err := mail.New(mc)
		if err != nil {
			return nil, err
		}
		smtp = n
	}

	switch nc.Driver {
	case config.DriverSMTP:
		return []intake.Option{
			intake.WithOperatorNotifier(smtp),
			intake.WithRespondentNotifier(smtp),
		}, nil
	case config.DriverTelegram:
		tg, err := telegram.New(nc.Telegram.Token, nc.Telegram.ChatID)
		if err != nil {
			return nil, err
		}
		opts := []intake.Option{intake.WithOperatorNotifier(tg)}
		if smtp != nil {
			return append(opts, intake.WithRespondentNotifier(smtp)), nil
		}
		return append(opts, intake.WithRespondentNotifier(logged)), nil
	}
	return []intake.Option{
		intake.WithOperatorNotifier(logged),
		intake.WithRespondentNotifier(logged),
	}, nil
}
