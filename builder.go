package goDispatch

import (
	"context"
	"errors"
	"slices"

	"github.com/MrEthical07/goDispatch/internal/flows"
	"github.com/MrEthical07/goDispatch/queue"
	"github.com/MrEthical07/goDispatch/session"
	"github.com/redis/go-redis/v9"
)

// Builder defines a public type used by goDispatch APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config

	transport  Transport
	store      session.Store
	redis      redis.UniversalClient
	queue      RequestQueue
	redirector SignInRedirector
	auditSink  AuditSink

	built bool
}

// New describes the new operation and its observable behavior.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithPartner sets the application identity used by the Authenticate exchange.
func (b *Builder) WithPartner(name, password string) *Builder {
	b.config.Reauth.PartnerName = name
	b.config.Reauth.PartnerPassword = password
	return b
}

// WithTransport describes the withtransport operation and its observable behavior.
func (b *Builder) WithTransport(t Transport) *Builder {
	b.transport = t
	return b
}

// WithSessionStore describes the withsessionstore operation and its observable behavior.
func (b *Builder) WithSessionStore(store session.Store) *Builder {
	b.store = store
	return b
}

// WithRedis is a shortcut that builds a Redis-backed session store at Build
// time using Config.Session.RedisPrefix. The built store is owned by the
// Dispatcher and closed with it; the client stays owned by the caller.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithQueue describes the withqueue operation and its observable behavior.
func (b *Builder) WithQueue(q RequestQueue) *Builder {
	b.queue = q
	return b
}

// WithSignInRedirector describes the withsigninredirector operation and its observable behavior.
func (b *Builder) WithSignInRedirector(r SignInRedirector) *Builder {
	b.redirector = r
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithAuditEnabled describes the withauditenabled operation and its observable behavior.
func (b *Builder) WithAuditEnabled(enabled bool) *Builder {
	b.config.Audit.Enabled = enabled
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms describes the withlatencyhistograms operation and its observable behavior.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// WithProactiveReauth describes the withproactivereauth operation and its observable behavior.
func (b *Builder) WithProactiveReauth(enabled bool) *Builder {
	b.config.Reauth.Proactive = enabled
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
func (b *Builder) Build() (*Dispatcher, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if b.transport == nil {
		return nil, ErrTransportRequired
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store := b.store
	ownsStore := false
	if store == nil {
		if b.redis == nil {
			return nil, ErrStoreRequired
		}
		store = session.NewRedisStore(b.redis, cfg.Session.RedisPrefix)
		ownsStore = true
	}

	mirror, err := session.NewMirror(context.Background(), store)
	if err != nil {
		if ownsStore {
			_ = store.Close()
		}
		return nil, err
	}

	d := &Dispatcher{
		config:     cfg,
		transport:  b.transport,
		store:      store,
		mirror:     mirror,
		redirector: b.redirector,
		ownsStore:  ownsStore,
	}
	d.coord = newCoordinator(d)
	d.audit = newAuditDispatcher(cfg.Audit, b.auditSink)
	d.metrics = NewMetrics(cfg.Metrics)

	if b.queue != nil {
		d.queue = b.queue
	} else {
		// Default in-process FIFO; drained entries re-enter Dispatch.
		inner := queue.New(func(ctx context.Context, entry queue.Entry) {
			_, _ = d.Dispatch(ctx, entry.Command, entry.Parameters, TransportType(entry.Type))
		})
		d.queue = &queueAdapter{inner: inner}
	}

	exempt := make([]string, len(cfg.TokenExempt))
	copy(exempt, cfg.TokenExempt)

	enhanceDeps := flows.EnhanceDeps{
		TokenExempt: func(command string) bool {
			return slices.Contains(exempt, command)
		},
		AuthToken: mirror.AuthToken,
	}

	d.flowDeps = flows.Deps{
		Enhance: enhanceDeps,
		Dispatch: flows.DispatchDeps{
			Manifest: func(command string) ([]string, bool) {
				spec, ok := cfg.Commands[command]
				return spec.Required, ok
			},
			SensitiveKeys: cfg.Redaction.SensitiveKeys,
			Marker:        cfg.Redaction.Marker,
			Enhance: func(command string, parameters map[string]any) (map[string]any, flows.EnhanceFailureKind) {
				return flows.Enhance(command, parameters, enhanceDeps)
			},
			Send:        d.rawSend,
			ExpiredCode: CodeExpiredAuthToken,
		},
		Reauth: flows.ReauthDeps{
			Credentials: func() (string, string, bool) {
				creds, ok := mirror.Credentials()
				return creds.Login, creds.Password, ok
			},
			PartnerName:     cfg.Reauth.PartnerName,
			PartnerPassword: cfg.Reauth.PartnerPassword,
			Enhance: func(command string, parameters map[string]any) (map[string]any, flows.EnhanceFailureKind) {
				return flows.Enhance(command, parameters, enhanceDeps)
			},
			Send:          d.rawSend,
			SuccessCode:   CodeSuccess,
			TransportType: uint8(TransportPost),
		},
	}

	b.built = true

	return d, nil
}

// queueAdapter bridges the root Request type to the default queue package.
type queueAdapter struct {
	inner *queue.Queue
}

func (a *queueAdapter) Pause()  { a.inner.Pause() }
func (a *queueAdapter) Resume() { a.inner.Resume() }

func (a *queueAdapter) Enqueue(req Request) {
	a.inner.Enqueue(queue.Entry{
		ID:         req.ID,
		Command:    req.Command,
		Parameters: req.Parameters,
		Type:       uint8(req.Type),
	})
}

func (a *queueAdapter) Fail(err error) { a.inner.Fail(err) }
