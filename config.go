package goDispatch

import (
	"errors"
	"time"
)

// Config defines a public type used by goDispatch APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Reauth    ReauthConfig
	Session   SessionConfig
	Redaction RedactionConfig
	Audit     AuditConfig
	Metrics   MetricsConfig

	// Commands is the command manifest: required-parameter lists and the
	// non-retryable flag per command name. defaultConfig seeds the built-in
	// commands; callers may add their own entries.
	Commands map[string]CommandSpec

	// TokenExempt lists commands that never receive an injected auth token
	// (the Authenticate exchange itself and the logging command).
	TokenExempt []string
}

/*
====================================
REAUTH CONFIG
====================================
*/

// ReauthConfig defines a public type used by goDispatch APIs.
//
// ReauthConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ReauthConfig struct {
	// PartnerName and PartnerPassword identify the client application to the
	// Authenticate exchange. Stored credentials supply partnerUserID and
	// partnerUserSecret.
	PartnerName     string
	PartnerPassword string

	// Proactive short-circuits a request whose stored token is a JWT that is
	// already past exp, going straight to recovery without the doomed leg.
	Proactive bool
	// ClockSkew is the leeway applied to the proactive expiry check.
	ClockSkew time.Duration
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig defines a public type used by goDispatch APIs.
//
// SessionConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SessionConfig struct {
	// RedisPrefix is the key prefix used when the builder constructs a
	// Redis-backed session store via WithRedis.
	RedisPrefix string
}

/*
====================================
REDACTION CONFIG
====================================
*/

// RedactionConfig defines a public type used by goDispatch APIs.
//
// RedactionConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RedactionConfig struct {
	// Marker replaces sensitive values in validation error payloads.
	Marker string
	// SensitiveKeys are the parameter names whose values are never surfaced
	// in error payloads.
	SensitiveKeys []string
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig defines a public type used by goDispatch APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig defines a public type used by goDispatch APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
COMMAND MANIFEST
====================================
*/

// Built-in command names.
const (
	// CommandAuthenticate is an exported constant or variable used by the dispatch engine.
	CommandAuthenticate = "Authenticate"
	// CommandLog is an exported constant or variable used by the dispatch engine.
	CommandLog = "Log"
	// CommandGet is an exported constant or variable used by the dispatch engine.
	CommandGet = "Get"
	// CommandCreateLogin is an exported constant or variable used by the dispatch engine.
	CommandCreateLogin = "CreateLogin"
	// CommandDeleteLogin is an exported constant or variable used by the dispatch engine.
	CommandDeleteLogin = "DeleteLogin"
)

// Parameter names with fixed meaning across commands.
const (
	paramAuthToken         = "authToken"
	paramPartnerName       = "partnerName"
	paramPartnerPassword   = "partnerPassword"
	paramPartnerUserID     = "partnerUserID"
	paramPartnerUserSecret = "partnerUserSecret"
	paramUseExpensifyLogin = "useExpensifyLogin"
	paramDoNotRetry        = "doNotRetry"
	paramSetCookie         = "api_setCookie"
)

func defaultCommands() map[string]CommandSpec {
	return map[string]CommandSpec{
		CommandAuthenticate: {
			Required: []string{paramPartnerName, paramPartnerPassword, paramPartnerUserID, paramPartnerUserSecret},
		},
		CommandLog: {
			Required: []string{"message"},
		},
		CommandGet: {
			Required: []string{"returnValueList"},
		},
		CommandCreateLogin: {
			Required: []string{paramAuthToken, paramPartnerName, paramPartnerPassword, paramPartnerUserID, paramPartnerUserSecret},
		},
		CommandDeleteLogin: {
			Required: []string{paramPartnerUserID, paramPartnerName, paramPartnerPassword},
			NoRetry:  true,
		},
	}
}

func defaultConfig() Config {
	return Config{
		Reauth: ReauthConfig{
			ClockSkew: 30 * time.Second,
		},
		Session: SessionConfig{
			RedisPrefix: "gd",
		},
		Redaction: RedactionConfig{
			Marker: "<redacted>",
			SensitiveKeys: []string{
				paramAuthToken,
				"password",
				paramPartnerUserSecret,
				"twoFactorAuthCode",
			},
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: false,
		},
		Commands:    defaultCommands(),
		TokenExempt: []string{CommandAuthenticate, CommandLog},
	}
}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c Config) Validate() error {
	if c.Reauth.PartnerName == "" {
		return errors.New("Reauth PartnerName must be set")
	}
	if c.Reauth.PartnerPassword == "" {
		return errors.New("Reauth PartnerPassword must be set")
	}
	if c.Reauth.ClockSkew < 0 {
		return errors.New("Reauth ClockSkew must be >= 0")
	}

	if c.Redaction.Marker == "" {
		return errors.New("Redaction Marker must not be empty")
	}

	if len(c.Commands) == 0 {
		return errors.New("Commands manifest must not be empty")
	}
	for name, spec := range c.Commands {
		if name == "" {
			return errors.New("Commands manifest contains an empty command name")
		}
		for _, p := range spec.Required {
			if p == "" {
				return errors.New("Commands manifest contains an empty required parameter for " + name)
			}
		}
	}

	if _, ok := c.Commands[CommandAuthenticate]; !ok {
		return errors.New("Commands manifest must include " + CommandAuthenticate)
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}

	return nil
}

func cloneConfig(cfg Config) Config {
	out := cfg

	out.Commands = make(map[string]CommandSpec, len(cfg.Commands))
	for name, spec := range cfg.Commands {
		required := make([]string, len(spec.Required))
		copy(required, spec.Required)
		out.Commands[name] = CommandSpec{Required: required, NoRetry: spec.NoRetry}
	}

	out.TokenExempt = make([]string, len(cfg.TokenExempt))
	copy(out.TokenExempt, cfg.TokenExempt)

	out.Redaction.SensitiveKeys = make([]string, len(cfg.Redaction.SensitiveKeys))
	copy(out.Redaction.SensitiveKeys, cfg.Redaction.SensitiveKeys)

	return out
}
