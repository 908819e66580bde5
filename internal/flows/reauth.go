package flows

import "context"

// Parameters fixed by the Authenticate exchange contract.
const (
	CommandAuthenticate = "Authenticate"

	paramPartnerName       = "partnerName"
	paramPartnerPassword   = "partnerPassword"
	paramPartnerUserID     = "partnerUserID"
	paramPartnerUserSecret = "partnerUserSecret"
	paramUseExpensifyLogin = "useExpensifyLogin"
	paramDoNotRetry        = "doNotRetry"
)

// ReauthFailureKind classifies Authenticate exchange failures for root-level mapping.
type ReauthFailureKind int

const (
	ReauthFailureNone ReauthFailureKind = iota
	ReauthFailureNoCredentials
	ReauthFailureTransport
	// ReauthFailureRejected: the exchange resolved but with an
	// application-level failure code. Terminal for the current session.
	ReauthFailureRejected
	// ReauthFailureEmptyToken: success code but no token in the envelope.
	ReauthFailureEmptyToken
)

// ReauthResult carries either the fresh auth token or failure metadata.
type ReauthResult struct {
	Failure   ReauthFailureKind
	Err       error
	Message   string
	AuthToken string
}

// ReauthDeps captures Authenticate exchange dependencies.
type ReauthDeps struct {
	Credentials     func() (login, password string, ok bool)
	PartnerName     string
	PartnerPassword string
	Enhance         func(command string, parameters map[string]any) (map[string]any, EnhanceFailureKind)
	Send            SendFunc
	SuccessCode     int
	TransportType   uint8
}

// RunReauth performs one Authenticate exchange with the stored credentials.
// The exchange is marked doNotRetry so it can never re-enter the recovery loop
// it serves, and it is sent through the raw path so a paused queue cannot gate
// it.
func RunReauth(ctx context.Context, deps ReauthDeps) ReauthResult {
	login, password, ok := deps.Credentials()
	if !ok {
		return ReauthResult{Failure: ReauthFailureNoCredentials}
	}

	parameters := map[string]any{
		paramPartnerName:       deps.PartnerName,
		paramPartnerPassword:   deps.PartnerPassword,
		paramPartnerUserID:     login,
		paramPartnerUserSecret: password,
		paramUseExpensifyLogin: false,
		paramDoNotRetry:        true,
	}

	enhanced, failure := deps.Enhance(CommandAuthenticate, parameters)
	if failure != EnhanceFailureNone {
		// Authenticate is token-exempt; enhancement cannot fail for it.
		enhanced = parameters
	}

	resp, err := deps.Send(ctx, CommandAuthenticate, enhanced, deps.TransportType)
	if err != nil {
		return ReauthResult{
			Failure: ReauthFailureTransport,
			Err:     err,
		}
	}

	if resp.JSONCode != deps.SuccessCode {
		return ReauthResult{
			Failure: ReauthFailureRejected,
			Message: resp.Message,
		}
	}

	if resp.AuthToken == "" {
		return ReauthResult{
			Failure: ReauthFailureEmptyToken,
			Message: resp.Message,
		}
	}

	return ReauthResult{
		Failure:   ReauthFailureNone,
		AuthToken: resp.AuthToken,
	}
}
