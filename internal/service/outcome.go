package service

import "github.com/iliyamo/login-service/internal/model"

// OutcomeKind tags the result of one authentication attempt.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeInvalidCredentials
	OutcomeMalformedRequest
	OutcomeStoreUnavailable
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeInvalidCredentials:
		return "invalid_credentials"
	case OutcomeMalformedRequest:
		return "malformed_request"
	case OutcomeStoreUnavailable:
		return "store_unavailable"
	}
	return "unknown"
}

// Client-facing messages.  StoreUnavailable messages never carry driver
// text.
const (
	MsgInvalidCredentials = "Credenciales inválidas"
	MsgMissingFields      = "Faltan campos requeridos"
	MsgContentType        = "Content-Type must be application/json"
	MsgInvalidJSON        = "JSON inválido"
	MsgBodyTooLarge       = "La solicitud excede el tamaño máximo permitido"
	MsgStoreConnection    = "Error de conexión con el servidor"
	MsgInternal           = "Error interno del servidor"
)

// Outcome is what Authenticate decided.  Profile is only meaningful when
// Kind is OutcomeSuccess; Message is safe to show to the caller for every
// other kind.
type Outcome struct {
	Kind    OutcomeKind
	Profile model.Profile
	Message string
}

func success(p model.Profile) Outcome {
	return Outcome{Kind: OutcomeSuccess, Profile: p}
}

func invalidCredentials() Outcome {
	return Outcome{Kind: OutcomeInvalidCredentials, Message: MsgInvalidCredentials}
}

func malformed(detail string) Outcome {
	return Outcome{Kind: OutcomeMalformedRequest, Message: detail}
}

func storeUnavailable(msg string) Outcome {
	return Outcome{Kind: OutcomeStoreUnavailable, Message: msg}
}
