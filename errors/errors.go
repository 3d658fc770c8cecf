package errors

import "fmt"

var (
	ErrAuthenticationMissing  = fmt.Errorf("authentication missing")
	ErrTransportFailure       = fmt.Errorf("transport failure")
	ErrUnsupportedParticipant = fmt.Errorf("unsupported participant")
	ErrSessionNotFound        = fmt.Errorf("session not found")
	ErrParticipantNotFound    = fmt.Errorf("participant not found")
	ErrSubmissionInFlight     = fmt.Errorf("submission already in flight")
	ErrPersistence            = fmt.Errorf("persistence failure")
)
