package model

import "fmt"

// ErrorCode is the stable numeric identity of a player failure. Codes 1-3
// mirror the platform media-error codes so transport failures pass through
// unchanged; codes 4-7 cover the orchestration taxonomy.
type ErrorCode int

const (
	ErrUnknown           ErrorCode = 0
	ErrAborted           ErrorCode = 1
	ErrNetwork           ErrorCode = 2
	ErrDecode            ErrorCode = 3
	ErrSourceUnsupported ErrorCode = 4
	ErrSetup             ErrorCode = 5
	ErrLoad              ErrorCode = 6
	ErrPermission        ErrorCode = 7
)

type PlayerError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details any       `json:"details,omitempty"`
}

func (e *PlayerError) Error() string {
	return fmt.Sprintf("player error %d: %s", e.Code, e.Message)
}

func NewPlayerError(code ErrorCode, message string, details any) *PlayerError {
	return &PlayerError{Code: code, Message: message, Details: details}
}
