package service

import "errors"

// Validation and authorization errors surfaced to the offending client via
// the error event. The message is the stable client-facing code.
var (
	ErrRoomNotFound       = errors.New(CodeRoomNotFound)
	ErrRoomFull           = errors.New(CodeRoomFull)
	ErrIncorrectPassword  = errors.New(CodeIncorrectPassword)
	ErrGameAlreadyStarted = errors.New(CodeGameAlreadyStarted)
	ErrNotTheHost         = errors.New(CodeNotTheHost)
	ErrNeedPlayers        = errors.New(CodeNeedPlayers)
	ErrNotYourTurn        = errors.New(CodeNotYourTurn)
	ErrHintIsSecretWord   = errors.New(CodeHintIsSecretWord)
	ErrRateLimited        = errors.New(CodeRateLimited)
	ErrNotAuthorized      = errors.New(CodeNotAuthorized)
)
