package goGuard

import "errors"

var (
	// ErrInvalidConfig wraps every [Config.Validate] failure.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrBuilderUsed is returned by a second [Builder.Build] call.
	ErrBuilderUsed = errors.New("builder already used")
	// ErrCodeGeneration wraps a failure of the system random source.
	ErrCodeGeneration = errors.New("one-time code generation failed")
	// ErrRateLimited is the error form of a denied admission, for adapters that need one.
	ErrRateLimited = errors.New("too many requests")
	// ErrRegistrationBlocked is the error form of a refused registration attempt.
	ErrRegistrationBlocked = errors.New("too many registration attempts")
	// ErrTokenRevoked is returned by adapters when a presented token has been revoked.
	ErrTokenRevoked = errors.New("token revoked")
)
