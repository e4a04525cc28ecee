package state

import "errors"

// Sentinel causes for the executor's InputInvalid errors.
var (
	ErrInvalidSignature  = errors.New("invalid signature")
	ErrUnknownSender     = errors.New("unknown sender")
	ErrBadNonce          = errors.New("bad nonce")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidCall       = errors.New("invalid call")
)
