package types

import "errors"

var (
	ErrMalformedPayload  = errors.New("malformed ticket payload")
	ErrUnknownTicket     = errors.New("ticket not found")
	ErrInvalidSignature  = errors.New("invalid ticket signature")
	ErrExpired           = errors.New("ticket expired")
	ErrWrongDay          = errors.New("ticket not valid today")
	ErrAlreadyUsed       = errors.New("ticket already used")
	ErrDuplicateBooking  = errors.New("ticket already issued for booking")
	ErrDeliveryFailed    = errors.New("ticket delivery failed")
	ErrNotFound          = errors.New("record not found")
	ErrInvalidBooking    = errors.New("invalid booking")
	ErrOwnershipMismatch = errors.New("ticket bound to a different email")
	ErrStoreUnavailable  = errors.New("ticket store unavailable")
)
