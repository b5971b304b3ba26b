package swapper

import (
	"context"
	"errors"
	"fmt"
)

// Kind is the closed set of failure classes surfaced by the swapper.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotSupportedChain
	KindNotSupportedAsset
	KindNotSupportedPair
	KindInvalidAddress
	KindInvalidAmount
	KindInputAmountTooSmall
	KindNetworkError
	KindTimeout
	KindNoQuoteAvailable
	KindNoAvailableProvider
	KindInvalidRoute
	KindComputeQuoteError
	KindABIError
	KindTransactionError
	KindNotImplemented
	KindCancelled
)

var kindNames = map[Kind]string{
	KindUnknown:             "unknown",
	KindNotSupportedChain:   "not_supported_chain",
	KindNotSupportedAsset:   "not_supported_asset",
	KindNotSupportedPair:    "not_supported_pair",
	KindInvalidAddress:      "invalid_address",
	KindInvalidAmount:       "invalid_amount",
	KindInputAmountTooSmall: "input_amount_too_small",
	KindNetworkError:        "network_error",
	KindTimeout:             "timeout",
	KindNoQuoteAvailable:    "no_quote_available",
	KindNoAvailableProvider: "no_available_provider",
	KindInvalidRoute:        "invalid_route",
	KindComputeQuoteError:   "compute_quote_error",
	KindABIError:            "abi_error",
	KindTransactionError:    "transaction_error",
	KindNotImplemented:      "not_implemented",
	KindCancelled:           "cancelled",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// IsValidation reports whether the kind describes a malformed request
// that is rejected before any provider is queried.
func (k Kind) IsValidation() bool {
	switch k {
	case KindNotSupportedChain, KindNotSupportedAsset, KindNotSupportedPair,
		KindInvalidAddress, KindInvalidAmount:
		return true
	default:
		return false
	}
}

type Error struct {
	Kind    Kind
	Message string
	// MinAmount is set for KindInputAmountTooSmall when the provider reports it.
	MinAmount string
	Err       error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.MinAmount != "" {
		msg += " (min amount " + e.MinAmount + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches kind sentinels such as ErrTimeout regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Err == nil && t.MinAmount == ""
}

var (
	ErrNotSupportedChain   = &Error{Kind: KindNotSupportedChain}
	ErrNotSupportedAsset   = &Error{Kind: KindNotSupportedAsset}
	ErrNotSupportedPair    = &Error{Kind: KindNotSupportedPair}
	ErrInvalidAddress      = &Error{Kind: KindInvalidAddress}
	ErrInvalidAmount       = &Error{Kind: KindInvalidAmount}
	ErrInputAmountTooSmall = &Error{Kind: KindInputAmountTooSmall}
	ErrNetworkError        = &Error{Kind: KindNetworkError}
	ErrTimeout             = &Error{Kind: KindTimeout}
	ErrNoQuoteAvailable    = &Error{Kind: KindNoQuoteAvailable}
	ErrNoAvailableProvider = &Error{Kind: KindNoAvailableProvider}
	ErrInvalidRoute        = &Error{Kind: KindInvalidRoute}
	ErrComputeQuoteError   = &Error{Kind: KindComputeQuoteError}
	ErrABIError            = &Error{Kind: KindABIError}
	ErrTransactionError    = &Error{Kind: KindTransactionError}
	ErrNotImplemented      = &Error{Kind: KindNotImplemented}
	ErrCancelled           = &Error{Kind: KindCancelled}
)

func NewError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func WrapError(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func NewInputAmountTooSmall(minAmount string) *Error {
	return &Error{Kind: KindInputAmountTooSmall, MinAmount: minAmount}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var swapErr *Error
	if errors.As(err, &swapErr) {
		return swapErr.Kind
	}
	return KindUnknown
}

// AsError converts any error into an *Error, classifying context errors and
// falling back to fallback for untyped errors.
func AsError(err error, fallback Kind) *Error {
	if err == nil {
		return nil
	}
	var swapErr *Error
	if errors.As(err, &swapErr) {
		return swapErr
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: KindTimeout, Err: err}
	case errors.Is(err, context.Canceled):
		return &Error{Kind: KindCancelled, Err: err}
	default:
		return &Error{Kind: fallback, Err: err}
	}
}
