// Package chainerr defines the typed error taxonomy shared by every
// component of the indexer. No component returns a bare error string for a
// condition that the protocol itself cares about; it returns an *Error
// carrying a stable Code so callers can branch on it deterministically.
package chainerr

import "fmt"

// ErrorCode is a stable, protocol-meaningful error identifier. Values never
// change once shipped; op_log entries persist them verbatim.
type ErrorCode string

// Structural errors: the payload itself could not be decoded.
const (
	MalformedJSON       ErrorCode = "MALFORMED_JSON"
	UnsupportedEncoding ErrorCode = "UNSUPPORTED_ENCODING"
	MissingField        ErrorCode = "MISSING_FIELD"
	UnknownOp           ErrorCode = "UNKNOWN_OP"
	PayloadTooLarge     ErrorCode = "PAYLOAD_TOO_LARGE"
	StructurallyInvalid ErrorCode = "STRUCTURALLY_INVALID"
)

// Protocol errors: the payload parsed but violates a protocol-level rule.
const (
	InvalidTicker        ErrorCode = "INVALID_TICKER"
	InvalidAmount        ErrorCode = "INVALID_AMOUNT"
	TickerAlreadyDeployed ErrorCode = "TICKER_ALREADY_DEPLOYED"
	TickerNotDeployed    ErrorCode = "TICKER_NOT_DEPLOYED"
	MintExceedsLimit     ErrorCode = "MINT_EXCEEDS_LIMIT"
	MintExceedsSupply    ErrorCode = "MINT_EXCEEDS_SUPPLY"
	InsufficientBalance  ErrorCode = "INSUFFICIENT_BALANCE"
	UnresolvableSender   ErrorCode = "UNRESOLVABLE_SENDER"
)

// Cross-namespace errors: universal vs. legacy (inscription) namespace conflicts.
const (
	LegacyTokenExists                ErrorCode = "LEGACY_TOKEN_EXISTS"
	LegacyLookupRequiredButUnavailable ErrorCode = "LEGACY_LOOKUP_REQUIRED_BUT_UNAVAILABLE"
)

// Transient errors: retryable, no state was written.
const (
	NodeUnavailable  ErrorCode = "NODE_UNAVAILABLE"
	OracleUnavailable ErrorCode = "ORACLE_UNAVAILABLE"
	StoreConflict    ErrorCode = "STORE_CONFLICT"
)

// Fatal errors: operator intervention required, no automatic recovery.
const (
	ReorgIrrecoverable             ErrorCode = "REORG_IRRECOVERABLE"
	CommitChecksumMismatch         ErrorCode = "COMMIT_CHECKSUM_MISMATCH"
	DuplicateProcessorRegistration ErrorCode = "DUPLICATE_PROCESSOR_REGISTRATION"
	ConfigInvalid                  ErrorCode = "CONFIG_INVALID"
	RetryBudgetExceeded            ErrorCode = "RETRY_BUDGET_EXCEEDED"
)

// Kind classifies an ErrorCode for propagation purposes (spec.md §7).
type Kind int

const (
	KindStructural Kind = iota
	KindProtocol
	KindCrossNamespace
	KindTransient
	KindFatal
)

func (k Kind) String() string {
	switch k {
	case KindStructural:
		return "structural"
	case KindProtocol:
		return "protocol"
	case KindCrossNamespace:
		return "cross_namespace"
	case KindTransient:
		return "transient"
	case KindFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

var kindByCode = map[ErrorCode]Kind{
	MalformedJSON:       KindStructural,
	UnsupportedEncoding: KindStructural,
	MissingField:        KindStructural,
	UnknownOp:           KindStructural,
	PayloadTooLarge:     KindStructural,
	StructurallyInvalid: KindStructural,

	InvalidTicker:         KindProtocol,
	InvalidAmount:         KindProtocol,
	TickerAlreadyDeployed: KindProtocol,
	TickerNotDeployed:     KindProtocol,
	MintExceedsLimit:      KindProtocol,
	MintExceedsSupply:     KindProtocol,
	InsufficientBalance:   KindProtocol,
	UnresolvableSender:    KindProtocol,

	LegacyTokenExists:                  KindCrossNamespace,
	LegacyLookupRequiredButUnavailable: KindCrossNamespace,

	NodeUnavailable:   KindTransient,
	OracleUnavailable: KindTransient,
	StoreConflict:     KindTransient,

	ReorgIrrecoverable:             KindFatal,
	CommitChecksumMismatch:         KindFatal,
	DuplicateProcessorRegistration: KindFatal,
	ConfigInvalid:                  KindFatal,
	RetryBudgetExceeded:            KindFatal,
}

// Kind reports which propagation class a code belongs to. Unregistered
// codes are treated as fatal, since silently swallowing an unknown failure
// mode is worse than stopping the indexer.
func (c ErrorCode) Kind() Kind {
	if k, ok := kindByCode[c]; ok {
		return k
	}
	return KindFatal
}

// Error is the typed error value carried through the validator, processors,
// and operation log. It deliberately does not wrap an underlying error: the
// Code is the contract, Message is operator-facing detail only.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Message == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// New constructs a typed error for the given code.
func New(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// As extracts an *Error from a generic error, if present.
func As(err error) (*Error, bool) {
	ce, ok := err.(*Error)
	return ce, ok
}

// CodeOf returns the ErrorCode of err if it is an *Error, and false otherwise.
func CodeOf(err error) (ErrorCode, bool) {
	ce, ok := err.(*Error)
	if !ok {
		return "", false
	}
	return ce.Code, true
}
