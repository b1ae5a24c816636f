package domain

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// Kind groups error codes into the categories callers branch on.
type Kind string

const (
	KindValidation    Kind = "VALIDATION"
	KindDuration      Kind = "DURATION"
	KindTarget        Kind = "TARGET"
	KindStatus        Kind = "STATUS"
	KindAmount        Kind = "AMOUNT"
	KindAuthorization Kind = "AUTHORIZATION"
	KindCapacity      Kind = "CAPACITY"
	KindIdentity      Kind = "IDENTITY"
	KindNotFound      Kind = "NOT_FOUND"
)

// Code is a machine-readable error code.
type Code string

const (
	// Length ceilings
	CodeTitleTooLong             Code = "TITLE_TOO_LONG"
	CodeDescriptionTooLong       Code = "DESCRIPTION_TOO_LONG"
	CodeOrganizationNameTooLong  Code = "ORGANIZATION_NAME_TOO_LONG"
	CodeImageURLTooLong          Code = "IMAGE_URL_TOO_LONG"
	CodeNameTooLong              Code = "NAME_TOO_LONG"
	CodeEmailTooLong             Code = "EMAIL_TOO_LONG"
	CodeAvatarURLTooLong         Code = "AVATAR_URL_TOO_LONG"
	CodeTransactionHashTooLong   Code = "TRANSACTION_HASH_TOO_LONG"
	CodeImpactDescriptionTooLong Code = "IMPACT_DESCRIPTION_TOO_LONG"
	CodeInvalidArgument          Code = "INVALID_ARGUMENT"

	// Campaign shape
	CodeDurationTooShort Code = "CAMPAIGN_DURATION_TOO_SHORT"
	CodeDurationTooLong  Code = "CAMPAIGN_DURATION_TOO_LONG"
	CodeTargetTooLow     Code = "TARGET_AMOUNT_TOO_LOW"

	// Lifecycle
	CodeCampaignEnded           Code = "CAMPAIGN_ENDED"
	CodeCampaignNotActive       Code = "CAMPAIGN_NOT_ACTIVE"
	CodeInvalidStatusTransition Code = "INVALID_STATUS_TRANSITION"

	// Value movement
	CodeDonationTooLow     Code = "DONATION_TOO_LOW"
	CodeArithmeticOverflow Code = "ARITHMETIC_OVERFLOW"
	CodeInsufficientFunds  Code = "INSUFFICIENT_FUNDS"

	CodeInvalidAuthority Code = "INVALID_AUTHORITY"
	CodeMaxBadgesReached Code = "MAX_BADGES_REACHED"
	CodeAlreadyExists    Code = "ALREADY_EXISTS"
	CodeNotFound         Code = "NOT_FOUND"
)

// Error is the single error type returned by ledger operations.
//
// Two errors are equal under errors.Is when their codes match, so callers
// compare against the exported sentinels:
//
//	if errors.Is(err, domain.ErrCampaignEnded) { ... }
//
// Field and Limit are set for length violations; Field names the record or
// key for identity and lookup errors.
type Error struct {
	Kind    Kind
	Code    Code
	Field   string
	Limit   int
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Field != "" && e.Limit > 0:
		return fmt.Sprintf("%s: %s (field=%s, limit=%d)", e.Code, e.Message, e.Field, e.Limit)
	case e.Field != "":
		return fmt.Sprintf("%s: %s (field=%s)", e.Code, e.Message, e.Field)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

var (
	ErrDurationTooShort = &Error{Kind: KindDuration, Code: CodeDurationTooShort, Message: "campaign duration is too short"}
	ErrDurationTooLong  = &Error{Kind: KindDuration, Code: CodeDurationTooLong, Message: "campaign duration is too long"}
	ErrTargetTooLow     = &Error{Kind: KindTarget, Code: CodeTargetTooLow, Message: "campaign target amount is too low"}

	ErrCampaignEnded           = &Error{Kind: KindStatus, Code: CodeCampaignEnded, Message: "campaign has already ended"}
	ErrCampaignNotActive       = &Error{Kind: KindStatus, Code: CodeCampaignNotActive, Message: "campaign is not active"}
	ErrInvalidStatusTransition = &Error{Kind: KindStatus, Code: CodeInvalidStatusTransition, Message: "invalid campaign status transition"}

	ErrDonationTooLow     = &Error{Kind: KindAmount, Code: CodeDonationTooLow, Message: "donation amount is too low"}
	ErrArithmeticOverflow = &Error{Kind: KindAmount, Code: CodeArithmeticOverflow, Message: "arithmetic overflow"}
	ErrInsufficientFunds  = &Error{Kind: KindAmount, Code: CodeInsufficientFunds, Message: "insufficient funds"}

	ErrInvalidAuthority = &Error{Kind: KindAuthorization, Code: CodeInvalidAuthority, Message: "invalid authority"}
	ErrMaxBadgesReached = &Error{Kind: KindCapacity, Code: CodeMaxBadgesReached, Message: "maximum number of badges reached"}
	ErrAlreadyExists    = &Error{Kind: KindIdentity, Code: CodeAlreadyExists, Message: "record already exists"}
	ErrNotFound         = &Error{Kind: KindNotFound, Code: CodeNotFound, Message: "record not found"}

	// Length sentinels for errors.Is; the returned errors carry Field and Limit.
	ErrTitleTooLong             = &Error{Kind: KindValidation, Code: CodeTitleTooLong}
	ErrDescriptionTooLong       = &Error{Kind: KindValidation, Code: CodeDescriptionTooLong}
	ErrOrganizationNameTooLong  = &Error{Kind: KindValidation, Code: CodeOrganizationNameTooLong}
	ErrImageURLTooLong          = &Error{Kind: KindValidation, Code: CodeImageURLTooLong}
	ErrNameTooLong              = &Error{Kind: KindValidation, Code: CodeNameTooLong}
	ErrEmailTooLong             = &Error{Kind: KindValidation, Code: CodeEmailTooLong}
	ErrAvatarURLTooLong         = &Error{Kind: KindValidation, Code: CodeAvatarURLTooLong}
	ErrTransactionHashTooLong   = &Error{Kind: KindValidation, Code: CodeTransactionHashTooLong}
	ErrImpactDescriptionTooLong = &Error{Kind: KindValidation, Code: CodeImpactDescriptionTooLong}
	ErrInvalidArgument          = &Error{Kind: KindValidation, Code: CodeInvalidArgument}
)

// Text fields with a length ceiling.
const (
	FieldTitle             = "title"
	FieldDescription       = "description"
	FieldOrganizationName  = "organization_name"
	FieldImageURL          = "image_url"
	FieldName              = "name"
	FieldEmail             = "email"
	FieldAvatarURL         = "avatar_url"
	FieldTransactionHash   = "transaction_hash"
	FieldImpactDescription = "impact_description"
)

var fieldCodes = map[string]Code{
	FieldTitle:             CodeTitleTooLong,
	FieldDescription:       CodeDescriptionTooLong,
	FieldOrganizationName:  CodeOrganizationNameTooLong,
	FieldImageURL:          CodeImageURLTooLong,
	FieldName:              CodeNameTooLong,
	FieldEmail:             CodeEmailTooLong,
	FieldAvatarURL:         CodeAvatarURLTooLong,
	FieldTransactionHash:   CodeTransactionHashTooLong,
	FieldImpactDescription: CodeImpactDescriptionTooLong,
}

// NewValidationError reports that field exceeds limit bytes.
func NewValidationError(field string, limit int) *Error {
	code, ok := fieldCodes[field]
	if !ok {
		code = CodeInvalidArgument
	}
	return &Error{
		Kind:    KindValidation,
		Code:    code,
		Field:   field,
		Limit:   limit,
		Message: fmt.Sprintf("%s exceeds %d bytes", field, limit),
	}
}

// CheckLength returns a validation error when len(value) > limit.
// Length is measured in bytes. Text that is not valid UTF-8 is rejected
// first, see CheckUTF8.
func CheckLength(field, value string, limit int) error {
	if err := CheckUTF8(field, value); err != nil {
		return err
	}
	if len(value) > limit {
		return NewValidationError(field, limit)
	}
	return nil
}

// CheckUTF8 rejects a value that is not valid UTF-8. JSON output and the
// event log would replace its invalid bytes with U+FFFD, making distinct
// inputs indistinguishable.
func CheckUTF8(field, value string) error {
	if !utf8.ValidString(value) {
		return InvalidArgument(field, field+" is not valid UTF-8")
	}
	return nil
}

// InvalidArgument reports a malformed input that is not a length violation.
func InvalidArgument(field, message string) *Error {
	return &Error{Kind: KindValidation, Code: CodeInvalidArgument, Field: field, Message: message}
}

// NotFound reports a missing record of the given kind.
func NotFound(record, key string) *Error {
	return &Error{Kind: KindNotFound, Code: CodeNotFound, Field: record, Message: fmt.Sprintf("%s %s not found", record, key)}
}

// AlreadyExists reports an address collision for the given record kind.
func AlreadyExists(record, key string) *Error {
	return &Error{Kind: KindIdentity, Code: CodeAlreadyExists, Field: record, Message: fmt.Sprintf("%s %s already exists", record, key)}
}

// CodeOf returns the code of the first *Error in err's chain, or "".
// Uses errors.As to handle wrapped errors.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// KindOf returns the kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsNotFound returns true if the error is a missing-record error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
