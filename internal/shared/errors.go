package shared

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Code identifies an error kind at the boundary of the core.
type Code string

const (
	CodeUnbalancedEntry      Code = "UNBALANCED_ENTRY"
	CodeInsufficientStock    Code = "INSUFFICIENT_STOCK"
	CodeNotFound             Code = "NOT_FOUND"
	CodeConfigurationMissing Code = "CONFIGURATION_MISSING"
	CodeDuplicateKey         Code = "DUPLICATE_KEY"
	CodeValidation           Code = "VALIDATION_FAILED"
	CodeInvalidState         Code = "INVALID_STATE"
	CodeInternal             Code = "INTERNAL"
)

var (
	// ErrUnbalancedEntry matches every UnbalancedEntryError.
	ErrUnbalancedEntry = errors.New("unbalanced entry")
	// ErrInsufficientStock matches every InsufficientStockError.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrNotFound matches every NotFoundError.
	ErrNotFound = errors.New("not found")
	// ErrConfigurationMissing matches every ConfigurationMissingError.
	ErrConfigurationMissing = errors.New("configuration missing")
	// ErrDuplicateKey matches every DuplicateKeyError.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrValidation matches every ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidState matches every StateError.
	ErrInvalidState = errors.New("invalid state")
)

// Coder is implemented by every error of the taxonomy.
type Coder interface {
	Code() Code
}

// CodeOf returns the taxonomy code carried by err, or CodeInternal.
func CodeOf(err error) Code {
	var c Coder
	if errors.As(err, &c) {
		return c.Code()
	}
	return CodeInternal
}

// UnbalancedEntryError reports rounded debit and credit totals that differ.
type UnbalancedEntryError struct {
	Debits  decimal.Decimal
	Credits decimal.Decimal
}

func UnbalancedEntry(debits, credits decimal.Decimal) *UnbalancedEntryError {
	return &UnbalancedEntryError{Debits: debits, Credits: credits}
}

func (e *UnbalancedEntryError) Error() string {
	return fmt.Sprintf("unbalanced entry: debits=%s credits=%s", e.Debits.StringFixed(2), e.Credits.StringFixed(2))
}

func (e *UnbalancedEntryError) Is(target error) bool { return target == ErrUnbalancedEntry }
func (e *UnbalancedEntryError) Code() Code           { return CodeUnbalancedEntry }

// InsufficientStockError reports an issue larger than the quantity on hand.
type InsufficientStockError struct {
	ItemID     int64
	LocationID int64
	Available  decimal.Decimal
	Requested  decimal.Decimal
}

func InsufficientStock(itemID, locationID int64, available, requested decimal.Decimal) *InsufficientStockError {
	return &InsufficientStockError{ItemID: itemID, LocationID: locationID, Available: available, Requested: requested}
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: item %d at location %d has %s, requested %s",
		e.ItemID, e.LocationID, e.Available.String(), e.Requested.String())
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }
func (e *InsufficientStockError) Code() Code           { return CodeInsufficientStock }

// NotFoundError reports a missing referenced entity.
type NotFoundError struct {
	Entity string
	Key    string
}

func NotFound(entity string, key any) *NotFoundError {
	return &NotFoundError{Entity: entity, Key: fmt.Sprint(key)}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.Key)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }
func (e *NotFoundError) Code() Code           { return CodeNotFound }

// ConfigurationMissingError reports an absent required setting such as a well-known account code.
type ConfigurationMissingError struct {
	Setting string
}

func ConfigurationMissing(setting string) *ConfigurationMissingError {
	return &ConfigurationMissingError{Setting: setting}
}

func (e *ConfigurationMissingError) Error() string {
	return "configuration missing: " + e.Setting
}

func (e *ConfigurationMissingError) Is(target error) bool { return target == ErrConfigurationMissing }
func (e *ConfigurationMissingError) Code() Code           { return CodeConfigurationMissing }

// DuplicateKeyError reports a unique constraint violation.
type DuplicateKeyError struct {
	Entity string
	Key    string
}

func DuplicateKey(entity, key string) *DuplicateKeyError {
	return &DuplicateKeyError{Entity: entity, Key: key}
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("%s %s already exists", e.Entity, e.Key)
}

func (e *DuplicateKeyError) Is(target error) bool { return target == ErrDuplicateKey }
func (e *DuplicateKeyError) Code() Code           { return CodeDuplicateKey }

// ValidationError reports malformed input.
type ValidationError struct {
	Field  string
	Reason string
}

func Invalid(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
func (e *ValidationError) Code() Code           { return CodeValidation }

// StateError reports a well-formed request the current state does not allow.
type StateError struct {
	Reason string
}

func InvalidState(format string, args ...any) *StateError {
	return &StateError{Reason: fmt.Sprintf(format, args...)}
}

func (e *StateError) Error() string        { return e.Reason }
func (e *StateError) Is(target error) bool { return target == ErrInvalidState }
func (e *StateError) Code() Code           { return CodeInvalidState }
