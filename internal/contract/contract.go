// Package contract defines the operation inputs and the structured
// failure envelope exchanged between the timeline services and their
// callers. Validation and authorization failures are returned as values
// of *OperationError so surfaces can distinguish them from transport
// faults without string matching.
package contract

import (
	"time"

	"github.com/atelierworks/timberline/internal/domain"
)

type ErrorCode string

const (
	ErrValidation   ErrorCode = "VALIDATION"
	ErrUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrNotFound     ErrorCode = "NOT_FOUND"
	ErrStorage      ErrorCode = "STORAGE"
)

// OperationError is the structured failure shape for every service
// operation.
type OperationError struct {
	Code    ErrorCode
	Message string
}

func (e *OperationError) Error() string {
	return string(e.Code) + ": " + e.Message
}

func ValidationError(msg string) *OperationError {
	return &OperationError{Code: ErrValidation, Message: msg}
}

func UnauthorizedError(msg string) *OperationError {
	return &OperationError{Code: ErrUnauthorized, Message: msg}
}

func NotFoundError(msg string) *OperationError {
	return &OperationError{Code: ErrNotFound, Message: msg}
}

// CreateItemInput carries the caller-settable fields of a new schedule
// item. Hierarchy level and sort order are assigned by the service.
type CreateItemInput struct {
	ProjectID string
	Name      string
	Kind      domain.ItemKind
	StartDate time.Time
	EndDate   time.Time
	ParentID  *string
	Priority  domain.Priority
	Color     string
	LinkedIDs []string
}

// ParentChange reparents an item; a nil ParentID moves it to the root.
type ParentChange struct {
	ParentID *string
}

// ProgressChange sets or clears the explicit progress override; a nil
// Value reverts the item to derived progress.
type ProgressChange struct {
	Value *int
}

// UpdateItemInput is a partial update: nil fields are left untouched.
// Links, when non-nil, replaces the linked measurement set wholesale.
type UpdateItemInput struct {
	Name      *string
	StartDate *time.Time
	EndDate   *time.Time
	Parent    *ParentChange
	Priority  *domain.Priority
	Progress  *ProgressChange
	Completed *bool
	Color     *string
	Links     []domain.Measurement
}

type CreateDependencyInput struct {
	ProjectID string
	SourceID  string
	TargetID  string
	Type      domain.DependencyType
	LagDays   int
}

// UpdateDependencyInput adjusts an existing dependency; nil fields are
// left untouched. Endpoints are immutable, delete and recreate instead.
type UpdateDependencyInput struct {
	Type    *domain.DependencyType
	LagDays *int
}
