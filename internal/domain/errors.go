package domain

import "errors"

// Error message string constants - single source of truth for error messages.
// Use these in assert.Contains() checks when testing error messages.
const (
	ErrMsgProjectExists   = "construction project already exists"
	ErrMsgProjectNotFound = "construction project not found"
	ErrMsgAreaNotFound    = "area not found"
	ErrMsgItemNotFound    = "item not found"
	ErrMsgQuestNotFound   = "quest not found"
	ErrMsgInvalidInput    = "invalid input"
)

// Common domain errors.
// These should be used consistently across all layers. Wrap with
// fmt.Errorf("%w: %s", domain.ErrXxx, details) for additional context.
var (
	ErrProjectExists   = errors.New(ErrMsgProjectExists)
	ErrProjectNotFound = errors.New(ErrMsgProjectNotFound)
	ErrAreaNotFound    = errors.New(ErrMsgAreaNotFound)
	ErrItemNotFound    = errors.New(ErrMsgItemNotFound)
	ErrQuestNotFound   = errors.New(ErrMsgQuestNotFound)
	ErrInvalidInput    = errors.New(ErrMsgInvalidInput)
)
