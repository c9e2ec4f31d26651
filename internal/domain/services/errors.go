package services

import "errors"

var (
	ErrUnknownIngredient  = errors.New("unknown ingredient")
	ErrLogNotFound        = errors.New("log entry not found")
	ErrPresetNotFound     = errors.New("preset not found")
	ErrPresetNameRequired = errors.New("preset name is required")
	ErrInvalidBackup      = errors.New("invalid backup")
	ErrInvalidInputs      = errors.New("invalid brew inputs")
	ErrUnsupportedFormat  = errors.New("unsupported export format")
)
