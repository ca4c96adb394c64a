package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Shiangjun/LTspice-cli/internal/export"
	"github.com/Shiangjun/LTspice-cli/internal/waveform"
)

var (
	// ErrInvalidTimeout indicates a non-positive simulator timeout
	ErrInvalidTimeout = errors.New("invalid simulator.timeout")

	// ErrInvalidFormat indicates an unsupported output format
	ErrInvalidFormat = errors.New("invalid output.format")

	// ErrInvalidHeaderMode indicates an unsupported header mode
	ErrInvalidHeaderMode = errors.New("invalid extract.header_mode")

	// ErrInvalidVariables indicates an unusable variable catalog
	ErrInvalidVariables = errors.New("invalid extract.variables")

	// ErrInvalidOrder indicates a column order that is not a permutation of the catalog
	ErrInvalidOrder = errors.New("invalid extract.order")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Simulator.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("%w: must be positive, got %s", ErrInvalidTimeout, cfg.Simulator.Timeout))
	}

	if _, err := export.ParseFormat(cfg.Output.Format); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrInvalidFormat, err))
	}

	if _, err := waveform.ParseHeaderMode(cfg.Extract.HeaderMode); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrInvalidHeaderMode, err))
	}

	if err := validateExtract(&cfg.Extract); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateExtract(cfg *ExtractConfig) error {
	if _, err := waveform.NewCatalog(cfg.Variables...); err != nil {
		// Order cannot be checked against a broken catalog
		return fmt.Errorf("%w: %w", ErrInvalidVariables, err)
	}
	if len(cfg.Order) == 0 {
		return nil
	}
	if _, err := waveform.NewColumnOrder(cfg.Order, len(cfg.Variables)); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOrder, err)
	}
	return nil
}

// joinErrors combines multiple errors into a single error with clear formatting.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}

	return fmt.Errorf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}
