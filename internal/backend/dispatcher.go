package backend

import (
	"errors"
	"fmt"

	"expensetracker/internal/core"
	"expensetracker/internal/storage"
)

// Dispatcher resolves the adapter that serves a storage mode.
type Dispatcher struct {
	local storage.Adapter
	cloud storage.Adapter
}

// NewDispatcher requires a local adapter. cloud may be nil.
func NewDispatcher(local, cloud storage.Adapter) *Dispatcher {
	return &Dispatcher{local: local, cloud: cloud}
}

func (d *Dispatcher) For(mode core.Mode) (storage.Adapter, error) {
	switch mode {
	case core.ModeLocal:
		return d.local, nil
	case core.ModeCloud:
		if d.cloud == nil {
			return nil, core.ErrCloudUnavailable
		}
		return d.cloud, nil
	default:
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidMode, mode)
	}
}

func (d *Dispatcher) CloudEnabled() bool {
	return d.cloud != nil
}

func (d *Dispatcher) Close() error {
	var errs []error
	if err := d.local.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close local: %w", err))
	}
	if d.cloud != nil {
		if err := d.cloud.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close cloud: %w", err))
		}
	}
	return errors.Join(errs...)
}
