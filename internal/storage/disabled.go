package storage

import (
	"context"
	"errors"
	"time"
)

// ErrDisabled is returned by every Disabled call.
var ErrDisabled = errors.New("storage: access disabled")

// Disabled models an environment that blocks storage access entirely.
type Disabled struct{}

func (Disabled) Get(context.Context, string) (string, error) { return "", ErrDisabled }

func (Disabled) Set(context.Context, string, string, time.Duration) error { return ErrDisabled }
