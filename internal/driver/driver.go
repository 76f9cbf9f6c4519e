package driver

import (
	"context"
	"fmt"

	"github.com/soerenschneider/stately/internal/conf"
)

// Requester is the single operation a driver triggers.
type Requester interface {
	Request()
}

type Driver interface {
	Run(ctx context.Context, r Requester) error
}

func Build(c conf.DriverConfig) (Driver, error) {
	switch c.Type {
	case conf.DriverConsole:
		console, err := NewConsole(c.TriggerKey, c.ExitKey)
		if err != nil {
			return nil, err
		}
		return console, nil
	case conf.DriverTicker:
		ticker, err := NewTicker(c.Interval, c.Count)
		if err != nil {
			return nil, err
		}
		return ticker, nil
	case conf.DriverScript:
		script, err := NewScript(c.Count)
		if err != nil {
			return nil, err
		}
		return script, nil
	default:
		return nil, fmt.Errorf("no driver %q available", c.Type)
	}
}
