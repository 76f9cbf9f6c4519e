package driver

import (
	"context"
	"fmt"
)

type Script struct {
	count int
}

func NewScript(count int) (*Script, error) {
	if count < 1 {
		return nil, fmt.Errorf("count must be at least 1, got %d", count)
	}

	return &Script{count: count}, nil
}

func (s *Script) Run(ctx context.Context, r Requester) error {
	for i := 0; i < s.count; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.Request()
	}

	return nil
}
