package main

import (
	"context"
	"errors"
	"time"

	"fintrack/internal/amqp"
)

type watchCmd struct{}

// Run prints change events until interrupted.
func (c *watchCmd) Run(s *session) error {
	if s.changes == nil {
		return errors.New("change events are disabled: set AMQP_URL")
	}
	err := s.changes.Consume(s.ctx, func(msg *amqp.RecordChangeMessage) error {
		s.printf("%s %-13s %-8s %s\n", msg.Timestamp.Local().Format(time.DateTime), msg.Collection, msg.Op, msg.ID)
		return nil
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
