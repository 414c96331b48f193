package email

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// NoopSender logs mail instead of delivering it. Used when no provider key
// is configured.
type NoopSender struct {
	log *zap.Logger
}

func NewNoopSender(log *zap.Logger) *NoopSender {
	return &NoopSender{log: log}
}

func (s *NoopSender) Send(_ context.Context, req SendRequest) (SendResult, error) {
	s.log.Info("noop email send", zap.Strings("to", req.To), zap.String("subject", req.Subject))
	return SendResult{
		MessageID: fmt.Sprintf("noop-%d", time.Now().UnixNano()),
		SentAt:    time.Now(),
	}, nil
}
