package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/config"
)

// EmailSender delivers a templated email. Fire-and-forget: callers never block
// request handling on delivery, and failures are logged, not retried here.
type EmailSender interface {
	SendEmail(ctx context.Context, to, template string, vars map[string]string) error
}

// WhatsAppSender delivers a template message with positional text variables.
type WhatsAppSender interface {
	SendWhatsApp(ctx context.Context, to, template string, vars []string) error
}

// LogEmailSender logs the outbound message instead of calling a provider.
// Used when no email endpoint is configured.
type LogEmailSender struct {
	cfg    config.NotificationConfig
	logger *zap.Logger
}

// NewLogEmailSender constructs the sender.
func NewLogEmailSender(cfg config.NotificationConfig, logger *zap.Logger) *LogEmailSender {
	return &LogEmailSender{cfg: cfg, logger: logger}
}

func (s *LogEmailSender) SendEmail(_ context.Context, to, template string, vars map[string]string) error {
	s.logger.Info("email notification",
		zap.String("from", s.cfg.EmailFrom),
		zap.String("to", to),
		zap.String("template", template),
		zap.Any("vars", vars),
	)
	return nil
}

// LogWhatsAppSender logs the outbound message instead of calling a provider.
type LogWhatsAppSender struct {
	cfg    config.NotificationConfig
	logger *zap.Logger
}

// NewLogWhatsAppSender constructs the sender.
func NewLogWhatsAppSender(cfg config.NotificationConfig, logger *zap.Logger) *LogWhatsAppSender {
	return &LogWhatsAppSender{cfg: cfg, logger: logger}
}

func (s *LogWhatsAppSender) SendWhatsApp(_ context.Context, to, template string, vars []string) error {
	s.logger.Info("whatsapp notification",
		zap.String("to", to),
		zap.String("template", template),
		zap.Strings("vars", vars),
	)
	return nil
}
