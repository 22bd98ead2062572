package bootstrap

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	appconfig "github.com/wolfman30/hausservice-booking/internal/config"
	"github.com/wolfman30/hausservice-booking/internal/leads"
	"github.com/wolfman30/hausservice-booking/internal/notify"
	"github.com/wolfman30/hausservice-booking/pkg/logging"
)

// BuildLeadNotifier emails the office about new leads. Without OFFICE_EMAIL
// it returns nil.
func BuildLeadNotifier(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) leads.Notifier {
	if cfg == nil || strings.TrimSpace(cfg.OfficeEmail) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	return notify.NewLeadNotifier(BuildEmailSender(ctx, cfg, logger), cfg.OfficeEmail, cfg.Location(), logger)
}

// BuildEmailSender prefers SendGrid, then SES. Without either, mails are
// only logged.
func BuildEmailSender(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) notify.EmailSender {
	if sg := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
		Sandbox:   cfg.SendGridSandbox,
	}, logger); sg != nil {
		logger.Info("lead notifications via sendgrid", "sandbox", cfg.SendGridSandbox)
		return sg
	}

	if strings.TrimSpace(cfg.SESFromEmail) != "" {
		awsCfg, err := LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Warn("failed to load aws config for SES", "error", err)
		} else {
			client := sesv2.NewFromConfig(awsCfg, func(o *sesv2.Options) {
				if endpoint := strings.TrimSpace(cfg.AWSEndpointOverride); endpoint != "" {
					o.BaseEndpoint = &endpoint
				}
			})
			logger.Info("lead notifications via SES", "region", cfg.AWSRegion)
			return notify.NewSESSender(client, notify.SESConfig{
				FromEmail:        cfg.SESFromEmail,
				FromName:         cfg.SendGridFromName,
				ConfigurationSet: cfg.SESConfigSet,
			}, logger)
		}
	}

	logger.Warn("no email provider configured; lead notifications are logged only")
	return notify.NewStubEmailSender(logger)
}
