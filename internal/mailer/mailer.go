package mailer

import (
	"fmt"
	"sort"

	"github.com/Zachkp/portfolio/internal/config"
	"github.com/Zachkp/portfolio/internal/logger"
	"github.com/prometheus/client_golang/prometheus"
)

// TemplateIDs lists the ids of templates in sorted order.
func TemplateIDs(templates map[string]Template) []string {
	ids := make([]string, 0, len(templates))
	for id := range templates {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// New builds the configured provider client, instrumented on reg.
func New(cfg *config.MailConfig, reg prometheus.Registerer) (Client, error) {
	var client Client
	switch cfg.Provider {
	case config.ProviderEmailJS, "":
		client = NewEmailJS(cfg.BaseURL, cfg.PublicKey, cfg.PrivateKey)
	case config.ProviderResend:
		templates := DefaultTemplates()
		if _, ok := templates[cfg.TemplateID]; !ok {
			logger.GetLogger().Warnw("Resend template id is not a built-in template; every send will fail",
				"template_id", cfg.TemplateID,
				"available", TemplateIDs(templates))
		}
		client = NewResend(cfg.ServiceID, cfg.PublicKey, cfg.FromAddress, cfg.FromName, templates)
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.Provider)
	}

	logger.GetLogger().Infow("Initializing message-send client",
		"provider", cfg.Provider,
		"service_id", cfg.ServiceID,
		"template_id", cfg.TemplateID,
		"public_key", logger.MaskKey(cfg.PublicKey))

	return Instrument(client, reg), nil
}
