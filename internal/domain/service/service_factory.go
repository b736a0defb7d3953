package service

import (
	"github.com/digitalsix/presenca-dashboard/internal/adapter/export"
	"github.com/digitalsix/presenca-dashboard/internal/adapter/upstream"
	"github.com/digitalsix/presenca-dashboard/internal/app/audit"
	"github.com/digitalsix/presenca-dashboard/internal/app/dashboard"
	"github.com/digitalsix/presenca-dashboard/internal/app/session"
	"github.com/digitalsix/presenca-dashboard/internal/domain/repository"
	"github.com/digitalsix/presenca-dashboard/internal/infra/metrics"
	"github.com/digitalsix/presenca-dashboard/pkg/cache"
	"github.com/digitalsix/presenca-dashboard/pkg/config"
	"go.uber.org/zap"
)

// Services contém todos os serviços da aplicação
type Services struct {
	Sessions  *session.Service
	Dashboard *dashboard.Service
	Audit     *audit.Service
	Exports   *export.Generator
}

// NewServices cria todos os serviços necessários. O cache de dados só é usado
// com features.caching; as sessões sempre ficam no cache. auditRepo nil desativa a auditoria.
func NewServices(cfg *config.Config, api *upstream.Client, c cache.Cache, auditRepo repository.AuditRepository, m *metrics.APIMetrics, logger *zap.Logger) (*Services, error) {
	dataCache := c
	if !cfg.Features.Caching {
		dataCache = &cache.NoOpCache{}
	}

	dashboardService, err := dashboard.NewService(api, dataCache, cfg.Dashboard, logger)
	if err != nil {
		return nil, err
	}

	return &Services{
		Sessions:  session.NewService(c, api, cfg.Auth.SessionTTL, m, logger),
		Dashboard: dashboardService,
		Audit:     audit.NewService(auditRepo, logger),
		Exports:   export.NewGenerator(dashboardService.Location(), m, logger),
	}, nil
}
