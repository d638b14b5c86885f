package providers

import (
	"github.com/samber/do/v2"

	"github.com/folllow/folllow-server/internal/logger"
	"github.com/folllow/folllow-server/internal/service"
	"github.com/folllow/folllow-server/internal/uploads"
)

// ProvideAuthService provides the sign-in service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	return service.NewAuthService(storeHandle.Store, log.Logger), nil
}

// ProvideTreeService provides the tree service.
func ProvideTreeService(i do.Injector) (*service.TreeService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	return service.NewTreeService(storeHandle.Store, log.Logger), nil
}

// ProvidePageService provides the public page service.
func ProvidePageService(i do.Injector) (*service.PageService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	return service.NewPageService(storeHandle.Store, log.Logger), nil
}

// ProvideAnalyticsService provides the analytics service.
func ProvideAnalyticsService(i do.Injector) (*service.AnalyticsService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	return service.NewAnalyticsService(storeHandle.Store, log.Logger), nil
}

// ProvideDashboardService provides the dashboard service.
func ProvideDashboardService(i do.Injector) (*service.DashboardService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	return service.NewDashboardService(storeHandle.Store, log.Logger), nil
}

// ProvideUploadService provides the avatar upload service.
func ProvideUploadService(i do.Injector) (*service.UploadService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	uploadsSvc := do.MustInvoke[*uploads.Service](i)
	log := do.MustInvoke[*logger.Logger](i)
	return service.NewUploadService(storeHandle.Store, uploadsSvc, log.Logger), nil
}
