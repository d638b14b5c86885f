package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/folllow/folllow-server/internal/config"
	"github.com/folllow/folllow-server/internal/logger"
	"github.com/folllow/folllow-server/internal/uploads"
)

// ProvideUploads provides the presigned-upload service. With no bucket
// configured the service is disabled and avatar uploads fail cleanly.
func ProvideUploads(i do.Injector) (*uploads.Service, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	svc, err := uploads.New(context.Background(), uploads.Config{
		Bucket:     cfg.Storage.Bucket,
		Region:     cfg.Storage.Region,
		AccessKey:  cfg.Storage.AccessKey,
		SecretKey:  cfg.Storage.SecretKey,
		Endpoint:   cfg.Storage.Endpoint,
		PublicHost: cfg.Storage.PublicHost,
		PresignTTL: cfg.Storage.PresignTTL,
	})
	if err != nil {
		return nil, err
	}

	if svc.Enabled() {
		log.Info("Object storage ready", "bucket", cfg.Storage.Bucket, "region", cfg.Storage.Region)
	} else {
		log.Warn("Avatar uploads disabled: no storage bucket configured")
	}

	return svc, nil
}
