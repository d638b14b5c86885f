package providers

import (
	"github.com/samber/do/v2"

	"github.com/folllow/folllow-server/internal/auth"
	"github.com/folllow/folllow-server/internal/config"
	"github.com/folllow/folllow-server/internal/logger"
)

// ProvideTokenService provides the PASETO session token service.
// The key comes from config when set, otherwise from a generated key
// file under the data dir so restarts keep sessions valid.
func ProvideTokenService(i do.Injector) (*auth.TokenService, error) {
	cfg := do.MustInvoke[*config.Config](i)

	keyHex := cfg.Auth.SessionKeyHex
	if keyHex == "" {
		generated, err := auth.LoadOrGenerateKeyHex(cfg.Database.DataDir)
		if err != nil {
			return nil, err
		}
		keyHex = generated
	}

	return auth.NewTokenService(keyHex, cfg.Auth.SessionDuration)
}

// ProvideGoogleProvider provides the Google sign-in provider. With no
// client credentials configured the provider is disabled and the
// sign-in routes report that.
func ProvideGoogleProvider(i do.Injector) (*auth.GoogleProvider, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	provider := auth.NewGoogleProvider(
		cfg.OAuth.GoogleClientID,
		cfg.OAuth.GoogleClientSecret,
		cfg.OAuth.RedirectURL,
	)
	if !provider.Enabled() {
		log.Warn("Google sign-in disabled: no client credentials configured")
	}

	return provider, nil
}
