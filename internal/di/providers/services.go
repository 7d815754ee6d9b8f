package providers

import (
	"github.com/samber/do/v2"

	"github.com/cinelogapp/cinelog-server/internal/auth"
	"github.com/cinelogapp/cinelog-server/internal/catalog"
	"github.com/cinelogapp/cinelog-server/internal/logger"
	"github.com/cinelogapp/cinelog-server/internal/service"
	"github.com/cinelogapp/cinelog-server/internal/validation"
)

// ProvideValidator provides the request validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokenService, v, log.Logger), nil
}

// ProvideContentService provides the user-generated content service.
func ProvideContentService(i do.Injector) (*service.ContentService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	cat := do.MustInvoke[*catalog.Catalog](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewContentService(storeHandle.Store, cat, v, log.Logger), nil
}

// ProvideCatalogService provides the movie catalog query service.
func ProvideCatalogService(i do.Injector) (*service.CatalogService, error) {
	cat := do.MustInvoke[*catalog.Catalog](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*MovieIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCatalogService(cat, storeHandle.Store, indexHandle.MovieIndex, log.Logger), nil
}

// ProvideStatsService provides the user statistics service.
func ProvideStatsService(i do.Injector) (*service.StatsService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)

	return service.NewStatsService(storeHandle.Store), nil
}
