package app

import (
	"context"

	"github.com/asaskevich/EventBus"
	"github.com/gorilla/sessions"

	"github.com/karadag/storefront/config"
	"github.com/karadag/storefront/internal/auth"
	"github.com/karadag/storefront/internal/cart"
	"github.com/karadag/storefront/internal/catalog"
	"github.com/karadag/storefront/internal/repository"
)

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// StoresProvider provides the process-wide repositories
type StoresProvider interface {
	repository.Provider
}

// EventBusProvider provides the in-process event bus
type EventBusProvider interface {
	EventBus() EventBus.Bus
}

// ServiceProvider provides the domain services and the request auth gate
type ServiceProvider interface {
	AuthService() *auth.Service
	CatalogService() *catalog.Service
	CartService() *cart.Service
	Gate() *auth.Gate
	Tokens() *auth.TokenIssuer
	SessionStore() sessions.Store
}

// AppContext combines all provider interfaces for full application context
// Handlers should depend on specific providers or this combined interface
type AppContext interface {
	ConfigProvider
	StoresProvider
	EventBusProvider
	ServiceProvider

	// Application lifecycle methods
	MigrateDB(ctx context.Context) error
	InitDb(ctx context.Context) error
}
