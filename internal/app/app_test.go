package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karadag/storefront/config"
	"github.com/karadag/storefront/internal/catalog"
	"github.com/karadag/storefront/internal/domain"
	"github.com/karadag/storefront/internal/repository"
	"github.com/karadag/storefront/pkg/common"
)

func newTestApp(t *testing.T) *Application {
	t.Helper()
	cfg := config.DefaultAppConfig()
	cfg.System.Workdir = t.TempDir()
	cfg.Database.Type = "sqlite"
	cfg.Database.Name = "storefront_test"
	a := NewApplication(cfg)
	t.Cleanup(a.Release)
	return a
}

func TestInitDbSeedsCatalogAndAdmin(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()
	require.NoError(t, a.InitDb(ctx))

	st, err := a.Stores(ctx)
	require.NoError(t, err)

	cats, err := st.Categories.List(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, len(defaultCategories))

	_, total, err := st.Products.List(ctx, repository.ProductFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, len(defaultProducts), total)

	maras, err := a.CatalogService().ListProducts(ctx, catalog.ProductQuery{Category: "red-pepper"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, maras.Total)
	assert.Contains(t, maras.Data[0].FirstImageURL(), "w=600")

	admin, err := st.Users.GetByEmail(ctx, "admin@karadagbaharat.com")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, admin.Role)
	assert.True(t, admin.IsActive)

	// seeding again leaves existing rows alone
	require.NoError(t, a.SeedCatalog(ctx))
	_, total, err = st.Products.List(ctx, repository.ProductFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, len(defaultProducts), total)

	login, err := a.AuthService().Login(ctx, "ADMIN@karadagbaharat.com", "admin123")
	require.NoError(t, err)
	p, err := a.Tokens().Verify(login.AccessToken)
	require.NoError(t, err)
	assert.True(t, p.IsAdmin())
}

func TestOperationEventsWriteOprLog(t *testing.T) {
	a := newTestApp(t)
	ctx := domain.WithRemoteIP(context.Background(), "192.0.2.10")
	require.NoError(t, a.MigrateDB(ctx))

	admin := &domain.Principal{UserID: common.UUIDint64(), Role: domain.RoleAdmin}
	_, err := a.CatalogService().CreateCategory(ctx, admin, catalog.CategoryInput{Name: "Kekik"})
	require.NoError(t, err)
	a.EventBus().WaitAsync()

	st, err := a.Stores(ctx)
	require.NoError(t, err)
	logs, err := st.OprLogs.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, domain.TopicCategoryCreated, logs[0].OptAction)
	assert.Equal(t, "192.0.2.10", logs[0].OprIp)
	assert.Equal(t, admin.UserID, logs[0].OprID)
}

func TestSchedClearExpireData(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()
	require.NoError(t, a.MigrateDB(ctx))
	st, err := a.Stores(ctx)
	require.NoError(t, err)

	require.NoError(t, st.OprLogs.Create(ctx, &domain.SysOprLog{ID: common.UUIDint64(), OptAction: "old", OptTime: time.Now().Add(-OprLogRetention - time.Hour)}))
	require.NoError(t, st.OprLogs.Create(ctx, &domain.SysOprLog{ID: common.UUIDint64(), OptAction: "recent", OptTime: time.Now()}))

	a.SchedClearExpireData()

	logs, err := st.OprLogs.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "recent", logs[0].OptAction)
}

func TestOpenStoresRejectsUnknownType(t *testing.T) {
	cfg := config.DefaultAppConfig()
	cfg.Database.Type = "oracle"
	_, err := openStores(context.Background(), cfg)
	assert.Error(t, err)

	// a failed open is retried on the next call
	a := NewApplication(cfg)
	_, err = a.Stores(context.Background())
	assert.Error(t, err)
	cfg.Database.Type = "sqlite"
	cfg.System.Workdir = t.TempDir()
	st, err := a.Stores(context.Background())
	require.NoError(t, err)
	require.NoError(t, st.Close(context.Background()))
}

func TestNewLoggerWritesRotatedFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "storefront.log")
	logger, err := newLogger(config.LogConfig{Mode: "production", FileEnable: true, Filename: file})
	require.NoError(t, err)
	logger.Info("cart cleared")
	_ = logger.Sync()

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"cart cleared"`)
}

func TestMegabytes(t *testing.T) {
	assert.EqualValues(t, 0, megabytes(1<<20-1))
	assert.EqualValues(t, 3, megabytes(3<<20))
}
