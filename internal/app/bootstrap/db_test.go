package bootstrap

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/learnportal/internal/app/store/sessions"
	"github.com/dalemusser/learnportal/internal/app/system/apiclient"
	"github.com/dalemusser/learnportal/internal/app/system/ratelimit"
	"github.com/dalemusser/learnportal/internal/testutil"
	"github.com/dalemusser/waffle/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func TestNewAPIClient_AddsRequestID(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	api.JSON(http.MethodGet, "/health", http.StatusOK, testutil.Envelope(map[string]string{"status": "ok"}))

	cfg := validConfig()
	cfg.APIBaseURL = api.URL
	client, err := newAPIClient(&config.CoreConfig{Env: "prod"}, cfg, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, client.Health(context.Background()))
	reqs := api.Requests(http.MethodGet, "/health")
	require.Len(t, reqs, 1)
	assert.NotEmpty(t, reqs[0].Header.Get(apiclient.RequestIDHeader))
}

func TestNewAPIClient_SuppressesHotReloadOutsideProd(t *testing.T) {
	api := testutil.NewFakeAPI(t)

	tests := []struct {
		name     string
		env      string
		suppress bool
		wantErr  bool
	}{
		{"dev with suppression", "dev", true, false},
		{"dev without suppression", "dev", false, true},
		{"prod ignores the flag", "prod", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.APIBaseURL = api.URL
			cfg.DevSuppressHMRErrors = tt.suppress
			client, err := newAPIClient(&config.CoreConfig{Env: tt.env}, cfg, zap.NewNop())
			require.NoError(t, err)

			env, err := client.Get(context.Background(), "/__webpack_hmr", nil)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, http.StatusNoContent, env.Status)
		})
	}
}

func TestHealthChecks_RedisOnlyWhenConfigured(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	client, err := apiclient.New(apiclient.Options{BaseURL: api.URL})
	require.NoError(t, err)

	checks := healthChecks(DBDeps{API: client})
	names := make([]string, 0, len(checks))
	for _, c := range checks {
		names = append(names, c.Name)
		assert.True(t, c.Required, c.Name)
	}
	assert.Equal(t, []string{"mongo", "api"}, names)
}

func TestStartBackground_StopsCleanly(t *testing.T) {
	db := testutil.SetupTestDB(t)

	bg := &background{}
	cfg := validConfig()
	cfg.SessionCleanupInterval = time.Hour
	cfg.SessionInactiveAfter = time.Minute
	startBackground(bg, ratelimit.NewGuard(ratelimit.Limits{}), sessions.New(db), cfg, zap.NewNop())

	require.NotNil(t, bg.sessionCleanup)
	require.NotNil(t, bg.cancel)
	bg.stop()
}

func TestStartBackground_NilHolderIsNoop(t *testing.T) {
	startBackground(nil, ratelimit.NewGuard(ratelimit.Limits{}), nil, validConfig(), zap.NewNop())
	var bg *background
	bg.stop()
}

func TestEnsureSchema_CreatesIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{MongoDatabase: db}
	require.NoError(t, EnsureSchema(ctx, &config.CoreConfig{}, validConfig(), deps, zap.NewNop()))
	// Idempotent.
	require.NoError(t, EnsureSchema(ctx, &config.CoreConfig{}, validConfig(), deps, zap.NewNop()))

	cur, err := db.Collection(sessions.Collection).Indexes().List(ctx)
	require.NoError(t, err)
	var idx []bson.M
	require.NoError(t, cur.All(ctx, &idx))
	assert.Greater(t, len(idx), 1, "expected indexes beyond _id")
}

func TestConnectRedis(t *testing.T) {
	client, _ := testutil.SetupTestRedis(t)
	cfg := validConfig()
	cfg.RedisAddr = client.Options().Addr

	rdb, err := connectRedis(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer rdb.Close()
	assert.NoError(t, rdb.Ping(context.Background()).Err())
}
