package di

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PredBoard/internal/handler/ws"
	internalrepo "PredBoard/internal/repository"
	pcache "PredBoard/pkg/cache"
	"PredBoard/pkg/config"
	applogger "PredBoard/pkg/logger"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Backend.BaseURL = "http://127.0.0.1:1"
	cfg.Logging.Level = "error"
	return cfg
}

func TestProvideCacheDefaultsToMemory(t *testing.T) {
	store, cleanup, err := ProvideCache(testConfig(), applogger.Nop())
	require.NoError(t, err)
	defer cleanup()
	assert.IsType(t, &pcache.MemoryCache{}, store)
}

func TestProvideKafkaProducerDisabled(t *testing.T) {
	p, err := ProvideKafkaProducer(testConfig())
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestProvidePublisherWithoutKafka(t *testing.T) {
	pub := ProvidePublisher(testConfig(), ws.NewHub(applogger.Nop()), nil)
	multi, ok := pub.(*internalrepo.MultiPublisher)
	require.True(t, ok)
	assert.Equal(t, 1, multi.Len())
}

func TestProvideSessionsRejectsUnknownTab(t *testing.T) {
	cfg := testConfig()
	cfg.Dashboard.DefaultTab = "portfolio"
	_, err := ProvideSessions(cfg, nil, nil, applogger.Nop())
	assert.Error(t, err)
}

func TestInitializeApp(t *testing.T) {
	app, cleanup, err := InitializeApp(testConfig())
	require.NoError(t, err)
	defer cleanup()
	assert.NotNil(t, app)
}
