package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"dairyflow/internal/config"
	"dairyflow/tokenstore"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func TestOpenBackend_Memory(t *testing.T) {
	b, err := OpenBackend(context.Background(), config.BackendMemory, &config.Config{})
	require.NoError(t, err)
	require.IsType(t, &tokenstore.MemoryBackend{}, b.Backend)
	require.NoError(t, b.Close())
}

func TestOpenBackend_File(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{FilePath: filepath.Join(t.TempDir(), "s.json")}}
	b, err := OpenBackend(context.Background(), config.BackendFile, cfg)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, b.Set(ctx, "k", "v"))
	v, err := b.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "v", v)
}

func TestOpenBackend_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &config.Config{
		Redis: config.RedisConfig{Addr: mr.Addr()},
		Store: config.StoreConfig{Prefix: "cli:"},
	}

	b, err := OpenBackend(context.Background(), config.BackendRedis, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	require.NotNil(t, b.Redis)

	require.NoError(t, b.Set(context.Background(), "k", "v"))
	got, err := mr.Get("cli:k")
	require.NoError(t, err)
	require.Equal(t, "v", got)
}

func TestOpenBackend_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := OpenBackend(context.Background(), config.BackendRedis, &config.Config{Redis: config.RedisConfig{Addr: addr}})
	require.ErrorContains(t, err, "failed to connect to redis")
}

func TestOpenBackend_Unknown(t *testing.T) {
	_, err := OpenBackend(context.Background(), "floppy", &config.Config{})
	require.Error(t, err)
}
