package tokenstore

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	v1 "dairyflow/pkg/api/v1"
	"dairyflow/pkg/constraints"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.etcd.io/etcd/api/v3/mvccpb"
	clientv3 "go.etcd.io/etcd/client/v3"
)

// fakeKV partially implements clientv3.KV
type fakeKV struct {
	clientv3.KV
	mu   sync.Mutex
	data map[string]string
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: make(map[string]string)}
}

func (f *fakeKV) Get(_ context.Context, key string, _ ...clientv3.OpOption) (*clientv3.GetResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	resp := &clientv3.GetResponse{}
	if v, ok := f.data[key]; ok {
		resp.Kvs = []*mvccpb.KeyValue{{Key: []byte(key), Value: []byte(v)}}
	}
	return resp, nil
}

func (f *fakeKV) Put(_ context.Context, key, val string, _ ...clientv3.OpOption) (*clientv3.PutResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = val
	return &clientv3.PutResponse{}, nil
}

func (f *fakeKV) Delete(_ context.Context, key string, _ ...clientv3.OpOption) (*clientv3.DeleteResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
	return &clientv3.DeleteResponse{}, nil
}

func backends(t *testing.T) map[string]Backend {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return map[string]Backend{
		"memory": NewMemoryBackend(),
		"file":   NewFileBackend(filepath.Join(t.TempDir(), "session.json")),
		"redis":  NewRedisBackend(rdb, "test:", 0),
		"etcd":   NewEtcdBackend(newFakeKV(), "/dairyflow/"),
	}
}

func sampleProfile() *v1.UserProfile {
	return &v1.UserProfile{
		ID:        "u-1",
		Email:     "company@test.com",
		UserType:  constraints.UserTypeCompany,
		Name:      "Acme",
		Phone:     "555",
		CompanyID: "c-1",
		CompanyData: &v1.Company{
			ID:    "c-1",
			Name:  "Acme",
			Phone: "555",
		},
	}
}

func TestStore_Backends(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := New(backend)

			ok, err := s.IsAuthenticated(ctx)
			require.NoError(t, err)
			require.False(t, ok)

			token, err := s.GetToken(ctx)
			require.NoError(t, err)
			require.Empty(t, token)

			user, err := s.GetUser(ctx)
			require.NoError(t, err)
			require.Nil(t, user)

			require.NoError(t, s.SaveToken(ctx, "T1"))
			require.NoError(t, s.SaveRefreshToken(ctx, "R1"))
			require.NoError(t, s.SaveUser(ctx, sampleProfile()))

			ok, err = s.IsAuthenticated(ctx)
			require.NoError(t, err)
			require.True(t, ok)

			token, err = s.GetToken(ctx)
			require.NoError(t, err)
			require.Equal(t, "T1", token)

			refresh, err := s.GetRefreshToken(ctx)
			require.NoError(t, err)
			require.Equal(t, "R1", refresh)

			user, err = s.GetUser(ctx)
			require.NoError(t, err)
			require.Equal(t, sampleProfile(), user)

			// last writer wins
			require.NoError(t, s.SaveToken(ctx, "T2"))
			token, err = s.GetToken(ctx)
			require.NoError(t, err)
			require.Equal(t, "T2", token)

			require.NoError(t, s.ClearAll(ctx))
			require.NoError(t, s.ClearAll(ctx))

			token, err = s.GetToken(ctx)
			require.NoError(t, err)
			require.Empty(t, token)
			refresh, err = s.GetRefreshToken(ctx)
			require.NoError(t, err)
			require.Empty(t, refresh)
			user, err = s.GetUser(ctx)
			require.NoError(t, err)
			require.Nil(t, user)
		})
	}
}

func TestStore_SaveNilUserRemovesProfile(t *testing.T) {
	ctx := context.Background()
	s := New(NewMemoryBackend())

	require.NoError(t, s.SaveUser(ctx, sampleProfile()))
	require.NoError(t, s.SaveUser(ctx, nil))

	user, err := s.GetUser(ctx)
	require.NoError(t, err)
	require.Nil(t, user)
}

func TestStore_CorruptUser(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	require.NoError(t, backend.Set(ctx, constraints.StorageKeyUser, "{not json"))

	_, err := New(backend).GetUser(ctx)
	require.Error(t, err)
}

func TestMemoryBackend_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	s := New(NewMemoryBackend())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.SaveToken(ctx, "T")
		}()
		go func() {
			defer wg.Done()
			_, _ = s.GetToken(ctx)
		}()
	}
	wg.Wait()

	token, err := s.GetToken(ctx)
	require.NoError(t, err)
	require.Equal(t, "T", token)
}

func TestFileBackend_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.json")

	require.NoError(t, New(NewFileBackend(path)).SaveToken(ctx, "T1"))

	token, err := New(NewFileBackend(path)).GetToken(ctx)
	require.NoError(t, err)
	require.Equal(t, "T1", token)
}

func TestRedisBackend_TTL(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	s := New(NewRedisBackend(rdb, "ttl:", time.Minute))
	require.NoError(t, s.SaveToken(ctx, "T1"))
	require.True(t, mr.Exists("ttl:"+constraints.StorageKeyAccessToken))

	mr.FastForward(2 * time.Minute)

	token, err := s.GetToken(ctx)
	require.NoError(t, err)
	require.Empty(t, token)
}

func TestRedisBackend_Unreachable(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:0",
		DialTimeout: 10 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	_, err := New(NewRedisBackend(rdb, "", 0)).GetToken(context.Background())
	require.Error(t, err)
}
