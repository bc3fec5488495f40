package tokenstore

import (
	"context"

	clientv3 "go.etcd.io/etcd/client/v3"
)

type EtcdBackend struct {
	kv     clientv3.KV
	prefix string
}

func NewEtcdBackend(kv clientv3.KV, prefix string) *EtcdBackend {
	return &EtcdBackend{
		kv:     kv,
		prefix: prefix,
	}
}

func (e *EtcdBackend) Get(ctx context.Context, key string) (string, error) {
	resp, err := e.kv.Get(ctx, e.prefix+key)
	if err != nil {
		return "", err
	}
	if len(resp.Kvs) == 0 {
		return "", ErrNotFound
	}
	return string(resp.Kvs[0].Value), nil
}

func (e *EtcdBackend) Set(ctx context.Context, key, value string) error {
	_, err := e.kv.Put(ctx, e.prefix+key, value)
	return err
}

func (e *EtcdBackend) Delete(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		if _, err := e.kv.Delete(ctx, e.prefix+k); err != nil {
			return err
		}
	}
	return nil
}
