package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// NatsStore implements Store on top of a NATS JetStream key-value bucket.
type NatsStore struct {
	nc *nats.Conn
	kv jetstream.KeyValue
}

// NewNatsStore connects to NATS and creates (or binds to) the named bucket.
func NewNatsStore(ctx context.Context, natsURL, bucket string) (*NatsStore, error) {
	if natsURL == "" {
		return nil, errNatsURLRequired
	}

	if bucket == "" {
		return nil, errBucketRequired
	}

	nc, err := nats.Connect(natsURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()

		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	kv, err := js.CreateKeyValue(ctx, jetstream.KeyValueConfig{Bucket: bucket})
	if err != nil {
		nc.Close()

		return nil, fmt.Errorf("failed to create KV bucket: %w", err)
	}

	return &NatsStore{nc: nc, kv: kv}, nil
}

func (n *NatsStore) Get(ctx context.Context, key string) ([]byte, uint64, bool, error) {
	entry, err := n.kv.Get(ctx, key)
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return nil, 0, false, nil
	}

	if err != nil {
		return nil, 0, false, fmt.Errorf("failed to get key %s: %w", key, err)
	}

	return entry.Value(), entry.Revision(), true, nil
}

func (n *NatsStore) Put(ctx context.Context, key string, value []byte) (uint64, error) {
	rev, err := n.kv.Put(ctx, key, value)
	if err != nil {
		return 0, fmt.Errorf("failed to put key %s: %w", key, err)
	}

	return rev, nil
}

func (n *NatsStore) Update(ctx context.Context, key string, value []byte, revision uint64) (uint64, error) {
	var (
		rev uint64
		err error
	)

	if revision == 0 {
		rev, err = n.kv.Create(ctx, key, value)
	} else {
		rev, err = n.kv.Update(ctx, key, value, revision)
	}

	if errors.Is(err, jetstream.ErrKeyExists) || errors.Is(err, jetstream.ErrKeyNotFound) {
		return 0, ErrRevisionMismatch
	}

	if err != nil {
		// JetStream reports a lost CAS race as a wrong-last-sequence error.
		var apiErr *jetstream.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode == jetstream.JSErrCodeStreamWrongLastSequence {
			return 0, ErrRevisionMismatch
		}

		return 0, fmt.Errorf("failed to update key %s: %w", key, err)
	}

	return rev, nil
}

func (n *NatsStore) Close() error {
	n.nc.Close()

	return nil
}
