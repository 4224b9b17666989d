// Package redisstore is the remote document-store backend: ladders live as
// JSON values under ladder:<id> with a set of ids as the listing index.
package redisstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/vadiminshakov/laddr/internal/domain"
	"github.com/vadiminshakov/laddr/internal/storage"
	"github.com/vadiminshakov/laddr/pkg/retrier"
)

const (
	ladderKeyPrefix = "ladder:"
	ladderIndexKey  = "ladders"
)

// Store persists ladders in redis. Writes go through the retrier so a
// transient network failure does not immediately surface to the user; a
// write that still fails is reported and must not be assumed applied.
type Store struct {
	client *redis.Client
	retry  *retrier.Retrier
}

// New creates a store over an existing redis client.
func New(client *redis.Client) *Store {
	return &Store{
		client: client,
		retry:  retrier.New(),
	}
}

func ladderKey(id string) string {
	return fmt.Sprintf("%s%s", ladderKeyPrefix, id)
}

// Get fetches one ladder document.
func (s *Store) Get(ctx context.Context, id string) (*domain.Ladder, error) {
	payload, err := retrier.DoWithData(s.retry, ctx, func(ctx context.Context) (string, error) {
		return s.client.Get(ctx, ladderKey(id)).Result()
	})
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, storage.ErrNotFound
		}
		return nil, errors.Wrap(err, "get ladder document")
	}

	var ladder domain.Ladder
	if err := json.Unmarshal([]byte(payload), &ladder); err != nil {
		return nil, errors.Wrap(err, "decode ladder document")
	}

	return &ladder, nil
}

// List fetches every ladder referenced by the index set. Ids whose document
// expired or vanished are skipped rather than failing the whole listing.
func (s *Store) List(ctx context.Context) ([]*domain.Ladder, error) {
	ids, err := retrier.DoWithData(s.retry, ctx, func(ctx context.Context) ([]string, error) {
		return s.client.SMembers(ctx, ladderIndexKey).Result()
	})
	if err != nil {
		return nil, errors.Wrap(err, "list ladder ids")
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = ladderKey(id)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errors.Wrap(err, "fetch ladder documents")
	}

	ladders := make([]*domain.Ladder, 0, len(values))
	for i, value := range values {
		payload, ok := value.(string)
		if !ok {
			continue
		}

		var ladder domain.Ladder
		if err := json.Unmarshal([]byte(payload), &ladder); err != nil {
			return nil, errors.Wrapf(err, "decode ladder document %s", ids[i])
		}
		ladders = append(ladders, &ladder)
	}

	return ladders, nil
}

// Create stores a new document and registers it in the index atomically.
func (s *Store) Create(ctx context.Context, ladder *domain.Ladder) error {
	payload, err := json.Marshal(ladder)
	if err != nil {
		return errors.Wrap(err, "encode ladder document")
	}

	err = s.retry.Do(ctx, func(ctx context.Context) error {
		pipe := s.client.TxPipeline()
		pipe.Set(ctx, ladderKey(ladder.ID), payload, 0)
		pipe.SAdd(ctx, ladderIndexKey, ladder.ID)
		_, err := pipe.Exec(ctx)
		return err
	})

	return errors.Wrap(err, "create ladder document")
}

// Update rewrites an existing document. Unknown ids report ErrNotFound so a
// deleted ladder cannot be resurrected by a late write.
func (s *Store) Update(ctx context.Context, ladder *domain.Ladder) error {
	payload, err := json.Marshal(ladder)
	if err != nil {
		return errors.Wrap(err, "encode ladder document")
	}

	updated, err := retrier.DoWithData(s.retry, ctx, func(ctx context.Context) (bool, error) {
		return s.client.SetXX(ctx, ladderKey(ladder.ID), payload, 0).Result()
	})
	if err != nil {
		return errors.Wrap(err, "update ladder document")
	}
	if !updated {
		return storage.ErrNotFound
	}

	return nil
}

// Delete removes the document and its index entry.
func (s *Store) Delete(ctx context.Context, id string) error {
	removed, err := retrier.DoWithData(s.retry, ctx, func(ctx context.Context) (int64, error) {
		pipe := s.client.TxPipeline()
		del := pipe.Del(ctx, ladderKey(id))
		pipe.SRem(ctx, ladderIndexKey, id)
		if _, err := pipe.Exec(ctx); err != nil {
			return 0, err
		}
		return del.Val(), nil
	})
	if err != nil {
		return errors.Wrap(err, "delete ladder document")
	}
	if removed == 0 {
		return storage.ErrNotFound
	}

	return nil
}
