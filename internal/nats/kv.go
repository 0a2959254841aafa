package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/capitalize-ai/hr-service-desk/internal/model"
	"github.com/capitalize-ai/hr-service-desk/internal/store"
)

// CaseBucket is the Key-Value bucket holding case records.
const CaseBucket = "hr_cases"

// KVCaseStore implements store.CaseStore on a JetStream Key-Value bucket.
// Updates use the entry revision so concurrent writers cannot lose a transition.
type KVCaseStore struct {
	client *Client
	kv     jetstream.KeyValue
	now    func() time.Time
}

var _ store.CaseStore = (*KVCaseStore)(nil)

// NewKVCaseStore binds to the case bucket, creating it when missing.
func NewKVCaseStore(ctx context.Context, client *Client) (*KVCaseStore, error) {
	js := client.JetStream()

	kv, err := js.KeyValue(ctx, CaseBucket)
	if errors.Is(err, jetstream.ErrBucketNotFound) {
		kv, err = js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
			Bucket:      CaseBucket,
			Description: "HR service desk cases",
			History:     5,
			Storage:     jetstream.FileStorage,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to bind case bucket: %w", err)
	}

	return &KVCaseStore{client: client, kv: kv, now: time.Now}, nil
}

// Create persists a new case; an existing key is a duplicate.
func (s *KVCaseStore) Create(ctx context.Context, c *model.Case) (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal case: %w", err)
	}

	if _, err := s.kv.Create(ctx, c.ID, data); err != nil {
		if errors.Is(err, jetstream.ErrKeyExists) {
			return "", fmt.Errorf("%w: %s", store.ErrDuplicateCase, c.ID)
		}
		return "", fmt.Errorf("failed to create case: %w", err)
	}

	return c.ID, nil
}

// UpdateStatus applies a lifecycle transition with revision check.
func (s *KVCaseStore) UpdateStatus(ctx context.Context, caseID string, update model.StatusUpdate) error {
	c, revision, err := s.load(ctx, caseID)
	if err != nil {
		return err
	}

	before := c.Status
	if err := c.Apply(update, s.now()); err != nil {
		return err
	}
	if before == c.Status && c.Status.Terminal() {
		return nil
	}

	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal case: %w", err)
	}

	if _, err := s.kv.Update(ctx, caseID, data, revision); err != nil {
		return fmt.Errorf("failed to update case %s: %w", caseID, err)
	}

	return nil
}

// Get retrieves a case by ID.
func (s *KVCaseStore) Get(ctx context.Context, caseID string) (*model.Case, error) {
	c, _, err := s.load(ctx, caseID)
	return c, err
}

// ListByUser scans the bucket for a user's cases, newest first.
func (s *KVCaseStore) ListByUser(ctx context.Context, userID string, limit int) ([]model.Case, error) {
	keys, err := s.kv.Keys(ctx)
	if errors.Is(err, jetstream.ErrNoKeysFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list case keys: %w", err)
	}

	var cases []model.Case
	for _, key := range keys {
		c, _, err := s.load(ctx, key)
		if errors.Is(err, store.ErrCaseNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if c.UserID == userID {
			cases = append(cases, *c)
		}
	}

	sort.Slice(cases, func(i, j int) bool {
		return cases[i].CreatedAt.After(cases[j].CreatedAt)
	})
	if limit > 0 && len(cases) > limit {
		cases = cases[:limit]
	}

	return cases, nil
}

// Ping reports whether the NATS connection is up.
func (s *KVCaseStore) Ping(ctx context.Context) error {
	if !s.client.IsConnected() {
		return errors.New("NATS not connected")
	}
	return nil
}

// Close is a no-op; the connection is owned by the Client.
func (s *KVCaseStore) Close() error {
	return nil
}

func (s *KVCaseStore) load(ctx context.Context, caseID string) (*model.Case, uint64, error) {
	entry, err := s.kv.Get(ctx, caseID)
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return nil, 0, fmt.Errorf("%w: %s", store.ErrCaseNotFound, caseID)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get case %s: %w", caseID, err)
	}

	var c model.Case
	if err := json.Unmarshal(entry.Value(), &c); err != nil {
		return nil, 0, fmt.Errorf("failed to decode case %s: %w", caseID, err)
	}

	return &c, entry.Revision(), nil
}
