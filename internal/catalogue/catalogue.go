// Package catalogue owns the ordered collection of menu items shown in the
// portal sidebar. The whole collection is persisted as one JSON document
// under StorageKey and every mutation rewrites it.
package catalogue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"enterprise-portal/internal/models"
	"enterprise-portal/internal/store"

	"go.uber.org/zap"
)

type NewItem struct {
	Name      string
	Icon      string
	Config    models.ItemConfig
	Order     *int
	CreatedBy string
}

// Patch is a shallow update. Config replaces the whole configuration, and
// with it the item type.
type Patch struct {
	Name   *string
	Icon   *string
	Config models.ItemConfig
	Order  *int
}

// Store serialises its own mutations; it does not coordinate with other
// processes sharing the slot.
type Store struct {
	mu     sync.Mutex
	slot   store.Store
	now    func() time.Time
	newID  func(time.Time) string
	logger *zap.Logger
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDGenerator(fn func(time.Time) string) Option {
	return func(s *Store) { s.newID = fn }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// NewStore builds a catalogue on top of slot. A nil slot behaves like an
// unavailable medium: reads serve the seed defaults, writes fail.
func NewStore(slot store.Store, opts ...Option) *Store {
	s := &Store{
		slot:   slot,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  NewItemID,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List may seed the slot, so it holds the same lock as the mutations.
func (s *Store) List(ctx context.Context) ([]models.MenuItem, error) {
	s.mu.Lock()
	items, err := s.load(ctx)
	s.mu.Unlock()
	if err != nil {
		if !errors.Is(err, store.ErrUnavailable) {
			return nil, err
		}
		s.logger.Warn("catalogue storage unavailable, serving defaults", zap.Error(err))
		items = Defaults(s.now())
	}
	sortItems(items)
	return items, nil
}

func (s *Store) Get(ctx context.Context, id string) (models.MenuItem, error) {
	items, err := s.List(ctx)
	if err != nil {
		return models.MenuItem{}, err
	}
	for _, item := range items {
		if item.ID == id {
			return item, nil
		}
	}
	return models.MenuItem{}, ErrItemNotFound
}

func (s *Store) Create(ctx context.Context, input NewItem) (models.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	item := models.MenuItem{
		ID:        s.newID(now),
		Name:      strings.TrimSpace(input.Name),
		Icon:      input.Icon,
		Config:    input.Config,
		Order:     DefaultOrder,
		CreatedAt: now,
		CreatedBy: input.CreatedBy,
	}
	if item.Icon == "" {
		item.Icon = DefaultIcon
	}
	if input.Order != nil {
		item.Order = *input.Order
	}
	if err := Validate(item); err != nil {
		return models.MenuItem{}, err
	}

	items, err := s.load(ctx)
	if err != nil {
		return models.MenuItem{}, err
	}
	items = append(items, item)
	if err := s.save(ctx, items); err != nil {
		return models.MenuItem{}, err
	}
	s.logger.Info("menu item created", zap.String("id", item.ID), zap.String("type", string(item.Type())), zap.String("created_by", item.CreatedBy))
	return item, nil
}

func (s *Store) Update(ctx context.Context, id string, patch Patch) (models.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx)
	if err != nil {
		return models.MenuItem{}, err
	}
	index := indexOf(items, id)
	if index == -1 {
		return models.MenuItem{}, ErrItemNotFound
	}

	updated := items[index]
	if patch.Name != nil {
		updated.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Icon != nil {
		updated.Icon = *patch.Icon
	}
	if patch.Config != nil {
		updated.Config = patch.Config
	}
	if patch.Order != nil {
		updated.Order = *patch.Order
	}
	if err := Validate(updated); err != nil {
		return models.MenuItem{}, err
	}

	items[index] = updated
	if err := s.save(ctx, items); err != nil {
		return models.MenuItem{}, err
	}
	s.logger.Info("menu item updated", zap.String("id", id))
	return updated, nil
}

func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	filtered := make([]models.MenuItem, 0, len(items))
	for _, item := range items {
		if item.ID != id {
			filtered = append(filtered, item)
		}
	}
	if len(filtered) == len(items) {
		return false, nil
	}
	if err := s.save(ctx, filtered); err != nil {
		return false, err
	}
	s.logger.Info("menu item deleted", zap.String("id", id))
	return true, nil
}

// Reorder rewrites the collection in the given id order, assigning each item
// its index as order. Items whose id is not listed are dropped.
func (s *Store) Reorder(ctx context.Context, orderedIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx)
	if err != nil {
		return err
	}
	byID := make(map[string]models.MenuItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	reordered := make([]models.MenuItem, 0, len(orderedIDs))
	seen := make(map[string]bool, len(orderedIDs))
	for _, id := range orderedIDs {
		item, ok := byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		item.Order = len(reordered)
		reordered = append(reordered, item)
	}
	if dropped := len(items) - len(reordered); dropped > 0 {
		s.logger.Warn("reorder dropped unlisted menu items", zap.Int("dropped", dropped))
	}
	return s.save(ctx, reordered)
}

func (s *Store) load(ctx context.Context) ([]models.MenuItem, error) {
	if s.slot == nil {
		return nil, fmt.Errorf("catalogue: no storage configured: %w", store.ErrUnavailable)
	}
	raw, err := s.slot.Get(ctx, StorageKey)
	if errors.Is(err, store.ErrNotFound) {
		items := Defaults(s.now())
		if err := s.save(ctx, items); err != nil {
			return nil, err
		}
		return items, nil
	}
	if err != nil {
		return nil, fmt.Errorf("catalogue: load: %w", err)
	}

	var items []models.MenuItem
	if err := json.Unmarshal(raw, &items); err != nil {
		s.logger.Error("catalogue document is corrupt, serving defaults", zap.Error(err))
		return Defaults(s.now()), nil
	}
	return items, nil
}

func (s *Store) save(ctx context.Context, items []models.MenuItem) error {
	if s.slot == nil {
		return fmt.Errorf("catalogue: no storage configured: %w", store.ErrUnavailable)
	}
	if items == nil {
		items = []models.MenuItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("catalogue: encode: %w", err)
	}
	if err := s.slot.Put(ctx, StorageKey, raw); err != nil {
		return fmt.Errorf("catalogue: save: %w", err)
	}
	return nil
}

func sortItems(items []models.MenuItem) {
	sort.SliceStable(items, func(i, j int) bool { return items[i].Order < items[j].Order })
}

func indexOf(items []models.MenuItem, id string) int {
	for i, item := range items {
		if item.ID == id {
			return i
		}
	}
	return -1
}
