package wishlist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/abdelaziz-sekouti/beauty-ecom/internal/events"
	"github.com/abdelaziz-sekouti/beauty-ecom/internal/models"
	"github.com/abdelaziz-sekouti/beauty-ecom/internal/storage"
)

var ErrNotFound = errors.New("wishlist: product not found")

type Outcome string

const (
	Added   Outcome = "added"
	Removed Outcome = "removed"
)

type ProductLookup interface {
	Lookup(id int) (models.Product, error)
}

// Store is a set of products keyed by id, kept in the order they were added.
type Store struct {
	mu      sync.Mutex
	items   []models.Product
	catalog ProductLookup
	kv      storage.Store
	pub     events.Publisher
	log     *slog.Logger
}

func New(catalog ProductLookup, kv storage.Store, pub events.Publisher, log *slog.Logger) *Store {
	if pub == nil {
		pub = events.Nop{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Store{catalog: catalog, kv: kv, pub: pub, log: log.With("component", "wishlist")}
}

func (s *Store) Load(ctx context.Context) error {
	var items []models.Product
	if _, err := storage.GetJSON(ctx, s.kv, storage.KeyWishlist, &items); err != nil {
		return fmt.Errorf("load wishlist: %w", err)
	}

	seen := make(map[int]struct{}, len(items))
	out := make([]models.Product, 0, len(items))
	for _, p := range items {
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}

	s.mu.Lock()
	s.items = out
	s.mu.Unlock()
	return nil
}

func (s *Store) Toggle(ctx context.Context, productID int) (Outcome, error) {
	p, err := s.catalog.Lookup(productID)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	s.mu.Lock()
	outcome := Added
	if i := s.indexOf(productID); i >= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
		outcome = Removed
	} else {
		s.items = append(s.items, p)
	}
	items := make([]models.Product, len(s.items))
	copy(items, s.items)
	if err := storage.SetJSON(ctx, s.kv, storage.KeyWishlist, items); err != nil {
		s.log.Warn("wishlist_persist_failed", "reason", "keeping in-memory wishlist", "error", err)
	}
	s.mu.Unlock()

	_ = s.pub.Publish(ctx, events.Event{
		Type: events.TypeWishlistChanged,
		Key:  strconv.Itoa(productID),
		Payload: map[string]any{
			"action":     string(outcome),
			"product_id": productID,
			"size":       len(items),
		},
	})
	return outcome, nil
}

func (s *Store) Contains(productID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOf(productID) >= 0
}

func (s *Store) Items() []models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Product, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) indexOf(productID int) int {
	for i, p := range s.items {
		if p.ID == productID {
			return i
		}
	}
	return -1
}
