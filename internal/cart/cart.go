package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/abdelaziz-sekouti/beauty-ecom/internal/events"
	"github.com/abdelaziz-sekouti/beauty-ecom/internal/models"
	"github.com/abdelaziz-sekouti/beauty-ecom/internal/storage"
)

var ErrNotFound = errors.New("cart: product not found")

type ProductLookup interface {
	Lookup(id int) (models.Product, error)
}

// Store holds the shopper's cart: at most one line per product id, every
// quantity positive, insertion order preserved.
type Store struct {
	mu      sync.Mutex
	items   []models.LineItem
	catalog ProductLookup
	kv      storage.Store
	pub     events.Publisher
	log     *slog.Logger

	degraded atomic.Bool
}

func New(catalog ProductLookup, kv storage.Store, pub events.Publisher, log *slog.Logger) *Store {
	if pub == nil {
		pub = events.Nop{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		catalog: catalog,
		kv:      kv,
		pub:     pub,
		log:     log.With("component", "cart"),
	}
}

// Load replaces the in-memory cart with the persisted one. A missing key is an empty cart.
func (s *Store) Load(ctx context.Context) error {
	var items []models.LineItem
	if _, err := storage.GetJSON(ctx, s.kv, storage.KeyCart, &items); err != nil {
		return fmt.Errorf("load cart: %w", err)
	}

	s.mu.Lock()
	s.items = normalize(items)
	s.mu.Unlock()
	return nil
}

func (s *Store) Add(ctx context.Context, productID int) error {
	p, err := s.catalog.Lookup(productID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	s.mu.Lock()
	if i := s.indexOf(productID); i >= 0 {
		s.items[i].Quantity++
	} else {
		s.items = append(s.items, models.LineItem{Product: p, Quantity: 1})
	}
	s.persistLocked(ctx)
	count := s.countLocked()
	s.mu.Unlock()

	s.notify(ctx, "add", productID, count)
	return nil
}

// Remove drops the line for productID. Removing an absent line is a no-op.
func (s *Store) Remove(ctx context.Context, productID int) {
	s.mu.Lock()
	s.removeLocked(productID)
	s.persistLocked(ctx)
	count := s.countLocked()
	s.mu.Unlock()

	s.notify(ctx, "remove", productID, count)
}

// SetQuantity adjusts a line by delta; a resulting quantity <= 0 removes the line.
func (s *Store) SetQuantity(ctx context.Context, productID, delta int) {
	s.mu.Lock()
	i := s.indexOf(productID)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	q := s.items[i].Quantity + delta
	if q <= 0 {
		s.removeLocked(productID)
	} else {
		s.items[i].Quantity = q
	}
	s.persistLocked(ctx)
	count := s.countLocked()
	s.mu.Unlock()

	s.notify(ctx, "quantity", productID, count)
}

func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.items = nil
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.notify(ctx, "clear", 0, 0)
}

func (s *Store) TotalItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countLocked()
}

func (s *Store) Snapshot() []models.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.LineItem, len(s.items))
	copy(out, s.items)
	return out
}

// Degraded reports whether a write to durable storage has failed.
func (s *Store) Degraded() bool {
	if d, ok := s.kv.(interface{ Degraded() bool }); ok && d.Degraded() {
		return true
	}
	return s.degraded.Load()
}

func (s *Store) indexOf(productID int) int {
	for i, it := range s.items {
		if it.ID == productID {
			return i
		}
	}
	return -1
}

func (s *Store) removeLocked(productID int) {
	if i := s.indexOf(productID); i >= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
	}
}

func (s *Store) countLocked() int {
	n := 0
	for _, it := range s.items {
		n += it.Quantity
	}
	return n
}

func (s *Store) persistLocked(ctx context.Context) {
	items := s.items
	if items == nil {
		items = []models.LineItem{}
	}
	if err := storage.SetJSON(ctx, s.kv, storage.KeyCart, items); err != nil {
		s.degraded.Store(true)
		s.log.Warn("cart_persist_failed", "reason", "keeping in-memory cart", "error", err)
	}
}

func (s *Store) notify(ctx context.Context, action string, productID, count int) {
	_ = s.pub.Publish(ctx, events.Event{
		Type: events.TypeCartChanged,
		Key:  strconv.Itoa(productID),
		Payload: map[string]any{
			"action":     action,
			"product_id": productID,
			"item_count": count,
		},
	})
}

// normalize merges duplicated lines and drops non-positive quantities from a persisted cart.
func normalize(items []models.LineItem) []models.LineItem {
	out := make([]models.LineItem, 0, len(items))
	seen := make(map[int]int, len(items))
	for _, it := range items {
		if it.Quantity <= 0 {
			continue
		}
		if i, ok := seen[it.ID]; ok {
			out[i].Quantity += it.Quantity
			continue
		}
		seen[it.ID] = len(out)
		out = append(out, it)
	}
	return out
}
