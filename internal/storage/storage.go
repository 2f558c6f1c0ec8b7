package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Keys of the persisted storefront state.
const (
	KeyCart           = "cart"
	KeyWishlist       = "wishlist"
	KeyAdminSession   = "admin_session"
	KeyAdminProducts  = "admin_products"
	KeyAdminOrders    = "admin_orders"
	KeyAdminCustomers = "admin_customers"
	KeyAdminSettings  = "admin_settings"
)

var (
	ErrNotFound           = errors.New("key not found")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// Store is a string-keyed blob store. Values are JSON documents.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// GetJSON decodes the value under key into v. It reports false when the key is absent.
func GetJSON(ctx context.Context, s Store, key string, v any) (bool, error) {
	data, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func SetJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, data)
}
