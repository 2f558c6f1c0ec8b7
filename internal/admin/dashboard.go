package admin

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/abdelaziz-sekouti/beauty-ecom/internal/models"
	"github.com/abdelaziz-sekouti/beauty-ecom/internal/storage"
	"github.com/google/uuid"
)

func DefaultProducts() []models.AdminProduct {
	return []models.AdminProduct{
		{Product: models.Product{ID: 1, Name: "Vitamin C Brightening Serum", Category: "skincare", Price: 45.99, Badge: "Bestseller"}, Stock: 50, Status: "active"},
		{Product: models.Product{ID: 2, Name: "Hydrating Facial Moisturizer", Category: "skincare", Price: 38.50}, Stock: 75, Status: "active"},
		{Product: models.Product{ID: 3, Name: "Matte Finish Foundation", Category: "makeup", Price: 32.00}, Stock: 100, Status: "active"},
	}
}

func DefaultSettings() models.Settings {
	return models.Settings{
		StoreName:    "Beauty Haven",
		StoreEmail:   "hello@beautyhaven.com",
		TaxRate:      8,
		ShippingCost: 9.99,
	}
}

var validStatus = map[string]struct{}{
	models.OrderStatusPending:    {},
	models.OrderStatusProcessing: {},
	models.OrderStatusCompleted:  {},
	models.OrderStatusCancelled:  {},
}

type Stats struct {
	Products  int     `json:"products"`
	Orders    int     `json:"orders"`
	Customers int     `json:"customers"`
	Revenue   float64 `json:"revenue"`
}

// Dashboard manages the admin blobs: products, orders, customers and settings.
// Each call reads the blob, changes it and writes it back under one lock.
type Dashboard struct {
	mu  sync.Mutex
	kv  storage.Store
	log *slog.Logger
	now func() time.Time
}

func NewDashboard(kv storage.Store, log *slog.Logger) *Dashboard {
	if log == nil {
		log = slog.Default()
	}
	return &Dashboard{kv: kv, log: log.With("component", "admin.dashboard"), now: time.Now}
}

// Seed writes the default products when none are stored yet.
func (d *Dashboard) Seed(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var products []models.AdminProduct
	ok, err := storage.GetJSON(ctx, d.kv, storage.KeyAdminProducts, &products)
	if err != nil {
		return fmt.Errorf("seed products: %w", err)
	}
	if ok {
		return nil
	}
	if err := storage.SetJSON(ctx, d.kv, storage.KeyAdminProducts, DefaultProducts()); err != nil {
		return fmt.Errorf("seed products: %w", err)
	}
	d.log.Info("admin_products_seeded", "products", len(DefaultProducts()))
	return nil
}

func (d *Dashboard) ListProducts(ctx context.Context) ([]models.AdminProduct, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.products(ctx)
}

func (d *Dashboard) CreateProduct(ctx context.Context, p models.AdminProduct) (models.AdminProduct, error) {
	if err := validateProduct(p); err != nil {
		return models.AdminProduct{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	products, err := d.products(ctx)
	if err != nil {
		return models.AdminProduct{}, err
	}
	maxID := 0
	for _, existing := range products {
		if existing.ID > maxID {
			maxID = existing.ID
		}
	}
	p.ID = maxID + 1
	if p.Status == "" {
		p.Status = "active"
	}
	products = append(products, p)
	if err := storage.SetJSON(ctx, d.kv, storage.KeyAdminProducts, products); err != nil {
		return models.AdminProduct{}, fmt.Errorf("save products: %w", err)
	}
	return p, nil
}

func (d *Dashboard) UpdateProduct(ctx context.Context, id int, p models.AdminProduct) (models.AdminProduct, error) {
	if err := validateProduct(p); err != nil {
		return models.AdminProduct{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	products, err := d.products(ctx)
	if err != nil {
		return models.AdminProduct{}, err
	}
	i := indexProduct(products, id)
	if i < 0 {
		return models.AdminProduct{}, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	p.ID = id
	if p.Status == "" {
		p.Status = products[i].Status
	}
	products[i] = p
	if err := storage.SetJSON(ctx, d.kv, storage.KeyAdminProducts, products); err != nil {
		return models.AdminProduct{}, fmt.Errorf("save products: %w", err)
	}
	return p, nil
}

func (d *Dashboard) DeleteProduct(ctx context.Context, id int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	products, err := d.products(ctx)
	if err != nil {
		return err
	}
	i := indexProduct(products, id)
	if i < 0 {
		return fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	products = append(products[:i], products[i+1:]...)
	if err := storage.SetJSON(ctx, d.kv, storage.KeyAdminProducts, products); err != nil {
		return fmt.Errorf("save products: %w", err)
	}
	return nil
}

// ListOrders returns orders newest first. An empty status or "all" lists every order.
func (d *Dashboard) ListOrders(ctx context.Context, status string) ([]models.Order, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	orders, err := d.orders(ctx)
	if err != nil {
		return nil, err
	}
	if status == "" || status == "all" {
		return orders, nil
	}
	out := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if o.Status == status {
			out = append(out, o)
		}
	}
	return out, nil
}

func (d *Dashboard) UpdateOrderStatus(ctx context.Context, id, status string) (models.Order, error) {
	if _, ok := validStatus[status]; !ok {
		return models.Order{}, fmt.Errorf("%q: %w", status, ErrInvalidStatus)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	orders, err := d.orders(ctx)
	if err != nil {
		return models.Order{}, err
	}
	for i := range orders {
		if orders[i].ID == id {
			orders[i].Status = status
			if err := storage.SetJSON(ctx, d.kv, storage.KeyAdminOrders, orders); err != nil {
				return models.Order{}, fmt.Errorf("save orders: %w", err)
			}
			return orders[i], nil
		}
	}
	return models.Order{}, fmt.Errorf("order %s: %w", id, ErrNotFound)
}

// RecordOrder stores a placed order and counts it against the customer with
// the same email, creating that customer on first purchase.
func (d *Dashboard) RecordOrder(ctx context.Context, order models.Order, customer models.Customer) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if order.Status == "" {
		order.Status = models.OrderStatusPending
	}
	orders, err := d.orders(ctx)
	if err != nil {
		return err
	}
	orders = append([]models.Order{order}, orders...)
	if err := storage.SetJSON(ctx, d.kv, storage.KeyAdminOrders, orders); err != nil {
		return fmt.Errorf("save orders: %w", err)
	}

	customers, err := d.customers(ctx)
	if err != nil {
		return err
	}
	found := false
	for i := range customers {
		if strings.EqualFold(customers[i].Email, customer.Email) {
			customers[i].Orders++
			found = true
			break
		}
	}
	if !found {
		customer.ID = uuid.NewString()
		customer.Orders = 1
		if customer.Joined.IsZero() {
			customer.Joined = d.now().UTC()
		}
		customers = append(customers, customer)
	}
	if err := storage.SetJSON(ctx, d.kv, storage.KeyAdminCustomers, customers); err != nil {
		return fmt.Errorf("save customers: %w", err)
	}

	d.log.Info("order_recorded", "order_id", order.ID, "total", order.Total, "new_customer", !found)
	return nil
}

// SearchCustomers matches q case-insensitively against name and email.
func (d *Dashboard) SearchCustomers(ctx context.Context, q string) ([]models.Customer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	customers, err := d.customers(ctx)
	if err != nil {
		return nil, err
	}
	term := strings.ToLower(strings.TrimSpace(q))
	if term == "" {
		return customers, nil
	}
	out := make([]models.Customer, 0, len(customers))
	for _, c := range customers {
		if strings.Contains(strings.ToLower(c.Name), term) || strings.Contains(strings.ToLower(c.Email), term) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (d *Dashboard) Stats(ctx context.Context) (Stats, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	products, err := d.products(ctx)
	if err != nil {
		return Stats{}, err
	}
	orders, err := d.orders(ctx)
	if err != nil {
		return Stats{}, err
	}
	customers, err := d.customers(ctx)
	if err != nil {
		return Stats{}, err
	}

	var revenue float64
	for _, o := range orders {
		if o.Status == models.OrderStatusCompleted {
			revenue += o.Total
		}
	}
	return Stats{
		Products:  len(products),
		Orders:    len(orders),
		Customers: len(customers),
		Revenue:   revenue,
	}, nil
}

func (d *Dashboard) Settings(ctx context.Context) (models.Settings, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	s := DefaultSettings()
	if _, err := storage.GetJSON(ctx, d.kv, storage.KeyAdminSettings, &s); err != nil {
		return models.Settings{}, fmt.Errorf("read settings: %w", err)
	}
	return s, nil
}

func (d *Dashboard) SaveSettings(ctx context.Context, s models.Settings) error {
	if strings.TrimSpace(s.StoreName) == "" {
		return fmt.Errorf("store name is required: %w", ErrValidation)
	}
	if s.TaxRate < 0 || s.ShippingCost < 0 {
		return fmt.Errorf("tax rate and shipping cost must not be negative: %w", ErrValidation)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if err := storage.SetJSON(ctx, d.kv, storage.KeyAdminSettings, s); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

func (d *Dashboard) products(ctx context.Context) ([]models.AdminProduct, error) {
	var products []models.AdminProduct
	ok, err := storage.GetJSON(ctx, d.kv, storage.KeyAdminProducts, &products)
	if err != nil {
		return nil, fmt.Errorf("read products: %w", err)
	}
	if !ok {
		return DefaultProducts(), nil
	}
	return products, nil
}

func (d *Dashboard) orders(ctx context.Context) ([]models.Order, error) {
	orders := []models.Order{}
	if _, err := storage.GetJSON(ctx, d.kv, storage.KeyAdminOrders, &orders); err != nil {
		return nil, fmt.Errorf("read orders: %w", err)
	}
	return orders, nil
}

func (d *Dashboard) customers(ctx context.Context) ([]models.Customer, error) {
	customers := []models.Customer{}
	if _, err := storage.GetJSON(ctx, d.kv, storage.KeyAdminCustomers, &customers); err != nil {
		return nil, fmt.Errorf("read customers: %w", err)
	}
	return customers, nil
}

func indexProduct(products []models.AdminProduct, id int) int {
	for i, p := range products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func validateProduct(p models.AdminProduct) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("name is required: %w", ErrValidation)
	}
	if p.Price < 0 || p.Stock < 0 {
		return fmt.Errorf("price and stock must not be negative: %w", ErrValidation)
	}
	return nil
}
