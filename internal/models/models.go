package models

import "time"

type Product struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Brand       string  `json:"brand"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Badge       string  `json:"badge,omitempty"`
	Description string  `json:"description"`
}

// LineItem is a product held in the cart. Quantity is always > 0.
type LineItem struct {
	Product
	Quantity int `json:"quantity"`
}

// AdminProduct is the admin dashboard's view of a catalog record.
type AdminProduct struct {
	Product
	Stock  int    `json:"stock"`
	Status string `json:"status"`
}

const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
)

type Order struct {
	ID       string    `json:"id"`
	Customer string    `json:"customer"`
	Date     time.Time `json:"date"`
	Total    float64   `json:"total"`
	Status   string    `json:"status"`
}

type Customer struct {
	ID     string    `json:"id"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Phone  string    `json:"phone,omitempty"`
	Orders int       `json:"orders,omitempty"`
	Joined time.Time `json:"joined"`
}

// AdminSession mirrors the stored admin login. Timestamp is unix millis.
type AdminSession struct {
	Username  string    `json:"username"`
	LoginTime time.Time `json:"loginTime"`
	Timestamp int64     `json:"timestamp"`
}

type Settings struct {
	StoreName    string  `json:"storeName"`
	StoreEmail   string  `json:"storeEmail"`
	TaxRate      float64 `json:"taxRate"`
	ShippingCost float64 `json:"shippingCost"`
}
