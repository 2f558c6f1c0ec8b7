package dispatch

import (
	"context"
	"fmt"

	"github.com/abdelaziz-sekouti/beauty-ecom/internal/cart"
	"github.com/abdelaziz-sekouti/beauty-ecom/internal/checkout"
	"github.com/abdelaziz-sekouti/beauty-ecom/internal/models"
	"github.com/abdelaziz-sekouti/beauty-ecom/internal/pricing"
	"github.com/abdelaziz-sekouti/beauty-ecom/internal/wishlist"
)

// Intent is a user action aimed at one of the stores.
type Intent interface {
	intent()
}

type AddToCart struct{ ProductID int }
type RemoveFromCart struct{ ProductID int }
type ChangeQuantity struct {
	ProductID int
	Delta     int
}
type ClearCart struct{}
type ToggleWishlist struct{ ProductID int }
type ApplyPromo struct{ Code string }

func (AddToCart) intent()      {}
func (RemoveFromCart) intent() {}
func (ChangeQuantity) intent() {}
func (ClearCart) intent()      {}
func (ToggleWishlist) intent() {}
func (ApplyPromo) intent()     {}

type Result struct {
	Items     []models.LineItem     `json:"items"`
	ItemCount int                   `json:"itemCount"`
	Wishlist  []models.Product      `json:"wishlist"`
	Totals    pricing.DisplayTotals `json:"totals"`
	Notice    string                `json:"notice,omitempty"`
	Degraded  bool                  `json:"degraded,omitempty"`
}

type Dispatcher struct {
	Cart     *cart.Store
	Wishlist *wishlist.Store
	Checkout *checkout.Flow
}

func (d *Dispatcher) Dispatch(ctx context.Context, in Intent) (Result, error) {
	var notice string

	switch it := in.(type) {
	case AddToCart:
		if err := d.Cart.Add(ctx, it.ProductID); err != nil {
			return d.view(""), err
		}
		notice = "Product added to cart!"
	case RemoveFromCart:
		d.Cart.Remove(ctx, it.ProductID)
		notice = "Item removed from cart"
	case ChangeQuantity:
		d.Cart.SetQuantity(ctx, it.ProductID, it.Delta)
	case ClearCart:
		d.Cart.Clear(ctx)
		notice = "Cart cleared"
	case ToggleWishlist:
		out, err := d.Wishlist.Toggle(ctx, it.ProductID)
		if err != nil {
			return d.view(""), err
		}
		if out == wishlist.Added {
			notice = "Added to wishlist"
		} else {
			notice = "Removed from wishlist"
		}
	case ApplyPromo:
		if _, err := d.Checkout.ApplyPromo(it.Code); err != nil {
			return d.view("Invalid promo code"), err
		}
		notice = fmt.Sprintf("Promo code %s applied successfully!", it.Code)
	default:
		return Result{}, fmt.Errorf("unknown intent %T", in)
	}

	return d.view(notice), nil
}

func (d *Dispatcher) view(notice string) Result {
	return Result{
		Items:     d.Cart.Snapshot(),
		ItemCount: d.Cart.TotalItemCount(),
		Wishlist:  d.Wishlist.Items(),
		Totals:    d.Checkout.Totals().Display(),
		Notice:    notice,
		Degraded:  d.Cart.Degraded(),
	}
}

// View returns the current state without applying an intent.
func (d *Dispatcher) View() Result {
	return d.view("")
}
