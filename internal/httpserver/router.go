package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/abdelaziz-sekouti/beauty-ecom/internal/middleware/adminguard"
)

type Deps struct {
	Catalog  *CatalogHTTP
	Shop     *ShopHTTP
	Checkout *CheckoutHTTP
	Admin    *AdminHTTP
	Guard    *adminguard.Guard
	CSRF     echo.MiddlewareFunc
	Ready    func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
			}
		}
		return c.NoContent(http.StatusOK)
	})

	cat := e.Group("/catalog")
	cat.GET("/products", d.Catalog.ListProducts)
	cat.GET("/products/:id", d.Catalog.GetProduct)
	cat.GET("/search", d.Catalog.Search)

	cart := e.Group("/cart")
	cart.GET("", d.Shop.GetCart)
	cart.POST("/items", d.Shop.AddToCart)
	cart.PATCH("/items/:id", d.Shop.ChangeQuantity)
	cart.DELETE("/items/:id", d.Shop.RemoveFromCart)
	cart.DELETE("", d.Shop.ClearCart)

	wl := e.Group("/wishlist")
	wl.GET("", d.Shop.GetWishlist)
	wl.POST("/:id/toggle", d.Shop.ToggleWishlist)

	co := e.Group("/checkout")
	co.GET("", d.Checkout.Get)
	co.POST("", d.Checkout.Start)
	co.PUT("/contact", d.Checkout.SetContact)
	co.PUT("/shipping", d.Checkout.SetShipping)
	co.PUT("/payment", d.Checkout.SetPayment)
	co.POST("/advance", d.Checkout.Advance)
	co.POST("/retreat", d.Checkout.Retreat)
	co.POST("/promo", d.Shop.ApplyPromo)
	co.POST("/place", d.Checkout.Place)

	e.POST("/admin/login", d.Admin.Login)
	e.POST("/admin/logout", d.Admin.Logout)

	adm := e.Group("/admin")
	adm.Use(d.Guard.RequireAdmin)
	if d.CSRF != nil {
		adm.Use(d.CSRF)
	}
	adm.GET("/products", d.Admin.ListProducts)
	adm.POST("/products", d.Admin.CreateProduct)
	adm.PUT("/products/:id", d.Admin.UpdateProduct)
	adm.DELETE("/products/:id", d.Admin.DeleteProduct)
	adm.GET("/orders", d.Admin.ListOrders)
	adm.PATCH("/orders/:id", d.Admin.UpdateOrder)
	adm.GET("/customers", d.Admin.SearchCustomers)
	adm.GET("/stats", d.Admin.Stats)
	adm.GET("/settings", d.Admin.GetSettings)
	adm.PUT("/settings", d.Admin.SaveSettings)
}
