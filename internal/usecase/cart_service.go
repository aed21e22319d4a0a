package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/medilens/backend/internal/domain"
)

// Cart quantity bounds
const (
	MinCartQuantity = 1
	MaxCartQuantity = 10
)

// CartService adds resolved products to a session cart
type CartService struct {
	catalog  domain.ProductCatalog
	observer domain.AnalysisObserver
	logger   *zap.Logger
}

// NewCartService creates a cart integrator over the product catalog
func NewCartService(catalog domain.ProductCatalog, observer domain.AnalysisObserver, logger *zap.Logger) *CartService {
	if observer == nil {
		observer = noopObserver{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartService{
		catalog:  catalog,
		observer: observer,
		logger:   logger,
	}
}

// AddToCart looks up productID, clamps quantity to [1, 10] and adds the
// product to the cart, incrementing an existing line with the same name.
// A product that has disappeared from the catalog leaves the cart untouched
// and yields a *domain.UserError wrapping ErrProductNotFound. When the cart
// cannot be persisted the addition is withdrawn again.
func (s *CartService) AddToCart(ctx context.Context, productID string, quantity int, cart domain.Cart) error {
	if productID == "" {
		return fmt.Errorf("%w: product id is required", domain.ErrInvalidRequest)
	}

	product, err := s.catalog.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			s.observer.ObserveCartAdd("not_found")
			s.logger.Warn("cart add for unknown product", zap.String("product_id", productID))
			return &domain.UserError{Message: "This product is no longer available", Err: err}
		}
		s.observer.ObserveCartAdd("error")
		return fmt.Errorf("lookup product %s: %w", productID, err)
	}

	qty := ClampQuantity(quantity)
	cart.AddOrIncrement(product.Name, product.Price, product.Image, qty)

	if err := cart.Persist(ctx); err != nil {
		cart.Withdraw(product.Name, qty)
		s.observer.ObserveCartAdd("error")
		return fmt.Errorf("%w: %v", domain.ErrCartPersist, err)
	}

	s.observer.ObserveCartAdd("added")
	s.logger.Debug("added to cart",
		zap.String("product_id", product.ID),
		zap.Int("quantity", qty),
		zap.Int("badge", cart.BadgeCount()),
	)
	return nil
}

// ClampQuantity bounds a requested quantity to [MinCartQuantity, MaxCartQuantity]
func ClampQuantity(quantity int) int {
	return max(MinCartQuantity, min(quantity, MaxCartQuantity))
}
