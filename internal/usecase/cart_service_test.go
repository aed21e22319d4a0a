package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medilens/backend/internal/domain"
	"github.com/medilens/backend/internal/infrastructure/cart"
	"github.com/medilens/backend/internal/infrastructure/catalog"
)

func TestCartService_AddToCart(t *testing.T) {
	ctx := context.Background()
	products := catalog.NewMemoryCatalog(catalog.DemoProducts())

	newCart := func(t *testing.T, store domain.CartStore) *cart.SessionCart {
		t.Helper()
		c, err := cart.Load(ctx, "session-1", store)
		require.NoError(t, err)
		return c
	}

	t.Run("adds product and persists", func(t *testing.T) {
		store := cart.NewMemoryStore()
		sessionCart := newCart(t, store)
		observer := &recordingObserver{}
		svc := NewCartService(products, observer, nil)

		require.NoError(t, svc.AddToCart(ctx, "p-1001", 2, sessionCart))

		assert.Equal(t, []domain.CartLine{{
			Name:     "Dolo 650mg Tablet 15",
			Price:    30.91,
			Image:    "/images/dolo-650.png",
			Quantity: 2,
		}}, sessionCart.Lines())
		assert.Equal(t, 2, sessionCart.BadgeCount())

		stored, err := store.Load(ctx, "session-1")
		require.NoError(t, err)
		assert.Equal(t, sessionCart.Lines(), stored)
		assert.Equal(t, []string{"added"}, observer.cartAdds)
	})

	t.Run("same product twice sums quantities", func(t *testing.T) {
		store := cart.NewMemoryStore()
		sessionCart := newCart(t, store)
		svc := NewCartService(products, nil, nil)

		require.NoError(t, svc.AddToCart(ctx, "p-1009", 1, sessionCart))
		require.NoError(t, svc.AddToCart(ctx, "p-1009", 1, sessionCart))

		lines := sessionCart.Lines()
		require.Len(t, lines, 1)
		assert.Equal(t, 2, lines[0].Quantity)

		stored, err := store.Load(ctx, "session-1")
		require.NoError(t, err)
		require.Len(t, stored, 1)
		assert.Equal(t, 2, stored[0].Quantity)
	})

	t.Run("quantity is clamped", func(t *testing.T) {
		sessionCart := newCart(t, cart.NewMemoryStore())
		svc := NewCartService(products, nil, nil)

		require.NoError(t, svc.AddToCart(ctx, "p-1010", 50, sessionCart))
		require.NoError(t, svc.AddToCart(ctx, "p-1011", 0, sessionCart))

		lines := sessionCart.Lines()
		require.Len(t, lines, 2)
		assert.Equal(t, MaxCartQuantity, lines[0].Quantity)
		assert.Equal(t, MinCartQuantity, lines[1].Quantity)
	})

	t.Run("vanished product leaves cart untouched", func(t *testing.T) {
		sessionCart := newCart(t, cart.NewMemoryStore())
		observer := &recordingObserver{}
		svc := NewCartService(products, observer, nil)

		err := svc.AddToCart(ctx, "p-9999", 1, sessionCart)

		var userErr *domain.UserError
		require.True(t, errors.As(err, &userErr))
		assert.Equal(t, "This product is no longer available", userErr.Message)
		assert.ErrorIs(t, err, domain.ErrProductNotFound)
		assert.Empty(t, sessionCart.Lines())
		assert.Equal(t, []string{"not_found"}, observer.cartAdds)
	})

	t.Run("empty product id is invalid", func(t *testing.T) {
		sessionCart := newCart(t, cart.NewMemoryStore())
		svc := NewCartService(products, nil, nil)

		err := svc.AddToCart(ctx, "", 1, sessionCart)
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})

	t.Run("catalog failure is not a user error", func(t *testing.T) {
		sessionCart := newCart(t, cart.NewMemoryStore())
		svc := NewCartService(&stubCatalog{err: domain.ErrCatalogFailure}, nil, nil)

		err := svc.AddToCart(ctx, "p-1001", 1, sessionCart)

		var userErr *domain.UserError
		assert.False(t, errors.As(err, &userErr))
		assert.ErrorIs(t, err, domain.ErrCatalogFailure)
	})

	t.Run("persist failure is reported", func(t *testing.T) {
		sessionCart := newCart(t, failingStore{err: errors.New("disk full")})
		svc := NewCartService(products, nil, nil)

		err := svc.AddToCart(ctx, "p-1001", 1, sessionCart)
		assert.ErrorIs(t, err, domain.ErrCartPersist)
	})

	t.Run("persist failure leaves the cart unchanged", func(t *testing.T) {
		sessionCart := newCart(t, failingStore{err: errors.New("disk full")})
		svc := NewCartService(products, nil, nil)

		for range 2 {
			err := svc.AddToCart(ctx, "p-1001", 1, sessionCart)
			assert.ErrorIs(t, err, domain.ErrCartPersist)
		}

		assert.Equal(t, 0, sessionCart.BadgeCount())
		assert.Empty(t, sessionCart.Lines())
	})
}

func TestClampQuantity(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{-5, 1},
		{0, 1},
		{1, 1},
		{7, 7},
		{10, 10},
		{11, 10},
	}

	for _, tt := range tests {
		if got := ClampQuantity(tt.in); got != tt.want {
			t.Errorf("ClampQuantity(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
