package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/checkout"
)

func TestPatch_ApplyKeepsUntouchedFields(t *testing.T) {
	now := time.Unix(100, 0)
	s := State{Flow: CategoryMenu{}, Topic: "productos", SelectedCategory: "Cake"}

	got := Patch{Topic: Str("saludo")}.Apply(s, now)
	require.Equal(t, CategoryMenu{}, got.Flow)
	require.Equal(t, "saludo", got.Topic)
	require.Equal(t, "Cake", got.SelectedCategory)
	require.Equal(t, now, got.UpdatedAt)

	got = Patch{Flow: Idle{}, SelectedCategory: Str("")}.Apply(got, now)
	require.Equal(t, Idle{}, got.Flow)
	require.Equal(t, "saludo", got.Topic)
	require.Empty(t, got.SelectedCategory)
}

func TestMemoryStore_GetMissingIsIdle(t *testing.T) {
	st, err := NewMemoryStore().Get(context.Background(), "nobody")
	require.NoError(t, err)
	require.Equal(t, KindIdle, st.CurrentFlow().Kind())
}

func TestMemoryStore_UpdateMerges(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Update(ctx, "u1", Patch{Flow: CategoryMenu{}, SelectedCategory: Str("Cake")})
	require.NoError(t, err)
	st, err := s.Update(ctx, "u1", Patch{Topic: Str("productos")})
	require.NoError(t, err)

	require.Equal(t, KindCategoryMenu, st.Flow.Kind())
	require.Equal(t, "Cake", st.SelectedCategory)

	other, err := s.Get(ctx, "u2")
	require.NoError(t, err)
	require.Empty(t, other.SelectedCategory)

	require.NoError(t, s.Delete(ctx, "u1"))
	st, err = s.Get(ctx, "u1")
	require.NoError(t, err)
	require.Empty(t, st.SelectedCategory)
}

func TestMemoryStore_IdleTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1000, 0)
	s := NewMemoryStore(WithIdleTTL(time.Minute), WithMemoryClock(func() time.Time { return now }))

	_, err := s.Update(ctx, "u1", Patch{Flow: Checkout{State: checkout.State{Stage: checkout.StageCustomerData}}})
	require.NoError(t, err)

	now = now.Add(30 * time.Second)
	st, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, KindCheckout, st.Flow.Kind())

	now = now.Add(2 * time.Minute)
	st, err = s.Get(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, KindIdle, st.CurrentFlow().Kind())
	require.Equal(t, 1, s.Sweep())
}

func TestMemoryStore_ConcurrentUsers(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("user-%d", i)
			for j := 0; j < 20; j++ {
				if _, err := s.Update(ctx, id, Patch{SelectedCategory: Str(id)}); err != nil {
					t.Error(err)
				}
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < 50; i++ {
		id := fmt.Sprintf("user-%d", i)
		st, err := s.Get(ctx, id)
		require.NoError(t, err)
		require.Equal(t, id, st.SelectedCategory)
	}
}

func allFlows() []Flow {
	return []Flow{
		Idle{},
		CategoryMenu{},
		AwaitingQuantity{Product: catalog.Selection{Name: "Frasco de 500 ml", Price: decimal.RequireFromString("6.5"), Category: "Miel de Abeja"}},
		ProductAdded{},
		Checkout{State: checkout.State{Stage: checkout.StageConfirmation, Customer: &checkout.Customer{Name: "Ana", Phone: "0991234567", Valid: true}}},
		OrderCompleted{OrderID: "MON-260101-0001"},
		OrderCancelled{},
	}
}
