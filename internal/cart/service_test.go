package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/wingho/backend-pos/internal/catalog"
)

type fakeCatalog struct {
	products map[uuid.UUID]catalog.Product
}

func (f *fakeCatalog) Get(_ context.Context, id uuid.UUID) (catalog.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return catalog.Product{}, catalog.ErrNotFound
	}
	return p, nil
}

func newTestService(products ...catalog.Product) (*Service, *fakeCatalog) {
	resolver := &fakeCatalog{products: make(map[uuid.UUID]catalog.Product)}
	for _, p := range products {
		resolver.products[p.ID] = p
	}
	return &Service{Store: NewStore(), Catalog: resolver}, resolver
}

func TestAddWithinStock(t *testing.T) {
	belt := catalog.Product{ID: uuid.New(), Name: "布帶", Price: 3000, Stock: 3}
	svc, _ := newTestService(belt)
	c := svc.Store.Create()

	msg, err := svc.Add(context.Background(), c.ID, belt.ID, 2)
	require.NoError(t, err)
	require.Equal(t, "Added 2 x '布帶' to the cart.", msg)

	snap, err := svc.Snapshot(c.ID)
	require.NoError(t, err)
	require.Len(t, snap.Lines, 1)
	require.Equal(t, int64(6000), snap.Total)
}

func TestAddRejectsOverStockNewLine(t *testing.T) {
	belt := catalog.Product{ID: uuid.New(), Name: "布帶", Price: 3000, Stock: 3}
	svc, _ := newTestService(belt)
	c := svc.Store.Create()

	_, err := svc.Add(context.Background(), c.ID, belt.ID, 5)
	require.ErrorIs(t, err, ErrInsufficientStock)
	require.Contains(t, err.Error(), "cannot add 5 x '布帶', only 3 in stock")

	snap, err := svc.Snapshot(c.ID)
	require.NoError(t, err)
	require.True(t, snap.Empty(), "failed add must leave the cart unchanged")
}

func TestAddRejectsOverStockIncrement(t *testing.T) {
	belt := catalog.Product{ID: uuid.New(), Name: "布帶", Price: 3000, Stock: 3}
	svc, _ := newTestService(belt)
	c := svc.Store.Create()

	_, err := svc.Add(context.Background(), c.ID, belt.ID, 2)
	require.NoError(t, err)

	_, err = svc.Add(context.Background(), c.ID, belt.ID, 2)
	require.ErrorIs(t, err, ErrInsufficientStock)
	require.Contains(t, err.Error(), "cannot add 2 more x '布帶', only 1 more can be added")

	snap, err := svc.Snapshot(c.ID)
	require.NoError(t, err)
	require.Equal(t, int32(2), snap.Lines[0].Qty)
}

func TestLineCapturesPriceAtAddTime(t *testing.T) {
	belt := catalog.Product{ID: uuid.New(), Name: "布帶", Price: 3000, Stock: 10}
	svc, resolver := newTestService(belt)
	c := svc.Store.Create()

	_, err := svc.Add(context.Background(), c.ID, belt.ID, 1)
	require.NoError(t, err)

	// A later catalog edit must not reach the open line.
	belt.Price = 9900
	belt.Name = "新布帶"
	resolver.products[belt.ID] = belt

	_, err = svc.Add(context.Background(), c.ID, belt.ID, 1)
	require.NoError(t, err)

	snap, err := svc.Snapshot(c.ID)
	require.NoError(t, err)
	require.Len(t, snap.Lines, 1)
	require.Equal(t, "布帶", snap.Lines[0].Name)
	require.Equal(t, int64(3000), snap.Lines[0].Price)
	require.Equal(t, int64(6000), snap.Total)
}

func TestSnapshotKeepsAdditionOrder(t *testing.T) {
	belt := catalog.Product{ID: uuid.New(), Name: "布帶", Price: 3000, Stock: 10}
	bag := catalog.Product{ID: uuid.New(), Name: "布袋", Price: 5000, Stock: 10}
	svc, _ := newTestService(belt, bag)
	c := svc.Store.Create()

	_, err := svc.Add(context.Background(), c.ID, bag.ID, 1)
	require.NoError(t, err)
	_, err = svc.Add(context.Background(), c.ID, belt.ID, 1)
	require.NoError(t, err)
	_, err = svc.Add(context.Background(), c.ID, bag.ID, 1)
	require.NoError(t, err)

	snap, err := svc.Snapshot(c.ID)
	require.NoError(t, err)
	require.Len(t, snap.Lines, 2)
	require.Equal(t, "布袋", snap.Lines[0].Name)
	require.Equal(t, int32(2), snap.Lines[0].Qty)
	require.Equal(t, "布帶", snap.Lines[1].Name)
}

func TestAddUnknownProduct(t *testing.T) {
	svc, _ := newTestService()
	c := svc.Store.Create()

	_, err := svc.Add(context.Background(), c.ID, uuid.New(), 1)
	require.ErrorIs(t, err, ErrInvalidProduct)
}

func TestAddInvalidQty(t *testing.T) {
	belt := catalog.Product{ID: uuid.New(), Name: "布帶", Price: 3000, Stock: 3}
	svc, _ := newTestService(belt)
	c := svc.Store.Create()

	_, err := svc.Add(context.Background(), c.ID, belt.ID, 0)
	require.ErrorIs(t, err, ErrInvalidQty)
}

func TestAddUnknownCart(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Add(context.Background(), "missing", uuid.New(), 1)
	require.ErrorIs(t, err, ErrCartNotFound)
}

func TestClear(t *testing.T) {
	belt := catalog.Product{ID: uuid.New(), Name: "布帶", Price: 3000, Stock: 3}
	svc, _ := newTestService(belt)
	c := svc.Store.Create()

	_, err := svc.Add(context.Background(), c.ID, belt.ID, 1)
	require.NoError(t, err)
	require.NoError(t, svc.Clear(c.ID))

	snap, err := svc.Snapshot(c.ID)
	require.NoError(t, err)
	require.True(t, snap.Empty())
}
