package order

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"plugdrop/internal/domain"
	productrepo "plugdrop/internal/repository/product"
)

func seedProduct(t *testing.T, products *productrepo.Memory, stock int) *domain.Product {
	t.Helper()
	p, err := products.Create(context.Background(), domain.Product{Name: "Green", PriceCents: 700, Stock: stock})
	if err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p
}

func openOrder(id, customerID string, lines []domain.OrderLine) *domain.Order {
	var subtotal int64
	for _, l := range lines {
		subtotal += l.UnitPriceCents * int64(l.Quantity)
	}
	return &domain.Order{
		ID:              id,
		CustomerID:      customerID,
		Lines:           lines,
		Payment:         domain.PayCash,
		SubtotalCents:   subtotal,
		FinalPriceCents: subtotal,
		Status:          domain.StatusOpen,
		CreatedAt:       time.Now().UTC(),
	}
}

func TestCreateReservesStockAtomically(t *testing.T) {
	products := productrepo.NewMemory()
	store := NewMemory(products)
	ctx := context.Background()
	a := seedProduct(t, products, 5)
	b, err := products.Create(ctx, domain.Product{Name: "White", PriceCents: 8000, Stock: 1})
	if err != nil {
		t.Fatalf("seed product: %v", err)
	}

	// Second line over-asks, so the first line must not be decremented.
	var conflict domain.StockConflictError
	err = store.Create(ctx, openOrder("o-1", "cust-1", []domain.OrderLine{
		{ProductID: a.ID, UnitPriceCents: 700, Quantity: 2},
		{ProductID: b.ID, UnitPriceCents: 8000, Quantity: 3},
	}))
	if !errors.As(err, &conflict) {
		t.Fatalf("got %v, want StockConflictError", err)
	}
	got, _ := products.GetByID(ctx, a.ID)
	if got.Stock != 5 {
		t.Errorf("stock = %d, want 5 untouched", got.Stock)
	}
	if _, err := store.GetByID(ctx, "o-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("failed order should not persist, got %v", err)
	}

	if err := store.Create(ctx, openOrder("o-2", "cust-1", []domain.OrderLine{
		{ProductID: a.ID, UnitPriceCents: 700, Quantity: 2},
		{ProductID: b.ID, UnitPriceCents: 8000, Quantity: 1},
	})); err != nil {
		t.Fatalf("create: %v", err)
	}
	got, _ = products.GetByID(ctx, a.ID)
	if got.Stock != 3 {
		t.Errorf("stock = %d, want 3 after reservation", got.Stock)
	}
}

func TestConcurrentCheckoutOfLastUnit(t *testing.T) {
	products := productrepo.NewMemory()
	store := NewMemory(products)
	ctx := context.Background()
	p := seedProduct(t, products, 1)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = store.Create(ctx, openOrder(
				"o-"+string(rune('a'+i)), "cust-1",
				[]domain.OrderLine{{ProductID: p.ID, UnitPriceCents: 700, Quantity: 1}},
			))
		}(i)
	}
	wg.Wait()

	var wins, conflicts int
	for _, err := range errs {
		var conflict domain.StockConflictError
		switch {
		case err == nil:
			wins++
		case errors.As(err, &conflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || conflicts != attempts-1 {
		t.Errorf("wins = %d conflicts = %d, want exactly one winner", wins, conflicts)
	}
	got, _ := products.GetByID(ctx, p.ID)
	if got.Stock != 0 {
		t.Errorf("stock = %d, want 0", got.Stock)
	}
}

func TestUpdateStatusIsConditional(t *testing.T) {
	products := productrepo.NewMemory()
	store := NewMemory(products)
	ctx := context.Background()
	p := seedProduct(t, products, 5)

	o := openOrder("o-1", "cust-1", []domain.OrderLine{{ProductID: p.ID, UnitPriceCents: 700, Quantity: 1}})
	if err := store.Create(ctx, o); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := store.UpdateStatus(ctx, o.ID, domain.StatusOpen, domain.StatusAccepted, "cour-1"); err != nil {
		t.Fatalf("accept: %v", err)
	}
	got, _ := store.GetByID(ctx, o.ID)
	if got.Status != domain.StatusAccepted || got.CourierID != "cour-1" {
		t.Errorf("order = %s/%s, want accepted by cour-1", got.Status, got.CourierID)
	}

	// A second conditional accept sees stale `from` and fails.
	var verr domain.ValidationError
	if err := store.UpdateStatus(ctx, o.ID, domain.StatusOpen, domain.StatusAccepted, "cour-2"); !errors.As(err, &verr) {
		t.Errorf("stale accept: got %v, want ValidationError", err)
	}
	got, _ = store.GetByID(ctx, o.ID)
	if got.CourierID != "cour-1" {
		t.Errorf("courier = %s, want cour-1 kept", got.CourierID)
	}

	// Empty courierID keeps the assignment.
	if err := store.UpdateStatus(ctx, o.ID, domain.StatusAccepted, domain.StatusEnRoute, ""); err != nil {
		t.Fatalf("advance: %v", err)
	}
	got, _ = store.GetByID(ctx, o.ID)
	if got.CourierID != "cour-1" {
		t.Errorf("courier = %s, want cour-1 after advance", got.CourierID)
	}

	if err := store.UpdateStatus(ctx, "missing", domain.StatusOpen, domain.StatusAccepted, ""); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing order: got %v, want ErrNotFound", err)
	}
}

func TestCancelReleasesStockOnlyWhileOpen(t *testing.T) {
	products := productrepo.NewMemory()
	store := NewMemory(products)
	ctx := context.Background()
	p := seedProduct(t, products, 5)

	o := openOrder("o-1", "cust-1", []domain.OrderLine{{ProductID: p.ID, UnitPriceCents: 700, Quantity: 3}})
	if err := store.Create(ctx, o); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Cancel(ctx, o.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	got, _ := products.GetByID(ctx, p.ID)
	if got.Stock != 5 {
		t.Errorf("stock = %d, want 5 restored", got.Stock)
	}

	// Cancelling twice fails; stock is not released twice.
	var verr domain.ValidationError
	if err := store.Cancel(ctx, o.ID); !errors.As(err, &verr) {
		t.Errorf("double cancel: got %v, want ValidationError", err)
	}
	got, _ = products.GetByID(ctx, p.ID)
	if got.Stock != 5 {
		t.Errorf("stock = %d after double cancel, want 5", got.Stock)
	}
}

func TestCancelSkipsDeletedProducts(t *testing.T) {
	products := productrepo.NewMemory()
	store := NewMemory(products)
	ctx := context.Background()
	p := seedProduct(t, products, 5)

	o := openOrder("o-1", "cust-1", []domain.OrderLine{{ProductID: p.ID, UnitPriceCents: 700, Quantity: 2}})
	if err := store.Create(ctx, o); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := products.Delete(ctx, p.ID); err != nil {
		t.Fatalf("delete product: %v", err)
	}
	if err := store.Cancel(ctx, o.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
}

func TestAppendMessageGuardsTerminalOrders(t *testing.T) {
	products := productrepo.NewMemory()
	store := NewMemory(products)
	ctx := context.Background()
	p := seedProduct(t, products, 5)

	o := openOrder("o-1", "cust-1", []domain.OrderLine{{ProductID: p.ID, UnitPriceCents: 700, Quantity: 1}})
	if err := store.Create(ctx, o); err != nil {
		t.Fatalf("create: %v", err)
	}

	msg := domain.ChatMessage{SenderID: "cust-1", SenderRole: domain.RoleCustomer, Text: "hi", SentAt: time.Now().UTC()}
	if err := store.AppendMessage(ctx, o.ID, msg); err != nil {
		t.Fatalf("append: %v", err)
	}
	got, _ := store.GetByID(ctx, o.ID)
	if len(got.Chat) != 1 || got.Chat[0].Text != "hi" {
		t.Errorf("chat = %+v, want the appended message", got.Chat)
	}

	if err := store.Cancel(ctx, o.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	var verr domain.ValidationError
	if err := store.AppendMessage(ctx, o.ID, msg); !errors.As(err, &verr) {
		t.Errorf("append to cancelled order: got %v, want ValidationError", err)
	}
}

func TestListFilters(t *testing.T) {
	products := productrepo.NewMemory()
	store := NewMemory(products)
	ctx := context.Background()
	p := seedProduct(t, products, 20)

	line := []domain.OrderLine{{ProductID: p.ID, UnitPriceCents: 700, Quantity: 1}}
	for _, o := range []*domain.Order{
		openOrder("o-1", "cust-1", line),
		openOrder("o-2", "cust-1", line),
		openOrder("o-3", "cust-2", line),
	} {
		if err := store.Create(ctx, o); err != nil {
			t.Fatalf("create %s: %v", o.ID, err)
		}
	}
	if err := store.UpdateStatus(ctx, "o-2", domain.StatusOpen, domain.StatusAccepted, "cour-1"); err != nil {
		t.Fatalf("accept: %v", err)
	}

	byCustomer, _ := store.List(ctx, Filter{CustomerID: "cust-1"})
	if len(byCustomer) != 2 {
		t.Errorf("customer filter returned %d, want 2", len(byCustomer))
	}
	byCourier, _ := store.List(ctx, Filter{CourierID: "cour-1"})
	if len(byCourier) != 1 || byCourier[0].ID != "o-2" {
		t.Errorf("courier filter = %+v, want only o-2", byCourier)
	}
	open, _ := store.List(ctx, Filter{Status: domain.StatusOpen})
	if len(open) != 2 {
		t.Errorf("status filter returned %d, want 2", len(open))
	}
	all, _ := store.List(ctx, Filter{})
	if len(all) != 3 {
		t.Errorf("unfiltered list returned %d, want 3", len(all))
	}
}

func TestDeleteDoesNotReleaseStock(t *testing.T) {
	products := productrepo.NewMemory()
	store := NewMemory(products)
	ctx := context.Background()
	p := seedProduct(t, products, 5)

	o := openOrder("o-1", "cust-1", []domain.OrderLine{{ProductID: p.ID, UnitPriceCents: 700, Quantity: 2}})
	if err := store.Create(ctx, o); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Delete(ctx, o.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, _ := products.GetByID(ctx, p.ID)
	if got.Stock != 3 {
		t.Errorf("stock = %d, want 3 (purge keeps the reservation)", got.Stock)
	}
	if err := store.Delete(ctx, o.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("double delete: got %v, want ErrNotFound", err)
	}
}

func TestReadsHandOutCopies(t *testing.T) {
	products := productrepo.NewMemory()
	store := NewMemory(products)
	ctx := context.Background()
	p := seedProduct(t, products, 5)

	o := openOrder("o-1", "cust-1", []domain.OrderLine{{ProductID: p.ID, UnitPriceCents: 700, Quantity: 1}})
	o.Meetup = &domain.MeetupPoint{Lat: 54.68, Lng: 25.28}
	if err := store.Create(ctx, o); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, _ := store.GetByID(ctx, o.ID)
	got.Lines[0].Quantity = 99
	got.Meetup.Lat = 0

	again, _ := store.GetByID(ctx, o.ID)
	if again.Lines[0].Quantity != 1 {
		t.Error("mutating a returned order leaked into the store")
	}
	if again.Meetup.Lat != 54.68 {
		t.Error("mutating a returned meetup leaked into the store")
	}
}
