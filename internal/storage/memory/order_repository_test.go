package memory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/bookorders/internal/domain"
	"github.com/vladislavdragonenkov/bookorders/internal/storage/memory"
)

func newOrder(id int64) domain.Order {
	now := time.Now().UTC()
	name := "Clean Code - Robert Martin"
	price := decimal.NewFromFloat(34.0)
	return domain.Order{
		ID:             id,
		BookISBN:       "1234567890",
		BookName:       &name,
		BookPrice:      &price,
		Quantity:       3,
		Status:         domain.OrderStatusAccepted,
		CreatedAt:      now,
		LastModifiedAt: now,
	}
}

func TestOrderRepository_InsertGet(t *testing.T) {
	repo := memory.NewOrderRepository()
	order := newOrder(1)

	if err := repo.Insert(context.Background(), order); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	stored, err := repo.Get(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.ID != order.ID {
		t.Fatalf("expected id %d, got %d", order.ID, stored.ID)
	}
	if *stored.BookName != *order.BookName {
		t.Fatalf("expected book name %q, got %q", *order.BookName, *stored.BookName)
	}
}

func TestOrderRepository_GetMissing(t *testing.T) {
	repo := memory.NewOrderRepository()

	if _, err := repo.Get(context.Background(), 404); err != domain.ErrOrderNotFound {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestOrderRepository_InsertDuplicate(t *testing.T) {
	repo := memory.NewOrderRepository()
	order := newOrder(7)
	if err := repo.Insert(context.Background(), order); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	dup := newOrder(7)
	dup.Quantity = 99
	err := repo.Insert(context.Background(), dup)
	if !domain.IsDuplicateOrderID(err) {
		t.Fatalf("expected duplicate id error, got %v", err)
	}

	stored, err := repo.Get(context.Background(), 7)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.Quantity != 3 {
		t.Fatalf("duplicate insert must not overwrite, got quantity %d", stored.Quantity)
	}
}

func TestOrderRepository_ListAllSnapshot(t *testing.T) {
	repo := memory.NewOrderRepository()
	first := newOrder(1)
	if err := repo.Insert(context.Background(), first); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	snapshot, err := repo.ListAll(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(snapshot) != 1 {
		t.Fatalf("expected 1 order, got %d", len(snapshot))
	}

	if err := repo.Insert(context.Background(), newOrder(2)); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if len(snapshot) != 1 {
		t.Fatalf("snapshot must not observe later inserts")
	}

	// Мутация снимка не должна протекать в хранилище.
	*snapshot[0].BookName = "mutated"
	stored, err := repo.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if *stored.BookName != "Clean Code - Robert Martin" {
		t.Fatalf("store shares memory with snapshot: %q", *stored.BookName)
	}

	all, err := repo.ListAll(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(all))
	}
}

func TestOrderRepository_InsertDoesNotAliasCaller(t *testing.T) {
	repo := memory.NewOrderRepository()
	order := newOrder(5)
	if err := repo.Insert(context.Background(), order); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	*order.BookName = "changed by caller"
	stored, _ := repo.Get(context.Background(), 5)
	if *stored.BookName == "changed by caller" {
		t.Fatal("stored order aliases caller memory")
	}
}

func TestOrderRepository_CanceledContext(t *testing.T) {
	repo := memory.NewOrderRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := repo.Insert(ctx, newOrder(1)); err == nil {
		t.Fatal("expected error for canceled context")
	}
	all, err := repo.ListAll(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("canceled insert must not persist, got %d orders", len(all))
	}
}

func TestOrderRepository_ConcurrentInsertAndList(t *testing.T) {
	repo := memory.NewOrderRepository()

	const n = 500
	var wg sync.WaitGroup
	for i := 1; i <= n; i++ {
		wg.Add(2)
		go func(id int64) {
			defer wg.Done()
			if err := repo.Insert(context.Background(), newOrder(id)); err != nil {
				t.Errorf("insert %d failed: %v", id, err)
			}
		}(int64(i))
		go func() {
			defer wg.Done()
			orders, err := repo.ListAll(context.Background())
			if err != nil {
				t.Errorf("list failed: %v", err)
				return
			}
			for _, o := range orders {
				if o.BookName == nil || o.BookPrice == nil {
					t.Errorf("observed partially inserted order %d", o.ID)
				}
			}
		}()
	}
	wg.Wait()

	all, err := repo.ListAll(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != n {
		t.Fatalf("expected %d orders, got %d", n, len(all))
	}
}
