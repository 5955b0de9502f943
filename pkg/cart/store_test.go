package cart

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/pkg/catalog"
)

func product(id, price string) catalog.Item {
	return catalog.Item{
		ID:       id,
		Name:     "Product " + id,
		Price:    decimal.RequireFromString(price),
		Category: catalog.CategoryNoodles,
		InStock:  true,
	}
}

func lineIDs(s State) []string {
	out := make([]string, 0, len(s.Lines))
	for _, l := range s.Lines {
		out = append(out, l.Item.ID)
	}
	return out
}

func TestAddSameItemTwice(t *testing.T) {
	store := NewStore()
	a := product("A", "12.99")

	store.AddItem(a)
	state := store.AddItem(a)

	require.Len(t, state.Lines, 1)
	assert.Equal(t, 2, state.Lines[0].Quantity)
	assert.Equal(t, 2, state.ItemCount)
	assert.Equal(t, "25.98", state.Total.StringFixed(2))
}

func TestUpdateQuantityZeroRemovesLine(t *testing.T) {
	store := NewStore()
	store.AddItem(product("A", "1.00"))
	store.AddItem(product("B", "2.00"))
	store.AddItem(product("B", "2.00"))
	store.AddItem(product("B", "2.00"))

	before := store.Snapshot()
	require.Equal(t, 4, before.ItemCount)

	after := store.UpdateQuantity("B", 0)
	assert.Equal(t, []string{"A"}, lineIDs(after))
	assert.Equal(t, 1, after.ItemCount)
	assert.Equal(t, "1", after.Total.String())

	after = store.UpdateQuantity("A", -3)
	assert.True(t, after.Empty())
	assert.Zero(t, after.ItemCount)
	assert.True(t, after.Total.IsZero())
}

func TestUpdateQuantitySetsValue(t *testing.T) {
	store := NewStore()
	store.AddItem(product("A", "7.49"))

	state := store.UpdateQuantity("A", 5)
	line, ok := state.Line("A")
	require.True(t, ok)
	assert.Equal(t, 5, line.Quantity)
	assert.Equal(t, "37.45", state.Total.StringFixed(2))
}

func TestUnknownIDIsNoop(t *testing.T) {
	store := NewStore()
	store.AddItem(product("A", "3.50"))
	before := store.Snapshot()

	assert.Equal(t, before, store.UpdateQuantity("missing", 4))
	assert.Equal(t, before, store.RemoveItem("missing"))
}

func TestRemoveIsIdempotent(t *testing.T) {
	store := NewStore()
	store.AddItem(product("A", "3.50"))
	store.AddItem(product("B", "4.50"))

	once := store.RemoveItem("A")
	twice := store.RemoveItem("A")
	assert.Equal(t, once, twice)
	assert.Equal(t, []string{"B"}, lineIDs(twice))
}

func TestInsertionOrderSurvivesUpdates(t *testing.T) {
	store := NewStore()
	for _, id := range []string{"C", "A", "B"} {
		store.AddItem(product(id, "1.00"))
	}
	store.AddItem(product("A", "1.00"))
	store.UpdateQuantity("C", 9)
	state := store.RemoveItem("A")
	assert.Equal(t, []string{"C", "B"}, lineIDs(state))

	state = store.AddItem(product("A", "1.00"))
	assert.Equal(t, []string{"C", "B", "A"}, lineIDs(state))
}

func TestUnavailableItemsAreIgnored(t *testing.T) {
	store := NewStore()
	out := product("A", "2.00")
	out.InStock = false

	assert.True(t, store.AddItem(out).Empty())
	assert.True(t, store.AddItem(product("", "2.00")).Empty())
}

func TestClear(t *testing.T) {
	store := NewStore()
	store.AddItem(product("A", "2.00"))
	state := store.Clear()
	assert.True(t, state.Empty())
	assert.Zero(t, state.ItemCount)
	assert.True(t, state.Total.IsZero())
}

func TestSnapshotIsIsolated(t *testing.T) {
	store := NewStore()
	store.AddItem(product("A", "2.00"))

	snap := store.Snapshot()
	snap.Lines[0].Quantity = 99
	snap.Lines = append(snap.Lines, Line{Item: product("B", "1.00"), Quantity: 1})

	fresh := store.Snapshot()
	assert.Equal(t, []string{"A"}, lineIDs(fresh))
	assert.Equal(t, 1, fresh.Lines[0].Quantity)
}

func TestRandomSequencesKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	catalogue := []catalog.Item{
		product("1", "12.99"),
		product("2", "3.49"),
		product("3", "0.10"),
		product("4", "199.95"),
	}

	store := NewStore()
	for step := 0; step < 2000; step++ {
		item := catalogue[rng.Intn(len(catalogue))]
		var state State
		switch rng.Intn(4) {
		case 0, 1:
			state = store.AddItem(item)
		case 2:
			state = store.UpdateQuantity(item.ID, rng.Intn(6)-1)
		default:
			state = store.RemoveItem(item.ID)
		}

		seen := map[string]bool{}
		for _, line := range state.Lines {
			require.False(t, seen[line.Item.ID], "duplicate line %s at step %d", line.Item.ID, step)
			seen[line.Item.ID] = true
			require.GreaterOrEqual(t, line.Quantity, 1)
		}
		totals := Derive(state.Lines)
		require.Equal(t, totals.ItemCount, state.ItemCount)
		require.True(t, totals.Total.Equal(state.Total), "step %d: %s != %s", step, totals.Total, state.Total)
	}
}

func TestConcurrentReadersSeeConsistentState(t *testing.T) {
	store := NewStore()
	a := product("A", "1.25")

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				state := store.Snapshot()
				totals := Derive(state.Lines)
				if totals.ItemCount != state.ItemCount || !totals.Total.Equal(state.Total) {
					t.Errorf("torn snapshot: %+v", state)
					return
				}
			}
		}()
	}

	for i := 0; i < 500; i++ {
		store.AddItem(a)
		if i%7 == 0 {
			store.UpdateQuantity("A", i%3)
		}
	}
	close(stop)
	wg.Wait()
}

func TestDeductKeepsLaterAdditions(t *testing.T) {
	store := NewStore()
	store.AddItem(product("A", "3.00"))
	store.AddItem(product("A", "3.00"))
	store.AddItem(product("B", "5.00"))
	placed := store.Snapshot()

	store.AddItem(product("A", "3.00"))
	store.AddItem(product("C", "1.50"))

	state := store.Deduct(placed.Lines)
	assert.Equal(t, []string{"A", "C"}, lineIDs(state))
	line, ok := state.Line("A")
	require.True(t, ok)
	assert.Equal(t, 1, line.Quantity)
	assert.Equal(t, 2, state.ItemCount)
	assert.Equal(t, "4.50", state.Total.StringFixed(2))
}

func TestDeductDropsLinesLoweredSinceSnapshot(t *testing.T) {
	store := NewStore()
	store.AddItem(product("A", "3.00"))
	store.AddItem(product("A", "3.00"))
	placed := store.Snapshot()

	store.UpdateQuantity("A", 1)
	state := store.Deduct(placed.Lines)
	assert.True(t, state.Empty())
	assert.True(t, state.Total.IsZero())
}
