package orderbook

import (
	"math/rand"
	"testing"

	orderbookv1 "github.com/openexchange-labs/matching-engine/internal/domain/orderbook/v1"
)

func BenchmarkBook_SubmitLimit(b *testing.B) {
	book := NewBook(testSymbol)
	rng := rand.New(rand.NewSource(42))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		side := orderbookv1.SideBuy
		if i%2 == 1 {
			side = orderbookv1.SideSell
		}
		price := 90.0 + float64(rng.Intn(20))
		order := limitOrder(uint64(i+1), side, price, uint64(rng.Intn(100)+1))
		book.Submit(order) //nolint:errcheck
	}
}

func BenchmarkBook_SubmitAndCancel(b *testing.B) {
	book := NewBook(testSymbol)
	rng := rand.New(rand.NewSource(42))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		id := uint64(i + 1)
		price := 50.0 + float64(rng.Intn(50))
		book.Submit(limitOrder(id, orderbookv1.SideBuy, price, 10)) //nolint:errcheck
		if i%4 == 3 {
			book.Cancel(id - uint64(rng.Intn(4)))
		}
	}
}
