package orderbookv1

// PriceLevel is the point-in-time view of one price level: the price and the
// aggregate remaining quantity across its resting orders.
type PriceLevel struct {
	Price    float64 `json:"price"`
	Quantity uint64  `json:"quantity"`
}

// Level is a FIFO queue of resting orders sharing one price, linked through
// arena handles. The aggregate remaining quantity is maintained
// incrementally, never recomputed by scanning the queue.
type Level struct {
	price    float64
	head     Handle
	tail     Handle
	totalQty uint64
	count    int
}

// NewLevel creates an empty level at the given price.
func NewLevel(price float64) *Level {
	return &Level{
		price: price,
		head:  NilHandle,
		tail:  NilHandle,
	}
}

// Price returns the price shared by every order in this level.
func (l *Level) Price() float64 {
	return l.price
}

// Append adds the order node to the tail of the queue and credits its
// remaining quantity to the aggregate.
func (l *Level) Append(a *Arena, h Handle) {
	a.setLinks(h, l.tail, NilHandle)
	if l.tail != NilHandle {
		a.setNext(l.tail, h)
	}
	l.tail = h
	if l.head == NilHandle {
		l.head = h
	}
	l.totalQty += a.Order(h).Remaining()
	l.count++
}

// Remove detaches the node from the queue in O(1) and debits the quantity it
// was still owed. The node must be a member of this exact level.
func (l *Level) Remove(a *Arena, h Handle) {
	l.totalQty -= a.Order(h).Remaining()
	l.count--

	prev, next := a.Prev(h), a.Next(h)
	if prev != NilHandle {
		a.setNext(prev, next)
	} else {
		l.head = next
	}
	if next != NilHandle {
		a.setPrev(next, prev)
	} else {
		l.tail = prev
	}
	a.setLinks(h, NilHandle, NilHandle)
}

// Reduce debits quantity filled against a resting member so the aggregate
// tracks remaining quantity between fills.
func (l *Level) Reduce(quantity uint64) {
	l.totalQty -= quantity
}

// Front returns the handle of the oldest resting order, or NilHandle.
func (l *Level) Front() Handle {
	return l.head
}

// IsEmpty checks if the level has no orders.
func (l *Level) IsEmpty() bool {
	return l.head == NilHandle
}

// TotalQuantity returns the aggregate remaining quantity at this level.
func (l *Level) TotalQuantity() uint64 {
	return l.totalQty
}

// OrderCount returns the number of resting orders at this level.
func (l *Level) OrderCount() int {
	return l.count
}

// View returns the point-in-time view of the level.
func (l *Level) View() PriceLevel {
	return PriceLevel{Price: l.price, Quantity: l.totalQty}
}
