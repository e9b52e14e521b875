package orderbookv1

// Handle addresses an order node inside an Arena. Handles stay valid until
// the node is released, so they can be stored in indexes and level queues
// without pinning pointers into a growing slice.
type Handle int32

// NilHandle is the zero value for links that point at nothing.
const NilHandle Handle = -1

type orderNode struct {
	order Order
	prev  Handle
	next  Handle
}

// Arena owns the storage for every resting order node. Released nodes are
// kept on a free list and reused by the next allocation.
type Arena struct {
	nodes []orderNode
	free  []Handle
}

// NewArena creates an arena with room for capacity orders before growing.
func NewArena(capacity int) *Arena {
	return &Arena{
		nodes: make([]orderNode, 0, capacity),
	}
}

// Alloc stores the order in a fresh node and returns its handle.
func (a *Arena) Alloc(order Order) Handle {
	if n := len(a.free); n > 0 {
		h := a.free[n-1]
		a.free = a.free[:n-1]
		a.nodes[h] = orderNode{order: order, prev: NilHandle, next: NilHandle}
		return h
	}

	a.nodes = append(a.nodes, orderNode{order: order, prev: NilHandle, next: NilHandle})
	return Handle(len(a.nodes) - 1)
}

// Release returns the node to the free list. The handle must not be used
// afterwards.
func (a *Arena) Release(h Handle) {
	a.nodes[h] = orderNode{prev: NilHandle, next: NilHandle}
	a.free = append(a.free, h)
}

// Order returns the order stored at h. The pointer stays valid until the
// arena grows or the handle is released.
func (a *Arena) Order(h Handle) *Order {
	return &a.nodes[h].order
}

// Next returns the handle following h in its level queue.
func (a *Arena) Next(h Handle) Handle {
	return a.nodes[h].next
}

// Prev returns the handle preceding h in its level queue.
func (a *Arena) Prev(h Handle) Handle {
	return a.nodes[h].prev
}

// Len returns the number of live nodes.
func (a *Arena) Len() int {
	return len(a.nodes) - len(a.free)
}

func (a *Arena) setLinks(h, prev, next Handle) {
	a.nodes[h].prev = prev
	a.nodes[h].next = next
}

func (a *Arena) setNext(h, next Handle) {
	a.nodes[h].next = next
}

func (a *Arena) setPrev(h, prev Handle) {
	a.nodes[h].prev = prev
}
