package utils

type Ordering string

const (
	OrderAsc  Ordering = "asc"
	OrderDesc Ordering = "desc"
)

type Query struct {
	Limit  int
	Offset int
	Order  Ordering
}

// QueryOption adjusts one knob of a list query.
type QueryOption func(*Query)

func WithLimit(limit uint) QueryOption {
	return func(q *Query) {
		q.Limit = int(limit)
	}
}

func WithOffset(offset uint) QueryOption {
	return func(q *Query) {
		q.Offset = int(offset)
	}
}

func WithOrder(order Ordering) QueryOption {
	return func(q *Query) {
		q.Order = order
	}
}
