package repository

// Pagination holds pagination parameters for listing entities.
type Pagination struct {
	PageNo   int
	PageSize int
}

// Normalize clamps page parameters to sane values.
func (p *Pagination) Normalize() {
	if p.PageNo < 1 {
		p.PageNo = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *Pagination) Offset() int { return (p.PageNo - 1) * p.PageSize }

// FilterOrder carries a filter expression and an order-by clause, both in the
// filterexpr syntax.
type FilterOrder struct {
	Filter  string
	OrderBy string
}

func (fo *FilterOrder) GetFilter() string { return fo.Filter }

func (fo *FilterOrder) GetOrderBy() string { return fo.OrderBy }
