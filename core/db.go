package core

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// Paging is a page/limit pair bound from list query params.
type Paging struct {
	Page  int `query:"page"`
	Limit int `query:"limit"`
}

func (p *Paging) Clean() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 || p.Limit > MaxPageLimit {
		p.Limit = DefaultPageLimit
	}
}

func (p Paging) Offset() int { return (p.Page - 1) * p.Limit }

// Pages returns the total page count for `total` records.
func (p Paging) Pages(total int) int {
	if p.Limit == 0 {
		return 0
	}
	pages := total / p.Limit
	if total%p.Limit > 0 {
		pages++
	}
	return pages
}
