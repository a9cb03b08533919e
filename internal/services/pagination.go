package services

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Pagination describes the slice of a collection returned by a list call.
type Pagination struct {
	CurrentPage  int `json:"currentPage"`
	TotalPages   int `json:"totalPages"`
	TotalItems   int `json:"totalItems"`
	ItemsPerPage int `json:"itemsPerPage"`
}

// PageRequest holds the page and limit query parameters of a list call.
type PageRequest struct {
	Page  int
	Limit int
}

func (p PageRequest) normalized() PageRequest {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

func paginate[T any](items []T, req PageRequest) ([]T, Pagination) {
	req = req.normalized()
	total := len(items)
	start, end := total, total
	// Compare before multiplying so a huge page cannot overflow the offset.
	if req.Page-1 < (total+req.Limit-1)/req.Limit {
		start = (req.Page - 1) * req.Limit
		end = min(start+req.Limit, total)
	}
	return items[start:end], Pagination{
		CurrentPage:  req.Page,
		TotalPages:   (total + req.Limit - 1) / req.Limit,
		TotalItems:   total,
		ItemsPerPage: req.Limit,
	}
}
