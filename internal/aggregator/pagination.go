package aggregator

import "github.com/newsblend-hq/newsblend-aggregator/internal/domain"

const (
	// Providers expose no reliable combined total, so the total article
	// count is estimated from the size of the current unique result set.
	totalEstimateFactor = 20
	totalEstimateFloor  = 200
	minTotalPages       = 5
)

// paginate derives pagination metadata for one aggregate fetch. The totals
// are a documented approximation: the estimate scales the unique result
// count with a floor, and the page count never drops below minTotalPages.
func paginate(uniqueCount, page, pageSize int) domain.PaginationInfo {
	estimated := uniqueCount * totalEstimateFactor
	if estimated < totalEstimateFloor {
		estimated = totalEstimateFloor
	}

	totalPages := (estimated + pageSize - 1) / pageSize
	if totalPages < minTotalPages {
		totalPages = minTotalPages
	}

	return domain.PaginationInfo{
		CurrentPage:   page,
		TotalPages:    totalPages,
		TotalArticles: estimated,
		PageSize:      pageSize,
		HasNextPage:   page < totalPages,
		HasPrevPage:   page > 1,
	}
}
