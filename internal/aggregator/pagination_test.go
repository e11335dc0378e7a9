package aggregator

import "testing"

func TestPaginateEstimatesTotals(t *testing.T) {
	cases := []struct {
		name          string
		uniqueCount   int
		page          int
		pageSize      int
		wantTotal     int
		wantPages     int
		wantHasNext   bool
		wantHasPrev   bool
	}{
		{
			name:        "zero articles keeps floors",
			uniqueCount: 0, page: 1, pageSize: 20,
			wantTotal: 200, wantPages: 10,
			wantHasNext: true, wantHasPrev: false,
		},
		{
			name:        "estimate scales with unique count",
			uniqueCount: 30, page: 2, pageSize: 20,
			wantTotal: 600, wantPages: 30,
			wantHasNext: true, wantHasPrev: true,
		},
		{
			name:        "small estimate hits the floor",
			uniqueCount: 5, page: 1, pageSize: 50,
			wantTotal: 200, wantPages: 5,
			wantHasNext: true, wantHasPrev: false,
		},
		{
			name:        "page count never drops below the minimum",
			uniqueCount: 0, page: 5, pageSize: 100,
			wantTotal: 200, wantPages: 5,
			wantHasNext: false, wantHasPrev: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			info := paginate(tc.uniqueCount, tc.page, tc.pageSize)
			if info.TotalArticles != tc.wantTotal {
				t.Errorf("TotalArticles = %d, want %d", info.TotalArticles, tc.wantTotal)
			}
			if info.TotalPages != tc.wantPages {
				t.Errorf("TotalPages = %d, want %d", info.TotalPages, tc.wantPages)
			}
			if info.CurrentPage != tc.page {
				t.Errorf("CurrentPage = %d, want %d", info.CurrentPage, tc.page)
			}
			if info.PageSize != tc.pageSize {
				t.Errorf("PageSize = %d, want %d", info.PageSize, tc.pageSize)
			}
			if info.HasNextPage != tc.wantHasNext {
				t.Errorf("HasNextPage = %v, want %v", info.HasNextPage, tc.wantHasNext)
			}
			if info.HasPrevPage != tc.wantHasPrev {
				t.Errorf("HasPrevPage = %v, want %v", info.HasPrevPage, tc.wantHasPrev)
			}
		})
	}
}
