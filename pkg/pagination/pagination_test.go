package pagination_test

import (
	"net/url"
	"testing"

	"causemap/pkg/pagination"
)

func testConfig(t *testing.T) pagination.Config {
	t.Helper()
	cfg := pagination.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestNormalize(t *testing.T) {
	cfg := testConfig(t)

	cases := []struct {
		name         string
		req          pagination.PageRequest
		wantPage     int
		wantPageSize int
	}{
		{"defaults applied", pagination.PageRequest{}, 1, 20},
		{"negative page", pagination.PageRequest{Page: -3, PageSize: 10}, 1, 10},
		{"oversized page size clamped", pagination.PageRequest{Page: 2, PageSize: 5000}, 2, 100},
		{"valid request untouched", pagination.PageRequest{Page: 4, PageSize: 50}, 4, 50},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.req.Normalize(cfg)
			if tc.req.Page != tc.wantPage || tc.req.PageSize != tc.wantPageSize {
				t.Errorf("Normalize() = page %d size %d, want page %d size %d",
					tc.req.Page, tc.req.PageSize, tc.wantPage, tc.wantPageSize)
			}
		})
	}
}

func TestOffset(t *testing.T) {
	req := pagination.PageRequest{Page: 3, PageSize: 25}
	if req.Offset() != 50 {
		t.Errorf("Offset() = %d, want 50", req.Offset())
	}
}

func TestPageRequestFromQuery(t *testing.T) {
	cfg := testConfig(t)

	values := url.Values{}
	values.Set("page", "2")
	values.Set("page_size", "10")
	values.Set("search", "delay")
	values.Set("sort", "-description")

	req := pagination.PageRequestFromQuery(values, cfg)

	if req.Page != 2 || req.PageSize != 10 {
		t.Errorf("req = %+v", req)
	}
	if req.Search == nil || *req.Search != "delay" {
		t.Errorf("Search = %v", req.Search)
	}
	if len(req.Sort) != 1 || !req.Sort[0].Descending {
		t.Errorf("Sort = %+v", req.Sort)
	}

	t.Run("empty query normalizes", func(t *testing.T) {
		req := pagination.PageRequestFromQuery(url.Values{}, cfg)
		if req.Page != 1 || req.PageSize != cfg.DefaultPageSize {
			t.Errorf("req = %+v", req)
		}
		if req.Search != nil {
			t.Errorf("Search = %v, want nil", req.Search)
		}
	})
}

func TestNewPageResult(t *testing.T) {
	t.Run("partial last page", func(t *testing.T) {
		result := pagination.NewPageResult([]string{"a", "b"}, 42, 1, 20)
		if result.TotalPages != 3 {
			t.Errorf("TotalPages = %d, want 3", result.TotalPages)
		}
	})

	t.Run("exact division", func(t *testing.T) {
		result := pagination.NewPageResult([]string{}, 40, 1, 20)
		if result.TotalPages != 2 {
			t.Errorf("TotalPages = %d, want 2", result.TotalPages)
		}
	})

	t.Run("empty data never nil", func(t *testing.T) {
		result := pagination.NewPageResult[string](nil, 0, 1, 20)
		if result.Data == nil {
			t.Error("Data should be an empty slice, not nil")
		}
		if result.TotalPages != 1 {
			t.Errorf("TotalPages = %d, want 1", result.TotalPages)
		}
	})
}
