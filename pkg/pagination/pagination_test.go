package pagination

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func contextWithQuery(query string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/"+query, nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestFromContext(t *testing.T) {
	tests := []struct {
		query  string
		limit  int
		offset int
	}{
		{"", DefaultLimit, 0},
		{"?limit=10&offset=30", 10, 30},
		{"?limit=500", MaxLimit, 0},
		{"?limit=-1&offset=-5", DefaultLimit, 0},
		{"?limit=abc&offset=xyz", DefaultLimit, 0},
	}
	for _, tt := range tests {
		p := FromContext(contextWithQuery(tt.query))
		if p.Limit != tt.limit || p.Offset != tt.offset {
			t.Errorf("%q: got limit=%d offset=%d, want %d/%d", tt.query, p.Limit, p.Offset, tt.limit, tt.offset)
		}
	}
}

func TestNewResponse(t *testing.T) {
	r := NewResponse([]string{"a", "b"}, 5, 2, 0)
	if r.Total != 5 || r.Limit != 2 || r.Offset != 0 {
		t.Errorf("unexpected response %+v", r)
	}
	if !r.HasMore {
		t.Error("expected has_more on the first of three pages")
	}
	if NewResponse(nil, 5, 2, 4).HasMore {
		t.Error("expected no more on the last page")
	}
}

func TestResponse_WithLinks(t *testing.T) {
	base := "/api/v1/subjects/x/snapshots"

	first := NewResponse(nil, 25, 10, 0).WithLinks(base)
	if first.Next != base+"?limit=10&offset=10" || first.Previous != "" {
		t.Errorf("first page links: next=%q previous=%q", first.Next, first.Previous)
	}

	middle := NewResponse(nil, 25, 10, 10).WithLinks(base)
	if middle.Next != base+"?limit=10&offset=20" || middle.Previous != base+"?limit=10&offset=0" {
		t.Errorf("middle page links: next=%q previous=%q", middle.Next, middle.Previous)
	}

	last := NewResponse(nil, 25, 10, 20).WithLinks(base)
	if last.Next != "" || last.Previous != base+"?limit=10&offset=10" {
		t.Errorf("last page links: next=%q previous=%q", last.Next, last.Previous)
	}

	empty := NewResponse(nil, 0, 10, 0).WithLinks(base)
	if empty.Next != "" || empty.Previous != "" {
		t.Error("empty result should have no links")
	}
}

func TestResponse_JSONOmitsEmptyLinks(t *testing.T) {
	data, _ := json.Marshal(NewResponse([]int{}, 0, 20, 0))
	var m map[string]interface{}
	json.Unmarshal(data, &m)
	if _, ok := m["next"]; ok {
		t.Error("next should be omitted")
	}
	if _, ok := m["has_more"]; !ok {
		t.Error("has_more should always be present")
	}
}

func TestParams_Offsets(t *testing.T) {
	p := Params{Limit: 10, Offset: 5}
	if p.NextOffset() != 15 {
		t.Errorf("expected 15, got %d", p.NextOffset())
	}
	if p.PreviousOffset() != 0 {
		t.Errorf("expected previous offset floored at 0, got %d", p.PreviousOffset())
	}
	if !p.HasPrevious() || !p.HasNext(16) || p.HasNext(15) {
		t.Error("unexpected HasNext/HasPrevious")
	}
}
