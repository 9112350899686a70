package ingredients

import (
	"testing"

	"github.com/pantrypal/pantrypal-api/types"
)

func catalogRows(count int) []types.Ingredient {
	rows := make([]types.Ingredient, 0, count)
	for i := 0; i < count; i++ {
		rows = append(rows, types.Ingredient{ProductID: string(rune('a' + i))})
	}
	return rows
}

func TestPaginate(t *testing.T) {
	cases := []struct {
		name   string
		limit  string
		offset string
		want   int
		first  string
	}{
		{"no params", "", "", 5, "a"},
		{"limit only", "2", "", 2, "a"},
		{"offset only", "", "3", 2, "d"},
		{"limit and offset", "1", "1", 1, "b"},
		{"offset past end", "", "9", 0, ""},
		{"limit past end", "9", "", 5, "a"},
		{"unparseable ignored", "nope", "nope", 5, "a"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := paginate(catalogRows(5), c.limit, c.offset)
			if len(got) != c.want {
				t.Fatalf("got %d rows, want %d", len(got), c.want)
			}
			if c.want > 0 && got[0].ProductID != c.first {
				t.Errorf("first row %q, want %q", got[0].ProductID, c.first)
			}
		})
	}
}
