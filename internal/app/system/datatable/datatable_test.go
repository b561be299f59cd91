package datatable

import (
	"html/template"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type person struct {
	ID      int      `json:"id"`
	Name    string   `json:"name"`
	Teacher *teacher `json:"teacher,omitempty"`
	Active  bool     `json:"active"`
}

type teacher struct {
	Name string `json:"name"`
}

func TestResolve(t *testing.T) {
	row := person{ID: 7, Name: "Ada <b>", Teacher: &teacher{Name: "Grace"}, Active: true}

	tests := []struct {
		path string
		want string
	}{
		{"id", "7"},
		{"name", "Ada <b>"},
		{"teacher.name", "Grace"},
		{"active", "true"},
		{"missing", ""},
		{"teacher.missing.deeper", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, Value(row, tt.path))
		})
	}

	assert.Equal(t, "", Value(person{ID: 1}, "teacher.name"), "nil nested struct resolves empty")
}

func TestResolve_KeysWithPunctuation(t *testing.T) {
	doc := map[string]any{"first-name": "Lin", "meta": map[string]any{"sign up": "2024"}}
	assert.Equal(t, "Lin", Resolve(doc, "first-name"))
	assert.Equal(t, "2024", Resolve(doc, "meta.sign up"))
}

func TestView_PageURL(t *testing.T) {
	v := View{Path: "/admin/users", Query: url.Values{"q": {"ada"}, "page": {"9"}}}

	got := v.PageURL(3)
	assert.True(t, strings.HasPrefix(got, "/admin/users?"))
	u, err := url.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, "3", u.Query().Get("page"))
	assert.Equal(t, "ada", u.Query().Get("q"))

	assert.Equal(t, []string{"9"}, v.Query["page"], "PageURL must not mutate the view query")
}

func people(n int) []person {
	out := make([]person, n)
	for i := range out {
		out[i] = person{ID: i + 1, Name: "p" + string(rune('a'+i%26))}
	}
	return out
}

func TestClient_SlicesCurrentPage(t *testing.T) {
	c := Client[person]{
		Columns:  []Column[person]{{Key: "id", Header: "ID"}, {Key: "name", Header: "Name"}},
		RowKey:   func(p person) string { return "u" + Value(p, "id") },
		Rows:     people(23),
		Page:     3,
		PageSize: 10,
		Path:     "/teacher",
	}

	v, err := c.View()
	require.NoError(t, err)
	assert.Equal(t, DisplayRows, v.Mode)
	assert.Equal(t, 3, v.Window.CurrentPage)
	assert.Equal(t, 3, v.Window.TotalPages)
	require.Len(t, v.Rows, 3)
	assert.Equal(t, "u21", v.Rows[0].Key)
	assert.Equal(t, template.HTML("21"), v.Rows[0].Cells[0].HTML)
	assert.Equal(t, []Header{{Label: "ID"}, {Label: "Name"}}, v.Headers)
	assert.True(t, v.HasPager())
}

func TestClient_ClampsPage(t *testing.T) {
	v, err := Client[person]{Columns: []Column[person]{{Key: "id"}}, Rows: people(5), Page: 40, PageSize: 2}.View()
	require.NoError(t, err)
	assert.Equal(t, 3, v.Window.CurrentPage)
	require.Len(t, v.Rows, 1)
	assert.Equal(t, template.HTML("5"), v.Rows[0].Cells[0].HTML)
	assert.Equal(t, "4", v.Rows[0].Key, "default row key is the absolute index")
}

func TestClient_Empty(t *testing.T) {
	v, err := Client[person]{Columns: []Column[person]{{Key: "id", Header: "ID"}}}.View()
	require.NoError(t, err)
	assert.Equal(t, DisplayEmpty, v.Mode)
	assert.Equal(t, defaultEmpty, v.Empty)
	assert.Empty(t, v.Rows)
	assert.False(t, v.HasPager())
	assert.Equal(t, 1, v.ColSpan())
}

func TestClient_RejectsPreSlicedRows(t *testing.T) {
	v, err := Client[person]{ID: "people", Rows: people(10), Total: 42, PageSize: 10}.View()
	assert.ErrorIs(t, err, ErrRowsPreSliced)
	assert.Equal(t, DisplayError, v.Mode)
	assert.Equal(t, "people", v.ID)
	assert.Empty(t, v.Rows)
}

func TestClient_EscapesResolvedValuesButNotRenderers(t *testing.T) {
	c := Client[person]{
		Columns: []Column[person]{
			{Key: "name", Header: "Name"},
			{Key: "badge", Header: "Badge", ClassName: "text-right", Render: func(p person) template.HTML {
				return template.HTML("<span>" + template.HTMLEscapeString(p.Name) + "</span>")
			}},
		},
		Rows:     []person{{ID: 1, Name: "Ada <b>"}},
		PageSize: 10,
	}

	v, err := c.View()
	require.NoError(t, err)
	require.Len(t, v.Rows, 1)
	assert.Equal(t, template.HTML("Ada &lt;b&gt;"), v.Rows[0].Cells[0].HTML)
	assert.Equal(t, template.HTML("<span>Ada &lt;b&gt;</span>"), v.Rows[0].Cells[1].HTML)
	assert.Equal(t, "text-right", v.Rows[0].Cells[1].ClassName)
}

func TestDepsKey(t *testing.T) {
	assert.Equal(t, "", DepsKey())
	assert.Equal(t, DepsKey("ada", "admin"), DepsKey("ada", "admin"))
	assert.NotEqual(t, DepsKey("ada", "admin"), DepsKey("admin", "ada"))
	assert.NotEqual(t, DepsKey("1"), DepsKey(1))
}
