package components

import (
	"testing"

	"github.com/Veraticus/rotto/internal/tui/themes"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestHeaderModel_Actions(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
		mode  HeaderMode
	}{
		{
			name: "icons",
			mode: HeaderIcons,
			want: []string{"🔔 알림 (a)", "👤 마이 (p)"},
		},
		{
			name: "search",
			mode: HeaderSearch,
			want: []string{"🔍 검색 (/)"},
		},
		{
			name:  "search with query",
			mode:  HeaderSearch,
			query: "농장",
			want:  []string{"🔍 농장"},
		},
		{
			name:  "query ignored in icon mode",
			mode:  HeaderIcons,
			query: "농장",
			want:  []string{"🔔 알림 (a)", "👤 마이 (p)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHeader(themes.Default)
			h.SetMode(tt.mode)
			h.SetQuery(tt.query)

			assert.Equal(t, tt.mode, h.Mode())
			assert.Equal(t, tt.want, h.Actions())
		})
	}
}

func TestHeaderModel_View(t *testing.T) {
	h := NewHeader(themes.Default)
	h.Resize(60)

	view := h.View()
	assert.Contains(t, view, Logo)
	assert.Contains(t, view, "알림")
	assert.Contains(t, view, "마이")
	assert.Equal(t, 60, lipgloss.Width(view))

	h.SetMode(HeaderSearch)
	view = h.View()
	assert.Contains(t, view, "검색")
	assert.NotContains(t, view, "알림")
}
