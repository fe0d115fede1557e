package discord

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePageID(t *testing.T) {
	tests := []struct {
		name     string
		customID string
		want     pageRef
		wantOK   bool
	}{
		{
			name:     "history page",
			customID: "page:history:200000000000000002:3",
			want:     pageRef{View: viewHistory, UserID: "200000000000000002", Page: 3},
			wantOK:   true,
		},
		{
			name:     "round trip",
			customID: pageID(viewLeaves, "42", 2),
			want:     pageRef{View: viewLeaves, UserID: "42", Page: 2},
			wantOK:   true,
		},
		{name: "wrong prefix", customID: "leave:approve:abc"},
		{name: "missing page", customID: "page:history:42"},
		{name: "page zero", customID: "page:history:42:0"},
		{name: "not a number", customID: "page:history:42:two"},
		{name: "empty user", customID: "page:history::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parsePageID(tt.customID)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestPageButtons(t *testing.T) {
	t.Run("single page has no buttons", func(t *testing.T) {
		assert.Nil(t, pageButtons(viewHistory, "42", 1, 1))
		assert.Nil(t, pageButtons(viewHistory, "42", 1, 0))
	})

	t.Run("first page disables previous", func(t *testing.T) {
		buttons := pageButtons(viewHistory, "42", 1, 3)
		require.Len(t, buttons, 2)
		assert.True(t, buttons[0].Disabled)
		assert.False(t, buttons[1].Disabled)
		assert.Equal(t, "page:history:42:2", buttons[1].CustomID)
	})

	t.Run("last page disables next", func(t *testing.T) {
		buttons := pageButtons(viewLeaves, "42", 3, 3)
		require.Len(t, buttons, 2)
		assert.False(t, buttons[0].Disabled)
		assert.Equal(t, "page:leaves:42:2", buttons[0].CustomID)
		assert.True(t, buttons[1].Disabled)
	})
}
