package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractAddress(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		expected string
		isNil    bool
	}{
		{
			name:     "Glow ingress line",
			html:     `<span id="glow-ingress-line2">Deliver to Alex - Seattle 98101</span>`,
			expected: "Deliver to Alex - Seattle 98101",
		},
		{
			name:     "Whitespace collapsed",
			html:     `<span id="glow-ingress-line1">Deliver   to` + "\n\t" + `Berlin</span>`,
			expected: "Deliver to Berlin",
		},
		{
			name: "Short keyword-free candidate falls through to next selector",
			html: `<span id="glow-ingress-line2">Hi</span>
				<span class="nav-line-2">Seattle 98101</span>`,
			expected: "Seattle 98101",
		},
		{
			name:     "Long text accepted without keywords",
			html:     `<div class="nav-line-1-container">123 Greenway Blvd</div>`,
			expected: "123 Greenway Blvd",
		},
		{
			name:  "No candidate qualifies",
			html:  `<span id="glow-ingress-line2">Hi</span>`,
			isNil: true,
		},
		{
			name:  "No address elements at all",
			html:  `<p>unrelated</p>`,
			isNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parseDoc(t, "<html><body>"+tt.html+"</body></html>")
			result := ExtractAddress(doc)
			if tt.isNil {
				assert.Nil(t, result)
			} else {
				require.NotNil(t, result)
				assert.Equal(t, tt.expected, *result)
			}
		})
	}
}
