package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLabel(t *testing.T) {
	cases := map[string]string{
		"Hà Nội, Việt Nam":                        "Hà Nội, Việt Nam",
		"  Hồ\tHoàn\nKiếm  ":                      "Hồ Hoàn Kiếm",
		"<b>Hue</b> Citadel":                      "Hue Citadel",
		"&lt;script&gt;alert(1)&lt;/script&gt;Da": "alert(1)Da",
		"Ben &amp; Jerry":                         "Ben & Jerry",
	}
	for in, want := range cases {
		assert.Equal(t, want, Label(in), in)
	}
}
