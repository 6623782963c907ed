package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Kırmızı Biber", "kirmizi-biber"},
		{"Pul Biber", "pul-biber"},
		{"Öğütülmüş Karabiber", "ogutulmus-karabiber"},
		{"Çörek Otu", "corek-otu"},
		{"İSOT", "isot"},
		{"  --Sumak & Kekik!!  ", "sumak-kekik"},
		{"Baharat 100gr", "baharat-100gr"},
		{"!!!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}
