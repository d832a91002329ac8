package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateSlug(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"ascii", "Izakaya Taro", "izakaya-taro"},
		{"extra spaces", "  Sushi   Hana  ", "sushi-hana"},
		{"nothing left", "!!!", "store"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, generateSlug(tt.in))
		})
	}
}

func TestGenerateSlug_Transliterates(t *testing.T) {
	got := generateSlug("居酒屋 たろう")
	assert.Regexp(t, `^[a-z0-9_-]+$`, got)
	assert.NotEqual(t, "store", got)
}
