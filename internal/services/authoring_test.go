package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tokoadmin/internal/services"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain words", "Wireless Mouse", "wireless-mouse"},
		{"accents stripped", "Crème Brûlée Set", "creme-brulee-set"},
		{"punctuation runs collapse", "USB-C  --  Hub (4 port)!", "usb-c-hub-4-port"},
		{"leading and trailing noise", "  ***Gaming Chair***  ", "gaming-chair"},
		{"at sign spelled out", "Tea @ Home", "tea-at-home"},
		{"digits kept", "iPhone 15 Pro", "iphone-15-pro"},
		{"nothing usable", "!!!", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, services.Slugify(tt.in))
		})
	}
}

func TestSlugify_Idempotent(t *testing.T) {
	for _, in := range []string{"Wireless Mouse", "Crème Brûlée", "a--b", "Ünïcödé Ñame 2024"} {
		once := services.Slugify(in)
		assert.Equal(t, once, services.Slugify(once), "slugify(%q)", in)
		assert.Equal(t, once, services.Slugify(in), "deterministic for %q", in)
	}
}

func TestIsSlug(t *testing.T) {
	assert.True(t, services.IsSlug("wireless-mouse"))
	assert.True(t, services.IsSlug("item-2"))
	assert.False(t, services.IsSlug(""))
	assert.False(t, services.IsSlug("Wireless-Mouse"))
	assert.False(t, services.IsSlug("-leading"))
	assert.False(t, services.IsSlug("double--hyphen"))
	assert.False(t, services.IsSlug("with space"))
}

func TestSuggestVisibility(t *testing.T) {
	assert.False(t, services.SuggestVisibility(0))
	assert.True(t, services.SuggestVisibility(1))
	assert.True(t, services.SuggestVisibility(250))
}
