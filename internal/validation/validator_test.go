package validation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type sample struct {
	Slug   string `validate:"omitempty,slug"`
	Phone  string `validate:"omitempty,phone"`
	Locale string `validate:"omitempty,locale"`
}

func TestCustomTags(t *testing.T) {
	v := New()
	require.NoError(t, v.Struct(sample{Slug: "brand-film-2024", Phone: "+212 600 000 000", Locale: "fr"}))

	err := v.Struct(sample{Slug: "Bad Slug"})
	require.Error(t, err)
	errs := v.ValidationErrors(err)
	require.Len(t, errs, 1)
	require.Equal(t, "slug", errs[0].Tag())

	require.Error(t, v.Struct(sample{Locale: "french"}))
	require.Error(t, v.Struct(sample{Phone: "call me"}))
}

func TestVar(t *testing.T) {
	v := New()
	require.NoError(t, v.Var("hello@studio.ma", "email"))
	require.Error(t, v.Var("not-an-email", "email"))
	require.Nil(t, v.ValidationErrors(nil))
}
