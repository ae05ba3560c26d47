package forms

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestLoadRegistryEmbedded(t *testing.T) {
	reg, err := LoadRegistry("")
	require.NoError(t, err)

	if diff := cmp.Diff([]string{"contact", "newsletter", "project-brief"}, reg.IDs()); diff != "" {
		t.Fatalf("form ids mismatch (-want +got):\n%s", diff)
	}

	contact, err := reg.Get("contact")
	require.NoError(t, err)
	require.Equal(t, "email", contact.EmailField())
	phone, ok := contact.Field("phone")
	require.True(t, ok)
	require.NotNil(t, phone.re)

	_, err = reg.Get("missing")
	require.ErrorIs(t, err, ErrUnknownForm)
}

func TestLoadRegistryOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forms.yaml")
	data := []byte(`forms:
  - id: newsletter
    title: Lettre
    fields:
      - id: email
        label: Courriel
        type: email
        required: true
  - id: careers
    fields:
      - id: cv
        required: true
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	reg, err := LoadRegistry(path)
	require.NoError(t, err)

	news, err := reg.Get("newsletter")
	require.NoError(t, err)
	require.Equal(t, "Lettre", news.Title)
	require.Equal(t, defaultSuccessMessage, news.SuccessMessage)

	careers, err := reg.Get("careers")
	require.NoError(t, err)
	require.Equal(t, TypeText, careers.Fields[0].Type)
	require.Equal(t, "cv", careers.Fields[0].Label)

	_, err = reg.Get("contact")
	require.NoError(t, err)
}

func TestParseDefinitionsRejectsBadPattern(t *testing.T) {
	_, err := ParseDefinitions([]byte(`forms:
  - id: broken
    fields:
      - id: x
        pattern: "([a-z"
`))
	require.Error(t, err)
}

func TestParseDefinitionsRejectsDuplicateField(t *testing.T) {
	_, err := ParseDefinitions([]byte(`forms:
  - id: dup
    fields:
      - id: x
      - id: x
`))
	require.ErrorContains(t, err, "duplicate field x")
}
