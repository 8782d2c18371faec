package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{"config error", "A101", "Invalid configuration file", CategoryConfig},
		{"asset error", "A120", "Invalid asset path", CategoryAsset},
		{"server error", "A140", "Server failed", CategoryServer},
		{"unknown error code", "A999", "Unknown error", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			assert.Equal(t, tt.wantMsg, err.Message)
			assert.Equal(t, tt.wantCat, err.Category)
			assert.Equal(t, tt.code, err.Code)
		})
	}
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, "A100: Configuration file not found", New("A100").Error())
	assert.Equal(t, "A100: Configuration file not found: no assetver.yaml in /tmp",
		New("A100").WithDetail("no assetver.yaml in /tmp").Error())
	assert.Equal(t, "bad thing 3", Newf(CategoryCLI, "bad thing %d", 3).Error())
}

func TestWrapAndUnwrap(t *testing.T) {
	cause := stderrors.New("boom")
	err := fmt.Errorf("loading: %w", New("A101").Wrap(cause))

	assert.ErrorIs(t, err, cause)
	assert.True(t, HasCode(err, "A101"))
	assert.False(t, HasCode(err, "A100"))
	assert.False(t, HasCode(cause, "A101"))
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil, "A140"))

	coded := New("A102")
	assert.Same(t, coded, FromError(fmt.Errorf("ctx: %w", coded), "A140"))

	plain := FromError(stderrors.New("listen tcp: address in use"), "A140")
	require.NotNil(t, plain)
	assert.Equal(t, "A140", plain.Code)
	assert.Equal(t, "listen tcp: address in use", plain.Detail)
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	out := New("A101").
		WithDetail(strings.Repeat("word ", 30)).
		WithSuggestion("Check the YAML").
		Format()

	assert.Contains(t, out, "ERROR A101: Invalid configuration file")
	assert.Contains(t, out, "Hint: Check the YAML")
	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, len(line), 80)
	}
}

func TestFprint(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	Fprint(&buf, fmt.Errorf("wrapped: %w", New("A100")))
	assert.Contains(t, buf.String(), "ERROR A100")

	buf.Reset()
	Fprint(&buf, stderrors.New("plain"))
	assert.Contains(t, buf.String(), "ERROR: plain")
}

func TestLookup(t *testing.T) {
	tmpl, ok := Lookup("A121")
	require.True(t, ok)
	assert.Equal(t, CategoryAsset, tmpl.Category)

	_, ok = Lookup("E001")
	assert.False(t, ok)
}
