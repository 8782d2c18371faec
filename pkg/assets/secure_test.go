package assets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecure(t *testing.T) {
	yes, no := true, false

	assert.Equal(t, SecureDefault, SecureFromPtr(nil))
	assert.Equal(t, SecureOn, SecureFromPtr(&yes))
	assert.Equal(t, SecureOff, SecureFromPtr(&no))

	val, ok := SecureOff.Bool()
	assert.False(t, val)
	assert.True(t, ok, "false must be distinguishable from unset")

	_, ok = SecureDefault.Bool()
	assert.False(t, ok)

	assert.Equal(t, SecureOff, SecureOff.Or(SecureOn))
	assert.Equal(t, SecureOn, SecureDefault.Or(SecureOn))
	assert.Equal(t, "default", SecureDefault.String())
}

func TestParseSecure(t *testing.T) {
	tests := []struct {
		in      string
		want    Secure
		wantErr bool
	}{
		{"", SecureDefault, false},
		{"default", SecureDefault, false},
		{"true", SecureOn, false},
		{"1", SecureOn, false},
		{"FALSE", SecureOff, false},
		{"maybe", SecureDefault, true},
	}
	for _, tt := range tests {
		got, err := ParseSecure(tt.in)
		if tt.wantErr {
			require.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
