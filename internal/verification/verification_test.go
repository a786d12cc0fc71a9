package verification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniauth/uniauth/internal/model"
)

func TestGenerateSixDigitCode(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := generateSixDigitCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, c := range code {
			require.True(t, c >= '0' && c <= '9', "non-decimal character in %q", code)
		}
	}
}

// The stored hash binds the code to its (target, type) pair: the same digits
// issued for a different purpose or recipient hash differently.
func TestHashCode_BoundToTargetAndType(t *testing.T) {
	base := hashCode("+8613800138000", model.CodeTypeLogin, "123456")
	assert.Equal(t, base, hashCode("+8613800138000", model.CodeTypeLogin, "123456"))

	assert.NotEqual(t, base, hashCode("+8613800138001", model.CodeTypeLogin, "123456"))
	assert.NotEqual(t, base, hashCode("+8613800138000", model.CodeTypeReset, "123456"))
	assert.NotEqual(t, base, hashCode("+8613800138000", model.CodeTypeLogin, "654321"))
}
