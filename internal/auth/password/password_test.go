package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cheap = Params{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32}

func TestHashAndVerify(t *testing.T) {
	encoded, err := HashWith("s3cret-pass", cheap)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$m=8192,t=1,p=1$"))

	assert.True(t, Verify("s3cret-pass", encoded))
	assert.False(t, Verify("S3cret-pass", encoded))
}

func TestHashesAreSalted(t *testing.T) {
	a, err := HashWith("same", cheap)
	require.NoError(t, err)
	b, err := HashWith("same", cheap)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestVerifyRejectsMalformed(t *testing.T) {
	for _, encoded := range []string{
		"",
		"plain",
		"$argon2i$v=19$m=8192,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=x,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=8192,t=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=8192,t=1,p=1$!!$a2V5",
	} {
		assert.False(t, Verify("anything", encoded), encoded)
	}
}
