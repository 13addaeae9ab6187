package otpx

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
)

func TestGenerateSecret(t *testing.T) {
	t.Parallel()
	p := &Provisioner{Issuer: "Slavbor World"}

	a, err := p.GenerateSecret()
	require.NoError(t, err)
	b, err := p.GenerateSecret()
	require.NoError(t, err)

	require.NotEqual(t, a, b)
	require.Equal(t, 32, len(a)) // 20 bytes -> 32 base32 chars, no padding
	require.Equal(t, strings.ToUpper(a), a)
}

func TestProvisioningURI(t *testing.T) {
	t.Parallel()
	p := &Provisioner{Issuer: "Slavbor World"}

	secret, err := p.GenerateSecret()
	require.NoError(t, err)

	uri, err := p.ProvisioningURI("alice@example.com", secret)
	require.NoError(t, err)

	parsed, err := url.Parse(uri)
	require.NoError(t, err)
	require.Equal(t, "otpauth", parsed.Scheme)
	require.Equal(t, "totp", parsed.Host)
	require.Contains(t, parsed.Path, "alice@example.com")
	require.Equal(t, secret, parsed.Query().Get("secret"))
	require.Equal(t, "Slavbor World", parsed.Query().Get("issuer"))

	// Same inputs, same URI.
	again, err := p.ProvisioningURI("alice@example.com", secret)
	require.NoError(t, err)
	require.Equal(t, uri, again)
}

func TestProvisioningURIRejectsBadSecret(t *testing.T) {
	t.Parallel()
	p := &Provisioner{Issuer: "Slavbor World"}

	_, err := p.ProvisioningURI("alice@example.com", "not base32!!!")
	require.ErrorIs(t, err, ErrInvalidSecret)
}

func TestVerify(t *testing.T) {
	t.Parallel()
	p := &Provisioner{Issuer: "Slavbor World"}

	secret, err := p.GenerateSecret()
	require.NoError(t, err)

	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)

	require.True(t, p.Verify(secret, code))
	require.True(t, p.Verify(secret, " "+code+" ")) // whitespace tolerated

	t.Run("rejects wrong code", func(t *testing.T) {
		wrong := "000000"
		if wrong == code {
			wrong = "000001"
		}
		require.False(t, p.Verify(secret, wrong))
	})

	t.Run("rejects malformed input without panic", func(t *testing.T) {
		require.False(t, p.Verify(secret, ""))
		require.False(t, p.Verify(secret, "abc"))
		require.False(t, p.Verify(secret, "12345678901234567890"))
	})

	t.Run("rejects code far outside the window", func(t *testing.T) {
		stale, err := totp.GenerateCode(secret, time.Now().Add(-10*time.Minute))
		require.NoError(t, err)
		require.False(t, p.Verify(secret, stale))
	})
}
