package otpx_test

import (
	"net/url"
	"testing"
	"time"

	"github.com/aussiebroadwan/mfagate/pkg/otpx"
	"github.com/stretchr/testify/require"
)

// ASCII "12345678901234567890", the RFC 6238 SHA-1 seed.
const rfcSecret = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"

func TestCodeAt_RFC6238Vectors(t *testing.T) {
	e := otpx.New()

	tests := []struct {
		unix int64
		want string
	}{
		{59, "287082"},
		{1111111109, "081804"},
		{1111111111, "050471"},
		{1234567890, "005924"},
		{2000000000, "279037"},
	}

	for _, tt := range tests {
		code, err := e.CodeAt(rfcSecret, time.Unix(tt.unix, 0))
		require.NoError(t, err)
		require.Equal(t, tt.want, code, "unix=%d", tt.unix)
	}
}

func TestGenerateCode_Deterministic(t *testing.T) {
	e := otpx.New()
	secret, err := e.NewSecret()
	require.NoError(t, err)

	a, err := e.GenerateCode(secret, 42)
	require.NoError(t, err)
	b, err := e.GenerateCode(secret, 42)
	require.NoError(t, err)

	require.Equal(t, a, b)
	require.Len(t, a, 6)
}

func TestGenerateCode_InvalidSecret(t *testing.T) {
	e := otpx.New()

	for _, secret := range []string{"", "not base32!", "1111"} {
		_, err := e.GenerateCode(secret, 1)
		require.ErrorIs(t, err, otpx.ErrInvalidSecret, "secret=%q", secret)
	}
}

func TestNewSecret(t *testing.T) {
	e := otpx.New()

	a, err := e.NewSecret()
	require.NoError(t, err)
	b, err := e.NewSecret()
	require.NoError(t, err)

	// 20 bytes in unpadded base32.
	require.Len(t, a, 32)
	require.NotEqual(t, a, b)
	require.Regexp(t, `^[A-Z2-7]+$`, a)
}

func TestVerify_RoundTrip(t *testing.T) {
	e := otpx.New()
	secret, err := e.NewSecret()
	require.NoError(t, err)

	now := time.Unix(1_700_000_000, 0)
	code, err := e.CodeAt(secret, now)
	require.NoError(t, err)

	require.True(t, e.Verify(secret, code, now, 0))
	require.True(t, e.Verify(secret, code, now, otpx.SetupWindow))
	require.True(t, e.Verify(secret, code, now, otpx.LoginWindow))
}

func TestVerify_DriftWindow(t *testing.T) {
	e := otpx.New()
	now := time.Unix(1_700_000_010, 0)
	step := 30 * time.Second

	tests := []struct {
		name   string
		offset int
		window uint
		want   bool
	}{
		{"one step behind, setup window", -1, otpx.SetupWindow, true},
		{"one step ahead, setup window", 1, otpx.SetupWindow, true},
		{"two steps behind, setup window", -2, otpx.SetupWindow, false},
		{"two steps ahead, setup window", 2, otpx.SetupWindow, false},
		{"two steps behind, login window", -2, otpx.LoginWindow, true},
		{"two steps ahead, login window", 2, otpx.LoginWindow, true},
		{"three steps behind, login window", -3, otpx.LoginWindow, false},
		{"three steps ahead, login window", 3, otpx.LoginWindow, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, err := e.CodeAt(rfcSecret, now.Add(time.Duration(tt.offset)*step))
			require.NoError(t, err)
			require.Equal(t, tt.want, e.Verify(rfcSecret, code, now, tt.window))
		})
	}
}

func TestVerify_RejectsMalformedCodes(t *testing.T) {
	e := otpx.New()
	now := time.Unix(59, 0)

	for _, code := range []string{"", "28708", "2870820", "28708a", " 287082", "２８７０８２"} {
		require.False(t, e.Verify(rfcSecret, code, now, otpx.LoginWindow), "code=%q", code)
	}
}

func TestVerify_NearEpochSkipsNegativeSteps(t *testing.T) {
	e := otpx.New()
	now := time.Unix(5, 0)

	code, err := e.GenerateCode(rfcSecret, 0)
	require.NoError(t, err)
	require.True(t, e.Verify(rfcSecret, code, now, otpx.LoginWindow))
}

func TestVerify_InvalidSecret(t *testing.T) {
	e := otpx.New()
	require.False(t, e.Verify("!!!", "123456", time.Now(), otpx.LoginWindow))
}

func TestRemainingSeconds(t *testing.T) {
	e := otpx.New()

	tests := []struct {
		unix int64
		want int
	}{
		{0, 0},
		{1, 29},
		{15, 15},
		{29, 1},
		{30, 0},
		{1_699_999_981, 29},
		{1_700_000_001, 9},
		// Before the epoch.
		{-1, 1},
		{-30, 0},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, e.RemainingSeconds(time.Unix(tt.unix, 0)), "unix=%d", tt.unix)
	}

	for i := range int64(90) {
		r := e.RemainingSeconds(time.Unix(1_700_000_000+i, 0))
		require.GreaterOrEqual(t, r, 0)
		require.Less(t, r, otpx.DefaultPeriod)
	}
}

func TestProvisioningURI(t *testing.T) {
	e := otpx.New()

	uri, err := e.ProvisioningURI(rfcSecret, "alice", "SecureApp")
	require.NoError(t, err)

	u, err := url.Parse(uri)
	require.NoError(t, err)
	require.Equal(t, "otpauth", u.Scheme)
	require.Equal(t, "totp", u.Host)
	require.Equal(t, "/SecureApp:alice", u.Path)

	q := u.Query()
	require.Equal(t, rfcSecret, q.Get("secret"))
	require.Equal(t, "SecureApp", q.Get("issuer"))
	require.Equal(t, "30", q.Get("period"))
	require.Equal(t, "6", q.Get("digits"))
	require.Equal(t, "SHA1", q.Get("algorithm"))
}

func TestProvisioningURI_InvalidSecret(t *testing.T) {
	e := otpx.New()

	_, err := e.ProvisioningURI("", "alice", "SecureApp")
	require.ErrorIs(t, err, otpx.ErrInvalidSecret)
}
