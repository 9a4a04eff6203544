package qrx_test

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/aussiebroadwan/mfagate/pkg/qrx"
	"github.com/stretchr/testify/require"
)

func TestRenderer_PNG(t *testing.T) {
	r := qrx.New(200)

	data, err := r.PNG("otpauth://totp/SecureApp:alice?secret=GEZDGNBVGY3TQOJQ&issuer=SecureApp")
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, 200, img.Bounds().Dx())
	require.Equal(t, 200, img.Bounds().Dy())
}

func TestRenderer_DefaultSize(t *testing.T) {
	r := qrx.New(0)
	require.Equal(t, qrx.DefaultSize, r.Size)

	data, err := r.PNG("hello")
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, qrx.DefaultSize, img.Bounds().Dx())
}

func TestRenderer_EmptyContent(t *testing.T) {
	r := qrx.New(128)

	for _, content := range []string{"", "   ", "\n\t"} {
		_, err := r.PNG(content)
		require.ErrorIs(t, err, qrx.ErrEmptyContent)
	}
}
