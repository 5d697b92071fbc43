package services

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tagcard/backend/internal/models"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestProfileURL(t *testing.T) {
	assert.Equal(t, "https://tagcard.app/p/abc123", ProfileURL("https://tagcard.app", "abc123", ""))
	assert.Equal(t, "https://tagcard.app/p/abc123", ProfileURL("https://tagcard.app/", "abc123", ""))
	assert.Equal(t, "https://tagcard.app/p/abc123?preset=work", ProfileURL("https://tagcard.app", "abc123", "work"))
}

func TestQRPayloadDynamicEncodesURL(t *testing.T) {
	view := &models.PublicProfile{PublicID: "abc123", FullName: "Jane Doe"}
	url := ProfileURL("https://tagcard.app", "abc123", "")

	payload, err := QRPayload(QRKindDynamic, view, url)
	require.NoError(t, err)
	assert.Equal(t, "https://tagcard.app/p/abc123", payload)

	// Empty kind defaults to dynamic.
	payload, err = QRPayload("", view, url)
	require.NoError(t, err)
	assert.Equal(t, url, payload)
}

func TestQRPayloadStaticEmbedsFrozenVCard(t *testing.T) {
	view := &models.PublicProfile{PublicID: "abc123", FullName: "Jane Doe", Email: "jane@x.com"}
	url := ProfileURL("https://tagcard.app", "abc123", "")

	payload, err := QRPayload(QRKindStatic, view, url)
	require.NoError(t, err)
	assert.Equal(t, BuildVCard(view), payload)
	assert.Contains(t, payload, "EMAIL:jane@x.com")
}

func TestQRPayloadUnknownKind(t *testing.T) {
	_, err := QRPayload("hologram", &models.PublicProfile{}, "https://tagcard.app/p/x")
	assert.ErrorIs(t, err, ErrUnknownQRKind)
}

func TestEncodeQRPNG(t *testing.T) {
	view := &models.PublicProfile{PublicID: "abc123", FullName: "Jane Doe"}
	png, err := EncodeQRPNG(QRKindDynamic, view, "https://tagcard.app/p/abc123")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngMagic), "output should be a PNG")
}
