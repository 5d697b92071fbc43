package services

import (
	"fmt"
	"net/url"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/tagcard/backend/internal/models"
)

// QR kinds. A dynamic code carries the canonical profile URL and always
// resolves to the live profile; a static code freezes the current public view
// as an embedded vCard payload so scanners can save the contact offline.
const (
	QRKindDynamic = "dynamic"
	QRKindStatic  = "static"
)

// qrSize is the fixed edge length in pixels of generated codes.
const qrSize = 512

var ErrUnknownQRKind = fmt.Errorf("unknown qr kind")

// ProfileURL builds the canonical share URL for a public identifier,
// optionally carrying a visibility preset. This exact string is what QR codes
// encode and what in-app navigation uses.
func ProfileURL(baseURL, publicID, preset string) string {
	u := strings.TrimRight(baseURL, "/") + "/p/" + publicID
	if p := strings.TrimSpace(preset); p != "" {
		u += "?preset=" + url.QueryEscape(p)
	}
	return u
}

// QRPayload selects what a code of the given kind encodes.
func QRPayload(kind string, view *models.PublicProfile, profileURL string) (string, error) {
	switch kind {
	case QRKindDynamic, "":
		return profileURL, nil
	case QRKindStatic:
		return BuildVCard(view), nil
	default:
		return "", ErrUnknownQRKind
	}
}

// EncodeQRPNG renders the payload as a PNG at error-correction level High
// with a fixed module size.
func EncodeQRPNG(kind string, view *models.PublicProfile, profileURL string) ([]byte, error) {
	payload, err := QRPayload(kind, view, profileURL)
	if err != nil {
		return nil, err
	}
	png, err := qrcode.Encode(payload, qrcode.High, qrSize)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}
