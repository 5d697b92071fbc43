package services

import (
	"bytes"
	"fmt"
	"image"
	"log"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/tagcard/backend/internal/models"
)

// Raster dimensions of the printable card. The aspect ratio matches the
// 85mm x 55mm business-card page the PDF export embeds into.
const (
	cardWidth  = 1050
	cardHeight = 680

	cardQRTile   = 180
	cardAvatarPx = 160

	cardPageWidthMM  = 85.0
	cardPageHeightMM = 55.0
)

// CardRenderer composites a public view into a fixed-layout business card.
// Every embedded asset (avatar, QR) is fully decoded before compositing
// starts, so a returned raster is never blank or partially painted.
type CardRenderer struct {
	avatars      *AvatarService
	fontPath     string
	fontBoldPath string
}

func NewCardRenderer(avatars *AvatarService, fontPath, fontBoldPath string) *CardRenderer {
	return &CardRenderer{
		avatars:      avatars,
		fontPath:     fontPath,
		fontBoldPath: fontBoldPath,
	}
}

// RenderPNG draws the card and returns it PNG-encoded.
func (r *CardRenderer) RenderPNG(view *models.PublicProfile, profileURL string) ([]byte, error) {
	// Decode assets first. QR failure is fatal for the artifact; a broken or
	// missing avatar just falls back to initials, matching the page renderer.
	qr, err := qrcode.New(profileURL, qrcode.High)
	if err != nil {
		return nil, fmt.Errorf("render card qr: %w", err)
	}
	qrImg := qr.Image(cardQRTile)

	var avatar image.Image
	if view.AvatarURL != "" {
		img, err := r.avatars.OpenImage(view.AvatarURL)
		if err != nil {
			log.Printf("[CardRenderer] avatar fallback profile=%s error=%v", view.PublicID, err)
		} else {
			avatar = imaging.Fill(img, cardAvatarPx, cardAvatarPx, imaging.Center, imaging.Lanczos)
		}
	}

	dc := gg.NewContext(cardWidth, cardHeight)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	// Accent band down the left edge.
	dc.SetRGB255(17, 17, 17)
	dc.DrawRectangle(0, 0, 18, cardHeight)
	dc.Fill()

	const avatarCX, avatarCY = 170.0, 190.0
	if avatar != nil {
		dc.Push()
		dc.DrawCircle(avatarCX, avatarCY, cardAvatarPx/2)
		dc.Clip()
		dc.DrawImageAnchored(avatar, avatarCX, avatarCY, 0.5, 0.5)
		dc.Pop()
	} else {
		dc.SetRGB255(17, 17, 17)
		dc.DrawCircle(avatarCX, avatarCY, cardAvatarPx/2)
		dc.Fill()
		dc.SetRGB(1, 1, 1)
		r.setFace(dc, r.fontBoldPath, 44)
		dc.DrawStringAnchored(view.Initials(), avatarCX, avatarCY, 0.5, 0.5)
	}

	textX := 300.0
	dc.SetRGB255(17, 17, 17)
	r.setFace(dc, r.fontBoldPath, 46)
	dc.DrawStringAnchored(view.DisplayName, textX, 150, 0, 0.5)

	r.setFace(dc, r.fontPath, 26)
	dc.SetRGB255(85, 85, 85)
	if line := titleLine(view); line != "" {
		dc.DrawStringAnchored(line, textX, 200, 0, 0.5)
	}
	if view.Location != "" {
		dc.DrawStringAnchored(view.Location, textX, 238, 0, 0.5)
	}

	dc.SetRGB255(220, 220, 220)
	dc.DrawRectangle(60, 310, cardWidth-120, 2)
	dc.Fill()

	// Contact block: only the lines present on the projected view. Hidden
	// contact info never reaches the renderer in the first place.
	dc.SetRGB255(51, 51, 51)
	r.setFace(dc, r.fontPath, 26)
	y := 380.0
	for _, line := range contactLines(view) {
		dc.DrawStringAnchored(line, 60, y, 0, 0.5)
		y += 46
	}

	dc.DrawImage(qrImg, cardWidth-cardQRTile-50, cardHeight-cardQRTile-50)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode card png: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderPDF embeds the identical card raster full-bleed into a single
// 85mm x 55mm landscape page, so PNG and PDF exports differ only in
// container format.
func (r *CardRenderer) RenderPDF(view *models.PublicProfile, profileURL string) ([]byte, error) {
	png, err := r.RenderPNG(view, profileURL)
	if err != nil {
		return nil, err
	}

	// Width and height are given directly, so the page is already landscape.
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: cardPageWidthMM, Ht: cardPageHeightMM},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	opt := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("card", opt, bytes.NewReader(png))
	pdf.ImageOptions("card", 0, 0, cardPageWidthMM, cardPageHeightMM, false, opt, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write card pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// setFace loads a TTF face at the given size when one is configured; the
// context keeps its current face otherwise.
func (r *CardRenderer) setFace(dc *gg.Context, path string, points float64) {
	if path == "" {
		return
	}
	if err := dc.LoadFontFace(path, points); err != nil {
		log.Printf("[CardRenderer] font load path=%s error=%v", path, err)
	}
}

func titleLine(v *models.PublicProfile) string {
	switch {
	case v.JobTitle != "" && v.Company != "":
		return v.JobTitle + " at " + v.Company
	case v.JobTitle != "":
		return v.JobTitle
	default:
		return v.Company
	}
}

func contactLines(v *models.PublicProfile) []string {
	lines := make([]string, 0, 3)
	if v.Email != "" {
		lines = append(lines, v.Email)
	}
	if v.Phone != "" {
		lines = append(lines, v.Phone)
	}
	if v.Website != "" {
		lines = append(lines, v.Website)
	}
	return lines
}
