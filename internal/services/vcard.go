package services

import (
	"regexp"
	"strings"

	"github.com/tagcard/backend/internal/models"
)

// BuildVCard serializes a public view as a vCard 3.0. Optional properties are
// assembled conditionally (filter-then-join) so a sparse profile never emits
// blank lines; a card for a profile with only a full name contains exactly
// FN and N besides the envelope. Lines are CRLF-terminated per RFC 2426.
// Hidden contact fields are already absent from the view, so nothing here can
// leak past the visibility boundary.
func BuildVCard(v *models.PublicProfile) string {
	lines := []string{
		"BEGIN:VCARD",
		"VERSION:3.0",
		"FN:" + v.FullName,
		"N:" + v.FullName + ";;;",
	}
	if v.JobTitle != "" {
		lines = append(lines, "TITLE:"+v.JobTitle)
	}
	if v.Company != "" {
		lines = append(lines, "ORG:"+v.Company)
	}
	if v.Email != "" {
		lines = append(lines, "EMAIL:"+v.Email)
	}
	if v.Phone != "" {
		lines = append(lines, "TEL:"+v.Phone)
	}
	if v.Website != "" {
		lines = append(lines, "URL:"+v.Website)
	}
	if v.Location != "" {
		lines = append(lines, "ADR:;;"+v.Location+";;;;")
	}
	lines = append(lines, "END:VCARD")
	return strings.Join(lines, "\r\n") + "\r\n"
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// VCardFilename derives the download name: full name with whitespace
// collapsed to underscores, e.g. "Jane Doe" -> "Jane_Doe.vcf".
func VCardFilename(v *models.PublicProfile) string {
	return safeFileStem(v.FullName) + ".vcf"
}

// CardPNGFilename names the printable card raster export.
func CardPNGFilename(v *models.PublicProfile) string {
	return safeFileStem(v.FullName) + "_card.png"
}

// CardPDFFilename names the printable card document export.
func CardPDFFilename(v *models.PublicProfile) string {
	return safeFileStem(v.FullName) + "_card.pdf"
}

func safeFileStem(name string) string {
	stem := whitespaceRe.ReplaceAllString(strings.TrimSpace(name), "_")
	if stem == "" {
		stem = "profile"
	}
	return stem
}
