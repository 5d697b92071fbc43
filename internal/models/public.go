package models

import "strings"

// Visibility presets. A preset is resolved at read time against the owner's
// disclosure booleans and can only narrow what is shown, never widen it. An
// unknown or empty preset behaves like "public".
const (
	PresetMinimal = "minimal"
	PresetWork    = "work"
	PresetFriend  = "friend"
	PresetPublic  = "public"
)

// Disclosure is the two-boolean visibility axis: contact info and social
// links. Name, bio, tags, job title, company and location are always public
// once a profile exists.
type Disclosure struct {
	ShowContactInfo bool
	ShowSocialLinks bool
}

// PresetDisclosure maps a preset name to its disclosure cap.
func PresetDisclosure(preset string) Disclosure {
	switch strings.ToLower(strings.TrimSpace(preset)) {
	case PresetMinimal:
		return Disclosure{ShowContactInfo: false, ShowSocialLinks: false}
	case PresetWork:
		return Disclosure{ShowContactInfo: true, ShowSocialLinks: false}
	case PresetFriend:
		return Disclosure{ShowContactInfo: false, ShowSocialLinks: true}
	default:
		return Disclosure{ShowContactInfo: true, ShowSocialLinks: true}
	}
}

// PublicTag is a tag as seen by anonymous viewers.
type PublicTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PublicLink is a social link as seen by anonymous viewers.
type PublicLink struct {
	ID       string `json:"id"`
	Platform string `json:"platform"`
	URL      string `json:"url"`
}

// PublicProfile is the anonymous-viewer projection of a profile. It is the
// exact shape handed to the page renderer and every artifact generator; no
// raw Profile crosses this boundary.
type PublicProfile struct {
	PublicID    string       `json:"public_id"`
	FullName    string       `json:"full_name"`
	DisplayName string       `json:"display_name"`
	AvatarURL   string       `json:"avatar_url,omitempty"`
	JobTitle    string       `json:"job_title,omitempty"`
	Company     string       `json:"company,omitempty"`
	Location    string       `json:"location,omitempty"`
	Bio         string       `json:"bio,omitempty"`
	Likes       []PublicTag  `json:"likes"`
	Dislikes    []PublicTag  `json:"dislikes"`
	Email       string       `json:"email,omitempty"`
	Phone       string       `json:"phone,omitempty"`
	Website     string       `json:"website,omitempty"`
	SocialLinks []PublicLink `json:"social_links"`
}

// ProjectOptions tune a projection. Query filters the tag set by
// case-insensitive substring match on name; it never touches bio or contact
// fields. Preset selects a disclosure cap (see PresetDisclosure).
type ProjectOptions struct {
	Query  string
	Preset string
}

// ProjectPublic builds the anonymous view of a profile. Pure function: it
// performs no I/O and never mutates its inputs.
func ProjectPublic(p *Profile, tags []Tag, links []SocialLink, opts ProjectOptions) *PublicProfile {
	cap := PresetDisclosure(opts.Preset)
	showContact := p.ShowContactInfo && cap.ShowContactInfo
	showSocial := p.ShowSocialLinks && cap.ShowSocialLinks

	view := &PublicProfile{
		PublicID:    p.PublicID,
		FullName:    p.FullName,
		DisplayName: effectiveDisplayName(p),
		AvatarURL:   p.AvatarURL,
		JobTitle:    p.JobTitle,
		Company:     p.Company,
		Location:    p.Location,
		Bio:         effectiveBio(p),
		Likes:       []PublicTag{},
		Dislikes:    []PublicTag{},
		SocialLinks: []PublicLink{},
	}

	query := strings.ToLower(strings.TrimSpace(opts.Query))
	for _, t := range tags {
		if query != "" && !strings.Contains(strings.ToLower(t.Name), query) {
			continue
		}
		pt := PublicTag{ID: t.ID, Name: t.Name}
		if t.Kind == TagKindDislike {
			view.Dislikes = append(view.Dislikes, pt)
		} else {
			view.Likes = append(view.Likes, pt)
		}
	}

	if showContact {
		view.Email = p.Email
		view.Phone = p.Phone
		view.Website = p.Website
	}
	if showSocial {
		for _, l := range links {
			view.SocialLinks = append(view.SocialLinks, PublicLink{ID: l.ID, Platform: l.Platform, URL: l.URL})
		}
	}
	return view
}

// Initials returns up to two uppercase initials of the display name, used as
// the avatar fallback on rendered cards.
func (v *PublicProfile) Initials() string {
	var b strings.Builder
	count := 0
	for _, word := range strings.Fields(v.DisplayName) {
		r := []rune(word)
		b.WriteString(strings.ToUpper(string(r[0])))
		count++
		if count >= 2 {
			break
		}
	}
	return b.String()
}

func effectiveDisplayName(p *Profile) string {
	if strings.TrimSpace(p.DisplayName) != "" {
		return p.DisplayName
	}
	return p.FullName
}

func effectiveBio(p *Profile) string {
	if strings.TrimSpace(p.LongBio) != "" {
		return p.LongBio
	}
	return p.ShortBio
}
