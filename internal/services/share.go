package services

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/tagcard/backend/internal/models"
)

// Share targets.
const (
	ShareWhatsApp  = "whatsapp"
	ShareSnapchat  = "snapchat"
	ShareTwitter   = "twitter"
	ShareInstagram = "instagram"
	ShareFacebook  = "facebook"
)

// Share methods. "redirect" means open the returned deep link; "copy" means
// put the profile URL on the clipboard and show the instruction.
const (
	ShareMethodRedirect = "redirect"
	ShareMethodCopy     = "copy"
)

var ErrUnknownShareTarget = errors.New("unknown share target")

// ShareAction is the channel-specific share descriptor handed to the client.
type ShareAction struct {
	Target      string `json:"target"`
	Method      string `json:"method"`
	URL         string `json:"url"`
	Message     string `json:"message,omitempty"`
	Instruction string `json:"instruction,omitempty"`
}

// BuildShareAction formats the canned message plus canonical URL for a named
// social target. Instagram has no public web-intent API, so it deliberately
// falls back to a copy-link action rather than a deep link. User cancellation
// of a native share sheet is a client concern and never reaches the server.
func BuildShareAction(target string, view *models.PublicProfile, profileURL string) (*ShareAction, error) {
	message := fmt.Sprintf("Check out %s's TagCard profile!", view.DisplayName)
	text := url.QueryEscape(message)
	encoded := url.QueryEscape(profileURL)

	switch target {
	case ShareWhatsApp:
		return &ShareAction{
			Target:  target,
			Method:  ShareMethodRedirect,
			URL:     "https://wa.me/?text=" + text + "%20" + encoded,
			Message: message,
		}, nil
	case ShareSnapchat:
		return &ShareAction{
			Target:  target,
			Method:  ShareMethodRedirect,
			URL:     "https://www.snapchat.com/scan?attachmentUrl=" + encoded,
			Message: message,
		}, nil
	case ShareTwitter:
		return &ShareAction{
			Target:  target,
			Method:  ShareMethodRedirect,
			URL:     "https://twitter.com/intent/tweet?text=" + text + "&url=" + encoded,
			Message: message,
		}, nil
	case ShareFacebook:
		return &ShareAction{
			Target:  target,
			Method:  ShareMethodRedirect,
			URL:     "https://www.facebook.com/sharer/sharer.php?u=" + encoded,
			Message: message,
		}, nil
	case ShareInstagram:
		return &ShareAction{
			Target:      target,
			Method:      ShareMethodCopy,
			URL:         profileURL,
			Message:     message,
			Instruction: "Link copied! Share it on Instagram.",
		}, nil
	default:
		return nil, ErrUnknownShareTarget
	}
}
