package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tagcard/backend/internal/models"
)

func shareView() *models.PublicProfile {
	return &models.PublicProfile{PublicID: "abc123", FullName: "Jane Doe", DisplayName: "Jane Doe"}
}

func TestBuildShareActionRedirectTargets(t *testing.T) {
	url := "https://tagcard.app/p/abc123"

	for _, target := range []string{ShareWhatsApp, ShareSnapchat, ShareTwitter, ShareFacebook} {
		action, err := BuildShareAction(target, shareView(), url)
		require.NoError(t, err, target)
		assert.Equal(t, ShareMethodRedirect, action.Method, target)
		assert.Contains(t, action.URL, "https%3A%2F%2Ftagcard.app%2Fp%2Fabc123", target)
	}
}

func TestBuildShareActionMessageMentionsDisplayName(t *testing.T) {
	action, err := BuildShareAction(ShareTwitter, shareView(), "https://tagcard.app/p/abc123")
	require.NoError(t, err)
	assert.Equal(t, "Check out Jane Doe's TagCard profile!", action.Message)
	assert.Contains(t, action.URL, "twitter.com/intent/tweet")
}

func TestBuildShareActionInstagramFallsBackToCopy(t *testing.T) {
	url := "https://tagcard.app/p/abc123"
	action, err := BuildShareAction(ShareInstagram, shareView(), url)
	require.NoError(t, err)

	assert.Equal(t, ShareMethodCopy, action.Method)
	assert.Equal(t, url, action.URL, "copy action carries the plain URL")
	assert.NotEmpty(t, action.Instruction)
}

func TestBuildShareActionUnknownTarget(t *testing.T) {
	_, err := BuildShareAction("myspace", shareView(), "https://tagcard.app/p/abc123")
	assert.ErrorIs(t, err, ErrUnknownShareTarget)
}
