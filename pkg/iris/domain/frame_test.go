package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDataURL(t *testing.T) {
	frame, err := ParseDataURL("data:image/jpg;base64,AQID")
	require.NoError(t, err)
	assert.Equal(t, Frame{Data: []byte{1, 2, 3}, MIMEType: "image/jpeg"}, frame)

	_, err = ParseDataURL("data:text/plain;base64,AQID")
	assert.Error(t, err)
	_, err = ParseDataURL("data:image/png;base64,!!!")
	assert.Error(t, err)
	_, err = ParseDataURL("data:image/png;base64,")
	assert.Error(t, err)
}

func TestNewImage(t *testing.T) {
	assert.Equal(t, Image{MIMEType: "image/jpeg", Base64: "AQID"}, NewImage(Frame{Data: []byte{1, 2, 3}}))
	assert.Equal(t, Image{MIMEType: "image/png", Base64: "AQID"}, NewImage(Frame{Data: []byte{1, 2, 3}, MIMEType: "image/png"}))
	assert.Equal(t, Image{MIMEType: "image/jpeg", Base64: "AQID"}, NewImage(Frame{Data: []byte("data:image/jpeg;base64,AQID")}))
	assert.Equal(t, "data:image/png;base64,AQID", Image{MIMEType: "image/png", Base64: "AQID"}.DataURL())
}

func TestStripDataURLPrefix(t *testing.T) {
	assert.Equal(t, "AQID", StripDataURLPrefix("data:image/jpeg;base64,AQID"))
	assert.Equal(t, "AQID", StripDataURLPrefix("AQID"))
	assert.Equal(t, "data:image/webp;base64,AQID", StripDataURLPrefix("data:image/webp;base64,AQID"))
}

func TestParseProvider(t *testing.T) {
	provider, err := ParseProvider(" OpenAI ")
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, provider)

	provider, err = ParseProvider("")
	require.NoError(t, err)
	assert.Equal(t, DefaultProvider, provider)

	_, err = ParseProvider("claude")
	assert.Error(t, err)
}
