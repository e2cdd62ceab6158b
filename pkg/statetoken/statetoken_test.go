package statetoken_test

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewuplift/backend/pkg/statetoken"
)

type pageState struct {
	BusinessName string `json:"businessName"`
	Rating       int    `json:"rating"`
	Gating       bool   `json:"gating"`
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	in := pageState{BusinessName: "Demo Coffee", Rating: 3, Gating: true}

	token := statetoken.Encode(in)
	require.NotEmpty(t, token)

	var out pageState
	err := statetoken.Decode(token, &out)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDecode_ToleratesFragmentPrefix(t *testing.T) {
	token := statetoken.Encode(pageState{BusinessName: "Demo"})

	var out pageState
	err := statetoken.Decode("#"+token, &out)
	require.NoError(t, err)
	assert.Equal(t, "Demo", out.BusinessName)
}

func TestDecode_AcceptsURLSafeEncoding(t *testing.T) {
	// A payload whose standard encoding contains "+" and "/", re-encoded
	// URL-safe the way a token that traveled through a URL arrives.
	payload := `{"businessName":"a?b>c~d","rating":0,"gating":false}`
	token := base64.URLEncoding.EncodeToString([]byte(payload))

	var out pageState
	err := statetoken.Decode(token, &out)
	require.NoError(t, err)
	assert.Equal(t, "a?b>c~d", out.BusinessName)
}

func TestDecode_EmptyToken(t *testing.T) {
	var out pageState
	assert.ErrorIs(t, statetoken.Decode("", &out), statetoken.ErrEmptyToken)
	assert.ErrorIs(t, statetoken.Decode("#", &out), statetoken.ErrEmptyToken)
	assert.ErrorIs(t, statetoken.Decode("   ", &out), statetoken.ErrEmptyToken)
}

func TestDecode_MalformedToken(t *testing.T) {
	var out pageState
	assert.Error(t, statetoken.Decode("!!!not-base64!!!", &out))

	garbage := base64.StdEncoding.EncodeToString([]byte("not json"))
	assert.Error(t, statetoken.Decode(garbage, &out))
}

func TestEncode_UnencodableValueDegradesToEmpty(t *testing.T) {
	assert.Empty(t, statetoken.Encode(make(chan int)))
}
