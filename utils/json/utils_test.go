package json

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type frame struct {
	Type string `json:"type"`
	N    int    `json:"n"`
}

func TestEncodeDecode(t *testing.T) {
	body := Encode(frame{Type: "svg", N: 2})
	assert.JSONEq(t, `{"type":"svg","n":2}`, string(body))

	got, err := Decode[frame](body)
	require.NoError(t, err)
	assert.Equal(t, frame{Type: "svg", N: 2}, got)

	_, err = Decode[frame]([]byte("{"))
	assert.Error(t, err)
	assert.Equal(t, frame{Type: "none"}, DecodeOr([]byte("nope"), frame{Type: "none"}))

	assert.Empty(t, Encode(func() {}))
	assert.Len(t, EncodeAll([]frame{{}, {}}), 2)
}
