package encoding_test

import (
	"testing"

	"github.com/dylemma/xml-stream/encoding"
	"github.com/stretchr/testify/assert"
)

func TestLoadKnownNames(t *testing.T) {
	for _, name := range []string{"UTF-8", "utf8", "ISO-8859-1", "Shift_JIS", "euc-kr", "windows-1251"} {
		if !assert.NotNil(t, encoding.Load(name), "Load(%q) should resolve", name) {
			return
		}
	}
}

func TestLoadUnknownName(t *testing.T) {
	assert.Nil(t, encoding.Load("klingon-8"), "unknown names resolve to nil")
}

func TestDecodeLatin1(t *testing.T) {
	e := encoding.Load("iso-8859-1")
	dec := e.NewDecoder()

	s, err := dec.String("caf\xe9")
	if !assert.NoError(t, err, "decode should succeed") {
		return
	}
	assert.Equal(t, "café", s, "0xe9 is é in latin-1")
}
