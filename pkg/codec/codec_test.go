package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string            `yaml:"name"`
	Count int               `yaml:"count"`
	Tags  map[string]string `yaml:"tags"`
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	in := sample{Name: "alpha", Count: 3, Tags: map[string]string{"a": "1"}}

	data, err := Encode(in)
	require.NoError(t, err)

	var out sample
	require.NoError(t, Decode(data, &out))
	require.Equal(t, in, out)
}

func TestDecodeGarbageFails(t *testing.T) {
	var out sample
	err := Decode([]byte("not: [valid: yaml: at: all"), &out)
	require.Error(t, err)
}
