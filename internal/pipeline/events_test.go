package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRejectsUnknownKind(t *testing.T) {
	_, err := Decode([]byte(`{"kind":"drop_table","provider_name":"Acme"}`))
	assert.Error(t, err)

	_, err = Decode([]byte(`not json`))
	assert.Error(t, err)
}

func TestEncodeOmitsUnsetOptionalFields(t *testing.T) {
	b, err := Encode(ChangeEvent{Kind: KindMappingTouch, ProviderName: "Acme", PrincipalID: "u1", PublishedAt: time.Unix(0, 0).UTC()})
	require.NoError(t, err)
	assert.NotContains(t, string(b), "info")
	assert.NotContains(t, string(b), "timestamp")

	ev, err := Decode(b)
	require.NoError(t, err)
	assert.Equal(t, KindMappingTouch, ev.Kind)
	assert.Nil(t, ev.Info)
}
