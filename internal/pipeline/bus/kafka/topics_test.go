package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"idbridge/internal/pipeline"
)

func TestTopics(t *testing.T) {
	topics := NewTopics("idbridge.events.")

	assert.Equal(t, "idbridge.events.log_create", topics.For(pipeline.KindLogCreate))
	assert.Len(t, topics.All(), 3)

	kind, ok := topics.KindOf("idbridge.events.mapping_touch")
	assert.True(t, ok)
	assert.Equal(t, pipeline.KindMappingTouch, kind)

	_, ok = topics.KindOf("other.mapping_touch")
	assert.False(t, ok)
	_, ok = topics.KindOf("idbridge.events.unknown")
	assert.False(t, ok)
}
