package kafka

import (
	"strings"

	"idbridge/internal/pipeline"
)

// Topics maps event kinds to topic names: "<prefix>.<kind>".
type Topics struct {
	prefix string
}

func NewTopics(prefix string) Topics {
	return Topics{prefix: strings.TrimSuffix(prefix, ".")}
}

func (t Topics) For(kind pipeline.Kind) string {
	return t.prefix + "." + kind.String()
}

func (t Topics) KindOf(topic string) (pipeline.Kind, bool) {
	kind := pipeline.Kind(strings.TrimPrefix(topic, t.prefix+"."))
	if !strings.HasPrefix(topic, t.prefix+".") || !kind.IsValid() {
		return "", false
	}
	return kind, true
}

func (t Topics) All() []string {
	kinds := pipeline.Kinds()
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = t.For(k)
	}
	return out
}
