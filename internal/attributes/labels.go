package attributes

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/go-logr/logr"
)

// LabelPrefix namespaces key/value labels on Hetzner Cloud servers.
const LabelPrefix = "outline-kv/"

// MaxLabelValueLength is the Hetzner Cloud limit for a single label value.
const MaxLabelValueLength = 63

// EncodeLabels renders a key/value pair as one or more labels. The value is
// hex encoded and split into chunks that fit the label value limit; chunk n
// is stored under "outline-kv/<key>.<n>".
func EncodeLabels(key, value string) map[string]string {
	encoded := hex.EncodeToString([]byte(value))
	labels := make(map[string]string)

	for n := 0; n == 0 || len(encoded) > 0; n++ {
		size := min(MaxLabelValueLength, len(encoded))
		labels[fmt.Sprintf("%s%s.%d", LabelPrefix, key, n)] = encoded[:size]
		encoded = encoded[size:]
	}
	return labels
}

// DecodeLabels reassembles the chunked key/value labels of a server.
//
// Chunks are joined in index order. A key with a missing chunk or a value
// that is not valid hex is logged and skipped.
func DecodeLabels(labels map[string]string, log logr.Logger) Snapshot {
	chunks := make(map[string]map[int]string)

	for name, value := range labels {
		if len(name) < len(LabelPrefix) || !strings.EqualFold(name[:len(LabelPrefix)], LabelPrefix) {
			continue
		}
		key, index := splitChunkName(name[len(LabelPrefix):])
		if key == "" || index < 0 {
			log.V(1).Info("Skipping malformed key/value label", "label", name)
			continue
		}
		key = strings.ToLower(key)
		if chunks[key] == nil {
			chunks[key] = make(map[int]string)
		}
		chunks[key][index] = value
	}

	values := make(map[string]string, len(chunks))
	for key, parts := range chunks {
		encoded, ok := joinChunks(parts)
		if !ok {
			log.Info("Skipping label with missing chunks", "key", key, "chunks", len(parts))
			continue
		}
		decoded, err := hex.DecodeString(encoded)
		if err != nil {
			log.Error(err, "Skipping label with undecodable value", "key", key)
			continue
		}
		values[key] = string(decoded)
	}

	return NewSnapshot(values)
}

// splitChunkName splits "<key>.<n>" into key and n. A name without a numeric
// suffix is treated as chunk 0 of a single-chunk value.
func splitChunkName(name string) (string, int) {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return name, 0
	}
	n, err := strconv.Atoi(name[i+1:])
	if err != nil {
		return name, 0
	}
	if n < 0 {
		return "", -1
	}
	return name[:i], n
}

func joinChunks(parts map[int]string) (string, bool) {
	indexes := make([]int, 0, len(parts))
	for i := range parts {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)

	var b strings.Builder
	for want, got := range indexes {
		if want != got {
			return "", false
		}
		b.WriteString(parts[got])
	}
	return b.String(), true
}
