package payment

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Metadata key layout for the checkout envelope. Small payloads use the
// single cartData key; larger ones are split into zero-padded numbered
// chunks plus a chunk count.
const (
	metadataKey      = "cartData"
	metadataChunkFmt = "cartData_%02d"
	chunkCountKey    = "cartData_chunks"
)

// CompressMetadata serializes v to JSON and packs it into a string map
// whose values each fit within maxLen. Payloads at or under the limit use a
// single key; larger payloads are chunked.
func CompressMetadata(v interface{}, maxLen int) (map[string]string, error) {
	if maxLen <= 0 {
		return nil, errors.New("metadata value limit must be positive")
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	s := string(raw)

	if len(s) <= maxLen {
		return map[string]string{metadataKey: s}, nil
	}

	meta := make(map[string]string)
	count := 0
	for i := 0; i < len(s); i += maxLen {
		end := i + maxLen
		if end > len(s) {
			end = len(s)
		}
		meta[fmt.Sprintf(metadataChunkFmt, count)] = s[i:end]
		count++
	}
	meta[chunkCountKey] = strconv.Itoa(count)
	return meta, nil
}

// DecompressMetadata reassembles the envelope from metadata and unmarshals
// it into dest. A declared chunk that is missing is a hard error: a partial
// envelope must never silently produce a truncated order.
func DecompressMetadata(meta map[string]string, dest interface{}) error {
	if countStr, ok := meta[chunkCountKey]; ok {
		count, err := strconv.Atoi(countStr)
		if err != nil || count <= 0 {
			return fmt.Errorf("invalid metadata chunk count %q", countStr)
		}

		var sb strings.Builder
		for i := 0; i < count; i++ {
			key := fmt.Sprintf(metadataChunkFmt, i)
			chunk, ok := meta[key]
			if !ok {
				return fmt.Errorf("missing metadata chunk %s", key)
			}
			sb.WriteString(chunk)
		}
		return json.Unmarshal([]byte(sb.String()), dest)
	}

	raw, ok := meta[metadataKey]
	if !ok {
		return errors.New("no cart data in metadata")
	}
	return json.Unmarshal([]byte(raw), dest)
}
