package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/aquaticfungi/pubdb/internal/publication"
)

// ToJSONL writes one JSON object per publication, newline-terminated.
func ToJSONL(pubs []publication.Publication) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	for i, p := range pubs {
		if err := enc.Encode(p); err != nil {
			return nil, fmt.Errorf("encoding publication %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}
