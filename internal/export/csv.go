package export

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/aquaticfungi/pubdb/internal/publication"
)

// ToCSV writes a header row and one row per publication in column order.
func ToCSV(pubs []publication.Publication) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(publication.Columns); err != nil {
		return nil, err
	}
	for _, p := range pubs {
		row := []string{
			p.Authors, p.Title, p.Keywords, p.Abstract, strconv.Itoa(p.Citations),
			p.Year, p.DOI, p.WOSID, p.Link,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
