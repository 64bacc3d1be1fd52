package export

import (
	"fmt"

	"github.com/aquaticfungi/pubdb/internal/publication"
	"github.com/xuri/excelize/v2"
)

// SheetName is the single sheet of an XLSX export.
const SheetName = "Publications"

// ToXLSX builds a single-sheet workbook with a header row and one row per
// publication. Citations are written as numbers.
func ToXLSX(pubs []publication.Publication) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("naming sheet: %w", err)
	}

	header := make([]interface{}, len(publication.Columns))
	for i, c := range publication.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}

	for i, p := range pubs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := p.Values()
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("encoding workbook: %w", err)
	}
	return buf.Bytes(), nil
}
