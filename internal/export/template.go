package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/watersafety/asset-management-backend/internal/domain"
	"github.com/watersafety/asset-management-backend/internal/storage"
)

// Output formats.
const (
	FormatCSV   = "csv"
	FormatExcel = "excel"
)

// Fetch tuning. The row ceiling bounds response latency on large tables; it
// is not a business limit. Truncation is logged, never reported.
const (
	pageSize = 100
	maxRows  = 1000
)

const sheetName = "Assets"

// columns is the fixed header order of the bulk-edit template. "Filter
// Removed" has no source field; it exists for the bulk-edit workflow and is
// always emitted as FALSE.
var columns = []string{
	"Asset Barcode",
	"Asset Type",
	"Status",
	"Primary Identifier",
	"Secondary Identifier",
	"Wing",
	"Wing In Short",
	"Room",
	"Floor",
	"Floor In Words",
	"Room No",
	"Room Name",
	"Filter Needed",
	"Filters On",
	"Filter Expiry Date",
	"Filter Installed On",
	"Filter Type",
	"Need Flushing",
	"Notes",
	"Augmented Care",
	"Low Usage Asset",
	"Filter Removed",
}

// Columns returns the template header order.
func Columns() []string {
	out := make([]string, len(columns))
	copy(out, columns)
	return out
}

// Document is an encoded template ready to be served.
type Document struct {
	Data        []byte
	Filename    string
	ContentType string
}

// Generator builds bulk-edit templates from the asset collection.
type Generator struct {
	Source storage.AssetPager
}

// Generate encodes a template in the requested format. When includeData is
// set it pulls the live collection; a fetch failure degrades to an empty set
// rather than failing the export. With no data to show, the template carries
// a single illustrative sample row.
func (g *Generator) Generate(ctx context.Context, format string, includeData bool) (*Document, error) {
	if format != FormatExcel {
		format = FormatCSV
	}

	var assets []domain.Asset
	if includeData {
		assets = g.fetchAssets(ctx)
	}

	rows := make([][]string, 0, len(assets)+1)
	if len(assets) > 0 {
		for _, a := range assets {
			rows = append(rows, assetRow(a))
		}
	} else {
		rows = append(rows, sampleRow())
	}

	log.Info().Str("format", format).Int("rows", len(rows)).Msg("generating template")

	date := time.Now().UTC().Format(domain.ISODate)
	switch format {
	case FormatExcel:
		data, err := encodeExcel(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to generate excel file: %w", err)
		}
		return &Document{
			Data:        data,
			Filename:    fmt.Sprintf("bulk-update-template-%s.xlsx", date),
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		}, nil
	default:
		data, err := encodeCSV(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to generate csv file: %w", err)
		}
		return &Document{
			Data:        data,
			Filename:    fmt.Sprintf("bulk-update-template-%s.csv", date),
			ContentType: "text/csv",
		}, nil
	}
}

// fetchAssets pages through the collection sequentially up to the row
// ceiling. Any transport failure is absorbed: the template is still usable
// with whatever was fetched (possibly nothing).
func (g *Generator) fetchAssets(ctx context.Context) []domain.Asset {
	var assets []domain.Asset
	cursor := ""
	for {
		page, err := g.Source.ScanAssetPage(ctx, cursor, pageSize)
		if err != nil {
			log.Error().Err(err).Msg("asset fetch failed, continuing with empty template")
			return nil
		}
		assets = append(assets, page.Items...)

		if len(assets) >= maxRows {
			log.Warn().Int("max", maxRows).Msg("limiting template rows to prevent timeout")
			return assets[:maxRows]
		}
		if page.NextCursor == "" {
			return assets
		}
		cursor = page.NextCursor
	}
}

func assetRow(a domain.Asset) []string {
	return []string{
		a.AssetBarcode,
		a.AssetType,
		a.Status,
		a.PrimaryIdentifier,
		a.SecondaryIdentifier,
		a.Wing,
		a.WingInShort,
		a.Room,
		a.Floor,
		a.FloorInWords,
		a.RoomNo,
		a.RoomName,
		FormatBooleanForDisplay(a.FilterNeeded),
		FormatBooleanForDisplay(a.FiltersOn),
		FormatDateForDisplay(a.FilterExpiryDate),
		FormatDateForDisplay(a.FilterInstalledOn),
		a.FilterType,
		FormatBooleanForDisplay(a.NeedFlushing),
		a.Notes,
		FormatBooleanForDisplay(a.AugmentedCare),
		FormatBooleanForDisplay(a.LowUsageAsset),
		"FALSE", // Filter Removed: user flips to TRUE in the bulk-edit sheet
	}
}

func sampleRow() []string {
	return []string{
		"SAMPLE-001",
		"Water Tap",
		"ACTIVE",
		"Main Water Tap",
		"Kitchen Area",
		"North Wing",
		"NW",
		"Kitchen",
		"Ground Floor",
		"Ground",
		"101",
		"Main Kitchen",
		"TRUE",
		"TRUE",
		"31/12/2024",
		"01/01/2024",
		"Standard",
		"FALSE",
		"Sample notes here",
		"FALSE",
		"FALSE",
		"FALSE",
	}
}

// FormatBooleanForDisplay renders booleans and boolean-like strings as the
// literals TRUE/FALSE. Other values fall back on emptiness. Idempotent.
func FormatBooleanForDisplay(value any) string {
	switch v := value.(type) {
	case bool:
		if v {
			return "TRUE"
		}
		return "FALSE"
	case string:
		lower := strings.ToLower(v)
		if lower == "true" || lower == "false" {
			return strings.ToUpper(lower)
		}
		if v != "" {
			return "TRUE"
		}
		return "FALSE"
	default:
		if value != nil {
			return "TRUE"
		}
		return "FALSE"
	}
}

// FormatDateForDisplay converts a stored YYYY-MM-DD date to DD/MM/YYYY.
// Empty or unparsable input passes through unchanged.
func FormatDateForDisplay(dateString string) string {
	if dateString == "" {
		return ""
	}
	t, err := time.Parse(domain.ISODate, dateString)
	if err != nil {
		return dateString
	}
	return t.Format("02/01/2006")
}

func encodeCSV(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(columns); err != nil {
		return nil, err
	}
	for _, row := range rows {
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

func encodeExcel(rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	if err := f.SetSheetRow(sheetName, "A1", toCells(columns)); err != nil {
		return nil, err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheetName, cell, toCells(row)); err != nil {
			return nil, err
		}
	}

	// Column widths sized to header length for readability.
	for i, col := range columns {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		width := float64(len(col))
		if width < 15 {
			width = 15
		}
		if err := f.SetColWidth(sheetName, name, name, width); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func toCells(row []string) *[]any {
	cells := make([]any, len(row))
	for i, v := range row {
		cells[i] = v
	}
	return &cells
}
