package excel

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"store-feedback/internal/models"
	"strconv"
	"strings"
	"time"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

const maxXLSRows = 100000

func parseCoord(val string) (float64, error) {
	// Some locales export decimals with a comma
	val = strings.TrimSpace(strings.ReplaceAll(val, ",", "."))
	if val == "" {
		return 0, fmt.Errorf("empty")
	}
	return strconv.ParseFloat(val, 64)
}

func normalizeHeader(header string) string {
	header = strings.ToLower(strings.TrimSpace(header))
	r := strings.NewReplacer(" ", "", "_", "", "-", "")
	return r.Replace(header)
}

var headerAliases = map[string]string{
	"id":                 "id",
	"storeid":            "id",
	"name":               "name",
	"storename":          "name",
	"gmbname":            "gmbName",
	"address":            "address",
	"city":               "city",
	"state":              "state",
	"zip":                "zip",
	"zipcode":            "zip",
	"lat":                "lat",
	"latitude":           "lat",
	"lng":                "lng",
	"lon":                "lng",
	"longitude":          "lng",
	"googlereviewurl":    "googleReviewUrl",
	"googlereviewqrcode": "googleReviewQrCode",
	"yelpaccount":        "yelpAccount",
	"yelpreviewurl":      "yelpReviewUrl",
}

// ReadRows returns every row of the first worksheet. Legacy .xls files go
// through extrame/xls, everything else through excelize.
func ReadRows(filename string, reader io.Reader) ([][]string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".xls":
		workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
		if err != nil {
			return nil, err
		}
		if workbook.NumSheets() == 0 {
			return nil, fmt.Errorf("no worksheet found")
		}
		rows := workbook.ReadAllCells(maxXLSRows)
		if len(rows) == 0 {
			return nil, fmt.Errorf("worksheet is empty")
		}
		return rows, nil
	default:
		file, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer func() { _ = file.Close() }()

		sheetName := file.GetSheetName(0)
		if sheetName == "" {
			return nil, fmt.Errorf("no worksheet found")
		}
		rows, err := file.GetRows(sheetName)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return nil, fmt.Errorf("worksheet is empty")
		}
		return rows, nil
	}
}

// ReadStoresFile opens a spreadsheet from disk and parses its store rows.
func ReadStoresFile(path string) ([]models.StoreLocation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadStores(path, f)
}

// ReadStores maps a header row onto store fields. Rows without an id or with
// unparseable coordinates are skipped.
func ReadStores(filename string, reader io.Reader) ([]models.StoreLocation, error) {
	rows, err := ReadRows(filename, reader)
	if err != nil {
		return nil, err
	}

	columns := make(map[string]int)
	for i, h := range rows[0] {
		if field, ok := headerAliases[normalizeHeader(h)]; ok {
			if _, seen := columns[field]; !seen {
				columns[field] = i
			}
		}
	}
	for _, required := range []string{"id", "lat", "lng"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("missing %q column", required)
		}
	}

	cell := func(row []string, field string) string {
		idx, ok := columns[field]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var stores []models.StoreLocation
	for _, row := range rows[1:] {
		id := cell(row, "id")
		if id == "" {
			continue
		}
		lat, err1 := parseCoord(cell(row, "lat"))
		lng, err2 := parseCoord(cell(row, "lng"))
		if err1 != nil || err2 != nil {
			continue
		}

		stores = append(stores, models.StoreLocation{
			ID:                 id,
			Name:               cell(row, "name"),
			GMBName:            cell(row, "gmbName"),
			Address:            cell(row, "address"),
			City:               cell(row, "city"),
			State:              cell(row, "state"),
			Zip:                cell(row, "zip"),
			Lat:                lat,
			Lng:                lng,
			GoogleReviewURL:    cell(row, "googleReviewUrl"),
			GoogleReviewQRCode: cell(row, "googleReviewQrCode"),
			YelpAccount:        cell(row, "yelpAccount"),
			YelpReviewURL:      cell(row, "yelpReviewUrl"),
		})
	}
	return stores, nil
}

// ReviewsSheet is the worksheet name used for review exports.
const ReviewsSheet = "Reviews"

// WriteReviews writes accepted reviews into a single-sheet workbook at path.
func WriteReviews(path string, data []models.AcceptedReview, sheetName string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}

	// Use Stream Writer for performance
	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return err
	}

	headers := []interface{}{
		"ID", "Store ID", "Store", "Rating", "Title", "Feedback",
		"Name", "Phone", "Email", "Source", "Submitted At", "Received At",
	}
	if err := sw.SetRow("A1", headers); err != nil {
		return err
	}

	for i, r := range data {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{
			r.ID, r.StoreID, r.StoreName, r.Rating, r.Title, r.Feedback,
			r.Name, r.Phone, r.Email, string(r.Source),
			r.SubmittedAt.UTC().Format(time.RFC3339), r.ReceivedAt.UTC().Format(time.RFC3339),
		}
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}

	if err := sw.Flush(); err != nil {
		return err
	}

	f.SetActiveSheet(index)
	if sheetName != "Sheet1" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return f.SaveAs(path)
}
