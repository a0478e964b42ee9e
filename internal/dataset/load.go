// Package dataset loads bike-rental records from CSV, XLSX, or HTTP sources.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/verte-zerg/rentstat/internal/logger"
	"github.com/verte-zerg/rentstat/internal/model"
)

const fetchTimeout = 30 * time.Second

// ErrUnsupportedFormat is returned for file extensions the loader cannot read.
var ErrUnsupportedFormat = errors.New("unsupported dataset format")

// IsRemote reports whether location is an http(s) URL.
func IsRemote(location string) bool {
	lower := strings.ToLower(location)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Load reads every record from location, a local .csv or .xlsx file or an
// http(s) URL serving CSV. Records are returned sorted by date.
func Load(ctx context.Context, location string) ([]model.Record, error) {
	if strings.TrimSpace(location) == "" {
		return nil, errors.New("dataset location is empty")
	}

	var (
		records []model.Record
		err     error
	)
	switch {
	case IsRemote(location):
		records, err = fetchCSV(ctx, location)
	case strings.EqualFold(filepath.Ext(location), ".xlsx"):
		records, err = loadXLSX(location)
	case strings.EqualFold(filepath.Ext(location), ".csv"), filepath.Ext(location) == "":
		records, err = loadCSV(location)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(location))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", location, err)
	}

	logger.Info("dataset loaded", "source", location, "records", len(records))
	return records, nil
}

func loadCSV(path string) ([]model.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return ParseCSV(f)
}

// loadXLSX reads the first sheet of a workbook.
func loadXLSX(path string) ([]model.Record, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyDataset
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return ParseRows(rows)
}

func fetchCSV(ctx context.Context, url string) ([]model.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	client := &http.Client{Timeout: fetchTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return ParseCSV(resp.Body)
}
