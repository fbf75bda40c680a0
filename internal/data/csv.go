package data

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mohamedkhairy/ichimoku-cloud/internal/models"
)

// CSVProvider serves bars from local backup files, one
// <TICKER>.csv per ticker with a time,open,high,low,close,volume header.
type CSVProvider struct {
	dir string
}

// NewCSVProvider creates a CSV backup provider rooted at dir.
func NewCSVProvider(dir string) *CSVProvider {
	return &CSVProvider{dir: dir}
}

// Name returns the provider name.
func (p *CSVProvider) Name() string { return "csv" }

// Fetch reads the ticker's file and filters bars to [start, end).
func (p *CSVProvider) Fetch(ctx context.Context, ticker string, start, end time.Time) ([]models.Bar, error) {
	path := filepath.Join(p.dir, strings.ToUpper(ticker)+".csv")
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoData
		}
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	bars, err := ReadBars(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	from := start.Format(models.TimeLayout)
	to := end.Format(models.TimeLayout)
	filtered := bars[:0]
	for _, b := range bars {
		if b.Time >= from && b.Time < to {
			filtered = append(filtered, b)
		}
	}
	if len(filtered) == 0 {
		return nil, ErrNoData
	}
	return filtered, nil
}

// ReadBars decodes a time,open,high,low,close,volume CSV stream.
func ReadBars(r io.Reader) ([]models.Bar, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"time", "open", "high", "low", "close", "volume"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", models.ErrMalformedBar, required)
		}
	}

	var bars []models.Bar
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv record: %w", err)
		}
		bar, err := parseRecord(record, col)
		if err != nil {
			return nil, err
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

func parseRecord(record []string, col map[string]int) (models.Bar, error) {
	num := func(name string) (float64, error) {
		v, err := strconv.ParseFloat(strings.TrimSpace(record[col[name]]), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: bad %s value %q", models.ErrMalformedBar, name, record[col[name]])
		}
		return v, nil
	}

	bar := models.Bar{Time: strings.TrimSpace(record[col["time"]])}
	if err := bar.Validate(); err != nil {
		return models.Bar{}, err
	}
	var err error
	if bar.Open, err = num("open"); err != nil {
		return models.Bar{}, err
	}
	if bar.High, err = num("high"); err != nil {
		return models.Bar{}, err
	}
	if bar.Low, err = num("low"); err != nil {
		return models.Bar{}, err
	}
	if bar.Close, err = num("close"); err != nil {
		return models.Bar{}, err
	}
	if bar.Volume, err = num("volume"); err != nil {
		return models.Bar{}, err
	}
	return bar, nil
}
