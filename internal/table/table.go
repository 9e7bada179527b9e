//-------------------------------------------------------------------------
//
// pgEdge Sales Pipeline
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package table reads and writes the gzip-compressed CSV tables the
// pipeline stages hand to each other.
package table

import (
	"compress/gzip"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// Header is the column order of the long-format sales table.
var Header = []string{"store_id", "product_id", "date", "sales_qty", "fitted_value"}

// Row is one (store, product, day) observation. Date is the integer
// day code carried through from the sales archive.
type Row struct {
	StoreID     int64
	ProductID   int64
	Date        int64
	SalesQty    int64
	FittedValue float64
}

// WriteRows writes the long-format table at path.
func WriteRows(path string, rows []Row) error {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			strconv.FormatInt(r.StoreID, 10),
			strconv.FormatInt(r.ProductID, 10),
			strconv.FormatInt(r.Date, 10),
			strconv.FormatInt(r.SalesQty, 10),
			FormatFloat(r.FittedValue),
		})
	}
	return WriteCSV(path, Header, records)
}

// ReadRows reads a long-format table written by WriteRows.
func ReadRows(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sales table: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	defer gz.Close()

	r := csv.NewReader(gz)
	r.FieldsPerRecord = len(Header)

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	for i, col := range Header {
		if header[i] != col {
			return nil, fmt.Errorf("unexpected column %q at position %d, want %q", header[i], i, col)
		}
	}

	var rows []Row
	for line := 2; ; line++ {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		row, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRow(rec []string) (Row, error) {
	var row Row
	var err error
	if row.StoreID, err = strconv.ParseInt(rec[0], 10, 64); err != nil {
		return row, fmt.Errorf("invalid store_id %q", rec[0])
	}
	if row.ProductID, err = strconv.ParseInt(rec[1], 10, 64); err != nil {
		return row, fmt.Errorf("invalid product_id %q", rec[1])
	}
	if row.Date, err = strconv.ParseInt(rec[2], 10, 64); err != nil {
		return row, fmt.Errorf("invalid date %q", rec[2])
	}
	if row.SalesQty, err = strconv.ParseInt(rec[3], 10, 64); err != nil {
		return row, fmt.Errorf("invalid sales_qty %q", rec[3])
	}
	if row.FittedValue, err = strconv.ParseFloat(rec[4], 64); err != nil {
		return row, fmt.Errorf("invalid fitted_value %q", rec[4])
	}
	return row, nil
}

// FormatFloat renders a float with the shortest representation that
// round-trips exactly.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteCSV writes a gzip-compressed CSV file at path. The file is
// staged next to the destination and renamed into place once complete.
func WriteCSV(path string, header []string, records [][]string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".salespipe-*.csv.gz")
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	if err := writeCSV(tmp, header, records); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close table: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

func writeCSV(f *os.File, header []string, records [][]string) error {
	gz := gzip.NewWriter(f)
	w := csv.NewWriter(gz)

	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, rec := range records {
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write table: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("failed to compress table: %w", err)
	}
	return nil
}
