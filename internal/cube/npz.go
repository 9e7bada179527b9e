//-------------------------------------------------------------------------
//
// pgEdge Sales Pipeline
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package cube

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sbinet/npyio"
)

// ReadArchive loads a packed sales archive. The archive must contain
// the dates, synth_sales_data and fitted_line members with agreeing
// shapes.
func ReadArchive(path string) (*Cube, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sales archive: %w", err)
	}
	defer zr.Close()

	members := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		members[strings.TrimSuffix(f.Name, ".npy")] = f
	}

	dates, datesShape, err := readInt64Member(members, DatesArray)
	if err != nil {
		return nil, err
	}
	sales, salesShape, err := readInt64Member(members, SalesArray)
	if err != nil {
		return nil, err
	}
	fitted, fittedShape, err := readFloat64Member(members, FittedArray)
	if err != nil {
		return nil, err
	}

	if len(salesShape) != 3 {
		return nil, &ShapeError{Array: SalesArray, Got: salesShape, Want: make([]int, 3)}
	}
	if len(datesShape) != 1 {
		return nil, &ShapeError{Array: DatesArray, Got: datesShape, Want: make([]int, 1)}
	}
	if !equalShape(fittedShape, salesShape) {
		return nil, &ShapeError{Array: FittedArray, Got: fittedShape, Want: salesShape}
	}
	if datesShape[0] != salesShape[2] {
		return nil, &ShapeError{Array: DatesArray, Got: datesShape, Want: []int{salesShape[2]}}
	}

	c := &Cube{
		Stores:   salesShape[0],
		Products: salesShape[1],
		Days:     salesShape[2],
		Dates:    dates,
		Sales:    sales,
		Fitted:   fitted,
	}
	return c, c.Validate()
}

// WriteArchive writes the cube as a packed archive. The file is staged
// next to the destination and renamed into place once complete.
func WriteArchive(path string, c *Cube) error {
	if err := c.Validate(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".salespipe-*.npz")
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	if err := writeArchive(tmp, c); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close archive: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

func writeArchive(f *os.File, c *Cube) error {
	zw := zip.NewWriter(f)
	shape := c.Shape()

	if err := writeMember(zw, DatesArray, "<i8", []int{c.Days}, c.Dates); err != nil {
		return err
	}
	if err := writeMember(zw, SalesArray, "<i8", shape, c.Sales); err != nil {
		return err
	}
	if err := writeMember(zw, FittedArray, "<f8", shape, c.Fitted); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive: %w", err)
	}
	return nil
}

func writeMember(zw *zip.Writer, name, dtype string, shape []int, data any) error {
	w, err := zw.Create(name + ".npy")
	if err != nil {
		return fmt.Errorf("failed to create member %s: %w", name, err)
	}
	if err := writeNPY(w, dtype, shape, data); err != nil {
		return fmt.Errorf("failed to write member %s: %w", name, err)
	}
	return nil
}

func readInt64Member(members map[string]*zip.File, name string) ([]int64, []int, error) {
	r, shape, err := openMember(members, name, "i8")
	if err != nil {
		return nil, nil, err
	}
	defer r.close()

	var data []int64
	if err := r.npy.Read(&data); err != nil {
		return nil, nil, fmt.Errorf("failed to read member %s: %w", name, err)
	}
	return data, shape, nil
}

func readFloat64Member(members map[string]*zip.File, name string) ([]float64, []int, error) {
	r, shape, err := openMember(members, name, "f8")
	if err != nil {
		return nil, nil, err
	}
	defer r.close()

	var data []float64
	if err := r.npy.Read(&data); err != nil {
		return nil, nil, fmt.Errorf("failed to read member %s: %w", name, err)
	}
	return data, shape, nil
}

type memberReader struct {
	rc  io.ReadCloser
	npy *npyio.Reader
}

func (r *memberReader) close() {
	r.rc.Close()
}

func openMember(members map[string]*zip.File, name, elem string) (*memberReader, []int, error) {
	f, ok := members[name]
	if !ok {
		return nil, nil, fmt.Errorf("archive member %s: %w", name, fs.ErrNotExist)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open member %s: %w", name, err)
	}
	r, err := npyio.NewReader(rc)
	if err != nil {
		rc.Close()
		return nil, nil, fmt.Errorf("failed to read member %s: %w", name, err)
	}
	if r.Header.Descr.Fortran {
		rc.Close()
		return nil, nil, fmt.Errorf("member %s is Fortran ordered", name)
	}
	if dt := r.Header.Descr.Type; !strings.HasSuffix(dt, elem) {
		rc.Close()
		return nil, nil, fmt.Errorf("member %s has dtype %s, want %s", name, dt, elem)
	}
	shape := append([]int(nil), r.Header.Descr.Shape...)
	return &memberReader{rc: rc, npy: r}, shape, nil
}

func equalShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
