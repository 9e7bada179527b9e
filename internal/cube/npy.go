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
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var npyMagic = []byte("\x93NUMPY")

// writeNPY encodes a C-ordered array in NPY format version 1.0. The
// header is padded so the payload starts on a 64-byte boundary, the
// alignment modern NumPy writes.
func writeNPY(w io.Writer, dtype string, shape []int, data any) error {
	header := fmt.Sprintf("{'descr': '%s', 'fortran_order': False, 'shape': %s, }",
		dtype, pyTuple(shape))

	total := len(npyMagic) + 2 + 2 + len(header) + 1
	if pad := total % 64; pad != 0 {
		header += strings.Repeat(" ", 64-pad)
	}
	header += "\n"
	if len(header) > 0xffff {
		return fmt.Errorf("npy header too large: %d bytes", len(header))
	}

	buf := make([]byte, 0, len(npyMagic)+4+len(header))
	buf = append(buf, npyMagic...)
	buf = append(buf, 1, 0)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(header)))
	buf = append(buf, header...)
	if _, err := w.Write(buf); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, data)
}

// pyTuple renders a shape the way Python spells tuples, including the
// trailing comma for a single axis.
func pyTuple(shape []int) string {
	if len(shape) == 1 {
		return fmt.Sprintf("(%d,)", shape[0])
	}
	parts := make([]string, len(shape))
	for i, d := range shape {
		parts[i] = strconv.Itoa(d)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
