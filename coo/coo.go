// Package coo reads and writes operators in a coordinate list format understood by numpy and scipy.
//
// A matrix is stored in a directory with two files.
// shape.csv holds "rows,cols", and coo.csv holds one "value,row,col" line
// per nonzero entry in row-major order.
// The value and row fields are left empty when they repeat the previous line.
package coo

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

const (
	FnameShape = "shape.csv"
	FnameCOO   = "coo.csv"
)

// Entry is a nonzero matrix element.
type Entry struct {
	V   complex128
	Row int
	Col int
}

// Write writes m into dir.
func Write(dir string, m mat.CMatrix) error {
	rows, cols := m.Dims()
	shapePath := filepath.Join(dir, FnameShape)
	if err := os.WriteFile(shapePath, []byte(fmt.Sprintf("%d,%d", rows, cols)), 0644); err != nil {
		return errors.Wrap(err, "")
	}

	cooPath := filepath.Join(dir, FnameCOO)
	f, err := os.Create(cooPath)
	if err != nil {
		return errors.Wrap(err, "")
	}
	w := csv.NewWriter(f)

	// prev is the previously written entry for compression.
	prev := Entry{Row: -1}
	prevSet := false
Loop:
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := m.At(i, j)
			if v == 0 {
				continue
			}

			var vStr string
			if !prevSet || v != prev.V {
				vStr = FormatNumpy(v)
			}
			var rowStr string
			if i != prev.Row {
				rowStr = strconv.Itoa(i)
			}
			if err1 := w.Write([]string{vStr, rowStr, strconv.Itoa(j)}); err1 != nil && err == nil {
				err = errors.Wrap(err1, "")
				break Loop
			}
			prev, prevSet = Entry{V: v, Row: i, Col: j}, true
		}
	}

	w.Flush()
	if err1 := w.Error(); err1 != nil && err == nil {
		err = errors.Wrap(err1, "")
	}
	if err1 := f.Close(); err1 != nil && err == nil {
		err = errors.Wrap(err1, "")
	}
	return err
}

// Read reads the matrix in dir.
func Read(dir string) (*mat.CDense, error) {
	rows, cols, err := readShape(dir)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	m := mat.NewCDense(rows, cols, nil)

	r, err := NewReader(dir)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	defer r.Close()
	for {
		e, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "")
		}
		if e.Row < 0 || e.Row >= rows || e.Col < 0 || e.Col >= cols {
			return nil, errors.Errorf("%#v %d %d", e, rows, cols)
		}
		m.Set(e.Row, e.Col, e.V)
	}
	return m, nil
}

// Reader streams the entries of coo.csv.
type Reader struct {
	f *os.File
	r *csv.Reader
	i int

	prev Entry
}

func NewReader(dir string) (*Reader, error) {
	r := &Reader{i: -1}

	cooPath := filepath.Join(dir, FnameCOO)
	var err error
	r.f, err = os.Open(cooPath)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}

	r.r = csv.NewReader(r.f)
	return r, nil
}

func (r *Reader) Close() error {
	return r.f.Close()
}

// Read returns the next entry, or io.EOF.
func (r *Reader) Read() (Entry, error) {
	r.i++
	record, err := r.r.Read()
	if err == io.EOF {
		return Entry{}, io.EOF
	}
	if err != nil {
		return Entry{}, errors.Wrap(err, fmt.Sprintf("%d", r.i))
	}
	if len(record) != 3 {
		return Entry{}, errors.Errorf("%d %#v", r.i, record)
	}

	var e Entry
	switch {
	case record[0] == "":
		e.V = r.prev.V
	default:
		e.V, err = ParseNumpy(record[0])
		if err != nil {
			return Entry{}, errors.Wrap(err, fmt.Sprintf("%d %#v", r.i, record))
		}
	}

	switch {
	case record[1] == "":
		e.Row = r.prev.Row
	default:
		e.Row, err = strconv.Atoi(record[1])
		if err != nil {
			return Entry{}, errors.Wrap(err, fmt.Sprintf("%d %#v", r.i, record))
		}
	}

	e.Col, err = strconv.Atoi(record[2])
	if err != nil {
		return Entry{}, errors.Wrap(err, fmt.Sprintf("%d %#v", r.i, record))
	}

	r.prev = e
	return e, nil
}

func readShape(dir string) (int, int, error) {
	f, err := os.Open(filepath.Join(dir, FnameShape))
	if err != nil {
		return -1, -1, errors.Wrap(err, "")
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return -1, -1, errors.Wrap(err, "")
	}
	if len(records) == 0 {
		return -1, -1, errors.Errorf("empty")
	}
	row := records[0]

	if len(row) != 2 {
		return -1, -1, errors.Errorf("%#v", row)
	}
	i, err := strconv.Atoi(row[0])
	if err != nil {
		return -1, -1, errors.Wrap(err, fmt.Sprintf("%#v", row))
	}
	j, err := strconv.Atoi(row[1])
	if err != nil {
		return -1, -1, errors.Wrap(err, fmt.Sprintf("%#v", row))
	}
	if i <= 0 || j <= 0 {
		return -1, -1, errors.Errorf("%#v", row)
	}

	return i, j, nil
}

// FormatNumpy formats v the way numpy prints complex numbers, omitting the imaginary part of real numbers.
func FormatNumpy(v complex128) string {
	switch {
	case imag(v) == 0:
		return strconv.FormatFloat(real(v), 'g', -1, 64)
	default:
		s := strconv.FormatComplex(v, 'g', -1, 128)
		s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
		return strings.ReplaceAll(s, "i", "j")
	}
}

// ParseNumpy parses a number formatted by FormatNumpy.
func ParseNumpy(s string) (complex128, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), "j", "i")
	v, err := strconv.ParseComplex(s, 128)
	if err != nil {
		return 0, errors.Wrap(err, "")
	}
	return v, nil
}
