// Package recipient loads the recipient table a batch is sent to.
package recipient

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// TemplateFilename is the suggested name for the starter CSV.
const TemplateFilename = "kiit_mailer_template.csv"

var (
	ErrNoData        = errors.New("no recipients found: file is empty or has only a header")
	ErrNoEmailColumn = errors.New("recipients must have an 'Email' column")
)

// Set is an ordered table of recipient rows sharing one header.
type Set struct {
	columns []string
	index   map[string]int
	rows    []Row
}

// Row is one recipient record. It satisfies compose.Row.
type Row struct {
	set    *Set
	values []string
}

// NewSet builds a set from a header and records. Records shorter than the
// header read as empty for the missing columns, extra cells are dropped.
func NewSet(columns []string, records [][]string) *Set {
	s := &Set{
		columns: append([]string(nil), columns...),
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range s.columns {
		if _, dup := s.index[c]; !dup {
			s.index[c] = i
		}
	}
	for _, rec := range records {
		values := make([]string, len(s.columns))
		copy(values, rec)
		s.rows = append(s.rows, Row{set: s, values: values})
	}
	return s
}

// Parse reads a CSV with a header row. Blank lines are skipped.
func Parse(r io.Reader) (*Set, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoData
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read csv header")
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var records [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to read csv record")
		}
		if isBlank(rec) {
			continue
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, ErrNoData
	}
	return NewSet(header, records), nil
}

// ParseFile is Parse on a local file.
func ParseFile(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()
	return Parse(f)
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Columns returns the header in declaration order.
func (s *Set) Columns() []string {
	return append([]string(nil), s.columns...)
}

func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rows)
}

func (s *Set) Rows() []Row {
	return s.rows
}

func (s *Set) Row(i int) Row {
	return s.rows[i]
}

// EmailColumn finds the column whose name equals "email" ignoring case.
func (s *Set) EmailColumn() (string, error) {
	for _, c := range s.columns {
		if strings.EqualFold(c, "email") {
			return c, nil
		}
	}
	return "", ErrNoEmailColumn
}

// Columns returns a copy of the header.
func (r Row) Columns() []string {
	return append([]string(nil), r.set.columns...)
}

func (r Row) Lookup(column string) (string, bool) {
	i, ok := r.set.index[column]
	if !ok {
		return "", false
	}
	return r.values[i], true
}

// Get returns the value of column or "".
func (r Row) Get(column string) string {
	v, _ := r.Lookup(column)
	return v
}

// Map returns the row as a column to value map.
func (r Row) Map() map[string]string {
	m := make(map[string]string, len(r.set.columns))
	for i, c := range r.set.columns {
		if _, ok := m[c]; !ok {
			m[c] = r.values[i]
		}
	}
	return m
}

// WriteTemplate writes the starter CSV.
func WriteTemplate(w io.Writer) error {
	_, err := io.WriteString(w, "Name,Email\nJohn Doe,john.doe@kiit.ac.in")
	return errors.Wrap(err, "failed to write csv template")
}
