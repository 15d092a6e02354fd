// Package csv is a wrapper around the stdlib csv library that provides a nice API for the feed loader.
//
// Because, of course, everything can be solved with another layer of indirection.
package csv

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/gtfsjson/gtfsjson/constants"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

type Options struct {
	// SkipComments drops lines starting with "//" before they reach the CSV parser.
	SkipComments bool
}

type File struct {
	name                   constants.StaticFile
	csvReader              *csv.Reader
	headerMap              map[string]int
	headerContent          []string
	rowNumber              int
	missingRequiredColumns []string
	currentRow             *row
	ioErr                  error
	closer                 func() error
}

type row struct {
	cells       []string
	missingKeys []string
}

func New(name constants.StaticFile, reader io.ReadCloser, opts Options) (*File, error) {
	var source io.Reader = reader
	if opts.SkipComments {
		source = &commentFilter{r: bufio.NewReader(reader)}
	}
	csvReader := BOMAwareCSVReader(source)
	// The header is read before record reuse is turned on, so firstRow keeps
	// its own backing array for HeaderContent.
	firstRow, err := csvReader.Read()
	csvReader.ReuseRecord = true
	if err == io.EOF {
		reader.Close()
		return nil, fmt.Errorf("CSV file contains no rows")
	} else if err != nil {
		reader.Close()
		return nil, err
	}
	m := map[string]int{}
	for i, colHeader := range firstRow {
		colHeader = strings.TrimSpace(colHeader)
		firstRow[i] = colHeader
		if _, ok := m[colHeader]; !ok {
			m[colHeader] = i
		}
	}
	return &File{
		name:          name,
		headerMap:     m,
		headerContent: firstRow,
		csvReader:     csvReader,
		closer:        reader.Close,
	}, nil
}

func (f *File) Name() constants.StaticFile {
	return f.name
}

func (f *File) HeaderContent() []string {
	return f.headerContent
}

type RequiredColumn struct {
	i int
	s string
	f *File
}

func (f *File) RequiredColumn(s string) RequiredColumn {
	i, b := f.headerMap[s]
	if !b {
		f.missingRequiredColumns = append(f.missingRequiredColumns, s)
		i = -1
	}
	return RequiredColumn{i, s, f}
}

func (p *File) MissingRequiredColumns() []string {
	if len(p.missingRequiredColumns) == 0 {
		return nil
	}
	return p.missingRequiredColumns
}

// Read returns the cell of the current row. An empty or absent cell is
// recorded in MissingRowKeys, unless the whole column is missing from the
// header, which MissingRequiredColumns already reports.
func (c RequiredColumn) Read() string {
	r := c.f.currentRow
	if c.i < 0 {
		return ""
	}
	if c.i >= len(r.cells) || r.cells[c.i] == "" {
		r.missingKeys = append(r.missingKeys, c.s)
		return ""
	}
	return r.cells[c.i]
}

type OptionalColumn struct {
	i int
	f *File
}

func (f *File) OptionalColumn(s string) OptionalColumn {
	i, b := f.headerMap[s]
	if !b {
		i = -1
	}
	return OptionalColumn{i: i, f: f}
}

func (c OptionalColumn) Read() string {
	return c.ReadOr("")
}

func (c OptionalColumn) ReadOr(s string) string {
	cells := c.f.currentRow.cells
	if c.i < 0 || c.i >= len(cells) {
		return s
	}
	return cells[c.i]
}

func (f *File) NextRow() bool {
	cells, err := f.csvReader.Read()
	if err == io.EOF {
		f.currentRow = nil
		return false
	}
	if err != nil {
		f.currentRow = nil
		f.ioErr = err
		return false
	}
	if f.currentRow == nil {
		f.currentRow = &row{}
	}
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}
	f.rowNumber += 1
	f.currentRow.cells = cells
	f.currentRow.missingKeys = nil
	return true
}

func (f *File) RowContent() []string {
	if f.rowNumber == 0 {
		return f.HeaderContent()
	}
	if f.currentRow == nil {
		return []string{}
	}
	return f.currentRow.cells
}

func (f *File) RowNumber() int {
	return f.rowNumber
}

func (f *File) MissingRowKeys() []string {
	return f.currentRow.missingKeys
}

func (f *File) Close() error {
	closeErr := f.closer()
	if f.ioErr != nil {
		return f.ioErr
	}
	return closeErr
}

// From: https://stackoverflow.com/a/76023436
//
// BOMAwareCSVReader will detect a UTF BOM (Byte Order Mark) at the
// start of the data and transform to UTF8 accordingly.
// If there is no BOM, it will read the data without any transformation.
func BOMAwareCSVReader(reader io.Reader) *csv.Reader {
	var transformer = unicode.BOMOverride(encoding.Nop.NewDecoder())
	r := csv.NewReader(transform.NewReader(reader, transformer))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	return r
}

// commentFilter drops "//" lines and whitespace-only lines.
type commentFilter struct {
	r   *bufio.Reader
	buf bytes.Buffer
	eof bool
}

func (c *commentFilter) Read(p []byte) (int, error) {
	for c.buf.Len() == 0 {
		if c.eof {
			return 0, io.EOF
		}
		line, err := c.r.ReadBytes('\n')
		if err == io.EOF {
			c.eof = true
		} else if err != nil {
			return 0, err
		}
		trimmed := bytes.TrimSpace(bytes.TrimPrefix(line, []byte("\ufeff")))
		if len(trimmed) == 0 || bytes.HasPrefix(trimmed, []byte("//")) {
			continue
		}
		c.buf.Write(line)
	}
	return c.buf.Read(p)
}
