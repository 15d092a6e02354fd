// Package testutil builds in-memory feeds for tests.
package testutil

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing/fstest"
)

// FeedBuilder collects table contents keyed by file name.
type FeedBuilder struct {
	m map[string]string
}

func NewFeedBuilder() *FeedBuilder {
	return &FeedBuilder{m: map[string]string{}}
}

// Add sets the content of a table, one argument per line. Calling Add again
// for the same file replaces it.
func (b *FeedBuilder) Add(fileName string, lines ...string) *FeedBuilder {
	b.m[fileName] = strings.Join(lines, "\n")
	return b
}

func (b *FeedBuilder) FS() fstest.MapFS {
	fsys := fstest.MapFS{}
	for fileName, content := range b.m {
		fsys[fileName] = &fstest.MapFile{Data: []byte(content), Mode: 0644}
	}
	return fsys
}

// Zip returns the tables as a zip archive.
func (b *FeedBuilder) Zip() []byte {
	var buf bytes.Buffer
	zipWriter := zip.NewWriter(&buf)
	for fileName, fileContent := range b.m {
		fileWriter, err := zipWriter.Create(fileName)
		if err != nil {
			panic(err)
		}
		if _, err := io.Copy(fileWriter, bytes.NewBufferString(fileContent)); err != nil {
			panic(err)
		}
	}
	if err := zipWriter.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
