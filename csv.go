// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package sheetrw

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

var EncName = "utf-8"

func init() {
	// LANG=hu_HU.ISO-8859-2@euro
	lang := os.Getenv("LANG")
	if i := strings.IndexByte(lang, '.'); i >= 0 {
		lang = lang[i+1:]
		if i = strings.IndexByte(lang, '@'); i >= 0 {
			lang = lang[:i]
		}
		if lang != "" {
			EncName = strings.ToLower(lang)
		}
	}
}

// GetEncoding returns the named encoding, or nil for UTF-8.
func GetEncoding(encName string) (encoding.Encoding, error) {
	encName = strings.ToLower(encName)
	if encName == "" || encName == "utf-8" || encName == "utf8" {
		return nil, nil
	}
	enc, err := htmlindex.Get(encName)
	if err != nil {
		err = fmt.Errorf("%q: %w", encName, err)
	}
	return enc, err
}

type csvReadCloser struct {
	*csv.Reader
	io.Closer
}

// OpenCsv opens fn (stdin for "" or "-") for reading as CSV, decoding it
// from encName. The field separator is guessed from the first line.
func OpenCsv(fn, encName string) (csvReadCloser, error) {
	var enc encoding.Encoding
	if encName != "" {
		var err error
		if enc, err = GetEncoding(encName); err != nil {
			return csvReadCloser{}, err
		}
	}
	fh := os.Stdin
	if !(fn == "" || fn == "-") {
		var err error
		if fh, err = os.Open(fn); err != nil {
			return csvReadCloser{}, err
		}
	}
	r := io.ReadCloser(fh)
	if enc != nil {
		r = struct {
			io.Reader
			io.Closer
		}{enc.NewDecoder().Reader(r), r}
	}
	br := bufio.NewReaderSize(r, 1<<20)
	b, err := br.Peek(1024)
	if err != nil && len(b) == 0 {
		r.Close()
		return csvReadCloser{}, err
	}

	cr := csv.NewReader(br)
	cr.ReuseRecord = true
	cr.Comma = sniffSeparator(b)
	return csvReadCloser{cr, r}, nil
}

func sniffSeparator(b []byte) rune {
	for _, r := range string(b) {
		if r == '"' || r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r) {
			continue
		}
		return r
	}
	return ','
}

type csvWriteCloser struct {
	*csv.Writer
	enc io.WriteCloser
}

// Close flushes the CSV writer and the encoder, but not the underlying writer.
func (cw csvWriteCloser) Close() error {
	cw.Writer.Flush()
	err := cw.Writer.Error()
	if cw.enc != nil {
		if closeErr := cw.enc.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}
	return err
}

// NewCsvWriter returns a CSV writer encoding into encName.
// The returned writer must be Closed to flush its buffers.
func NewCsvWriter(w io.Writer, encName string, comma rune) (csvWriteCloser, error) {
	enc, err := GetEncoding(encName)
	if err != nil {
		return csvWriteCloser{}, err
	}
	var encW io.WriteCloser
	if enc != nil {
		encW = transform.NewWriter(w, enc.NewEncoder())
		w = encW
	}
	cw := csv.NewWriter(w)
	if comma != 0 {
		cw.Comma = comma
	}
	return csvWriteCloser{Writer: cw, enc: encW}, nil
}
