package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
)

const (
	// docxMainPart is the conventional path of the document body inside
	// the OOXML zip container.
	docxMainPart = "word/document.xml"

	contentTypesPart = "[Content_Types].xml"

	docxMainContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
)

// wtTag matches <w:t>text</w:t> including attribute-bearing forms such
// as <w:t xml:space="preserve">. Matching text runs directly keeps
// extraction working on documents whose paragraph elements carry
// revision attributes, which defeat paragraph-level regexes.
var wtTag = regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`)

// partNameBefore and partNameAfter extract the PartName of the main
// document override from [Content_Types].xml, in either attribute order.
var (
	partNameBefore = regexp.MustCompile(`<Override[^>]+PartName="([^"]+)"[^>]+ContentType="` + regexp.QuoteMeta(docxMainContentType) + `"`)
	partNameAfter  = regexp.MustCompile(`<Override[^>]+ContentType="` + regexp.QuoteMeta(docxMainContentType) + `"[^>]+PartName="([^"]+)"`)
)

// extractDOCX extracts text from .docx bytes. A .docx file is a zip
// containing word/document.xml; all <w:t> text runs are joined with
// spaces.
func extractDOCX(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open docx: not a zip: %w", err)
	}

	docPath := mainDocumentPath(zr)
	if docPath == "" {
		docPath = docxMainPart
	}

	docXML, err := readZipFile(zr, docPath)
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}

	parts := wtTag.FindAllStringSubmatch(string(docXML), -1)
	var b strings.Builder
	for _, p := range parts {
		run := strings.TrimSpace(p[1])
		if run == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(run)
	}
	return b.String(), nil
}

// mainDocumentPath resolves the main document part declared in
// [Content_Types].xml. Returns "" when undeclared, which falls back to
// the conventional path.
func mainDocumentPath(zr *zip.Reader) string {
	data, err := readZipFile(zr, contentTypesPart)
	if err != nil {
		return ""
	}
	content := string(data)
	if m := partNameBefore.FindStringSubmatch(content); len(m) > 1 {
		return strings.TrimPrefix(m[1], "/")
	}
	if m := partNameAfter.FindStringSubmatch(content); len(m) > 1 {
		return strings.TrimPrefix(m[1], "/")
	}
	return ""
}

func readZipFile(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("%s not found in archive", name)
}
