package services

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

type FileExtractService struct{}

func NewFileExtractService() *FileExtractService {
	return &FileExtractService{}
}

// ExtractText pulls plain text from an uploaded document held in memory.
// The format is chosen by file extension.
func (s *FileExtractService) ExtractText(filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".txt", ".md":
		return s.extractPlain(data)
	case ".pdf":
		return s.extractPDF(data)
	case ".docx":
		return s.extractZipXML(data, func(name string) bool { return name == "word/document.xml" })
	case ".pptx":
		return s.extractZipXML(data, func(name string) bool {
			return strings.HasPrefix(name, "ppt/slides/slide") && strings.HasSuffix(name, ".xml")
		})
	case ".doc", ".ppt":
		return s.extractLegacyOffice(data)
	default:
		return "", fmt.Errorf("unsupported file type for text extraction: %s", ext)
	}
}

func (s *FileExtractService) extractPlain(data []byte) (string, error) {
	text := normalizeExtractedText(string(data))
	if text == "" {
		return "", fmt.Errorf("text file is empty")
	}
	return text, nil
}

func (s *FileExtractService) extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	totalPage := reader.NumPage()
	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(content)
		b.WriteString("\n")
	}

	text := normalizeExtractedText(b.String())
	if text == "" {
		return "", fmt.Errorf("no extractable text found in pdf")
	}
	return text, nil
}

// extractZipXML handles the office zip containers (docx, pptx): concatenate
// the XML parts selected by match, in name order, and strip markup.
func (s *FileExtractService) extractZipXML(data []byte, match func(string) bool) (string, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var names []string
	for _, f := range r.File {
		if match(f.Name) {
			names = append(names, f.Name)
		}
	}
	if len(names) == 0 {
		return "", fmt.Errorf("no document content found in archive")
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		f, err := r.Open(name)
		if err != nil {
			return "", err
		}
		xml, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return "", err
		}
		b.WriteString(stripOfficeXML(xml))
		b.WriteString("\n")
	}

	text := normalizeExtractedText(b.String())
	if text == "" {
		return "", fmt.Errorf("no extractable text found in document")
	}
	return text, nil
}

var printableRunPattern = regexp.MustCompile(`[\x20-\x7e\t]{4,}`)

// extractLegacyOffice is a best-effort scrape of the pre-OOXML binary
// formats (.doc, .ppt). Both are OLE containers, not zips, so we pull
// printable runs of 4+ characters and skip the structure noise.
func (s *FileExtractService) extractLegacyOffice(data []byte) (string, error) {
	runs := printableRunPattern.FindAllString(string(data), -1)
	text := normalizeExtractedText(strings.Join(runs, "\n"))
	if text == "" {
		return "", fmt.Errorf("no extractable text found in document")
	}
	return text, nil
}

var xmlTagPattern = regexp.MustCompile(`<[^>]+>`)

func stripOfficeXML(src []byte) string {
	s := string(src)

	// Paragraphs and line breaks
	s = strings.ReplaceAll(s, "</w:p>", "\n")
	s = strings.ReplaceAll(s, "</a:p>", "\n")
	s = strings.ReplaceAll(s, "<w:br/>", "\n")
	s = strings.ReplaceAll(s, "<w:br />", "\n")
	s = strings.ReplaceAll(s, "<w:tab/>", "\t")

	// Remove all xml tags
	s = xmlTagPattern.ReplaceAllString(s, "")

	// Basic XML entities
	replacer := strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&apos;", "'",
	)
	s = replacer.Replace(s)

	return s
}

func normalizeExtractedText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	lines := strings.Split(s, "\n")
	buf := bytes.Buffer{}

	emptyCount := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			emptyCount++
			if emptyCount > 1 {
				continue
			}
			buf.WriteString("\n")
			continue
		}
		emptyCount = 0
		buf.WriteString(trimmed)
		buf.WriteString("\n")
	}

	return strings.TrimSpace(buf.String())
}
