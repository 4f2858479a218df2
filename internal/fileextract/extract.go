package fileextract

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"
)

const (
	// MaxPDFPages limits the number of pages to process
	MaxPDFPages = 100

	// MaxExtractedTextSize limits the extracted text size (1MB)
	MaxExtractedTextSize = 1024 * 1024

	// MaxSpreadsheetRows limits rows read per sheet
	MaxSpreadsheetRows = 500
)

// Result holds text extracted from an uploaded file.
type Result struct {
	Filename  string
	Text      string
	PageCount int
	WordCount int
}

// Extract pulls plain text out of an uploaded file for use as deck prompt
// material. Dispatch is by extension: pdf, xlsx, and anything text-like.
func Extract(filename string, data []byte) (*Result, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return extractPDF(filename, data)
	case ".xlsx", ".xlsm":
		return extractSpreadsheet(filename, data)
	case ".txt", ".md", ".csv", ".json", ".yaml", ".yml":
		return extractPlainText(filename, data)
	default:
		return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(filename))
	}
}

// extractPDF extracts text from a PDF file
func extractPDF(filename string, data []byte) (*Result, error) {
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	totalPages := pdfReader.NumPage()
	if totalPages == 0 {
		return nil, fmt.Errorf("PDF has no pages")
	}
	if totalPages > MaxPDFPages {
		return nil, fmt.Errorf("PDF has too many pages (%d), max allowed is %d", totalPages, MaxPDFPages)
	}

	var textBuilder strings.Builder
	wordCount := 0

	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		page := pdfReader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip pages with extraction errors, don't fail completely
			continue
		}

		cleaned := cleanText(text)
		if cleaned != "" {
			textBuilder.WriteString(fmt.Sprintf("\n--- Page %d ---\n", pageNum))
			textBuilder.WriteString(cleaned)
			textBuilder.WriteString("\n")
			wordCount += countWords(cleaned)
		}

		if textBuilder.Len() > MaxExtractedTextSize {
			textBuilder.WriteString("\n... [Content truncated - size limit reached]")
			break
		}
	}

	text := truncate(textBuilder.String())
	return &Result{
		Filename:  filename,
		Text:      text,
		PageCount: totalPages,
		WordCount: wordCount,
	}, nil
}

// extractSpreadsheet reads .xlsx files using excelize, rendering each sheet
// as tab-separated rows.
func extractSpreadsheet(filename string, data []byte) (*Result, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	var textBuilder strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		fmt.Fprintf(&textBuilder, "\n--- Sheet: %s ---\n", sheet)
		for i, row := range rows {
			if i >= MaxSpreadsheetRows {
				textBuilder.WriteString("... [rows truncated]\n")
				break
			}
			textBuilder.WriteString(strings.Join(row, "\t"))
			textBuilder.WriteString("\n")
		}
		if textBuilder.Len() > MaxExtractedTextSize {
			break
		}
	}

	text := truncate(strings.TrimSpace(textBuilder.String()))
	if text == "" {
		return nil, fmt.Errorf("spreadsheet contains no readable data")
	}
	return &Result{
		Filename:  filename,
		Text:      text,
		WordCount: countWords(text),
	}, nil
}

func extractPlainText(filename string, data []byte) (*Result, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("file is not valid UTF-8 text")
	}
	text := truncate(cleanText(string(data)))
	if text == "" {
		return nil, fmt.Errorf("file contains no text")
	}
	return &Result{
		Filename:  filename,
		Text:      text,
		WordCount: countWords(text),
	}, nil
}

func truncate(text string) string {
	if len(text) > MaxExtractedTextSize {
		return text[:MaxExtractedTextSize] + "\n... [Content truncated]"
	}
	return text
}

// cleanText strips null bytes and normalizes whitespace
func cleanText(text string) string {
	text = strings.ReplaceAll(text, "\x00", "")
	text = normalizeWhitespace(text)
	return strings.TrimSpace(text)
}

// normalizeWhitespace collapses runs of whitespace, preserving newlines
func normalizeWhitespace(text string) string {
	var result strings.Builder
	lastWasSpace := false

	for _, r := range text {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				if r == '\n' {
					result.WriteRune('\n')
				} else {
					result.WriteRune(' ')
				}
				lastWasSpace = true
			} else if r == '\n' {
				result.WriteRune('\n')
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}
	return result.String()
}

func countWords(text string) int {
	return len(strings.Fields(text))
}
