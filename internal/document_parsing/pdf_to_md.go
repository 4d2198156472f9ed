// Adapted from https://github.com/koushamad/PDFtoMD/blob/master/PDFtoMD.go

package document_parsing

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/gen2brain/go-fitz"
)

const MaxDocumentSize = 10 * 1024 * 1024 // 10 MB

var hardcodedImages = regexp.MustCompile(`!\[\]\(data:image/[^)]+\)`)

// ToMarkdown converts an uploaded handbook or policy document into text that
// can be stored in the knowledge base. The format is picked by extension.
func ToMarkdown(filename string, contents []byte) (string, error) {
	if len(contents) > MaxDocumentSize {
		return "", fmt.Errorf("document %s is too large: %d bytes (max %d)", filename, len(contents), MaxDocumentSize)
	}

	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".pdf":
		return PDFToMD(contents)
	case ".html", ".htm":
		return HTMLToMD(string(contents))
	case ".md", ".markdown", ".txt", "":
		if !utf8.Valid(contents) {
			return "", fmt.Errorf("document %s is not valid utf-8 text", filename)
		}
		return string(contents), nil
	default:
		return "", fmt.Errorf("unsupported document type %q", ext)
	}
}

func PDFToMD(contents []byte) (string, error) {
	doc, err := fitz.NewFromMemory(contents)
	if err != nil {
		return "", fmt.Errorf("error opening pdf: %w", err)
	}
	defer doc.Close()

	converter := md.NewConverter("", true, nil)

	pages := make([]string, 0, doc.NumPage())
	for i := 0; i < doc.NumPage(); i++ {
		html, err := doc.HTML(i, true)
		if err != nil {
			return "", fmt.Errorf("error rendering page %d: %w", i, err)
		}

		text, err := converter.ConvertString(html)
		if err != nil {
			return "", fmt.Errorf("error converting page %d: %w", i, err)
		}

		// Inline images only bloat the prompt.
		pages = append(pages, strings.TrimSpace(removeHardcodedImages(text)))
	}

	return strings.Join(pages, "\n\n"), nil
}

func HTMLToMD(html string) (string, error) {
	text, err := md.NewConverter("", true, nil).ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("error converting html: %w", err)
	}
	return strings.TrimSpace(removeHardcodedImages(text)), nil
}

func removeHardcodedImages(content string) string {
	return hardcodedImages.ReplaceAllString(content, "")
}
