package services

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

// DocxParserService turns a Word document on disk into plain text.
type DocxParserService interface {
	ExtractText(filePath string) (string, error)
}

type docxParserService struct{}

func NewDocxParserService() DocxParserService {
	return &docxParserService{}
}

// ExtractText returns the text of every paragraph, each followed by a newline.
func (d *docxParserService) ExtractText(filePath string) (string, error) {
	r, err := docx.ReadDocxFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open DOCX: %w", err)
	}
	defer r.Close()

	return paragraphText(r.Editable().GetContent())
}

// paragraphText walks WordprocessingML and keeps the text runs of each <w:p>.
// The docx library only exposes the raw document XML.
func paragraphText(documentXML string) (string, error) {
	dec := xml.NewDecoder(strings.NewReader(documentXML))

	var (
		out    strings.Builder
		para   strings.Builder
		inText bool
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to read document XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				para.WriteString("\t")
			case "br", "cr":
				para.WriteString("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				out.WriteString(para.String())
				out.WriteString("\n")
				para.Reset()
			}
		case xml.CharData:
			if inText {
				para.Write(t)
			}
		}
	}

	return out.String(), nil
}
