package services

import (
	"fmt"
	"strings"

	"alfredoptarigan/career-planner/internal/logger"
)

// DocumentExtractor returns best-effort plain text for an uploaded résumé.
// Failures come back as readable text, never as an error, so a bad upload
// still produces a prompt.
type DocumentExtractor interface {
	Extract(filePath, ext string) string
}

type documentExtractor struct {
	pdfParser  PDFParserService
	docxParser DocxParserService
	log        *logger.Logger
}

func NewDocumentExtractor(pdfParser PDFParserService, docxParser DocxParserService, log *logger.Logger) DocumentExtractor {
	if log == nil {
		log = logger.Nop()
	}
	return &documentExtractor{
		pdfParser:  pdfParser,
		docxParser: docxParser,
		log:        log,
	}
}

func UnsupportedFormatMessage(ext string) string {
	return fmt.Sprintf("不支持的文件格式: %s", ext)
}

func ParseErrorMessage(err error) string {
	return fmt.Sprintf("解析文件时出错: %v", err)
}

func (e *documentExtractor) Extract(filePath, ext string) (text string) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	// The third-party parsers panic on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("resume extraction panicked", "path", filePath, "ext", ext, "panic", r)
			text = ParseErrorMessage(fmt.Errorf("%v", r))
		}
	}()

	var err error
	switch ext {
	case ".pdf":
		text, err = e.pdfParser.ExtractText(filePath)
	case ".doc", ".docx":
		text, err = e.docxParser.ExtractText(filePath)
	default:
		e.log.Warn("unsupported resume format", "path", filePath, "ext", ext)
		return UnsupportedFormatMessage(ext)
	}

	if err != nil {
		e.log.Warn("resume extraction failed", "path", filePath, "ext", ext, "error", err)
		return ParseErrorMessage(err)
	}

	e.log.Debug("resume extracted", "path", filePath, "ext", ext, "chars", len([]rune(text)))
	return text
}
