package parser

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	einoParser "github.com/cloudwego/eino/components/document/parser"
	"github.com/nguyenthenguyen/docx"

	"resume-insight-go/internal/logger"
)

// 支持的简历文件媒体类型
const (
	MediaTypePDF  = "application/pdf"
	MediaTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MediaTypeTXT  = "text/plain"
)

// IsAllowedMediaType 判断媒体类型是否在支持列表内。
// Content-Type 可能携带参数（如 text/plain; charset=utf-8），只比较主类型。
func IsAllowedMediaType(mediaType string) bool {
	base := strings.TrimSpace(strings.ToLower(mediaType))
	if idx := strings.Index(base, ";"); idx != -1 {
		base = strings.TrimSpace(base[:idx])
	}
	switch base {
	case MediaTypePDF, MediaTypeDOCX, MediaTypeTXT:
		return true
	}
	return false
}

// DocumentTextExtractor 按媒体类型把上传的简历文件转换为纯文本
type DocumentTextExtractor struct {
	pdfParser *pdf.PDFParser
}

// NewDocumentTextExtractor 初始化文本提取器。
// PDF 解析配置为不按页分割，整份文档作为连续文本返回。
func NewDocumentTextExtractor(ctx context.Context) (*DocumentTextExtractor, error) {
	p, err := pdf.NewPDFParser(ctx, &pdf.Config{
		ToPages: false,
	})
	if err != nil {
		return nil, fmt.Errorf("创建 PDF 解析器失败: %w", err)
	}
	return &DocumentTextExtractor{pdfParser: p}, nil
}

// ExtractText 从文件字节中提取纯文本。不支持的媒体类型由调用方在入口处拦截，
// 此处再次校验并返回错误，保证单一入口之外的调用也安全。
func (e *DocumentTextExtractor) ExtractText(ctx context.Context, data []byte, filename, mediaType string) (string, error) {
	base := strings.ToLower(strings.TrimSpace(mediaType))
	if idx := strings.Index(base, ";"); idx != -1 {
		base = strings.TrimSpace(base[:idx])
	}

	switch base {
	case MediaTypePDF:
		return e.extractPDF(ctx, data, filename)
	case MediaTypeDOCX:
		return extractDOCX(data)
	case MediaTypeTXT:
		return string(data), nil
	default:
		return "", fmt.Errorf("不支持的媒体类型: %s", mediaType)
	}
}

func (e *DocumentTextExtractor) extractPDF(ctx context.Context, data []byte, filename string) (string, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	docs, err := e.pdfParser.Parse(ctx, bytes.NewReader(data),
		einoParser.WithURI(filename),
		einoParser.WithExtraMeta(map[string]interface{}{
			"source_file": filename,
		}),
	)
	if err != nil {
		return "", fmt.Errorf("eino PDF 解析失败 (URI %s): %w", filename, err)
	}
	if len(docs) == 0 {
		return "", fmt.Errorf("eino PDF 解析未返回任何文档 (URI %s)", filename)
	}

	var sb strings.Builder
	for i, doc := range docs {
		sb.WriteString(doc.Content)
		if i < len(docs)-1 {
			sb.WriteString("\n\n")
		}
	}

	logger.Debug().
		Str("file", filename).
		Int("chars", sb.Len()).
		Dur("duration", time.Since(start)).
		Msg("PDF 文本提取完成")

	return sb.String(), nil
}

func extractDOCX(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("读取 DOCX 文件失败: %w", err)
	}
	defer doc.Close()

	content := doc.Editable().GetContent()
	return stripXMLTags(content), nil
}

// stripXMLTags 去除 DOCX 内容中残留的 XML 标签，保留段落换行
func stripXMLTags(content string) string {
	content = strings.ReplaceAll(content, "</w:p>", "\n")
	var sb strings.Builder
	inTag := false
	for _, r := range content {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			sb.WriteRune(r)
		}
	}
	return strings.TrimSpace(sb.String())
}
