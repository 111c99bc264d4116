package parser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsAllowedMediaType(t *testing.T) {
	assert.True(t, IsAllowedMediaType("application/pdf"))
	assert.True(t, IsAllowedMediaType("application/vnd.openxmlformats-officedocument.wordprocessingml.document"))
	assert.True(t, IsAllowedMediaType("text/plain"))

	// 带参数与大小写混合的 Content-Type
	assert.True(t, IsAllowedMediaType("text/plain; charset=utf-8"))
	assert.True(t, IsAllowedMediaType("Application/PDF"))
	assert.True(t, IsAllowedMediaType("  application/pdf  "))

	assert.False(t, IsAllowedMediaType("image/png"))
	assert.False(t, IsAllowedMediaType("application/msword")) // 旧版 .doc 不支持
	assert.False(t, IsAllowedMediaType("application/json"))
	assert.False(t, IsAllowedMediaType(""))
}

func TestExtractTextPlain(t *testing.T) {
	extractor, err := NewDocumentTextExtractor(context.Background())
	require.NoError(t, err)

	content := "Jane Doe\nSenior Software Engineer\nSkills: Python, Go"
	text, err := extractor.ExtractText(context.Background(), []byte(content), "resume.txt", "text/plain")
	require.NoError(t, err)
	assert.Equal(t, content, text)

	// Content-Type 带字符集参数同样可用
	text, err = extractor.ExtractText(context.Background(), []byte(content), "resume.txt", "text/plain; charset=utf-8")
	require.NoError(t, err)
	assert.Equal(t, content, text)
}

func TestExtractTextUnsupported(t *testing.T) {
	extractor, err := NewDocumentTextExtractor(context.Background())
	require.NoError(t, err)

	_, err = extractor.ExtractText(context.Background(), []byte{0x89}, "image.png", "image/png")
	require.Error(t, err)
}

func TestStripXMLTags(t *testing.T) {
	in := `<w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p><w:p><w:r><w:t>Engineer</w:t></w:r></w:p>`
	out := stripXMLTags(in)
	assert.Contains(t, out, "Jane Doe")
	assert.Contains(t, out, "Engineer")
	assert.NotContains(t, out, "<w:")

	// 段落边界转换为换行
	assert.Contains(t, out, "\n")
}
