package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"resume-insight-go/internal/agent"
	"resume-insight-go/internal/config"
	"resume-insight-go/internal/logger"
	"resume-insight-go/internal/parser"
	"resume-insight-go/internal/storage"
	"resume-insight-go/internal/tracing"
	"resume-insight-go/internal/types"
)

// 批次内单个文件的处理状态
const (
	UploadStatusCreated = "created"
	UploadStatusFailed  = "failed"
)

// UploadFile 是待提取的一份简历文件
type UploadFile struct {
	Filename  string
	MediaType string
	Data      []byte
}

// UploadResult 描述批次内单个文件的处理结果。
// 失败的文件只填充 Detail，不影响批次内其他文件。
type UploadResult struct {
	Filename string `json:"filename"`
	ID       string `json:"id,omitempty"`
	Status   string `json:"status"`
	Detail   string `json:"detail,omitempty"`
}

// ResumeExtractor 负责把上传的简历文件转成结构化记录并落盘
type ResumeExtractor struct {
	chatModel     model.ChatModel
	textExtractor *parser.DocumentTextExtractor
	store         *storage.ArtifactStore
	objectStore   storage.ObjectStorage // 可选，为 nil 时跳过原始文件归档
	prompt        config.PromptPair
}

func NewResumeExtractor(
	chatModel model.ChatModel,
	textExtractor *parser.DocumentTextExtractor,
	store *storage.ArtifactStore,
	objectStore storage.ObjectStorage,
	prompt config.PromptPair,
) (*ResumeExtractor, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("聊天模型不能为空")
	}
	if textExtractor == nil {
		return nil, fmt.Errorf("文本提取器不能为空")
	}
	if store == nil {
		return nil, fmt.Errorf("存储层不能为空")
	}
	return &ResumeExtractor{
		chatModel:     chatModel,
		textExtractor: textExtractor,
		store:         store,
		objectStore:   objectStore,
		prompt:        prompt,
	}, nil
}

// ExtractBatch 顺序处理一个批次的上传文件。
// 单个文件失败只标记该文件，剩余文件继续处理，函数本身不返回错误。
func (e *ResumeExtractor) ExtractBatch(ctx context.Context, files []UploadFile) []UploadResult {
	results := make([]UploadResult, 0, len(files))
	for _, file := range files {
		id, err := e.ExtractOne(ctx, file)
		if err != nil {
			logger.Warn().Err(err).Str("filename", file.Filename).Msg("批次内文件处理失败")
			results = append(results, UploadResult{
				Filename: file.Filename,
				Status:   UploadStatusFailed,
				Detail:   err.Error(),
			})
			continue
		}
		results = append(results, UploadResult{
			Filename: file.Filename,
			ID:       id,
			Status:   UploadStatusCreated,
		})
	}
	return results
}

// ExtractOne 处理单份文件：媒体类型校验、文本提取、LLM 结构化、落盘、可选归档。
// 媒体类型校验在任何 LLM 调用之前完成。
func (e *ResumeExtractor) ExtractOne(ctx context.Context, file UploadFile) (string, error) {
	tracer := otel.Tracer("processor")
	ctx, span := tracer.Start(ctx, "ResumeExtractor.ExtractOne")
	defer span.End()
	span.SetAttributes(attribute.String("resume.filename", file.Filename))

	if !parser.IsAllowedMediaType(file.MediaType) {
		err := NewUnsupportedTypeError(file.Filename, fmt.Sprintf("媒体类型 %q 不在支持列表内", file.MediaType))
		tracing.RecordError(span, err, tracing.ErrorTypeValidation)
		return "", err
	}

	rawText, err := e.textExtractor.ExtractText(ctx, file.Data, file.Filename, file.MediaType)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeInternal)
		return "", NewExtractError(file.Filename, err.Error())
	}
	if strings.TrimSpace(rawText) == "" {
		err := NewExtractError(file.Filename, "文件中没有可提取的文本")
		tracing.RecordError(span, err, tracing.ErrorTypeValidation)
		return "", err
	}

	resume, err := e.generateResume(ctx, rawText)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeLLM)
		return "", NewGenerationError(file.Filename, err.Error())
	}

	// LLM 漏填 raw_text 时回填本地提取的文本
	if strings.TrimSpace(resume.RawText) == "" {
		resume.RawText = rawText
	}

	id, err := e.store.Create(resume)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeStorage)
		return "", NewPersistError(file.Filename, err.Error())
	}
	span.SetAttributes(attribute.String("resume.id", id))

	// 原始文件归档失败不回滚已落盘的结构化记录
	if e.objectStore != nil {
		ext := filepath.Ext(file.Filename)
		objectKey, err := e.objectStore.UploadOriginal(ctx, id, ext, bytes.NewReader(file.Data), int64(len(file.Data)), file.MediaType)
		if err != nil {
			logger.Warn().Err(err).Str("resume_id", id).Msg("原始文件归档失败")
		} else {
			if err := e.store.MergeArtifact(id, storage.KeyOriginalObjectKey, "", objectKey); err != nil {
				logger.Warn().Err(err).Str("resume_id", id).Msg("记录归档对象键失败")
			}
			logger.Debug().Str("resume_id", id).Str("object_key", objectKey).Msg("原始文件已归档")
		}
	}

	logger.Info().Str("resume_id", id).Str("filename", file.Filename).Msg("简历记录已创建")
	return id, nil
}

func (e *ResumeExtractor) generateResume(ctx context.Context, rawText string) (*types.Resume, error) {
	messages := []*schema.Message{
		schema.SystemMessage(e.prompt.SystemInstruction),
		schema.UserMessage(fmt.Sprintf(e.prompt.UserPrompt, rawText)),
	}

	resp, err := e.chatModel.Generate(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("模型调用失败: %w", err)
	}

	jsonText := agent.ExtractJSONObject(resp.Content)
	if jsonText == "" {
		return nil, fmt.Errorf("模型输出中未找到 JSON 对象")
	}

	// 所有字段均可缺省，模型没填的字段保留零值即可
	var resume types.Resume
	if err := json.Unmarshal([]byte(jsonText), &resume); err != nil {
		return nil, fmt.Errorf("反序列化简历 JSON 失败: %w", err)
	}
	return &resume, nil
}
