package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"resume-insight-go/internal/agent"
	"resume-insight-go/internal/config"
	"resume-insight-go/internal/logger"
	"resume-insight-go/internal/storage"
	"resume-insight-go/internal/tracing"
	"resume-insight-go/internal/types"
)

// ATSScorer 针对岗位描述给简历打分，评分按岗位描述摘要键缓存在记录文件内
type ATSScorer struct {
	chatModel model.ChatModel
	store     *storage.ArtifactStore
	prompt    config.PromptPair
}

func NewATSScorer(chatModel model.ChatModel, store *storage.ArtifactStore, prompt config.PromptPair) (*ATSScorer, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("聊天模型不能为空")
	}
	if store == nil {
		return nil, fmt.Errorf("存储层不能为空")
	}
	return &ATSScorer{chatModel: chatModel, store: store, prompt: prompt}, nil
}

// Score 计算简历相对岗位描述的 ATS 评分。
// useCache 为 true 且同一摘要键已有缓存时直接返回缓存结果，不触发模型调用；
// 为 false 时强制重新评估，新结果仍会写回缓存覆盖旧条目。
// 返回的 bool 表示结果是否来自缓存。
func (s *ATSScorer) Score(ctx context.Context, id, jobDescription string, useCache bool) (*types.ScoreEnvelope, bool, error) {
	tracer := otel.Tracer("processor")
	ctx, span := tracer.Start(ctx, "ATSScorer.Score")
	defer span.End()
	span.SetAttributes(
		attribute.String("resume.id", id),
		attribute.Bool("ats.use_cache", useCache),
	)

	if strings.TrimSpace(jobDescription) == "" {
		err := NewValidationError(id, "岗位描述不能为空")
		tracing.RecordError(span, err, tracing.ErrorTypeValidation)
		return nil, false, err
	}

	digest := storage.JobDescriptionDigest(jobDescription)
	span.SetAttributes(attribute.String("ats.jd_digest", digest))

	if useCache {
		envelope, hit, err := s.store.CachedScore(id, digest)
		if err != nil {
			tracing.RecordError(span, err, tracing.ErrorTypeStorage)
			return nil, false, err
		}
		if hit {
			logger.Debug().Str("resume_id", id).Str("digest", digest).Msg("命中评分缓存")
			return envelope, true, nil
		}
	}

	record, err := s.store.Load(id)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeStorage)
		return nil, false, err
	}

	// 评估输入只含简历本身，剔除此前累积的评分缓存
	delete(record, storage.ArtifactATSScores)
	resumeJSON, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return nil, false, fmt.Errorf("序列化评估输入失败: %w", err)
	}

	score, err := s.generateScore(ctx, string(resumeJSON), jobDescription)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeLLM)
		return nil, false, NewGenerationError(id, err.Error())
	}

	envelope := &types.ScoreEnvelope{
		JobDescriptionHash:    digest,
		JobDescriptionPreview: storage.JobDescriptionPreview(jobDescription),
		Score:                 *score,
		EvaluatedAt:           time.Now().Unix(),
	}

	if err := s.store.MergeArtifact(id, storage.ArtifactATSScores, digest, envelope); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeStorage)
		return nil, false, err
	}

	logger.Info().Str("resume_id", id).Str("digest", digest).Int("overall_score", score.OverallScore).Msg("ATS评分完成")
	return envelope, false, nil
}

func (s *ATSScorer) generateScore(ctx context.Context, resumeJSON, jobDescription string) (*types.ATSScore, error) {
	messages := []*schema.Message{
		schema.SystemMessage(s.prompt.SystemInstruction),
		schema.UserMessage(fmt.Sprintf(s.prompt.UserPrompt, resumeJSON, jobDescription)),
	}

	resp, err := s.chatModel.Generate(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("模型调用失败: %w", err)
	}

	jsonText := agent.ExtractJSONObject(resp.Content)
	if jsonText == "" {
		return nil, fmt.Errorf("模型输出中未找到 JSON 对象")
	}

	var score types.ATSScore
	if err := json.Unmarshal([]byte(jsonText), &score); err != nil {
		return nil, fmt.Errorf("反序列化评分 JSON 失败: %w", err)
	}
	if err := score.Validate(); err != nil {
		return nil, fmt.Errorf("评分校验失败: %w", err)
	}
	return &score, nil
}
