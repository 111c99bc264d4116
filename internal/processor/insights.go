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

// 简历画像缺失时使用的兜底默认值
const (
	defaultJobTitle = "Software Engineer"
	defaultLocation = "United States"
)

// 传给研究 agent 的技能数量上限
const maxProfileSkills = 10

// SalaryInsights 是持久化在 salary_insights 键下的完整产物，
// 包含实际使用的岗位画像参数和生成时间
type SalaryInsights struct {
	JobTitle          string                     `json:"job_title"`
	Location          string                     `json:"location"`
	YearsOfExperience int                        `json:"years_of_experience"`
	Recommendation    types.SalaryRecommendation `json:"recommendation"`
	GeneratedAt       int64                      `json:"generated_at"`
}

// UpskillingInsights 是持久化在 upskilling_report 键下的完整产物
type UpskillingInsights struct {
	TargetRole  string                 `json:"target_role"`
	Report      types.UpskillingReport `json:"report"`
	GeneratedAt int64                  `json:"generated_at"`
}

// InsightsService 基于已提取的简历记录生成薪资与技能提升洞察
type InsightsService struct {
	store            *storage.ArtifactStore
	salaryAgent      *agent.SalaryResearchAgent
	chatModel        model.ChatModel
	upskillingPrompt config.PromptPair
}

func NewInsightsService(
	store *storage.ArtifactStore,
	salaryAgent *agent.SalaryResearchAgent,
	chatModel model.ChatModel,
	upskillingPrompt config.PromptPair,
) (*InsightsService, error) {
	if store == nil {
		return nil, fmt.Errorf("存储层不能为空")
	}
	if salaryAgent == nil {
		return nil, fmt.Errorf("薪资研究 agent 不能为空")
	}
	if chatModel == nil {
		return nil, fmt.Errorf("聊天模型不能为空")
	}
	return &InsightsService{
		store:            store,
		salaryAgent:      salaryAgent,
		chatModel:        chatModel,
		upskillingPrompt: upskillingPrompt,
	}, nil
}

// SalaryRecommendation 生成薪资洞察并整体替换记录中的 salary_insights 产物。
// 未显式给出的参数从简历画像推导；任一环节失败都不会写入部分结果。
func (s *InsightsService) SalaryRecommendation(ctx context.Context, id, jobTitle, location string, years int) (*SalaryInsights, error) {
	tracer := otel.Tracer("processor")
	ctx, span := tracer.Start(ctx, "InsightsService.SalaryRecommendation")
	defer span.End()
	span.SetAttributes(attribute.String("resume.id", id))

	resume, err := s.loadResume(id)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeStorage)
		return nil, err
	}

	if strings.TrimSpace(jobTitle) == "" {
		jobTitle = resume.MostRecentJobTitle()
		if strings.TrimSpace(jobTitle) == "" {
			jobTitle = defaultJobTitle
		}
	}
	if strings.TrimSpace(location) == "" {
		location = resume.ContactLocation()
		if strings.TrimSpace(location) == "" {
			location = defaultLocation
		}
	}
	if years <= 0 {
		// 简历日期是自由文本，无法可靠解析，按每段经历约 2 年估算
		years = 2 * len(resume.Experience)
	}

	skills := resume.Skills
	if len(skills) > maxProfileSkills {
		skills = skills[:maxProfileSkills]
	}

	rec, err := s.salaryAgent.Research(ctx, jobTitle, location, years, skills)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeLLM)
		return nil, NewGenerationError(id, err.Error())
	}

	insights := &SalaryInsights{
		JobTitle:          jobTitle,
		Location:          location,
		YearsOfExperience: years,
		Recommendation:    *rec,
		GeneratedAt:       time.Now().Unix(),
	}

	if err := s.store.MergeArtifact(id, storage.ArtifactSalaryInsights, "", insights); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeStorage)
		return nil, err
	}

	logger.Info().Str("resume_id", id).Str("job_title", jobTitle).Str("location", location).Msg("薪资洞察已生成")
	return insights, nil
}

// UpskillingRecommendations 生成技能提升报告并整体替换 upskilling_report 产物。
// 给定岗位描述（或直接给定其摘要键）且存在对应评分缓存时，
// 把评分中的差距项折叠进提示词上下文；
// 没有缓存评分不视为错误，报告仅基于简历本身生成。
func (s *InsightsService) UpskillingRecommendations(ctx context.Context, id, targetRole, jobDescription, jobDescriptionHash string) (*UpskillingInsights, error) {
	tracer := otel.Tracer("processor")
	ctx, span := tracer.Start(ctx, "InsightsService.UpskillingRecommendations")
	defer span.End()
	span.SetAttributes(attribute.String("resume.id", id))

	resume, err := s.loadResume(id)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeStorage)
		return nil, err
	}

	currentRole := resume.MostRecentJobTitle()
	if strings.TrimSpace(currentRole) == "" {
		currentRole = defaultJobTitle
	}
	if strings.TrimSpace(targetRole) == "" {
		targetRole = currentRole
	}

	atsContext := s.buildATSContext(id, jobDescription, jobDescriptionHash)
	span.SetAttributes(attribute.Bool("upskilling.has_ats_context", atsContext != ""))

	report, err := s.generateReport(ctx, resume, currentRole, targetRole, atsContext)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeLLM)
		return nil, NewGenerationError(id, err.Error())
	}

	insights := &UpskillingInsights{
		TargetRole:  targetRole,
		Report:      *report,
		GeneratedAt: time.Now().Unix(),
	}

	if err := s.store.MergeArtifact(id, storage.ArtifactUpskillingReport, "", insights); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeStorage)
		return nil, err
	}

	logger.Info().Str("resume_id", id).Str("target_role", targetRole).Msg("技能提升报告已生成")
	return insights, nil
}

// buildATSContext 从缓存的评分中提取差距信息，拼成提示词可用的上下文段落。
// 调用方可以直接传评分响应里的摘要键，否则从岗位描述全文推导；
// 两者都没有或缓存未命中时返回空字符串。
func (s *InsightsService) buildATSContext(id, jobDescription, jobDescriptionHash string) string {
	digest := strings.TrimSpace(jobDescriptionHash)
	if digest == "" {
		if strings.TrimSpace(jobDescription) == "" {
			return ""
		}
		digest = storage.JobDescriptionDigest(jobDescription)
	}
	envelope, hit, err := s.store.CachedScore(id, digest)
	if err != nil || !hit {
		if err != nil {
			logger.Warn().Err(err).Str("resume_id", id).Msg("读取评分缓存失败，忽略 ATS 上下文")
		}
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "A prior ATS evaluation against this job description scored the resume %d/100.\n", envelope.Score.OverallScore)
	if len(envelope.Score.Gaps) > 0 {
		fmt.Fprintf(&sb, "Identified gaps: %s.\n", strings.Join(envelope.Score.Gaps, "; "))
	}
	if len(envelope.Score.MissingKeywords) > 0 {
		fmt.Fprintf(&sb, "Missing keywords: %s.\n", strings.Join(envelope.Score.MissingKeywords, ", "))
	}
	if len(envelope.Score.Recommendations) > 0 {
		fmt.Fprintf(&sb, "Prior recommendations: %s.\n", strings.Join(envelope.Score.Recommendations, "; "))
	}
	return sb.String()
}

func (s *InsightsService) generateReport(ctx context.Context, resume *types.Resume, currentRole, targetRole, atsContext string) (*types.UpskillingReport, error) {
	name := resume.FullName
	if strings.TrimSpace(name) == "" {
		name = "the candidate"
	}
	if atsContext == "" {
		atsContext = "No prior ATS evaluation is available."
	}

	messages := []*schema.Message{
		schema.SystemMessage(s.upskillingPrompt.SystemInstruction),
		schema.UserMessage(fmt.Sprintf(s.upskillingPrompt.UserPrompt,
			strings.Join(resume.Skills, ", "), currentRole, targetRole, atsContext, name)),
	}

	resp, err := s.chatModel.Generate(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("模型调用失败: %w", err)
	}

	jsonText := agent.ExtractJSONObject(resp.Content)
	if jsonText == "" {
		return nil, fmt.Errorf("模型输出中未找到 JSON 对象")
	}

	var report types.UpskillingReport
	if err := json.Unmarshal([]byte(jsonText), &report); err != nil {
		return nil, fmt.Errorf("反序列化报告 JSON 失败: %w", err)
	}
	if err := report.Validate(); err != nil {
		return nil, fmt.Errorf("报告校验失败: %w", err)
	}
	return &report, nil
}

// loadResume 读取记录并把简历字段解码为结构化类型，派生产物键被忽略
func (s *InsightsService) loadResume(id string) (*types.Resume, error) {
	record, err := s.store.Load(id)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("序列化简历记录 %s 失败: %w", id, err)
	}

	var resume types.Resume
	if err := json.Unmarshal(data, &resume); err != nil {
		return nil, fmt.Errorf("解析简历记录 %s 失败: %w", id, err)
	}
	return &resume, nil
}
