package processor

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-insight-go/internal/agent"
	"resume-insight-go/internal/config"
	"resume-insight-go/internal/storage"
	"resume-insight-go/internal/types"
)

var salaryPrompt = config.PromptPair{
	SystemInstruction: "You are a compensation analyst.",
	UserPrompt:        "Role: %s Location: %s Years: %s Skills: %s",
}

var upskillingPrompt = config.PromptPair{
	SystemInstruction: "You are a career advisor.",
	UserPrompt:        "Skills: %s Current: %s Target: %s\n%s\nCandidate: %s",
}

const salaryJSON = `{
	"recommended_range": {"min_salary": 150000, "max_salary": 210000, "currency": "USD", "period": "annual"},
	"market_median": 180000,
	"percentile_25": 155000,
	"percentile_75": 205000,
	"key_factors": ["Years of experience", "Cloud skills"],
	"market_trends": ["AI skills command premiums"],
	"sources": ["https://levels.fyi"],
	"analysis_summary": "Strong market for this profile."
}`

const upskillingJSON = `{
	"identified_gaps": ["Kubernetes"],
	"target_skills": ["Kubernetes", "Terraform"],
	"all_resources": [
		{"title": "Kubernetes Docs", "url": "https://kubernetes.io/docs", "type": "documentation", "skill": "Kubernetes"}
	],
	"learning_path": [
		{"phase": 1, "title": "Foundation", "duration": "4 weeks"},
		{"phase": 2, "title": "Hands-on", "duration": "6 weeks"}
	],
	"estimated_total_duration": "3 months",
	"career_impact": "Opens platform engineering roles.",
	"report_summary": "Focus on container orchestration."
}`

// stubSearchTool 返回固定搜索结果的测试替身
type stubSearchTool struct {
	queries []string
}

func (s *stubSearchTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: agent.SearchToolName,
		Desc: "stub search",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"query": {Type: schema.String, Required: true},
		}),
	}, nil
}

func (s *stubSearchTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...tool.Option) (string, error) {
	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal([]byte(argumentsInJSON), &args); err != nil {
		return "", err
	}
	s.queries = append(s.queries, args.Query)
	return `[{"title": "Salary data", "url": "https://levels.fyi", "content": "median 180k"}]`, nil
}

func newInsightsForTest(t *testing.T, mock *agent.MockChatModel) (*InsightsService, *storage.ArtifactStore, string) {
	t.Helper()
	store, err := storage.NewArtifactStore(t.TempDir())
	require.NoError(t, err)

	id, err := store.Create(&types.Resume{
		FullName: "Jane Doe",
		Contact:  &types.ContactInfo{Location: "San Francisco, CA"},
		Skills:   []string{"Python", "Go", "PostgreSQL"},
		Experience: []types.ExperienceItem{
			{JobTitle: "Senior Software Engineer", Company: "Acme"},
			{JobTitle: "Software Engineer", Company: "Startup Inc"},
		},
	})
	require.NoError(t, err)

	salaryAgent, err := agent.NewSalaryResearchAgent(mock, &stubSearchTool{}, salaryPrompt, 4)
	require.NoError(t, err)

	svc, err := NewInsightsService(store, salaryAgent, mock, upskillingPrompt)
	require.NoError(t, err)
	return svc, store, id
}

func TestSalaryRecommendationDerivesDefaults(t *testing.T) {
	mock := agent.NewMockChatModel(schema.AssistantMessage(salaryJSON, nil))
	svc, store, id := newInsightsForTest(t, mock)

	insights, err := svc.SalaryRecommendation(context.Background(), id, "", "", 0)
	require.NoError(t, err)

	// 职位与地点从简历画像推导，经验年限按每段经历约 2 年估算
	assert.Equal(t, "Senior Software Engineer", insights.JobTitle)
	assert.Equal(t, "San Francisco, CA", insights.Location)
	assert.Equal(t, 4, insights.YearsOfExperience)
	assert.Equal(t, 180000.0, insights.Recommendation.MarketMedian)
	assert.NotZero(t, insights.GeneratedAt)

	record, err := store.Load(id)
	require.NoError(t, err)

	var stored SalaryInsights
	require.NoError(t, json.Unmarshal(record[storage.ArtifactSalaryInsights], &stored))
	assert.Equal(t, insights.JobTitle, stored.JobTitle)
	assert.Equal(t, 150000.0, stored.Recommendation.RecommendedRange.MinSalary)
}

func TestSalaryRecommendationExplicitParams(t *testing.T) {
	mock := agent.NewMockChatModel(schema.AssistantMessage(salaryJSON, nil))
	svc, _, id := newInsightsForTest(t, mock)

	insights, err := svc.SalaryRecommendation(context.Background(), id, "Staff Engineer", "Berlin, Germany", 9)
	require.NoError(t, err)
	assert.Equal(t, "Staff Engineer", insights.JobTitle)
	assert.Equal(t, "Berlin, Germany", insights.Location)
	assert.Equal(t, 9, insights.YearsOfExperience)

	// 显式参数原样进入研究提示词
	require.NotEmpty(t, mock.ReceivedMessages)
	userPrompt := mock.ReceivedMessages[0][1].Content
	assert.Contains(t, userPrompt, "Staff Engineer")
	assert.Contains(t, userPrompt, "Berlin, Germany")
}

func TestSalaryRecommendationReplacesWholeArtifact(t *testing.T) {
	mock := agent.NewMockChatModel(
		schema.AssistantMessage(salaryJSON, nil),
		schema.AssistantMessage(salaryJSON, nil),
	)
	svc, store, id := newInsightsForTest(t, mock)

	_, err := svc.SalaryRecommendation(context.Background(), id, "Engineer", "Austin, TX", 3)
	require.NoError(t, err)
	_, err = svc.SalaryRecommendation(context.Background(), id, "Staff Engineer", "Remote", 8)
	require.NoError(t, err)

	record, err := store.Load(id)
	require.NoError(t, err)

	// 整体替换，只保留最后一次的参数
	var stored SalaryInsights
	require.NoError(t, json.Unmarshal(record[storage.ArtifactSalaryInsights], &stored))
	assert.Equal(t, "Staff Engineer", stored.JobTitle)
	assert.Equal(t, "Remote", stored.Location)
}

func TestSalaryRecommendationInvalidRangeNotPersisted(t *testing.T) {
	// min > max，schema 校验失败
	invalid := `{"recommended_range": {"min_salary": 220000, "max_salary": 150000, "currency": "USD", "period": "annual"}, "market_median": 180000, "analysis_summary": "x"}`
	mock := agent.NewMockChatModel(schema.AssistantMessage(invalid, nil))
	svc, store, id := newInsightsForTest(t, mock)

	_, err := svc.SalaryRecommendation(context.Background(), id, "", "", 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrGenerationFailed))

	record, err := store.Load(id)
	require.NoError(t, err)
	_, ok := record[storage.ArtifactSalaryInsights]
	assert.False(t, ok, "校验失败的结果不得落盘")
}

func TestSalaryRecommendationRecordNotFound(t *testing.T) {
	mock := agent.NewMockChatModel(schema.AssistantMessage(salaryJSON, nil))
	svc, _, _ := newInsightsForTest(t, mock)

	_, err := svc.SalaryRecommendation(context.Background(), "missing-id", "", "", 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrRecordNotFound))
	assert.Equal(t, 0, mock.CallCount())
}

func TestUpskillingFoldsCachedScoreContext(t *testing.T) {
	mock := agent.NewMockChatModel(schema.AssistantMessage(upskillingJSON, nil))
	svc, store, id := newInsightsForTest(t, mock)

	jd := "Platform engineer position requiring Kubernetes."
	digest := storage.JobDescriptionDigest(jd)
	envelope := types.ScoreEnvelope{
		JobDescriptionHash: digest,
		Score: types.ATSScore{
			OverallScore:    65,
			Gaps:            []string{"No Kubernetes experience"},
			MissingKeywords: []string{"Kubernetes", "Helm"},
			Recommendations: []string{"Add container projects"},
		},
	}
	require.NoError(t, store.MergeArtifact(id, storage.ArtifactATSScores, digest, envelope))

	insights, err := svc.UpskillingRecommendations(context.Background(), id, "Platform Engineer", jd, "")
	require.NoError(t, err)
	assert.Equal(t, "Platform Engineer", insights.TargetRole)
	assert.Equal(t, []string{"Kubernetes"}, insights.Report.IdentifiedGaps)

	// 缓存评分里的差距信息并入了提示词
	require.NotEmpty(t, mock.ReceivedMessages)
	userPrompt := mock.ReceivedMessages[0][1].Content
	assert.Contains(t, userPrompt, "No Kubernetes experience")
	assert.Contains(t, userPrompt, "Helm")
	assert.Contains(t, userPrompt, "65/100")

	record, err := store.Load(id)
	require.NoError(t, err)
	var stored UpskillingInsights
	require.NoError(t, json.Unmarshal(record[storage.ArtifactUpskillingReport], &stored))
	assert.Equal(t, "Platform Engineer", stored.TargetRole)
	assert.Len(t, stored.Report.LearningPath, 2)
}

func TestUpskillingAcceptsDigestDirectly(t *testing.T) {
	// 评分响应返回的摘要键可以直接用于上下文查找，不必重传岗位描述全文
	mock := agent.NewMockChatModel(schema.AssistantMessage(upskillingJSON, nil))
	svc, store, id := newInsightsForTest(t, mock)

	digest := storage.JobDescriptionDigest("SRE position requiring Terraform.")
	envelope := types.ScoreEnvelope{
		JobDescriptionHash: digest,
		Score: types.ATSScore{
			OverallScore: 58,
			Gaps:         []string{"No Terraform modules in production"},
		},
	}
	require.NoError(t, store.MergeArtifact(id, storage.ArtifactATSScores, digest, envelope))

	_, err := svc.UpskillingRecommendations(context.Background(), id, "SRE", "", digest)
	require.NoError(t, err)

	userPrompt := mock.ReceivedMessages[0][1].Content
	assert.Contains(t, userPrompt, "58/100")
	assert.Contains(t, userPrompt, "No Terraform modules in production")
}

func TestUpskillingWithoutCachedScore(t *testing.T) {
	mock := agent.NewMockChatModel(schema.AssistantMessage(upskillingJSON, nil))
	svc, _, id := newInsightsForTest(t, mock)

	// 岗位描述没有对应的评分缓存时照常生成
	insights, err := svc.UpskillingRecommendations(context.Background(), id, "", "Unscored job description.", "")
	require.NoError(t, err)

	// 目标职位缺省为当前职位
	assert.Equal(t, "Senior Software Engineer", insights.TargetRole)

	userPrompt := mock.ReceivedMessages[0][1].Content
	assert.Contains(t, userPrompt, "No prior ATS evaluation")
}

func TestUpskillingRejectsNonSequentialPhases(t *testing.T) {
	// 阶段跳号，schema 校验失败
	invalid := `{"learning_path": [{"phase": 1, "title": "A", "duration": "1w"}, {"phase": 3, "title": "B", "duration": "1w"}], "estimated_total_duration": "2w", "career_impact": "x", "report_summary": "y"}`
	mock := agent.NewMockChatModel(schema.AssistantMessage(invalid, nil))
	svc, store, id := newInsightsForTest(t, mock)

	_, err := svc.UpskillingRecommendations(context.Background(), id, "", "", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrGenerationFailed))

	record, err := store.Load(id)
	require.NoError(t, err)
	_, ok := record[storage.ArtifactUpskillingReport]
	assert.False(t, ok)
}
