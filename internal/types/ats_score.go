package types

import "fmt"

// SectionScores 各维度的分项打分，未评估的维度保持为 nil
type SectionScores struct {
	SkillsMatch         *int `json:"skills_match,omitempty"`         // 技能匹配度 (0-100)
	ExperienceRelevance *int `json:"experience_relevance,omitempty"` // 经验相关性 (0-100)
	EducationFit        *int `json:"education_fit,omitempty"`        // 教育背景匹配度 (0-100)
	KeywordOptimization *int `json:"keyword_optimization,omitempty"` // 关键词覆盖度 (0-100)
}

// ATSScore 简历相对某个岗位描述的 ATS 兼容性评分
type ATSScore struct {
	OverallScore    int           `json:"overall_score"`              // 整体评分 (0-100)
	SectionScores   SectionScores `json:"section_scores"`             // 分项评分
	Strengths       []string      `json:"strengths,omitempty"`        // 与岗位要求契合的亮点
	Gaps            []string      `json:"gaps,omitempty"`             // 不足或缺失
	Recommendations []string      `json:"recommendations,omitempty"`  // 改进建议
	MissingKeywords []string      `json:"missing_keywords,omitempty"` // 岗位描述中简历缺失的关键词
	MatchedKeywords []string      `json:"matched_keywords,omitempty"` // 简历与岗位描述共同出现的关键词
	Summary         string        `json:"summary,omitempty"`          // 评估摘要
}

// ScoreEnvelope 缓存中一条评分记录：摘要键、岗位描述预览以及完整评分
type ScoreEnvelope struct {
	JobDescriptionHash    string   `json:"job_description_hash"`
	JobDescriptionPreview string   `json:"job_description_preview"`
	Score                 ATSScore `json:"score"`
	EvaluatedAt           int64    `json:"evaluated_at,omitempty"` // Unix 时间戳（秒）
}

// Validate 校验评分是否符合 schema 约束
func (s *ATSScore) Validate() error {
	if s.OverallScore < 0 || s.OverallScore > 100 {
		return fmt.Errorf("overall_score must be between 0 and 100, got %d", s.OverallScore)
	}
	sections := map[string]*int{
		"skills_match":         s.SectionScores.SkillsMatch,
		"experience_relevance": s.SectionScores.ExperienceRelevance,
		"education_fit":        s.SectionScores.EducationFit,
		"keyword_optimization": s.SectionScores.KeywordOptimization,
	}
	for name, v := range sections {
		if v == nil {
			continue
		}
		if *v < 0 || *v > 100 {
			return fmt.Errorf("section score %s must be between 0 and 100, got %d", name, *v)
		}
	}
	return nil
}
