package types

import "fmt"

// SalaryRange 带币种和周期的薪资区间
type SalaryRange struct {
	MinSalary float64 `json:"min_salary"`
	MaxSalary float64 `json:"max_salary"`
	Currency  string  `json:"currency"` // 币种代码，例如 USD, EUR, INR
	Period    string  `json:"period"`   // 周期：annual, monthly, hourly
}

// Validate 校验薪资区间：下限不得高于上限
func (r *SalaryRange) Validate() error {
	if r.MinSalary > r.MaxSalary {
		return fmt.Errorf("min_salary (%.2f) cannot exceed max_salary (%.2f)", r.MinSalary, r.MaxSalary)
	}
	return nil
}

// SalaryRecommendation 基于市场调研的薪资建议
type SalaryRecommendation struct {
	RecommendedRange SalaryRange `json:"recommended_range"`       // 建议薪资区间
	MarketMedian     float64     `json:"market_median"`           // 市场中位数
	Percentile25     float64     `json:"percentile_25"`           // 25 分位
	Percentile75     float64     `json:"percentile_75"`           // 75 分位
	KeyFactors       []string    `json:"key_factors,omitempty"`   // 影响薪资的关键因素
	MarketTrends     []string    `json:"market_trends,omitempty"` // 当前市场趋势
	Sources          []string    `json:"sources,omitempty"`       // 数据来源（URL、报告）
	AnalysisSummary  string      `json:"analysis_summary"`        // 分析摘要
}

// Validate 校验薪资建议是否符合 schema 约束
func (s *SalaryRecommendation) Validate() error {
	return s.RecommendedRange.Validate()
}

// LearningResource 单个学习资源（视频、课程、文档等）
type LearningResource struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Type        string `json:"type"`                  // youtube_video, playlist, documentation, course, tutorial
	Skill       string `json:"skill"`                 // 该资源主要针对的技能
	Difficulty  string `json:"difficulty,omitempty"`  // beginner, intermediate, advanced
	Duration    string `json:"duration,omitempty"`    // 预估时长，例如 "2 hours"
	Description string `json:"description,omitempty"` // 资源内容简介
}

// ProjectSuggestion 用于技能练习的实战项目建议
type ProjectSuggestion struct {
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	SkillsPracticed   []string `json:"skills_practiced,omitempty"` // 该项目锻炼的技能
	Difficulty        string   `json:"difficulty"`
	EstimatedDuration string   `json:"estimated_duration"`
	KeyLearnings      []string `json:"key_learnings,omitempty"`
}

// LearningPhase 学习路径中的一个阶段
type LearningPhase struct {
	Phase       int                 `json:"phase"` // 阶段序号，从 1 开始连续递增
	Title       string              `json:"title"` // 阶段标题，例如 "Foundation"
	SkillsFocus []string            `json:"skills_focus,omitempty"`
	Resources   []LearningResource  `json:"resources,omitempty"`
	Projects    []ProjectSuggestion `json:"projects,omitempty"`
	Duration    string              `json:"duration"`
	Objectives  []string            `json:"objectives,omitempty"`
}

// UpskillingReport 技能提升报告：差距、资源与分阶段学习路径
type UpskillingReport struct {
	IdentifiedGaps         []string            `json:"identified_gaps,omitempty"`
	TargetSkills           []string            `json:"target_skills,omitempty"`
	AllResources           []LearningResource  `json:"all_resources,omitempty"`
	LearningPath           []LearningPhase     `json:"learning_path,omitempty"`
	ProjectSuggestions     []ProjectSuggestion `json:"project_suggestions,omitempty"`
	EstimatedTotalDuration string              `json:"estimated_total_duration"`
	CareerImpact           string              `json:"career_impact"`
	ReportSummary          string              `json:"report_summary"`
}

// Validate 校验学习路径：阶段必须从 1 开始且连续，不允许出现 0 或跳号
func (r *UpskillingReport) Validate() error {
	for i, phase := range r.LearningPath {
		want := i + 1
		if phase.Phase != want {
			return fmt.Errorf("learning_path phase must be sequential starting at 1: index %d has phase %d, want %d", i, phase.Phase, want)
		}
	}
	return nil
}
