package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrPromptsConfig 提示词配置缺失或不合法。
// 该错误在服务构造阶段就会出现，不会等到处理请求时才暴露。
var ErrPromptsConfig = errors.New("提示词配置缺失或不合法")

// PromptPair 一组提示词：系统指令 + 用户提示模板
type PromptPair struct {
	SystemInstruction string `yaml:"system_instruction"`
	UserPrompt        string `yaml:"user_prompt"`
}

// PromptsConfig 各外部生成调用的提示词，来源于独立的配置文件
type PromptsConfig struct {
	ResumeExtraction PromptPair `yaml:"resume_extraction"` // user_prompt 含一个 %s 占位符：简历文本
	ATSScoring       PromptPair `yaml:"ats_scoring"`       // user_prompt 含两个 %s 占位符：简历JSON、岗位描述
	SalaryResearch   PromptPair `yaml:"salary_research"`   // user_prompt 含四个 %s 占位符：职位、地点、年限、技能
	Upskilling       PromptPair `yaml:"upskilling"`        // user_prompt 含五个 %s 占位符：技能、当前职位、目标职位、ATS上下文、姓名
}

// LoadPrompts 加载并校验提示词配置。任何一组缺失均视为配置错误。
func LoadPrompts(path string) (*PromptsConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: 读取 %s 失败: %v", ErrPromptsConfig, path, err)
	}

	var prompts PromptsConfig
	if err := yaml.Unmarshal(data, &prompts); err != nil {
		return nil, fmt.Errorf("%w: 解析 %s 失败: %v", ErrPromptsConfig, path, err)
	}

	sections := map[string]PromptPair{
		"resume_extraction": prompts.ResumeExtraction,
		"ats_scoring":       prompts.ATSScoring,
		"salary_research":   prompts.SalaryResearch,
		"upskilling":        prompts.Upskilling,
	}
	for name, pair := range sections {
		if pair.SystemInstruction == "" || pair.UserPrompt == "" {
			return nil, fmt.Errorf("%w: %s 必须同时提供 system_instruction 和 user_prompt", ErrPromptsConfig, name)
		}
	}
	return &prompts, nil
}
