package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"resume-insight-go/internal/config"
	"resume-insight-go/internal/logger"
	"resume-insight-go/internal/types"
)

// SalaryResearchAgent 驱动一个带工具调用的研究循环：
// 模型可以在有限步数内多次调用搜索工具收集市场数据，最后输出结构化薪资建议。
type SalaryResearchAgent struct {
	chatModel  model.ToolCallingChatModel
	searchTool tool.InvokableTool
	prompt     config.PromptPair
	maxSteps   int
}

// NewSalaryResearchAgent 创建薪资研究 agent。maxSteps 小于等于 0 时使用默认值 4。
func NewSalaryResearchAgent(chatModel model.ToolCallingChatModel, searchTool tool.InvokableTool, prompt config.PromptPair, maxSteps int) (*SalaryResearchAgent, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("聊天模型不能为空")
	}
	if searchTool == nil {
		return nil, fmt.Errorf("搜索工具不能为空")
	}
	if maxSteps <= 0 {
		maxSteps = 4
	}
	return &SalaryResearchAgent{
		chatModel:  chatModel,
		searchTool: searchTool,
		prompt:     prompt,
		maxSteps:   maxSteps,
	}, nil
}

// Research 针对给定岗位画像执行研究循环，返回通过校验的薪资建议。
// 循环在模型给出最终答案或达到步数上限后结束；步数耗尽仍无有效结果视为生成失败。
func (a *SalaryResearchAgent) Research(ctx context.Context, jobTitle, location string, yearsOfExperience int, skills []string) (*types.SalaryRecommendation, error) {
	toolInfo, err := a.searchTool.Info(ctx)
	if err != nil {
		return nil, fmt.Errorf("获取工具信息失败: %w", err)
	}

	boundModel, err := a.chatModel.WithTools([]*schema.ToolInfo{toolInfo})
	if err != nil {
		return nil, fmt.Errorf("绑定工具失败: %w", err)
	}

	userPrompt := fmt.Sprintf(a.prompt.UserPrompt,
		jobTitle, location, fmt.Sprintf("%d", yearsOfExperience), strings.Join(skills, ", "))

	messages := []*schema.Message{
		schema.SystemMessage(a.prompt.SystemInstruction),
		schema.UserMessage(userPrompt),
	}

	for step := 0; step < a.maxSteps; step++ {
		resp, err := boundModel.Generate(ctx, messages)
		if err != nil {
			return nil, fmt.Errorf("研究循环第 %d 步模型调用失败: %w", step+1, err)
		}

		if len(resp.ToolCalls) == 0 {
			return a.parseRecommendation(resp.Content)
		}

		messages = append(messages, resp)
		for _, tc := range resp.ToolCalls {
			if tc.Function.Name != toolInfo.Name {
				logger.Warn().Str("tool", tc.Function.Name).Msg("模型请求了未知工具，返回错误观察值")
				messages = append(messages, toolMessage(tc.ID, fmt.Sprintf(`{"error": "unknown tool %s"}`, tc.Function.Name)))
				continue
			}

			result, err := a.searchTool.InvokableRun(ctx, tc.Function.Arguments)
			if err != nil {
				// 搜索失败不终止循环，把错误作为观察值交给模型处理
				logger.Warn().Err(err).Msg("搜索工具调用失败")
				result = fmt.Sprintf(`{"error": %q}`, err.Error())
			}
			messages = append(messages, toolMessage(tc.ID, result))
		}
	}

	return nil, fmt.Errorf("研究循环在 %d 步内未产出最终答案", a.maxSteps)
}

func (a *SalaryResearchAgent) parseRecommendation(content string) (*types.SalaryRecommendation, error) {
	jsonText := ExtractJSONObject(content)
	if jsonText == "" {
		return nil, fmt.Errorf("模型输出中未找到 JSON 对象: %s", content)
	}

	var rec types.SalaryRecommendation
	if err := json.Unmarshal([]byte(jsonText), &rec); err != nil {
		return nil, fmt.Errorf("反序列化薪资建议失败: %w", err)
	}
	if err := rec.Validate(); err != nil {
		return nil, fmt.Errorf("薪资建议校验失败: %w", err)
	}
	return &rec, nil
}

func toolMessage(toolCallID, content string) *schema.Message {
	return &schema.Message{
		Role:       schema.Tool,
		ToolCallID: toolCallID,
		Content:    content,
	}
}
