package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"resume-insight-go/internal/config"
)

// SearchToolName 是薪资检索工具在工具调用协议中的名称
const SearchToolName = "salary_search"

// SearchTool 封装 Tavily 风格的 web 搜索 API，供研究 agent 在薪资分析中调用。
// 实现 eino 的 tool.InvokableTool 接口。
type SearchTool struct {
	apiKey         string
	apiURL         string
	maxResults     int
	includeDomains []string
	httpClient     *http.Client
}

func NewSearchTool(cfg *config.SearchConfig) (*SearchTool, error) {
	if cfg == nil {
		return nil, fmt.Errorf("搜索配置不能为空")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("搜索 API 密钥不能为空")
	}
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 8
	}
	return &SearchTool{
		apiKey:         cfg.APIKey,
		apiURL:         cfg.APIURL,
		maxResults:     maxResults,
		includeDomains: cfg.IncludeDomains,
		httpClient:     &http.Client{},
	}, nil
}

// Info 实现 tool.BaseTool 接口
func (t *SearchTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: SearchToolName,
		Desc: "搜索指定岗位和地区的公开薪资数据。返回带来源 URL 的摘要片段。",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"query": {
				Type:     schema.String,
				Desc:     "搜索查询，例如：Senior Software Engineer salary San Francisco 2026",
				Required: true,
			},
		}),
	}, nil
}

type searchArgs struct {
	Query string `json:"query"`
}

type searchAPIRequest struct {
	APIKey         string   `json:"api_key"`
	Query          string   `json:"query"`
	MaxResults     int      `json:"max_results"`
	IncludeDomains []string `json:"include_domains,omitempty"`
}

type searchAPIResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

type searchAPIResponse struct {
	Results []searchAPIResult `json:"results"`
}

// InvokableRun 实现 tool.InvokableTool 接口。
// 返回 JSON 数组文本，每个元素包含 title/url/content，供模型在后续轮次中引用。
func (t *SearchTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...tool.Option) (string, error) {
	var args searchArgs
	if err := json.Unmarshal([]byte(argumentsInJSON), &args); err != nil {
		return "", fmt.Errorf("解析工具参数失败: %w。参数: %s", err, argumentsInJSON)
	}
	if strings.TrimSpace(args.Query) == "" {
		return "", fmt.Errorf("工具参数 query 不能为空")
	}

	reqBody, err := json.Marshal(searchAPIRequest{
		APIKey:         t.apiKey,
		Query:          args.Query,
		MaxResults:     t.maxResults,
		IncludeDomains: t.includeDomains,
	})
	if err != nil {
		return "", fmt.Errorf("序列化搜索请求失败: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.apiURL, bytes.NewBuffer(reqBody))
	if err != nil {
		return "", fmt.Errorf("创建搜索请求失败: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("搜索请求失败: %w", err)
	}
	defer httpResp.Body.Close()

	bodyBytes, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", fmt.Errorf("读取搜索响应失败: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("搜索 API 返回状态 %s: %s", httpResp.Status, string(bodyBytes))
	}

	var apiResp searchAPIResponse
	if err := json.Unmarshal(bodyBytes, &apiResp); err != nil {
		return "", fmt.Errorf("反序列化搜索响应失败: %w", err)
	}

	// 截断每条结果内容，避免把过长原文塞进上下文
	const maxContentLen = 1200
	for i := range apiResp.Results {
		if len(apiResp.Results[i].Content) > maxContentLen {
			apiResp.Results[i].Content = apiResp.Results[i].Content[:maxContentLen]
		}
	}

	out, err := json.Marshal(apiResp.Results)
	if err != nil {
		return "", fmt.Errorf("序列化搜索结果失败: %w", err)
	}
	return string(out), nil
}

var _ tool.InvokableTool = (*SearchTool)(nil)
