package agent

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-insight-go/internal/config"
)

const completionResponse = `{
	"id": "chatcmpl-1",
	"object": "chat.completion",
	"created": 1700000000,
	"model": "test-model",
	"choices": [{"index": 0, "message": {"role": "assistant", "content": "ok"}, "finish_reason": "stop"}]
}`

func newChatModelForTest(t *testing.T, requestBodies *[]string) *OpenAIChatModel {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		*requestBodies = append(*requestBodies, string(body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionResponse))
	}))
	t.Cleanup(server.Close)

	m, err := NewOpenAIChatModel(&config.LLMConfig{
		APIKey: "test-key",
		APIURL: server.URL,
		Model:  "test-model",
	})
	require.NoError(t, err)
	return m
}

func searchToolInfo() *schema.ToolInfo {
	return &schema.ToolInfo{
		Name: SearchToolName,
		Desc: "search the web",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"query": {Type: schema.String, Required: true},
		}),
	}
}

func TestWithToolsReturnsNewInstance(t *testing.T) {
	var bodies []string
	m := newChatModelForTest(t, &bodies)

	bound, err := m.WithTools([]*schema.ToolInfo{searchToolInfo()})
	require.NoError(t, err)

	// 绑定产生新实例，原实例不携带工具
	boundModel, ok := bound.(*OpenAIChatModel)
	require.True(t, ok)
	assert.NotSame(t, m, boundModel)
	assert.Empty(t, m.boundTools)
	assert.Len(t, boundModel.boundTools, 1)
}

func TestGenerateOnUnboundModelSendsNoTools(t *testing.T) {
	var bodies []string
	m := newChatModelForTest(t, &bodies)

	bound, err := m.WithTools([]*schema.ToolInfo{searchToolInfo()})
	require.NoError(t, err)

	messages := []*schema.Message{schema.UserMessage("extract this resume")}

	_, err = bound.Generate(context.Background(), messages)
	require.NoError(t, err)

	// 工具绑定发生在薪资研究之后也不能泄漏到普通调用
	_, err = m.Generate(context.Background(), messages)
	require.NoError(t, err)

	require.Len(t, bodies, 2)
	assert.Contains(t, bodies[0], SearchToolName)
	assert.NotContains(t, bodies[1], `"tools"`)
	assert.NotContains(t, bodies[1], SearchToolName)
}

func TestGenerateParsesToolCalls(t *testing.T) {
	toolCallResponse := `{
		"choices": [{"index": 0, "message": {"role": "assistant", "content": null,
			"tool_calls": [{"id": "call-1", "type": "function",
				"function": {"name": "salary_search", "arguments": "{\"query\": \"engineer salary\"}"}}]},
			"finish_reason": "tool_calls"}]
	}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(toolCallResponse))
	}))
	t.Cleanup(server.Close)

	m, err := NewOpenAIChatModel(&config.LLMConfig{APIKey: "k", APIURL: server.URL, Model: "test-model"})
	require.NoError(t, err)

	resp, err := m.Generate(context.Background(), []*schema.Message{schema.UserMessage("research")})
	require.NoError(t, err)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "call-1", resp.ToolCalls[0].ID)
	assert.Equal(t, SearchToolName, resp.ToolCalls[0].Function.Name)
	assert.Equal(t, schema.Assistant, resp.Role)
}
