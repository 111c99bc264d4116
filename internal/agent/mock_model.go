package agent

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// MockChatModel 是 model.ChatModel 的测试替身，按顺序返回预置响应并记录收到的消息
type MockChatModel struct {
	Responses        []*schema.Message
	ReceivedMessages [][]*schema.Message
	callCount        int
	BoundTools       []*schema.ToolInfo
	GenerateErr      error
}

func NewMockChatModel(responses ...*schema.Message) *MockChatModel {
	return &MockChatModel{
		Responses:        responses,
		ReceivedMessages: make([][]*schema.Message, 0),
	}
}

func (m *MockChatModel) Generate(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.Message, error) {
	m.ReceivedMessages = append(m.ReceivedMessages, messages)
	if m.GenerateErr != nil {
		return nil, m.GenerateErr
	}
	if m.callCount >= len(m.Responses) {
		return nil, fmt.Errorf("mock: 第 %d 次调用没有预置响应", m.callCount+1)
	}
	resp := m.Responses[m.callCount]
	m.callCount++
	return resp, nil
}

func (m *MockChatModel) Stream(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, fmt.Errorf("mock: Stream 未实现")
}

func (m *MockChatModel) BindTools(tools []*schema.ToolInfo) error {
	m.BoundTools = tools
	return nil
}

// WithTools 记录绑定的工具并返回自身，测试可以继续在原实例上断言收到的消息
func (m *MockChatModel) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	m.BoundTools = tools
	return m, nil
}

// CallCount 返回 Generate 被调用的次数
func (m *MockChatModel) CallCount() int {
	return m.callCount
}

var _ model.ChatModel = (*MockChatModel)(nil)
var _ model.ToolCallingChatModel = (*MockChatModel)(nil)
