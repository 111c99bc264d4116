package processor

import (
	"errors"
	"fmt"
)

// 定义基础错误类型
var (
	ErrUnsupportedFileType = errors.New("不支持的文件类型")
	ErrExtractTextFailed   = errors.New("提取简历文本失败")
	ErrGenerationFailed    = errors.New("LLM生成失败")
	ErrPersistFailed       = errors.New("持久化简历数据失败")
	ErrInvalidInput        = errors.New("请求参数无效")
)

// ProcessError 包含详细错误信息的自定义错误
type ProcessError struct {
	ResumeID string
	Op       string
	BaseErr  error
	Detail   string
}

func (e *ProcessError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (操作:%s, ID:%s): %s", e.BaseErr, e.Op, e.ResumeID, e.Detail)
	}
	return fmt.Sprintf("%s (操作:%s, ID:%s)", e.BaseErr, e.Op, e.ResumeID)
}

func (e *ProcessError) Unwrap() error {
	return e.BaseErr
}

// Is 实现 errors.Is 接口以支持错误比较
func (e *ProcessError) Is(target error) bool {
	return errors.Is(e.BaseErr, target)
}

// 错误构造函数
func NewUnsupportedTypeError(filename, detail string) error {
	return &ProcessError{
		ResumeID: filename,
		Op:       "validate",
		BaseErr:  ErrUnsupportedFileType,
		Detail:   detail,
	}
}

func NewExtractError(id, detail string) error {
	return &ProcessError{
		ResumeID: id,
		Op:       "extract",
		BaseErr:  ErrExtractTextFailed,
		Detail:   detail,
	}
}

func NewGenerationError(id, detail string) error {
	return &ProcessError{
		ResumeID: id,
		Op:       "generate",
		BaseErr:  ErrGenerationFailed,
		Detail:   detail,
	}
}

func NewPersistError(id, detail string) error {
	return &ProcessError{
		ResumeID: id,
		Op:       "persist",
		BaseErr:  ErrPersistFailed,
		Detail:   detail,
	}
}

func NewValidationError(id, detail string) error {
	return &ProcessError{
		ResumeID: id,
		Op:       "validate",
		BaseErr:  ErrInvalidInput,
		Detail:   detail,
	}
}
