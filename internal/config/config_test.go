package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeTempFile(t, "config.yaml", `
server:
  address: ":9090"
llm:
  api_url: "https://example.com/v1/chat/completions"
  model: "test-model"
storage:
  data_dir: "testdata/resumes"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, "test-model", cfg.LLM.Model)
	assert.Equal(t, "testdata/resumes", cfg.Storage.DataDir)

	// 未显式配置的字段保持默认值
	assert.Equal(t, 0.3, cfg.LLM.Temperature)
	assert.Equal(t, 4096, cfg.LLM.MaxTokens)
	assert.Equal(t, 8, cfg.Search.MaxResults)
	assert.Equal(t, 4, cfg.Insights.MaxResearchSteps)
	assert.Equal(t, "prompts.yaml", cfg.PromptsPath)
	assert.NotEmpty(t, cfg.Search.IncludeDomains)
}

func TestLoadConfigRequiresPath(t *testing.T) {
	_, err := LoadConfig("")
	assert.Error(t, err)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	path := writeTempFile(t, "config.yaml", `
llm:
  api_key: "from-file"
`)

	t.Setenv("LLM_API_KEY", "from-env")
	t.Setenv("SEARCH_API_KEY", "search-key")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.LLM.APIKey)
	assert.Equal(t, "search-key", cfg.Search.APIKey)
}

const validPrompts = `
resume_extraction:
  system_instruction: "parse resumes"
  user_prompt: "extract: %s"
ats_scoring:
  system_instruction: "score resumes"
  user_prompt: "resume: %s jd: %s"
salary_research:
  system_instruction: "research salaries"
  user_prompt: "%s %s %s %s"
upskilling:
  system_instruction: "advise careers"
  user_prompt: "%s %s %s %s %s"
`

func TestLoadPrompts(t *testing.T) {
	path := writeTempFile(t, "prompts.yaml", validPrompts)

	prompts, err := LoadPrompts(path)
	require.NoError(t, err)
	assert.Equal(t, "parse resumes", prompts.ResumeExtraction.SystemInstruction)
	assert.Equal(t, "score resumes", prompts.ATSScoring.SystemInstruction)
	assert.NotEmpty(t, prompts.SalaryResearch.UserPrompt)
	assert.NotEmpty(t, prompts.Upskilling.UserPrompt)
}

func TestLoadPromptsMissingFile(t *testing.T) {
	_, err := LoadPrompts(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPromptsConfig))
}

func TestLoadPromptsMissingSection(t *testing.T) {
	// 缺少 ats_scoring 段
	path := writeTempFile(t, "prompts.yaml", `
resume_extraction:
  system_instruction: "parse"
  user_prompt: "%s"
salary_research:
  system_instruction: "research"
  user_prompt: "%s %s %s %s"
upskilling:
  system_instruction: "advise"
  user_prompt: "%s %s %s %s %s"
`)

	_, err := LoadPrompts(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPromptsConfig))
}

func TestLoadPromptsEmptyInstruction(t *testing.T) {
	path := writeTempFile(t, "prompts.yaml", `
resume_extraction:
  system_instruction: ""
  user_prompt: "%s"
ats_scoring:
  system_instruction: "score"
  user_prompt: "%s %s"
salary_research:
  system_instruction: "research"
  user_prompt: "%s %s %s %s"
upskilling:
  system_instruction: "advise"
  user_prompt: "%s %s %s %s %s"
`)

	_, err := LoadPrompts(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPromptsConfig))
}
