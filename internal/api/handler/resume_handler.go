package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"resume-insight-go/internal/config"
	"resume-insight-go/internal/logger"
	"resume-insight-go/internal/processor"
	"resume-insight-go/internal/storage"
	"resume-insight-go/internal/types"
)

// ResumeHandler 简历接口处理器，协调提取、评分与洞察服务
type ResumeHandler struct {
	cfg       *config.Config
	storage   *storage.Storage
	extractor *processor.ResumeExtractor
	scorer    *processor.ATSScorer
	insights  *processor.InsightsService
}

// NewResumeHandler 创建一个新的简历接口处理器
func NewResumeHandler(
	cfg *config.Config,
	storage *storage.Storage,
	extractor *processor.ResumeExtractor,
	scorer *processor.ATSScorer,
	insights *processor.InsightsService,
) *ResumeHandler {
	return &ResumeHandler{
		cfg:       cfg,
		storage:   storage,
		extractor: extractor,
		scorer:    scorer,
		insights:  insights,
	}
}

// BatchUploadResponse 批量上传响应
type BatchUploadResponse struct {
	Results []processor.UploadResult `json:"results"`
}

// ScoreRequest ATS评分请求体
type ScoreRequest struct {
	JobDescription string `json:"job_description"`
	UseCache       *bool  `json:"use_cache,omitempty"` // 缺省为 true
}

// ScoreResponse ATS评分响应
type ScoreResponse struct {
	ResumeID string               `json:"resume_id"`
	CacheHit bool                 `json:"cache_hit"`
	Result   *types.ScoreEnvelope `json:"result"`
}

// SalaryRequest 薪资洞察请求体，所有字段可选，缺省从简历画像推导
type SalaryRequest struct {
	JobTitle          string `json:"job_title,omitempty"`
	Location          string `json:"location,omitempty"`
	YearsOfExperience int    `json:"years_of_experience,omitempty"`
}

// UpskillingRequest 技能提升报告请求体。
// 提供 job_description（或评分响应里的 job_description_hash）
// 且该岗位已有评分缓存时，差距信息会并入报告上下文。
type UpskillingRequest struct {
	TargetRole         string `json:"target_role,omitempty"`
	JobDescription     string `json:"job_description,omitempty"`
	JobDescriptionHash string `json:"job_description_hash,omitempty"`
}

// HandleBatchUpload 处理一批上传的简历文件，逐个读取内容后交给提取器。
// 读取失败的文件按失败结果记录，不中断批次；
// 响应里的结果顺序与上传顺序一致。
func (h *ResumeHandler) HandleBatchUpload(ctx context.Context, fileHeaders []*multipart.FileHeader) *BatchUploadResponse {
	results := make([]processor.UploadResult, len(fileHeaders))
	files := make([]processor.UploadFile, 0, len(fileHeaders))
	positions := make([]int, 0, len(fileHeaders))

	for i, fh := range fileHeaders {
		data, err := readFileHeader(fh)
		if err != nil {
			logger.Warn().Err(err).Str("filename", fh.Filename).Msg("读取上传文件失败")
			results[i] = processor.UploadResult{
				Filename: fh.Filename,
				Status:   processor.UploadStatusFailed,
				Detail:   fmt.Sprintf("读取文件内容失败: %v", err),
			}
			continue
		}
		files = append(files, processor.UploadFile{
			Filename:  fh.Filename,
			MediaType: fh.Header.Get("Content-Type"),
			Data:      data,
		})
		positions = append(positions, i)
	}

	for j, result := range h.extractor.ExtractBatch(ctx, files) {
		results[positions[j]] = result
	}
	return &BatchUploadResponse{Results: results}
}

// HandleGetRecord 返回一条简历记录的完整磁盘结构，包含全部派生产物
func (h *ResumeHandler) HandleGetRecord(ctx context.Context, id string) (map[string]json.RawMessage, error) {
	return h.storage.Artifacts.Load(id)
}

// HandleGetOriginal 取回归档的原始简历文件。
// 未启用对象存储或该记录没有归档时按记录不存在处理。
func (h *ResumeHandler) HandleGetOriginal(ctx context.Context, id string) ([]byte, error) {
	if h.storage.MinIO == nil {
		return nil, fmt.Errorf("%w: 原始文件归档未启用", storage.ErrRecordNotFound)
	}

	record, err := h.storage.Artifacts.Load(id)
	if err != nil {
		return nil, err
	}

	raw, ok := record[storage.KeyOriginalObjectKey]
	if !ok {
		return nil, fmt.Errorf("%w: 记录 %s 没有归档的原始文件", storage.ErrRecordNotFound, id)
	}
	var objectKey string
	if err := json.Unmarshal(raw, &objectKey); err != nil {
		return nil, fmt.Errorf("解析归档对象键失败: %w", err)
	}

	return h.storage.MinIO.GetOriginal(ctx, objectKey)
}

// HandleScore 对指定简历执行 ATS 评分
func (h *ResumeHandler) HandleScore(ctx context.Context, id string, req *ScoreRequest) (*ScoreResponse, error) {
	useCache := true
	if req.UseCache != nil {
		useCache = *req.UseCache
	}

	envelope, cacheHit, err := h.scorer.Score(ctx, id, req.JobDescription, useCache)
	if err != nil {
		return nil, err
	}
	return &ScoreResponse{ResumeID: id, CacheHit: cacheHit, Result: envelope}, nil
}

// HandleSalary 为指定简历生成薪资洞察
func (h *ResumeHandler) HandleSalary(ctx context.Context, id string, req *SalaryRequest) (*processor.SalaryInsights, error) {
	return h.insights.SalaryRecommendation(ctx, id, req.JobTitle, req.Location, req.YearsOfExperience)
}

// HandleUpskilling 为指定简历生成技能提升报告
func (h *ResumeHandler) HandleUpskilling(ctx context.Context, id string, req *UpskillingRequest) (*processor.UpskillingInsights, error) {
	return h.insights.UpskillingRecommendations(ctx, id, req.TargetRole, req.JobDescription, req.JobDescriptionHash)
}

// StatusForError 把业务错误映射为 HTTP 状态码
func StatusForError(err error) int {
	switch {
	case errors.Is(err, storage.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, processor.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, processor.ErrUnsupportedFileType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, processor.ErrGenerationFailed):
		return http.StatusBadGateway
	case errors.Is(err, config.ErrPromptsConfig):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func readFileHeader(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
