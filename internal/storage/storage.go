package storage

import (
	"fmt"

	"resume-insight-go/internal/config"
	"resume-insight-go/internal/logger"
)

// Storage 存储管理器，聚合所有存储相关依赖
type Storage struct {
	// 结构化记录与派生产物
	Artifacts *ArtifactStore

	// 原始文件归档（可选）
	MinIO *MinIO
}

// NewStorage 创建存储管理器。MinIO 未启用时原始文件不归档，其余功能不受影响。
func NewStorage(cfg *config.Config) (*Storage, error) {
	if cfg == nil {
		return nil, fmt.Errorf("配置不能为空")
	}

	artifacts, err := NewArtifactStore(cfg.Storage.DataDir)
	if err != nil {
		return nil, fmt.Errorf("初始化简历记录存储失败: %w", err)
	}

	storage := &Storage{Artifacts: artifacts}

	if cfg.MinIO.Enabled {
		m, err := NewMinIO(&cfg.MinIO)
		if err != nil {
			return nil, fmt.Errorf("初始化MinIO失败: %w", err)
		}
		storage.MinIO = m
		logger.Info().Str("endpoint", cfg.MinIO.Endpoint).Msg("MinIO归档存储初始化成功")
	} else {
		logger.Info().Msg("MinIO未启用，原始简历文件不归档")
	}

	return storage, nil
}
