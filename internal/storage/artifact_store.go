package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/uuid/v5"

	"resume-insight-go/internal/types"
)

// 顶层派生产物的键名，与磁盘 JSON 中的字段一一对应
const (
	ArtifactATSScores        = "ats_scores"
	ArtifactSalaryInsights   = "salary_insights"
	ArtifactUpskillingReport = "upskilling_report"

	// KeyOriginalObjectKey 原始文件在对象存储中的键，仅在启用归档时写入
	KeyOriginalObjectKey = "original_object_key"
)

// 岗位描述预览的最大长度（字符数）
const jobDescriptionPreviewLen = 200

var (
	// ErrRecordNotFound 指定ID的简历记录不存在
	ErrRecordNotFound = errors.New("简历记录不存在")
	// ErrRecordExists 新建记录时发现目标文件已存在（ID冲突）
	ErrRecordExists = errors.New("简历记录已存在")
)

// ArtifactStore 管理简历记录及其派生产物的磁盘存储。
// 每条记录对应目录下的一个 JSON 文件，文件名即记录ID。
// 所有写入都走"同目录临时文件 + 原子重命名"，读者永远不会看到半写状态；
// 并发写同一记录时以最后一次 rename 为准，不做加锁与冲突检测。
type ArtifactStore struct {
	dir string
}

// NewArtifactStore 创建存储实例，目录不存在时自动创建
func NewArtifactStore(dir string) (*ArtifactStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("存储目录不能为空")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("创建存储目录 %s 失败: %w", dir, err)
	}
	return &ArtifactStore{dir: dir}, nil
}

// Dir 返回存储目录
func (s *ArtifactStore) Dir() string {
	return s.dir
}

func (s *ArtifactStore) recordPath(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Create 为记录分配一个新的UUIDv7标识并持久化，返回该标识。
// 若目标文件已存在（标识冲突）则返回 ErrRecordExists。
func (s *ArtifactStore) Create(record *types.Resume) (string, error) {
	uuidV7, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("生成UUIDv7失败: %w", err)
	}
	id := uuidV7.String()

	path := s.recordPath(id)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("%w: %s", ErrRecordExists, id)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", fmt.Errorf("序列化简历记录失败: %w", err)
	}

	if err := s.writeAtomic(path, data); err != nil {
		return "", err
	}
	return id, nil
}

// Load 按ID读取完整的磁盘结构，包含此前附加的全部派生产物。
// 顶层字段保持原始 JSON，由调用方按需解码。
func (s *ArtifactStore) Load(id string) (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(s.recordPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, id)
		}
		return nil, fmt.Errorf("读取简历记录 %s 失败: %w", id, err)
	}

	var record map[string]json.RawMessage
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("解析简历记录 %s 失败: %w", id, err)
	}
	return record, nil
}

// MergeArtifact 把派生产物合并进记录文件：确保顶层 artifactKey 存在，
// subKey 非空时写入其子键，为空时整体替换顶层值；其余字段保持不变。
// 记录不存在时返回 ErrRecordNotFound。
func (s *ArtifactStore) MergeArtifact(id, artifactKey, subKey string, value interface{}) error {
	record, err := s.Load(id)
	if err != nil {
		return err
	}

	valueJSON, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("序列化派生产物 %s 失败: %w", artifactKey, err)
	}

	if subKey == "" {
		record[artifactKey] = valueJSON
	} else {
		artifact := make(map[string]json.RawMessage)
		if raw, ok := record[artifactKey]; ok {
			if err := json.Unmarshal(raw, &artifact); err != nil {
				return fmt.Errorf("解析已有派生产物 %s 失败: %w", artifactKey, err)
			}
		}
		artifact[subKey] = valueJSON
		merged, err := json.Marshal(artifact)
		if err != nil {
			return fmt.Errorf("序列化派生产物 %s 失败: %w", artifactKey, err)
		}
		record[artifactKey] = merged
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化简历记录 %s 失败: %w", id, err)
	}
	return s.writeAtomic(s.recordPath(id), data)
}

// CachedScore 按摘要键查找某条简历的缓存评分，未命中返回 (nil, false, nil)
func (s *ArtifactStore) CachedScore(id, digest string) (*types.ScoreEnvelope, bool, error) {
	record, err := s.Load(id)
	if err != nil {
		return nil, false, err
	}

	raw, ok := record[ArtifactATSScores]
	if !ok {
		return nil, false, nil
	}

	var scores map[string]json.RawMessage
	if err := json.Unmarshal(raw, &scores); err != nil {
		return nil, false, fmt.Errorf("解析评分缓存失败: %w", err)
	}

	entry, ok := scores[digest]
	if !ok {
		return nil, false, nil
	}

	var envelope types.ScoreEnvelope
	if err := json.Unmarshal(entry, &envelope); err != nil {
		return nil, false, fmt.Errorf("解析评分缓存条目 %s 失败: %w", digest, err)
	}
	return &envelope, true, nil
}

// writeAtomic 先写同目录临时文件再原子重命名，失败时清理临时文件。
// 进程在 rename 前崩溃只会留下临时文件，原记录保持完整可读。
func (s *ArtifactStore) writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("创建临时文件失败: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("写入临时文件失败: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("关闭临时文件失败: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("重命名临时文件失败: %w", err)
	}
	return nil
}

// JobDescriptionDigest 计算岗位描述的缓存键：对去除首尾空白后的文本
// 取 SHA-256 的前32个十六进制字符。纯函数，跨进程重启保持稳定。
func JobDescriptionDigest(jobDescription string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(jobDescription)))
	return hex.EncodeToString(sum[:])[:32]
}

// JobDescriptionPreview 生成有界的人类可读预览，超出200字符时截断并追加省略号
func JobDescriptionPreview(jobDescription string) string {
	runes := []rune(jobDescription)
	if len(runes) <= jobDescriptionPreviewLen {
		return jobDescription
	}
	return string(runes[:jobDescriptionPreviewLen]) + "..."
}
