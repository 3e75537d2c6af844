package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/emagodi/contracts/internal/requisition/entity"
	"github.com/emagodi/contracts/internal/requisition/repository"
	"github.com/emagodi/contracts/internal/shared/storage"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Upload 上传文件
type Upload struct {
	FileName    string
	ContentType string
	Size        int64
	Content     io.ReadSeeker
}

// AttachmentService 附件服务
type AttachmentService struct {
	repo    *repository.AttachmentRepository
	reqRepo *repository.RequisitionRepository
	db      *gorm.DB
	store   storage.Storage
	logger  *zap.Logger
}

func NewAttachmentService(repo *repository.AttachmentRepository, reqRepo *repository.RequisitionRepository, db *gorm.DB, store storage.Storage, logger *zap.Logger) *AttachmentService {
	return &AttachmentService{repo: repo, reqRepo: reqRepo, db: db, store: store, logger: logger}
}

// Add 上传附件，版本号从1开始。文件写入成功后才创建记录，记录创建失败会清理文件。
func (s *AttachmentService) Add(ctx context.Context, requisitionID, caller string, up Upload) (*entity.Attachment, error) {
	exists, err := s.reqRepo.Exists(ctx, requisitionID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, repository.ErrNotFound
	}
	caller = callerOrSystem(caller)

	fileName := filepath.Base(strings.TrimSpace(up.FileName))
	if fileName == "." || fileName == string(filepath.Separator) {
		return nil, fmt.Errorf("%w: empty file name", ErrInvalidInput)
	}
	contentType, err := detectContentType(up)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageFailure, err)
	}

	objectName := uuid.New().String()[:8] + "_" + fileName
	path, err := s.store.Save(ctx, objectName, contentType, up.Content, up.Size)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageFailure, err)
	}

	att := &entity.Attachment{
		ID:            newID(),
		RequisitionID: requisitionID,
		FileName:      fileName,
		FilePath:      path,
		FileType:      contentType,
		Version:       1,
		CreatedBy:     caller,
		UpdatedBy:     caller,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepositories(tx)
		if err := repos.Attachment.Create(ctx, att); err != nil {
			return fmt.Errorf("保存附件记录失败: %w", err)
		}
		return repos.ActivityLog.LogActivity(ctx, "requisition", requisitionID, entity.ActionAttachmentAdd,
			"上传附件 "+fileName, caller, map[string]interface{}{"attachment_id": att.ID, "file_type": contentType})
	})
	if err != nil {
		if delErr := s.store.Delete(ctx, path); delErr != nil {
			s.logger.Warn("cleanup stored file failed", zap.String("path", path), zap.Error(delErr))
		}
		return nil, err
	}
	return att, nil
}

// UploadFiles 批量上传，遇到第一个失败即返回，已成功的附件保留
func (s *AttachmentService) UploadFiles(ctx context.Context, requisitionID, caller string, uploads []Upload) ([]entity.Attachment, error) {
	added := make([]entity.Attachment, 0, len(uploads))
	for _, up := range uploads {
		att, err := s.Add(ctx, requisitionID, caller, up)
		if err != nil {
			return added, fmt.Errorf("上传 %s 失败: %w", up.FileName, err)
		}
		added = append(added, *att)
	}
	return added, nil
}

// Rename 重命名附件，版本号+1，路径与类型不变
func (s *AttachmentService) Rename(ctx context.Context, id, caller, newName string) (*entity.Attachment, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, fmt.Errorf("%w: new name is required", ErrInvalidInput)
	}
	caller = callerOrSystem(caller)

	var att *entity.Attachment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepositories(tx)
		if err := repos.Attachment.Rename(ctx, id, newName, caller); err != nil {
			return err
		}
		var err error
		att, err = repos.Attachment.FindByID(ctx, id)
		if err != nil {
			return err
		}
		return repos.ActivityLog.LogActivity(ctx, "attachment", id, entity.ActionRename,
			"重命名为 "+newName, caller, map[string]interface{}{"version": att.Version})
	})
	if err != nil {
		return nil, err
	}
	return att, nil
}

// Delete 删除附件记录与文件；文件删除失败只记日志
func (s *AttachmentService) Delete(ctx context.Context, id, caller string) error {
	att, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepositories(tx)
		if err := repos.Attachment.Delete(ctx, id); err != nil {
			return fmt.Errorf("删除附件记录失败: %w", err)
		}
		return repos.ActivityLog.LogActivity(ctx, "attachment", id, entity.ActionDelete,
			"删除附件 "+att.FileName, callerOrSystem(caller), map[string]interface{}{"requisition_id": att.RequisitionID})
	})
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, att.FilePath); err != nil {
		s.logger.Warn("delete attachment file failed",
			zap.String("attachment_id", id),
			zap.String("path", att.FilePath),
			zap.Error(err),
		)
	}
	return nil
}

// ListByRequisition 分页查询申请单附件
func (s *AttachmentService) ListByRequisition(ctx context.Context, requisitionID string, page, pageSize int) ([]entity.Attachment, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	return s.repo.FindByRequisition(ctx, requisitionID, page, pageSize)
}

// Open 打开附件内容，调用方负责关闭
func (s *AttachmentService) Open(ctx context.Context, id string) (*entity.Attachment, io.ReadCloser, error) {
	att, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	rc, err := openStored(ctx, s.store, att.FilePath)
	if err != nil {
		return nil, nil, err
	}
	return att, rc, nil
}

func openStored(ctx context.Context, store storage.Storage, path string) (io.ReadCloser, error) {
	rc, err := store.Open(ctx, path)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, fmt.Errorf("%w: %s", repository.ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: %w", ErrStorageFailure, err)
	}
	return rc, nil
}

// detectContentType 未声明或声明为 octet-stream 时按内容识别
func detectContentType(up Upload) (string, error) {
	declared := strings.TrimSpace(up.ContentType)
	if declared != "" && declared != "application/octet-stream" {
		return declared, nil
	}
	mt, err := mimetype.DetectReader(up.Content)
	if err != nil {
		return "", err
	}
	if _, err := up.Content.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return mt.String(), nil
}
