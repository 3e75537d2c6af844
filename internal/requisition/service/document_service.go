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
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ContractDraftService 合同草稿服务
type ContractDraftService struct {
	repo    *repository.ContractDraftRepository
	reqRepo *repository.RequisitionRepository
	db      *gorm.DB
	store   storage.Storage
	logger  *zap.Logger
}

func NewContractDraftService(repo *repository.ContractDraftRepository, reqRepo *repository.RequisitionRepository, db *gorm.DB, store storage.Storage, logger *zap.Logger) *ContractDraftService {
	return &ContractDraftService{repo: repo, reqRepo: reqRepo, db: db, store: store, logger: logger}
}

// DraftMeta 草稿描述信息
type DraftMeta struct {
	Title   string `form:"title" json:"title"`
	Author  string `form:"author" json:"author"`
	Version string `form:"version" json:"version"`
	Summary string `form:"summary" json:"summary"`
}

// UploadDraft 上传合同草稿。已有草稿时替换文件与描述，旧文件在提交后删除。
func (s *ContractDraftService) UploadDraft(ctx context.Context, requisitionID, caller string, meta DraftMeta, up Upload) (*entity.ContractDraft, error) {
	exists, err := s.reqRepo.Exists(ctx, requisitionID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, repository.ErrNotFound
	}
	caller = callerOrSystem(caller)

	ext := strings.TrimPrefix(filepath.Ext(up.FileName), ".")
	if ext == "" {
		ext = "docx"
	}
	contentType, err := detectContentType(up)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageFailure, err)
	}
	objectName := fmt.Sprintf("contract_%s_%s.%s", requisitionID, uuid.New().String(), ext)
	path, err := s.store.Save(ctx, objectName, contentType, up.Content, up.Size)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageFailure, err)
	}

	var draft *entity.ContractDraft
	var oldPath string
	isNew := false
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepositories(tx)
		existing, err := repos.ContractDraft.FindByRequisitionID(ctx, requisitionID)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			draft = &entity.ContractDraft{
				ID:            newID(),
				RequisitionID: requisitionID,
				Status:        entity.ContractDraftStatusDraft,
				CreatedBy:     caller,
			}
			isNew = true
		case err != nil:
			return err
		default:
			draft = existing
			oldPath = existing.FileURL
		}

		draft.Title = meta.Title
		draft.Author = meta.Author
		draft.Version = meta.Version
		draft.Summary = meta.Summary
		draft.FileURL = path
		draft.UpdatedBy = caller

		save := repos.ContractDraft.Save
		if isNew {
			save = repos.ContractDraft.Create
		}
		if err := save(ctx, draft); err != nil {
			return fmt.Errorf("保存合同草稿失败: %w", err)
		}
		return repos.ActivityLog.LogActivity(ctx, "requisition", requisitionID, entity.ActionDraftUpload,
			"上传合同草稿", caller, map[string]interface{}{"draft_id": draft.ID, "replaced": oldPath != ""})
	})
	if err != nil {
		if delErr := s.store.Delete(ctx, path); delErr != nil {
			s.logger.Warn("cleanup stored draft failed", zap.String("path", path), zap.Error(delErr))
		}
		return nil, err
	}

	if oldPath != "" && oldPath != path {
		if err := s.store.Delete(ctx, oldPath); err != nil {
			s.logger.Warn("delete replaced draft failed", zap.String("path", oldPath), zap.Error(err))
		}
	}
	return draft, nil
}

// GetDraftByRequisition 获取申请单的合同草稿
func (s *ContractDraftService) GetDraftByRequisition(ctx context.Context, requisitionID string) (*entity.ContractDraft, error) {
	return s.repo.FindByRequisitionID(ctx, requisitionID)
}

// OpenDraft 打开草稿文件
func (s *ContractDraftService) OpenDraft(ctx context.Context, requisitionID string) (*entity.ContractDraft, io.ReadCloser, error) {
	draft, err := s.repo.FindByRequisitionID(ctx, requisitionID)
	if err != nil {
		return nil, nil, err
	}
	rc, err := openStored(ctx, s.store, draft.FileURL)
	if err != nil {
		return nil, nil, err
	}
	return draft, rc, nil
}

// SignatureService 签名服务，每个邮箱一份签名
type SignatureService struct {
	repo   *repository.SignatureRepository
	store  storage.Storage
	logger *zap.Logger
}

func NewSignatureService(repo *repository.SignatureRepository, store storage.Storage, logger *zap.Logger) *SignatureService {
	return &SignatureService{repo: repo, store: store, logger: logger}
}

// Upload 上传签名，邮箱已有签名时返回 ErrConflict
func (s *SignatureService) Upload(ctx context.Context, email, caller string, up Upload) (*entity.Signature, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: signature for %s", ErrConflict, email)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	path, contentType, err := s.save(ctx, email, up)
	if err != nil {
		return nil, err
	}

	caller = callerOrSystem(caller)
	sig := &entity.Signature{
		ID:        newID(),
		Email:     email,
		FileName:  filepath.Base(up.FileName),
		FilePath:  path,
		FileType:  contentType,
		CreatedBy: caller,
		UpdatedBy: caller,
	}
	if err := s.repo.Create(ctx, sig); err != nil {
		s.discard(ctx, path)
		if isDuplicate(err) {
			return nil, fmt.Errorf("%w: signature for %s", ErrConflict, email)
		}
		return nil, fmt.Errorf("保存签名失败: %w", err)
	}
	return sig, nil
}

// Update 替换签名文件
func (s *SignatureService) Update(ctx context.Context, email, caller string, up Upload) (*entity.Signature, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	sig, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	path, contentType, err := s.save(ctx, email, up)
	if err != nil {
		return nil, err
	}

	oldPath := sig.FilePath
	sig.FileName = filepath.Base(up.FileName)
	sig.FilePath = path
	sig.FileType = contentType
	sig.UpdatedBy = callerOrSystem(caller)
	if err := s.repo.Save(ctx, sig); err != nil {
		s.discard(ctx, path)
		return nil, fmt.Errorf("更新签名失败: %w", err)
	}
	s.discard(ctx, oldPath)
	return sig, nil
}

func (s *SignatureService) GetByEmail(ctx context.Context, email string) (*entity.Signature, error) {
	return s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

func (s *SignatureService) GetByID(ctx context.Context, id string) (*entity.Signature, error) {
	return s.repo.FindByID(ctx, id)
}

// List 全部签名，无数据时返回 ErrNotFound
func (s *SignatureService) List(ctx context.Context) ([]entity.Signature, error) {
	items, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, repository.ErrNotFound
	}
	return items, nil
}

// Delete 删除签名及文件
func (s *SignatureService) Delete(ctx context.Context, id string) error {
	sig, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	return s.remove(ctx, sig)
}

// DeleteByEmail 按邮箱删除签名及文件
func (s *SignatureService) DeleteByEmail(ctx context.Context, email string) error {
	sig, err := s.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	return s.remove(ctx, sig)
}

func (s *SignatureService) remove(ctx context.Context, sig *entity.Signature) error {
	if err := s.repo.Delete(ctx, sig.ID); err != nil {
		return fmt.Errorf("删除签名失败: %w", err)
	}
	s.discard(ctx, sig.FilePath)
	return nil
}

func (s *SignatureService) save(ctx context.Context, email string, up Upload) (string, string, error) {
	contentType, err := detectContentType(up)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrStorageFailure, err)
	}
	name := fmt.Sprintf("signature_%s_%s%s", uuid.New().String()[:8], sanitize(email), filepath.Ext(up.FileName))
	path, err := s.store.Save(ctx, name, contentType, up.Content, up.Size)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrStorageFailure, err)
	}
	return path, contentType, nil
}

func (s *SignatureService) discard(ctx context.Context, path string) {
	if path == "" {
		return
	}
	if err := s.store.Delete(ctx, path); err != nil {
		s.logger.Warn("delete signature file failed", zap.String("path", path), zap.Error(err))
	}
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, s)
}
