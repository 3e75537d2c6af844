package service

import (
	"context"
	"fmt"

	"github.com/emagodi/contracts/internal/requisition/entity"
	"github.com/emagodi/contracts/internal/requisition/repository"
	"github.com/emagodi/contracts/internal/shared/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RequisitionService 申请单服务
type RequisitionService struct {
	repo   *repository.RequisitionRepository
	db     *gorm.DB
	store  storage.Storage
	logger *zap.Logger
}

func NewRequisitionService(repo *repository.RequisitionRepository, db *gorm.DB, store storage.Storage, logger *zap.Logger) *RequisitionService {
	return &RequisitionService{repo: repo, db: db, store: store, logger: logger}
}

// Create 创建申请单，未指定状态时为 DRAFT
func (s *RequisitionService) Create(ctx context.Context, caller string, patch *RequisitionPatch) (*entity.Requisition, error) {
	if patch == nil {
		patch = &RequisitionPatch{}
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	caller = callerOrSystem(caller)

	req := &entity.Requisition{
		ID:                newID(),
		RequisitionStatus: entity.RequisitionStatusDraft,
		CreatedBy:         caller,
		UpdatedBy:         caller,
	}
	MergeRequisition(req, patch)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepositories(tx)
		if err := repos.Requisition.Create(ctx, req); err != nil {
			return fmt.Errorf("创建申请单失败: %w", err)
		}
		return repos.ActivityLog.LogActivity(ctx, "requisition", req.ID, entity.ActionCreate,
			"创建申请单", caller, map[string]interface{}{"status": req.RequisitionStatus})
	})
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, req.ID)
}

// Update 合并更新申请单，ID/创建人/关联保持不变
func (s *RequisitionService) Update(ctx context.Context, id, caller string, patch *RequisitionPatch) (*entity.Requisition, error) {
	if patch == nil {
		patch = &RequisitionPatch{}
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	caller = callerOrSystem(caller)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepositories(tx)
		req, err := repos.Requisition.FindByID(ctx, id)
		if err != nil {
			return err
		}
		fromStatus := req.RequisitionStatus

		MergeRequisition(req, patch)
		req.UpdatedBy = caller

		if err := repos.Requisition.Save(ctx, req); err != nil {
			return fmt.Errorf("更新申请单失败: %w", err)
		}
		return repos.ActivityLog.LogActivity(ctx, "requisition", req.ID, entity.ActionUpdate,
			"更新申请单", caller, map[string]interface{}{"from_status": fromStatus, "to_status": req.RequisitionStatus})
	})
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

// Get 获取申请单详情
func (s *RequisitionService) Get(ctx context.Context, id string) (*entity.Requisition, error) {
	return s.repo.FindByID(ctx, id)
}

// List 全部申请单，无数据时返回 ErrNotFound
func (s *RequisitionService) List(ctx context.Context) ([]entity.Requisition, error) {
	return s.find(ctx, nil)
}

// ListByCreator 按创建人查询
func (s *RequisitionService) ListByCreator(ctx context.Context, createdBy string) ([]entity.Requisition, error) {
	return s.find(ctx, map[string]string{"created_by": createdBy})
}

// ListByStatus 按状态查询
func (s *RequisitionService) ListByStatus(ctx context.Context, status string) ([]entity.Requisition, error) {
	st, err := entity.ParseRequisitionStatus(status)
	if err != nil {
		return nil, err
	}
	return s.find(ctx, map[string]string{"requisition_status": string(st)})
}

func (s *RequisitionService) find(ctx context.Context, filters map[string]string) ([]entity.Requisition, error) {
	items, err := s.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, repository.ErrNotFound
	}
	return items, nil
}

// CountByStatus 按状态计数，零是合法结果
func (s *RequisitionService) CountByStatus(ctx context.Context, status string) (int64, error) {
	st, err := entity.ParseRequisitionStatus(status)
	if err != nil {
		return 0, err
	}
	return s.repo.CountByStatus(ctx, st)
}

// SummaryByStatus 各状态申请单数量
func (s *RequisitionService) SummaryByStatus(ctx context.Context) (map[string]int64, error) {
	rows, err := s.repo.CountGroupByStatus(ctx)
	if err != nil {
		return nil, err
	}
	summary := make(map[string]int64, len(rows))
	for _, row := range rows {
		summary[row.Status] = row.Count
	}
	return summary, nil
}

// Delete 删除申请单及其会签、草稿、附件；文件在事务提交后删除，失败只记日志
func (s *RequisitionService) Delete(ctx context.Context, id, caller string) error {
	var paths []string

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepositories(tx)
		req, err := repos.Requisition.FindByID(ctx, id)
		if err != nil {
			return err
		}
		for _, a := range req.Attachments {
			paths = append(paths, a.FilePath)
		}
		if req.ContractDraft != nil && req.ContractDraft.FileURL != "" {
			paths = append(paths, req.ContractDraft.FileURL)
		}

		if err := repos.Attachment.DeleteByRequisitionID(ctx, id); err != nil {
			return fmt.Errorf("删除附件失败: %w", err)
		}
		if err := repos.Approval.DeleteByRequisitionID(ctx, id); err != nil {
			return fmt.Errorf("删除会签记录失败: %w", err)
		}
		if err := repos.ContractDraft.DeleteByRequisitionID(ctx, id); err != nil {
			return fmt.Errorf("删除合同草稿失败: %w", err)
		}
		if err := repos.Requisition.Delete(ctx, id); err != nil {
			return fmt.Errorf("删除申请单失败: %w", err)
		}
		return repos.ActivityLog.LogActivity(ctx, "requisition", id, entity.ActionDelete,
			"删除申请单", callerOrSystem(caller), map[string]interface{}{"files": len(paths)})
	})
	if err != nil {
		return err
	}

	for _, p := range paths {
		if err := s.store.Delete(ctx, p); err != nil {
			s.logger.Warn("delete requisition file failed",
				zap.String("requisition_id", id),
				zap.String("path", p),
				zap.Error(err),
			)
		}
	}
	return nil
}
