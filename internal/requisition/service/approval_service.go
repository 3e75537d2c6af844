package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/emagodi/contracts/internal/requisition/entity"
	"github.com/emagodi/contracts/internal/requisition/repository"
	"gorm.io/gorm"
)

// ApprovalService 会签服务：每个申请单只有一条会签记录，后续提交合并到同一条记录
type ApprovalService struct {
	repo *repository.ApprovalRepository
	db   *gorm.DB
}

func NewApprovalService(repo *repository.ApprovalRepository, db *gorm.DB) *ApprovalService {
	return &ApprovalService{repo: repo, db: db}
}

// AttachApproval 首次提交创建会签记录，之后的提交合并到已有记录（ID不变）
func (s *ApprovalService) AttachApproval(ctx context.Context, requisitionID, caller string, patch *ApprovalPatch) (*entity.Approval, error) {
	if patch == nil {
		patch = &ApprovalPatch{}
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	caller = callerOrSystem(caller)

	var result *entity.Approval
	for attempt := 0; ; attempt++ {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var err error
			result, err = s.attach(ctx, tx, requisitionID, caller, patch)
			return err
		})
		// 并发的首次提交撞上唯一索引：重新执行一次，走合并分支
		if errors.Is(err, errApprovalRace) && attempt == 0 {
			continue
		}
		if err != nil {
			return nil, err
		}
		return result, nil
	}
}

// errApprovalRace 另一请求已先创建了会签记录
var errApprovalRace = fmt.Errorf("%w: approval created concurrently", ErrConflict)

func (s *ApprovalService) attach(ctx context.Context, tx *gorm.DB, requisitionID, caller string, patch *ApprovalPatch) (*entity.Approval, error) {
	repos := repository.NewRepositories(tx)

	exists, err := repos.Requisition.Exists(ctx, requisitionID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, repository.ErrNotFound
	}

	approval, err := repos.Approval.FindByRequisitionID(ctx, requisitionID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		approval = &entity.Approval{
			ID:            newID(),
			RequisitionID: requisitionID,
			CreatedBy:     caller,
			UpdatedBy:     caller,
		}
		MergeApproval(approval, patch)
		if err := repos.Approval.Create(ctx, approval); err != nil {
			if isDuplicate(err) {
				return nil, errApprovalRace
			}
			return nil, fmt.Errorf("创建会签记录失败: %w", err)
		}
		if err := repos.ActivityLog.LogActivity(ctx, "requisition", requisitionID, entity.ActionApprovalCreate,
			"创建会签记录", caller, map[string]interface{}{"approval_id": approval.ID, "status": approval.ApprovalStatus}); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		MergeApproval(approval, patch)
		approval.UpdatedBy = caller
		if err := repos.Approval.Save(ctx, approval); err != nil {
			return nil, fmt.Errorf("更新会签记录失败: %w", err)
		}
		if err := repos.ActivityLog.LogActivity(ctx, "requisition", requisitionID, entity.ActionApprovalMerge,
			"更新会签记录", caller, map[string]interface{}{"approval_id": approval.ID, "status": approval.ApprovalStatus}); err != nil {
			return nil, err
		}
	}

	if err := tx.WithContext(ctx).Model(&entity.Requisition{}).
		Where("id = ?", requisitionID).
		Update("updated_by", caller).Error; err != nil {
		return nil, err
	}
	return approval, nil
}

// GetApproval 获取申请单的会签记录
func (s *ApprovalService) GetApproval(ctx context.Context, requisitionID string) (*entity.Approval, error) {
	return s.repo.FindByRequisitionID(ctx, requisitionID)
}

// ListByStatus 按审批状态查询会签记录
func (s *ApprovalService) ListByStatus(ctx context.Context, status string) ([]entity.Approval, error) {
	st, err := entity.ParseApprovalStatus(status)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.FindByStatus(ctx, st)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, repository.ErrNotFound
	}
	return items, nil
}
