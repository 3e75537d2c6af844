package repository

import (
	"context"

	"github.com/emagodi/contracts/internal/requisition/entity"
	"gorm.io/gorm"
)

// ApprovalRepository 会签记录仓库
type ApprovalRepository struct {
	db *gorm.DB
}

func NewApprovalRepository(db *gorm.DB) *ApprovalRepository {
	return &ApprovalRepository{db: db}
}

// FindByRequisitionID 按申请单查找会签记录
func (r *ApprovalRepository) FindByRequisitionID(ctx context.Context, requisitionID string) (*entity.Approval, error) {
	var approval entity.Approval
	err := r.db.WithContext(ctx).Where("requisition_id = ?", requisitionID).First(&approval).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &approval, nil
}

// FindByStatus 按审批状态查询
func (r *ApprovalRepository) FindByStatus(ctx context.Context, status entity.ApprovalStatus) ([]entity.Approval, error) {
	var items []entity.Approval
	err := r.db.WithContext(ctx).Where("approval_status = ?", status).Order("created_at DESC, id ASC").Find(&items).Error
	return items, err
}

func (r *ApprovalRepository) Create(ctx context.Context, approval *entity.Approval) error {
	return r.db.WithContext(ctx).Create(approval).Error
}

func (r *ApprovalRepository) Save(ctx context.Context, approval *entity.Approval) error {
	return r.db.WithContext(ctx).Save(approval).Error
}

// DeleteByRequisitionID 删除申请单的会签记录
func (r *ApprovalRepository) DeleteByRequisitionID(ctx context.Context, requisitionID string) error {
	return r.db.WithContext(ctx).Where("requisition_id = ?", requisitionID).Delete(&entity.Approval{}).Error
}

// CountByRequisitionID 统计申请单的会签记录数
func (r *ApprovalRepository) CountByRequisitionID(ctx context.Context, requisitionID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Approval{}).Where("requisition_id = ?", requisitionID).Count(&count).Error
	return count, err
}
