package repository

import (
	"context"

	"github.com/emagodi/contracts/internal/requisition/entity"
	"gorm.io/gorm"
)

// AttachmentRepository 附件仓库
type AttachmentRepository struct {
	db *gorm.DB
}

func NewAttachmentRepository(db *gorm.DB) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

func (r *AttachmentRepository) Create(ctx context.Context, a *entity.Attachment) error {
	return r.db.WithContext(ctx).Create(a).Error
}

// FindByID 根据ID查找附件
func (r *AttachmentRepository) FindByID(ctx context.Context, id string) (*entity.Attachment, error) {
	var a entity.Attachment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

// FindByRequisition 分页查询申请单附件（按ID排序保证分页稳定）
func (r *AttachmentRepository) FindByRequisition(ctx context.Context, requisitionID string, page, pageSize int) ([]entity.Attachment, int64, error) {
	var items []entity.Attachment
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Attachment{}).Where("requisition_id = ?", requisitionID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("id ASC").Offset(offset).Limit(pageSize).Find(&items).Error
	return items, total, err
}

// ListAllByRequisition 申请单全部附件
func (r *AttachmentRepository) ListAllByRequisition(ctx context.Context, requisitionID string) ([]entity.Attachment, error) {
	var items []entity.Attachment
	err := r.db.WithContext(ctx).Where("requisition_id = ?", requisitionID).Order("created_at ASC, id ASC").Find(&items).Error
	return items, err
}

// Rename 修改显示名称并将版本号原子+1
func (r *AttachmentRepository) Rename(ctx context.Context, id, newName, updatedBy string) error {
	result := r.db.WithContext(ctx).Model(&entity.Attachment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"file_name":  newName,
			"version":    gorm.Expr("version + ?", 1),
			"updated_by": updatedBy,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *AttachmentRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Attachment{}).Error
}

// DeleteByRequisitionID 删除申请单全部附件记录
func (r *AttachmentRepository) DeleteByRequisitionID(ctx context.Context, requisitionID string) error {
	return r.db.WithContext(ctx).Where("requisition_id = ?", requisitionID).Delete(&entity.Attachment{}).Error
}
