package repository

import (
	"context"
	"time"

	"github.com/emagodi/contracts/internal/requisition/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RequisitionRepository 申请单仓库
type RequisitionRepository struct {
	db *gorm.DB
}

func NewRequisitionRepository(db *gorm.DB) *RequisitionRepository {
	return &RequisitionRepository{db: db}
}

// Create 创建申请单（不级联关联）
func (r *RequisitionRepository) Create(ctx context.Context, req *entity.Requisition) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(req).Error
}

// Save 保存申请单字段，审批/附件/草稿关联不受影响
func (r *RequisitionRepository) Save(ctx context.Context, req *entity.Requisition) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(req).Error
}

// FindByID 根据ID查找申请单（含审批、草稿、附件）
func (r *RequisitionRepository) FindByID(ctx context.Context, id string) (*entity.Requisition, error) {
	var req entity.Requisition
	err := r.db.WithContext(ctx).
		Preload("Approval").
		Preload("ContractDraft").
		Preload("Attachments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Where("id = ?", id).
		First(&req).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &req, nil
}

// Exists 申请单是否存在
func (r *RequisitionRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Requisition{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// FindAll 查询申请单，filters 支持 created_by / requisition_status / payment_status
func (r *RequisitionRepository) FindAll(ctx context.Context, filters map[string]string) ([]entity.Requisition, error) {
	var items []entity.Requisition
	query := r.db.WithContext(ctx).Model(&entity.Requisition{})

	if createdBy := filters["created_by"]; createdBy != "" {
		query = query.Where("created_by = ?", createdBy)
	}
	if status := filters["requisition_status"]; status != "" {
		query = query.Where("requisition_status = ?", status)
	}
	if status := filters["payment_status"]; status != "" {
		query = query.Where("payment_status = ?", status)
	}

	err := query.Preload("Approval").Order("created_at DESC, id ASC").Find(&items).Error
	return items, err
}

// CountByStatus 按状态计数
func (r *RequisitionRepository) CountByStatus(ctx context.Context, status entity.RequisitionStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Requisition{}).
		Where("requisition_status = ?", status).
		Count(&count).Error
	return count, err
}

// StatusCount 状态分组计数行
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// CountGroupByStatus 按状态分组计数（仅返回有数据的状态）
func (r *RequisitionRepository) CountGroupByStatus(ctx context.Context) ([]StatusCount, error) {
	var rows []StatusCount
	err := r.db.WithContext(ctx).Model(&entity.Requisition{}).
		Select("requisition_status AS status, COUNT(*) AS count").
		Where("requisition_status IS NOT NULL AND requisition_status <> ''").
		Group("requisition_status").
		Scan(&rows).Error
	return rows, err
}

// FindRenewalDue 可续约且处于合同状态、结束日期落在 [from, to) 的申请单
func (r *RequisitionRepository) FindRenewalDue(ctx context.Context, from, to time.Time) ([]entity.Requisition, error) {
	var items []entity.Requisition
	err := r.db.WithContext(ctx).Scopes(renewalDue(from, to)).
		Order("end_date ASC, id ASC").
		Find(&items).Error
	return items, err
}

// CountRenewalDue 续约到期计数
func (r *RequisitionRepository) CountRenewalDue(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Requisition{}).Scopes(renewalDue(from, to)).Count(&count).Error
	return count, err
}

// FindPaymentDue 定金待付、开始日期落在 [from, to) 的合同
func (r *RequisitionRepository) FindPaymentDue(ctx context.Context, from, to time.Time) ([]entity.Requisition, error) {
	var items []entity.Requisition
	err := r.db.WithContext(ctx).Scopes(paymentDue(from, to)).
		Order("start_date ASC, id ASC").
		Find(&items).Error
	return items, err
}

// CountPaymentDue 付款到期计数
func (r *RequisitionRepository) CountPaymentDue(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Requisition{}).Scopes(paymentDue(from, to)).Count(&count).Error
	return count, err
}

// Delete 删除申请单本身（关联由调用方在同一事务内先行删除）
func (r *RequisitionRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Requisition{}).Error
}

func renewalDue(from, to time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("is_renewable = ? AND requisition_status = ?", entity.Yes, entity.RequisitionStatusContract).
			Where("end_date >= ? AND end_date < ?", from, to)
	}
}

func paymentDue(from, to time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("requisition_status = ? AND payment_status = ?", entity.RequisitionStatusContract, entity.PaymentStatusDepositDue).
			Where("start_date >= ? AND start_date < ?", from, to)
	}
}
