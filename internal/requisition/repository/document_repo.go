package repository

import (
	"context"

	"github.com/emagodi/contracts/internal/requisition/entity"
	"gorm.io/gorm"
)

// ContractDraftRepository 合同草稿仓库
type ContractDraftRepository struct {
	db *gorm.DB
}

func NewContractDraftRepository(db *gorm.DB) *ContractDraftRepository {
	return &ContractDraftRepository{db: db}
}

func (r *ContractDraftRepository) FindByRequisitionID(ctx context.Context, requisitionID string) (*entity.ContractDraft, error) {
	var draft entity.ContractDraft
	if err := r.db.WithContext(ctx).Where("requisition_id = ?", requisitionID).First(&draft).Error; err != nil {
		return nil, notFound(err)
	}
	return &draft, nil
}

func (r *ContractDraftRepository) Create(ctx context.Context, draft *entity.ContractDraft) error {
	return r.db.WithContext(ctx).Create(draft).Error
}

func (r *ContractDraftRepository) Save(ctx context.Context, draft *entity.ContractDraft) error {
	return r.db.WithContext(ctx).Save(draft).Error
}

func (r *ContractDraftRepository) DeleteByRequisitionID(ctx context.Context, requisitionID string) error {
	return r.db.WithContext(ctx).Where("requisition_id = ?", requisitionID).Delete(&entity.ContractDraft{}).Error
}

// SignatureRepository 签名仓库
type SignatureRepository struct {
	db *gorm.DB
}

func NewSignatureRepository(db *gorm.DB) *SignatureRepository {
	return &SignatureRepository{db: db}
}

func (r *SignatureRepository) Create(ctx context.Context, sig *entity.Signature) error {
	return r.db.WithContext(ctx).Create(sig).Error
}

func (r *SignatureRepository) Save(ctx context.Context, sig *entity.Signature) error {
	return r.db.WithContext(ctx).Save(sig).Error
}

func (r *SignatureRepository) FindByID(ctx context.Context, id string) (*entity.Signature, error) {
	var sig entity.Signature
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&sig).Error; err != nil {
		return nil, notFound(err)
	}
	return &sig, nil
}

func (r *SignatureRepository) FindByEmail(ctx context.Context, email string) (*entity.Signature, error) {
	var sig entity.Signature
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&sig).Error; err != nil {
		return nil, notFound(err)
	}
	return &sig, nil
}

func (r *SignatureRepository) FindAll(ctx context.Context) ([]entity.Signature, error) {
	var items []entity.Signature
	err := r.db.WithContext(ctx).Order("email ASC").Find(&items).Error
	return items, err
}

func (r *SignatureRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Signature{}).Error
}

// UserRepository 用户仓库（通讯录）
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// UsersByRole 查询持有指定角色的启用用户
func (r *UserRepository) UsersByRole(ctx context.Context, role string) ([]entity.User, error) {
	var users []entity.User
	err := r.db.WithContext(ctx).
		Where("role = ? AND status = ?", role, "active").
		Order("name ASC").
		Find(&users).Error
	return users, err
}

func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}
