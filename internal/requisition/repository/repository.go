package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repositories 申请单仓库集合
type Repositories struct {
	Requisition   *RequisitionRepository
	Approval      *ApprovalRepository
	Attachment    *AttachmentRepository
	ContractDraft *ContractDraftRepository
	Signature     *SignatureRepository
	User          *UserRepository
	ActivityLog   *ActivityLogRepository
}

// NewRepositories 创建仓库集合；传入事务句柄即得到事务内的仓库
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Requisition:   NewRequisitionRepository(db),
		Approval:      NewApprovalRepository(db),
		Attachment:    NewAttachmentRepository(db),
		ContractDraft: NewContractDraftRepository(db),
		Signature:     NewSignatureRepository(db),
		User:          NewUserRepository(db),
		ActivityLog:   NewActivityLogRepository(db),
	}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
