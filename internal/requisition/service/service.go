package service

import (
	"errors"
	"strings"

	"github.com/emagodi/contracts/internal/requisition/repository"
	"github.com/emagodi/contracts/internal/shared/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrStorageFailure   = errors.New("storage failure")
	ErrTransportFailure = errors.New("notification transport failure")
	ErrConflict         = errors.New("resource already exists")
	ErrInvalidInput     = errors.New("invalid input")
)

// SystemCaller 无法解析调用者时记录的身份
const SystemCaller = "SYSTEM"

// Services 服务集合
type Services struct {
	Requisition   *RequisitionService
	Approval      *ApprovalService
	DueDate       *DueDateService
	Attachment    *AttachmentService
	ContractDraft *ContractDraftService
	Signature     *SignatureService
	Export        *ExportService
}

// NewServices 创建服务集合
func NewServices(db *gorm.DB, repos *repository.Repositories, store storage.Storage, logger *zap.Logger) *Services {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Services{
		Requisition:   NewRequisitionService(repos.Requisition, db, store, logger),
		Approval:      NewApprovalService(repos.Approval, db),
		DueDate:       NewDueDateService(repos.Requisition),
		Attachment:    NewAttachmentService(repos.Attachment, repos.Requisition, db, store, logger),
		ContractDraft: NewContractDraftService(repos.ContractDraft, repos.Requisition, db, store, logger),
		Signature:     NewSignatureService(repos.Signature, store, logger),
		Export:        NewExportService(repos.Requisition),
	}
}

func newID() string {
	return uuid.New().String()[:32]
}

func callerOrSystem(caller string) string {
	if strings.TrimSpace(caller) == "" {
		return SystemCaller
	}
	return caller
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
