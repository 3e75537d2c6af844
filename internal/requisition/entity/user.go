package entity

import (
	"time"

	"gorm.io/datatypes"
)

// 角色
const (
	RoleAdmin              = "ADMIN"
	RolePALegal            = "PALEGAL"
	RoleCompanySecretary   = "COMPANYSECRETARY"
	RoleManagingDirector   = "MANAGINGDIRECTOR"
	RoleProcurementManager = "PROCUREMENTMANAGER"
	RoleFinanceDirector    = "FINANCEDIRECTOR"
	RoleTechnicalDirector  = "TECHNICALDIRECTOR"
	RoleCommercialDirector = "COMMERCIALDIRECTOR"
	RoleBusinessManager    = "BUSINESSMANAGER"
	RoleHOD                = "HOD"
	RoleUser               = "USER"
)

// ApprovingRoles 可提交会签的角色
var ApprovingRoles = []string{
	RolePALegal,
	RoleCompanySecretary,
	RoleManagingDirector,
	RoleProcurementManager,
	RoleFinanceDirector,
	RoleTechnicalDirector,
	RoleCommercialDirector,
	RoleBusinessManager,
	RoleHOD,
}

// User 通讯录用户（仅用于按角色查找通知对象）
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	Name      string    `json:"name" gorm:"size:100"`
	Email     string    `json:"email" gorm:"size:200;uniqueIndex"`
	Phone     string    `json:"phone" gorm:"size:50"`
	Role      string    `json:"role" gorm:"size:40;index"`
	Status    string    `json:"status" gorm:"size:20;default:active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// ActivityLog 申请单操作日志
type ActivityLog struct {
	ID         string         `json:"id" gorm:"primaryKey;size:32"`
	EntityType string         `json:"entity_type" gorm:"size:50;not null;index:idx_activity_entity"` // requisition/approval/attachment/contract_draft
	EntityID   string         `json:"entity_id" gorm:"size:32;not null;index:idx_activity_entity"`
	Action     string         `json:"action" gorm:"size:50;not null"`
	Content    string         `json:"content" gorm:"type:text"`
	Metadata   datatypes.JSON `json:"metadata"`
	Operator   string         `json:"operator" gorm:"size:200"`
	CreatedAt  time.Time      `json:"created_at"`
}

func (ActivityLog) TableName() string {
	return "activity_logs"
}

// 操作类型
const (
	ActionCreate         = "create"
	ActionUpdate         = "update"
	ActionDelete         = "delete"
	ActionApprovalCreate = "approval_create"
	ActionApprovalMerge  = "approval_merge"
	ActionAttachmentAdd  = "attachment_add"
	ActionRename         = "rename"
	ActionDraftUpload    = "draft_upload"
)
