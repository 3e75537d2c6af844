package entity

import "time"

// Attachment 申请单附件，重命名时版本号+1
type Attachment struct {
	ID            string    `json:"id" gorm:"primaryKey;size:32"`
	RequisitionID string    `json:"requisition_id" gorm:"size:32;not null;index"`
	FileName      string    `json:"file_name" gorm:"size:255;not null"`
	FilePath      string    `json:"file_path" gorm:"size:512;not null"`
	FileType      string    `json:"file_type" gorm:"size:100"`
	Version       int       `json:"version" gorm:"not null;default:1"`
	CreatedBy     string    `json:"created_by" gorm:"size:200"`
	UpdatedBy     string    `json:"updated_by" gorm:"size:200"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Attachment) TableName() string {
	return "attachments"
}

// ContractDraft 合同草稿
type ContractDraft struct {
	ID            string    `json:"id" gorm:"primaryKey;size:32"`
	RequisitionID string    `json:"requisition_id" gorm:"size:32;not null;uniqueIndex"`
	Title         string    `json:"title" gorm:"size:200"`
	Author        string    `json:"author" gorm:"size:100"`
	Version       string    `json:"version" gorm:"size:20"`
	Status        string    `json:"status" gorm:"size:20;default:DRAFT"`
	FileURL       string    `json:"file_url" gorm:"size:512"`
	Summary       string    `json:"summary" gorm:"type:text"`
	CreatedBy     string    `json:"created_by" gorm:"size:200"`
	UpdatedBy     string    `json:"updated_by" gorm:"size:200"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (ContractDraft) TableName() string {
	return "contract_drafts"
}

const ContractDraftStatusDraft = "DRAFT"

// Signature 签名图片，按邮箱唯一
type Signature struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	Email     string    `json:"email" gorm:"size:200;not null;uniqueIndex"`
	FileName  string    `json:"file_name" gorm:"size:255"`
	FilePath  string    `json:"file_path" gorm:"size:512"`
	FileType  string    `json:"file_type" gorm:"size:100"`
	CreatedBy string    `json:"created_by" gorm:"size:200"`
	UpdatedBy string    `json:"updated_by" gorm:"size:200"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Signature) TableName() string {
	return "signatures"
}
