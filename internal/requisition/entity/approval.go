package entity

import "time"

// Approval 多方会签记录，每个申请单至多一条
type Approval struct {
	ID            string `json:"id" gorm:"primaryKey;size:32"`
	RequisitionID string `json:"requisition_id" gorm:"size:32;not null;uniqueIndex"`

	ApprovalTo        string     `json:"approval_to" gorm:"size:200"`
	ApprovalDate      *time.Time `json:"approval_date"`
	ApprovalReference string     `json:"approval_reference" gorm:"size:100"`

	LegalSignature     string     `json:"legal_signature" gorm:"size:100"`
	LegalSignatureDate *time.Time `json:"legal_signature_date"`
	LegalComments      string     `json:"legal_comments" gorm:"type:text"`

	TechnicalSignature     string     `json:"technical_signature" gorm:"size:100"`
	TechnicalSignatureDate *time.Time `json:"technical_signature_date"`
	TechnicalComments      string     `json:"technical_comments" gorm:"type:text"`

	FinancialSignature     string     `json:"financial_signature" gorm:"size:100"`
	FinancialSignatureDate *time.Time `json:"financial_signature_date"`
	FinancialComments      string     `json:"financial_comments" gorm:"type:text"`

	CommercialSignature     string     `json:"commercial_signature" gorm:"size:100"`
	CommercialSignatureDate *time.Time `json:"commercial_signature_date"`
	CommercialComments      string     `json:"commercial_comments" gorm:"type:text"`

	BusinessDevelopmentSignature     string     `json:"business_development_signature" gorm:"size:100"`
	BusinessDevelopmentSignatureDate *time.Time `json:"business_development_signature_date"`
	BusinessDevelopmentComments      string     `json:"business_development_comments" gorm:"type:text"`

	ProcurementSignature     string     `json:"procurement_signature" gorm:"size:100"`
	ProcurementSignatureDate *time.Time `json:"procurement_signature_date"`
	ProcurementComments      string     `json:"procurement_comments" gorm:"type:text"`

	ApprovalStatus ApprovalStatus `json:"approval_status" gorm:"size:20;index"`

	CreatedBy string    `json:"created_by" gorm:"size:200"`
	UpdatedBy string    `json:"updated_by" gorm:"size:200"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Approval) TableName() string {
	return "approvals"
}
