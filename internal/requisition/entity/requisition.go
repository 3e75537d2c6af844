package entity

import "time"

// Requisition 采购申请单（审批流程聚合根）
type Requisition struct {
	ID string `json:"id" gorm:"primaryKey;size:32"`

	// 基本信息
	RequisitionTo   string     `json:"requisition_to" gorm:"size:200"`
	RequisitionFrom string     `json:"requisition_from" gorm:"size:200"`
	Date            *time.Time `json:"date"`
	Description     string     `json:"description" gorm:"type:text"`

	// 供应商
	VendorRegisteredName  string `json:"vendor_registered_name" gorm:"size:200"`
	VendorEmail           string `json:"vendor_email" gorm:"size:200"`
	VendorPhoneNumber     string `json:"vendor_phone_number" gorm:"size:50"`
	VendorTradingName     string `json:"vendor_trading_name" gorm:"size:200"`
	VendorAddress         string `json:"vendor_address" gorm:"size:500"`
	VendorContactPerson   string `json:"vendor_contact_person" gorm:"size:100"`
	ContactNumber         string `json:"contact_number" gorm:"size:50"`
	ContactPersonCapacity string `json:"contact_person_capacity" gorm:"size:100"`
	Justification         string `json:"justification" gorm:"type:text"`

	// 合同期限（结束日期独立存储，不随期限字段重新推导）
	StartDate      *time.Time  `json:"start_date" gorm:"index"`
	EndDate        *time.Time  `json:"end_date" gorm:"index"`
	DurationDays   string      `json:"duration_days" gorm:"size:20"`
	DurationWeeks  string      `json:"duration_weeks" gorm:"size:20"`
	DurationMonths string      `json:"duration_months" gorm:"size:20"`
	DurationYears  string      `json:"duration_years" gorm:"size:20"`
	IsRenewable    IsRenewable `json:"is_renewable" gorm:"size:10"`
	RenewalDays    string      `json:"renewal_days" gorm:"size:20"`
	RenewalWeeks   string      `json:"renewal_weeks" gorm:"size:20"`
	RenewalMonths  string      `json:"renewal_months" gorm:"size:20"`
	RenewalYears   string      `json:"renewal_years" gorm:"size:20"`

	// 金额
	ContractPrice      string `json:"contract_price" gorm:"size:50"`
	VAT                string `json:"vat" gorm:"size:50"`
	TotalContractPrice string `json:"total_contract_price" gorm:"size:50"`
	TotalOnSignature   string `json:"total_on_signature" gorm:"size:50"`
	DownPayment        string `json:"down_payment" gorm:"size:50"`
	BalancePayment     string `json:"balance_payment" gorm:"size:50"`

	// 交付与质保
	DeliveryDays         string     `json:"delivery_days" gorm:"size:20"`
	DeliveryWeeks        string     `json:"delivery_weeks" gorm:"size:20"`
	DeliveryMonths       string     `json:"delivery_months" gorm:"size:20"`
	DeliveryNA           DeliveryNA `json:"delivery_na" gorm:"size:10"`
	Penalties            string     `json:"penalties" gorm:"type:text"`
	AcceptanceConditions string     `json:"acceptance_conditions" gorm:"type:text"`
	WarrantyDays         string     `json:"warranty_days" gorm:"size:20"`
	WarrantyWeeks        string     `json:"warranty_weeks" gorm:"size:20"`
	WarrantyMonths       string     `json:"warranty_months" gorm:"size:20"`
	WarrantyNA           WarrantyNA `json:"warranty_na" gorm:"size:10"`

	ServiceSupport      ServiceSupport      `json:"service_support" gorm:"size:10"`
	SpecialIssues       string              `json:"special_issues" gorm:"type:text"`
	FundingAvailable    FundingAvailable    `json:"funding_available" gorm:"size:10"`
	ProcurementComplied ProcurementComplied `json:"procurement_complied" gorm:"size:10"`

	// 内部签批
	FinanceDirector    string     `json:"finance_director" gorm:"size:100"`
	FinanceDate        *time.Time `json:"finance_date"`
	ProcurementManager string     `json:"procurement_manager" gorm:"size:100"`
	ProcurementDate    *time.Time `json:"procurement_date"`
	HeadOfDept         string     `json:"head_of_dept" gorm:"size:100"`
	HeadDate           *time.Time `json:"head_date"`
	CompanySecretary   string     `json:"company_secretary" gorm:"size:100"`
	SecretaryDate      *time.Time `json:"secretary_date"`

	RequisitionStatus RequisitionStatus `json:"requisition_status" gorm:"size:40;index"`
	PaymentStatus     PaymentStatus     `json:"payment_status" gorm:"size:40"`

	// 审计
	CreatedBy string    `json:"created_by" gorm:"size:200;index"`
	UpdatedBy string    `json:"updated_by" gorm:"size:200"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 关联（单向持有）
	Approval      *Approval      `json:"approval,omitempty" gorm:"foreignKey:RequisitionID"`
	ContractDraft *ContractDraft `json:"contract_draft,omitempty" gorm:"foreignKey:RequisitionID"`
	Attachments   []Attachment   `json:"attachments,omitempty" gorm:"foreignKey:RequisitionID"`
}

func (Requisition) TableName() string {
	return "requisitions"
}
