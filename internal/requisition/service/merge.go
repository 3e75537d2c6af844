package service

import (
	"time"

	"github.com/emagodi/contracts/internal/requisition/entity"
)

// RequisitionPatch 申请单创建/更新请求。nil 字段表示未提供，合并时保持原值。
// 不含 ID、审计字段和关联，合并永远不会覆盖它们。
type RequisitionPatch struct {
	RequisitionTo   *string      `json:"requisition_to"`
	RequisitionFrom *string      `json:"requisition_from"`
	Date            *entity.Date `json:"date"`
	Description     *string      `json:"description"`

	VendorRegisteredName  *string `json:"vendor_registered_name"`
	VendorEmail           *string `json:"vendor_email"`
	VendorPhoneNumber     *string `json:"vendor_phone_number"`
	VendorTradingName     *string `json:"vendor_trading_name"`
	VendorAddress         *string `json:"vendor_address"`
	VendorContactPerson   *string `json:"vendor_contact_person"`
	ContactNumber         *string `json:"contact_number"`
	ContactPersonCapacity *string `json:"contact_person_capacity"`
	Justification         *string `json:"justification"`

	StartDate      *entity.Date  `json:"start_date"`
	EndDate        *entity.Date  `json:"end_date"`
	DurationDays   *string       `json:"duration_days"`
	DurationWeeks  *string       `json:"duration_weeks"`
	DurationMonths *string       `json:"duration_months"`
	DurationYears  *string       `json:"duration_years"`
	IsRenewable    *entity.YesNo `json:"is_renewable"`
	RenewalDays    *string       `json:"renewal_days"`
	RenewalWeeks   *string       `json:"renewal_weeks"`
	RenewalMonths  *string       `json:"renewal_months"`
	RenewalYears   *string       `json:"renewal_years"`

	ContractPrice      *string `json:"contract_price"`
	VAT                *string `json:"vat"`
	TotalContractPrice *string `json:"total_contract_price"`
	TotalOnSignature   *string `json:"total_on_signature"`
	DownPayment        *string `json:"down_payment"`
	BalancePayment     *string `json:"balance_payment"`

	DeliveryDays         *string       `json:"delivery_days"`
	DeliveryWeeks        *string       `json:"delivery_weeks"`
	DeliveryMonths       *string       `json:"delivery_months"`
	DeliveryNA           *entity.YesNo `json:"delivery_na"`
	Penalties            *string       `json:"penalties"`
	AcceptanceConditions *string       `json:"acceptance_conditions"`
	WarrantyDays         *string       `json:"warranty_days"`
	WarrantyWeeks        *string       `json:"warranty_weeks"`
	WarrantyMonths       *string       `json:"warranty_months"`
	WarrantyNA           *entity.YesNo `json:"warranty_na"`

	ServiceSupport      *entity.YesNo `json:"service_support"`
	SpecialIssues       *string       `json:"special_issues"`
	FundingAvailable    *entity.YesNo `json:"funding_available"`
	ProcurementComplied *entity.YesNo `json:"procurement_complied"`

	FinanceDirector    *string      `json:"finance_director"`
	FinanceDate        *entity.Date `json:"finance_date"`
	ProcurementManager *string      `json:"procurement_manager"`
	ProcurementDate    *entity.Date `json:"procurement_date"`
	HeadOfDept         *string      `json:"head_of_dept"`
	HeadDate           *entity.Date `json:"head_date"`
	CompanySecretary   *string      `json:"company_secretary"`
	SecretaryDate      *entity.Date `json:"secretary_date"`

	RequisitionStatus *entity.RequisitionStatus `json:"requisition_status"`
	PaymentStatus     *entity.PaymentStatus     `json:"payment_status"`
}

// Validate 校验枚举字段
func (p *RequisitionPatch) Validate() error {
	if p.RequisitionStatus != nil {
		if _, err := entity.ParseRequisitionStatus(string(*p.RequisitionStatus)); err != nil {
			return err
		}
	}
	if p.PaymentStatus != nil {
		if _, err := entity.ParsePaymentStatus(string(*p.PaymentStatus)); err != nil {
			return err
		}
	}
	yesNo := []struct {
		field string
		value *entity.YesNo
	}{
		{"is_renewable", p.IsRenewable},
		{"delivery_na", p.DeliveryNA},
		{"warranty_na", p.WarrantyNA},
		{"service_support", p.ServiceSupport},
		{"funding_available", p.FundingAvailable},
		{"procurement_complied", p.ProcurementComplied},
	}
	for _, f := range yesNo {
		if f.value == nil {
			continue
		}
		if _, err := entity.ParseYesNo(f.field, string(*f.value)); err != nil {
			return err
		}
	}
	return nil
}

// MergeRequisition 将 patch 中已提供的字段写入 r
func MergeRequisition(r *entity.Requisition, p *RequisitionPatch) {
	if p == nil {
		return
	}
	assign(&r.RequisitionTo, p.RequisitionTo)
	assign(&r.RequisitionFrom, p.RequisitionFrom)
	assignTime(&r.Date, p.Date)
	assign(&r.Description, p.Description)

	assign(&r.VendorRegisteredName, p.VendorRegisteredName)
	assign(&r.VendorEmail, p.VendorEmail)
	assign(&r.VendorPhoneNumber, p.VendorPhoneNumber)
	assign(&r.VendorTradingName, p.VendorTradingName)
	assign(&r.VendorAddress, p.VendorAddress)
	assign(&r.VendorContactPerson, p.VendorContactPerson)
	assign(&r.ContactNumber, p.ContactNumber)
	assign(&r.ContactPersonCapacity, p.ContactPersonCapacity)
	assign(&r.Justification, p.Justification)

	assignDate(&r.StartDate, p.StartDate)
	assignDate(&r.EndDate, p.EndDate)
	assign(&r.DurationDays, p.DurationDays)
	assign(&r.DurationWeeks, p.DurationWeeks)
	assign(&r.DurationMonths, p.DurationMonths)
	assign(&r.DurationYears, p.DurationYears)
	assign(&r.IsRenewable, p.IsRenewable)
	assign(&r.RenewalDays, p.RenewalDays)
	assign(&r.RenewalWeeks, p.RenewalWeeks)
	assign(&r.RenewalMonths, p.RenewalMonths)
	assign(&r.RenewalYears, p.RenewalYears)

	assign(&r.ContractPrice, p.ContractPrice)
	assign(&r.VAT, p.VAT)
	assign(&r.TotalContractPrice, p.TotalContractPrice)
	assign(&r.TotalOnSignature, p.TotalOnSignature)
	assign(&r.DownPayment, p.DownPayment)
	assign(&r.BalancePayment, p.BalancePayment)

	assign(&r.DeliveryDays, p.DeliveryDays)
	assign(&r.DeliveryWeeks, p.DeliveryWeeks)
	assign(&r.DeliveryMonths, p.DeliveryMonths)
	assign(&r.DeliveryNA, p.DeliveryNA)
	assign(&r.Penalties, p.Penalties)
	assign(&r.AcceptanceConditions, p.AcceptanceConditions)
	assign(&r.WarrantyDays, p.WarrantyDays)
	assign(&r.WarrantyWeeks, p.WarrantyWeeks)
	assign(&r.WarrantyMonths, p.WarrantyMonths)
	assign(&r.WarrantyNA, p.WarrantyNA)

	assign(&r.ServiceSupport, p.ServiceSupport)
	assign(&r.SpecialIssues, p.SpecialIssues)
	assign(&r.FundingAvailable, p.FundingAvailable)
	assign(&r.ProcurementComplied, p.ProcurementComplied)

	assign(&r.FinanceDirector, p.FinanceDirector)
	assignDate(&r.FinanceDate, p.FinanceDate)
	assign(&r.ProcurementManager, p.ProcurementManager)
	assignDate(&r.ProcurementDate, p.ProcurementDate)
	assign(&r.HeadOfDept, p.HeadOfDept)
	assignDate(&r.HeadDate, p.HeadDate)
	assign(&r.CompanySecretary, p.CompanySecretary)
	assignDate(&r.SecretaryDate, p.SecretaryDate)

	assign(&r.RequisitionStatus, p.RequisitionStatus)
	assign(&r.PaymentStatus, p.PaymentStatus)
}

// ApprovalPatch 会签提交请求
type ApprovalPatch struct {
	ApprovalTo        *string      `json:"approval_to"`
	ApprovalDate      *entity.Date `json:"approval_date"`
	ApprovalReference *string      `json:"approval_reference"`

	LegalSignature     *string      `json:"legal_signature"`
	LegalSignatureDate *entity.Date `json:"legal_signature_date"`
	LegalComments      *string      `json:"legal_comments"`

	TechnicalSignature     *string      `json:"technical_signature"`
	TechnicalSignatureDate *entity.Date `json:"technical_signature_date"`
	TechnicalComments      *string      `json:"technical_comments"`

	FinancialSignature     *string      `json:"financial_signature"`
	FinancialSignatureDate *entity.Date `json:"financial_signature_date"`
	FinancialComments      *string      `json:"financial_comments"`

	CommercialSignature     *string      `json:"commercial_signature"`
	CommercialSignatureDate *entity.Date `json:"commercial_signature_date"`
	CommercialComments      *string      `json:"commercial_comments"`

	BusinessDevelopmentSignature     *string      `json:"business_development_signature"`
	BusinessDevelopmentSignatureDate *entity.Date `json:"business_development_signature_date"`
	BusinessDevelopmentComments      *string      `json:"business_development_comments"`

	ProcurementSignature     *string      `json:"procurement_signature"`
	ProcurementSignatureDate *entity.Date `json:"procurement_signature_date"`
	ProcurementComments      *string      `json:"procurement_comments"`

	ApprovalStatus *entity.ApprovalStatus `json:"approval_status"`
}

func (p *ApprovalPatch) Validate() error {
	if p.ApprovalStatus != nil {
		if _, err := entity.ParseApprovalStatus(string(*p.ApprovalStatus)); err != nil {
			return err
		}
	}
	return nil
}

// MergeApproval 将 patch 中已提供的字段写入 a
func MergeApproval(a *entity.Approval, p *ApprovalPatch) {
	if p == nil {
		return
	}
	assign(&a.ApprovalTo, p.ApprovalTo)
	assignTime(&a.ApprovalDate, p.ApprovalDate)
	assign(&a.ApprovalReference, p.ApprovalReference)

	assign(&a.LegalSignature, p.LegalSignature)
	assignTime(&a.LegalSignatureDate, p.LegalSignatureDate)
	assign(&a.LegalComments, p.LegalComments)

	assign(&a.TechnicalSignature, p.TechnicalSignature)
	assignTime(&a.TechnicalSignatureDate, p.TechnicalSignatureDate)
	assign(&a.TechnicalComments, p.TechnicalComments)

	assign(&a.FinancialSignature, p.FinancialSignature)
	assignTime(&a.FinancialSignatureDate, p.FinancialSignatureDate)
	assign(&a.FinancialComments, p.FinancialComments)

	assign(&a.CommercialSignature, p.CommercialSignature)
	assignTime(&a.CommercialSignatureDate, p.CommercialSignatureDate)
	assign(&a.CommercialComments, p.CommercialComments)

	assign(&a.BusinessDevelopmentSignature, p.BusinessDevelopmentSignature)
	assignTime(&a.BusinessDevelopmentSignatureDate, p.BusinessDevelopmentSignatureDate)
	assign(&a.BusinessDevelopmentComments, p.BusinessDevelopmentComments)

	assign(&a.ProcurementSignature, p.ProcurementSignature)
	assignTime(&a.ProcurementSignatureDate, p.ProcurementSignatureDate)
	assign(&a.ProcurementComments, p.ProcurementComments)

	assign(&a.ApprovalStatus, p.ApprovalStatus)
}

func assign[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func assignTime(dst **time.Time, src *entity.Date) {
	if src != nil {
		t := src.UTC()
		*dst = &t
	}
}

// assignDate 日期字段统一存为 UTC 零点，保证到期窗口按日比较
func assignDate(dst **time.Time, src *entity.Date) {
	if src != nil {
		t := dateOf(src.Time)
		*dst = &t
	}
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
