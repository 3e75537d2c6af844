package entity

import (
	"errors"
	"fmt"
)

// ErrInvalidEnumValue 枚举值不在允许范围内
var ErrInvalidEnumValue = errors.New("invalid enum value")

// RequisitionStatus 申请单流程状态
type RequisitionStatus string

const (
	RequisitionStatusDraft                    RequisitionStatus = "DRAFT"
	RequisitionStatusSubmitted                RequisitionStatus = "SUBMITTED"
	RequisitionStatusHODApproved              RequisitionStatus = "HOD_APPROVED"
	RequisitionStatusProcurementApproved      RequisitionStatus = "PROCUREMENT_APPROVED"
	RequisitionStatusFinanceApproved          RequisitionStatus = "FINANCE_APPROVED"
	RequisitionStatusCompanySecretaryApproved RequisitionStatus = "COMPANYSECRETARY_APPROVED"
	RequisitionStatusManagingDirectorApproved RequisitionStatus = "MANAGINGDIRECTOR_APPROVED"
	RequisitionStatusRejected                 RequisitionStatus = "REJECTED"
	RequisitionStatusContract                 RequisitionStatus = "CONTRACT"
)

var requisitionStatuses = []RequisitionStatus{
	RequisitionStatusDraft,
	RequisitionStatusSubmitted,
	RequisitionStatusHODApproved,
	RequisitionStatusProcurementApproved,
	RequisitionStatusFinanceApproved,
	RequisitionStatusCompanySecretaryApproved,
	RequisitionStatusManagingDirectorApproved,
	RequisitionStatusRejected,
	RequisitionStatusContract,
}

// ApprovalStatus 审批状态
type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "PENDING"
	ApprovalStatusApproved ApprovalStatus = "APPROVED"
	ApprovalStatusRejected ApprovalStatus = "REJECTED"
	ApprovalStatusReturned ApprovalStatus = "RETURNED"
)

var approvalStatuses = []ApprovalStatus{
	ApprovalStatusPending,
	ApprovalStatusApproved,
	ApprovalStatusRejected,
	ApprovalStatusReturned,
}

// PaymentStatus 付款状态
type PaymentStatus string

const (
	PaymentStatusDepositDue  PaymentStatus = "DEPOSIT_DUE"
	PaymentStatusDepositPaid PaymentStatus = "DEPOSIT_PAID"
	PaymentStatusBalanceDue  PaymentStatus = "BALANCE_DUE"
	PaymentStatusFullyPaid   PaymentStatus = "FULLY_PAID"
)

var paymentStatuses = []PaymentStatus{
	PaymentStatusDepositDue,
	PaymentStatusDepositPaid,
	PaymentStatusBalanceDue,
	PaymentStatusFullyPaid,
}

// YesNo 是/否类字段（可续约、交付不适用、质保不适用、售后支持、资金到位、采购合规）
type YesNo string

const (
	Yes YesNo = "YES"
	No  YesNo = "NO"
)

var yesNoValues = []YesNo{Yes, No}

type (
	IsRenewable         = YesNo
	DeliveryNA          = YesNo
	WarrantyNA          = YesNo
	ServiceSupport      = YesNo
	FundingAvailable    = YesNo
	ProcurementComplied = YesNo
)

func (s RequisitionStatus) Valid() bool { return member(s, requisitionStatuses) }
func (s ApprovalStatus) Valid() bool    { return member(s, approvalStatuses) }
func (s PaymentStatus) Valid() bool     { return member(s, paymentStatuses) }
func (v YesNo) Valid() bool             { return member(v, yesNoValues) }

// RequisitionStatuses 返回全部申请单状态（按流程顺序）
func RequisitionStatuses() []RequisitionStatus {
	return append([]RequisitionStatus(nil), requisitionStatuses...)
}

// ParseRequisitionStatus 解析申请单状态
func ParseRequisitionStatus(s string) (RequisitionStatus, error) {
	return parse("requisition_status", s, requisitionStatuses)
}

// ParseApprovalStatus 解析审批状态
func ParseApprovalStatus(s string) (ApprovalStatus, error) {
	return parse("approval_status", s, approvalStatuses)
}

// ParsePaymentStatus 解析付款状态
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	return parse("payment_status", s, paymentStatuses)
}

// ParseYesNo 解析是/否字段，field 用于错误信息
func ParseYesNo(field, s string) (YesNo, error) {
	return parse(field, s, yesNoValues)
}

func member[T ~string](v T, allowed []T) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

func parse[T ~string](field, s string, allowed []T) (T, error) {
	v := T(s)
	if !member(v, allowed) {
		return "", fmt.Errorf("%w: %s=%q", ErrInvalidEnumValue, field, s)
	}
	return v, nil
}
