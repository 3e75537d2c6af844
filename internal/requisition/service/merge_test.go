package service

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/emagodi/contracts/internal/requisition/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestMergeRequisition_OnlyPresentFieldsOverwrite(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	existing := &entity.Requisition{
		ID:                "req-1",
		RequisitionTo:     "Board",
		Description:       "original",
		VendorEmail:       "vendor@example.com",
		StartDate:         &start,
		IsRenewable:       entity.No,
		RequisitionStatus: entity.RequisitionStatusDraft,
		CreatedBy:         "alice@example.com",
		UpdatedBy:         "alice@example.com",
		Approval:          &entity.Approval{ID: "apr-1"},
		Attachments:       []entity.Attachment{{ID: "att-1"}},
	}

	MergeRequisition(existing, &RequisitionPatch{
		Description:       ptr("updated"),
		IsRenewable:       ptr(entity.Yes),
		RequisitionStatus: ptr(entity.RequisitionStatusSubmitted),
		EndDate:           ptr(entity.NewDate(time.Date(2026, 1, 1, 15, 30, 0, 0, time.UTC))),
	})

	assert.Equal(t, "updated", existing.Description)
	assert.Equal(t, entity.Yes, existing.IsRenewable)
	assert.Equal(t, entity.RequisitionStatusSubmitted, existing.RequisitionStatus)
	require.NotNil(t, existing.EndDate)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), *existing.EndDate, "dates are stored at UTC midnight")

	// untouched
	assert.Equal(t, "req-1", existing.ID)
	assert.Equal(t, "Board", existing.RequisitionTo)
	assert.Equal(t, "vendor@example.com", existing.VendorEmail)
	assert.Equal(t, start, *existing.StartDate)
	assert.Equal(t, "alice@example.com", existing.CreatedBy)
	assert.Equal(t, "alice@example.com", existing.UpdatedBy)
	require.NotNil(t, existing.Approval)
	assert.Equal(t, "apr-1", existing.Approval.ID)
	assert.Len(t, existing.Attachments, 1)
}

func TestMergeRequisition_DateOnlyPayload(t *testing.T) {
	var patch RequisitionPatch
	require.NoError(t, json.Unmarshal([]byte(`{
		"date": "2025-01-02T08:15:00Z",
		"start_date": "2025-01-04",
		"end_date": "2026-01-03",
		"finance_date": "2025-01-05"
	}`), &patch))

	var r entity.Requisition
	MergeRequisition(&r, &patch)

	require.NotNil(t, r.StartDate)
	require.NotNil(t, r.EndDate)
	require.NotNil(t, r.FinanceDate)
	assert.Equal(t, time.Date(2025, 1, 4, 0, 0, 0, 0, time.UTC), *r.StartDate)
	assert.Equal(t, time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC), *r.EndDate)
	assert.Equal(t, time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC), *r.FinanceDate)
	// date 保留时刻
	require.NotNil(t, r.Date)
	assert.Equal(t, time.Date(2025, 1, 2, 8, 15, 0, 0, time.UTC), *r.Date)

	var approval ApprovalPatch
	require.NoError(t, json.Unmarshal([]byte(`{"legal_signature_date":"2025-01-06"}`), &approval))
	var a entity.Approval
	MergeApproval(&a, &approval)
	require.NotNil(t, a.LegalSignatureDate)
	assert.Equal(t, time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), *a.LegalSignatureDate)
}

func TestMergeRequisition_EmptyPatchIsIdentity(t *testing.T) {
	existing := entity.Requisition{ID: "req-1", Justification: "needed", PaymentStatus: entity.PaymentStatusDepositDue}
	merged := existing

	MergeRequisition(&merged, &RequisitionPatch{})
	MergeRequisition(&merged, nil)

	assert.Equal(t, existing, merged)
}

func TestMergeRequisition_EmptyStringIsAValue(t *testing.T) {
	existing := &entity.Requisition{Penalties: "1% per day"}
	MergeRequisition(existing, &RequisitionPatch{Penalties: ptr("")})
	assert.Equal(t, "", existing.Penalties)
}

func TestMergeApproval_AccumulatesRoles(t *testing.T) {
	existing := &entity.Approval{
		ID:             "apr-1",
		RequisitionID:  "req-1",
		LegalComments:  "ok",
		ApprovalStatus: entity.ApprovalStatusPending,
		CreatedBy:      "legal@example.com",
	}

	MergeApproval(existing, &ApprovalPatch{
		FinancialSignature: ptr("F. Director"),
		FinancialComments:  ptr("budget available"),
	})

	assert.Equal(t, "apr-1", existing.ID)
	assert.Equal(t, "req-1", existing.RequisitionID)
	assert.Equal(t, "legal@example.com", existing.CreatedBy)
	assert.Equal(t, "ok", existing.LegalComments)
	assert.Equal(t, entity.ApprovalStatusPending, existing.ApprovalStatus)
	assert.Equal(t, "F. Director", existing.FinancialSignature)
	assert.Equal(t, "budget available", existing.FinancialComments)
}

func TestPatchValidate_RejectsValuesOutsideEnum(t *testing.T) {
	cases := []struct {
		name  string
		patch RequisitionPatch
	}{
		{"status", RequisitionPatch{RequisitionStatus: ptr(entity.RequisitionStatus("ARCHIVED"))}},
		{"payment", RequisitionPatch{PaymentStatus: ptr(entity.PaymentStatus("LATE"))}},
		{"renewable", RequisitionPatch{IsRenewable: ptr(entity.YesNo("MAYBE"))}},
		{"warranty", RequisitionPatch{WarrantyNA: ptr(entity.YesNo("yes"))}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.patch.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, entity.ErrInvalidEnumValue))
		})
	}

	ok := RequisitionPatch{
		RequisitionStatus: ptr(entity.RequisitionStatusContract),
		PaymentStatus:     ptr(entity.PaymentStatusDepositDue),
		IsRenewable:       ptr(entity.Yes),
	}
	assert.NoError(t, ok.Validate())

	bad := ApprovalPatch{ApprovalStatus: ptr(entity.ApprovalStatus("SIGNED"))}
	assert.ErrorIs(t, bad.Validate(), entity.ErrInvalidEnumValue)
}
