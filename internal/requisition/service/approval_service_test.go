package service

import (
	"context"
	"testing"

	"github.com/emagodi/contracts/internal/requisition/entity"
	"github.com/emagodi/contracts/internal/requisition/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func TestAttachApproval_SingletonPerRequisition(t *testing.T) {
	db, svc, _ := setupServices(t)
	ctx := context.Background()

	r, err := svc.Requisition.Create(ctx, "alice@example.com", &RequisitionPatch{})
	require.NoError(t, err)
	require.Equal(t, entity.RequisitionStatusDraft, r.RequisitionStatus)

	first, err := svc.Approval.AttachApproval(ctx, r.ID, "legal@example.com", &ApprovalPatch{
		LegalSignature: ptr("L. Counsel"),
		ApprovalStatus: ptr(entity.ApprovalStatusPending),
	})
	require.NoError(t, err)
	assert.Equal(t, r.ID, first.RequisitionID)
	assert.Equal(t, "legal@example.com", first.CreatedBy)

	second, err := svc.Approval.AttachApproval(ctx, r.ID, "finance@example.com", &ApprovalPatch{
		LegalComments: ptr("reviewed"),
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "second submission merges into the existing record")
	assert.Equal(t, "L. Counsel", second.LegalSignature)
	assert.Equal(t, "reviewed", second.LegalComments)
	assert.Equal(t, entity.ApprovalStatusPending, second.ApprovalStatus)
	assert.Equal(t, "legal@example.com", second.CreatedBy)
	assert.Equal(t, "finance@example.com", second.UpdatedBy)

	var count int64
	db.Model(&entity.Approval{}).Where("requisition_id = ?", r.ID).Count(&count)
	assert.EqualValues(t, 1, count)

	got, err := svc.Requisition.Get(ctx, r.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Approval)
	assert.Equal(t, first.ID, got.Approval.ID)
	assert.Equal(t, "finance@example.com", got.UpdatedBy)
}

func TestAttachApproval_ConcurrentFirstSubmissionMerges(t *testing.T) {
	db, svc, _ := setupServices(t)
	ctx := context.Background()

	r, err := svc.Requisition.Create(ctx, "alice@example.com", &RequisitionPatch{})
	require.NoError(t, err)
	first, err := svc.Approval.AttachApproval(ctx, r.ID, "legal@example.com", &ApprovalPatch{
		LegalComments: ptr("legal ok"),
	})
	require.NoError(t, err)

	// 让下一次查询看不到已有记录，模拟两个首次提交同时通过了存在性检查
	hidden := false
	require.NoError(t, db.Callback().Query().Before("gorm:query").Register("test:hide_approval_once", func(tx *gorm.DB) {
		if hidden || tx.Statement.Table != "approvals" {
			return
		}
		hidden = true
		tx.Statement.AddClause(clause.Where{Exprs: []clause.Expression{clause.Expr{SQL: "1 = 0"}}})
	}))

	second, err := svc.Approval.AttachApproval(ctx, r.ID, "finance@example.com", &ApprovalPatch{
		FinancialComments: ptr("funds confirmed"),
	})
	require.NoError(t, err)
	require.True(t, hidden)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "legal ok", second.LegalComments)
	assert.Equal(t, "funds confirmed", second.FinancialComments)
	assert.Equal(t, "finance@example.com", second.UpdatedBy)

	var count int64
	db.Model(&entity.Approval{}).Where("requisition_id = ?", r.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestAttachApproval_UnknownRequisition(t *testing.T) {
	db, svc, _ := setupServices(t)

	_, err := svc.Approval.AttachApproval(context.Background(), "missing", "legal@example.com", &ApprovalPatch{})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	var count int64
	db.Model(&entity.Approval{}).Count(&count)
	assert.Zero(t, count)
}

func TestAttachApproval_InvalidStatus(t *testing.T) {
	_, svc, _ := setupServices(t)
	ctx := context.Background()

	r, err := svc.Requisition.Create(ctx, "alice@example.com", &RequisitionPatch{})
	require.NoError(t, err)

	_, err = svc.Approval.AttachApproval(ctx, r.ID, "legal@example.com", &ApprovalPatch{
		ApprovalStatus: ptr(entity.ApprovalStatus("DONE")),
	})
	assert.ErrorIs(t, err, entity.ErrInvalidEnumValue)
}

func TestApprovalListByStatus(t *testing.T) {
	_, svc, _ := setupServices(t)
	ctx := context.Background()

	for _, st := range []entity.ApprovalStatus{entity.ApprovalStatusApproved, entity.ApprovalStatusPending, entity.ApprovalStatusApproved} {
		r, err := svc.Requisition.Create(ctx, "alice@example.com", &RequisitionPatch{})
		require.NoError(t, err)
		_, err = svc.Approval.AttachApproval(ctx, r.ID, "legal@example.com", &ApprovalPatch{ApprovalStatus: ptr(st)})
		require.NoError(t, err)
	}

	approved, err := svc.Approval.ListByStatus(ctx, "APPROVED")
	require.NoError(t, err)
	assert.Len(t, approved, 2)

	_, err = svc.Approval.ListByStatus(ctx, "RETURNED")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = svc.Approval.ListByStatus(ctx, "approved")
	assert.ErrorIs(t, err, entity.ErrInvalidEnumValue)
}

func TestGetApproval_NotFound(t *testing.T) {
	_, svc, _ := setupServices(t)
	ctx := context.Background()

	r, err := svc.Requisition.Create(ctx, "alice@example.com", &RequisitionPatch{})
	require.NoError(t, err)

	_, err = svc.Approval.GetApproval(ctx, r.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
