package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/emagodi/contracts/internal/requisition/entity"
	"github.com/emagodi/contracts/internal/requisition/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttachmentRename_IncrementsVersion(t *testing.T) {
	_, svc, _ := setupServices(t)
	ctx := context.Background()

	r, err := svc.Requisition.Create(ctx, "alice@example.com", &RequisitionPatch{})
	require.NoError(t, err)
	att, err := svc.Attachment.Add(ctx, r.ID, "alice@example.com", textUpload("quote.txt", "quote"))
	require.NoError(t, err)
	assert.Equal(t, 1, att.Version)

	var renamed *entity.Attachment
	for i, name := range []string{"quote-v2.txt", "quote-v3.txt", "final.txt"} {
		renamed, err = svc.Attachment.Rename(ctx, att.ID, "bob@example.com", name)
		require.NoError(t, err)
		assert.Equal(t, 2+i, renamed.Version)
	}

	assert.Equal(t, "final.txt", renamed.FileName)
	assert.Equal(t, att.FilePath, renamed.FilePath)
	assert.Equal(t, att.FileType, renamed.FileType)
	assert.Equal(t, "bob@example.com", renamed.UpdatedBy)
	assert.Equal(t, "alice@example.com", renamed.CreatedBy)
}

func TestAttachmentRename_Errors(t *testing.T) {
	_, svc, _ := setupServices(t)
	ctx := context.Background()

	_, err := svc.Attachment.Rename(ctx, "missing", "bob@example.com", "x.txt")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = svc.Attachment.Rename(ctx, "missing", "bob@example.com", "  ")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAttachmentAdd_StorageFailureLeavesNoRecord(t *testing.T) {
	db, svc, store := setupServices(t)
	ctx := context.Background()

	r, err := svc.Requisition.Create(ctx, "alice@example.com", &RequisitionPatch{})
	require.NoError(t, err)

	store.SaveErr = errors.New("bucket unavailable")
	_, err = svc.Attachment.Add(ctx, r.ID, "alice@example.com", textUpload("quote.txt", "quote"))
	assert.ErrorIs(t, err, ErrStorageFailure)

	var count int64
	db.Model(&entity.Attachment{}).Count(&count)
	assert.Zero(t, count)
}

func TestAttachmentAdd_UnknownRequisition(t *testing.T) {
	_, svc, store := setupServices(t)

	_, err := svc.Attachment.Add(context.Background(), "missing", "alice@example.com", textUpload("quote.txt", "quote"))
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Zero(t, store.Len())
}

func TestAttachmentAdd_DetectsContentType(t *testing.T) {
	_, svc, _ := setupServices(t)
	ctx := context.Background()

	r, err := svc.Requisition.Create(ctx, "alice@example.com", &RequisitionPatch{})
	require.NoError(t, err)

	pdf := []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj\n<<>>\nendobj\n")
	att, err := svc.Attachment.Add(ctx, r.ID, "alice@example.com", Upload{
		FileName:    "scan.pdf",
		ContentType: "application/octet-stream",
		Size:        int64(len(pdf)),
		Content:     bytes.NewReader(pdf),
	})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", att.FileType)

	_, rc, err := svc.Attachment.Open(ctx, att.ID)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, pdf, data, "content is stored from the start after detection")
}

func TestAttachmentDelete(t *testing.T) {
	_, svc, store := setupServices(t)
	ctx := context.Background()

	r, err := svc.Requisition.Create(ctx, "alice@example.com", &RequisitionPatch{})
	require.NoError(t, err)
	att, err := svc.Attachment.Add(ctx, r.ID, "alice@example.com", textUpload("a.txt", "a"))
	require.NoError(t, err)

	require.NoError(t, svc.Attachment.Delete(ctx, att.ID, "alice@example.com"))
	assert.False(t, store.Has(att.FilePath))

	assert.ErrorIs(t, svc.Attachment.Delete(ctx, att.ID, "alice@example.com"), repository.ErrNotFound)
}

func TestAttachmentDelete_MissingFileStillRemovesRecord(t *testing.T) {
	db, svc, store := setupServices(t)
	ctx := context.Background()

	r, err := svc.Requisition.Create(ctx, "alice@example.com", &RequisitionPatch{})
	require.NoError(t, err)
	att, err := svc.Attachment.Add(ctx, r.ID, "alice@example.com", textUpload("a.txt", "a"))
	require.NoError(t, err)

	store.DelErr = errors.New("permission denied")
	require.NoError(t, svc.Attachment.Delete(ctx, att.ID, "alice@example.com"))

	var count int64
	db.Model(&entity.Attachment{}).Where("id = ?", att.ID).Count(&count)
	assert.Zero(t, count)

	_, _, err = svc.Attachment.Open(ctx, att.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAttachmentListByRequisition_Paginates(t *testing.T) {
	_, svc, _ := setupServices(t)
	ctx := context.Background()

	r, err := svc.Requisition.Create(ctx, "alice@example.com", &RequisitionPatch{})
	require.NoError(t, err)
	uploads := []Upload{
		textUpload("1.txt", "1"), textUpload("2.txt", "2"), textUpload("3.txt", "3"),
		textUpload("4.txt", "4"), textUpload("5.txt", "5"),
	}
	added, err := svc.Attachment.UploadFiles(ctx, r.ID, "alice@example.com", uploads)
	require.NoError(t, err)
	require.Len(t, added, 5)

	page1, total, err := svc.Attachment.ListByRequisition(ctx, r.ID, 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Len(t, page1, 2)

	page3, _, err := svc.Attachment.ListByRequisition(ctx, r.ID, 3, 2)
	require.NoError(t, err)
	assert.Len(t, page3, 1)

	seen := map[string]bool{}
	for page := 1; page <= 3; page++ {
		items, _, err := svc.Attachment.ListByRequisition(ctx, r.ID, page, 2)
		require.NoError(t, err)
		for _, a := range items {
			assert.False(t, seen[a.ID], "attachment %s listed twice", a.ID)
			seen[a.ID] = true
		}
	}
	assert.Len(t, seen, 5)
}
