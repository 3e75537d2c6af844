package handler

import (
	"github.com/emagodi/contracts/internal/requisition/service"
	"github.com/gin-gonic/gin"
)

// AttachmentHandler 附件处理器
type AttachmentHandler struct {
	svc *service.AttachmentService
}

func NewAttachmentHandler(svc *service.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{svc: svc}
}

// ListByRequisition 申请单附件分页列表
// GET /api/v1/attachments/requisition/:reqId?page=1&page_size=20
func (h *AttachmentHandler) ListByRequisition(c *gin.Context) {
	page, pageSize := GetPagination(c)
	items, total, err := h.svc.ListByRequisition(c.Request.Context(), c.Param("reqId"), page, pageSize)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, ListResponse{
		Items:      items,
		Pagination: newPagination(page, pageSize, total),
	})
}

// Rename 重命名附件
// PUT /api/v1/attachments/:id/rename?new_name=xxx
func (h *AttachmentHandler) Rename(c *gin.Context) {
	newName := c.Query("new_name")
	if newName == "" {
		newName = c.Query("newName")
	}
	att, err := h.svc.Rename(c.Request.Context(), c.Param("id"), GetCaller(c), newName)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, att)
}

// Download GET /api/v1/attachments/:id/download
func (h *AttachmentHandler) Download(c *gin.Context) {
	h.stream(c, "attachment")
}

// View 浏览器内联查看
// GET /api/v1/attachments/:id/view
func (h *AttachmentHandler) View(c *gin.Context) {
	h.stream(c, "inline")
}

func (h *AttachmentHandler) stream(c *gin.Context, disposition string) {
	att, rc, err := h.svc.Open(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	defer rc.Close()
	streamFile(c, disposition, att.FileName, att.FileType, rc)
}

// Delete DELETE /api/v1/attachments/:id
func (h *AttachmentHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), GetCaller(c)); err != nil {
		RespondError(c, err)
		return
	}
	Success(c, nil)
}

// ApprovalHandler 会签查询处理器
type ApprovalHandler struct {
	svc *service.ApprovalService
}

func NewApprovalHandler(svc *service.ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{svc: svc}
}

// ListByStatus GET /api/v1/approvals/by-status/:status
func (h *ApprovalHandler) ListByStatus(c *gin.Context) {
	items, err := h.svc.ListByStatus(c.Request.Context(), c.Param("status"))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, items)
}
