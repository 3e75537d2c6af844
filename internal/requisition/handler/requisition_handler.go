package handler

import (
	"time"

	"github.com/emagodi/contracts/internal/requisition/service"
	"github.com/gin-gonic/gin"
)

// RequisitionHandler 申请单处理器
type RequisitionHandler struct {
	svc         *service.RequisitionService
	approvals   *service.ApprovalService
	due         *service.DueDateService
	attachments *service.AttachmentService
	drafts      *service.ContractDraftService
	export      *service.ExportService
	now         func() time.Time
}

func NewRequisitionHandler(svc *service.Services) *RequisitionHandler {
	return &RequisitionHandler{
		svc:         svc.Requisition,
		approvals:   svc.Approval,
		due:         svc.DueDate,
		attachments: svc.Attachment,
		drafts:      svc.ContractDraft,
		export:      svc.Export,
		now:         time.Now,
	}
}

// SetClock 注入到期查询使用的时钟
func (h *RequisitionHandler) SetClock(now func() time.Time) {
	h.now = now
}

// Create 创建申请单
// POST /api/v1/requisitions
func (h *RequisitionHandler) Create(c *gin.Context) {
	var req service.RequisitionPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	r, err := h.svc.Create(c.Request.Context(), GetCaller(c), &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	Created(c, r)
}

// Update 更新申请单（仅覆盖请求中提供的字段）
// PUT /api/v1/requisitions/:id
func (h *RequisitionHandler) Update(c *gin.Context) {
	var req service.RequisitionPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	r, err := h.svc.Update(c.Request.Context(), c.Param("id"), GetCaller(c), &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, r)
}

// Get 申请单详情
// GET /api/v1/requisitions/:id
func (h *RequisitionHandler) Get(c *gin.Context) {
	r, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, r)
}

// List 全部申请单
// GET /api/v1/requisitions
func (h *RequisitionHandler) List(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, items)
}

// Delete 删除申请单
// DELETE /api/v1/requisitions/:id
func (h *RequisitionHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), GetCaller(c)); err != nil {
		RespondError(c, err)
		return
	}
	Success(c, nil)
}

// ListByCreator GET /api/v1/requisitions/by-creator/:createdBy
func (h *RequisitionHandler) ListByCreator(c *gin.Context) {
	items, err := h.svc.ListByCreator(c.Request.Context(), c.Param("createdBy"))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, items)
}

// ListByStatus GET /api/v1/requisitions/by-status/:status
func (h *RequisitionHandler) ListByStatus(c *gin.Context) {
	items, err := h.svc.ListByStatus(c.Request.Context(), c.Param("status"))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, items)
}

// CountByStatus GET /api/v1/requisitions/count/status/:status
func (h *RequisitionHandler) CountByStatus(c *gin.Context) {
	count, err := h.svc.CountByStatus(c.Request.Context(), c.Param("status"))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"status": c.Param("status"), "count": count})
}

// Summary GET /api/v1/requisitions/summary/status
func (h *RequisitionHandler) Summary(c *gin.Context) {
	summary, err := h.svc.SummaryByStatus(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, summary)
}

// RenewalDue 即将到期待续约的合同
// GET /api/v1/requisitions/contracts-expiry
func (h *RequisitionHandler) RenewalDue(c *gin.Context) {
	items, err := h.due.RenewalDue(c.Request.Context(), h.now())
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, items)
}

// CountRenewalDue GET /api/v1/requisitions/contracts-expiry/count
func (h *RequisitionHandler) CountRenewalDue(c *gin.Context) {
	count, err := h.due.CountRenewalDue(c.Request.Context(), h.now())
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"count": count, "window_days": service.RenewalWindowDays})
}

// PaymentDue 定金待付的合同
// GET /api/v1/requisitions/contracts-due
func (h *RequisitionHandler) PaymentDue(c *gin.Context) {
	items, err := h.due.PaymentDue(c.Request.Context(), h.now())
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, items)
}

// CountPaymentDue GET /api/v1/requisitions/contracts-due/count
func (h *RequisitionHandler) CountPaymentDue(c *gin.Context) {
	count, err := h.due.CountPaymentDue(c.Request.Context(), h.now())
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"count": count, "window_days": service.PaymentWindowDays})
}

// AttachApproval 提交会签（首次创建，之后合并）
// POST /api/v1/requisitions/:id/approval
func (h *RequisitionHandler) AttachApproval(c *gin.Context) {
	var req service.ApprovalPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	approval, err := h.approvals.AttachApproval(c.Request.Context(), c.Param("id"), GetCaller(c), &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, approval)
}

// GetApproval GET /api/v1/requisitions/:id/approval
func (h *RequisitionHandler) GetApproval(c *gin.Context) {
	approval, err := h.approvals.GetApproval(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, approval)
}

// UploadFiles 上传附件（multipart 字段 files，兼容 file）
// POST /api/v1/requisitions/:id/upload
func (h *RequisitionHandler) UploadFiles(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		BadRequest(c, "无法解析上传文件: "+err.Error())
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		headers = form.File["file"]
	}
	if len(headers) == 0 {
		BadRequest(c, "没有上传文件")
		return
	}

	uploads := make([]service.Upload, 0, len(headers))
	for _, fh := range headers {
		up, f, err := openUpload(fh)
		if err != nil {
			BadRequest(c, "读取上传文件失败: "+err.Error())
			return
		}
		defer f.Close()
		uploads = append(uploads, up)
	}

	added, err := h.attachments.UploadFiles(c.Request.Context(), c.Param("id"), GetCaller(c), uploads)
	if err != nil {
		RespondError(c, err)
		return
	}
	Created(c, added)
}

// UploadDraft 上传合同草稿（multipart 字段 file，表单 title/author/version/summary）
// POST /api/v1/requisitions/:id/contract-draft
func (h *RequisitionHandler) UploadDraft(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "请上传合同草稿文件")
		return
	}
	var meta service.DraftMeta
	if err := c.ShouldBind(&meta); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	up, f, err := openUpload(fh)
	if err != nil {
		BadRequest(c, "读取上传文件失败: "+err.Error())
		return
	}
	defer f.Close()

	draft, err := h.drafts.UploadDraft(c.Request.Context(), c.Param("id"), GetCaller(c), meta, up)
	if err != nil {
		RespondError(c, err)
		return
	}
	Created(c, draft)
}

// GetDraft GET /api/v1/requisitions/:id/contract-draft
func (h *RequisitionHandler) GetDraft(c *gin.Context) {
	draft, err := h.drafts.GetDraftByRequisition(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, draft)
}

// DownloadDraft GET /api/v1/requisitions/:id/contract-draft/download
func (h *RequisitionHandler) DownloadDraft(c *gin.Context) {
	draft, rc, err := h.drafts.OpenDraft(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	defer rc.Close()

	name := draft.Title
	if name == "" {
		name = "contract_" + draft.RequisitionID
	}
	streamFile(c, "attachment", name, "", rc)
}

// Export 导出申请单Excel
// GET /api/v1/requisitions/export?status=xxx&created_by=xxx
func (h *RequisitionHandler) Export(c *gin.Context) {
	filters := map[string]string{
		"requisition_status": c.Query("status"),
		"created_by":         c.Query("created_by"),
	}

	f, filename, err := h.export.ExportRequisitions(c.Request.Context(), filters)
	if err != nil {
		RespondError(c, err)
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Header("Content-Transfer-Encoding", "binary")

	if err := f.Write(c.Writer); err != nil {
		InternalError(c, "write excel: "+err.Error())
	}
}
