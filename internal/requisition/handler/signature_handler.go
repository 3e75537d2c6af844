package handler

import (
	"github.com/emagodi/contracts/internal/requisition/service"
	"github.com/gin-gonic/gin"
)

// SignatureHandler 签名处理器
type SignatureHandler struct {
	svc *service.SignatureService
}

func NewSignatureHandler(svc *service.SignatureService) *SignatureHandler {
	return &SignatureHandler{svc: svc}
}

// Upload 上传签名
// POST /api/v1/signatures  (multipart: file, email)
func (h *SignatureHandler) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "请上传签名文件")
		return
	}
	up, f, err := openUpload(fh)
	if err != nil {
		BadRequest(c, "读取上传文件失败: "+err.Error())
		return
	}
	defer f.Close()

	sig, err := h.svc.Upload(c.Request.Context(), c.PostForm("email"), GetCaller(c), up)
	if err != nil {
		RespondError(c, err)
		return
	}
	Created(c, sig)
}

// Update 替换签名文件
// PUT /api/v1/signatures/email/:email
func (h *SignatureHandler) Update(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "请上传签名文件")
		return
	}
	up, f, err := openUpload(fh)
	if err != nil {
		BadRequest(c, "读取上传文件失败: "+err.Error())
		return
	}
	defer f.Close()

	sig, err := h.svc.Update(c.Request.Context(), c.Param("email"), GetCaller(c), up)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, sig)
}

// List GET /api/v1/signatures
func (h *SignatureHandler) List(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, items)
}

// Get GET /api/v1/signatures/:id
func (h *SignatureHandler) Get(c *gin.Context) {
	sig, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, sig)
}

// GetByEmail GET /api/v1/signatures/email/:email
func (h *SignatureHandler) GetByEmail(c *gin.Context) {
	sig, err := h.svc.GetByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, sig)
}

// Delete DELETE /api/v1/signatures/:id
func (h *SignatureHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		RespondError(c, err)
		return
	}
	Success(c, nil)
}

// DeleteByEmail DELETE /api/v1/signatures/email/:email
func (h *SignatureHandler) DeleteByEmail(c *gin.Context) {
	if err := h.svc.DeleteByEmail(c.Request.Context(), c.Param("email")); err != nil {
		RespondError(c, err)
		return
	}
	Success(c, nil)
}
