package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"strconv"
	"time"

	"github.com/emagodi/contracts/internal/middleware"
	"github.com/emagodi/contracts/internal/requisition/entity"
	"github.com/emagodi/contracts/internal/requisition/repository"
	"github.com/emagodi/contracts/internal/requisition/service"
	"github.com/gin-gonic/gin"
)

// Handlers 处理器集合
type Handlers struct {
	Requisition *RequisitionHandler
	Attachment  *AttachmentHandler
	Approval    *ApprovalHandler
	Signature   *SignatureHandler
}

// NewHandlers 创建处理器集合
func NewHandlers(svc *service.Services) *Handlers {
	return &Handlers{
		Requisition: NewRequisitionHandler(svc),
		Attachment:  NewAttachmentHandler(svc.Attachment),
		Approval:    NewApprovalHandler(svc.Approval),
		Signature:   NewSignatureHandler(svc.Signature),
	}
}

// RegisterRoutes 注册业务路由，api 需已挂载认证中间件
func (h *Handlers) RegisterRoutes(api *gin.RouterGroup) {
	approvers := middleware.RequireRole(entity.ApprovingRoles...)

	reqs := api.Group("/requisitions")
	{
		reqs.POST("", h.Requisition.Create)
		reqs.GET("", h.Requisition.List)
		reqs.GET("/export", h.Requisition.Export)
		reqs.GET("/by-creator/:createdBy", h.Requisition.ListByCreator)
		reqs.GET("/by-status/:status", h.Requisition.ListByStatus)
		reqs.GET("/count/status/:status", h.Requisition.CountByStatus)
		reqs.GET("/summary/status", h.Requisition.Summary)
		reqs.GET("/contracts-expiry", h.Requisition.RenewalDue)
		reqs.GET("/contracts-expiry/count", h.Requisition.CountRenewalDue)
		reqs.GET("/contracts-due", h.Requisition.PaymentDue)
		reqs.GET("/contracts-due/count", h.Requisition.CountPaymentDue)
		reqs.GET("/:id", h.Requisition.Get)
		reqs.PUT("/:id", h.Requisition.Update)
		reqs.DELETE("/:id", h.Requisition.Delete)
		reqs.POST("/:id/approval", approvers, h.Requisition.AttachApproval)
		reqs.GET("/:id/approval", h.Requisition.GetApproval)
		reqs.POST("/:id/upload", h.Requisition.UploadFiles)
		reqs.POST("/:id/contract-draft", h.Requisition.UploadDraft)
		reqs.GET("/:id/contract-draft", h.Requisition.GetDraft)
		reqs.GET("/:id/contract-draft/download", h.Requisition.DownloadDraft)
	}

	atts := api.Group("/attachments")
	{
		atts.GET("/requisition/:reqId", h.Attachment.ListByRequisition)
		atts.PUT("/:id/rename", h.Attachment.Rename)
		atts.GET("/:id/download", h.Attachment.Download)
		atts.GET("/:id/view", h.Attachment.View)
		atts.DELETE("/:id", h.Attachment.Delete)
	}

	api.GET("/approvals/by-status/:status", h.Approval.ListByStatus)

	sigs := api.Group("/signatures")
	{
		sigs.POST("", h.Signature.Upload)
		sigs.GET("", h.Signature.List)
		sigs.GET("/email/:email", h.Signature.GetByEmail)
		sigs.PUT("/email/:email", h.Signature.Update)
		sigs.DELETE("/email/:email", h.Signature.DeleteByEmail)
		sigs.GET("/:id", h.Signature.Get)
		sigs.DELETE("/:id", h.Signature.Delete)
	}
}

// === 响应辅助函数 ===

type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

func Conflict(c *gin.Context, message string) {
	Error(c, 40900, message)
}

func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// RespondError 按错误类型返回对应状态码
func RespondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		NotFound(c, err.Error())
	case errors.Is(err, entity.ErrInvalidEnumValue), errors.Is(err, service.ErrInvalidInput):
		BadRequest(c, err.Error())
	case errors.Is(err, service.ErrConflict):
		Conflict(c, err.Error())
	case errors.Is(err, service.ErrStorageFailure):
		Error(c, 50001, "文件存储失败: "+err.Error())
	default:
		InternalError(c, err.Error())
	}
}

// GetCaller 当前调用者身份（邮箱优先）
func GetCaller(c *gin.Context) string {
	if email := c.GetString("user_email"); email != "" {
		return email
	}
	if id := c.GetString("user_id"); id != "" {
		return id
	}
	return service.SystemCaller
}

func GetPagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}

	ps := c.Query("page_size")
	if ps == "" {
		ps = c.Query("size")
	}
	if ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v
		}
	}

	return page, pageSize
}

func newPagination(page, pageSize int, total int64) *Pagination {
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	return &Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      int(total),
		TotalPages: totalPages,
	}
}

// openUpload 将 multipart 文件转为服务层上传参数，调用方负责关闭返回的文件
func openUpload(fh *multipart.FileHeader) (service.Upload, multipart.File, error) {
	f, err := fh.Open()
	if err != nil {
		return service.Upload{}, nil, err
	}
	return service.Upload{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Content:     f,
	}, f, nil
}

func streamFile(c *gin.Context, disposition, name, contentType string, r io.Reader) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(200, -1, contentType, r, map[string]string{
		"Content-Disposition": disposition + `; filename="` + name + `"`,
		"Cache-Control":       "private, max-age=" + strconv.Itoa(int(time.Hour.Seconds())),
	})
}
