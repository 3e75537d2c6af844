package service

import (
	"context"
	"fmt"
	"time"

	"github.com/emagodi/contracts/internal/requisition/entity"
	"github.com/emagodi/contracts/internal/requisition/repository"
	"github.com/xuri/excelize/v2"
)

// ExportService 申请单导出
type ExportService struct {
	repo *repository.RequisitionRepository
}

func NewExportService(repo *repository.RequisitionRepository) *ExportService {
	return &ExportService{repo: repo}
}

var requisitionExportHeaders = []string{
	"ID", "Requisition To", "Requisition From", "Vendor", "Description",
	"Start Date", "End Date", "Renewable", "Total Contract Price",
	"Status", "Payment Status", "Approval Status", "Created By", "Created At",
}

// ExportRequisitions 导出申请单到Excel，filters 与列表查询一致
func (s *ExportService) ExportRequisitions(ctx context.Context, filters map[string]string) (*excelize.File, string, error) {
	if status := filters["requisition_status"]; status != "" {
		if _, err := entity.ParseRequisitionStatus(status); err != nil {
			return nil, "", err
		}
	}
	items, err := s.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, "", fmt.Errorf("list requisitions: %w", err)
	}

	f := excelize.NewFile()
	sheet := "Requisitions"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	for i, h := range requisitionExportHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for idx, r := range items {
		row := idx + 2
		approvalStatus := ""
		if r.Approval != nil {
			approvalStatus = string(r.Approval.ApprovalStatus)
		}
		values := []interface{}{
			r.ID, r.RequisitionTo, r.RequisitionFrom, r.VendorRegisteredName, r.Description,
			formatDate(r.StartDate), formatDate(r.EndDate), string(r.IsRenewable), r.TotalContractPrice,
			string(r.RequisitionStatus), string(r.PaymentStatus), approvalStatus, r.CreatedBy,
			r.CreatedAt.Format("2006-01-02 15:04"),
		}
		for i, v := range values {
			col, _ := excelize.ColumnNumberToName(i + 1)
			f.SetCellValue(sheet, fmt.Sprintf("%s%d", col, row), v)
		}
	}

	colWidths := []float64{34, 20, 20, 24, 30, 12, 12, 10, 16, 26, 14, 14, 24, 18}
	for i, w := range colWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, col, col, w)
	}

	filename := fmt.Sprintf("requisitions_%s.xlsx", time.Now().Format("20060102"))
	return f, filename, nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
