package service

import (
	"context"
	"time"

	"github.com/emagodi/contracts/internal/requisition/entity"
	"github.com/emagodi/contracts/internal/requisition/repository"
)

const (
	// RenewalWindowDays 续约提醒窗口 [today, today+7]
	RenewalWindowDays = 7
	// PaymentWindowDays 付款提醒窗口 [today, today+30]
	PaymentWindowDays = 30
)

// DueDateService 到期查询。所有查询都以调用方传入的 now 为基准。
type DueDateService struct {
	repo *repository.RequisitionRepository
}

func NewDueDateService(repo *repository.RequisitionRepository) *DueDateService {
	return &DueDateService{repo: repo}
}

// Window 以 now 所在日期为起点、含两端的 days 天窗口，返回半开区间 [from, to)
func Window(now time.Time, days int) (from, to time.Time) {
	from = dateOf(now)
	return from, from.AddDate(0, 0, days+1)
}

// RenewalDue 即将到期且可续约的合同
func (s *DueDateService) RenewalDue(ctx context.Context, now time.Time) ([]entity.Requisition, error) {
	from, to := Window(now, RenewalWindowDays)
	items, err := s.repo.FindRenewalDue(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, repository.ErrNotFound
	}
	return items, nil
}

// CountRenewalDue 即将到期合同数
func (s *DueDateService) CountRenewalDue(ctx context.Context, now time.Time) (int64, error) {
	from, to := Window(now, RenewalWindowDays)
	return s.repo.CountRenewalDue(ctx, from, to)
}

// PaymentDue 定金待付的合同
func (s *DueDateService) PaymentDue(ctx context.Context, now time.Time) ([]entity.Requisition, error) {
	from, to := Window(now, PaymentWindowDays)
	items, err := s.repo.FindPaymentDue(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, repository.ErrNotFound
	}
	return items, nil
}

// CountPaymentDue 定金待付合同数
func (s *DueDateService) CountPaymentDue(ctx context.Context, now time.Time) (int64, error) {
	from, to := Window(now, PaymentWindowDays)
	return s.repo.CountPaymentDue(ctx, from, to)
}
