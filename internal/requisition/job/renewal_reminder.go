// Package job 定时任务
package job

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/emagodi/contracts/internal/requisition/entity"
	"github.com/emagodi/contracts/internal/requisition/repository"
	"github.com/emagodi/contracts/internal/requisition/service"
	"github.com/emagodi/contracts/internal/shared/notify"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	// DefaultReminderSpec 每天 11:00（带秒字段）
	DefaultReminderSpec = "0 0 11 * * *"

	lockKey = "contracts:renewal-reminder:lock"
	lockTTL = 10 * time.Minute
	runTTL  = 5 * time.Minute
)

// ErrAlreadyRunning 已有提醒任务在执行
var ErrAlreadyRunning = errors.New("renewal reminder already running")

// RenewalLister 续约到期查询
type RenewalLister interface {
	RenewalDue(ctx context.Context, now time.Time) ([]entity.Requisition, error)
}

// Directory 按角色查找用户
type Directory interface {
	UsersByRole(ctx context.Context, role string) ([]entity.User, error)
}

// RunResult 单次执行结果
type RunResult struct {
	Expiring   int  `json:"expiring"`
	Recipients int  `json:"recipients"`
	Queued     int  `json:"queued"`
	Failed     int  `json:"failed"`
	Skipped    bool `json:"skipped"`
}

// RenewalReminder 合同续约提醒：查询窗口内到期的合同，给公司秘书角色的每个用户排队一条短信
type RenewalReminder struct {
	due       RenewalLister
	directory Directory
	queue     notify.Queue
	logger    *zap.Logger

	role   string
	now    func() time.Time
	locker Locker

	mu sync.Mutex
}

func NewRenewalReminder(due RenewalLister, directory Directory, queue notify.Queue, logger *zap.Logger) *RenewalReminder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RenewalReminder{
		due:       due,
		directory: directory,
		queue:     queue,
		logger:    logger.Named("renewal-reminder"),
		role:      entity.RoleCompanySecretary,
		now:       time.Now,
	}
}

// SetRole 设置接收提醒的角色
func (r *RenewalReminder) SetRole(role string) {
	if role != "" {
		r.role = role
	}
}

// SetClock 注入时钟
func (r *RenewalReminder) SetClock(now func() time.Time) {
	r.now = now
}

// SetLocker 注入跨实例锁，多副本部署时防止重复提醒
func (r *RenewalReminder) SetLocker(l Locker) {
	r.locker = l
}

// ReminderMessage 提醒短信内容
func ReminderMessage(count int) string {
	return fmt.Sprintf("There are %d contract(s) expiring within the next %d days. Please take action.",
		count, service.RenewalWindowDays)
}

// Run 执行一次提醒。同一时刻只允许一次执行，重叠的调用直接返回 ErrAlreadyRunning。
func (r *RenewalReminder) Run(ctx context.Context) (RunResult, error) {
	if !r.mu.TryLock() {
		reminderRuns.WithLabelValues("skipped").Inc()
		return RunResult{Skipped: true}, ErrAlreadyRunning
	}
	defer r.mu.Unlock()

	if r.locker != nil {
		release, ok, err := r.locker.TryLock(ctx, lockKey, lockTTL)
		if err != nil {
			reminderRuns.WithLabelValues("error").Inc()
			return RunResult{}, fmt.Errorf("acquire reminder lock: %w", err)
		}
		if !ok {
			reminderRuns.WithLabelValues("skipped").Inc()
			return RunResult{Skipped: true}, ErrAlreadyRunning
		}
		defer release()
	}

	return r.run(ctx)
}

func (r *RenewalReminder) run(ctx context.Context) (RunResult, error) {
	var result RunResult

	due, err := r.due.RenewalDue(ctx, r.now())
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		reminderRuns.WithLabelValues("error").Inc()
		return result, fmt.Errorf("query renewal due: %w", err)
	}
	result.Expiring = len(due)
	reminderExpiring.Set(float64(result.Expiring))
	if result.Expiring == 0 {
		r.logger.Info("no contracts due for renewal")
		reminderRuns.WithLabelValues("empty").Inc()
		return result, nil
	}

	users, err := r.directory.UsersByRole(ctx, r.role)
	if err != nil {
		reminderRuns.WithLabelValues("error").Inc()
		return result, fmt.Errorf("resolve recipients: %w", err)
	}
	result.Recipients = len(users)
	if len(users) == 0 {
		r.logger.Warn("no recipients for renewal reminder", zap.String("role", r.role))
		reminderRuns.WithLabelValues("no_recipients").Inc()
		return result, nil
	}

	msg := ReminderMessage(result.Expiring)
	for _, u := range users {
		if u.Phone == "" {
			r.logger.Warn("recipient has no phone number", zap.String("user_id", u.ID), zap.String("email", u.Email))
			result.Failed++
			reminderNotifications.WithLabelValues("failed").Inc()
			continue
		}
		if err := r.queue.Enqueue(ctx, u.Phone, msg); err != nil {
			err = fmt.Errorf("%w: %w", service.ErrTransportFailure, err)
			r.logger.Error("enqueue renewal reminder failed",
				zap.String("user_id", u.ID),
				zap.String("phone", u.Phone),
				zap.Error(err),
			)
			result.Failed++
			reminderNotifications.WithLabelValues("failed").Inc()
			continue
		}
		result.Queued++
		reminderNotifications.WithLabelValues("queued").Inc()
	}

	r.logger.Info("renewal reminders queued",
		zap.Int("expiring", result.Expiring),
		zap.Int("queued", result.Queued),
		zap.Int("failed", result.Failed),
	)
	reminderRuns.WithLabelValues("ok").Inc()
	return result, nil
}

// Schedule 注册定时执行，返回的 cron 由调用方 Start/Stop
func (r *RenewalReminder) Schedule(spec string, loc *time.Location) (*cron.Cron, error) {
	if spec == "" {
		spec = DefaultReminderSpec
	}
	if loc == nil {
		loc = time.Local
	}
	logger := cronLogger{r.logger.Sugar()}
	c := cron.New(
		cron.WithSeconds(),
		cron.WithLocation(loc),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTTL)
		defer cancel()
		if _, err := r.Run(ctx); err != nil && !errors.Is(err, ErrAlreadyRunning) {
			r.logger.Error("renewal reminder run failed", zap.Error(err))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid reminder schedule %q: %w", spec, err)
	}
	return c, nil
}

// cronLogger 适配 cron.Logger
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
