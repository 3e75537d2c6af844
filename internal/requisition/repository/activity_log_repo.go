package repository

import (
	"context"
	"encoding/json"

	"github.com/emagodi/contracts/internal/requisition/entity"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ActivityLogRepository 操作日志仓库
type ActivityLogRepository struct {
	db *gorm.DB
}

func NewActivityLogRepository(db *gorm.DB) *ActivityLogRepository {
	return &ActivityLogRepository{db: db}
}

// FindByEntity 查询某实体的操作日志
func (r *ActivityLogRepository) FindByEntity(ctx context.Context, entityType, entityID string) ([]entity.ActivityLog, error) {
	var items []entity.ActivityLog
	err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

// LogActivity 记录操作日志；在事务仓库上调用时与业务写入一同提交
func (r *ActivityLogRepository) LogActivity(ctx context.Context, entityType, entityID, action, content, operator string, metadata map[string]interface{}) error {
	log := &entity.ActivityLog{
		ID:         uuid.New().String()[:32],
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Content:    content,
		Operator:   operator,
	}
	if len(metadata) > 0 {
		raw, err := json.Marshal(metadata)
		if err != nil {
			return err
		}
		log.Metadata = datatypes.JSON(raw)
	}
	return r.db.WithContext(ctx).Create(log).Error
}
