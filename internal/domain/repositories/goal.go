package repositories

import (
	"github.com/linkflow-ai/insights/internal/domain/models"
	"gorm.io/gorm"
)

type GoalRepository struct {
	*BaseRepository[models.Goal]
}

func NewGoalRepository(db *gorm.DB) *GoalRepository {
	return &GoalRepository{BaseRepository: NewBaseRepository[models.Goal](db)}
}

type CustomMetricRepository struct {
	*BaseRepository[models.CustomMetric]
}

func NewCustomMetricRepository(db *gorm.DB) *CustomMetricRepository {
	return &CustomMetricRepository{BaseRepository: NewBaseRepository[models.CustomMetric](db)}
}
