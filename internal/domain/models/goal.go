package models

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/linkflow-ai/insights/internal/insights"
	"gorm.io/gorm"
)

type Goal struct {
	ID            string    `gorm:"size:36;primaryKey" json:"id"`
	IntegrationID string    `gorm:"size:128;not null;index" json:"integration_id"`
	Title         string    `gorm:"size:255;not null" json:"title"`
	Target        float64   `gorm:"not null" json:"target"`
	Current       float64   `gorm:"default:0" json:"current"`
	Unit          string    `gorm:"size:32" json:"unit"`
	Deadline      time.Time `json:"deadline"`
	Status        string    `gorm:"size:20;default:on-track" json:"status"`
	Category      string    `gorm:"size:32" json:"category"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Goal) TableName() string {
	return "business_goals"
}

func (g *Goal) BeforeCreate(_ *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}

// ToInsights derives progress from current/target; a reached target is always completed.
func (g *Goal) ToInsights() insights.BusinessGoal {
	progress := 0.0
	if g.Target != 0 {
		progress = math.Min(100, math.Max(0, g.Current/g.Target*100))
	}
	status := g.Status
	if progress >= 100 {
		status = insights.GoalCompleted
	}
	return insights.BusinessGoal{
		ID:       g.ID,
		Title:    g.Title,
		Target:   g.Target,
		Current:  g.Current,
		Unit:     g.Unit,
		Deadline: g.Deadline,
		Progress: math.Round(progress*100) / 100,
		Status:   status,
		Category: g.Category,
	}
}

type CustomMetric struct {
	ID            string    `gorm:"size:36;primaryKey" json:"id"`
	IntegrationID string    `gorm:"size:128;not null;index" json:"integration_id"`
	Name          string    `gorm:"size:255;not null" json:"name"`
	Value         float64   `json:"value"`
	Unit          string    `gorm:"size:32" json:"unit"`
	Description   string    `gorm:"type:text" json:"description,omitempty"`
	Tags          Tags      `json:"tags,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (CustomMetric) TableName() string {
	return "custom_metrics"
}

func (m *CustomMetric) BeforeCreate(_ *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

func (m *CustomMetric) ToInsights() insights.CustomMetric {
	return insights.CustomMetric{
		ID:          m.ID,
		Name:        m.Name,
		Value:       m.Value,
		Unit:        m.Unit,
		Description: m.Description,
		Tags:        []string(m.Tags),
	}
}
