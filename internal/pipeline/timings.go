package pipeline

import (
	"time"

	"photo-restorer/internal/models"
	"photo-restorer/internal/opencv/safe"
)

type stageTimer struct {
	stages []models.StageTiming
}

func newStageTimer() *stageTimer {
	return &stageTimer{stages: make([]models.StageTiming, 0, len(models.StageOrder))}
}

func (t *stageTimer) observe(step string, elapsed time.Duration) {
	t.stages = append(t.stages, models.StageTiming{Stage: step, Duration: elapsed})
}

func (t *stageTimer) fields() map[string]interface{} {
	fields := make(map[string]interface{}, len(t.stages)+1)
	var total time.Duration
	for _, s := range t.stages {
		fields[s.Stage+"_ms"] = float64(s.Duration.Microseconds()) / 1000
		total += s.Duration
	}
	fields["stages_ms"] = float64(total.Microseconds()) / 1000
	fields["live_mats"] = safe.LiveCount()
	return fields
}
