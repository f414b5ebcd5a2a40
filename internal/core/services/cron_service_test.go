package services

import (
	"context"
	"testing"
	"time"

	"barangaylink/internal/adapters/persistence/models"
	"barangaylink/internal/core/domain"
	"barangaylink/internal/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCronJobsRunAndRecord(t *testing.T) {
	e := newEnv(t)
	reg := prometheus.NewRegistry()
	rec := metrics.NewCollector(reg)
	events := NewEventService(e.repos, e.notifications)
	svc := NewCronService(e.auth(), events, rec)
	ctx := context.Background()
	u, _ := e.user(t, "juan@example.com", domain.RoleMember)

	require.NoError(t, e.repos.RefreshTokens.Create(ctx, &models.RefreshToken{
		UserID: u.ID, TokenHash: "stale", ExpiresAt: time.Now().Add(-time.Hour),
	}))

	svc.PurgeTokens()
	svc.EventReminders()

	var left int64
	require.NoError(t, e.db.Model(&models.RefreshToken{}).Count(&left).Error)
	assert.Zero(t, left)

	families, err := reg.Gather()
	require.NoError(t, err)
	runs := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() != "barangaylink_job_runs_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "job" {
					runs[l.GetValue()] += m.GetCounter().GetValue()
				}
			}
		}
	}
	assert.Equal(t, map[string]float64{"purge_tokens": 1, "event_reminders": 1}, runs)
}

func TestCronStartStop(t *testing.T) {
	e := newEnv(t)
	svc := NewCronService(e.auth(), NewEventService(e.repos, e.notifications), nil)
	require.NoError(t, svc.Start())
	assert.Len(t, svc.cron.Entries(), 2)
	svc.Stop()
}
