package service

import (
	"testing"
	"time"

	"github.com/ds124wfegd/eventmarket/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveStep(t *testing.T) {
	all := entity.Completeness{HasDetails: true, HasMedia: true, HasTickets: true}

	tests := []struct {
		name         string
		requested    string
		completeness entity.Completeness
		wantStep     entity.Step
		wantNotice   string
	}{
		{
			name:      "details is always reachable",
			requested: "details",
			wantStep:  entity.StepDetails,
		},
		{
			name:       "media without details",
			requested:  "media",
			wantStep:   entity.StepDetails,
			wantNotice: "Please complete event details before continuing.",
		},
		{
			name:         "media with details",
			requested:    "media",
			completeness: entity.Completeness{HasDetails: true},
			wantStep:     entity.StepMedia,
		},
		{
			name:         "tickets without media",
			requested:    "tickets",
			completeness: entity.Completeness{HasDetails: true},
			wantStep:     entity.StepMedia,
			wantNotice:   "Please complete media before continuing.",
		},
		{
			name:         "publish without tickets",
			requested:    "publish",
			completeness: entity.Completeness{HasDetails: true, HasMedia: true},
			wantStep:     entity.StepTickets,
			wantNotice:   "Please complete tickets before continuing.",
		},
		{
			name:         "publish without details goes to the first gap",
			requested:    "publish",
			completeness: entity.Completeness{HasMedia: true, HasTickets: true},
			wantStep:     entity.StepDetails,
			wantNotice:   "Please complete event details before continuing.",
		},
		{
			name:         "publish when complete",
			requested:    "publish",
			completeness: all,
			wantStep:     entity.StepPublish,
		},
		{
			name:         "unknown step falls back to details",
			requested:    "checkout",
			completeness: all,
			wantStep:     entity.StepDetails,
		},
		{
			name:         "step is case insensitive",
			requested:    " Tickets ",
			completeness: all,
			wantStep:     entity.StepTickets,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ResolveStep(tt.requested, tt.completeness)

			require.NotNil(t, res)
			assert.Equal(t, tt.wantStep, res.Step)
			assert.Equal(t, tt.completeness, res.Completeness)

			if tt.wantNotice == "" {
				assert.False(t, res.Redirected)
				assert.Nil(t, res.Notice)
				return
			}

			assert.True(t, res.Redirected)
			require.NotNil(t, res.Notice)
			assert.Equal(t, "info", res.Notice.Type)
			assert.Equal(t, "Complete previous step first", res.Notice.Title)
			assert.Equal(t, tt.wantNotice, res.Notice.Description)
		})
	}
}

func TestDeriveCompleteness(t *testing.T) {
	start := time.Date(2030, 6, 1, 18, 0, 0, 0, time.UTC)

	t.Run("nil draft", func(t *testing.T) {
		assert.Equal(t, entity.Completeness{}, DeriveCompleteness(nil))
	})

	t.Run("blank address is not details", func(t *testing.T) {
		draft := &entity.EventDraft{Event: entity.Event{Title: "Show", StartDate: &start, Address: strPtr("   ")}}
		assert.False(t, DeriveCompleteness(draft).HasDetails)
	})

	t.Run("full draft", func(t *testing.T) {
		draft := &entity.EventDraft{
			Event:       entity.Event{Title: "Show", StartDate: &start, Address: strPtr("Lagos")},
			Banners:     []*entity.EventBanner{{ID: "b1"}},
			TicketTypes: []*entity.TicketType{{ID: "t1"}},
		}
		assert.Equal(t, entity.Completeness{HasDetails: true, HasMedia: true, HasTickets: true}, DeriveCompleteness(draft))
	})
}
