package service

import (
	"testing"
	"time"

	"github.com/edudash/edudash-backend/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestIsRedeemable(t *testing.T) {
	svc := &CampaignService{}
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	tests := []struct {
		name string
		c    model.Campaign
		want bool
	}{
		{"active no window", model.Campaign{IsActive: true}, true},
		{"inactive", model.Campaign{IsActive: false}, false},
		{"inside window", model.Campaign{IsActive: true, StartsAt: &past, EndsAt: &future}, true},
		{"not started", model.Campaign{IsActive: true, StartsAt: &future}, false},
		{"expired", model.Campaign{IsActive: true, EndsAt: &past}, false},
		{"open ended start", model.Campaign{IsActive: true, StartsAt: &past}, true},
		{"inactive inside window", model.Campaign{IsActive: false, StartsAt: &past, EndsAt: &future}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, svc.isRedeemable(&tt.c))
		})
	}
}
