package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProximityTier(t *testing.T) {
	viewer := Location{Country: "Cameroun", City: "Yaoundé", Neighborhood: "Bastos"}

	tests := []struct {
		name    string
		viewer  Location
		listing Location
		want    int
	}{
		{"same neighborhood", viewer, viewer, TierNeighborhood},
		{"same city", viewer, Location{"Cameroun", "Yaoundé", "Mvog-Ada"}, TierCity},
		{"same city no neighborhood", viewer, Location{"Cameroun", "Yaoundé", ""}, TierCity},
		{"same country", viewer, Location{"Cameroun", "Douala", "Akwa"}, TierCountry},
		{"elsewhere", viewer, Location{"France", "Yaoundé", "Bastos"}, TierElsewhere},
		{"viewer without location", Location{}, viewer, TierNone},
		{"viewer country only", Location{Country: "Cameroun"}, viewer, TierCountry},
		{"viewer without neighborhood", Location{Country: "Cameroun", City: "Yaoundé"}, Location{"Cameroun", "Yaoundé", ""}, TierCity},
		{"comparison is exact", viewer, Location{"cameroun", "yaoundé", "bastos"}, TierElsewhere},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ProximityTier(tt.viewer, tt.listing))
		})
	}
}

func TestLocation_Merge(t *testing.T) {
	profile := Location{Country: "Cameroun", City: " "}
	original := Location{Country: "France", City: "Paris", Neighborhood: "Marais"}

	got := profile.Merge(original)

	assert.Equal(t, Location{Country: "Cameroun", City: "Paris", Neighborhood: "Marais"}, got)
}
