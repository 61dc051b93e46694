package response

import "github.com/attenda/attenda-api/internal/domain"

type TotalXpResponse struct {
	AttendantID uint  `json:"attendant_id"`
	SeasonID    *uint `json:"season_id,omitempty"`
	TotalXp     int   `json:"total_xp"`
}

type LeaderboardEntry struct {
	Position    int    `json:"position"`
	AttendantID uint   `json:"attendant_id"`
	TotalPoints int    `json:"total_points"`
	Medal       string `json:"medal,omitempty"`
}

type LeaderboardResponse struct {
	SeasonID uint               `json:"season_id"`
	Entries  []LeaderboardEntry `json:"entries"`
}

// medals decorate the top three for display only; position ordering is the
// ranking itself.
var medals = [3]string{"gold", "silver", "bronze"}

func NewLeaderboardResponse(seasonID uint, entries []domain.RankingEntry) LeaderboardResponse {
	resp := LeaderboardResponse{
		SeasonID: seasonID,
		Entries:  make([]LeaderboardEntry, len(entries)),
	}

	for i, entry := range entries {
		row := LeaderboardEntry{
			Position:    i + 1,
			AttendantID: entry.AttendantID,
			TotalPoints: entry.TotalPoints,
		}
		if i < len(medals) {
			row.Medal = medals[i]
		}
		resp.Entries[i] = row
	}

	return resp
}
