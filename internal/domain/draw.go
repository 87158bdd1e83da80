package domain

import "time"

type DrawType string

const (
	DrawWeekly   DrawType = "WEEKLY"
	DrawCampaign DrawType = "CAMPAIGN"
)

// DefaultDrawPrizes is used when the admin performs a draw without an
// explicit prize list, ordered by winner position.
var DefaultDrawPrizes = []string{
	"Repas pour deux",
	"Bon d'achat 20€",
	"Boisson offerte",
}

// WeeklyDraw is keyed by (year, period, type) and can be performed at most
// once; winners are immutable once Completed is set.
type WeeklyDraw struct {
	ID                uint       `json:"id"`
	Year              int        `json:"year"`
	Period            int        `json:"period"`
	Type              DrawType   `json:"type"`
	WindowStart       time.Time  `json:"window_start"`
	WindowEnd         time.Time  `json:"window_end"`
	Completed         bool       `json:"completed"`
	DrawnAt           *time.Time `json:"drawn_at,omitempty"`
	TotalParticipants int        `json:"total_participants"`
	TotalScans        int        `json:"total_scans"`
	CreatedAt         time.Time  `json:"created_at"`

	Winners []DrawWinner `json:"winners,omitempty"`
}

type DrawWinner struct {
	ID        uint       `json:"id"`
	DrawID    uint       `json:"draw_id"`
	UserID    uint       `json:"user_id"`
	Position  int        `json:"position"`
	Prize     string     `json:"prize"`
	ScanCount int        `json:"scan_count"`
	Claimed   bool       `json:"claimed"`
	ClaimedAt *time.Time `json:"claimed_at,omitempty"`
}

// DrawParticipant is one eligible user with their scan count inside the
// draw window. Zero scans in the window means not eligible at all.
type DrawParticipant struct {
	UserID    uint `json:"user_id"`
	ScanCount int  `json:"scan_count"`
}
