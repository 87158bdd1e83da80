package domain

import "time"

// DailyQRCode is valid for exactly one calendar date. Rotation deactivates
// every other code, so at most one code is active at a time.
type DailyQRCode struct {
	ID        uint      `json:"id"`
	Code      string    `json:"code"`
	ValidDate time.Time `json:"valid_date"`
	IsActive  bool      `json:"is_active"`
	ScanCount int       `json:"scan_count"`
	CreatedAt time.Time `json:"created_at"`
}

type ScanRecord struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	CodeID    uint      `json:"code_id"`
	CreatedAt time.Time `json:"created_at"`
}

// RegistrationQRCode is the single long-lived code of a campaign that flips
// a user's registered-for-pronostics flag on first scan.
type RegistrationQRCode struct {
	ID        uint      `json:"id"`
	Code      string    `json:"code"`
	Campaign  string    `json:"campaign"`
	IsActive  bool      `json:"is_active"`
	ScanCount int       `json:"scan_count"`
	CreatedAt time.Time `json:"created_at"`
}

type ScanResult struct {
	CodeID      uint `json:"code_id"`
	IsFirstScan bool `json:"is_first_scan"`
}

type RegistrationResult struct {
	AlreadyRegistered bool `json:"already_registered"`
}
