package dao

import "gorm.io/gorm"

func InitTables(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&LoyaltyAccount{},
		&LoyaltyTransaction{},
		&Player{},
		&Match{},
		&MatchCandidate{},
		&MatchScorer{},
		&Prediction{},
		&ScorerTicket{},
		&RewardCode{},
		&DailyQRCode{},
		&ScanRecord{},
		&RegistrationQRCode{},
		&WeeklyDraw{},
		&DrawWinner{},
	)
}
