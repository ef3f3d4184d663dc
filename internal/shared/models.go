package shared

import "time"

// UpdateInfo describes what the check endpoint reported about the latest
// release. It is produced by a parser and handed around by value.
type UpdateInfo struct {
	HasUpdate   bool
	IsForce     bool
	VersionName string
	Content     string // Release notes shown in the update dialog
	DownloadURL string
	Extra       any // Passed through untouched to the UI strategy
}

// CheckRecord is one finished check run as stored in the history table.
type CheckRecord struct {
	ID             uint      `gorm:"primaryKey"`
	RunID          string    `gorm:"not null;type:varchar(36);index"`
	CheckURL       string    `gorm:"not null;type:varchar"`
	VersionName    string    `gorm:"not null;default:'';type:varchar"`
	Manual         bool      `gorm:"not null;default:false"`
	Outcome        string    `gorm:"not null;type:varchar(32)"`
	Error          string    `gorm:"not null;default:'';type:text"`
	ArtifactSHA256 string    `gorm:"not null;default:'';type:varchar(64)"`
	CreatedAt      time.Time `gorm:"not null;index"`
}
