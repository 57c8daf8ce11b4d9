// internal/models/audit.go
package models

type AuditLog struct {
	BaseModel
	UserID       *uint  `json:"user_id" gorm:"index"`
	Action       string `json:"action" gorm:"size:255;not null"`
	ResourceType string `json:"resource_type" gorm:"size:50;index"`
	ResourceID   *uint  `json:"resource_id" gorm:"index"`
	IPAddress    string `json:"ip_address" gorm:"size:45"`
	UserAgent    string `json:"user_agent" gorm:"size:255"`
	NewValues    JSONB  `json:"new_values" gorm:"type:jsonb"`
}
