package model

import "time"

type UserStatus string

const (
	UserActive            UserStatus = "ACTIVE"
	UserPendingActivation UserStatus = "PENDING_ACTIVATION"
	UserInactive          UserStatus = "INACTIVE"
	UserSuspended         UserStatus = "SUSPENDED"
)

// UserContext carries the already-authenticated identity and its assignments.
// Empty allow-lists mean unrestricted access.
type UserContext struct {
	ID           string     `gorm:"primaryKey;column:id;size:36" json:"id"`
	Name         string     `gorm:"column:name;size:100" json:"name"`
	Status       UserStatus `gorm:"column:status;size:20;not null;default:'PENDING_ACTIVATION'" json:"status"`
	ProductTypes []string   `gorm:"column:product_types;serializer:json" json:"productTypes"`
	Checkpoints  []string   `gorm:"column:checkpoints;serializer:json" json:"checkpoints"`

	CreatedAt time.Time `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP;<-:create" json:"createdAt"`
	UpdatedAt time.Time `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP on update CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (UserContext) TableName() string {
	return "users"
}

// PrimaryProductType is the product used for schedule resolution in batch jobs.
func (u *UserContext) PrimaryProductType() string {
	if len(u.ProductTypes) == 0 {
		return ""
	}
	return u.ProductTypes[0]
}

// HasProductAccess reports whether the user may record attendance for product.
func (u *UserContext) HasProductAccess(product string) bool {
	if len(u.ProductTypes) == 0 {
		return true
	}
	for _, p := range u.ProductTypes {
		if p == product {
			return true
		}
	}
	return false
}

// HasCheckpointAccess reports whether the user may use the checkpoint.
func (u *UserContext) HasCheckpointAccess(checkpointID string) bool {
	if len(u.Checkpoints) == 0 {
		return true
	}
	for _, c := range u.Checkpoints {
		if c == checkpointID {
			return true
		}
	}
	return false
}
