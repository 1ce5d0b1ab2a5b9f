package model

import "time"

// DefaultMajor is recorded when a user skips choosing a major
const DefaultMajor = "non denominated"

// User is the stored profile of a signed-in student
type User struct {
	UID         string    `json:"uid" bson:"_id"`
	DisplayName string    `json:"displayName" bson:"displayName"`
	Email       string    `json:"email" bson:"email"`
	PhotoURL    string    `json:"photoURL" bson:"photoURL"`
	Major       string    `json:"major" bson:"major"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Summary returns the participant view of the user
func (u *User) Summary() Participant {
	return Participant{
		UID:         u.UID,
		DisplayName: u.DisplayName,
		PhotoURL:    u.PhotoURL,
	}
}

// NeedsMajor is true until the user picks a real major
func (u *User) NeedsMajor() bool {
	return u.Major == "" || u.Major == DefaultMajor
}
