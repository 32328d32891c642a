package models

import "time"

// MovieNight is a scheduled movie night on its owner's calendar.
type MovieNight struct {
	BaseModel
	MovieTitle    string    `gorm:"type:varchar(255);not null" json:"movieTitle"`
	ScheduledDate time.Time `gorm:"not null;index" json:"scheduledDate"`
	StartTime     string    `gorm:"type:varchar(8);not null" json:"startTime"` // "HH:MM"
	Notes         string    `gorm:"type:text" json:"notes,omitempty"`
	ImageURL      string    `gorm:"type:varchar(255)" json:"imageUrl,omitempty"`
	Genre         string    `gorm:"type:varchar(100)" json:"genre,omitempty"`
	UserID        string    `gorm:"type:uuid;not null;index" json:"userId"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for the MovieNight model.
func (MovieNight) TableName() string {
	return "movie_nights"
}

// MovieNightAttendee is one user's RSVP against one movie night. The unique
// pair index backs the no-duplicate-RSVP invariant.
type MovieNightAttendee struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	MovieNightID uint      `gorm:"not null;uniqueIndex:idx_movie_night_attendees_pair" json:"movieNightId"`
	UserID       string    `gorm:"type:uuid;not null;uniqueIndex:idx_movie_night_attendees_pair" json:"userId"`
	RsvpedAt     time.Time `gorm:"autoCreateTime" json:"rsvpedAt"`

	MovieNight MovieNight `gorm:"foreignKey:MovieNightID;constraint:OnDelete:CASCADE" json:"-"`
	User       User       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for the MovieNightAttendee model.
func (MovieNightAttendee) TableName() string {
	return "movie_night_attendees"
}

// AttendeeInfo is the listing projection of one RSVP: the attendee's public
// profile plus when they RSVPed.
type AttendeeInfo struct {
	UserPublicInfo
	RsvpedAt time.Time `json:"rsvpedAt"`
}
