package models

// Follow is a directed "watches" edge from FollowerID to FollowingID.
// The unique pair index is the correctness backstop against concurrent
// double-follows; the application-level existence check only produces the
// friendlier error message.
type Follow struct {
	BaseModel
	FollowerID  string `gorm:"type:uuid;not null;uniqueIndex:idx_user_follows_pair" json:"followerId"`
	FollowingID string `gorm:"type:uuid;not null;uniqueIndex:idx_user_follows_pair" json:"followingId"`

	Follower  User `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE" json:"-"`
	Following User `gorm:"foreignKey:FollowingID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for the Follow model.
func (Follow) TableName() string {
	return "user_follows"
}

// FollowStats carries the aggregate edge counts for one user.
type FollowStats struct {
	FollowersCount int64 `json:"followersCount"`
	FollowingCount int64 `json:"followingCount"`
}
