package models

import "time"

// User is a bot user row. Created on first interaction, never deleted.
type User struct {
	ID          int64     `db:"user_id"`
	Username    string    `db:"username"`
	FirstName   string    `db:"first_name"`
	LastName    string    `db:"last_name"`
	JoinedAt    time.Time `db:"joined_at"`
	Banned      bool      `db:"banned"`
	SearchCount int64     `db:"search_count"`
}

// Channel is a mandatory-subscription channel managed by the admin.
type Channel struct {
	ID      int64     `db:"channel_id"`
	Handle  string    `db:"handle"`
	AddedBy int64     `db:"added_by"`
	AddedAt time.Time `db:"added_at"`
}

// SearchRecord is an append-only audit row written once per successful search.
type SearchRecord struct {
	ID          int64     `db:"id"`
	UserID      int64     `db:"user_id"`
	Query       string    `db:"query"`
	Category    Category  `db:"category"`
	CreatedAt   time.Time `db:"created_at"`
	ResultCount int       `db:"result_count"`
}

// Result is one provider hit, normalized across categories. Only the URL
// matching the session category is populated.
type Result struct {
	Tags      string `json:"tags"`
	Views     int64  `json:"views"`
	Likes     int64  `json:"likes,omitempty"`
	Downloads int64  `json:"downloads,omitempty"`
	// Duration is in seconds; set for video and music hits.
	Duration int    `json:"duration,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	VideoURL string `json:"video_url,omitempty"`
	AudioURL string `json:"audio_url,omitempty"`
	PageURL  string `json:"page_url,omitempty"`
}

// Session is the single durable conversation record per user: the last
// query, the chosen category, the result snapshot, and the pager index.
// It is always rewritten whole, never merged.
type Session struct {
	UserID   int64
	Query    string
	Category Category
	Results  []Result
	Index    int
}

// Statistics is a point-in-time full-scan aggregate over the store.
type Statistics struct {
	TotalUsers    int64 `db:"total_users"`
	TotalSearches int64 `db:"total_searches"`
	Channels      int64 `db:"channels"`
	BannedUsers   int64 `db:"banned_users"`
}
