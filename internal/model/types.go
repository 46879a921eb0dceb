// Package model defines shared data structures.
package model

import "time"

// Mode selects how a finished session is counted.
type Mode string

const (
	ModeDaily    Mode = "daily"
	ModePractice Mode = "practice"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeDaily || m == ModePractice
}

// Config defines practice settings.
type Config struct {
	Mode         Mode
	Lang         string
	Difficulty   string
	DailyMax     int
	SnippetsPath string
	APIURL       string
}

// Preferences are the practice choices remembered between runs.
type Preferences struct {
	Mode       Mode   `json:"mode,omitempty"`
	Lang       string `json:"lang,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
}

// Snippet is a piece of reference text to type.
type Snippet struct {
	ID          string `toml:"id" json:"id"`
	Lang        string `toml:"lang" json:"lang"`
	Difficulty  string `toml:"difficulty" json:"difficulty"`
	Category    string `toml:"category" json:"category"`
	Text        string `toml:"text" json:"text"`
	Description string `toml:"description" json:"description,omitempty"`
}

// Attempt is the persisted summary of one finished session.
type Attempt struct {
	ID         string    `json:"id,omitempty"`
	UserID     string    `json:"userId,omitempty"`
	SnippetID  string    `json:"snippetId"`
	Language   string    `json:"language"`
	Difficulty string    `json:"difficulty"`
	Category   string    `json:"category"`
	WPM        float64   `json:"wpm"`
	Accuracy   float64   `json:"accuracy"`
	Errors     int       `json:"errors"`
	TimeMs     int64     `json:"timeMs"`
	Mode       Mode      `json:"mode"`
	Date       string    `json:"date,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// User is a registered account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Credential is what the client keeps after logging in.
type Credential struct {
	Token    string `json:"token"`
	UserID   string `json:"userId"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// Authenticated reports whether the credential carries a token.
func (c Credential) Authenticated() bool {
	return c.Token != ""
}

// AttemptFilter narrows attempt listings.
type AttemptFilter struct {
	Language   string
	Difficulty string
	Limit      int
}

// AttemptStats aggregates a set of attempts.
type AttemptStats struct {
	TotalAttempts   int     `json:"totalAttempts"`
	AverageWPM      float64 `json:"averageWpm"`
	BestWPM         float64 `json:"bestWpm"`
	AverageAccuracy float64 `json:"averageAccuracy"`
	TotalTimeMs     int64   `json:"totalTime"`
}

// LanguageStats aggregates attempts for one language.
type LanguageStats struct {
	Language string `json:"language"`
	AttemptStats
}

// LeaderboardFilter narrows leaderboard queries.
type LeaderboardFilter struct {
	Language   string
	Difficulty string
	Limit      int
}

// LeaderboardEntry is the best attempt of one user.
type LeaderboardEntry struct {
	Rank       int       `json:"rank"`
	UserID     string    `json:"userId"`
	Username   string    `json:"username"`
	BestWPM    float64   `json:"bestWpm"`
	Accuracy   float64   `json:"accuracy"`
	Language   string    `json:"language,omitempty"`
	Difficulty string    `json:"difficulty,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}
