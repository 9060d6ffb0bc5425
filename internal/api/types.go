package api

import (
	"encoding/json"

	"ojclient/internal/judge/report"
)

// RegisterPayload is the body of POST /auth/register.
type RegisterPayload struct {
	Email        string `json:"email"`
	Username     string `json:"username"`
	PasswordHash string `json:"passwordHash"`
}

// LoginPayload is the body of POST /auth/login.
type LoginPayload struct {
	Username     string `json:"username"`
	PasswordHash string `json:"passwordHash"`
}

// Identity is the user behind the current session.
type Identity struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type Gender string

const (
	GenderMale    Gender = "Male"
	GenderFemale  Gender = "Female"
	GenderOthers  Gender = "Others"
	GenderPrivate Gender = "Private"
)

// UserQuery selects a profile by username.
type UserQuery struct {
	Username string `json:"username"`
}

// UserInfo is a user profile as shown to others and on the edit page.
type UserInfo struct {
	ID           uint32 `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	Motto        string `json:"motto"`
	Name         string `json:"name"`
	RegisterTime string `json:"register_time"`
	Gender       Gender `json:"gender"`
}

// UserUpdate is the body of POST /user/edit; nil fields are left unchanged.
type UserUpdate struct {
	PasswordHash *string `json:"password_hash,omitempty"`
	Email        *string `json:"email,omitempty"`
	Motto        *string `json:"motto,omitempty"`
	Name         *string `json:"name,omitempty"`
	Gender       *Gender `json:"gender,omitempty"`
}

// GravatarQuery asks for the avatar of an email address.
type GravatarQuery struct {
	Email   string `json:"email"`
	NoCache bool   `json:"no_cache,omitempty"`
}

// ListQuery pages through a listing.
type ListQuery struct {
	MaxCount uint8  `json:"max_count"`
	Offset   uint32 `json:"offset"`
}

// SearchQuery pages through a listing filtered by pattern.
type SearchQuery struct {
	ListQuery
	Pattern *string `json:"pattern,omitempty"`
}

type ProblemMeta struct {
	ID    uint64 `json:"id"`
	Title string `json:"title"`
	Tags  string `json:"tags"`
}

// IDQuery selects one entity by id.
type IDQuery struct {
	ID uint64 `json:"id"`
}

// ProblemStatement is a problem statement. The body is a markdown AST kept as raw JSON.
type ProblemStatement struct {
	Title     string          `json:"title"`
	Statement json.RawMessage `json:"statement"`
	Meta      json.RawMessage `json:"meta"`
}

// AssetQuery selects a statement asset by problem id and file name.
type AssetQuery struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

type FullDataReturn struct {
	ID uint64 `json:"id"`
}

type SubmitReturn struct {
	SID uint64 `json:"sid"`
}

// SubmissionQuery selects a submission.
type SubmissionQuery struct {
	SID uint64 `json:"sid"`
}

// SubmissionListQuery filters the submission listing.
type SubmissionListQuery struct {
	ListQuery
	PID  *uint64          `json:"pid,omitempty"`
	UID  *uint64          `json:"uid,omitempty"`
	Lang *report.FileType `json:"lang,omitempty"`
}

// ContestMeta times are unix seconds and Duration is milliseconds.
type ContestMeta struct {
	ID        uint64 `json:"id"`
	Title     string `json:"title"`
	StartTime int64  `json:"start_time"`
	EndTime   int64  `json:"end_time"`
	Duration  uint64 `json:"duration"`
}

type ContestDetail struct {
	Meta     ContestMeta   `json:"meta"`
	Problems []ProblemMeta `json:"problems"`
}

// RegistrantsQuery pages through the registrants of a contest.
type RegistrantsQuery struct {
	ListQuery
	ID uint64 `json:"id"`
}

type Registrant struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
}

// ContestRef is the body of the registrant mutations.
type ContestRef struct {
	CID uint64 `json:"cid"`
}
