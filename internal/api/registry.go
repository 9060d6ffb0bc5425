package api

import "ojclient/internal/judge/report"

// Auth
var (
	Register = Post[RegisterPayload, string]("/auth/register",
		"Create an account; the server opens a session.",
		"username: 4-20 chars, letters, digits or '_', starting with a letter",
		"passwordHash: register hash, never the plain password")
	Login = Post[LoginPayload, string]("/auth/login",
		"Log in; the session cookie is set on success.",
		"passwordHash: register hash of the password")
	Logout   = Post[NoPayload, string]("/auth/logout", "Invalidate the session cookie.")
	AuthInfo = Get[NoPayload, Identity]("/auth/info", "Identity behind the current session.")
)

// User
var (
	User         = Get[UserQuery, UserInfo]("/user", "Public profile of a user.")
	UserEditInfo = Get[NoPayload, UserInfo]("/user/edit", "Editable profile of the session user.")
	EditUser     = Post[UserUpdate, string]("/user/edit", "Update the session user; absent fields stay unchanged.",
		"gender: Male, Female, Others or Private")
	Gravatar = Get[GravatarQuery, []byte]("/user/gravatar", "Avatar image of an email address.")
)

// Problem
var (
	ProblemMetas = Get[SearchQuery, []ProblemMeta]("/problem/metas", "List problems.",
		"max_count: at most 255")
	Statement       = Get[IDQuery, ProblemStatement]("/problem/statement", "Problem statement as a markdown AST.")
	StatementAsset  = Get[AssetQuery, []byte]("/problem/statement_assets", "A file referenced by a statement.")
	FullDataMeta    = Get[IDQuery, string]("/problem/fulldata_meta", "Description of the stored problem data.")
	UploadFullData  = Post[FullDataForm, FullDataReturn]("/problem/fulldata", "Create or replace problem data from a zip archive.", "data: zip archive")
	SubmitSolution  = Post[SubmitForm, SubmitReturn]("/problem/submit", "Submit source files, or rejudge when sid is set.", "files: named name.<lang>.<ext>")
)

// Custom test
var (
	StartCustomTest = Post[CustomTestForm, string]("/custom_test", "Run a source file once against an input file.",
		"source: name.<lang>.<ext>, compilable language", "input: plain text")
	CustomTestResult = Get[NoPayload, report.CustomTestResult]("/custom_test", "Poll the last custom test; result is null while running.")
)

// Submission
var (
	SubmissionDetail = Get[SubmissionQuery, report.SubmissionDetail]("/submission/detail", "Submission files, report and judge log.")
	SubmissionMetas  = Get[SubmissionListQuery, []report.SubmissionMeta]("/submission/metas", "List submissions.",
		"max_count: at most 255")
)

// Contest
var (
	ContestMetas = Get[SearchQuery, []ContestMeta]("/contest/metas", "List contests.",
		"max_count: at most 255")
	ContestInfo       = Get[IDQuery, ContestDetail]("/contest/info", "Contest meta and problem list.")
	Registrants       = Get[RegistrantsQuery, []Registrant]("/contest/registrants", "List users registered to a contest.")
	RegisterContest   = Post[ContestRef, string]("/contest/registrants", "Register the session user to a contest.")
	UnregisterContest = Delete[ContestRef, string]("/contest/registrants", "Remove the session user from a contest.")
)
