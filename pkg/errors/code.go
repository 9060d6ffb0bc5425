package errors

// ErrorCode represents a unique error identifier
type ErrorCode int

// Error code ranges allocation:
// 10000-10999: System & Common errors
// 11000-11999: User module errors
// 12000-12999: Problem module errors
// 13000-13999: Submission & Judge module errors
// 14000-14999: Contest module errors
// 17000-17999: Client call errors (transport, protocol, decode, polling)

const (
	// ========== System & Common Errors (10000-10999) ==========

	// Success
	Success ErrorCode = 10000

	// Generic errors (10000-10099)
	InternalServerError ErrorCode = 10001
	InvalidParams       ErrorCode = 10002
	NotFound            ErrorCode = 10003
	Unauthorized        ErrorCode = 10004
	Forbidden           ErrorCode = 10005
	TooManyRequests     ErrorCode = 10006
	ServiceUnavailable  ErrorCode = 10007
	Timeout             ErrorCode = 10008

	// Validation errors (10300-10399)
	ValidationFailed   ErrorCode = 10300
	InvalidFormat      ErrorCode = 10301
	InvalidValue       ErrorCode = 10302
	RequiredFieldEmpty ErrorCode = 10303

	// ========== User Module Errors (11000-11999) ==========

	// Authentication (11000-11099)
	InvalidCredentials ErrorCode = 11000
	UserNotFound       ErrorCode = 11001
	PasswordIncorrect  ErrorCode = 11002
	SessionInvalid     ErrorCode = 11003

	// Registration (11100-11199)
	UsernameAlreadyExists ErrorCode = 11100
	InvalidUsername       ErrorCode = 11102
	InvalidEmail          ErrorCode = 11103
	InvalidPassword       ErrorCode = 11104

	// ========== Problem Module Errors (12000-12999) ==========

	ProblemNotFound      ErrorCode = 12000
	ProblemArchiveFailed ErrorCode = 12101

	// ========== Submission & Judge Module Errors (13000-13999) ==========

	SubmissionNotFound   ErrorCode = 13000
	LanguageNotSupported ErrorCode = 13003
	CustomTestFailed     ErrorCode = 13200

	// ========== Contest Module Errors (14000-14999) ==========

	ContestNotFound ErrorCode = 14000
	NotRegistered   ErrorCode = 14103

	// ========== Client Call Errors (17000-17999) ==========

	// Transport (17000-17099): the request never produced an HTTP response
	TransportFailed  ErrorCode = 17000
	TransportTimeout ErrorCode = 17001
	RequestBuild     ErrorCode = 17002

	// Protocol (17100-17199): the backend answered with a non-2xx status
	ProtocolFailed ErrorCode = 17100

	// Decode (17200-17299): the body does not match the expected shape
	DecodeFailed      ErrorCode = 17200
	UnknownStatusName ErrorCode = 17201
	UnknownDetailKind ErrorCode = 17202

	// Polling (17300-17399)
	PollExhausted ErrorCode = 17300
)

// errorMessages maps error codes to their default English messages
var errorMessages = map[ErrorCode]string{
	// System & Common
	Success:             "Success",
	InternalServerError: "Internal server error",
	InvalidParams:       "Invalid parameters",
	NotFound:            "Resource not found",
	Unauthorized:        "Unauthorized access",
	Forbidden:           "Access forbidden",
	TooManyRequests:     "Too many requests, please try again later",
	ServiceUnavailable:  "Service temporarily unavailable",
	Timeout:             "Request timeout",

	// Validation
	ValidationFailed:   "Validation failed",
	InvalidFormat:      "Invalid format",
	InvalidValue:       "Invalid value",
	RequiredFieldEmpty: "Required field is empty",

	// User - Authentication
	InvalidCredentials: "Invalid username or password",
	UserNotFound:       "User not found",
	PasswordIncorrect:  "Incorrect password",
	SessionInvalid:     "Invalid session",

	// User - Registration
	UsernameAlreadyExists: "Username already exists",
	InvalidUsername:       "Invalid username format",
	InvalidEmail:          "Invalid email format",
	InvalidPassword:       "Invalid password format",

	// Problem
	ProblemNotFound:      "Problem not found",
	ProblemArchiveFailed: "Failed to build problem data archive",

	// Submission & Judge
	SubmissionNotFound:   "Submission not found",
	LanguageNotSupported: "Programming language not supported",
	CustomTestFailed:     "Custom test execution failed",

	// Contest
	ContestNotFound: "Contest not found",
	NotRegistered:   "Not registered for this contest",

	// Client
	TransportFailed:   "Request failed",
	TransportTimeout:  "Request timed out",
	RequestBuild:      "Failed to build request",
	ProtocolFailed:    "Server rejected the request",
	DecodeFailed:      "Failed to decode response",
	UnknownStatusName: "Unknown judge status",
	UnknownDetailKind: "Unknown judge detail kind",
	PollExhausted:     "Polling gave up before a result was ready",
}

// Message returns the default message for the error code
func (c ErrorCode) Message() string {
	if msg, ok := errorMessages[c]; ok {
		return msg
	}
	return "Unknown error"
}

// Kind groups error codes by where a call failed.
type Kind int

const (
	KindNone Kind = iota
	KindValidation
	KindTransport
	KindProtocol
	KindDecode
	KindPoll
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindValidation:
		return "validation"
	case KindTransport:
		return "transport"
	case KindProtocol:
		return "protocol"
	case KindDecode:
		return "decode"
	case KindPoll:
		return "poll"
	default:
		return "other"
	}
}

// Kind returns the client-side failure class of the code.
func (c ErrorCode) Kind() Kind {
	switch {
	case c == Success:
		return KindNone
	case c >= 10300 && c < 10400, c == InvalidParams:
		return KindValidation
	case c == InvalidUsername, c == InvalidEmail, c == InvalidPassword:
		return KindValidation
	case c >= 17000 && c < 17100:
		return KindTransport
	case c >= 17100 && c < 17200:
		return KindProtocol
	case c >= 17200 && c < 17300:
		return KindDecode
	case c >= 17300 && c < 17400:
		return KindPoll
	default:
		return KindOther
	}
}

// HTTPStatus returns the recommended HTTP status code for the error code
func (c ErrorCode) HTTPStatus() int {
	switch {
	case c == Success:
		return 200
	case c == NotFound, c == UserNotFound, c == ProblemNotFound, c == ContestNotFound, c == SubmissionNotFound:
		return 404
	case c >= 11000 && c < 11100: // Authentication errors
		return 401
	case c == Unauthorized:
		return 401
	case c == Forbidden:
		return 403
	case c == UsernameAlreadyExists:
		return 409
	case c == TooManyRequests:
		return 429
	case c == ServiceUnavailable:
		return 503
	case c >= 10300 && c < 10400: // Validation errors
		return 400
	case c == InvalidParams, c == InvalidUsername, c == InvalidEmail, c == InvalidPassword:
		return 400
	default:
		return 500
	}
}
