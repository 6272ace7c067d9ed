package client

import (
	"encoding/json"
	"time"
)

// TokenResponse is the body of POST /auth/token. Only AccessToken is
// guaranteed; the role may arrive in User.Role, Role, or Roles.
type TokenResponse struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type,omitempty"`
	User        *TokenUser `json:"user,omitempty"`
	Role        string     `json:"role,omitempty"`
	Roles       []string   `json:"roles,omitempty"`
}

// TokenUser is the optional user object embedded in a TokenResponse.
type TokenUser struct {
	ID    json.Number `json:"id,omitempty"`
	Email string      `json:"email,omitempty"`
	Role  string      `json:"role,omitempty"`
}

type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Account is a user record as returned by /auth/me and /users.
type Account struct {
	ID       int64  `json:"id,omitempty"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email"`
	Role     string `json:"role,omitempty"`
}

type Case struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
	CreatedBy   string `json:"created_by,omitempty"`
	AssignedTo  string `json:"assigned_to,omitempty"`
}

// CaseFiling is the form a civilian submits to open a case.
type CaseFiling struct {
	Title       string
	Description string
	UserEmail   string
}

type CaseCreate struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// CaseUpdate leaves fields that are nil untouched on the server.
type CaseUpdate struct {
	Status       *string `json:"status,omitempty"`
	AssignedToID *int64  `json:"assigned_to_id,omitempty"`
}

type CaseStatus struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

type CaseNoteCreate struct {
	CaseID   int64  `json:"case_id"`
	AuthorID int64  `json:"author_id"`
	Note     string `json:"note"`
}

type CaseNote struct {
	ID         int64  `json:"id"`
	Note       string `json:"note"`
	AuthorName string `json:"author_name"`
	CreatedAt  string `json:"created_at"`
}

type Evidence struct {
	ID            int64  `json:"id"`
	Filename      string `json:"filename"`
	FileType      string `json:"file_type,omitempty"`
	CaseTitle     string `json:"case_title,omitempty"`
	UploaderEmail string `json:"uploader_email,omitempty"`
	UploadDate    string `json:"upload_date,omitempty"`
	Category      string `json:"category,omitempty"`
	Status        string `json:"status"`
	Remarks       string `json:"remarks,omitempty"`
}

// EvidenceReview sets the review outcome: APPROVED, REJECTED or UNDER_REVIEW.
type EvidenceReview struct {
	Status  string `json:"status"`
	Remarks string `json:"remarks,omitempty"`
}

type Hearing struct {
	ID            int64  `json:"id"`
	CaseTitle     string `json:"case_title"`
	JudgeName     string `json:"judge_name,omitempty"`
	RegistrarName string `json:"registrar_name"`
	ScheduledDate string `json:"scheduled_date"`
	Location      string `json:"location"`
	Status        string `json:"status"`
	Notes         string `json:"notes,omitempty"`
}

type HearingCreate struct {
	CaseID         int64     `json:"case_id"`
	ScheduledDate  time.Time `json:"scheduled_date"`
	Location       string    `json:"location"`
	RegistrarEmail string    `json:"registrar_email"`
	JudgeID        *int64    `json:"judge_id,omitempty"`
}

type HearingUpdate struct {
	ScheduledDate *time.Time `json:"scheduled_date,omitempty"`
	Location      *string    `json:"location,omitempty"`
	Status        *string    `json:"status,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
	JudgeID       *int64     `json:"judge_id,omitempty"`
}

type Payment struct {
	ID          int64   `json:"id"`
	PayerEmail  string  `json:"payer_email"`
	CaseTitle   string  `json:"case_title,omitempty"`
	Amount      float64 `json:"amount"`
	PaymentType string  `json:"payment_type"`
	Status      string  `json:"status"`
	Date        string  `json:"date"`
	Reference   string  `json:"reference,omitempty"`
}

// PaymentCreate records a payment; PaymentType is e.g. FILING_FEE, FINE, PENALTY.
type PaymentCreate struct {
	CaseID      int64   `json:"case_id"`
	PayerEmail  string  `json:"payer_email"`
	Amount      float64 `json:"amount"`
	PaymentType string  `json:"payment_type"`
	Reference   string  `json:"reference,omitempty"`
}

type PaymentUpdate struct {
	Status    *string `json:"status,omitempty"`
	Reference *string `json:"reference,omitempty"`
}

type Document struct {
	ID            int64  `json:"id"`
	Filename      string `json:"filename"`
	CaseTitle     string `json:"case_title,omitempty"`
	UploaderEmail string `json:"uploader_email,omitempty"`
	UploadDate    string `json:"upload_date"`
	FileType      string `json:"file_type,omitempty"`
	Description   string `json:"description,omitempty"`
}
