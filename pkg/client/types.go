package client

import "time"

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Session is a logged-in user and its bearer token.
type Session struct {
	User
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type CaseSummary struct {
	ID         string `json:"id"`
	CaseNumber string `json:"caseNumber"`
	Title      string `json:"title"`
}

type Case struct {
	ID          string       `json:"id"`
	CaseNumber  string       `json:"caseNumber"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      string       `json:"status"`
	ClientID    string       `json:"clientId"`
	StaffID     string       `json:"staffId"`
	Client      *UserSummary `json:"client,omitempty"`
	Staff       *UserSummary `json:"staff,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

type Appointment struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Date        time.Time    `json:"date"`
	Duration    int          `json:"duration"`
	Status      string       `json:"status"`
	ClientID    string       `json:"clientId"`
	StaffID     string       `json:"staffId"`
	CaseID      *string      `json:"caseId,omitempty"`
	Location    string       `json:"location"`
	Notes       string       `json:"notes"`
	Client      *UserSummary `json:"client,omitempty"`
	Staff       *UserSummary `json:"staff,omitempty"`
	Case        *CaseSummary `json:"case,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

type Document struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	OriginalName string       `json:"originalName"`
	FilePath     string       `json:"filePath"`
	FileSize     int64        `json:"fileSize"`
	MimeType     string       `json:"mimeType"`
	CaseID       string       `json:"caseId"`
	UploadedBy   string       `json:"uploadedBy"`
	UploadedAt   time.Time    `json:"uploadedAt"`
	PageCount    int          `json:"pageCount,omitempty"`
	Case         *CaseSummary `json:"case,omitempty"`
	Uploader     *UserSummary `json:"uploader,omitempty"`
}

type ChatMessage struct {
	ID          string    `json:"id"`
	SenderID    string    `json:"sender"`
	RecipientID string    `json:"recipient"`
	Content     string    `json:"content"`
	Timestamp   time.Time `json:"timestamp"`
	Read        bool      `json:"read"`
}

type Health struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Services  map[string]struct {
		Status string `json:"status"`
		Error  string `json:"error,omitempty"`
	} `json:"services"`
}

// Request payloads. Update types use pointers so unset fields are omitted.

type UserInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type CaseInput struct {
	CaseNumber  string `json:"caseNumber"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status,omitempty"`
	ClientID    string `json:"clientId"`
	StaffID     string `json:"staffId"`
}

type CaseUpdate struct {
	CaseNumber  *string `json:"caseNumber,omitempty"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	ClientID    *string `json:"clientId,omitempty"`
	StaffID     *string `json:"staffId,omitempty"`
}

type AppointmentInput struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Duration    int       `json:"duration"`
	Status      string    `json:"status,omitempty"`
	ClientID    string    `json:"clientId"`
	StaffID     string    `json:"staffId"`
	CaseID      string    `json:"caseId,omitempty"`
	Location    string    `json:"location,omitempty"`
	Notes       string    `json:"notes,omitempty"`
}

type AppointmentUpdate struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
	Duration    *int       `json:"duration,omitempty"`
	Status      *string    `json:"status,omitempty"`
	ClientID    *string    `json:"clientId,omitempty"`
	StaffID     *string    `json:"staffId,omitempty"`
	CaseID      *string    `json:"caseId,omitempty"`
	Location    *string    `json:"location,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
}

type DocumentInput struct {
	Name         string `json:"name"`
	OriginalName string `json:"originalName"`
	FilePath     string `json:"filePath"`
	FileSize     int64  `json:"fileSize"`
	MimeType     string `json:"mimeType"`
	CaseID       string `json:"caseId"`
	UploadedBy   string `json:"uploadedBy"`
}

type CaseFilter struct {
	Status   string
	ClientID string
	StaffID  string
}

type AppointmentFilter struct {
	Status   string
	ClientID string
	StaffID  string
	CaseID   string
	// Date is YYYY-MM-DD or an RFC 3339 timestamp.
	Date string
}

type DocumentFilter struct {
	CaseID     string
	UploadedBy string
}
