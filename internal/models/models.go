package models

import "time"

const (
	SenderUser = "user"
	SenderBot  = "bot"
)

type Message struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type Conversation struct {
	SessionID string    `json:"sessionId"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Child is the subject section of a case record. Nil means the value was not
// stated (or could not be validated).
type Child struct {
	FirstName        *string  `json:"firstName" validate:"omitempty,max=100"`
	LastName         *string  `json:"lastName" validate:"omitempty,max=100"`
	Gender           *string  `json:"gender" validate:"omitempty,gender"`
	Age              *string  `json:"age" validate:"omitempty,age"`
	StreetAddress    *string  `json:"streetAddress" validate:"omitempty,max=300"`
	Parish           *string  `json:"parish" validate:"omitempty,parish"`
	Phone1           *string  `json:"phone1" validate:"omitempty,phone"`
	Phone2           *string  `json:"phone2" validate:"omitempty,phone"`
	Nationality      *string  `json:"nationality" validate:"omitempty,max=100"`
	SchoolName       *string  `json:"schoolName" validate:"omitempty,max=200"`
	GradeLevel       *string  `json:"gradeLevel" validate:"omitempty,max=50"`
	LivingSituation  *string  `json:"livingSituation" validate:"omitempty,living_situation"`
	VulnerableGroups []string `json:"vulnerableGroups" validate:"omitempty,dive,vulnerable_group"`
	Region           *string  `json:"region" validate:"omitempty,region"`
}

// CallMetadata is the post-call information that can be read off the
// conversation itself.
type CallMetadata struct {
	LocationOfIssue                     *string `json:"locationOfIssue" validate:"omitempty,max=200"`
	ActionTaken                         *string `json:"actionTaken" validate:"omitempty,max=500"`
	OutcomeOfContact                    *string `json:"outcomeOfContact" validate:"omitempty,max=500"`
	HowDidYouKnowAboutOurLine           *string `json:"howDidYouKnowAboutOurLine" validate:"omitempty,max=200"`
	OkForCaseWorkerToCall               *string `json:"okForCaseWorkerToCall" validate:"omitempty,flag"`
	DidTheChildFeelWeSolvedTheirProblem *string `json:"didTheChildFeelWeSolvedTheirProblem" validate:"omitempty,flag"`
	WouldTheChildRecommendUsToAFriend   *string `json:"wouldTheChildRecommendUsToAFriend" validate:"omitempty,flag"`
	DidYouDiscussRightsWithTheChild     *string `json:"didYouDiscussRightsWithTheChild" validate:"omitempty,flag"`
}

// CallSummary is the summary section. SummaryAccuracy, SummaryFeedback and
// OtherLocation are completed by the counselor only.
type CallSummary struct {
	CallSummary string `json:"callSummary" validate:"required"`
	CallMetadata
	RepeatCaller     *bool   `json:"repeatCaller"`
	KeepConfidential bool    `json:"keepConfidential"`
	SummaryAccuracy  *string `json:"summaryAccuracy"`
	SummaryFeedback  *string `json:"summaryFeedback"`
	OtherLocation    *string `json:"otherLocation"`
}

// CaseRecord is the structured case-intake record produced from a
// conversation and submitted by the case-management form.
type CaseRecord struct {
	Child    Child               `json:"child"`
	Category map[string][]string `json:"category" validate:"dive,keys,category,endkeys,dive,required"`
	Summary  CallSummary         `json:"summary"`
}

const (
	SubmissionSubmitted = "submitted"
	SubmissionInReview  = "in_review"
	SubmissionClosed    = "closed"
)

type FormSubmission struct {
	SessionID    string     `json:"sessionId"`
	SubmissionID string     `json:"submissionId"`
	FormData     CaseRecord `json:"formData"`
	ContactEmail *string    `json:"contactEmail,omitempty"`
	SubmittedAt  time.Time  `json:"submitted_at"`
	Status       string     `json:"status"`
}

type ChatRequest struct {
	SessionID string `json:"sessionId" validate:"required,max=128"`
	Message   string `json:"message" validate:"required,max=4000"`
}

type ChatResponse struct {
	Response string `json:"response"`
}

type SessionRequest struct {
	SessionID string `json:"sessionId" validate:"required,max=128"`
}

type SummaryResponse struct {
	Summary string `json:"summary"`
}

type FormSubmissionRequest struct {
	SessionID    string     `json:"sessionId" validate:"required,max=128"`
	FormData     CaseRecord `json:"formData"`
	ContactEmail *string    `json:"contactEmail,omitempty" validate:"omitempty,email"`
}

type FormSubmissionResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	SubmissionID string `json:"submissionId"`
}

type UpdateStatusResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
	Status    string `json:"status"`
}
