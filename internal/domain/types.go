package domain

import "time"

type SessionID string
type UserID string
type MessageID string
type AssessmentID string

type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

// Confidence grades how much weight a verdict or analysis deserves.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Intensity grades emotional or relapse-risk strength.
type Intensity string

const (
	IntensityMinimal Intensity = "minimal"
	IntensityLow     Intensity = "low"
	IntensityMedium  Intensity = "medium"
	IntensityHigh    Intensity = "high"
)

// SessionPhase is the explicit question-mode state machine: the agent is
// either conversing freely or waiting for the answer to a specific
// assessment question.
type SessionPhase string

const (
	PhaseIdle           SessionPhase = "idle"
	PhaseAwaitingAnswer SessionPhase = "awaiting_answer"
)

type Timestamp = time.Time
