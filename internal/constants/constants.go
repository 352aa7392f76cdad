package constants

import "time"

// Authentication
const (
	ContextKeyUsername = "username"
	MinPasswordLength  = 8
	MinJWTSecretLength = 32
	TokenTTL           = time.Hour
	TokenIssuer        = "taskproof-api"
)

// Scoring
const (
	ScoreApprovedOnTime  = 10
	ScoreApprovedLate    = 5
	ScoreRejectedPenalty = 3
)

// Uploads
const (
	ProofFormField  = "proof"
	AvatarFormField = "avatar"
	MaxUploadBytes  = 10 << 20
)
