package model

import "context"

// EmailSender delivers single-use codes to users. A send failure is a hard
// error for the registration flow: the caller rolls back the just-created
// account rather than leaving an unreachable unconfirmed user behind.
type EmailSender interface {
	SendConfirmationCode(ctx context.Context, email, code string) error
	SendRecoveryCode(ctx context.Context, email, code string) error
}
