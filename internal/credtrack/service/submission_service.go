package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/credtrack/server/internal/credtrack/store"
	"github.com/credtrack/server/internal/credtrack/types"
)

var ErrInvalidSubmission = errors.New("file name is required")

// Submission carries the metadata of an uploaded document. File transport
// itself is out of scope; the engine only records that a document arrived.
type Submission struct {
	FileName string `json:"file_name"`
}

// SubmissionService records document submissions against credentials.
// This is the engine's sole mutation point.
type SubmissionService struct {
	credentials store.CredentialStore
}

func NewSubmissionService(cs store.CredentialStore) *SubmissionService {
	return &SubmissionService{credentials: cs}
}

// SubmitDocument moves the credential to pending and stamps a generated
// document reference. Re-submission on an already pending or verified
// credential is allowed and also lands on pending, since the new document
// supersedes the old one until it is reviewed. The replace is atomic:
// readers see either the old record or the new one, never a half-write.
func (s *SubmissionService) SubmitDocument(ctx context.Context, credentialID string, sub Submission) (types.Credential, error) {
	credentialID = strings.TrimSpace(credentialID)
	if credentialID == "" {
		return types.Credential{}, ErrInvalidCredentialID
	}
	if strings.TrimSpace(sub.FileName) == "" {
		return types.Credential{}, ErrInvalidSubmission
	}

	cred, err := s.credentials.GetCredential(ctx, credentialID)
	if err != nil {
		return types.Credential{}, err
	}

	cred.Status = types.StatusPending
	cred.DocumentURL = fmt.Sprintf("/documents/%s.pdf", uuid.NewString())

	if err := s.credentials.ReplaceCredential(ctx, cred); err != nil {
		return types.Credential{}, err
	}
	return cred, nil
}
