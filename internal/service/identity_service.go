package service

import (
	"context"
	"strconv"
	"strings"

	"fintel-wallet-backend/internal/core/domain"
	"fintel-wallet-backend/internal/core/ports"
	"fintel-wallet-backend/pkg/apperror"
)

// IdentityService implements ports.IdentityResolver on top of the owner
// directory. Phone numbers arrive in whatever shape the mobile client sends
// ("+225 07 08 09 10 11", "2250708091011", "0708091011") and are normalized
// to the local form before lookup.
type IdentityService struct {
	directory   ports.OwnerDirectory
	countryCode string
}

// NewIdentityService creates an IdentityService. countryCode is the dialing
// prefix stripped from international-format numbers (e.g. "225").
func NewIdentityService(directory ports.OwnerDirectory, countryCode string) *IdentityService {
	return &IdentityService{
		directory:   directory,
		countryCode: countryCode,
	}
}

// ResolveOwner maps a phone number or numeric owner id to an owner record.
func (s *IdentityService) ResolveOwner(ctx context.Context, phoneOrID string) (*domain.Owner, error) {
	ref := strings.TrimSpace(phoneOrID)
	if ref == "" {
		return nil, apperror.Validation("owner reference is required")
	}

	phone := s.NormalizePhone(ref)
	owner, err := s.directory.GetByPhone(ctx, phone)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if owner == nil {
		// Fall back to a direct owner-id lookup for internal callers.
		if id, convErr := strconv.ParseInt(ref, 10, 64); convErr == nil {
			owner, err = s.directory.GetByID(ctx, id)
			if err != nil {
				return nil, apperror.InternalError(err)
			}
		}
	}
	if owner == nil {
		return nil, apperror.ErrNotFound("owner")
	}
	if !owner.Active {
		return nil, apperror.ErrNotFound("owner")
	}
	return owner, nil
}

// NormalizePhone strips formatting characters and the country dialing prefix.
func (s *IdentityService) NormalizePhone(raw string) string {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case '+', ' ', '-', '(', ')':
			return -1
		}
		return r
	}, raw)
	clean = strings.TrimSpace(clean)

	if s.countryCode != "" && strings.HasPrefix(clean, s.countryCode) && len(clean) > 10 {
		clean = clean[len(s.countryCode):]
	}
	return clean
}
