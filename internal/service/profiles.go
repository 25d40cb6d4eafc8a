package service

import (
	"context"
	"strings"
	"unicode/utf8"
)

const (
	nicknameMinLen = 2
	nicknameMaxLen = 20
	bioMaxLen      = 200
)

type ProfileInput struct {
	Nickname     string `json:"nickname"`
	Bio          string `json:"bio"`
	EmailVisible bool   `json:"email_visible"`
	AvatarURL    string `json:"avatar_url"`
}

func validateProfileInput(in ProfileInput) error {
	n := utf8.RuneCountInString(strings.TrimSpace(in.Nickname))
	if n < nicknameMinLen || n > nicknameMaxLen {
		return validationf("nickname must be %d to %d characters", nicknameMinLen, nicknameMaxLen)
	}
	if utf8.RuneCountInString(in.Bio) > bioMaxLen {
		return validationf("bio cannot exceed %d characters", bioMaxLen)
	}
	return nil
}

// GetProfile returns a profile view. Email stays hidden unless the
// profile opted in or the viewer is looking at themselves.
func (svc *Service) GetProfile(ctx context.Context, viewerID, id string) (*ProfileView, error) {
	profile, err := svc.repo.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	view := profileView(profile, viewerID)
	return &view, nil
}

// UpdateProfile is self-only.
func (svc *Service) UpdateProfile(ctx context.Context, viewerID string, in ProfileInput) (*ProfileView, error) {
	if viewerID == "" {
		return nil, ErrUnauthenticated
	}
	if err := validateProfileInput(in); err != nil {
		return nil, err
	}

	profile, err := svc.repo.GetProfile(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	profile.Nickname = strings.TrimSpace(in.Nickname)
	profile.Bio = in.Bio
	profile.EmailVisible = in.EmailVisible
	if in.AvatarURL != "" {
		profile.AvatarURL = &in.AvatarURL
	}

	if err := svc.repo.UpdateProfile(ctx, profile); err != nil {
		return nil, err
	}
	view := profileView(profile, viewerID)
	return &view, nil
}
