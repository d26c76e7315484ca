package user

import (
	"context"
	"log/slog"

	errors "github.com/haddadrachelle2-png/testdoc/internal"
	"github.com/haddadrachelle2-png/testdoc/internal/auth"
	datamodel "github.com/haddadrachelle2-png/testdoc/internal/core/datamodel/user"
)

// Service owns account registration and the group/profile lookups.
type Service struct {
	repo       Repository
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo Repository, bcryptCost int, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Register creates an account in an existing group. Admin group only.
func (s *Service) Register(ctx context.Context, identity *auth.Identity, dto RegisterDTO) (int64, error) {
	if !identity.IsAdminGroup {
		return 0, errors.ErrAdminGroupOnly
	}
	if appErr := dto.Validate(); appErr != nil {
		return 0, appErr
	}

	taken, err := s.repo.UsernameExists(ctx, dto.Username)
	if err != nil {
		s.logger.Error("failed to check username", "error", err)
		return 0, errors.NewInternalError("failed to check username", err)
	}
	if taken {
		return 0, errors.ErrUsernameTaken
	}

	if _, err := s.repo.GetGroup(ctx, dto.GroupID); err != nil {
		if _, ok := errors.IsAppError(err); ok {
			return 0, err
		}
		s.logger.Error("failed to resolve group", "error", err, "group_id", dto.GroupID)
		return 0, errors.NewInternalError("failed to resolve group", err)
	}

	hash, err := auth.HashPassword(dto.Password, s.bcryptCost)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return 0, errors.NewInternalError("failed to hash password", err)
	}

	u := &datamodel.User{
		Username:     dto.Username,
		PasswordHash: hash,
		GroupID:      dto.GroupID,
		IsGroupAdmin: dto.IsGroupAdmin,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		s.logger.Error("failed to create user", "error", err, "username", dto.Username)
		return 0, errors.NewInternalError("failed to create user", err)
	}

	s.logger.Info("user registered",
		"user_id", u.ID,
		"group_id", u.GroupID,
		"registered_by", identity.ID)

	return u.ID, nil
}

// DestinationGroups lists the groups the caller can address, every group but
// their own, ordered by name.
func (s *Service) DestinationGroups(ctx context.Context, identity *auth.Identity) ([]GroupOption, error) {
	groups, err := s.repo.ListGroupsExcept(ctx, identity.GroupID)
	if err != nil {
		s.logger.Error("failed to list groups", "error", err, "group_id", identity.GroupID)
		return nil, errors.NewInternalError("failed to list groups", err)
	}

	out := make([]GroupOption, len(groups))
	for i, g := range groups {
		out[i] = GroupOption{ID: g.ID, Name: g.Name}
	}
	return out, nil
}

// Me resolves the caller's full profile from the store.
func (s *Service) Me(ctx context.Context, identity *auth.Identity) (*Profile, error) {
	u, err := s.repo.GetByID(ctx, identity.ID)
	if err != nil {
		if _, ok := errors.IsAppError(err); ok {
			return nil, err
		}
		s.logger.Error("failed to load user", "error", err, "user_id", identity.ID)
		return nil, errors.NewInternalError("failed to load user", err)
	}

	g, err := s.repo.GetGroup(ctx, u.GroupID)
	if err != nil {
		if _, ok := errors.IsAppError(err); ok {
			return nil, err
		}
		s.logger.Error("failed to load group", "error", err, "group_id", u.GroupID)
		return nil, errors.NewInternalError("failed to load group", err)
	}

	return &Profile{
		ID:           u.ID,
		Username:     u.Username,
		GroupID:      u.GroupID,
		GroupName:    g.Name,
		IsGroupAdmin: u.IsGroupAdmin,
		IsAdminGroup: g.IsAdminGroup,
	}, nil
}
