package user_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	internal "github.com/haddadrachelle2-png/testdoc/internal"
	"github.com/haddadrachelle2-png/testdoc/internal/auth"
	datamodel "github.com/haddadrachelle2-png/testdoc/internal/core/datamodel/user"
	"github.com/haddadrachelle2-png/testdoc/internal/user"
)

func TestUserService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Service Suite")
}

// Mock repository for testing
type mockUserRepository struct {
	users  map[int64]*datamodel.User
	groups map[int64]*datamodel.Group
	nextID int64
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		users: map[int64]*datamodel.User{
			1: {ID: 1, Username: "secretary", GroupID: 1},
		},
		groups: map[int64]*datamodel.Group{
			1: {ID: 1, Name: "Secretariat", IsAdminGroup: true},
			2: {ID: 2, Name: "Finance"},
			3: {ID: 3, Name: "Legal"},
		},
		nextID: 2,
	}
}

func (m *mockUserRepository) Create(_ context.Context, u *datamodel.User) error {
	u.ID = m.nextID
	m.nextID++
	m.users[u.ID] = u
	return nil
}

func (m *mockUserRepository) UsernameExists(_ context.Context, username string) (bool, error) {
	for _, u := range m.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepository) GetByID(_ context.Context, id int64) (*datamodel.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, internal.ErrUserNotFound
	}
	return u, nil
}

func (m *mockUserRepository) GetGroup(_ context.Context, id int64) (*datamodel.Group, error) {
	g, ok := m.groups[id]
	if !ok {
		return nil, internal.ErrGroupNotFound
	}
	return g, nil
}

func (m *mockUserRepository) ListGroupsExcept(_ context.Context, groupID int64) ([]datamodel.Group, error) {
	var out []datamodel.Group
	for _, g := range m.groups {
		if g.ID != groupID {
			out = append(out, *g)
		}
	}
	return out, nil
}

var _ = Describe("UserService", func() {
	var (
		service  *user.Service
		mockRepo *mockUserRepository
		admin    *auth.Identity
		member   *auth.Identity
		ctx      context.Context
	)

	BeforeEach(func() {
		mockRepo = newMockUserRepository()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = user.NewService(mockRepo, bcrypt.MinCost, logger)
		admin = &auth.Identity{ID: 1, GroupID: 1, IsAdminGroup: true}
		member = &auth.Identity{ID: 5, GroupID: 2}
		ctx = context.Background()
	})

	Describe("Register", func() {
		It("should create a user with a hashed password", func() {
			id, err := service.Register(ctx, admin, user.RegisterDTO{
				Username: "finance.clerk",
				Password: "s3cret-pass",
				GroupID:  2,
			})

			Expect(err).ToNot(HaveOccurred())
			created := mockRepo.users[id]
			Expect(created.PasswordHash).ToNot(Equal("s3cret-pass"))
			Expect(auth.VerifyPassword(created.PasswordHash, "s3cret-pass")).To(Succeed())
		})

		It("should reject callers outside the admin group", func() {
			_, err := service.Register(ctx, member, user.RegisterDTO{
				Username: "sneaky",
				Password: "s3cret-pass",
				GroupID:  2,
			})

			Expect(err).To(Equal(internal.ErrAdminGroupOnly))
		})

		It("should reject a taken username", func() {
			_, err := service.Register(ctx, admin, user.RegisterDTO{
				Username: "secretary",
				Password: "s3cret-pass",
				GroupID:  2,
			})

			Expect(err).To(Equal(internal.ErrUsernameTaken))
		})

		It("should reject an unknown group", func() {
			_, err := service.Register(ctx, admin, user.RegisterDTO{
				Username: "orphan",
				Password: "s3cret-pass",
				GroupID:  99,
			})

			Expect(err).To(Equal(internal.ErrGroupNotFound))
		})

		It("should reject a short password", func() {
			_, err := service.Register(ctx, admin, user.RegisterDTO{
				Username: "shorty",
				Password: "short",
				GroupID:  2,
			})

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})
	})

	Describe("DestinationGroups", func() {
		It("should exclude the caller's own group", func() {
			groups, err := service.DestinationGroups(ctx, member)

			Expect(err).ToNot(HaveOccurred())
			Expect(groups).To(HaveLen(2))
			for _, g := range groups {
				Expect(g.ID).ToNot(Equal(member.GroupID))
			}
		})
	})

	Describe("Me", func() {
		It("should resolve the profile with the group name", func() {
			profile, err := service.Me(ctx, admin)

			Expect(err).ToNot(HaveOccurred())
			Expect(profile.Username).To(Equal("secretary"))
			Expect(profile.GroupName).To(Equal("Secretariat"))
			Expect(profile.IsAdminGroup).To(BeTrue())
		})

		It("should surface user not found", func() {
			ghost := &auth.Identity{ID: 404, GroupID: 1}
			_, err := service.Me(ctx, ghost)

			Expect(err).To(Equal(internal.ErrUserNotFound))
		})
	})
})
