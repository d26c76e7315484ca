package settings

// DefaultPageSize is used whenever the config table is missing or unreadable.
const DefaultPageSize = 10

type RepositoryAPI interface {
	GetPagingNumber() (int, error)
}

// Service reads server-wide listing settings. The paging number is re-read on
// every listing call so operators can change it without a restart.
type Service struct {
	repo RepositoryAPI
}

func NewService(repo RepositoryAPI) *Service {
	return &Service{repo: repo}
}

// PageSize returns the configured paging number, falling back to
// DefaultPageSize when the value is absent or invalid.
func (s *Service) PageSize() int {
	n, err := s.repo.GetPagingNumber()
	if err != nil || n <= 0 {
		return DefaultPageSize
	}
	return n
}
