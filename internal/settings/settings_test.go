package settings_test

import (
	"errors"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/haddadrachelle2-png/testdoc/internal/settings"
)

func TestSettings(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Settings Suite")
}

type stubRepo struct {
	n   int
	err error
}

func (s stubRepo) GetPagingNumber() (int, error) { return s.n, s.err }

var _ = Describe("Settings", func() {
	It("should return the configured paging number", func() {
		svc := settings.NewService(stubRepo{n: 25})

		Expect(svc.PageSize()).To(Equal(25))
	})

	It("should fall back to the default when the table is unreadable", func() {
		svc := settings.NewService(stubRepo{err: errors.New("no such table")})

		Expect(svc.PageSize()).To(Equal(settings.DefaultPageSize))
	})

	It("should fall back to the default for non-positive values", func() {
		svc := settings.NewService(stubRepo{n: 0})

		Expect(svc.PageSize()).To(Equal(settings.DefaultPageSize))
	})
})
