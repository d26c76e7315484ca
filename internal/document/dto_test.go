package document_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/haddadrachelle2-png/testdoc/internal/document"
)

var _ = Describe("DTO parsing", func() {
	Describe("ParseDestinationList", func() {
		It("should parse a comma separated id list", func() {
			Expect(document.ParseDestinationList("3,5,8")).To(Equal([]int64{3, 5, 8}))
		})

		It("should skip blanks and junk", func() {
			Expect(document.ParseDestinationList("3,,x, 5 ")).To(Equal([]int64{3, 5}))
		})

		It("should return an empty slice for an empty string", func() {
			Expect(document.ParseDestinationList("")).To(BeEmpty())
		})
	})

	Describe("ParseDateBound", func() {
		It("should parse an ISO date", func() {
			bound, err := document.ParseDateBound("2026-08-15")

			Expect(err).To(BeNil())
			Expect(bound).ToNot(BeNil())
			Expect(bound.Year()).To(Equal(2026))
			Expect(bound.Month()).To(Equal(time.August))
		})

		It("should return nil for an empty value", func() {
			bound, err := document.ParseDateBound("")

			Expect(err).To(BeNil())
			Expect(bound).To(BeNil())
		})

		It("should reject malformed dates", func() {
			_, err := document.ParseDateBound("15/08/2026")

			Expect(err).ToNot(BeNil())
		})
	})

	Describe("NewPage", func() {
		It("should round total pages up", func() {
			page := document.NewPage([]int{1, 2, 3}, 3, 10, 25)

			Expect(page.TotalPages).To(Equal(int64(3)))
			Expect(page.Total).To(Equal(int64(25)))
			Expect(page.PerPage).To(Equal(10))
		})

		It("should report zero pages for an empty result", func() {
			page := document.NewPage([]int{}, 1, 10, 0)

			Expect(page.TotalPages).To(Equal(int64(0)))
			Expect(page.Data).ToNot(BeNil())
		})
	})

	Describe("RenderSentReport", func() {
		It("should produce a PDF document", func() {
			now := time.Now()
			pdf, err := document.RenderSentReport([]document.ReportRow{
				{ID: 1, Title: "Quarterly budget", Content: "Numbers for Q3", SentAt: &now, Destinations: "Finance, Legal"},
			}, nil, nil)

			Expect(err).ToNot(HaveOccurred())
			Expect(len(pdf)).To(BeNumerically(">", 4))
			Expect(string(pdf[:5])).To(Equal("%PDF-"))
		})

		It("should render an empty report without error", func() {
			pdf, err := document.RenderSentReport(nil, nil, nil)

			Expect(err).ToNot(HaveOccurred())
			Expect(pdf).ToNot(BeEmpty())
		})
	})
})
