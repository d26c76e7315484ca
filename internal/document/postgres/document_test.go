package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	internal "github.com/haddadrachelle2-png/testdoc/internal"
	"github.com/haddadrachelle2-png/testdoc/internal/document"
)

func TestDocumentRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "DocumentRepository Suite")
}

type SQLiteDocument struct {
	ID             int64      `gorm:"primaryKey"`
	Title          string     `gorm:"not null"`
	Content        string     `gorm:"not null"`
	DocNum         string     `gorm:"column:doc_num;not null"`
	DocDate        time.Time  `gorm:"column:doc_date"`
	NumberPapers   int        `gorm:"column:number_papers"`
	SendPaper      bool       `gorm:"column:send_paper"`
	SendElectronic bool       `gorm:"column:send_electronic"`
	Remarks        string     `gorm:"column:remarks"`
	IsPersonal     bool       `gorm:"column:is_personal"`
	SenderID       int64      `gorm:"column:sender_id;not null"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	IsSent         bool       `gorm:"column:is_sent;default:false"`
	SentAt         *time.Time `gorm:"column:sent_at"`
	AdminView      bool       `gorm:"column:admin_view;default:false"`
	AdminViewDate  *time.Time `gorm:"column:admin_view_date"`
	IsReceived     bool       `gorm:"column:is_received;default:false"`
	ReceivedDate   *time.Time `gorm:"column:received_date"`
	DocFile        []byte     `gorm:"column:doc_file"`
	DocExt         *string    `gorm:"column:doc_ext"`
}

func (SQLiteDocument) TableName() string { return "documents" }

type SQLiteDestination struct {
	DocumentID int64 `gorm:"column:document_id;primaryKey"`
	GroupID    int64 `gorm:"column:group_id;primaryKey"`
}

func (SQLiteDestination) TableName() string { return "document_destinations" }

type SQLiteUser struct {
	ID           int64  `gorm:"primaryKey"`
	Username     string `gorm:"not null"`
	PasswordHash string `gorm:"column:password_hash"`
	GroupID      int64  `gorm:"column:group_id"`
	IsGroupAdmin bool   `gorm:"column:is_group_admin;default:false"`
}

func (SQLiteUser) TableName() string { return "users" }

type SQLiteGroup struct {
	ID           int64  `gorm:"primaryKey"`
	Name         string `gorm:"not null"`
	IsAdminGroup bool   `gorm:"column:is_admin_group;default:false"`
}

func (SQLiteGroup) TableName() string { return "groups" }

var _ = Describe("DocumentRepository", func() {
	var (
		db   *gorm.DB
		repo document.Repository
		ctx  context.Context
	)

	meta := func(title string) document.Meta {
		return document.Meta{
			Title:        title,
			Content:      "content of " + title,
			DocNum:       "NUM-" + title,
			DocDate:      time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
			NumberPapers: 1,
		}
	}

	seedGroup := func(id int64, name string, isAdmin bool) {
		Expect(db.Create(&SQLiteGroup{ID: id, Name: name, IsAdminGroup: isAdmin}).Error).NotTo(HaveOccurred())
	}

	seedUser := func(id, groupID int64, username string, groupAdmin bool) {
		Expect(db.Create(&SQLiteUser{ID: id, Username: username, GroupID: groupID, IsGroupAdmin: groupAdmin}).Error).NotTo(HaveOccurred())
	}

	BeforeEach(func() {
		var err error

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&SQLiteDocument{}, &SQLiteDestination{}, &SQLiteUser{}, &SQLiteGroup{})
		Expect(err).NotTo(HaveOccurred())

		repo = NewDocumentRepository(db)
		ctx = context.Background()

		seedGroup(1, "Secretariat", true)
		seedGroup(2, "Finance", false)
		seedGroup(3, "Human Resources", false)
		seedGroup(4, "Legal", false)

		seedUser(10, 1, "secretary", false)
		seedUser(20, 2, "finance.clerk", false)
		seedUser(21, 2, "finance.head", true)
		seedUser(30, 3, "hr.clerk", false)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).NotTo(HaveOccurred())
	})

	Describe("Create", func() {
		It("should insert the document and its destination rows", func() {
			id, err := repo.Create(ctx, meta("budget"), 20, []int64{1, 3})

			Expect(err).NotTo(HaveOccurred())
			Expect(id).To(BeNumerically(">", 0))

			var count int64
			db.Model(&SQLiteDestination{}).Where("document_id = ?", id).Count(&count)
			Expect(count).To(Equal(int64(2)))
		})

		It("should deduplicate repeated destination groups", func() {
			id, err := repo.Create(ctx, meta("dup"), 20, []int64{3, 3, 4})

			Expect(err).NotTo(HaveOccurred())

			var count int64
			db.Model(&SQLiteDestination{}).Where("document_id = ?", id).Count(&count)
			Expect(count).To(Equal(int64(2)))
		})
	})

	Describe("UpdateDraft", func() {
		It("should replace the destination set wholesale", func() {
			id, err := repo.Create(ctx, meta("orig"), 20, []int64{1, 3})
			Expect(err).NotTo(HaveOccurred())

			err = repo.UpdateDraft(ctx, id, 20, meta("revised"), []int64{4})
			Expect(err).NotTo(HaveOccurred())

			var dests []int64
			db.Model(&SQLiteDestination{}).Where("document_id = ?", id).Pluck("group_id", &dests)
			Expect(dests).To(Equal([]int64{4}))

			var doc SQLiteDocument
			db.First(&doc, id)
			Expect(doc.Title).To(Equal("revised"))
		})

		It("should refuse updates from a different sender", func() {
			id, err := repo.Create(ctx, meta("mine"), 20, []int64{3})
			Expect(err).NotTo(HaveOccurred())

			err = repo.UpdateDraft(ctx, id, 30, meta("stolen"), []int64{4})

			Expect(err).To(Equal(internal.ErrDraftNotFound))
		})

		It("should refuse updates to sent documents", func() {
			id, err := repo.Create(ctx, meta("locked"), 20, []int64{3})
			Expect(err).NotTo(HaveOccurred())
			_, err = repo.SendDrafts(ctx, []int64{id}, 20, false)
			Expect(err).NotTo(HaveOccurred())

			err = repo.UpdateDraft(ctx, id, 20, meta("late edit"), []int64{4})

			Expect(err).To(Equal(internal.ErrDraftNotFound))
		})
	})

	Describe("AttachFile and GetDraftFile", func() {
		It("should round-trip the attachment bytes", func() {
			id, err := repo.Create(ctx, meta("withfile"), 20, []int64{3})
			Expect(err).NotTo(HaveOccurred())

			err = repo.AttachFile(ctx, id, []byte("file body"), ".txt")
			Expect(err).NotTo(HaveOccurred())

			file, err := repo.GetDraftFile(ctx, id, 20)
			Expect(err).NotTo(HaveOccurred())
			Expect(file.Data).To(Equal([]byte("file body")))
			Expect(file.Ext).To(Equal(".txt"))
			Expect(file.DocNum).To(Equal("NUM-withfile"))
		})

		It("should report file not found when no attachment is stored", func() {
			id, err := repo.Create(ctx, meta("bare"), 20, []int64{3})
			Expect(err).NotTo(HaveOccurred())

			_, err = repo.GetDraftFile(ctx, id, 20)

			Expect(err).To(Equal(internal.ErrFileNotFound))
		})
	})

	Describe("GetDraft", func() {
		It("should load the draft with its destinations and file flag", func() {
			id, err := repo.Create(ctx, meta("full"), 20, []int64{1, 3})
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.AttachFile(ctx, id, []byte("x"), ".pdf")).NotTo(HaveOccurred())

			draft, err := repo.GetDraft(ctx, id, 20)

			Expect(err).NotTo(HaveOccurred())
			Expect(draft.Title).To(Equal("full"))
			Expect(draft.Destinations).To(Equal([]int64{1, 3}))
			Expect(draft.HasFile).To(BeTrue())
		})

		It("should hide drafts from other senders", func() {
			id, err := repo.Create(ctx, meta("hidden"), 20, []int64{3})
			Expect(err).NotTo(HaveOccurred())

			_, err = repo.GetDraft(ctx, id, 30)

			Expect(err).To(Equal(internal.ErrDraftNotFound))
		})
	})

	Describe("SendDrafts", func() {
		It("should send only the caller's unsent drafts from the batch", func() {
			mine, err := repo.Create(ctx, meta("mine"), 20, []int64{3})
			Expect(err).NotTo(HaveOccurred())
			theirs, err := repo.Create(ctx, meta("theirs"), 30, []int64{2})
			Expect(err).NotTo(HaveOccurred())

			count, err := repo.SendDrafts(ctx, []int64{mine, theirs}, 20, false)

			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(int64(1)))

			var sent SQLiteDocument
			Expect(db.First(&sent, mine).Error).NotTo(HaveOccurred())
			Expect(sent.IsSent).To(BeTrue())
			Expect(sent.SentAt).NotTo(BeNil())
			Expect(sent.AdminView).To(BeFalse())

			var foreign SQLiteDocument
			Expect(db.First(&foreign, theirs).Error).NotTo(HaveOccurred())
			Expect(foreign.IsSent).To(BeFalse())
		})

		It("should auto-release when the sender is a group admin", func() {
			id, err := repo.Create(ctx, meta("adminmail"), 21, []int64{3})
			Expect(err).NotTo(HaveOccurred())

			count, err := repo.SendDrafts(ctx, []int64{id}, 21, true)

			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(int64(1)))

			var doc SQLiteDocument
			db.First(&doc, id)
			Expect(doc.AdminView).To(BeTrue())
			Expect(doc.AdminViewDate).NotTo(BeNil())
		})
	})

	Describe("MarkReceived", func() {
		It("should only touch sent, not yet received documents", func() {
			draft, err := repo.Create(ctx, meta("draft"), 20, []int64{3})
			Expect(err).NotTo(HaveOccurred())
			sent, err := repo.Create(ctx, meta("sent"), 20, []int64{3})
			Expect(err).NotTo(HaveOccurred())
			_, err = repo.SendDrafts(ctx, []int64{sent}, 20, false)
			Expect(err).NotTo(HaveOccurred())

			count, err := repo.MarkReceived(ctx, []int64{draft, sent})

			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(int64(1)))
		})

		It("should keep the first received date on repeat calls", func() {
			id, err := repo.Create(ctx, meta("once"), 20, []int64{3})
			Expect(err).NotTo(HaveOccurred())
			_, err = repo.SendDrafts(ctx, []int64{id}, 20, false)
			Expect(err).NotTo(HaveOccurred())

			_, err = repo.MarkReceived(ctx, []int64{id})
			Expect(err).NotTo(HaveOccurred())
			var first SQLiteDocument
			db.First(&first, id)

			count, err := repo.MarkReceived(ctx, []int64{id})
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(int64(0)))

			var second SQLiteDocument
			db.First(&second, id)
			Expect(second.ReceivedDate).To(Equal(first.ReceivedDate))
		})
	})

	Describe("Approve", func() {
		It("should be idempotent", func() {
			id, err := repo.Create(ctx, meta("approve"), 20, []int64{3})
			Expect(err).NotTo(HaveOccurred())
			_, err = repo.SendDrafts(ctx, []int64{id}, 20, false)
			Expect(err).NotTo(HaveOccurred())

			count, err := repo.Approve(ctx, []int64{id})
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(int64(1)))

			count, err = repo.Approve(ctx, []int64{id})
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(int64(0)))
		})
	})

	Describe("ListDrafts", func() {
		It("should paginate with an independent total", func() {
			for i := 0; i < 25; i++ {
				_, err := repo.Create(ctx, meta(fmt.Sprintf("d%02d", i)), 20, []int64{3})
				Expect(err).NotTo(HaveOccurred())
			}

			p := document.ListParams{Page: 3, PageSize: 10}
			rows, total, err := repo.ListDrafts(ctx, 20, p)

			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(25)))
			Expect(rows).To(HaveLen(5))
		})

		It("should order newest first and aggregate destination names", func() {
			first, err := repo.Create(ctx, meta("older"), 20, []int64{1, 3})
			Expect(err).NotTo(HaveOccurred())
			second, err := repo.Create(ctx, meta("newer"), 20, []int64{4})
			Expect(err).NotTo(HaveOccurred())

			rows, _, err := repo.ListDrafts(ctx, 20, document.ListParams{Page: 1, PageSize: 10})

			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(2))
			Expect(rows[0].ID).To(Equal(second))
			Expect(rows[0].Destinations).To(Equal("Legal"))
			Expect(rows[1].ID).To(Equal(first))
			Expect(rows[1].Destinations).To(Equal("Human Resources, Secretariat"))
		})

		It("should exclude sent documents", func() {
			id, err := repo.Create(ctx, meta("gone"), 20, []int64{3})
			Expect(err).NotTo(HaveOccurred())
			_, err = repo.SendDrafts(ctx, []int64{id}, 20, false)
			Expect(err).NotTo(HaveOccurred())

			rows, total, err := repo.ListDrafts(ctx, 20, document.ListParams{Page: 1, PageSize: 10})

			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(0)))
			Expect(rows).To(BeEmpty())
		})
	})

	Describe("ListSent", func() {
		It("should filter by destination group name", func() {
			hr, err := repo.Create(ctx, meta("tohr"), 20, []int64{3})
			Expect(err).NotTo(HaveOccurred())
			legal, err := repo.Create(ctx, meta("tolegal"), 20, []int64{4})
			Expect(err).NotTo(HaveOccurred())
			_, err = repo.SendDrafts(ctx, []int64{hr, legal}, 20, false)
			Expect(err).NotTo(HaveOccurred())

			rows, total, err := repo.ListSent(ctx, 20, document.ListParams{
				Page: 1, PageSize: 10, Destination: "Legal",
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(1)))
			Expect(rows[0].ID).To(Equal(legal))
		})

		It("should match the destination name exactly, not as a substring", func() {
			seedGroup(5, "Legal Affairs", false)
			legal, err := repo.Create(ctx, meta("tolegal"), 20, []int64{4})
			Expect(err).NotTo(HaveOccurred())
			affairs, err := repo.Create(ctx, meta("toaffairs"), 20, []int64{5})
			Expect(err).NotTo(HaveOccurred())
			_, err = repo.SendDrafts(ctx, []int64{legal, affairs}, 20, false)
			Expect(err).NotTo(HaveOccurred())

			rows, total, err := repo.ListSent(ctx, 20, document.ListParams{
				Page: 1, PageSize: 10, Destination: "Legal",
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(1)))
			Expect(rows[0].ID).To(Equal(legal))

			_, total, err = repo.ListSent(ctx, 20, document.ListParams{
				Page: 1, PageSize: 10, Destination: "Leg%",
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(0)))
		})
	})

	Describe("ListInbox", func() {
		var fromClerk, fromGroupAdmin int64

		BeforeEach(func() {
			var err error
			fromClerk, err = repo.Create(ctx, meta("clerkmail"), 20, []int64{3})
			Expect(err).NotTo(HaveOccurred())
			_, err = repo.SendDrafts(ctx, []int64{fromClerk}, 20, false)
			Expect(err).NotTo(HaveOccurred())

			fromGroupAdmin, err = repo.Create(ctx, meta("headmail"), 21, []int64{3})
			Expect(err).NotTo(HaveOccurred())
			_, err = repo.SendDrafts(ctx, []int64{fromGroupAdmin}, 21, true)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should show the admin group all sent mail except group-admin mail", func() {
			rows, total, err := repo.ListInbox(ctx, 1, true, document.ListParams{Page: 1, PageSize: 10})

			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(1)))
			Expect(rows[0].ID).To(Equal(fromClerk))
			Expect(rows[0].SenderName).To(Equal("Finance"))
		})

It("should hide unreleased mail from destination groups", func() {
			rows, total, err := repo.ListInbox(ctx, 3, false, document.ListParams{Page: 1, PageSize: 10})

			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(1)))
			Expect(rows[0].ID).To(Equal(fromGroupAdmin))
		})

		It("should show released mail only to its destination groups", func() {
			_, err := repo.Approve(ctx, []int64{fromClerk})
			Expect(err).NotTo(HaveOccurred())

			rows, total, err := repo.ListInbox(ctx, 3, false, document.ListParams{Page: 1, PageSize: 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(2)))
			Expect(rows).To(HaveLen(2))

			_, total, err = repo.ListInbox(ctx, 4, false, document.ListParams{Page: 1, PageSize: 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(0)))
		})
	})

	Describe("ListPending", func() {
		It("should return received but not yet approved documents", func() {
			received, err := repo.Create(ctx, meta("received"), 20, []int64{3})
			Expect(err).NotTo(HaveOccurred())
			approved, err := repo.Create(ctx, meta("approved"), 20, []int64{3})
			Expect(err).NotTo(HaveOccurred())
			_, err = repo.SendDrafts(ctx, []int64{received, approved}, 20, false)
			Expect(err).NotTo(HaveOccurred())
			_, err = repo.MarkReceived(ctx, []int64{received, approved})
			Expect(err).NotTo(HaveOccurred())
			_, err = repo.Approve(ctx, []int64{approved})
			Expect(err).NotTo(HaveOccurred())

			rows, err := repo.ListPending(ctx)

			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(1))
			Expect(rows[0].ID).To(Equal(received))
			Expect(rows[0].SenderName).To(Equal("Finance"))
		})
	})

	Describe("GetDestinations", func() {
		It("should return sorted group names", func() {
			id, err := repo.Create(ctx, meta("multi"), 20, []int64{4, 3, 1})
			Expect(err).NotTo(HaveOccurred())

			names, err := repo.GetDestinations(ctx, id)

			Expect(err).NotTo(HaveOccurred())
			Expect(names).To(Equal([]document.GroupName{
				{Name: "Human Resources"},
				{Name: "Legal"},
				{Name: "Secretariat"},
			}))
		})
	})

	Describe("SentReportRows", func() {
		It("should return all sent rows in the date range", func() {
			a, err := repo.Create(ctx, meta("ra"), 20, []int64{3})
			Expect(err).NotTo(HaveOccurred())
			b, err := repo.Create(ctx, meta("rb"), 20, []int64{4})
			Expect(err).NotTo(HaveOccurred())
			_, err = repo.SendDrafts(ctx, []int64{a, b}, 20, false)
			Expect(err).NotTo(HaveOccurred())

			rows, err := repo.SentReportRows(ctx, 20, document.ListParams{})

			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(2))
			Expect(rows[0].Destinations).NotTo(BeEmpty())
		})
	})
})
