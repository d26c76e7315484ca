package document

import (
	"time"
)

// Document is the persisted row for the documents table.
type Document struct {
	ID             int64      `json:"id" gorm:"primaryKey"`
	Title          string     `json:"title" gorm:"not null"`
	Content        string     `json:"content" gorm:"not null"`
	DocNum         string     `json:"doc_num" gorm:"column:doc_num;not null"`
	DocDate        time.Time  `json:"doc_date" gorm:"column:doc_date;type:date"`
	NumberPapers   int        `json:"number_papers" gorm:"column:number_papers;not null"`
	SendPaper      bool       `json:"send_paper" gorm:"column:send_paper"`
	SendElectronic bool       `json:"send_electronic" gorm:"column:send_electronic"`
	Remarks        string     `json:"remarks"`
	IsPersonal     bool       `json:"is_personal" gorm:"column:is_personal"`
	SenderID       int64      `json:"sender_id" gorm:"column:sender_id;not null"`
	CreatedAt      time.Time  `json:"created_at" gorm:"column:created_at;default:now()"`
	IsSent         bool       `json:"is_sent" gorm:"column:is_sent;default:false"`
	SentAt         *time.Time `json:"sent_at,omitempty" gorm:"column:sent_at"`
	AdminView      bool       `json:"admin_view" gorm:"column:admin_view;default:false"`
	AdminViewDate  *time.Time `json:"admin_view_date,omitempty" gorm:"column:admin_view_date"`
	IsReceived     bool       `json:"is_received" gorm:"column:is_received;default:false"`
	ReceivedDate   *time.Time `json:"received_date,omitempty" gorm:"column:received_date"`
	DocFile        []byte     `json:"-" gorm:"column:doc_file"`
	DocExt         *string    `json:"doc_ext,omitempty" gorm:"column:doc_ext"`
}

func (Document) TableName() string {
	return "documents"
}

// Destination joins a document to one of its destination groups.
type Destination struct {
	DocumentID int64 `gorm:"column:document_id;primaryKey"`
	GroupID    int64 `gorm:"column:group_id;primaryKey"`
}

func (Destination) TableName() string {
	return "document_destinations"
}
