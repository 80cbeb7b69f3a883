package draft

import (
	"time"

	"flexipayslip/internal/domain/payslip"
)

// Draft is one editing session: the document being filled in plus the
// render choices that go with it.
type Draft struct {
	ID        string           `json:"id"`
	Document  payslip.Document `json:"document"`
	Theme     string           `json:"theme"`
	Logo      []byte           `json:"-"`
	LogoType  string           `json:"logoType,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

func (d Draft) HasLogo() bool {
	return len(d.Logo) > 0
}

func (d Draft) clone() Draft {
	out := d
	out.Document = d.Document.Clone()
	out.Logo = append([]byte(nil), d.Logo...)
	return out
}
