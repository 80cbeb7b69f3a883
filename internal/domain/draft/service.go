package draft

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"flexipayslip/internal/domain/payslip"
	"flexipayslip/internal/domain/render"
	"flexipayslip/internal/domain/workbook"
)

const MaxLogoBytes = 2 << 20

// Service owns the draft lifecycle. Every mutator loads the draft, applies
// one change and stores it again.
type Service struct {
	store        StoreAPI
	defaultTheme string
	now          func() time.Time

	// serialises read-modify-write cycles within this process
	mu sync.Mutex
}

func NewService(store StoreAPI, defaultTheme string) *Service {
	if _, ok := render.LookupTheme(defaultTheme); !ok {
		defaultTheme = render.DefaultTheme
	}
	return &Service{store: store, defaultTheme: defaultTheme, now: time.Now}
}

func (s *Service) Create(ctx context.Context) (Draft, error) {
	now := s.now().UTC()
	d := Draft{
		ID:        uuid.NewString(),
		Document:  payslip.Reset(),
		Theme:     s.defaultTheme,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Put(ctx, d); err != nil {
		return Draft{}, err
	}
	return d, nil
}

func (s *Service) Get(ctx context.Context, id string) (Draft, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Draft{}, ErrNotFound
	}
	return s.store.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	return s.store.Delete(ctx, id)
}

func (s *Service) update(ctx context.Context, id string, fn func(d *Draft) error) (Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.Get(ctx, id)
	if err != nil {
		return Draft{}, err
	}
	if err := fn(&d); err != nil {
		return Draft{}, err
	}
	d.UpdatedAt = s.now().UTC()
	if err := s.store.Put(ctx, d); err != nil {
		return Draft{}, err
	}
	return d, nil
}

func (s *Service) SetCompanyInfo(ctx context.Context, id string, info payslip.CompanyInfo) (Draft, error) {
	return s.update(ctx, id, func(d *Draft) error {
		d.Document.Company = info
		return nil
	})
}

func (s *Service) SetEmployeeInfo(ctx context.Context, id string, info payslip.EmployeeInfo) (Draft, error) {
	return s.update(ctx, id, func(d *Draft) error {
		d.Document.Employee = info
		return nil
	})
}

// SetItems replaces the whole earnings or deductions list.
func (s *Service) SetItems(ctx context.Context, id string, kind payslip.ItemKind, items []payslip.LineItem) (Draft, error) {
	return s.update(ctx, id, func(d *Draft) error {
		d.Document.SetItems(kind, append([]payslip.LineItem{}, items...))
		return nil
	})
}

func (s *Service) SetEarnings(ctx context.Context, id string, items []payslip.LineItem) (Draft, error) {
	return s.SetItems(ctx, id, payslip.KindEarnings, items)
}

func (s *Service) SetDeductions(ctx context.Context, id string, items []payslip.LineItem) (Draft, error) {
	return s.SetItems(ctx, id, payslip.KindDeductions, items)
}

func (s *Service) ReplaceLineItem(ctx context.Context, id string, kind payslip.ItemKind, index int, item payslip.LineItem) (Draft, error) {
	return s.update(ctx, id, func(d *Draft) error {
		items, err := payslip.ReplaceAt(d.Document.Items(kind), index, item)
		if err != nil {
			return err
		}
		d.Document.SetItems(kind, items)
		return nil
	})
}

func (s *Service) AppendLineItem(ctx context.Context, id string, kind payslip.ItemKind, item payslip.LineItem) (Draft, error) {
	return s.update(ctx, id, func(d *Draft) error {
		d.Document.SetItems(kind, payslip.Append(d.Document.Items(kind), item))
		return nil
	})
}

func (s *Service) RemoveLineItem(ctx context.Context, id string, kind payslip.ItemKind, index int) (Draft, error) {
	return s.update(ctx, id, func(d *Draft) error {
		items, err := payslip.RemoveAt(d.Document.Items(kind), index)
		if err != nil {
			return err
		}
		d.Document.SetItems(kind, items)
		return nil
	})
}

// Reset puts the document back to its seeded state. Theme and logo are
// presentation choices and survive.
func (s *Service) Reset(ctx context.Context, id string) (Draft, error) {
	return s.update(ctx, id, func(d *Draft) error {
		d.Document = payslip.Reset()
		return nil
	})
}

func (s *Service) ApplyImport(ctx context.Context, id string, report *workbook.Report) (Draft, error) {
	return s.update(ctx, id, func(d *Draft) error {
		d.Document = report.ApplyTo(d.Document)
		return nil
	})
}

func (s *Service) SetLogo(ctx context.Context, id string, data []byte) (Draft, error) {
	if len(data) > MaxLogoBytes {
		return Draft{}, ErrLogoTooLarge
	}
	contentType := http.DetectContentType(data)
	if contentType != "image/png" && contentType != "image/jpeg" {
		return Draft{}, ErrInvalidLogo
	}
	return s.update(ctx, id, func(d *Draft) error {
		d.Logo = append([]byte(nil), data...)
		d.LogoType = contentType
		return nil
	})
}

func (s *Service) ClearLogo(ctx context.Context, id string) (Draft, error) {
	return s.update(ctx, id, func(d *Draft) error {
		d.Logo = nil
		d.LogoType = ""
		return nil
	})
}

func (s *Service) SetTheme(ctx context.Context, id, theme string) (Draft, error) {
	if _, ok := render.LookupTheme(theme); !ok {
		return Draft{}, ErrUnknownTheme
	}
	return s.update(ctx, id, func(d *Draft) error {
		d.Theme = theme
		return nil
	})
}

// PurgeIdle drops drafts untouched for longer than ttl.
func (s *Service) PurgeIdle(ctx context.Context, ttl time.Duration) (int64, error) {
	return s.store.DeleteIdle(ctx, s.now().UTC().Add(-ttl))
}
