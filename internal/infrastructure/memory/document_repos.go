package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/billar-api/internal/domain"
	"github.com/jhoicas/billar-api/internal/domain/entity"
	"github.com/jhoicas/billar-api/internal/domain/repository"
)

var (
	_ repository.DocumentRepository  = (*documentRepo)(nil)
	_ repository.UserRepository      = (*userRepo)(nil)
	_ repository.AnalyticsRepository = (*analyticsRepo)(nil)
)

type documentRepo struct{ s *state }

func (r *documentRepo) NextNumber(_ context.Context, docType, series string) (int64, error) {
	key := docType + "|" + series
	if _, ok := r.s.sequences[key]; !ok {
		var max int64
		for _, d := range r.s.documents {
			if d.Type == docType && d.Series == series && d.Number > max {
				max = d.Number
			}
		}
		r.s.sequences[key] = max
	}
	r.s.sequences[key]++
	return r.s.sequences[key], nil
}

func (r *documentRepo) Create(_ context.Context, doc *entity.Document) error {
	for _, d := range r.s.documents {
		if d.Type == doc.Type && d.Series == doc.Series && d.Number == doc.Number {
			return domain.ErrDuplicate
		}
	}
	stored := *doc
	stored.Details = append([]entity.DocumentDetail(nil), doc.Details...)
	r.s.documents[doc.ID] = stored
	r.s.docOrder = append(r.s.docOrder, doc.ID)
	return nil
}

func (r *documentRepo) GetByID(_ context.Context, id string) (*entity.Document, error) {
	d, ok := r.s.documents[id]
	if !ok {
		return nil, nil
	}
	d.Details = append([]entity.DocumentDetail(nil), d.Details...)
	return &d, nil
}

func (r *documentRepo) List(_ context.Context, q repository.DocumentQuery) ([]*entity.Document, int, error) {
	var out []*entity.Document
	for _, id := range r.s.docOrder {
		d := r.s.documents[id]
		if q.Series != "" && d.Series != q.Series {
			continue
		}
		if q.PaymentMethod != nil && d.PaymentMethod != *q.PaymentMethod {
			continue
		}
		if q.CashSessionID != "" && (d.CashSessionID == nil || *d.CashSessionID != q.CashSessionID) {
			continue
		}
		if !inRange(d.IssueDate, q.From, q.To) {
			continue
		}
		out = append(out, &d)
	}
	// mismo orden que Postgres: issue_date DESC, number DESC
	sort.Slice(out, func(i, j int) bool {
		if !out[i].IssueDate.Equal(out[j].IssueDate) {
			return out[i].IssueDate.After(out[j].IssueDate)
		}
		return out[i].Number > out[j].Number
	})
	page, total := paginate(out, q.Page)
	return page, total, nil
}

type userRepo struct{ s *state }

func (r *userRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, nil
}

type analyticsRepo struct{ s *state }

func (r *analyticsRepo) issued(f repository.SalesFilter) []entity.Document {
	var from, to *time.Time
	if !f.From.IsZero() {
		from = &f.From
	}
	if !f.To.IsZero() {
		to = &f.To
	}
	var out []entity.Document
	for _, id := range r.s.docOrder {
		d := r.s.documents[id]
		if d.Status != entity.DocumentIssued || !inRange(d.IssueDate, from, to) {
			continue
		}
		if f.CashSessionID != "" && (d.CashSessionID == nil || *d.CashSessionID != f.CashSessionID) {
			continue
		}
		if f.Currency != "" && d.Currency != f.Currency {
			continue
		}
		out = append(out, d)
	}
	return out
}

func (r *analyticsRepo) SalesTotals(_ context.Context, f repository.SalesFilter) (repository.SalesTotals, error) {
	res := repository.SalesTotals{TotalSales: decimal.Zero}
	for _, d := range r.issued(f) {
		res.TotalSales = res.TotalSales.Add(d.Total)
		res.DocumentsCount++
	}
	return res, nil
}

func (r *analyticsRepo) SalesByPaymentMethod(_ context.Context, f repository.SalesFilter) ([]repository.PaymentMethodTotal, error) {
	byMethod := map[string]*repository.PaymentMethodTotal{}
	for _, d := range r.issued(f) {
		key := string(d.PaymentMethod)
		row, ok := byMethod[key]
		if !ok {
			row = &repository.PaymentMethodTotal{PaymentMethod: key, Total: decimal.Zero}
			byMethod[key] = row
		}
		row.Total = row.Total.Add(d.Total)
		row.Count++
	}
	out := make([]repository.PaymentMethodTotal, 0, len(byMethod))
	for _, row := range byMethod {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Total.GreaterThan(out[j].Total) })
	return out, nil
}

func (r *analyticsRepo) TopItems(_ context.Context, f repository.SalesFilter, limit int) ([]repository.TopItem, error) {
	byDesc := map[string]*repository.TopItem{}
	for _, d := range r.issued(f) {
		for _, det := range d.Details {
			row, ok := byDesc[det.Description]
			if !ok {
				row = &repository.TopItem{Description: det.Description, TotalQty: decimal.Zero, TotalAmount: decimal.Zero}
				byDesc[det.Description] = row
			}
			row.TotalQty = row.TotalQty.Add(det.Quantity)
			row.TotalAmount = row.TotalAmount.Add(det.LineTotal)
		}
	}
	out := make([]repository.TopItem, 0, len(byDesc))
	for _, row := range byDesc {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TotalAmount.GreaterThan(out[j].TotalAmount) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
