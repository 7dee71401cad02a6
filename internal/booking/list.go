package booking

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/iliyamo/booking-hub/internal/model"
)

// View selects a preset listing.
type View string

const (
	ViewAll      View = ""
	ViewUpcoming View = "upcoming"
	ViewHistory  View = "history"
)

// ListQuery is a paginated listing request. Page starts at 1. UserID is
// honoured by ListAll only.
type ListQuery struct {
	UserID uint64
	Status model.Status
	Type   model.BookingType
	View   View
	Page   int
	Limit  int
}

type Pagination struct {
	CurrentPage int `json:"current_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
	TotalPages  int `json:"total_pages"`
}

type Page struct {
	Items      []model.Booking `json:"items"`
	Pagination Pagination      `json:"pagination"`
}

// ListForUser lists the bookings of one user.
func (s *Service) ListForUser(ctx context.Context, userID uint64, q ListQuery) (*Page, error) {
	q.UserID = userID
	return s.list(ctx, q)
}

// ListAll lists bookings across users, optionally narrowed by q.UserID.
func (s *Service) ListAll(ctx context.Context, who model.Identity, q ListQuery) (*Page, error) {
	if !who.IsAdmin() {
		return nil, fmt.Errorf("list all bookings: %w", model.ErrForbidden)
	}
	return s.list(ctx, q)
}

func (s *Service) list(ctx context.Context, q ListQuery) (*Page, error) {
	f := model.BookingFilter{UserID: q.UserID}
	if q.Type != "" {
		if !q.Type.Valid() {
			return nil, invalid("unknown booking_type %q", q.Type)
		}
		f.Type = q.Type
	}
	if q.Status != "" {
		if !q.Status.Valid() {
			return nil, invalid("unknown status %q", q.Status)
		}
		f.Statuses = []model.Status{q.Status}
	}

	switch q.View {
	case ViewAll:
	case ViewUpcoming:
		if f.Statuses == nil {
			f.Statuses = []model.Status{model.StatusPending, model.StatusConfirmed}
		}
		y, m, d := s.now().Date()
		today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		f.From = &today
		f.Ascending = true
	case ViewHistory:
		if f.Statuses == nil {
			f.Statuses = []model.Status{model.StatusCompleted, model.StatusCancelled}
		}
	default:
		return nil, invalid("unknown view %q", q.View)
	}

	page, limit := q.Page, q.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = s.cfg.DefaultPageSize
	}
	if limit > s.cfg.MaxPageSize {
		limit = s.cfg.MaxPageSize
	}
	if page-1 > math.MaxInt/limit {
		return nil, invalid("page %d out of range", page)
	}
	f.Limit, f.Offset = limit, (page-1)*limit

	items, total, err := s.store.ListBookings(ctx, f)
	if err != nil {
		return nil, model.Persistence("list bookings", err)
	}
	if items == nil {
		items = []model.Booking{}
	}
	return &Page{
		Items: items,
		Pagination: Pagination{
			CurrentPage: page,
			PerPage:     limit,
			Total:       total,
			TotalPages:  (total + limit - 1) / limit,
		},
	}, nil
}
