package ticket

import (
	"context"

	"storefront/internal/domain"
	ticketrepo "storefront/internal/repository/ticket"
)

const (
	defaultPerPage  = 10
	maxPerPage      = 20
	defaultPriority = "normal"
)

type Service struct {
	repo ticketrepo.Repository
}

func New(repo ticketrepo.Repository) *Service {
	return &Service{repo: repo}
}

type CreateInput struct {
	Subject  string `json:"subject" binding:"required,max=140"`
	Message  string `json:"message" binding:"required,max=5000"`
	Priority string `json:"priority" binding:"omitempty,oneof=low normal high urgent"`
}

func (s *Service) Create(ctx context.Context, userID int64, in CreateInput) (*domain.SupportTicket, error) {
	priority := in.Priority
	if priority == "" {
		priority = defaultPriority
	}
	return s.repo.Create(ctx, ticketrepo.CreateInput{
		UserID:   userID,
		Subject:  in.Subject,
		Message:  in.Message,
		Priority: priority,
	})
}

type Page struct {
	Tickets []domain.SupportTicket `json:"tickets"`
	Page    int                    `json:"page"`
	PerPage int                    `json:"per_page"`
	Total   int                    `json:"total"`
}

func (s *Service) List(ctx context.Context, userID int64, status string, page, perPage int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	tickets, total, err := s.repo.ListByUser(ctx, userID, status, page, perPage)
	if err != nil {
		return nil, err
	}
	if tickets == nil {
		tickets = []domain.SupportTicket{}
	}
	return &Page{Tickets: tickets, Page: page, PerPage: perPage, Total: total}, nil
}
