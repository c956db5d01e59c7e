package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/models"
	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/repository"
)

type ClientService interface {
	// LookupOrCreate returns the client registered under email, creating it
	// on first use. Emails compare case-insensitively.
	LookupOrCreate(ctx context.Context, email, firstname, lastname string) (*models.Client, error)
}

type clientService struct {
	clients repository.ClientRepository
}

func NewClientService(repos *repository.Set) ClientService {
	return &clientService{clients: repos.Clients}
}

func (s *clientService) LookupOrCreate(ctx context.Context, email, firstname, lastname string) (*models.Client, error) {
	email = NormalizeEmail(email)
	firstname = strings.TrimSpace(firstname)
	lastname = strings.TrimSpace(lastname)
	if firstname == "" || lastname == "" {
		return nil, ErrInvalidClient
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, fmt.Errorf("%w: %q is not an email address", ErrInvalidClient, email)
	}

	client, err := s.clients.FindByEmail(ctx, email)
	if err == nil {
		return client, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, persistence("find client", err)
	}

	client = &models.Client{Email: email, Firstname: firstname, Lastname: lastname}
	err = s.clients.Create(ctx, client)
	if errors.Is(err, repository.ErrDuplicate) {
		// Registered concurrently; the stored row wins.
		client, err = s.clients.FindByEmail(ctx, email)
	}
	if err != nil {
		return nil, persistence("create client", err)
	}
	return client, nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
