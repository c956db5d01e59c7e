package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/models"
	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/repository"
)

type clientRepo struct {
	s *Store
}

func (r *clientRepo) FindByEmail(ctx context.Context, email string) (*models.Client, error) {
	var out *models.Client
	err := r.s.run(ctx, func(d *dataset) error {
		for _, client := range d.clients {
			if client.Email == email {
				out = &client
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return out, err
}

func (r *clientRepo) Create(ctx context.Context, client *models.Client) error {
	return r.s.run(ctx, func(d *dataset) error {
		for _, existing := range d.clients {
			if strings.EqualFold(existing.Email, client.Email) {
				return repository.ErrDuplicate
			}
		}
		client.ID = d.next("clients")
		client.CreatedAt = now()
		d.clients[client.ID] = *client
		return nil
	})
}

type reservationRepo struct {
	s *Store
}

func (r *reservationRepo) Create(ctx context.Context, reservation *models.Reservation) error {
	return r.s.run(ctx, func(d *dataset) error {
		ts := now()
		reservation.ID = d.next("reservations")
		reservation.CreatedAt = ts
		reservation.UpdatedAt = ts
		if reservation.Status == "" {
			reservation.Status = models.ReservationPending
		}
		for i := range reservation.Lines {
			reservation.Lines[i].ID = d.next("reservation_lines")
			reservation.Lines[i].ReservationID = reservation.ID
			d.lines[reservation.Lines[i].ID] = reservation.Lines[i]
		}

		stored := *reservation
		stored.ClientID = ptrCopy(reservation.ClientID)
		stored.Lines = nil
		stored.Tickets = nil
		d.reservations[stored.ID] = stored
		return nil
	})
}

func (d *dataset) reservation(id uint) (*models.Reservation, error) {
	stored, ok := d.reservations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := stored
	out.ClientID = ptrCopy(stored.ClientID)
	out.Lines = nil
	out.Tickets = nil
	for _, line := range d.lines {
		if line.ReservationID == id {
			out.Lines = append(out.Lines, line)
		}
	}
	for _, ticket := range d.tickets {
		if ticket.ReservationID == id {
			out.Tickets = append(out.Tickets, ticket)
		}
	}
	slices.SortFunc(out.Lines, func(a, b models.ReservationLine) int { return cmp.Compare(a.ID, b.ID) })
	slices.SortFunc(out.Tickets, func(a, b models.Ticket) int { return cmp.Compare(a.ID, b.ID) })
	return &out, nil
}

func (r *reservationRepo) FindByID(ctx context.Context, id uint) (*models.Reservation, error) {
	var out *models.Reservation
	err := r.s.run(ctx, func(d *dataset) error {
		var err error
		out, err = d.reservation(id)
		return err
	})
	return out, err
}

func (r *reservationRepo) FindByIDForUpdate(ctx context.Context, id uint) (*models.Reservation, error) {
	return r.FindByID(ctx, id)
}

func (r *reservationRepo) UpdateStatus(ctx context.Context, id uint, status models.ReservationStatus) error {
	return r.s.run(ctx, func(d *dataset) error {
		stored, ok := d.reservations[id]
		if !ok {
			return repository.ErrNotFound
		}
		stored.Status = status
		stored.UpdatedAt = now()
		d.reservations[id] = stored
		return nil
	})
}

func (r *reservationRepo) Delete(ctx context.Context, id uint) error {
	return r.s.run(ctx, func(d *dataset) error {
		if _, ok := d.reservations[id]; !ok {
			return repository.ErrNotFound
		}
		for lineID, line := range d.lines {
			if line.ReservationID == id {
				delete(d.lines, lineID)
			}
		}
		delete(d.reservations, id)
		return nil
	})
}

type ticketRepo struct {
	s *Store
}

func (r *ticketRepo) Create(ctx context.Context, ticket *models.Ticket) error {
	return r.s.run(ctx, func(d *dataset) error {
		ticket.ID = d.next("tickets")
		ticket.CreatedAt = now()
		d.tickets[ticket.ID] = *ticket
		return nil
	})
}

func (r *ticketRepo) FindByID(ctx context.Context, id uint) (*models.Ticket, error) {
	var out *models.Ticket
	err := r.s.run(ctx, func(d *dataset) error {
		ticket, ok := d.tickets[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = &ticket
		return nil
	})
	return out, err
}

func (r *ticketRepo) ListByReservation(ctx context.Context, reservationID uint) ([]models.Ticket, error) {
	var out []models.Ticket
	err := r.s.run(ctx, func(d *dataset) error {
		for _, ticket := range d.tickets {
			if ticket.ReservationID == reservationID {
				out = append(out, ticket)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b models.Ticket) int { return cmp.Compare(a.ID, b.ID) })
	return out, err
}

func (r *ticketRepo) DeleteByReservation(ctx context.Context, reservationID uint) (int64, error) {
	var deleted int64
	err := r.s.run(ctx, func(d *dataset) error {
		for id, ticket := range d.tickets {
			if ticket.ReservationID == reservationID {
				delete(d.tickets, id)
				deleted++
			}
		}
		return nil
	})
	return deleted, err
}

type paymentRepo struct {
	s *Store
}

func (r *paymentRepo) Create(ctx context.Context, payment *models.Payment) error {
	return r.s.run(ctx, func(d *dataset) error {
		for _, existing := range d.payments {
			if existing.ReservationID == payment.ReservationID {
				return repository.ErrDuplicate
			}
		}
		payment.ID = d.next("payments")
		payment.CreatedAt = now()
		stored := *payment
		stored.AmountReceived = ptrCopy(payment.AmountReceived)
		stored.Change = ptrCopy(payment.Change)
		d.payments[stored.ID] = stored
		return nil
	})
}

func (r *paymentRepo) FindByReservation(ctx context.Context, reservationID uint) (*models.Payment, error) {
	var out *models.Payment
	err := r.s.run(ctx, func(d *dataset) error {
		for _, payment := range d.payments {
			if payment.ReservationID == reservationID {
				payment.AmountReceived = ptrCopy(payment.AmountReceived)
				payment.Change = ptrCopy(payment.Change)
				out = &payment
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return out, err
}

type scanRepo struct {
	s *Store
}

func (r *scanRepo) FindByTicket(ctx context.Context, ticketID uint) (*models.ScanTicket, error) {
	var out *models.ScanTicket
	err := r.s.run(ctx, func(d *dataset) error {
		for _, scan := range d.scans {
			if scan.TicketID == ticketID {
				out = &scan
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return out, err
}

func (r *scanRepo) Create(ctx context.Context, scan *models.ScanTicket) error {
	return r.s.run(ctx, func(d *dataset) error {
		for _, existing := range d.scans {
			if existing.TicketID == scan.TicketID {
				return repository.ErrDuplicate
			}
		}
		scan.ID = d.next("scan_tickets")
		d.scans[scan.ID] = *scan
		return nil
	})
}
