// Package metrics holds the prometheus collectors of the ticketing core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SeatHolds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticketing_seat_holds_total",
			Help: "Seat hold attempts by result",
		},
		[]string{"result"},
	)

	SeatReleases = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticketing_seat_releases_total",
			Help: "Seats returned to AVAILABLE by reason",
		},
		[]string{"reason"},
	)

	SeatsSold = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ticketing_seats_sold_total",
			Help: "Seats converted from HOLD to SOLD",
		},
	)

	ReservationTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticketing_reservation_transitions_total",
			Help: "Reservation lifecycle transitions by target status",
		},
		[]string{"status"},
	)

	Payments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticketing_payments_total",
			Help: "Payment finalize attempts by method and result",
		},
		[]string{"method", "result"},
	)

	TicketScans = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticketing_ticket_scans_total",
			Help: "Ticket scans at the doors by result",
		},
		[]string{"result"},
	)

	SweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ticketing_hold_sweep_duration_seconds",
			Help:    "Duration of expired hold sweeps",
			Buckets: prometheus.DefBuckets,
		},
	)
)

const (
	ResultOK       = "ok"
	ResultConflict = "conflict"
	ResultReplay   = "replay"
	ResultRejected = "rejected"
	ResultError    = "error"
)
