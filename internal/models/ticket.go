package models

import "time"

type Ticket struct {
	TicketID            string     `json:"ticket_id"`
	Password            string     `json:"password"`
	CustomerName        string     `json:"customer_name"`
	OrderNumber         string     `json:"order_number"`
	ClientType          string     `json:"client_type"`
	VehicleType         string     `json:"vehicle_type"`
	Priority            string     `json:"priority"`
	Status              string     `json:"status"`
	SessionDate         string     `json:"session_date"`
	ArrivalTime         time.Time  `json:"arrival_time"`
	SeparationStartTime *time.Time `json:"separation_start_time,omitempty"`
	SeparationEndTime   *time.Time `json:"separation_end_time,omitempty"`
	CallTime            *time.Time `json:"call_time,omitempty"`
	FinishTime          *time.Time `json:"finish_time,omitempty"`
}

const (
	StatusWaitingSeparation = "waiting_separation"
	StatusInSeparation      = "in_separation"
	StatusReady             = "ready"
	StatusCalled            = "called"
	StatusFinished          = "finished"
)

const (
	PriorityNormal   = "normal"
	PriorityPriority = "priority"
)

const (
	ClientTypeClient         = "client"
	ClientTypeRepresentative = "representative"
	ClientTypeFreight        = "freight"
)

const (
	VehiclePassenger  = "passenger"
	VehicleMotorcycle = "motorcycle"
	VehiclePickup     = "pickup"
	VehicleTruck      = "truck"
	VehicleVan        = "van"
)

func ValidStatus(status string) bool {
	switch status {
	case StatusWaitingSeparation, StatusInSeparation, StatusReady, StatusCalled, StatusFinished:
		return true
	}
	return false
}
