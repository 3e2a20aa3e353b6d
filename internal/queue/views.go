package queue

import (
	"math"
	"sort"
	"time"

	"fila/queue-manager/internal/models"
)

// Views are pure derivations over a session's full ticket set. Operator
// work lists order by priority first, then arrival (FIFO within a band);
// monitoring lists show most recent activity first. Both orderings are
// stable with ties broken by ticket id.

func ByStatus(tickets []models.Ticket, status string) []models.Ticket {
	var out []models.Ticket
	for _, t := range tickets {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out
}

func Waiting(tickets []models.Ticket) []models.Ticket {
	return OperatorOrder(ByStatus(tickets, models.StatusWaitingSeparation))
}

func InSeparation(tickets []models.Ticket) []models.Ticket {
	return OperatorOrder(ByStatus(tickets, models.StatusInSeparation))
}

func Ready(tickets []models.Ticket) []models.Ticket {
	return OperatorOrder(ByStatus(tickets, models.StatusReady))
}

func Called(tickets []models.Ticket) []models.Ticket {
	return MonitorOrder(ByStatus(tickets, models.StatusCalled))
}

func Finished(tickets []models.Ticket) []models.Ticket {
	return MonitorOrder(ByStatus(tickets, models.StatusFinished))
}

// ActiveBoard lists every ticket still moving through the queue, for the
// management table.
func ActiveBoard(tickets []models.Ticket) []models.Ticket {
	var out []models.Ticket
	for _, t := range tickets {
		if t.Status != models.StatusFinished {
			out = append(out, t)
		}
	}
	return OperatorOrder(out)
}

// RecentArrivals returns the newest n tickets for the reception side panel.
func RecentArrivals(tickets []models.Ticket, n int) []models.Ticket {
	out := make([]models.Ticket, len(tickets))
	copy(out, tickets)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].ArrivalTime.Equal(out[j].ArrivalTime) {
			return out[i].ArrivalTime.After(out[j].ArrivalTime)
		}
		return out[i].TicketID < out[j].TicketID
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func OperatorOrder(tickets []models.Ticket) []models.Ticket {
	out := make([]models.Ticket, len(tickets))
	copy(out, tickets)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority == models.PriorityPriority
		}
		if !out[i].ArrivalTime.Equal(out[j].ArrivalTime) {
			return out[i].ArrivalTime.Before(out[j].ArrivalTime)
		}
		return out[i].TicketID < out[j].TicketID
	})
	return out
}

func MonitorOrder(tickets []models.Ticket) []models.Ticket {
	out := make([]models.Ticket, len(tickets))
	copy(out, tickets)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].ArrivalTime.Equal(out[j].ArrivalTime) {
			return out[i].ArrivalTime.After(out[j].ArrivalTime)
		}
		return out[i].TicketID < out[j].TicketID
	})
	return out
}

type Stats struct {
	Waiting            int `json:"waiting"`
	InSeparation       int `json:"in_separation"`
	Ready              int `json:"ready"`
	Called             int `json:"called"`
	Finished           int `json:"finished"`
	AverageWaitMinutes int `json:"average_wait_minutes"`
}

func ComputeStats(tickets []models.Ticket) Stats {
	var stats Stats
	var totalWait time.Duration
	finishedWithTimes := 0
	for _, t := range tickets {
		switch t.Status {
		case models.StatusWaitingSeparation:
			stats.Waiting++
		case models.StatusInSeparation:
			stats.InSeparation++
		case models.StatusReady:
			stats.Ready++
		case models.StatusCalled:
			stats.Called++
		case models.StatusFinished:
			stats.Finished++
			if t.FinishTime != nil {
				totalWait += t.FinishTime.Sub(t.ArrivalTime)
				finishedWithTimes++
			}
		}
	}
	if finishedWithTimes > 0 {
		mean := totalWait.Minutes() / float64(finishedWithTimes)
		stats.AverageWaitMinutes = int(math.Round(mean))
	}
	return stats
}
