package queue

import "fila/queue-manager/internal/models"

// Lifecycle moves strictly forward; the called->called self-loop is the
// only repeatable edge and re-stamps the call time on every pass.
var successorMap = map[string][]string{
	models.StatusWaitingSeparation: {models.StatusInSeparation},
	models.StatusInSeparation:      {models.StatusReady},
	models.StatusReady:             {models.StatusCalled},
	models.StatusCalled:            {models.StatusCalled, models.StatusFinished},
	models.StatusFinished:          {},
}

func ValidTransition(from, to string) bool {
	allowed, ok := successorMap[from]
	if !ok {
		return false
	}
	for _, status := range allowed {
		if status == to {
			return true
		}
	}
	return false
}
