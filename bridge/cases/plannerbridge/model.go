package plannerbridge

import (
	"github.com/jrazmi/artplanner/bridge/repositories/tasksrepobridge"
	"github.com/jrazmi/artplanner/core/cases/plannercase"
)

// DayBucket is one column of the weekly board.
type DayBucket struct {
	Day   string                 `json:"day"`
	Tasks []tasksrepobridge.Task `json:"tasks"`
}

func MarshalWeekToBridge(buckets []plannercase.DayBucket) []DayBucket {
	out := make([]DayBucket, len(buckets))
	for i, b := range buckets {
		out[i] = DayBucket{
			Day:   string(b.Day),
			Tasks: tasksrepobridge.MarshalListToBridge(b.Tasks),
		}
	}
	return out
}
