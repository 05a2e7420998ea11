package model

import (
	"math"
	"time"
)

type StatusCount struct {
	Status Status
	Count  int
}

type StatusDistribution []StatusCount

// NonZero drops empty statuses, as the distribution chart does.
func (d StatusDistribution) NonZero() StatusDistribution {
	out := make(StatusDistribution, 0, len(d))
	for _, c := range d {
		if c.Count > 0 {
			out = append(out, c)
		}
	}
	return out
}

func (d StatusDistribution) Count(s Status) int {
	for _, c := range d {
		if c.Status == s {
			return c.Count
		}
	}
	return 0
}

type PriorityCount struct {
	Priority Priority
	Count    int
}

type DayActivity struct {
	Day       time.Time
	Created   int
	Completed int
}

type Summary struct {
	Total              int
	Done               int
	CompletionRate     int
	Status             StatusDistribution
	PriorityLoad       []PriorityCount
	PriorityCompletion []PriorityCount
	Week               []DayActivity
}

func StatusDistributionOf(tasks []Task) StatusDistribution {
	counts := map[Status]int{}
	for _, t := range tasks {
		counts[t.Status]++
	}
	out := make(StatusDistribution, 0, 4)
	for _, s := range Statuses() {
		out = append(out, StatusCount{Status: s, Count: counts[s]})
	}
	return out
}

// PriorityLoad always reports all four priorities.
func PriorityLoad(tasks []Task) []PriorityCount {
	return countByPriority(tasks, func(Task) bool { return true })
}

func PriorityCompletion(tasks []Task) []PriorityCount {
	return countByPriority(tasks, func(t Task) bool { return t.Status == StatusDone })
}

func countByPriority(tasks []Task, keep func(Task) bool) []PriorityCount {
	counts := map[Priority]int{}
	for _, t := range tasks {
		if keep(t) {
			counts[t.Priority]++
		}
	}
	out := make([]PriorityCount, 0, 4)
	for _, p := range Priorities() {
		out = append(out, PriorityCount{Priority: p, Count: counts[p]})
	}
	return out
}

func CountDone(tasks []Task) int {
	n := 0
	for _, t := range tasks {
		if t.Status == StatusDone {
			n++
		}
	}
	return n
}

// CompletionRate is round(100*done/total), 0 for an empty collection.
func CompletionRate(tasks []Task) int {
	if len(tasks) == 0 {
		return 0
	}
	return int(math.Round(float64(CountDone(tasks)) * 100 / float64(len(tasks))))
}

// WeeklyActivity covers the seven local calendar days ending today, oldest first. Completed
// counts tasks created that day that are Done now; there is no completion timestamp.
func WeeklyActivity(tasks []Task, now time.Time, loc *time.Location) []DayActivity {
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	out := make([]DayActivity, 0, 7)
	for i := 6; i >= 0; i-- {
		start := today.AddDate(0, 0, -i)
		end := start.AddDate(0, 0, 1)
		day := DayActivity{Day: start}
		for _, t := range tasks {
			created := t.Created().In(loc)
			if created.Before(start) || !created.Before(end) {
				continue
			}
			day.Created++
			if t.Status == StatusDone {
				day.Completed++
			}
		}
		out = append(out, day)
	}
	return out
}

func Summarize(tasks []Task, now time.Time, loc *time.Location) Summary {
	return Summary{
		Total:              len(tasks),
		Done:               CountDone(tasks),
		CompletionRate:     CompletionRate(tasks),
		Status:             StatusDistributionOf(tasks),
		PriorityLoad:       PriorityLoad(tasks),
		PriorityCompletion: PriorityCompletion(tasks),
		Week:               WeeklyActivity(tasks, now, loc),
	}
}
