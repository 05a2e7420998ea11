package model

// BoardLocation is a position inside a column as reported by a drag gesture.
type BoardLocation struct {
	Column Status
	Index  int
}

// DragResult describes one finished drag. Destination is nil when the drop landed outside
// every column.
type DragResult struct {
	TaskID      string
	Source      BoardLocation
	Destination *BoardLocation
}

// Target returns the status the dragged task should take. Cancelled drops and drops back on
// the starting slot report false. Only column membership matters; the index is not kept.
func (d DragResult) Target() (Status, bool) {
	if d.Destination == nil {
		return "", false
	}
	if d.Destination.Column == d.Source.Column && d.Destination.Index == d.Source.Index {
		return "", false
	}
	if !d.Destination.Column.IsValid() {
		return "", false
	}
	return d.Destination.Column, true
}

// Columns groups tasks by status, preserving collection order inside each column.
func Columns(tasks []Task) map[Status][]Task {
	out := make(map[Status][]Task, 4)
	for _, s := range Statuses() {
		out[s] = make([]Task, 0)
	}
	for _, t := range tasks {
		out[t.Status] = append(out[t.Status], t)
	}
	return out
}

// Locate finds a task's column and index within a snapshot.
func Locate(tasks []Task, id string) (BoardLocation, bool) {
	idx := map[Status]int{}
	for _, t := range tasks {
		if t.ID == id {
			return BoardLocation{Column: t.Status, Index: idx[t.Status]}, true
		}
		idx[t.Status]++
	}
	return BoardLocation{}, false
}
