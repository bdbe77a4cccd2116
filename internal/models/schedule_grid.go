package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// CellState distinguishes the three possible states of a schedule slot.
type CellState uint8

const (
	// CellEmpty means no class is offered at the slot.
	CellEmpty CellState = iota
	// CellUnresolved means a class is offered but has no instructor yet.
	CellUnresolved
	// CellAssigned means an instructor teaches the class.
	CellAssigned
)

// Cell is one (day, class type, time) entry of the schedule.
type Cell struct {
	State        CellState
	InstructorID string
}

// EmptyCell returns a cell with no class.
func EmptyCell() Cell { return Cell{} }

// UnresolvedCell returns an offered class awaiting an instructor.
func UnresolvedCell() Cell { return Cell{State: CellUnresolved} }

// AssignedCell returns a class taught by instructorID.
func AssignedCell(instructorID string) Cell {
	return Cell{State: CellAssigned, InstructorID: instructorID}
}

// CellFromValue maps the wire value ("" for null, "TBD" or an id) to a Cell.
func CellFromValue(value string) Cell {
	switch value {
	case "":
		return EmptyCell()
	case UnresolvedInstructor:
		return UnresolvedCell()
	default:
		return AssignedCell(value)
	}
}

// IsAssignedTo reports whether the cell is assigned to instructorID.
func (c Cell) IsAssignedTo(instructorID string) bool {
	return c.State == CellAssigned && c.InstructorID == instructorID
}

// Offered reports whether a class exists at the slot.
func (c Cell) Offered() bool { return c.State != CellEmpty }

// Value returns the wire value: "" when empty, "TBD" when unresolved, otherwise the instructor id.
func (c Cell) Value() string {
	switch c.State {
	case CellUnresolved:
		return UnresolvedInstructor
	case CellAssigned:
		return c.InstructorID
	default:
		return ""
	}
}

// MarshalJSON encodes the cell as null, "TBD" or the instructor id.
func (c Cell) MarshalJSON() ([]byte, error) {
	if c.State == CellEmpty {
		return []byte("null"), nil
	}
	return json.Marshal(c.Value())
}

// UnmarshalJSON decodes null, "TBD" or an instructor id.
func (c *Cell) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*c = EmptyCell()
		return nil
	}
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return fmt.Errorf("decode schedule cell: %w", err)
	}
	*c = CellFromValue(value)
	return nil
}

// Schedule is a total function from (day, class type, time) to a Cell. The zero value is
// an empty week. Copying a Schedule value copies every cell.
type Schedule struct {
	cells [DayCount][ClassTypeCount][TimeCount]Cell
}

// NewSchedule returns an empty week.
func NewSchedule() *Schedule {
	return &Schedule{}
}

// Clone returns an independent copy.
func (s *Schedule) Clone() *Schedule {
	if s == nil {
		return NewSchedule()
	}
	out := *s
	return &out
}

// Get returns the cell at the slot. Slots outside the catalogs report ok=false.
func (s *Schedule) Get(day, classType, time string) (Cell, bool) {
	d, t, tm, ok := slotIndex(day, classType, time)
	if !ok {
		return Cell{}, false
	}
	return s.cells[d][t][tm], true
}

// Cell returns the cell at the slot, or an empty cell for slots outside the catalogs.
func (s *Schedule) Cell(day, classType, time string) Cell {
	c, _ := s.Get(day, classType, time)
	return c
}

// Set writes the cell at the slot. It reports false for slots outside the catalogs.
func (s *Schedule) Set(day, classType, time string, cell Cell) bool {
	d, t, tm, ok := slotIndex(day, classType, time)
	if !ok {
		return false
	}
	s.cells[d][t][tm] = cell
	return true
}

// At returns the cell by catalog indexes.
func (s *Schedule) At(day, classType, time int) Cell {
	return s.cells[day][classType][time]
}

// SetAt writes the cell by catalog indexes.
func (s *Schedule) SetAt(day, classType, time int, cell Cell) {
	s.cells[day][classType][time] = cell
}

// Each visits every slot in day, class type, time catalog order.
func (s *Schedule) Each(fn func(day, classType, time string, cell Cell)) {
	for d := 0; d < DayCount; d++ {
		for t := 0; t < ClassTypeCount; t++ {
			for tm := 0; tm < TimeCount; tm++ {
				fn(daysOfWeek[d], classTypes[t], classTimes[tm], s.cells[d][t][tm])
			}
		}
	}
}

// Equal reports whether both schedules hold identical cells.
func (s *Schedule) Equal(other *Schedule) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.cells == other.cells
}

// MarshalJSON renders the nested day → class type → time → cell object.
func (s *Schedule) MarshalJSON() ([]byte, error) {
	out := make(map[string]map[string]map[string]Cell, DayCount)
	for d := 0; d < DayCount; d++ {
		byType := make(map[string]map[string]Cell, ClassTypeCount)
		for t := 0; t < ClassTypeCount; t++ {
			byTime := make(map[string]Cell, TimeCount)
			for tm := 0; tm < TimeCount; tm++ {
				byTime[classTimes[tm]] = s.cells[d][t][tm]
			}
			byType[classTypes[t]] = byTime
		}
		out[daysOfWeek[d]] = byType
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the nested object form. Keys outside the catalogs are ignored and
// missing keys stay empty.
func (s *Schedule) UnmarshalJSON(data []byte) error {
	var raw map[string]map[string]map[string]Cell
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode schedule: %w", err)
	}
	*s = Schedule{}
	for day, byType := range raw {
		for classType, byTime := range byType {
			for time, cell := range byTime {
				s.Set(day, classType, time, cell)
			}
		}
	}
	return nil
}

func slotIndex(day, classType, time string) (int, int, int, bool) {
	d, okDay := dayIndex[day]
	t, okType := classTypeIndex[classType]
	tm, okTime := timeIndex[time]
	return d, t, tm, okDay && okType && okTime
}
