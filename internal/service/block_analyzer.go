package service

import "github.com/noah-isme/tempo-schedule-api/internal/models"

// BlockInfo describes how a candidate slot relates to an instructor's existing classes that day.
type BlockInfo struct {
	HasAdjacentClass bool `json:"hasAdjacentClass"`
	CurrentBlockSize int  `json:"currentBlockSize"`
}

// AnalyzeBlock measures the contiguous same-type block the instructor already teaches ending
// right before time, and whether any class of any type touches the slot. Read only.
func AnalyzeBlock(schedule *models.Schedule, instructorID, day, time, classType string) BlockInfo {
	d, okDay := models.DayIndex(day)
	t, okType := models.ClassTypeIndex(classType)
	tm, okTime := models.TimeIndex(time)
	if !okDay || !okType || !okTime || schedule == nil {
		return BlockInfo{}
	}
	return analyzeBlockAt(schedule, instructorID, d, t, tm)
}

func analyzeBlockAt(schedule *models.Schedule, instructorID string, d, t, tm int) BlockInfo {
	var info BlockInfo

	start := tm
	for i := tm - 1; i >= 0; i-- {
		if !schedule.At(d, t, i).IsAssignedTo(instructorID) {
			break
		}
		start = i
		info.HasAdjacentClass = true
	}

	for i := start; i < models.TimeCount; i++ {
		if schedule.At(d, t, i).IsAssignedTo(instructorID) {
			info.CurrentBlockSize++
		} else if i >= tm {
			break
		}
	}

	if !info.HasAdjacentClass {
		info.HasAdjacentClass = teachesAnyTypeAt(schedule, instructorID, d, tm-1) ||
			teachesAnyTypeAt(schedule, instructorID, d, tm+1)
	}
	return info
}

func teachesAnyTypeAt(schedule *models.Schedule, instructorID string, d, tm int) bool {
	if tm < 0 || tm >= models.TimeCount {
		return false
	}
	for t := 0; t < models.ClassTypeCount; t++ {
		if schedule.At(d, t, tm).IsAssignedTo(instructorID) {
			return true
		}
	}
	return false
}
