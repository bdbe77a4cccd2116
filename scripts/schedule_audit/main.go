package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/noah-isme/tempo-schedule-api/internal/dto"
	"github.com/noah-isme/tempo-schedule-api/internal/models"
	"github.com/noah-isme/tempo-schedule-api/internal/service"
)

func main() {
	var (
		statePath  string
		regenerate bool
		outPath    string
		verbose    bool
	)

	flag.StringVar(&statePath, "state", "state/default.json", "Path to a schedule state JSON file")
	flag.BoolVar(&regenerate, "regenerate", false, "Run the assignment engine and audit the result as well")
	flag.StringVar(&outPath, "out", "", "Write the regenerated state to this path")
	flag.BoolVar(&verbose, "v", false, "Log engine progress")
	flag.Parse()

	state, err := loadState(statePath)
	if err != nil {
		log.Fatalf("failed to load state: %v", err)
	}

	logr := zap.NewNop()
	if verbose {
		if logr, err = zap.NewDevelopment(); err != nil {
			log.Fatalf("failed to init logger: %v", err)
		}
	}

	failed := printReport("stored state", service.AuditState(state))

	if regenerate {
		engine := service.NewAssignmentEngine(service.AssignmentEngineConfig{}, logr, nil)
		outcome := engine.Generate(state)
		stats := outcome.Stats
		fmt.Printf("\nregenerated: %d candidates, %d assigned, %d unresolved, %d preferences applied, %d stale locks dropped (%s)\n",
			stats.Candidates, stats.Assigned, stats.Unresolved, stats.PreferencesApplied, stats.StaleLocksDropped, stats.Duration)

		next := state.Clone()
		next.Schedule = outcome.Schedule
		next.LockedAssignments = outcome.Locks
		if printReport("regenerated state", service.AuditState(next)) {
			failed = true
		}

		if outPath != "" {
			if err := writeState(outPath, next); err != nil {
				log.Fatalf("failed to write state: %v", err)
			}
			fmt.Printf("wrote %s\n", outPath)
		}
	}

	if failed {
		os.Exit(1)
	}
}

func loadState(path string) (models.ScheduleState, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return models.ScheduleState{}, err
	}
	state := models.NewScheduleState()
	if err := json.Unmarshal(raw, &state); err != nil {
		return models.ScheduleState{}, fmt.Errorf("decode %s: %w", path, err)
	}
	if state.Schedule == nil {
		state.Schedule = models.NewSchedule()
	}
	if state.LockedAssignments == nil {
		state.LockedAssignments = models.LockedAssignments{}
	}
	for i := range state.Instructors {
		state.Instructors[i] = models.NormalizeInstructor(state.Instructors[i])
	}
	return state, nil
}

func writeState(path string, state models.ScheduleState) error {
	raw, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}

func printReport(label string, report dto.AuditReport) bool {
	if report.Healthy {
		fmt.Printf("%s: healthy\n", label)
		return false
	}
	fmt.Printf("%s: %d violation(s)\n", label, len(report.Violations))
	for _, v := range report.Violations {
		fmt.Printf("  [%s] %s\n", v.Kind, v.Message)
	}
	return true
}
