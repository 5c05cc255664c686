// Command schedule-engine is a thin manual-run/debugging wrapper around the
// scheduler core. It is not a general-purpose CLI — JSON input parsing, full
// flag surfaces, and report rendering are out of scope for the core (see
// spec.md §1) and live in the external ingestion/reporting collaborators.
// This binary exists only to exercise the wired stack end to end against a
// small embedded scenario while developing.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/whoisdinanath/schedule-engine-sub001/internal/ports"

	scheduler "github.com/whoisdinanath/schedule-engine-sub001"
)

func main() {
	debug := flag.Bool("debug", false, "pretty-print the best individual and generation history")
	timeout := flag.Duration("timeout", 30*time.Second, "wall-clock budget for the run")
	flag.Parse()

	cfg, err := ports.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := ports.NewLogger(ports.LogConfig{Format: "console", Level: "info"})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	engine, err := scheduler.New(demoInput(), cfg, logger)
	if err != nil {
		logger.Sugar().Fatalw("failed to assemble engine", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	result, err := engine.Run(ctx)
	if err != nil {
		logger.Sugar().Fatalw("run failed", "error", err)
	}

	logger.Sugar().Infow("run complete",
		"best_hard", result.Best.Fitness.HardCount,
		"best_soft", result.Best.Fitness.SoftPenalty,
		"unresolved_violation", result.UnresolvedViolation,
		"generations", len(result.History),
	)

	if *debug {
		w := ports.NewDebugWriter(os.Stdout)
		ports.DumpAny(w, "best individual", result.Best)
		ports.DumpAny(w, "history", result.History)
		ports.DumpAny(w, "violations", result.Violations)
	}
}

// demoInput is spec.md §8 scenario S1: one theory course, one group, one
// qualified instructor with no unavailability, one classroom. The engine
// schedules it over scheduler.New's default Sun-Thu operating week.
func demoInput() ports.InputSet {
	return ports.InputSet{
		Courses: []ports.CourseInput{
			{CourseCode: "ENME 103", LectureHours: 2, RequiredRoomFeatures: nil},
		},
		Groups: []ports.GroupInput{
			{GroupID: "G1", Size: 30, EnrolledCourseCodes: []string{"ENME 103"}},
		},
		Instructors: []ports.InstructorInput{
			{
				InstructorID: "I1",
				Name:         "Demo Instructor",
				QualifiedCourses: []ports.QualifiedCourseInput{
					{CourseCode: "ENME 103", CourseType: "theory"},
				},
			},
		},
		Rooms: []ports.RoomInput{
			{RoomID: "R1", Capacity: 40, Category: "lecture"},
		},
	}
}
