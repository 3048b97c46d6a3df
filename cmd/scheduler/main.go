package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"classscheduler/internal/csvio"
	"classscheduler/internal/engine"
	"classscheduler/internal/model"
	"classscheduler/internal/sat"

	"go.uber.org/zap"
)

func main() {
	inputDirPtr := flag.String("input", "", "Directory with the CSV fact files (courses, workload, schedule, curricula and optionally joints)")
	jsonFilePtr := flag.String("json", "", "Path to a JSON fact document, used instead of the CSV directory")
	presetPtr := flag.String("preset", "", "Path to a JSON preset with rule weights, priorities and budget options; bundled defaults apply when empty")
	maxTimePtr := flag.Int("time", 0, "Time budget in seconds; 0 searches until the tree is exhausted")
	maxCandidatesPtr := flag.Int64("candidates", 0, "Candidate budget; 0 is unbounded")
	workersPtr := flag.Int("workers", 0, "Number of search workers; 0 uses every available CPU")
	outFilePtr := flag.String("out", "", "Path to the file where the result is written as JSON; if empty, a table is printed to the standard output")
	debugPtr := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	logger := newLogger(*debugPtr)
	defer logger.Sync()

	if (*inputDirPtr == "") == (*jsonFilePtr == "") {
		logger.Fatal("exactly one of -input and -json must be specified")
	}

	//** Load and validate facts
	var facts *model.Facts
	var err error
	if *inputDirPtr != "" {
		facts, err = csvio.LoadFacts(*inputDirPtr)
	} else {
		facts, err = model.FactsFromJSON(*jsonFilePtr)
	}
	if err != nil {
		logger.Fatal("cannot load input facts", zap.Error(err))
	}

	//** Load preset
	config := engine.DefaultConfig()
	if *presetPtr != "" {
		config, err = engine.ConfigFromJSON(*presetPtr)
		if err != nil {
			logger.Fatal("cannot load preset", zap.Error(err))
		}
	}
	if *maxTimePtr > 0 {
		config.Options.MaxTime = time.Duration(*maxTimePtr) * time.Second
	}
	if *maxCandidatesPtr > 0 {
		config.Options.MaxCandidates = *maxCandidatesPtr
	}
	if *workersPtr > 0 {
		config.Options.Workers = *workersPtr
	}

	//** Resolve derived structures and solve
	resolved, err := model.NewResolver().Resolve(facts)
	if err != nil {
		logger.Fatal("cannot resolve units", zap.Error(err))
	}

	optimizer, err := engine.NewOptimizer(resolved, config, sat.NewGiniSolver(), logger)
	if err != nil {
		logger.Fatal("cannot initialize optimizer", zap.Error(err))
	}

	result, err := optimizer.Solve(context.Background())
	if err != nil {
		logger.Fatal("an error occurred during timetable construction", zap.Error(err))
	}

	if result.Status == engine.StatusInfeasible {
		fmt.Println("No timetable satisfies the hard constraints.")
		os.Exit(20)
	}

	if *outFilePtr != "" {
		bytes, err := json.MarshalIndent(resultDocument(resolved, result), "", "  ")
		if err != nil {
			logger.Fatal("cannot marshal result", zap.Error(err))
		}
		if err := os.WriteFile(*outFilePtr, bytes, 0666); err != nil {
			logger.Fatal("cannot write result file", zap.Error(err))
		}
	} else {
		render(resolved, result)
	}
}

func newLogger(debug bool) *zap.Logger {
	development := zap.NewDevelopmentConfig()
	if !debug {
		development.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	logger, err := development.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot initialize logger: %v\n", err)
		os.Exit(1)
	}
	return logger
}

type meetingDocument struct {
	Course  string `json:"course"`
	Group   string `json:"group"`
	Weekday int    `json:"weekday"`
	Period  int    `json:"period"`
	Fixed   bool   `json:"fixed,omitempty"`
}

type violationDocument struct {
	Rule    string `json:"rule"`
	Witness string `json:"witness"`
	Weight  int64  `json:"weight"`
}

type runDocument struct {
	RunID      string              `json:"run_id"`
	Status     string              `json:"status"`
	Meetings   []meetingDocument   `json:"meetings"`
	Violations []violationDocument `json:"violations"`
	Priorities []int               `json:"priorities"`
	LayerCosts []int64             `json:"layer_costs"`
	Candidates int64               `json:"candidates"`
	Nodes      int64               `json:"nodes"`
}

func resultDocument(resolved *model.Resolved, result *engine.Result) runDocument {
	document := runDocument{
		RunID:      result.RunID,
		Status:     string(result.Status),
		Meetings:   []meetingDocument{},
		Violations: []violationDocument{},
		Priorities: result.Priorities,
		LayerCosts: result.LayerCosts,
		Candidates: result.Candidates,
		Nodes:      result.Nodes,
	}
	for _, meeting := range result.Meetings {
		for _, member := range resolved.Units[meeting.Unit].Members {
			document.Meetings = append(document.Meetings, meetingDocument{
				Course:  member.CourseID,
				Group:   member.Group,
				Weekday: int(meeting.Slot.Weekday),
				Period:  int(meeting.Slot.Period),
				Fixed:   meeting.Fixed,
			})
		}
	}
	for _, violation := range result.Violations {
		document.Violations = append(document.Violations, violationDocument{
			Rule:    violation.Rule,
			Witness: violation.Witness,
			Weight:  violation.Weight,
		})
	}
	return document
}

func render(resolved *model.Resolved, result *engine.Result) {
	grid := make(map[model.Slot][]string)
	for _, meeting := range result.Meetings {
		label := resolved.Units[meeting.Unit].Label()
		if meeting.Fixed {
			label += "*"
		}
		grid[meeting.Slot] = append(grid[meeting.Slot], label)
	}

	fmt.Printf("Status: %v\n\n", result.Status)
	for weekday := range model.TotalWeekdays {
		fmt.Printf("%v\n", model.Weekday(weekday))
		for period := range model.TotalPeriods {
			slot := model.Slot{Weekday: model.Weekday(weekday), Period: model.Period(period)}
			entries := grid[slot]
			if len(entries) == 0 {
				continue
			}
			fmt.Printf("  %v: %v\n", slot.Period, strings.Join(entries, ", "))
		}
	}

	if len(result.Violations) > 0 {
		fmt.Println("\nSoft constraint violations:")
		for _, violation := range result.Violations {
			fmt.Printf("  [%v] %v (weight %v)\n", violation.Rule, violation.Witness, violation.Weight)
		}
	}
	fmt.Printf("\nLayer costs %v over priorities %v\n", result.LayerCosts, result.Priorities)
}
