package main

import (
	"fmt"
	"io"
	"runtime"
	"text/template"
	"time"

	"github.com/plus3/blockfall/sim"
)

type Report struct {
	// Configuration
	Duration time.Duration
	Width    int
	Height   int
	Movement string

	// Results
	Games          int
	Ticks          int64
	Pieces         int
	TotalTime      time.Duration
	TickTime       DurationStats
	Score          IntStats
	Systems        []SystemTotals
	GCPauseMetrics bool
	MemStatsStart  runtime.MemStats
	MemStatsEnd    runtime.MemStats
}

// DurationStats accumulates min, max and mean without keeping samples.
type DurationStats struct {
	Min   time.Duration
	Max   time.Duration
	Avg   time.Duration
	Count int64
	total time.Duration
}

func (s *DurationStats) Add(d time.Duration) {
	if s.Count == 0 || d < s.Min {
		s.Min = d
	}
	if d > s.Max {
		s.Max = d
	}
	s.total += d
	s.Count++
}

func (s *DurationStats) Finalize() {
	if s.Count == 0 {
		return
	}
	s.Avg = s.total / time.Duration(s.Count)
}

type IntStats struct {
	Min   int
	Max   int
	Avg   float64
	Count int
	total int
}

func (s *IntStats) Add(v int) {
	if s.Count == 0 || v < s.Min {
		s.Min = v
	}
	if v > s.Max {
		s.Max = v
	}
	s.total += v
	s.Count++
}

func (s *IntStats) Finalize() {
	if s.Count == 0 {
		return
	}
	s.Avg = float64(s.total) / float64(s.Count)
}

// SystemTotals sums one tick system's timings over every finished game.
type SystemTotals struct {
	Name       string
	Executions int64
	Total      time.Duration
	Max        time.Duration
}

func (s SystemTotals) Avg() time.Duration {
	if s.Executions == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Executions)
}

func mergeSystems(totals []SystemTotals, stats sim.Stats) []SystemTotals {
	for i, sys := range stats.Scheduler.Systems {
		if i == len(totals) {
			totals = append(totals, SystemTotals{Name: sys.Name})
		}
		totals[i].Executions += sys.ExecutionCount
		totals[i].Total += sys.TotalDuration
		totals[i].Max = max(totals[i].Max, sys.MaxDuration)
	}
	return totals
}

func (r *Report) Generate(w io.Writer) error {
	const reportTemplate = `
# Blockfall Soak Report

## Configuration
- **Run Duration:** {{.Duration}}
- **Board:** {{.Width}}x{{.Height}}
- **Movement:** {{.Movement}}

## Games
- **Finished Games:** {{.Games}}
- **Total Ticks:** {{.Ticks}}
- **Pieces Spawned:** {{.Pieces}}
- **Score:** avg {{printf "%.1f" .Score.Avg}}, min {{.Score.Min}}, max {{.Score.Max}}

## Tick Time
- **Avg:** {{.TickTime.Avg}}
- **Min:** {{.TickTime.Min}}
- **Max:** {{.TickTime.Max}}
{{if .Systems}}
## Systems
| System | Executions | Avg | Max |
|---|---|---|---|
{{- range .Systems}}
| {{.Name}} | {{.Executions}} | {{.Avg}} | {{.Max}} |
{{- end}}
{{end}}
## Memory Usage (MiB)
- Heap Alloc:     {{mb .MemStatsStart.HeapAlloc}} (start) -> {{mb .MemStatsEnd.HeapAlloc}} (end)
- Total Alloc:    {{mb .MemStatsStart.TotalAlloc}} (start) -> {{mb .MemStatsEnd.TotalAlloc}} (end)
- Num GC:         {{.MemStatsStart.NumGC}} (start) -> {{.MemStatsEnd.NumGC}} (end) -> delta: {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}}
{{if .GCPauseMetrics}}
## GC Pause Durations
- **Total GC Pause:** {{.MemStatsEnd.PauseTotalNs | ns}}
{{end}}`

	fm := template.FuncMap{
		"mb": func(v uint64) string {
			return fmt.Sprintf("%.2f", float64(v)/1024/1024)
		},
		"usub": func(a, b uint32) uint32 {
			return a - b
		},
		"ns": func(ns uint64) string {
			return time.Duration(ns).String()
		},
	}

	tmpl, err := template.New("report").Funcs(fm).Parse(reportTemplate)
	if err != nil {
		return err
	}

	return tmpl.Execute(w, r)
}
