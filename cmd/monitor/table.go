package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/hamed0406/svrmonitor/internal/scheduler"
)

func renderSweep(results []scheduler.SweepResult) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Endpoint", "Target", "Verdict", "Status", "Latency", "Detail"})

	up := 0
	for _, r := range results {
		verdict := "DOWN"
		if r.Result.Success {
			verdict = "UP"
			up++
		}
		status := "-"
		if r.Result.StatusCode != 0 {
			status = fmt.Sprintf("%d", r.Result.StatusCode)
		}
		t.AppendRow(table.Row{
			string(r.Endpoint.ID),
			r.Endpoint.Target,
			verdict,
			status,
			fmt.Sprintf("%.0f ms", r.Result.LatencyMS),
			r.Result.Message,
		})
	}
	t.AppendFooter(table.Row{"", "", fmt.Sprintf("%d/%d up", up, len(results)), "", "", ""})
	return t.Render()
}

func anyDown(results []scheduler.SweepResult) bool {
	for _, r := range results {
		if !r.Result.Success {
			return true
		}
	}
	return false
}
