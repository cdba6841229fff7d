package main

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/hamed0406/svrmonitor/internal/domain"
)

func stateLabel(s domain.Snapshot) string {
	switch {
	case s.Verdict == "":
		return "PENDING"
	case s.ConfirmedDown():
		return "DOWN"
	case s.Verdict == domain.Down:
		return "FAILING"
	default:
		return "UP"
	}
}

func downFor(s domain.Snapshot, now time.Time) string {
	if s.DownSince == nil {
		return "-"
	}
	return now.Sub(*s.DownSince).Truncate(time.Second).String()
}

func renderTable(snaps []domain.Snapshot, now time.Time) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Endpoint", "Target", "State", "Failures", "Down For", "Last Alert", "Detail"})
	for _, s := range snaps {
		lastAlert := "-"
		if s.LastAlertSentAt != nil {
			lastAlert = s.LastAlertSentAt.Format(time.RFC3339)
		}
		t.AppendRow(table.Row{
			string(s.Endpoint.ID),
			s.Endpoint.Target,
			stateLabel(s),
			s.ConsecutiveFailures,
			downFor(s, now),
			lastAlert,
			s.Message,
		})
	}
	return t.Render()
}

func renderEvents(evs []domain.Event) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"At", "Endpoint", "Event", "Alert", "Detail"})
	for _, e := range evs {
		t.AppendRow(table.Row{e.At.Format(time.RFC3339), string(e.EndpointID), string(e.Kind), string(e.AlertKind), e.Message})
	}
	return t.Render()
}

type yamlEndpoint struct {
	ID                  string `yaml:"id"`
	Target              string `yaml:"target"`
	State               string `yaml:"state"`
	ConsecutiveFailures int    `yaml:"consecutive_failures"`
	DownFor             string `yaml:"down_for,omitempty"`
	LastAlertSentAt     string `yaml:"last_alert_sent_at,omitempty"`
	Detail              string `yaml:"detail,omitempty"`
}

type yamlEvent struct {
	At       string `yaml:"at"`
	Endpoint string `yaml:"endpoint"`
	Kind     string `yaml:"kind"`
	Alert    string `yaml:"alert,omitempty"`
	Detail   string `yaml:"detail,omitempty"`
}

type yamlDoc struct {
	Endpoints []yamlEndpoint `yaml:"endpoints"`
	Events    []yamlEvent    `yaml:"events,omitempty"`
}

func renderYAML(snaps []domain.Snapshot, evs []domain.Event, now time.Time) (string, error) {
	doc := yamlDoc{Endpoints: make([]yamlEndpoint, 0, len(snaps))}
	for _, s := range snaps {
		e := yamlEndpoint{
			ID:                  string(s.Endpoint.ID),
			Target:              s.Endpoint.Target,
			State:               stateLabel(s),
			ConsecutiveFailures: s.ConsecutiveFailures,
			Detail:              s.Message,
		}
		if s.DownSince != nil {
			e.DownFor = downFor(s, now)
		}
		if s.LastAlertSentAt != nil {
			e.LastAlertSentAt = s.LastAlertSentAt.Format(time.RFC3339)
		}
		doc.Endpoints = append(doc.Endpoints, e)
	}
	for _, ev := range evs {
		doc.Events = append(doc.Events, yamlEvent{
			At:       ev.At.Format(time.RFC3339),
			Endpoint: string(ev.EndpointID),
			Kind:     string(ev.Kind),
			Alert:    string(ev.AlertKind),
			Detail:   ev.Message,
		})
	}
	b, err := yaml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode yaml: %w", err)
	}
	return string(b), nil
}
