package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hamed0406/svrmonitor/internal/domain"
)

type options struct {
	api    string
	key    string
	output string
	events int
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	o := options{}
	cmd := &cobra.Command{
		Use:           "cli",
		Short:         "Show endpoint status from a running monitor",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), o)
		},
	}
	api := os.Getenv("API_BASE")
	if api == "" {
		api = "http://localhost:8080"
	}
	cmd.Flags().StringVar(&o.api, "api", api, "status API base URL (env API_BASE)")
	cmd.Flags().StringVar(&o.key, "key", os.Getenv("API_KEY"), "API key (env API_KEY)")
	cmd.Flags().StringVarP(&o.output, "output", "o", "table", "output format: table|yaml")
	cmd.Flags().IntVar(&o.events, "events", 0, "also show the N most recent events")
	return cmd
}

func run(ctx context.Context, w io.Writer, o options) error {
	if o.output != "table" && o.output != "yaml" {
		return fmt.Errorf("unknown output %q (want table or yaml)", o.output)
	}
	c := &client{base: strings.TrimRight(o.api, "/"), key: o.key, http: &http.Client{Timeout: 10 * time.Second}}

	var snaps []domain.Snapshot
	if err := c.get(ctx, "/api/endpoints", &snaps); err != nil {
		return err
	}
	var events []domain.Event
	if o.events > 0 {
		if err := c.get(ctx, fmt.Sprintf("/api/events?limit=%d", o.events), &events); err != nil {
			return err
		}
	}

	now := time.Now()
	if o.output == "yaml" {
		out, err := renderYAML(snaps, events, now)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	}
	fmt.Fprintln(w, renderTable(snaps, now))
	if len(events) > 0 {
		fmt.Fprintln(w, renderEvents(events))
	}
	return nil
}

type client struct {
	base string
	key  string
	http *http.Client
}

func (c *client) get(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return err
	}
	if c.key != "" {
		req.Header.Set("X-API-Key", c.key)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("contacting API: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: API returned status %s", path, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
