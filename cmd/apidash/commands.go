package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	dashboard "github.com/goliatone/go-apidash/components/dashboard"
)

type snapshotCmd struct {
	JSON   bool     `name:"json" help:"Print the regions as JSON."`
	Widget []string `short:"w" help:"Only print these widgets (repeatable)."`
}

func (c *snapshotCmd) Run(ctx context.Context, g *Globals, out io.Writer) error {
	cfg, logger, err := g.load()
	if err != nil {
		return err
	}
	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	loads, err := a.start(ctx)
	if err != nil {
		return err
	}
	loads.Wait()

	snaps, err := c.collect(a.service)
	if err != nil {
		return err
	}
	if c.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(snaps)
	}
	return writeSnapshotTable(out, snaps)
}

func (c *snapshotCmd) collect(service *dashboard.Service) ([]dashboard.RegionSnapshot, error) {
	if len(c.Widget) == 0 {
		return service.Snapshot(), nil
	}
	snaps := make([]dashboard.RegionSnapshot, 0, len(c.Widget))
	for _, code := range c.Widget {
		snap, err := service.RegionSnapshot(strings.TrimSpace(code))
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	return snaps, nil
}

func writeSnapshotTable(out io.Writer, snaps []dashboard.RegionSnapshot) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WIDGET\tSTATE\tSUMMARY")
	for _, snap := range snaps {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", snap.Widget, snap.State.Kind, summarize(snap.State))
	}
	return tw.Flush()
}

// summarize reduces a state to one line: the message for non-loaded states,
// the fragment title and first line otherwise.
func summarize(state dashboard.WidgetState) string {
	if state.Kind != dashboard.StateLoaded || state.Fragment == nil {
		return state.Message
	}
	parts := make([]string, 0, 2)
	if state.Fragment.Title != "" {
		parts = append(parts, state.Fragment.Title)
	}
	switch {
	case len(state.Fragment.Lines) > 0:
		parts = append(parts, state.Fragment.Lines[0])
	case len(state.Fragment.Items) > 0:
		parts = append(parts, state.Fragment.Items[0].Title)
	case state.Fragment.Image != nil:
		parts = append(parts, state.Fragment.Image.URL)
	}
	return strings.Join(parts, " | ")
}

type keyCmd struct {
	Set  keySetCmd  `cmd:"" help:"Store the TMDB API key."`
	Show keyShowCmd `cmd:"" help:"Report whether a TMDB API key is stored."`
}

type keySetCmd struct {
	Value string `arg:"" help:"The TMDB API key."`
}

func (c *keySetCmd) Run(ctx context.Context, g *Globals, out io.Writer) error {
	cfg, logger, err := g.load()
	if err != nil {
		return err
	}
	if cfg.Storage.CredentialsPath == "" {
		logger.Warn().Msg("storage.credentials_path is empty; the key is discarded on exit")
	}
	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	msg, err := a.service.SaveCredential(ctx, c.Value)
	if err != nil {
		return errors.New(dashboard.UserMessage(err))
	}
	_, err = fmt.Fprintln(out, msg)
	return err
}

type keyShowCmd struct{}

func (c *keyShowCmd) Run(ctx context.Context, g *Globals, out io.Writer) error {
	cfg, logger, err := g.load()
	if err != nil {
		return err
	}
	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	value, ok, err := a.service.Credential(ctx)
	if err != nil {
		return err
	}
	if !ok {
		_, err = fmt.Fprintln(out, "not configured")
		return err
	}
	detail := maskSecret(value)
	if stamped, ok := a.store.(timestampedStore); ok {
		updated, found, err := stamped.UpdatedAt(ctx)
		if err != nil {
			return err
		}
		if found {
			detail += ", saved " + updated.Local().Format(time.DateTime)
		}
	}
	_, err = fmt.Fprintf(out, "configured (%s)\n", detail)
	return err
}

// timestampedStore is implemented by stores that record when the key was saved.
type timestampedStore interface {
	UpdatedAt(ctx context.Context) (time.Time, bool, error)
}

func maskSecret(value string) string {
	const visible = 4
	if len(value) <= visible {
		return strings.Repeat("*", len(value))
	}
	return strings.Repeat("*", len(value)-visible) + value[len(value)-visible:]
}

type manifestCmd struct {
	Out string `short:"o" type:"path" help:"Write the manifest to this file instead of stdout."`
}

func (c *manifestCmd) Run(out io.Writer) error {
	doc := dashboard.DefaultManifest()
	if c.Out != "" {
		if err := dashboard.WriteManifestFile(c.Out, doc); err != nil {
			return err
		}
		_, err := fmt.Fprintf(out, "✓ Wrote default manifest to %s\n", c.Out)
		return err
	}
	return dashboard.EncodeManifest(out, doc)
}
