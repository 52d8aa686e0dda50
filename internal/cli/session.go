package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/tablebot/internal/presentation/graph"
	"github.com/aretw0/tablebot/pkg/persistence/middleware"
	"github.com/aretw0/tablebot/pkg/ports"
	"gopkg.in/yaml.v3"
)

// Output formats of InspectSession.
const (
	FormatJSON    = "json"
	FormatYAML    = "yaml"
	FormatMermaid = "mermaid"
)

// ListSessions prints the IDs held by store.
func ListSessions(ctx context.Context, store ports.SessionStore, w io.Writer) error {
	ids, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("error listing sessions: %w", err)
	}
	if len(ids) == 0 {
		fmt.Fprintln(w, "No active sessions found.")
		return nil
	}
	fmt.Fprintln(w, "Active Sessions:")
	for _, id := range ids {
		fmt.Fprintln(w, "- "+id)
	}
	return nil
}

// InspectSession prints one session as JSON, YAML, or a Mermaid chart of
// its progress through the dialog flows. With redact set, customer details
// are masked.
func InspectSession(ctx context.Context, store ports.SessionStore, id, format string, redact bool, w io.Writer) error {
	s, err := store.Load(ctx, id)
	if err != nil {
		return fmt.Errorf("error loading session '%s': %w", id, err)
	}
	if redact {
		s = middleware.NewRedactor(middleware.DefaultPIIPatterns...).Redact(s)
	}

	switch format {
	case "", FormatJSON:
		data, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))
	case FormatYAML:
		// Round-trip through JSON so YAML keys match the JSON field names.
		raw, err := json.Marshal(s)
		if err != nil {
			return err
		}
		var doc map[string]any
		if err := json.Unmarshal(raw, &doc); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	case FormatMermaid:
		fmt.Fprint(w, graph.GenerateMermaid(graph.OverlayFor(s)))
	default:
		return fmt.Errorf("unknown output format %q (json, yaml, mermaid)", format)
	}
	return nil
}

// RemoveSessions deletes each session, reporting every failure.
func RemoveSessions(ctx context.Context, store ports.SessionStore, ids []string, w io.Writer) error {
	var errs []error
	for _, id := range ids {
		if err := store.Delete(ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("error removing '%s': %w", id, err))
			continue
		}
		fmt.Fprintf(w, "Removed session '%s'\n", id)
	}
	return errors.Join(errs...)
}

// RemoveAllSessions deletes every session in store.
func RemoveAllSessions(ctx context.Context, store ports.SessionStore, w io.Writer) error {
	ids, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("error listing sessions: %w", err)
	}
	return RemoveSessions(ctx, store, ids, w)
}

