package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/pergola"
	"github.com/aretw0/pergola/internal/logging"
	"github.com/aretw0/pergola/pkg/adapters/yamldef"
	"github.com/aretw0/pergola/pkg/domain"
)

// runCmd drives a machine from stdin: one inbound event per line, the
// event type optionally followed by a JSON payload. Domain events are
// printed to stdout as JSON lines.
var runCmd = &cobra.Command{
	Use:   "run <definition.yaml>",
	Short: "Run a workflow machine, feeding events from stdin",
	Long: `Loads a resolved transition table from a YAML file and starts a machine.
Each stdin line is an inbound event: the event type, optionally followed
by a JSON payload (e.g. 'SUBMIT {"some":"payload"}'). Domain events are
written to stdout as NDJSON.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		initial, _ := cmd.Flags().GetString("state")

		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger := logging.New(level)

		def, err := yamldef.Load(args[0])
		if err != nil {
			return err
		}

		opts := []pergola.Option{pergola.WithLogger(logger)}
		if initial != "" {
			opts = append(opts, pergola.WithInitialContext(domain.NewWorkflowContext(initial)))
		}

		machine, err := pergola.New(def, opts...)
		if err != nil {
			return err
		}
		defer machine.Close()

		out := json.NewEncoder(os.Stdout)
		machine.Subscribe(func(ev domain.Event) {
			if err := out.Encode(ev); err != nil {
				logger.Warn("event encode failed", "err", err)
			}
		})

		logger.Info("machine started", "state", machine.State())

		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}

			ev, err := parseEventLine(line)
			if err != nil {
				logger.Warn("skipping malformed line", "err", err)
				continue
			}

			if err := machine.SendEvent(cmd.Context(), ev); err != nil {
				return err
			}
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}

		logger.Info("machine stopped", "state", machine.State())
		return nil
	},
}

// parseEventLine splits "TYPE" or "TYPE {json}" into an inbound event.
func parseEventLine(line string) (domain.InboundEvent, error) {
	evType, rest, _ := strings.Cut(line, " ")
	ev := domain.InboundEvent{Type: evType}

	rest = strings.TrimSpace(rest)
	if rest != "" {
		var payload any
		if err := json.Unmarshal([]byte(rest), &payload); err != nil {
			return domain.InboundEvent{}, fmt.Errorf("payload for %s: %w", evType, err)
		}
		ev.Payload = payload
	}
	return ev, nil
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("state", "", "Override the definition's initial state")
}
