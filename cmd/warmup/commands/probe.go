package commands

import (
	"context"
	"errors"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/byte4ever/warmup"
)

// probeResult is the JSON document printed by probe.
type probeResult struct {
	Network  string       `json:"network"`
	Error    string       `json:"error,omitempty"`
	ChainID  string       `json:"chain_id,omitempty"`
	Phase    warmup.Phase `json:"phase"`
	Attempts int          `json:"attempts"`
}

func probeCmd() *cobra.Command {
	var (
		strict  bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "probe <network>",
		Short: "Initialize a client for a network and print the outcome",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			net, err := lookupNetwork(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc

				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			act := newInitializer(net).Activate(ctx)
			// Deactivating releases the endpoint once the result is printed.
			defer act.Deactivate()

			snap, err := act.Wait(ctx)
			if err != nil {
				return err
			}

			res := probeResult{
				Network:  net.Name,
				Phase:    snap.Phase,
				Attempts: snap.Attempts,
				Error:    snap.Error,
			}
			if snap.Ready() {
				res.ChainID = snap.Instance.ChainID().String()
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")

			if err = enc.Encode(res); err != nil {
				return err
			}

			if strict && snap.Phase == warmup.PhaseDegraded {
				return errors.New(snap.Error)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when the client could not be initialized")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "overall deadline, 0 for none")

	return cmd
}
