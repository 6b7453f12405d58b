package app

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/deskhub/deskhub/internal/auth"
	"github.com/deskhub/deskhub/internal/db/models"
	"github.com/deskhub/deskhub/internal/web/identity"
)

// ErrUnknownPermission is returned for resources or actions outside the closed sets.
var ErrUnknownPermission = errors.New("unknown resource or action")

func init() { //nolint: gochecknoinits
	checkCmd.Flags().StringVar(&checkTenant, "tenant", "", "tenant id")
	checkCmd.Flags().StringVar(&checkMember, "member", "", "member id")
	checkCmd.Flags().StringVar(&checkResource, "resource", "", "resource, e.g. conversations")
	checkCmd.Flags().StringVar(&checkAction, "action", "", "action: read, write, delete or manage")

	for _, f := range []string{"tenant", "member", "resource", "action"} {
		_ = checkCmd.MarkFlagRequired(f)
	}

	rootCmd.AddCommand(checkCmd)
}

var (
	checkTenant   string
	checkMember   string
	checkResource string
	checkAction   string

	checkCmd = &cobra.Command{
		Use:   "check",
		Short: "Decide whether a member may perform an action on a resource",
		PreRunE: func(_ *cobra.Command, _ []string) error {
			return loadConfig()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			resource, ok := models.ParseResource(checkResource)
			if !ok {
				return errors.Wrap(ErrUnknownPermission, checkResource)
			}

			action, ok := models.ParseAction(checkAction)
			if !ok {
				return errors.Wrap(ErrUnknownPermission, checkAction)
			}

			d, err := openDaemon()
			if err != nil {
				return err
			}

			resolver := identity.Resolver(d.Members, checkTenant, checkMember)
			out := d.Guard.Check(cmd.Context(), resolver, auth.Need(resource, action))

			if out.Err != nil {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "resolution failed: %v\n", out.Err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), out.Decision)

			return err
		},
	}
)
