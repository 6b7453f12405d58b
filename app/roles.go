package app

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/deskhub/deskhub/internal/daemon"
)

func init() { //nolint: gochecknoinits
	rolesCmd.PersistentFlags().StringVar(&tenantID, "tenant", "", "tenant id")
	_ = rolesCmd.MarkPersistentFlagRequired("tenant")

	rolesDeleteCmd.Flags().StringVar(&roleID, "id", "", "role id")
	_ = rolesDeleteCmd.MarkFlagRequired("id")

	rolesCmd.AddCommand(rolesListCmd, rolesDeleteCmd)
	rootCmd.AddCommand(rolesCmd)
}

var (
	tenantID string
	roleID   string

	rolesCmd = &cobra.Command{
		Use:   "roles",
		Short: "Manage the custom roles of a tenant",
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return loadConfig()
		},
	}

	rolesListCmd = &cobra.Command{
		Use:   "list",
		Short: "List the roles of a tenant",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := openDaemon()
			if err != nil {
				return err
			}

			roles, err := d.Roles.List(cmd.Context(), tenantID)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0) //nolint: mnd
			_, _ = fmt.Fprintln(w, "ID\tNAME\tDEFAULT\tPERMISSIONS")

			for _, r := range roles {
				perms := make([]string, 0, len(r.Permissions))
				for _, p := range r.Permissions {
					actions := make([]string, 0, len(p.Actions))
					for _, a := range p.Actions {
						actions = append(actions, string(a))
					}

					perms = append(perms, fmt.Sprintf("%s:%s", p.Resource, strings.Join(actions, ",")))
				}

				_, _ = fmt.Fprintf(w, "%s\t%s\t%t\t%s\n", r.ID, r.Name, r.IsDefault, strings.Join(perms, " "))
			}

			return w.Flush()
		},
	}

	rolesDeleteCmd = &cobra.Command{
		Use:   "delete",
		Short: "Delete a role; members holding it lose it immediately",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := openDaemon()
			if err != nil {
				return err
			}

			if err = d.Roles.Delete(cmd.Context(), tenantID, roleID); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "role %s deleted\n", roleID)

			return err
		},
	}
)

// openDaemon opens the database and builds the stores without starting the web service.
func openDaemon() (*daemon.Daemon, error) {
	db, err := daemon.Open(&cfg)
	if err != nil {
		return nil, err
	}

	return daemon.Build(&cfg, db)
}
