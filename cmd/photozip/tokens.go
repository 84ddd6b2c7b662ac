package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sagarc03/photozip/config"
)

var tokensCmd = &cobra.Command{
	Use:   "tokens",
	Short: "List archive tokens for the photo root",
	Long: `List the token and archive URL path of every directory under the
photo root, as the server would register them at startup.`,
	Example: `  photozip tokens --photos-dir /srv/photos`,
	RunE:    runTokens,
}

func init() {
	rootCmd.AddCommand(tokensCmd)
}

func runTokens(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	store, registry, err := openPhotos(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TOKEN\tDIRECTORY\tFILES\tPATH")
	for _, entry := range registry.Entries() {
		files := "?"
		if names, err := store.Entries(cmd.Context(), entry.Name); err == nil {
			files = fmt.Sprint(len(names))
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t/archive/%s/\n", entry.Token, entry.Name, files, entry.Token)
	}
	return w.Flush()
}
