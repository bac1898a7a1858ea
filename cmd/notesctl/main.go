package main

import (
	"fmt"
	"os"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"

	"github.com/salem-notes/notes-backend/internal/auth"
)

var (
	apiFlag   string
	tokenFlag string
	rootCmd   = &cobra.Command{
		Use:   "notesctl",
		Short: "CLI client for the notes backend REST API",
	}
)

// newClient builds a resty client pointed at the configured service.
func newClient() *resty.Client {
	return resty.New().
		SetBaseURL(apiFlag).
		SetAuthToken(tokenFlag)
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&apiFlag, "api", "a", "http://localhost:8080", "Notes service base URL")
	rootCmd.PersistentFlags().StringVarP(&tokenFlag, "token", "t", auth.LocalDevToken, "Bearer token")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
