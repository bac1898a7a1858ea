package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"
)

// notePayload marshals the JSON part of the multipart request body.
func notePayload(title, content string) (string, error) {
	b, err := json.Marshal(map[string]string{"title": title, "content": content})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// sendNote posts or puts a note as multipart/form-data with an optional
// image file.
func sendNote(method, path, title, content, imagePath string) (*resty.Response, error) {
	meta, err := notePayload(title, content)
	if err != nil {
		return nil, err
	}
	req := newClient().R().
		SetMultipartField("note", "", "application/json", strings.NewReader(meta))
	if imagePath != "" {
		req.SetFile("image", imagePath)
	}
	return req.Execute(method, path)
}

func printResult(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("%s: %s", resp.Status(), resp.String())
	}
	if body := resp.String(); body != "" {
		_, _ = fmt.Fprintln(os.Stdout, body)
	}
	return nil
}

func init() {
	notesCmd := &cobra.Command{Use: "notes", Short: "Note operations"}

	var title, content, image string

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a note, optionally with an image",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := sendNote("POST", "/api/notes", title, content, image)
			return printResult(resp, err)
		},
	}
	createCmd.Flags().StringVarP(&title, "title", "T", "", "Note title (required)")
	createCmd.Flags().StringVarP(&content, "content", "c", "", "Note content (required)")
	createCmd.Flags().StringVarP(&image, "image", "i", "", "Path to image attachment")
	_ = createCmd.MarkFlagRequired("title")
	_ = createCmd.MarkFlagRequired("content")
	notesCmd.AddCommand(createCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the caller's notes",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := newClient().R().Get("/api/notes")
			return printResult(resp, err)
		},
	}
	notesCmd.AddCommand(listCmd)

	updateCmd := &cobra.Command{
		Use:   "update NOTE_ID",
		Short: "Update a note, optionally replacing its image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := sendNote("PUT", "/api/notes/"+args[0], title, content, image)
			return printResult(resp, err)
		},
	}
	updateCmd.Flags().StringVarP(&title, "title", "T", "", "Note title (required)")
	updateCmd.Flags().StringVarP(&content, "content", "c", "", "Note content (required)")
	updateCmd.Flags().StringVarP(&image, "image", "i", "", "Path to replacement image")
	_ = updateCmd.MarkFlagRequired("title")
	_ = updateCmd.MarkFlagRequired("content")
	notesCmd.AddCommand(updateCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete NOTE_ID",
		Short: "Delete a note and its attachment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := newClient().R().Delete("/api/notes/" + args[0])
			return printResult(resp, err)
		},
	}
	notesCmd.AddCommand(deleteCmd)

	rootCmd.AddCommand(notesCmd)
}
