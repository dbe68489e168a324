package commands

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/linked-planet/go-http-client/pkg/httpclient"
	"github.com/spf13/cobra"
)

// NewDownloadCommand creates the download command.
func NewDownloadCommand() *cobra.Command {
	var (
		params []string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "download URL",
		Short: "Download a file",
		Long:  "Download the resource at URL. Relative URLs are resolved against the base URL by the applink backend only.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			queryParams, err := parseKeyValues(params)
			if err != nil {
				return err
			}

			client, closeClient, err := newClient()
			if err != nil {
				return err
			}
			defer closeClient()

			resp, err := client.ExecuteDownload(cmd.Context(), http.MethodGet, args[0], httpclient.Params(queryParams), "", "")
			if err != nil {
				return err
			}

			if out == "" {
				_, err = cmd.OutOrStdout().Write(resp.Body)
				return err
			}
			if err := os.WriteFile(out, resp.Body, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Saved %d bytes to %s (HTTP %d)\n", len(resp.Body), out, resp.StatusCode)
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "query parameter key=value (repeatable)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")

	return cmd
}

// NewUploadCommand creates the upload command.
func NewUploadCommand() *cobra.Command {
	var (
		params   []string
		mimeType string
		filename string
	)

	cmd := &cobra.Command{
		Use:     "upload URL FILE",
		Short:   "Upload a file as multipart form data",
		Example: `  httpc upload /rest/insight/1.0/attachments/object/42 ./diagram.png`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			queryParams, err := parseKeyValues(params)
			if err != nil {
				return err
			}

			data, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[1], err)
			}
			if filename == "" {
				filename = filepath.Base(args[1])
			}
			if mimeType == "" {
				mimeType = mime.TypeByExtension(filepath.Ext(filename))
			}

			client, closeClient, err := newClient()
			if err != nil {
				return err
			}
			defer closeClient()

			resp, err := client.ExecuteUpload(cmd.Context(), http.MethodPost, args[0], httpclient.Params(queryParams), mimeType, filename, data)
			if err != nil {
				return err
			}

			printStatus(cmd.OutOrStdout(), resp.StatusCode)
			fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s (%d bytes)\n", filename, len(resp.Body))
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "query parameter key=value (repeatable)")
	cmd.Flags().StringVar(&mimeType, "mime-type", "", "mime type of the file (default derived from the extension)")
	cmd.Flags().StringVar(&filename, "filename", "", "file name sent to the server (default base name of FILE)")

	return cmd
}
