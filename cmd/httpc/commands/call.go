package commands

import (
	"fmt"
	"strings"

	"github.com/linked-planet/go-http-client/pkg/httpclient"
	"github.com/spf13/cobra"
)

// NewCallCommand creates the call command.
func NewCallCommand() *cobra.Command {
	var (
		params      []string
		headers     []string
		data        string
		contentType string
		include     bool
	)

	cmd := &cobra.Command{
		Use:   "call METHOD PATH",
		Short: "Execute a REST call",
		Long:  "Execute a REST call relative to the base URL and print the response body",
		Example: `  httpc call GET rest/api/2/myself
  httpc call POST rest/insight/1.0/object/create --data '{"objectTypeId":1}'
  httpc call GET rest/api/2/search --param jql="project = TEST" --include`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			queryParams, err := parseKeyValues(params)
			if err != nil {
				return err
			}
			headerValues, err := parseKeyValues(headers)
			if err != nil {
				return err
			}

			client, closeClient, err := newClient()
			if err != nil {
				return err
			}
			defer closeClient()

			resp, err := client.ExecuteRestCall(cmd.Context(), strings.ToUpper(args[0]), args[1],
				httpclient.Params(queryParams), data, contentType, headerValues)
			if err != nil {
				return err
			}

			if include {
				printStatus(cmd.OutOrStdout(), resp.StatusCode)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), resp.Body)
			return err
		},
	}

	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "query parameter key=value (repeatable)")
	cmd.Flags().StringArrayVarP(&headers, "header", "H", nil, "request header key=value (repeatable)")
	cmd.Flags().StringVarP(&data, "data", "d", "", "request body")
	cmd.Flags().StringVar(&contentType, "content-type", httpclient.ContentTypeJSON, "content type of the request body")
	cmd.Flags().BoolVarP(&include, "include", "i", false, "print the response status line")

	return cmd
}

// NewGetCommand creates the get command.
func NewGetCommand() *cobra.Command {
	var (
		params  []string
		include bool
	)

	cmd := &cobra.Command{
		Use:   "get PATH",
		Short: "Execute a GET call without body",
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

			resp, err := httpclient.ExecuteGetCall(cmd.Context(), client, args[0], httpclient.Params(queryParams))
			if err != nil {
				return err
			}

			if include {
				printStatus(cmd.OutOrStdout(), resp.StatusCode)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), resp.Body)
			return err
		},
	}

	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "query parameter key=value (repeatable)")
	cmd.Flags().BoolVarP(&include, "include", "i", false, "print the response status line")

	return cmd
}
