package commands

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/linked-planet/go-http-client/pkg/httpclient"
	"github.com/linked-planet/go-http-client/pkg/pagination"
	"github.com/spf13/cobra"
)

// NewPaginateCommand creates the paginate command.
func NewPaginateCommand() *cobra.Command {
	var (
		params      []string
		start       int
		maxIndex    int
		offsetParam string
		sizeParam   string
	)

	cmd := &cobra.Command{
		Use:   "paginate PATH",
		Short: "Fetch every page of a JSON array endpoint",
		Long: `Fetch PATH page by page, passing the running offset and the page size as
query parameters, and print every item as one JSON line. The endpoint must
answer each page with a JSON array.`,
		Example: `  httpc paginate rest/api/2/user/search --param username=. --max 50`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			baseParams, err := parseKeyValues(params)
			if err != nil {
				return err
			}

			client, closeClient, err := newClient()
			if err != nil {
				return err
			}
			defer closeClient()

			var limit *int
			if cmd.Flags().Changed("max") {
				limit = pagination.Max(maxIndex)
			}

			fetch := pageFetcher(client, args[0], baseParams, offsetParam, sizeParam)
			items, err := pagination.RecursiveRestCall(cmd.Context(), start, limit, fetch)
			if err != nil {
				return err
			}

			for _, item := range items {
				if err := writeJSONLine(cmd.OutOrStdout(), item); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "query parameter key=value (repeatable)")
	cmd.Flags().IntVar(&start, "start", 0, "offset of the first item")
	cmd.Flags().IntVar(&maxIndex, "max", 0, "stop once the offset exceeds this index (inclusive)")
	cmd.Flags().StringVar(&offsetParam, "offset-param", "startAt", "query parameter carrying the offset")
	cmd.Flags().StringVar(&sizeParam, "size-param", "maxResults", "query parameter carrying the page size")

	return cmd
}

// pageFetcher returns a PageFunc that GETs path with the offset and page
// size added to params.
func pageFetcher(client httpclient.BaseHTTPClient, path string, params map[string]string, offsetParam, sizeParam string) pagination.PageFunc[json.RawMessage] {
	return func(ctx context.Context, offset, pageSize int) ([]json.RawMessage, error) {
		pageParams := make(httpclient.Params, len(params)+2)
		for k, v := range params {
			pageParams[k] = v
		}
		pageParams[offsetParam] = strconv.Itoa(offset)
		pageParams[sizeParam] = strconv.Itoa(pageSize)

		resp, err := httpclient.ExecuteRestList[json.RawMessage](ctx, client, http.MethodGet, path, pageParams, "", "")
		if err != nil {
			return nil, err
		}
		return resp.Body, nil
	}
}
