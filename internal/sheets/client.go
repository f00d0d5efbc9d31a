package sheets

import (
	"context"
	"fmt"
	"os"
	"vct-survivor/internal/parser"

	"google.golang.org/api/option"
	sheetsv4 "google.golang.org/api/sheets/v4"
)

// DefaultRange covers the schedule columns of the first sheet.
const DefaultRange = "A:G"

type Client struct {
	srv           *sheetsv4.Service
	spreadsheetID string
}

func New(ctx context.Context, serviceAccountJSONPath, spreadsheetID string) (*Client, error) {
	if _, err := os.Stat(serviceAccountJSONPath); err != nil {
		return nil, fmt.Errorf("service account json: %w", err)
	}
	srv, err := sheetsv4.NewService(ctx,
		option.WithCredentialsFile(serviceAccountJSONPath),
		option.WithScopes(sheetsv4.SpreadsheetsReadonlyScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &Client{srv: srv, spreadsheetID: spreadsheetID}, nil
}

// ReadSchedule reads an A1 range and returns it as a schedule table.
func (c *Client) ReadSchedule(ctx context.Context, a1Range string) (*parser.Table, error) {
	if a1Range == "" {
		a1Range = DefaultRange
	}
	resp, err := c.srv.Spreadsheets.Values.Get(c.spreadsheetID, a1Range).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read range %q: %w", a1Range, err)
	}
	return parser.FromRows(ValuesToRows(resp.Values))
}

// ValuesToRows stringifies the loosely typed cells returned by the API.
func ValuesToRows(values [][]interface{}) [][]string {
	rows := make([][]string, len(values))
	for i, row := range values {
		out := make([]string, len(row))
		for j, cell := range row {
			switch v := cell.(type) {
			case nil:
			case string:
				out[j] = v
			default:
				out[j] = fmt.Sprint(v)
			}
		}
		rows[i] = out
	}
	return rows
}
