package rpc

import (
	"context"
	"fmt"

	"github.com/danielpatrickdp/cleanslate/go-screener/internal/analysis"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/crecord"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
)

// #region client-struct
// Client calls a remote Screener service.
type Client struct {
	conn *grpc.ClientConn
}

// #endregion client-struct

// #region constructor
// NewClient connects to a Screener gRPC server.
func NewClient(addr string) (*Client, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Client{conn: conn}, nil
}

// NewClientWithConn wraps an existing connection. Close closes it.
func NewClientWithConn(conn *grpc.ClientConn) *Client {
	return &Client{conn: conn}
}

// #endregion constructor

// #region close
// Close shuts down the gRPC connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// #endregion close

// #region calls
// Screen screens rec remotely. A zero asOf uses the server's date.
func (c *Client) Screen(ctx context.Context, rec crecord.Record, asOf crecord.Date) (ScreenResult, error) {
	var out ScreenResult
	if err := c.call(ctx, "Screen", ScreenRequest{Record: rec, AsOf: asOf}, &out); err != nil {
		return ScreenResult{}, fmt.Errorf("screen rpc: %w", err)
	}
	return out, nil
}

// Summarize screens rec remotely and returns only the summary.
func (c *Client) Summarize(ctx context.Context, rec crecord.Record, asOf crecord.Date) (analysis.Summary, error) {
	var out analysis.Summary
	if err := c.call(ctx, "Summarize", ScreenRequest{Record: rec, AsOf: asOf}, &out); err != nil {
		return analysis.Summary{}, fmt.Errorf("summarize rpc: %w", err)
	}
	return out, nil
}

// ScreenBatch screens recs remotely. Per-record failures come back in the
// items; an error means the whole call failed.
func (c *Client) ScreenBatch(ctx context.Context, recs []crecord.Record, asOf crecord.Date) (BatchResult, error) {
	var out BatchResult
	if err := c.call(ctx, "ScreenBatch", BatchRequest{Records: recs, AsOf: asOf}, &out); err != nil {
		return BatchResult{}, fmt.Errorf("batch rpc: %w", err)
	}
	return out, nil
}

func (c *Client) call(ctx context.Context, method string, req, out any) error {
	in, err := toStruct(req)
	if err != nil {
		return err
	}
	resp := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, "/"+ServiceName+"/"+method, in, resp); err != nil {
		return err
	}
	return fromStruct(resp, out)
}

// #endregion calls
