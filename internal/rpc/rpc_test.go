package rpc

import (
	"context"
	"net"
	"testing"

	"github.com/danielpatrickdp/cleanslate/go-screener/internal/config"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/crecord"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/screening"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func f64(v float64) *float64 { return &v }

func sampleRecord() crecord.Record {
	d := crecord.MustDate("2015-01-01")
	return crecord.Record{
		Person: crecord.Person{FirstName: "Jane", LastName: "Smorp", DateOfBirth: crecord.MustDate("1980-01-01")},
		Cases: []crecord.Case{{
			DocketNumber:    "CP-1",
			Status:          "Closed",
			TotalFines:      f64(50),
			FinesPaid:       f64(50),
			ArrestDate:      d,
			DispositionDate: d,
			Charges: []crecord.Charge{
				{Offense: "Theft", Grade: "M2", Statute: "18 § 3921", Sequence: "1", Disposition: "Nolle Prossed"},
				{Offense: "Trespass", Grade: "S", Statute: "18 § 3503", Sequence: "2", Disposition: "Guilty"},
			},
		}},
	}
}

// startServer serves a screening service over an in-memory listener.
func startServer(t *testing.T) *Client {
	t.Helper()
	cfg := config.Default()
	cfg.AsOf = "2026-10-14"

	lis := bufconn.Listen(1 << 20)
	gs := NewGRPCServer(screening.New(cfg), nil)
	go func() { _ = gs.Serve(lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	client := NewClientWithConn(conn)
	t.Cleanup(func() {
		_ = client.Close()
		gs.Stop()
	})
	return client
}

func TestScreen(t *testing.T) {
	client := startServer(t)

	res, err := client.Screen(context.Background(), sampleRecord(), crecord.Date{})
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, crecord.NewDate(2026, 10, 14), res.AsOf)
	assert.Equal(t, 1, res.Summary.ClearableCases)
	assert.Equal(t, 2, res.Summary.ClearableCharges)
	assert.True(t, res.Eval.Passed, res.Eval.Reason)
	assert.NotEmpty(t, res.Decisions)
	assert.Equal(t, "Jane", res.Petitions[0].Client.FirstName)
	assert.Zero(t, res.Remaining.ChargeCount())
}

func TestScreenAsOf(t *testing.T) {
	client := startServer(t)

	res, err := client.Screen(context.Background(), sampleRecord(), crecord.NewDate(2017, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, crecord.NewDate(2017, 1, 1), res.AsOf)
	assert.Less(t, res.Summary.ClearableCharges, 2)
}

func TestSummarize(t *testing.T) {
	client := startServer(t)

	sum, err := client.Summarize(context.Background(), sampleRecord(), crecord.Date{})
	require.NoError(t, err)
	assert.Equal(t, 2, sum.ClearableCharges)
	require.Contains(t, sum.Cases, "CP-1")
	assert.Len(t, sum.Cases["CP-1"].Charges, 2)
}

func TestScreenBatch(t *testing.T) {
	client := startServer(t)

	bad := sampleRecord()
	bad.Person.FirstName = ""

	res, err := client.ScreenBatch(context.Background(), []crecord.Record{sampleRecord(), bad}, crecord.Date{})
	require.NoError(t, err)
	require.Len(t, res.Items, 2)

	require.NotNil(t, res.Items[0].Report)
	assert.Equal(t, 2, res.Items[0].Report.Summary.ClearableCharges)

	assert.Equal(t, 1, res.Items[1].Index)
	assert.Nil(t, res.Items[1].Report)
	assert.Contains(t, res.Items[1].Error, "invalid record")
}

func TestScreenInvalidRecord(t *testing.T) {
	client := startServer(t)

	rec := sampleRecord()
	rec.Cases[0].DocketNumber = ""

	_, err := client.Screen(context.Background(), rec, crecord.Date{})
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestScreenMalformedRequest(t *testing.T) {
	client := startServer(t)

	in, err := structpb.NewStruct(map[string]any{"record": "not a record"})
	require.NoError(t, err)

	err = client.conn.Invoke(context.Background(), "/"+ServiceName+"/Screen", in, new(structpb.Struct))
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestScreenCanceled(t *testing.T) {
	client := startServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Screen(ctx, sampleRecord(), crecord.Date{})
	require.Error(t, err)
	assert.Equal(t, codes.Canceled, status.Code(err))
}

func TestStructBridge(t *testing.T) {
	in := ScreenRequest{Record: sampleRecord(), AsOf: crecord.NewDate(2020, 2, 29)}

	s, err := toStruct(in)
	require.NoError(t, err)

	var out ScreenRequest
	require.NoError(t, fromStruct(s, &out))
	assert.Equal(t, in.AsOf, out.AsOf)
	assert.Equal(t, "CP-1", out.Record.Cases[0].DocketNumber)
	assert.Equal(t, 50.0, *out.Record.Cases[0].TotalFines)
}
