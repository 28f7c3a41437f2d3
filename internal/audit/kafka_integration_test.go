//go:build integration

package audit_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"veriflow/internal/audit"
	"veriflow/pkg/testutil/containers"
)

func TestKafkaSink(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	rp := containers.NewRedpandaContainer(t)
	ctx := context.Background()

	sink, err := audit.NewKafkaSink(ctx, []string{rp.Broker}, "veriflow.audit.test")
	require.NoError(t, err)
	t.Cleanup(sink.Close)

	// Creating the sink twice must not fail on the existing topic.
	second, err := audit.NewKafkaSink(ctx, []string{rp.Broker}, "veriflow.audit.test")
	require.NoError(t, err)
	second.Close()

	emitted := audit.Event{
		Timestamp:     time.Now().UTC().Truncate(time.Millisecond),
		TenantID:      "tenant-1",
		UserID:        "user-1",
		ProviderID:    "provider-1",
		Action:        audit.ActionVerificationInitiated,
		WorkflowRunID: "run-1",
		ClaimURIs:     []string{"https://claims.example.org/dob"},
		RequestID:     "req-1",
	}
	require.NoError(t, sink.Append(ctx, emitted))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(rp.Broker),
		kgo.ConsumeTopics("veriflow.audit.test"),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	t.Cleanup(consumer.Close)

	fetchCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	fetches := consumer.PollFetches(fetchCtx)
	require.NoError(t, fetches.Err())

	records := fetches.Records()
	require.Len(t, records, 1)
	assert.Equal(t, []byte("user-1"), records[0].Key)

	var got audit.Event
	require.NoError(t, json.Unmarshal(records[0].Value, &got))
	assert.Equal(t, emitted, got)
}
