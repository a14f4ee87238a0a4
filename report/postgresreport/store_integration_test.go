package postgresreport_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/concurrent-banking-go/money"
	"github.com/AntonStoeckl/concurrent-banking-go/report"
	"github.com/AntonStoeckl/concurrent-banking-go/report/postgresreport"
	"github.com/AntonStoeckl/concurrent-banking-go/testutil/pgtest"
)

func givenRow(scenarioTitle string, at time.Time, drift string) report.Row {
	return report.Row{
		RunID:        uuid.New(),
		Timestamp:    at,
		Scenario:     scenarioTitle,
		Method:       "Method B: Actor Message-Passing",
		NumAccounts:  2,
		Users:        16,
		OpsPerUser:   100,
		Attempted:    1600,
		Succeeded:    1590,
		Failed:       10,
		FailedOther:  10,
		OpsPerSec:    812.25,
		TotalDrift:   money.MustParse(drift),
		Currency:     "GBP",
		TransferOnly: true,
	}
}

func Test_Store_RoundTripsRowsOnEveryAdapter(t *testing.T) {
	pgtest.DSN(t)

	for _, adapter := range pgtest.Adapters(t) {
		t.Run(string(adapter), func(t *testing.T) {
			// setup
			ctx := context.Background()
			store := pgtest.GivenStore(t, adapter)
			require.NoError(t, store.Ping(ctx))

			now := time.Now().UTC().Truncate(time.Second)
			conserved := givenRow("Hot-Spot", now, "0.00")
			drifted := givenRow("Hot-Spot", now.Add(time.Second), "-75.00")
			other := givenRow("Scalability", now.Add(2*time.Second), "0.00")

			// act
			for _, row := range []report.Row{conserved, drifted, other} {
				require.NoError(t, store.Write(ctx, row))
			}

			hotspot, errHotspot := store.Query(ctx, postgresreport.Filter{Scenario: "Hot-Spot"})
			violations, errViolations := store.Query(ctx, postgresreport.Filter{OnlyDriftViolations: true})
			newest, errNewest := store.Query(ctx, postgresreport.Filter{Limit: 1})

			// assert
			require.NoError(t, errHotspot)
			require.NoError(t, errViolations)
			require.NoError(t, errNewest)

			require.Len(t, hotspot, 2)
			assert.Equal(t, drifted.RunID, hotspot[0].RunID)
			assert.Equal(t, conserved.RunID, hotspot[1].RunID)
			assert.Equal(t, 10, hotspot[1].FailedOther)
			assert.True(t, conserved.Timestamp.Equal(hotspot[1].Timestamp))

			require.Len(t, violations, 1)
			assert.Equal(t, "-75.00", violations[0].TotalDrift.String())

			require.Len(t, newest, 1)
			assert.Equal(t, other.RunID, newest[0].RunID)
		})
	}
}

func Test_Store_RejectsDuplicateRunIDs(t *testing.T) {
	pgtest.DSN(t)

	for _, adapter := range pgtest.Adapters(t) {
		t.Run(string(adapter), func(t *testing.T) {
			ctx := context.Background()
			store := pgtest.GivenStore(t, adapter)
			row := givenRow("Race", time.Now().UTC().Truncate(time.Second), "12.00")

			require.NoError(t, store.Write(ctx, row))
			err := store.Write(ctx, row)

			assert.ErrorIs(t, err, postgresreport.ErrWritingRowFailed)
		})
	}
}
